// Package render formats entries for the command-line front-ends.
package render

import (
	"fmt"
	"io"

	"firestige.xyz/u2kit/internal/inspect"
	"firestige.xyz/u2kit/internal/unified2"
)

// Renderer writes entries in one output format.
type Renderer interface {
	Render(e *unified2.Entry) error
	// Flush completes any buffered output.
	Flush() error
}

// Options tunes renderers that support packet decoding.
type Options struct {
	// Inspector, when set, adds decoded layers for packet records.
	Inspector *inspect.Inspector
}

// New returns the renderer for format: text, json, yaml or csv.
func New(format string, w io.Writer, opts Options) (Renderer, error) {
	switch format {
	case "", "text":
		return NewText(w, opts), nil
	case "json":
		return NewJSON(w, opts), nil
	case "yaml":
		return NewYAML(w, opts), nil
	case "csv":
		return NewCSV(w), nil
	}
	return nil, fmt.Errorf("unknown output format %q", format)
}

func protocolName(p uint8) string {
	switch p {
	case 6:
		return "TCP"
	case 17:
		return "UDP"
	case 1:
		return "ICMP"
	}
	return "IP"
}

// actionDrop is the packet_action value sensors use for dropped traffic.
const actionDrop = 0x20

func actionName(a uint8) string {
	if a == actionDrop {
		return "Drop"
	}
	return "Alert"
}
