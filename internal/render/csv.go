package render

import (
	"encoding/csv"
	"io"
	"strconv"

	"firestige.xyz/u2kit/internal/unified2"
)

// CSVHeader names the columns written by CSV.
var CSVHeader = []string{"SID", "GID", "REV", "SRC_IP", "SRC_PORT", "DST_IP", "DST_PORT", "PROTOCOL", "ACTION"}

// CSV writes one row per event; packets are not represented.
type CSV struct {
	w      *csv.Writer
	header bool
}

func NewCSV(w io.Writer) *CSV {
	return &CSV{w: csv.NewWriter(w)}
}

func (c *CSV) Render(e *unified2.Entry) error {
	if !c.header {
		if err := c.w.Write(CSVHeader); err != nil {
			return err
		}
		c.header = true
	}
	ev, ok := e.Event()
	if !ok {
		return nil
	}
	return c.w.Write([]string{
		strconv.FormatUint(uint64(ev.SignatureID), 10),
		strconv.FormatUint(uint64(ev.GeneratorID), 10),
		strconv.FormatUint(uint64(ev.SignatureRevision), 10),
		ev.IPSource.String(),
		strconv.FormatUint(uint64(ev.SportItype), 10),
		ev.IPDestination.String(),
		strconv.FormatUint(uint64(ev.DportIcode), 10),
		protocolName(ev.Protocol),
		actionName(ev.PacketAction),
	})
}

// Flush writes the header if nothing was rendered, then flushes.
func (c *CSV) Flush() error {
	if !c.header {
		if err := c.w.Write(CSVHeader); err != nil {
			return err
		}
		c.header = true
	}
	c.w.Flush()
	return c.w.Error()
}
