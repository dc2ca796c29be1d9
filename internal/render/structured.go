package render

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"firestige.xyz/u2kit/internal/inspect"
	"firestige.xyz/u2kit/internal/unified2"
)

type eventView struct {
	Type              string  `mapstructure:"type"`
	Length            uint32  `mapstructure:"length"`
	Time              string  `mapstructure:"time"`
	SensorID          uint32  `mapstructure:"sensor_id"`
	EventID           uint32  `mapstructure:"event_id"`
	EventSecond       uint32  `mapstructure:"event_second"`
	EventMicrosecond  uint32  `mapstructure:"event_microsecond"`
	SignatureID       uint32  `mapstructure:"signature_id"`
	GeneratorID       uint32  `mapstructure:"generator_id"`
	SignatureRevision uint32  `mapstructure:"signature_revision"`
	ClassificationID  uint32  `mapstructure:"classification_id"`
	PriorityID        uint32  `mapstructure:"priority_id"`
	IPSource          string  `mapstructure:"ip_source"`
	IPDestination     string  `mapstructure:"ip_destination"`
	SportItype        uint16  `mapstructure:"sport_itype"`
	DportIcode        uint16  `mapstructure:"dport_icode"`
	Protocol          string  `mapstructure:"protocol"`
	PacketAction      string  `mapstructure:"packet_action"`
	MPLSLabel         *uint32 `mapstructure:"mpls_label,omitempty"`
	VLANID            *uint16 `mapstructure:"vlan_id,omitempty"`
	PolicyID          *uint16 `mapstructure:"policy_id,omitempty"`
}

type layerView struct {
	Name    string `json:"name" yaml:"name"`
	Summary string `json:"summary" yaml:"summary"`
}

type packetView struct {
	Type              string            `mapstructure:"type"`
	Length            uint32            `mapstructure:"length"`
	Time              string            `mapstructure:"time"`
	SensorID          uint32            `mapstructure:"sensor_id"`
	EventID           uint32            `mapstructure:"event_id"`
	EventSecond       uint32            `mapstructure:"event_second"`
	PacketSecond      uint32            `mapstructure:"packet_second"`
	PacketMicrosecond uint32            `mapstructure:"packet_microsecond"`
	LinkType          uint32            `mapstructure:"linktype"`
	PacketLength      uint32            `mapstructure:"packet_length"`
	Data              string            `mapstructure:"data"`
	Layers            []layerView       `mapstructure:"layers,omitempty"`
	Labels            map[string]string `mapstructure:"labels,omitempty"`
	DecodeError       string            `mapstructure:"decode_error,omitempty"`
}

// Fields flattens an entry into a map keyed by wire field names.
func Fields(e *unified2.Entry, in *inspect.Inspector) (map[string]interface{}, error) {
	var view interface{}
	switch r := e.Record.(type) {
	case *unified2.Event:
		v := eventView{
			Type:              e.Header.Type.String(),
			Length:            e.Header.Length,
			Time:              r.Time().Format(time.RFC3339Nano),
			SensorID:          r.SensorID,
			EventID:           r.EventID,
			EventSecond:       r.EventSecond,
			EventMicrosecond:  r.EventMicrosecond,
			SignatureID:       r.SignatureID,
			GeneratorID:       r.GeneratorID,
			SignatureRevision: r.SignatureRevision,
			ClassificationID:  r.ClassificationID,
			PriorityID:        r.PriorityID,
			IPSource:          r.IPSource.String(),
			IPDestination:     r.IPDestination.String(),
			SportItype:        r.SportItype,
			DportIcode:        r.DportIcode,
			Protocol:          protocolName(r.Protocol),
			PacketAction:      actionName(r.PacketAction),
		}
		if e.Header.Type.IsV2() {
			v.MPLSLabel, v.VLANID, v.PolicyID = &r.MPLSLabel, &r.VLANID, &r.PolicyID
		}
		view = v
	case *unified2.Packet:
		v := packetView{
			Type:              e.Header.Type.String(),
			Length:            e.Header.Length,
			Time:              r.Time().Format(time.RFC3339Nano),
			SensorID:          r.SensorID,
			EventID:           r.EventID,
			EventSecond:       r.EventSecond,
			PacketSecond:      r.PacketSecond,
			PacketMicrosecond: r.PacketMicrosecond,
			LinkType:          r.LinkType,
			PacketLength:      r.PacketLength,
			Data:              hex.EncodeToString(r.Data),
		}
		if in != nil {
			res := in.Packet(r)
			for _, l := range res.Layers {
				v.Layers = append(v.Layers, layerView{Name: l.Name, Summary: l.Summary})
			}
			v.Labels = res.Labels
			if res.Err != nil {
				v.DecodeError = res.Err.Error()
			}
		}
		view = v
	default:
		return nil, fmt.Errorf("cannot render %s entry", e.Header.Type)
	}

	out := make(map[string]interface{})
	if err := mapstructure.Decode(view, &out); err != nil {
		return nil, fmt.Errorf("flatten %s entry: %w", e.Header.Type, err)
	}
	return out, nil
}

// JSON writes one object per line.
type JSON struct {
	enc       *json.Encoder
	inspector *inspect.Inspector
}

func NewJSON(w io.Writer, opts Options) *JSON {
	return &JSON{enc: json.NewEncoder(w), inspector: opts.Inspector}
}

func (j *JSON) Render(e *unified2.Entry) error {
	m, err := Fields(e, j.inspector)
	if err != nil {
		return err
	}
	return j.enc.Encode(m)
}

func (j *JSON) Flush() error { return nil }

// YAML writes one document per entry.
type YAML struct {
	enc       *yaml.Encoder
	inspector *inspect.Inspector
}

func NewYAML(w io.Writer, opts Options) *YAML {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	return &YAML{enc: enc, inspector: opts.Inspector}
}

func (y *YAML) Render(e *unified2.Entry) error {
	m, err := Fields(e, y.inspector)
	if err != nil {
		return err
	}
	return y.enc.Encode(m)
}

func (y *YAML) Flush() error { return y.enc.Close() }
