package filter

import (
	"fmt"

	"firestige.xyz/u2kit/internal/config"
	"firestige.xyz/u2kit/internal/core"
)

// FromConfig builds the filters configured under output.filter, in the
// order signature, type, bpf. The signature filter has to see every event
// so that it can keep the packets of matching events after a type cut.
func FromConfig(cfg config.FilterConfig) ([]Filter, error) {
	var filters []Filter
	if len(cfg.SIDs) > 0 {
		filters = append(filters, NewSignatureFilter(cfg.SIDs...))
	}
	if len(cfg.Types) > 0 {
		types := make([]core.RecordType, 0, len(cfg.Types))
		for _, s := range cfg.Types {
			t, ok := core.ParseRecordType(s)
			if !ok {
				return nil, fmt.Errorf("%w: unknown record type %q", core.ErrConfigInvalid, s)
			}
			types = append(types, t)
		}
		filters = append(filters, NewTypeFilter(types...))
	}
	if cfg.BPF != "" {
		f, err := NewBPFFilter(cfg.BPF)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", core.ErrConfigInvalid, err)
		}
		filters = append(filters, f)
	}
	return filters, nil
}
