package filter

import (
	"fmt"

	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"
	"golang.org/x/net/bpf"

	"firestige.xyz/u2kit/internal/unified2"
)

const snapLen = 65535

// CompileBpf compiles a tcpdump expression for the given link type.
func CompileBpf(linkType layers.LinkType, expr string) ([]bpf.Instruction, error) {
	pcapBpf, err := pcap.CompileBPFFilter(linkType, snapLen, expr)
	if err != nil {
		return nil, fmt.Errorf("failed to compile BPF filter: %w", err)
	}

	rawBpf := make([]bpf.RawInstruction, len(pcapBpf))
	for i, ins := range pcapBpf {
		rawBpf[i] = bpf.RawInstruction{Op: ins.Code, Jt: ins.Jt, Jf: ins.Jf, K: ins.K}
	}
	insns, ok := bpf.Disassemble(rawBpf)
	if !ok {
		return nil, fmt.Errorf("BPF filter %q uses instructions the pure-Go VM cannot run", expr)
	}
	return insns, nil
}

// BPFFilter runs a compiled expression over packet data. Events pass
// untouched; packets with no data never match.
type BPFFilter struct {
	expr string
	vms  map[uint32]*bpf.VM
	errs map[uint32]error
}

// NewBPFFilter validates expr against Ethernet; other link types are
// compiled when first seen.
func NewBPFFilter(expr string) (*BPFFilter, error) {
	f := &BPFFilter{
		expr: expr,
		vms:  make(map[uint32]*bpf.VM),
		errs: make(map[uint32]error),
	}
	if _, err := f.vm(uint32(layers.LinkTypeEthernet)); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *BPFFilter) vm(linkType uint32) (*bpf.VM, error) {
	if vm, ok := f.vms[linkType]; ok {
		return vm, nil
	}
	if err, ok := f.errs[linkType]; ok {
		return nil, err
	}
	insns, err := CompileBpf(layers.LinkType(linkType), f.expr)
	if err == nil {
		var vm *bpf.VM
		if vm, err = bpf.NewVM(insns); err == nil {
			f.vms[linkType] = vm
			return vm, nil
		}
	}
	f.errs[linkType] = err
	return nil, err
}

// Match reports whether p satisfies the expression.
func (f *BPFFilter) Match(p *unified2.Packet) bool {
	if len(p.Data) == 0 {
		return false
	}
	vm, err := f.vm(p.LinkType)
	if err != nil {
		return false
	}
	n, err := vm.Run(p.Data)
	return err == nil && n > 0
}

func (f *BPFFilter) Filter(e *unified2.Entry, chain Chain) {
	if p, ok := e.Packet(); ok && !f.Match(p) {
		return
	}
	chain.Filter(e)
}
