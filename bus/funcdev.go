package bus

import "github.com/aurelia-systems/aurelia/core"

// FuncDevice adapts plain functions to the Device contract, so tests and
// one-off instruments can sit on the bus without a dedicated type. Nil
// handlers behave as an always-done no-op.
type FuncDevice struct {
	InRangeFn func(addr core.Addr) bool
	ReadFn    func(addr core.Addr) (core.Word, bool)
	WriteFn   func(addr core.Addr, data core.Word) bool
	TickFn    func()
}

func (d *FuncDevice) InRange(addr core.Addr) bool {
	if d.InRangeFn == nil {
		return false
	}
	return d.InRangeFn(addr)
}

func (d *FuncDevice) Read(addr core.Addr) (core.Word, bool) {
	if d.ReadFn == nil {
		return 0, true
	}
	return d.ReadFn(addr)
}

func (d *FuncDevice) Write(addr core.Addr, data core.Word) bool {
	if d.WriteFn == nil {
		return true
	}
	return d.WriteFn(addr, data)
}

func (d *FuncDevice) Tick() {
	if d.TickFn != nil {
		d.TickFn()
	}
}
