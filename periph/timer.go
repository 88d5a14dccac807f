package periph

import "github.com/aurelia-systems/aurelia/core"

// Timer register offsets.
const (
	TimerCounter = 0x00
	TimerCompare = 0x08
	TimerControl = 0x10
)

// Timer control bits.
const (
	TimerEnable    = 1 << 0
	TimerIrqEn     = 1 << 1
	TimerAutoReset = 1 << 2
)

// Timer counts cycles while enabled and raises its PIC line on a compare
// match.
type Timer struct {
	base core.Addr
	pic  *PIC

	counter core.Word
	compare core.Word
	control core.Word
}

func NewTimer(base core.Addr, pic *PIC) *Timer {
	return &Timer{base: base, pic: pic}
}

func (t *Timer) InRange(addr core.Addr) bool {
	return addr >= t.base && addr < t.base+0x1000
}

func (t *Timer) Read(addr core.Addr) (core.Word, bool) {
	switch addr - t.base {
	case TimerCounter:
		return t.counter, true
	case TimerCompare:
		return t.compare, true
	case TimerControl:
		return t.control, true
	}
	return 0, true
}

func (t *Timer) Write(addr core.Addr, data core.Word) bool {
	switch addr - t.base {
	case TimerCounter:
		// read-only
	case TimerCompare:
		t.compare = data
	case TimerControl:
		t.control = data
	}
	return true
}

func (t *Timer) Tick() {
	if t.control&TimerEnable == 0 {
		return
	}
	t.counter++
	if t.counter != t.compare {
		// a counter seeded past compare keeps running to overflow
		return
	}
	if t.control&TimerIrqEn != 0 && t.pic != nil {
		t.pic.Raise(IrqTimer)
	}
	if t.control&TimerAutoReset != 0 {
		t.counter = 0
	}
}
