package periph

import (
	"math"

	"github.com/aurelia-systems/aurelia/core"
)

// Mouse register offsets.
const (
	MouseStatus  = 0x00
	MouseDataX   = 0x04
	MouseDataY   = 0x08
	MouseButtons = 0x0C
	MouseControl = 0x10
)

// Mouse status bits.
const (
	MousePacketReady = 1 << 0
	MouseXOverflow   = 1 << 1
	MouseYOverflow   = 1 << 2
)

// Mouse accumulates relative movement between guest reads. The X and Y
// registers clear on read; accumulation saturates at the int32 limits and
// flags overflow.
type Mouse struct {
	base core.Addr
	pic  *PIC

	accX, accY int64
	ovfX, ovfY bool
	buttons    uint8
	control    uint32
}

func NewMouse(base core.Addr, pic *PIC) *Mouse {
	return &Mouse{base: base, pic: pic}
}

func (m *Mouse) InRange(addr core.Addr) bool {
	return addr >= m.base && addr < m.base+0x1000
}

func (m *Mouse) Read(addr core.Addr) (core.Word, bool) {
	switch addr - m.base {
	case MouseStatus:
		var status core.Word
		if m.accX != 0 || m.accY != 0 {
			status |= MousePacketReady
		}
		if m.ovfX {
			status |= MouseXOverflow
		}
		if m.ovfY {
			status |= MouseYOverflow
		}
		return status, true

	case MouseDataX:
		v := core.Word(uint32(int32(m.accX)))
		m.accX = 0
		m.ovfX = false
		return v, true

	case MouseDataY:
		v := core.Word(uint32(int32(m.accY)))
		m.accY = 0
		m.ovfY = false
		return v, true

	case MouseButtons:
		return core.Word(m.buttons), true

	case MouseControl:
		return core.Word(m.control), true
	}
	return 0, true
}

func (m *Mouse) Write(addr core.Addr, data core.Word) bool {
	switch addr - m.base {
	case MouseControl:
		m.control = uint32(data)
	}
	return true
}

func (m *Mouse) Tick() {}

// Update folds one host movement packet into the accumulators.
func (m *Mouse) Update(dx, dy int32, buttons uint8) {
	m.accX, m.ovfX = saturate(m.accX+int64(dx), m.ovfX)
	m.accY, m.ovfY = saturate(m.accY+int64(dy), m.ovfY)
	m.buttons = buttons

	if m.control&1 != 0 && m.pic != nil {
		m.pic.Raise(IrqMouse)
	}
}

func saturate(v int64, ovf bool) (int64, bool) {
	if v > math.MaxInt32 {
		return math.MaxInt32, true
	}
	if v < math.MinInt32 {
		return math.MinInt32, true
	}
	return v, ovf
}
