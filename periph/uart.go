package periph

import (
	"io"

	"github.com/aurelia-systems/aurelia/core"
)

// UART register offsets.
const (
	UartData    = 0x0
	UartStatus  = 0x4
	UartControl = 0x8
)

// UART status bits.
const (
	UartTxReady = 1 << 0
	UartRxAvail = 1 << 1
)

// UART control bits.
const (
	UartTxIrqEn = 1 << 2
	UartRxIrqEn = 1 << 3
)

// UART is the serial port. Transmit bytes go straight to the host writer
// (transmission is instantaneous, so TX-ready never drops); received bytes
// queue until the guest pops the data register.
type UART struct {
	base core.Addr
	out  io.Writer
	pic  *PIC

	rx      []byte
	control uint8
}

// NewUART maps a UART at base writing TX bytes to out. out may be nil to
// discard. pic may be nil when interrupts are unused.
func NewUART(base core.Addr, out io.Writer, pic *PIC) *UART {
	return &UART{base: base, out: out, pic: pic}
}

func (u *UART) InRange(addr core.Addr) bool {
	return addr >= u.base && addr < u.base+0x1000
}

func (u *UART) Read(addr core.Addr) (core.Word, bool) {
	switch addr - u.base {
	case UartData:
		if len(u.rx) == 0 {
			return 0, true
		}
		b := u.rx[0]
		u.rx = u.rx[1:]
		u.updateIrq()
		return core.Word(b), true

	case UartStatus:
		status := core.Word(UartTxReady)
		if len(u.rx) > 0 {
			status |= UartRxAvail
		}
		return status, true

	case UartControl:
		return core.Word(u.control), true
	}
	return 0, true
}

func (u *UART) Write(addr core.Addr, data core.Word) bool {
	switch addr - u.base {
	case UartData:
		if u.out != nil {
			_, _ = u.out.Write([]byte{byte(data)})
		}
	case UartControl:
		u.control = uint8(data)
		u.updateIrq()
	}
	return true
}

func (u *UART) Tick() {}

// Receive queues one byte from the host side, as if it arrived on the wire.
func (u *UART) Receive(b byte) {
	u.rx = append(u.rx, b)
	u.updateIrq()
}

func (u *UART) updateIrq() {
	if u.pic == nil {
		return
	}
	if len(u.rx) > 0 && u.control&UartRxIrqEn != 0 {
		u.pic.Raise(IrqUartRx)
	} else {
		u.pic.Clear(IrqUartRx)
	}
}
