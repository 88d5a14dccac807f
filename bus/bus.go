// Package bus implements the synchronous system interconnect: 64-bit address
// and data lines, a one-hot control word, first-match address decoding and
// wait-state propagation between a master and the selected slave.
package bus

import "github.com/aurelia-systems/aurelia/core"

// Control signals. Read and Write are driven by the current master, Wait by
// the active slave, Error by the bus itself on a failed decode.
const (
	SigRead uint8 = 1 << iota
	SigWrite
	SigWait
	SigReady
	SigIrq
	SigError
)

// State is a snapshot of the bus lines at the start of a cycle.
type State struct {
	Addr    core.Addr
	Data    core.Word
	Control uint8
}

// Device is anything decodable on the bus. Read and Write report done=false
// to hold the transaction in a wait state; the bus will re-invoke them on
// subsequent cycles with the master lines unchanged.
type Device interface {
	core.Tickable
	InRange(addr core.Addr) bool
	Read(addr core.Addr) (data core.Word, done bool)
	Write(addr core.Addr, data core.Word) (done bool)
}

// Bus owns the signal state and the ordered device list. Devices are
// registered once at system construction; the first device whose range
// matches an address wins the decode.
type Bus struct {
	devices []Device
	state   State

	// transfer telemetry, counted on both the cycle-accurate and
	// bypass paths
	reads  uint64
	writes uint64
}

func New() *Bus {
	return &Bus{}
}

// Attach registers a device. Ranges are assumed disjoint; overlaps resolve
// to the earliest registration.
func (b *Bus) Attach(dev Device) {
	b.devices = append(b.devices, dev)
}

// Master interface.

func (b *Bus) SetAddr(addr core.Addr) {
	b.state.Addr = addr
}

func (b *Bus) SetData(data core.Word) {
	b.state.Data = data
}

func (b *Bus) SetControl(sig uint8, active bool) {
	if active {
		b.state.Control |= sig
	} else {
		b.state.Control &^= sig
	}
}

func (b *Bus) State() State {
	return b.state
}

// Busy reports whether the active slave is holding the current transaction.
func (b *Bus) Busy() bool {
	return b.state.Control&SigWait != 0
}

func (b *Bus) decode(addr core.Addr) Device {
	for _, dev := range b.devices {
		if dev.InRange(addr) {
			return dev
		}
	}
	return nil
}

// Tick evaluates the lines once. An idle bus (neither Read nor Write
// asserted) does nothing. A decode failure latches Error; the master is
// expected to notice, the bus does not retry.
func (b *Bus) Tick() {
	isRead := b.state.Control&SigRead != 0
	isWrite := b.state.Control&SigWrite != 0
	if !isRead && !isWrite {
		return
	}

	target := b.decode(b.state.Addr)
	if target == nil {
		// decode failure: latch Error and hold Wait so the master
		// stalls instead of latching garbage
		b.SetControl(SigError, true)
		b.SetControl(SigWait, true)
		return
	}

	var done bool
	if isRead {
		var data core.Word
		data, done = target.Read(b.state.Addr)
		if done {
			b.state.Data = data
			b.reads++
		}
	} else {
		done = target.Write(b.state.Addr, b.state.Data)
		if done {
			b.writes++
		}
	}

	// A slow slave parks the transaction in a wait state until it
	// reports done.
	b.SetControl(SigWait, !done)
}

// ReadWord is the synchronous bypass used by the loader, DMA masters and
// tests. It decodes once and invokes the device handler outside the
// cycle-accurate protocol; ok is false for unmapped addresses.
func (b *Bus) ReadWord(addr core.Addr) (data core.Word, ok bool) {
	target := b.decode(addr)
	if target == nil {
		return 0, false
	}
	data, _ = target.Read(addr)
	b.reads++
	return data, true
}

// WriteWord is the synchronous write bypass; see ReadWord.
func (b *Bus) WriteWord(addr core.Addr, data core.Word) bool {
	target := b.decode(addr)
	if target == nil {
		return false
	}
	target.Write(addr, data)
	b.writes++
	return true
}

// Reads returns the number of read transfers: those completed on the
// cycle-accurate path plus every bypass read, whether or not its device
// reported done.
func (b *Bus) Reads() uint64 {
	return b.reads
}

// Writes returns the number of write transfers, counted as Reads counts
// reads.
func (b *Bus) Writes() uint64 {
	return b.writes
}
