// Package nvme implements the doorbell-driven storage controller: an
// NVMe-flavored register file and admin queue pair in front of the FTL,
// moving data to and from guest RAM over the bus bypass path.
package nvme

import (
	"encoding/binary"

	"github.com/aurelia-systems/aurelia/bus"
	"github.com/aurelia-systems/aurelia/core"
	"github.com/aurelia-systems/aurelia/ftl"
	"github.com/aurelia-systems/aurelia/nand"
)

// Register offsets within the controller window. The low 4 KiB is the
// register file, the high 4 KiB the doorbell region.
const (
	RegCapLo = 0x00
	RegCapHi = 0x04
	RegVS    = 0x08
	RegIntMS = 0x0C
	RegIntMC = 0x10
	RegCC    = 0x14
	RegCSTS  = 0x1C
	RegAQA   = 0x24
	RegASQLo = 0x28
	RegASQHi = 0x2C
	RegACQLo = 0x30
	RegACQHi = 0x34

	RegSQ0TDBL = 0x1000
	RegCQ0HDBL = 0x1004

	// WindowSize covers registers plus doorbells.
	WindowSize = 0x2000
)

// Controller status bits.
const (
	CstsReady uint64 = 1 << 0
	CstsFatal uint64 = 1 << 1
)

// Version reported by the VS register (1.0.0).
const Version = 0x00010000

// Admin command opcodes.
const (
	OpcodeWrite = 0x01
	OpcodeRead  = 0x02
)

// Completion status codes. NVMe packs the status field above the phase bit;
// anything the FTL refuses maps to an internal error.
const (
	StatusSuccess       = 0x0000
	StatusInternalError = 0x0001
)

const (
	sqEntrySize = 64
	cqEntrySize = 16
	// BlockSize is the fixed data transfer unit, matching the FTL page.
	BlockSize = nand.PageDataSize

	// command fetch and firmware time, in ticks
	cmdLatency = 5
)

type command struct {
	opcode uint8
	prp1   core.Addr
	lba    uint32
	blocks uint32
}

// Controller is a bus slave for its MMIO window and a DMA master through
// the bus bypass path. At most one command is in flight; pending doorbell
// distance is drained one command at a time across ticks.
type Controller struct {
	base core.Addr
	bus  *bus.Bus
	ftl  *ftl.FTL

	cc   uint64
	csts uint64
	asq  core.Addr
	acq  core.Addr
	aqa  uint64
	intm uint64

	sqTail uint16 // host doorbell
	sqHead uint16 // controller-owned
	cqHead uint16 // host doorbell
	cqTail uint16 // controller-owned
	phase  uint8

	busyTicks  uint64
	pending    command
	hasPending bool
}

// New maps a controller window at base, fronting f and mastering b for DMA.
func New(base core.Addr, b *bus.Bus, f *ftl.FTL) *Controller {
	return &Controller{base: base, bus: b, ftl: f, phase: 1}
}

func (c *Controller) InRange(addr core.Addr) bool {
	return addr >= c.base && addr < c.base+WindowSize
}

func (c *Controller) Read(addr core.Addr) (core.Word, bool) {
	switch addr - c.base {
	case RegVS:
		return Version, true
	case RegCC:
		return c.cc, true
	case RegCSTS:
		return c.csts, true
	case RegAQA:
		return c.aqa, true
	case RegASQLo:
		return c.asq & 0xFFFFFFFF, true
	case RegASQHi:
		return c.asq >> 32, true
	case RegACQLo:
		return c.acq & 0xFFFFFFFF, true
	case RegACQHi:
		return c.acq >> 32, true
	case RegIntMS, RegIntMC:
		return c.intm, true
	}
	// doorbells and capability stubs read as zero
	return 0, true
}

func (c *Controller) Write(addr core.Addr, data core.Word) bool {
	switch addr - c.base {
	case RegCC:
		c.cc = data
		if data&1 != 0 {
			c.csts |= CstsReady
		} else {
			// disable resets the queue engine
			c.csts &^= CstsReady
			c.sqHead, c.sqTail = 0, 0
			c.cqHead, c.cqTail = 0, 0
			c.phase = 1
			c.hasPending = false
			c.busyTicks = 0
		}
	case RegAQA:
		c.aqa = data
	case RegASQLo:
		c.asq = c.asq&^0xFFFFFFFF | data&0xFFFFFFFF
	case RegASQHi:
		c.asq = c.asq&0xFFFFFFFF | data<<32
	case RegACQLo:
		c.acq = c.acq&^0xFFFFFFFF | data&0xFFFFFFFF
	case RegACQHi:
		c.acq = c.acq&0xFFFFFFFF | data<<32
	case RegIntMS:
		c.intm |= data
	case RegIntMC:
		c.intm &^= data
	case RegSQ0TDBL:
		c.sqTail = uint16(data)
	case RegCQ0HDBL:
		c.cqHead = uint16(data)
	}
	return true
}

// Tick retires the in-flight command when its latency expires and starts
// fetching the next one when the submission queue is non-empty.
func (c *Controller) Tick() {
	if c.busyTicks > 0 {
		c.busyTicks--
		if c.busyTicks == 0 && c.hasPending {
			c.execute()
		}
		return
	}
	if c.csts&CstsReady != 0 && !c.hasPending && c.sqHead != c.sqTail {
		c.fetch()
	}
}

// fetch DMA-reads the 64-byte submission entry at the controller-held head
// and latches the fields it implements.
func (c *Controller) fetch() {
	slot := c.asq + core.Addr(c.sqHead)*sqEntrySize

	w0, _ := c.bus.ReadWord(slot)
	prp1, _ := c.bus.ReadWord(slot + 24)
	dw10, _ := c.bus.ReadWord(slot + 40)
	dw12, _ := c.bus.ReadWord(slot + 48)

	c.pending = command{
		opcode: uint8(w0),
		prp1:   prp1,
		lba:    uint32(dw10),
		blocks: uint32(dw12),
	}
	c.sqHead++
	c.hasPending = true
	c.busyTicks = cmdLatency
}

func (c *Controller) execute() {
	c.hasPending = false
	status := uint16(StatusSuccess)

	switch c.pending.opcode {
	case OpcodeWrite:
		buf := make([]byte, BlockSize)
		c.dmaRead(c.pending.prp1, buf)
		if err := c.ftl.Write(c.pending.lba, buf); err != nil {
			status = StatusInternalError
		}

	case OpcodeRead:
		buf := make([]byte, BlockSize)
		if err := c.ftl.Read(c.pending.lba, buf); err != nil {
			status = StatusInternalError
		}
		c.dmaWrite(c.pending.prp1, buf)

	default:
		status = StatusInternalError
	}

	c.postCompletion(status)
}

func (c *Controller) dmaRead(addr core.Addr, buf []byte) {
	for i := 0; i < len(buf); i += core.WordSize {
		w, _ := c.bus.ReadWord(addr + core.Addr(i))
		binary.LittleEndian.PutUint64(buf[i:], w)
	}
}

func (c *Controller) dmaWrite(addr core.Addr, buf []byte) {
	for i := 0; i < len(buf); i += core.WordSize {
		c.bus.WriteWord(addr+core.Addr(i), binary.LittleEndian.Uint64(buf[i:]))
	}
}

// postCompletion writes the status dword of the 16-byte completion entry at
// the controller-held tail. The 16-bit field in the dword's upper half is
// the NVMe packing: status above the phase bit.
func (c *Controller) postCompletion(status uint16) {
	slot := c.acq + core.Addr(c.cqTail)*cqEntrySize
	field := uint64(status&0x7FFF)<<1 | uint64(c.phase)
	c.bus.WriteWord(slot+8, field<<48)
	c.cqTail++
}
