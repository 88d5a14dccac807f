package vm

import (
	"io"

	"github.com/aurelia-systems/aurelia/bus"
	"github.com/aurelia-systems/aurelia/core"
	"github.com/aurelia-systems/aurelia/cpu"
	"github.com/aurelia-systems/aurelia/ftl"
	"github.com/aurelia-systems/aurelia/mem"
	"github.com/aurelia-systems/aurelia/nand"
	"github.com/aurelia-systems/aurelia/nvme"
	"github.com/aurelia-systems/aurelia/periph"
)

// Config sizes the system. Zero values select the defaults.
type Config struct {
	RamSize    int
	RamLatency uint64
	NandBlocks int
	// UartOut receives bytes the guest writes to the UART data
	// register. Defaults to io.Discard.
	UartOut io.Writer
}

const defaultNandBlocks = 1024

// System owns every component of the virtual machine and drives them from
// one clock.
type System struct {
	Bus   *bus.Bus
	CPU   *cpu.CPU
	RAM   *mem.RAM
	Clock *core.Clock

	UART     *periph.UART
	PIC      *periph.PIC
	Timer    *periph.Timer
	Keyboard *periph.Keyboard
	Mouse    *periph.Mouse

	Nand    *nand.Chip
	FTL     *ftl.FTL
	Storage *nvme.Controller

	devices []core.Tickable
}

// New builds and wires a complete system: RAM and the MMIO devices on the
// bus, the storage stack behind the controller, the CPU reset to the reset
// vector.
func New(cfg Config) *System {
	if cfg.RamSize == 0 {
		cfg.RamSize = RamSize
	}
	if cfg.NandBlocks == 0 {
		cfg.NandBlocks = defaultNandBlocks
	}
	if cfg.UartOut == nil {
		cfg.UartOut = io.Discard
	}

	s := &System{
		Bus:   bus.New(),
		Clock: &core.Clock{},
	}

	s.RAM = mem.New(RamBase, cfg.RamSize, cfg.RamLatency)
	s.PIC = periph.NewPIC(PicBase)
	s.UART = periph.NewUART(UartBase, cfg.UartOut, s.PIC)
	s.Timer = periph.NewTimer(TimerBase, s.PIC)
	s.Keyboard = periph.NewKeyboard(KeyboardBase, s.PIC)
	s.Mouse = periph.NewMouse(MouseBase, s.PIC)

	s.Nand = nand.NewChip(cfg.NandBlocks)
	s.FTL = ftl.Mount(s.Nand)
	s.Storage = nvme.New(StorageBase, s.Bus, s.FTL)

	s.Bus.Attach(s.RAM)
	s.Bus.Attach(s.Storage)
	s.Bus.Attach(s.UART)
	s.Bus.Attach(s.PIC)
	s.Bus.Attach(s.Timer)
	s.Bus.Attach(s.Keyboard)
	s.Bus.Attach(s.Mouse)

	s.CPU = cpu.New(s.Bus)
	s.CPU.Reset(ResetVector)

	// tick order within a cycle: CPU, bus, then device-private time
	s.devices = []core.Tickable{
		s.CPU, s.Bus,
		s.RAM, s.Storage, s.UART, s.PIC, s.Timer, s.Keyboard, s.Mouse,
	}
	return s
}

// Step advances the whole system one cycle.
func (s *System) Step() {
	s.Clock.Tick()
	for _, d := range s.devices {
		d.Tick()
	}
}

// Run steps until the CPU halts or maxCycles elapse, returning the number
// of cycles executed.
func (s *System) Run(maxCycles uint64) uint64 {
	var n uint64
	for n = 0; n < maxCycles; n++ {
		if s.CPU.Halted() {
			break
		}
		s.Step()
	}
	return n
}
