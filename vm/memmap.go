// Package vm wires the Aurelia system together: memory map, device
// construction, the global clock loop and the binary loader.
package vm

import "github.com/aurelia-systems/aurelia/core"

// Physical address map. RAM sits at zero so the reset vector needs no
// relocation; the 4 KiB peripheral windows live at 0xE000_0000 and up, and
// the storage controller's 8 KiB window sits apart from them at 0xF000_0000.
const (
	RamBase core.Addr = 0x0000_0000
	RamSize           = 256 * 1024 * 1024

	StorageBase  core.Addr = 0xF000_0000
	UartBase     core.Addr = 0xE000_1000
	PicBase      core.Addr = 0xE000_2000
	TimerBase    core.Addr = 0xE000_3000
	KeyboardBase core.Addr = 0xE000_4000
	MouseBase    core.Addr = 0xE000_5000

	ResetVector core.Addr = 0x0000_0000
)

// InitialSP is the conventional initial stack pointer: the last byte of
// RAM. The CPU does not enforce it.
const InitialSP core.Addr = RamBase + RamSize - 1
