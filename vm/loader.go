package vm

import (
	"errors"
	"fmt"

	"github.com/aurelia-systems/aurelia/core"
)

var errEmptyImage = errors.New("empty image")

// Load copies a flat binary image into RAM through the bus bypass, starting
// at addr. The whole destination range must lie inside RAM.
func (s *System) Load(data []byte, addr core.Addr) error {
	if len(data) == 0 {
		return errEmptyImage
	}

	ramEnd := RamBase + core.Addr(s.RAM.Size())
	if addr < RamBase || addr+core.Addr(len(data)) > ramEnd {
		return fmt.Errorf("image range [%#x, %#x) outside RAM [%#x, %#x)",
			addr, addr+core.Addr(len(data)), RamBase, ramEnd)
	}

	for i, b := range data {
		if !s.Bus.WriteWord(addr+core.Addr(i), core.Word(b)) {
			return fmt.Errorf("bus write failed at %#x", addr+core.Addr(i))
		}
	}
	return nil
}
