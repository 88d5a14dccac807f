package cmd

import (
	"os"

	"golang.org/x/term"

	"github.com/aurelia-systems/aurelia/vm"
)

// Console puts the host terminal in raw mode and forwards stdin bytes into
// the guest. A reader goroutine feeds a channel; the simulation loop drains
// it between cycles so device state is only ever touched from one
// goroutine.
type Console struct {
	oldState *term.State
	input    chan byte
	done     chan struct{}
}

func OpenConsole() (*Console, error) {
	fd := int(os.Stdin.Fd())
	old, err := term.MakeRaw(fd)
	if err != nil {
		return nil, err
	}

	c := &Console{
		oldState: old,
		input:    make(chan byte, 64),
		done:     make(chan struct{}),
	}

	go func() {
		buf := make([]byte, 1)
		for {
			n, err := os.Stdin.Read(buf)
			if err != nil || n == 0 {
				return
			}
			select {
			case c.input <- buf[0]:
			case <-c.done:
				return
			}
		}
	}()
	return c, nil
}

// Drain moves any buffered host input into the UART receive queue and the
// keyboard FIFO.
func (c *Console) Drain(sys *vm.System) {
	for {
		select {
		case b := <-c.input:
			sys.UART.Receive(b)
			sys.Keyboard.Enqueue(b)
		default:
			return
		}
	}
}

func (c *Console) Close() {
	close(c.done)
	_ = term.Restore(int(os.Stdin.Fd()), c.oldState)
}
