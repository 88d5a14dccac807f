package cmd

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/aurelia-systems/aurelia/cpu"
)

func Disasm(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return cli.Exit("usage: aurelia disasm <image.bin>", ExitBadArgs)
	}

	image, err := os.ReadFile(ctx.Args().First())
	if err != nil {
		return cli.Exit(fmt.Sprintf("cannot read %s: %v", ctx.Args().First(), err), ExitIOError)
	}

	w := bufio.NewWriter(os.Stdout)
	defer w.Flush()

	for off := 0; off+4 <= len(image); off += 4 {
		raw := binary.LittleEndian.Uint32(image[off:])
		fmt.Fprintf(w, "%08x:  %08x  %s\n", off, raw, cpu.Disassemble(raw))
	}
	if tail := len(image) % 4; tail != 0 {
		fmt.Fprintf(w, "%08x:  %d trailing data byte(s)\n", len(image)-tail, tail)
	}
	return nil
}

var DisasmCommand = &cli.Command{
	Name:      "disasm",
	Usage:     "Disassemble a flat Aurelia binary",
	ArgsUsage: "<image.bin>",
	Action:    Disasm,
}
