package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/aurelia-systems/aurelia/asm"
)

// Assembler exit codes.
const (
	ExitOK = iota
	ExitAsmError
	ExitIOError
	ExitBadArgs
)

var AsmOutputFlag = &cli.StringFlag{
	Name:    "o",
	Usage:   "Output file for the assembled binary",
	Value:   "a.out",
	Aliases: []string{"output"},
}

func Asm(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return cli.Exit("usage: aurelia asm <source.s> [-o out.bin]", ExitBadArgs)
	}
	input := ctx.Args().First()
	output := ctx.String(AsmOutputFlag.Name)

	src, err := os.ReadFile(input)
	if err != nil {
		return cli.Exit(fmt.Sprintf("cannot read %s: %v", input, err), ExitIOError)
	}

	bin, err := asm.Assemble(string(src))
	if err != nil {
		var diag *asm.Error
		if errors.As(err, &diag) {
			return cli.Exit(diag.Error(), ExitAsmError)
		}
		return cli.Exit(err.Error(), ExitAsmError)
	}

	if err := os.WriteFile(output, bin, 0o644); err != nil {
		return cli.Exit(fmt.Sprintf("cannot write %s: %v", output, err), ExitIOError)
	}
	return nil
}

var AsmCommand = &cli.Command{
	Name:      "asm",
	Usage:     "Assemble an Aurelia source file into a flat binary",
	ArgsUsage: "<source.s>",
	Action:    Asm,
	Flags: []cli.Flag{
		AsmOutputFlag,
	},
}
