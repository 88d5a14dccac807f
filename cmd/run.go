package cmd

import (
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/profile"
	"github.com/urfave/cli/v2"
	"golang.org/x/exp/slog"

	"github.com/aurelia-systems/aurelia/vm"
)

var (
	RunMaxCyclesFlag = &cli.Uint64Flag{
		Name:  "max-cycles",
		Usage: "Safety cap on simulated cycles",
		Value: 100_000_000,
	}
	RunLoadAddrFlag = &cli.StringFlag{
		Name:  "load-addr",
		Usage: "Load address for the binary image (0x-prefixed hex)",
		Value: "0x0",
	}
	RunRamLatencyFlag = &cli.Uint64Flag{
		Name:  "ram-latency",
		Usage: "RAM access latency in wait states",
		Value: 0,
	}
	RunConsoleFlag = &cli.BoolFlag{
		Name:  "console",
		Usage: "Attach the host terminal to the UART (raw mode)",
	}
	RunPProfCPUFlag = &cli.BoolFlag{
		Name:  "pprof.cpu",
		Usage: "Enable CPU profiling, output to the current directory",
	}
)

func Run(ctx *cli.Context) error {
	if ctx.Bool(RunPProfCPUFlag.Name) {
		defer profile.Start(profile.NoShutdownHook, profile.ProfilePath("."), profile.CPUProfile).Stop()
	}

	if ctx.NArg() != 1 {
		return fmt.Errorf("expected one binary image argument")
	}

	l := Logger(os.Stderr, slog.LevelInfo)

	image, err := os.ReadFile(ctx.Args().First())
	if err != nil {
		return fmt.Errorf("cannot read image: %w", err)
	}

	loadAddr, err := hexutil.DecodeUint64(ctx.String(RunLoadAddrFlag.Name))
	if err != nil {
		return fmt.Errorf("invalid load address: %w", err)
	}

	sys := vm.New(vm.Config{
		RamLatency: ctx.Uint64(RunRamLatencyFlag.Name),
		UartOut:    os.Stdout,
	})

	if err := sys.Load(image, loadAddr); err != nil {
		return fmt.Errorf("load failed: %w", err)
	}
	sys.CPU.Reset(loadAddr)

	l.Info("image loaded", "bytes", len(image), "addr", hexutil.Uint64(loadAddr))

	var console *Console
	if ctx.Bool(RunConsoleFlag.Name) {
		console, err = OpenConsole()
		if err != nil {
			return fmt.Errorf("cannot open console: %w", err)
		}
		defer console.Close()
	}

	maxCycles := ctx.Uint64(RunMaxCyclesFlag.Name)
	var cycles uint64
	for cycles < maxCycles && !sys.CPU.Halted() {
		sys.Step()
		cycles++
		if console != nil && cycles%1024 == 0 {
			console.Drain(sys)
		}
	}

	if !sys.CPU.Halted() {
		l.Warn("cycle cap reached before halt", "cycles", cycles)
	}
	l.Info("finished",
		"cycles", cycles,
		"halted", sys.CPU.Halted(),
		"pc", hexutil.Uint64(sys.CPU.PC()),
		"bus-reads", sys.Bus.Reads(),
		"bus-writes", sys.Bus.Writes(),
	)
	return nil
}

var RunCommand = &cli.Command{
	Name:      "run",
	Usage:     "Run a flat Aurelia binary on the virtual system",
	ArgsUsage: "<image.bin>",
	Action:    Run,
	Flags: []cli.Flag{
		RunMaxCyclesFlag,
		RunLoadAddrFlag,
		RunRamLatencyFlag,
		RunConsoleFlag,
		RunPProfCPUFlag,
	},
}
