package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/aurelia-systems/aurelia/cmd"
)

func main() {
	app := cli.NewApp()
	app.Name = "aurelia"
	app.Usage = "Aurelia virtual system-on-chip tool"
	app.Description = "Assembles Aurelia programs and runs them on the cycle-accurate virtual SoC"
	app.Commands = []*cli.Command{
		cmd.AsmCommand,
		cmd.DisasmCommand,
		cmd.RunCommand,
	}
	ctx, cancel := context.WithCancel(context.Background())

	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		for {
			<-c
			cancel()
			fmt.Println("\r\nExiting...")
		}
	}()

	err := app.RunContext(ctx, os.Args)
	if err != nil {
		if errors.Is(err, ctx.Err()) {
			_, _ = fmt.Fprintf(os.Stderr, "command interrupted")
			os.Exit(130)
		} else {
			_, _ = fmt.Fprintf(os.Stderr, "error: %v", err)
			os.Exit(1)
		}
	}
}
