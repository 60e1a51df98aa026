//go:build !js

package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gochip8/pkg/chip8"
	"gochip8/pkg/config"
	"gochip8/pkg/monitor"
	"gochip8/pkg/utils"
)

func main() {
	cfg := config.Default()
	cfg.RegisterFlags(flag.CommandLine)
	cycles := flag.Int("cycles", 1000, "number of instructions to execute")
	screenshot := flag.String("screenshot", "", "write the final framebuffer to this PNG file")
	dump := flag.Bool("dump", false, "print the machine state after the run")
	flag.Parse()

	if cfg.ROM == "" && flag.NArg() > 0 {
		cfg.ROM = flag.Arg(0)
	}
	if cfg.ROM == "" {
		fmt.Fprintln(os.Stderr, "nothing to do: provide -rom <file> or a ROM path argument")
		flag.Usage()
		os.Exit(2)
	}
	if *cycles < 0 {
		fmt.Fprintln(os.Stderr, "-cycles must not be negative")
		os.Exit(2)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	fullPath, err := utils.ResolveROM(cfg.ROM)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bad ROM path %q: %v\n", cfg.ROM, err)
		os.Exit(1)
	}
	cfg.ROM = fullPath

	logger := cfg.Logger(os.Stderr)
	if err := runROM(os.Stdout, cfg, logger, *cycles, *screenshot, *dump); err != nil {
		fmt.Fprintf(os.Stderr, "run failed for %q: %v\n", cfg.ROM, err)
		os.Exit(1)
	}
}

// runROM executes cycles instructions of the configured ROM headlessly. Every
// timerEvery instructions the timers tick once, matching the configured
// CPU/timer ratio.
func runROM(out io.Writer, cfg config.Config, logger *slog.Logger, cycles int, screenshot string, dump bool) error {
	vm := chip8.NewCPU(append(cfg.CPUOptions(), chip8.WithLogger(logger))...)
	if err := vm.LoadROM(cfg.ROM); err != nil {
		return err
	}

	timerEvery := max(int(cfg.CPUHz/cfg.TimerHz), 1)
	var runErr error
	executed := 0
	for executed < cycles {
		if err := vm.Step(); err != nil {
			runErr = err
			break
		}
		executed++
		if executed%timerEvery == 0 {
			vm.TickTimers()
		}
	}

	fmt.Fprintf(out, "run complete (%s): executed=%d PC=0x%04X I=0x%04X SP=%d halted=%t\n",
		cfg.ROM, executed, vm.PC, vm.I, vm.SP, vm.Halted)
	if dump {
		fmt.Fprintln(out, monitor.Capture(vm).String())
	}
	if screenshot != "" {
		if err := vm.SaveScreenshot(screenshot); err != nil {
			return fmt.Errorf("screenshot: %w", err)
		}
	}
	return runErr
}
