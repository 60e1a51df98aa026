package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/nsf/termbox-go"
	"golang.org/x/term"

	"gochip8/pkg/chip8"
	"gochip8/pkg/clock"
	"gochip8/pkg/config"
	"gochip8/pkg/grid"
	"gochip8/pkg/keypad"
	"gochip8/pkg/monitor"
	"gochip8/pkg/script"
	"gochip8/pkg/utils"
)

// The display packs two pixel rows into each terminal row.
const (
	screenCols = chip8.VideoWidth
	screenRows = chip8.VideoHeight / 2
	statusRows = 2
)

// halfBlock returns the glyph showing the pixel pair (top, bottom).
func halfBlock(top, bottom bool) rune {
	switch {
	case top && bottom:
		return '█'
	case top:
		return '▀'
	case bottom:
		return '▄'
	}
	return ' '
}

// renderRows converts a framebuffer into terminal rows of half blocks.
func renderRows(frame *[chip8.VideoWidth * chip8.VideoHeight]uint32) [screenRows][screenCols]rune {
	var rows [screenRows][screenCols]rune
	for row := range screenRows {
		for x := range screenCols {
			top := frame[grid.Index(x, row*2, chip8.VideoWidth)] == chip8.PixelOn
			bottom := frame[grid.Index(x, row*2+1, chip8.VideoWidth)] == chip8.PixelOn
			rows[row][x] = halfBlock(top, bottom)
		}
	}
	return rows
}

// heldKeys turns terminal key presses into key-down spans. Terminals report
// presses (and auto-repeat) but never releases, so each press keeps its key
// down for hold frames.
type heldKeys struct {
	hold   int
	frames [chip8.NumKeys]int
}

func newHeldKeys(hold int) *heldKeys {
	return &heldKeys{hold: max(hold, 1)}
}

func (h *heldKeys) press(k int) {
	if k >= 0 && k < chip8.NumKeys {
		h.frames[k] = h.hold
	}
}

// apply writes the current key state to vm and ages every held key by one
// frame.
func (h *heldKeys) apply(vm *chip8.CPU) {
	for k := range h.frames {
		vm.SetKey(k, h.frames[k] > 0)
		if h.frames[k] > 0 {
			h.frames[k]--
		}
	}
}

type console struct {
	vm     *chip8.CPU
	clock  *clock.Clock
	keys   *heldKeys
	log    *slog.Logger
	status string
}

func (c *console) draw() {
	termbox.Clear(termbox.ColorDefault, termbox.ColorDefault)
	frame := c.vm.Frame()
	rows := renderRows(&frame)
	for y, row := range rows {
		for x, ch := range row {
			termbox.SetCell(x, y, ch, termbox.ColorWhite, termbox.ColorDefault)
		}
	}
	s := c.vm.Snapshot()
	line := fmt.Sprintf("PC=%04X I=%04X %-6s DT=%02X ST=%02X", s.PC, s.I, chip8.Mnemonic(s.Opcode), s.DelayTimer, s.SoundTimer)
	putString(0, screenRows, line)
	if c.status != "" {
		putString(0, screenRows+1, c.status)
	} else {
		putString(0, screenRows+1, "keys 1234/QWER/ASDF/ZXCV  Esc quit")
	}
	termbox.Flush()
}

func putString(x, y int, s string) {
	for _, r := range s {
		termbox.SetCell(x, y, r, termbox.ColorDefault, termbox.ColorDefault)
		x++
	}
}

// forwardEvents copies polled events to events until poll reports an
// interrupt or done is closed.
func forwardEvents(poll func() termbox.Event, events chan<- termbox.Event, done <-chan struct{}) {
	for {
		ev := poll()
		if ev.Type == termbox.EventInterrupt {
			return
		}
		select {
		case events <- ev:
		case <-done:
			return
		}
	}
}

// run drives the VM at 60 frames per second until Esc or Ctrl+C.
func (c *console) run() {
	events := make(chan termbox.Event, 16)
	done := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		forwardEvents(termbox.PollEvent, events, done)
		close(finished)
	}()
	defer func() {
		close(done)
		// Interrupt blocks until PollEvent takes it, which never happens if
		// the forwarder already left through done.
		go termbox.Interrupt()
		<-finished
	}()

	ticker := time.NewTicker(time.Second / 60)
	defer ticker.Stop()
	last := time.Now()
	for {
		select {
		case ev := <-events:
			switch {
			case ev.Type == termbox.EventError:
				c.log.Error("terminal error", "err", ev.Err)
				return
			case ev.Type != termbox.EventKey:
			case ev.Key == termbox.KeyEsc || ev.Key == termbox.KeyCtrlC:
				return
			default:
				if k, ok := keypad.FromRune(ev.Ch); ok {
					c.keys.press(k)
				}
			}
		case now := <-ticker.C:
			delta := now.Sub(last)
			last = now
			c.keys.apply(c.vm)
			if !c.vm.Halted {
				if err := c.clock.Drive(c.vm, delta); err != nil {
					c.status = err.Error()
					c.log.Error("emulation stopped", "err", err)
				}
			}
			c.draw()
		}
	}
}

func runScript(path string, vm *chip8.CPU, clk *clock.Clock, logger *slog.Logger) error {
	h := script.New(vm, clk, logger)
	if err := h.RunFile(context.Background(), path); err != nil {
		return err
	}
	fmt.Println(monitor.Capture(vm).String())
	return nil
}

func main() {
	cfg := config.Default()
	cfg.RegisterFlags(flag.CommandLine)
	scriptPath := flag.String("script", "", "run a Lua script against the ROM instead of the terminal display")
	logPath := flag.String("log", "", "write logs to this file (the terminal is taken by the display)")
	flag.Parse()
	if cfg.ROM == "" && flag.NArg() > 0 {
		cfg.ROM = flag.Arg(0)
	}
	if cfg.ROM == "" {
		fmt.Fprintln(os.Stderr, "usage: console [flags] <rom>")
		flag.PrintDefaults()
		os.Exit(2)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	fullPath, err := utils.ResolveROM(cfg.ROM)
	if err != nil {
		log.Fatalf("Bad ROM path: %v", err)
	}

	logOut := os.Stderr
	if *logPath != "" {
		f, err := os.Create(*logPath)
		if err != nil {
			log.Fatalf("Failed to open log: %v", err)
		}
		defer f.Close()
		logOut = f
	}
	logger := cfg.Logger(logOut)

	vm := chip8.NewCPU(append(cfg.CPUOptions(), chip8.WithLogger(logger))...)
	if err := vm.LoadROM(fullPath); err != nil {
		log.Fatalf("Failed to load ROM: %v", err)
	}
	clk, err := cfg.Clock()
	if err != nil {
		log.Fatal(err)
	}

	if *scriptPath != "" {
		if err := runScript(*scriptPath, vm, clk, logger); err != nil {
			log.Fatalf("Script failed: %v", err)
		}
		return
	}

	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		log.Fatal("stdout is not a terminal; use -script for headless runs")
	}
	if w, h, err := term.GetSize(fd); err == nil && (w < screenCols || h < screenRows+statusRows) {
		log.Fatalf("Terminal is %dx%d, need at least %dx%d", w, h, screenCols, screenRows+statusRows)
	}

	if err := termbox.Init(); err != nil {
		log.Fatalf("Failed to start terminal UI: %v", err)
	}
	c := &console{vm: vm, clock: clk, keys: newHeldKeys(cfg.KeyHold), log: logger}
	c.run()
	termbox.Close()
	if vm.Halted {
		fmt.Fprintln(os.Stderr, vm.Err())
	}
}
