// Package config holds the host-side settings shared by the executables.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"time"

	"gochip8/pkg/chip8"
	"gochip8/pkg/clock"
)

type Config struct {
	ROM string

	CPUHz         float64
	TimerHz       float64
	MaxFrameDelta time.Duration

	// Scale is the integer window magnification of the 64×32 display.
	Scale int
	// Panel shows the register side panel in the desktop host.
	Panel bool

	ToneHz     float64
	SampleRate int
	Mute       bool

	FontBase uint
	// Seed fixes the Cxkk random source when non-zero.
	Seed uint64
	// KeyHold is how many frames a terminal key press stays down; terminals
	// report presses but not releases.
	KeyHold int

	Trace bool
}

func Default() Config {
	return Config{
		CPUHz:         clock.DefaultCPUHz,
		TimerHz:       clock.DefaultTimerHz,
		MaxFrameDelta: clock.DefaultMaxDelta,
		Scale:         10,
		Panel:         true,
		ToneHz:        440,
		SampleRate:    44100,
		FontBase:      uint(chip8.DefaultFontBase),
		KeyHold:       6,
	}
}

// RegisterFlags binds the fields of c to flags on fs. Current values of c
// become the flag defaults.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.ROM, "rom", c.ROM, "path to the ROM image")
	fs.Float64Var(&c.CPUHz, "hz", c.CPUHz, "instructions executed per second")
	fs.Float64Var(&c.TimerHz, "timer-hz", c.TimerHz, "delay/sound timer rate")
	fs.DurationVar(&c.MaxFrameDelta, "max-delta", c.MaxFrameDelta, "longest frame time the scheduler catches up on")
	fs.IntVar(&c.Scale, "scale", c.Scale, "window pixels per CHIP-8 pixel")
	fs.BoolVar(&c.Panel, "panel", c.Panel, "show the register panel")
	fs.Float64Var(&c.ToneHz, "tone", c.ToneHz, "beeper frequency in Hz")
	fs.IntVar(&c.SampleRate, "sample-rate", c.SampleRate, "audio sample rate")
	fs.BoolVar(&c.Mute, "mute", c.Mute, "disable the beeper")
	fs.UintVar(&c.FontBase, "font-base", c.FontBase, "address of the built-in font")
	fs.Uint64Var(&c.Seed, "seed", c.Seed, "random seed for RND (0 = nondeterministic)")
	fs.IntVar(&c.KeyHold, "key-hold", c.KeyHold, "frames a terminal key stays pressed")
	fs.BoolVar(&c.Trace, "trace", c.Trace, "log every executed instruction to stderr")
}

var ErrInvalid = errors.New("invalid configuration")

func (c Config) Validate() error {
	switch {
	case c.CPUHz <= 0:
		return fmt.Errorf("%w: hz must be positive, got %v", ErrInvalid, c.CPUHz)
	case c.TimerHz <= 0:
		return fmt.Errorf("%w: timer-hz must be positive, got %v", ErrInvalid, c.TimerHz)
	case c.MaxFrameDelta <= 0:
		return fmt.Errorf("%w: max-delta must be positive, got %v", ErrInvalid, c.MaxFrameDelta)
	case c.Scale < 1:
		return fmt.Errorf("%w: scale must be at least 1, got %d", ErrInvalid, c.Scale)
	case c.ToneHz <= 0:
		return fmt.Errorf("%w: tone must be positive, got %v", ErrInvalid, c.ToneHz)
	case c.SampleRate <= 0:
		return fmt.Errorf("%w: sample-rate must be positive, got %d", ErrInvalid, c.SampleRate)
	case c.FontBase+16*chip8.FontGlyphSize > uint(chip8.StartAddress):
		return fmt.Errorf("%w: font-base 0x%X overlaps program memory", ErrInvalid, c.FontBase)
	case c.KeyHold < 1:
		return fmt.Errorf("%w: key-hold must be at least 1, got %d", ErrInvalid, c.KeyHold)
	}
	return nil
}

// Clock builds the host scheduler described by c.
func (c Config) Clock() (*clock.Clock, error) {
	return clock.New(c.CPUHz, c.TimerHz, c.MaxFrameDelta)
}

// CPUOptions translates c into interpreter options.
func (c Config) CPUOptions() []chip8.Option {
	opts := []chip8.Option{chip8.WithFontBase(uint16(c.FontBase))}
	if c.Seed != 0 {
		opts = append(opts, chip8.WithRandom(chip8.NewSeededRandom(c.Seed)))
	}
	return opts
}

// Logger returns a text logger writing to w. Trace lowers the level to debug,
// which turns on per-instruction logging in the interpreter.
func (c Config) Logger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if c.Trace {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
