package chip8

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
)

const (
	MemorySize = 4096
	StackSize  = 16
	NumKeys    = 16

	VideoWidth  = 64
	VideoHeight = 32

	StartAddress    uint16 = 0x200
	DefaultFontBase uint16 = 0x050

	// PixelOn is the value of a lit framebuffer cell. Unlit cells are zero.
	PixelOn uint32 = 0xFFFFFFFF

	addrMask = MemorySize - 1
)

var (
	ErrROMNotFound    = errors.New("rom not found")
	ErrStackOverflow  = errors.New("stack overflow")
	ErrStackUnderflow = errors.New("stack underflow")
	ErrHalted         = errors.New("cpu halted")
)

type CPU struct {
	Registers [16]byte
	Stack     [StackSize]uint16
	Keypad    [NumKeys]bool
	Video     [VideoWidth * VideoHeight]uint32

	PC     uint16
	I      uint16
	Opcode uint16
	SP     byte

	DelayTimer byte
	SoundTimer byte

	// Halted is set after a stack fault. Step is a no-op until Reset.
	Halted bool
	fault  error

	memory   [MemorySize]byte
	fontBase uint16
	rng      RandomSource
	log      *slog.Logger
}

// Option configures a CPU at construction time.
type Option func(*CPU)

// WithRandom replaces the source used by Cxkk.
func WithRandom(r RandomSource) Option {
	return func(c *CPU) {
		c.rng = r
	}
}

// WithLogger enables instruction tracing at debug level and fault reports at
// warn level.
func WithLogger(log *slog.Logger) Option {
	return func(c *CPU) {
		c.log = log
	}
}

// WithFontBase moves the built-in font. The font must fit below StartAddress.
func WithFontBase(base uint16) Option {
	return func(c *CPU) {
		if int(base)+len(fontset) <= int(StartAddress) {
			c.fontBase = base
		}
	}
}

// NewCPU creates a CPU in its reset state.
func NewCPU(opts ...Option) *CPU {
	c := &CPU{
		fontBase: DefaultFontBase,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.rng == nil {
		c.rng = NewRandom()
	}
	if c.log == nil {
		c.log = slog.New(slog.DiscardHandler)
	}
	c.Reset()
	return c
}

// Reset clears all machine state, reinstalls the font and points PC at the
// program start. The random source and logger are kept.
func (c *CPU) Reset() {
	c.memory = [MemorySize]byte{}
	c.Registers = [16]byte{}
	c.Stack = [StackSize]uint16{}
	c.Keypad = [NumKeys]bool{}
	c.Video = [VideoWidth * VideoHeight]uint32{}

	c.PC = StartAddress
	c.I = 0
	c.Opcode = 0
	c.SP = 0
	c.DelayTimer = 0
	c.SoundTimer = 0
	c.Halted = false
	c.fault = nil

	copy(c.memory[c.fontBase:], fontset[:])
}

// LoadROM resets the machine and loads the file at path. A missing or
// unreadable file yields an error wrapping ErrROMNotFound and leaves the
// machine in its reset state.
func (c *CPU) LoadROM(path string) error {
	f, err := os.Open(path)
	if err != nil {
		c.Reset()
		return romError(path, err)
	}
	defer f.Close()

	if err := c.LoadROMFrom(f); err != nil {
		return romError(path, err)
	}
	return nil
}

// LoadROMFrom resets the machine and copies everything r yields into memory
// starting at StartAddress. Bytes past the end of memory are dropped.
func (c *CPU) LoadROMFrom(r io.Reader) error {
	c.Reset()
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrROMNotFound, err)
	}
	c.copyROM(data)
	return nil
}

// LoadROMBytes resets the machine and copies rom into memory. Excess bytes
// are dropped.
func (c *CPU) LoadROMBytes(rom []byte) {
	c.Reset()
	c.copyROM(rom)
}

func (c *CPU) copyROM(rom []byte) {
	n := copy(c.memory[StartAddress:], rom)
	if n < len(rom) {
		c.log.Debug("rom truncated", "size", len(rom), "loaded", n)
	}
}

func romError(path string, err error) error {
	if errors.Is(err, ErrROMNotFound) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, ErrROMNotFound)
	}
	return fmt.Errorf("load %s: %w: %w", path, ErrROMNotFound, err)
}

// Step fetches, decodes and executes one instruction. It never touches the
// timers. A non-nil error means the CPU has halted on a stack fault.
func (c *CPU) Step() error {
	if c.Halted {
		return fmt.Errorf("%w: %w", ErrHalted, c.fault)
	}

	c.Opcode = uint16(c.memory[c.PC&addrMask])<<8 | uint16(c.memory[(c.PC+1)&addrMask])
	c.PC += 2

	if c.log.Enabled(context.Background(), slog.LevelDebug) {
		c.log.Debug("exec",
			"pc", fmt.Sprintf("0x%04X", c.PC-2),
			"opcode", fmt.Sprintf("0x%04X", c.Opcode),
			"instr", Mnemonic(c.Opcode),
		)
	}

	mainTable[c.Opcode>>12](c)

	if c.fault != nil {
		c.Halted = true
		c.PC -= 2
		c.log.Warn("cpu halted",
			"pc", fmt.Sprintf("0x%04X", c.PC),
			"opcode", fmt.Sprintf("0x%04X", c.Opcode),
			"err", c.fault,
		)
		return c.fault
	}
	return nil
}

// TickTimers decrements both timers once. Hosts call it at 60 Hz.
func (c *CPU) TickTimers() {
	if c.DelayTimer > 0 {
		c.DelayTimer--
	}
	if c.SoundTimer > 0 {
		c.SoundTimer--
	}
}

// SetKey records the state of keypad key index. Indices outside 0x0-0xF are
// ignored.
func (c *CPU) SetKey(index int, pressed bool) {
	if index < 0 || index >= NumKeys {
		return
	}
	c.Keypad[index] = pressed
}

// SoundActive reports whether the tone should be playing.
func (c *CPU) SoundActive() bool {
	return c.SoundTimer > 0
}

// Err returns the fault that halted the CPU, if any.
func (c *CPU) Err() error {
	return c.fault
}

func (c *CPU) FontBase() uint16 {
	return c.fontBase
}

// ReadByte returns the memory byte at addr, wrapped into the 4 KB space.
func (c *CPU) ReadByte(addr uint16) byte {
	return c.memory[addr&addrMask]
}

// WriteByte stores val at addr, wrapped into the 4 KB space.
func (c *CPU) WriteByte(addr uint16, val byte) {
	c.memory[addr&addrMask] = val
}

// Memory returns a copy of the full address space.
func (c *CPU) Memory() []byte {
	m := make([]byte, MemorySize)
	copy(m, c.memory[:])
	return m
}

// Pixel reports whether the framebuffer cell at (x, y) is lit. Coordinates
// outside the screen are unlit.
func (c *CPU) Pixel(x, y int) bool {
	if x < 0 || x >= VideoWidth || y < 0 || y >= VideoHeight {
		return false
	}
	return c.Video[y*VideoWidth+x] == PixelOn
}
