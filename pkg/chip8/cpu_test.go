package chip8

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/iotest"
)

// loadProgram loads big-endian instruction words at StartAddress.
func loadProgram(c *CPU, words ...uint16) {
	rom := make([]byte, 0, len(words)*2)
	for _, w := range words {
		rom = append(rom, byte(w>>8), byte(w))
	}
	c.LoadROMBytes(rom)
}

// stepN executes n instructions and fails the test on the first error.
func stepN(t *testing.T, c *CPU, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if err := c.Step(); err != nil {
			t.Fatalf("Step %d: unexpected error: %v", i, err)
		}
	}
}

func TestResetState(t *testing.T) {
	c := NewCPU()
	c.Registers[3] = 0x42
	c.SoundTimer = 9
	c.Keypad[7] = true
	c.Video[10] = PixelOn
	c.Reset()
	c.Reset()

	if c.PC != StartAddress {
		t.Errorf("PC: expected 0x%04X, got 0x%04X", StartAddress, c.PC)
	}
	if c.Registers[3] != 0 || c.SoundTimer != 0 || c.DelayTimer != 0 {
		t.Errorf("registers/timers not cleared: V3=%d DT=%d ST=%d", c.Registers[3], c.DelayTimer, c.SoundTimer)
	}
	if c.Keypad[7] {
		t.Error("keypad not cleared")
	}
	if c.Video[10] != 0 {
		t.Error("video not cleared")
	}
	for i, b := range fontset {
		if got := c.ReadByte(DefaultFontBase + uint16(i)); got != b {
			t.Fatalf("font byte %d: expected 0x%02X, got 0x%02X", i, b, got)
		}
	}
}

func TestFontBaseOption(t *testing.T) {
	c := NewCPU(WithFontBase(0x000))
	if c.FontBase() != 0x000 {
		t.Fatalf("FontBase: expected 0x000, got 0x%03X", c.FontBase())
	}
	if c.ReadByte(0x000) != 0xF0 {
		t.Errorf("font not installed at 0x000")
	}

	// A base that would overlap program space is ignored.
	c = NewCPU(WithFontBase(0x1D0))
	if c.FontBase() != DefaultFontBase {
		t.Errorf("FontBase: expected default, got 0x%03X", c.FontBase())
	}
}

func TestLoadROMBytes(t *testing.T) {
	c := NewCPU()
	c.LoadROMBytes([]byte{0xAB})
	if got := c.ReadByte(0x200); got != 0xAB {
		t.Errorf("memory[0x200]: expected 0xAB, got 0x%02X", got)
	}
	if got := c.ReadByte(0x201); got != 0x00 {
		t.Errorf("memory[0x201]: expected 0x00, got 0x%02X", got)
	}
}

func TestLoadROMTruncates(t *testing.T) {
	room := MemorySize - int(StartAddress)
	rom := bytes.Repeat([]byte{0x11}, room+64)
	rom[room-1] = 0x77

	c := NewCPU()
	if err := c.LoadROMFrom(bytes.NewReader(rom)); err != nil {
		t.Fatalf("LoadROMFrom: unexpected error: %v", err)
	}
	if got := c.ReadByte(MemorySize - 1); got != 0x77 {
		t.Errorf("last byte: expected 0x77, got 0x%02X", got)
	}
	// Nothing wrapped around into the font area.
	if got := c.ReadByte(DefaultFontBase); got != fontset[0] {
		t.Errorf("font overwritten: got 0x%02X", got)
	}
}

func TestLoadROMFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.ch8")
	if err := os.WriteFile(path, []byte{0x60, 0x2A}, 0o644); err != nil {
		t.Fatal(err)
	}

	c := NewCPU()
	c.Registers[0] = 0x99
	if err := c.LoadROM(path); err != nil {
		t.Fatalf("LoadROM: %v", err)
	}
	if c.Registers[0] != 0 {
		t.Errorf("LoadROM did not reset registers")
	}
	stepN(t, c, 1)
	if c.Registers[0] != 0x2A {
		t.Errorf("V0: expected 0x2A, got 0x%02X", c.Registers[0])
	}
}

func TestLoadROMNotFound(t *testing.T) {
	c := NewCPU()
	c.PC = 0x300
	err := c.LoadROM(filepath.Join(t.TempDir(), "missing.ch8"))
	if !errors.Is(err, ErrROMNotFound) {
		t.Fatalf("expected ErrROMNotFound, got %v", err)
	}
	if c.PC != StartAddress {
		t.Errorf("expected reset state after failed load, PC=0x%04X", c.PC)
	}
}

func TestLoadROMFromReadError(t *testing.T) {
	c := NewCPU()
	err := c.LoadROMFrom(iotest.ErrReader(errors.New("boom")))
	if !errors.Is(err, ErrROMNotFound) {
		t.Fatalf("expected ErrROMNotFound, got %v", err)
	}
}

func TestStepDoesNotTickTimers(t *testing.T) {
	c := NewCPU()
	loadProgram(c, 0x1200) // JP 0x200
	c.DelayTimer = 5
	c.SoundTimer = 5
	stepN(t, c, 10)
	if c.DelayTimer != 5 || c.SoundTimer != 5 {
		t.Errorf("timers changed by Step: DT=%d ST=%d", c.DelayTimer, c.SoundTimer)
	}
}

func TestTickTimers(t *testing.T) {
	c := NewCPU()
	c.DelayTimer = 2
	c.SoundTimer = 1

	c.TickTimers()
	if c.DelayTimer != 1 || c.SoundTimer != 0 {
		t.Fatalf("after 1 tick: DT=%d ST=%d", c.DelayTimer, c.SoundTimer)
	}
	if c.SoundActive() {
		t.Error("SoundActive: expected false with ST=0")
	}
	c.TickTimers()
	c.TickTimers()
	if c.DelayTimer != 0 || c.SoundTimer != 0 {
		t.Errorf("timers went below zero: DT=%d ST=%d", c.DelayTimer, c.SoundTimer)
	}
}

func TestSetKeyBounds(t *testing.T) {
	c := NewCPU()
	c.SetKey(-1, true)
	c.SetKey(16, true)
	for i, k := range c.Keypad {
		if k {
			t.Errorf("key %X set by out-of-range SetKey", i)
		}
	}
	c.SetKey(0xF, true)
	if !c.Keypad[0xF] {
		t.Error("key F not set")
	}
	c.SetKey(0xF, false)
	if c.Keypad[0xF] {
		t.Error("key F not released")
	}
}

func TestSubroutineRoundTrip(t *testing.T) {
	c := NewCPU()
	loadProgram(c,
		0x2206, // 0x200: CALL 0x206
		0x6001, // 0x202: LD V0, 1
		0x1204, // 0x204: JP 0x204
		0x6105, // 0x206: LD V1, 5
		0x00EE, // 0x208: RET
	)

	stepN(t, c, 1)
	if c.PC != 0x206 || c.SP != 1 || c.Stack[0] != 0x202 {
		t.Fatalf("after CALL: PC=0x%04X SP=%d Stack[0]=0x%04X", c.PC, c.SP, c.Stack[0])
	}
	stepN(t, c, 2)
	if c.PC != 0x202 {
		t.Errorf("after RET: expected PC=0x202, got 0x%04X", c.PC)
	}
	if c.SP != 0 {
		t.Errorf("after RET: expected SP=0, got %d", c.SP)
	}
	if c.Registers[1] != 5 {
		t.Errorf("subroutine body not executed")
	}
}

func TestStackOverflowHalts(t *testing.T) {
	c := NewCPU()
	loadProgram(c, 0x2200) // CALL 0x200, forever

	stepN(t, c, StackSize)
	if c.SP != StackSize {
		t.Fatalf("SP: expected %d, got %d", StackSize, c.SP)
	}

	err := c.Step()
	if !errors.Is(err, ErrStackOverflow) {
		t.Fatalf("expected ErrStackOverflow, got %v", err)
	}
	if !c.Halted {
		t.Error("expected Halted after overflow")
	}
	if c.PC != 0x200 {
		t.Errorf("PC should point at the faulting CALL, got 0x%04X", c.PC)
	}
	if c.SP != StackSize {
		t.Errorf("SP changed by faulting CALL: %d", c.SP)
	}

	err = c.Step()
	if !errors.Is(err, ErrHalted) || !errors.Is(err, ErrStackOverflow) {
		t.Errorf("expected halted overflow error, got %v", err)
	}

	c.Reset()
	if c.Halted || c.Err() != nil {
		t.Error("Reset did not clear the fault")
	}
}

func TestStackUnderflowHalts(t *testing.T) {
	c := NewCPU()
	loadProgram(c, 0x00EE)
	err := c.Step()
	if !errors.Is(err, ErrStackUnderflow) {
		t.Fatalf("expected ErrStackUnderflow, got %v", err)
	}
	if c.SP != 0 || c.PC != 0x200 {
		t.Errorf("state changed by faulting RET: SP=%d PC=0x%04X", c.SP, c.PC)
	}
}

func TestFetchWrapsAtEndOfMemory(t *testing.T) {
	c := NewCPU()
	c.WriteByte(0xFFF, 0x60)
	c.WriteByte(0x000, 0x07) // wraps: LD V0, 0x07
	c.PC = 0xFFF
	stepN(t, c, 1)
	if c.Opcode != 0x6007 {
		t.Errorf("Opcode: expected 0x6007, got 0x%04X", c.Opcode)
	}
	if c.Registers[0] != 0x07 {
		t.Errorf("V0: expected 0x07, got 0x%02X", c.Registers[0])
	}
}

func TestMemoryIsCopied(t *testing.T) {
	c := NewCPU()
	m := c.Memory()
	m[0x200] = 0xFF
	if c.ReadByte(0x200) != 0 {
		t.Error("Memory() exposed internal storage")
	}
}

func TestPixelOutOfRange(t *testing.T) {
	c := NewCPU()
	for i := range c.Video {
		c.Video[i] = PixelOn
	}
	if c.Pixel(-1, 0) || c.Pixel(64, 0) || c.Pixel(0, 32) {
		t.Error("Pixel reported lit outside the screen")
	}
	if !c.Pixel(63, 31) {
		t.Error("Pixel(63, 31): expected lit")
	}
}

func TestSnapshotIsDetached(t *testing.T) {
	c := NewCPU()
	loadProgram(c, 0x6A42)
	stepN(t, c, 1)
	s := c.Snapshot()
	c.Registers[0xA] = 0
	if s.Registers[0xA] != 0x42 || s.Opcode != 0x6A42 || s.PC != 0x202 {
		t.Errorf("unexpected snapshot: %+v", s)
	}
}
