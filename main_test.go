package main

import (
	"bytes"
	"errors"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gochip8/pkg/chip8"
	"gochip8/pkg/config"
)

func writeROM(t *testing.T, rom ...byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.ch8")
	if err := os.WriteFile(path, rom, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func testConfig(rom string) config.Config {
	cfg := config.Default()
	cfg.ROM = rom
	return cfg
}

func TestRunROMDrawsAndDumps(t *testing.T) {
	rom := writeROM(t,
		0x60, 0x0A, // LD V0, 0xA
		0xF0, 0x29, // LD F, V0
		0xD1, 0x15, // DRW V1, V1, 5
		0x12, 0x06, // JP 0x206
	)
	shot := filepath.Join(t.TempDir(), "out.png")

	var out bytes.Buffer
	discard := slog.New(slog.DiscardHandler)
	if err := runROM(&out, testConfig(rom), discard, 10, shot, true); err != nil {
		t.Fatalf("runROM: %v", err)
	}
	if !strings.Contains(out.String(), "executed=10") {
		t.Errorf("summary missing cycle count:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "V0=0A") {
		t.Errorf("dump missing registers:\n%s", out.String())
	}

	f, err := os.Open(shot)
	if err != nil {
		t.Fatalf("screenshot not written: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode screenshot: %v", err)
	}
	if b := img.Bounds(); b.Dx() != chip8.VideoWidth || b.Dy() != chip8.VideoHeight {
		t.Errorf("screenshot size %dx%d", b.Dx(), b.Dy())
	}
	// Top row of the "A" glyph is 0xF0.
	if r, _, _, _ := img.At(0, 0).RGBA(); r == 0 {
		t.Error("pixel (0,0) should be lit")
	}
}

func TestRunROMReportsFault(t *testing.T) {
	rom := writeROM(t, 0x00, 0xEE) // RET with empty stack
	var out bytes.Buffer
	err := runROM(&out, testConfig(rom), slog.New(slog.DiscardHandler), 5, "", false)
	if !errors.Is(err, chip8.ErrStackUnderflow) {
		t.Fatalf("expected ErrStackUnderflow, got %v", err)
	}
	if !strings.Contains(out.String(), "executed=0") || !strings.Contains(out.String(), "halted=true") {
		t.Errorf("unexpected summary: %s", out.String())
	}
}

func TestRunROMMissingFile(t *testing.T) {
	var out bytes.Buffer
	err := runROM(&out, testConfig(filepath.Join(t.TempDir(), "nope.ch8")), slog.New(slog.DiscardHandler), 1, "", false)
	if !errors.Is(err, chip8.ErrROMNotFound) {
		t.Fatalf("expected ErrROMNotFound, got %v", err)
	}
}
