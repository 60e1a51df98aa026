// Package script drives an interpreter from Lua for headless automation:
// feeding input, running frames and asserting on machine state.
package script

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"

	"gochip8/pkg/chip8"
	"gochip8/pkg/clock"
)

// Harness exposes one CPU to Lua scripts. Each frame call advances the clock
// by FrameTime.
type Harness struct {
	CPU       *chip8.CPU
	Clock     *clock.Clock
	FrameTime time.Duration
	Log       *slog.Logger
}

func New(cpu *chip8.CPU, clk *clock.Clock, log *slog.Logger) *Harness {
	if clk == nil {
		clk = clock.Default()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Harness{
		CPU:       cpu,
		Clock:     clk,
		FrameTime: time.Second / 60,
		Log:       log,
	}
}

// Run executes source. Lua runtime errors, including failed assert calls and
// interpreter faults raised by step or frame, are returned as errors.
func (h *Harness) Run(ctx context.Context, source string) error {
	L := h.newState(ctx)
	defer L.Close()
	return L.DoString(source)
}

// RunFile executes the Lua file at path.
func (h *Harness) RunFile(ctx context.Context, path string) error {
	L := h.newState(ctx)
	defer L.Close()
	return L.DoFile(path)
}

func (h *Harness) newState(ctx context.Context) *lua.LState {
	L := lua.NewState()
	if ctx != nil {
		L.SetContext(ctx)
	}
	for name, fn := range map[string]lua.LGFunction{
		"step":       h.luaStep,
		"tick":       h.luaTick,
		"frame":      h.luaFrame,
		"reset":      h.luaReset,
		"key":        h.luaKey,
		"pc":         h.getter(func() int { return int(h.CPU.PC) }),
		"i":          h.getter(func() int { return int(h.CPU.I) }),
		"sp":         h.getter(func() int { return int(h.CPU.SP) }),
		"dt":         h.getter(func() int { return int(h.CPU.DelayTimer) }),
		"st":         h.getter(func() int { return int(h.CPU.SoundTimer) }),
		"opcode":     h.getter(func() int { return int(h.CPU.Opcode) }),
		"v":          h.luaV,
		"peek":       h.luaPeek,
		"pixel":      h.luaPixel,
		"halted":     h.luaHalted,
		"screenshot": h.luaScreenshot,
		"log":        h.luaLog,
	} {
		L.SetGlobal(name, L.NewFunction(fn))
	}
	return L
}

func (h *Harness) getter(get func() int) lua.LGFunction {
	return func(L *lua.LState) int {
		L.Push(lua.LNumber(get()))
		return 1
	}
}

// step([n]) executes n instructions (default 1).
func (h *Harness) luaStep(L *lua.LState) int {
	n := L.OptInt(1, 1)
	for i := 0; i < n; i++ {
		if err := h.CPU.Step(); err != nil {
			L.RaiseError("step: %v", err)
			return 0
		}
	}
	return 0
}

// tick([n]) decrements the timers n times (default 1).
func (h *Harness) luaTick(L *lua.LState) int {
	n := L.OptInt(1, 1)
	for i := 0; i < n; i++ {
		h.CPU.TickTimers()
	}
	return 0
}

// frame([n]) runs n host frames of clock-scheduled execution.
func (h *Harness) luaFrame(L *lua.LState) int {
	n := L.OptInt(1, 1)
	for i := 0; i < n; i++ {
		if err := h.Clock.Drive(h.CPU, h.FrameTime); err != nil {
			L.RaiseError("frame: %v", err)
			return 0
		}
	}
	return 0
}

// reset() re-initializes the machine. ROM contents are lost.
func (h *Harness) luaReset(L *lua.LState) int {
	h.CPU.Reset()
	h.Clock.Reset()
	return 0
}

// key(k, down)
func (h *Harness) luaKey(L *lua.LState) int {
	k := L.CheckInt(1)
	down := L.OptBool(2, true)
	if k < 0 || k >= chip8.NumKeys {
		L.ArgError(1, "key must be 0-15")
		return 0
	}
	h.CPU.SetKey(k, down)
	return 0
}

func (h *Harness) luaV(L *lua.LState) int {
	x := L.CheckInt(1)
	if x < 0 || x > 0xF {
		L.ArgError(1, "register must be 0-15")
		return 0
	}
	L.Push(lua.LNumber(h.CPU.Registers[x]))
	return 1
}

func (h *Harness) luaPeek(L *lua.LState) int {
	addr := L.CheckInt(1)
	L.Push(lua.LNumber(h.CPU.ReadByte(uint16(addr))))
	return 1
}

func (h *Harness) luaPixel(L *lua.LState) int {
	x := L.CheckInt(1)
	y := L.CheckInt(2)
	L.Push(lua.LBool(h.CPU.Pixel(x, y)))
	return 1
}

func (h *Harness) luaHalted(L *lua.LState) int {
	L.Push(lua.LBool(h.CPU.Halted))
	return 1
}

func (h *Harness) luaScreenshot(L *lua.LState) int {
	path := L.CheckString(1)
	if err := h.CPU.SaveScreenshot(path); err != nil {
		L.RaiseError("screenshot: %v", err)
	}
	return 0
}

func (h *Harness) luaLog(L *lua.LState) int {
	parts := make([]string, 0, L.GetTop())
	for i := 1; i <= L.GetTop(); i++ {
		parts = append(parts, L.Get(i).String())
	}
	h.Log.Info(strings.Join(parts, " "), "pc", fmt.Sprintf("0x%04X", h.CPU.PC))
	return 0
}
