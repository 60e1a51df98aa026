package main

import (
	"flag"
	"fmt"
	"image/color"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.design/x/clipboard"
	"golang.org/x/image/font/basicfont"

	"gochip8/pkg/audio"
	"gochip8/pkg/chip8"
	"gochip8/pkg/clock"
	"gochip8/pkg/config"
	"gochip8/pkg/monitor"
	"gochip8/pkg/utils"
)

const (
	panelWidth = 190
	lineHeight = 14
)

// keyBindings[k] is the host key for CHIP-8 key k (see pkg/keypad).
var keyBindings = [chip8.NumKeys]ebiten.Key{
	0x0: ebiten.KeyX,
	0x1: ebiten.KeyDigit1,
	0x2: ebiten.KeyDigit2,
	0x3: ebiten.KeyDigit3,
	0x4: ebiten.KeyQ,
	0x5: ebiten.KeyW,
	0x6: ebiten.KeyE,
	0x7: ebiten.KeyA,
	0x8: ebiten.KeyS,
	0x9: ebiten.KeyD,
	0xA: ebiten.KeyZ,
	0xB: ebiten.KeyC,
	0xC: ebiten.KeyDigit4,
	0xD: ebiten.KeyR,
	0xE: ebiten.KeyF,
	0xF: ebiten.KeyV,
}

var (
	onColor    = color.RGBA{0xE8, 0xE8, 0xD0, 0xFF}
	offColor   = color.RGBA{0x10, 0x14, 0x10, 0xFF}
	panelColor = color.RGBA{190, 190, 190, 255}
	faultColor = color.RGBA{230, 70, 70, 255}
)

// beeper is the part of audio.Player the game uses.
type beeper interface {
	Set(on bool)
	Close() error
}

type Game struct {
	vm      *chip8.CPU
	clock   *clock.Clock
	beeper  beeper
	cfg     config.Config
	log     *slog.Logger
	romPath string

	graphicsImg *ebiten.Image // reused 64×32 canvas
	last        time.Time
	paused      bool
	status      string

	// pressed reports host key state; swapped out in tests.
	pressed func(ebiten.Key) bool

	clipboardOnce sync.Once
	clipboardOK   bool
}

func NewGame(vm *chip8.CPU, clk *clock.Clock, cfg config.Config, log *slog.Logger) *Game {
	return &Game{
		vm:      vm,
		clock:   clk,
		cfg:     cfg,
		log:     log,
		romPath: cfg.ROM,
		pressed: ebiten.IsKeyPressed,
	}
}

func (g *Game) Update() error {
	now := time.Now()
	var delta time.Duration
	if !g.last.IsZero() {
		delta = now.Sub(g.last)
	}
	g.last = now

	g.handleHotkeys()
	g.frame(delta)
	return nil
}

// frame polls the keypad, runs the due cycles and ticks, then updates the
// beeper from the sound timer.
func (g *Game) frame(delta time.Duration) {
	g.pollKeys()
	if !g.paused && !g.vm.Halted {
		if err := g.clock.Drive(g.vm, delta); err != nil {
			g.status = err.Error()
			g.log.Error("emulation stopped", "err", err)
		}
	}
	if g.beeper != nil {
		g.beeper.Set(!g.paused && g.vm.SoundActive())
	}
}

func (g *Game) pollKeys() {
	for k, key := range keyBindings {
		g.vm.SetKey(k, g.pressed(key))
	}
}

func (g *Game) handleHotkeys() {
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		g.reload()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF5) {
		g.copyState()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		name := utils.ScreenshotName(g.romPath, time.Now())
		if err := g.vm.SaveScreenshot(name); err != nil {
			g.log.Error("screenshot failed", "err", err)
		} else {
			g.status = "saved " + name
		}
	}
}

func (g *Game) reload() {
	g.clock.Reset()
	g.status = ""
	if err := g.vm.LoadROM(g.romPath); err != nil {
		g.status = err.Error()
		g.log.Error("reload failed", "err", err)
	}
}

func (g *Game) copyState() {
	g.clipboardOnce.Do(func() {
		g.clipboardOK = clipboard.Init() == nil
	})
	if !g.clipboardOK {
		g.status = "clipboard unavailable"
		return
	}
	clipboard.Write(clipboard.FmtText, []byte(monitor.Capture(g.vm).String()))
	g.status = "state copied"
}

func (g *Game) drawDisplay(screen *ebiten.Image) {
	if g.graphicsImg == nil {
		g.graphicsImg = ebiten.NewImage(chip8.VideoWidth, chip8.VideoHeight)
	}
	frame := g.vm.Frame()
	g.graphicsImg.WritePixels(chip8.FrameRGBA(&frame, onColor, offColor))

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(g.cfg.Scale), float64(g.cfg.Scale))
	screen.DrawImage(g.graphicsImg, op)
}

func (g *Game) drawPanel(screen *ebiten.Image) {
	face := basicfont.Face7x13
	x := chip8.VideoWidth*g.cfg.Scale + 8
	y := lineHeight
	for _, line := range monitor.Capture(g.vm).Lines() {
		text.Draw(screen, line, face, x, y, panelColor)
		y += lineHeight
	}
	if g.paused {
		text.Draw(screen, "PAUSED", face, x, y+lineHeight, panelColor)
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.drawDisplay(screen)
	if g.cfg.Panel {
		g.drawPanel(screen)
	}
	if g.status != "" {
		ebitenutil.DebugPrintAt(screen, g.status, 4, chip8.VideoHeight*g.cfg.Scale-16)
	}
	if g.vm.Halted && g.cfg.Panel {
		text.Draw(screen, "press Backspace to restart", basicfont.Face7x13,
			chip8.VideoWidth*g.cfg.Scale+8, g.panelHeight()-lineHeight, faultColor)
	}
}

func (g *Game) panelHeight() int {
	return (len(monitor.Capture(g.vm).Lines()) + 4) * lineHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	w := chip8.VideoWidth * g.cfg.Scale
	h := chip8.VideoHeight * g.cfg.Scale
	if g.cfg.Panel {
		w += panelWidth
		h = max(h, g.panelHeight())
	}
	return w, h
}

func main() {
	cfg := config.Default()
	cfg.RegisterFlags(flag.CommandLine)
	flag.Parse()
	if cfg.ROM == "" && flag.NArg() > 0 {
		cfg.ROM = flag.Arg(0)
	}
	if cfg.ROM == "" {
		fmt.Fprintln(os.Stderr, "usage: desktop [flags] <rom>")
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
	cfg.ROM = fullPath

	logger := cfg.Logger(os.Stderr)
	vm := chip8.NewCPU(append(cfg.CPUOptions(), chip8.WithLogger(logger))...)
	if err := vm.LoadROM(cfg.ROM); err != nil {
		log.Fatalf("Failed to load ROM: %v", err)
	}

	clk, err := cfg.Clock()
	if err != nil {
		log.Fatal(err)
	}

	game := NewGame(vm, clk, cfg, logger)
	if !cfg.Mute {
		player, err := audio.NewPlayer(cfg.SampleRate, cfg.ToneHz)
		if err != nil {
			logger.Warn("audio disabled", "err", err)
		} else {
			game.beeper = player
			defer player.Close()
		}
	}

	w, h := game.Layout(0, 0)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowTitle("GoChip8 - " + filepath.Base(cfg.ROM))

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
