//go:build !headless

package audio

import (
	"sync"

	"github.com/ebitengine/oto/v3"
)

// Player plays a Tone through the default output device.
type Player struct {
	tone   *Tone
	ctx    *oto.Context
	player *oto.Player
	mutex  sync.Mutex
}

func NewPlayer(sampleRate int, freq float64) (*Player, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-ready

	p := &Player{
		tone: NewTone(sampleRate, freq),
		ctx:  ctx,
	}
	p.player = ctx.NewPlayer(p.tone)
	p.player.Play()
	return p, nil
}

// Set gates the tone. Repeated calls with the same value are no-ops.
func (p *Player) Set(on bool) {
	p.tone.SetOn(on)
}

func (p *Player) Playing() bool {
	return p.tone.On()
}

func (p *Player) Close() error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.tone.SetOn(false)
	if p.player == nil {
		return nil
	}
	err := p.player.Close()
	p.player = nil
	return err
}
