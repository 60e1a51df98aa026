//go:build headless

package audio

// Player tracks the tone state without an audio device.
type Player struct {
	tone *Tone
}

func NewPlayer(sampleRate int, freq float64) (*Player, error) {
	return &Player{tone: NewTone(sampleRate, freq)}, nil
}

func (p *Player) Set(on bool) {
	p.tone.SetOn(on)
}

func (p *Player) Playing() bool {
	return p.tone.On()
}

func (p *Player) Close() error {
	p.tone.SetOn(false)
	return nil
}
