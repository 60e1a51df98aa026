// Package audio produces the single beep CHIP-8 programs control through the
// sound timer.
package audio

import (
	"encoding/binary"
	"math"
	"sync/atomic"
)

const (
	DefaultToneHz    = 440.0
	DefaultAmplitude = 0.5
	bytesPerSample   = 4
)

// Tone is an endless mono float32LE sine stream. While off it yields
// silence; the phase keeps running so toggling does not click.
type Tone struct {
	on        atomic.Bool
	step      float64
	phase     float64
	amplitude float32
}

func NewTone(sampleRate int, freq float64) *Tone {
	if freq <= 0 {
		freq = DefaultToneHz
	}
	return &Tone{
		step:      2 * math.Pi * freq / float64(sampleRate),
		amplitude: DefaultAmplitude,
	}
}

func (t *Tone) SetOn(on bool) { t.on.Store(on) }
func (t *Tone) On() bool      { return t.on.Load() }

// Read fills p with whole samples. A trailing partial sample slot is zeroed.
func (t *Tone) Read(p []byte) (int, error) {
	on := t.on.Load()
	n := len(p) / bytesPerSample
	for i := 0; i < n; i++ {
		var v float32
		if on {
			v = float32(math.Sin(t.phase)) * t.amplitude
		}
		t.phase += t.step
		if t.phase >= 2*math.Pi {
			t.phase -= 2 * math.Pi
		}
		binary.LittleEndian.PutUint32(p[i*bytesPerSample:], math.Float32bits(v))
	}
	clear(p[n*bytesPerSample:])
	return len(p), nil
}
