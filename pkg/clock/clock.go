// Package clock converts host frame time into interpreter cycles and timer
// ticks using two independent fixed-period accumulators.
package clock

import (
	"errors"
	"time"
)

const (
	DefaultCPUHz    = 700.0
	DefaultTimerHz  = 60.0
	DefaultMaxDelta = 100 * time.Millisecond
)

var ErrInvalidRate = errors.New("clock rate must be positive")

// Machine is the part of the interpreter a host loop drives.
type Machine interface {
	Step() error
	TickTimers()
}

type Clock struct {
	cpuPeriod   time.Duration
	timerPeriod time.Duration
	maxDelta    time.Duration

	cpuAcc   time.Duration
	timerAcc time.Duration
}

// New returns a Clock running the CPU at cpuHz and the timers at timerHz.
// A single Advance never accounts for more than maxDelta of elapsed time, so
// a stalled host does not try to catch up on the backlog.
func New(cpuHz, timerHz float64, maxDelta time.Duration) (*Clock, error) {
	if cpuHz <= 0 || timerHz <= 0 {
		return nil, ErrInvalidRate
	}
	if maxDelta <= 0 {
		maxDelta = DefaultMaxDelta
	}
	return &Clock{
		cpuPeriod:   time.Duration(float64(time.Second) / cpuHz),
		timerPeriod: time.Duration(float64(time.Second) / timerHz),
		maxDelta:    maxDelta,
	}, nil
}

// Default returns a 700 Hz / 60 Hz clock capped at 100 ms per frame.
func Default() *Clock {
	c, _ := New(DefaultCPUHz, DefaultTimerHz, DefaultMaxDelta)
	return c
}

func (c *Clock) CPUPeriod() time.Duration   { return c.cpuPeriod }
func (c *Clock) TimerPeriod() time.Duration { return c.timerPeriod }

// Advance adds delta to both accumulators and returns how many CPU cycles and
// timer ticks are now due. Negative deltas count as zero.
func (c *Clock) Advance(delta time.Duration) (cycles, ticks int) {
	if delta < 0 {
		delta = 0
	}
	if delta > c.maxDelta {
		delta = c.maxDelta
	}
	c.cpuAcc += delta
	c.timerAcc += delta

	cycles = int(c.cpuAcc / c.cpuPeriod)
	c.cpuAcc -= time.Duration(cycles) * c.cpuPeriod

	ticks = int(c.timerAcc / c.timerPeriod)
	c.timerAcc -= time.Duration(ticks) * c.timerPeriod
	return cycles, ticks
}

// Drive advances the clock by delta and runs the due cycles and ticks on m.
// Cycles run before ticks. The first Step error stops the frame and is
// returned; ticks still run so timers keep their real-time decay.
func (c *Clock) Drive(m Machine, delta time.Duration) error {
	cycles, ticks := c.Advance(delta)
	var err error
	for i := 0; i < cycles; i++ {
		if err = m.Step(); err != nil {
			break
		}
	}
	for i := 0; i < ticks; i++ {
		m.TickTimers()
	}
	return err
}

// Reset discards any accumulated partial periods.
func (c *Clock) Reset() {
	c.cpuAcc = 0
	c.timerAcc = 0
}
