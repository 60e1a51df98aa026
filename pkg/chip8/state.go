package chip8

// State is a value copy of the programmer-visible machine state, safe to hand
// to another goroutine.
type State struct {
	PC         uint16
	I          uint16
	Opcode     uint16
	SP         byte
	DelayTimer byte
	SoundTimer byte
	Registers  [16]byte
	Stack      [StackSize]uint16
	Keypad     [NumKeys]bool
	Halted     bool
}

func (c *CPU) Snapshot() State {
	return State{
		PC:         c.PC,
		I:          c.I,
		Opcode:     c.Opcode,
		SP:         c.SP,
		DelayTimer: c.DelayTimer,
		SoundTimer: c.SoundTimer,
		Registers:  c.Registers,
		Stack:      c.Stack,
		Keypad:     c.Keypad,
		Halted:     c.Halted,
	}
}

// Frame copies the framebuffer so a renderer can read it without racing the
// interpreter.
func (c *CPU) Frame() [VideoWidth * VideoHeight]uint32 {
	return c.Video
}
