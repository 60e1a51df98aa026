package chip8

import "gochip8/pkg/grid"

type handler func(*CPU)

var (
	mainTable [16]handler
	table0    [16]handler
	table8    [16]handler
	tableE    [16]handler
	tableF    [256]handler
)

func init() {
	for i := range table0 {
		table0[i] = (*CPU).opNull
		table8[i] = (*CPU).opNull
		tableE[i] = (*CPU).opNull
	}
	for i := range tableF {
		tableF[i] = (*CPU).opNull
	}

	mainTable = [16]handler{
		0x0: (*CPU).dispatch0,
		0x1: (*CPU).op1nnn,
		0x2: (*CPU).op2nnn,
		0x3: (*CPU).op3xkk,
		0x4: (*CPU).op4xkk,
		0x5: (*CPU).op5xy0,
		0x6: (*CPU).op6xkk,
		0x7: (*CPU).op7xkk,
		0x8: (*CPU).dispatch8,
		0x9: (*CPU).op9xy0,
		0xA: (*CPU).opAnnn,
		0xB: (*CPU).opBnnn,
		0xC: (*CPU).opCxkk,
		0xD: (*CPU).opDxyn,
		0xE: (*CPU).dispatchE,
		0xF: (*CPU).dispatchF,
	}

	table0[0x0] = (*CPU).op00E0
	table0[0xE] = (*CPU).op00EE

	table8[0x0] = (*CPU).op8xy0
	table8[0x1] = (*CPU).op8xy1
	table8[0x2] = (*CPU).op8xy2
	table8[0x3] = (*CPU).op8xy3
	table8[0x4] = (*CPU).op8xy4
	table8[0x5] = (*CPU).op8xy5
	table8[0x6] = (*CPU).op8xy6
	table8[0x7] = (*CPU).op8xy7
	table8[0xE] = (*CPU).op8xyE

	tableE[0x1] = (*CPU).opExA1
	tableE[0xE] = (*CPU).opEx9E

	tableF[0x07] = (*CPU).opFx07
	tableF[0x0A] = (*CPU).opFx0A
	tableF[0x15] = (*CPU).opFx15
	tableF[0x18] = (*CPU).opFx18
	tableF[0x1E] = (*CPU).opFx1E
	tableF[0x29] = (*CPU).opFx29
	tableF[0x33] = (*CPU).opFx33
	tableF[0x55] = (*CPU).opFx55
	tableF[0x65] = (*CPU).opFx65
}

func (c *CPU) x() byte     { return byte(c.Opcode>>8) & 0xF }
func (c *CPU) y() byte     { return byte(c.Opcode>>4) & 0xF }
func (c *CPU) n() byte     { return byte(c.Opcode) & 0xF }
func (c *CPU) kk() byte    { return byte(c.Opcode) }
func (c *CPU) nnn() uint16 { return c.Opcode & 0x0FFF }

func (c *CPU) dispatch0() { table0[c.Opcode&0x000F](c) }
func (c *CPU) dispatch8() { table8[c.Opcode&0x000F](c) }
func (c *CPU) dispatchE() { tableE[c.Opcode&0x000F](c) }
func (c *CPU) dispatchF() { tableF[c.Opcode&0x00FF](c) }

func (c *CPU) opNull() {}

func (c *CPU) skipIf(cond bool) {
	if cond {
		c.PC += 2
	}
}

// CLS
func (c *CPU) op00E0() {
	c.Video = [VideoWidth * VideoHeight]uint32{}
}

// RET
func (c *CPU) op00EE() {
	if c.SP == 0 {
		c.fault = ErrStackUnderflow
		return
	}
	c.SP--
	c.PC = c.Stack[c.SP]
}

// JP nnn
func (c *CPU) op1nnn() {
	c.PC = c.nnn()
}

// CALL nnn. PC already points past the call, so that is the return address.
func (c *CPU) op2nnn() {
	if int(c.SP) >= StackSize {
		c.fault = ErrStackOverflow
		return
	}
	c.Stack[c.SP] = c.PC
	c.SP++
	c.PC = c.nnn()
}

func (c *CPU) op3xkk() { c.skipIf(c.Registers[c.x()] == c.kk()) }
func (c *CPU) op4xkk() { c.skipIf(c.Registers[c.x()] != c.kk()) }
func (c *CPU) op5xy0() { c.skipIf(c.Registers[c.x()] == c.Registers[c.y()]) }
func (c *CPU) op9xy0() { c.skipIf(c.Registers[c.x()] != c.Registers[c.y()]) }

func (c *CPU) op6xkk() { c.Registers[c.x()] = c.kk() }

// ADD Vx, kk. Wraps, VF untouched.
func (c *CPU) op7xkk() { c.Registers[c.x()] += c.kk() }

func (c *CPU) op8xy0() { c.Registers[c.x()] = c.Registers[c.y()] }
func (c *CPU) op8xy1() { c.Registers[c.x()] |= c.Registers[c.y()] }
func (c *CPU) op8xy2() { c.Registers[c.x()] &= c.Registers[c.y()] }
func (c *CPU) op8xy3() { c.Registers[c.x()] ^= c.Registers[c.y()] }

// The flag-producing ALU ops write VF before Vx and read their operands in
// that order, so an x or y of F observes the freshly written flag.

func (c *CPU) op8xy4() {
	x := c.x()
	sum := uint16(c.Registers[x]) + uint16(c.Registers[c.y()])
	c.Registers[0xF] = boolToByte(sum > 0xFF)
	c.Registers[x] = byte(sum)
}

func (c *CPU) op8xy5() {
	x, y := c.x(), c.y()
	c.Registers[0xF] = boolToByte(c.Registers[x] > c.Registers[y])
	c.Registers[x] -= c.Registers[y]
}

func (c *CPU) op8xy6() {
	x := c.x()
	c.Registers[0xF] = c.Registers[x] & 0x1
	c.Registers[x] >>= 1
}

func (c *CPU) op8xy7() {
	x, y := c.x(), c.y()
	c.Registers[0xF] = boolToByte(c.Registers[y] > c.Registers[x])
	c.Registers[x] = c.Registers[y] - c.Registers[x]
}

func (c *CPU) op8xyE() {
	x := c.x()
	c.Registers[0xF] = (c.Registers[x] & 0x80) >> 7
	c.Registers[x] <<= 1
}

func (c *CPU) opAnnn() { c.I = c.nnn() }

// JP V0, nnn
func (c *CPU) opBnnn() { c.PC = uint16(c.Registers[0]) + c.nnn() }

func (c *CPU) opCxkk() { c.Registers[c.x()] = c.rng.Byte() & c.kk() }

// DRW Vx, Vy, n. The origin wraps, the sprite body is clipped at the edges.
func (c *CPU) opDxyn() {
	originX := int(c.Registers[c.x()]) % VideoWidth
	originY := int(c.Registers[c.y()]) % VideoHeight
	height := int(c.n())

	c.Registers[0xF] = 0

	for row := 0; row < height; row++ {
		py := originY + row
		if py >= VideoHeight {
			break
		}
		sprite := c.memory[(c.I+uint16(row))&addrMask]

		for col := 0; col < 8; col++ {
			if sprite&(0x80>>col) == 0 {
				continue
			}
			px := originX + col
			if px >= VideoWidth {
				break
			}
			idx := grid.Index(px, py, VideoWidth)
			if c.Video[idx] == PixelOn {
				c.Registers[0xF] = 1
			}
			c.Video[idx] ^= PixelOn
		}
	}
}

func (c *CPU) opEx9E() { c.skipIf(c.Keypad[c.Registers[c.x()]&0xF]) }
func (c *CPU) opExA1() { c.skipIf(!c.Keypad[c.Registers[c.x()]&0xF]) }

func (c *CPU) opFx07() { c.Registers[c.x()] = c.DelayTimer }

// LD Vx, K. With no key down the instruction rewinds itself so the next Step
// executes it again.
func (c *CPU) opFx0A() {
	for k := 0; k < NumKeys; k++ {
		if c.Keypad[k] {
			c.Registers[c.x()] = byte(k)
			return
		}
	}
	c.PC -= 2
}

func (c *CPU) opFx15() { c.DelayTimer = c.Registers[c.x()] }
func (c *CPU) opFx18() { c.SoundTimer = c.Registers[c.x()] }
func (c *CPU) opFx1E() { c.I += uint16(c.Registers[c.x()]) }

func (c *CPU) opFx29() {
	c.I = c.fontBase + FontGlyphSize*uint16(c.Registers[c.x()])
}

// LD B, Vx
func (c *CPU) opFx33() {
	v := c.Registers[c.x()]
	c.WriteByte(c.I, v/100)
	c.WriteByte(c.I+1, (v/10)%10)
	c.WriteByte(c.I+2, v%10)
}

func (c *CPU) opFx55() {
	for i := uint16(0); i <= uint16(c.x()); i++ {
		c.WriteByte(c.I+i, c.Registers[i])
	}
}

func (c *CPU) opFx65() {
	for i := uint16(0); i <= uint16(c.x()); i++ {
		c.Registers[i] = c.ReadByte(c.I + i)
	}
}

func boolToByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
