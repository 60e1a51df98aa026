package chip8

import (
	"strings"

	"github.com/retroenv/retrogolib/arch/cpu/chip8"
)

// Mnemonic names the instruction family of opcode for traces and status
// displays. Words the interpreter treats as no-ops are reported as "???".
func Mnemonic(opcode uint16) string {
	if name, ok := aliasName(opcode); ok {
		return strings.ToUpper(name)
	}
	for _, op := range chip8.Opcodes[opcode>>12] {
		if op.Info.Mask&opcode == op.Info.Value {
			return strings.ToUpper(op.Instruction.Name)
		}
	}
	return "???"
}

// aliasName covers the families the interpreter decodes more loosely than the
// exact-match opcode table: 0x0 and 0xE dispatch on the low nibble only, and
// 5xyN/9xyN ignore N.
func aliasName(opcode uint16) (string, bool) {
	switch opcode >> 12 {
	case 0x0:
		switch opcode & 0x000F {
		case 0x0:
			return chip8.ClsName, true
		case 0xE:
			return chip8.RetName, true
		}
		return "", false
	case 0x5:
		return chip8.SeName, true
	case 0x9:
		return chip8.SneName, true
	case 0xE:
		switch opcode & 0x000F {
		case 0xE:
			return chip8.SkpName, true
		case 0x1:
			return chip8.SknpName, true
		}
		return "", false
	}
	return "", false
}
