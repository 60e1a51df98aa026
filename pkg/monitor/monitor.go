// Package monitor formats interpreter state for status panels, clipboard
// dumps and change tracking.
package monitor

import (
	"fmt"
	"strings"

	"gochip8/pkg/chip8"
	"gochip8/pkg/grid"
	"gochip8/pkg/keypad"
)

type Snapshot struct {
	chip8.State
	Instr string
}

func Capture(c *chip8.CPU) Snapshot {
	s := c.Snapshot()
	return Snapshot{State: s, Instr: chip8.Mnemonic(s.Opcode)}
}

// Lines renders the snapshot as fixed-width hex rows, one field group per
// line.
func (s Snapshot) Lines() []string {
	lines := []string{
		fmt.Sprintf("PC %04X  I %04X", s.PC, s.I),
		fmt.Sprintf("OP %04X  %s", s.Opcode, s.Instr),
		fmt.Sprintf("SP %02X  DT %02X  ST %02X", s.SP, s.DelayTimer, s.SoundTimer),
	}
	for row := 0; row < 4; row++ {
		var b strings.Builder
		for col := 0; col < 4; col++ {
			r := row*4 + col
			if col > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "V%X=%02X", r, s.Registers[r])
		}
		lines = append(lines, b.String())
	}
	lines = append(lines, "STACK")
	if s.SP == 0 {
		lines = append(lines, "  (empty)")
	}
	for i := int(s.SP) - 1; i >= 0; i-- {
		lines = append(lines, fmt.Sprintf("  %X: %04X", i, s.Stack[i]))
	}
	lines = append(lines, "KEYS")
	var row strings.Builder
	for pos, k := range keypad.Labels {
		x, _ := grid.GetGridCoords(pos, 4)
		if x == 0 {
			row.WriteString("  ")
		} else {
			row.WriteByte(' ')
		}
		if s.Keypad[k] {
			fmt.Fprintf(&row, "[%X]", k)
		} else {
			fmt.Fprintf(&row, " %X ", k)
		}
		if x == 3 {
			lines = append(lines, row.String())
			row.Reset()
		}
	}
	if s.Halted {
		lines = append(lines, "HALTED")
	}
	return lines
}

func (s Snapshot) String() string {
	return strings.Join(s.Lines(), "\n")
}

// Diff names the fields that differ between prev and next, in a stable
// order. Registers, stack slots and keys are reported individually.
func Diff(prev, next Snapshot) []string {
	var changed []string
	if prev.PC != next.PC {
		changed = append(changed, "PC")
	}
	if prev.I != next.I {
		changed = append(changed, "I")
	}
	if prev.Opcode != next.Opcode {
		changed = append(changed, "Opcode")
	}
	if prev.SP != next.SP {
		changed = append(changed, "SP")
	}
	if prev.DelayTimer != next.DelayTimer {
		changed = append(changed, "DT")
	}
	if prev.SoundTimer != next.SoundTimer {
		changed = append(changed, "ST")
	}
	for i := range prev.Registers {
		if prev.Registers[i] != next.Registers[i] {
			changed = append(changed, fmt.Sprintf("V%X", i))
		}
	}
	for i := range prev.Stack {
		if prev.Stack[i] != next.Stack[i] {
			changed = append(changed, fmt.Sprintf("Stack%X", i))
		}
	}
	for i := range prev.Keypad {
		if prev.Keypad[i] != next.Keypad[i] {
			changed = append(changed, fmt.Sprintf("Key%X", i))
		}
	}
	if prev.Halted != next.Halted {
		changed = append(changed, "Halted")
	}
	return changed
}
