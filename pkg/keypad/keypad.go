// Package keypad maps the 4×4 CHIP-8 hex keypad onto the left-hand block of
// a QWERTY keyboard:
//
//	1 2 3 C      1 2 3 4
//	4 5 6 D  ->  Q W E R
//	7 8 9 E      A S D F
//	A 0 B F      Z X C V
package keypad

import "unicode"

// Labels lists the CHIP-8 keys in keypad display order, row by row.
var Labels = [16]byte{
	0x1, 0x2, 0x3, 0xC,
	0x4, 0x5, 0x6, 0xD,
	0x7, 0x8, 0x9, 0xE,
	0xA, 0x0, 0xB, 0xF,
}

// hostRunes[i] is the host key bound to display position i.
var hostRunes = [16]rune{
	'1', '2', '3', '4',
	'q', 'w', 'e', 'r',
	'a', 's', 'd', 'f',
	'z', 'x', 'c', 'v',
}

// FromRune returns the CHIP-8 key bound to host key r. Letters match in
// either case.
func FromRune(r rune) (int, bool) {
	r = unicode.ToLower(r)
	for pos, hr := range hostRunes {
		if hr == r {
			return int(Labels[pos]), true
		}
	}
	return 0, false
}

// Rune returns the host key bound to CHIP-8 key k.
func Rune(k int) (rune, bool) {
	for pos, l := range Labels {
		if int(l) == k {
			return hostRunes[pos], true
		}
	}
	return 0, false
}
