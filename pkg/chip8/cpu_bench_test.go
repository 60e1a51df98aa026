package chip8

import "testing"

// BenchmarkStep_ALU measures dispatch overhead through the 8xyN sub-table.
func BenchmarkStep_ALU(b *testing.B) {
	c := NewCPU()
	loadProgram(c,
		0x8124, // ADD V1, V2
		0x8125, // SUB V1, V2
		0x812E, // SHL V1
		0x1200, // JP 0x200
	)
	c.Registers[2] = 3

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = c.Step()
	}
}

// BenchmarkStep_Draw measures a full-height sprite draw and clear loop.
func BenchmarkStep_Draw(b *testing.B) {
	c := NewCPU()
	loadProgram(c,
		0xA050, // LD I, 0x050
		0xD01F, // DRW V0, V1, 15
		0x00E0, // CLS
		0x1202, // JP 0x202
	)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = c.Step()
	}
}

func BenchmarkFramebufferRGBA(b *testing.B) {
	c := NewCPU()
	for i := 0; i < len(c.Video); i += 3 {
		c.Video[i] = PixelOn
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = c.FramebufferRGBA(DefaultOnColor, DefaultOffColor)
	}
}
