package chip8

import "math/rand/v2"

// RandomSource supplies the uniformly distributed bytes consumed by Cxkk.
type RandomSource interface {
	Byte() byte
}

type pcgRandom struct {
	r *rand.Rand
}

// NewRandom returns a RandomSource seeded from the runtime's entropy.
func NewRandom() RandomSource {
	return &pcgRandom{r: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

// NewSeededRandom returns a reproducible RandomSource.
func NewSeededRandom(seed uint64) RandomSource {
	return &pcgRandom{r: rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15))}
}

func (p *pcgRandom) Byte() byte {
	return byte(p.r.UintN(256))
}

// SeqRandom replays a fixed byte sequence, wrapping at the end. An empty
// sequence always yields zero.
type SeqRandom struct {
	Values []byte
	pos    int
}

func (s *SeqRandom) Byte() byte {
	if len(s.Values) == 0 {
		return 0
	}
	b := s.Values[s.pos%len(s.Values)]
	s.pos++
	return b
}
