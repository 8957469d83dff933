package tree

import "math/rand/v2"

// ColourSource hands out display colours to newly constructed nodes.
type ColourSource interface {
	Next() Colour
}

// ColourFunc adapts a function to the ColourSource interface.
type ColourFunc func() Colour

// Next calls f.
func (f ColourFunc) Next() Colour { return f() }

type seededColours struct {
	rng *rand.Rand
}

// NewSeededColours returns a deterministic ColourSource. Two sources created
// with the same seed produce the same sequence.
func NewSeededColours(seed uint64) ColourSource {
	return &seededColours{rng: rand.New(rand.NewPCG(seed, seed^0xdeadbeef))}
}

func (s *seededColours) Next() Colour {
	return Colour{
		R: uint8(s.rng.IntN(256)),
		G: uint8(s.rng.IntN(256)),
		B: uint8(s.rng.IntN(256)),
	}
}

// RandomColours returns a ColourSource backed by the global random source.
func RandomColours() ColourSource {
	return ColourFunc(func() Colour {
		return Colour{R: uint8(rand.IntN(256)), G: uint8(rand.IntN(256)), B: uint8(rand.IntN(256))}
	})
}
