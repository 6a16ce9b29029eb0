package domain

import "math/rand/v2"

// DrawSource produces the draw used to select among the rampup entries of
// one image type. A DrawSource serves a single resolution call and is not
// shared between concurrent calls.
type DrawSource interface {
	Draw(imageType string) int
}

// RandomDraws draws uniformly from [MinDraw, MaxDraw] using its own
// generator.
type RandomDraws struct {
	Rand *rand.Rand
}

// NewRandomDraws returns a RandomDraws with a freshly seeded generator.
func NewRandomDraws() *RandomDraws {
	return &RandomDraws{Rand: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

func (d *RandomDraws) Draw(_ string) int {
	return d.Rand.IntN(MaxDraw-MinDraw+1) + MinDraw
}

// KeyedDraws returns the same draw, derived from Key, for every image type.
type KeyedDraws struct {
	Key string
}

func (d KeyedDraws) Draw(_ string) int {
	return DrawForKey([]byte(d.Key))
}

// FixedDraws returns a preset draw per image type, or Default for types
// not listed.
type FixedDraws struct {
	Draws   map[string]int
	Default int
}

func (d FixedDraws) Draw(imageType string) int {
	if v, ok := d.Draws[imageType]; ok {
		return v
	}
	return d.Default
}
