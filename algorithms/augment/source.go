package augment

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// Source supplies the random draws used by the augmentation operations.
// Implementations need not be safe for concurrent use.
type Source interface {
	// Uniform returns a value in [lo, hi), or lo when hi <= lo
	Uniform(lo, hi float64) float64

	// IntN returns an integer in [lo, hi), or lo when hi <= lo
	IntN(lo, hi int) int
}

type pcgSource struct {
	src rand.Source
	rng *rand.Rand
}

// NewSource returns a deterministic Source seeded with seed
func NewSource(seed uint64) Source {
	src := rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
	return &pcgSource{
		src: src,
		rng: rand.New(src),
	}
}

func (s *pcgSource) Uniform(lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	d := distuv.Uniform{Min: lo, Max: hi, Src: s.src}
	return d.Rand()
}

func (s *pcgSource) IntN(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + s.rng.IntN(hi-lo)
}
