package marketmaker

import (
	"math/rand"

	"github.com/betbot/pairmaker/internal/domain"
)

// Random is the randomness the resolver and planner draw from.
// *rand.Rand satisfies it; tests inject a scripted source.
type Random interface {
	Float64() float64
	Intn(n int) int
}

// NewRandom returns a seeded source. Not safe for concurrent use.
func NewRandom(seed int64) Random {
	return rand.New(rand.NewSource(seed))
}

// chooseSide picks the operation side uniformly from {buy, sell}.
func chooseSide(r Random) domain.Side {
	return domain.Sides[r.Intn(len(domain.Sides))]
}

// uniform draws from [lo, hi).
func uniform(r Random, lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}
