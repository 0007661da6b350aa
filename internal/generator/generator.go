package generator

import (
	"fmt"
	"math/rand/v2"

	"svw.info/tambola/internal/domain"
	"svw.info/tambola/internal/ports"
	"svw.info/tambola/internal/validator"
)

// New returns the generator for strategy s.
func New(s domain.Strategy) ports.Generator {
	if s == domain.StrategyRepair {
		return NewRepairGenerator()
	}
	return NewJointGenerator()
}

// NewSource returns a seeded PCG source. Equal seeds give equal grids.
func NewSource(seed int64) ports.RandomSource {
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))
}

// counting wraps a source and tallies draws for Stats.
type counting struct {
	src ports.RandomSource
	n   int
}

func (c *counting) IntN(n int) int {
	c.n++
	return c.src.IntN(n)
}

func shuffle(src ports.RandomSource, s []int) {
	for i := len(s) - 1; i > 0; i-- {
		j := src.IntN(i + 1)
		s[i], s[j] = s[j], s[i]
	}
}

// mustValid is the post-generation self-check. A failure is a bug in the
// construction, not a condition callers can handle.
func mustValid(g *domain.Grid) {
	if !validator.Valid(g) {
		panic(fmt.Sprintf("generator: produced invalid grid %v", g.RowsOf()))
	}
}
