package engine

import (
	"math"
	"math/rand/v2"

	"brainboard/internal/model"
)

// Placer picks positions for new cards.
type Placer struct {
	rng *rand.Rand
}

// NewPlacer uses rng when given, otherwise a randomly seeded source.
func NewPlacer(rng *rand.Rand) *Placer {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Placer{rng: rng}
}

// RandomPosition returns a point with x uniform in [50, max(viewW-250, 50)] and y uniform in
// [50, max(viewH-170, 50)], so a new card lands fully inside the viewport with a margin.
func (p *Placer) RandomPosition(viewW, viewH float64) model.Position {
	return model.Position{
		X: p.uniform(model.PlacementMargin, viewW-model.CardWidth-model.PlacementMargin),
		Y: p.uniform(model.PlacementMargin, viewH-model.CardHeight-model.PlacementMargin),
	}
}

func (p *Placer) uniform(lo, hi float64) float64 {
	hi = math.Max(hi, lo)
	return lo + p.rng.Float64()*(hi-lo)
}
