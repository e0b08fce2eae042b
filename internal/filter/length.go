package filter

import (
	"context"
	"math"

	"github.com/katosystems/kato-core/internal/config"
)

// lengthStage implements spec.md §4.7.1: pattern length ∈
// [⌈L·min⌉, ⌊L·max⌋]. The range is checked in-process on the candidates
// Pipeline.Run scanned from the store; it is not pushed down to the store.
type lengthStage struct {
	cfg config.Resolved
}

func (lengthStage) Name() config.FilterStage { return config.FilterStageLength }

func (s lengthStage) Run(ctx context.Context, tenantID string, input Input, candidates []Candidate) ([]Candidate, error) {
	lo := int(math.Ceil(float64(input.Length) * s.cfg.LengthMinRatio))
	hi := int(math.Floor(float64(input.Length) * s.cfg.LengthMaxRatio))

	out := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Pattern.Length < lo || c.Pattern.Length > hi {
			continue
		}
		c.Score = -math.Abs(float64(c.Pattern.Length - input.Length))
		out = append(out, c)
	}
	return out, nil
}
