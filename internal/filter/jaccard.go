package filter

import (
	"context"

	"github.com/katosystems/kato-core/internal/config"
)

// jaccardStage implements spec.md §4.7.2: |S ∩ P| ≥ jaccard_min_overlap AND
// |S ∩ P| / |S ∪ P| ≥ jaccard_threshold.
type jaccardStage struct {
	cfg config.Resolved
}

func (jaccardStage) Name() config.FilterStage { return config.FilterStageJaccard }

func (s jaccardStage) Run(ctx context.Context, tenantID string, input Input, candidates []Candidate) ([]Candidate, error) {
	out := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		overlap, union := intersectUnion(input.TokenSet, c.Pattern.TokenSet())
		if union == 0 {
			continue
		}
		if overlap < int(s.cfg.JaccardMinOverlap) {
			continue
		}
		j := float64(overlap) / float64(union)
		if j < s.cfg.JaccardThreshold {
			continue
		}
		c.Score = j
		out = append(out, c)
	}
	return out, nil
}

func intersectUnion(a, b map[string]struct{}) (overlap, union int) {
	seen := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		seen[k] = struct{}{}
		if _, ok := b[k]; ok {
			overlap++
		}
	}
	for k := range b {
		seen[k] = struct{}{}
	}
	return overlap, len(seen)
}
