package filter

import (
	"context"

	"github.com/agnivade/levenshtein"
	"github.com/katosystems/kato-core/internal/config"
)

// fuzzyStage implements spec.md §4.7.5, the mandatory-last stage: an
// in-process, per-candidate token-level fuzzy-similarity score. The config
// validator requires it to be the last stage; it scores every remaining
// candidate token by token.
type fuzzyStage struct {
	cfg              config.Resolved
	useTokenMatching bool
}

func (fuzzyStage) Name() config.FilterStage { return config.FilterStageRapidFuzz }

func (s fuzzyStage) Run(ctx context.Context, tenantID string, input Input, candidates []Candidate) ([]Candidate, error) {
	stmTokens := setKeys(input.TokenSet)

	out := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		patternTokens := setKeys(c.Pattern.TokenSet())
		score := bestBipartiteSimilarity(stmTokens, patternTokens)
		if score < s.cfg.RecallThreshold {
			continue
		}
		c.Score = score
		out = append(out, c)
	}
	return out, nil
}

func setKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

// tokenSimilarity is 1 minus the normalized Levenshtein distance between
// two tokens (spec.md Open Question on character-level similarity, decided
// in the expanded specification).
func tokenSimilarity(a, b string) float64 {
	if a == b {
		return 1
	}
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 1
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(maxLen)
}

// bestBipartiteSimilarity greedily pairs each STM token with its
// best-remaining match among pattern tokens, then averages the matched
// pairs' similarity over the larger of the two token counts — an
// unmatched token on either side dilutes the score, matching "ratio of
// best bipartite match" (spec.md §4.7.5).
func bestBipartiteSimilarity(stmTokens, patternTokens []string) float64 {
	if len(stmTokens) == 0 || len(patternTokens) == 0 {
		return 0
	}

	used := make([]bool, len(patternTokens))
	var total float64
	for _, s := range stmTokens {
		bestIdx, bestScore := -1, -1.0
		for i, p := range patternTokens {
			if used[i] {
				continue
			}
			sim := tokenSimilarity(s, p)
			if sim > bestScore {
				bestScore, bestIdx = sim, i
			}
		}
		if bestIdx >= 0 {
			used[bestIdx] = true
			total += bestScore
		}
	}

	denom := len(stmTokens)
	if len(patternTokens) > denom {
		denom = len(patternTokens)
	}
	return total / float64(denom)
}
