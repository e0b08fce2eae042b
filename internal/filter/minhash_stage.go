package filter

import (
	"context"

	"github.com/katosystems/kato-core/internal/config"
	"github.com/katosystems/kato-core/internal/minhash"
)

// minhashStage implements spec.md §4.7.3: retain patterns that share at
// least one LSH band key with the STM's MinHash signature.
type minhashStage struct {
	cfg config.Resolved
}

func (minhashStage) Name() config.FilterStage { return config.FilterStageMinhash }

func (s minhashStage) Run(ctx context.Context, tenantID string, input Input, candidates []Candidate) ([]Candidate, error) {
	mhCfg := minhash.Config{
		NumHashes: s.cfg.MinhashNumHashes,
		Bands:     s.cfg.MinhashBands,
		Rows:      s.cfg.MinhashRows,
	}
	stmBands := minhash.Bands(input.MinhashSig, mhCfg)

	out := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if !minhash.SharesBand(stmBands, c.Pattern.LSHBands) {
			continue
		}
		c.Score = minhash.RetentionProbability(s.cfg.MinhashThreshold, mhCfg)
		out = append(out, c)
	}
	return out, nil
}
