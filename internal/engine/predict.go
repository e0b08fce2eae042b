package engine

import (
	"context"
	"errors"

	"github.com/katosystems/kato-core/internal/config"
	"github.com/katosystems/kato-core/internal/filter"
	"github.com/katosystems/kato-core/internal/katoerr"
	"github.com/katosystems/kato-core/internal/minhash"
	"github.com/katosystems/kato-core/internal/model"
	"github.com/katosystems/kato-core/internal/rank"
	"github.com/katosystems/kato-core/internal/segment"
)

// Predict implements spec.md §4.11's predict: an STM with fewer than two
// total symbol occurrences yields no predictions. Otherwise it runs the
// filter pipeline, segments every surviving candidate against the current
// STM, drops candidates whose similarity falls below recall_threshold,
// ranks, and truncates to max_predictions.
func (e *Engine) Predict(ctx context.Context, tenantID string, state State, cfg config.Resolved) ([]model.Prediction, error) {
	if state.STM.SymbolCount() < 2 {
		return nil, nil
	}

	multiset := state.STM.TokenMultiset()
	mhCfg := minhash.Config{NumHashes: cfg.MinhashNumHashes, Bands: cfg.MinhashBands, Rows: cfg.MinhashRows}

	input := filter.Input{
		TokenSet:      state.STM.FlattenedSymbols(),
		TokenMultiset: multiset,
		Length:        state.STM.Length(),
		MinhashSig:    minhash.Signature(multiset, mhCfg),
	}

	// A pipeline deadline breach still returns the candidates collected so
	// far (spec.md §5): predict keeps working with them instead of failing
	// the whole call.
	candidates, _, err := e.Filter.Run(ctx, tenantID, input, cfg)
	if err != nil && !errors.Is(err, katoerr.ErrPartialResults) {
		return nil, err
	}

	predictions := make([]model.Prediction, 0, len(candidates))
	for _, c := range candidates {
		metadata, found, err := e.Metadata.Get(ctx, tenantID, c.Pattern.Identifier)
		if err != nil {
			return nil, err
		}
		if !found {
			metadata = &model.PatternMetadata{EmotiveProfile: map[string][]float64{}}
		}

		seg, ok := segment.Segment(c.Pattern.Events, state.STM.Events)
		if !ok {
			continue
		}

		pred, err := e.Ranker.Rank(ctx, tenantID, c.Pattern, metadata, seg, state.STM.Events, cfg)
		if err != nil {
			return nil, err
		}
		if pred.Similarity < cfg.RecallThreshold {
			continue
		}
		predictions = append(predictions, pred)
	}

	rank.Sort(predictions, cfg.RankSortAlgo)
	return rank.Truncate(predictions, cfg.MaxPredictions), nil
}
