package rank

import (
	"sort"

	"github.com/katosystems/kato-core/internal/config"
	"github.com/katosystems/kato-core/internal/model"
)

// Sort orders predictions descending by the scalar cfg selects, ties broken
// by pattern_name ascending (spec.md §4.9, deterministic).
func Sort(predictions []model.Prediction, algo config.RankSortAlgo) {
	score := scoreFunc(algo)
	sort.SliceStable(predictions, func(i, j int) bool {
		si, sj := score(predictions[i]), score(predictions[j])
		if si != sj {
			return si > sj
		}
		return predictions[i].PatternName < predictions[j].PatternName
	})
}

func scoreFunc(algo config.RankSortAlgo) func(model.Prediction) float64 {
	switch algo {
	case config.RankSortSimilarity:
		return func(p model.Prediction) float64 { return p.Similarity }
	case config.RankSortEvidence:
		return func(p model.Prediction) float64 { return p.Evidence }
	case config.RankSortConfidence:
		return func(p model.Prediction) float64 { return p.Confidence }
	case config.RankSortSNR:
		return func(p model.Prediction) float64 { return p.SNR }
	case config.RankSortPredictiveInformation:
		return func(p model.Prediction) float64 { return p.PredictiveInformation }
	default:
		return func(p model.Prediction) float64 { return p.Potential }
	}
}

// Truncate caps predictions to max entries, after Sort has ordered them.
func Truncate(predictions []model.Prediction, max uint) []model.Prediction {
	if max == 0 || uint(len(predictions)) <= max {
		return predictions
	}
	return predictions[:max]
}
