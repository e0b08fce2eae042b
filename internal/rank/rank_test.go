package rank

import (
	"context"
	"testing"

	"github.com/katosystems/kato-core/internal/config"
	"github.com/katosystems/kato-core/internal/model"
	"github.com/katosystems/kato-core/internal/segment"
	"github.com/katosystems/kato-core/internal/store/memtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ev(symbols ...string) model.Event { return model.Event(symbols) }

func TestRank_SimilarityAndEvidence(t *testing.T) {
	ctx := context.Background()
	symbolStats := memtest.NewSymbolStatsStore()
	patterns := memtest.NewPatternStore()

	pattern := &model.Pattern{
		TenantID:      "t1",
		Identifier:    "PTRN|a",
		Events:        []model.Event{ev("a"), ev("b"), ev("c")},
		Length:        3,
		TokenMultiset: []string{"a", "b", "c"},
	}
	require.NoError(t, patterns.Write(ctx, pattern))

	stm := []model.Event{ev("b")}
	seg, ok := segment.Segment(pattern.Events, stm)
	require.True(t, ok)

	metadata := &model.PatternMetadata{EmotiveProfile: map[string][]float64{}}
	resolved, err := config.Resolve(config.Defaults(), config.Config{}, config.Config{})
	require.NoError(t, err)

	r := New(symbolStats, patterns)
	pred, err := r.Rank(ctx, "t1", pattern, metadata, seg, stm, resolved)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, pred.Similarity, 1e-9)
	assert.InDelta(t, 1.0/3.0, pred.Evidence, 1e-9)
	assert.InDelta(t, 1.0, pred.Confidence, 1e-9)
	assert.InDelta(t, 1.0, pred.SNR, 1e-9)
	assert.Equal(t, 0, pred.Fragmentation)
}

func TestRank_SNRPenalizedByExtras(t *testing.T) {
	ctx := context.Background()
	symbolStats := memtest.NewSymbolStatsStore()
	patterns := memtest.NewPatternStore()

	pattern := &model.Pattern{
		TenantID:      "t1",
		Identifier:    "PTRN|a",
		Events:        []model.Event{ev("a")},
		Length:        1,
		TokenMultiset: []string{"a"},
	}
	require.NoError(t, patterns.Write(ctx, pattern))

	stm := []model.Event{ev("a", "surprise")}
	seg, ok := segment.Segment(pattern.Events, stm)
	require.True(t, ok)

	metadata := &model.PatternMetadata{EmotiveProfile: map[string][]float64{}}
	resolved, err := config.Resolve(config.Defaults(), config.Config{}, config.Config{})
	require.NoError(t, err)

	r := New(symbolStats, patterns)
	pred, err := r.Rank(ctx, "t1", pattern, metadata, seg, stm, resolved)
	require.NoError(t, err)

	assert.InDelta(t, 0.5, pred.SNR, 1e-9)
}

func TestRank_EmotivePredictionsSummarizeProfile(t *testing.T) {
	ctx := context.Background()
	symbolStats := memtest.NewSymbolStatsStore()
	patterns := memtest.NewPatternStore()

	pattern := &model.Pattern{
		TenantID:      "t1",
		Identifier:    "PTRN|a",
		Events:        []model.Event{ev("a")},
		Length:        1,
		TokenMultiset: []string{"a"},
	}
	require.NoError(t, patterns.Write(ctx, pattern))

	stm := []model.Event{ev("a")}
	seg, ok := segment.Segment(pattern.Events, stm)
	require.True(t, ok)

	metadata := &model.PatternMetadata{EmotiveProfile: map[string][]float64{"temperature": {1, 2, 3}}}
	resolved, err := config.Resolve(config.Defaults(), config.Config{}, config.Config{})
	require.NoError(t, err)

	r := New(symbolStats, patterns)
	pred, err := r.Rank(ctx, "t1", pattern, metadata, seg, stm, resolved)
	require.NoError(t, err)

	require.Contains(t, pred.EmotivePredictions, "temperature")
	assert.InDelta(t, 2.0, pred.EmotivePredictions["temperature"].Mean, 1e-9)
}

func TestSort_DescendingByPotentialTiesByName(t *testing.T) {
	preds := []model.Prediction{
		{PatternName: "PTRN|b", Potential: 0.9},
		{PatternName: "PTRN|a", Potential: 0.9},
		{PatternName: "PTRN|c", Potential: 0.5},
	}
	Sort(preds, config.RankSortPotential)
	assert.Equal(t, "PTRN|a", preds[0].PatternName)
	assert.Equal(t, "PTRN|b", preds[1].PatternName)
	assert.Equal(t, "PTRN|c", preds[2].PatternName)
}

func TestTruncate_CapsAtMax(t *testing.T) {
	preds := make([]model.Prediction, 5)
	out := Truncate(preds, 2)
	assert.Len(t, out, 2)
}

func TestTruncate_ZeroMeansUnbounded(t *testing.T) {
	preds := make([]model.Prediction, 5)
	out := Truncate(preds, 0)
	assert.Len(t, out, 5)
}
