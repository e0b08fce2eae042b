package engine

import (
	"context"
	"testing"

	"github.com/katosystems/kato-core/internal/config"
	"github.com/katosystems/kato-core/internal/model"
	"github.com/katosystems/kato-core/internal/rollingwindow"
	"github.com/katosystems/kato-core/internal/store/memtest"
	"github.com/katosystems/kato-core/internal/tenant"
	"github.com/katosystems/kato-core/internal/vectorindex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine() *Engine {
	return New(vectorindex.NewHashIndexer(0), memtest.NewPatternStore(), memtest.NewMetadataStore(), memtest.NewSymbolStatsStore())
}

func newState() State {
	return State{
		EmotiveWindows:      make(map[string]*rollingwindow.Window),
		MetadataAccumulator: make(map[string][]string),
	}
}

func resolvedDefaults(t *testing.T) config.Resolved {
	t.Helper()
	r, err := config.Resolve(config.Defaults(), config.Config{}, config.Config{})
	require.NoError(t, err)
	return r
}

func obs(strings ...string) model.Observation {
	return model.Observation{Strings: strings}
}

func TestScenarioA_SimpleSequencePrediction(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine()
	tenantID := tenant.Derive("t1")
	cfg := resolvedDefaults(t)

	s := newState()
	s, err := e.Observe(ctx, tenantID, s, obs("alarm", "wake_up"), cfg)
	require.NoError(t, err)
	s, err = e.Observe(ctx, tenantID, s, obs("shower", "get_dressed"), cfg)
	require.NoError(t, err)
	s, err = e.Observe(ctx, tenantID, s, obs("breakfast", "coffee"), cfg)
	require.NoError(t, err)

	_, s, err = e.Learn(ctx, tenantID, s, cfg)
	require.NoError(t, err)
	assert.Equal(t, 0, s.STM.Length())

	s, err = e.Observe(ctx, tenantID, s, obs("alarm", "wake_up"), cfg)
	require.NoError(t, err)

	preds, err := e.Predict(ctx, tenantID, s, cfg)
	require.NoError(t, err)
	require.Len(t, preds, 1)

	p := preds[0]
	assert.Empty(t, p.Past)
	assert.Equal(t, []model.Event{{"alarm", "wake_up"}}, p.Present)
	assert.Equal(t, []model.Event{{"get_dressed", "shower"}, {"breakfast", "coffee"}}, p.Future)
	assert.Equal(t, []model.Event{{}}, p.Missing)
	assert.Equal(t, []model.Event{{}}, p.Extras)
	assert.InDelta(t, 1.0, p.Similarity, 1e-9)
}

func learnDailyRoutine(t *testing.T, e *Engine, tenantID string, cfg config.Resolved) {
	t.Helper()
	ctx := context.Background()
	s := newState()
	var err error
	s, err = e.Observe(ctx, tenantID, s, obs("alarm", "wake_up"), cfg)
	require.NoError(t, err)
	s, err = e.Observe(ctx, tenantID, s, obs("shower", "get_dressed"), cfg)
	require.NoError(t, err)
	s, err = e.Observe(ctx, tenantID, s, obs("breakfast", "coffee"), cfg)
	require.NoError(t, err)
	_, _, err = e.Learn(ctx, tenantID, s, cfg)
	require.NoError(t, err)
}

func TestScenarioB_PartialMiddleMatchHasLowerPotentialThanSimple(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine()
	tenantID := tenant.Derive("t1")
	cfg := resolvedDefaults(t)
	learnDailyRoutine(t, e, tenantID, cfg)

	fullState := newState()
	fullState, err := e.Observe(ctx, tenantID, fullState, obs("alarm", "wake_up"), cfg)
	require.NoError(t, err)
	fullPreds, err := e.Predict(ctx, tenantID, fullState, cfg)
	require.NoError(t, err)
	require.Len(t, fullPreds, 1)

	midState := newState()
	midState, err = e.Observe(ctx, tenantID, midState, obs("breakfast", "coffee"), cfg)
	require.NoError(t, err)
	midPreds, err := e.Predict(ctx, tenantID, midState, cfg)
	require.NoError(t, err)
	require.Len(t, midPreds, 1)

	p := midPreds[0]
	assert.Equal(t, []model.Event{{"alarm", "wake_up"}, {"get_dressed", "shower"}}, p.Past)
	assert.Equal(t, []model.Event{{"breakfast", "coffee"}}, p.Present)
	assert.Empty(t, p.Future)
	assert.InDelta(t, 1.0, p.Similarity, 1e-9)
	assert.Less(t, p.Potential, fullPreds[0].Potential)
}

func TestScenarioC_MissingSymbol(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine()
	tenantID := tenant.Derive("t1")
	cfg := resolvedDefaults(t)
	learnDailyRoutine(t, e, tenantID, cfg)

	s := newState()
	s, err := e.Observe(ctx, tenantID, s, obs("coffee"), cfg)
	require.NoError(t, err)
	s, err = e.Observe(ctx, tenantID, s, obs("breakfast"), cfg)
	require.NoError(t, err)

	preds, err := e.Predict(ctx, tenantID, s, cfg)
	require.NoError(t, err)
	require.Len(t, preds, 1)

	p := preds[0]
	require.Len(t, p.Present, 1)
	assert.Equal(t, model.Event{"breakfast", "coffee"}, p.Present[0])
	require.Len(t, p.Missing, 1)
	assert.Empty(t, p.Missing[0])
}

func TestScenarioD_ExtraSymbolAnomaly(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine()
	tenantID := tenant.Derive("t1")
	cfg := resolvedDefaults(t)

	s := newState()
	s, err := e.Observe(ctx, tenantID, s, obs("login", "success"), cfg)
	require.NoError(t, err)
	_, s, err = e.Learn(ctx, tenantID, s, cfg)
	require.NoError(t, err)

	s, err = e.Observe(ctx, tenantID, s, obs("login", "success", "unusual_location"), cfg)
	require.NoError(t, err)
	s, err = e.Observe(ctx, tenantID, s, obs("follow_up"), cfg)
	require.NoError(t, err)

	preds, err := e.Predict(ctx, tenantID, s, cfg)
	require.NoError(t, err)
	require.Len(t, preds, 1)

	var sawExtra bool
	for _, ev := range preds[0].Extras {
		for _, sym := range ev {
			if sym == "unusual_location" {
				sawExtra = true
			}
		}
	}
	assert.True(t, sawExtra)
}

func TestScenarioE_STMTooShortYieldsNoPredictions(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine()
	tenantID := tenant.Derive("t1")
	cfg := resolvedDefaults(t)
	learnDailyRoutine(t, e, tenantID, cfg)

	s := newState()
	s, err := e.Observe(ctx, tenantID, s, obs("one"), cfg)
	require.NoError(t, err)

	preds, err := e.Predict(ctx, tenantID, s, cfg)
	require.NoError(t, err)
	assert.Empty(t, preds)
}

func TestScenarioF_TenantIsolation(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine()
	cfg := resolvedDefaults(t)

	alice := tenant.Derive("alice")
	bob := tenant.Derive("bob")

	learnDailyRoutine(t, e, alice, cfg)

	s := newState()
	s, err := e.Observe(ctx, bob, s, obs("alarm", "wake_up"), cfg)
	require.NoError(t, err)
	s, err = e.Observe(ctx, bob, s, obs("shower", "get_dressed"), cfg)
	require.NoError(t, err)

	preds, err := e.Predict(ctx, bob, s, cfg)
	require.NoError(t, err)
	assert.Empty(t, preds)
}

func TestLearn_RejectsEmptySTM(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine()
	tenantID := tenant.Derive("t1")
	cfg := resolvedDefaults(t)

	_, _, err := e.Learn(ctx, tenantID, newState(), cfg)
	require.Error(t, err)
}

func TestLearn_RelearnIncrementsFrequencyAndMergesMetadata(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine()
	tenantID := tenant.Derive("t1")
	cfg := resolvedDefaults(t)

	first := newState()
	first, err := e.Observe(ctx, tenantID, first, model.Observation{Strings: []string{"a"}, Metadata: map[string]string{"source": "x"}}, cfg)
	require.NoError(t, err)
	id1, _, err := e.Learn(ctx, tenantID, first, cfg)
	require.NoError(t, err)

	second := newState()
	second, err = e.Observe(ctx, tenantID, second, model.Observation{Strings: []string{"a"}, Metadata: map[string]string{"source": "y"}}, cfg)
	require.NoError(t, err)
	id2, _, err := e.Learn(ctx, tenantID, second, cfg)
	require.NoError(t, err)

	assert.Equal(t, id1, id2)

	metadata, found, err := e.Metadata.Get(ctx, tenantID, id1)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 2, metadata.Frequency)
	assert.ElementsMatch(t, []string{"x", "y"}, metadata.Metadata["source"])
}

func TestObserve_AutoLearnAtMaxPatternLength(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine()
	tenantID := tenant.Derive("t1")

	two := uint(2)
	cfg, err := config.Resolve(config.Defaults(), config.Config{MaxPatternLength: &two}, config.Config{})
	require.NoError(t, err)

	s := newState()
	s, err = e.Observe(ctx, tenantID, s, obs("a"), cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, s.STM.Length())

	s, err = e.Observe(ctx, tenantID, s, obs("b"), cfg)
	require.NoError(t, err)
	assert.Equal(t, 0, s.STM.Length())

	count, err := e.Patterns.Count(ctx, tenantID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestObserve_RollingSTMModeKeepsLastEvent(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine()
	tenantID := tenant.Derive("t1")
	rolling := config.STMModeRolling
	cfg, err := config.Resolve(config.Defaults(), config.Config{STMMode: &rolling}, config.Config{})
	require.NoError(t, err)

	s := newState()
	s, err = e.Observe(ctx, tenantID, s, obs("a"), cfg)
	require.NoError(t, err)
	s, err = e.Observe(ctx, tenantID, s, obs("b"), cfg)
	require.NoError(t, err)

	_, s, err = e.Learn(ctx, tenantID, s, cfg)
	require.NoError(t, err)
	require.Equal(t, 1, s.STM.Length())
	assert.Equal(t, model.Event{"b"}, s.STM.Events[0])
}
