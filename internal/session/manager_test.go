package session

import (
	"context"
	"testing"
	"time"

	"github.com/katosystems/kato-core/internal/config"
	"github.com/katosystems/kato-core/internal/engine"
	"github.com/katosystems/kato-core/internal/katoerr"
	"github.com/katosystems/kato-core/internal/model"
	"github.com/katosystems/kato-core/internal/store/memtest"
	"github.com/katosystems/kato-core/internal/tenant"
	"github.com/katosystems/kato-core/internal/vectorindex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEngine() *engine.Engine {
	return engine.New(vectorindex.NewHashIndexer(0), memtest.NewPatternStore(), memtest.NewMetadataStore(), memtest.NewSymbolStatsStore())
}

func TestManager_CreateAndWithSession(t *testing.T) {
	m := NewManager(testEngine())
	id := m.Create("t1", 0, false, config.Config{})

	var seen string
	err := m.WithSession(context.Background(), id, func(ctx context.Context, rec *Record) error {
		seen = rec.TenantID
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "t1", seen)
}

func TestManager_UnknownSessionIsNotFound(t *testing.T) {
	m := NewManager(testEngine())
	err := m.WithSession(context.Background(), "nope", func(ctx context.Context, rec *Record) error { return nil })
	require.Error(t, err)
	assert.ErrorIs(t, err, katoerr.ErrSessionNotFound)
}

func TestManager_ExpiredSessionReturnsExpiredError(t *testing.T) {
	base := time.Now()
	m := NewManager(testEngine())
	m.now = func() time.Time { return base }
	id := m.Create("t1", time.Minute, false, config.Config{})

	m.now = func() time.Time { return base.Add(2 * time.Minute) }
	err := m.WithSession(context.Background(), id, func(ctx context.Context, rec *Record) error { return nil })
	require.Error(t, err)
	assert.ErrorIs(t, err, katoerr.ErrSessionExpired)
}

func TestManager_AutoExtendSlidesExpiry(t *testing.T) {
	base := time.Now()
	m := NewManager(testEngine())
	m.now = func() time.Time { return base }
	id := m.Create("t1", time.Minute, true, config.Config{})

	m.now = func() time.Time { return base.Add(30 * time.Second) }
	require.NoError(t, m.WithSession(context.Background(), id, func(ctx context.Context, rec *Record) error { return nil }))

	m.now = func() time.Time { return base.Add(90 * time.Second) }
	err := m.WithSession(context.Background(), id, func(ctx context.Context, rec *Record) error { return nil })
	assert.NoError(t, err)
}

func TestManager_WithoutAutoExtendExpiryIsFixed(t *testing.T) {
	base := time.Now()
	m := NewManager(testEngine())
	m.now = func() time.Time { return base }
	id := m.Create("t1", time.Minute, false, config.Config{})

	m.now = func() time.Time { return base.Add(30 * time.Second) }
	require.NoError(t, m.WithSession(context.Background(), id, func(ctx context.Context, rec *Record) error { return nil }))

	m.now = func() time.Time { return base.Add(90 * time.Second) }
	err := m.WithSession(context.Background(), id, func(ctx context.Context, rec *Record) error { return nil })
	assert.ErrorIs(t, err, katoerr.ErrSessionExpired)
}

func TestManager_DeleteRemovesSession(t *testing.T) {
	m := NewManager(testEngine())
	id := m.Create("t1", 0, false, config.Config{})
	m.Delete(id)

	err := m.WithSession(context.Background(), id, func(ctx context.Context, rec *Record) error { return nil })
	assert.ErrorIs(t, err, katoerr.ErrSessionNotFound)
}

func TestManager_FnErrorPropagatesWithoutTouching(t *testing.T) {
	m := NewManager(testEngine())
	id := m.Create("t1", 0, false, config.Config{})

	boom := assert.AnError
	err := m.WithSession(context.Background(), id, func(ctx context.Context, rec *Record) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestManager_ObserveLearnPredictRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewManager(testEngine())
	tenantID := tenant.Derive("t1")
	id := m.Create(tenantID, 0, false, config.Config{})

	learn := func(strings ...string) {
		require.NoError(t, m.Observe(ctx, id, config.Config{}, model.Observation{Strings: strings}, config.Config{}))
	}
	learn("alarm", "wake_up")
	learn("shower", "get_dressed")
	learn("breakfast", "coffee")

	patternID, err := m.Learn(ctx, id, config.Config{}, config.Config{})
	require.NoError(t, err)
	assert.NotEmpty(t, patternID)

	rec, err := m.Snapshot(id)
	require.NoError(t, err)
	assert.Equal(t, 0, rec.STM.Length())

	learn("alarm", "wake_up")

	preds, err := m.Predict(ctx, id, config.Config{}, config.Config{})
	require.NoError(t, err)
	require.Len(t, preds, 1)
	assert.Equal(t, []model.Event{{"get_dressed", "shower"}, {"breakfast", "coffee"}}, preds[0].Future)
}
