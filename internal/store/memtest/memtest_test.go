package memtest

import (
	"context"
	"testing"

	"github.com/katosystems/kato-core/internal/model"
	"github.com/katosystems/kato-core/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatternStore_WriteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := NewPatternStore()
	p := &model.Pattern{TenantID: "t1", Identifier: "PTRN|abc", Length: 2}
	require.NoError(t, s.Write(ctx, p))
	require.NoError(t, s.Write(ctx, p))

	count, err := s.Count(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestPatternStore_EmptyFiltersReturnsEverything(t *testing.T) {
	ctx := context.Background()
	s := NewPatternStore()
	require.NoError(t, s.Write(ctx, &model.Pattern{TenantID: "t1", Identifier: "PTRN|a", Length: 1}))
	require.NoError(t, s.Write(ctx, &model.Pattern{TenantID: "t1", Identifier: "PTRN|b", Length: 2}))

	got, err := s.Scan(ctx, "t1", store.Filters{})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestPatternStore_LengthFilterNarrows(t *testing.T) {
	ctx := context.Background()
	s := NewPatternStore()
	require.NoError(t, s.Write(ctx, &model.Pattern{TenantID: "t1", Identifier: "PTRN|a", Length: 1}))
	require.NoError(t, s.Write(ctx, &model.Pattern{TenantID: "t1", Identifier: "PTRN|b", Length: 5}))

	got, err := s.Scan(ctx, "t1", store.Filters{LengthMin: 3, LengthMax: 10})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "PTRN|b", got[0].Identifier)
}

func TestPatternStore_TenantIsolation(t *testing.T) {
	ctx := context.Background()
	s := NewPatternStore()
	require.NoError(t, s.Write(ctx, &model.Pattern{TenantID: "alice", Identifier: "PTRN|a", Length: 1}))

	got, err := s.Scan(ctx, "bob", store.Filters{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPatternStore_DropTenant(t *testing.T) {
	ctx := context.Background()
	s := NewPatternStore()
	require.NoError(t, s.Write(ctx, &model.Pattern{TenantID: "t1", Identifier: "PTRN|a", Length: 1}))
	require.NoError(t, s.DropTenant(ctx, "t1"))

	count, err := s.Count(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestMetadataStore_IncrementFrequencyCreatesThenIncrements(t *testing.T) {
	ctx := context.Background()
	s := NewMetadataStore()
	f1, err := s.IncrementFrequency(ctx, "t1", "PTRN|a")
	require.NoError(t, err)
	assert.Equal(t, 1, f1)

	f2, err := s.IncrementFrequency(ctx, "t1", "PTRN|a")
	require.NoError(t, err)
	assert.Equal(t, 2, f2)
}

func TestMetadataStore_BatchGet(t *testing.T) {
	ctx := context.Background()
	s := NewMetadataStore()
	_, err := s.IncrementFrequency(ctx, "t1", "PTRN|a")
	require.NoError(t, err)

	got, err := s.BatchGet(ctx, "t1", []string{"PTRN|a", "PTRN|missing"})
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Contains(t, got, "PTRN|a")
}

func TestSymbolStatsStore_SeparateCounters(t *testing.T) {
	ctx := context.Background()
	s := NewSymbolStatsStore()
	require.NoError(t, s.IncrementSymbolFrequency(ctx, "t1", "alarm"))
	require.NoError(t, s.IncrementSymbolFrequency(ctx, "t1", "alarm"))
	require.NoError(t, s.IncrementPatternMemberFrequency(ctx, "t1", "alarm"))

	got, ok, err := s.Get(ctx, "t1", "alarm")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(2), got.Frequency)
	assert.Equal(t, int64(1), got.PatternMemberFrequency)
}

func TestPatternStore_RequiresTenant(t *testing.T) {
	ctx := context.Background()
	s := NewPatternStore()
	assert.Panics(t, func() {
		_, _ = s.Scan(ctx, "", store.Filters{})
	})
}
