package vectorindex

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashIndexer_Deterministic(t *testing.T) {
	idx := NewHashIndexer(0)
	v := []float64{1, 2, 3}
	a, err := idx.Index("t1", v)
	require.NoError(t, err)
	b, err := idx.Index("t1", v)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestHashIndexer_DifferentTenantsDiffer(t *testing.T) {
	idx := NewHashIndexer(0)
	v := []float64{1, 2, 3}
	a, err := idx.Index("t1", v)
	require.NoError(t, err)
	b, err := idx.Index("t2", v)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestHashIndexer_HasWireFormatPrefix(t *testing.T) {
	idx := NewHashIndexer(0)
	sym, err := idx.Index("t1", []float64{1})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(sym, SymbolPrefix))
}

func TestHashIndexer_RejectsWrongDimensionality(t *testing.T) {
	idx := NewHashIndexer(3)
	_, err := idx.Index("t1", []float64{1, 2})
	assert.Error(t, err)
}
