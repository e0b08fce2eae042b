package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSTM_AppendGrowsUnbounded(t *testing.T) {
	var s STM
	s.Append(Event{"a"})
	s.Append(Event{"b"})
	s.Append(Event{"c"})

	assert.Equal(t, 3, s.Length())
	assert.Equal(t, []Event{{"a"}, {"b"}, {"c"}}, s.Events)
}

func TestSTM_Clear(t *testing.T) {
	s := STM{Events: []Event{{"a"}, {"b"}}}
	s.Clear()
	assert.Equal(t, 0, s.Length())
}

func TestSTM_KeepLastEvent(t *testing.T) {
	s := STM{Events: []Event{{"a"}, {"b"}, {"c"}}}
	s.KeepLastEvent()
	assert.Equal(t, []Event{{"c"}}, s.Events)
}

func TestSTM_KeepLastEventOnEmptyIsNoop(t *testing.T) {
	var s STM
	s.KeepLastEvent()
	assert.Equal(t, 0, s.Length())
}

func TestSTM_SymbolCountCountsDuplicates(t *testing.T) {
	s := STM{Events: []Event{{"a", "b"}, {"a"}}}
	assert.Equal(t, 3, s.SymbolCount())
}

func TestSTM_FlattenedSymbolsDeduplicates(t *testing.T) {
	s := STM{Events: []Event{{"a", "b"}, {"a"}}}
	assert.Equal(t, map[string]struct{}{"a": {}, "b": {}}, s.FlattenedSymbols())
}

func TestSTM_Clone(t *testing.T) {
	s := STM{Events: []Event{{"a"}}}
	clone := s.Clone()
	clone.Events[0][0] = "z"

	assert.Equal(t, "a", s.Events[0][0])
	assert.Equal(t, "z", clone.Events[0][0])
}
