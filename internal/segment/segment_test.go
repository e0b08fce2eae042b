package segment

import (
	"testing"

	"github.com/katosystems/kato-core/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ev(symbols ...string) model.Event { return model.Event(symbols) }

func TestSegment_SimpleSingleEventMatch(t *testing.T) {
	pattern := []model.Event{ev("a"), ev("b"), ev("c")}
	stm := []model.Event{ev("b")}

	r, ok := Segment(pattern, stm)
	require.True(t, ok)
	assert.Equal(t, []model.Event{ev("a")}, r.Past)
	assert.Equal(t, []model.Event{ev("b")}, r.Present)
	assert.Equal(t, []model.Event{ev("c")}, r.Future)
}

func TestSegment_NoMatchIsUndefined(t *testing.T) {
	pattern := []model.Event{ev("a"), ev("b")}
	stm := []model.Event{ev("zzz")}

	_, ok := Segment(pattern, stm)
	assert.False(t, ok)
}

func TestSegment_MissingSymbolsPerPresentEvent(t *testing.T) {
	pattern := []model.Event{ev("a", "b"), ev("c")}
	stm := []model.Event{ev("a")}

	r, ok := Segment(pattern, stm)
	require.True(t, ok)
	require.Len(t, r.Missing, 1)
	assert.Equal(t, model.Event{"b"}, r.Missing[0])
}

func TestSegment_ExtrasPerSTMEvent(t *testing.T) {
	pattern := []model.Event{ev("a")}
	stm := []model.Event{ev("a", "unexpected")}

	r, ok := Segment(pattern, stm)
	require.True(t, ok)
	require.Len(t, r.Extras, 1)
	assert.Equal(t, model.Event{"unexpected"}, r.Extras[0])
}

func TestSegment_PresentSpansFirstToLastMatch(t *testing.T) {
	pattern := []model.Event{ev("x"), ev("a"), ev("mid"), ev("b"), ev("y")}
	stm := []model.Event{ev("a"), ev("b")}

	r, ok := Segment(pattern, stm)
	require.True(t, ok)
	assert.Equal(t, []model.Event{ev("x")}, r.Past)
	assert.Equal(t, []model.Event{ev("a"), ev("mid"), ev("b")}, r.Present)
	assert.Equal(t, []model.Event{ev("y")}, r.Future)
}

func TestFragmentation_NoGapsIsZero(t *testing.T) {
	present := []model.Event{ev("a"), ev("b")}
	stm := []model.Event{ev("a"), ev("b")}
	assert.Equal(t, 0, Fragmentation(present, stm))
}

func TestFragmentation_OneGapIsOne(t *testing.T) {
	present := []model.Event{ev("a"), ev("gap"), ev("b")}
	stm := []model.Event{ev("a"), ev("b")}
	assert.Equal(t, 1, Fragmentation(present, stm))
}
