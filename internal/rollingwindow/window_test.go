package rollingwindow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWindow_EvictsOldestOnOverflow(t *testing.T) {
	w := New(3)
	w.Push(1)
	w.Push(2)
	w.Push(3)
	w.Push(4)
	assert.Equal(t, []float64{2, 3, 4}, w.Values())
}

func TestWindow_UnboundedWhenCapacityZero(t *testing.T) {
	w := New(0)
	for i := 0; i < 10; i++ {
		w.Push(float64(i))
	}
	assert.Equal(t, 10, w.Len())
}

func TestWindow_Clone_Independent(t *testing.T) {
	w := New(3)
	w.Push(1)
	clone := w.Clone()
	clone.Push(2)
	assert.Equal(t, []float64{1}, w.Values())
	assert.Equal(t, []float64{1, 2}, clone.Values())
}

func TestSummarize_MeanStdMinMax(t *testing.T) {
	s := Summarize([]float64{1, 2, 3})
	assert.Equal(t, 2.0, s.Mean)
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 3.0, s.Max)
	assert.Equal(t, 3, s.Count)
	assert.InDelta(t, 0.8165, s.Std, 0.001)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	assert.Equal(t, 0, s.Count)
}
