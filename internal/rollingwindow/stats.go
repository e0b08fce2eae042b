package rollingwindow

import (
	"math"

	"github.com/katosystems/kato-core/internal/model"
)

// Summarize computes mean/std/min/max/count over a window's values,
// ignoring null entries (represented by NaN). Window.Push does not filter
// NaN, so a window's values may contain them.
func Summarize(values []float64) model.EmotiveSummary {
	var sum float64
	var count int
	min := math.Inf(1)
	max := math.Inf(-1)

	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		count++
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	if count == 0 {
		return model.EmotiveSummary{}
	}

	mean := sum / float64(count)

	var variance float64
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		d := v - mean
		variance += d * d
	}
	variance /= float64(count)

	return model.EmotiveSummary{
		Mean:  mean,
		Std:   math.Sqrt(variance),
		Min:   min,
		Max:   max,
		Count: count,
	}
}
