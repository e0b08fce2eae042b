package config

import "dario.cat/mergo"

// Merge overlays override onto base, field by field, with override's
// non-nil fields winning (mergo.WithOverride). base is left untouched; the
// merged result is returned. Slices (FilterPipeline) are replaced wholesale
// rather than concatenated, matching "later wins" for the whole option
// (spec.md §4.14).
func Merge(base, override Config) (Config, error) {
	merged := base
	if err := mergo.Merge(&merged, override, mergo.WithOverride); err != nil {
		return Config{}, err
	}
	return merged, nil
}

// Resolve merges, in precedence order (later wins), the built-in defaults,
// the global environment layer, the per-session config, and per-call
// overrides (spec.md §4.14), then converts the fully-merged layer to a
// Resolved value.
func Resolve(global, session, call Config) (Resolved, error) {
	merged, err := Merge(Defaults(), global)
	if err != nil {
		return Resolved{}, err
	}
	merged, err = Merge(merged, session)
	if err != nil {
		return Resolved{}, err
	}
	merged, err = Merge(merged, call)
	if err != nil {
		return Resolved{}, err
	}
	return merged.toResolved(), nil
}

// toResolved dereferences every field. Called only after merging on top of
// Defaults(), so every pointer is guaranteed non-nil; a nil here is an
// internal invariant violation, not a user error, so it panics rather than
// returning a zero value that would silently misconfigure the engine.
func (c Config) toResolved() Resolved {
	return Resolved{
		SortSymbols:            *must(c.SortSymbols),
		MaxPatternLength:       *must(c.MaxPatternLength),
		STMMode:                *must(c.STMMode),
		RecallThreshold:        *must(c.RecallThreshold),
		MaxPredictions:         *must(c.MaxPredictions),
		RankSortAlgo:           *must(c.RankSortAlgo),
		UseTokenMatching:       *must(c.UseTokenMatching),
		FilterPipeline:         c.FilterPipeline,
		LengthMinRatio:         *must(c.LengthMinRatio),
		LengthMaxRatio:         *must(c.LengthMaxRatio),
		JaccardThreshold:       *must(c.JaccardThreshold),
		JaccardMinOverlap:      *must(c.JaccardMinOverlap),
		MinhashThreshold:       *must(c.MinhashThreshold),
		MinhashBands:           *must(c.MinhashBands),
		MinhashRows:            *must(c.MinhashRows),
		MinhashNumHashes:       *must(c.MinhashNumHashes),
		BloomFalsePositiveRate: *must(c.BloomFalsePositiveRate),
		MaxCandidatesPerStage:  *must(c.MaxCandidatesPerStage),
		EnableFilterMetrics:    *must(c.EnableFilterMetrics),
		EmotiveWindowSize:      *must(c.EmotiveWindowSize),
		PipelineDeadline:       *must(c.PipelineDeadline),
	}
}

func must[T any](p *T) *T {
	if p == nil {
		panic("config: field unset after merging onto Defaults()")
	}
	return p
}
