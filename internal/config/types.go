// Package config is the layered Configuration Resolver (spec.md §4.14): it
// merges built-in defaults, global environment configuration, per-session
// config, and per-call overrides, in that precedence order, and validates
// the result fail-fast before it reaches the engine.
package config

import "time"

// Config is the full set of options the engine consults on every
// observe/learn/predict call. Pointer fields distinguish "not set at this
// layer" from "explicitly set to the zero value" so that Merge can apply
// precedence correctly; Resolve() always returns a Resolved with every field
// populated.
type Config struct {
	SortSymbols *bool `yaml:"sort_symbols,omitempty" validate:"omitempty"`

	MaxPatternLength *uint `yaml:"max_pattern_length,omitempty"`

	STMMode *STMMode `yaml:"stm_mode,omitempty" validate:"omitempty,oneof=CLEAR ROLLING"`

	RecallThreshold *float64 `yaml:"recall_threshold,omitempty" validate:"omitempty,gte=0,lte=1"`

	MaxPredictions *uint `yaml:"max_predictions,omitempty" validate:"omitempty,max=10000"`

	RankSortAlgo *RankSortAlgo `yaml:"rank_sort_algo,omitempty" validate:"omitempty,oneof=potential similarity evidence confidence snr predictive_information"`

	UseTokenMatching *bool `yaml:"use_token_matching,omitempty"`

	FilterPipeline []FilterStage `yaml:"filter_pipeline,omitempty" validate:"omitempty,dive,oneof=length jaccard minhash bloom rapidfuzz"`

	LengthMinRatio *float64 `yaml:"length_min_ratio,omitempty" validate:"omitempty,gt=0"`
	LengthMaxRatio *float64 `yaml:"length_max_ratio,omitempty" validate:"omitempty,gt=0"`

	JaccardThreshold  *float64 `yaml:"jaccard_threshold,omitempty" validate:"omitempty,gte=0,lte=1"`
	JaccardMinOverlap *uint    `yaml:"jaccard_min_overlap,omitempty"`

	MinhashThreshold *float64 `yaml:"minhash_threshold,omitempty" validate:"omitempty,gte=0,lte=1"`
	MinhashBands     *int     `yaml:"minhash_bands,omitempty" validate:"omitempty,gt=0"`
	MinhashRows      *int     `yaml:"minhash_rows,omitempty" validate:"omitempty,gt=0"`
	MinhashNumHashes *int     `yaml:"minhash_num_hashes,omitempty" validate:"omitempty,gt=0"`

	BloomFalsePositiveRate *float64 `yaml:"bloom_false_positive_rate,omitempty" validate:"omitempty,gt=0,lt=1"`

	MaxCandidatesPerStage *uint `yaml:"max_candidates_per_stage,omitempty"`

	EnableFilterMetrics *bool `yaml:"enable_filter_metrics,omitempty"`

	EmotiveWindowSize *uint `yaml:"emotive_window_size,omitempty"`

	// PipelineDeadline bounds cumulative filter-pipeline execution
	// (spec.md §5's cancellation/timeout requirement). Not user-facing in
	// the option table but threaded the same way as the rest of Config.
	PipelineDeadline *time.Duration `yaml:"pipeline_deadline,omitempty"`
}

// Resolved is the fully-merged, fully-populated configuration the engine
// operates on. Every field is a concrete value, never a pointer: Resolve
// panics if it would otherwise have to invent a value, since that would
// mean a default was missing (a programming bug, not a runtime condition).
type Resolved struct {
	SortSymbols            bool
	MaxPatternLength       uint
	STMMode                STMMode
	RecallThreshold        float64
	MaxPredictions         uint
	RankSortAlgo           RankSortAlgo
	UseTokenMatching       bool
	FilterPipeline         []FilterStage
	LengthMinRatio         float64
	LengthMaxRatio         float64
	JaccardThreshold       float64
	JaccardMinOverlap      uint
	MinhashThreshold       float64
	MinhashBands           int
	MinhashRows            int
	MinhashNumHashes       int
	BloomFalsePositiveRate float64
	MaxCandidatesPerStage  uint
	EnableFilterMetrics    bool
	EmotiveWindowSize      uint
	PipelineDeadline       time.Duration
}
