package config

import "time"

func boolPtr(b bool) *bool          { return &b }
func uintPtr(u uint) *uint          { return &u }
func intPtr(i int) *int             { return &i }
func floatPtr(f float64) *float64   { return &f }
func stmModePtr(m STMMode) *STMMode { return &m }
func rankAlgoPtr(a RankSortAlgo) *RankSortAlgo { return &a }
func durationPtr(d time.Duration) *time.Duration { return &d }

// Defaults returns the built-in default layer (spec.md §4.14's option
// table). It is the lowest-precedence layer in Resolve.
func Defaults() Config {
	return Config{
		SortSymbols:            boolPtr(true),
		MaxPatternLength:       uintPtr(0),
		STMMode:                stmModePtr(STMModeClear),
		RecallThreshold:        floatPtr(0.1),
		MaxPredictions:         uintPtr(100),
		RankSortAlgo:           rankAlgoPtr(RankSortPotential),
		UseTokenMatching:       boolPtr(true),
		FilterPipeline:         nil,
		LengthMinRatio:         floatPtr(0.5),
		LengthMaxRatio:         floatPtr(2.0),
		JaccardThreshold:       floatPtr(0.3),
		JaccardMinOverlap:      uintPtr(2),
		MinhashThreshold:       floatPtr(0.7),
		MinhashBands:           intPtr(20),
		MinhashRows:            intPtr(5),
		MinhashNumHashes:       intPtr(100),
		BloomFalsePositiveRate: floatPtr(0.01),
		MaxCandidatesPerStage:  uintPtr(100000),
		EnableFilterMetrics:    boolPtr(true),
		EmotiveWindowSize:      uintPtr(5),
		PipelineDeadline:       durationPtr(30 * time.Second),
	}
}
