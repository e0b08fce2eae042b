// Package filter implements the candidate-filtering pipeline (spec.md
// §4.7): an ordered, configurable sequence of stages that narrows the
// tenant's stored patterns down to a small candidate set the segmenter and
// ranker can afford to examine in full.
package filter

import (
	"context"
	"sort"
	"time"

	"github.com/katosystems/kato-core/internal/config"
	"github.com/katosystems/kato-core/internal/katoerr"
	"github.com/katosystems/kato-core/internal/model"
	"github.com/katosystems/kato-core/internal/store"
)

// Input is the query-side state derived from the current STM that every
// stage may consult (spec.md §4.7's per-stage "Inputs").
type Input struct {
	TokenSet      map[string]struct{} // distinct STM symbols, S
	TokenMultiset []string            // STM flattened symbols, with repeats
	Length        int                 // |STM events|
	MinhashSig    []uint64            // computed on demand by the caller
	RequiredSet   map[string]struct{} // symbols the bloom stage must confirm; defaults to TokenSet
}

// Candidate is a pattern still alive in the pipeline, carrying the
// estimated pre-score the most recent stage assigned it. Score is used only
// for deterministic truncation (spec.md §4.7): "highest estimated pre-score
// wins; ties broken by identifier lexicographic order".
type Candidate struct {
	Pattern *model.Pattern
	Score   float64
}

// StageMetric records one stage's contribution to a pipeline run (spec.md
// §4.7: "elapsed wall-clock, input count, output count").
type StageMetric struct {
	Stage   config.FilterStage
	Elapsed time.Duration
	InCount int
	OutCount int
}

// Stage narrows a candidate set. Implementations must be pure functions of
// (ctx, tenantID, input, candidates) — no stage mutates its input slice.
type Stage interface {
	Name() config.FilterStage
	Run(ctx context.Context, tenantID string, input Input, candidates []Candidate) ([]Candidate, error)
}

// Pipeline runs a configured, ordered list of Stages.
type Pipeline struct {
	Patterns store.PatternStore
}

// NewPipeline builds a Pipeline backed by the given pattern store.
func NewPipeline(patterns store.PatternStore) *Pipeline {
	return &Pipeline{Patterns: patterns}
}

func (p *Pipeline) stageFor(name config.FilterStage, cfg config.Resolved) Stage {
	switch name {
	case config.FilterStageLength:
		return lengthStage{cfg: cfg}
	case config.FilterStageJaccard:
		return jaccardStage{cfg: cfg}
	case config.FilterStageMinhash:
		return minhashStage{cfg: cfg}
	case config.FilterStageBloom:
		return bloomStage{cfg: cfg}
	case config.FilterStageRapidFuzz:
		return fuzzyStage{cfg: cfg, useTokenMatching: cfg.UseTokenMatching}
	default:
		return nil
	}
}

// Run executes cfg.FilterPipeline in order against every pattern stored
// under tenantID. An empty pipeline bypasses filtering entirely: the
// candidate set is exactly every stored pattern (spec.md §4.7).
//
// The cumulative deadline in cfg.PipelineDeadline is enforced between
// stages: if it has elapsed after at least one stage completed, Run
// returns the candidates collected so far wrapped in a PartialResultsError
// (spec.md §5); the caller may use or discard them.
func (p *Pipeline) Run(ctx context.Context, tenantID string, input Input, cfg config.Resolved) ([]Candidate, []StageMetric, error) {
	if input.RequiredSet == nil {
		input.RequiredSet = input.TokenSet
	}

	deadline := time.Now().Add(cfg.PipelineDeadline)

	all, err := p.Patterns.Scan(ctx, tenantID, store.Filters{})
	if err != nil {
		return nil, nil, err
	}
	candidates := make([]Candidate, 0, len(all))
	for _, pat := range all {
		candidates = append(candidates, Candidate{Pattern: pat})
	}

	var metrics []StageMetric
	for i, name := range cfg.FilterPipeline {
		if i > 0 && cfg.PipelineDeadline > 0 && time.Now().After(deadline) {
			ids := candidateIDs(candidates)
			return candidates, metrics, &katoerr.PartialResultsError{
				PartialCandidateIDs: ids,
				StageReached:        string(cfg.FilterPipeline[i-1]),
			}
		}

		stage := p.stageFor(name, cfg)
		if stage == nil {
			return nil, nil, katoerr.NewInvalidInput("filter_pipeline", "unrecognized stage "+string(name))
		}

		start := time.Now()
		out, err := stage.Run(ctx, tenantID, input, candidates)
		if err != nil {
			return nil, nil, err
		}
		elapsed := time.Since(start)

		out = truncate(out, cfg.MaxCandidatesPerStage)

		if cfg.EnableFilterMetrics {
			metrics = append(metrics, StageMetric{
				Stage:    name,
				Elapsed:  elapsed,
				InCount:  len(candidates),
				OutCount: len(out),
			})
		}
		candidates = out
	}

	return candidates, metrics, nil
}

func candidateIDs(cs []Candidate) []string {
	ids := make([]string, len(cs))
	for i, c := range cs {
		ids[i] = c.Pattern.Identifier
	}
	return ids
}

// truncate enforces max_candidates_per_stage deterministically: highest
// Score wins, ties broken by identifier ascending (spec.md §4.7).
func truncate(cs []Candidate, max uint) []Candidate {
	if max == 0 || uint(len(cs)) <= max {
		return cs
	}
	sort.SliceStable(cs, func(i, j int) bool {
		if cs[i].Score != cs[j].Score {
			return cs[i].Score > cs[j].Score
		}
		return cs[i].Pattern.Identifier < cs[j].Pattern.Identifier
	})
	return cs[:max]
}
