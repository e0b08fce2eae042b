// Package rank implements the composite prediction ranking (spec.md §4.9):
// similarity, evidence, confidence, snr, fragmentation, itfdf_similarity,
// predictive_information, normalized_entropy, and the default composite
// "potential" score, plus per-emotive rolling-window summaries.
package rank

import (
	"context"
	"math"
	"sort"

	"github.com/agnivade/levenshtein"
	"github.com/katosystems/kato-core/internal/config"
	"github.com/katosystems/kato-core/internal/model"
	"github.com/katosystems/kato-core/internal/rollingwindow"
	"github.com/katosystems/kato-core/internal/segment"
	"github.com/katosystems/kato-core/internal/store"
)

// Ranker computes a model.Prediction from a segmented pattern match, using
// the symbol-statistics and pattern stores for the tenant-wide frequencies
// itfdf_similarity, normalized_entropy, and predictive_information need.
type Ranker struct {
	SymbolStats store.SymbolStatsStore
	Patterns    store.PatternStore
}

// New builds a Ranker backed by the given stores.
func New(symbolStats store.SymbolStatsStore, patterns store.PatternStore) *Ranker {
	return &Ranker{SymbolStats: symbolStats, Patterns: patterns}
}

// Rank scores one segmented match. pattern and metadata describe the
// matched pattern; seg is its segmentation against stm (spec.md §4.8); cfg
// selects token- vs. character-level similarity.
func (r *Ranker) Rank(ctx context.Context, tenantID string, pattern *model.Pattern, metadata *model.PatternMetadata, seg segment.Result, stm []model.Event, cfg config.Resolved) (model.Prediction, error) {
	stmSet := flattenSet(stm)
	presentSet := flattenSet(seg.Present)

	similarity := similarityScore(stmSet, presentSet, stm, seg.Present, cfg.UseTokenMatching)
	evidence := ratio(len(seg.Present), len(pattern.Events))
	confidence := ratio(len(intersect(stmSet, presentSet)), len(presentSet))
	snr := snrScore(stm, seg.Extras)
	fragmentation := segment.Fragmentation(seg.Present, stm)

	itfdf, err := r.itfdfSimilarity(ctx, tenantID, stmSet, presentSet)
	if err != nil {
		return model.Prediction{}, err
	}

	normEntropy, err := r.normalizedEntropy(ctx, tenantID, presentSet)
	if err != nil {
		return model.Prediction{}, err
	}

	predInfo, err := r.predictiveInformation(ctx, tenantID, presentSet, flattenSet(seg.Future))
	if err != nil {
		return model.Prediction{}, err
	}

	potential := (evidence+confidence)*snr + itfdf + 1/float64(fragmentation+1)

	emotivePredictions := make(map[string]model.EmotiveSummary, len(metadata.EmotiveProfile))
	for name, values := range metadata.EmotiveProfile {
		emotivePredictions[name] = rollingwindow.Summarize(values)
	}

	return model.Prediction{
		PatternName:           pattern.Identifier,
		Past:                  seg.Past,
		Present:               seg.Present,
		Future:                seg.Future,
		Missing:               seg.Missing,
		Extras:                seg.Extras,
		Similarity:            similarity,
		Evidence:              evidence,
		Confidence:            confidence,
		SNR:                   snr,
		Potential:             potential,
		PredictiveInformation: predInfo,
		Fragmentation:         fragmentation,
		ItfdfSimilarity:       itfdf,
		NormalizedEntropy:     normEntropy,
		EmotivePredictions:    emotivePredictions,
	}, nil
}

func flattenSet(events []model.Event) map[string]struct{} {
	set := make(map[string]struct{})
	for _, e := range events {
		for _, sym := range e {
			set[sym] = struct{}{}
		}
	}
	return set
}

func intersect(a, b map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{})
	for k := range a {
		if _, ok := b[k]; ok {
			out[k] = struct{}{}
		}
	}
	return out
}

func union(a, b map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		out[k] = struct{}{}
	}
	for k := range b {
		out[k] = struct{}{}
	}
	return out
}

// ratio is a/b guarded: 0/0 is defined as 0 (spec.md §4.9 numeric safety).
func ratio(a, b int) float64 {
	if b == 0 {
		return 0
	}
	return float64(a) / float64(b)
}

// similarityScore implements token- or character-level similarity
// depending on use_token_matching (spec.md §4.9, §4.14).
func similarityScore(stmSet, presentSet map[string]struct{}, stm, present []model.Event, useTokenMatching bool) float64 {
	if useTokenMatching {
		return ratio(len(intersect(stmSet, presentSet)), len(stmSet))
	}
	return characterSimilarity(stm, present)
}

// characterSimilarity is 1 minus the normalized Levenshtein distance
// between the space-joined STM and present symbol strings (spec.md's
// character-mode similarity, resolved as an Open Question).
func characterSimilarity(stm, present []model.Event) float64 {
	a := joinEvents(stm)
	b := joinEvents(present)
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 1
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(maxLen)
}

func joinEvents(events []model.Event) string {
	var out []byte
	for _, e := range events {
		for _, sym := range e {
			out = append(out, sym...)
			out = append(out, ' ')
		}
	}
	return string(out)
}

// snrScore is matched STM symbols ÷ (matched + extras), where matched and
// extras are occurrence counts (not distinct symbols): matched is whatever
// of the STM's total symbol occurrences did not end up in extras. Defined
// as 1.0 when the STM is empty (spec.md §4.9).
func snrScore(stm []model.Event, extras []model.Event) float64 {
	total := countSymbols(stm)
	extrasCount := countSymbols(extras)
	if total == 0 {
		return 1.0
	}
	matched := total - extrasCount
	if matched < 0 {
		matched = 0
	}
	return float64(matched) / float64(total)
}

func countSymbols(events []model.Event) int {
	n := 0
	for _, e := range events {
		n += len(e)
	}
	return n
}

// itfdfSimilarity implements Σ_{t∈S∩P} 1/log(1+freq(t)) / |S∪P|, using
// tenant-wide symbol frequencies from the symbol-statistics store (spec.md
// §4.9, formula decided as an Open Question).
func (r *Ranker) itfdfSimilarity(ctx context.Context, tenantID string, stmSet, presentSet map[string]struct{}) (float64, error) {
	common := intersect(stmSet, presentSet)
	unionSet := union(stmSet, presentSet)
	if len(unionSet) == 0 || len(common) == 0 {
		return 0, nil
	}

	tokens := make([]string, 0, len(common))
	for t := range common {
		tokens = append(tokens, t)
	}
	sort.Strings(tokens)
	freqs, err := r.SymbolStats.BatchGet(ctx, tenantID, tokens)
	if err != nil {
		return 0, err
	}

	var sum float64
	for _, t := range tokens {
		freq := int64(1)
		if stat, ok := freqs[t]; ok && stat.Frequency > 0 {
			freq = stat.Frequency
		}
		denom := math.Log(1 + float64(freq))
		if denom <= 0 {
			continue
		}
		sum += 1 / denom
	}
	return sum / float64(len(unionSet)), nil
}

// normalizedEntropy is the Shannon entropy of present's symbol distribution
// (weighted by tenant-wide symbol frequency), normalized to [0,1] by the
// maximum possible entropy for that many distinct symbols (spec.md §4.9).
func (r *Ranker) normalizedEntropy(ctx context.Context, tenantID string, presentSet map[string]struct{}) (float64, error) {
	if len(presentSet) <= 1 {
		return 0, nil
	}

	tokens := make([]string, 0, len(presentSet))
	for t := range presentSet {
		tokens = append(tokens, t)
	}
	sort.Strings(tokens)
	freqs, err := r.SymbolStats.BatchGet(ctx, tenantID, tokens)
	if err != nil {
		return 0, err
	}

	var total float64
	weights := make(map[string]float64, len(tokens))
	for _, t := range tokens {
		w := float64(1)
		if stat, ok := freqs[t]; ok && stat.Frequency > 0 {
			w = float64(stat.Frequency)
		}
		weights[t] = w
		total += w
	}
	if total == 0 {
		return 0, nil
	}

	var entropy float64
	for _, t := range tokens {
		p := weights[t] / total
		if p <= 0 {
			continue
		}
		entropy -= p * math.Log2(p)
	}

	maxEntropy := math.Log2(float64(len(tokens)))
	if maxEntropy == 0 {
		return 0, nil
	}
	return entropy / maxEntropy, nil
}

// predictiveInformation is p(present,future)·log2(p(present,future) /
// (p(present)·p(future))), with probabilities estimated as the fraction of
// the tenant's learned patterns whose token multiset overlaps the
// present/future symbol sets (spec.md §4.9). 0 if any factor is 0.
func (r *Ranker) predictiveInformation(ctx context.Context, tenantID string, presentSet, futureSet map[string]struct{}) (float64, error) {
	total, err := r.Patterns.Count(ctx, tenantID)
	if err != nil {
		return 0, err
	}
	if total == 0 || len(presentSet) == 0 || len(futureSet) == 0 {
		return 0, nil
	}

	presentTokens := setSlice(presentSet)
	futureTokens := setSlice(futureSet)

	presentMatches, err := r.Patterns.Scan(ctx, tenantID, store.Filters{RequiredTokens: presentTokens})
	if err != nil {
		return 0, err
	}
	futureMatches, err := r.Patterns.Scan(ctx, tenantID, store.Filters{RequiredTokens: futureTokens})
	if err != nil {
		return 0, err
	}

	jointCount := 0
	for _, p := range presentMatches {
		if overlapsAny(p.TokenSet(), futureSet) {
			jointCount++
		}
	}

	pPresent := float64(len(presentMatches)) / float64(total)
	pFuture := float64(len(futureMatches)) / float64(total)
	pJoint := float64(jointCount) / float64(total)

	if pPresent == 0 || pFuture == 0 || pJoint == 0 {
		return 0, nil
	}
	return pJoint * math.Log2(pJoint/(pPresent*pFuture)), nil
}

func setSlice(s map[string]struct{}) []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	return out
}

func overlapsAny(a map[string]struct{}, b map[string]struct{}) bool {
	for k := range b {
		if _, ok := a[k]; ok {
			return true
		}
	}
	return false
}
