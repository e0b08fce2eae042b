package engine

import (
	"context"
	"sort"
	"time"

	"github.com/katosystems/kato-core/internal/config"
	"github.com/katosystems/kato-core/internal/katoerr"
	"github.com/katosystems/kato-core/internal/minhash"
	"github.com/katosystems/kato-core/internal/model"
	"github.com/katosystems/kato-core/internal/patternhash"
	"github.com/katosystems/kato-core/internal/rollingwindow"
)

// Learn implements spec.md §4.11's learn: it is rejected if the STM is
// empty. A first-time identifier writes a full pattern and seeds its
// metadata and symbol-member counters; a re-learned identifier only
// increments frequency, folds the session's emotive window and
// accumulated metadata into the stored profile, and bumps symbol
// frequencies (never pattern-member frequency). STM is then reset per
// stm_mode.
func (e *Engine) Learn(ctx context.Context, tenantID string, state State, cfg config.Resolved) (string, State, error) {
	newState := state.Clone()

	if newState.STM.Length() == 0 {
		return "", state, katoerr.NewInvalidInput("stm", "cannot learn from an empty short-term memory")
	}

	events := make([]model.Event, len(newState.STM.Events))
	for i, ev := range newState.STM.Events {
		events[i] = ev.Clone()
	}
	patternID := patternhash.Hash(events)

	exists, err := e.Patterns.Exists(ctx, tenantID, patternID)
	if err != nil {
		return "", state, err
	}

	if exists {
		if err := e.relearn(ctx, tenantID, patternID, newState, cfg); err != nil {
			return "", state, err
		}
	} else {
		if err := e.learnNew(ctx, tenantID, patternID, events, newState, cfg); err != nil {
			return "", state, err
		}
	}

	for _, ev := range events {
		for _, sym := range ev {
			if err := e.SymbolStats.IncrementSymbolFrequency(ctx, tenantID, sym); err != nil {
				return "", state, err
			}
		}
	}

	switch cfg.STMMode {
	case config.STMModeRolling:
		newState.STM.KeepLastEvent()
	default:
		newState.STM.Clear()
	}

	return patternID, newState, nil
}

func (e *Engine) learnNew(ctx context.Context, tenantID, patternID string, events []model.Event, state State, cfg config.Resolved) error {
	multiset := flattenMultiset(events)
	sig := minhash.Signature(multiset, minhash.Config{NumHashes: cfg.MinhashNumHashes, Bands: cfg.MinhashBands, Rows: cfg.MinhashRows})

	now := time.Now().UTC()
	pattern := &model.Pattern{
		Identifier:    patternID,
		TenantID:      tenantID,
		Events:        events,
		Length:        len(events),
		TokenMultiset: multiset,
		FirstToken:    events[0][0],
		LastToken:     events[len(events)-1][len(events[len(events)-1])-1],
		MinhashSig:    sig,
		LSHBands:      minhash.Bands(sig, minhash.Config{NumHashes: cfg.MinhashNumHashes, Bands: cfg.MinhashBands, Rows: cfg.MinhashRows}),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := e.Patterns.Write(ctx, pattern); err != nil {
		return err
	}

	profile := make(map[string][]float64, len(state.EmotiveWindows))
	for name, w := range state.EmotiveWindows {
		profile[name] = w.Values()
	}

	metadata := &model.PatternMetadata{
		TenantID:       tenantID,
		Identifier:     patternID,
		Frequency:      1,
		EmotiveProfile: profile,
		Metadata:       dedupMetadata(state.MetadataAccumulator),
	}
	if err := e.Metadata.Write(ctx, metadata); err != nil {
		return err
	}

	seen := make(map[string]struct{})
	for _, sym := range multiset {
		if _, ok := seen[sym]; ok {
			continue
		}
		seen[sym] = struct{}{}
		if err := e.SymbolStats.IncrementPatternMemberFrequency(ctx, tenantID, sym); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) relearn(ctx context.Context, tenantID, patternID string, state State, cfg config.Resolved) error {
	freq, err := e.Metadata.IncrementFrequency(ctx, tenantID, patternID)
	if err != nil {
		return err
	}

	metadata, found, err := e.Metadata.Get(ctx, tenantID, patternID)
	if err != nil {
		return err
	}
	if !found {
		metadata = &model.PatternMetadata{
			TenantID:       tenantID,
			Identifier:     patternID,
			EmotiveProfile: make(map[string][]float64),
			Metadata:       make(map[string][]string),
		}
	}
	metadata.Frequency = freq

	if metadata.EmotiveProfile == nil {
		metadata.EmotiveProfile = make(map[string][]float64)
	}
	for name, sessionWindow := range state.EmotiveWindows {
		stored := rollingwindow.New(int(cfg.EmotiveWindowSize))
		for _, v := range metadata.EmotiveProfile[name] {
			stored.Push(v)
		}
		for _, v := range sessionWindow.Values() {
			stored.Push(v)
		}
		metadata.EmotiveProfile[name] = stored.Values()
	}

	if metadata.Metadata == nil {
		metadata.Metadata = make(map[string][]string)
	}
	for key, values := range state.MetadataAccumulator {
		metadata.Metadata[key] = unionSorted(metadata.Metadata[key], values)
	}

	return e.Metadata.Write(ctx, metadata)
}

func flattenMultiset(events []model.Event) []string {
	var out []string
	for _, e := range events {
		out = append(out, e...)
	}
	return out
}

func dedupMetadata(acc map[string][]string) map[string][]string {
	out := make(map[string][]string, len(acc))
	for k, v := range acc {
		out[k] = unionSorted(nil, v)
	}
	return out
}

// unionSorted merges base and incoming into a deduplicated, sorted slice —
// metadata accumulation is a set union, and storage must be deterministic
// across re-learns regardless of observation order.
func unionSorted(base, incoming []string) []string {
	set := make(map[string]struct{}, len(base)+len(incoming))
	for _, v := range base {
		set[v] = struct{}{}
	}
	for _, v := range incoming {
		set[v] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
