// Package engine is the stateless Core Engine (spec.md §4.11): pure
// observe/learn/predict functions with no instance state, no locks, and no
// shared mutable memory. Given the same (state, config, input) a call always
// returns the same (new_state, output) — the Session Manager owns the state
// and the locking around it; the engine only transforms values.
package engine

import (
	"github.com/katosystems/kato-core/internal/canonical"
	"github.com/katosystems/kato-core/internal/filter"
	"github.com/katosystems/kato-core/internal/model"
	"github.com/katosystems/kato-core/internal/rank"
	"github.com/katosystems/kato-core/internal/rollingwindow"
	"github.com/katosystems/kato-core/internal/store"
)

// State is the portion of a session record the engine reads and returns a
// new copy of. It excludes everything the Session Manager alone is
// responsible for (timers, locks, tenant/session ids).
type State struct {
	STM                 model.STM
	EmotiveWindows      map[string]*rollingwindow.Window
	MetadataAccumulator map[string][]string
}

// Clone returns an independent copy of s, safe to mutate without affecting
// the caller's copy.
func (s State) Clone() State {
	out := State{
		STM:                 s.STM.Clone(),
		EmotiveWindows:      make(map[string]*rollingwindow.Window, len(s.EmotiveWindows)),
		MetadataAccumulator: make(map[string][]string, len(s.MetadataAccumulator)),
	}
	for name, w := range s.EmotiveWindows {
		out.EmotiveWindows[name] = w.Clone()
	}
	for k, v := range s.MetadataAccumulator {
		cp := make([]string, len(v))
		copy(cp, v)
		out.MetadataAccumulator[k] = cp
	}
	return out
}

// Engine wires together the collaborators observe/learn/predict need:
// the vector indexer, the three tenant-scoped stores, the filter pipeline,
// and the ranker. It holds no per-call state of its own.
type Engine struct {
	Indexer     canonical.VectorIndexer
	Patterns    store.PatternStore
	Metadata    store.MetadataStore
	SymbolStats store.SymbolStatsStore
	Filter      *filter.Pipeline
	Ranker      *rank.Ranker
}

// New builds an Engine from its collaborators.
func New(indexer canonical.VectorIndexer, patterns store.PatternStore, metadata store.MetadataStore, symbolStats store.SymbolStatsStore) *Engine {
	return &Engine{
		Indexer:     indexer,
		Patterns:    patterns,
		Metadata:    metadata,
		SymbolStats: symbolStats,
		Filter:      filter.NewPipeline(patterns),
		Ranker:      rank.New(symbolStats, patterns),
	}
}
