package engine

import (
	"context"

	"github.com/katosystems/kato-core/internal/canonical"
	"github.com/katosystems/kato-core/internal/config"
	"github.com/katosystems/kato-core/internal/model"
	"github.com/katosystems/kato-core/internal/rollingwindow"
)

// Observe implements spec.md §4.11's observe: canonicalize the observation,
// append its event to STM if non-empty, push its emotives onto the
// session's rolling windows, accumulate its metadata, then invoke auto-learn
// when max_pattern_length is reached.
func (e *Engine) Observe(ctx context.Context, tenantID string, state State, obs model.Observation, cfg config.Resolved) (State, error) {
	newState := state.Clone()

	res, err := canonical.Canonicalize(tenantID, obs, e.Indexer, cfg.SortSymbols)
	if err != nil {
		return State{}, err
	}

	if res.Event != nil {
		newState.STM.Append(res.Event)
	}

	for name, v := range res.Emotives {
		newState.emotiveWindow(name, int(cfg.EmotiveWindowSize)).Push(v)
	}

	for key, v := range res.Metadata {
		newState.MetadataAccumulator[key] = append(newState.MetadataAccumulator[key], v)
	}

	if cfg.MaxPatternLength > 0 && uint(newState.STM.Length()) >= cfg.MaxPatternLength {
		_, autoState, err := e.Learn(ctx, tenantID, newState, cfg)
		if err != nil {
			return State{}, err
		}
		newState = autoState
	}

	return newState, nil
}

// emotiveWindow returns (creating if absent) the rolling window for name.
func (s *State) emotiveWindow(name string, windowSize int) *rollingwindow.Window {
	w, ok := s.EmotiveWindows[name]
	if !ok {
		w = rollingwindow.New(windowSize)
		s.EmotiveWindows[name] = w
	}
	return w
}
