package session

import (
	"sync"
	"time"

	"github.com/katosystems/kato-core/internal/config"
	"github.com/katosystems/kato-core/internal/engine"
	"github.com/katosystems/kato-core/internal/model"
	"github.com/katosystems/kato-core/internal/rollingwindow"
)

// Record is one session's owned state (spec.md §4.10): tenant id, STM,
// emotive window, accumulated metadata, and its own config layer. Every
// field mutated by the engine is guarded by mu, which the Manager takes for
// the duration of a whole observe/learn/predict call — never just the
// read or just the write half.
type Record struct {
	mu sync.Mutex

	SessionID    string
	TenantID     string
	CreatedAt    time.Time
	LastAccessed time.Time
	TTL          time.Duration
	AutoExtend   bool
	ExpiresAt    time.Time // zero means no expiry

	Config config.Config
	STM    model.STM

	EmotiveWindows      map[string]*rollingwindow.Window
	MetadataAccumulator map[string][]string
}

func newRecord(sessionID, tenantID string, ttl time.Duration, autoExtend bool, cfg config.Config, now time.Time) *Record {
	rec := &Record{
		SessionID:           sessionID,
		TenantID:            tenantID,
		CreatedAt:           now,
		LastAccessed:        now,
		TTL:                 ttl,
		AutoExtend:          autoExtend,
		Config:              cfg,
		EmotiveWindows:      make(map[string]*rollingwindow.Window),
		MetadataAccumulator: make(map[string][]string),
	}
	if ttl > 0 {
		rec.ExpiresAt = now.Add(ttl)
	}
	return rec
}

func (r *Record) expired(now time.Time) bool {
	if r.ExpiresAt.IsZero() {
		return false
	}
	return now.After(r.ExpiresAt)
}

// touch updates last_accessed and, if auto_extend is set, slides ExpiresAt
// forward by another full TTL from now (spec.md §4.10).
func (r *Record) touch(now time.Time) {
	r.LastAccessed = now
	if r.AutoExtend && r.TTL > 0 {
		r.ExpiresAt = now.Add(r.TTL)
	}
}

// emotiveWindow returns (creating if absent) the rolling window for name,
// sized to windowSize.
func (r *Record) emotiveWindow(name string, windowSize int) *rollingwindow.Window {
	w, ok := r.EmotiveWindows[name]
	if !ok {
		w = rollingwindow.New(windowSize)
		r.EmotiveWindows[name] = w
	}
	return w
}

// state projects the record's fields into the shape the stateless core
// engine operates on.
func (r *Record) state() engine.State {
	return engine.State{
		STM:                 r.STM,
		EmotiveWindows:      r.EmotiveWindows,
		MetadataAccumulator: r.MetadataAccumulator,
	}
}

// applyState writes the engine's returned state back onto the record.
func (r *Record) applyState(s engine.State) {
	r.STM = s.STM
	r.EmotiveWindows = s.EmotiveWindows
	r.MetadataAccumulator = s.MetadataAccumulator
}
