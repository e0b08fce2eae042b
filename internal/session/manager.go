// Package session is the Session Manager (spec.md §4.10): it owns session
// records, serializes operations on a given session through a per-session
// critical section, enforces TTL expiry at access time, and hands the
// record's state to the stateless core engine.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/katosystems/kato-core/internal/config"
	"github.com/katosystems/kato-core/internal/engine"
	"github.com/katosystems/kato-core/internal/katoerr"
	"github.com/katosystems/kato-core/internal/model"
)

// Manager is in-memory session storage, partitioned by session id. Distinct
// sessions lock independently (spec.md §5): two sessions with the same
// tenant id may execute concurrently because each session's critical
// section only guards its own Record.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Record
	now      func() time.Time
	engine   *engine.Engine
}

// NewManager constructs an empty Manager bound to eng, the stateless core
// engine every Observe/Learn/Predict call delegates to. now defaults to
// time.Now; tests may override it for deterministic TTL behavior.
func NewManager(eng *engine.Engine) *Manager {
	return &Manager{
		sessions: make(map[string]*Record),
		now:      time.Now,
		engine:   eng,
	}
}

// Create opens a new session under tenantID and returns its id.
func (m *Manager) Create(tenantID string, ttl time.Duration, autoExtend bool, cfg config.Config) string {
	sessionID := uuid.NewString()
	rec := newRecord(sessionID, tenantID, ttl, autoExtend, cfg, m.now())

	m.mu.Lock()
	m.sessions[sessionID] = rec
	m.mu.Unlock()

	return sessionID
}

// Delete removes a session unconditionally.
func (m *Manager) Delete(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
}

// lookup finds the record for sessionID and checks expiry, without taking
// the record's own lock.
func (m *Manager) lookup(sessionID string) (*Record, error) {
	m.mu.RLock()
	rec, ok := m.sessions[sessionID]
	m.mu.RUnlock()
	if !ok {
		return nil, katoerr.NewSessionNotFound(sessionID)
	}

	now := m.now()
	if rec.expired(now) {
		m.mu.Lock()
		delete(m.sessions, sessionID)
		m.mu.Unlock()
		return nil, katoerr.NewSessionExpired(sessionID)
	}
	return rec, nil
}

// WithSession runs fn under sessionID's critical section: the entire
// observe/learn/predict call is atomic with respect to other calls on the
// same session (spec.md §4.10, §5). Expiry is checked before fn runs and
// last_accessed/TTL are updated after it returns successfully.
func (m *Manager) WithSession(ctx context.Context, sessionID string, fn func(ctx context.Context, rec *Record) error) error {
	rec, err := m.lookup(sessionID)
	if err != nil {
		return err
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	if err := fn(ctx, rec); err != nil {
		return err
	}

	rec.touch(m.now())
	return nil
}

// Snapshot returns sessionID's live Record (not a copy) for diagnostics; it
// does not take the session's critical section, so its fields may change
// while they are being read.
func (m *Manager) Snapshot(sessionID string) (*Record, error) {
	return m.lookup(sessionID)
}

// resolve merges the global, session, and call-scoped configuration layers
// (spec.md §4.14) within sessionID's critical section.
func (m *Manager) resolve(rec *Record, global, call config.Config) (config.Resolved, error) {
	return config.Resolve(global, rec.Config, call)
}

// Observe runs the core engine's Observe against sessionID's state under its
// critical section, writing the returned state back onto the record.
func (m *Manager) Observe(ctx context.Context, sessionID string, global config.Config, obs model.Observation, call config.Config) error {
	return m.WithSession(ctx, sessionID, func(ctx context.Context, rec *Record) error {
		resolved, err := m.resolve(rec, global, call)
		if err != nil {
			return err
		}
		newState, err := m.engine.Observe(ctx, rec.TenantID, rec.state(), obs, resolved)
		if err != nil {
			return err
		}
		rec.applyState(newState)
		return nil
	})
}

// Learn runs the core engine's Learn against sessionID's state and returns
// the learned pattern's identifier.
func (m *Manager) Learn(ctx context.Context, sessionID string, global config.Config, call config.Config) (string, error) {
	var patternID string
	err := m.WithSession(ctx, sessionID, func(ctx context.Context, rec *Record) error {
		resolved, err := m.resolve(rec, global, call)
		if err != nil {
			return err
		}
		id, newState, err := m.engine.Learn(ctx, rec.TenantID, rec.state(), resolved)
		if err != nil {
			return err
		}
		rec.applyState(newState)
		patternID = id
		return nil
	})
	return patternID, err
}

// Predict runs the core engine's Predict against sessionID's current state.
// Predict never mutates STM or the emotive windows, so the record's state is
// left untouched.
func (m *Manager) Predict(ctx context.Context, sessionID string, global config.Config, call config.Config) ([]model.Prediction, error) {
	var preds []model.Prediction
	err := m.WithSession(ctx, sessionID, func(ctx context.Context, rec *Record) error {
		resolved, err := m.resolve(rec, global, call)
		if err != nil {
			return err
		}
		p, err := m.engine.Predict(ctx, rec.TenantID, rec.state(), resolved)
		if err != nil {
			return err
		}
		preds = p
		return nil
	})
	return preds, err
}
