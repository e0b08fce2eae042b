// Package memtest is an in-memory implementation of the store interfaces,
// used by unit tests and as a drop-in for environments without Postgres. It
// implements the same interfaces as internal/store/postgres; only this
// implementation has tests in this repository.
package memtest

import (
	"context"
	"sort"
	"sync"

	"github.com/katosystems/kato-core/internal/katoerr"
	"github.com/katosystems/kato-core/internal/model"
	"github.com/katosystems/kato-core/internal/store"
)

// PatternStore is an in-memory store.PatternStore, partitioned by tenant.
type PatternStore struct {
	mu    sync.RWMutex
	byTen map[string]map[string]*model.Pattern
}

// NewPatternStore constructs an empty PatternStore.
func NewPatternStore() *PatternStore {
	return &PatternStore{byTen: make(map[string]map[string]*model.Pattern)}
}

func (s *PatternStore) requireTenant(tenantID string) {
	if tenantID == "" {
		katoerr.TenantIsolationViolation("PatternStore")
	}
}

// Write implements store.PatternStore.
func (s *PatternStore) Write(ctx context.Context, p *model.Pattern) error {
	s.requireTenant(p.TenantID)
	s.mu.Lock()
	defer s.mu.Unlock()

	tenant, ok := s.byTen[p.TenantID]
	if !ok {
		tenant = make(map[string]*model.Pattern)
		s.byTen[p.TenantID] = tenant
	}
	if _, exists := tenant[p.Identifier]; exists {
		return nil // idempotent no-op on re-write
	}
	cp := *p
	tenant[p.Identifier] = &cp
	return nil
}

// Scan implements store.PatternStore.
func (s *PatternStore) Scan(ctx context.Context, tenantID string, filters store.Filters) ([]*model.Pattern, error) {
	s.requireTenant(tenantID)
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*model.Pattern
	for _, p := range s.byTen[tenantID] {
		if matches(p, filters) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Identifier < out[j].Identifier })
	return out, nil
}

func matches(p *model.Pattern, f store.Filters) bool {
	if f.LengthMin > 0 && p.Length < f.LengthMin {
		return false
	}
	if f.LengthMax > 0 && p.Length > f.LengthMax {
		return false
	}
	if f.FirstToken != "" && p.FirstToken != f.FirstToken {
		return false
	}
	if f.LastToken != "" && p.LastToken != f.LastToken {
		return false
	}
	if len(f.RequiredTokens) > 0 {
		set := p.TokenSet()
		hit := false
		for _, t := range f.RequiredTokens {
			if _, ok := set[t]; ok {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	if len(f.RequiredBands) > 0 {
		hit := false
		for _, want := range f.RequiredBands {
			for _, have := range p.LSHBands {
				if want == have {
					hit = true
					break
				}
			}
			if hit {
				break
			}
		}
		if !hit {
			return false
		}
	}
	return true
}

// Get implements store.PatternStore.
func (s *PatternStore) Get(ctx context.Context, tenantID, identifier string) (*model.Pattern, bool, error) {
	s.requireTenant(tenantID)
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byTen[tenantID][identifier]
	return p, ok, nil
}

// Exists implements store.PatternStore.
func (s *PatternStore) Exists(ctx context.Context, tenantID, identifier string) (bool, error) {
	_, ok, err := s.Get(ctx, tenantID, identifier)
	return ok, err
}

// Count implements store.PatternStore.
func (s *PatternStore) Count(ctx context.Context, tenantID string) (int64, error) {
	s.requireTenant(tenantID)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.byTen[tenantID])), nil
}

// DropTenant implements store.PatternStore.
func (s *PatternStore) DropTenant(ctx context.Context, tenantID string) error {
	s.requireTenant(tenantID)
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byTen, tenantID)
	return nil
}

// MetadataStore is an in-memory store.MetadataStore.
type MetadataStore struct {
	mu    sync.Mutex
	byTen map[string]map[string]*model.PatternMetadata
}

// NewMetadataStore constructs an empty MetadataStore.
func NewMetadataStore() *MetadataStore {
	return &MetadataStore{byTen: make(map[string]map[string]*model.PatternMetadata)}
}

func (s *MetadataStore) tenant(tenantID string) map[string]*model.PatternMetadata {
	t, ok := s.byTen[tenantID]
	if !ok {
		t = make(map[string]*model.PatternMetadata)
		s.byTen[tenantID] = t
	}
	return t
}

// Write implements store.MetadataStore.
func (s *MetadataStore) Write(ctx context.Context, m *model.PatternMetadata) error {
	if m.TenantID == "" {
		katoerr.TenantIsolationViolation("MetadataStore")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *m
	s.tenant(m.TenantID)[m.Identifier] = &cp
	return nil
}

// IncrementFrequency implements store.MetadataStore.
func (s *MetadataStore) IncrementFrequency(ctx context.Context, tenantID, identifier string) (int, error) {
	if tenantID == "" {
		katoerr.TenantIsolationViolation("MetadataStore")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.tenant(tenantID)
	m, ok := t[identifier]
	if !ok {
		m = &model.PatternMetadata{
			TenantID:       tenantID,
			Identifier:     identifier,
			EmotiveProfile: map[string][]float64{},
			Metadata:       map[string][]string{},
		}
		t[identifier] = m
	}
	m.Frequency++
	return m.Frequency, nil
}

// Get implements store.MetadataStore.
func (s *MetadataStore) Get(ctx context.Context, tenantID, identifier string) (*model.PatternMetadata, bool, error) {
	if tenantID == "" {
		katoerr.TenantIsolationViolation("MetadataStore")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.tenant(tenantID)[identifier]
	return m, ok, nil
}

// BatchGet implements store.MetadataStore.
func (s *MetadataStore) BatchGet(ctx context.Context, tenantID string, identifiers []string) (map[string]*model.PatternMetadata, error) {
	if tenantID == "" {
		katoerr.TenantIsolationViolation("MetadataStore")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.tenant(tenantID)
	out := make(map[string]*model.PatternMetadata, len(identifiers))
	for _, id := range identifiers {
		if m, ok := t[id]; ok {
			out[id] = m
		}
	}
	return out, nil
}

// DropTenant implements store.MetadataStore.
func (s *MetadataStore) DropTenant(ctx context.Context, tenantID string) error {
	if tenantID == "" {
		katoerr.TenantIsolationViolation("MetadataStore")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byTen, tenantID)
	return nil
}

// SymbolStatsStore is an in-memory store.SymbolStatsStore.
type SymbolStatsStore struct {
	mu    sync.Mutex
	byTen map[string]map[string]*model.SymbolStatistics
}

// NewSymbolStatsStore constructs an empty SymbolStatsStore.
func NewSymbolStatsStore() *SymbolStatsStore {
	return &SymbolStatsStore{byTen: make(map[string]map[string]*model.SymbolStatistics)}
}

func (s *SymbolStatsStore) entry(tenantID, symbol string) *model.SymbolStatistics {
	t, ok := s.byTen[tenantID]
	if !ok {
		t = make(map[string]*model.SymbolStatistics)
		s.byTen[tenantID] = t
	}
	e, ok := t[symbol]
	if !ok {
		e = &model.SymbolStatistics{TenantID: tenantID, Symbol: symbol}
		t[symbol] = e
	}
	return e
}

// IncrementSymbolFrequency implements store.SymbolStatsStore.
func (s *SymbolStatsStore) IncrementSymbolFrequency(ctx context.Context, tenantID, symbol string) error {
	if tenantID == "" {
		katoerr.TenantIsolationViolation("SymbolStatsStore")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entry(tenantID, symbol).Frequency++
	return nil
}

// IncrementPatternMemberFrequency implements store.SymbolStatsStore.
func (s *SymbolStatsStore) IncrementPatternMemberFrequency(ctx context.Context, tenantID, symbol string) error {
	if tenantID == "" {
		katoerr.TenantIsolationViolation("SymbolStatsStore")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entry(tenantID, symbol).PatternMemberFrequency++
	return nil
}

// Get implements store.SymbolStatsStore.
func (s *SymbolStatsStore) Get(ctx context.Context, tenantID, symbol string) (*model.SymbolStatistics, bool, error) {
	if tenantID == "" {
		katoerr.TenantIsolationViolation("SymbolStatsStore")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.byTen[tenantID]
	if !ok {
		return nil, false, nil
	}
	e, ok := t[symbol]
	return e, ok, nil
}

// BatchGet implements store.SymbolStatsStore.
func (s *SymbolStatsStore) BatchGet(ctx context.Context, tenantID string, symbols []string) (map[string]*model.SymbolStatistics, error) {
	if tenantID == "" {
		katoerr.TenantIsolationViolation("SymbolStatsStore")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]*model.SymbolStatistics, len(symbols))
	t := s.byTen[tenantID]
	for _, sym := range symbols {
		if e, ok := t[sym]; ok {
			out[sym] = e
		}
	}
	return out, nil
}

// DropTenant implements store.SymbolStatsStore.
func (s *SymbolStatsStore) DropTenant(ctx context.Context, tenantID string) error {
	if tenantID == "" {
		katoerr.TenantIsolationViolation("SymbolStatsStore")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byTen, tenantID)
	return nil
}
