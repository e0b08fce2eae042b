// Package store defines the contracts for the three tenant-scoped stores the
// prediction core depends on (spec.md §4.4–§4.6): the append-only columnar
// Pattern Store, the point-lookup Metadata Store, and the Symbol-Statistics
// Store. Every operation takes an explicit tenant id; no filter without one
// is expressible through these interfaces (spec.md §4.4's isolation
// requirement).
package store

import (
	"context"

	"github.com/katosystems/kato-core/internal/model"
)

// Filters constrains a PatternStore.Scan call. Zero-valued fields are
// unconstrained. LengthMin/LengthMax are inclusive; RequiredTokens and
// RequiredBands are each overlap-matched (a pattern satisfies one if it
// holds any of its values), and every non-zero field must be satisfied.
type Filters struct {
	LengthMin      int
	LengthMax      int
	RequiredTokens []string
	RequiredBands  []string
	FirstToken     string
	LastToken      string
}

// PatternStore is the append-only, tenant-partitioned columnar store of
// learned patterns (spec.md §4.4).
type PatternStore interface {
	// Write is idempotent on (tenant_id, identifier): re-writes of an
	// existing identifier are no-ops.
	Write(ctx context.Context, p *model.Pattern) error
	// Scan returns every pattern under tenantID matching every predicate in
	// filters. An empty Filters matches every stored pattern for the tenant.
	Scan(ctx context.Context, tenantID string, filters Filters) ([]*model.Pattern, error)
	// Get fetches a single pattern by identifier, or (nil, false) if absent.
	Get(ctx context.Context, tenantID, identifier string) (*model.Pattern, bool, error)
	// Exists reports whether identifier is stored under tenantID.
	Exists(ctx context.Context, tenantID, identifier string) (bool, error)
	// Count returns the number of patterns stored under tenantID.
	Count(ctx context.Context, tenantID string) (int64, error)
	// DropTenant bulk-removes every pattern under tenantID.
	DropTenant(ctx context.Context, tenantID string) error
}

// MetadataStore is the point-lookup store of PatternMetadata, keyed by
// (tenant_id, identifier) (spec.md §4.5).
type MetadataStore interface {
	Write(ctx context.Context, m *model.PatternMetadata) error
	// IncrementFrequency atomically increments and returns the new
	// frequency, creating the record at frequency 1 if absent.
	IncrementFrequency(ctx context.Context, tenantID, identifier string) (int, error)
	Get(ctx context.Context, tenantID, identifier string) (*model.PatternMetadata, bool, error)
	BatchGet(ctx context.Context, tenantID string, identifiers []string) (map[string]*model.PatternMetadata, error)
	DropTenant(ctx context.Context, tenantID string) error
}

// SymbolStatsStore is the per-(tenant,symbol) frequency/pattern-membership
// counter store (spec.md §4.6).
type SymbolStatsStore interface {
	// IncrementSymbolFrequency is called for every symbol occurrence in
	// every learned event, on every learn including re-learns.
	IncrementSymbolFrequency(ctx context.Context, tenantID, symbol string) error
	// IncrementPatternMemberFrequency is called only when a pattern is
	// newly created, once per distinct symbol in that pattern.
	IncrementPatternMemberFrequency(ctx context.Context, tenantID, symbol string) error
	Get(ctx context.Context, tenantID, symbol string) (*model.SymbolStatistics, bool, error)
	BatchGet(ctx context.Context, tenantID string, symbols []string) (map[string]*model.SymbolStatistics, error)
	DropTenant(ctx context.Context, tenantID string) error
}
