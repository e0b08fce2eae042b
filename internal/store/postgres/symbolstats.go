package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/katosystems/kato-core/internal/katoerr"
	"github.com/katosystems/kato-core/internal/model"
)

// SymbolStatsStore is the Postgres-backed store.SymbolStatsStore.
type SymbolStatsStore struct {
	pool *pgxpool.Pool
}

// NewSymbolStatsStore wraps an open pool.
func NewSymbolStatsStore(pool *pgxpool.Pool) *SymbolStatsStore {
	return &SymbolStatsStore{pool: pool}
}

// IncrementSymbolFrequency implements store.SymbolStatsStore.
func (s *SymbolStatsStore) IncrementSymbolFrequency(ctx context.Context, tenantID, symbol string) error {
	if tenantID == "" {
		katoerr.TenantIsolationViolation("SymbolStatsStore")
	}
	const q = `
		INSERT INTO symbol_statistics (tenant_id, symbol, frequency, pattern_member_frequency)
		VALUES ($1, $2, 1, 0)
		ON CONFLICT (tenant_id, symbol) DO UPDATE SET
			frequency = symbol_statistics.frequency + 1`
	if _, err := s.pool.Exec(ctx, q, tenantID, symbol); err != nil {
		return katoerr.NewStorageUnavailable("symbolstats.incrementsymbolfrequency", err)
	}
	return nil
}

// IncrementPatternMemberFrequency implements store.SymbolStatsStore.
func (s *SymbolStatsStore) IncrementPatternMemberFrequency(ctx context.Context, tenantID, symbol string) error {
	if tenantID == "" {
		katoerr.TenantIsolationViolation("SymbolStatsStore")
	}
	const q = `
		INSERT INTO symbol_statistics (tenant_id, symbol, frequency, pattern_member_frequency)
		VALUES ($1, $2, 0, 1)
		ON CONFLICT (tenant_id, symbol) DO UPDATE SET
			pattern_member_frequency = symbol_statistics.pattern_member_frequency + 1`
	if _, err := s.pool.Exec(ctx, q, tenantID, symbol); err != nil {
		return katoerr.NewStorageUnavailable("symbolstats.incrementpatternmemberfrequency", err)
	}
	return nil
}

func scanSymbolStats(row pgx.Row) (*model.SymbolStatistics, error) {
	var e model.SymbolStatistics
	if err := row.Scan(&e.TenantID, &e.Symbol, &e.Frequency, &e.PatternMemberFrequency); err != nil {
		return nil, err
	}
	return &e, nil
}

// Get implements store.SymbolStatsStore.
func (s *SymbolStatsStore) Get(ctx context.Context, tenantID, symbol string) (*model.SymbolStatistics, bool, error) {
	if tenantID == "" {
		katoerr.TenantIsolationViolation("SymbolStatsStore")
	}
	const q = `SELECT tenant_id, symbol, frequency, pattern_member_frequency FROM symbol_statistics WHERE tenant_id = $1 AND symbol = $2`
	e, err := scanSymbolStats(s.pool.QueryRow(ctx, q, tenantID, symbol))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, katoerr.NewStorageUnavailable("symbolstats.get", err)
	}
	return e, true, nil
}

// BatchGet implements store.SymbolStatsStore.
func (s *SymbolStatsStore) BatchGet(ctx context.Context, tenantID string, symbols []string) (map[string]*model.SymbolStatistics, error) {
	if tenantID == "" {
		katoerr.TenantIsolationViolation("SymbolStatsStore")
	}
	const q = `SELECT tenant_id, symbol, frequency, pattern_member_frequency FROM symbol_statistics WHERE tenant_id = $1 AND symbol = ANY($2)`
	rows, err := s.pool.Query(ctx, q, tenantID, symbols)
	if err != nil {
		return nil, katoerr.NewStorageUnavailable("symbolstats.batchget", err)
	}
	defer rows.Close()

	out := make(map[string]*model.SymbolStatistics, len(symbols))
	for rows.Next() {
		e, err := scanSymbolStats(rows)
		if err != nil {
			return nil, katoerr.NewInternal("scan symbol stats row", err)
		}
		out[e.Symbol] = e
	}
	if err := rows.Err(); err != nil {
		return nil, katoerr.NewStorageUnavailable("symbolstats.batchget", err)
	}
	return out, nil
}

// DropTenant implements store.SymbolStatsStore.
func (s *SymbolStatsStore) DropTenant(ctx context.Context, tenantID string) error {
	if tenantID == "" {
		katoerr.TenantIsolationViolation("SymbolStatsStore")
	}
	const q = `DELETE FROM symbol_statistics WHERE tenant_id = $1`
	if _, err := s.pool.Exec(ctx, q, tenantID); err != nil {
		return katoerr.NewStorageUnavailable("symbolstats.droptenant", err)
	}
	return nil
}
