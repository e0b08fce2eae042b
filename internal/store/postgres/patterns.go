package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/katosystems/kato-core/internal/katoerr"
	"github.com/katosystems/kato-core/internal/model"
	"github.com/katosystems/kato-core/internal/store"
)

// PatternStore is the Postgres-backed store.PatternStore.
type PatternStore struct {
	pool *pgxpool.Pool
}

// NewPatternStore wraps an open pool.
func NewPatternStore(pool *pgxpool.Pool) *PatternStore {
	return &PatternStore{pool: pool}
}

func sigToInt64(sig []uint64) []int64 {
	out := make([]int64, len(sig))
	for i, v := range sig {
		out[i] = int64(v) //nolint:gosec // round-trips the exact bit pattern, see sigFromInt64
	}
	return out
}

func sigFromInt64(sig []int64) []uint64 {
	out := make([]uint64, len(sig))
	for i, v := range sig {
		out[i] = uint64(v) //nolint:gosec // inverse of sigToInt64
	}
	return out
}

// Write implements store.PatternStore. It is idempotent via ON CONFLICT DO
// NOTHING: a re-write of an existing identifier leaves the stored row
// untouched (spec.md §4.4).
func (s *PatternStore) Write(ctx context.Context, p *model.Pattern) error {
	if p.TenantID == "" {
		katoerr.TenantIsolationViolation("PatternStore")
	}

	events, err := json.Marshal(p.Events)
	if err != nil {
		return katoerr.NewInternal("marshal pattern events", err)
	}

	const q = `
		INSERT INTO patterns
			(tenant_id, identifier, events, length, token_multiset, first_token, last_token, minhash_sig, lsh_bands, created_at, updated_at)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now())
		ON CONFLICT (tenant_id, identifier) DO NOTHING`

	_, err = s.pool.Exec(ctx, q,
		p.TenantID, p.Identifier, events, p.Length, p.TokenMultiset, p.FirstToken, p.LastToken,
		sigToInt64(p.MinhashSig), p.LSHBands,
	)
	if err != nil {
		return katoerr.NewStorageUnavailable("patterns.write", err)
	}
	return nil
}

func scanPattern(row pgx.Row) (*model.Pattern, error) {
	var (
		p          model.Pattern
		eventsJSON []byte
		sig        []int64
	)
	if err := row.Scan(
		&p.TenantID, &p.Identifier, &eventsJSON, &p.Length, &p.TokenMultiset,
		&p.FirstToken, &p.LastToken, &sig, &p.LSHBands, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(eventsJSON, &p.Events); err != nil {
		return nil, fmt.Errorf("unmarshal pattern events: %w", err)
	}
	p.MinhashSig = sigFromInt64(sig)
	return &p, nil
}

const patternColumns = `tenant_id, identifier, events, length, token_multiset, first_token, last_token, minhash_sig, lsh_bands, created_at, updated_at`

// Scan implements store.PatternStore. Filters.RequiredTokens/RequiredBands
// are pushed down as `&&` (array overlap) predicates, exercising the GIN
// indexes created in createGINIndexes.
func (s *PatternStore) Scan(ctx context.Context, tenantID string, filters store.Filters) ([]*model.Pattern, error) {
	if tenantID == "" {
		katoerr.TenantIsolationViolation("PatternStore")
	}

	q := `SELECT ` + patternColumns + ` FROM patterns WHERE tenant_id = $1`
	args := []any{tenantID}

	if filters.LengthMin > 0 {
		args = append(args, filters.LengthMin)
		q += fmt.Sprintf(" AND length >= $%d", len(args))
	}
	if filters.LengthMax > 0 {
		args = append(args, filters.LengthMax)
		q += fmt.Sprintf(" AND length <= $%d", len(args))
	}
	if filters.FirstToken != "" {
		args = append(args, filters.FirstToken)
		q += fmt.Sprintf(" AND first_token = $%d", len(args))
	}
	if filters.LastToken != "" {
		args = append(args, filters.LastToken)
		q += fmt.Sprintf(" AND last_token = $%d", len(args))
	}
	if len(filters.RequiredTokens) > 0 {
		args = append(args, filters.RequiredTokens)
		q += fmt.Sprintf(" AND token_multiset && $%d", len(args))
	}
	if len(filters.RequiredBands) > 0 {
		args = append(args, filters.RequiredBands)
		q += fmt.Sprintf(" AND lsh_bands && $%d", len(args))
	}
	q += " ORDER BY identifier"

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, katoerr.NewStorageUnavailable("patterns.scan", err)
	}
	defer rows.Close()

	var out []*model.Pattern
	for rows.Next() {
		p, err := scanPattern(rows)
		if err != nil {
			return nil, katoerr.NewInternal("scan pattern row", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, katoerr.NewStorageUnavailable("patterns.scan", err)
	}
	return out, nil
}

// Get implements store.PatternStore.
func (s *PatternStore) Get(ctx context.Context, tenantID, identifier string) (*model.Pattern, bool, error) {
	if tenantID == "" {
		katoerr.TenantIsolationViolation("PatternStore")
	}
	const q = `SELECT ` + patternColumns + ` FROM patterns WHERE tenant_id = $1 AND identifier = $2`
	row := s.pool.QueryRow(ctx, q, tenantID, identifier)
	p, err := scanPattern(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, katoerr.NewStorageUnavailable("patterns.get", err)
	}
	return p, true, nil
}

// Exists implements store.PatternStore.
func (s *PatternStore) Exists(ctx context.Context, tenantID, identifier string) (bool, error) {
	if tenantID == "" {
		katoerr.TenantIsolationViolation("PatternStore")
	}
	const q = `SELECT EXISTS(SELECT 1 FROM patterns WHERE tenant_id = $1 AND identifier = $2)`
	var exists bool
	if err := s.pool.QueryRow(ctx, q, tenantID, identifier).Scan(&exists); err != nil {
		return false, katoerr.NewStorageUnavailable("patterns.exists", err)
	}
	return exists, nil
}

// Count implements store.PatternStore.
func (s *PatternStore) Count(ctx context.Context, tenantID string) (int64, error) {
	if tenantID == "" {
		katoerr.TenantIsolationViolation("PatternStore")
	}
	const q = `SELECT count(*) FROM patterns WHERE tenant_id = $1`
	var n int64
	if err := s.pool.QueryRow(ctx, q, tenantID).Scan(&n); err != nil {
		return 0, katoerr.NewStorageUnavailable("patterns.count", err)
	}
	return n, nil
}

// DropTenant implements store.PatternStore.
func (s *PatternStore) DropTenant(ctx context.Context, tenantID string) error {
	if tenantID == "" {
		katoerr.TenantIsolationViolation("PatternStore")
	}
	const q = `DELETE FROM patterns WHERE tenant_id = $1`
	if _, err := s.pool.Exec(ctx, q, tenantID); err != nil {
		return katoerr.NewStorageUnavailable("patterns.droptenant", err)
	}
	return nil
}
