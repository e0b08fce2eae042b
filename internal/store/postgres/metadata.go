package postgres

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/katosystems/kato-core/internal/katoerr"
	"github.com/katosystems/kato-core/internal/model"
)

// MetadataStore is the Postgres-backed store.MetadataStore.
type MetadataStore struct {
	pool *pgxpool.Pool
}

// NewMetadataStore wraps an open pool.
func NewMetadataStore(pool *pgxpool.Pool) *MetadataStore {
	return &MetadataStore{pool: pool}
}

// Write implements store.MetadataStore, upserting the full record.
func (s *MetadataStore) Write(ctx context.Context, m *model.PatternMetadata) error {
	if m.TenantID == "" {
		katoerr.TenantIsolationViolation("MetadataStore")
	}

	emotive, err := json.Marshal(m.EmotiveProfile)
	if err != nil {
		return katoerr.NewInternal("marshal emotive profile", err)
	}
	meta, err := json.Marshal(m.Metadata)
	if err != nil {
		return katoerr.NewInternal("marshal pattern metadata", err)
	}

	const q = `
		INSERT INTO pattern_metadata (tenant_id, identifier, frequency, emotive_profile, metadata)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (tenant_id, identifier) DO UPDATE SET
			frequency = EXCLUDED.frequency,
			emotive_profile = EXCLUDED.emotive_profile,
			metadata = EXCLUDED.metadata`

	if _, err := s.pool.Exec(ctx, q, m.TenantID, m.Identifier, m.Frequency, emotive, meta); err != nil {
		return katoerr.NewStorageUnavailable("metadata.write", err)
	}
	return nil
}

// IncrementFrequency implements store.MetadataStore, creating the row at
// frequency 1 if absent.
func (s *MetadataStore) IncrementFrequency(ctx context.Context, tenantID, identifier string) (int, error) {
	if tenantID == "" {
		katoerr.TenantIsolationViolation("MetadataStore")
	}

	const q = `
		INSERT INTO pattern_metadata (tenant_id, identifier, frequency, emotive_profile, metadata)
		VALUES ($1, $2, 1, '{}', '{}')
		ON CONFLICT (tenant_id, identifier) DO UPDATE SET
			frequency = pattern_metadata.frequency + 1
		RETURNING frequency`

	var freq int
	if err := s.pool.QueryRow(ctx, q, tenantID, identifier).Scan(&freq); err != nil {
		return 0, katoerr.NewStorageUnavailable("metadata.incrementfrequency", err)
	}
	return freq, nil
}

func scanMetadata(row pgx.Row) (*model.PatternMetadata, error) {
	var (
		m            model.PatternMetadata
		emotiveJSON  []byte
		metadataJSON []byte
	)
	if err := row.Scan(&m.TenantID, &m.Identifier, &m.Frequency, &emotiveJSON, &metadataJSON); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(emotiveJSON, &m.EmotiveProfile); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(metadataJSON, &m.Metadata); err != nil {
		return nil, err
	}
	return &m, nil
}

// Get implements store.MetadataStore.
func (s *MetadataStore) Get(ctx context.Context, tenantID, identifier string) (*model.PatternMetadata, bool, error) {
	if tenantID == "" {
		katoerr.TenantIsolationViolation("MetadataStore")
	}
	const q = `SELECT tenant_id, identifier, frequency, emotive_profile, metadata FROM pattern_metadata WHERE tenant_id = $1 AND identifier = $2`
	m, err := scanMetadata(s.pool.QueryRow(ctx, q, tenantID, identifier))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, katoerr.NewStorageUnavailable("metadata.get", err)
	}
	return m, true, nil
}

// BatchGet implements store.MetadataStore.
func (s *MetadataStore) BatchGet(ctx context.Context, tenantID string, identifiers []string) (map[string]*model.PatternMetadata, error) {
	if tenantID == "" {
		katoerr.TenantIsolationViolation("MetadataStore")
	}
	const q = `SELECT tenant_id, identifier, frequency, emotive_profile, metadata FROM pattern_metadata WHERE tenant_id = $1 AND identifier = ANY($2)`
	rows, err := s.pool.Query(ctx, q, tenantID, identifiers)
	if err != nil {
		return nil, katoerr.NewStorageUnavailable("metadata.batchget", err)
	}
	defer rows.Close()

	out := make(map[string]*model.PatternMetadata, len(identifiers))
	for rows.Next() {
		m, err := scanMetadata(rows)
		if err != nil {
			return nil, katoerr.NewInternal("scan metadata row", err)
		}
		out[m.Identifier] = m
	}
	if err := rows.Err(); err != nil {
		return nil, katoerr.NewStorageUnavailable("metadata.batchget", err)
	}
	return out, nil
}

// DropTenant implements store.MetadataStore.
func (s *MetadataStore) DropTenant(ctx context.Context, tenantID string) error {
	if tenantID == "" {
		katoerr.TenantIsolationViolation("MetadataStore")
	}
	const q = `DELETE FROM pattern_metadata WHERE tenant_id = $1`
	if _, err := s.pool.Exec(ctx, q, tenantID); err != nil {
		return katoerr.NewStorageUnavailable("metadata.droptenant", err)
	}
	return nil
}
