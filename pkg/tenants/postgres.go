// pkg/tenants/postgres.go
package tenants

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// PostgresStore implements Store and Writer backed by PostgreSQL.
type PostgresStore struct {
	dbPool *pgxpool.Pool      // Connection pool to PostgreSQL
	log    *zap.SugaredLogger // Logger for diagnostic output
}

// NewPostgresStore constructs a PostgreSQL-backed tenant store.
func NewPostgresStore(dbPool *pgxpool.Pool, log *zap.SugaredLogger) *PostgresStore {
	return &PostgresStore{dbPool: dbPool, log: log}
}

// EnsureSchema creates the tenants table if it does not already exist.
// Safe to call repeatedly (idempotent).
func EnsureSchema(ctx context.Context, dbPool *pgxpool.Pool) error {
	_, err := dbPool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS tenants (
  id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
  client_id text NOT NULL UNIQUE,
  hashed_client_secret text NOT NULL,
  backend_url text NOT NULL DEFAULT '',
  metadata text NOT NULL DEFAULT '{}',
  is_disabled boolean NOT NULL DEFAULT false,
  created_at timestamptz NOT NULL DEFAULT NOW(),
  updated_at timestamptz NOT NULL DEFAULT NOW()
);
-- Backfill / ensure columns exist (for upgrades)
ALTER TABLE tenants ADD COLUMN IF NOT EXISTS backend_url text NOT NULL DEFAULT '';
ALTER TABLE tenants ADD COLUMN IF NOT EXISTS metadata text NOT NULL DEFAULT '{}';
ALTER TABLE tenants ADD COLUMN IF NOT EXISTS is_disabled boolean NOT NULL DEFAULT false;
`)
	return err
}

// FindByClientID fetches a tenant by its exact client id.
func (p *PostgresStore) FindByClientID(ctx context.Context, clientID string) (Tenant, error) {
	row := p.dbPool.QueryRow(ctx, `SELECT id::text, client_id, hashed_client_secret, backend_url, COALESCE(metadata,''), is_disabled FROM tenants WHERE client_id=$1`, clientID)
	var t Tenant
	if err := row.Scan(&t.ID, &t.ClientID, &t.HashedSecret, &t.BackendURL, &t.Metadata, &t.IsDisabled); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Tenant{}, ErrNotFound
		}
		return Tenant{}, fmt.Errorf("query tenant: %w", err)
	}
	return t, nil
}

// Upsert inserts the tenant or updates the row holding the same client id.
func (p *PostgresStore) Upsert(ctx context.Context, t Tenant) error {
	_, err := p.dbPool.Exec(ctx, `INSERT INTO tenants(client_id,hashed_client_secret,backend_url,metadata,is_disabled)
	  VALUES ($1,$2,$3,$4,$5)
	  ON CONFLICT (client_id) DO UPDATE SET hashed_client_secret=EXCLUDED.hashed_client_secret,backend_url=EXCLUDED.backend_url,metadata=EXCLUDED.metadata,is_disabled=EXCLUDED.is_disabled,updated_at=NOW()`,
		t.ClientID, t.HashedSecret, t.BackendURL, t.Metadata, t.IsDisabled)
	if err != nil {
		return fmt.Errorf("upsert tenant %s: %w", t.ClientID, err)
	}
	p.log.Debugw("tenant upserted", "client_id", t.ClientID)
	return nil
}
