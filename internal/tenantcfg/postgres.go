package tenantcfg

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// pgStore persists tenant configuration documents in PostgreSQL, one jsonb
// row per tenant keyed by the config URN.
type pgStore struct {
	dbPool *pgxpool.Pool
	log    *zap.SugaredLogger
}

func NewPostgresStore(dbPool *pgxpool.Pool, log *zap.SugaredLogger) Store {
	return &pgStore{dbPool: dbPool, log: log}
}

// EnsureSchema creates the config table if it does not already exist.
// Safe to call repeatedly (idempotent).
func EnsureSchema(ctx context.Context, dbPool *pgxpool.Pool) error {
	_, err := dbPool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS scim_tenant_configs (
  urn text PRIMARY KEY,
  tenant_id text NOT NULL,
  document jsonb NOT NULL,
  created_at timestamptz NOT NULL DEFAULT NOW(),
  updated_at timestamptz NOT NULL DEFAULT NOW()
);
CREATE UNIQUE INDEX IF NOT EXISTS scim_tenant_configs_tenant_idx ON scim_tenant_configs(tenant_id);
`)
	return err
}

func (p *pgStore) Load(ctx context.Context, tenantID string) (map[string]any, error) {
	row := p.dbPool.QueryRow(ctx, `SELECT document FROM scim_tenant_configs WHERE urn=$1`, ConfigURN(tenantID))
	var raw []byte
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load config for %s: %w", tenantID, err)
	}
	return decodeDoc(raw)
}

func (p *pgStore) Save(ctx context.Context, tenantID string, doc map[string]any) error {
	raw, err := encodeDoc(doc)
	if err != nil {
		return err
	}
	_, err = p.dbPool.Exec(ctx, `INSERT INTO scim_tenant_configs(urn, tenant_id, document)
	  VALUES ($1,$2,$3)
	  ON CONFLICT (urn) DO UPDATE SET document=EXCLUDED.document, updated_at=NOW()`,
		ConfigURN(tenantID), tenantID, raw)
	if err != nil {
		return fmt.Errorf("save config for %s: %w", tenantID, err)
	}
	return nil
}
