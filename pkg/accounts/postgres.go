// pkg/accounts/postgres.go
package accounts

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// pgProvider implements Provider backed by PostgreSQL.
type pgProvider struct {
	dbPool *pgxpool.Pool
	log    *zap.SugaredLogger
}

// NewPostgresProvider constructs a PostgreSQL-backed account provider.
func NewPostgresProvider(dbPool *pgxpool.Pool, log *zap.SugaredLogger) Provider {
	return &pgProvider{dbPool: dbPool, log: log}
}

// EnsureSchema creates required tables if they do not already exist.
// Safe to call repeatedly (idempotent).
func EnsureSchema(ctx context.Context, dbPool *pgxpool.Pool) error {
	_, err := dbPool.Exec(ctx, `
CREATE EXTENSION IF NOT EXISTS vector;
CREATE TABLE IF NOT EXISTS accounts (
  id text PRIMARY KEY,
  name text,
  created_at timestamptz NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS widget_domains (
  account_id text NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
  origin text NOT NULL,
  created_at timestamptz NOT NULL DEFAULT NOW(),
  PRIMARY KEY (account_id, origin)
);
CREATE TABLE IF NOT EXISTS assets (
  id uuid PRIMARY KEY,
  account_id text NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
  key text NOT NULL,
  url text NOT NULL,
  name text,
  content_type text,
  size bigint NOT NULL DEFAULT 0,
  uploaded_at timestamptz NOT NULL DEFAULT NOW(),
  UNIQUE (account_id, key)
);
CREATE TABLE IF NOT EXISTS knowledge_chunks (
  id text PRIMARY KEY,
  account_id text NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
  section_title text,
  content text NOT NULL,
  embedding vector(1536),
  created_at timestamptz NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS knowledge_chunks_account_idx ON knowledge_chunks(account_id);
CREATE TABLE IF NOT EXISTS query_events (
  id BIGSERIAL PRIMARY KEY,
  account_id text NOT NULL,
  channel text,
  question_chars int,
  status_code int,
  duration_ms int,
  created_at timestamptz NOT NULL DEFAULT NOW()
);
`)
	return err
}

// SeedFromEnv ingests initial accounts and their allowed origins.
// jsonSeed format (ACCOUNT_SEED_JSON):
// [{"id":"abc123","name":"Acme","origins":["https://example.com","http://localhost:3000"]}]
func SeedFromEnv(ctx context.Context, dbPool *pgxpool.Pool, jsonSeed string) error {
	if jsonSeed == "" {
		return nil
	}
	var entries []struct {
		ID      string   `json:"id"`
		Name    string   `json:"name"`
		Origins []string `json:"origins"`
	}
	if err := json.Unmarshal([]byte(jsonSeed), &entries); err != nil {
		return err
	}
	for _, entry := range entries {
		_, _ = dbPool.Exec(ctx, `INSERT INTO accounts(id,name) VALUES ($1,$2)
		  ON CONFLICT (id) DO UPDATE SET name=EXCLUDED.name`, entry.ID, entry.Name)
		for _, origin := range entry.Origins {
			_, _ = dbPool.Exec(ctx, `INSERT INTO widget_domains(account_id,origin) VALUES ($1,$2)
			  ON CONFLICT DO NOTHING`, entry.ID, origin)
		}
	}
	return nil
}

func (p *pgProvider) ResolveAccountByID(ctx context.Context, id string) (Account, error) {
	row := p.dbPool.QueryRow(ctx, `SELECT id, COALESCE(name,''), created_at FROM accounts WHERE id=$1`, id)
	var a Account
	if err := row.Scan(&a.ID, &a.Name, &a.CreatedAt); err != nil {
		return Account{}, ErrNotFound
	}
	return a, nil
}

func (p *pgProvider) ListWidgetOrigins(ctx context.Context, accountID string) ([]string, error) {
	rows, err := p.dbPool.Query(ctx, `SELECT origin FROM widget_domains WHERE account_id=$1`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var origins []string
	for rows.Next() {
		var o string
		if err := rows.Scan(&o); err != nil {
			return nil, err
		}
		origins = append(origins, o)
	}
	return origins, rows.Err()
}

func (p *pgProvider) AddWidgetOrigin(ctx context.Context, accountID, origin string) error {
	_, err := p.dbPool.Exec(ctx, `INSERT INTO widget_domains(account_id,origin) VALUES ($1,$2)
	  ON CONFLICT DO NOTHING`, accountID, origin)
	return err
}

func (p *pgProvider) RemoveWidgetOrigin(ctx context.Context, accountID, origin string) error {
	_, err := p.dbPool.Exec(ctx, `DELETE FROM widget_domains WHERE account_id=$1 AND origin=$2`, accountID, origin)
	return err
}

func (p *pgProvider) ListImageAssets(ctx context.Context, accountID string) ([]Asset, error) {
	rows, err := p.dbPool.Query(ctx, `SELECT id, account_id, key, url, COALESCE(name,''), COALESCE(content_type,''), size, uploaded_at
	  FROM assets WHERE account_id=$1 AND content_type LIKE 'image/%' ORDER BY uploaded_at DESC`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var assets []Asset
	for rows.Next() {
		var a Asset
		if err := rows.Scan(&a.ID, &a.AccountID, &a.Key, &a.URL, &a.Name, &a.ContentType, &a.Size, &a.UploadedAt); err != nil {
			return nil, err
		}
		assets = append(assets, a)
	}
	return assets, rows.Err()
}
