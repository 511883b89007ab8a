package postgres

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq"
)

func Connect(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx2, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx2); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS fraud_history (
  id             VARCHAR(36)  PRIMARY KEY,
  tenant_id      VARCHAR(64)  NOT NULL,
  analysis_type  VARCHAR(16)  NOT NULL,
  verdict        VARCHAR(16)  NOT NULL,
  risk_score     INTEGER      NOT NULL,
  attachment_url VARCHAR(512) NOT NULL DEFAULT '-',
  result_json    JSONB        NOT NULL,
  created_at     TIMESTAMPTZ  NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_history_tenant_created ON fraud_history (tenant_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS fraud_thresholds (
  tenant_id  VARCHAR(64) PRIMARY KEY,
  low        INTEGER     NOT NULL,
  medium     INTEGER     NOT NULL,
  high       INTEGER     NOT NULL,
  updated_at TIMESTAMPTZ NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS fraud_failures (
  id         BIGSERIAL    PRIMARY KEY,
  tenant_id  VARCHAR(64)  NOT NULL,
  phase      VARCHAR(16)  NOT NULL,
  protocol   VARCHAR(8)   NOT NULL,
  mime_type  VARCHAR(128) NOT NULL,
  message    TEXT         NOT NULL,
  created_at TIMESTAMPTZ  NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_failures_tenant_created ON fraud_failures (tenant_id, created_at DESC)`,
}

// Migrate creates the tables when they do not exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
