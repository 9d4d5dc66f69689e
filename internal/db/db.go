package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"interview-coach/internal/config"
)

// NewPool construye y devuelve un pool de conexiones configurado.
func NewPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	poolCfg.MaxConns = cfg.DBMaxConns
	poolCfg.MinConns = 1
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute
	poolCfg.HealthCheckPeriod = 30 * time.Second
	poolCfg.ConnConfig.ConnectTimeout = 5 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	return pool, nil
}

// Ping verifica conectividad con la base de datos.
func Ping(ctx context.Context, pool *pgxpool.Pool) error {
	return pool.Ping(ctx)
}

// schema crea las tablas si no existen. Los registros son append-only: no hay UPDATE sobre
// memory_entries ni category_records.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS memory_entries (
		id          UUID PRIMARY KEY,
		tag         TEXT NOT NULL,
		record_type TEXT NOT NULL,
		content     TEXT NOT NULL,
		metadata    JSONB NOT NULL DEFAULT '{}'::jsonb,
		created_at  TIMESTAMPTZ NOT NULL,
		seq         BIGSERIAL
	)`,
	// seq desempata entradas con el mismo created_at: gana la ultima insertada.
	`ALTER TABLE memory_entries ADD COLUMN IF NOT EXISTS seq BIGSERIAL`,
	`DROP INDEX IF EXISTS memory_entries_tag_type_idx`,
	`CREATE INDEX IF NOT EXISTS memory_entries_tag_type_seq_idx
		ON memory_entries (tag, record_type, created_at DESC, seq DESC)`,
	`CREATE TABLE IF NOT EXISTS category_records (
		id                BIGSERIAL PRIMARY KEY,
		user_name         TEXT NOT NULL,
		interview_type    TEXT NOT NULL,
		category          TEXT NOT NULL,
		score             DOUBLE PRECISION NOT NULL,
		completed         BOOLEAN NOT NULL,
		interview_number  INTEGER NOT NULL,
		mistakes          TEXT[] NOT NULL DEFAULT '{}',
		strengths         TEXT[] NOT NULL DEFAULT '{}',
		weaknesses        TEXT[] NOT NULL DEFAULT '{}',
		recorded_at_ms    BIGINT NOT NULL,
		improvement_delta DOUBLE PRECISION
	)`,
	`CREATE INDEX IF NOT EXISTS category_records_user_idx
		ON category_records (user_name, recorded_at_ms, id)`,
	`CREATE TABLE IF NOT EXISTS interview_sessions (
		id         TEXT PRIMARY KEY,
		user_name  TEXT NOT NULL,
		status     TEXT NOT NULL,
		payload    JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS interview_sessions_user_idx
		ON interview_sessions (user_name, created_at)`,
}

// EnsureSchema aplica el DDL idempotente dentro de una transaccion.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	for _, stmt := range schema {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return tx.Commit(ctx)
}
