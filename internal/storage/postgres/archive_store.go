// Package postgres provides Postgres-backed persistence implementations.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/newspulse/newspulse/internal/news"
)

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// ArchiveStoreConfig controls the Postgres connection pool used for the
// article archive.
type ArchiveStoreConfig struct {
	DSN             string
	Table           string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type execCloser interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Close()
}

// ArchiveStore writes enriched article rows into Postgres, one row per
// record per run.
type ArchiveStore struct {
	pool  execCloser
	table string
}

// NewArchiveStore creates a Postgres-backed ArchiveStore using the provided
// config.
func NewArchiveStore(ctx context.Context, cfg ArchiveStoreConfig) (*ArchiveStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("archive.dsn is required")
	}
	table := cfg.Table
	if table == "" {
		table = "news_articles"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &ArchiveStore{
		pool:  pool,
		table: table,
	}, nil
}

// NewArchiveStoreWithPool constructs a store from an existing pool
// (primarily for testing).
func NewArchiveStoreWithPool(pool execCloser, table string) (*ArchiveStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if table == "" {
		table = "news_articles"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &ArchiveStore{pool: pool, table: table}, nil
}

// Close releases the underlying pool resources.
func (s *ArchiveStore) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// StoreRun inserts one row per enriched record. Entities for the whole run
// are attached to every row as JSON so each row is self-describing.
func (s *ArchiveStore) StoreRun(ctx context.Context, result news.Result) error {
	if s == nil || s.pool == nil {
		return fmt.Errorf("archive store is not configured")
	}
	if result.RunID == "" {
		return fmt.Errorf("run id is required")
	}
	topJSON, err := json.Marshal(result.TopEntities)
	if err != nil {
		return fmt.Errorf("marshal top entities: %w", err)
	}
	query := fmt.Sprintf(`
INSERT INTO %s (
	run_id,
	query,
	period,
	title,
	source,
	link,
	published_at,
	full_text,
	fallback,
	sentiment_score,
	sentiment_label,
	top_entities,
	started_at
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13
)`, s.table)

	for _, rec := range result.Records {
		args := []any{
			result.RunID,
			result.Query,
			string(result.Period),
			rec.Title,
			rec.Source,
			rec.Link,
			rec.PublishedAt,
			rec.FullText,
			rec.Fallback,
			rec.SentimentScore,
			string(rec.SentimentLabel),
			topJSON,
			result.StartedAt,
		}
		if _, err := s.pool.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("insert article row: %w", err)
		}
	}
	return nil
}
