package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/resolve-cli/internal/corpus"
)

// Pool is the subset of pgxpool.Pool the store uses; satisfied by pgxmock
// for unit tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

// PostgresStore implements GenerationStore using pgxpool.
type PostgresStore struct {
	pool Pool
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS generations (
	id           TEXT PRIMARY KEY,
	created_at   TIMESTAMPTZ NOT NULL,
	record_count INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS generation_records (
	generation_id TEXT NOT NULL REFERENCES generations(id) ON DELETE CASCADE,
	position      INTEGER NOT NULL,
	domain        TEXT NOT NULL,
	doc           JSONB NOT NULL,
	PRIMARY KEY (generation_id, position)
);

CREATE INDEX IF NOT EXISTS idx_generation_records_domain ON generation_records(domain);
`

// NewPostgres creates a PostgresStore with a connection pool and applies the
// schema.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}

	s := &PostgresStore{pool: pool}
	if _, err := s.pool.Exec(ctx, postgresMigration); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: migrate")
	}
	return s, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// SaveGeneration writes the generation in one transaction, replacing every
// older generation.
func (s *PostgresStore) SaveGeneration(ctx context.Context, gen *corpus.Generation) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx,
		`INSERT INTO generations (id, created_at, record_count) VALUES ($1, $2, $3)`,
		gen.ID, gen.CreatedAt.UTC(), gen.Len(),
	); err != nil {
		return eris.Wrap(err, "postgres: insert generation")
	}

	rows := make([][]any, len(gen.Records))
	for i, rec := range gen.Records {
		doc, err := json.Marshal(rec)
		if err != nil {
			return eris.Wrapf(err, "postgres: marshal record %s", rec.Domain)
		}
		rows[i] = []any{gen.ID, i, rec.Domain, doc}
	}
	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"generation_records"},
		[]string{"generation_id", "position", "domain", "doc"},
		pgx.CopyFromRows(rows),
	); err != nil {
		return eris.Wrap(err, "postgres: copy records")
	}

	if _, err := tx.Exec(ctx,
		`DELETE FROM generations WHERE id != $1`, gen.ID,
	); err != nil {
		return eris.Wrap(err, "postgres: delete old generations")
	}

	return eris.Wrap(tx.Commit(ctx), "postgres: commit")
}

// LoadLatest restores the most recent generation, rebuilding its indexes.
func (s *PostgresStore) LoadLatest(ctx context.Context) (*corpus.Generation, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, created_at FROM generations ORDER BY created_at DESC LIMIT 1`)

	var id string
	var createdAt time.Time
	if err := row.Scan(&id, &createdAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, eris.Wrap(err, "postgres: load generation")
	}

	rows, err := s.pool.Query(ctx,
		`SELECT doc FROM generation_records WHERE generation_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: load records")
	}
	defer rows.Close()

	var records []corpus.CompanyRecord
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, eris.Wrap(err, "postgres: scan record")
		}
		var rec corpus.CompanyRecord
		if err := json.Unmarshal(doc, &rec); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal record")
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate records")
	}

	return corpus.RestoreGeneration(id, createdAt, records), nil
}
