package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/resolve-cli/internal/corpus"
)

// SQLiteStore implements GenerationStore using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path, configures WAL mode,
// and applies the schema.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	if _, err := db.Exec(sqliteMigration); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "sqlite: migrate")
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS generations (
	id           TEXT PRIMARY KEY,
	created_at   DATETIME NOT NULL,
	record_count INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS generation_records (
	generation_id TEXT NOT NULL REFERENCES generations(id) ON DELETE CASCADE,
	position      INTEGER NOT NULL,
	domain        TEXT NOT NULL,
	doc           TEXT NOT NULL,
	PRIMARY KEY (generation_id, position)
);

CREATE INDEX IF NOT EXISTS idx_generation_records_domain ON generation_records(domain);
`

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveGeneration writes the generation inside one transaction and deletes
// every older generation, so the store always holds exactly the published
// corpus.
func (s *SQLiteStore) SaveGeneration(ctx context.Context, gen *corpus.Generation) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin")
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO generations (id, created_at, record_count) VALUES (?, ?, ?)`,
		gen.ID, gen.CreatedAt.UTC().Format(time.RFC3339Nano), gen.Len(),
	); err != nil {
		return eris.Wrap(err, "sqlite: insert generation")
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO generation_records (generation_id, position, domain, doc) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare record insert")
	}
	defer stmt.Close() //nolint:errcheck

	for i, rec := range gen.Records {
		doc, err := json.Marshal(rec)
		if err != nil {
			return eris.Wrapf(err, "sqlite: marshal record %s", rec.Domain)
		}
		if _, err := stmt.ExecContext(ctx, gen.ID, i, rec.Domain, string(doc)); err != nil {
			return eris.Wrapf(err, "sqlite: insert record %s", rec.Domain)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM generation_records WHERE generation_id != ?`, gen.ID,
	); err != nil {
		return eris.Wrap(err, "sqlite: delete old records")
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM generations WHERE id != ?`, gen.ID,
	); err != nil {
		return eris.Wrap(err, "sqlite: delete old generations")
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit")
}

// LoadLatest restores the most recent generation, rebuilding its indexes.
func (s *SQLiteStore) LoadLatest(ctx context.Context) (*corpus.Generation, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, created_at FROM generations ORDER BY created_at DESC LIMIT 1`)

	var id, createdRaw string
	if err := row.Scan(&id, &createdRaw); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, eris.Wrap(err, "sqlite: load generation")
	}

	createdAt, err := time.Parse(time.RFC3339Nano, createdRaw)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: parse created_at")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT doc FROM generation_records WHERE generation_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: load records")
	}
	defer rows.Close() //nolint:errcheck

	var records []corpus.CompanyRecord
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan record")
		}
		var rec corpus.CompanyRecord
		if err := json.Unmarshal([]byte(doc), &rec); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal record")
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate records")
	}

	return corpus.RestoreGeneration(id, createdAt, records), nil
}
