// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// SQLite-backed run history

package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Index records pipeline runs in a SQLite database
type Index struct {
	db *sql.DB
}

// Open opens or creates the history database at path
func Open(path string) (*Index, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Index{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			map_name TEXT NOT NULL,
			started_at TEXT NOT NULL,
			elapsed_ms INTEGER NOT NULL,
			success INTEGER NOT NULL,
			failure_stage TEXT NOT NULL DEFAULT '',
			failure_reason TEXT NOT NULL DEFAULT '',
			snapshot_name TEXT NOT NULL DEFAULT '',
			warnings INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE INDEX IF NOT EXISTS runs_map_name ON runs(map_name);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

// Close closes the database
func (x *Index) Close() error {
	if x == nil || x.db == nil {
		return nil
	}
	return x.db.Close()
}

// RecordRun stores a run and returns its id
func (x *Index) RecordRun(ctx context.Context, r RunRecord) (int64, error) {
	res, err := x.db.ExecContext(ctx,
		`INSERT INTO runs (map_name, started_at, elapsed_ms, success, failure_stage, failure_reason, snapshot_name, warnings)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.MapName,
		r.StartedAt.UTC().Format(time.RFC3339Nano),
		r.Elapsed.Milliseconds(),
		boolToInt(r.Success),
		r.FailureStage,
		r.FailureReason,
		r.SnapshotName,
		r.Warnings,
	)
	if err != nil {
		return 0, fmt.Errorf("record run: %w", err)
	}
	return res.LastInsertId()
}

// ListRuns returns the most recent runs first. A limit <= 0 returns all.
func (x *Index) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := x.db.QueryContext(ctx,
		`SELECT id, map_name, started_at, elapsed_ms, success, failure_stage, failure_reason, snapshot_name, warnings
		 FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var (
			r         RunRecord
			startedAt string
			elapsedMS int64
			success   int
		)
		if err := rows.Scan(&r.ID, &r.MapName, &startedAt, &elapsedMS, &success,
			&r.FailureStage, &r.FailureReason, &r.SnapshotName, &r.Warnings); err != nil {
			return nil, err
		}
		r.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt)
		if err != nil {
			return nil, fmt.Errorf("run %d: bad started_at %q: %w", r.ID, startedAt, err)
		}
		r.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		r.Success = success != 0
		out = append(out, r)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
