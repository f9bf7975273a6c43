/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"pagebuilder/internal/domain"
	applog "pagebuilder/internal/log"
	"pagebuilder/internal/version"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	// DBFileName is the database file created inside the data directory.
	DBFileName = "UtopiaUrbanaBuilderDB.sqlite"
	// TableName is the single key/value table.
	TableName = "site_data"
	// RecordKey is the key of the one record holding the whole document.
	RecordKey = "current_project"

	// schemaVersion tracks the local SQLite schema.
	// Upgrades only recreate missing tables; stored documents are never reshaped.
	schemaVersion = 4
)

var (
	// ErrStoreUnavailable reports that the database could not be opened or has a newer schema.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrWriteFailure reports that a single write attempt did not reach the database.
	ErrWriteFailure = errors.New("write failure")
)

// Store is the key/value adapter over the embedded database.
// The handle is opened lazily, at most once, and reused until Close.
type Store struct {
	dir   string
	group singleflight.Group

	mu     sync.Mutex
	db     *sql.DB
	closed bool
	opens  int
}

func NewStore(dataDir string) *Store {
	return &Store{dir: dataDir}
}

// Path returns the full path to the database file.
func (s *Store) Path() string {
	return filepath.Join(s.dir, DBFileName)
}

// Init opens the database on first use and returns the cached handle afterwards.
// Concurrent callers share one open attempt. A failed open is not cached.
func (s *Store) Init(ctx context.Context) (*sql.DB, error) {
	if db := s.handle(); db != nil {
		return db, nil
	}
	v, err, _ := s.group.Do("init", func() (any, error) {
		if db := s.handle(); db != nil {
			return db, nil
		}
		db, err := s.open(ctx)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed {
			_ = db.Close()
			return nil, fmt.Errorf("%w: store closed", ErrStoreUnavailable)
		}
		s.db = db
		s.opens++
		return db, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*sql.DB), nil
}

func (s *Store) handle() *sql.DB {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db
}

func (s *Store) open(ctx context.Context) (*sql.DB, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "store_init").With(
		slog.String("dir", s.dir),
	)
	if strings.TrimSpace(s.dir) == "" {
		return nil, fmt.Errorf("%w: data dir is required", ErrStoreUnavailable)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		l.Error("create data dir failed", slog.Any("err", err))
		return nil, fmt.Errorf("%w: create data dir: %w", ErrStoreUnavailable, err)
	}

	// Use a URI with shared cache and set busy timeout. Convert to forward slashes for SQLite URI.
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", filepath.ToSlash(s.Path()))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		l.Error("sqlite open failed", slog.Any("err", err))
		return nil, fmt.Errorf("%w: open sqlite: %w", ErrStoreUnavailable, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		l.Error("enable WAL failed", slog.Any("err", err))
		return nil, fmt.Errorf("%w: enable WAL: %w", ErrStoreUnavailable, err)
	}
	if err := ensureVersion(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure version failed", slog.Any("err", err))
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		l.Error("run migrations failed", slog.Any("err", err))
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	l.Info("store ready", slog.String("path", s.Path()))
	return db, nil
}

// Save overwrites the document record.
func (s *Store) Save(ctx context.Context, doc domain.Document) error {
	db, err := s.Init(ctx)
	if err != nil {
		return err
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: marshal document: %w", ErrWriteFailure, err)
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := db.ExecContext(ctx, upsertRecordSQL, RecordKey, string(data), now); err != nil {
		return fmt.Errorf("%w: put %s: %w", ErrWriteFailure, RecordKey, err)
	}
	return nil
}

// Load returns the stored document. A missing record is reported as found=false, not an error.
func (s *Store) Load(ctx context.Context) (domain.Document, bool, error) {
	db, err := s.Init(ctx)
	if err != nil {
		return nil, false, err
	}
	var raw string
	err = db.QueryRowContext(ctx, selectRecordSQL, RecordKey).Scan(&raw)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, false, nil
	case err != nil:
		return nil, false, fmt.Errorf("get %s: %w", RecordKey, err)
	}
	var doc domain.Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, false, fmt.Errorf("decode %s: %w", RecordKey, err)
	}
	if doc == nil {
		return nil, false, nil
	}
	return doc, true, nil
}

// Close releases the handle. Later calls to Init fail.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// language=SQL
const upsertRecordSQL = `INSERT INTO site_data (key, value, updated_at) VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at`

// language=SQL
const selectRecordSQL = `SELECT value FROM site_data WHERE key = ?`

func ensureVersion(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS version (
			id          INTEGER PRIMARY KEY CHECK(id=1),
			schema      INTEGER NOT NULL,
			app         TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);`); err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	appv := version.String()
	var cur int
	err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// Fresh database: start at 0 so every upgrade step runs once.
		if _, err := db.ExecContext(ctx, `INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, 0, ?, ?, ?)`, appv, now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		if _, err := db.ExecContext(ctx, `UPDATE version SET app=?, updated_at=? WHERE id=1`, appv, now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}

// runMigrations brings the schema up to schemaVersion. A newer on-disk schema is a version conflict.
func runMigrations(ctx context.Context, db *sql.DB) error {
	var cur int
	if err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if cur > schemaVersion {
		return fmt.Errorf("schema version %d is newer than supported %d", cur, schemaVersion)
	}
	for cur < schemaVersion {
		next := cur + 1
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", next, err)
		}
		// Every step only makes sure the record table exists.
		if _, err := tx.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS site_data (
				key        TEXT PRIMARY KEY,
				value      TEXT NOT NULL,
				updated_at TEXT NOT NULL
			);`); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d stmt failed: %w", next, err)
		}
		if _, err := tx.ExecContext(ctx, `UPDATE version SET schema=?, updated_at=? WHERE id=1`, next, time.Now().UTC().Format(time.RFC3339)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d update version: %w", next, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d commit: %w", next, err)
		}
		cur = next
	}
	return nil
}
