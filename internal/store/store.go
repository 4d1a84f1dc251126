// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists analyzed sessions and their latest transformation in
// a SQLite database so a document can be transformed again without repeating
// extraction. Page images are never stored.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/exercise-engine/pkg/types"
)

const dbFile = "sessions.db"

// timeLayout has fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrNotFound is returned when a session ID does not exist.
var ErrNotFound = errors.New("session not found")

// Store manages the session history database.
type Store struct {
	db          *sql.DB
	maxSessions int
}

// NewStore opens or creates dataDir/sessions.db and its schema.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(cfg.DataDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxSessions := cfg.MaxSessions
	if maxSessions <= 0 {
		maxSessions = 20
	}

	s := &Store{db: db, maxSessions: maxSessions}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			document TEXT NOT NULL,
			created_at TEXT NOT NULL,
			pages INTEGER NOT NULL DEFAULT 0,
			full_text TEXT NOT NULL DEFAULT '',
			core_text TEXT NOT NULL DEFAULT '',
			topic TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_created_at ON sessions(created_at)`,
		`CREATE TABLE IF NOT EXISTS tasks (
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			idx INTEGER NOT NULL,
			full_text TEXT NOT NULL,
			core_text TEXT NOT NULL,
			PRIMARY KEY (session_id, idx)
		)`,
		`CREATE TABLE IF NOT EXISTS transformations (
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			idx INTEGER NOT NULL,
			topic TEXT NOT NULL,
			content TEXT NOT NULL,
			PRIMARY KEY (session_id, idx)
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// SaveAnalysis stores a session with its extraction result and task records,
// replacing any previous row with the same ID.
func (s *Store) SaveAnalysis(ctx context.Context, sess types.Session) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO sessions (id, document, created_at, pages, full_text, core_text, topic)
		 VALUES (?, ?, ?, ?, ?, ?, '')
		 ON CONFLICT(id) DO UPDATE SET
			document=excluded.document, created_at=excluded.created_at, pages=excluded.pages,
			full_text=excluded.full_text, core_text=excluded.core_text, topic=''`,
		sess.ID, sess.Document, sess.CreatedAt.UTC().Format(timeLayout), sess.Pages,
		sess.Extraction.FullText, sess.Extraction.CoreText,
	)
	if err != nil {
		return fmt.Errorf("upserting session: %w", err)
	}

	for _, table := range []string{"tasks", "transformations"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE session_id = ?`, sess.ID); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO tasks (session_id, idx, full_text, core_text) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range sess.Tasks {
		if _, err := stmt.ExecContext(ctx, sess.ID, rec.Index, rec.FullText, rec.CoreText); err != nil {
			return fmt.Errorf("inserting task %d: %w", rec.Index, err)
		}
	}

	return tx.Commit()
}

// SaveTransformation replaces the stored transformation of a session.
func (s *Store) SaveTransformation(ctx context.Context, sessionID, topic string, tasks []types.TransformedTask) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `UPDATE sessions SET topic = ? WHERE id = ?`, topic, sessionID)
	if err != nil {
		return fmt.Errorf("updating session topic: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("saving transformation for %s: %w", sessionID, ErrNotFound)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM transformations WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("clearing transformations: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO transformations (session_id, idx, topic, content) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range tasks {
		if _, err := stmt.ExecContext(ctx, sessionID, t.Index, t.Topic, t.Content); err != nil {
			return fmt.Errorf("inserting transformation %d: %w", t.Index, err)
		}
	}

	return tx.Commit()
}

// Sessions lists stored sessions, newest first. A limit <= 0 uses the
// configured maximum.
func (s *Store) Sessions(ctx context.Context, limit int) ([]types.SessionSummary, error) {
	if limit <= 0 {
		limit = s.maxSessions
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT s.id, s.document, s.created_at, s.pages, s.topic,
			(SELECT count(*) FROM tasks t WHERE t.session_id = s.id),
			(SELECT count(*) FROM transformations x WHERE x.session_id = s.id)
		 FROM sessions s
		 ORDER BY s.created_at DESC, s.rowid DESC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var out []types.SessionSummary
	for rows.Next() {
		var sum types.SessionSummary
		var created string
		if err := rows.Scan(&sum.ID, &sum.Document, &created, &sum.Pages, &sum.Topic, &sum.Tasks, &sum.Transformed); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		sum.CreatedAt = parseTime(created)
		out = append(out, sum)
	}
	return out, rows.Err()
}

// Load returns the stored session with the given ID.
func (s *Store) Load(ctx context.Context, id string) (types.Session, error) {
	var sess types.Session
	var created string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, document, created_at, pages, full_text, core_text, topic FROM sessions WHERE id = ?`, id,
	).Scan(&sess.ID, &sess.Document, &created, &sess.Pages, &sess.Extraction.FullText, &sess.Extraction.CoreText, &sess.Topic)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Session{}, fmt.Errorf("loading %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return types.Session{}, fmt.Errorf("loading %s: %w", id, err)
	}
	sess.CreatedAt = parseTime(created)

	if sess.Tasks, err = s.loadTasks(ctx, id); err != nil {
		return types.Session{}, err
	}
	if sess.Transformed, err = s.loadTransformations(ctx, id); err != nil {
		return types.Session{}, err
	}
	return sess, nil
}

// Latest returns the most recently created session.
func (s *Store) Latest(ctx context.Context) (types.Session, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM sessions ORDER BY created_at DESC, rowid DESC LIMIT 1`,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Session{}, ErrNotFound
	}
	if err != nil {
		return types.Session{}, fmt.Errorf("querying latest session: %w", err)
	}
	return s.Load(ctx, id)
}

func (s *Store) loadTasks(ctx context.Context, id string) ([]types.TaskRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT idx, full_text, core_text FROM tasks WHERE session_id = ? ORDER BY idx`, id)
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	defer rows.Close()

	var out []types.TaskRecord
	for rows.Next() {
		var rec types.TaskRecord
		if err := rows.Scan(&rec.Index, &rec.FullText, &rec.CoreText); err != nil {
			return nil, fmt.Errorf("scanning task: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *Store) loadTransformations(ctx context.Context, id string) ([]types.TransformedTask, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT idx, topic, content FROM transformations WHERE session_id = ? ORDER BY idx`, id)
	if err != nil {
		return nil, fmt.Errorf("querying transformations: %w", err)
	}
	defer rows.Close()

	var out []types.TransformedTask
	for rows.Next() {
		var t types.TransformedTask
		if err := rows.Scan(&t.Index, &t.Topic, &t.Content); err != nil {
			return nil, fmt.Errorf("scanning transformation: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
