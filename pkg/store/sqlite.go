package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// historyLimit caps how many generations are retained. Matches the
// size of the history view in the UI with headroom.
const historyLimit = 100

// Store manages the SQLite connection and schema.
type Store struct {
	db *sql.DB
}

// NewStore initializes the SQLite database connection.
// It enables WAL mode for concurrency and durability.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping sqlite db: %w", err)
	}

	// WAL keeps readers (history view) from blocking the writer.
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("schema migration failed: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the necessary tables if they don't exist.
func (s *Store) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS generations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		keywords TEXT NOT NULL,
		content_type TEXT NOT NULL,
		framework TEXT NOT NULL,
		audience TEXT NOT NULL,
		tone TEXT NOT NULL,
		content TEXT NOT NULL DEFAULT '',
		provider TEXT NOT NULL DEFAULT '',
		model TEXT NOT NULL DEFAULT '',
		success INTEGER NOT NULL DEFAULT 0,
		tokens INTEGER NOT NULL DEFAULT 0
	);

	-- History is always read newest-first.
	CREATE INDEX IF NOT EXISTS idx_generations_created ON generations(created_at);
	`

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create generations table: %w", err)
	}
	return nil
}

// SaveGeneration archives one run and prunes entries beyond the
// retention cap.
func (s *Store) SaveGeneration(ctx context.Context, g Generation) error {
	createdAt := g.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO generations
			(created_at, keywords, content_type, framework, audience, tone, content, provider, model, success, tokens)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		createdAt, g.Keywords, g.ContentType, g.Framework, g.Audience, g.Tone,
		g.Content, g.Provider, g.Model, g.Success, g.Tokens)
	if err != nil {
		return fmt.Errorf("failed to insert generation: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		DELETE FROM generations WHERE id NOT IN (
			SELECT id FROM generations ORDER BY id DESC LIMIT ?
		)`, historyLimit)
	if err != nil {
		return fmt.Errorf("failed to prune history: %w", err)
	}
	return nil
}

// RecentGenerations returns up to limit entries, newest first.
func (s *Store) RecentGenerations(ctx context.Context, limit int) ([]Generation, error) {
	if limit <= 0 || limit > historyLimit {
		limit = historyLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, keywords, content_type, framework, audience, tone,
		       content, provider, model, success, tokens
		FROM generations ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var out []Generation
	for rows.Next() {
		var g Generation
		if err := rows.Scan(&g.ID, &g.CreatedAt, &g.Keywords, &g.ContentType, &g.Framework,
			&g.Audience, &g.Tone, &g.Content, &g.Provider, &g.Model, &g.Success, &g.Tokens); err != nil {
			return nil, fmt.Errorf("failed to scan generation: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// ClearHistory removes every archived generation.
func (s *Store) ClearHistory(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM generations"); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}
