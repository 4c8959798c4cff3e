package scores

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/wricardo/pong-arena/game/scores/migrations"
)

// SQLiteStore persists scores in SQLite.
type SQLiteStore struct {
	sqlDB *sql.DB
	now   func() time.Time
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// OpenSQLite opens a SQLite score store and applies embedded migrations.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(ctx, sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &SQLiteStore{sqlDB: sqlDB, now: time.Now}, nil
}

// Close closes the SQLite handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Save inserts one score. The write is durable when Save returns nil.
func (s *SQLiteStore) Save(ctx context.Context, username string, score int) (Entry, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, err
	}
	if s == nil || s.sqlDB == nil {
		return Entry{}, fmt.Errorf("storage is not configured")
	}
	if err := validateEntry(username, score); err != nil {
		return Entry{}, err
	}

	entry := Entry{
		Username: strings.TrimSpace(username),
		Score:    score,
		Date:     fromMillis(toMillis(s.now())),
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO scores (username, score, created_at) VALUES (?, ?, ?)`,
		entry.Username,
		entry.Score,
		toMillis(entry.Date),
	)
	if err != nil {
		return Entry{}, fmt.Errorf("insert score: %w", err)
	}
	return entry, nil
}

// Top returns up to limit entries, highest score first.
func (s *SQLiteStore) Top(ctx context.Context, limit int) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT username, score, created_at
		   FROM scores
		  ORDER BY score DESC, created_at ASC, id ASC
		  LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query top scores: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0, limit)
	for rows.Next() {
		var entry Entry
		var createdAt int64
		if err := rows.Scan(&entry.Username, &entry.Score, &createdAt); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		entry.Date = fromMillis(createdAt)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scores: %w", err)
	}
	return entries, nil
}
