package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/strideapp/stride/models"
	_ "modernc.org/sqlite"
)

// SQLitePointsStore implements PointsStore on an append-only SQLite
// table. Rows are written once per award and never updated or deleted;
// a user's total is the sum over their rows.
type SQLitePointsStore struct {
	db *sql.DB
}

// NewSQLitePointsStore opens (or creates) the ledger database at dbPath.
// ":memory:" yields an ephemeral ledger for tests.
func NewSQLitePointsStore(dbPath string) (*SQLitePointsStore, error) {
	if dbPath != ":memory:" {
		if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create points directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open points database: %w", err)
	}

	store := &SQLitePointsStore{db: db}
	if err := store.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init points schema: %w", err)
	}
	return store, nil
}

func (s *SQLitePointsStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS points_history (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		amount INTEGER NOT NULL,
		xp INTEGER NOT NULL,
		source TEXT NOT NULL,
		source_id TEXT,
		reason TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_points_history_user ON points_history(user_id);
	CREATE INDEX IF NOT EXISTS idx_points_history_created ON points_history(created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append writes one immutable ledger row.
func (s *SQLitePointsStore) Append(entry models.PointsEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.Exec(
		`INSERT INTO points_history (id, user_id, amount, xp, source, source_id, reason, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.UserID, entry.Amount, entry.XP, string(entry.Source),
		entry.SourceID, entry.Reason, entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("append points entry: %w", err)
	}
	return nil
}

// Total sums the ledger for one user.
func (s *SQLitePointsStore) Total(userID string) (int, int, error) {
	row := s.db.QueryRow(
		`SELECT COALESCE(SUM(amount), 0), COALESCE(SUM(xp), 0) FROM points_history WHERE user_id = ?`,
		userID,
	)
	var points, xp int
	if err := row.Scan(&points, &xp); err != nil {
		return 0, 0, fmt.Errorf("sum points for user %s: %w", userID, err)
	}
	return points, xp, nil
}

// History returns the most recent entries for a user, newest first.
// limit <= 0 returns everything.
func (s *SQLitePointsStore) History(userID string, limit int) ([]models.PointsEntry, error) {
	query := `SELECT id, user_id, amount, xp, source, source_id, reason, created_at
		FROM points_history WHERE user_id = ? ORDER BY created_at DESC`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query points history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []models.PointsEntry
	for rows.Next() {
		var e models.PointsEntry
		var source, createdAt string
		if err := rows.Scan(&e.ID, &e.UserID, &e.Amount, &e.XP, &source, &e.SourceID, &e.Reason, &createdAt); err != nil {
			return nil, fmt.Errorf("scan points entry: %w", err)
		}
		e.Source = models.PointsSource(source)
		ts, parseErr := time.Parse(time.RFC3339Nano, createdAt)
		if parseErr != nil {
			return nil, fmt.Errorf("parse points timestamp %q: %w", createdAt, parseErr)
		}
		e.CreatedAt = ts
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the underlying database.
func (s *SQLitePointsStore) Close() error {
	return s.db.Close()
}
