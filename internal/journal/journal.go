package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

// Journal is a local sqlite record of position updates the backend did not accept, plus the
// boards opened recently. Failures are kept for inspection only; nothing is ever replayed.
type Journal struct {
	db  *sql.DB
	now func() time.Time
}

type Failure struct {
	ID        string    `json:"id"`
	SessionID int       `json:"session_id"`
	CardID    int       `json:"card_id"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	Error     string    `json:"error"`
	RequestID string    `json:"request_id,omitempty"`
	At        time.Time `json:"at"`
}

type RecentBoard struct {
	URL        string    `json:"url"`
	SessionID  int       `json:"session_id"`
	Theme      string    `json:"theme,omitempty"`
	LastOpened time.Time `json:"last_opened"`
}

// Open opens (creating when missing) the journal at path.
func Open(ctx context.Context, path string) (*Journal, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("journal path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	// modernc.org/sqlite registers as "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// The TUI and a CLI invocation may hold the file at the same time.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	j := &Journal{db: db, now: time.Now}
	if err := j.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return j, nil
}

func (j *Journal) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS position_failures (
			id TEXT PRIMARY KEY,
			session_id INTEGER NOT NULL,
			card_id INTEGER NOT NULL,
			x REAL NOT NULL,
			y REAL NOT NULL,
			error TEXT NOT NULL,
			request_id TEXT NOT NULL,
			at_unixms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_position_failures_at ON position_failures(at_unixms);`,
		`CREATE TABLE IF NOT EXISTS recent_boards (
			url TEXT PRIMARY KEY,
			session_id INTEGER NOT NULL,
			theme TEXT NOT NULL,
			last_opened_unixms INTEGER NOT NULL
		);`,
	}
	for _, st := range stmts {
		if _, err := j.db.ExecContext(ctx, st); err != nil {
			return fmt.Errorf("migrate journal: %w", err)
		}
	}
	return nil
}

func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

// RecordFailure stores f and returns it with ID and At filled in.
func (j *Journal) RecordFailure(ctx context.Context, f Failure) (Failure, error) {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if f.At.IsZero() {
		f.At = j.now()
	}
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO position_failures(id, session_id, card_id, x, y, error, request_id, at_unixms)
		 VALUES(?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.SessionID, f.CardID, f.X, f.Y, f.Error, f.RequestID, f.At.UnixMilli(),
	)
	if err != nil {
		return Failure{}, fmt.Errorf("record failure: %w", err)
	}
	return f, nil
}

// Failures returns the newest failures first. limit <= 0 returns all of them.
func (j *Journal) Failures(ctx context.Context, limit int) ([]Failure, error) {
	q := `SELECT id, session_id, card_id, x, y, error, request_id, at_unixms
	      FROM position_failures ORDER BY at_unixms DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := j.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Failure{}
	for rows.Next() {
		var f Failure
		var at int64
		if err := rows.Scan(&f.ID, &f.SessionID, &f.CardID, &f.X, &f.Y, &f.Error, &f.RequestID, &at); err != nil {
			return nil, err
		}
		f.At = time.UnixMilli(at).UTC()
		out = append(out, f)
	}
	return out, rows.Err()
}

// ClearFailures empties the failure table and reports how many rows were removed.
func (j *Journal) ClearFailures(ctx context.Context) (int64, error) {
	res, err := j.db.ExecContext(ctx, `DELETE FROM position_failures`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Touch marks a board URL as opened now.
func (j *Journal) Touch(ctx context.Context, b RecentBoard) error {
	if strings.TrimSpace(b.URL) == "" {
		return errors.New("board url is empty")
	}
	if b.LastOpened.IsZero() {
		b.LastOpened = j.now()
	}
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO recent_boards(url, session_id, theme, last_opened_unixms) VALUES(?, ?, ?, ?)
		 ON CONFLICT(url) DO UPDATE SET
			session_id = excluded.session_id,
			theme = CASE WHEN excluded.theme = '' THEN recent_boards.theme ELSE excluded.theme END,
			last_opened_unixms = excluded.last_opened_unixms`,
		b.URL, b.SessionID, b.Theme, b.LastOpened.UnixMilli(),
	)
	return err
}

// Recent returns the most recently opened boards first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]RecentBoard, error) {
	q := `SELECT url, session_id, theme, last_opened_unixms FROM recent_boards ORDER BY last_opened_unixms DESC`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := j.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []RecentBoard{}
	for rows.Next() {
		var b RecentBoard
		var at int64
		if err := rows.Scan(&b.URL, &b.SessionID, &b.Theme, &at); err != nil {
			return nil, err
		}
		b.LastOpened = time.UnixMilli(at).UTC()
		out = append(out, b)
	}
	return out, rows.Err()
}
