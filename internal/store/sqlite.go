package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cgartco6/costbyte-ai/internal/engine/apply"
	"github.com/cgartco6/costbyte-ai/internal/engine/jobs"
)

// SQLite is the single-user local backend used when no DATABASE_URL is
// configured. The profile and preferences are fixed at construction (they
// come from the environment), only jobs and attempts hit the database.
type SQLite struct {
	db      *sql.DB
	profile apply.UserData
	prefs   jobs.Preferences
}

// DefaultSQLitePath places the database under the user's home directory.
func DefaultSQLitePath() string {
	return filepath.Join(os.Getenv("HOME"), ".costbyte", "applications.db")
}

// NewSQLite opens (or creates) the local database.
func NewSQLite(path string, profile apply.UserData, prefs jobs.Preferences) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer

	if err := initSQLiteSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	slog.Info("store: sqlite ready", slog.String("path", path))
	return &SQLite{db: db, profile: profile, prefs: prefs}, nil
}

func initSQLiteSchema(db *sql.DB) error {
	_, err := db.Exec(`
CREATE TABLE IF NOT EXISTS scraped_jobs (
	fingerprint TEXT NOT NULL,
	user_id     TEXT NOT NULL,
	source      TEXT NOT NULL,
	external_id TEXT NOT NULL,
	title       TEXT NOT NULL,
	company     TEXT NOT NULL,
	location    TEXT,
	description TEXT,
	salary_min  REAL,
	salary_max  REAL,
	apply_url   TEXT NOT NULL,
	match_score INTEGER NOT NULL,
	posted_at   TEXT,
	scraped_at  TEXT NOT NULL,
	PRIMARY KEY (user_id, fingerprint)
);
CREATE TABLE IF NOT EXISTS application_attempts (
	id           TEXT PRIMARY KEY,
	user_id      TEXT NOT NULL,
	fingerprint  TEXT NOT NULL,
	title        TEXT NOT NULL,
	company      TEXT NOT NULL,
	apply_url    TEXT NOT NULL,
	status       TEXT NOT NULL,
	error        TEXT,
	seq          INTEGER NOT NULL,
	attempted_at TEXT NOT NULL
)`)
	return err
}

func (s *SQLite) StoreJobs(ctx context.Context, userID string, results []jobs.MatchResult) error {
	if len(results) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, r := range results {
		j := r.Posting
		postedAt := ""
		if !j.PostedAt.IsZero() {
			postedAt = j.PostedAt.UTC().Format(time.RFC3339)
		}
		if _, err := tx.ExecContext(ctx, `
INSERT OR IGNORE INTO scraped_jobs
	(fingerprint, user_id, source, external_id, title, company, location,
	 description, salary_min, salary_max, apply_url, match_score, posted_at, scraped_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			j.Fingerprint(), userID, j.Source, j.ExternalID, j.Title, j.Company,
			j.Location, j.Description, j.SalaryMin, j.SalaryMax, j.ApplyURL,
			r.Score, postedAt, now); err != nil {
			return fmt.Errorf("insert job: %w", err)
		}
	}
	return tx.Commit()
}

func (s *SQLite) LogAttempt(ctx context.Context, a apply.ApplicationAttempt) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO application_attempts
	(id, user_id, fingerprint, title, company, apply_url, status, error, seq, attempted_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.UserID, a.Posting.Fingerprint(), a.Posting.Title,
		a.Posting.Company, a.Posting.ApplyURL, string(a.Status), a.Error,
		a.Seq, a.Timestamp.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("log attempt: %w", err)
	}
	return nil
}

// TodaysApplicationCount counts successes since local midnight. Timestamps
// are stored in UTC, so the local boundary is converted before comparing.
func (s *SQLite) TodaysApplicationCount(ctx context.Context, userID string) (int, error) {
	y, m, d := time.Now().Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, time.Local)

	var count int
	err := s.db.QueryRowContext(ctx, `
SELECT count(*) FROM application_attempts
WHERE user_id = ? AND status = ? AND attempted_at >= ?`,
		userID, string(apply.StatusSuccess),
		midnight.UTC().Format(time.RFC3339)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count today's attempts: %w", err)
	}
	return count, nil
}

func (s *SQLite) RemainingQuota(ctx context.Context, userID string, maxDaily int) (int, error) {
	used, err := s.TodaysApplicationCount(ctx, userID)
	if err != nil {
		return 0, err
	}
	return remainingQuota(maxDaily, used), nil
}

func (s *SQLite) UserData(_ context.Context, userID string) (apply.UserData, error) {
	if userID != s.profile.UserID {
		return apply.UserData{}, ErrUserNotFound
	}
	return s.profile, nil
}

func (s *SQLite) ActiveUsers(context.Context) ([]jobs.Preferences, error) {
	return []jobs.Preferences{s.prefs}, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
