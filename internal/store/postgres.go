package store

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cgartco6/costbyte-ai/internal/engine/apply"
	"github.com/cgartco6/costbyte-ai/internal/engine/jobs"
)

// Postgres is the multi-user backend.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres connects and ensures the schema exists.
func NewPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConns = 5

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	p := &Postgres{pool: pool}
	if err := p.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	slog.Info("store: postgres connected")
	return p, nil
}

// ensureSchema creates the tables this service writes. app_users and
// user_preferences are owned by the account backend; we only read them.
func (p *Postgres) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS scraped_jobs (
	fingerprint   TEXT NOT NULL,
	user_id       TEXT NOT NULL,
	source        TEXT NOT NULL,
	external_id   TEXT NOT NULL,
	title         TEXT NOT NULL,
	company       TEXT NOT NULL,
	location      TEXT,
	description   TEXT,
	salary_min    DOUBLE PRECISION,
	salary_max    DOUBLE PRECISION,
	apply_url     TEXT NOT NULL,
	match_score   INT NOT NULL,
	posted_at     TIMESTAMPTZ,
	scraped_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (user_id, fingerprint)
);
CREATE TABLE IF NOT EXISTS application_attempts (
	id          TEXT PRIMARY KEY,
	user_id     TEXT NOT NULL,
	fingerprint TEXT NOT NULL,
	title       TEXT NOT NULL,
	company     TEXT NOT NULL,
	apply_url   TEXT NOT NULL,
	status      TEXT NOT NULL,
	error       TEXT,
	seq         INT NOT NULL,
	attempted_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_attempts_user_day
	ON application_attempts (user_id, attempted_at);
`
	if _, err := p.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (p *Postgres) StoreJobs(ctx context.Context, userID string, results []jobs.MatchResult) error {
	if len(results) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, r := range results {
		j := r.Posting
		batch.Queue(`
INSERT INTO scraped_jobs
	(fingerprint, user_id, source, external_id, title, company, location,
	 description, salary_min, salary_max, apply_url, match_score, posted_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
ON CONFLICT (user_id, fingerprint) DO NOTHING`,
			j.Fingerprint(), userID, j.Source, j.ExternalID, j.Title, j.Company,
			j.Location, j.Description, j.SalaryMin, j.SalaryMax, j.ApplyURL,
			r.Score, nullableTime(j.PostedAt))
	}

	br := p.pool.SendBatch(ctx, batch)
	defer br.Close()
	for range results {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("store jobs: %w", err)
		}
	}
	return nil
}

func (p *Postgres) LogAttempt(ctx context.Context, a apply.ApplicationAttempt) error {
	_, err := p.pool.Exec(ctx, `
INSERT INTO application_attempts
	(id, user_id, fingerprint, title, company, apply_url, status, error, seq, attempted_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		a.ID, a.UserID, a.Posting.Fingerprint(), a.Posting.Title,
		a.Posting.Company, a.Posting.ApplyURL, string(a.Status), a.Error,
		a.Seq, a.Timestamp)
	if err != nil {
		return fmt.Errorf("log attempt: %w", err)
	}
	return nil
}

// TodaysApplicationCount counts successes since local midnight. The date
// comparison runs server-side so all callers agree on the boundary.
func (p *Postgres) TodaysApplicationCount(ctx context.Context, userID string) (int, error) {
	var count int
	err := p.pool.QueryRow(ctx, `
SELECT count(*) FROM application_attempts
WHERE user_id = $1
  AND status = $2
  AND attempted_at >= date_trunc('day', now())`,
		userID, string(apply.StatusSuccess)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count today's attempts: %w", err)
	}
	return count, nil
}

func (p *Postgres) RemainingQuota(ctx context.Context, userID string, maxDaily int) (int, error) {
	used, err := p.TodaysApplicationCount(ctx, userID)
	if err != nil {
		return 0, err
	}
	return remainingQuota(maxDaily, used), nil
}

func (p *Postgres) UserData(ctx context.Context, userID string) (apply.UserData, error) {
	var u apply.UserData
	err := p.pool.QueryRow(ctx, `
SELECT user_id, first_name, last_name, email, phone,
       street_address, city, province, postal_code,
       years_experience, salary_expectation, notice_period_days,
       qualification, employed, cv_path, photo_path,
       gender, race, disability, share_demographics
FROM app_users WHERE user_id = $1`, userID).Scan(
		&u.UserID, &u.FirstName, &u.LastName, &u.Email, &u.Phone,
		&u.StreetAddress, &u.City, &u.Province, &u.PostalCode,
		&u.YearsExperience, &u.SalaryExpectation, &u.NoticePeriodDays,
		&u.Qualification, &u.Employed, &u.CVPath, &u.PhotoPath,
		&u.Gender, &u.Race, &u.Disability, &u.ShareDemographics)
	if err == pgx.ErrNoRows {
		return apply.UserData{}, ErrUserNotFound
	}
	if err != nil {
		return apply.UserData{}, fmt.Errorf("load user %s: %w", userID, err)
	}
	return u, nil
}

func (p *Postgres) ActiveUsers(ctx context.Context) ([]jobs.Preferences, error) {
	rows, err := p.pool.Query(ctx, `
SELECT user_id, keywords, locations, industries,
       salary_min, min_match_score, max_jobs_per_day
FROM user_preferences WHERE auto_apply_enabled`)
	if err != nil {
		return nil, fmt.Errorf("list active users: %w", err)
	}
	defer rows.Close()

	var prefs []jobs.Preferences
	for rows.Next() {
		var pr jobs.Preferences
		var keywords, locations, industries string
		if err := rows.Scan(&pr.UserID, &keywords, &locations, &industries,
			&pr.SalaryMin, &pr.MinMatchScore, &pr.MaxJobsPerDay); err != nil {
			return nil, fmt.Errorf("scan preferences: %w", err)
		}
		pr.Keywords = splitCSV(keywords)
		pr.Locations = splitCSV(locations)
		pr.Industries = splitCSV(industries)
		prefs = append(prefs, pr)
	}
	return prefs, rows.Err()
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
