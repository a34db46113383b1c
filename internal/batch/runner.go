// Package batch runs the scrape-match-apply pipeline for one user or for
// every active user.
package batch

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/cgartco6/costbyte-ai/internal/browser"
	"github.com/cgartco6/costbyte-ai/internal/engine"
	"github.com/cgartco6/costbyte-ai/internal/engine/apply"
	"github.com/cgartco6/costbyte-ai/internal/engine/jobs"
	"github.com/cgartco6/costbyte-ai/internal/notify"
	"github.com/cgartco6/costbyte-ai/internal/store"
)

const (
	// persistTop caps how many scored postings are written per cycle.
	persistTop = 50
	// notifyScoreFloor and notifyTop shape the new-matches summary.
	notifyScoreFloor = 85
	notifyTop        = 3
	// defaultMaxDaily applies when a user has no quota configured.
	defaultMaxDaily = 5
)

// Runner owns the collaborators shared across batches.
type Runner struct {
	store    store.Store
	notifier notify.Notifier
	sessions browser.Factory
}

// NewRunner wires a runner. A nil notifier is replaced with a no-op.
func NewRunner(st store.Store, notifier notify.Notifier, sessions browser.Factory) *Runner {
	if notifier == nil {
		notifier = notify.Noop{}
	}
	return &Runner{store: st, notifier: notifier, sessions: sessions}
}

// RunBatchForUser executes one full cycle for a user: read quota, scrape
// and rank (cached), persist and announce matches, then apply up to the
// remaining quota through a fresh browser session. A session that cannot
// start at all aborts the batch; everything downstream degrades
// per-candidate.
func (r *Runner) RunBatchForUser(ctx context.Context, prefs jobs.Preferences) (apply.BatchReport, error) {
	userID := prefs.UserID
	maxDaily := prefs.MaxJobsPerDay
	if maxDaily <= 0 {
		maxDaily = defaultMaxDaily
	}

	remaining, err := r.store.RemainingQuota(ctx, userID, maxDaily)
	if err != nil {
		return apply.BatchReport{UserID: userID}, fmt.Errorf("read quota: %w", err)
	}

	results, err := jobs.ScrapeForUser(ctx, prefs)
	if err != nil {
		return apply.BatchReport{UserID: userID}, fmt.Errorf("scrape: %w", err)
	}

	if err := r.store.StoreJobs(ctx, userID, topN(results, persistTop)); err != nil {
		slog.Error("batch: persist matches failed",
			slog.String("user", userID), slog.Any("error", err))
	}
	r.announceNewMatches(ctx, userID, results)

	if remaining <= 0 {
		slog.Info("batch: daily quota exhausted",
			slog.String("user", userID), slog.Int("skipped", len(results)))
		return apply.BatchReport{UserID: userID, Skipped: len(results)}, nil
	}

	scheduled := apply.Schedule(results, remaining)
	if len(scheduled) == 0 {
		slog.Info("batch: nothing to apply to", slog.String("user", userID))
		return apply.BatchReport{UserID: userID}, nil
	}
	// Matches that cleared the score threshold but fell outside today's
	// quota are reported as skipped.
	quotaCut := len(results) - len(scheduled)

	user, err := r.store.UserData(ctx, userID)
	if err != nil {
		return apply.BatchReport{UserID: userID}, fmt.Errorf("load profile: %w", err)
	}

	session, err := r.sessions(ctx)
	if err != nil {
		return apply.BatchReport{UserID: userID}, fmt.Errorf("start session: %w", err)
	}
	defer session.Close()

	submitter := apply.NewSubmitter(session, r.store.LogAttempt, r.notifier.Notify)
	report := submitter.Run(ctx, user, scheduled)
	report.Skipped += quotaCut
	return report, nil
}

// announceNewMatches sends a summary of strong fresh matches.
func (r *Runner) announceNewMatches(ctx context.Context, userID string, results []jobs.MatchResult) {
	var strong []jobs.MatchResult
	for _, res := range results {
		if res.Score >= notifyScoreFloor {
			strong = append(strong, res)
		}
	}
	if msg := notify.NewMatchesMessage(strong, notifyTop); msg != "" {
		r.notifier.Notify(ctx, userID, msg)
	}
}

// RunAll processes every active user, at most Cfg.MaxSessions concurrently.
// Per-user failures are logged and do not stop other users.
func (r *Runner) RunAll(ctx context.Context) error {
	users, err := r.store.ActiveUsers(ctx)
	if err != nil {
		return fmt.Errorf("list active users: %w", err)
	}
	slog.Info("batch: full run starting", slog.Int("users", len(users)))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(engine.Cfg.MaxSessions)
	for _, prefs := range users {
		g.Go(func() error {
			report, err := r.RunBatchForUser(gctx, prefs)
			if err != nil {
				slog.Error("batch: user run failed",
					slog.String("user", prefs.UserID), slog.Any("error", err))
				return nil
			}
			slog.Info("batch: user run done",
				slog.String("user", prefs.UserID),
				slog.Int("succeeded", report.Succeeded),
				slog.Int("failed", report.Failed))
			return nil
		})
	}
	return g.Wait()
}

func topN(results []jobs.MatchResult, n int) []jobs.MatchResult {
	if len(results) > n {
		return results[:n]
	}
	return results
}
