package apply

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/cgartco6/costbyte-ai/internal/browser"
	"github.com/cgartco6/costbyte-ai/internal/engine"
	"github.com/cgartco6/costbyte-ai/internal/engine/jobs"
)

// submitState tracks where a single candidate is in its lifecycle. Every
// candidate reaches exactly one of the two terminal states before the next
// candidate starts.
type submitState int

const (
	stateIdle submitState = iota
	stateNavigating
	stateFormDetected
	stateFilling
	stateSubmitting
	stateConfirmed
	stateFailed
)

func (s submitState) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateNavigating:
		return "navigating"
	case stateFormDetected:
		return "form_detected"
	case stateFilling:
		return "filling"
	case stateSubmitting:
		return "submitting"
	case stateConfirmed:
		return "confirmed"
	case stateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// AttemptRecorder persists one terminal attempt record.
type AttemptRecorder func(ctx context.Context, attempt ApplicationAttempt) error

// AttemptNotifier tells the user about one terminal attempt.
type AttemptNotifier func(ctx context.Context, userID, message string)

// Submitter applies to scheduled postings one at a time through a single
// browser session.
type Submitter struct {
	session browser.Session
	record  AttemptRecorder
	notify  AttemptNotifier

	// sleep is injectable so tests can skip the politeness delay. It must
	// honour ctx cancellation.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewSubmitter wires a submitter to its session and collaborators. Nil
// record or notify are replaced with no-ops.
func NewSubmitter(session browser.Session, record AttemptRecorder, notify AttemptNotifier) *Submitter {
	if record == nil {
		record = func(context.Context, ApplicationAttempt) error { return nil }
	}
	if notify == nil {
		notify = func(context.Context, string, string) {}
	}
	return &Submitter{session: session, record: record, notify: notify, sleep: ctxSleep}
}

// Run processes the scheduled candidates serially. The slice must already
// be capped at the user's remaining quota, so successes cannot exceed it.
// Cancellation is honoured between candidates: postings not yet started are
// simply not attempted.
func (s *Submitter) Run(ctx context.Context, user UserData, scheduled []jobs.MatchResult) BatchReport {
	report := BatchReport{UserID: user.UserID, Scheduled: len(scheduled)}

	for i, candidate := range scheduled {
		if ctx.Err() != nil {
			report.Skipped += skipUnstarted(len(scheduled) - i)
			slog.Info("apply: run cancelled",
				slog.String("user", user.UserID), slog.Int("skipped", len(scheduled)-i))
			break
		}
		if i > 0 {
			if err := s.sleep(ctx, politenessDelay()); err != nil {
				report.Skipped += skipUnstarted(len(scheduled) - i)
				break
			}
		}

		attempt := NewAttempt(user.UserID, candidate.Posting, i+1)
		s.processOne(ctx, user, &attempt)

		switch attempt.Status {
		case StatusSuccess:
			report.Succeeded++
			engine.IncrSubmitsConfirmed()
		case StatusSkipped:
			report.Skipped++
			engine.IncrSubmitsSkipped()
		default:
			report.Failed++
			engine.IncrSubmitsFailed()
		}

		// Exactly one record and one notification per terminal attempt.
		if err := s.record(ctx, attempt); err != nil {
			slog.Error("apply: attempt record failed",
				slog.String("attempt", attempt.ID), slog.Any("error", err))
		}
		s.notify(ctx, user.UserID, attemptMessage(attempt))
	}

	slog.Info("apply: batch done",
		slog.String("user", user.UserID),
		slog.Int("scheduled", report.Scheduled),
		slog.Int("succeeded", report.Succeeded),
		slog.Int("failed", report.Failed),
		slog.Int("skipped", report.Skipped))
	return report
}

// processOne drives a single posting to a terminal state, mutating the
// attempt record in place.
func (s *Submitter) processOne(ctx context.Context, user UserData, attempt *ApplicationAttempt) {
	state := stateIdle
	fail := func(err error) {
		state = stateFailed
		attempt.Status = StatusFailed
		attempt.Error = err.Error()
		attempt.Timestamp = time.Now()
		slog.Warn("apply: attempt failed",
			slog.String("posting", attempt.Posting.Fingerprint()),
			slog.String("state", state.String()),
			slog.Any("error", err))
	}

	state = stateNavigating
	if err := s.session.Navigate(ctx, attempt.Posting.ApplyURL); err != nil {
		fail(fmt.Errorf("navigate: %w", err))
		return
	}
	readyCtx, stop := context.WithTimeout(ctx, engine.Cfg.PageReadyWait)
	err := s.session.WaitReady(readyCtx)
	stop()
	if err != nil {
		fail(fmt.Errorf("page ready: %w", err))
		return
	}

	variant := DetectForm(ctx, s.session)
	state = stateFormDetected

	state = stateFilling
	outcome := FillerFor(variant).Fill(ctx, s.session, user)
	state = stateSubmitting

	switch {
	case outcome.Err == nil && outcome.Submitted:
		state = stateConfirmed
		attempt.Status = StatusSuccess
		attempt.Timestamp = time.Now()
		slog.Info("apply: attempt succeeded",
			slog.String("posting", attempt.Posting.Fingerprint()),
			slog.String("variant", string(variant)),
			slog.Bool("confirmed", outcome.Confirmed))
	case outcome.Err == nil:
		// Strategy gave up before submitting (no fillable form).
		attempt.Status = StatusSkipped
		attempt.Error = "no submittable form"
		attempt.Timestamp = time.Now()
	default:
		fail(outcome.Err)
	}
}

// skipUnstarted accounts for candidates that never started because the run
// was cancelled. They get no attempt record, only the report and metric.
func skipUnstarted(n int) int {
	for i := 0; i < n; i++ {
		engine.IncrSubmitsSkipped()
	}
	return n
}

// politenessDelay returns a randomized pause between applications so the
// traffic pattern does not look scripted.
func politenessDelay() time.Duration {
	lo, hi := engine.Cfg.DelayMin, engine.Cfg.DelayMax
	if hi <= lo {
		return lo
	}
	return lo + time.Duration(rand.Int63n(int64(hi-lo)))
}

func ctxSleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// attemptMessage renders the user-facing notification for an attempt.
func attemptMessage(a ApplicationAttempt) string {
	p := a.Posting
	switch a.Status {
	case StatusSuccess:
		return fmt.Sprintf("Applied: %s at %s (%s)", p.Title, p.Company, p.Source)
	case StatusSkipped:
		return fmt.Sprintf("Skipped %s at %s: %s", p.Title, p.Company, a.Error)
	default:
		return fmt.Sprintf("Could not apply to %s at %s: %s", p.Title, p.Company, a.Error)
	}
}
