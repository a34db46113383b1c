package batch

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cgartco6/costbyte-ai/internal/browser"
	"github.com/cgartco6/costbyte-ai/internal/engine"
	"github.com/cgartco6/costbyte-ai/internal/engine/apply"
	"github.com/cgartco6/costbyte-ai/internal/engine/jobs"
)

// fakeStore keeps everything in memory and reports a fixed quota.
type fakeStore struct {
	mu        sync.Mutex
	remaining int
	quotaErr  error
	profile   apply.UserData
	users     []jobs.Preferences

	stored   []jobs.MatchResult
	attempts []apply.ApplicationAttempt
}

func (f *fakeStore) StoreJobs(_ context.Context, _ string, results []jobs.MatchResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stored = append(f.stored, results...)
	return nil
}

func (f *fakeStore) LogAttempt(_ context.Context, a apply.ApplicationAttempt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts = append(f.attempts, a)
	return nil
}

func (f *fakeStore) TodaysApplicationCount(context.Context, string) (int, error) { return 0, nil }

func (f *fakeStore) RemainingQuota(context.Context, string, int) (int, error) {
	return f.remaining, f.quotaErr
}

func (f *fakeStore) UserData(context.Context, string) (apply.UserData, error) {
	return f.profile, nil
}

func (f *fakeStore) ActiveUsers(context.Context) ([]jobs.Preferences, error) {
	return f.users, nil
}

func (f *fakeStore) Close() error { return nil }

// fakeNotifier records messages per user.
type fakeNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (f *fakeNotifier) Notify(_ context.Context, _ string, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, message)
}

// applySession is the minimal Session the generic strategy can drive to a
// confirmed submit.
type applySession struct {
	mu      sync.Mutex
	current string
	closed  bool
}

func (s *applySession) Navigate(_ context.Context, rawURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = rawURL
	return nil
}
func (s *applySession) WaitReady(context.Context) error { return nil }
func (s *applySession) CurrentURL(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, nil
}
func (s *applySession) Exists(_ context.Context, selector string) (bool, error) {
	return selector == "form" || selector == `button[type="submit"]`, nil
}
func (s *applySession) Fields(context.Context, string) ([]browser.Field, error) {
	return []browser.Field{{Selector: "#email", Tag: "input", Type: "email", Name: "email"}}, nil
}
func (s *applySession) Fill(context.Context, string, string) error         { return nil }
func (s *applySession) SelectOption(context.Context, string, string) error { return nil }
func (s *applySession) Click(context.Context, string) error                { return nil }
func (s *applySession) Upload(context.Context, string, string) error       { return nil }
func (s *applySession) BodyContains(context.Context, ...string) (bool, error) {
	return true, nil // every page shows "application submitted"
}
func (s *applySession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// batchSource emits fixed postings that match an empty preference set at
// full score.
type batchSource struct{ postings []jobs.JobPosting }

func (b *batchSource) Name() string { return "fake-board" }
func (b *batchSource) Fetch(context.Context, jobs.Preferences) ([]jobs.JobPosting, error) {
	return b.postings, nil
}

func bp(id string) jobs.JobPosting {
	return jobs.JobPosting{
		Source: "fake-board", ExternalID: id,
		Title: "Engineer " + id, Company: "Acme",
		SalaryMin: 500000, SalaryMax: 600000,
		ApplyURL: "https://jobs.example.com/" + id,
	}
}

func setupRunner(t *testing.T, st *fakeStore, postings []jobs.JobPosting) (*Runner, *fakeNotifier, *applySession) {
	t.Helper()
	engine.Init(engine.Config{
		DelayMin: time.Millisecond,
		DelayMax: 2 * time.Millisecond,
	})
	engine.InitCache("", time.Minute, 100, time.Minute)
	jobs.ResetSources()
	jobs.RegisterSource(&batchSource{postings: postings})
	t.Cleanup(jobs.ResetSources)

	notifier := &fakeNotifier{}
	session := &applySession{}
	runner := NewRunner(st, notifier, func(context.Context) (browser.Session, error) {
		return session, nil
	})
	return runner, notifier, session
}

func TestRunBatchForUser(t *testing.T) {
	st := &fakeStore{remaining: 2, profile: apply.UserData{UserID: "bu1", Email: "t@example.com"}}
	runner, notifier, session := setupRunner(t, st,
		[]jobs.JobPosting{bp("1"), bp("2"), bp("3")})

	report, err := runner.RunBatchForUser(context.Background(), jobs.Preferences{UserID: "bu1"})
	if err != nil {
		t.Fatalf("RunBatchForUser: %v", err)
	}

	if report.Succeeded != 2 {
		t.Errorf("succeeded = %d, want 2 (quota-capped)", report.Succeeded)
	}
	if report.Skipped != 1 {
		t.Errorf("skipped = %d, want 1 (third match cut by quota)", report.Skipped)
	}
	if len(st.attempts) != 2 {
		t.Errorf("attempts logged = %d, want 2", len(st.attempts))
	}
	if len(st.stored) != 3 {
		t.Errorf("postings persisted = %d, want 3", len(st.stored))
	}
	if !session.closed {
		t.Error("session not closed")
	}

	// Full-score matches trigger the new-matches summary plus one
	// notification per attempt.
	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	if len(notifier.messages) != 3 {
		t.Fatalf("notifications = %d, want 3", len(notifier.messages))
	}
	if !strings.Contains(notifier.messages[0], "New job matches") {
		t.Errorf("first message should be the match summary: %q", notifier.messages[0])
	}
}

func TestRunBatchForUserReportsQuotaSkipped(t *testing.T) {
	st := &fakeStore{remaining: 1, profile: apply.UserData{UserID: "bq1"}}
	runner, _, _ := setupRunner(t, st,
		[]jobs.JobPosting{bp("1"), bp("2"), bp("3")})

	report, err := runner.RunBatchForUser(context.Background(), jobs.Preferences{UserID: "bq1"})
	if err != nil {
		t.Fatalf("RunBatchForUser: %v", err)
	}
	if report.Succeeded != 1 {
		t.Errorf("succeeded = %d, want 1", report.Succeeded)
	}
	if report.Skipped != 2 {
		t.Errorf("skipped = %d, want 2 (matches cut by quota)", report.Skipped)
	}
	if report.Failed != 0 {
		t.Errorf("failed = %d, want 0", report.Failed)
	}
	if len(st.attempts) != 1 {
		t.Errorf("attempts logged = %d, want 1", len(st.attempts))
	}
}

func TestRunBatchForUserQuotaExhausted(t *testing.T) {
	st := &fakeStore{remaining: 0}
	sessionStarts := 0
	runner, _, _ := setupRunner(t, st, []jobs.JobPosting{bp("1")})
	runner.sessions = func(context.Context) (browser.Session, error) {
		sessionStarts++
		return nil, errors.New("should not be called")
	}

	report, err := runner.RunBatchForUser(context.Background(), jobs.Preferences{UserID: "bu2"})
	if err != nil {
		t.Fatalf("RunBatchForUser: %v", err)
	}
	if report.Succeeded != 0 || len(st.attempts) != 0 {
		t.Errorf("exhausted quota still applied: %+v", report)
	}
	if report.Skipped != 1 {
		t.Errorf("skipped = %d, want 1 (match held back by exhausted quota)", report.Skipped)
	}
	if sessionStarts != 0 {
		t.Error("browser session started despite exhausted quota")
	}
	// Matches are still persisted for the user to browse.
	if len(st.stored) != 1 {
		t.Errorf("postings persisted = %d, want 1", len(st.stored))
	}
}

func TestRunBatchForUserSessionInitFatal(t *testing.T) {
	st := &fakeStore{remaining: 3}
	runner, _, _ := setupRunner(t, st, []jobs.JobPosting{bp("1")})
	runner.sessions = func(context.Context) (browser.Session, error) {
		return nil, browser.ErrSessionInit
	}

	_, err := runner.RunBatchForUser(context.Background(), jobs.Preferences{UserID: "bu3"})
	if !errors.Is(err, browser.ErrSessionInit) {
		t.Fatalf("expected ErrSessionInit, got %v", err)
	}
	if len(st.attempts) != 0 {
		t.Error("attempts logged despite missing session")
	}
}

func TestRunAllProcessesEveryUser(t *testing.T) {
	st := &fakeStore{
		remaining: 1,
		profile:   apply.UserData{UserID: "any"},
		users: []jobs.Preferences{
			{UserID: "ru1"}, {UserID: "ru2"}, {UserID: "ru3"},
		},
	}
	runner, _, _ := setupRunner(t, st, []jobs.JobPosting{bp("1")})

	if err := runner.RunAll(context.Background()); err != nil {
		t.Fatalf("RunAll: %v", err)
	}
	// One success per user.
	if len(st.attempts) != 3 {
		t.Errorf("attempts = %d, want 3", len(st.attempts))
	}
}
