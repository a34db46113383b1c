package apply

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cgartco6/costbyte-ai/internal/browser"
	"github.com/cgartco6/costbyte-ai/internal/engine"
	"github.com/cgartco6/costbyte-ai/internal/engine/jobs"
)

// fakeSession is a scripted browser.Session for driving the submitter
// without Chrome.
type fakeSession struct {
	mu        sync.Mutex
	current   string
	exists    map[string]bool
	fields    []browser.Field
	bodyText  string
	navErrFor string // Navigate returns an error for this URL

	fills   map[string]string
	clicks  []string
	uploads map[string]string
	closed  bool
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		exists:  map[string]bool{},
		fills:   map[string]string{},
		uploads: map[string]string{},
	}
}

func (f *fakeSession) Navigate(_ context.Context, rawURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.navErrFor != "" && rawURL == f.navErrFor {
		return errors.New("net::ERR_CONNECTION_REFUSED")
	}
	f.current = rawURL
	return nil
}

func (f *fakeSession) WaitReady(context.Context) error { return nil }

func (f *fakeSession) CurrentURL(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current, nil
}

func (f *fakeSession) Exists(_ context.Context, selector string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.exists[selector], nil
}

func (f *fakeSession) Fields(context.Context, string) ([]browser.Field, error) {
	return f.fields, nil
}

func (f *fakeSession) Fill(_ context.Context, selector, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fills[selector] = value
	return nil
}

func (f *fakeSession) SelectOption(_ context.Context, selector, optionText string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fills[selector] = optionText
	return nil
}

func (f *fakeSession) Click(_ context.Context, selector string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clicks = append(f.clicks, selector)
	return nil
}

func (f *fakeSession) Upload(_ context.Context, selector, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads[selector] = path
	return nil
}

func (f *fakeSession) BodyContains(_ context.Context, phrases ...string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	body := strings.ToLower(f.bodyText)
	for _, p := range phrases {
		if strings.Contains(body, strings.ToLower(p)) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeSession) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func genericCandidate(id string) jobs.MatchResult {
	return jobs.MatchResult{
		Posting: jobs.JobPosting{
			Source: "careers24", ExternalID: id,
			Title: "Engineer " + id, Company: "Acme",
			ApplyURL: "https://jobs.example.com/" + id,
		},
		Score: 90,
	}
}

// setupSubmitter wires a submitter with counting collaborators and an
// instant sleep.
func setupSubmitter(t *testing.T, session *fakeSession) (*Submitter, *[]ApplicationAttempt, *[]string, *int) {
	t.Helper()
	engine.Init(engine.Config{})

	var mu sync.Mutex
	var recorded []ApplicationAttempt
	var notified []string
	sleeps := 0

	s := NewSubmitter(session,
		func(_ context.Context, a ApplicationAttempt) error {
			mu.Lock()
			defer mu.Unlock()
			recorded = append(recorded, a)
			return nil
		},
		func(_ context.Context, _ string, msg string) {
			mu.Lock()
			defer mu.Unlock()
			notified = append(notified, msg)
		},
	)
	s.sleep = func(ctx context.Context, _ time.Duration) error {
		sleeps++
		return ctx.Err()
	}
	return s, &recorded, &notified, &sleeps
}

// readySession is a fake configured so the generic strategy succeeds:
// a form with an email field, a submit button and a confirmation banner.
func readySession() *fakeSession {
	f := newFakeSession()
	f.exists["form"] = true
	f.exists[`button[type="submit"]`] = true
	f.fields = []browser.Field{{Selector: "#email", Tag: "input", Type: "email", Name: "email"}}
	f.bodyText = "Thanks! Application submitted."
	return f
}

func TestSubmitterRunSuccess(t *testing.T) {
	session := readySession()
	s, recorded, notified, sleeps := setupSubmitter(t, session)

	report := s.Run(context.Background(), testUser,
		[]jobs.MatchResult{genericCandidate("1"), genericCandidate("2")})

	if report.Succeeded != 2 || report.Failed != 0 || report.Skipped != 0 {
		t.Fatalf("report = %+v", report)
	}
	if len(*recorded) != 2 {
		t.Fatalf("expected 2 attempt records, got %d", len(*recorded))
	}
	if len(*notified) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(*notified))
	}
	if *sleeps != 1 {
		t.Errorf("expected 1 politeness delay between 2 candidates, got %d", *sleeps)
	}
	for i, a := range *recorded {
		if a.Status != StatusSuccess {
			t.Errorf("attempt %d status = %s", i, a.Status)
		}
		if a.Seq != i+1 {
			t.Errorf("attempt %d seq = %d", i, a.Seq)
		}
		if a.ID == "" {
			t.Errorf("attempt %d missing id", i)
		}
	}
	if session.fills["#email"] != testUser.Email {
		t.Errorf("email not filled: %q", session.fills["#email"])
	}
}

func TestSubmitterNavigateFailureIsTerminalFailure(t *testing.T) {
	session := readySession()
	session.navErrFor = "https://jobs.example.com/2"
	s, recorded, notified, _ := setupSubmitter(t, session)

	report := s.Run(context.Background(), testUser,
		[]jobs.MatchResult{genericCandidate("1"), genericCandidate("2"), genericCandidate("3")})

	if report.Succeeded != 2 || report.Failed != 1 {
		t.Fatalf("report = %+v", report)
	}
	if len(*recorded) != 3 || len(*notified) != 3 {
		t.Fatalf("records/notifications = %d/%d, want 3/3", len(*recorded), len(*notified))
	}
	failed := (*recorded)[1]
	if failed.Status != StatusFailed || failed.Error == "" {
		t.Errorf("failed attempt = %+v", failed)
	}
}

func TestSubmitterCancelBetweenCandidates(t *testing.T) {
	session := readySession()
	s, recorded, _, _ := setupSubmitter(t, session)

	ctx, cancel := context.WithCancel(context.Background())
	// The injected sleep observes cancellation after the first candidate.
	first := true
	s.sleep = func(ctx context.Context, _ time.Duration) error {
		if first {
			first = false
			cancel()
		}
		return ctx.Err()
	}

	report := s.Run(ctx, testUser,
		[]jobs.MatchResult{genericCandidate("1"), genericCandidate("2"), genericCandidate("3")})

	if report.Succeeded != 1 {
		t.Fatalf("report = %+v", report)
	}
	if report.Skipped != 2 {
		t.Fatalf("candidates not started should be reported skipped: %+v", report)
	}
	if len(*recorded) != 1 {
		t.Fatalf("expected exactly 1 record before cancellation, got %d", len(*recorded))
	}
}

func TestSubmitterSkipsPageWithoutForm(t *testing.T) {
	// No form, no fields, no submit button: the strategy gives up without
	// submitting, which is a skip rather than a failure.
	session := newFakeSession()
	s, recorded, notified, _ := setupSubmitter(t, session)

	report := s.Run(context.Background(), testUser, []jobs.MatchResult{genericCandidate("1")})

	if report.Skipped != 1 || report.Failed != 0 || report.Succeeded != 0 {
		t.Fatalf("report = %+v", report)
	}
	if len(*recorded) != 1 {
		t.Fatalf("expected 1 record, got %d", len(*recorded))
	}
	a := (*recorded)[0]
	if a.Status != StatusSkipped {
		t.Errorf("status = %s, want %s", a.Status, StatusSkipped)
	}
	if a.Error == "" {
		t.Error("skipped attempt should say why")
	}
	if len(*notified) != 1 || !strings.Contains((*notified)[0], "Skipped") {
		t.Errorf("notifications = %v", *notified)
	}
}

func TestSubmitterStrictPolicyRequiresConfirmation(t *testing.T) {
	session := readySession()
	session.bodyText = "some unrelated page text"
	s, recorded, _, _ := setupSubmitter(t, session)
	engine.Cfg.ConfirmPolicy = "strict"
	t.Cleanup(func() { engine.Cfg.ConfirmPolicy = "" })

	report := s.Run(context.Background(), testUser, []jobs.MatchResult{genericCandidate("1")})

	if report.Failed != 1 || report.Succeeded != 0 {
		t.Fatalf("report = %+v", report)
	}
	if (*recorded)[0].Error == "" {
		t.Error("strict failure should carry an error")
	}
}

func TestSubmitterAssumePolicyCountsUnconfirmed(t *testing.T) {
	session := readySession()
	session.bodyText = "some unrelated page text"
	s, recorded, _, _ := setupSubmitter(t, session)

	report := s.Run(context.Background(), testUser, []jobs.MatchResult{genericCandidate("1")})

	if report.Succeeded != 1 {
		t.Fatalf("report = %+v", report)
	}
	if (*recorded)[0].Status != StatusSuccess {
		t.Errorf("status = %s", (*recorded)[0].Status)
	}
}

func TestSubmitterSuccessesNeverExceedSchedule(t *testing.T) {
	session := readySession()
	s, _, _, _ := setupSubmitter(t, session)

	scheduled := Schedule([]jobs.MatchResult{
		genericCandidate("1"), genericCandidate("2"), genericCandidate("3"),
	}, 2)

	report := s.Run(context.Background(), testUser, scheduled)
	if report.Succeeded > 2 {
		t.Fatalf("succeeded %d exceeds quota 2", report.Succeeded)
	}
}

func TestDetectFormVariants(t *testing.T) {
	engine.Init(engine.Config{})
	tests := []struct {
		url  string
		want Variant
	}{
		{"https://www.linkedin.com/jobs/view/123", VariantEasyApply},
		{"https://za.indeed.com/viewjob?jk=abc", VariantIndeed},
		{"https://www.careers24.com/jobs/adverts/1/", VariantCareers24},
		{"https://www.pnet.co.za/jobs--x--1.html", VariantPNet},
		{"https://www.careerjunction.co.za/jobs/x/1", VariantCareerJunction},
		{"https://careers.acme.example/openings/42", VariantGeneric},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			session := newFakeSession()
			session.current = tt.url
			if got := DetectForm(context.Background(), session); got != tt.want {
				t.Errorf("DetectForm = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDetectFormByMarker(t *testing.T) {
	engine.Init(engine.Config{})
	session := newFakeSession()
	session.current = "https://careers.acme.example/openings/42"
	session.exists[indeedApplyButton] = true
	if got := DetectForm(context.Background(), session); got != VariantIndeed {
		t.Errorf("DetectForm = %s, want %s", got, VariantIndeed)
	}
}
