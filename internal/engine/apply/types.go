// Package apply drives automated job applications: it schedules scored
// matches against the daily quota, detects what kind of application form a
// posting leads to, fills it from the candidate's profile, and records the
// outcome of every attempt.
package apply

import (
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/cgartco6/costbyte-ai/internal/engine/jobs"
)

// AttemptStatus is the lifecycle state of a single application attempt.
type AttemptStatus string

const (
	StatusPending AttemptStatus = "pending"
	StatusSuccess AttemptStatus = "success"
	StatusFailed  AttemptStatus = "failed"
	StatusSkipped AttemptStatus = "skipped"
)

// ApplicationAttempt is the audit record for one posting, written exactly
// once when the attempt reaches a terminal state.
type ApplicationAttempt struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Posting   jobs.JobPosting `json:"posting"`
	Status    AttemptStatus   `json:"status"`
	Error     string          `json:"error,omitempty"`
	Seq       int             `json:"seq"` // 1-based position within the batch
	Timestamp time.Time       `json:"timestamp"`
}

// NewAttempt builds a pending attempt record for a posting.
func NewAttempt(userID string, posting jobs.JobPosting, seq int) ApplicationAttempt {
	return ApplicationAttempt{
		ID:        uuid.NewString(),
		UserID:    userID,
		Posting:   posting,
		Status:    StatusPending,
		Seq:       seq,
		Timestamp: time.Now(),
	}
}

// BatchReport summarises one submit run for a user.
type BatchReport struct {
	UserID    string `json:"user_id"`
	Scheduled int    `json:"scheduled"`
	Succeeded int    `json:"succeeded"`
	Failed    int    `json:"failed"`
	Skipped   int    `json:"skipped"`
}

// UserData is the candidate profile used to answer application forms.
// Demographic fields are only ever written into a form when
// ShareDemographics is set.
type UserData struct {
	UserID    string `json:"user_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`

	StreetAddress string `json:"street_address"`
	City          string `json:"city"`
	Province      string `json:"province"`
	PostalCode    string `json:"postal_code"`

	YearsExperience   int    `json:"years_experience"`
	SalaryExpectation int    `json:"salary_expectation"` // annual, rand
	NoticePeriodDays  int    `json:"notice_period_days"`
	Qualification     string `json:"qualification"`
	Employed          bool   `json:"employed"`

	CVPath    string `json:"cv_path"`
	PhotoPath string `json:"photo_path"`

	Gender            string `json:"gender"`
	Race              string `json:"race"`
	Disability        string `json:"disability"`
	ShareDemographics bool   `json:"share_demographics"`
}

// FullName joins the name parts for single-field forms.
func (u UserData) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}

// Availability answers "when can you start" questions: immediately when not
// employed, otherwise the notice period.
func (u UserData) Availability() string {
	if !u.Employed || u.NoticePeriodDays <= 0 {
		return "Immediately"
	}
	return strconv.Itoa(u.NoticePeriodDays) + " days"
}
