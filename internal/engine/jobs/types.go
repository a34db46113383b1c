// Package jobs implements job discovery: source adapters, deduplication,
// match scoring and the scrape orchestrator.
package jobs

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrPostingMalformed marks a scraped posting missing required fields.
// Such postings are dropped individually; the batch continues.
var ErrPostingMalformed = errors.New("posting malformed")

// JobPosting is a normalised offer fetched from an external job board.
type JobPosting struct {
	Source      string    `json:"source"`
	ExternalID  string    `json:"externalId"`
	Title       string    `json:"title"`
	Company     string    `json:"company"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	SalaryMin   float64   `json:"salaryMin,omitempty"`
	SalaryMax   float64   `json:"salaryMax,omitempty"`
	PostedAt    time.Time `json:"postedAt,omitempty"`
	ApplyURL    string    `json:"applyUrl"`
}

// Preferences is a user's job search configuration.
type Preferences struct {
	UserID        string   `json:"userId"`
	Keywords      []string `json:"keywords"`
	Locations     []string `json:"locations"`
	Industries    []string `json:"industries"`
	SalaryMin     float64  `json:"salaryMin"`
	MinMatchScore int      `json:"minMatchScore"` // 0 → engine default
	MaxJobsPerDay int      `json:"maxJobsPerDay"`
}

// MatchResult pairs a posting with its computed score and the criteria
// behind it. Immutable once computed; recomputed each scrape cycle.
type MatchResult struct {
	Posting JobPosting `json:"posting"`
	Score   int        `json:"score"`   // 0–100
	Reasons []string   `json:"reasons"` // ordered matched/unmatched criteria
}

// Fingerprint returns the posting's stable identity for deduplication:
// a pure function of (source, external id, title, company). When any of
// those fields is empty the identity falls back to a content hash so that
// partially-parsed postings still dedup deterministically.
func (p JobPosting) Fingerprint() string {
	if p.Source != "" && p.ExternalID != "" && p.Title != "" && p.Company != "" {
		return strings.ToLower(strings.Join(
			[]string{p.Source, p.ExternalID, p.Title, p.Company}, "\x1f"))
	}
	h := sha256.Sum256([]byte(strings.ToLower(strings.Join(
		[]string{p.Source, p.ExternalID, p.Title, p.Company, p.Location, p.ApplyURL}, "\x1f"))))
	return fmt.Sprintf("fp:%x", h[:12])
}

// Validate reports whether the posting carries the fields the pipeline
// requires downstream.
func (p JobPosting) Validate() error {
	switch {
	case p.Title == "":
		return fmt.Errorf("%w: missing title", ErrPostingMalformed)
	case p.Company == "":
		return fmt.Errorf("%w: missing company", ErrPostingMalformed)
	case p.ApplyURL == "":
		return fmt.Errorf("%w: missing apply URL", ErrPostingMalformed)
	}
	return nil
}
