// Package store persists postings, application attempts and user profiles,
// and owns the daily quota arithmetic.
package store

import (
	"context"
	"errors"

	"github.com/cgartco6/costbyte-ai/internal/engine/apply"
	"github.com/cgartco6/costbyte-ai/internal/engine/jobs"
)

// ErrUserNotFound is returned when no profile exists for a user id.
var ErrUserNotFound = errors.New("store: user not found")

// Store is the persistence surface the batch pipeline needs. The daily
// quota boundary (local midnight) is owned here, not by callers.
type Store interface {
	// StoreJobs upserts scored postings for a user; rows already present
	// (same fingerprint) are left untouched.
	StoreJobs(ctx context.Context, userID string, results []jobs.MatchResult) error
	// LogAttempt appends one terminal application attempt.
	LogAttempt(ctx context.Context, attempt apply.ApplicationAttempt) error
	// TodaysApplicationCount counts successful attempts since local midnight.
	TodaysApplicationCount(ctx context.Context, userID string) (int, error)
	// RemainingQuota is maxDaily minus today's count, floored at zero.
	RemainingQuota(ctx context.Context, userID string, maxDaily int) (int, error)
	// UserData loads the application profile for a user.
	UserData(ctx context.Context, userID string) (apply.UserData, error)
	// ActiveUsers lists users with auto-apply enabled, with preferences.
	ActiveUsers(ctx context.Context) ([]jobs.Preferences, error)
	Close() error
}

// remainingQuota is the shared floor arithmetic for both backends.
func remainingQuota(maxDaily, used int) int {
	if r := maxDaily - used; r > 0 {
		return r
	}
	return 0
}
