package jobs

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/time/rate"
)

// SourceAdapter fetches raw postings from one job board. Implementations
// own their request headers and pacing and must not panic past Fetch; the
// orchestrator treats every call as fallible.
type SourceAdapter interface {
	Name() string
	Fetch(ctx context.Context, prefs Preferences) ([]JobPosting, error)
}

var (
	sourcesMu sync.RWMutex
	sources   = map[string]SourceAdapter{}
)

// RegisterSource adds an adapter to the registry. Later registrations with
// the same name replace earlier ones (tests swap in fakes this way).
func RegisterSource(a SourceAdapter) {
	sourcesMu.Lock()
	defer sourcesMu.Unlock()
	sources[a.Name()] = a
}

// Sources returns the registered adapters in name order, for a stable
// fan-out sequence.
func Sources() []SourceAdapter {
	sourcesMu.RLock()
	defer sourcesMu.RUnlock()
	out := make([]SourceAdapter, 0, len(sources))
	for _, a := range sources {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// ResetSources clears the registry. Test helper.
func ResetSources() {
	sourcesMu.Lock()
	defer sourcesMu.Unlock()
	sources = map[string]SourceAdapter{}
}

// newBoardLimiter returns the pacing limiter shared by a board's page
// fetches: one request per interval with a small burst, so listing pages
// are not hammered.
func newBoardLimiter(perSecond float64) *rate.Limiter {
	return rate.NewLimiter(rate.Limit(perSecond), 1)
}
