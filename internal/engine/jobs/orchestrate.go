package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/cgartco6/costbyte-ai/internal/engine"
)

// nowFn is swapped in tests to pin the cache bucket.
var nowFn = time.Now

// ScrapeForUser returns the user's ranked postings for the current hour
// bucket. A cache hit within TTL returns immediately without touching any
// adapter; concurrent calls for the same bucket share one scrape
// (single-flight). Individual adapter failures are logged and treated as
// empty results, never as a batch failure.
func ScrapeForUser(ctx context.Context, prefs Preferences) ([]MatchResult, error) {
	key := engine.BucketKey(prefs.UserID, nowFn())

	results, hit, err := engine.CachedFetch(ctx, key, func(ctx context.Context) ([]MatchResult, error) {
		return scrapeAndRank(ctx, prefs)
	})
	if err != nil {
		return nil, err
	}
	if hit {
		slog.Debug("scrape: cache hit", slog.String("user", prefs.UserID))
	}
	return results, nil
}

// scrapeAndRank fans out to every registered adapter, merges, dedups,
// scores and filters the combined postings.
func scrapeAndRank(ctx context.Context, prefs Preferences) ([]MatchResult, error) {
	engine.IncrScrapeCycles()
	adapters := Sources()

	type fetchResult struct {
		source   string
		postings []JobPosting
	}
	ch := make(chan fetchResult, len(adapters))

	for _, a := range adapters {
		go func(a SourceAdapter) {
			actx, cancel := context.WithTimeout(ctx, engine.Cfg.FetchTimeout)
			defer cancel()

			postings, err := safeFetch(actx, a, prefs)
			if err != nil {
				engine.IncrAdapterErrors()
				slog.Warn("scrape: adapter failed",
					slog.String("source", a.Name()), slog.Any("error", err))
				postings = nil // partial results are success
			}
			ch <- fetchResult{a.Name(), postings}
		}(a)
	}

	// Fan-in, then re-order by adapter name so encounter order is stable
	// regardless of which goroutine finished first.
	bySource := make(map[string][]JobPosting, len(adapters))
	for range adapters {
		r := <-ch
		bySource[r.source] = r.postings
	}
	var merged []JobPosting
	for _, a := range adapters {
		merged = append(merged, bySource[a.Name()]...)
	}

	unique := Dedup(merged)

	minScore := prefs.MinMatchScore
	if minScore <= 0 {
		minScore = engine.Cfg.MinMatchScore
	}

	var matched []MatchResult
	for _, p := range unique {
		score, reasons := Score(p, prefs)
		if score >= minScore {
			matched = append(matched, MatchResult{Posting: p, Score: score, Reasons: reasons})
		}
	}

	// Descending score; ties keep scrape-encounter order.
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Score > matched[j].Score
	})

	slog.Info("scrape: cycle complete",
		slog.String("user", prefs.UserID),
		slog.Int("sources", len(adapters)),
		slog.Int("raw", len(merged)),
		slog.Int("unique", len(unique)),
		slog.Int("matched", len(matched)),
	)
	return matched, nil
}

// safeFetch isolates adapter panics so a misbehaving parser cannot take
// down the cycle.
func safeFetch(ctx context.Context, a SourceAdapter, prefs Preferences) (postings []JobPosting, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &adapterPanicError{source: a.Name(), value: r}
		}
	}()
	return a.Fetch(ctx, prefs)
}

type adapterPanicError struct {
	source string
	value  any
}

func (e *adapterPanicError) Error() string {
	return fmt.Sprintf("%s: adapter panic: %v", e.source, e.value)
}
