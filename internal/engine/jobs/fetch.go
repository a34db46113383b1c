package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/cgartco6/costbyte-ai/internal/engine"
)

// limiter is the slice of rate.Limiter the adapters use; an interface so
// tests can drop the pacing entirely.
type limiter interface {
	Wait(ctx context.Context) error
}

// fetchBoardPage retrieves one listing page, retrying transient failures
// (connection errors, 429/5xx) with backoff. Other non-200 statuses fail
// immediately.
func fetchBoardPage(ctx context.Context, rawURL, referer string) ([]byte, error) {
	return engine.RetryDo(ctx, engine.DefaultRetryConfig, func() ([]byte, error) {
		body, status, err := engine.FetchPage(rawURL, referer)
		if err != nil {
			return nil, err
		}
		if status != 200 {
			if engine.IsRetryableStatus(status) {
				return nil, engine.ErrHTTPStatus(status)
			}
			return nil, fmt.Errorf("http %d", status)
		}
		return body, nil
	})
}

// parseISODate parses RFC 3339 or date-only timestamps; unknown formats
// yield the zero time.
func parseISODate(s string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
