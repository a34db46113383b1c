// Package notify delivers short status messages to users through a
// WhatsApp HTTP gateway. Delivery is best-effort: failures are logged and
// never propagate into the application pipeline.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cgartco6/costbyte-ai/internal/engine"
	"github.com/cgartco6/costbyte-ai/internal/engine/jobs"
)

// Notifier delivers one message to one user.
type Notifier interface {
	Notify(ctx context.Context, userID, message string)
}

// WhatsApp posts messages to a gateway service keyed by user id.
type WhatsApp struct {
	gatewayURL string
	token      string
	client     *http.Client
}

// NewWhatsApp builds a notifier for the given gateway.
func NewWhatsApp(gatewayURL, token string) *WhatsApp {
	return &WhatsApp{
		gatewayURL: strings.TrimRight(gatewayURL, "/"),
		token:      token,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

type gatewayPayload struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

// Notify sends asynchronously. The pipeline never waits on delivery, and a
// gateway failure only produces a log line and a metric.
func (w *WhatsApp) Notify(ctx context.Context, userID, message string) {
	if w.gatewayURL == "" || message == "" {
		return
	}
	go func() {
		sendCtx, stop := context.WithTimeout(context.WithoutCancel(ctx), 15*time.Second)
		defer stop()
		if err := w.send(sendCtx, userID, message); err != nil {
			engine.IncrNotificationsFailed()
			slog.Warn("notify: delivery failed",
				slog.String("user", userID), slog.Any("error", err))
			return
		}
		engine.IncrNotificationsSent()
	}()
}

func (w *WhatsApp) send(ctx context.Context, userID, message string) error {
	body, err := json.Marshal(gatewayPayload{UserID: userID, Message: message})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		w.gatewayURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if w.token != "" {
		req.Header.Set("Authorization", "Bearer "+w.token)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("gateway status %d", resp.StatusCode)
	}
	return nil
}

// Noop discards all messages; used when no gateway is configured.
type Noop struct{}

func (Noop) Notify(context.Context, string, string) {}

// NewMatchesMessage summarises the best fresh matches for a user, top
// results first.
func NewMatchesMessage(results []jobs.MatchResult, limit int) string {
	if len(results) == 0 {
		return ""
	}
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	var b strings.Builder
	fmt.Fprintf(&b, "New job matches for you:\n")
	for _, r := range results {
		fmt.Fprintf(&b, "• %s at %s (%d%% match)\n", r.Posting.Title, r.Posting.Company, r.Score)
	}
	return strings.TrimRight(b.String(), "\n")
}
