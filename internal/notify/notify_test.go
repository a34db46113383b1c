package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cgartco6/costbyte-ai/internal/engine/jobs"
)

func TestWhatsAppNotifyDelivers(t *testing.T) {
	var mu sync.Mutex
	var got gatewayPayload
	var auth string
	delivered := make(chan struct{}, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, "/v1/messages", r.URL.Path)
		auth = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
		delivered <- struct{}{}
	}))
	defer srv.Close()

	n := NewWhatsApp(srv.URL, "secret-token")
	n.Notify(context.Background(), "u1", "Applied: Engineer at Acme")

	select {
	case <-delivered:
	case <-time.After(2 * time.Second):
		t.Fatal("gateway never received the message")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, "Applied: Engineer at Acme", got.Message)
	assert.Equal(t, "Bearer secret-token", auth)
}

func TestWhatsAppNotifyFailureDoesNotPanic(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	n := NewWhatsApp(srv.URL, "")
	// Fire-and-forget: the call itself must never error or block.
	n.Notify(context.Background(), "u1", "message")
	time.Sleep(100 * time.Millisecond)
}

func TestWhatsAppNotifySkipsEmpty(t *testing.T) {
	var called bool
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		mu.Lock()
		called = true
		mu.Unlock()
	}))
	defer srv.Close()

	n := NewWhatsApp(srv.URL, "")
	n.Notify(context.Background(), "u1", "")
	time.Sleep(100 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.False(t, called, "empty message should not be sent")
}

func TestNewMatchesMessage(t *testing.T) {
	results := []jobs.MatchResult{
		{Posting: jobs.JobPosting{Title: "Go Dev", Company: "A"}, Score: 95},
		{Posting: jobs.JobPosting{Title: "SRE", Company: "B"}, Score: 90},
		{Posting: jobs.JobPosting{Title: "Backend", Company: "C"}, Score: 88},
		{Posting: jobs.JobPosting{Title: "Data", Company: "D"}, Score: 86},
	}

	msg := NewMatchesMessage(results, 3)
	require.NotEmpty(t, msg)
	assert.Equal(t, 3, strings.Count(msg, "•"), "limit of 3 entries")
	assert.Contains(t, msg, "Go Dev at A (95% match)")
	assert.NotContains(t, msg, "Data", "limit not applied")

	assert.Empty(t, NewMatchesMessage(nil, 3))
}
