package engine

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	ScrapeCycles        atomic.Int64
	Careers24Requests   atomic.Int64
	PNetRequests        atomic.Int64
	CareerJxnRequests   atomic.Int64
	IndeedRequests      atomic.Int64
	LinkedInRequests    atomic.Int64
	AdapterErrors       atomic.Int64
	PostingsDropped     atomic.Int64
	FormsDetected       atomic.Int64
	SubmitsConfirmed    atomic.Int64
	SubmitsFailed       atomic.Int64
	SubmitsSkipped      atomic.Int64
	NotificationsSent   atomic.Int64
	NotificationsFailed atomic.Int64
}

func IncrScrapeCycles()        { metrics.ScrapeCycles.Add(1) }
func IncrCareers24Requests()   { metrics.Careers24Requests.Add(1) }
func IncrPNetRequests()        { metrics.PNetRequests.Add(1) }
func IncrCareerJxnRequests()   { metrics.CareerJxnRequests.Add(1) }
func IncrIndeedRequests()      { metrics.IndeedRequests.Add(1) }
func IncrLinkedInRequests()    { metrics.LinkedInRequests.Add(1) }
func IncrAdapterErrors()       { metrics.AdapterErrors.Add(1) }
func IncrPostingsDropped()     { metrics.PostingsDropped.Add(1) }
func IncrFormsDetected()       { metrics.FormsDetected.Add(1) }
func IncrSubmitsConfirmed()    { metrics.SubmitsConfirmed.Add(1) }
func IncrSubmitsFailed()       { metrics.SubmitsFailed.Add(1) }
func IncrSubmitsSkipped()      { metrics.SubmitsSkipped.Add(1) }
func IncrNotificationsSent()   { metrics.NotificationsSent.Add(1) }
func IncrNotificationsFailed() { metrics.NotificationsFailed.Add(1) }

// GetMetrics returns a snapshot of all metrics including cache stats.
func GetMetrics() map[string]int64 {
	hits, misses := CacheStats()
	return map[string]int64{
		"scrape_cycles":           metrics.ScrapeCycles.Load(),
		"careers24_requests":      metrics.Careers24Requests.Load(),
		"pnet_requests":           metrics.PNetRequests.Load(),
		"careerjunction_requests": metrics.CareerJxnRequests.Load(),
		"indeed_requests":         metrics.IndeedRequests.Load(),
		"linkedin_requests":       metrics.LinkedInRequests.Load(),
		"adapter_errors":          metrics.AdapterErrors.Load(),
		"postings_dropped":        metrics.PostingsDropped.Load(),
		"forms_detected":          metrics.FormsDetected.Load(),
		"submits_confirmed":       metrics.SubmitsConfirmed.Load(),
		"submits_failed":          metrics.SubmitsFailed.Load(),
		"submits_skipped":         metrics.SubmitsSkipped.Load(),
		"notifications_sent":      metrics.NotificationsSent.Load(),
		"notifications_failed":    metrics.NotificationsFailed.Load(),
		"cache_hits":              hits,
		"cache_misses":            misses,
	}
}

// FormatMetrics returns metrics as a simple text format for the HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	keys := []string{
		"scrape_cycles",
		"careers24_requests", "pnet_requests", "careerjunction_requests",
		"indeed_requests", "linkedin_requests",
		"adapter_errors", "postings_dropped",
		"forms_detected",
		"submits_confirmed", "submits_failed", "submits_skipped",
		"notifications_sent", "notifications_failed",
		"cache_hits", "cache_misses",
	}
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}
