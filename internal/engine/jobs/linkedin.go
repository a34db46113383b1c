package jobs

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/cgartco6/costbyte-ai/internal/engine"
)

const (
	linkedinGuestURL = "https://www.linkedin.com/jobs-guest/jobs/api/seeMoreJobPostings/search"
	linkedinReferer  = "https://www.linkedin.com/jobs/"
	linkedinPageSize = 25
)

// LinkedIn scrapes public job cards from the guest search endpoint, which
// serves HTML fragments without authentication. Gated behind the stealth
// client: without a Chrome TLS fingerprint the endpoint answers 999.
type LinkedIn struct {
	baseURL string
	limiter limiter
}

func NewLinkedIn() *LinkedIn {
	return &LinkedIn{baseURL: linkedinGuestURL, limiter: newBoardLimiter(0.5)}
}

func (l *LinkedIn) Name() string { return "linkedin" }

func (l *LinkedIn) Fetch(ctx context.Context, prefs Preferences) ([]JobPosting, error) {
	engine.IncrLinkedInRequests()

	if engine.Cfg.BrowserClient == nil {
		slog.Debug("linkedin: stealth client not configured, skipping")
		return nil, nil
	}

	query := strings.Join(firstN(prefs.Keywords, 3), " ")
	location := firstOr(prefs.Locations, "South Africa")

	var all []JobPosting
	for page := 0; page < engine.Cfg.MaxPagesPerSite; page++ {
		if err := l.limiter.Wait(ctx); err != nil {
			return all, err
		}

		u := fmt.Sprintf("%s?%s", l.baseURL, url.Values{
			"keywords": {query},
			"location": {location},
			"start":    {fmt.Sprint(page * linkedinPageSize)},
		}.Encode())

		body, err := fetchBoardPage(ctx, u, linkedinReferer)
		if err != nil {
			return all, fmt.Errorf("linkedin page %d: %w", page, err)
		}

		batch, err := parseLinkedInCards(body)
		if err != nil {
			return all, fmt.Errorf("linkedin parse page %d: %w", page, err)
		}
		all = append(all, batch...)

		if len(batch) < linkedinPageSize {
			break
		}
	}

	slog.Debug("linkedin: fetch complete", slog.Int("postings", len(all)))
	return all, nil
}

// parseLinkedInCards extracts postings from a guest-endpoint HTML fragment.
func parseLinkedInCards(body []byte) ([]JobPosting, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var postings []JobPosting
	doc.Find("div.base-card, li > div.base-search-card").Each(func(_ int, card *goquery.Selection) {
		href := card.Find("a.base-card__full-link").AttrOr("href", "")

		jp := JobPosting{
			Source:      "linkedin",
			ExternalID:  urnID(card.AttrOr("data-entity-urn", "")),
			Title:       engine.CollapseSpaces(card.Find("h3.base-search-card__title").Text()),
			Company:     engine.CollapseSpaces(card.Find("h4.base-search-card__subtitle").Text()),
			Location:    engine.CollapseSpaces(card.Find("span.job-search-card__location").Text()),
			PostedAt:    parseISODate(card.Find("time").AttrOr("datetime", "")),
			ApplyURL:    stripTracking(href),
		}
		if err := jp.Validate(); err != nil {
			engine.IncrPostingsDropped()
			slog.Debug("linkedin: dropping posting", slog.Any("error", err))
			return
		}
		postings = append(postings, jp)
	})

	return postings, nil
}

// urnID extracts the numeric id from "urn:li:jobPosting:123456".
func urnID(urn string) string {
	if idx := strings.LastIndex(urn, ":"); idx >= 0 {
		return urn[idx+1:]
	}
	return urn
}

// stripTracking drops the query string LinkedIn appends to card links.
func stripTracking(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	u.RawQuery = ""
	return u.String()
}
