package jobs

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/cgartco6/costbyte-ai/internal/engine"
)

const careers24BaseURL = "https://www.careers24.com/jobs/"

// Careers24 scrapes careers24.com listing pages.
type Careers24 struct {
	baseURL string
	limiter limiter
}

// NewCareers24 constructs the adapter with its politeness limiter.
func NewCareers24() *Careers24 {
	return &Careers24{baseURL: careers24BaseURL, limiter: newBoardLimiter(1)}
}

func (c *Careers24) Name() string { return "careers24" }

// Fetch walks listing pages for the user's keyword/location pair until a
// short page or the page cap, whichever comes first.
func (c *Careers24) Fetch(ctx context.Context, prefs Preferences) ([]JobPosting, error) {
	engine.IncrCareers24Requests()

	query := strings.Join(firstN(prefs.Keywords, 3), " ")
	location := firstOr(prefs.Locations, "South Africa")

	var all []JobPosting
	for page := 1; page <= engine.Cfg.MaxPagesPerSite; page++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return all, err
		}

		u := fmt.Sprintf("%s?%s", c.baseURL, url.Values{
			"keywords": {query},
			"location": {location},
			"page":     {fmt.Sprint(page)},
		}.Encode())

		body, err := fetchBoardPage(ctx, u, c.baseURL)
		if err != nil {
			return all, fmt.Errorf("careers24 page %d: %w", page, err)
		}

		batch, err := parseCareers24Page(body)
		if err != nil {
			return all, fmt.Errorf("careers24 parse page %d: %w", page, err)
		}
		all = append(all, batch...)

		if len(batch) < 20 { // short page = last page
			break
		}
	}

	slog.Debug("careers24: fetch complete", slog.Int("postings", len(all)))
	return all, nil
}

// parseCareers24Page extracts job cards from a listing page.
func parseCareers24Page(body []byte) ([]JobPosting, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var postings []JobPosting
	doc.Find("div.job-card").Each(func(_ int, card *goquery.Selection) {
		link := card.Find("a.job-title").First()
		href, _ := link.Attr("href")

		salaryMin, salaryMax := engine.ParseSalary(card.Find(".job-salary").Text())

		p := JobPosting{
			Source:      "careers24",
			ExternalID:  card.AttrOr("data-job-id", ""),
			Title:       engine.CollapseSpaces(link.Text()),
			Company:     engine.CollapseSpaces(card.Find(".job-company").Text()),
			Location:    engine.CollapseSpaces(card.Find(".job-location").Text()),
			Description: descriptionFromCard(card, ".job-description"),
			SalaryMin:   engine.AnnualiseSalary(salaryMin, 60000),
			SalaryMax:   engine.AnnualiseSalary(salaryMax, 60000),
			PostedAt:    parsePostedAgo(card.Find(".job-posted").Text()),
			ApplyURL:    absoluteURL(careers24BaseURL, href),
		}
		if err := p.Validate(); err != nil {
			engine.IncrPostingsDropped()
			slog.Debug("careers24: dropping posting", slog.Any("error", err))
			return
		}
		postings = append(postings, p)
	})

	return postings, nil
}

// descriptionFromCard renders a card's description fragment to text.
func descriptionFromCard(card *goquery.Selection, sel string) string {
	frag, err := card.Find(sel).Html()
	if err != nil || frag == "" {
		return engine.CollapseSpaces(card.Find(sel).Text())
	}
	return engine.DescriptionText(frag)
}

// parsePostedAgo turns "3 days ago" / "today" into an absolute time.
// Unknown formats yield the zero time, which downstream treats as unknown.
func parsePostedAgo(text string) time.Time {
	text = strings.ToLower(strings.TrimSpace(text))
	now := time.Now()
	switch {
	case text == "today" || strings.Contains(text, "hour"):
		return now
	case text == "yesterday":
		return now.AddDate(0, 0, -1)
	}
	var n int
	if _, err := fmt.Sscanf(text, "%d day", &n); err == nil {
		return now.AddDate(0, 0, -n)
	}
	if _, err := fmt.Sscanf(text, "%d week", &n); err == nil {
		return now.AddDate(0, 0, -7*n)
	}
	return time.Time{}
}

func absoluteURL(base, href string) string {
	if href == "" {
		return ""
	}
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return b.ResolveReference(ref).String()
}

func firstN(ss []string, n int) []string {
	if len(ss) > n {
		return ss[:n]
	}
	return ss
}

func firstOr(ss []string, fallback string) string {
	if len(ss) > 0 && ss[0] != "" {
		return ss[0]
	}
	return fallback
}
