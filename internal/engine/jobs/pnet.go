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

const pnetBaseURL = "https://www.pnet.co.za/jobs/"

// PNet scrapes pnet.co.za search result pages.
type PNet struct {
	baseURL string
	limiter limiter
}

func NewPNet() *PNet {
	return &PNet{baseURL: pnetBaseURL, limiter: newBoardLimiter(1)}
}

func (p *PNet) Name() string { return "pnet" }

func (p *PNet) Fetch(ctx context.Context, prefs Preferences) ([]JobPosting, error) {
	engine.IncrPNetRequests()

	query := strings.Join(firstN(prefs.Keywords, 3), " ")
	location := firstOr(prefs.Locations, "")

	var all []JobPosting
	for page := 1; page <= engine.Cfg.MaxPagesPerSite; page++ {
		if err := p.limiter.Wait(ctx); err != nil {
			return all, err
		}

		params := url.Values{"q": {query}, "page": {fmt.Sprint(page)}}
		if location != "" {
			params.Set("l", location)
		}
		u := fmt.Sprintf("%s?%s", p.baseURL, params.Encode())

		body, err := fetchBoardPage(ctx, u, p.baseURL)
		if err != nil {
			return all, fmt.Errorf("pnet page %d: %w", page, err)
		}

		batch, err := parsePNetPage(body)
		if err != nil {
			return all, fmt.Errorf("pnet parse page %d: %w", page, err)
		}
		all = append(all, batch...)

		if len(batch) < 25 {
			break
		}
	}

	slog.Debug("pnet: fetch complete", slog.Int("postings", len(all)))
	return all, nil
}

// parsePNetPage extracts job items from a PNet result page.
func parsePNetPage(body []byte) ([]JobPosting, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var postings []JobPosting
	doc.Find(`article[data-at="job-item"]`).Each(func(_ int, item *goquery.Selection) {
		link := item.Find(`a[data-at="job-item-title"]`).First()
		href, _ := link.Attr("href")

		salaryMin, salaryMax := engine.ParseSalary(item.Find(`[data-at="job-item-salary-info"]`).Text())

		jp := JobPosting{
			Source:      "pnet",
			ExternalID:  item.AttrOr("data-id", ""),
			Title:       engine.CollapseSpaces(link.Text()),
			Company:     engine.CollapseSpaces(item.Find(`[data-at="job-item-company-name"]`).Text()),
			Location:    engine.CollapseSpaces(item.Find(`[data-at="job-item-location"]`).Text()),
			Description: descriptionFromCard(item, `[data-at="jobcard-content"]`),
			SalaryMin:   engine.AnnualiseSalary(salaryMin, 60000),
			SalaryMax:   engine.AnnualiseSalary(salaryMax, 60000),
			PostedAt:    parsePostedAgo(item.Find("time").Text()),
			ApplyURL:    absoluteURL(pnetBaseURL, href),
		}
		if err := jp.Validate(); err != nil {
			engine.IncrPostingsDropped()
			slog.Debug("pnet: dropping posting", slog.Any("error", err))
			return
		}
		postings = append(postings, jp)
	})

	return postings, nil
}
