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

const careerJunctionBaseURL = "https://www.careerjunction.co.za/jobs/results"

// CareerJunction scrapes careerjunction.co.za result pages.
type CareerJunction struct {
	baseURL string
	limiter limiter
}

func NewCareerJunction() *CareerJunction {
	return &CareerJunction{baseURL: careerJunctionBaseURL, limiter: newBoardLimiter(1)}
}

func (c *CareerJunction) Name() string { return "careerjunction" }

func (c *CareerJunction) Fetch(ctx context.Context, prefs Preferences) ([]JobPosting, error) {
	engine.IncrCareerJxnRequests()

	query := strings.Join(firstN(prefs.Keywords, 3), " ")
	location := firstOr(prefs.Locations, "")

	var all []JobPosting
	for page := 1; page <= engine.Cfg.MaxPagesPerSite; page++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return all, err
		}

		params := url.Values{"keywords": {query}, "page": {fmt.Sprint(page)}}
		if location != "" {
			params.Set("location", location)
		}
		u := fmt.Sprintf("%s?%s", c.baseURL, params.Encode())

		body, err := fetchBoardPage(ctx, u, c.baseURL)
		if err != nil {
			return all, fmt.Errorf("careerjunction page %d: %w", page, err)
		}

		batch, err := parseCareerJunctionPage(body)
		if err != nil {
			return all, fmt.Errorf("careerjunction parse page %d: %w", page, err)
		}
		all = append(all, batch...)

		if len(batch) < 20 {
			break
		}
	}

	slog.Debug("careerjunction: fetch complete", slog.Int("postings", len(all)))
	return all, nil
}

func parseCareerJunctionPage(body []byte) ([]JobPosting, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var postings []JobPosting
	doc.Find("div.module.job-result").Each(func(_ int, item *goquery.Selection) {
		link := item.Find("h2 a").First()
		href, _ := link.Attr("href")

		salaryMin, salaryMax := engine.ParseSalary(item.Find(".salary").Text())

		jp := JobPosting{
			Source:      "careerjunction",
			ExternalID:  item.AttrOr("data-sol-id", ""),
			Title:       engine.CollapseSpaces(link.Text()),
			Company:     engine.CollapseSpaces(item.Find(".company").Text()),
			Location:    engine.CollapseSpaces(item.Find(".location").Text()),
			Description: descriptionFromCard(item, ".description"),
			SalaryMin:   engine.AnnualiseSalary(salaryMin, 60000),
			SalaryMax:   engine.AnnualiseSalary(salaryMax, 60000),
			PostedAt:    parsePostedAgo(item.Find(".updated-time").Text()),
			ApplyURL:    absoluteURL(careerJunctionBaseURL, href),
		}
		if err := jp.Validate(); err != nil {
			engine.IncrPostingsDropped()
			slog.Debug("careerjunction: dropping posting", slog.Any("error", err))
			return
		}
		postings = append(postings, jp)
	})

	return postings, nil
}
