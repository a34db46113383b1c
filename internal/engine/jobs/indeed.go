package jobs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/cgartco6/costbyte-ai/internal/engine"
)

const (
	indeedBaseURL     = "https://za.indeed.com/jobs"
	indeedViewJobURL  = "https://za.indeed.com/viewjob?jk="
	indeedEnrichLimit = 5 // detail pages fetched per cycle for missing descriptions
	indeedPageSize    = 15
)

// Indeed scrapes za.indeed.com search pages and enriches the top results
// with JSON-LD structured data from individual job pages.
type Indeed struct {
	baseURL string
	limiter limiter
}

func NewIndeed() *Indeed {
	return &Indeed{baseURL: indeedBaseURL, limiter: newBoardLimiter(0.5)}
}

func (i *Indeed) Name() string { return "indeed" }

func (i *Indeed) Fetch(ctx context.Context, prefs Preferences) ([]JobPosting, error) {
	engine.IncrIndeedRequests()

	query := strings.Join(firstN(prefs.Keywords, 3), " ")
	location := firstOr(prefs.Locations, "South Africa")

	var all []JobPosting
	for page := 0; page < engine.Cfg.MaxPagesPerSite; page++ {
		if err := i.limiter.Wait(ctx); err != nil {
			return all, err
		}

		u := fmt.Sprintf("%s?%s", i.baseURL, url.Values{
			"q":     {query},
			"l":     {location},
			"start": {fmt.Sprint(page * indeedPageSize)},
		}.Encode())

		body, err := fetchBoardPage(ctx, u, i.baseURL)
		if err != nil {
			return all, fmt.Errorf("indeed page %d: %w", page, err)
		}

		batch, err := parseIndeedSearchPage(body)
		if err != nil {
			return all, fmt.Errorf("indeed parse page %d: %w", page, err)
		}
		all = append(all, batch...)

		if len(batch) < indeedPageSize {
			break
		}
	}

	i.enrichDescriptions(ctx, all)

	slog.Debug("indeed: fetch complete", slog.Int("postings", len(all)))
	return all, nil
}

// parseIndeedSearchPage extracts job cards from a search result page.
func parseIndeedSearchPage(body []byte) ([]JobPosting, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var postings []JobPosting
	doc.Find("a.tapItem, div.job_seen_beacon").Each(func(_ int, card *goquery.Selection) {
		jk := card.AttrOr("data-jk", "")
		if jk == "" {
			jk = card.Find("[data-jk]").First().AttrOr("data-jk", "")
		}

		salaryMin, salaryMax := engine.ParseSalary(card.Find(".salary-snippet, .salary-snippet-container").Text())

		jp := JobPosting{
			Source:      "indeed",
			ExternalID:  jk,
			Title:       engine.CollapseSpaces(card.Find("h2.jobTitle").Text()),
			Company:     engine.CollapseSpaces(card.Find(`[data-testid="company-name"], .companyName`).Text()),
			Location:    engine.CollapseSpaces(card.Find(`[data-testid="text-location"], .companyLocation`).Text()),
			Description: engine.CollapseSpaces(card.Find(".job-snippet").Text()),
			SalaryMin:   engine.AnnualiseSalary(salaryMin, 60000),
			SalaryMax:   engine.AnnualiseSalary(salaryMax, 60000),
			PostedAt:    parsePostedAgo(card.Find(".date").Text()),
			ApplyURL:    indeedViewJobURL + jk,
		}
		if jk == "" {
			jp.ApplyURL = ""
		}
		if err := jp.Validate(); err != nil {
			engine.IncrPostingsDropped()
			slog.Debug("indeed: dropping posting", slog.Any("error", err))
			return
		}
		postings = append(postings, jp)
	})

	return postings, nil
}

// enrichDescriptions fetches detail pages for the first few postings whose
// search snippet was empty and fills descriptions from JSON-LD JobPosting
// blocks. Failures leave the snippet as-is.
func (i *Indeed) enrichDescriptions(ctx context.Context, postings []JobPosting) {
	fetched := 0
	for idx := range postings {
		if fetched >= indeedEnrichLimit {
			return
		}
		if postings[idx].Description != "" || postings[idx].ApplyURL == "" {
			continue
		}
		if err := i.limiter.Wait(ctx); err != nil {
			return
		}
		body, err := fetchBoardPage(ctx, postings[idx].ApplyURL, i.baseURL)
		fetched++
		if err != nil {
			slog.Debug("indeed: enrich fetch failed", slog.Any("error", err))
			continue
		}
		if ld, ok := extractJobPostingLD(body); ok && ld.Description != "" {
			postings[idx].Description = engine.DescriptionText(ld.Description)
			if postings[idx].PostedAt.IsZero() && ld.DatePosted != "" {
				postings[idx].PostedAt = parseISODate(ld.DatePosted)
			}
		}
	}
}

// jobPostingLD mirrors the JSON-LD JobPosting fields we consume.
type jobPostingLD struct {
	Type        string `json:"@type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	DatePosted  string `json:"datePosted"`
	HiringOrganization struct {
		Name string `json:"name"`
	} `json:"hiringOrganization"`
}

// extractJobPostingLD scans a page for <script type="application/ld+json">
// blocks and returns the first JobPosting entry found.
func extractJobPostingLD(body []byte) (jobPostingLD, bool) {
	z := html.NewTokenizer(bytes.NewReader(body))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return jobPostingLD{}, false
		case html.StartTagToken:
			name, hasAttr := z.TagName()
			if string(name) != "script" {
				continue
			}
			isLD := false
			for hasAttr {
				var k, v []byte
				k, v, hasAttr = z.TagAttr()
				if string(k) == "type" && string(v) == "application/ld+json" {
					isLD = true
				}
			}
			if !isLD {
				continue
			}
			if z.Next() != html.TextToken {
				continue
			}
			raw := z.Text()

			var single jobPostingLD
			if err := json.Unmarshal(raw, &single); err == nil && single.Type == "JobPosting" {
				return single, true
			}
			var many []jobPostingLD
			if err := json.Unmarshal(raw, &many); err == nil {
				for _, ld := range many {
					if ld.Type == "JobPosting" {
						return ld, true
					}
				}
			}
		}
	}
}
