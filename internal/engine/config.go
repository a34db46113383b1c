package engine

import (
	"net/http"
	"time"

	stealth "github.com/anatolykoptev/go-stealth"
)

// Config holds all engine configuration, injected from main.
type Config struct {
	// Scraping
	FetchTimeout    time.Duration // per-adapter fetch budget
	MaxPagesPerSite int           // listing pages fetched per (keyword x location) pair
	MaxContentChars int           // description truncation limit

	// Matching
	MinMatchScore int // postings below this score are dropped

	// Caching
	CacheTTL             time.Duration
	CacheMaxEntries      int
	CacheCleanupInterval time.Duration

	// Submission
	SubmitWait     time.Duration // bounded wait after a submit action
	PageReadyWait  time.Duration // bounded wait for page readiness
	DelayMin       time.Duration // politeness delay lower bound
	DelayMax       time.Duration // politeness delay upper bound
	MaxSessions    int           // concurrent automation sessions across users
	ConfirmPolicy  string        // "assume" or "strict"
	ChromeExecPath string        // optional explicit Chrome binary
	ChromeHeadless bool

	HTTPClient    *http.Client
	BrowserClient *stealth.BrowserClient // nil = adapters fall back to HTTPClient
}

var cfg Config

// Cfg exposes the engine configuration for sub-packages (jobs, apply).
// Always points to the current cfg value.
var Cfg = &cfg

// Init initializes the engine with the given configuration.
// Zero-value fields get workable defaults.
func Init(c Config) {
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = 30 * time.Second
	}
	if c.MaxPagesPerSite <= 0 {
		c.MaxPagesPerSite = 3
	}
	if c.MaxContentChars <= 0 {
		c.MaxContentChars = 6000
	}
	if c.MinMatchScore <= 0 {
		c.MinMatchScore = 70
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = time.Hour
	}
	if c.SubmitWait <= 0 {
		c.SubmitWait = 3 * time.Second
	}
	if c.PageReadyWait <= 0 {
		c.PageReadyWait = 10 * time.Second
	}
	if c.DelayMin <= 0 {
		c.DelayMin = 5 * time.Second
	}
	if c.DelayMax <= c.DelayMin {
		c.DelayMax = c.DelayMin + 10*time.Second
	}
	if c.MaxSessions <= 0 {
		c.MaxSessions = 2
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}
	cfg = c
	Cfg = &cfg
}
