package engine

import (
	stealth "github.com/anatolykoptev/go-stealth"
)

// Re-export stealth types and helpers for engine consumers.
// Adapters fetch through BrowserClient when configured so requests carry a
// real Chrome TLS fingerprint; otherwise they fall back to Cfg.HTTPClient.
type BrowserClient = stealth.BrowserClient

func ChromeHeaders() map[string]string { return stealth.ChromeHeaders() }
func RandomUserAgent() string          { return stealth.RandomUserAgent() }

// FetchPage retrieves a URL, preferring the stealth browser client.
// Returns the body bytes and HTTP status.
func FetchPage(rawURL, referer string) ([]byte, int, error) {
	headers := ChromeHeaders()
	if referer != "" {
		headers["referer"] = referer
	}
	if Cfg.BrowserClient != nil {
		data, _, status, err := Cfg.BrowserClient.Do("GET", rawURL, headers, nil)
		return data, status, err
	}
	return fetchPlain(rawURL, headers)
}
