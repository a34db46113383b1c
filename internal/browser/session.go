// Package browser abstracts an interactive page session so form detection
// and filling can be tested without a live Chrome instance.
package browser

import (
	"context"
	"errors"
)

// ErrSessionInit signals that no automation session could be started at
// all. Callers treat it as fatal for the batch rather than per-candidate.
var ErrSessionInit = errors.New("browser: session init failed")

// Field describes one fillable control found on the current page.
type Field struct {
	Selector    string   // CSS selector that uniquely addresses the control
	Tag         string   // "input", "select", "textarea"
	Type        string   // input type attribute, lowercased
	Name        string
	ID          string
	Placeholder string
	Label       string   // associated <label> text, if any
	Accept      string   // accept attribute for file inputs
	Options     []string // visible option texts for selects
	ReadOnly    bool
}

// Session is a live page the apply pipeline drives. Implementations must be
// safe to Close more than once.
type Session interface {
	// Navigate loads rawURL and blocks until the initial document is ready.
	Navigate(ctx context.Context, rawURL string) error
	// WaitReady blocks until the page settles or ctx expires.
	WaitReady(ctx context.Context) error
	CurrentURL(ctx context.Context) (string, error)
	// Exists reports whether selector matches at least one visible node.
	Exists(ctx context.Context, selector string) (bool, error)
	// Fields enumerates fillable controls inside the form matched by
	// formSelector, or the whole document when formSelector is empty.
	Fields(ctx context.Context, formSelector string) ([]Field, error)
	Fill(ctx context.Context, selector, value string) error
	SelectOption(ctx context.Context, selector, optionText string) error
	Click(ctx context.Context, selector string) error
	Upload(ctx context.Context, selector, path string) error
	// BodyContains reports whether the page text contains any of the given
	// phrases, case-insensitively.
	BodyContains(ctx context.Context, phrases ...string) (bool, error)
	Close() error
}

// Factory opens a fresh Session. A nil error means the caller owns Close.
type Factory func(ctx context.Context) (Session, error)
