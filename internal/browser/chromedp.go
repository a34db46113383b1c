package browser

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
)

// ChromeOptions configures a headless Chrome session.
type ChromeOptions struct {
	ExecPath  string        // empty = let chromedp find the binary
	Headless  bool
	UserAgent string
	ReadyWait time.Duration // upper bound for page-settle waits
}

// chromeSession drives a single headless Chrome tab via the DevTools
// protocol. One tab per session, one session per user batch.
type chromeSession struct {
	ctx       context.Context
	cancel    context.CancelFunc
	allocStop context.CancelFunc
	readyWait time.Duration

	closeOnce sync.Once
}

// NewChrome starts Chrome and returns a live session. Startup failure is
// wrapped in ErrSessionInit so batch callers can abort instead of skipping.
func NewChrome(ctx context.Context, opts ChromeOptions) (Session, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(1920, 1080),
	)
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}

	allocCtx, allocStop := chromedp.NewExecAllocator(ctx, allocOpts...)
	tabCtx, cancel := chromedp.NewContext(allocCtx)

	// Force the browser process up front so init failures surface here,
	// not on the first Navigate.
	if err := chromedp.Run(tabCtx); err != nil {
		cancel()
		allocStop()
		return nil, fmt.Errorf("%w: %v", ErrSessionInit, err)
	}

	wait := opts.ReadyWait
	if wait <= 0 {
		wait = 15 * time.Second
	}
	return &chromeSession{ctx: tabCtx, cancel: cancel, allocStop: allocStop, readyWait: wait}, nil
}

func (s *chromeSession) run(ctx context.Context, actions ...chromedp.Action) error {
	bounded, stop := context.WithTimeout(s.ctx, s.readyWait)
	defer stop()
	done := make(chan error, 1)
	go func() { done <- chromedp.Run(bounded, actions...) }()
	select {
	case <-ctx.Done():
		stop()
		return ctx.Err()
	case err := <-done:
		return err
	}
}

func (s *chromeSession) Navigate(ctx context.Context, rawURL string) error {
	return s.run(ctx,
		chromedp.Navigate(rawURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

func (s *chromeSession) WaitReady(ctx context.Context) error {
	return s.run(ctx, chromedp.WaitReady("body", chromedp.ByQuery))
}

func (s *chromeSession) CurrentURL(ctx context.Context) (string, error) {
	var loc string
	err := s.run(ctx, chromedp.Location(&loc))
	return loc, err
}

func (s *chromeSession) Exists(ctx context.Context, selector string) (bool, error) {
	var found bool
	script := fmt.Sprintf(`(() => {
		const el = document.querySelector(%q);
		return el !== null && el.offsetParent !== null;
	})()`, selector)
	err := s.run(ctx, chromedp.Evaluate(script, &found))
	return found, err
}

// fieldsScript enumerates fillable controls within a root element as plain
// objects matching the Field struct.
const fieldsScript = `((rootSel) => {
	const root = rootSel ? document.querySelector(rootSel) : document;
	if (!root) return [];
	const out = [];
	const controls = root.querySelectorAll('input, select, textarea');
	controls.forEach((el, i) => {
		const type = (el.type || '').toLowerCase();
		if (type === 'hidden' || type === 'submit' || type === 'button') return;
		let label = '';
		if (el.id) {
			const l = document.querySelector('label[for="' + el.id + '"]');
			if (l) label = l.textContent.trim();
		}
		if (!label) {
			const wrap = el.closest('label');
			if (wrap) label = wrap.textContent.trim();
		}
		let selector = '';
		if (el.id) selector = '#' + CSS.escape(el.id);
		else if (el.name) selector = el.tagName.toLowerCase() + '[name="' + el.name + '"]';
		else { el.dataset.ffIdx = String(i); selector = '[data-ff-idx="' + i + '"]'; }
		out.push({
			selector: selector,
			tag: el.tagName.toLowerCase(),
			type: type,
			name: el.name || '',
			id: el.id || '',
			placeholder: el.placeholder || '',
			label: label,
			accept: el.accept || '',
			options: el.tagName === 'SELECT'
				? Array.from(el.options).map(o => o.textContent.trim())
				: [],
			readOnly: !!el.readOnly || !!el.disabled,
		});
	});
	return out;
})`

func (s *chromeSession) Fields(ctx context.Context, formSelector string) ([]Field, error) {
	var fields []Field
	script := fmt.Sprintf("%s(%q)", fieldsScript, formSelector)
	if err := s.run(ctx, chromedp.Evaluate(script, &fields)); err != nil {
		return nil, fmt.Errorf("enumerate fields: %w", err)
	}
	return fields, nil
}

func (s *chromeSession) Fill(ctx context.Context, selector, value string) error {
	return s.run(ctx,
		chromedp.Clear(selector, chromedp.ByQuery),
		chromedp.SendKeys(selector, value, chromedp.ByQuery),
	)
}

// SelectOption picks the option whose visible text matches, then fires a
// change event so framework listeners see it.
func (s *chromeSession) SelectOption(ctx context.Context, selector, optionText string) error {
	script := fmt.Sprintf(`(() => {
		const el = document.querySelector(%q);
		if (!el) return false;
		for (const opt of el.options) {
			if (opt.textContent.trim().toLowerCase() === %q.toLowerCase()) {
				el.value = opt.value;
				el.dispatchEvent(new Event('change', { bubbles: true }));
				return true;
			}
		}
		return false;
	})()`, selector, optionText)
	var ok bool
	if err := s.run(ctx, chromedp.Evaluate(script, &ok)); err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("select %s: no option %q", selector, optionText)
	}
	return nil
}

func (s *chromeSession) Click(ctx context.Context, selector string) error {
	return s.run(ctx, chromedp.Click(selector, chromedp.ByQuery))
}

func (s *chromeSession) Upload(ctx context.Context, selector, path string) error {
	return s.run(ctx, chromedp.SetUploadFiles(selector, []string{path}, chromedp.ByQuery))
}

func (s *chromeSession) BodyContains(ctx context.Context, phrases ...string) (bool, error) {
	var body string
	if err := s.run(ctx, chromedp.Text("body", &body, chromedp.ByQuery)); err != nil {
		return false, err
	}
	body = strings.ToLower(body)
	for _, p := range phrases {
		if strings.Contains(body, strings.ToLower(p)) {
			return true, nil
		}
	}
	return false, nil
}

func (s *chromeSession) Close() error {
	s.closeOnce.Do(func() {
		s.cancel()
		s.allocStop()
		slog.Debug("browser: session closed")
	})
	return nil
}
