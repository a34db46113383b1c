package apply

import (
	"context"
	"log/slog"
	"strings"

	"github.com/cgartco6/costbyte-ai/internal/browser"
	"github.com/cgartco6/costbyte-ai/internal/engine"
)

// Variant identifies which filling strategy a page needs.
type Variant string

const (
	VariantEasyApply      Variant = "linkedin_easy_apply"
	VariantIndeed         Variant = "indeed_apply"
	VariantCareers24      Variant = "careers24_apply"
	VariantPNet           Variant = "pnet_apply"
	VariantCareerJunction Variant = "careerjunction_apply"
	VariantGeneric        Variant = "generic"
)

// Structural markers checked when the URL alone is not conclusive.
const (
	easyApplyButton   = `button.jobs-apply-button, button[aria-label*="Easy Apply"]`
	indeedApplyButton = `#indeed-apply-button, #applyButtonLinkContainer`
)

// DetectForm classifies the current page. URL patterns are tried first,
// then structural markers; anything unrecognised falls back to
// VariantGeneric so every page gets exactly one strategy. The page is not
// modified.
func DetectForm(ctx context.Context, session browser.Session) Variant {
	rawURL, err := session.CurrentURL(ctx)
	if err != nil {
		slog.Warn("detect: current url unavailable", slog.Any("error", err))
		return VariantGeneric
	}
	u := strings.ToLower(rawURL)

	var v Variant
	switch {
	case strings.Contains(u, "linkedin.com"):
		v = VariantEasyApply
	case strings.Contains(u, "indeed.com"):
		v = VariantIndeed
	case strings.Contains(u, "careers24.com"):
		v = VariantCareers24
	case strings.Contains(u, "pnet.co.za"):
		v = VariantPNet
	case strings.Contains(u, "careerjunction.co.za"):
		v = VariantCareerJunction
	default:
		v = detectByMarkers(ctx, session)
	}

	engine.IncrFormsDetected()
	slog.Debug("detect: form classified",
		slog.String("variant", string(v)), slog.String("url", rawURL))
	return v
}

// detectByMarkers probes for site-specific widgets embedded on third-party
// career pages.
func detectByMarkers(ctx context.Context, session browser.Session) Variant {
	if ok, err := session.Exists(ctx, easyApplyButton); err == nil && ok {
		return VariantEasyApply
	}
	if ok, err := session.Exists(ctx, indeedApplyButton); err == nil && ok {
		return VariantIndeed
	}
	return VariantGeneric
}
