package apply

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cgartco6/costbyte-ai/internal/browser"
	"github.com/cgartco6/costbyte-ai/internal/engine"
)

// Outcome is what a Filler reports after driving one form.
type Outcome struct {
	Submitted bool   // the form was driven to its submit action
	Confirmed bool   // a confirmation signal was seen on the page
	Err       error
}

// Filler drives one application form variant end to end.
type Filler interface {
	Fill(ctx context.Context, session browser.Session, user UserData) Outcome
}

var fillers = map[Variant]Filler{
	VariantEasyApply:      easyApplyFiller{},
	VariantIndeed:         indeedFiller{},
	VariantCareers24:      careers24Filler{},
	VariantPNet:           pnetFiller{},
	VariantCareerJunction: genericFiller{}, // standard form markup, no quirks
	VariantGeneric:        genericFiller{},
}

// FillerFor returns the strategy for a variant, falling back to the generic
// strategy for anything unknown.
func FillerFor(v Variant) Filler {
	if f, ok := fillers[v]; ok {
		return f
	}
	return fillers[VariantGeneric]
}

// ConfirmPolicy decides how a submitted-but-unconfirmed form is judged.
type ConfirmPolicy int

const (
	// AssumeSuccess treats a clean submit with no error banner as success.
	// Job boards frequently navigate away or render the confirmation in a
	// frame we cannot see, so this is the default.
	AssumeSuccess ConfirmPolicy = iota
	// RequireConfirmation only counts attempts whose confirmation text was
	// actually observed.
	RequireConfirmation
)

// ParseConfirmPolicy maps the CONFIRM_POLICY env value to a policy.
func ParseConfirmPolicy(s string) ConfirmPolicy {
	if strings.EqualFold(strings.TrimSpace(s), "strict") {
		return RequireConfirmation
	}
	return AssumeSuccess
}

// policyFromConfig resolves the configured confirmation policy.
func policyFromConfig() ConfirmPolicy {
	return ParseConfirmPolicy(engine.Cfg.ConfirmPolicy)
}

// confirmationPhrases are the signals boards show after a successful submit.
var confirmationPhrases = []string{
	"application submitted",
	"application sent",
	"thank you for applying",
	"successfully applied",
	"your application has been received",
	"application complete",
}

// errorPhrases indicate the submit was rejected outright.
var errorPhrases = []string{
	"required field",
	"please correct",
	"something went wrong",
	"application failed",
}

// judgeSubmit inspects the page after a submit action and applies the
// confirmation policy.
func judgeSubmit(ctx context.Context, session browser.Session, policy ConfirmPolicy) Outcome {
	if failed, err := session.BodyContains(ctx, errorPhrases...); err == nil && failed {
		return Outcome{Submitted: true, Err: fmt.Errorf("form rejected the submission")}
	}

	confirmed, err := session.BodyContains(ctx, confirmationPhrases...)
	if err != nil {
		// Page likely navigated away mid-check; not a failure signal.
		slog.Debug("apply: confirmation check failed", slog.Any("error", err))
	}
	if confirmed {
		return Outcome{Submitted: true, Confirmed: true}
	}
	if policy == RequireConfirmation {
		return Outcome{Submitted: true, Err: fmt.Errorf("no confirmation found")}
	}
	return Outcome{Submitted: true}
}

// fillKnownFields walks the enumerated controls and fills every one the
// semantic table recognises. Unrecognised controls are left untouched.
// Returns how many controls were filled.
func fillKnownFields(ctx context.Context, session browser.Session, formSel string, user UserData) (int, error) {
	fields, err := session.Fields(ctx, formSel)
	if err != nil {
		return 0, fmt.Errorf("enumerate form: %w", err)
	}

	filled := 0
	for _, f := range fields {
		if f.ReadOnly {
			continue
		}
		if f.Type == "file" {
			if path := uploadPathFor(f, user); path != "" {
				if err := session.Upload(ctx, f.Selector, path); err != nil {
					slog.Warn("apply: upload failed",
						slog.String("selector", f.Selector), slog.Any("error", err))
					continue
				}
				filled++
			}
			continue
		}

		value, ok := ValueFor(f, user)
		if !ok {
			if value, ok = answerFieldAsQuestion(f, user); !ok {
				continue
			}
		}

		if f.Tag == "select" {
			if err := session.SelectOption(ctx, f.Selector, value); err != nil {
				slog.Debug("apply: select option failed",
					slog.String("selector", f.Selector), slog.Any("error", err))
				continue
			}
		} else {
			if err := session.Fill(ctx, f.Selector, value); err != nil {
				slog.Debug("apply: fill failed",
					slog.String("selector", f.Selector), slog.Any("error", err))
				continue
			}
		}
		filled++
	}
	return filled, nil
}

// answerFieldAsQuestion treats a control's label as a screening question.
// Covers the free-text "How many years..." inputs boards attach to forms.
func answerFieldAsQuestion(f browser.Field, user UserData) (string, bool) {
	q := f.Label
	if q == "" {
		q = f.Placeholder
	}
	if q == "" {
		return "", false
	}
	return AnswerQuestion(q, user)
}

// uploadPathFor picks the document for a file input: documents (pdf/doc
// accept) get the CV, image inputs get the photo, an unconstrained input
// gets the CV.
func uploadPathFor(f browser.Field, user UserData) string {
	accept := strings.ToLower(f.Accept)
	hay := strings.ToLower(f.Name + " " + f.ID + " " + f.Label)
	switch {
	case strings.Contains(accept, "image") || strings.Contains(hay, "photo") || strings.Contains(hay, "picture"):
		return user.PhotoPath
	case strings.Contains(accept, "pdf") || strings.Contains(accept, "doc") ||
		strings.Contains(hay, "cv") || strings.Contains(hay, "resume") || accept == "":
		return user.CVPath
	default:
		return ""
	}
}

// submitButtonChain is the fallback order for finding a submit control.
var submitButtonChain = []string{
	`button[type="submit"]`,
	`input[type="submit"]`,
}

// clickSubmit tries the submit-button fallback chain, first found wins.
func clickSubmit(ctx context.Context, session browser.Session) error {
	for _, sel := range submitButtonChain {
		ok, err := session.Exists(ctx, sel)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		return session.Click(ctx, sel)
	}
	return fmt.Errorf("no submit control found")
}

// waitSettled gives the page a bounded window to finish rendering after an
// action.
func waitSettled(ctx context.Context, session browser.Session) {
	waitCtx, stop := context.WithTimeout(ctx, engine.Cfg.SubmitWait)
	defer stop()
	if err := session.WaitReady(waitCtx); err != nil {
		slog.Debug("apply: settle wait ended early", slog.Any("error", err))
	}
}
