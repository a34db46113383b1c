package apply

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cgartco6/costbyte-ai/internal/browser"
)

// LinkedIn Easy Apply is a modal wizard: an Easy Apply button opens a
// multi-step dialog that pages through contact info, CV upload and
// screening questions via Next/Review before a final Submit.
const (
	easyApplyModal     = "div.jobs-easy-apply-modal"
	easyApplyNextBtn   = `button[aria-label="Continue to next step"], button[data-easy-apply-next-button]`
	easyApplyReviewBtn = `button[aria-label="Review your application"]`
	easyApplySubmitBtn = `button[aria-label="Submit application"]`
	easyApplyMaxSteps  = 8 // wizard never exceeds this; guards against loops
)

type easyApplyFiller struct{}

func (easyApplyFiller) Fill(ctx context.Context, session browser.Session, user UserData) Outcome {
	if err := session.Click(ctx, easyApplyButton); err != nil {
		return Outcome{Err: fmt.Errorf("open easy apply: %w", err)}
	}
	waitSettled(ctx, session)

	if ok, err := session.Exists(ctx, easyApplyModal); err != nil || !ok {
		return Outcome{Err: fmt.Errorf("easy apply modal did not open")}
	}

	for step := 0; step < easyApplyMaxSteps; step++ {
		if _, err := fillKnownFields(ctx, session, easyApplyModal, user); err != nil {
			return Outcome{Err: fmt.Errorf("step %d: %w", step+1, err)}
		}

		if ok, _ := session.Exists(ctx, easyApplySubmitBtn); ok {
			if err := session.Click(ctx, easyApplySubmitBtn); err != nil {
				return Outcome{Err: fmt.Errorf("submit: %w", err)}
			}
			waitSettled(ctx, session)
			return judgeSubmit(ctx, session, policyFromConfig())
		}
		if ok, _ := session.Exists(ctx, easyApplyReviewBtn); ok {
			if err := session.Click(ctx, easyApplyReviewBtn); err != nil {
				return Outcome{Err: fmt.Errorf("review: %w", err)}
			}
			waitSettled(ctx, session)
			continue
		}
		if ok, _ := session.Exists(ctx, easyApplyNextBtn); ok {
			if err := session.Click(ctx, easyApplyNextBtn); err != nil {
				return Outcome{Err: fmt.Errorf("next: %w", err)}
			}
			waitSettled(ctx, session)
			continue
		}

		slog.Debug("apply: easy apply wizard stalled", slog.Int("step", step+1))
		return Outcome{Err: fmt.Errorf("wizard stalled at step %d", step+1)}
	}
	return Outcome{Err: fmt.Errorf("wizard exceeded %d steps", easyApplyMaxSteps)}
}
