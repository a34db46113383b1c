package apply

import (
	"context"
	"fmt"

	"github.com/cgartco6/costbyte-ai/internal/browser"
)

// Indeed's apply widget lives behind an "Apply now" button and renders a
// single-page form with a continue/submit chain.
const (
	indeedContinueBtn = `button.ia-continueButton, button[data-testid="continue-button"]`
	indeedFormRoot    = `div.ia-BasePage, form#ia-container, form`
	indeedMaxSteps    = 6
)

type indeedFiller struct{}

func (indeedFiller) Fill(ctx context.Context, session browser.Session, user UserData) Outcome {
	if ok, err := session.Exists(ctx, indeedApplyButton); err == nil && ok {
		if err := session.Click(ctx, indeedApplyButton); err != nil {
			return Outcome{Err: fmt.Errorf("open indeed apply: %w", err)}
		}
		waitSettled(ctx, session)
	}

	for step := 0; step < indeedMaxSteps; step++ {
		if _, err := fillKnownFields(ctx, session, indeedFormRoot, user); err != nil {
			return Outcome{Err: fmt.Errorf("step %d: %w", step+1, err)}
		}

		if ok, _ := session.Exists(ctx, indeedContinueBtn); ok {
			if err := session.Click(ctx, indeedContinueBtn); err != nil {
				return Outcome{Err: fmt.Errorf("continue: %w", err)}
			}
			waitSettled(ctx, session)
			continue
		}

		if err := clickSubmit(ctx, session); err != nil {
			return Outcome{Err: err}
		}
		waitSettled(ctx, session)
		return judgeSubmit(ctx, session, policyFromConfig())
	}
	return Outcome{Err: fmt.Errorf("apply flow exceeded %d steps", indeedMaxSteps)}
}
