package apply

import (
	"context"
	"fmt"

	"github.com/cgartco6/costbyte-ai/internal/browser"
)

// Careers24 shows a single apply form behind an "Apply Now" button; logged
// out users get the guest form with contact fields and a CV upload.
const (
	careers24ApplyBtn = `a.apply-now, button#btnApplyNow, a[href*="apply"]`
	careers24FormRoot = `form#applyForm, form.apply-form, form`
)

type careers24Filler struct{}

func (careers24Filler) Fill(ctx context.Context, session browser.Session, user UserData) Outcome {
	if ok, err := session.Exists(ctx, careers24ApplyBtn); err == nil && ok {
		if err := session.Click(ctx, careers24ApplyBtn); err != nil {
			return Outcome{Err: fmt.Errorf("open apply form: %w", err)}
		}
		waitSettled(ctx, session)
	}

	filled, err := fillKnownFields(ctx, session, careers24FormRoot, user)
	if err != nil {
		return Outcome{Err: err}
	}
	if filled == 0 {
		return Outcome{} // no guest apply form on this listing
	}

	if err := clickSubmit(ctx, session); err != nil {
		return Outcome{Err: err}
	}
	waitSettled(ctx, session)
	return judgeSubmit(ctx, session, policyFromConfig())
}
