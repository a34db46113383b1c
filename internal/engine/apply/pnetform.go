package apply

import (
	"context"
	"fmt"

	"github.com/cgartco6/costbyte-ai/internal/browser"
)

// PNet routes applications through a dedicated apply page with a
// data-attributed form, same markup family as its listing pages.
const (
	pnetApplyBtn = `a[data-at="job-apply-button"], button[data-at="apply-button"]`
	pnetFormRoot = `form[data-at="application-form"], form`
)

type pnetFiller struct{}

func (pnetFiller) Fill(ctx context.Context, session browser.Session, user UserData) Outcome {
	if ok, err := session.Exists(ctx, pnetApplyBtn); err == nil && ok {
		if err := session.Click(ctx, pnetApplyBtn); err != nil {
			return Outcome{Err: fmt.Errorf("open apply page: %w", err)}
		}
		waitSettled(ctx, session)
	}

	filled, err := fillKnownFields(ctx, session, pnetFormRoot, user)
	if err != nil {
		return Outcome{Err: err}
	}
	if filled == 0 {
		return Outcome{} // listing routes applications off-platform
	}

	if err := clickSubmit(ctx, session); err != nil {
		return Outcome{Err: err}
	}
	waitSettled(ctx, session)
	return judgeSubmit(ctx, session, policyFromConfig())
}
