package apply

import (
	"context"

	"github.com/cgartco6/costbyte-ai/internal/browser"
)

// genericFiller handles unknown career pages: find a form, fill whatever
// the semantic table recognises, upload documents, hit the first submit
// control.
type genericFiller struct{}

func (genericFiller) Fill(ctx context.Context, session browser.Session, user UserData) Outcome {
	formSel := ""
	if ok, err := session.Exists(ctx, "form"); err == nil && ok {
		formSel = "form"
	}

	filled, err := fillKnownFields(ctx, session, formSel, user)
	if err != nil {
		return Outcome{Err: err}
	}
	if filled == 0 {
		// Nothing fillable here; a skip, not a failure.
		return Outcome{}
	}

	if err := clickSubmit(ctx, session); err != nil {
		return Outcome{Err: err}
	}
	waitSettled(ctx, session)
	return judgeSubmit(ctx, session, policyFromConfig())
}
