package profile

import (
	"context"
	"errors"

	"github.com/atinyakov/profilepanel/internal/client/account"
	"go.uber.org/zap"
)

// EditField sets the pending value of a draft field, replacing any earlier
// value.
func (p *Panel) EditField(name, value string) {
	if name == "" {
		return
	}
	p.mu.Lock()
	p.draft[name] = value
	p.mu.Unlock()
}

// Submit sends the draft to the account endpoint. It fails fast with
// ErrNoChanges for an empty draft and ErrUploadPending while an image is
// still uploading; neither makes a network call. The draft is kept after a
// successful update.
func (p *Panel) Submit(ctx context.Context) (Outcome, error) {
	p.mu.Lock()
	p.outcome = Outcome{}
	if len(p.draft) == 0 {
		p.outcome.Error = MsgNoChanges
		out := p.outcome
		p.mu.Unlock()
		return out, ErrNoChanges
	}
	if p.upload.InProgress {
		p.outcome.Error = MsgUploadPending
		out := p.outcome
		p.mu.Unlock()
		return out, ErrUploadPending
	}
	draft := p.draft.Clone()
	p.mu.Unlock()

	userID := p.session.CurrentUser().ID
	p.session.UpdateStart()

	user, err := p.account.UpdateUser(ctx, userID, draft)
	if err != nil {
		var (
			rerr *account.ResponseError
			serr error
		)
		if errors.As(err, &rerr) {
			serr = &ServerRejectedError{Message: rerr.Message}
		} else {
			serr = &TransportError{Err: err}
		}
		p.session.UpdateFailure(serr.Error())
		p.log.Warn("profile update failed", zap.String("user_id", userID), zap.Error(err))
		return p.setOutcome(Outcome{Error: serr.Error()}), serr
	}

	p.session.UpdateSuccess(user)
	p.log.Info("profile updated", zap.String("user_id", userID), zap.Int("fields", len(draft)))
	return p.setOutcome(Outcome{Success: MsgUpdated}), nil
}

func (p *Panel) setOutcome(out Outcome) Outcome {
	p.mu.Lock()
	p.outcome = out
	p.mu.Unlock()
	return out
}
