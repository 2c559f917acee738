// Package profile implements the profile editing panel: image selection and
// validation, the asynchronous avatar upload, and the draft of account
// changes submitted to the backend.
package profile

import (
	"context"
	"sync"

	"github.com/atinyakov/profilepanel/internal/client/storage"
	"github.com/atinyakov/profilepanel/internal/models"
	"go.uber.org/zap"
)

// Uploader transfers an image to remote storage and returns its public URL.
// A nil error with an empty URL means the storage accepted the call but
// produced no usable result.
type Uploader interface {
	Upload(ctx context.Context, file models.ImageFile, progress storage.ProgressFunc) (string, error)
}

// AccountUpdater submits a draft to the account-update endpoint.
type AccountUpdater interface {
	UpdateUser(ctx context.Context, userID string, draft models.Draft) (models.User, error)
}

// SessionStore is the shared record of the signed-in user.
type SessionStore interface {
	CurrentUser() models.User
	UpdateStart()
	UpdateSuccess(user models.User)
	UpdateFailure(message string)
}

// Previewer issues and revokes local preview references.
type Previewer interface {
	Create(file models.ImageFile) string
	Revoke(ref string)
}

// ProgressObserver receives upload progress of the current attempt. Values
// never decrease within an attempt.
type ProgressObserver func(attempt uint64, percent int)

// Deps are the collaborators of a Panel. Log and OnProgress are optional.
type Deps struct {
	Session    SessionStore
	Uploader   Uploader
	Account    AccountUpdater
	Previews   Previewer
	Log        *zap.Logger
	OnProgress ProgressObserver
}

// SelectedImage describes the accepted image of the latest selection.
type SelectedImage struct {
	Name        string
	Size        int64
	ContentType string
	PreviewURL  string
	// Attempt is the sequence number of the upload this selection started.
	Attempt uint64
}

// UploadState tracks the current upload attempt.
type UploadState struct {
	InProgress bool
	// Progress is nil until the first attempt starts.
	Progress *int
	Error    string
}

// Outcome is the result of the latest submission. At most one field is set.
type Outcome struct {
	Success string
	Error   string
}

// Panel is the state of one profile editing session.
type Panel struct {
	session    SessionStore
	uploader   Uploader
	account    AccountUpdater
	previews   Previewer
	log        *zap.Logger
	onProgress ProgressObserver

	mu       sync.Mutex
	image    *SelectedImage
	imageURL string
	upload   UploadState
	draft    models.Draft
	outcome  Outcome
	attempt  uint64

	notifyMu    sync.Mutex
	notifiedSeq uint64
	notified    int

	wg sync.WaitGroup
}

// New creates a Panel with an empty draft.
func New(deps Deps) *Panel {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Panel{
		session:    deps.Session,
		uploader:   deps.Uploader,
		account:    deps.Account,
		previews:   deps.Previews,
		log:        log,
		onProgress: deps.OnProgress,
		draft:      make(models.Draft),
	}
}

// Image returns the current selection, or nil.
func (p *Panel) Image() *SelectedImage {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.image == nil {
		return nil
	}
	img := *p.image
	return &img
}

// ImageURL returns the image to display: the local preview or uploaded URL
// when present, otherwise the current user's profile picture.
func (p *Panel) ImageURL() string {
	p.mu.Lock()
	u := p.imageURL
	p.mu.Unlock()
	if u != "" {
		return u
	}
	return p.session.CurrentUser().ProfilePicture
}

// Upload returns a snapshot of the upload state.
func (p *Panel) Upload() UploadState {
	p.mu.Lock()
	defer p.mu.Unlock()
	st := p.upload
	if st.Progress != nil {
		v := *st.Progress
		st.Progress = &v
	}
	return st
}

// Draft returns a copy of the pending changes.
func (p *Panel) Draft() models.Draft {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.draft.Clone()
}

// Outcome returns the result of the latest submission.
func (p *Panel) Outcome() Outcome {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.outcome
}

// Wait blocks until every started upload has finished.
func (p *Panel) Wait() {
	p.wg.Wait()
}
