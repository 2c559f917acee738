package profile

import (
	"context"
	"sync"

	"github.com/atinyakov/profilepanel/internal/client/storage"
	"github.com/atinyakov/profilepanel/internal/models"
)

type fakeUploader struct {
	mu    sync.Mutex
	calls []string

	UploadFunc func(ctx context.Context, file models.ImageFile, progress storage.ProgressFunc) (string, error)
}

func (f *fakeUploader) Upload(ctx context.Context, file models.ImageFile, progress storage.ProgressFunc) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, file.Name)
	f.mu.Unlock()
	return f.UploadFunc(ctx, file, progress)
}

func (f *fakeUploader) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type fakeAccount struct {
	mu     sync.Mutex
	drafts []models.Draft
	ids    []string

	UpdateUserFunc func(ctx context.Context, userID string, draft models.Draft) (models.User, error)
}

func (f *fakeAccount) UpdateUser(ctx context.Context, userID string, draft models.Draft) (models.User, error) {
	f.mu.Lock()
	f.drafts = append(f.drafts, draft)
	f.ids = append(f.ids, userID)
	f.mu.Unlock()
	return f.UpdateUserFunc(ctx, userID, draft)
}

func (f *fakeAccount) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.drafts)
}

type fakeSession struct {
	mu       sync.Mutex
	user     models.User
	events   []string
	failures []string
}

func (f *fakeSession) CurrentUser() models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.user
}

func (f *fakeSession) UpdateStart() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, "start")
}

func (f *fakeSession) UpdateSuccess(user models.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.user = user
	f.events = append(f.events, "success")
}

func (f *fakeSession) UpdateFailure(message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures = append(f.failures, message)
	f.events = append(f.events, "failure")
}

func (f *fakeSession) Events() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.events...)
}

// instantUpload returns url right away after reporting full progress.
func instantUpload(url string) func(context.Context, models.ImageFile, storage.ProgressFunc) (string, error) {
	return func(_ context.Context, file models.ImageFile, progress storage.ProgressFunc) (string, error) {
		progress(file.Size, file.Size)
		return url, nil
	}
}

// gatedUpload blocks until gate is closed.
func gatedUpload(gate <-chan struct{}, url string) func(context.Context, models.ImageFile, storage.ProgressFunc) (string, error) {
	return func(context.Context, models.ImageFile, storage.ProgressFunc) (string, error) {
		<-gate
		return url, nil
	}
}
