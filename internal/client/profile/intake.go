package profile

import (
	"context"

	"github.com/atinyakov/profilepanel/internal/models"
	"go.uber.org/zap"
)

// MaxImageSize is the largest accepted image, in bytes.
const MaxImageSize int64 = 2 * 1024 * 1024

// SelectImage validates file and, when it is accepted, makes it the current
// selection and starts uploading it in the background. A nil file means the
// picker was cancelled and leaves the panel untouched.
//
// The upload keeps running after ctx is done; it is bound to the panel, not
// to the caller.
func (p *Panel) SelectImage(ctx context.Context, file *models.ImageFile) (*SelectedImage, error) {
	if file == nil {
		return nil, nil
	}

	p.mu.Lock()
	if file.Size > MaxImageSize {
		p.upload.Error = MsgImageTooLarge
		p.clearImageLocked()
		p.mu.Unlock()
		p.log.Info("image rejected",
			zap.String("name", file.Name),
			zap.Int64("size", file.Size),
		)
		return nil, ErrImageTooLarge
	}

	p.clearImageLocked()
	ref := p.previews.Create(*file)
	p.attempt++
	seq := p.attempt
	img := &SelectedImage{
		Name:        file.Name,
		Size:        file.Size,
		ContentType: file.ContentType,
		PreviewURL:  ref,
		Attempt:     seq,
	}
	p.image = img
	p.imageURL = ref
	zero := 0
	p.upload = UploadState{InProgress: true, Progress: &zero}
	p.wg.Add(1)
	selected := *img
	p.mu.Unlock()

	p.log.Debug("upload started",
		zap.Uint64("attempt", seq),
		zap.String("name", file.Name),
		zap.Int64("size", file.Size),
	)
	p.notifyProgress(seq, 0)

	go p.runUpload(context.WithoutCancel(ctx), seq, *file)

	return &selected, nil
}

// clearImageLocked drops the current selection and revokes its preview.
func (p *Panel) clearImageLocked() {
	if p.image != nil && p.image.PreviewURL != "" {
		p.previews.Revoke(p.image.PreviewURL)
	}
	p.image = nil
	p.imageURL = ""
}
