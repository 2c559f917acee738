package profile

import (
	"context"

	"github.com/atinyakov/profilepanel/internal/client/storage"
	"github.com/atinyakov/profilepanel/internal/models"
	"go.uber.org/zap"
)

func (p *Panel) runUpload(ctx context.Context, seq uint64, file models.ImageFile) {
	defer p.wg.Done()

	url, err := p.uploader.Upload(ctx, file, func(loaded, total int64) {
		p.reportProgress(seq, storage.Percent(loaded, total))
	})

	p.mu.Lock()
	if seq != p.attempt {
		p.mu.Unlock()
		p.log.Debug("stale upload result discarded",
			zap.Uint64("attempt", seq),
			zap.Error(err),
		)
		return
	}

	p.upload.InProgress = false
	switch {
	case err != nil:
		p.upload.Error = MsgUploadError
		p.mu.Unlock()
		p.log.Warn("upload error", zap.Uint64("attempt", seq), zap.Error(err))
		return
	case url == "":
		p.upload.Error = MsgUploadFailed
		p.mu.Unlock()
		p.log.Warn("upload failed", zap.Uint64("attempt", seq))
		return
	}

	if p.image != nil && p.image.PreviewURL != "" {
		p.previews.Revoke(p.image.PreviewURL)
		p.image.PreviewURL = ""
	}
	p.imageURL = url
	p.draft[models.FieldProfilePicture] = url
	full := 100
	p.upload.Progress = &full
	p.upload.Error = ""
	p.mu.Unlock()

	p.log.Info("image uploaded", zap.Uint64("attempt", seq), zap.String("url", url))
	p.notifyProgress(seq, full)
}

// reportProgress records percent for attempt seq if it is still current and
// does not go backwards.
func (p *Panel) reportProgress(seq uint64, percent int) {
	p.mu.Lock()
	if seq != p.attempt || !p.upload.InProgress {
		p.mu.Unlock()
		return
	}
	if p.upload.Progress != nil && percent <= *p.upload.Progress {
		p.mu.Unlock()
		return
	}
	p.upload.Progress = &percent
	p.mu.Unlock()

	p.notifyProgress(seq, percent)
}

// notifyProgress delivers a progress value to the observer. Deliveries are
// serialised, older attempts are dropped and values within an attempt never
// decrease.
func (p *Panel) notifyProgress(seq uint64, percent int) {
	if p.onProgress == nil {
		return
	}

	p.notifyMu.Lock()
	defer p.notifyMu.Unlock()

	if seq < p.notifiedSeq {
		return
	}
	if seq == p.notifiedSeq && percent <= p.notified {
		return
	}
	p.notifiedSeq, p.notified = seq, percent
	p.onProgress(seq, percent)
}
