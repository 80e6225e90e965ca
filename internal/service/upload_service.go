package service

import (
	"context"
	"fmt"

	"pdfchat-go/internal/model"
	"pdfchat-go/pkg/log"
	"pdfchat-go/pkg/metrics"
)

const uploadingMessage = "Uploading and indexing your PDF…"

// Upload 按 idle -> uploading -> ready|error 推进状态。
func (o *orchestrator) Upload(ctx context.Context) error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return ErrClosed
	}
	if o.file == nil {
		o.mu.Unlock()
		return ErrNoFile
	}
	if o.status == model.UploadUploading {
		o.mu.Unlock()
		return ErrUploadInProgress
	}
	file := o.file
	gen := o.generation
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	o.uploadCancel = cancel
	o.status = model.UploadUploading
	o.statusMessage = uploadingMessage
	o.notifyLocked()
	o.mu.Unlock()

	result, err := o.client.Upload(ctx, file)

	o.mu.Lock()
	defer o.mu.Unlock()
	if gen != o.generation {
		log.Infow("[upload] discarding result for a replaced file", "name", file.Name)
		metrics.Uploads.WithLabelValues("stale").Inc()
		return ErrStale
	}
	o.uploadCancel = nil

	if err != nil {
		log.Error("[upload] error", err)
		metrics.Uploads.WithLabelValues("error").Inc()
		o.status = model.UploadError
		o.statusMessage = err.Error()
		o.notifyLocked()
		return err
	}

	metrics.Uploads.WithLabelValues("ready").Inc()
	o.documentID = result.DocumentID
	o.status = model.UploadReady
	o.statusMessage = fmt.Sprintf("%s is ready. Ask questions to get grounded answers.", result.Filename)
	o.appendLocked(model.RoleSystem, fmt.Sprintf("Indexed %s. Stream answers from your backend here.", result.Filename))
	o.notifyLocked()
	return nil
}
