// internal/pipeline/upload/handler.go
package upload

import (
	"context"
	"fmt"
	"net/http"

	"cv-screening/internal/common/errors"
	"cv-screening/internal/common/logger"
)

const (
	StageName = "validate-upload"
)

var allowedMimeTypes = map[string]string{
	"application/pdf": "pdf",
	"image/png":       "png",
	"image/jpeg":      "jpg",
}

type Handler struct {
	config *Config
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		logger: log.WithFields(map[string]interface{}{"stage": StageName}),
	}
}

// Execute validates an uploaded file against presence, MIME type and size
// rules. On success the submission is returned unchanged together with the
// sniffed MIME type.
func (h *Handler) Execute(_ context.Context, input *Input) (*Output, error) {
	sub := input.Submission

	if sub == nil || len(sub.Data) == 0 {
		return nil, errors.NewUploadValidationError("no file was uploaded")
	}

	// Trust the file content over the declared MIME type.
	sniffed := sniffMimeType(sub.Data)
	ext, ok := allowedMimeTypes[sniffed]
	if !ok {
		h.logger.Warn("upload rejected", map[string]interface{}{
			"filename": sub.Filename,
			"declared": sub.MimeType,
			"sniffed":  sniffed,
		})
		return nil, errors.NewUploadValidationError(
			"please upload a valid PDF, JPEG or PNG file")
	}

	if max := h.maxSizeFor(sub.Purpose); max > 0 && int64(len(sub.Data)) > max {
		return nil, errors.NewUploadValidationError(
			fmt.Sprintf("file exceeds the maximum allowed size of %d MiB", max>>20))
	}

	h.logger.Info("upload accepted", map[string]interface{}{
		"filename": sub.Filename,
		"mimeType": sniffed,
		"size":     len(sub.Data),
		"purpose":  sub.Purpose,
	})

	return &Output{
		Submission: sub,
		MimeType:   sniffed,
		Extension:  ext,
	}, nil
}

func (h *Handler) maxSizeFor(purpose Purpose) int64 {
	if purpose == PurposeJustificatif {
		return h.config.MaxJustificatifSizeBytes
	}
	return h.config.MaxCVSizeBytes
}

func sniffMimeType(data []byte) string {
	if len(data) > 512 {
		data = data[:512]
	}
	mime := http.DetectContentType(data)
	// DetectContentType reports "application/pdf" only via the %PDF magic,
	// otherwise falls back to text/plain or application/octet-stream.
	return mime
}
