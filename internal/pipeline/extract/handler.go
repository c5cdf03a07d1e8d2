// internal/pipeline/extract/handler.go
package extract

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cv-screening/internal/common/errors"
	"cv-screening/internal/common/logger"

	"github.com/unidoc/unipdf/v3/extractor"
	"github.com/unidoc/unipdf/v3/model"
)

const (
	StageName = "extract-text"
)

type Handler struct {
	config *Config
	ocr    OCRService
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		ocr:    newOCRSpaceClient(config),
		logger: log.WithFields(map[string]interface{}{"stage": StageName}),
	}
}

// NewHandlerWithOCR allows injecting an OCR backend, used by tests.
func NewHandlerWithOCR(config *Config, ocr OCRService, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		ocr:    ocr,
		logger: log.WithFields(map[string]interface{}{"stage": StageName}),
	}
}

// Execute converts a validated upload into plain text. PDFs are parsed
// directly; images go through the OCR backend.
func (h *Handler) Execute(ctx context.Context, input *Input) (*ExtractedDocument, error) {
	var (
		text   string
		format SourceFormat
		err    error
	)

	switch {
	case input.MimeType == "application/pdf":
		format = FormatPDF
		text, err = h.extractPDFText(input.Data)
	case strings.HasPrefix(input.MimeType, "image/"):
		format = FormatImage
		text, err = h.ocr.ParseImage(ctx, input.Data, input.Filename)
	default:
		return nil, errors.NewUnsupportedFormatError(input.MimeType)
	}

	if err != nil {
		h.debugLog(fmt.Sprintf("extraction error (%s): %v\n", input.Filename, err))
		h.logger.Error("text extraction failed", map[string]interface{}{
			"filename": input.Filename,
			"format":   format,
			"error":    err.Error(),
		})
		return &ExtractedDocument{
			SourceFormat: format,
			Success:      false,
			ErrorMessage: err.Error(),
		}, errors.NewExtractionFailedError(err)
	}

	text = strings.TrimSpace(text)
	h.debugLog(fmt.Sprintf("extracted content (%s):\n%s\n\n", input.Filename, text))

	if text == "" {
		err := fmt.Errorf("no text could be extracted from the document")
		return &ExtractedDocument{
			SourceFormat: format,
			Success:      false,
			ErrorMessage: err.Error(),
		}, errors.NewExtractionFailedError(err)
	}

	h.logger.Info("text extracted", map[string]interface{}{
		"filename": input.Filename,
		"format":   format,
		"chars":    len(text),
	})

	return &ExtractedDocument{
		RawText:      text,
		SourceFormat: format,
		Success:      true,
	}, nil
}

// extractPDFText parses the PDF structure and concatenates all page text.
func (h *Handler) extractPDFText(data []byte) (string, error) {
	pdfReader, err := model.NewPdfReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}

	if encrypted, err := pdfReader.IsEncrypted(); err != nil {
		return "", fmt.Errorf("check pdf encryption: %w", err)
	} else if encrypted {
		return "", fmt.Errorf("pdf is encrypted")
	}

	numPages, err := pdfReader.GetNumPages()
	if err != nil {
		return "", fmt.Errorf("get page count: %w", err)
	}
	if numPages == 0 {
		return "", fmt.Errorf("pdf has no pages")
	}

	var sb strings.Builder
	for i := 1; i <= numPages; i++ {
		page, err := pdfReader.GetPage(i)
		if err != nil {
			return "", fmt.Errorf("get page %d: %w", i, err)
		}

		ex, err := extractor.New(page)
		if err != nil {
			return "", fmt.Errorf("create extractor for page %d: %w", i, err)
		}

		pageText, err := ex.ExtractText()
		if err != nil {
			return "", fmt.Errorf("extract text from page %d: %w", i, err)
		}

		sb.WriteString(pageText)
		sb.WriteString("\n")
	}

	return sb.String(), nil
}

// debugLog appends diagnostic output to the configured log file. This is
// observability only; failures here are ignored.
func (h *Handler) debugLog(entry string) {
	if !h.config.Debug || h.config.DebugLogPath == "" {
		return
	}
	_ = os.MkdirAll(filepath.Dir(h.config.DebugLogPath), 0o755)
	f, err := os.OpenFile(h.config.DebugLogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()
	_, _ = f.WriteString(entry)
}
