// internal/pipeline/extract/ocrspace.go
package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// OCRService abstracts the OCR backend for mocking.
type OCRService interface {
	ParseImage(ctx context.Context, data []byte, filename string) (string, error)
}

// ocrSpaceClient calls the OCR.space parse API.
type ocrSpaceClient struct {
	baseURL  string
	apiKey   string
	language string
	client   *http.Client
}

func newOCRSpaceClient(cfg *Config) *ocrSpaceClient {
	return &ocrSpaceClient{
		baseURL:  strings.TrimRight(cfg.OCRBaseURL, "/"),
		apiKey:   cfg.OCRAPIKey,
		language: cfg.Language,
		client:   &http.Client{Timeout: cfg.Timeout},
	}
}

type ocrSpaceResponse struct {
	IsErroredOnProcessing bool            `json:"IsErroredOnProcessing"`
	ErrorMessage          json.RawMessage `json:"ErrorMessage"`
	ParsedResults         []struct {
		ParsedText string `json:"ParsedText"`
	} `json:"ParsedResults"`
}

// ParseImage runs the document through OCR.space configured for a single
// uniform block of text and returns the parsed text.
func (c *ocrSpaceClient) ParseImage(ctx context.Context, data []byte, filename string) (string, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	fields := map[string]string{
		"apikey":            c.apiKey,
		"language":          c.language,
		"OCREngine":         "2",
		"detectOrientation": "true",
		"isTable":           "true",
		"scale":             "true",
	}
	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return "", fmt.Errorf("write field %s: %w", name, err)
		}
	}

	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("create file part: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("write file part: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/image", &body)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	started := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ocr request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read ocr response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ocr status %d after %s: %s",
			resp.StatusCode, time.Since(started).Round(time.Millisecond), truncate(raw, 200))
	}

	var parsed ocrSpaceResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decode ocr response: %w", err)
	}

	if parsed.IsErroredOnProcessing {
		return "", fmt.Errorf("ocr processing error: %s", ocrErrorMessage(parsed.ErrorMessage))
	}

	if len(parsed.ParsedResults) == 0 {
		return "", fmt.Errorf("no text result in ocr response")
	}

	return parsed.ParsedResults[0].ParsedText, nil
}

// ErrorMessage comes back either as a string or as an array of strings.
func ocrErrorMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "unknown ocr error"
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return single
	}
	var many []string
	if err := json.Unmarshal(raw, &many); err == nil {
		return strings.Join(many, ", ")
	}
	return string(raw)
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
