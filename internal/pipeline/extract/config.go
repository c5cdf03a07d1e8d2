// internal/pipeline/extract/config.go
package extract

import "time"

type Config struct {
	// OCRBaseURL is the OCR.space parse endpoint.
	OCRBaseURL string
	OCRAPIKey  string
	// Language passed to the OCR engine, ISO 639-2 (e.g. "fre").
	Language string
	Timeout  time.Duration

	// Debug appends raw extracted text and errors to DebugLogPath.
	Debug        bool
	DebugLogPath string
}

func DefaultConfig() *Config {
	return &Config{
		OCRBaseURL: "https://api.ocr.space/parse",
		Language:   "fre",
		Timeout:    60 * time.Second,
	}
}
