// internal/pipeline/evaluate/config.go
package evaluate

import (
	"time"

	"cv-screening/internal/common/config"
)

// PassThreshold is the minimum weighted score (inclusive) for a CV to pass.
const PassThreshold = 50.0

// StageName identifies this stage in logs and metrics.
const StageName = "evaluate-rubric"

// HandlerConfig holds the evaluator's model parameters.
type HandlerConfig struct {
	BaseURL         string
	Model           string
	APIKey          string
	Timeout         time.Duration
	Temperature     float64
	TopP            float64
	TopK            int
	MaxOutputTokens int
}

// NewHandlerConfig builds the evaluator configuration from the
// application configuration.
func NewHandlerConfig(cfg *config.Config) *HandlerConfig {
	return &HandlerConfig{
		BaseURL:         cfg.APIs.Gemini.BaseURL,
		Model:           cfg.APIs.Gemini.Model,
		APIKey:          cfg.APIs.Gemini.APIKey,
		Timeout:         time.Duration(cfg.APIs.Gemini.Timeout) * time.Millisecond,
		Temperature:     cfg.APIs.Gemini.Temperature,
		TopP:            cfg.APIs.Gemini.TopP,
		TopK:            cfg.APIs.Gemini.TopK,
		MaxOutputTokens: 2048,
	}
}
