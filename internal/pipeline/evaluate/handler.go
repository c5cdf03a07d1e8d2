// internal/pipeline/evaluate/handler.go
package evaluate

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strings"

	"cv-screening/internal/common/errors"
	commonhttp "cv-screening/internal/common/http"
	"cv-screening/internal/common/logger"
	"cv-screening/internal/common/metrics"
)

// Handler scores CV text against the rubric using the Gemini API.
type Handler struct {
	config *HandlerConfig
	rubric Rubric
	client *commonhttp.Client
	logger logger.Logger
}

func NewHandler(cfg *HandlerConfig, rubric Rubric, log logger.Logger) (*Handler, error) {
	if err := rubric.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rubric: %w", err)
	}
	return &Handler{
		config: cfg,
		rubric: rubric,
		client: commonhttp.NewClient(cfg.Timeout),
		logger: log,
	}, nil
}

// Execute runs a single evaluation. It never returns an error to the
// caller: any model or parse failure yields a result with Success false
// and Score zero so the decision engine can route to manual review.
func (h *Handler) Execute(ctx context.Context, input *Input) *EvaluationResult {
	log := h.logger.WithFields(map[string]interface{}{
		"stage":     StageName,
		"reference": input.Reference,
	})

	verdict, err := h.askModel(ctx, input.Text)
	if err != nil {
		std := errors.AsStandard(err)
		metrics.StageFailures.WithLabelValues(StageName, string(std.Code)).Inc()
		log.WithError(err).Error("evaluation failed, routing to manual review", nil)
		return &EvaluationResult{
			Success: false,
			Score:   0,
			Passed:  false,
			Message: std.Message,
		}
	}

	score := h.computeScore(verdict.Criteria)
	result := &EvaluationResult{
		Success: true,
		Score:   score,
		Passed:  score >= PassThreshold,
		Message: verdict.Summary,
		Details: verdict.Criteria,
	}

	log.Info("evaluation completed", map[string]interface{}{
		"score":  result.Score,
		"passed": result.Passed,
	})
	return result
}

// askModel calls the generateContent endpoint and parses the verdict
// out of the model's reply.
func (h *Handler) askModel(ctx context.Context, cvText string) (*modelVerdict, error) {
	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		strings.TrimRight(h.config.BaseURL, "/"), h.config.Model, h.config.APIKey)

	reqBody := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: buildPrompt(h.rubric, cvText)}}},
		},
		GenerationConfig: geminiGenConfig{
			Temperature:     h.config.Temperature,
			TopP:            h.config.TopP,
			TopK:            h.config.TopK,
			MaxOutputTokens: h.config.MaxOutputTokens,
		},
	}

	status, raw, err := h.client.PostJSON(ctx, url, reqBody)
	if err != nil {
		return nil, errors.NewEvaluatorUnavailableError(fmt.Errorf("model request failed: %w", err))
	}
	if status != http.StatusOK {
		return nil, errors.NewEvaluatorUnavailableError(fmt.Errorf("model returned HTTP %d", status))
	}

	var resp geminiResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, errors.NewResponseParseError(fmt.Sprintf("decode model envelope: %v", err))
	}
	if resp.Error != nil {
		return nil, errors.NewEvaluatorUnavailableError(fmt.Errorf("model error %d: %s", resp.Error.Code, resp.Error.Message))
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, errors.NewResponseParseError("model returned no candidates")
	}

	return parseVerdict(resp.Candidates[0].Content.Parts[0].Text)
}

// parseVerdict extracts and validates the JSON verdict embedded in the
// model's free-form reply.
func parseVerdict(reply string) (*modelVerdict, error) {
	doc, err := extractJSON(reply)
	if err != nil {
		return nil, errors.NewResponseParseError(err.Error())
	}
	if err := validateVerdict(doc); err != nil {
		return nil, errors.NewResponseParseError(err.Error())
	}

	var verdict modelVerdict
	if err := json.Unmarshal([]byte(doc), &verdict); err != nil {
		return nil, errors.NewResponseParseError(fmt.Sprintf("decode verdict: %v", err))
	}
	if len(verdict.Criteria) == 0 {
		return nil, errors.NewResponseParseError("verdict contains no criteria")
	}
	return &verdict, nil
}

// extractJSON returns the first balanced top-level JSON object found in
// the text. Code fences around the object are ignored, and braces inside
// string literals do not affect the balance.
func extractJSON(text string) (string, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", fmt.Errorf("no JSON object in model reply")
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], nil
			}
		}
	}
	return "", fmt.Errorf("unbalanced JSON object in model reply")
}

// computeScore applies the rubric weights to the per-criterion marks.
// A criterion missing from the verdict contributes zero.
func (h *Handler) computeScore(details map[string]CriterionScore) float64 {
	totalWeight := h.rubric.TotalWeight()
	if totalWeight == 0 {
		return 0
	}

	weighted := 0.0
	for _, c := range h.rubric.Criteria() {
		mark, ok := details[c.Key]
		if !ok {
			continue
		}
		raw := mark.Score
		if raw < 0 {
			raw = 0
		} else if raw > 10 {
			raw = 10
		}
		weighted += float64(raw) / 10.0 * float64(c.Weight)
	}
	return math.Round(100 * weighted / float64(totalWeight))
}
