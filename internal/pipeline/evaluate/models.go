// internal/pipeline/evaluate/models.go
package evaluate

// Input carries the extracted CV text into the evaluator.
type Input struct {
	Text      string `json:"text"`
	Reference string `json:"reference,omitempty"`
}

// CriterionScore is the model's verdict on a single rubric criterion.
// Score is the raw 0-10 mark before weighting.
type CriterionScore struct {
	Score       int    `json:"score"`
	Explanation string `json:"explanation"`
}

// EvaluationResult is the evaluator's final output. Success reports
// whether the model was reached and its response parsed; Score and
// Passed are only meaningful when Success is true.
type EvaluationResult struct {
	Success bool                      `json:"success"`
	Score   float64                   `json:"score"`
	Passed  bool                      `json:"passed"`
	Message string                    `json:"message"`
	Details map[string]CriterionScore `json:"details,omitempty"`
}

// geminiRequest mirrors the generateContent request body.
type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig geminiGenConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenConfig struct {
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"topP"`
	TopK            int     `json:"topK"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

// modelVerdict is the JSON document the model is instructed to return.
type modelVerdict struct {
	Criteria map[string]CriterionScore `json:"criteria"`
	Summary  string                    `json:"summary,omitempty"`
}
