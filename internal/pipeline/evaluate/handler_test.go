// internal/pipeline/evaluate/handler_test.go
package evaluate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cv-screening/internal/common/logger"
)

// fakeModelServer returns an httptest server that wraps the given reply
// text in a generateContent response envelope.
func fakeModelServer(t *testing.T, replyText string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NotEmpty(t, r.URL.Query().Get("key"))

		var req geminiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotEmpty(t, req.Contents)

		resp := map[string]interface{}{
			"candidates": []map[string]interface{}{
				{"content": map[string]interface{}{
					"parts": []map[string]string{{"text": replyText}},
				}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
}

func newTestHandler(t *testing.T, baseURL string) *Handler {
	t.Helper()
	h, err := NewHandler(&HandlerConfig{
		BaseURL:     baseURL,
		Model:       "gemini-2.0-flash",
		APIKey:      "test-key",
		Timeout:     5 * time.Second,
		Temperature: 0.2,
		TopP:        0.8,
		TopK:        40,
	}, DefaultRubric(), logger.NewTestLogger(t))
	require.NoError(t, err)
	return h
}

func verdictJSON(t *testing.T, marks map[string]int) string {
	t.Helper()
	criteria := make(map[string]CriterionScore, len(marks))
	for key, score := range marks {
		criteria[key] = CriterionScore{Score: score, Explanation: "ok"}
	}
	raw, err := json.Marshal(map[string]interface{}{
		"criteria": criteria,
		"summary":  "évaluation terminée",
	})
	require.NoError(t, err)
	return string(raw)
}

func allTens() map[string]int {
	marks := make(map[string]int)
	for _, c := range DefaultRubric() {
		marks[c.Key] = 10
	}
	return marks
}

func TestDefaultRubricIsValid(t *testing.T) {
	require.NoError(t, DefaultRubric().Validate())
	assert.Equal(t, 100, DefaultRubric().TotalWeight())
}

func TestExecute_WeightedScore(t *testing.T) {
	marks := allTens()
	marks["experience"] = 8
	marks["skills"] = 7
	// 20 + 16 + 10.5 + 10 + 5 + 5 + 5 + 10 + 5 + 5 = 91.5, rounded to 92.
	server := fakeModelServer(t, verdictJSON(t, marks))
	defer server.Close()

	result := newTestHandler(t, server.URL).Execute(context.Background(), &Input{Text: "cv text"})

	require.True(t, result.Success)
	assert.Equal(t, 92.0, result.Score)
	assert.True(t, result.Passed)
	assert.Len(t, result.Details, 10)
}

func TestExecute_MissingCriterionScoresZero(t *testing.T) {
	marks := allTens()
	delete(marks, "languages")
	server := fakeModelServer(t, verdictJSON(t, marks))
	defer server.Close()

	result := newTestHandler(t, server.URL).Execute(context.Background(), &Input{Text: "cv text"})

	require.True(t, result.Success)
	assert.Equal(t, 95.0, result.Score)
	assert.True(t, result.Passed)
}

func TestExecute_PassThresholdIsInclusive(t *testing.T) {
	marks := make(map[string]int)
	for _, c := range DefaultRubric() {
		marks[c.Key] = 5
	}
	server := fakeModelServer(t, verdictJSON(t, marks))
	defer server.Close()

	result := newTestHandler(t, server.URL).Execute(context.Background(), &Input{Text: "cv text"})

	require.True(t, result.Success)
	assert.Equal(t, 50.0, result.Score)
	assert.True(t, result.Passed)
}

func TestExecute_BelowThresholdFails(t *testing.T) {
	marks := make(map[string]int)
	for _, c := range DefaultRubric() {
		marks[c.Key] = 4
	}
	server := fakeModelServer(t, verdictJSON(t, marks))
	defer server.Close()

	result := newTestHandler(t, server.URL).Execute(context.Background(), &Input{Text: "cv text"})

	require.True(t, result.Success)
	assert.Equal(t, 40.0, result.Score)
	assert.False(t, result.Passed)
}

func TestExecute_MalformedReply(t *testing.T) {
	server := fakeModelServer(t, "Voici mon analyse du CV, il est plutôt bon.")
	defer server.Close()

	result := newTestHandler(t, server.URL).Execute(context.Background(), &Input{Text: "cv text"})

	assert.False(t, result.Success)
	assert.Equal(t, 0.0, result.Score)
	assert.False(t, result.Passed)
}

func TestExecute_ReplyWrappedInCodeFence(t *testing.T) {
	reply := "```json\n" + verdictJSON(t, allTens()) + "\n```"
	server := fakeModelServer(t, reply)
	defer server.Close()

	result := newTestHandler(t, server.URL).Execute(context.Background(), &Input{Text: "cv text"})

	require.True(t, result.Success)
	assert.Equal(t, 100.0, result.Score)
}

func TestExecute_ModelUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	result := newTestHandler(t, server.URL).Execute(context.Background(), &Input{Text: "cv text"})

	assert.False(t, result.Success)
	assert.Equal(t, 0.0, result.Score)
	assert.NotEmpty(t, result.Message)
}

func TestExecute_SchemaRejectsOutOfRangeScore(t *testing.T) {
	reply := `{"criteria": {"relevance": {"score": 42, "explanation": "trop"}}}`
	server := fakeModelServer(t, reply)
	defer server.Close()

	result := newTestHandler(t, server.URL).Execute(context.Background(), &Input{Text: "cv text"})

	assert.False(t, result.Success)
	assert.Equal(t, 0.0, result.Score)
}

func TestParseVerdict_Idempotent(t *testing.T) {
	doc := verdictJSON(t, allTens())
	first, err := parseVerdict(doc)
	require.NoError(t, err)

	again, err := parseVerdict(doc)
	require.NoError(t, err)
	assert.Equal(t, first, again)
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    string
		wantErr bool
	}{
		{
			name: "plain object",
			text: `{"a": 1}`,
			want: `{"a": 1}`,
		},
		{
			name: "surrounded by prose",
			text: `Voici le résultat : {"a": {"b": 2}} merci.`,
			want: `{"a": {"b": 2}}`,
		},
		{
			name: "brace inside string literal",
			text: `{"a": "une } accolade", "b": 1}`,
			want: `{"a": "une } accolade", "b": 1}`,
		},
		{
			name: "code fence",
			text: "```json\n{\"a\": 1}\n```",
			want: `{"a": 1}`,
		},
		{
			name:    "no object",
			text:    "rien du tout",
			wantErr: true,
		},
		{
			name:    "unbalanced",
			text:    `{"a": {"b": 2}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractJSON(tt.text)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
