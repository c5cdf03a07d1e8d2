// internal/server/server_test.go
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cv-screening/internal/common/config"
	"cv-screening/internal/common/errors"
	"cv-screening/internal/common/logger"
	"cv-screening/internal/pipeline"
	"cv-screening/internal/pipeline/candidacy"
	"cv-screening/internal/pipeline/evaluate"
	"cv-screening/internal/pipeline/notify"
)

type fakeRunner struct {
	candidacyResult *pipeline.CandidacyResult
	absenceResult   *pipeline.AbsenceResult
	err             error

	lastCandidacy *pipeline.CandidacyRequest
}

func (f *fakeRunner) RunCandidacy(_ context.Context, req *pipeline.CandidacyRequest) (*pipeline.CandidacyResult, error) {
	f.lastCandidacy = req
	return f.candidacyResult, f.err
}

func (f *fakeRunner) RunAbsence(_ context.Context, _ *pipeline.AbsenceRequest) (*pipeline.AbsenceResult, error) {
	return f.absenceResult, f.err
}

type fakeResults struct {
	result *evaluate.EvaluationResult
	err    error
}

func (f *fakeResults) Get(_ context.Context, _ string) (*evaluate.EvaluationResult, error) {
	return f.result, f.err
}

func newTestServer(t *testing.T, runner PipelineRunner, results ResultGetter) *Server {
	t.Helper()
	cfg := &config.Config{}
	cfg.App.Name = "cv-screening"
	cfg.App.Version = "test"
	return New(cfg, runner, results, logger.NewTestLogger(t))
}

func multipartBody(t *testing.T, fileField, filename string, fileData []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	part, err := w.CreateFormFile(fileField, filename)
	require.NoError(t, err)
	_, err = part.Write(fileData)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestHandleCandidacy_Success(t *testing.T) {
	runner := &fakeRunner{
		candidacyResult: &pipeline.CandidacyResult{
			SubmissionID: "sub-1",
			Reference:    "3f2a9c1d4e7b0",
			Status:       candidacy.StatusEnCours,
			Evaluation:   &evaluate.EvaluationResult{Success: true, Score: 92, Passed: true},
			Notifications: &notify.Output{
				EmailSent: true,
				SmsSent:   true,
			},
		},
	}
	srv := newTestServer(t, runner, &fakeResults{})

	body, contentType := multipartBody(t, "cv", "cv.pdf", []byte("%PDF-1.4"), map[string]string{
		"name":      "Amina Ben Salah",
		"email":     "amina@example.com",
		"phone":     "20123456",
		"job_title": "Développeur Go",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/candidatures", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "3f2a9c1d4e7b0", resp["reference"])
	assert.Equal(t, "en_cours", resp["status"])
	assert.Equal(t, 92.0, resp["score"])

	require.NotNil(t, runner.lastCandidacy)
	assert.Equal(t, "Amina Ben Salah", runner.lastCandidacy.CandidateName)
	assert.Equal(t, "cv.pdf", runner.lastCandidacy.File.Filename)
}

func TestHandleCandidacy_MissingFields(t *testing.T) {
	srv := newTestServer(t, &fakeRunner{}, &fakeResults{})

	body, contentType := multipartBody(t, "cv", "cv.pdf", []byte("%PDF-1.4"), map[string]string{})
	req := httptest.NewRequest(http.MethodPost, "/api/candidatures", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleCandidacy_UserCorrectableError(t *testing.T) {
	runner := &fakeRunner{err: errors.NewUploadValidationError("please upload a valid PDF")}
	srv := newTestServer(t, runner, &fakeResults{})

	body, contentType := multipartBody(t, "cv", "cv.exe", []byte("MZ"), map[string]string{
		"name":  "Sami",
		"email": "sami@example.com",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/candidatures", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "UPLOAD_VALIDATION_FAILED", resp["code"])
}

func TestHandleAbsence_GateRejection(t *testing.T) {
	runner := &fakeRunner{err: errors.NewKeywordGateRejectedError([]string{"certificat", "attestation", "medical"})}
	srv := newTestServer(t, runner, &fakeResults{})

	body, contentType := multipartBody(t, "justificatif", "note.pdf", []byte("%PDF-1.4"), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/absences", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "KEYWORD_GATE_REJECTED", resp["code"])
}

func TestHandleAbsence_Accepted(t *testing.T) {
	runner := &fakeRunner{
		absenceResult: &pipeline.AbsenceResult{
			SubmissionID: "sub-2",
			Accepted:     true,
			Filename:     "sub-2.pdf",
		},
	}
	srv := newTestServer(t, runner, &fakeResults{})

	body, contentType := multipartBody(t, "justificatif", "certificat.pdf", []byte("%PDF-1.4"), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/absences", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["accepted"])
}

func TestHandleResult_FoundAndMissing(t *testing.T) {
	srv := newTestServer(t, &fakeRunner{}, &fakeResults{
		result: &evaluate.EvaluationResult{Success: true, Score: 75, Passed: true},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/results/sub-1", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	srv = newTestServer(t, &fakeRunner{}, &fakeResults{})
	req = httptest.NewRequest(http.MethodGet, "/api/results/unknown", nil)
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "/", resp["redirect"])
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t, &fakeRunner{}, &fakeResults{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "cv-screening")
}
