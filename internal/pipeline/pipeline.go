// internal/pipeline/pipeline.go

// Package pipeline chains the screening stages into the two intake
// flows: candidacy (CV evaluation) and absence (justificatif gate).
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"cv-screening/internal/common/errors"
	"cv-screening/internal/common/logger"
	"cv-screening/internal/common/metrics"
	"cv-screening/internal/common/observability"
	"cv-screening/internal/pipeline/candidacy"
	"cv-screening/internal/pipeline/decide"
	"cv-screening/internal/pipeline/evaluate"
	"cv-screening/internal/pipeline/extract"
	"cv-screening/internal/pipeline/keywordgate"
	"cv-screening/internal/pipeline/notify"
	"cv-screening/internal/pipeline/upload"
)

// Evaluator scores extracted CV text.
type Evaluator interface {
	Execute(ctx context.Context, input *evaluate.Input) *evaluate.EvaluationResult
}

// Notifier dispatches candidate notifications.
type Notifier interface {
	Execute(ctx context.Context, input *notify.Input) *notify.Output
}

// CandidacyStore persists candidates, candidatures and justificatifs.
type CandidacyStore interface {
	FindCandidateByEmailOrPhone(ctx context.Context, email, phone string) (*candidacy.Candidate, error)
	CreateCandidate(ctx context.Context, c *candidacy.Candidate) error
	CreateCandidature(ctx context.Context, c *candidacy.Candidature) error
	SaveAbsenceJustificatif(ctx context.Context, j *candidacy.AbsenceJustificatif) error
}

// EvaluationArchive indexes finished evaluations for recruiter search.
type EvaluationArchive interface {
	Index(ctx context.Context, c *candidacy.Candidature) error
}

// ResultCache stores evaluation results for the result page.
type ResultCache interface {
	Put(ctx context.Context, submissionID string, result *evaluate.EvaluationResult) error
}

// Pipeline wires the stages together. Archive and Cache may be nil;
// the corresponding steps are then skipped.
type Pipeline struct {
	Uploader  *upload.Handler
	Extractor *extract.Handler
	Gate      *keywordgate.Gate
	Evaluator Evaluator
	Notifier  Notifier
	Store     CandidacyStore
	Archive   EvaluationArchive
	Cache     ResultCache

	UploadDir string

	Obs    *observability.Observability
	Logger logger.Logger
}

// CandidacyRequest is one CV submission with the applicant's details.
type CandidacyRequest struct {
	SubmissionID  string
	CandidateName string
	Email         string
	Phone         string
	JobTitle      string
	File          *upload.Submission
}

// CandidacyResult is the synchronous outcome returned to the uploader.
type CandidacyResult struct {
	SubmissionID  string
	Reference     string
	Status        candidacy.Status
	Evaluation    *evaluate.EvaluationResult
	Notifications *notify.Output
}

// AbsenceRequest is one absence justificatif submission.
type AbsenceRequest struct {
	SubmissionID string
	File         *upload.Submission
}

// AbsenceResult reports whether the justificatif was accepted.
type AbsenceResult struct {
	SubmissionID string
	Accepted     bool
	Filename     string
}

// RunCandidacy executes the full candidacy flow. Validation and
// extraction failures abort the pipeline with no status written;
// evaluation failures never abort, they route to manual review.
func (p *Pipeline) RunCandidacy(ctx context.Context, req *CandidacyRequest) (*CandidacyResult, error) {
	if req.SubmissionID == "" {
		req.SubmissionID = uuid.NewString()
	}
	log := p.Logger.WithFields(map[string]interface{}{
		"flow":          "candidacy",
		"submission_id": req.SubmissionID,
	})

	validated, err := p.validate(ctx, req.File, upload.PurposeCV)
	if err != nil {
		metrics.SubmissionsTotal.WithLabelValues("candidacy", "rejected_upload").Inc()
		return nil, err
	}

	cvPath, err := p.persistFile(req.SubmissionID, validated)
	if err != nil {
		log.WithError(err).Warn("could not persist uploaded file", nil)
		cvPath = validated.Submission.Filename
	}

	doc, err := p.extract(ctx, validated)
	if err != nil {
		metrics.SubmissionsTotal.WithLabelValues("candidacy", "extraction_failed").Inc()
		return nil, err
	}

	evaluation := p.evaluate(ctx, req, doc)
	decision := decide.Decide(evaluation)

	candidature, err := p.persistCandidature(ctx, req, cvPath, evaluation, decision)
	if err != nil {
		metrics.SubmissionsTotal.WithLabelValues("candidacy", "persist_failed").Inc()
		return nil, err
	}

	notifications := p.Notifier.Execute(ctx, &notify.Input{
		Variant: decision.Variant,
		Recipient: notify.Recipient{
			Name:  req.CandidateName,
			Email: req.Email,
			Phone: req.Phone,
		},
		JobTitle:  req.JobTitle,
		Reference: candidature.Reference,
	})

	if p.Archive != nil {
		if err := p.Archive.Index(ctx, candidature); err != nil {
			log.WithError(err).Warn("evaluation archiving failed", nil)
		}
	}
	if p.Cache != nil {
		if err := p.Cache.Put(ctx, req.SubmissionID, evaluation); err != nil {
			log.WithError(err).Warn("result caching failed", nil)
		}
	}

	metrics.SubmissionsTotal.WithLabelValues("candidacy", string(decision.Status)).Inc()
	log.Info("candidacy processed", map[string]interface{}{
		"reference": candidature.Reference,
		"status":    string(decision.Status),
		"score":     evaluation.Score,
	})

	return &CandidacyResult{
		SubmissionID:  req.SubmissionID,
		Reference:     candidature.Reference,
		Status:        decision.Status,
		Evaluation:    evaluation,
		Notifications: notifications,
	}, nil
}

// RunAbsence executes the absence flow: validate, extract, keyword
// gate, persist the justificatif filename on acceptance.
func (p *Pipeline) RunAbsence(ctx context.Context, req *AbsenceRequest) (*AbsenceResult, error) {
	if req.SubmissionID == "" {
		req.SubmissionID = uuid.NewString()
	}
	log := p.Logger.WithFields(map[string]interface{}{
		"flow":          "absence",
		"submission_id": req.SubmissionID,
	})

	validated, err := p.validate(ctx, req.File, upload.PurposeJustificatif)
	if err != nil {
		metrics.SubmissionsTotal.WithLabelValues("absence", "rejected_upload").Inc()
		return nil, err
	}

	filename, err := p.persistFile(req.SubmissionID, validated)
	if err != nil {
		log.WithError(err).Warn("could not persist uploaded file", nil)
		filename = validated.Submission.Filename
	}

	doc, err := p.extract(ctx, validated)
	if err != nil {
		metrics.SubmissionsTotal.WithLabelValues("absence", "extraction_failed").Inc()
		return nil, err
	}

	start := time.Now()
	matched := p.Gate.Matches(doc.RawText)
	p.recordStage(ctx, keywordgate.StageName, matched, start)
	if !matched {
		metrics.SubmissionsTotal.WithLabelValues("absence", "gate_rejected").Inc()
		return nil, errors.NewKeywordGateRejectedError(p.Gate.AcceptedTerms())
	}

	if err := p.Store.SaveAbsenceJustificatif(ctx, &candidacy.AbsenceJustificatif{
		Filename: filename,
	}); err != nil {
		metrics.SubmissionsTotal.WithLabelValues("absence", "persist_failed").Inc()
		return nil, err
	}

	metrics.SubmissionsTotal.WithLabelValues("absence", "accepted").Inc()
	log.Info("justificatif accepted", map[string]interface{}{"filename": filename})

	return &AbsenceResult{
		SubmissionID: req.SubmissionID,
		Accepted:     true,
		Filename:     filename,
	}, nil
}

func (p *Pipeline) validate(ctx context.Context, file *upload.Submission, purpose upload.Purpose) (*upload.Output, error) {
	if file != nil {
		file.Purpose = purpose
	}
	start := time.Now()
	out, err := p.Uploader.Execute(ctx, &upload.Input{Submission: file})
	p.recordStage(ctx, upload.StageName, err == nil, start)
	if err != nil {
		metrics.StageFailures.WithLabelValues(upload.StageName, string(errors.CodeOf(err))).Inc()
	}
	return out, err
}

func (p *Pipeline) extract(ctx context.Context, validated *upload.Output) (*extract.ExtractedDocument, error) {
	start := time.Now()
	doc, err := p.Extractor.Execute(ctx, &extract.Input{
		Data:     validated.Submission.Data,
		MimeType: validated.MimeType,
		Filename: validated.Submission.Filename,
	})
	p.recordStage(ctx, extract.StageName, err == nil, start)
	if err != nil {
		metrics.StageFailures.WithLabelValues(extract.StageName, string(errors.CodeOf(err))).Inc()
	}
	return doc, err
}

func (p *Pipeline) evaluate(ctx context.Context, req *CandidacyRequest, doc *extract.ExtractedDocument) *evaluate.EvaluationResult {
	start := time.Now()
	result := p.Evaluator.Execute(ctx, &evaluate.Input{
		Text:      doc.RawText,
		Reference: req.SubmissionID,
	})
	metrics.EvaluatorDuration.Observe(time.Since(start).Seconds())
	p.recordStage(ctx, evaluate.StageName, result.Success, start)
	return result
}

func (p *Pipeline) persistCandidature(ctx context.Context, req *CandidacyRequest, cvPath string,
	evaluation *evaluate.EvaluationResult, decision decide.Decision) (*candidacy.Candidature, error) {

	candidate, err := p.Store.FindCandidateByEmailOrPhone(ctx, req.Email, req.Phone)
	if err != nil {
		return nil, err
	}
	if candidate == nil {
		candidate = &candidacy.Candidate{
			Name:  req.CandidateName,
			Email: req.Email,
			Phone: req.Phone,
		}
		if err := p.Store.CreateCandidate(ctx, candidate); err != nil {
			return nil, err
		}
	}

	candidature := &candidacy.Candidature{
		CandidateID: candidate.ID,
		JobTitle:    req.JobTitle,
		CVPath:      cvPath,
		Score:       evaluation.Score,
		Passed:      evaluation.Passed,
		Status:      decision.Status,
		Message:     evaluation.Message,
	}
	if err := p.Store.CreateCandidature(ctx, candidature); err != nil {
		return nil, err
	}
	return candidature, nil
}

// persistFile writes the validated upload under a collision-free name.
func (p *Pipeline) persistFile(submissionID string, validated *upload.Output) (string, error) {
	if p.UploadDir == "" {
		return validated.Submission.Filename, nil
	}
	if err := os.MkdirAll(p.UploadDir, 0o755); err != nil {
		return "", fmt.Errorf("create upload directory: %w", err)
	}
	name := fmt.Sprintf("%s.%s", submissionID, validated.Extension)
	path := filepath.Join(p.UploadDir, name)
	if err := os.WriteFile(path, validated.Submission.Data, 0o644); err != nil {
		return "", fmt.Errorf("write uploaded file: %w", err)
	}
	return name, nil
}

func (p *Pipeline) recordStage(ctx context.Context, stage string, ok bool, start time.Time) {
	if p.Obs == nil {
		return
	}
	status := "success"
	if !ok {
		status = "failure"
	}
	p.Obs.RecordStage(ctx, stage, status)
	p.Obs.RecordStageDuration(ctx, stage, time.Since(start))
}
