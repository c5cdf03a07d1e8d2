// internal/server/handlers.go
package server

import (
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"cv-screening/internal/common/errors"
	"cv-screening/internal/pipeline"
	"cv-screening/internal/pipeline/upload"
)

// handleCandidacy receives a multipart CV submission and runs the
// candidacy flow synchronously.
func (s *Server) handleCandidacy(c *gin.Context) {
	name := c.PostForm("name")
	email := c.PostForm("email")
	if name == "" || email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and email are required"})
		return
	}

	file, err := readUpload(c, "cv")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "a CV file is required"})
		return
	}

	result, err := s.pipeline.RunCandidacy(c.Request.Context(), &pipeline.CandidacyRequest{
		CandidateName: name,
		Email:         email,
		Phone:         c.PostForm("phone"),
		JobTitle:      c.PostForm("job_title"),
		File:          file,
	})
	if err != nil {
		s.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"submission_id": result.SubmissionID,
		"reference":     result.Reference,
		"status":        string(result.Status),
		"status_label":  result.Status.Label(),
		"score":         result.Evaluation.Score,
		"passed":        result.Evaluation.Passed,
		"email_sent":    result.Notifications.EmailSent,
		"sms_sent":      result.Notifications.SmsSent,
	})
}

// handleAbsence receives a justificatif and runs the absence flow.
func (s *Server) handleAbsence(c *gin.Context) {
	file, err := readUpload(c, "justificatif")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "a justificatif file is required"})
		return
	}

	result, err := s.pipeline.RunAbsence(c.Request.Context(), &pipeline.AbsenceRequest{File: file})
	if err != nil {
		s.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"submission_id": result.SubmissionID,
		"accepted":      result.Accepted,
		"filename":      result.Filename,
	})
}

// handleResult returns a cached evaluation. Unknown or expired ids get
// a not-found answer pointing back to the submission page.
func (s *Server) handleResult(c *gin.Context) {
	result, err := s.results.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.renderError(c, err)
		return
	}
	if result == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":    "results unavailable",
			"redirect": "/",
		})
		return
	}
	c.JSON(http.StatusOK, result)
}

// renderError maps a pipeline error onto an HTTP status. User
// correctable problems are 4xx; everything else is a server fault.
func (s *Server) renderError(c *gin.Context, err error) {
	std := errors.AsStandard(err)

	status := http.StatusInternalServerError
	switch {
	case std.Code == errors.ErrCodeKeywordGateRejected:
		status = http.StatusUnprocessableEntity
	case std.UserCorrectable():
		status = http.StatusBadRequest
	case std.Code == errors.ErrCodeEvaluatorUnavailable:
		status = http.StatusBadGateway
	}

	s.logger.WithError(err).Warn("request failed", map[string]interface{}{
		"code":   string(std.Code),
		"status": status,
	})
	c.JSON(status, gin.H{
		"error": std.Message,
		"code":  string(std.Code),
	})
}

func readUpload(c *gin.Context, field string) (*upload.Submission, error) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		return nil, err
	}
	return submissionFromHeader(fileHeader)
}

func submissionFromHeader(fh *multipart.FileHeader) (*upload.Submission, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	return &upload.Submission{
		Filename: fh.Filename,
		MimeType: fh.Header.Get("Content-Type"),
		Data:     data,
	}, nil
}
