// internal/common/errors/errors.go

// Package errors provides standardized error handling for the screening pipeline.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeUploadValidationFailed ErrorCode = "UPLOAD_VALIDATION_FAILED"

	ErrCodeExtractionFailed  ErrorCode = "EXTRACTION_FAILED"
	ErrCodeUnsupportedFormat ErrorCode = "UNSUPPORTED_FORMAT"

	ErrCodeEvaluatorUnavailable ErrorCode = "EVALUATOR_UNAVAILABLE"
	ErrCodeResponseParseFailed  ErrorCode = "RESPONSE_PARSE_FAILED"

	ErrCodeKeywordGateRejected ErrorCode = "KEYWORD_GATE_REJECTED"

	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"

	ErrCodeDatabaseInsertFailed ErrorCode = "DATABASE_INSERT_FAILED"
	ErrCodeResultCacheFailed    ErrorCode = "RESULT_CACHE_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// UserCorrectable reports whether the submitter can fix the problem by
// re-uploading. Evaluator-side failures are routed to manual review instead
// of being surfaced as hard errors.
func (e *StandardError) UserCorrectable() bool {
	switch e.Code {
	case ErrCodeUploadValidationFailed, ErrCodeExtractionFailed,
		ErrCodeUnsupportedFormat, ErrCodeKeywordGateRejected:
		return true
	}
	return false
}

// ==========================
// Error Constructors
// ==========================

// NewUploadValidationError creates a non-retryable upload validation error.
func NewUploadValidationError(reason string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUploadValidationFailed,
		Message:   "Uploaded file rejected",
		Details:   reason,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewExtractionFailedError creates a non-retryable text extraction error.
func NewExtractionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeExtractionFailed,
		Message:   "Could not extract text from document",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUnsupportedFormatError creates a non-retryable format error.
func NewUnsupportedFormatError(mimeType string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnsupportedFormat,
		Message:   "Unsupported document format",
		Details:   fmt.Sprintf("mimeType: %s", mimeType),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewEvaluatorUnavailableError creates a retryable evaluator transport error.
func NewEvaluatorUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeEvaluatorUnavailable,
		Message:   "CV evaluator endpoint unreachable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewResponseParseError creates a non-retryable evaluator response error.
func NewResponseParseError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeResponseParseFailed,
		Message:   "Evaluator response could not be parsed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewKeywordGateRejectedError creates a non-retryable gate rejection naming
// the accepted terms.
func NewKeywordGateRejectedError(acceptedTerms []string) *StandardError {
	return &StandardError{
		Code:      ErrCodeKeywordGateRejected,
		Message:   "Document does not contain any required mention",
		Details:   fmt.Sprintf("accepted terms: %v", acceptedTerms),
		Retryable: false,
		Metadata:  map[string]interface{}{"acceptedTerms": acceptedTerms},
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a non-fatal delivery error.
func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("channel: %s, error: %s", channel, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseInsertFailedError creates a retryable persistence error.
func NewDatabaseInsertFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseInsertFailed,
		Message:   "Database write failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewResultCacheFailedError creates a retryable cache error.
func NewResultCacheFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeResultCacheFailed,
		Message:   "Evaluation result cache write failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// AsStandard normalizes any error to a StandardError.
func AsStandard(err error) *StandardError {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr
	}
	return &StandardError{
		Code:      "INTERNAL_ERROR",
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// CodeOf returns the error code, or INTERNAL_ERROR for unrecognized errors.
func CodeOf(err error) ErrorCode {
	return AsStandard(err).Code
}
