// internal/pipeline/candidacy/models.go

// Package candidacy owns the persisted entities of the screening flow:
// candidates, candidatures and absence justificatifs.
package candidacy

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a candidature. The set is closed:
// no other transitions exist.
type Status string

const (
	// StatusEnCours covers both CV-qualified candidatures awaiting a
	// recruiter and evaluation failures routed to manual review.
	StatusEnCours Status = "en_cours"

	StatusAcceptee Status = "acceptee"
	StatusRefusee  Status = "refusee"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusEnCours, StatusAcceptee, StatusRefusee:
		return true
	}
	return false
}

// Label returns the French display text for the status.
func (s Status) Label() string {
	switch s {
	case StatusEnCours:
		return "En cours"
	case StatusAcceptee:
		return "Acceptée"
	case StatusRefusee:
		return "Refusée"
	}
	return string(s)
}

// Candidate is a deduplicated applicant identity.
type Candidate struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
}

// Candidature is one application of a candidate to a job offer,
// carrying the evaluation outcome.
type Candidature struct {
	ID          uuid.UUID `json:"id"`
	Reference   string    `json:"reference"`
	CandidateID uuid.UUID `json:"candidate_id"`
	JobTitle    string    `json:"job_title"`
	CVPath      string    `json:"cv_path"`
	Score       float64   `json:"score"`
	Passed      bool      `json:"passed"`
	Status      Status    `json:"status"`
	Message     string    `json:"message"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AbsenceJustificatif records an accepted absence document.
type AbsenceJustificatif struct {
	ID        uuid.UUID `json:"id"`
	Filename  string    `json:"filename"`
	CreatedAt time.Time `json:"created_at"`
}

// NewReference generates a short candidature reference suitable for
// notification templates, e.g. "3f2a9c1d4e7b0".
func NewReference() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:13]
}
