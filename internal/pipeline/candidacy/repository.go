// internal/pipeline/candidacy/repository.go
package candidacy

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"cv-screening/internal/common/errors"
	"cv-screening/internal/common/logger"
)

// Repository persists candidates, candidatures and absence
// justificatifs in Postgres.
type Repository struct {
	db     *sql.DB
	logger logger.Logger
}

func NewRepository(db *sql.DB, log logger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "candidacy-repository"}),
	}
}

// FindCandidateByEmailOrPhone returns an existing candidate matching
// either contact field, or nil when none exists.
func (r *Repository) FindCandidateByEmailOrPhone(ctx context.Context, email, phone string) (*Candidate, error) {
	const query = `
		SELECT id, name, email, phone, created_at
		FROM candidates
		WHERE email = $1 OR phone = $2
		LIMIT 1`

	var c Candidate
	err := r.db.QueryRowContext(ctx, query, email, phone).
		Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewDatabaseInsertFailedError(err)
	}
	return &c, nil
}

// CreateCandidate inserts a new candidate row.
func (r *Repository) CreateCandidate(ctx context.Context, c *Candidate) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	const query = `
		INSERT INTO candidates (id, name, email, phone, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	if _, err := r.db.ExecContext(ctx, query, c.ID, c.Name, c.Email, c.Phone, c.CreatedAt); err != nil {
		return errors.NewDatabaseInsertFailedError(err)
	}
	return nil
}

// CreateCandidature inserts the candidature with its evaluation outcome
// and writes an audit trail entry. The audit write is best effort and
// never fails the insert.
func (r *Repository) CreateCandidature(ctx context.Context, c *Candidature) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Reference == "" {
		c.Reference = NewReference()
	}
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now

	const query = `
		INSERT INTO candidatures
			(id, reference, candidate_id, job_title, cv_path, score, passed, status, message, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.Reference, c.CandidateID, c.JobTitle, c.CVPath,
		c.Score, c.Passed, string(c.Status), c.Message, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return errors.NewDatabaseInsertFailedError(err)
	}

	r.audit(ctx, c.ID, "candidature_created", string(c.Status))
	return nil
}

// UpdateStatus moves a candidature to the given status.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	const query = `
		UPDATE candidatures SET status = $1, updated_at = $2 WHERE id = $3`

	if _, err := r.db.ExecContext(ctx, query, string(status), time.Now().UTC(), id); err != nil {
		return errors.NewDatabaseInsertFailedError(err)
	}

	r.audit(ctx, id, "status_changed", string(status))
	return nil
}

// GetCandidatureByReference loads a candidature by its public
// reference, nil when unknown.
func (r *Repository) GetCandidatureByReference(ctx context.Context, reference string) (*Candidature, error) {
	const query = `
		SELECT id, reference, candidate_id, job_title, cv_path, score, passed, status, message, created_at, updated_at
		FROM candidatures
		WHERE reference = $1`

	var c Candidature
	var status string
	err := r.db.QueryRowContext(ctx, query, reference).Scan(
		&c.ID, &c.Reference, &c.CandidateID, &c.JobTitle, &c.CVPath,
		&c.Score, &c.Passed, &status, &c.Message, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewDatabaseInsertFailedError(err)
	}
	c.Status = Status(status)
	return &c, nil
}

// SaveAbsenceJustificatif records an accepted absence document.
func (r *Repository) SaveAbsenceJustificatif(ctx context.Context, j *AbsenceJustificatif) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	if j.CreatedAt.IsZero() {
		j.CreatedAt = time.Now().UTC()
	}

	const query = `
		INSERT INTO absence_justificatifs (id, filename, created_at)
		VALUES ($1, $2, $3)`

	if _, err := r.db.ExecContext(ctx, query, j.ID, j.Filename, j.CreatedAt); err != nil {
		return errors.NewDatabaseInsertFailedError(err)
	}
	return nil
}

// audit appends to the audit_log table. Failures are logged only.
func (r *Repository) audit(ctx context.Context, entityID uuid.UUID, action, detail string) {
	const query = `
		INSERT INTO audit_log (id, entity_id, action, detail, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.ExecContext(ctx, query, uuid.New(), entityID, action, detail, time.Now().UTC())
	if err != nil {
		r.logger.WithError(err).Warn("audit log write failed", map[string]interface{}{
			"entity_id": entityID.String(),
			"action":    action,
		})
	}
}
