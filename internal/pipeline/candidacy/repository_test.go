// internal/pipeline/candidacy/repository_test.go
package candidacy

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cv-screening/internal/common/errors"
	"cv-screening/internal/common/logger"
)

func newTestRepository(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db, logger.NewTestLogger(t)), mock
}

func TestFindCandidateByEmailOrPhone_Found(t *testing.T) {
	repo, mock := newTestRepository(t)

	id := uuid.New()
	rows := sqlmock.NewRows([]string{"id", "name", "email", "phone", "created_at"}).
		AddRow(id, "Amina Ben Salah", "amina@example.com", "+21620123456", time.Now())
	mock.ExpectQuery("SELECT id, name, email, phone, created_at").
		WithArgs("amina@example.com", "+21620123456").
		WillReturnRows(rows)

	c, err := repo.FindCandidateByEmailOrPhone(context.Background(), "amina@example.com", "+21620123456")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, id, c.ID)
	assert.Equal(t, "Amina Ben Salah", c.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindCandidateByEmailOrPhone_Missing(t *testing.T) {
	repo, mock := newTestRepository(t)

	mock.ExpectQuery("SELECT id, name, email, phone, created_at").
		WithArgs("nobody@example.com", "+21600000000").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "phone", "created_at"}))

	c, err := repo.FindCandidateByEmailOrPhone(context.Background(), "nobody@example.com", "+21600000000")
	require.NoError(t, err)
	assert.Nil(t, c)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateCandidature_SetsDefaultsAndAudits(t *testing.T) {
	repo, mock := newTestRepository(t)

	mock.ExpectExec("INSERT INTO candidatures").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO audit_log").
		WillReturnResult(sqlmock.NewResult(0, 1))

	c := &Candidature{
		CandidateID: uuid.New(),
		JobTitle:    "Développeur Go",
		CVPath:      "/uploads/cv.pdf",
		Score:       92,
		Passed:      true,
		Status:      StatusEnCours,
	}
	require.NoError(t, repo.CreateCandidature(context.Background(), c))

	assert.NotEqual(t, uuid.Nil, c.ID)
	assert.Len(t, c.Reference, 13)
	assert.False(t, c.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateCandidature_AuditFailureIsNonFatal(t *testing.T) {
	repo, mock := newTestRepository(t)

	mock.ExpectExec("INSERT INTO candidatures").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO audit_log").
		WillReturnError(fmt.Errorf("audit table missing"))

	err := repo.CreateCandidature(context.Background(), &Candidature{
		CandidateID: uuid.New(),
		Status:      StatusRefusee,
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateCandidature_InsertFailure(t *testing.T) {
	repo, mock := newTestRepository(t)

	mock.ExpectExec("INSERT INTO candidatures").
		WillReturnError(fmt.Errorf("connection refused"))

	err := repo.CreateCandidature(context.Background(), &Candidature{
		CandidateID: uuid.New(),
		Status:      StatusEnCours,
	})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeDatabaseInsertFailed, errors.CodeOf(err))
}

func TestUpdateStatus(t *testing.T) {
	repo, mock := newTestRepository(t)

	id := uuid.New()
	mock.ExpectExec("UPDATE candidatures SET status").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO audit_log").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateStatus(context.Background(), id, StatusAcceptee))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetCandidatureByReference_Missing(t *testing.T) {
	repo, mock := newTestRepository(t)

	mock.ExpectQuery("SELECT id, reference, candidate_id").
		WithArgs("unknownref1234").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "reference", "candidate_id", "job_title", "cv_path",
			"score", "passed", "status", "message", "created_at", "updated_at",
		}))

	c, err := repo.GetCandidatureByReference(context.Background(), "unknownref1234")
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestSaveAbsenceJustificatif(t *testing.T) {
	repo, mock := newTestRepository(t)

	mock.ExpectExec("INSERT INTO absence_justificatifs").
		WillReturnResult(sqlmock.NewResult(0, 1))

	j := &AbsenceJustificatif{Filename: "certificat_medical.pdf"}
	require.NoError(t, repo.SaveAbsenceJustificatif(context.Background(), j))
	assert.NotEqual(t, uuid.Nil, j.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStatus(t *testing.T) {
	assert.True(t, StatusEnCours.Valid())
	assert.True(t, StatusAcceptee.Valid())
	assert.True(t, StatusRefusee.Valid())
	assert.False(t, Status("archivee").Valid())

	assert.Equal(t, "En cours", StatusEnCours.Label())
	assert.Equal(t, "Refusée", StatusRefusee.Label())
}
