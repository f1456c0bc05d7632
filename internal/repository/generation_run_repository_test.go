package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uniplan/timetable-api/internal/models"
)

func newRunRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestGenerationRunRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRunRepoMock(t)
	defer cleanup()
	repo := NewGenerationRunRepository(db)

	mock.ExpectExec("INSERT INTO schedule_generation_runs").
		WithArgs(sqlmock.AnyArg(), string(models.GenerationStatusSuccess), sqlmock.AnyArg(), 0, "admin-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	createdBy := "admin-1"
	run := &models.ScheduleGenerationRun{
		Status:    models.GenerationStatusSuccess,
		Summary:   []byte(`{"placedLessons":3}`),
		CreatedBy: &createdBy,
	}
	require.NoError(t, repo.Create(context.Background(), run))
	assert.NotEmpty(t, run.ID)
	assert.False(t, run.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGenerationRunRepositoryList(t *testing.T) {
	db, mock, cleanup := newRunRepoMock(t)
	defer cleanup()
	repo := NewGenerationRunRepository(db)

	rows := sqlmock.NewRows([]string{"id", "status", "summary", "conflict_count", "created_at"}).
		AddRow("run-2", "SUCCESS", []byte(`{}`), 0, time.Now()).
		AddRow("run-1", "FAILED", []byte(`{"error":"boom"}`), 0, time.Now().Add(-time.Hour))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, status, summary, conflict_count, created_by, created_at FROM schedule_generation_runs ORDER BY created_at DESC LIMIT 20 OFFSET 0")).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM schedule_generation_runs")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	runs, total, err := repo.List(context.Background(), 0, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, 2, total)
	assert.Equal(t, "run-2", runs[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGenerationRunRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newRunRepoMock(t)
	defer cleanup()
	repo := NewGenerationRunRepository(db)

	rows := sqlmock.NewRows([]string{"id", "status", "summary", "conflict_count", "created_at"}).
		AddRow("run-1", "SUCCESS", []byte(`{}`), 2, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, status, summary, conflict_count, created_by, created_at FROM schedule_generation_runs WHERE id = $1")).
		WithArgs("run-1").
		WillReturnRows(rows)

	run, err := repo.FindByID(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, models.GenerationStatusSuccess, run.Status)
	assert.Equal(t, 2, run.ConflictCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}
