package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uniplan/timetable-api/internal/models"
)

func newLessonRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestLessonRepositoryListDetailed(t *testing.T) {
	db, mock, cleanup := newLessonRepoMock(t)
	defer cleanup()
	repo := NewLessonRepository(db)

	start := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"id", "subject_id", "group_id", "teacher_id", "audience_id", "start_at", "end_at", "created_at",
		"subject.id", "subject.name", "subject.short_name",
		"group.id", "group.name",
		"audience.id", "audience.name", "audience.resources",
		"teacher.id", "teacher.first_name", "teacher.last_name",
	}).AddRow(
		"l1", "s1", "g1", "t1", "a1", start, start.Add(85*time.Minute), start,
		"s1", "Mathematics", "Math",
		"g1", "CS-101",
		"a1", "Room 204", []byte(`["projector"]`),
		"t1", "Anna", "Petrova",
	)

	mock.ExpectQuery("SELECT .+ FROM lessons l").
		WithArgs("g1").
		WillReturnRows(rows)

	lessons, err := repo.ListDetailed(context.Background(), models.LessonFilter{GroupID: "g1"})
	require.NoError(t, err)
	require.Len(t, lessons, 1)
	assert.Equal(t, "Mathematics", lessons[0].Subject.Name)
	assert.Equal(t, "CS-101", lessons[0].Group.Name)
	assert.Equal(t, "Room 204", lessons[0].Audience.Name)
	assert.Equal(t, "Anna", lessons[0].Teacher.FirstName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLessonRepositoryListDetailedDateRange(t *testing.T) {
	db, mock, cleanup := newLessonRepoMock(t)
	defer cleanup()
	repo := NewLessonRepository(db)

	from := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 7)

	mock.ExpectQuery("SELECT .+ FROM lessons l").
		WithArgs(from, to).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	lessons, err := repo.ListDetailed(context.Background(), models.LessonFilter{StartDate: &from, EndDate: &to})
	require.NoError(t, err)
	assert.Empty(t, lessons)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLessonRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newLessonRepoMock(t)
	defer cleanup()
	repo := NewLessonRepository(db)

	createdBy := "admin-1"
	mock.ExpectExec("INSERT INTO lessons").
		WithArgs(sqlmock.AnyArg(), "s1", "g1", "t1", "a1", sqlmock.AnyArg(), sqlmock.AnyArg(), "admin-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	lesson := &models.Lesson{
		SubjectID:  "s1",
		GroupID:    "g1",
		TeacherID:  "t1",
		AudienceID: "a1",
		StartAt:    time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC),
		EndAt:      time.Date(2025, 3, 10, 9, 25, 0, 0, time.UTC),
		CreatedBy:  &createdBy,
	}
	require.NoError(t, repo.Create(context.Background(), lesson))
	assert.NotEmpty(t, lesson.ID)
	assert.False(t, lesson.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLessonRepositoryDeleteAll(t *testing.T) {
	db, mock, cleanup := newLessonRepoMock(t)
	defer cleanup()
	repo := NewLessonRepository(db)

	mock.ExpectExec("DELETE FROM lessons").
		WillReturnResult(sqlmock.NewResult(0, 35))

	require.NoError(t, repo.DeleteAll(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
