package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uniplan/timetable-api/internal/models"
)

func newTemplateRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestTemplateRepositoryListAll(t *testing.T) {
	db, mock, cleanup := newTemplateRepoMock(t)
	defer cleanup()
	repo := NewTemplateRepository(db)

	rows := sqlmock.NewRows([]string{"id", "subject_id", "group_id", "teacher_id", "weekly_frequency"}).
		AddRow("tpl-1", "s1", "g1", "t1", 2).
		AddRow("tpl-2", "s2", "g1", "t2", 1)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, subject_id, group_id, teacher_id, weekly_frequency, preferred_days, preferred_times FROM lesson_templates ORDER BY id ASC")).
		WillReturnRows(rows)

	templates, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, templates, 2)
	assert.Equal(t, "tpl-1", templates[0].ID)
	assert.Equal(t, 2, templates[0].WeeklyFrequency)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTemplateRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newTemplateRepoMock(t)
	defer cleanup()
	repo := NewTemplateRepository(db)

	mock.ExpectExec("INSERT INTO lesson_templates").
		WithArgs(sqlmock.AnyArg(), "s1", "g1", "t1", 2, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	template := &models.LessonTemplate{SubjectID: "s1", GroupID: "g1", TeacherID: "t1", WeeklyFrequency: 2}
	require.NoError(t, repo.Create(context.Background(), template))
	assert.NotEmpty(t, template.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTemplateRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newTemplateRepoMock(t)
	defer cleanup()
	repo := NewTemplateRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM lesson_templates WHERE id = $1")).
		WithArgs("tpl-1").
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Delete(context.Background(), "tpl-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
