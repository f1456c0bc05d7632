package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uniplan/timetable-api/internal/models"
	"github.com/uniplan/timetable-api/pkg/config"
	appErrors "github.com/uniplan/timetable-api/pkg/errors"
)

type stubTemplateLister struct {
	templates []models.LessonTemplate
	err       error
}

func (s *stubTemplateLister) ListAll(ctx context.Context) ([]models.LessonTemplate, error) {
	return s.templates, s.err
}

type stubAudienceLister struct {
	audiences []models.Audience
	err       error
}

func (s *stubAudienceLister) ListAll(ctx context.Context) ([]models.Audience, error) {
	return s.audiences, s.err
}

type stubLessonWriter struct {
	deleted   bool
	created   []models.Lesson
	deleteErr error
	createErr error
}

func (s *stubLessonWriter) DeleteAll(ctx context.Context) error {
	s.deleted = true
	return s.deleteErr
}

func (s *stubLessonWriter) Create(ctx context.Context, lesson *models.Lesson) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.created = append(s.created, *lesson)
	return nil
}

type stubRunRecorder struct {
	runs []models.ScheduleGenerationRun
	err  error
}

func (s *stubRunRecorder) Create(ctx context.Context, run *models.ScheduleGenerationRun) error {
	if s.err != nil {
		return s.err
	}
	run.ID = "run-1"
	s.runs = append(s.runs, *run)
	return nil
}

func (s *stubRunRecorder) FindByID(ctx context.Context, id string) (*models.ScheduleGenerationRun, error) {
	for i := range s.runs {
		if s.runs[i].ID == id {
			return &s.runs[i], nil
		}
	}
	return nil, errors.New("not found")
}

func (s *stubRunRecorder) List(ctx context.Context, page, pageSize int) ([]models.ScheduleGenerationRun, int, error) {
	return s.runs, len(s.runs), nil
}

type stubInvalidator struct {
	patterns []string
}

func (s *stubInvalidator) DeleteByPattern(ctx context.Context, pattern string) error {
	s.patterns = append(s.patterns, pattern)
	return nil
}

type generatorFixture struct {
	templates *stubTemplateLister
	audiences *stubAudienceLister
	lessons   *stubLessonWriter
	runs      *stubRunRecorder
	cache     *stubInvalidator
	service   *ScheduleGeneratorService
}

func newGeneratorFixture(templates []models.LessonTemplate, audiences []models.Audience) *generatorFixture {
	f := &generatorFixture{
		templates: &stubTemplateLister{templates: templates},
		audiences: &stubAudienceLister{audiences: audiences},
		lessons:   &stubLessonWriter{},
		runs:      &stubRunRecorder{},
		cache:     &stubInvalidator{},
	}
	f.service = NewScheduleGeneratorService(f.templates, f.audiences, f.lessons, f.runs, f.cache, nil, defaultGridConfig(), nil)
	f.service.now = func() time.Time {
		// Wednesday, so lessons anchor to Monday 2025-03-10.
		return time.Date(2025, 3, 12, 12, 0, 0, 0, time.UTC)
	}
	return f
}

func TestGenerateSuccess(t *testing.T) {
	templates := []models.LessonTemplate{
		{ID: "tpl-1", SubjectID: "s1", GroupID: "g1", TeacherID: "t1", WeeklyFrequency: 2},
		{ID: "tpl-2", SubjectID: "s2", GroupID: "g2", TeacherID: "t2", WeeklyFrequency: 1},
	}
	audiences := []models.Audience{{ID: "a1", Name: "101"}, {ID: "a2", Name: "102"}}

	f := newGeneratorFixture(templates, audiences)
	result, err := f.service.Generate(context.Background(), "admin-1")
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, "run-1", result.RunID)
	assert.Equal(t, 3, result.TotalLessons)
	assert.Equal(t, 3, result.PlacedLessons)
	assert.Equal(t, 0, result.UnplacedLessons)
	assert.Empty(t, result.Conflicts)
	assert.NotEmpty(t, result.DurationSeconds)

	assert.True(t, f.lessons.deleted)
	require.Len(t, f.lessons.created, 3)

	// Lessons anchor to Monday of the current week.
	first := f.lessons.created[0]
	assert.Equal(t, time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC), first.StartAt)
	assert.Equal(t, time.Date(2025, 3, 10, 9, 25, 0, 0, time.UTC), first.EndAt)
	require.NotNil(t, first.CreatedBy)
	assert.Equal(t, "admin-1", *first.CreatedBy)

	require.Len(t, f.runs.runs, 1)
	run := f.runs.runs[0]
	assert.Equal(t, models.GenerationStatusSuccess, run.Status)
	assert.Equal(t, 0, run.ConflictCount)

	var summary models.RunSummary
	require.NoError(t, json.Unmarshal(run.Summary, &summary))
	assert.Equal(t, 2, summary.TotalTemplates)
	assert.Equal(t, 3, summary.TotalLessonsToPlace)
	assert.Equal(t, 3, summary.PlacedLessons)
	assert.Equal(t, 0, summary.UnplacedLessons)

	assert.Equal(t, []string{scheduleCacheKeyPattern}, f.cache.patterns)
}

func TestGenerateSameGroupSpreadsAcrossSlots(t *testing.T) {
	templates := []models.LessonTemplate{
		{ID: "tpl-1", SubjectID: "s1", GroupID: "g1", TeacherID: "t1", WeeklyFrequency: 3},
	}
	audiences := []models.Audience{{ID: "a1"}}

	f := newGeneratorFixture(templates, audiences)
	result, err := f.service.Generate(context.Background(), "admin-1")
	require.NoError(t, err)

	assert.Equal(t, 3, result.PlacedLessons)
	starts := make(map[time.Time]bool)
	for _, lesson := range f.lessons.created {
		assert.False(t, starts[lesson.StartAt], "two lessons share a start time")
		starts[lesson.StartAt] = true
	}
}

func TestGenerateNoTemplates(t *testing.T) {
	f := newGeneratorFixture(nil, []models.Audience{{ID: "a1"}})

	result, err := f.service.Generate(context.Background(), "admin-1")
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, "no lesson templates to generate a schedule from", result.Error)

	// No audit record and no schedule mutation for the empty case.
	assert.Empty(t, f.runs.runs)
	assert.False(t, f.lessons.deleted)
}

func TestGenerateNoAudiencesReportsConflicts(t *testing.T) {
	templates := []models.LessonTemplate{
		{ID: "tpl-1", SubjectID: "s1", GroupID: "g1", TeacherID: "t1", WeeklyFrequency: 2},
	}

	f := newGeneratorFixture(templates, nil)
	result, err := f.service.Generate(context.Background(), "admin-1")
	require.NoError(t, err)

	// With no rooms nothing can be placed, but the run still succeeds and
	// records every failure as a conflict.
	assert.True(t, result.Success)
	assert.Equal(t, 2, result.UnplacedLessons)
	assert.Len(t, result.Conflicts, 2)
	assert.Contains(t, result.Conflicts[0], "tpl-1")
	assert.Contains(t, result.Conflicts[0], "g1")

	require.Len(t, f.runs.runs, 1)
	assert.Equal(t, models.GenerationStatusSuccess, f.runs.runs[0].Status)
	assert.Equal(t, 2, f.runs.runs[0].ConflictCount)
}

func TestGenerateOverflowLeavesUnplaced(t *testing.T) {
	// A two hour day fits exactly one 85 minute lesson, so five slots exist
	// for seven demanded lessons sharing one teacher and one room.
	templates := []models.LessonTemplate{
		{ID: "tpl-1", SubjectID: "s1", GroupID: "g1", TeacherID: "t1", WeeklyFrequency: 7},
	}
	f := newGeneratorFixture(templates, []models.Audience{{ID: "a1"}})
	f.service.cfg = config.GeneratorConfig{
		DayStart:         8 * time.Hour,
		DayEnd:           10 * time.Hour,
		LessonDuration:   85 * time.Minute,
		BreakDuration:    10 * time.Minute,
		GapPenaltyAfter:  2 * time.Hour,
		GapPenaltyPoints: 10,
	}

	result, err := f.service.Generate(context.Background(), "admin-1")
	require.NoError(t, err)

	assert.Equal(t, 7, result.TotalLessons)
	assert.Equal(t, 5, result.PlacedLessons)
	assert.Equal(t, 2, result.UnplacedLessons)
	assert.Equal(t, result.TotalLessons, result.PlacedLessons+result.UnplacedLessons)
	assert.Len(t, result.Conflicts, 2)
}

func TestGenerateIsDeterministic(t *testing.T) {
	templates := []models.LessonTemplate{
		{ID: "tpl-1", SubjectID: "s1", GroupID: "g1", TeacherID: "t1", WeeklyFrequency: 2},
		{ID: "tpl-2", SubjectID: "s2", GroupID: "g2", TeacherID: "t2", WeeklyFrequency: 2},
	}
	audiences := []models.Audience{{ID: "a1"}, {ID: "a2"}}

	f := newGeneratorFixture(templates, audiences)
	_, err := f.service.Generate(context.Background(), "admin-1")
	require.NoError(t, err)
	firstRun := append([]models.Lesson(nil), f.lessons.created...)

	f.lessons.created = nil
	_, err = f.service.Generate(context.Background(), "admin-1")
	require.NoError(t, err)

	require.Len(t, f.lessons.created, len(firstRun))
	for i := range firstRun {
		assert.Equal(t, firstRun[i].StartAt, f.lessons.created[i].StartAt, "lesson %d", i)
		assert.Equal(t, firstRun[i].AudienceID, f.lessons.created[i].AudienceID, "lesson %d", i)
		assert.Equal(t, firstRun[i].GroupID, f.lessons.created[i].GroupID, "lesson %d", i)
	}
}

func TestGenerateDeleteFailureRecordsFailedRun(t *testing.T) {
	templates := []models.LessonTemplate{
		{ID: "tpl-1", SubjectID: "s1", GroupID: "g1", TeacherID: "t1", WeeklyFrequency: 1},
	}
	f := newGeneratorFixture(templates, []models.Audience{{ID: "a1"}})
	f.lessons.deleteErr = errors.New("connection reset")

	result, err := f.service.Generate(context.Background(), "admin-1")
	require.Error(t, err)
	assert.Nil(t, result)

	require.Len(t, f.runs.runs, 1)
	run := f.runs.runs[0]
	assert.Equal(t, models.GenerationStatusFailed, run.Status)
	assert.Equal(t, 0, run.ConflictCount)

	var summary models.RunSummary
	require.NoError(t, json.Unmarshal(run.Summary, &summary))
	assert.Contains(t, summary.Error, "connection reset")
}

func TestGenerateRejectsConcurrentRuns(t *testing.T) {
	f := newGeneratorFixture(nil, nil)

	f.service.mu.Lock()
	defer f.service.mu.Unlock()

	_, err := f.service.Generate(context.Background(), "admin-1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrGenerationBusy.Code, appErr.Code)
}

func TestListRuns(t *testing.T) {
	f := newGeneratorFixture(nil, nil)
	f.runs.runs = []models.ScheduleGenerationRun{{ID: "run-1", Status: models.GenerationStatusSuccess}}

	runs, pagination, err := f.service.ListRuns(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
	assert.Equal(t, 1, pagination.TotalCount)
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, 20, pagination.PageSize)
}
