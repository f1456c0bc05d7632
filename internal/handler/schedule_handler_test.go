package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uniplan/timetable-api/internal/middleware"
	"github.com/uniplan/timetable-api/internal/models"
	"github.com/uniplan/timetable-api/internal/service"
	"github.com/uniplan/timetable-api/pkg/config"
)

type lessonListerStub struct {
	lessons []models.LessonDetail
	err     error
}

func (s *lessonListerStub) ListDetailed(ctx context.Context, filter models.LessonFilter) ([]models.LessonDetail, error) {
	return s.lessons, s.err
}

type templateListerStub struct {
	templates []models.LessonTemplate
}

func (s *templateListerStub) ListAll(ctx context.Context) ([]models.LessonTemplate, error) {
	return s.templates, nil
}

type audienceListerStub struct {
	audiences []models.Audience
}

func (s *audienceListerStub) ListAll(ctx context.Context) ([]models.Audience, error) {
	return s.audiences, nil
}

type lessonWriterStub struct {
	created int
}

func (s *lessonWriterStub) DeleteAll(ctx context.Context) error { return nil }

func (s *lessonWriterStub) Create(ctx context.Context, lesson *models.Lesson) error {
	s.created++
	return nil
}

type runRecorderStub struct {
	runs    []models.ScheduleGenerationRun
	findErr error
}

func (s *runRecorderStub) Create(ctx context.Context, run *models.ScheduleGenerationRun) error {
	run.ID = "run-1"
	s.runs = append(s.runs, *run)
	return nil
}

func (s *runRecorderStub) FindByID(ctx context.Context, id string) (*models.ScheduleGenerationRun, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	for i := range s.runs {
		if s.runs[i].ID == id {
			return &s.runs[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *runRecorderStub) List(ctx context.Context, page, pageSize int) ([]models.ScheduleGenerationRun, int, error) {
	return s.runs, len(s.runs), nil
}

func sampleLessonDetail() models.LessonDetail {
	start := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	detail := models.LessonDetail{}
	detail.ID = "l1"
	detail.SubjectID = "s1"
	detail.GroupID = "g1"
	detail.TeacherID = "t1"
	detail.AudienceID = "a1"
	detail.StartAt = start
	detail.EndAt = start.Add(85 * time.Minute)
	detail.Subject = models.Subject{ID: "s1", Name: "Mathematics"}
	detail.Group = models.Group{ID: "g1", Name: "CS-101"}
	detail.Audience = models.Audience{ID: "a1", Name: "Room 204"}
	detail.Teacher = models.TeacherInfo{ID: "t1", FirstName: "Anna", LastName: "Petrova"}
	return detail
}

func newScheduleHandler(lessons *lessonListerStub, runs *runRecorderStub) *ScheduleHandler {
	scheduleSvc := service.NewScheduleService(lessons, nil, config.CacheConfig{}, nil, nil)
	generatorSvc := service.NewScheduleGeneratorService(
		&templateListerStub{templates: []models.LessonTemplate{{ID: "tpl-1", SubjectID: "s1", GroupID: "g1", TeacherID: "t1", WeeklyFrequency: 1}}},
		&audienceListerStub{audiences: []models.Audience{{ID: "a1"}}},
		&lessonWriterStub{},
		runs,
		nil,
		nil,
		config.GeneratorConfig{},
		nil,
	)
	exportSvc := service.NewExportService(scheduleSvc, nil, nil, nil)
	return NewScheduleHandler(scheduleSvc, generatorSvc, exportSvc, nil)
}

func TestScheduleListSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newScheduleHandler(&lessonListerStub{lessons: []models.LessonDetail{sampleLessonDetail()}}, &runRecorderStub{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/schedule", nil)

	handler.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data []models.LessonDetail  `json:"data"`
		Meta map[string]interface{} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "Mathematics", body.Data[0].Subject.Name)
	assert.Equal(t, false, body.Meta["cached"])
}

func TestScheduleListRejectsBadDate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newScheduleHandler(&lessonListerStub{}, &runRecorderStub{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/schedule?startDate=not-a-date", nil)

	handler.List(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScheduleGenerate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	runs := &runRecorderStub{}
	handler := newScheduleHandler(&lessonListerStub{}, runs)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/schedule/generate", nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin})

	handler.Generate(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, runs.runs, 1)

	var body struct {
		Data struct {
			Success bool   `json:"success"`
			RunID   string `json:"runId"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Data.Success)
	assert.Equal(t, "run-1", body.Data.RunID)
}

func TestScheduleGenerateWithoutClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newScheduleHandler(&lessonListerStub{}, &runRecorderStub{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/schedule/generate", nil)

	handler.Generate(c)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestScheduleGetRunNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newScheduleHandler(&lessonListerStub{}, &runRecorderStub{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/schedule/runs/missing", nil)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	handler.GetRun(c)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestScheduleExportCSV(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newScheduleHandler(&lessonListerStub{lessons: []models.LessonDetail{sampleLessonDetail()}}, &runRecorderStub{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/schedule/export?format=csv", nil)

	handler.Export(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=schedule.csv", w.Header().Get("Content-Disposition"))
	assert.Contains(t, w.Body.String(), "Mathematics")
}

func TestScheduleExportRejectsUnknownFormat(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newScheduleHandler(&lessonListerStub{}, &runRecorderStub{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/schedule/export?format=xml", nil)

	handler.Export(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}
