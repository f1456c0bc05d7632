package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/uniplan/timetable-api/internal/dto"
	"github.com/uniplan/timetable-api/internal/models"
	appErrors "github.com/uniplan/timetable-api/pkg/errors"
)

type lessonRepository interface {
	FindByID(ctx context.Context, id string) (*models.Lesson, error)
	Create(ctx context.Context, lesson *models.Lesson) error
	Update(ctx context.Context, lesson *models.Lesson) error
	Delete(ctx context.Context, id string) error
}

// LessonService manages manual edits to the generated schedule. Manual
// placements skip the generator's conflict search; they are trusted admin
// overrides.
type LessonService struct {
	lessons   lessonRepository
	cache     scheduleCacheInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewLessonService constructs a LessonService.
func NewLessonService(lessons lessonRepository, cache scheduleCacheInvalidator, validate *validator.Validate, logger *zap.Logger) *LessonService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LessonService{lessons: lessons, cache: cache, validator: validate, logger: logger}
}

// Get returns a lesson by ID.
func (s *LessonService) Get(ctx context.Context, id string) (*models.Lesson, error) {
	lesson, err := s.lessons.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lesson not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lesson")
	}
	return lesson, nil
}

// Create places a lesson manually.
func (s *LessonService) Create(ctx context.Context, userID string, req dto.CreateLessonRequest) (*models.Lesson, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid lesson payload")
	}

	lesson := &models.Lesson{
		SubjectID:  req.SubjectID,
		GroupID:    req.GroupID,
		TeacherID:  req.TeacherID,
		AudienceID: req.AudienceID,
		StartAt:    req.StartAt,
		EndAt:      req.EndAt,
		CreatedBy:  &userID,
	}
	if err := s.lessons.Create(ctx, lesson); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create lesson")
	}

	s.invalidate(ctx)
	return lesson, nil
}

// Update applies a partial update to a lesson.
func (s *LessonService) Update(ctx context.Context, id string, req dto.UpdateLessonRequest) (*models.Lesson, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid lesson payload")
	}

	lesson, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.SubjectID != nil {
		lesson.SubjectID = *req.SubjectID
	}
	if req.GroupID != nil {
		lesson.GroupID = *req.GroupID
	}
	if req.TeacherID != nil {
		lesson.TeacherID = *req.TeacherID
	}
	if req.AudienceID != nil {
		lesson.AudienceID = *req.AudienceID
	}
	if req.StartAt != nil {
		lesson.StartAt = *req.StartAt
	}
	if req.EndAt != nil {
		lesson.EndAt = *req.EndAt
	}
	if !lesson.EndAt.After(lesson.StartAt) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "endAt must be after startAt")
	}

	if err := s.lessons.Update(ctx, lesson); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update lesson")
	}

	s.invalidate(ctx)
	return lesson, nil
}

// Delete removes a lesson.
func (s *LessonService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.lessons.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete lesson")
	}

	s.invalidate(ctx)
	return nil
}

func (s *LessonService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, scheduleCacheKeyPattern); err != nil {
		s.logger.Warn("invalidate schedule cache", zap.Error(err))
	}
}
