package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/uniplan/timetable-api/internal/dto"
	"github.com/uniplan/timetable-api/internal/models"
	appErrors "github.com/uniplan/timetable-api/pkg/errors"
)

type templateRepository interface {
	ListAll(ctx context.Context) ([]models.LessonTemplate, error)
	FindByID(ctx context.Context, id string) (*models.LessonTemplate, error)
	Create(ctx context.Context, template *models.LessonTemplate) error
	Update(ctx context.Context, template *models.LessonTemplate) error
	Delete(ctx context.Context, id string) error
}

type subjectReader interface {
	FindByID(ctx context.Context, id string) (*models.Subject, error)
}

type groupReader interface {
	FindByID(ctx context.Context, id string) (*models.Group, error)
}

type teacherReader interface {
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
}

// TemplateService manages lesson templates, the demand input of the
// generator. References are checked on write so the generator never sees a
// template pointing at a missing subject, group or teacher.
type TemplateService struct {
	templates templateRepository
	subjects  subjectReader
	groups    groupReader
	teachers  teacherReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTemplateService constructs a TemplateService.
func NewTemplateService(templates templateRepository, subjects subjectReader, groups groupReader, teachers teacherReader, validate *validator.Validate, logger *zap.Logger) *TemplateService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TemplateService{templates: templates, subjects: subjects, groups: groups, teachers: teachers, validator: validate, logger: logger}
}

// List returns all templates.
func (s *TemplateService) List(ctx context.Context) ([]models.LessonTemplate, error) {
	templates, err := s.templates.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list templates")
	}
	if templates == nil {
		templates = []models.LessonTemplate{}
	}
	return templates, nil
}

// Get returns a template by ID.
func (s *TemplateService) Get(ctx context.Context, id string) (*models.LessonTemplate, error) {
	template, err := s.templates.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "template not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load template")
	}
	return template, nil
}

// Create adds a new lesson template after verifying its references.
func (s *TemplateService) Create(ctx context.Context, req dto.CreateTemplateRequest) (*models.LessonTemplate, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid template payload")
	}

	if err := s.checkReferences(ctx, req.SubjectID, req.GroupID, req.TeacherID); err != nil {
		return nil, err
	}

	preferredDays, err := marshalJSONField(req.PreferredDays, "preferredDays")
	if err != nil {
		return nil, err
	}
	preferredTimes, err := marshalJSONField(req.PreferredTimes, "preferredTimes")
	if err != nil {
		return nil, err
	}

	template := &models.LessonTemplate{
		SubjectID:       req.SubjectID,
		GroupID:         req.GroupID,
		TeacherID:       req.TeacherID,
		WeeklyFrequency: req.WeeklyFrequency,
		PreferredDays:   preferredDays,
		PreferredTimes:  preferredTimes,
	}
	if err := s.templates.Create(ctx, template); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create template")
	}
	return template, nil
}

// Update applies a partial update to a template.
func (s *TemplateService) Update(ctx context.Context, id string, req dto.UpdateTemplateRequest) (*models.LessonTemplate, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid template payload")
	}

	template, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.SubjectID != nil {
		template.SubjectID = *req.SubjectID
	}
	if req.GroupID != nil {
		template.GroupID = *req.GroupID
	}
	if req.TeacherID != nil {
		template.TeacherID = *req.TeacherID
	}
	if req.WeeklyFrequency != nil {
		template.WeeklyFrequency = *req.WeeklyFrequency
	}
	if req.PreferredDays != nil {
		raw, err := marshalJSONField(*req.PreferredDays, "preferredDays")
		if err != nil {
			return nil, err
		}
		template.PreferredDays = raw
	}
	if req.PreferredTimes != nil {
		raw, err := marshalJSONField(*req.PreferredTimes, "preferredTimes")
		if err != nil {
			return nil, err
		}
		template.PreferredTimes = raw
	}

	if err := s.checkReferences(ctx, template.SubjectID, template.GroupID, template.TeacherID); err != nil {
		return nil, err
	}

	if err := s.templates.Update(ctx, template); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update template")
	}
	return template, nil
}

// Delete removes a template.
func (s *TemplateService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.templates.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete template")
	}
	return nil
}

func (s *TemplateService) checkReferences(ctx context.Context, subjectID, groupID, teacherID string) error {
	if _, err := s.subjects.FindByID(ctx, subjectID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrValidation, "subject does not exist")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check subject")
	}
	if _, err := s.groups.FindByID(ctx, groupID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrValidation, "group does not exist")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check group")
	}
	if _, err := s.teachers.FindByID(ctx, teacherID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrValidation, "teacher does not exist")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check teacher")
	}
	return nil
}

func marshalJSONField(value interface{}, field string) (types.JSONText, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode "+field)
	}
	return types.JSONText(raw), nil
}
