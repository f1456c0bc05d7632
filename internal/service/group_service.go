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

type groupRepository interface {
	ListAll(ctx context.Context) ([]models.Group, error)
	FindByID(ctx context.Context, id string) (*models.Group, error)
	ExistsByName(ctx context.Context, name string, excludeID string) (bool, error)
	Create(ctx context.Context, group *models.Group) error
	Update(ctx context.Context, group *models.Group) error
	Delete(ctx context.Context, id string) error
}

// GroupService manages student groups.
type GroupService struct {
	groups    groupRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGroupService constructs a GroupService.
func NewGroupService(groups groupRepository, validate *validator.Validate, logger *zap.Logger) *GroupService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GroupService{groups: groups, validator: validate, logger: logger}
}

// List returns all groups.
func (s *GroupService) List(ctx context.Context) ([]models.Group, error) {
	groups, err := s.groups.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list groups")
	}
	if groups == nil {
		groups = []models.Group{}
	}
	return groups, nil
}

// Get returns a group by ID.
func (s *GroupService) Get(ctx context.Context, id string) (*models.Group, error) {
	group, err := s.groups.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "group not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load group")
	}
	return group, nil
}

// Create adds a new group.
func (s *GroupService) Create(ctx context.Context, req dto.CreateGroupRequest) (*models.Group, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid group payload")
	}

	taken, err := s.groups.ExistsByName(ctx, req.Name, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check group name")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrConflict, "group name is already in use")
	}

	group := &models.Group{
		Name:         req.Name,
		Year:         req.Year,
		Course:       req.Course,
		StudentCount: req.StudentCount,
	}
	if err := s.groups.Create(ctx, group); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create group")
	}
	return group, nil
}

// Update applies a partial update to a group.
func (s *GroupService) Update(ctx context.Context, id string, req dto.UpdateGroupRequest) (*models.Group, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid group payload")
	}

	group, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && *req.Name != group.Name {
		taken, err := s.groups.ExistsByName(ctx, *req.Name, id)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check group name")
		}
		if taken {
			return nil, appErrors.Clone(appErrors.ErrConflict, "group name is already in use")
		}
		group.Name = *req.Name
	}
	if req.Year != nil {
		group.Year = *req.Year
	}
	if req.Course != nil {
		group.Course = *req.Course
	}
	if req.StudentCount != nil {
		group.StudentCount = *req.StudentCount
	}

	if err := s.groups.Update(ctx, group); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update group")
	}
	return group, nil
}

// Delete removes a group.
func (s *GroupService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.groups.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete group")
	}
	return nil
}
