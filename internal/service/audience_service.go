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

type audienceRepository interface {
	ListAll(ctx context.Context) ([]models.Audience, error)
	FindByID(ctx context.Context, id string) (*models.Audience, error)
	Create(ctx context.Context, audience *models.Audience) error
	Update(ctx context.Context, audience *models.Audience) error
	Delete(ctx context.Context, id string) error
}

// AudienceService manages lecture rooms.
type AudienceService struct {
	audiences audienceRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAudienceService constructs an AudienceService.
func NewAudienceService(audiences audienceRepository, validate *validator.Validate, logger *zap.Logger) *AudienceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AudienceService{audiences: audiences, validator: validate, logger: logger}
}

// List returns all audiences.
func (s *AudienceService) List(ctx context.Context) ([]models.Audience, error) {
	audiences, err := s.audiences.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list audiences")
	}
	if audiences == nil {
		audiences = []models.Audience{}
	}
	return audiences, nil
}

// Get returns an audience by ID.
func (s *AudienceService) Get(ctx context.Context, id string) (*models.Audience, error) {
	audience, err := s.audiences.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "audience not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load audience")
	}
	return audience, nil
}

// Create adds a new audience.
func (s *AudienceService) Create(ctx context.Context, req dto.CreateAudienceRequest) (*models.Audience, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid audience payload")
	}

	resources, err := marshalResources(req.Resources)
	if err != nil {
		return nil, err
	}

	audience := &models.Audience{
		Name:      req.Name,
		Capacity:  req.Capacity,
		Resources: resources,
	}
	if err := s.audiences.Create(ctx, audience); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create audience")
	}
	return audience, nil
}

// Update applies a partial update to an audience.
func (s *AudienceService) Update(ctx context.Context, id string, req dto.UpdateAudienceRequest) (*models.Audience, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid audience payload")
	}

	audience, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		audience.Name = *req.Name
	}
	if req.Capacity != nil {
		audience.Capacity = *req.Capacity
	}
	if req.Resources != nil {
		resources, err := marshalResources(*req.Resources)
		if err != nil {
			return nil, err
		}
		audience.Resources = resources
	}

	if err := s.audiences.Update(ctx, audience); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update audience")
	}
	return audience, nil
}

// Delete removes an audience.
func (s *AudienceService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.audiences.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete audience")
	}
	return nil
}

func marshalResources(resources []string) (types.JSONText, error) {
	if resources == nil {
		resources = []string{}
	}
	raw, err := json.Marshal(resources)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode resources")
	}
	return types.JSONText(raw), nil
}
