package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/uniplan/timetable-api/internal/models"
)

// AudienceRepository manages persistence for lecture rooms.
type AudienceRepository struct {
	db *sqlx.DB
}

// NewAudienceRepository constructs an AudienceRepository.
func NewAudienceRepository(db *sqlx.DB) *AudienceRepository {
	return &AudienceRepository{db: db}
}

// ListAll returns every audience ordered by name.
func (r *AudienceRepository) ListAll(ctx context.Context) ([]models.Audience, error) {
	const query = `SELECT id, name, capacity, resources FROM audiences ORDER BY name ASC`
	var audiences []models.Audience
	if err := r.db.SelectContext(ctx, &audiences, query); err != nil {
		return nil, fmt.Errorf("list audiences: %w", err)
	}
	return audiences, nil
}

// FindByID fetches an audience by ID.
func (r *AudienceRepository) FindByID(ctx context.Context, id string) (*models.Audience, error) {
	const query = `SELECT id, name, capacity, resources FROM audiences WHERE id = $1`
	var audience models.Audience
	if err := r.db.GetContext(ctx, &audience, query, id); err != nil {
		return nil, err
	}
	return &audience, nil
}

// Create inserts a new audience record.
func (r *AudienceRepository) Create(ctx context.Context, audience *models.Audience) error {
	if audience.ID == "" {
		audience.ID = uuid.NewString()
	}
	const query = `INSERT INTO audiences (id, name, capacity, resources)
		VALUES (:id, :name, :capacity, :resources)`
	if _, err := r.db.NamedExecContext(ctx, query, audience); err != nil {
		return fmt.Errorf("create audience: %w", err)
	}
	return nil
}

// Update modifies an existing audience record.
func (r *AudienceRepository) Update(ctx context.Context, audience *models.Audience) error {
	const query = `UPDATE audiences SET name = :name, capacity = :capacity, resources = :resources WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, audience); err != nil {
		return fmt.Errorf("update audience: %w", err)
	}
	return nil
}

// Delete removes an audience record.
func (r *AudienceRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM audiences WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete audience: %w", err)
	}
	return nil
}
