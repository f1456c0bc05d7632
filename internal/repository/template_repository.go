package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/uniplan/timetable-api/internal/models"
)

const templateColumns = "id, subject_id, group_id, teacher_id, weekly_frequency, preferred_days, preferred_times"

// TemplateRepository manages persistence for lesson templates.
type TemplateRepository struct {
	db *sqlx.DB
}

// NewTemplateRepository constructs a TemplateRepository.
func NewTemplateRepository(db *sqlx.DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

// ListAll returns every template in insertion order. The generator consumes
// this ordering as its placement priority.
func (r *TemplateRepository) ListAll(ctx context.Context) ([]models.LessonTemplate, error) {
	query := fmt.Sprintf("SELECT %s FROM lesson_templates ORDER BY id ASC", templateColumns)
	var templates []models.LessonTemplate
	if err := r.db.SelectContext(ctx, &templates, query); err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	return templates, nil
}

// FindByID fetches a template by ID.
func (r *TemplateRepository) FindByID(ctx context.Context, id string) (*models.LessonTemplate, error) {
	query := fmt.Sprintf("SELECT %s FROM lesson_templates WHERE id = $1", templateColumns)
	var template models.LessonTemplate
	if err := r.db.GetContext(ctx, &template, query, id); err != nil {
		return nil, err
	}
	return &template, nil
}

// Create inserts a new template record.
func (r *TemplateRepository) Create(ctx context.Context, template *models.LessonTemplate) error {
	if template.ID == "" {
		template.ID = uuid.NewString()
	}
	const query = `INSERT INTO lesson_templates (id, subject_id, group_id, teacher_id, weekly_frequency, preferred_days, preferred_times)
		VALUES (:id, :subject_id, :group_id, :teacher_id, :weekly_frequency, :preferred_days, :preferred_times)`
	if _, err := r.db.NamedExecContext(ctx, query, template); err != nil {
		return fmt.Errorf("create template: %w", err)
	}
	return nil
}

// Update modifies an existing template record.
func (r *TemplateRepository) Update(ctx context.Context, template *models.LessonTemplate) error {
	const query = `UPDATE lesson_templates SET subject_id = :subject_id, group_id = :group_id, teacher_id = :teacher_id, weekly_frequency = :weekly_frequency, preferred_days = :preferred_days, preferred_times = :preferred_times WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, template); err != nil {
		return fmt.Errorf("update template: %w", err)
	}
	return nil
}

// Delete removes a template record.
func (r *TemplateRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM lesson_templates WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	return nil
}
