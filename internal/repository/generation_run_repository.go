package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/uniplan/timetable-api/internal/models"
)

// GenerationRunRepository manages the append-only log of generation runs.
type GenerationRunRepository struct {
	db *sqlx.DB
}

// NewGenerationRunRepository constructs a GenerationRunRepository.
func NewGenerationRunRepository(db *sqlx.DB) *GenerationRunRepository {
	return &GenerationRunRepository{db: db}
}

// Create inserts a new run record.
func (r *GenerationRunRepository) Create(ctx context.Context, run *models.ScheduleGenerationRun) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO schedule_generation_runs (id, status, summary, conflict_count, created_by, created_at)
		VALUES (:id, :status, :summary, :conflict_count, :created_by, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, run); err != nil {
		return fmt.Errorf("create generation run: %w", err)
	}
	return nil
}

// FindByID fetches a run by ID.
func (r *GenerationRunRepository) FindByID(ctx context.Context, id string) (*models.ScheduleGenerationRun, error) {
	const query = `SELECT id, status, summary, conflict_count, created_by, created_at FROM schedule_generation_runs WHERE id = $1`
	var run models.ScheduleGenerationRun
	if err := r.db.GetContext(ctx, &run, query, id); err != nil {
		return nil, err
	}
	return &run, nil
}

// List returns runs newest first along with total count.
func (r *GenerationRunRepository) List(ctx context.Context, page, pageSize int) ([]models.ScheduleGenerationRun, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	query := fmt.Sprintf("SELECT id, status, summary, conflict_count, created_by, created_at FROM schedule_generation_runs ORDER BY created_at DESC LIMIT %d OFFSET %d", pageSize, offset)
	var runs []models.ScheduleGenerationRun
	if err := r.db.SelectContext(ctx, &runs, query); err != nil {
		return nil, 0, fmt.Errorf("list generation runs: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM schedule_generation_runs"); err != nil {
		return nil, 0, fmt.Errorf("count generation runs: %w", err)
	}
	return runs, total, nil
}
