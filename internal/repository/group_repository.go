package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/uniplan/timetable-api/internal/models"
)

// GroupRepository manages persistence for student groups.
type GroupRepository struct {
	db *sqlx.DB
}

// NewGroupRepository constructs a GroupRepository.
func NewGroupRepository(db *sqlx.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

// ListAll returns every group ordered by name.
func (r *GroupRepository) ListAll(ctx context.Context) ([]models.Group, error) {
	const query = `SELECT id, name, year, course, student_count FROM groups ORDER BY name ASC`
	var groups []models.Group
	if err := r.db.SelectContext(ctx, &groups, query); err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	return groups, nil
}

// FindByID fetches a group by ID.
func (r *GroupRepository) FindByID(ctx context.Context, id string) (*models.Group, error) {
	const query = `SELECT id, name, year, course, student_count FROM groups WHERE id = $1`
	var group models.Group
	if err := r.db.GetContext(ctx, &group, query, id); err != nil {
		return nil, err
	}
	return &group, nil
}

// ExistsByName checks if another group uses the same name.
func (r *GroupRepository) ExistsByName(ctx context.Context, name string, excludeID string) (bool, error) {
	query := "SELECT 1 FROM groups WHERE LOWER(name) = LOWER($1)"
	args := []interface{}{name}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check group name: %w", err)
	}
	return true, nil
}

// Create inserts a new group record.
func (r *GroupRepository) Create(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.NewString()
	}
	const query = `INSERT INTO groups (id, name, year, course, student_count)
		VALUES (:id, :name, :year, :course, :student_count)`
	if _, err := r.db.NamedExecContext(ctx, query, group); err != nil {
		return fmt.Errorf("create group: %w", err)
	}
	return nil
}

// Update modifies an existing group record.
func (r *GroupRepository) Update(ctx context.Context, group *models.Group) error {
	const query = `UPDATE groups SET name = :name, year = :year, course = :course, student_count = :student_count WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, group); err != nil {
		return fmt.Errorf("update group: %w", err)
	}
	return nil
}

// Delete removes a group record.
func (r *GroupRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM groups WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete group: %w", err)
	}
	return nil
}
