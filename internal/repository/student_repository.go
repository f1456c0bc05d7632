package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/uniplan/timetable-api/internal/models"
)

// StudentRepository manages persistence for student enrollment records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// ListAll returns every student record.
func (r *StudentRepository) ListAll(ctx context.Context) ([]models.Student, error) {
	const query = `SELECT id, user_id, group_id FROM students`
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// ListByGroup returns students enrolled in a group.
func (r *StudentRepository) ListByGroup(ctx context.Context, groupID string) ([]models.Student, error) {
	const query = `SELECT id, user_id, group_id FROM students WHERE group_id = $1`
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, groupID); err != nil {
		return nil, fmt.Errorf("list students by group: %w", err)
	}
	return students, nil
}

// FindByUserID fetches the student record owned by a user account.
func (r *StudentRepository) FindByUserID(ctx context.Context, userID string) (*models.Student, error) {
	const query = `SELECT id, user_id, group_id FROM students WHERE user_id = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, userID); err != nil {
		return nil, err
	}
	return &student, nil
}

// FindByID fetches a student record by ID.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	const query = `SELECT id, user_id, group_id FROM students WHERE id = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// UpdateGroup moves a student to another group.
func (r *StudentRepository) UpdateGroup(ctx context.Context, id, groupID string) error {
	const query = `UPDATE students SET group_id = $1 WHERE id = $2`
	if _, err := r.db.ExecContext(ctx, query, groupID, id); err != nil {
		return fmt.Errorf("update student group: %w", err)
	}
	return nil
}

// Create inserts a new student record.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	const query = `INSERT INTO students (id, user_id, group_id) VALUES (:id, :user_id, :group_id)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// Delete removes a student record.
func (r *StudentRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM students WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	return nil
}
