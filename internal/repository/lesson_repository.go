package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/uniplan/timetable-api/internal/models"
)

const lessonDetailColumns = `l.id, l.subject_id, l.group_id, l.teacher_id, l.audience_id, l.start_at, l.end_at, l.created_by, l.created_at,
	s.id AS "subject.id", s.name AS "subject.name", s.short_name AS "subject.short_name", s.default_duration_minutes AS "subject.default_duration_minutes",
	g.id AS "group.id", g.name AS "group.name", g.year AS "group.year", g.course AS "group.course", g.student_count AS "group.student_count",
	a.id AS "audience.id", a.name AS "audience.name", a.capacity AS "audience.capacity", a.resources AS "audience.resources",
	t.id AS "teacher.id", t.user_id AS "teacher.user_id", u.first_name AS "teacher.first_name", u.last_name AS "teacher.last_name", u.middle_name AS "teacher.middle_name"`

const lessonDetailJoins = `FROM lessons l
	JOIN subjects s ON s.id = l.subject_id
	JOIN groups g ON g.id = l.group_id
	JOIN audiences a ON a.id = l.audience_id
	JOIN teachers t ON t.id = l.teacher_id
	JOIN users u ON u.id = t.user_id`

// LessonRepository manages persistence for scheduled lessons.
type LessonRepository struct {
	db *sqlx.DB
}

// NewLessonRepository constructs a LessonRepository.
func NewLessonRepository(db *sqlx.DB) *LessonRepository {
	return &LessonRepository{db: db}
}

// ListDetailed returns lessons matching the filter with all relations
// resolved in a single join, ordered chronologically.
func (r *LessonRepository) ListDetailed(ctx context.Context, filter models.LessonFilter) ([]models.LessonDetail, error) {
	base := lessonDetailJoins + " WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.GroupID != "" {
		conditions = append(conditions, fmt.Sprintf("l.group_id = $%d", len(args)+1))
		args = append(args, filter.GroupID)
	}
	if filter.TeacherID != "" {
		conditions = append(conditions, fmt.Sprintf("l.teacher_id = $%d", len(args)+1))
		args = append(args, filter.TeacherID)
	}
	if filter.StartDate != nil {
		conditions = append(conditions, fmt.Sprintf("l.start_at >= $%d", len(args)+1))
		args = append(args, *filter.StartDate)
	}
	if filter.EndDate != nil {
		conditions = append(conditions, fmt.Sprintf("l.start_at < $%d", len(args)+1))
		args = append(args, *filter.EndDate)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf("SELECT %s %s ORDER BY l.start_at ASC", lessonDetailColumns, base)
	var lessons []models.LessonDetail
	if err := r.db.SelectContext(ctx, &lessons, query, args...); err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	return lessons, nil
}

// FindByID fetches a lesson by ID.
func (r *LessonRepository) FindByID(ctx context.Context, id string) (*models.Lesson, error) {
	const query = `SELECT id, subject_id, group_id, teacher_id, audience_id, start_at, end_at, created_by, created_at FROM lessons WHERE id = $1`
	var lesson models.Lesson
	if err := r.db.GetContext(ctx, &lesson, query, id); err != nil {
		return nil, err
	}
	return &lesson, nil
}

// Create inserts a new lesson record.
func (r *LessonRepository) Create(ctx context.Context, lesson *models.Lesson) error {
	if lesson.ID == "" {
		lesson.ID = uuid.NewString()
	}
	if lesson.CreatedAt.IsZero() {
		lesson.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO lessons (id, subject_id, group_id, teacher_id, audience_id, start_at, end_at, created_by, created_at)
		VALUES (:id, :subject_id, :group_id, :teacher_id, :audience_id, :start_at, :end_at, :created_by, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, lesson); err != nil {
		return fmt.Errorf("create lesson: %w", err)
	}
	return nil
}

// Update modifies an existing lesson record.
func (r *LessonRepository) Update(ctx context.Context, lesson *models.Lesson) error {
	const query = `UPDATE lessons SET subject_id = :subject_id, group_id = :group_id, teacher_id = :teacher_id, audience_id = :audience_id, start_at = :start_at, end_at = :end_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, lesson); err != nil {
		return fmt.Errorf("update lesson: %w", err)
	}
	return nil
}

// Delete removes a lesson record.
func (r *LessonRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM lessons WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete lesson: %w", err)
	}
	return nil
}

// DeleteAll wipes the lessons table. Each generation run starts from a
// clean slate.
func (r *LessonRepository) DeleteAll(ctx context.Context) error {
	const query = `DELETE FROM lessons`
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("delete all lessons: %w", err)
	}
	return nil
}
