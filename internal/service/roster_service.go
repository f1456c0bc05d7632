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

type rosterTeacherLister interface {
	ListAll(ctx context.Context) ([]models.TeacherInfo, error)
}

type rosterStudentStore interface {
	ListAll(ctx context.Context) ([]models.Student, error)
	ListByGroup(ctx context.Context, groupID string) ([]models.Student, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	UpdateGroup(ctx context.Context, id, groupID string) error
}

type rosterGroupChecker interface {
	FindByID(ctx context.Context, id string) (*models.Group, error)
}

// RosterService exposes the teaching and student rosters and handles
// student group reassignment.
type RosterService struct {
	teachers  rosterTeacherLister
	students  rosterStudentStore
	groups    rosterGroupChecker
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRosterService constructs a RosterService.
func NewRosterService(teachers rosterTeacherLister, students rosterStudentStore, groups rosterGroupChecker, validate *validator.Validate, logger *zap.Logger) *RosterService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RosterService{teachers: teachers, students: students, groups: groups, validator: validate, logger: logger}
}

// ListTeachers returns the teaching roster with resolved names.
func (s *RosterService) ListTeachers(ctx context.Context) ([]models.TeacherInfo, error) {
	teachers, err := s.teachers.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teachers")
	}
	if teachers == nil {
		teachers = []models.TeacherInfo{}
	}
	return teachers, nil
}

// ListStudents returns student records, optionally narrowed to one group.
func (s *RosterService) ListStudents(ctx context.Context, groupID string) ([]models.Student, error) {
	var (
		students []models.Student
		err      error
	)
	if groupID != "" {
		students, err = s.students.ListByGroup(ctx, groupID)
	} else {
		students, err = s.students.ListAll(ctx)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	if students == nil {
		students = []models.Student{}
	}
	return students, nil
}

// ReassignStudent moves a student to a different group.
func (s *RosterService) ReassignStudent(ctx context.Context, studentID string, req dto.ReassignStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reassignment payload")
	}

	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	if _, err := s.groups.FindByID(ctx, req.GroupID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "target group does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load group")
	}

	if err := s.students.UpdateGroup(ctx, studentID, req.GroupID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reassign student")
	}

	student.GroupID = req.GroupID
	return student, nil
}
