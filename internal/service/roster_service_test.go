package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uniplan/timetable-api/internal/dto"
	"github.com/uniplan/timetable-api/internal/models"
	appErrors "github.com/uniplan/timetable-api/pkg/errors"
)

type teacherListerStub struct {
	teachers []models.TeacherInfo
}

func (s *teacherListerStub) ListAll(ctx context.Context) ([]models.TeacherInfo, error) {
	return s.teachers, nil
}

type studentStoreStub struct {
	students map[string]*models.Student
	updated  map[string]string
}

func newStudentStoreStub(students ...*models.Student) *studentStoreStub {
	s := &studentStoreStub{students: map[string]*models.Student{}, updated: map[string]string{}}
	for _, st := range students {
		s.students[st.ID] = st
	}
	return s
}

func (s *studentStoreStub) ListAll(ctx context.Context) ([]models.Student, error) {
	var out []models.Student
	for _, st := range s.students {
		out = append(out, *st)
	}
	return out, nil
}

func (s *studentStoreStub) ListByGroup(ctx context.Context, groupID string) ([]models.Student, error) {
	var out []models.Student
	for _, st := range s.students {
		if st.GroupID == groupID {
			out = append(out, *st)
		}
	}
	return out, nil
}

func (s *studentStoreStub) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if st, ok := s.students[id]; ok {
		return st, nil
	}
	return nil, sql.ErrNoRows
}

func (s *studentStoreStub) UpdateGroup(ctx context.Context, id, groupID string) error {
	s.updated[id] = groupID
	return nil
}

type groupCheckerStub struct {
	groups map[string]*models.Group
}

func (s *groupCheckerStub) FindByID(ctx context.Context, id string) (*models.Group, error) {
	if g, ok := s.groups[id]; ok {
		return g, nil
	}
	return nil, sql.ErrNoRows
}

const (
	testGroupID  = "3f2504e0-4f89-41d3-9a0c-0305e82c3301"
	otherGroupID = "9b2d6606-9c3b-4f97-9d4e-52c0e676c6a2"
)

func newRosterFixture() (*studentStoreStub, *RosterService) {
	students := newStudentStoreStub(&models.Student{ID: "st-1", UserID: "u-1", GroupID: testGroupID})
	groups := &groupCheckerStub{groups: map[string]*models.Group{
		testGroupID:  {ID: testGroupID, Name: "CS-101"},
		otherGroupID: {ID: otherGroupID, Name: "CS-102"},
	}}
	svc := NewRosterService(&teacherListerStub{}, students, groups, nil, nil)
	return students, svc
}

func TestReassignStudent(t *testing.T) {
	students, svc := newRosterFixture()

	student, err := svc.ReassignStudent(context.Background(), "st-1", dto.ReassignStudentRequest{GroupID: otherGroupID})
	require.NoError(t, err)
	assert.Equal(t, otherGroupID, student.GroupID)
	assert.Equal(t, otherGroupID, students.updated["st-1"])
}

func TestReassignStudentUnknownStudent(t *testing.T) {
	_, svc := newRosterFixture()

	_, err := svc.ReassignStudent(context.Background(), "missing", dto.ReassignStudentRequest{GroupID: otherGroupID})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestReassignStudentUnknownGroup(t *testing.T) {
	students, svc := newRosterFixture()

	_, err := svc.ReassignStudent(context.Background(), "st-1", dto.ReassignStudentRequest{GroupID: "c56a4180-65aa-42ec-a945-5fd21dec0538"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, students.updated)
}
