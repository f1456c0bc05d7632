package dto

import "time"

// CreateLessonRequest describes payload for manually placing a lesson.
type CreateLessonRequest struct {
	SubjectID  string    `json:"subjectId" validate:"required,uuid"`
	GroupID    string    `json:"groupId" validate:"required,uuid"`
	TeacherID  string    `json:"teacherId" validate:"required,uuid"`
	AudienceID string    `json:"audienceId" validate:"required,uuid"`
	StartAt    time.Time `json:"startAt" validate:"required"`
	EndAt      time.Time `json:"endAt" validate:"required,gtfield=StartAt"`
}

// UpdateLessonRequest describes a partial lesson update.
type UpdateLessonRequest struct {
	SubjectID  *string    `json:"subjectId" validate:"omitempty,uuid"`
	GroupID    *string    `json:"groupId" validate:"omitempty,uuid"`
	TeacherID  *string    `json:"teacherId" validate:"omitempty,uuid"`
	AudienceID *string    `json:"audienceId" validate:"omitempty,uuid"`
	StartAt    *time.Time `json:"startAt"`
	EndAt      *time.Time `json:"endAt"`
}

// ScheduleQuery filters composed schedule reads.
type ScheduleQuery struct {
	GroupID   string `form:"groupId" validate:"omitempty,uuid"`
	TeacherID string `form:"teacherId" validate:"omitempty,uuid"`
	StartDate string `form:"startDate" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `form:"endDate" validate:"omitempty,datetime=2006-01-02"`
}

// ExportScheduleQuery selects the export format alongside schedule filters.
type ExportScheduleQuery struct {
	ScheduleQuery
	Format string `form:"format" validate:"omitempty,oneof=csv pdf"`
}
