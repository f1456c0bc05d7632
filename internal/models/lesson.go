package models

import "time"

// Lesson is a concrete scheduled occurrence anchored to absolute timestamps.
// Each generation run wipes the table and writes the new week from scratch.
type Lesson struct {
	ID         string    `db:"id" json:"id"`
	SubjectID  string    `db:"subject_id" json:"subject_id"`
	GroupID    string    `db:"group_id" json:"group_id"`
	TeacherID  string    `db:"teacher_id" json:"teacher_id"`
	AudienceID string    `db:"audience_id" json:"audience_id"`
	StartAt    time.Time `db:"start_at" json:"start_at"`
	EndAt      time.Time `db:"end_at" json:"end_at"`
	CreatedBy  *string   `db:"created_by" json:"created_by,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// LessonDetail is the composed read model: a lesson with its relations
// resolved. Built by the repository layer in a single join.
type LessonDetail struct {
	Lesson
	Subject  Subject     `json:"subject"`
	Group    Group       `json:"group"`
	Audience Audience    `json:"audience"`
	Teacher  TeacherInfo `json:"teacher"`
}

// LessonFilter narrows schedule reads.
type LessonFilter struct {
	GroupID   string
	TeacherID string
	StartDate *time.Time
	EndDate   *time.Time
}
