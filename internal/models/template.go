package models

import "github.com/jmoiron/sqlx/types"

// LessonTemplate is a recurring weekly requirement: place WeeklyFrequency
// lessons of the subject for the group with the teacher. Preferred days and
// times are carried for future heuristics but not consulted by the current
// placement algorithm.
type LessonTemplate struct {
	ID              string         `db:"id" json:"id"`
	SubjectID       string         `db:"subject_id" json:"subject_id"`
	GroupID         string         `db:"group_id" json:"group_id"`
	TeacherID       string         `db:"teacher_id" json:"teacher_id"`
	WeeklyFrequency int            `db:"weekly_frequency" json:"weekly_frequency"`
	PreferredDays   types.JSONText `db:"preferred_days" json:"preferred_days"`
	PreferredTimes  types.JSONText `db:"preferred_times" json:"preferred_times"`
}
