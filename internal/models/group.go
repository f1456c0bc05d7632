package models

// Group is a student cohort taught together.
type Group struct {
	ID           string `db:"id" json:"id"`
	Name         string `db:"name" json:"name"`
	Year         int    `db:"year" json:"year"`
	Course       int    `db:"course" json:"course"`
	StudentCount int    `db:"student_count" json:"student_count"`
}
