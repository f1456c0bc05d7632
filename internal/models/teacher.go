package models

// Teacher links a user account to the teaching roster.
type Teacher struct {
	ID     string `db:"id" json:"id"`
	UserID string `db:"user_id" json:"user_id"`
}

// TeacherInfo is a teacher joined with the owning user's name, used in
// composed schedule views.
type TeacherInfo struct {
	ID         string `db:"id" json:"id"`
	UserID     string `db:"user_id" json:"user_id"`
	FirstName  string `db:"first_name" json:"first_name"`
	LastName   string `db:"last_name" json:"last_name"`
	MiddleName string `db:"middle_name" json:"middle_name"`
}

// Student links a user account to a group.
type Student struct {
	ID      string `db:"id" json:"id"`
	UserID  string `db:"user_id" json:"user_id"`
	GroupID string `db:"group_id" json:"group_id"`
}
