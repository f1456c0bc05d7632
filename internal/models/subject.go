package models

// Subject is a taught discipline.
type Subject struct {
	ID                     string `db:"id" json:"id"`
	Name                   string `db:"name" json:"name"`
	ShortName              string `db:"short_name" json:"short_name"`
	DefaultDurationMinutes int    `db:"default_duration_minutes" json:"default_duration_minutes"`
}
