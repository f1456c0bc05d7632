package models

import "github.com/jmoiron/sqlx/types"

// Audience is a lecture room. The generator treats audiences as an
// interchangeable pool; capacity and resources are not yet matched against
// group size or subject needs.
type Audience struct {
	ID        string         `db:"id" json:"id"`
	Name      string         `db:"name" json:"name"`
	Capacity  int            `db:"capacity" json:"capacity"`
	Resources types.JSONText `db:"resources" json:"resources"`
}
