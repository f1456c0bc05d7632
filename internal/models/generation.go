package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// GenerationStatus enumerates lifecycle states of a generation run.
type GenerationStatus string

const (
	GenerationStatusPending GenerationStatus = "PENDING"
	GenerationStatusRunning GenerationStatus = "RUNNING"
	GenerationStatusSuccess GenerationStatus = "SUCCESS"
	GenerationStatusFailed  GenerationStatus = "FAILED"
)

// ScheduleGenerationRun is the append-only audit record of one generator
// invocation.
type ScheduleGenerationRun struct {
	ID            string           `db:"id" json:"id"`
	Status        GenerationStatus `db:"status" json:"status"`
	Summary       types.JSONText   `db:"summary" json:"summary"`
	ConflictCount int              `db:"conflict_count" json:"conflict_count"`
	CreatedBy     *string          `db:"created_by" json:"created_by,omitempty"`
	CreatedAt     time.Time        `db:"created_at" json:"created_at"`
}

// RunSummary is the JSON body stored in ScheduleGenerationRun.Summary.
type RunSummary struct {
	TotalTemplates      int      `json:"totalTemplates,omitempty"`
	TotalLessonsToPlace int      `json:"totalLessonsToPlace,omitempty"`
	PlacedLessons       int      `json:"placedLessons,omitempty"`
	UnplacedLessons     int      `json:"unplacedLessons,omitempty"`
	Conflicts           []string `json:"conflicts,omitempty"`
	DurationMs          int64    `json:"durationMs"`
	Quality             int      `json:"quality,omitempty"`
	Error               string   `json:"error,omitempty"`
}
