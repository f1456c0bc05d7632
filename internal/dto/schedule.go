package dto

// GenerationResult is the outcome of one schedule generation run.
type GenerationResult struct {
	Success         bool     `json:"success"`
	RunID           string   `json:"runId,omitempty"`
	TotalLessons    int      `json:"totalLessons"`
	PlacedLessons   int      `json:"placedLessons"`
	UnplacedLessons int      `json:"unplacedLessons"`
	Conflicts       []string `json:"conflicts"`
	DurationSeconds string   `json:"durationSeconds"`
	Error           string   `json:"error,omitempty"`
}

// ListRunsQuery paginates generation run history.
type ListRunsQuery struct {
	Page     int `form:"page" validate:"omitempty,min=1"`
	PageSize int `form:"pageSize" validate:"omitempty,min=1,max=100"`
}
