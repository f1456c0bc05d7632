package dto

// CreateSubjectRequest describes payload for creating a subject.
type CreateSubjectRequest struct {
	Name                   string `json:"name" validate:"required"`
	ShortName              string `json:"shortName" validate:"required"`
	DefaultDurationMinutes int    `json:"defaultDurationMinutes" validate:"omitempty,min=1,max=480"`
}

// UpdateSubjectRequest describes a partial subject update.
type UpdateSubjectRequest struct {
	Name                   *string `json:"name" validate:"omitempty,min=1"`
	ShortName              *string `json:"shortName" validate:"omitempty,min=1"`
	DefaultDurationMinutes *int    `json:"defaultDurationMinutes" validate:"omitempty,min=1,max=480"`
}
