package dto

// CreateAudienceRequest describes payload for creating a lecture room.
type CreateAudienceRequest struct {
	Name      string   `json:"name" validate:"required"`
	Capacity  int      `json:"capacity" validate:"omitempty,min=0"`
	Resources []string `json:"resources"`
}

// UpdateAudienceRequest describes a partial room update.
type UpdateAudienceRequest struct {
	Name      *string   `json:"name" validate:"omitempty,min=1"`
	Capacity  *int      `json:"capacity" validate:"omitempty,min=0"`
	Resources *[]string `json:"resources"`
}
