package dto

// CreateGroupRequest describes payload for creating a student group.
type CreateGroupRequest struct {
	Name         string `json:"name" validate:"required"`
	Year         int    `json:"year" validate:"required,min=1900,max=2200"`
	Course       int    `json:"course" validate:"required,min=1,max=8"`
	StudentCount int    `json:"studentCount" validate:"omitempty,min=0"`
}

// UpdateGroupRequest describes a partial group update.
type UpdateGroupRequest struct {
	Name         *string `json:"name" validate:"omitempty,min=1"`
	Year         *int    `json:"year" validate:"omitempty,min=1900,max=2200"`
	Course       *int    `json:"course" validate:"omitempty,min=1,max=8"`
	StudentCount *int    `json:"studentCount" validate:"omitempty,min=0"`
}
