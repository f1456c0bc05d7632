package dto

// CreateUserRequest describes payload for registering a new user account.
type CreateUserRequest struct {
	Role       string `json:"role" validate:"required,oneof=ADMIN TEACHER STUDENT"`
	FirstName  string `json:"firstName" validate:"required"`
	LastName   string `json:"lastName" validate:"required"`
	MiddleName string `json:"middleName"`
	Login      string `json:"login" validate:"required,min=3"`
	Password   string `json:"password" validate:"required,min=6"`
	GroupID    string `json:"groupId" validate:"omitempty,uuid"`
}

// UpdateUserRequest describes a partial user update.
type UpdateUserRequest struct {
	FirstName  *string `json:"firstName" validate:"omitempty,min=1"`
	LastName   *string `json:"lastName" validate:"omitempty,min=1"`
	MiddleName *string `json:"middleName"`
	Active     *bool   `json:"active"`
	Password   *string `json:"password" validate:"omitempty,min=6"`
}

// ReassignStudentRequest moves a student to another group.
type ReassignStudentRequest struct {
	GroupID string `json:"groupId" validate:"required,uuid"`
}

// ListUsersQuery filters user listings.
type ListUsersQuery struct {
	Role     string `form:"role" validate:"omitempty,oneof=ADMIN TEACHER STUDENT"`
	Active   *bool  `form:"active"`
	Search   string `form:"search"`
	Page     int    `form:"page" validate:"omitempty,min=1"`
	PageSize int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
}
