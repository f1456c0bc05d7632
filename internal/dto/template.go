package dto

// CreateTemplateRequest describes payload for creating a lesson template.
type CreateTemplateRequest struct {
	SubjectID       string   `json:"subjectId" validate:"required,uuid"`
	GroupID         string   `json:"groupId" validate:"required,uuid"`
	TeacherID       string   `json:"teacherId" validate:"required,uuid"`
	WeeklyFrequency int      `json:"weeklyFrequency" validate:"required,min=1,max=10"`
	PreferredDays   []int    `json:"preferredDays" validate:"omitempty,dive,min=1,max=5"`
	PreferredTimes  []string `json:"preferredTimes"`
}

// UpdateTemplateRequest describes a partial template update.
type UpdateTemplateRequest struct {
	SubjectID       *string   `json:"subjectId" validate:"omitempty,uuid"`
	GroupID         *string   `json:"groupId" validate:"omitempty,uuid"`
	TeacherID       *string   `json:"teacherId" validate:"omitempty,uuid"`
	WeeklyFrequency *int      `json:"weeklyFrequency" validate:"omitempty,min=1,max=10"`
	PreferredDays   *[]int    `json:"preferredDays" validate:"omitempty,dive,min=1,max=5"`
	PreferredTimes  *[]string `json:"preferredTimes"`
}
