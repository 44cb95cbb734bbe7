package api

import (
	"time"

	"github.com/taskhive/taskhive-api/internal/domain"
	"github.com/taskhive/taskhive-api/internal/service/auth"
)

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Name     string `json:"name"     validate:"required,max=100"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// UpdateProfileRequest defines the payload for the profile update endpoint.
type UpdateProfileRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// ChangePasswordRequest defines the payload for the password change endpoint.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword"     validate:"required,min=8,max=72"`
}

// AuthData is the success payload for register, login and refresh: the user
// record (password hash never serialized) plus a fresh token pair.
type AuthData struct {
	User   *domain.User   `json:"user,omitempty"`
	Tokens auth.TokenPair `json:"tokens"`
}

// CreateTaskRequest defines the payload for creating a relational task.
// Optional fields keep the domain defaults when absent.
type CreateTaskRequest struct {
	Title       string     `json:"title"       validate:"required,max=255"`
	Description *string    `json:"description" validate:"omitempty,max=1000"`
	Completed   *bool      `json:"completed"`
	Priority    string     `json:"priority"    validate:"omitempty,oneof=low medium high"`
	DueDate     *time.Time `json:"dueDate"`
}

// UpdateTaskRequest defines the payload for partially updating a relational
// task. Absent fields leave the stored value untouched.
type UpdateTaskRequest struct {
	Title       *string    `json:"title"       validate:"omitempty,max=255"`
	Description *string    `json:"description" validate:"omitempty,max=1000"`
	Completed   *bool      `json:"completed"`
	Priority    *string    `json:"priority"    validate:"omitempty,oneof=low medium high"`
	DueDate     *time.Time `json:"dueDate"`
}

// toUpdate converts the request into a domain partial update.
func (r UpdateTaskRequest) toUpdate() domain.TaskUpdate {
	update := domain.TaskUpdate{
		Title:       r.Title,
		Description: r.Description,
		Completed:   r.Completed,
		DueDate:     r.DueDate,
	}
	if r.Priority != nil {
		p := domain.Priority(*r.Priority)
		update.Priority = &p
	}
	return update
}

// AttachmentRequest is one attachment on a document task payload. All four
// fields are required together. The MIME type travels as "type", matching
// the stored field, so attachments round-trip unchanged.
type AttachmentRequest struct {
	Name     string `json:"name" validate:"required"`
	URL      string `json:"url"  validate:"required,url"`
	Size     int64  `json:"size" validate:"min=0"`
	MIMEType string `json:"type" validate:"required"`
}

func (a AttachmentRequest) toDomain() domain.Attachment {
	return domain.Attachment{
		Name:     a.Name,
		URL:      a.URL,
		Size:     a.Size,
		MIMEType: a.MIMEType,
	}
}

// CreateDocTaskRequest defines the payload for creating a document task.
type CreateDocTaskRequest struct {
	Title       string              `json:"title"       validate:"required,max=255"`
	Description *string             `json:"description" validate:"omitempty,max=1000"`
	Completed   *bool               `json:"completed"`
	Priority    string              `json:"priority"    validate:"omitempty,oneof=low medium high"`
	DueDate     *time.Time          `json:"dueDate"`
	Category    *string             `json:"category"    validate:"omitempty,max=50"`
	Tags        []string            `json:"tags"        validate:"omitempty,dive,max=20"`
	Attachments []AttachmentRequest `json:"attachments" validate:"omitempty,dive"`
}

// UpdateDocTaskRequest defines the payload for partially updating a document
// task.
type UpdateDocTaskRequest struct {
	Title       *string              `json:"title"       validate:"omitempty,max=255"`
	Description *string              `json:"description" validate:"omitempty,max=1000"`
	Completed   *bool                `json:"completed"`
	Priority    *string              `json:"priority"    validate:"omitempty,oneof=low medium high"`
	DueDate     *time.Time           `json:"dueDate"`
	Category    *string              `json:"category"    validate:"omitempty,max=50"`
	Tags        *[]string            `json:"tags"        validate:"omitempty,dive,max=20"`
	Attachments *[]AttachmentRequest `json:"attachments" validate:"omitempty,dive"`
}

func (r UpdateDocTaskRequest) toUpdate() domain.DocTaskUpdate {
	update := domain.DocTaskUpdate{
		Title:       r.Title,
		Description: r.Description,
		Completed:   r.Completed,
		DueDate:     r.DueDate,
		Category:    r.Category,
		Tags:        r.Tags,
	}
	if r.Priority != nil {
		p := domain.Priority(*r.Priority)
		update.Priority = &p
	}
	if r.Attachments != nil {
		attachments := make([]domain.Attachment, 0, len(*r.Attachments))
		for _, a := range *r.Attachments {
			attachments = append(attachments, a.toDomain())
		}
		update.Attachments = &attachments
	}
	return update
}
