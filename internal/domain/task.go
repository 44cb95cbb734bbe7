package domain

import (
	"time"
	"unicode/utf8"
)

// Priority orders tasks by urgency.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether the priority is one of the known values.
func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// Field length bounds shared by both task variants.
const (
	MaxTitleLen       = 255
	MaxDescriptionLen = 1000
)

// Task is the relational task record. Tasks in this variant are globally
// visible: there is no owner and every caller may read or mutate any record.
type Task struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	Completed   bool       `json:"completed"`
	Priority    Priority   `json:"priority"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// NewTask builds a task with defaults applied: not completed, medium
// priority when none is given. Returns a ValidationError listing every
// violated field.
func NewTask(title string, description *string, priority Priority, dueDate *time.Time) (*Task, error) {
	if priority == "" {
		priority = PriorityMedium
	}

	now := time.Now().UTC()
	task := &Task{
		Title:       title,
		Description: description,
		Completed:   false,
		Priority:    priority,
		DueDate:     dueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}
	return task, nil
}

// Validate checks field constraints, collecting every violation.
func (t *Task) Validate() error {
	verr := &ValidationError{}
	validateTaskCore(verr, t.Title, t.Description, t.Priority)
	return verr.OrNil()
}

// validateTaskCore applies the constraints shared by both task variants.
func validateTaskCore(verr *ValidationError, title string, description *string, priority Priority) {
	if title == "" {
		verr.Add("title", "is required")
	} else if utf8.RuneCountInString(title) > MaxTitleLen {
		verr.Add("title", "must be between 1 and 255 characters")
	}

	if description != nil && utf8.RuneCountInString(*description) > MaxDescriptionLen {
		verr.Add("description", "must not exceed 1000 characters")
	}

	if !priority.Valid() {
		verr.Add("priority", "must be low, medium, or high")
	}
}

// TaskUpdate carries a partial update: nil fields are left untouched.
type TaskUpdate struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Completed   *bool      `json:"completed,omitempty"`
	Priority    *Priority  `json:"priority,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
}

// Empty reports whether the update carries no fields at all.
func (u *TaskUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && u.Completed == nil &&
		u.Priority == nil && u.DueDate == nil
}

// Validate checks the fields that are present, collecting every violation.
func (u *TaskUpdate) Validate() error {
	verr := &ValidationError{}
	validateTaskUpdateCore(verr, u.Title, u.Description, u.Priority)
	return verr.OrNil()
}

func validateTaskUpdateCore(verr *ValidationError, title, description *string, priority *Priority) {
	if title != nil {
		if *title == "" {
			verr.Add("title", "must not be empty")
		} else if utf8.RuneCountInString(*title) > MaxTitleLen {
			verr.Add("title", "must be between 1 and 255 characters")
		}
	}

	if description != nil && utf8.RuneCountInString(*description) > MaxDescriptionLen {
		verr.Add("description", "must not exceed 1000 characters")
	}

	if priority != nil && !priority.Valid() {
		verr.Add("priority", "must be low, medium, or high")
	}
}

// Apply copies the present fields onto the task and bumps UpdatedAt.
func (u *TaskUpdate) Apply(t *Task) {
	if u.Title != nil {
		t.Title = *u.Title
	}
	if u.Description != nil {
		t.Description = u.Description
	}
	if u.Completed != nil {
		t.Completed = *u.Completed
	}
	if u.Priority != nil {
		t.Priority = *u.Priority
	}
	if u.DueDate != nil {
		t.DueDate = u.DueDate
	}
	t.UpdatedAt = time.Now().UTC()
}
