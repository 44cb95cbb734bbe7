package domain

import (
	"encoding/json"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Field length bounds specific to the document task variant.
const (
	MaxCategoryLen = 50
	MaxTagLen      = 20
)

// Attachment is a file reference carried by a document task. All fields are
// required together: an attachment with any of them missing is invalid.
type Attachment struct {
	Name     string `json:"name"     bson:"name"`
	URL      string `json:"url"      bson:"url"`
	Size     int64  `json:"size"     bson:"size"`
	MIMEType string `json:"type"     bson:"type"`
}

// DocTask is the document task record. Unlike the relational variant, every
// document task belongs to exactly one owner and all operations are scoped
// to that owner.
type DocTask struct {
	ID          string       `json:"id"          bson:"_id,omitempty"`
	OwnerID     uuid.UUID    `json:"userId"      bson:"owner_id"`
	Title       string       `json:"title"       bson:"title"`
	Description *string      `json:"description,omitempty" bson:"description,omitempty"`
	Completed   bool         `json:"completed"   bson:"completed"`
	Priority    Priority     `json:"priority"    bson:"priority"`
	DueDate     *time.Time   `json:"dueDate,omitempty"     bson:"due_date,omitempty"`
	Category    *string      `json:"category,omitempty"    bson:"category,omitempty"`
	Tags        []string     `json:"tags,omitempty"        bson:"tags,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty" bson:"attachments,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"   bson:"created_at"`
	UpdatedAt   time.Time    `json:"updatedAt"   bson:"updated_at"`
}

// IsOverdue reports whether the task's due date has passed without the task
// being completed. This is derived at read time and never stored.
func (t *DocTask) IsOverdue(now time.Time) bool {
	return t.DueDate != nil && t.DueDate.Before(now) && !t.Completed
}

// MarshalJSON serializes the task with the derived isOverdue attribute.
// Only the JSON surface carries it; the bson mapping is untouched so the
// value is computed fresh on every read.
func (t DocTask) MarshalJSON() ([]byte, error) {
	type docTaskAlias DocTask
	return json.Marshal(struct {
		docTaskAlias
		IsOverdue bool `json:"isOverdue"`
	}{
		docTaskAlias: docTaskAlias(t),
		IsOverdue:    t.IsOverdue(time.Now().UTC()),
	})
}

// NewDocTask builds an owner-scoped task with defaults applied. The due
// date, when present, must not be in the past at creation time. Returns a
// ValidationError listing every violated field.
func NewDocTask(ownerID uuid.UUID, title string, description *string, priority Priority,
	dueDate *time.Time, category *string, tags []string, attachments []Attachment) (*DocTask, error) {
	if priority == "" {
		priority = PriorityMedium
	}

	now := time.Now().UTC()
	task := &DocTask{
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
		Completed:   false,
		Priority:    priority,
		DueDate:     dueDate,
		Category:    category,
		Tags:        tags,
		Attachments: attachments,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := task.Validate(now); err != nil {
		return nil, err
	}
	return task, nil
}

// Validate checks field constraints and creation-time invariants against
// the given clock, collecting every violation.
func (t *DocTask) Validate(now time.Time) error {
	verr := &ValidationError{}
	validateTaskCore(verr, t.Title, t.Description, t.Priority)

	if t.OwnerID == uuid.Nil {
		verr.Add("userId", "is required")
	}

	if t.DueDate != nil && t.DueDate.Before(now) {
		verr.Add("dueDate", "must not be in the past")
	}

	validateDocExtras(verr, t.Category, t.Tags, t.Attachments)
	return verr.OrNil()
}

func validateDocExtras(verr *ValidationError, category *string, tags []string, attachments []Attachment) {
	if category != nil && utf8.RuneCountInString(*category) > MaxCategoryLen {
		verr.Add("category", "must not exceed 50 characters")
	}

	for _, tag := range tags {
		if utf8.RuneCountInString(tag) > MaxTagLen {
			verr.Add("tags", "each tag must not exceed 20 characters")
			break
		}
	}

	for _, a := range attachments {
		if a.Name == "" || a.URL == "" || a.MIMEType == "" || a.Size < 0 {
			verr.Add("attachments", "name, url, size and type are all required")
			break
		}
	}
}

// DocTaskUpdate carries a partial update: nil fields are left untouched.
// Tags and Attachments are replaced wholesale when present.
type DocTaskUpdate struct {
	Title       *string       `json:"title,omitempty"`
	Description *string       `json:"description,omitempty"`
	Completed   *bool         `json:"completed,omitempty"`
	Priority    *Priority     `json:"priority,omitempty"`
	DueDate     *time.Time    `json:"dueDate,omitempty"`
	Category    *string       `json:"category,omitempty"`
	Tags        *[]string     `json:"tags,omitempty"`
	Attachments *[]Attachment `json:"attachments,omitempty"`
}

// Empty reports whether the update carries no fields at all.
func (u *DocTaskUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && u.Completed == nil &&
		u.Priority == nil && u.DueDate == nil && u.Category == nil &&
		u.Tags == nil && u.Attachments == nil
}

// Validate checks the fields that are present, collecting every violation.
// A due date supplied in an update must not be in the past, mirroring the
// creation-time invariant.
func (u *DocTaskUpdate) Validate(now time.Time) error {
	verr := &ValidationError{}
	validateTaskUpdateCore(verr, u.Title, u.Description, u.Priority)

	if u.DueDate != nil && u.DueDate.Before(now) {
		verr.Add("dueDate", "must not be in the past")
	}

	var tags []string
	if u.Tags != nil {
		tags = *u.Tags
	}
	var attachments []Attachment
	if u.Attachments != nil {
		attachments = *u.Attachments
	}
	validateDocExtras(verr, u.Category, tags, attachments)

	return verr.OrNil()
}

// Apply copies the present fields onto the task and bumps UpdatedAt.
func (u *DocTaskUpdate) Apply(t *DocTask) {
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
	if u.Category != nil {
		t.Category = u.Category
	}
	if u.Tags != nil {
		t.Tags = *u.Tags
	}
	if u.Attachments != nil {
		t.Attachments = *u.Attachments
	}
	t.UpdatedAt = time.Now().UTC()
}
