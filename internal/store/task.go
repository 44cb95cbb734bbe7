package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/taskhive/taskhive-api/internal/domain"
)

// TaskStore is the relational task repository. Its records are globally
// scoped: there is no owner and every caller may read or mutate any task.
// Identifiers are integers; callers are expected to reject non-numeric path
// input before reaching the store.
//
// TaskStore and DocTaskStore implement the same conceptual contract
// (CRUD + filter/paginate + status queries). The divergences are deliberate
// and documented per method: scoping, id space, and search semantics.
type TaskStore interface {
	// Create validates the task and persists it. Returns a
	// domain.ValidationError listing every violated field.
	Create(ctx context.Context, task *domain.Task) error

	// List returns all tasks matching the filters, newest-created-first.
	// Search matches a case-insensitive substring of title or description.
	List(ctx context.Context, filters TaskFilters) ([]domain.Task, error)

	// ListPage returns one page of tasks matching the filters.
	ListPage(ctx context.Context, filters TaskFilters, page PageRequest) (*Page[domain.Task], error)

	// GetByID returns the task with the given id, or ErrTaskNotFound.
	GetByID(ctx context.Context, id int64) (*domain.Task, error)

	// Update applies a partial update: absent fields are left untouched.
	// An empty update is a no-op that returns the current record.
	// Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, id int64, update domain.TaskUpdate) (*domain.Task, error)

	// Delete removes the task. The boolean reports whether a record was
	// actually removed; deleting a nonexistent id returns false, not an error.
	Delete(ctx context.Context, id int64) (bool, error)

	// ByStatus is List with a fixed completion predicate.
	ByStatus(ctx context.Context, completed bool) ([]domain.Task, error)

	// ByPriority is List with a fixed priority predicate.
	ByPriority(ctx context.Context, priority domain.Priority) ([]domain.Task, error)
}

// TaskStats are per-owner aggregate counts, computed in one pass.
type TaskStats struct {
	Total          int64 `json:"total" bson:"total"`
	Completed      int64 `json:"completed" bson:"completed"`
	Pending        int64 `json:"pending" bson:"pending"`
	Overdue        int64 `json:"overdue" bson:"overdue"`
	HighPriority   int64 `json:"highPriority" bson:"highPriority"`
	MediumPriority int64 `json:"mediumPriority" bson:"mediumPriority"`
	LowPriority    int64 `json:"lowPriority" bson:"lowPriority"`
}

// DocTaskStore is the document task repository. Every operation is scoped
// to an owner: a task id that exists but belongs to another owner behaves
// exactly like a nonexistent id (ErrTaskNotFound, never a permission error),
// so callers cannot learn that a foreign record exists. Identifiers are hex
// object ids; a structurally invalid id is treated as not-found rather than
// an error.
type DocTaskStore interface {
	// Create validates the task and persists it. The owner must reference
	// an existing user; a dangling owner yields ErrInvalidEntity.
	Create(ctx context.Context, task *domain.DocTask) error

	// List returns the owner's tasks matching the filters,
	// newest-created-first. Search uses the weighted full-text index
	// (title weighted above description).
	List(ctx context.Context, ownerID uuid.UUID, filters TaskFilters) ([]domain.DocTask, error)

	// ListPage returns one page of the owner's tasks matching the filters.
	ListPage(ctx context.Context, ownerID uuid.UUID, filters TaskFilters, page PageRequest) (*Page[domain.DocTask], error)

	// GetByID returns the owner's task with the given id, or ErrTaskNotFound.
	GetByID(ctx context.Context, ownerID uuid.UUID, id string) (*domain.DocTask, error)

	// Update applies a partial update: absent fields are left untouched.
	// An empty update is a no-op that returns the current record.
	Update(ctx context.Context, ownerID uuid.UUID, id string, update domain.DocTaskUpdate) (*domain.DocTask, error)

	// Delete removes the owner's task. The boolean reports whether a record
	// was actually removed.
	Delete(ctx context.Context, ownerID uuid.UUID, id string) (bool, error)

	// ByStatus is List with a fixed completion predicate.
	ByStatus(ctx context.Context, ownerID uuid.UUID, completed bool) ([]domain.DocTask, error)

	// ByPriority is List with a fixed priority predicate.
	ByPriority(ctx context.Context, ownerID uuid.UUID, priority domain.Priority) ([]domain.DocTask, error)

	// ByCategory is List with a fixed category predicate.
	ByCategory(ctx context.Context, ownerID uuid.UUID, category string) ([]domain.DocTask, error)

	// Overdue returns the owner's open tasks whose due date is strictly in
	// the past, sorted soonest-due-first.
	Overdue(ctx context.Context, ownerID uuid.UUID) ([]domain.DocTask, error)

	// Stats computes the owner's aggregate counts in a single pass.
	Stats(ctx context.Context, ownerID uuid.UUID) (*TaskStats, error)
}
