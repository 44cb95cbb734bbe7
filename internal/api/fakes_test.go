package api

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/taskhive/taskhive-api/internal/domain"
	"github.com/taskhive/taskhive-api/internal/store"
)

// In-memory store fakes for handler tests. They honor the store contracts
// (sentinel errors, owner scoping, partial-update semantics) without an
// engine behind them.

type memUserStore struct {
	byID map[uuid.UUID]*domain.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{byID: make(map[uuid.UUID]*domain.User)}
}

func (s *memUserStore) Create(ctx context.Context, user *domain.User) error {
	for _, existing := range s.byID {
		if existing.Email == user.Email {
			return store.ErrEmailExists
		}
	}
	clone := *user
	s.byID[user.ID] = &clone
	return nil
}

func (s *memUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, ok := s.byID[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}

func (s *memUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, user := range s.byID {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (s *memUserStore) Update(ctx context.Context, user *domain.User) error {
	if _, ok := s.byID[user.ID]; !ok {
		return store.ErrUserNotFound
	}
	clone := *user
	s.byID[user.ID] = &clone
	return nil
}

func (s *memUserStore) UpdatePassword(ctx context.Context, id uuid.UUID, hashedPassword string) error {
	user, ok := s.byID[id]
	if !ok {
		return store.ErrUserNotFound
	}
	user.HashedPassword = hashedPassword
	return nil
}

func (s *memUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := s.byID[id]; !ok {
		return store.ErrUserNotFound
	}
	delete(s.byID, id)
	return nil
}

type memTaskStore struct {
	byID   map[int64]*domain.Task
	nextID int64
	err    error // When set, every operation fails with it.
}

func newMemTaskStore() *memTaskStore {
	return &memTaskStore{byID: make(map[int64]*domain.Task), nextID: 1}
}

func matchesFilters(title string, description *string, completed bool, priority domain.Priority, filters store.TaskFilters) bool {
	if filters.Completed != nil && completed != *filters.Completed {
		return false
	}
	if filters.Priority != "" && priority != filters.Priority {
		return false
	}
	if filters.Search != "" {
		needle := strings.ToLower(filters.Search)
		haystack := strings.ToLower(title)
		if description != nil {
			haystack += " " + strings.ToLower(*description)
		}
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}

func (s *memTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if s.err != nil {
		return s.err
	}
	if err := task.Validate(); err != nil {
		return err
	}
	task.ID = s.nextID
	s.nextID++
	clone := *task
	s.byID[task.ID] = &clone
	return nil
}

func (s *memTaskStore) List(ctx context.Context, filters store.TaskFilters) ([]domain.Task, error) {
	if s.err != nil {
		return nil, s.err
	}
	tasks := []domain.Task{}
	for _, task := range s.byID {
		if matchesFilters(task.Title, task.Description, task.Completed, task.Priority, filters) {
			tasks = append(tasks, *task)
		}
	}
	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].ID > tasks[j].ID
		}
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
	return tasks, nil
}

func (s *memTaskStore) ListPage(ctx context.Context, filters store.TaskFilters, page store.PageRequest) (*store.Page[domain.Task], error) {
	if s.err != nil {
		return nil, s.err
	}
	page = page.Normalize()
	all, err := s.List(ctx, filters)
	if err != nil {
		return nil, err
	}

	start := page.Offset()
	if start > len(all) {
		start = len(all)
	}
	end := start + page.Limit
	if end > len(all) {
		end = len(all)
	}

	return store.NewPage(all[start:end], page, int64(len(all))), nil
}

func (s *memTaskStore) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	if s.err != nil {
		return nil, s.err
	}
	task, ok := s.byID[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	clone := *task
	return &clone, nil
}

func (s *memTaskStore) Update(ctx context.Context, id int64, update domain.TaskUpdate) (*domain.Task, error) {
	if s.err != nil {
		return nil, s.err
	}
	task, ok := s.byID[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	if update.Empty() {
		clone := *task
		return &clone, nil
	}
	if err := update.Validate(); err != nil {
		return nil, err
	}
	update.Apply(task)
	clone := *task
	return &clone, nil
}

func (s *memTaskStore) Delete(ctx context.Context, id int64) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	if _, ok := s.byID[id]; !ok {
		return false, nil
	}
	delete(s.byID, id)
	return true, nil
}

func (s *memTaskStore) ByStatus(ctx context.Context, completed bool) ([]domain.Task, error) {
	return s.List(ctx, store.TaskFilters{Completed: &completed})
}

func (s *memTaskStore) ByPriority(ctx context.Context, priority domain.Priority) ([]domain.Task, error) {
	return s.List(ctx, store.TaskFilters{Priority: priority})
}

type memDocTaskStore struct {
	byID   map[string]*domain.DocTask
	nextID int
	now    func() time.Time
}

func newMemDocTaskStore() *memDocTaskStore {
	return &memDocTaskStore{
		byID: make(map[string]*domain.DocTask),
		now:  time.Now,
	}
}

func (s *memDocTaskStore) ownedBy(id string, ownerID uuid.UUID) (*domain.DocTask, bool) {
	task, ok := s.byID[id]
	if !ok || task.OwnerID != ownerID {
		return nil, false
	}
	return task, true
}

func (s *memDocTaskStore) Create(ctx context.Context, task *domain.DocTask) error {
	if err := task.Validate(s.now().Add(-time.Minute)); err != nil {
		return err
	}
	s.nextID++
	task.ID = fmt.Sprintf("%024x", s.nextID)
	clone := *task
	s.byID[task.ID] = &clone
	return nil
}

func (s *memDocTaskStore) List(ctx context.Context, ownerID uuid.UUID, filters store.TaskFilters) ([]domain.DocTask, error) {
	tasks := []domain.DocTask{}
	for _, task := range s.byID {
		if task.OwnerID != ownerID {
			continue
		}
		if matchesFilters(task.Title, task.Description, task.Completed, task.Priority, filters) {
			tasks = append(tasks, *task)
		}
	}
	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].ID > tasks[j].ID
		}
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
	return tasks, nil
}

func (s *memDocTaskStore) ListPage(ctx context.Context, ownerID uuid.UUID, filters store.TaskFilters, page store.PageRequest) (*store.Page[domain.DocTask], error) {
	page = page.Normalize()
	all, err := s.List(ctx, ownerID, filters)
	if err != nil {
		return nil, err
	}

	start := page.Offset()
	if start > len(all) {
		start = len(all)
	}
	end := start + page.Limit
	if end > len(all) {
		end = len(all)
	}

	return store.NewPage(all[start:end], page, int64(len(all))), nil
}

func (s *memDocTaskStore) GetByID(ctx context.Context, ownerID uuid.UUID, id string) (*domain.DocTask, error) {
	task, ok := s.ownedBy(id, ownerID)
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	clone := *task
	return &clone, nil
}

func (s *memDocTaskStore) Update(ctx context.Context, ownerID uuid.UUID, id string, update domain.DocTaskUpdate) (*domain.DocTask, error) {
	task, ok := s.ownedBy(id, ownerID)
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	if update.Empty() {
		clone := *task
		return &clone, nil
	}
	if err := update.Validate(s.now().Add(-time.Minute)); err != nil {
		return nil, err
	}
	update.Apply(task)
	clone := *task
	return &clone, nil
}

func (s *memDocTaskStore) Delete(ctx context.Context, ownerID uuid.UUID, id string) (bool, error) {
	if _, ok := s.ownedBy(id, ownerID); !ok {
		return false, nil
	}
	delete(s.byID, id)
	return true, nil
}

func (s *memDocTaskStore) ByStatus(ctx context.Context, ownerID uuid.UUID, completed bool) ([]domain.DocTask, error) {
	return s.List(ctx, ownerID, store.TaskFilters{Completed: &completed})
}

func (s *memDocTaskStore) ByPriority(ctx context.Context, ownerID uuid.UUID, priority domain.Priority) ([]domain.DocTask, error) {
	return s.List(ctx, ownerID, store.TaskFilters{Priority: priority})
}

func (s *memDocTaskStore) ByCategory(ctx context.Context, ownerID uuid.UUID, category string) ([]domain.DocTask, error) {
	tasks := []domain.DocTask{}
	for _, task := range s.byID {
		if task.OwnerID == ownerID && task.Category != nil && *task.Category == category {
			tasks = append(tasks, *task)
		}
	}
	return tasks, nil
}

func (s *memDocTaskStore) Overdue(ctx context.Context, ownerID uuid.UUID) ([]domain.DocTask, error) {
	now := s.now()
	tasks := []domain.DocTask{}
	for _, task := range s.byID {
		if task.OwnerID == ownerID && task.IsOverdue(now) {
			tasks = append(tasks, *task)
		}
	}
	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].DueDate.Before(*tasks[j].DueDate)
	})
	return tasks, nil
}

func (s *memDocTaskStore) Stats(ctx context.Context, ownerID uuid.UUID) (*store.TaskStats, error) {
	now := s.now()
	stats := &store.TaskStats{}
	for _, task := range s.byID {
		if task.OwnerID != ownerID {
			continue
		}
		stats.Total++
		if task.Completed {
			stats.Completed++
		} else {
			stats.Pending++
		}
		if task.IsOverdue(now) {
			stats.Overdue++
		}
		switch task.Priority {
		case domain.PriorityHigh:
			stats.HighPriority++
		case domain.PriorityMedium:
			stats.MediumPriority++
		case domain.PriorityLow:
			stats.LowPriority++
		}
	}
	return stats, nil
}

// Interface conformance guards.
var (
	_ store.UserStore    = (*memUserStore)(nil)
	_ store.TaskStore    = (*memTaskStore)(nil)
	_ store.DocTaskStore = (*memDocTaskStore)(nil)
)
