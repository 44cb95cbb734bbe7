package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/taskhive/taskhive-api/internal/domain"
	"github.com/taskhive/taskhive-api/internal/platform/logger"
	"github.com/taskhive/taskhive-api/internal/store"
)

// taskColumns is the select list shared by every task query.
const taskColumns = "id, title, description, completed, priority, due_date, created_at, updated_at"

// sortColumns maps the store sort fields onto table columns.
var sortColumns = map[store.SortField]string{
	store.SortByCreatedAt: "created_at",
	store.SortByUpdatedAt: "updated_at",
	store.SortByTitle:     "title",
	store.SortByPriority:  "priority",
	store.SortByDueDate:   "due_date",
}

// TaskStore implements the store.TaskStore interface using a PostgreSQL
// database as the storage backend. Records are globally scoped: this variant
// has no owner column and every caller sees every task.
type TaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewTaskStore creates a new PostgreSQL implementation of store.TaskStore.
// If logger is nil, the default logger is used.
func NewTaskStore(db store.DBTX, logger *slog.Logger) *TaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &TaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

var _ store.TaskStore = (*TaskStore)(nil)

// filterClause renders the filter predicates as an AND-joined WHERE clause
// with positional placeholders. Search is a case-insensitive substring match
// over title or description. Returns the clause (possibly empty) and its
// arguments.
func filterClause(filters store.TaskFilters) (string, []any) {
	var conds []string
	var args []any

	if filters.Completed != nil {
		args = append(args, *filters.Completed)
		conds = append(conds, fmt.Sprintf("completed = $%d", len(args)))
	}

	if filters.Priority != "" {
		args = append(args, string(filters.Priority))
		conds = append(conds, fmt.Sprintf("priority = $%d", len(args)))
	}

	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", n, n))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// Create implements store.TaskStore.Create.
func (s *TaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()))
		return err
	}

	query := `
		INSERT INTO tasks (title, description, completed, priority, due_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err := s.db.QueryRowContext(
		ctx,
		query,
		task.Title,
		task.Description,
		task.Completed,
		task.Priority,
		task.DueDate,
		task.CreatedAt,
		task.UpdatedAt,
	).Scan(&task.ID)

	if err != nil {
		log.Error("failed to create task", slog.String("error", err.Error()))
		return err
	}

	log.Info("task created successfully", slog.Int64("task_id", task.ID))
	return nil
}

// List implements store.TaskStore.List. Results are ordered
// newest-created-first.
func (s *TaskStore) List(ctx context.Context, filters store.TaskFilters) ([]domain.Task, error) {
	where, args := filterClause(filters)
	query := fmt.Sprintf("SELECT %s FROM tasks%s ORDER BY created_at DESC", taskColumns, where)
	return s.queryTasks(ctx, query, args...)
}

// ListPage implements store.TaskStore.ListPage.
func (s *TaskStore) ListPage(ctx context.Context, filters store.TaskFilters, page store.PageRequest) (*store.Page[domain.Task], error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	page = page.Normalize()

	where, args := filterClause(filters)

	var total int64
	countQuery := "SELECT count(*) FROM tasks" + where
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		log.Error("failed to count tasks", slog.String("error", err.Error()))
		return nil, err
	}

	query := fmt.Sprintf(
		"SELECT %s FROM tasks%s ORDER BY %s %s LIMIT $%d OFFSET $%d",
		taskColumns,
		where,
		sortColumns[page.SortBy],
		page.SortOrder,
		len(args)+1,
		len(args)+2,
	)
	args = append(args, page.Limit, page.Offset())

	items, err := s.queryTasks(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	return store.NewPage(items, page, total), nil
}

// GetByID implements store.TaskStore.GetByID.
func (s *TaskStore) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := fmt.Sprintf("SELECT %s FROM tasks WHERE id = $1", taskColumns)

	task, err := scanTask(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task by ID",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))
		return nil, err
	}

	return task, nil
}

// Update implements store.TaskStore.Update. Only fields present in the
// partial update are modified; an empty update returns the current record.
func (s *TaskStore) Update(ctx context.Context, id int64, update domain.TaskUpdate) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.Empty() {
		return task, nil
	}

	if err := update.Validate(); err != nil {
		log.Warn("task validation failed during update",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))
		return nil, err
	}

	update.Apply(task)

	query := `
		UPDATE tasks
		SET title = $2, description = $3, completed = $4, priority = $5, due_date = $6, updated_at = $7
		WHERE id = $1
	`
	_, err = s.db.ExecContext(ctx, query,
		task.ID,
		task.Title,
		task.Description,
		task.Completed,
		task.Priority,
		task.DueDate,
		task.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))
		return nil, err
	}

	log.Info("task updated successfully", slog.Int64("task_id", id))
	return task, nil
}

// Delete implements store.TaskStore.Delete. The boolean reports whether a
// record was actually removed.
func (s *TaskStore) Delete(ctx context.Context, id int64) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	if rows > 0 {
		log.Info("task deleted successfully", slog.Int64("task_id", id))
	}
	return rows > 0, nil
}

// ByStatus implements store.TaskStore.ByStatus.
func (s *TaskStore) ByStatus(ctx context.Context, completed bool) ([]domain.Task, error) {
	return s.List(ctx, store.TaskFilters{Completed: &completed})
}

// ByPriority implements store.TaskStore.ByPriority.
func (s *TaskStore) ByPriority(ctx context.Context, priority domain.Priority) ([]domain.Task, error) {
	return s.List(ctx, store.TaskFilters{Priority: priority})
}

func (s *TaskStore) queryTasks(ctx context.Context, query string, args ...any) ([]domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query tasks", slog.String("error", err.Error()))
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	tasks := []domain.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			log.Error("failed to scan task row", slog.String("error", err.Error()))
			return nil, err
		}
		tasks = append(tasks, *task)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tasks, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var task domain.Task
	var description sql.NullString
	var dueDate sql.NullTime
	var priority string

	err := row.Scan(
		&task.ID,
		&task.Title,
		&description,
		&task.Completed,
		&priority,
		&dueDate,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	task.Priority = domain.Priority(priority)
	if description.Valid {
		task.Description = &description.String
	}
	if dueDate.Valid {
		task.DueDate = &dueDate.Time
	}
	return &task, nil
}
