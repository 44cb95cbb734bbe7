package mongodb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/taskhive/taskhive-api/internal/domain"
	"github.com/taskhive/taskhive-api/internal/platform/logger"
	"github.com/taskhive/taskhive-api/internal/store"
)

// tasksCollection is the collection holding document tasks.
const tasksCollection = "tasks"

// sortFields maps the store sort fields onto document keys.
var sortFields = map[store.SortField]string{
	store.SortByCreatedAt: "created_at",
	store.SortByUpdatedAt: "updated_at",
	store.SortByTitle:     "title",
	store.SortByPriority:  "priority",
	store.SortByDueDate:   "due_date",
}

// taskDoc is the persisted shape of a document task. The owner is stored as
// the user's UUID string; _id is a native ObjectID surfaced to callers in
// hex form.
type taskDoc struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty"`
	OwnerID     string              `bson:"owner_id"`
	Title       string              `bson:"title"`
	Description *string             `bson:"description,omitempty"`
	Completed   bool                `bson:"completed"`
	Priority    string              `bson:"priority"`
	DueDate     *time.Time          `bson:"due_date,omitempty"`
	Category    *string             `bson:"category,omitempty"`
	Tags        []string            `bson:"tags,omitempty"`
	Attachments []domain.Attachment `bson:"attachments,omitempty"`
	CreatedAt   time.Time           `bson:"created_at"`
	UpdatedAt   time.Time           `bson:"updated_at"`
}

func (d *taskDoc) toDomain() (*domain.DocTask, error) {
	ownerID, err := uuid.Parse(d.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("malformed owner id %q: %w", d.OwnerID, err)
	}

	return &domain.DocTask{
		ID:          d.ID.Hex(),
		OwnerID:     ownerID,
		Title:       d.Title,
		Description: d.Description,
		Completed:   d.Completed,
		Priority:    domain.Priority(d.Priority),
		DueDate:     d.DueDate,
		Category:    d.Category,
		Tags:        d.Tags,
		Attachments: d.Attachments,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}, nil
}

// TaskStore implements the store.DocTaskStore interface using MongoDB as
// the storage backend. Every operation is scoped by owner: the owner id is
// part of every filter, so a task belonging to another owner is
// indistinguishable from a nonexistent one.
type TaskStore struct {
	coll     *mongo.Collection
	users    store.UserStore
	logger   *slog.Logger
	timeFunc func() time.Time // Injectable for testing
}

// NewTaskStore creates a new MongoDB implementation of store.DocTaskStore.
// The user store is consulted at creation time to enforce that the owner
// references an existing user. If logger is nil, the default logger is used.
func NewTaskStore(db *mongo.Database, users store.UserStore, logger *slog.Logger) *TaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if users == nil {
		panic("users cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &TaskStore{
		coll:     db.Collection(tasksCollection),
		users:    users,
		logger:   logger.With(slog.String("component", "doc_task_store")),
		timeFunc: time.Now,
	}
}

var _ store.DocTaskStore = (*TaskStore)(nil)

// EnsureIndexes creates the collection's indexes: per-owner compound indexes
// for the common filters and a weighted text index over title and
// description (title weighted above description).
func (s *TaskStore) EnsureIndexes(ctx context.Context) error {
	models := []mongo.IndexModel{
		{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "completed", Value: 1}}},
		{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "priority", Value: 1}}},
		{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "due_date", Value: 1}}},
		{
			Keys: bson.D{{Key: "title", Value: "text"}, {Key: "description", Value: "text"}},
			Options: options.Index().SetWeights(bson.D{
				{Key: "title", Value: 10},
				{Key: "description", Value: 5},
			}),
		},
	}

	_, err := s.coll.Indexes().CreateMany(ctx, models)
	if err != nil {
		return fmt.Errorf("failed to create task indexes: %w", err)
	}
	return nil
}

// ownerFilter is the base predicate every operation starts from.
func ownerFilter(ownerID uuid.UUID) bson.M {
	return bson.M{"owner_id": ownerID.String()}
}

// withFilters extends the owner predicate with the task filters. All set
// predicates compose with AND. Search uses the weighted text index.
func withFilters(ownerID uuid.UUID, filters store.TaskFilters) bson.M {
	query := ownerFilter(ownerID)

	if filters.Completed != nil {
		query["completed"] = *filters.Completed
	}
	if filters.Priority != "" {
		query["priority"] = string(filters.Priority)
	}
	if filters.Search != "" {
		query["$text"] = bson.M{"$search": filters.Search}
	}

	return query
}

// Create implements store.DocTaskStore.Create. The owner must reference an
// existing user; a dangling reference yields store.ErrInvalidEntity.
func (s *TaskStore) Create(ctx context.Context, task *domain.DocTask) error {
	log := logger.FromContextOrDefault(ctx, s.logger)
	now := s.timeFunc().UTC()

	if err := task.Validate(now.Add(-time.Minute)); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()),
			slog.String("owner_id", task.OwnerID.String()))
		return err
	}

	if _, err := s.users.GetByID(ctx, task.OwnerID); err != nil {
		if store.IsNotFoundError(err) {
			log.Warn("owner does not exist during task creation",
				slog.String("owner_id", task.OwnerID.String()))
			return fmt.Errorf("%w: user %s not found", store.ErrInvalidEntity, task.OwnerID)
		}
		return err
	}

	doc := taskDoc{
		OwnerID:     task.OwnerID.String(),
		Title:       task.Title,
		Description: task.Description,
		Completed:   task.Completed,
		Priority:    string(task.Priority),
		DueDate:     task.DueDate,
		Category:    task.Category,
		Tags:        task.Tags,
		Attachments: task.Attachments,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}

	result, err := s.coll.InsertOne(ctx, doc)
	if err != nil {
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("owner_id", task.OwnerID.String()))
		return err
	}

	oid, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return fmt.Errorf("unexpected inserted id type %T", result.InsertedID)
	}
	task.ID = oid.Hex()

	log.Info("task created successfully",
		slog.String("task_id", task.ID),
		slog.String("owner_id", task.OwnerID.String()))
	return nil
}

// List implements store.DocTaskStore.List. Results are ordered
// newest-created-first.
func (s *TaskStore) List(ctx context.Context, ownerID uuid.UUID, filters store.TaskFilters) ([]domain.DocTask, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return s.find(ctx, withFilters(ownerID, filters), opts)
}

// ListPage implements store.DocTaskStore.ListPage.
func (s *TaskStore) ListPage(ctx context.Context, ownerID uuid.UUID, filters store.TaskFilters, page store.PageRequest) (*store.Page[domain.DocTask], error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	page = page.Normalize()

	query := withFilters(ownerID, filters)

	total, err := s.coll.CountDocuments(ctx, query)
	if err != nil {
		log.Error("failed to count tasks", slog.String("error", err.Error()))
		return nil, err
	}

	direction := -1
	if page.SortOrder == store.SortAsc {
		direction = 1
	}

	opts := options.Find().
		SetSort(bson.D{{Key: sortFields[page.SortBy], Value: direction}}).
		SetSkip(int64(page.Offset())).
		SetLimit(int64(page.Limit))

	items, err := s.find(ctx, query, opts)
	if err != nil {
		return nil, err
	}

	return store.NewPage(items, page, total), nil
}

// GetByID implements store.DocTaskStore.GetByID. A structurally invalid id
// is treated as not-found rather than an error.
func (s *TaskStore) GetByID(ctx context.Context, ownerID uuid.UUID, id string) (*domain.DocTask, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, store.ErrTaskNotFound
	}

	return s.findOne(ctx, bson.M{"_id": oid, "owner_id": ownerID.String()})
}

// Update implements store.DocTaskStore.Update. Only fields present in the
// partial update are modified; an empty update returns the current record.
func (s *TaskStore) Update(ctx context.Context, ownerID uuid.UUID, id string, update domain.DocTaskUpdate) (*domain.DocTask, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, store.ErrTaskNotFound
	}

	if update.Empty() {
		return s.findOne(ctx, bson.M{"_id": oid, "owner_id": ownerID.String()})
	}

	now := s.timeFunc().UTC()
	if err := update.Validate(now.Add(-time.Minute)); err != nil {
		log.Warn("task validation failed during update",
			slog.String("error", err.Error()),
			slog.String("task_id", id))
		return nil, err
	}

	set := bson.M{"updated_at": now}
	if update.Title != nil {
		set["title"] = *update.Title
	}
	if update.Description != nil {
		set["description"] = *update.Description
	}
	if update.Completed != nil {
		set["completed"] = *update.Completed
	}
	if update.Priority != nil {
		set["priority"] = string(*update.Priority)
	}
	if update.DueDate != nil {
		set["due_date"] = *update.DueDate
	}
	if update.Category != nil {
		set["category"] = *update.Category
	}
	if update.Tags != nil {
		set["tags"] = *update.Tags
	}
	if update.Attachments != nil {
		set["attachments"] = *update.Attachments
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc taskDoc
	err = s.coll.FindOneAndUpdate(
		ctx,
		bson.M{"_id": oid, "owner_id": ownerID.String()},
		bson.M{"$set": set},
		opts,
	).Decode(&doc)

	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.String("task_id", id))
		return nil, err
	}

	log.Info("task updated successfully", slog.String("task_id", id))
	return doc.toDomain()
}

// Delete implements store.DocTaskStore.Delete. The boolean reports whether
// a record was actually removed; a malformed id simply reports false.
func (s *TaskStore) Delete(ctx context.Context, ownerID uuid.UUID, id string) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}

	result, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid, "owner_id": ownerID.String()})
	if err != nil {
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.String("task_id", id))
		return false, err
	}

	if result.DeletedCount > 0 {
		log.Info("task deleted successfully", slog.String("task_id", id))
	}
	return result.DeletedCount > 0, nil
}

// ByStatus implements store.DocTaskStore.ByStatus.
func (s *TaskStore) ByStatus(ctx context.Context, ownerID uuid.UUID, completed bool) ([]domain.DocTask, error) {
	return s.List(ctx, ownerID, store.TaskFilters{Completed: &completed})
}

// ByPriority implements store.DocTaskStore.ByPriority.
func (s *TaskStore) ByPriority(ctx context.Context, ownerID uuid.UUID, priority domain.Priority) ([]domain.DocTask, error) {
	return s.List(ctx, ownerID, store.TaskFilters{Priority: priority})
}

// ByCategory implements store.DocTaskStore.ByCategory.
func (s *TaskStore) ByCategory(ctx context.Context, ownerID uuid.UUID, category string) ([]domain.DocTask, error) {
	query := ownerFilter(ownerID)
	query["category"] = category

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return s.find(ctx, query, opts)
}

// Overdue implements store.DocTaskStore.Overdue: open tasks whose due date
// is strictly in the past, soonest-due-first.
func (s *TaskStore) Overdue(ctx context.Context, ownerID uuid.UUID) ([]domain.DocTask, error) {
	query := ownerFilter(ownerID)
	query["due_date"] = bson.M{"$lt": s.timeFunc().UTC()}
	query["completed"] = false

	opts := options.Find().SetSort(bson.D{{Key: "due_date", Value: 1}})
	return s.find(ctx, query, opts)
}

// Stats implements store.DocTaskStore.Stats with a single aggregation pass.
func (s *TaskStore) Stats(ctx context.Context, ownerID uuid.UUID) (*store.TaskStats, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	now := s.timeFunc().UTC()

	countWhen := func(cond bson.A) bson.M {
		return bson.M{"$sum": bson.M{"$cond": bson.A{bson.M{"$and": cond}, 1, 0}}}
	}
	countEq := func(field string, value any) bson.M {
		return bson.M{"$sum": bson.M{"$cond": bson.A{bson.M{"$eq": bson.A{field, value}}, 1, 0}}}
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: ownerFilter(ownerID)}},
		{{Key: "$group", Value: bson.M{
			"_id":       nil,
			"total":     bson.M{"$sum": 1},
			"completed": countEq("$completed", true),
			"pending":   countEq("$completed", false),
			// A task without a due date is never overdue; guard against the
			// missing field comparing below any date.
			"overdue": countWhen(bson.A{
				bson.M{"$eq": bson.A{"$completed", false}},
				bson.M{"$ne": bson.A{"$due_date", nil}},
				bson.M{"$lt": bson.A{"$due_date", now}},
			}),
			"highPriority":   countEq("$priority", "high"),
			"mediumPriority": countEq("$priority", "medium"),
			"lowPriority":    countEq("$priority", "low"),
		}}},
	}

	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		log.Error("failed to aggregate task stats",
			slog.String("error", err.Error()),
			slog.String("owner_id", ownerID.String()))
		return nil, err
	}
	defer func() { _ = cursor.Close(ctx) }()

	var results []store.TaskStats
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}

	// An owner with no tasks has no aggregation output; all counts are zero.
	if len(results) == 0 {
		return &store.TaskStats{}, nil
	}
	return &results[0], nil
}

func (s *TaskStore) find(ctx context.Context, query bson.M, opts *options.FindOptions) ([]domain.DocTask, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	cursor, err := s.coll.Find(ctx, query, opts)
	if err != nil {
		log.Error("failed to query tasks", slog.String("error", err.Error()))
		return nil, err
	}
	defer func() { _ = cursor.Close(ctx) }()

	tasks := []domain.DocTask{}
	for cursor.Next(ctx) {
		var doc taskDoc
		if err := cursor.Decode(&doc); err != nil {
			log.Error("failed to decode task document", slog.String("error", err.Error()))
			return nil, err
		}

		task, err := doc.toDomain()
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s *TaskStore) findOne(ctx context.Context, query bson.M) (*domain.DocTask, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var doc taskDoc
	err := s.coll.FindOne(ctx, query).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task", slog.String("error", err.Error()))
		return nil, err
	}

	return doc.toDomain()
}
