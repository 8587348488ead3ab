package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/taskflow/taskflow-api/internal/core/domain"
	"github.com/taskflow/taskflow-api/internal/core/ports"
)

const collectionTasks = "tasks"

type TaskRepository struct {
	col *mongo.Collection
	ids *sequence
}

func NewTaskRepository(db *mongo.Database) *TaskRepository {
	return &TaskRepository{col: db.Collection(collectionTasks), ids: newSequence(db, collectionTasks)}
}

var _ ports.TaskRepository = (*TaskRepository)(nil)

type taskDoc struct {
	ID          int64      `bson:"_id"`
	Title       string     `bson:"title"`
	Description *string    `bson:"description,omitempty"`
	Status      string     `bson:"status"`
	Priority    string     `bson:"priority"`
	DueDate     *time.Time `bson:"due_date,omitempty"`
	OwnerID     int64      `bson:"owner_id"`
	CreatedAt   time.Time  `bson:"created_at"`
	UpdatedAt   time.Time  `bson:"updated_at"`
}

func (d taskDoc) toDomain() *domain.Task {
	t := &domain.Task{
		ID:          d.ID,
		Title:       d.Title,
		Description: d.Description,
		Status:      domain.TaskStatus(d.Status),
		Priority:    domain.TaskPriority(d.Priority),
		OwnerID:     d.OwnerID,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
	if d.DueDate != nil {
		due := d.DueDate.UTC()
		t.DueDate = &due
	}
	return t
}

// newTaskDoc stores times at the millisecond precision Mongo keeps, so the
// task returned by Create matches what a later read returns.
func newTaskDoc(id int64, t *domain.Task) taskDoc {
	doc := taskDoc{
		ID:          id,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		OwnerID:     t.OwnerID,
		CreatedAt:   toMongoTime(t.CreatedAt),
		UpdatedAt:   toMongoTime(t.UpdatedAt),
	}
	if t.DueDate != nil {
		due := toMongoTime(*t.DueDate)
		doc.DueDate = &due
	}
	return doc
}

func toMongoTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

// Create inserts a new task document.
func (r *TaskRepository) Create(ctx context.Context, t *domain.Task) (*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := r.ids.next(ctx)
	if err != nil {
		return nil, err
	}

	doc := newTaskDoc(id, t)
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *TaskRepository) FindByID(ctx context.Context, id int64) (*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc taskDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

// Update applies the patch with a single FindOneAndUpdate, which is atomic on
// one document.
func (r *TaskRepository) Update(ctx context.Context, id int64, patch domain.TaskPatch, now time.Time) (*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc taskDoc
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		patchUpdate(patch, now),
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("update task: %w", err)
	}
	return doc.toDomain(), nil
}

// patchUpdate translates a patch into $set / $unset operators. Explicit nulls
// on optional fields remove them.
func patchUpdate(p domain.TaskPatch, now time.Time) bson.M {
	set := bson.M{"updated_at": toMongoTime(now)}
	unset := bson.M{}

	if p.Title.Set {
		set["title"] = p.Title.Value
	}
	if p.Description.Set {
		if p.Description.Null {
			unset["description"] = ""
		} else {
			set["description"] = p.Description.Value
		}
	}
	if p.Status.Set {
		set["status"] = string(p.Status.Value)
	}
	if p.Priority.Set {
		set["priority"] = string(p.Priority.Value)
	}
	if p.DueDate.Set {
		if p.DueDate.Null {
			unset["due_date"] = ""
		} else {
			set["due_date"] = toMongoTime(p.DueDate.Value)
		}
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	return update
}

func (r *TaskRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

// List returns a page of tasks matching filter and the total count.
func (r *TaskRepository) List(ctx context.Context, f ports.ListTasksFilter) ([]*domain.Task, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := buildTaskFilter(f)

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(f.Offset())).
		SetLimit(int64(f.PageSize))

	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list tasks: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []taskDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode tasks: %w", err)
	}

	items := make([]*domain.Task, 0, len(docs))
	for _, d := range docs {
		items = append(items, d.toDomain())
	}
	return items, total, nil
}

// buildTaskFilter always scopes by owner; search is a literal,
// case-insensitive substring match on title or description.
func buildTaskFilter(f ports.ListTasksFilter) bson.M {
	filter := bson.M{"owner_id": f.OwnerID}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Priority != "" {
		filter["priority"] = f.Priority
	}
	if f.Search != "" {
		re := bson.M{"$regex": regexp.QuoteMeta(f.Search), "$options": "i"}
		filter["$or"] = bson.A{
			bson.M{"title": re},
			bson.M{"description": re},
		}
	}
	return filter
}

type statsDoc struct {
	Total               int64 `bson:"total"`
	Completed           int64 `bson:"completed"`
	Pending             int64 `bson:"pending"`
	InProgress          int64 `bson:"in_progress"`
	Overdue             int64 `bson:"overdue"`
	CompletedThisWeek   int64 `bson:"completed_this_week"`
	HighPriorityPending int64 `bson:"high_priority_pending"`
}

// Stats counts everything in one $group stage.
func (r *TaskRepository) Stats(ctx context.Context, ownerID int64, now time.Time) (*domain.TaskStats, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cursor, err := r.col.Aggregate(ctx, statsPipeline(ownerID, now))
	if err != nil {
		return nil, fmt.Errorf("task stats: %w", err)
	}
	defer cursor.Close(ctx)

	var st statsDoc
	if cursor.Next(ctx) {
		if err := cursor.Decode(&st); err != nil {
			return nil, fmt.Errorf("decode task stats: %w", err)
		}
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("task stats: %w", err)
	}

	return &domain.TaskStats{
		Total:               st.Total,
		Completed:           st.Completed,
		Pending:             st.Pending,
		InProgress:          st.InProgress,
		Overdue:             st.Overdue,
		CompletedThisWeek:   st.CompletedThisWeek,
		HighPriorityPending: st.HighPriorityPending,
	}, nil
}

func statsPipeline(ownerID int64, now time.Time) mongo.Pipeline {
	countIf := func(cond any) bson.M {
		return bson.M{"$sum": bson.M{"$cond": bson.A{cond, 1, 0}}}
	}
	statusIs := func(s domain.TaskStatus) bson.M { return bson.M{"$eq": bson.A{"$status", string(s)}} }
	notDone := bson.M{"$ne": bson.A{"$status", string(domain.StatusDone)}}
	// A missing or null due_date sorts below every date, so check the type.
	hasDueDate := bson.M{"$eq": bson.A{bson.M{"$type": "$due_date"}, "date"}}

	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"owner_id": ownerID}}},
		{{Key: "$group", Value: bson.M{
			"_id":         nil,
			"total":       bson.M{"$sum": 1},
			"completed":   countIf(statusIs(domain.StatusDone)),
			"pending":     countIf(statusIs(domain.StatusTodo)),
			"in_progress": countIf(statusIs(domain.StatusInProgress)),
			"overdue": countIf(bson.M{"$and": bson.A{
				notDone, hasDueDate, bson.M{"$lt": bson.A{"$due_date", now}},
			}}),
			"completed_this_week": countIf(bson.M{"$and": bson.A{
				statusIs(domain.StatusDone), bson.M{"$gte": bson.A{"$updated_at", now.Add(-domain.CompletedWindow)}},
			}}),
			"high_priority_pending": countIf(bson.M{"$and": bson.A{
				notDone, bson.M{"$eq": bson.A{"$priority", string(domain.PriorityHigh)}},
			}}),
		}}},
	}
}

// EnsureIndexes creates the indexes backing owner-scoped listing.
func (r *TaskRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}},
		{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "priority", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
