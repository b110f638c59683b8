package task

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"taskhive/internal/infrastructure/persistence/mongodb"
)

var (
	ErrTaskNotFound = errors.New("task not found")
	ErrNotOwner     = errors.New("access denied: you can only access your own tasks")
)

// TrendPoint is one day of the completion trend.
type TrendPoint struct {
	Date  string `bson:"_id" json:"date"`
	Count int64  `bson:"count" json:"count"`
}

// CategoryCount is one entry of the popular-categories view.
type CategoryCount struct {
	Category string `bson:"_id" json:"category"`
	Count    int64  `bson:"count" json:"count"`
}

// AdminFilter narrows the admin all-tasks view.
type AdminFilter struct {
	UserID *primitive.ObjectID
	Status *TaskStatus
}

// TaskRepository defines the persistence operations for tasks.
type TaskRepository interface {
	Create(ctx context.Context, task *Task) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*Task, error)
	FindAll(ctx context.Context, ownerID primitive.ObjectID, criteria *ListCriteria) ([]Task, int64, error)
	FindOwned(ctx context.Context, ownerID primitive.ObjectID) ([]Task, error)
	Update(ctx context.Context, task *Task) error
	Delete(ctx context.Context, id primitive.ObjectID) error

	// Dashboard reads
	FindDueToday(ctx context.Context, ownerID primitive.ObjectID, now time.Time) ([]Task, error)
	FindOverdue(ctx context.Context, ownerID primitive.ObjectID, now time.Time) ([]Task, error)
	FindUpcoming(ctx context.Context, ownerID primitive.ObjectID, now time.Time, days int) ([]Task, error)
	CompletedTrend(ctx context.Context, ownerID primitive.ObjectID, since time.Time) ([]TrendPoint, error)
	PopularCategories(ctx context.Context, ownerID primitive.ObjectID, n int) ([]CategoryCount, error)
	StatusCounts(ctx context.Context, ownerID primitive.ObjectID) (map[TaskStatus]int64, error)

	// Admin reads
	FindAllAdmin(ctx context.Context, filter AdminFilter) ([]Task, error)
	CountAll(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status TaskStatus) (int64, error)
	CountOverdue(ctx context.Context, now time.Time) (int64, error)
	FindCriticalOpen(ctx context.Context) ([]Task, error)
	FindOverdueAll(ctx context.Context, now time.Time) ([]Task, error)

	// Reminder dispatch
	FindWithDueReminders(ctx context.Context, now time.Time) ([]Task, error)
	MarkReminderSent(ctx context.Context, taskID primitive.ObjectID, index int) error
}

type taskRepository struct {
	collection *mongo.Collection
}

func NewRepository(db *mongodb.Database) TaskRepository {
	return &taskRepository{collection: db.Collection("tasks")}
}

func (r *taskRepository) Create(ctx context.Context, task *Task) error {
	if task.ID.IsZero() {
		task.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, task)
	return err
}

func (r *taskRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*Task, error) {
	var task Task
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&task)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return &task, nil
}

func (r *taskRepository) FindAll(ctx context.Context, ownerID primitive.ObjectID, criteria *ListCriteria) ([]Task, int64, error) {
	filter := criteria.Filter(ownerID)

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	tasks, err := r.find(ctx, filter, criteria.FindOptions())
	if err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}

func (r *taskRepository) FindOwned(ctx context.Context, ownerID primitive.ObjectID) ([]Task, error) {
	opts := options.Find().SetSort(bson.D{{Key: "due_date", Value: 1}})
	return r.find(ctx, bson.M{"user": ownerID}, opts)
}

func (r *taskRepository) Update(ctx context.Context, task *Task) error {
	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": task.ID}, task)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func (r *taskRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func (r *taskRepository) FindDueToday(ctx context.Context, ownerID primitive.ObjectID, now time.Time) ([]Task, error) {
	filter, opts := dueTodayQuery(ownerID, now)
	return r.find(ctx, filter, opts)
}

func (r *taskRepository) FindOverdue(ctx context.Context, ownerID primitive.ObjectID, now time.Time) ([]Task, error) {
	filter, opts := overdueQuery(ownerID, now)
	return r.find(ctx, filter, opts)
}

func (r *taskRepository) FindUpcoming(ctx context.Context, ownerID primitive.ObjectID, now time.Time, days int) ([]Task, error) {
	filter, opts := upcomingQuery(ownerID, now, days)
	return r.find(ctx, filter, opts)
}

func (r *taskRepository) CompletedTrend(ctx context.Context, ownerID primitive.ObjectID, since time.Time) ([]TrendPoint, error) {
	cursor, err := r.collection.Aggregate(ctx, completedTrendPipeline(ownerID, since))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var points []TrendPoint
	if err := cursor.All(ctx, &points); err != nil {
		return nil, err
	}
	return points, nil
}

func (r *taskRepository) PopularCategories(ctx context.Context, ownerID primitive.ObjectID, n int) ([]CategoryCount, error) {
	cursor, err := r.collection.Aggregate(ctx, popularCategoriesPipeline(ownerID, n))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var counts []CategoryCount
	if err := cursor.All(ctx, &counts); err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *taskRepository) StatusCounts(ctx context.Context, ownerID primitive.ObjectID) (map[TaskStatus]int64, error) {
	cursor, err := r.collection.Aggregate(ctx, statusCountsPipeline(ownerID))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Status TaskStatus `bson:"_id"`
		Count  int64      `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	counts := make(map[TaskStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *taskRepository) FindAllAdmin(ctx context.Context, filter AdminFilter) ([]Task, error) {
	query := bson.M{}
	if filter.UserID != nil {
		query["user"] = *filter.UserID
	}
	if filter.Status != nil {
		query["status"] = *filter.Status
	}
	return r.find(ctx, query, options.Find().SetSort(bson.D{{Key: "due_date", Value: 1}}))
}

func (r *taskRepository) CountAll(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

func (r *taskRepository) CountByStatus(ctx context.Context, status TaskStatus) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"status": status})
}

func (r *taskRepository) CountOverdue(ctx context.Context, now time.Time) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{
		"status":   bson.M{"$ne": TaskStatusCompleted},
		"due_date": bson.M{"$lt": now},
	})
}

func (r *taskRepository) FindCriticalOpen(ctx context.Context) ([]Task, error) {
	filter := bson.M{
		"priority": TaskPriorityCritical,
		"status":   bson.M{"$ne": TaskStatusCompleted},
	}
	return r.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "due_date", Value: 1}}))
}

func (r *taskRepository) FindOverdueAll(ctx context.Context, now time.Time) ([]Task, error) {
	filter := bson.M{
		"status":   bson.M{"$ne": TaskStatusCompleted},
		"due_date": bson.M{"$lt": now},
	}
	return r.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "due_date", Value: 1}}))
}

func (r *taskRepository) FindWithDueReminders(ctx context.Context, now time.Time) ([]Task, error) {
	filter := bson.M{
		"reminders": bson.M{"$elemMatch": bson.M{
			"time": bson.M{"$lte": now},
			"sent": false,
		}},
	}
	return r.find(ctx, filter, nil)
}

func (r *taskRepository) MarkReminderSent(ctx context.Context, taskID primitive.ObjectID, index int) error {
	field := fmt.Sprintf("reminders.%d.sent", index)
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": taskID},
		bson.M{"$set": bson.M{field: true, "updated_at": time.Now()}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func (r *taskRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]Task, error) {
	var cursor *mongo.Cursor
	var err error
	if opts != nil {
		cursor, err = r.collection.Find(ctx, filter, opts)
	} else {
		cursor, err = r.collection.Find(ctx, filter)
	}
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var tasks []Task
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}
