package task

import (
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// ListCriteria holds the recognized task list query parameters. Zero values
// mean "not supplied".
type ListCriteria struct {
	Status      string
	Priority    string
	Category    string
	Search      string
	DueDateFrom *time.Time
	DueDateTo   *time.Time
	SortBy      string
	SortOrder   string
	Page        int
	Limit       int
}

var sortFields = map[string]string{
	"title":     "title",
	"dueDate":   "due_date",
	"priority":  "priority",
	"status":    "status",
	"createdAt": "created_at",
}

// Normalize validates the criteria and fills in defaults. Every invalid enum
// value is reported; nothing touches the store until this passes.
func (c *ListCriteria) Normalize() error {
	verr := &ValidationError{}

	if c.Status != "" && !TaskStatus(c.Status).IsValid() {
		verr.add("status", "invalid status value")
	}
	if c.Priority != "" && !TaskPriority(c.Priority).IsValid() {
		verr.add("priority", "invalid priority value")
	}
	if c.SortBy == "" {
		c.SortBy = "dueDate"
	} else if _, ok := sortFields[c.SortBy]; !ok {
		verr.add("sortBy", "invalid sort field")
	}
	switch c.SortOrder {
	case "":
		c.SortOrder = "asc"
	case "asc", "desc":
	default:
		verr.add("sortOrder", "sort order must be asc or desc")
	}
	if c.Page == 0 {
		c.Page = DefaultPage
	} else if c.Page < 1 {
		verr.add("page", "page must be at least 1")
	}
	if c.Limit == 0 {
		c.Limit = DefaultLimit
	} else if c.Limit < 1 || c.Limit > MaxLimit {
		verr.add("limit", fmt.Sprintf("limit must be between 1 and %d", MaxLimit))
	}

	return verr.orNil()
}

// Filter translates the criteria into a MongoDB filter document. Results are
// always scoped to the owner; supplied filters are ANDed and the free-text
// search ORs over title, description and category.
func (c *ListCriteria) Filter(ownerID primitive.ObjectID) bson.M {
	filter := bson.M{"user": ownerID}

	if c.Status != "" {
		filter["status"] = c.Status
	}
	if c.Priority != "" {
		filter["priority"] = c.Priority
	}
	if c.Category != "" {
		filter["category"] = c.Category
	}
	if c.DueDateFrom != nil || c.DueDateTo != nil {
		due := bson.M{}
		if c.DueDateFrom != nil {
			due["$gte"] = *c.DueDateFrom
		}
		if c.DueDateTo != nil {
			due["$lte"] = *c.DueDateTo
		}
		filter["due_date"] = due
	}
	if c.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(c.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"description": pattern},
			bson.M{"category": pattern},
		}
	}

	return filter
}

// FindOptions translates sorting and pagination into driver options.
func (c *ListCriteria) FindOptions() *options.FindOptions {
	order := 1
	if c.SortOrder == "desc" {
		order = -1
	}
	return options.Find().
		SetSort(bson.D{{Key: sortFields[c.SortBy], Value: order}}).
		SetSkip(int64((c.Page - 1) * c.Limit)).
		SetLimit(int64(c.Limit))
}

// Pages returns the total page count for a matching total.
func (c *ListCriteria) Pages(total int64) int64 {
	if total == 0 {
		return 0
	}
	return (total + int64(c.Limit) - 1) / int64(c.Limit)
}

// startOfDay and endOfDay bound the calendar day containing now, in now's
// location.
func startOfDay(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}

func endOfDay(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 23, 59, 59, 999999999, now.Location())
}

// dueTodayQuery matches tasks due within the current calendar day, ordered by
// priority descending then due date ascending.
func dueTodayQuery(ownerID primitive.ObjectID, now time.Time) (bson.M, *options.FindOptions) {
	filter := bson.M{
		"user":     ownerID,
		"due_date": bson.M{"$gte": startOfDay(now), "$lte": endOfDay(now)},
	}
	opts := options.Find().SetSort(bson.D{{Key: "priority", Value: -1}, {Key: "due_date", Value: 1}})
	return filter, opts
}

// overdueQuery matches non-completed tasks past their due date, ordered by
// due date ascending.
func overdueQuery(ownerID primitive.ObjectID, now time.Time) (bson.M, *options.FindOptions) {
	filter := bson.M{
		"user":     ownerID,
		"status":   bson.M{"$ne": TaskStatusCompleted},
		"due_date": bson.M{"$lt": now},
	}
	opts := options.Find().SetSort(bson.D{{Key: "due_date", Value: 1}})
	return filter, opts
}

// upcomingQuery matches non-completed tasks due within the window
// [now, now+days], ordered by due date ascending.
func upcomingQuery(ownerID primitive.ObjectID, now time.Time, days int) (bson.M, *options.FindOptions) {
	filter := bson.M{
		"user":     ownerID,
		"status":   bson.M{"$ne": TaskStatusCompleted},
		"due_date": bson.M{"$gte": now, "$lte": now.Add(time.Duration(days) * 24 * time.Hour)},
	}
	opts := options.Find().SetSort(bson.D{{Key: "due_date", Value: 1}})
	return filter, opts
}

// completedTrendPipeline groups completions since the cutoff by calendar day
// (YYYY-MM-DD), ascending. Days with no completions are simply absent.
func completedTrendPipeline(ownerID primitive.ObjectID, since time.Time) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"user":         ownerID,
			"status":       TaskStatusCompleted,
			"completed_at": bson.M{"$gte": since},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   bson.M{"$dateToString": bson.M{"format": "%Y-%m-%d", "date": "$completed_at"}},
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}
}

// popularCategoriesPipeline returns the top n categories by task count.
func popularCategoriesPipeline(ownerID primitive.ObjectID, n int) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"user": ownerID}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$category",
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.M{"count": -1}}},
		{{Key: "$limit", Value: n}},
	}
}

// statusCountsPipeline groups the owner's tasks by status.
func statusCountsPipeline(ownerID primitive.ObjectID) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"user": ownerID}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$status",
			"count": bson.M{"$sum": 1},
		}}},
	}
}
