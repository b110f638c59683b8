package task

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestNormalizeDefaults(t *testing.T) {
	c := &ListCriteria{}
	require.NoError(t, c.Normalize())

	assert.Equal(t, "dueDate", c.SortBy)
	assert.Equal(t, "asc", c.SortOrder)
	assert.Equal(t, DefaultPage, c.Page)
	assert.Equal(t, DefaultLimit, c.Limit)
}

func TestNormalizeRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name     string
		criteria ListCriteria
		field    string
	}{
		{"unknown status", ListCriteria{Status: "archived"}, "status"},
		{"unknown priority", ListCriteria{Priority: "urgent"}, "priority"},
		{"unknown sort field", ListCriteria{SortBy: "owner"}, "sortBy"},
		{"unknown sort order", ListCriteria{SortOrder: "sideways"}, "sortOrder"},
		{"negative page", ListCriteria{Page: -1}, "page"},
		{"limit over maximum", ListCriteria{Limit: MaxLimit + 1}, "limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.criteria.Normalize()
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			require.Len(t, verr.Fields, 1)
			assert.Equal(t, tt.field, verr.Fields[0].Field)
		})
	}
}

func TestFilterScopesToOwner(t *testing.T) {
	owner := primitive.NewObjectID()
	c := &ListCriteria{}
	require.NoError(t, c.Normalize())

	filter := c.Filter(owner)
	assert.Equal(t, bson.M{"user": owner}, filter)
}

func TestFilterCombinesCriteria(t *testing.T) {
	owner := primitive.NewObjectID()
	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)

	c := &ListCriteria{
		Status:      "pending",
		Priority:    "high",
		Category:    "Work",
		DueDateFrom: &from,
		DueDateTo:   &to,
	}
	require.NoError(t, c.Normalize())

	filter := c.Filter(owner)
	assert.Equal(t, owner, filter["user"])
	assert.Equal(t, "pending", filter["status"])
	assert.Equal(t, "high", filter["priority"])
	assert.Equal(t, "Work", filter["category"])
	assert.Equal(t, bson.M{"$gte": from, "$lte": to}, filter["due_date"])
}

func TestFilterSearchEscapesRegexMeta(t *testing.T) {
	owner := primitive.NewObjectID()
	c := &ListCriteria{Search: "a+b (urgent)"}
	require.NoError(t, c.Normalize())

	filter := c.Filter(owner)
	or, ok := filter["$or"].(bson.A)
	require.True(t, ok)
	require.Len(t, or, 3)

	title := or[0].(bson.M)["title"].(primitive.Regex)
	assert.Equal(t, `a\+b \(urgent\)`, title.Pattern)
	assert.Equal(t, "i", title.Options)
}

func TestFindOptionsPagination(t *testing.T) {
	c := &ListCriteria{Page: 3, Limit: 20, SortBy: "createdAt", SortOrder: "desc"}
	require.NoError(t, c.Normalize())

	opts := c.FindOptions()
	assert.Equal(t, int64(40), *opts.Skip)
	assert.Equal(t, int64(20), *opts.Limit)

	sort, ok := opts.Sort.(bson.D)
	require.True(t, ok)
	require.Len(t, sort, 1)
	assert.Equal(t, "created_at", sort[0].Key)
	assert.Equal(t, -1, sort[0].Value)
}

func TestPages(t *testing.T) {
	c := &ListCriteria{Limit: 10}

	assert.Equal(t, int64(0), c.Pages(0))
	assert.Equal(t, int64(1), c.Pages(1))
	assert.Equal(t, int64(1), c.Pages(10))
	assert.Equal(t, int64(2), c.Pages(11))
	assert.Equal(t, int64(5), c.Pages(45))
}

func TestDueTodayQueryBoundsDay(t *testing.T) {
	owner := primitive.NewObjectID()
	now := time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC)

	filter, opts := dueTodayQuery(owner, now)

	due := filter["due_date"].(bson.M)
	assert.Equal(t, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), due["$gte"])
	assert.Equal(t, time.Date(2025, 6, 15, 23, 59, 59, 999999999, time.UTC), due["$lte"])

	sort := opts.Sort.(bson.D)
	require.Len(t, sort, 2)
	assert.Equal(t, "priority", sort[0].Key)
	assert.Equal(t, -1, sort[0].Value)
	assert.Equal(t, "due_date", sort[1].Key)
	assert.Equal(t, 1, sort[1].Value)
}

func TestOverdueQueryExcludesCompleted(t *testing.T) {
	owner := primitive.NewObjectID()
	now := time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC)

	filter, _ := overdueQuery(owner, now)
	assert.Equal(t, bson.M{"$ne": TaskStatusCompleted}, filter["status"])
	assert.Equal(t, bson.M{"$lt": now}, filter["due_date"])
}

func TestUpcomingQueryWindow(t *testing.T) {
	owner := primitive.NewObjectID()
	now := time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC)

	filter, _ := upcomingQuery(owner, now, 7)
	due := filter["due_date"].(bson.M)
	assert.Equal(t, now, due["$gte"])
	assert.Equal(t, now.Add(7*24*time.Hour), due["$lte"])
}
