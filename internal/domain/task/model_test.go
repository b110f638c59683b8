package task

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func validTask() *Task {
	return &Task{
		ID:       primitive.NewObjectID(),
		Title:    "Write quarterly report",
		Category: "Work",
		Status:   TaskStatusPending,
		Priority: TaskPriorityMedium,
		DueDate:  time.Now().Add(24 * time.Hour),
		UserID:   primitive.NewObjectID(),
	}
}

func TestTaskValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Task)
		fields  []string
	}{
		{
			name:   "valid task passes",
			mutate: func(*Task) {},
		},
		{
			name:   "missing title",
			mutate: func(tk *Task) { tk.Title = "   " },
			fields: []string{"title"},
		},
		{
			name:   "title too long",
			mutate: func(tk *Task) { tk.Title = strings.Repeat("a", 201) },
			fields: []string{"title"},
		},
		{
			name:   "description too long",
			mutate: func(tk *Task) { tk.Description = strings.Repeat("d", 2001) },
			fields: []string{"description"},
		},
		{
			name:   "summary too long",
			mutate: func(tk *Task) { tk.Summary = strings.Repeat("s", 501) },
			fields: []string{"summary"},
		},
		{
			name:   "missing category",
			mutate: func(tk *Task) { tk.Category = "" },
			fields: []string{"category"},
		},
		{
			name:   "missing due date",
			mutate: func(tk *Task) { tk.DueDate = time.Time{} },
			fields: []string{"due_date"},
		},
		{
			name:   "unknown status",
			mutate: func(tk *Task) { tk.Status = "archived" },
			fields: []string{"status"},
		},
		{
			name:   "unknown priority",
			mutate: func(tk *Task) { tk.Priority = "urgent" },
			fields: []string{"priority"},
		},
		{
			name:   "tag too long",
			mutate: func(tk *Task) { tk.Tags = []string{"ok", strings.Repeat("t", 51)} },
			fields: []string{"tags"},
		},
		{
			name:   "estimate hours out of range",
			mutate: func(tk *Task) { tk.EstimatedTime = &TimeEstimate{Hours: 25} },
			fields: []string{"estimated_time"},
		},
		{
			name:   "estimate minutes out of range",
			mutate: func(tk *Task) { tk.EstimatedTime = &TimeEstimate{Minutes: 60} },
			fields: []string{"estimated_time"},
		},
		{
			name:   "missing owner",
			mutate: func(tk *Task) { tk.UserID = primitive.ObjectID{} },
			fields: []string{"user"},
		},
		{
			name: "multiple violations reported together",
			mutate: func(tk *Task) {
				tk.Title = ""
				tk.Category = ""
				tk.DueDate = time.Time{}
			},
			fields: []string{"title", "category", "due_date"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tk := validTask()
			tt.mutate(tk)

			err := tk.Validate()
			if len(tt.fields) == 0 {
				assert.NoError(t, err)
				return
			}

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			got := make([]string, len(verr.Fields))
			for i, f := range verr.Fields {
				got[i] = f.Field
			}
			assert.ElementsMatch(t, tt.fields, got)
		})
	}
}

func TestTaskTitleAtLimitIsValid(t *testing.T) {
	tk := validTask()
	tk.Title = strings.Repeat("a", 200)
	assert.NoError(t, tk.Validate())
}

func TestIsOverdue(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tk := validTask()
	tk.DueDate = now.Add(-time.Hour)
	assert.True(t, tk.IsOverdue(now))

	tk.Status = TaskStatusCompleted
	assert.False(t, tk.IsOverdue(now), "completed tasks are never overdue")

	tk.Status = TaskStatusCancelled
	assert.True(t, tk.IsOverdue(now), "cancelled tasks still count as overdue")

	tk.Status = TaskStatusPending
	tk.DueDate = now.Add(time.Hour)
	assert.False(t, tk.IsOverdue(now))
}

func TestIsDueToday(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tk := validTask()
	tk.DueDate = time.Date(2025, 6, 15, 23, 59, 0, 0, time.UTC)
	assert.True(t, tk.IsDueToday(now))

	tk.DueDate = time.Date(2025, 6, 16, 0, 0, 1, 0, time.UTC)
	assert.False(t, tk.IsDueToday(now))
}

func TestIsDueSoon(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tk := validTask()
	tk.DueDate = now.Add(48 * time.Hour)
	assert.True(t, tk.IsDueSoon(now))

	tk.DueDate = now.Add(4 * 24 * time.Hour)
	assert.False(t, tk.IsDueSoon(now), "outside the three-day window")

	tk.DueDate = now.Add(-time.Hour)
	assert.False(t, tk.IsDueSoon(now), "already overdue is not due soon")

	tk.DueDate = now.Add(time.Hour)
	tk.Status = TaskStatusCompleted
	assert.False(t, tk.IsDueSoon(now))
}

func TestCompletionPercentage(t *testing.T) {
	tk := validTask()

	tk.Status = TaskStatusPending
	assert.Equal(t, 0, tk.CompletionPercentage())

	tk.Status = TaskStatusInProgress
	assert.Equal(t, 50, tk.CompletionPercentage())

	tk.Status = TaskStatusCompleted
	assert.Equal(t, 100, tk.CompletionPercentage())

	tk.Status = TaskStatusCancelled
	assert.Equal(t, 0, tk.CompletionPercentage())
}
