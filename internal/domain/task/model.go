package task

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in-progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

type TaskPriority string

const (
	TaskPriorityLow      TaskPriority = "low"
	TaskPriorityMedium   TaskPriority = "medium"
	TaskPriorityHigh     TaskPriority = "high"
	TaskPriorityCritical TaskPriority = "critical"
)

type ReminderChannel string

const (
	ReminderChannelEmail ReminderChannel = "email"
	ReminderChannelPush  ReminderChannel = "push"
	ReminderChannelBoth  ReminderChannel = "both"
)

type DependencyKind string

const (
	DependencyBlocks    DependencyKind = "blocks"
	DependencyBlockedBy DependencyKind = "blocked-by"
	DependencyRelated   DependencyKind = "related"
)

const (
	maxTitleLen       = 200
	maxDescriptionLen = 2000
	maxSummaryLen     = 500
	maxCategoryLen    = 100
	maxTagLen         = 50
	maxNoteLen        = 1000
)

// Note is an immutable annotation appended to a task.
type Note struct {
	Content   string             `bson:"content" json:"content"`
	CreatedBy primitive.ObjectID `bson:"created_by" json:"created_by"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// Reminder schedules a notification for a task.
type Reminder struct {
	Time    time.Time       `bson:"time" json:"time"`
	Channel ReminderChannel `bson:"channel" json:"channel"`
	Sent    bool            `bson:"sent" json:"sent"`
}

// Attachment holds file metadata only; blob storage is elsewhere.
type Attachment struct {
	Filename     string    `bson:"filename" json:"filename"`
	OriginalName string    `bson:"original_name" json:"original_name"`
	Mimetype     string    `bson:"mimetype" json:"mimetype"`
	Size         int64     `bson:"size" json:"size"`
	URL          string    `bson:"url" json:"url"`
	UploadedAt   time.Time `bson:"uploaded_at" json:"uploaded_at"`
}

// TimeEstimate captures a coarse hours/minutes estimate.
type TimeEstimate struct {
	Hours   int `bson:"hours" json:"hours"`
	Minutes int `bson:"minutes" json:"minutes"`
}

// Dependency links a task to another task with a relation kind.
type Dependency struct {
	TaskID primitive.ObjectID `bson:"task_id" json:"task_id"`
	Kind   DependencyKind     `bson:"kind" json:"kind"`
}

// AIGenerated marks which fields were machine-suggested.
type AIGenerated struct {
	Description bool `bson:"description" json:"description"`
	Category    bool `bson:"category" json:"category"`
}

// Task represents a unit of work owned by exactly one user.
type Task struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title         string             `bson:"title" json:"title"`
	Description   string             `bson:"description,omitempty" json:"description,omitempty"`
	Summary       string             `bson:"summary,omitempty" json:"summary,omitempty"`
	Category      string             `bson:"category" json:"category"`
	Status        TaskStatus         `bson:"status" json:"status"`
	Priority      TaskPriority       `bson:"priority" json:"priority"`
	DueDate       time.Time          `bson:"due_date" json:"due_date"`
	CompletedAt   *time.Time         `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
	UserID        primitive.ObjectID `bson:"user" json:"user_id"`
	Tags          []string           `bson:"tags,omitempty" json:"tags,omitempty"`
	Notes         []Note             `bson:"notes,omitempty" json:"notes,omitempty"`
	Attachments   []Attachment       `bson:"attachments,omitempty" json:"attachments,omitempty"`
	EstimatedTime *TimeEstimate      `bson:"estimated_time,omitempty" json:"estimated_time,omitempty"`
	ActualTime    *TimeEstimate      `bson:"actual_time,omitempty" json:"actual_time,omitempty"`
	Reminders     []Reminder         `bson:"reminders,omitempty" json:"reminders,omitempty"`
	Dependencies  []Dependency       `bson:"dependencies,omitempty" json:"dependencies,omitempty"`
	AIGenerated   AIGenerated        `bson:"ai_generated" json:"ai_generated"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updated_at"`
}

func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted, TaskStatusCancelled:
		return true
	}
	return false
}

func (p TaskPriority) IsValid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityCritical:
		return true
	}
	return false
}

func (c ReminderChannel) IsValid() bool {
	switch c {
	case ReminderChannelEmail, ReminderChannelPush, ReminderChannelBoth:
		return true
	}
	return false
}

// IsOverdue reports whether the task is past due at the given instant.
func (t *Task) IsOverdue(now time.Time) bool {
	return t.Status != TaskStatusCompleted && t.DueDate.Before(now)
}

// IsDueToday reports whether the task's due date falls on the same calendar
// day as the given instant.
func (t *Task) IsDueToday(now time.Time) bool {
	y1, m1, d1 := t.DueDate.Date()
	y2, m2, d2 := now.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// IsDueSoon reports whether the task is due within the next three days and
// not yet completed.
func (t *Task) IsDueSoon(now time.Time) bool {
	if t.Status == TaskStatusCompleted {
		return false
	}
	diff := t.DueDate.Sub(now)
	return diff >= 0 && diff <= 3*24*time.Hour
}

// CompletionPercentage returns the coarse progress value used by the client:
// 100 for completed, 50 for in-progress, 0 otherwise.
func (t *Task) CompletionPercentage() int {
	switch t.Status {
	case TaskStatusCompleted:
		return 100
	case TaskStatusInProgress:
		return 50
	default:
		return 0
	}
}

// FieldError describes a single violated field constraint.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError aggregates every violated constraint for a request so the
// client can surface them all at once.
type ValidationError struct {
	Fields []FieldError `json:"errors"`
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = fmt.Sprintf("%s: %s", f.Field, f.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// Validate checks the full set of field constraints. It collects every
// violation instead of stopping at the first.
func (t *Task) Validate() error {
	verr := &ValidationError{}

	if strings.TrimSpace(t.Title) == "" {
		verr.add("title", "task title is required")
	} else if len(t.Title) > maxTitleLen {
		verr.add("title", fmt.Sprintf("task title cannot exceed %d characters", maxTitleLen))
	}
	if len(t.Description) > maxDescriptionLen {
		verr.add("description", fmt.Sprintf("task description cannot exceed %d characters", maxDescriptionLen))
	}
	if len(t.Summary) > maxSummaryLen {
		verr.add("summary", fmt.Sprintf("task summary cannot exceed %d characters", maxSummaryLen))
	}
	if strings.TrimSpace(t.Category) == "" {
		verr.add("category", "task category is required")
	} else if len(t.Category) > maxCategoryLen {
		verr.add("category", fmt.Sprintf("category cannot exceed %d characters", maxCategoryLen))
	}
	if t.DueDate.IsZero() {
		verr.add("due_date", "due date is required")
	}
	if !t.Status.IsValid() {
		verr.add("status", "invalid status value")
	}
	if !t.Priority.IsValid() {
		verr.add("priority", "invalid priority value")
	}
	for _, tag := range t.Tags {
		if len(tag) > maxTagLen {
			verr.add("tags", fmt.Sprintf("tag cannot exceed %d characters", maxTagLen))
			break
		}
	}
	if t.EstimatedTime != nil {
		validateTimeEstimate(verr, "estimated_time", t.EstimatedTime)
	}
	if t.ActualTime != nil {
		validateTimeEstimate(verr, "actual_time", t.ActualTime)
	}
	if t.UserID.IsZero() {
		verr.add("user", "user is required")
	}

	return verr.orNil()
}

func validateTimeEstimate(verr *ValidationError, field string, te *TimeEstimate) {
	if te.Hours < 0 || te.Hours > 24 {
		verr.add(field, "hours must be between 0 and 24")
	}
	if te.Minutes < 0 || te.Minutes > 59 {
		verr.add(field, "minutes must be between 0 and 59")
	}
}
