package dto

import (
	"time"

	"taskhive/internal/domain/task"
)

// CreateTaskRequest is the payload for creating a task
type CreateTaskRequest struct {
	Title         string             `json:"title" binding:"required"`
	Description   string             `json:"description"`
	Summary       string             `json:"summary"`
	Category      string             `json:"category" binding:"required"`
	Priority      string             `json:"priority"`
	DueDate       time.Time          `json:"due_date" binding:"required"`
	Tags          []string           `json:"tags"`
	EstimatedTime *task.TimeEstimate `json:"estimated_time"`
	AIGenerated   *AIGeneratedFlags  `json:"ai_generated"`
}

// UpdateTaskRequest is the payload for patching a task. Absent fields are
// left untouched.
type UpdateTaskRequest struct {
	Title         *string            `json:"title"`
	Description   *string            `json:"description"`
	Summary       *string            `json:"summary"`
	Category      *string            `json:"category"`
	Status        *string            `json:"status"`
	Priority      *string            `json:"priority"`
	DueDate       *time.Time         `json:"due_date"`
	Tags          *[]string          `json:"tags"`
	EstimatedTime *task.TimeEstimate `json:"estimated_time"`
	ActualTime    *task.TimeEstimate `json:"actual_time"`
}

// AIGeneratedFlags marks which fields came from the AI collaborator.
type AIGeneratedFlags struct {
	Description bool `json:"description"`
	Category    bool `json:"category"`
}

// AddNoteRequest appends a note to a task
type AddNoteRequest struct {
	Content string `json:"content" binding:"required"`
}

// AddReminderRequest schedules a reminder for a task
type AddReminderRequest struct {
	Time    time.Time `json:"time" binding:"required"`
	Channel string    `json:"channel"`
}

// TaskResponse is the API representation of a task
type TaskResponse struct {
	ID                   string             `json:"id"`
	Title                string             `json:"title"`
	Description          string             `json:"description,omitempty"`
	Summary              string             `json:"summary,omitempty"`
	Category             string             `json:"category"`
	Status               string             `json:"status"`
	Priority             string             `json:"priority"`
	DueDate              time.Time          `json:"due_date"`
	CompletedAt          *time.Time         `json:"completed_at,omitempty"`
	UserID               string             `json:"user_id"`
	Tags                 []string           `json:"tags,omitempty"`
	Notes                []NoteResponse     `json:"notes,omitempty"`
	Reminders            []ReminderResponse `json:"reminders,omitempty"`
	EstimatedTime        *task.TimeEstimate `json:"estimated_time,omitempty"`
	ActualTime           *task.TimeEstimate `json:"actual_time,omitempty"`
	AIGenerated          AIGeneratedFlags   `json:"ai_generated"`
	IsOverdue            bool               `json:"is_overdue"`
	IsDueToday           bool               `json:"is_due_today"`
	IsDueSoon            bool               `json:"is_due_soon"`
	CompletionPercentage int                `json:"completion_percentage"`
	CreatedAt            time.Time          `json:"created_at"`
	UpdatedAt            time.Time          `json:"updated_at"`
}

type NoteResponse struct {
	Content   string    `json:"content"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

type ReminderResponse struct {
	Time    time.Time `json:"time"`
	Channel string    `json:"channel"`
	Sent    bool      `json:"sent"`
}

// TaskListResponse is a page of tasks with pagination metadata
type TaskListResponse struct {
	Tasks []TaskResponse `json:"tasks"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
	Pages int64          `json:"pages"`
}

// DashboardResponse is the aggregated per-user dashboard
type DashboardResponse struct {
	TasksDueToday     []TaskResponse     `json:"tasks_due_today"`
	OverdueTasks      []TaskResponse     `json:"overdue_tasks"`
	UpcomingTasks     []TaskResponse     `json:"upcoming_tasks"`
	CompletedTrend    []TrendPoint       `json:"completed_trend"`
	PopularCategories []CategoryCount    `json:"popular_categories"`
	StatusCounts      map[string]int64   `json:"status_counts"`
}

type TrendPoint struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}
