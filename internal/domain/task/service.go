package task

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"taskhive/internal/infrastructure/cache"
)

const upcomingWindowDays = 7

// Actor identifies the caller of a task operation. Ownership checks trust
// this identity; admins may act on any task.
type Actor struct {
	ID    primitive.ObjectID
	Admin bool
}

type CreateTaskInput struct {
	Title         string
	Description   string
	Summary       string
	Category      string
	Priority      TaskPriority
	DueDate       time.Time
	Tags          []string
	EstimatedTime *TimeEstimate
	AIGenerated   AIGenerated
	OwnerID       primitive.ObjectID
}

type UpdateTaskInput struct {
	Title         *string
	Description   *string
	Summary       *string
	Category      *string
	Status        *TaskStatus
	Priority      *TaskPriority
	DueDate       *time.Time
	Tags          *[]string
	EstimatedTime *TimeEstimate
	ActualTime    *TimeEstimate
}

// TaskPage is a single page of list results plus pagination metadata.
type TaskPage struct {
	Tasks []Task
	Total int64
	Page  int
	Limit int
	Pages int64
}

// DashboardSummary aggregates the five per-user dashboard views. Each view is
// computed independently; under concurrent writes they may reflect slightly
// different points in time, which is acceptable for a reporting surface.
type DashboardSummary struct {
	TasksDueToday     []Task                 `json:"tasks_due_today"`
	OverdueTasks      []Task                 `json:"overdue_tasks"`
	UpcomingTasks     []Task                 `json:"upcoming_tasks"`
	CompletedTrend    []TrendPoint           `json:"completed_trend"`
	PopularCategories []CategoryCount        `json:"popular_categories"`
	StatusCounts      map[TaskStatus]int64   `json:"status_counts"`
}

// AdminStats is the system-wide task portion of the admin dashboard.
type AdminStats struct {
	TaskCount      int64 `json:"task_count"`
	CompletedTasks int64 `json:"completed_tasks"`
	OverdueTasks   int64 `json:"overdue_tasks"`
}

type Service interface {
	CreateTask(ctx context.Context, input CreateTaskInput) (*Task, error)
	GetTask(ctx context.Context, id primitive.ObjectID, actor Actor) (*Task, error)
	ListTasks(ctx context.Context, ownerID primitive.ObjectID, criteria ListCriteria) (*TaskPage, error)
	ListOwned(ctx context.Context, ownerID primitive.ObjectID) ([]Task, error)
	UpdateTask(ctx context.Context, id primitive.ObjectID, actor Actor, input UpdateTaskInput) (*Task, error)
	TransitionStatus(ctx context.Context, id primitive.ObjectID, actor Actor, status TaskStatus) (*Task, error)
	AddNote(ctx context.Context, id primitive.ObjectID, actor Actor, content string) (*Task, error)
	AddReminder(ctx context.Context, id primitive.ObjectID, actor Actor, at time.Time, channel ReminderChannel) (*Task, error)
	DeleteTask(ctx context.Context, id primitive.ObjectID, actor Actor) error
	Summarize(ctx context.Context, ownerID primitive.ObjectID) (*DashboardSummary, error)

	// Admin surface
	ListAllTasks(ctx context.Context, filter AdminFilter) ([]Task, error)
	Stats(ctx context.Context) (*AdminStats, error)
	CriticalOpenTasks(ctx context.Context) ([]Task, error)
	OverdueAllTasks(ctx context.Context) ([]Task, error)
}

type service struct {
	repo   TaskRepository
	redis  *cache.RedisClient
	logger *zap.Logger
}

func NewService(repo TaskRepository, redis *cache.RedisClient, logger *zap.Logger) Service {
	return &service{repo: repo, redis: redis, logger: logger}
}

func (s *service) CreateTask(ctx context.Context, input CreateTaskInput) (*Task, error) {
	now := time.Now()

	priority := input.Priority
	if priority == "" {
		priority = TaskPriorityMedium
	}

	task := &Task{
		ID:            primitive.NewObjectID(),
		Title:         strings.TrimSpace(input.Title),
		Description:   input.Description,
		Summary:       input.Summary,
		Category:      strings.TrimSpace(input.Category),
		Status:        TaskStatusPending,
		Priority:      priority,
		DueDate:       input.DueDate,
		UserID:        input.OwnerID,
		Tags:          input.Tags,
		EstimatedTime: input.EstimatedTime,
		AIGenerated:   input.AIGenerated,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, task); err != nil {
		return nil, err
	}

	s.invalidateDashboard(ctx, task.UserID)
	s.logger.Info("task created",
		zap.String("task_id", task.ID.Hex()),
		zap.String("user_id", task.UserID.Hex()))

	return task, nil
}

func (s *service) GetTask(ctx context.Context, id primitive.ObjectID, actor Actor) (*Task, error) {
	return s.authorize(ctx, id, actor)
}

func (s *service) ListTasks(ctx context.Context, ownerID primitive.ObjectID, criteria ListCriteria) (*TaskPage, error) {
	if err := criteria.Normalize(); err != nil {
		return nil, err
	}

	tasks, total, err := s.repo.FindAll(ctx, ownerID, &criteria)
	if err != nil {
		return nil, err
	}

	return &TaskPage{
		Tasks: tasks,
		Total: total,
		Page:  criteria.Page,
		Limit: criteria.Limit,
		Pages: criteria.Pages(total),
	}, nil
}

func (s *service) ListOwned(ctx context.Context, ownerID primitive.ObjectID) ([]Task, error) {
	return s.repo.FindOwned(ctx, ownerID)
}

func (s *service) UpdateTask(ctx context.Context, id primitive.ObjectID, actor Actor, input UpdateTaskInput) (*Task, error) {
	task, err := s.authorize(ctx, id, actor)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		task.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Summary != nil {
		task.Summary = *input.Summary
	}
	if input.Category != nil {
		task.Category = strings.TrimSpace(*input.Category)
	}
	if input.Priority != nil {
		task.Priority = *input.Priority
	}
	if input.DueDate != nil {
		task.DueDate = *input.DueDate
	}
	if input.Tags != nil {
		task.Tags = *input.Tags
	}
	if input.EstimatedTime != nil {
		task.EstimatedTime = input.EstimatedTime
	}
	if input.ActualTime != nil {
		task.ActualTime = input.ActualTime
	}
	if input.Status != nil {
		applyStatus(task, *input.Status, time.Now())
	}
	task.UpdatedAt = time.Now()

	if err := task.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, task); err != nil {
		return nil, err
	}

	s.invalidateDashboard(ctx, task.UserID)
	return task, nil
}

func (s *service) TransitionStatus(ctx context.Context, id primitive.ObjectID, actor Actor, status TaskStatus) (*Task, error) {
	if !status.IsValid() {
		verr := &ValidationError{}
		verr.add("status", "invalid status value")
		return nil, verr
	}

	task, err := s.authorize(ctx, id, actor)
	if err != nil {
		return nil, err
	}

	applyStatus(task, status, time.Now())
	task.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, task); err != nil {
		return nil, err
	}

	s.invalidateDashboard(ctx, task.UserID)
	s.logger.Info("task status changed",
		zap.String("task_id", task.ID.Hex()),
		zap.String("status", string(status)))

	return task, nil
}

func (s *service) AddNote(ctx context.Context, id primitive.ObjectID, actor Actor, content string) (*Task, error) {
	verr := &ValidationError{}
	if strings.TrimSpace(content) == "" {
		verr.add("content", "note content is required")
	} else if len(content) > maxNoteLen {
		verr.add("content", fmt.Sprintf("note cannot exceed %d characters", maxNoteLen))
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	task, err := s.authorize(ctx, id, actor)
	if err != nil {
		return nil, err
	}

	task.Notes = append(task.Notes, Note{
		Content:   content,
		CreatedBy: actor.ID,
		CreatedAt: time.Now(),
	})
	task.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *service) AddReminder(ctx context.Context, id primitive.ObjectID, actor Actor, at time.Time, channel ReminderChannel) (*Task, error) {
	if channel == "" {
		channel = ReminderChannelBoth
	}

	verr := &ValidationError{}
	if at.IsZero() {
		verr.add("time", "reminder time is required")
	}
	if !channel.IsValid() {
		verr.add("channel", "invalid reminder channel")
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	task, err := s.authorize(ctx, id, actor)
	if err != nil {
		return nil, err
	}

	task.Reminders = append(task.Reminders, Reminder{Time: at, Channel: channel})
	task.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *service) DeleteTask(ctx context.Context, id primitive.ObjectID, actor Actor) error {
	task, err := s.authorize(ctx, id, actor)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidateDashboard(ctx, task.UserID)
	s.logger.Info("task deleted",
		zap.String("task_id", id.Hex()),
		zap.String("user_id", task.UserID.Hex()))

	return nil
}

func (s *service) Summarize(ctx context.Context, ownerID primitive.ObjectID) (*DashboardSummary, error) {
	now := time.Now()

	dueToday, err := s.repo.FindDueToday(ctx, ownerID, now)
	if err != nil {
		return nil, err
	}
	overdue, err := s.repo.FindOverdue(ctx, ownerID, now)
	if err != nil {
		return nil, err
	}
	upcoming, err := s.repo.FindUpcoming(ctx, ownerID, now, upcomingWindowDays)
	if err != nil {
		return nil, err
	}
	trend, err := s.repo.CompletedTrend(ctx, ownerID, now.AddDate(0, 0, -7))
	if err != nil {
		return nil, err
	}
	categories, err := s.repo.PopularCategories(ctx, ownerID, 5)
	if err != nil {
		return nil, err
	}
	counts, err := s.repo.StatusCounts(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	// Every status is present in the response, zero-defaulted.
	statusCounts := map[TaskStatus]int64{
		TaskStatusPending:    0,
		TaskStatusInProgress: 0,
		TaskStatusCompleted:  0,
		TaskStatusCancelled:  0,
	}
	for status, count := range counts {
		statusCounts[status] = count
	}

	return &DashboardSummary{
		TasksDueToday:     dueToday,
		OverdueTasks:      overdue,
		UpcomingTasks:     upcoming,
		CompletedTrend:    trend,
		PopularCategories: categories,
		StatusCounts:      statusCounts,
	}, nil
}

func (s *service) ListAllTasks(ctx context.Context, filter AdminFilter) ([]Task, error) {
	return s.repo.FindAllAdmin(ctx, filter)
}

func (s *service) Stats(ctx context.Context) (*AdminStats, error) {
	total, err := s.repo.CountAll(ctx)
	if err != nil {
		return nil, err
	}
	completed, err := s.repo.CountByStatus(ctx, TaskStatusCompleted)
	if err != nil {
		return nil, err
	}
	overdue, err := s.repo.CountOverdue(ctx, time.Now())
	if err != nil {
		return nil, err
	}
	return &AdminStats{TaskCount: total, CompletedTasks: completed, OverdueTasks: overdue}, nil
}

func (s *service) CriticalOpenTasks(ctx context.Context) ([]Task, error) {
	return s.repo.FindCriticalOpen(ctx)
}

func (s *service) OverdueAllTasks(ctx context.Context) ([]Task, error) {
	return s.repo.FindOverdueAll(ctx, time.Now())
}

// authorize loads the task and enforces the owner-or-admin rule before any
// mutation touches the store.
func (s *service) authorize(ctx context.Context, id primitive.ObjectID, actor Actor) (*Task, error) {
	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Admin && task.UserID != actor.ID {
		return nil, ErrNotOwner
	}
	return task, nil
}

// applyStatus sets the new status and stamps CompletedAt the first time a
// task transitions into completed. An already-set CompletedAt is never
// touched again.
func applyStatus(task *Task, status TaskStatus, now time.Time) {
	task.Status = status
	if status == TaskStatusCompleted && task.CompletedAt == nil {
		completedAt := now
		task.CompletedAt = &completedAt
	}
}

func (s *service) invalidateDashboard(ctx context.Context, ownerID primitive.ObjectID) {
	if err := s.redis.InvalidateDashboard(ctx, ownerID.Hex()); err != nil &&
		!errors.Is(err, cache.ErrCacheUnavailable) {
		s.logger.Error("failed to invalidate dashboard cache", zap.Error(err))
	}
}
