package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"taskhive/internal/api/dto"
	"taskhive/internal/api/middleware"
	"taskhive/internal/domain/task"
	"taskhive/internal/export"
	"taskhive/internal/infrastructure/cache"
	"taskhive/pkg/logger"
)

var log = logger.NewLogger()

const dashboardCacheTTL = 5 * time.Minute

// TaskHandler handles HTTP requests for task operations
type TaskHandler struct {
	service task.Service
	redis   *cache.RedisClient
}

// NewTaskHandler creates a new TaskHandler instance
func NewTaskHandler(service task.Service, redis *cache.RedisClient) *TaskHandler {
	return &TaskHandler{service: service, redis: redis}
}

func actorFrom(c *gin.Context) (task.Actor, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return task.Actor{}, false
	}
	return task.Actor{ID: userID, Admin: middleware.IsAdmin(c)}, true
}

func taskIDFrom(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return primitive.ObjectID{}, false
	}
	return id, true
}

// CreateTask creates a new task owned by the caller
func (h *TaskHandler) CreateTask(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := task.CreateTaskInput{
		Title:         req.Title,
		Description:   req.Description,
		Summary:       req.Summary,
		Category:      req.Category,
		Priority:      task.TaskPriority(req.Priority),
		DueDate:       req.DueDate,
		Tags:          req.Tags,
		EstimatedTime: req.EstimatedTime,
		OwnerID:       actor.ID,
	}
	if req.AIGenerated != nil {
		input.AIGenerated = task.AIGenerated{
			Description: req.AIGenerated.Description,
			Category:    req.AIGenerated.Category,
		}
	}

	created, err := h.service.CreateTask(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": TaskToResponse(created)})
}

// ListTasks returns the caller's tasks, filtered, sorted and paginated
func (h *TaskHandler) ListTasks(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	criteria, err := criteriaFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	page, err := h.service.ListTasks(c.Request.Context(), actor.ID, criteria)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TaskListResponse{
		Tasks: TasksToResponse(page.Tasks),
		Total: page.Total,
		Page:  page.Page,
		Limit: page.Limit,
		Pages: page.Pages,
	})
}

func criteriaFromQuery(c *gin.Context) (task.ListCriteria, error) {
	criteria := task.ListCriteria{
		Status:    c.Query("status"),
		Priority:  c.Query("priority"),
		Category:  c.Query("category"),
		Search:    c.Query("search"),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}

	if v := c.Query("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil {
			return criteria, errors.New("page must be an integer")
		}
		criteria.Page = page
	}
	if v := c.Query("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			return criteria, errors.New("limit must be an integer")
		}
		criteria.Limit = limit
	}
	if v := c.Query("due_date_from"); v != "" {
		from, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return criteria, errors.New("due_date_from must be RFC3339")
		}
		criteria.DueDateFrom = &from
	}
	if v := c.Query("due_date_to"); v != "" {
		to, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return criteria, errors.New("due_date_to must be RFC3339")
		}
		criteria.DueDateTo = &to
	}

	return criteria, nil
}

// GetTask returns a single task
func (h *TaskHandler) GetTask(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := taskIDFrom(c)
	if !ok {
		return
	}

	t, err := h.service.GetTask(c.Request.Context(), id, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": TaskToResponse(t)})
}

// UpdateTask patches the supplied fields
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := taskIDFrom(c)
	if !ok {
		return
	}

	var req dto.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := task.UpdateTaskInput{
		Title:         req.Title,
		Description:   req.Description,
		Summary:       req.Summary,
		Category:      req.Category,
		DueDate:       req.DueDate,
		Tags:          req.Tags,
		EstimatedTime: req.EstimatedTime,
		ActualTime:    req.ActualTime,
	}
	if req.Status != nil {
		status := task.TaskStatus(*req.Status)
		if !status.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status value"})
			return
		}
		input.Status = &status
	}
	if req.Priority != nil {
		priority := task.TaskPriority(*req.Priority)
		if !priority.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid priority value"})
			return
		}
		input.Priority = &priority
	}

	updated, err := h.service.UpdateTask(c.Request.Context(), id, actor, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": TaskToResponse(updated)})
}

// DeleteTask removes a task permanently
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := taskIDFrom(c)
	if !ok {
		return
	}

	if err := h.service.DeleteTask(c.Request.Context(), id, actor); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "task deleted"})
}

// CompleteTask transitions the task to completed
func (h *TaskHandler) CompleteTask(c *gin.Context) {
	h.transition(c, task.TaskStatusCompleted)
}

// CancelTask transitions the task to cancelled
func (h *TaskHandler) CancelTask(c *gin.Context) {
	h.transition(c, task.TaskStatusCancelled)
}

func (h *TaskHandler) transition(c *gin.Context, status task.TaskStatus) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := taskIDFrom(c)
	if !ok {
		return
	}

	updated, err := h.service.TransitionStatus(c.Request.Context(), id, actor, status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": TaskToResponse(updated)})
}

// AddNote appends a note to the task
func (h *TaskHandler) AddNote(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := taskIDFrom(c)
	if !ok {
		return
	}

	var req dto.AddNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.service.AddNote(c.Request.Context(), id, actor, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": TaskToResponse(updated)})
}

// AddReminder schedules a reminder for the task
func (h *TaskHandler) AddReminder(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := taskIDFrom(c)
	if !ok {
		return
	}

	var req dto.AddReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.service.AddReminder(c.Request.Context(), id, actor,
		req.Time, task.ReminderChannel(req.Channel))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": TaskToResponse(updated)})
}

// Dashboard returns the caller's aggregated dashboard. Responses are cached
// per user and invalidated on every task mutation.
func (h *TaskHandler) Dashboard(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	key := cache.DashboardKey(actor.ID.Hex())
	if cached, err := h.redis.Get(c.Request.Context(), key); err == nil && cached != "" {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(cached))
		return
	}

	summary, err := h.service.Summarize(c.Request.Context(), actor.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	response := DashboardToResponse(summary)
	if payload, err := json.Marshal(response); err == nil {
		if err := h.redis.Set(c.Request.Context(), key, string(payload), dashboardCacheTTL); err != nil &&
			!errors.Is(err, cache.ErrCacheUnavailable) {
			log.Error("failed to cache dashboard", zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, response)
}

// ExportTasks streams the caller's tasks as csv, excel or pdf
func (h *TaskHandler) ExportTasks(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	tasks, err := h.service.ListOwned(c.Request.Context(), actor.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	format := c.Param("format")
	result, err := export.Export(tasks, format)
	if err != nil {
		if format != export.FormatCSV && format != export.FormatExcel && format != export.FormatPDF {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.Error("export rendering failed", zap.String("format", format), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to render export"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	c.Data(http.StatusOK, result.ContentType, result.Data)
}
