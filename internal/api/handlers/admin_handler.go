package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"taskhive/internal/api/dto"
	"taskhive/internal/domain/audit"
	"taskhive/internal/domain/task"
	"taskhive/internal/domain/user"
)

// AdminHandler exposes the admin surface: user management, system-wide task
// views, stats and the audit trail.
type AdminHandler struct {
	users    user.Service
	tasks    task.Service
	recorder *audit.Recorder
}

func NewAdminHandler(users user.Service, tasks task.Service, recorder *audit.Recorder) *AdminHandler {
	return &AdminHandler{users: users, tasks: tasks, recorder: recorder}
}

func userIDFrom(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return primitive.ObjectID{}, false
	}
	return id, true
}

// Stats returns system-wide counters
func (h *AdminHandler) Stats(c *gin.Context) {
	totalUsers, activeUsers, err := h.users.Counts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	taskStats, err := h.tasks.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.AdminStatsResponse{
		UserCount:      totalUsers,
		ActiveUsers:    activeUsers,
		TaskCount:      taskStats.TaskCount,
		CompletedTasks: taskStats.CompletedTasks,
		OverdueTasks:   taskStats.OverdueTasks,
	})
}

// ListUsers returns every account
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.users.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": UsersToResponse(users)})
}

// GetUser returns a single account
func (h *AdminHandler) GetUser(c *gin.Context) {
	id, ok := userIDFrom(c)
	if !ok {
		return
	}
	u, err := h.users.GetUser(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, UserToResponse(u))
}

// SetRole changes a user's role
func (h *AdminHandler) SetRole(c *gin.Context) {
	id, ok := userIDFrom(c)
	if !ok {
		return
	}

	var req dto.SetRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	u, err := h.users.SetRole(c.Request.Context(), id, user.Role(req.Role))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, UserToResponse(u))
}

// Activate re-enables a deactivated account
func (h *AdminHandler) Activate(c *gin.Context) {
	h.setActive(c, true)
}

// Deactivate disables an account; the user can no longer log in
func (h *AdminHandler) Deactivate(c *gin.Context) {
	h.setActive(c, false)
}

func (h *AdminHandler) setActive(c *gin.Context, active bool) {
	id, ok := userIDFrom(c)
	if !ok {
		return
	}
	u, err := h.users.SetActive(c.Request.Context(), id, active)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, UserToResponse(u))
}

// DeleteUser removes an account permanently
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	id, ok := userIDFrom(c)
	if !ok {
		return
	}
	if err := h.users.DeleteUser(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user deleted"})
}

// ListTasks returns tasks across all users, optionally filtered
func (h *AdminHandler) ListTasks(c *gin.Context) {
	var filter task.AdminFilter
	if v := c.Query("user_id"); v != "" {
		id, err := primitive.ObjectIDFromHex(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
			return
		}
		filter.UserID = &id
	}
	if v := c.Query("status"); v != "" {
		status := task.TaskStatus(v)
		if !status.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status value"})
			return
		}
		filter.Status = &status
	}

	tasks, err := h.tasks.ListAllTasks(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": TasksToResponse(tasks)})
}

// Audit returns recent audit entries, newest first
func (h *AdminHandler) Audit(c *gin.Context) {
	var userID *primitive.ObjectID
	if v := c.Query("user_id"); v != "" {
		id, err := primitive.ObjectIDFromHex(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
			return
		}
		userID = &id
	}

	var limit int64
	if v := c.Query("limit"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer"})
			return
		}
		limit = n
	}

	entries, err := h.recorder.Query(c.Request.Context(), userID, c.Query("action"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": AuditEntriesToResponse(entries)})
}

// UserAudit returns the audit trail of a single user
func (h *AdminHandler) UserAudit(c *gin.Context) {
	id, ok := userIDFrom(c)
	if !ok {
		return
	}

	entries, err := h.recorder.Query(c.Request.Context(), &id, "", 0)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": AuditEntriesToResponse(entries)})
}
