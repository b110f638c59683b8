package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskhive/internal/domain/task"
	"taskhive/internal/domain/user"
)

// respondError maps domain errors onto HTTP status codes. Validation errors
// carry the full field list so the client can surface every violation.
func respondError(c *gin.Context, err error) {
	var taskVErr *task.ValidationError
	if errors.As(err, &taskVErr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "details": taskVErr.Fields})
		return
	}
	var userVErr *user.ValidationError
	if errors.As(err, &userVErr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "details": userVErr.Fields})
		return
	}

	switch {
	case errors.Is(err, task.ErrTaskNotFound), errors.Is(err, user.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, task.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, user.ErrInvalidCredentials), errors.Is(err, user.ErrUserInactive):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, user.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
