package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskhive/internal/api/dto"
	"taskhive/internal/api/middleware"
	"taskhive/internal/domain/audit"
	"taskhive/internal/domain/user"
)

// AuthHandler handles registration, login and the caller's own profile
type AuthHandler struct {
	service  user.Service
	recorder *audit.Recorder
}

func NewAuthHandler(service user.Service, recorder *audit.Recorder) *AuthHandler {
	return &AuthHandler{service: service, recorder: recorder}
}

// record writes an audit entry for the pre-auth endpoints, where the audit
// middleware has no identity to work with yet.
func (h *AuthHandler) record(c *gin.Context, action string, u *user.User, status int) {
	h.recorder.Record(audit.Entry{
		UserID: u.ID,
		Action: action,
		Details: audit.Details{
			Method: c.Request.Method,
			Path:   c.Request.URL.Path,
			Status: status,
		},
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
}

// Register creates an account and returns a token. Supplying the configured
// admin code grants the admin role.
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.Register(c.Request.Context(), user.RegisterInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		AdminCode: req.AdminCode,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	h.record(c, audit.ActionUserRegister, result.User, http.StatusCreated)
	c.JSON(http.StatusCreated, dto.AuthResponse{
		User:  UserToResponse(result.User),
		Token: result.Token,
	})
}

// Login authenticates by email or username
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.Login(c.Request.Context(), req.Identifier, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	h.record(c, audit.ActionUserLogin, result.User, http.StatusOK)
	c.JSON(http.StatusOK, dto.AuthResponse{
		User:  UserToResponse(result.User),
		Token: result.Token,
	})
}

// Me returns the authenticated caller's profile
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	u, err := h.service.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, UserToResponse(u))
}

// UpdateProfile patches the caller's profile fields
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	u, err := h.service.UpdateProfile(c.Request.Context(), userID, user.UpdateProfileInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Avatar:    req.Avatar,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, UserToResponse(u))
}

// ChangePassword rotates the caller's password after verifying the current one
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.ChangePassword(c.Request.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}

// Logout is stateless: the client discards its token. The endpoint exists so
// the action lands in the audit trail.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}
