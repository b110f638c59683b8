package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskhive/internal/api/dto"
	"taskhive/internal/domain/ai"
)

// AIHandler exposes the AI collaborator endpoints. They never fail because
// the upstream model is unavailable; the fallback always answers.
type AIHandler struct {
	service ai.Service
}

func NewAIHandler(service ai.Service) *AIHandler {
	return &AIHandler{service: service}
}

// PredictCategory suggests a category for a task title
func (h *AIHandler) PredictCategory(c *gin.Context) {
	var req dto.PredictCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	suggestion := h.service.SuggestCategory(c.Request.Context(), req.Title, req.PreviousCategories)
	c.JSON(http.StatusOK, dto.SuggestionResponse{
		Value:  suggestion.Value,
		Source: suggestion.Source,
	})
}

// GenerateDescription expands a title and summary into a description
func (h *AIHandler) GenerateDescription(c *gin.Context) {
	var req dto.GenerateDescriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	suggestion := h.service.GenerateDescription(c.Request.Context(), req.Title, req.Summary)
	c.JSON(http.StatusOK, dto.SuggestionResponse{
		Value:  suggestion.Value,
		Source: suggestion.Source,
	})
}

// AdminReport lists critical and overdue tasks across all users
func (h *AIHandler) AdminReport(c *gin.Context) {
	report, err := h.service.Report(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ReportToResponse(report))
}
