package handler

import (
	"net/http"

	"propsearch/internal/model"
	"propsearch/internal/repository"
	"propsearch/internal/service"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
)

var validActions = map[string]bool{
	"click":        true,
	"contact":      true,
	"view_details": true,
}

// FeedbackHandler handles feedback-related HTTP requests
type FeedbackHandler struct {
	searchService *service.SearchService
}

// NewFeedbackHandler creates a new feedback handler
func NewFeedbackHandler(searchService *service.SearchService) *FeedbackHandler {
	return &FeedbackHandler{
		searchService: searchService,
	}
}

// Submit handles POST /api/v1/feedback
func (h *FeedbackHandler) Submit(c *gin.Context) {
	var req model.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if !validActions[req.Action] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid action. Must be one of: click, contact, view_details"})
		return
	}

	err := h.searchService.LogFeedback(c.Request.Context(), &req)
	switch {
	case errors.Is(err, service.ErrSearchLogDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Feedback logging is not configured"})
		return
	case errors.Is(err, repository.ErrSearchNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown search_id"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log feedback: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, model.FeedbackResponse{
		Success: true,
		Message: "Feedback logged successfully",
	})
}
