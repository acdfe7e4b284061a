package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"propsearch/internal/logger"
	"propsearch/internal/model"
	"propsearch/internal/service"

	"github.com/gin-gonic/gin"
)

// SearchHandler handles search-related HTTP requests
type SearchHandler struct {
	searchService *service.SearchService
	defaultLimit  int
	maxLimit      int
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(searchService *service.SearchService, defaultLimit, maxLimit int) *SearchHandler {
	return &SearchHandler{
		searchService: searchService,
		defaultLimit:  defaultLimit,
		maxLimit:      maxLimit,
	}
}

// bind reads a search request, coercing loosely typed fields. It writes a
// 400 response and returns nil when the body is not JSON.
func (h *SearchHandler) bind(c *gin.Context) *model.SearchRequest {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return nil
	}
	req, err := model.ParseSearchRequest(body, h.defaultLimit, h.maxLimit)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return nil
	}
	return req
}

// Search handles POST /api/search and /api/v1/search
func (h *SearchHandler) Search(c *gin.Context) {
	req := h.bind(c)
	if req == nil {
		return
	}

	response, err := h.searchService.Search(c.Request.Context(), req.Query, req.TopK, req.UseEnrichment)
	if err != nil {
		logger.Logger.Errorw("Search failed", "query", req.Query, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, response)
}

// SearchStream handles POST /api/v1/search/stream - SSE streaming search
func (h *SearchHandler) SearchStream(c *gin.Context) {
	req := h.bind(c)
	if req == nil {
		return
	}

	// Set SSE headers
	c.Header("Content-Type", "text/event-stream; charset=utf-8")
	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Streaming not supported"})
		return
	}

	sendSSE(c, "start", map[string]any{"query": req.Query})
	flusher.Flush()

	ctx := c.Request.Context()
	response, err := h.searchService.SearchStream(ctx, req.Query, req.TopK, req.UseEnrichment, func(event string, data any) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		sendSSE(c, event, data)
		flusher.Flush()
		return nil
	})
	if err != nil {
		logger.Logger.Warnw("Streaming search aborted", "query", req.Query, "error", err)
		sendSSE(c, "error", map[string]any{"error": err.Error()})
		flusher.Flush()
		return
	}

	sendSSE(c, "results", response)
	flusher.Flush()

	sendSSE(c, "done", nil)
	flusher.Flush()
}

// sendSSE sends a Server-Sent Event
func sendSSE(c *gin.Context, event string, data any) {
	if data == nil {
		fmt.Fprintf(c.Writer, "event: %s\ndata: {}\n\n", event)
		return
	}
	jsonData, err := json.Marshal(data)
	if err != nil {
		fmt.Fprintf(c.Writer, "event: error\ndata: {\"error\": \"JSON marshal failed\"}\n\n")
		return
	}
	fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", event, jsonData)
}

// GetListing handles GET /api/v1/listings/:id
func (h *SearchHandler) GetListing(c *gin.Context) {
	listing, found, err := h.searchService.GetListing(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get listing: " + err.Error()})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
		return
	}

	c.JSON(http.StatusOK, listing)
}
