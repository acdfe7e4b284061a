package handler

import (
	"net/http"

	"propsearch/internal/dataset"

	"github.com/gin-gonic/gin"
)

// BuildInfo identifies the running binary.
type BuildInfo struct {
	Version   string `json:"version"`
	BuildTime string `json:"build_time"`
	GitCommit string `json:"git_commit"`
}

// HealthHandler serves /health and /version.
type HealthHandler struct {
	data  *dataset.Handle
	build BuildInfo
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(data *dataset.Handle, build BuildInfo) *HealthHandler {
	return &HealthHandler{data: data, build: build}
}

// Health handles GET /health. The dataset loads lazily, so "not_loaded" is healthy.
func (h *HealthHandler) Health(c *gin.Context) {
	status := "not_loaded"
	if h.data.Loaded() {
		status = "loaded"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":     "healthy",
		"service":    "propsearch",
		"dataset":    status,
		"version":    h.build.Version,
		"build_time": h.build.BuildTime,
		"git_commit": h.build.GitCommit,
	})
}

// Version handles GET /version
func (h *HealthHandler) Version(c *gin.Context) {
	c.JSON(http.StatusOK, h.build)
}
