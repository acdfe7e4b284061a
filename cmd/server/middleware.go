package main

import (
	"net/http"
	"strings"
	"time"

	"propsearch/internal/logger"

	"github.com/gin-gonic/gin"
)

// requestLogger logs one line per request through zap.
func requestLogger() gin.HandlerFunc {
	log := logger.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Infow("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
	}
}

// recovery turns a handler panic into a JSON 500.
func recovery() gin.HandlerFunc {
	log := logger.Named("http")
	return gin.CustomRecovery(func(c *gin.Context, err any) {
		log.Errorw("panic recovered", "path", c.Request.URL.Path, "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	})
}

// setupNoRoute answers unknown paths with a JSON 404.
func setupNoRoute(router *gin.Engine) {
	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, gin.H{"error": "API endpoint not found"})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{
			"error": "not found",
			"hint":  "POST /api/search with {\"query\": \"3BHK in Pune under 1.2 Cr\"}",
		})
	})
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
