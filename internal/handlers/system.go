package handlers

import (
	"context"
	"net/http"
	"time"

	"taskmanager/internal/dto"

	"github.com/gin-gonic/gin"
	"github.com/swaggo/swag"
)

// SystemHandler serves the service's informational endpoints.
type SystemHandler struct {
	env     string
	version string
	started time.Time
	now     func() time.Time
}

func NewSystemHandler(env, version string, started time.Time) *SystemHandler {
	return &SystemHandler{env: env, version: version, started: started, now: time.Now}
}

// Health godoc
// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  dto.HealthResponse
// @Router       /health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	now := h.now()
	c.JSON(http.StatusOK, dto.HealthResponse{
		Status:      dto.StatusSuccess,
		Message:     "Server is running",
		Timestamp:   now.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		Uptime:      now.Sub(h.started).Seconds(),
		Environment: h.env,
	})
}

// Info describes the API entry points.
func (h *SystemHandler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Task Manager API",
		"version": h.version,
		"endpoints": gin.H{
			"health":        "/api/v1/health",
			"tasks":         "/api/v1/tasks",
			"documentation": "/swagger/index.html",
		},
	})
}

func (h *SystemHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "Task Manager API",
		"version": h.version,
		"env":     h.env,
		"docs":    "/swagger/index.html",
		"spec":    "/swagger-doc.json",
		"health":  "/api/v1/health",
		"api":     "/api/v1",
	})
}

func (h *SystemHandler) Version(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"version": h.version})
}

func (h *SystemHandler) SwaggerDoc(c *gin.Context) {
	doc, err := swag.ReadDoc("swagger")
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(doc))
}

// Pinger reports whether the task store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Ready answers 200 when the store responds within two seconds, 503 otherwise.
func Ready(p Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := p.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{Status: dto.StatusError, Message: "Task store unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": dto.StatusSuccess, "message": "Ready"})
	}
}
