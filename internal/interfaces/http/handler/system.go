package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/agricred/intake/internal/infrastructure/logger"
	"github.com/agricred/intake/internal/interfaces/http/dto"
	"github.com/agricred/intake/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionCounter reports the number of live wizard sessions
type SessionCounter interface {
	ActiveSessions(ctx context.Context) int
}

// Pinger checks a backing store
type Pinger interface {
	Ping() error
}

// SystemHandler handles system-related API endpoints
type SystemHandler struct {
	BaseHandler
	name      string
	version   string
	sessions  SessionCounter
	archive   Pinger
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler. archive may be nil when
// submissions are not archived.
func NewSystemHandler(name, version string, sessions SessionCounter, archive Pinger) *SystemHandler {
	return &SystemHandler{
		name:      name,
		version:   version,
		sessions:  sessions,
		archive:   archive,
		startTime: time.Now(),
	}
}

// SystemInfoResponse represents the system information response
type SystemInfoResponse struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
}

// PingResponse represents the ping response
type PingResponse struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// HealthResponse reports service health
type HealthResponse struct {
	Status         string `json:"status"`
	Time           string `json:"time"`
	Archive        string `json:"archive"`
	ActiveSessions int    `json:"active_sessions"`
}

// Routes returns the system route group
func (h *SystemHandler) Routes() *router.DomainGroup {
	g := router.NewDomainGroup("system", "/system")
	g.GET("/ping", h.Ping)
	g.GET("/info", h.GetSystemInfo)
	return g
}

// GetSystemInfo godoc
// @ID           getSystemInfo
// @Summary      Get system information
// @Description  Returns name, version and uptime
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[SystemInfoResponse]
// @Router       /system/info [get]
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	h.Success(c, SystemInfoResponse{
		Name:      h.name,
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	})
}

// Ping godoc
// @ID           getSystemPing
// @Summary      Ping
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[PingResponse]
// @Router       /system/ping [get]
func (h *SystemHandler) Ping(c *gin.Context) {
	h.Success(c, PingResponse{
		Message:   "pong",
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// Health checks the submission archive and reports the live session count.
// It answers 503 when the archive is unreachable.
func (h *SystemHandler) Health(c *gin.Context) {
	resp := HealthResponse{
		Status:  "healthy",
		Time:    time.Now().Format(time.RFC3339),
		Archive: "disabled",
	}
	if h.sessions != nil {
		resp.ActiveSessions = h.sessions.ActiveSessions(c.Request.Context())
	}

	status := http.StatusOK
	if h.archive != nil {
		resp.Archive = "ok"
		if err := h.archive.Ping(); err != nil {
			logger.GetGinLogger(c).Warn("Health check failed", zap.Error(err))
			resp.Status = "unhealthy"
			resp.Archive = "error"
			status = http.StatusServiceUnavailable
		}
	}
	c.JSON(status, dto.NewSuccessResponse(resp))
}
