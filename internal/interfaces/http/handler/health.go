package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/erp/procurement/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Pinger checks a dependency, typically (*sql.DB).PingContext
type Pinger func(ctx context.Context) error

// HealthHandler reports liveness including the database connection
type HealthHandler struct {
	BaseHandler
	name      string
	version   string
	db        Pinger
	timeout   time.Duration
	startTime time.Time
	logger    *zap.Logger
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status    string            `json:"status"`
	Name      string            `json:"name"`
	Version   string            `json:"version"`
	GoVersion string            `json:"go_version"`
	Uptime    string            `json:"uptime"`
	Checks    map[string]string `json:"checks"`
}

// NewHealthHandler creates a HealthHandler. db may be nil when there is nothing to ping.
func NewHealthHandler(name, version string, db Pinger, logger *zap.Logger) *HealthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HealthHandler{
		name:      name,
		version:   version,
		db:        db,
		timeout:   2 * time.Second,
		startTime: time.Now(),
		logger:    logger,
	}
}

// Health answers 200 when the database responds and 503 otherwise
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	resp := HealthResponse{
		Status:    "ok",
		Name:      h.name,
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Checks:    map[string]string{},
	}

	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
		defer cancel()
		if err := h.db(ctx); err != nil {
			h.logger.Warn("health check failed", zap.String("check", "database"), zap.Error(err))
			resp.Status = "degraded"
			resp.Checks["database"] = "unreachable"
			c.JSON(http.StatusServiceUnavailable, dto.Response{
				Success: false,
				Data:    resp,
				Error: &dto.ErrorInfo{
					Code:      dto.ErrCodeUnavailable,
					Message:   "database unreachable",
					RequestID: getRequestID(c),
					Timestamp: time.Now().UTC(),
				},
			})
			return
		}
		resp.Checks["database"] = "ok"
	}

	h.Success(c, resp)
}
