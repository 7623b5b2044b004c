package transport

import (
	"context"
	"net/http"
	"time"

	"github.com/jeswanthjohn/api-forge/internal/middleware"

	"go.uber.org/zap"
)

// Database states reported by the health endpoint
const (
	DatabaseConnected    = "connected"
	DatabaseDisconnected = "disconnected"
	DatabaseInMemory     = "in-memory"
)

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status      string  `json:"status"`
	Uptime      float64 `json:"uptime"`
	Environment string  `json:"environment"`
	Database    string  `json:"database"`
	Timestamp   string  `json:"timestamp"`
}

// PingFunc checks the storage backend
type PingFunc func(ctx context.Context) error

// HealthHandler reports liveness and database connectivity
type HealthHandler struct {
	ping    PingFunc
	env     string
	started time.Time
	logger  *zap.Logger
}

// NewHealthHandler creates a HealthHandler. A nil ping means products are
// kept in memory and there is no database to check.
func NewHealthHandler(ping PingFunc, env string, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		ping:    ping,
		env:     env,
		started: time.Now(),
		logger:  logger,
	}
}

// ServeHTTP answers 200 when the database is reachable and 503 otherwise
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:      "ok",
		Uptime:      time.Since(h.started).Seconds(),
		Environment: h.env,
		Database:    DatabaseConnected,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}

	status := http.StatusOK
	switch {
	case h.ping == nil:
		resp.Database = DatabaseInMemory
	default:
		if err := h.ping(r.Context()); err != nil {
			h.logger.Warn("Health check failed", zap.Error(err))
			resp.Status = "degraded"
			resp.Database = DatabaseDisconnected
			status = http.StatusServiceUnavailable
		}
	}

	middleware.RespondWithJSON(w, status, resp)
}
