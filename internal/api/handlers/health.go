package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/pkg/errors"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/pkg/logger"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/pkg/utils"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	db        *sql.DB
	generator string
	logger    *logger.Logger
}

// NewHealthHandler creates a new health handler. generator names the
// configured content generator and is reported on readiness.
func NewHealthHandler(db *sql.DB, generator string, log *logger.Logger) *HealthHandler {
	return &HealthHandler{
		db:        db,
		generator: generator,
		logger:    log,
	}
}

// Healthz handles liveness probe
// @Summary Liveness probe
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string "Application is alive"
// @Router /health [get]
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	utils.WriteSuccess(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// Readyz handles readiness probe
// @Summary Readiness probe
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string "Application is ready"
// @Failure 503 {object} utils.ErrorResponse "Service unavailable"
// @Router /readyz [get]
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		h.logger.ErrorWithErr(err, "Database ping failed")
		utils.WriteError(w, errors.ServiceUnavailable("Database connection failed"))
		return
	}

	utils.WriteSuccess(w, http.StatusOK, map[string]string{
		"status":    "ready",
		"database":  "connected",
		"generator": h.generator,
	})
}
