package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

type pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	db      pinger
	env     string
	started time.Time
	now     func() time.Time
	logger  zerolog.Logger
}

func NewHealthHandler(db pinger, env string, logger zerolog.Logger) *HealthHandler {
	return &HealthHandler{
		db:      db,
		env:     env,
		started: time.Now(),
		now:     time.Now,
		logger:  logger,
	}
}

type HealthResponse struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Uptime      float64   `json:"uptime"`
	Environment string    `json:"environment"`
	Database    string    `json:"database"`
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	res := HealthResponse{
		Status:      "ok",
		Timestamp:   now.UTC(),
		Uptime:      now.Sub(h.started).Seconds(),
		Environment: h.env,
		Database:    "connected",
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	code := http.StatusOK
	if err := h.db.PingContext(ctx); err != nil {
		h.logger.Error().Err(err).Msg("Health check: database unreachable")
		res.Status = "degraded"
		res.Database = "disconnected"
		code = http.StatusServiceUnavailable
	}

	respondWithJSON(w, code, res)
}
