package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/apeiron-tech/Immoxperts-sub000/internal/contextkeys"
	"github.com/apeiron-tech/Immoxperts-sub000/internal/core/port"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	store Pinger
}

func NewHealthHandler(store Pinger) *HealthHandler {
	return &HealthHandler{store: store}
}

// Healthz - 200 если хранилище отвечает, иначе 503
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		contextkeys.LoggerFromContext(ctx).Warn("Health check failed", port.Fields{"error": err.Error()})
		RespondWithJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unavailable"})
		return
	}
	RespondWithJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}
