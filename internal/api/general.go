package api

import (
	"context"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/joestump/cleo/internal/store"
)

// generalAPIHandler serves the unauthenticated instance endpoints.
type generalAPIHandler struct {
	db       *sqlx.DB
	instance *store.InstanceStore
	logger   *zap.Logger
}

// Info returns the public instance name and hostname.
//
// @Summary      Instance information
// @Tags         General
// @Produce      json
// @Success      200  {object}  InstanceResponse
// @Router       /instance/info [get]
func (h *generalAPIHandler) Info(w http.ResponseWriter, r *http.Request) {
	in, err := h.instance.Get(r.Context())
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, &InstanceResponse{Name: in.Name, Hostname: in.Hostname})
}

// Healthz reports whether the database is reachable.
func (h *generalAPIHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.db.PingContext(ctx); err != nil {
		h.logger.Warn("health check failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
