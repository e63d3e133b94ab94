package handler

import (
	"net/http"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/fastygo/daybook/api/transport"
	"github.com/fastygo/daybook/internal/infrastructure/monitor"
)

// StatusSource is satisfied by the dependency monitor.
type StatusSource interface {
	GetStatus() monitor.Status
}

type HealthHandler struct {
	baseHandler
	monitor StatusSource
}

func NewHealthHandler(mon StatusSource, deps Deps) *HealthHandler {
	return &HealthHandler{
		baseHandler: newBaseHandler(deps),
		monitor:     mon,
	}
}

// @Summary Health check
// @Tags health
// @Router /health [get]
func (h *HealthHandler) Check(ctx *fasthttp.RequestCtx) {
	status := h.monitor.GetStatus()
	payload := map[string]interface{}{
		"timestamp": time.Now().UTC(),
		"services": map[string]interface{}{
			"postgresql": status.PostgreSQL,
			"redis":      status.Redis,
			"storage": map[string]interface{}{
				"online":  status.Storage,
				"objects": status.StoredObjects,
			},
			"buffer": map[string]interface{}{
				"online":          status.Buffer,
				"pending_deletes": status.PendingDeletes,
			},
		},
	}

	if status.Healthy() {
		h.respondSuccess(ctx, http.StatusOK, payload)
		return
	}
	h.respondJSON(ctx, http.StatusServiceUnavailable, transport.NewError("DEGRADED", "dependencies unhealthy", payload))
}
