package handler

import (
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/directory/api/transport"
	"github.com/fastygo/directory/internal/infrastructure/monitor"
	"github.com/fastygo/directory/pkg/httpcontext"
)

// StatusProvider reports the last observed dependency status.
type StatusProvider interface {
	GetStatus() monitor.Status
}

type HealthHandler struct {
	baseHandler
	status StatusProvider
	driver string
}

func NewHealthHandler(status StatusProvider, driver string, adapter *httpcontext.Adapter, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		status:      status,
		driver:      driver,
	}
}

// @Summary Health check
// @Tags health
// @Router /health [get]
func (h *HealthHandler) Check(ctx *fasthttp.RequestCtx) {
	status := h.status.GetStatus()

	redis := map[string]interface{}{"enabled": status.RedisEnabled}
	if status.RedisEnabled {
		redis["online"] = status.Redis
	}
	payload := map[string]interface{}{
		"timestamp":  time.Now().UTC(),
		"last_check": status.LastCheck,
		"services": map[string]interface{}{
			"database": map[string]interface{}{
				"driver": h.driver,
				"online": status.Database,
			},
			"redis": redis,
			"buffer": map[string]interface{}{
				"online": status.Buffer,
				"size":   status.BufferSize,
			},
		},
	}

	if status.Online() {
		h.respondSuccess(ctx, http.StatusOK, payload)
		return
	}
	h.respondJSON(ctx, http.StatusServiceUnavailable, transport.NewError("DEGRADED", "dependencies unhealthy", payload))
}
