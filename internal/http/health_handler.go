package http

import (
	"context"
	"log/slog"
	"net/http"
)

type storagePinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	pinger    storagePinger
	responder responder
	logger    *slog.Logger
}

func NewHealthHandler(pinger storagePinger, logger *slog.Logger) *HealthHandler {
	base := defaultLogger(logger)
	return &HealthHandler{pinger: pinger, responder: newResponder(base), logger: base}
}

// Check reports process liveness and whether storage answers a ping.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	if h == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	payload := healthResponse{Status: "ok", Storage: "ok"}
	status := http.StatusOK
	if h.pinger != nil {
		if err := h.pinger.Ping(r.Context()); err != nil {
			handlerLogger(r.Context(), h.logger, "HealthHandler", "Check").ErrorContext(r.Context(), "storage ping failed", "error", err)
			payload.Status = "degraded"
			payload.Storage = "unavailable"
			status = http.StatusServiceUnavailable
		}
	}

	h.responder.writeJSON(r.Context(), w, status, payload)
}

type healthResponse struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
}
