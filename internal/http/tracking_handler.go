package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/timeclock/internal/application"
)

type trackingService interface {
	Start(ctx context.Context, employeeID string) (application.StartResult, error)
	Stop(ctx context.Context, employeeID string) (application.StopResult, error)
	Status(ctx context.Context, employeeID string) (application.Status, error)
}

type TrackingHandler struct {
	service   trackingService
	responder responder
	logger    *slog.Logger
}

func NewTrackingHandler(service trackingService, logger *slog.Logger) *TrackingHandler {
	base := defaultLogger(logger)
	return &TrackingHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *TrackingHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "TrackingHandler", operation, attrs...)
}

func (h *TrackingHandler) ClockIn(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	employeeID, ok := EmployeeIDFromContext(r.Context())
	if !ok || strings.TrimSpace(employeeID) == "" {
		h.log(r.Context(), "ClockIn", "error_kind", "bad_request").ErrorContext(r.Context(), "missing employee id for clock-in")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidEmployeeID)
		return
	}

	logger := h.log(r.Context(), "ClockIn", "employee_id", employeeID)

	result, err := h.service.Start(r.Context(), employeeID)
	if err != nil {
		logger.ErrorContext(r.Context(), "clock-in failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	status := http.StatusCreated
	payload := clockInResponse{
		SessionID: result.Session.ID,
		StartedAt: result.Session.StartedAt.UTC().Format(time.RFC3339),
		Status:    "started",
	}
	if result.AlreadyWorking {
		status = http.StatusOK
		payload.Status = "already_working"
		logger.InfoContext(r.Context(), "clock-in ignored, session already open", "session_id", result.Session.ID)
	} else {
		logger.InfoContext(r.Context(), "session started", "session_id", result.Session.ID)
	}
	h.responder.writeJSON(r.Context(), w, status, payload)
}

func (h *TrackingHandler) ClockOut(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	employeeID, ok := EmployeeIDFromContext(r.Context())
	if !ok || strings.TrimSpace(employeeID) == "" {
		h.log(r.Context(), "ClockOut", "error_kind", "bad_request").ErrorContext(r.Context(), "missing employee id for clock-out")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidEmployeeID)
		return
	}

	logger := h.log(r.Context(), "ClockOut", "employee_id", employeeID)

	result, err := h.service.Stop(r.Context(), employeeID)
	if err != nil {
		if errors.Is(err, application.ErrNotWorking) {
			logger.InfoContext(r.Context(), "clock-out rejected, no open session")
			h.responder.writeJSON(r.Context(), w, http.StatusConflict, clockOutConflictResponse{Status: "not_working"})
			return
		}
		logger.ErrorContext(r.Context(), "clock-out failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "session stopped",
		"session_id", result.Session.ID,
		"duration_minutes", result.DurationMinutes,
	)
	h.responder.writeJSON(r.Context(), w, http.StatusOK, clockOutResponse{
		SessionID:       result.Session.ID,
		EndedAt:         result.Session.EndedAt.UTC().Format(time.RFC3339),
		DurationMinutes: result.DurationMinutes,
		Status:          "stopped",
	})
}

func (h *TrackingHandler) Status(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	employeeID, ok := EmployeeIDFromContext(r.Context())
	if !ok || strings.TrimSpace(employeeID) == "" {
		h.log(r.Context(), "Status", "error_kind", "bad_request").ErrorContext(r.Context(), "missing employee id for status")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidEmployeeID)
		return
	}

	status, err := h.service.Status(r.Context(), employeeID)
	if err != nil {
		h.log(r.Context(), "Status", "employee_id", employeeID).ErrorContext(r.Context(), "status lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	payload := statusResponse{IsWorking: status.IsWorking}
	if status.OpenSince != nil {
		since := status.OpenSince.UTC().Format(time.RFC3339)
		payload.OpenSince = &since
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, payload)
}

type clockInResponse struct {
	SessionID string `json:"session_id"`
	StartedAt string `json:"started_at"`
	Status    string `json:"status"`
}

type clockOutConflictResponse struct {
	Status string `json:"status"`
}

type clockOutResponse struct {
	SessionID       string `json:"session_id"`
	EndedAt         string `json:"ended_at"`
	DurationMinutes int    `json:"duration_minutes"`
	Status          string `json:"status"`
}

type statusResponse struct {
	IsWorking bool    `json:"is_working"`
	OpenSince *string `json:"open_since,omitempty"`
}
