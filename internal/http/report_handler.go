package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/example/timeclock/internal/application"
)

type reportService interface {
	Totals(ctx context.Context, employeeID string, ref time.Time) (application.Totals, error)
	Progress(ctx context.Context, employeeID string, targetMinutes int, ref time.Time) (application.Progress, error)
	Productivity(ctx context.Context, employeeID string, ref time.Time) (application.Productivity, error)
}

type ReportHandler struct {
	service   reportService
	responder responder
	logger    *slog.Logger
}

func NewReportHandler(service reportService, logger *slog.Logger) *ReportHandler {
	base := defaultLogger(logger)
	return &ReportHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *ReportHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ReportHandler", operation, attrs...)
}

func (h *ReportHandler) Totals(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	employeeID, ref, ok := h.reportParams(w, r, "Totals")
	if !ok {
		return
	}

	totals, err := h.service.Totals(r.Context(), employeeID, ref)
	if err != nil {
		h.log(r.Context(), "Totals", "employee_id", employeeID).ErrorContext(r.Context(), "totals failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, totalsResponse{
		Reference:    totals.Reference.UTC().Format(time.RFC3339),
		TodayMinutes: totals.TodayMinutes,
		WeekMinutes:  totals.WeekMinutes,
		MonthMinutes: totals.MonthMinutes,
	})
}

func (h *ReportHandler) Progress(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	employeeID, ref, ok := h.reportParams(w, r, "Progress")
	if !ok {
		return
	}

	target := 0
	if raw := r.URL.Query().Get("weekly_target_minutes"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			h.log(r.Context(), "Progress", "employee_id", employeeID, "error_kind", "bad_request").ErrorContext(r.Context(), "invalid target parameter", "error", err)
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidTargetParam)
			return
		}
		target = parsed
	}

	progress, err := h.service.Progress(r.Context(), employeeID, target, ref)
	if err != nil {
		h.log(r.Context(), "Progress", "employee_id", employeeID).ErrorContext(r.Context(), "progress failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, progressResponse{
		Reference:     progress.Reference.UTC().Format(time.RFC3339),
		WeekMinutes:   progress.WeekMinutes,
		TargetMinutes: progress.TargetMinutes,
		Percentage:    progress.Percentage,
	})
}

func (h *ReportHandler) Productivity(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	employeeID, ref, ok := h.reportParams(w, r, "Productivity")
	if !ok {
		return
	}

	result, err := h.service.Productivity(r.Context(), employeeID, ref)
	if err != nil {
		h.log(r.Context(), "Productivity", "employee_id", employeeID).ErrorContext(r.Context(), "productivity failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, productivityResponse{
		Reference:  result.Reference.UTC().Format(time.RFC3339),
		Score:      result.Score,
		StreakDays: result.StreakDays,
	})
}

// reportParams extracts the employee id and the optional `at` reference. A
// missing `at` yields the zero time, which the services resolve to now.
func (h *ReportHandler) reportParams(w http.ResponseWriter, r *http.Request, operation string) (string, time.Time, bool) {
	employeeID, ok := EmployeeIDFromContext(r.Context())
	if !ok || strings.TrimSpace(employeeID) == "" {
		h.log(r.Context(), operation, "error_kind", "bad_request").ErrorContext(r.Context(), "missing employee id")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidEmployeeID)
		return "", time.Time{}, false
	}

	var ref time.Time
	if raw := r.URL.Query().Get("at"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			h.log(r.Context(), operation, "employee_id", employeeID, "error_kind", "bad_request").ErrorContext(r.Context(), "invalid at parameter", "error", err)
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidReference)
			return "", time.Time{}, false
		}
		ref = parsed
	}
	return employeeID, ref, true
}

type totalsResponse struct {
	Reference    string `json:"reference"`
	TodayMinutes int    `json:"today_minutes"`
	WeekMinutes  int    `json:"week_minutes"`
	MonthMinutes int    `json:"month_minutes"`
}

type progressResponse struct {
	Reference     string  `json:"reference"`
	WeekMinutes   int     `json:"week_minutes"`
	TargetMinutes int     `json:"target_minutes"`
	Percentage    float64 `json:"percentage"`
}

type productivityResponse struct {
	Reference  string `json:"reference"`
	Score      int    `json:"score"`
	StreakDays int    `json:"streak_days"`
}
