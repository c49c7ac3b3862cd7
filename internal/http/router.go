package http

import (
	"net/http"
	"strings"
)

type RouterConfig struct {
	Employees  *EmployeeHandler
	Tracking   *TrackingHandler
	Reports    *ReportHandler
	Health     *HealthHandler
	Metrics    http.Handler
	Middleware []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	if cfg.Employees != nil {
		mux.HandleFunc("/employees", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Employees.List(w, r)
			case http.MethodPost:
				cfg.Employees.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
	}

	mux.HandleFunc("/employees/", func(w http.ResponseWriter, r *http.Request) {
		id, action := splitEmployeePath(r.URL.Path)
		if id == "" {
			http.NotFound(w, r)
			return
		}
		ctx := ContextWithEmployeeID(r.Context(), id)
		r = r.WithContext(ctx)

		switch action {
		case "":
			if cfg.Employees == nil {
				http.NotFound(w, r)
				return
			}
			switch r.Method {
			case http.MethodGet:
				cfg.Employees.Get(w, r)
			case http.MethodPut:
				cfg.Employees.Update(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPut)
			}
		case "clock-in":
			if cfg.Tracking == nil {
				http.NotFound(w, r)
				return
			}
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Tracking.ClockIn(w, r)
		case "clock-out":
			if cfg.Tracking == nil {
				http.NotFound(w, r)
				return
			}
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Tracking.ClockOut(w, r)
		case "status":
			if cfg.Tracking == nil {
				http.NotFound(w, r)
				return
			}
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Tracking.Status(w, r)
		case "totals":
			if cfg.Reports == nil {
				http.NotFound(w, r)
				return
			}
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Reports.Totals(w, r)
		case "progress":
			if cfg.Reports == nil {
				http.NotFound(w, r)
				return
			}
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Reports.Progress(w, r)
		case "productivity":
			if cfg.Reports == nil {
				http.NotFound(w, r)
				return
			}
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Reports.Productivity(w, r)
		default:
			http.NotFound(w, r)
		}
	})

	if cfg.Health != nil {
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Health.Check(w, r)
		})
	}

	if cfg.Metrics != nil {
		mux.Handle("/metrics", cfg.Metrics)
	}

	var handler http.Handler = mux
	if len(cfg.Middleware) > 0 {
		for i := len(cfg.Middleware) - 1; i >= 0; i-- {
			if cfg.Middleware[i] != nil {
				handler = cfg.Middleware[i](handler)
			}
		}
	}

	return handler
}

// splitEmployeePath decomposes /employees/{id}[/{action}] into its parts.
func splitEmployeePath(path string) (id, action string) {
	rest := strings.TrimPrefix(path, "/employees/")
	rest = strings.TrimSuffix(rest, "/")
	id, action, _ = strings.Cut(rest, "/")
	return id, action
}

// routeLabel collapses employee identifiers so metric labels stay bounded.
func routeLabel(path string) string {
	if !strings.HasPrefix(path, "/employees/") {
		return path
	}
	id, action := splitEmployeePath(path)
	if id == "" {
		return "/employees/"
	}
	if action == "" {
		return "/employees/:id"
	}
	return "/employees/:id/" + action
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
