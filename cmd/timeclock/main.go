package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/example/timeclock/internal/application"
	"github.com/example/timeclock/internal/config"
	httptransport "github.com/example/timeclock/internal/http"
	"github.com/example/timeclock/internal/logging"
	"github.com/example/timeclock/internal/metrics"
	"github.com/example/timeclock/internal/persistence/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New(os.Stdout, slog.LevelInfo).Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.New(os.Stdout, cfg.SlogLevel())
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	location, err := cfg.Location()
	if err != nil {
		logger.Error("failed to resolve timezone", "error", err)
		os.Exit(1)
	}
	weekStart, err := cfg.WeekStartDay()
	if err != nil {
		logger.Error("failed to resolve week start", "error", err)
		os.Exit(1)
	}

	storage, err := sqlite.Open(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := storage.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := storage.Migrate(context.Background()); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	sessionRepo := sqlite.NewSessionRepository(storage)
	employeeRepo := sqlite.NewEmployeeRepository(storage)
	idGenerator := uuid.NewString
	now := time.Now

	manager := metrics.NewManager()
	manager.Registry().MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	openCount, err := sessionRepo.CountOpenSessions(context.Background())
	if err != nil {
		logger.Error("failed to count open sessions", "error", err)
		os.Exit(1)
	}
	manager.SetOpenSessions(openCount)

	trackingService := application.NewTrackingServiceWithLogger(sessionRepo, employeeRepo, idGenerator, now, manager, logger)
	reportService := application.NewReportServiceWithLogger(sessionRepo, employeeRepo, now, location, weekStart, logger)
	employeeService := application.NewEmployeeServiceWithLogger(employeeRepo, idGenerator, now, cfg.DefaultWeeklyTargetMinutes, logger)

	routerConfig := httptransport.RouterConfig{
		Employees: httptransport.NewEmployeeHandler(employeeService, logger),
		Tracking:  httptransport.NewTrackingHandler(trackingService, logger),
		Reports:   httptransport.NewReportHandler(reportService, logger),
		Health:    httptransport.NewHealthHandler(storage, logger),
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
			httptransport.RecordMetrics(manager),
		},
	}
	if cfg.MetricsEnabled {
		routerConfig.Metrics = manager.Handler()
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           httptransport.NewRouter(routerConfig),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("time tracking API listening", "addr", server.Addr, "timezone", location.String(), "week_start", weekStart.String())
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}
