package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewMonitoringHandler routes /healthz to the health checker and /metrics to the registry.
func NewMonitoringHandler(reg *prometheus.Registry, health *HealthChecker) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/healthz", health)
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return mux
}

// StartMonitoringServer serves the monitoring handler on port until ctx is cancelled.
func StartMonitoringServer(ctx context.Context, log *slog.Logger, handler http.Handler, port int) {
	log.InfoContext(ctx, "Starting monitoring server", "port", port)

	readTimeout := 5
	writeTimeout := 10
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      handler,
		ReadTimeout:  time.Duration(readTimeout) * time.Second,
		WriteTimeout: time.Duration(writeTimeout) * time.Second,
	}

	var err error
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.ListenAndServe()
	}()
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(readTimeout)*time.Second)
		defer cancel()
		log.InfoContext(ctx, "Monitoring server shutting down.")
		if err = server.Shutdown(shutdownCtx); err != nil {
			log.ErrorContext(ctx, "Monitoring server failed to shutdown", "error", err)
			return
		}
	case err = <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			log.ErrorContext(ctx, "Monitoring server failed", "error", err)
		}
	}
}
