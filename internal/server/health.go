package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
)

const checkTimeout = 3 * time.Second

// Pinger is a dependency that can report whether it is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Check names one dependency of the health report.
type Check struct {
	Name   string
	Pinger Pinger
}

type HealthChecker struct {
	checks []Check
	log    *slog.Logger
}

// NewHealthChecker creates a checker pinging every dependency in order.
func NewHealthChecker(log *slog.Logger, checks ...Check) *HealthChecker {
	return &HealthChecker{
		checks: checks,
		log:    log,
	}
}

func (h *HealthChecker) ServeHTTP(writer http.ResponseWriter, req *http.Request) {
	h.log.DebugContext(req.Context(), "Performing health checks...")

	status := make(map[string]string, len(h.checks))
	overallStatus := http.StatusOK

	for _, check := range h.checks {
		ctx, cancel := context.WithTimeout(req.Context(), checkTimeout)
		err := check.Pinger.Ping(ctx)
		cancel()

		if err != nil {
			status[check.Name] = "unavailable"
			overallStatus = http.StatusServiceUnavailable
			h.log.WarnContext(req.Context(), "Health check failed", "check", check.Name, "error", err)
			continue
		}
		status[check.Name] = "ok"
	}

	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(overallStatus)
	if err := jsoniter.NewEncoder(writer).Encode(status); err != nil {
		h.log.ErrorContext(req.Context(), "Failed to write health check response", "error", err)
	}

	h.log.DebugContext(req.Context(), "Health checks completed", "status", overallStatus)
}
