package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"transvalia/dispatch/internal/models/entities"
)

// Pinger is implemented by both store backends for reachability checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthCheckHandler handles GET /healthCheck
func HealthCheckHandler(store Pinger, backend string, upSince time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		services := make(map[string]entities.ServiceStatus)

		status := "ok"
		details := "store reachable"
		if err := store.Ping(r.Context()); err != nil {
			status = "down"
			details = err.Error()
		}
		services[backend] = entities.ServiceStatus{
			Status:  status,
			Details: details,
		}

		overallStatus := "ok"
		for _, svc := range services {
			if svc.Status != "ok" {
				overallStatus = "down"
				break
			}
		}

		uptime := time.Since(upSince).Round(time.Second).String()

		resp := entities.HealthCheckResponse{
			Services: services,
			Status:   overallStatus,
			Uptime:   uptime,
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}
