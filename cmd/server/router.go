package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"tickethub/internal/platform/metrics"
	"tickethub/internal/platform/middleware"
	"tickethub/pkg/platform/httputil"
)

// registrar is implemented by every module handler.
type registrar interface {
	Register(r chi.Router)
}

func newRouter(log *slog.Logger, gatherer prometheus.Gatherer, checks map[string]pinger, handlers ...registrar) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Recovery(log))
	r.Use(middleware.Logger(log))

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ticket hub account service is running"))
	})
	r.Get("/healthz", healthHandler(checks))
	r.Handle("/metrics", metrics.Handler(gatherer))

	for _, h := range handlers {
		h.Register(r)
	}
	return r
}

// healthHandler pings every store. Failures are reported by name only.
func healthHandler(checks map[string]pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		results := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check.Ping(ctx); err != nil {
				results[name] = "unavailable"
				status = http.StatusServiceUnavailable
				continue
			}
			results[name] = "ok"
		}
		state := "ok"
		if status != http.StatusOK {
			state = "degraded"
		}
		httputil.WriteJSON(w, status, map[string]any{"status": state, "checks": results})
	}
}
