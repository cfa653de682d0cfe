package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/mercaline/mercaline-backend/api/responses"
	"github.com/mercaline/mercaline-backend/pkg/config"
	"github.com/mercaline/mercaline-backend/pkg/logger"
)

const envHeader = "X-Mercaline-Env"

type pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

func HealthReady(cfg *config.Config, logg *logger.Logger, dbP, redisP pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		checks := map[string]string{}
		ready := true

		checks["database"] = checkPinger(ctx, dbP)
		checks["redis"] = checkPinger(ctx, redisP)
		for _, status := range checks {
			if status != "ok" {
				ready = false
			}
		}

		if !ready {
			if logg != nil {
				logg.Warn(logg.WithFields(r.Context(), map[string]any{"checks": checks}), "readiness check failed")
			}
			responses.WriteSuccessStatus(w, http.StatusServiceUnavailable, map[string]any{"status": "degraded", "checks": checks})
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}

func checkPinger(ctx context.Context, p pinger) string {
	if p == nil {
		return "skipped"
	}
	if err := p.Ping(ctx); err != nil {
		return err.Error()
	}
	return "ok"
}
