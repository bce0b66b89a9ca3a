package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/localpop/localpop-backend/api/responses"
	"github.com/localpop/localpop-backend/pkg/config"
	pkgerrors "github.com/localpop/localpop-backend/pkg/errors"
	"github.com/localpop/localpop-backend/pkg/logger"
)

const readinessTimeout = 2 * time.Second

// Pinger is the health probe dependencies expose.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-LocalPop-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports readiness only when both Postgres and Redis answer.
func HealthReady(cfg *config.Config, logg *logger.Logger, db, cache Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-LocalPop-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		checks := map[string]string{}
		failed := false

		if db == nil {
			checks["db"] = "unconfigured"
			failed = true
		} else if err := db.Ping(ctx); err != nil {
			checks["db"] = "down"
			failed = true
		} else {
			checks["db"] = "up"
		}

		if cache == nil {
			checks["redis"] = "unconfigured"
			failed = true
		} else if err := cache.Ping(ctx); err != nil {
			checks["redis"] = "down"
			failed = true
		} else {
			checks["redis"] = "up"
		}

		if failed {
			err := pkgerrors.New(pkgerrors.CodeDependency, "service dependencies unavailable").WithDetails(checks)
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
