package controllers

import (
	"context"
	"net/http"

	"github.com/MagnumMax/skyluxse-sub003/api/responses"
	"github.com/MagnumMax/skyluxse-sub003/pkg/config"
	pkgerrors "github.com/MagnumMax/skyluxse-sub003/pkg/errors"
	"github.com/MagnumMax/skyluxse-sub003/pkg/logger"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// Healthz reports readiness: the process is up and its hard dependencies
// answer. Pingers may be nil when a dependency is not wired in a given binary.
func Healthz(cfg *config.Config, logg *logger.Logger, db Pinger, redis Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		w.Header().Set("X-Skyluxse-Env", cfg.App.Env)

		checks := map[string]Pinger{
			"database": db,
			"redis":    redis,
		}
		for name, pinger := range checks {
			if pinger == nil {
				continue
			}
			if err := pinger.Ping(ctx); err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, name+" unreachable"))
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ok"})
	}
}
