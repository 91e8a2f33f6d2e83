package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MagnumMax/skyluxse-sub003/api/controllers"
	synccontrollers "github.com/MagnumMax/skyluxse-sub003/api/controllers/sync"
	webhookcontrollers "github.com/MagnumMax/skyluxse-sub003/api/controllers/webhooks"
	"github.com/MagnumMax/skyluxse-sub003/api/middleware"
	"github.com/MagnumMax/skyluxse-sub003/pkg/config"
	"github.com/MagnumMax/skyluxse-sub003/pkg/logger"
)

type RouterParams struct {
	Config     *config.Config
	Logger     *logger.Logger
	DB         controllers.Pinger
	Redis      controllers.Pinger
	RateLimits middleware.RateLimiterStore
	Ingest     webhookcontrollers.IngestService
	Dispatch   synccontrollers.BatchRunner
	Registry   *prometheus.Registry
}

func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(params.Logger),
		middleware.RequestID(params.Logger),
		middleware.Logging(params.Logger),
		middleware.RequestTimeout(params.Config.App.RequestTimeout),
	)

	r.Get("/healthz", controllers.Healthz(params.Config, params.Logger, params.DB, params.Redis))

	if params.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(params.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.With(middleware.WebhookRateLimit(params.Config.RateLimit, params.RateLimits, params.Logger)).
			Post("/crm", webhookcontrollers.CRMWebhook(params.Ingest, params.Config.Webhook, params.Logger))
	})

	r.Route("/internal/outbox", func(r chi.Router) {
		r.Use(middleware.ServiceAuth(params.Config.ServiceAuth, params.Logger))
		r.Post("/dispatch", synccontrollers.TriggerDispatch(params.Dispatch, params.Logger))
	})

	return r
}
