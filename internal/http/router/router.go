// Package router arma el árbol de rutas del API de policy.
package router

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	policyctl "github.com/dropDatabas3/clientguard/internal/http/controllers/policy"
	httperrors "github.com/dropDatabas3/clientguard/internal/http/errors"
	"github.com/dropDatabas3/clientguard/internal/http/helpers"
	"github.com/dropDatabas3/clientguard/internal/http/middlewares"
	"github.com/dropDatabas3/clientguard/internal/rate"
)

// Deps dependencias del router.
type Deps struct {
	Policy  *policyctl.Controller
	Auth    middlewares.AuthConfig
	Metrics http.Handler // handler de /metrics; nil lo deshabilita

	// RateLimiter limita por IP los endpoints /v1. nil lo deshabilita.
	RateLimiter rate.Limiter
	RateLimit   int
	RateWindow  time.Duration

	// ReadyCheck verifica dependencias (cache) para /readyz. nil = siempre ready.
	ReadyCheck func(ctx context.Context) error

	// Instrument envuelve el handler con métricas HTTP (WithMetrics).
	Instrument func(http.Handler) http.Handler
}

// New construye el handler raíz con la cadena de middlewares estándar:
// request-id -> logging -> recover -> security headers, y auth sobre
// las rutas /v1.
func New(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middlewares.WithRequestID(),
		middlewares.WithLogging(),
		middlewares.WithRecover(),
		middlewares.WithSecurityHeaders(),
	)

	// Probes y métricas quedan fuera de auth.
	r.Get("/healthz", handleHealth)
	r.Get("/readyz", handleReady(deps.ReadyCheck))
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	r.Route("/v1/policy", func(r chi.Router) {
		r.Use(middlewares.WithRateLimit(deps.RateLimiter, deps.RateLimit, deps.RateWindow))
		r.Use(middlewares.RequireAuth(deps.Auth))

		r.Get("/profiles", deps.Policy.ListProfiles)
		r.Get("/presets", deps.Policy.ListPresets)
		r.Get("/presets/{presetID}", deps.Policy.GetPreset)
		r.Post("/presets/{presetID}/compose", deps.Policy.Compose)
		r.Post("/presets/{presetID}/check", deps.Policy.Check)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httperrors.WriteError(w, httperrors.ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
	})

	var h http.Handler = r
	if deps.Instrument != nil {
		h = deps.Instrument(h)
	}
	return h
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	helpers.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func handleReady(check func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				helpers.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
					"status": "unavailable",
					"reason": err.Error(),
				})
				return
			}
		}
		helpers.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
