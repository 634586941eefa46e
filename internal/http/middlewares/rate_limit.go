package middlewares

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/dropDatabas3/clientguard/internal/http/errors"
	"github.com/dropDatabas3/clientguard/internal/observability/logger"
	"github.com/dropDatabas3/clientguard/internal/rate"
)

// clientIP extrae la IP real del cliente (X-Forwarded-For detrás de proxy).
func clientIP(r *http.Request) string {
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		parts := strings.Split(xf, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return host
	}
	return r.RemoteAddr
}

// WithRateLimit limita requests por IP usando el limiter dado.
// Fail-open: si el limiter es nil o su backend falla (Redis caído), la
// request pasa.
func WithRateLimit(limiter rate.Limiter, limit int, window time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		if limiter == nil || limit <= 0 || window <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res, err := limiter.Allow(r.Context(), clientIP(r))
			if err != nil {
				logger.From(r.Context()).Warn("rate limiter unavailable", logger.Err(err))
				next.ServeHTTP(w, r)
				return
			}

			now := time.Now().UTC()
			resetAt := now.Truncate(window).Add(window)

			w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", limit))
			w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", res.Remaining))
			w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", resetAt.Unix()))

			if res.Allowed {
				next.ServeHTTP(w, r)
				return
			}

			retryAfter := res.RetryAfter
			if retryAfter <= 0 {
				retryAfter = time.Until(resetAt)
			}
			w.Header().Set("Retry-After", fmt.Sprintf("%d", int(retryAfter.Seconds())))

			errors.WriteError(w, errors.ErrTooManyRequests)
		})
	}
}
