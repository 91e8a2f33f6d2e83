package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/MagnumMax/skyluxse-sub003/api/responses"
	"github.com/MagnumMax/skyluxse-sub003/pkg/config"
	pkgerrors "github.com/MagnumMax/skyluxse-sub003/pkg/errors"
	"github.com/MagnumMax/skyluxse-sub003/pkg/logger"
)

// RateLimiterStore is the counter surface the limiter needs from Redis.
type RateLimiterStore interface {
	IncrWithTTL(context.Context, string, time.Duration) (int64, error)
}

// WebhookRateLimit throttles webhook deliveries per caller IP with a fixed
// window counter in Redis. The CRM retries aggressively during its own
// incidents; the counter keeps those storms off the database.
func WebhookRateLimit(cfg config.RateLimitConfig, store RateLimiterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if cfg.WebhookWindow <= 0 || cfg.WebhookIPLimit <= 0 || store == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			ip := clientIP(r)
			if ip == "" {
				next.ServeHTTP(w, r)
				return
			}

			key := fmt.Sprintf("rl:ip:webhook:%s", ip)
			count, err := store.IncrWithTTL(ctx, key, cfg.WebhookWindow)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
				return
			}
			if count > int64(cfg.WebhookIPLimit) {
				if logg != nil {
					fields := map[string]any{
						"ip":             ip,
						"attempts":       count,
						"limit":          cfg.WebhookIPLimit,
						"window_seconds": int(cfg.WebhookWindow.Seconds()),
					}
					logg.Warn(logg.WithFields(ctx, fields), "webhook.rate_limit.blocked")
				}
				responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "rate limit exceeded"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if header := r.Header.Get("X-Forwarded-For"); header != "" {
		for _, part := range strings.Split(header, ",") {
			if ip := strings.TrimSpace(part); ip != "" {
				return ip
			}
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
