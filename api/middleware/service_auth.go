package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/MagnumMax/skyluxse-sub003/api/responses"
	"github.com/MagnumMax/skyluxse-sub003/pkg/config"
	pkgerrors "github.com/MagnumMax/skyluxse-sub003/pkg/errors"
	"github.com/MagnumMax/skyluxse-sub003/pkg/logger"
)

// ServiceAuth guards internal operational endpoints with the shared-secret
// JWT issued to the scheduler. Human sessions never reach these routes.
func ServiceAuth(cfg config.ServiceAuthConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if cfg.JWTSecret == "" {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "service auth not configured"))
				return
			}

			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "service token required"))
				return
			}

			parsed, err := jwt.Parse(strings.TrimSpace(token), func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "unexpected signing method")
				}
				return []byte(cfg.JWTSecret), nil
			}, jwt.WithIssuer(cfg.Issuer), jwt.WithExpirationRequired())
			if err != nil || !parsed.Valid {
				if logg != nil {
					logg.Warn(logg.WithField(ctx, "error", errString(err)), "service token rejected")
				}
				responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid service token"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func errString(err error) string {
	if err == nil {
		return "token invalid"
	}
	return err.Error()
}
