package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/astromusic/astromusic/internal/auth"
	"github.com/astromusic/astromusic/internal/model"
)

// Authenticator resolves a bearer access token to its principal.
type Authenticator interface {
	AuthenticateAccess(ctx context.Context, accessToken string) (*model.AuthContext, error)
}

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger        *slog.Logger
	Authenticator Authenticator
}

// Auth returns a middleware that requires a valid bearer access token
// and injects the principal into the request context.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				logAuthFailure(cfg.Logger, r, "missing_token")
				writeAuthError(w)
				return
			}

			principal, err := cfg.Authenticator.AuthenticateAccess(r.Context(), token)
			if err != nil {
				logAuthFailure(cfg.Logger, r, err.Error())
				writeAuthError(w)
				return
			}

			ctx := auth.ContextWithAuth(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSuperuser rejects principals without admin rights.
// Must be applied after Auth.
func RequireSuperuser() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := auth.AuthFromContext(r.Context())
			if principal == nil {
				writeAuthError(w)
				return
			}
			if !principal.IsSuperuser {
				writeError(w, http.StatusForbidden, "FORBIDDEN", "Superuser privileges required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func extractBearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func logAuthFailure(logger *slog.Logger, r *http.Request, reason string) {
	logger.Warn("authentication failed",
		slog.String("reason", reason),
		slog.String("ip", clientIP(r)),
		slog.String("endpoint", r.Method+" "+r.URL.Path),
		slog.String("request_id", GetRequestID(r.Context())),
	)
}

// writeAuthError uses one message for every failure so callers cannot
// tell a bad signature from a disabled account.
func writeAuthError(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="astromusic"`)
	writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Could not validate credentials")
}
