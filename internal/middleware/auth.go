package middleware

import (
	"net/http"
	"strings"

	"github.com/mkovacevic/portfolioapi/internal/auth"
	"github.com/mkovacevic/portfolioapi/pkg"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"

	"github.com/mkovacevic/portfolioapi/internal/telemetry/tracing"
)

// TokenVerifier checks an access token and returns its claims.
type TokenVerifier interface {
	VerifyAccessToken(token string) (*auth.Claims, error)
}

type AuthMiddlewareHandler struct {
	verifier TokenVerifier
}

func NewAuthMiddlewareHandler(verifier TokenVerifier) *AuthMiddlewareHandler {
	return &AuthMiddlewareHandler{
		verifier: verifier,
	}
}

// RequireAuth rejects requests without a valid bearer access token, and
// stores the token claims on the request context for the handlers downstream.
func (h *AuthMiddlewareHandler) RequireAuth() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := tracing.GlobalTracer.Start(r.Context(), "middleware.auth")
			defer span.End()

			if r.Method == http.MethodOptions {
				w.Header().Add("Allow", "GET, POST, PUT, DELETE, OPTIONS")
				w.WriteHeader(http.StatusOK)
				span.SetStatus(codes.Ok, "options-ok")
				return
			}

			authHeader := r.Header.Get("Authorization")
			token, found := strings.CutPrefix(authHeader, "Bearer ")
			if !found || token == "" {
				log.Tracef("[missing token] [auth middleware] unauthorized => %s", r.URL.Path)
				pkg.WriteError(w, http.StatusUnauthorized, "Access token required")
				span.SetStatus(codes.Error, "missing-auth-token")
				return
			}

			claims, err := h.verifier.VerifyAccessToken(token)
			if err != nil {
				log.Tracef("[invalid token] [auth middleware] unauthorized => %s: %s", r.URL.Path, err)
				pkg.WriteError(w, http.StatusForbidden, "Invalid or expired token")
				span.SetStatus(codes.Error, "invalid-token")
				return
			}

			span.SetStatus(codes.Ok, "ok")
			next.ServeHTTP(w, r.WithContext(auth.ContextWithClaims(ctx, claims)))
		})
	}
}

// RequireAdmin assumes RequireAuth already ran. Every authenticated account
// is treated as an admin, there are no user roles in the users table.
func (h *AuthMiddlewareHandler) RequireAdmin() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := auth.ClaimsFromContext(r.Context()); !ok {
				pkg.WriteError(w, http.StatusUnauthorized, "Access token required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
