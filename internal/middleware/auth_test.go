package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mkovacevic/portfolioapi/internal/auth"
	"github.com/mkovacevic/portfolioapi/pkg"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type claimsCapturingHandler struct {
	called bool
	claims *auth.Claims
}

func (h *claimsCapturingHandler) ServeHTTP(_ http.ResponseWriter, r *http.Request) {
	h.called = true
	if claims, ok := auth.ClaimsFromContext(r.Context()); ok {
		h.claims = claims
	}
}

func newTestTokenService() *auth.TokenService {
	return auth.NewTokenService("access-secret", "refresh-secret", time.Hour, 24*time.Hour)
}

func TestAuthMiddleware_RequireAuth(t *testing.T) {
	tokenService := newTestTokenService()
	authMiddleware := NewAuthMiddlewareHandler(tokenService)

	tokens, err := tokenService.NewTokenPair(&auth.User{
		ID:       42,
		Username: "marko",
		Email:    "marko@example.com",
	})
	require.NoError(t, err)

	testCases := []struct {
		name               string
		authHeader         string
		expectedStatusCode int
		expectCalled       bool
	}{
		{
			name:               "ValidToken",
			authHeader:         "Bearer " + tokens.AccessToken,
			expectedStatusCode: http.StatusOK,
			expectCalled:       true,
		},
		{
			name:               "MissingHeader",
			expectedStatusCode: http.StatusUnauthorized,
		},
		{
			name:               "NotBearer",
			authHeader:         tokens.AccessToken,
			expectedStatusCode: http.StatusUnauthorized,
		},
		{
			name:               "EmptyBearer",
			authHeader:         "Bearer ",
			expectedStatusCode: http.StatusUnauthorized,
		},
		{
			name:               "GarbageToken",
			authHeader:         "Bearer not.a.token",
			expectedStatusCode: http.StatusForbidden,
		},
		{
			name: "RefreshTokenRejected",
			// refresh tokens must not pass as access tokens
			authHeader:         "Bearer " + tokens.RefreshToken,
			expectedStatusCode: http.StatusForbidden,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			next := &claimsCapturingHandler{}
			req := httptest.NewRequest("GET", "/api/admin/projects", nil)
			if tc.authHeader != "" {
				req.Header.Set("Authorization", tc.authHeader)
			}

			rr := httptest.NewRecorder()
			authMiddleware.RequireAuth()(next).ServeHTTP(rr, req)

			assert.Equal(t, tc.expectedStatusCode, rr.Code)
			assert.Equal(t, tc.expectCalled, next.called)
			if tc.expectCalled {
				require.NotNil(t, next.claims)
				assert.Equal(t, 42, next.claims.UserID)
				assert.Equal(t, "marko", next.claims.Username)
			}
		})
	}
}

func TestAuthMiddleware_RequireAuth_Options(t *testing.T) {
	authMiddleware := NewAuthMiddlewareHandler(newTestTokenService())

	next := &claimsCapturingHandler{}
	req := httptest.NewRequest("OPTIONS", "/api/admin/projects", nil)
	rr := httptest.NewRecorder()
	authMiddleware.RequireAuth()(next).ServeHTTP(rr, req)

	// preflight passes without a token, but the handler is not reached
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.False(t, next.called)
}

func TestAuthMiddleware_RequireAdmin(t *testing.T) {
	authMiddleware := NewAuthMiddlewareHandler(newTestTokenService())

	next := &claimsCapturingHandler{}
	req := httptest.NewRequest("GET", "/api/admin/projects", nil)
	rr := httptest.NewRecorder()
	authMiddleware.RequireAdmin()(next).ServeHTTP(rr, req)

	// no claims on the context, RequireAuth did not run
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.False(t, next.called)

	next = &claimsCapturingHandler{}
	req = httptest.NewRequest("GET", "/api/admin/projects", nil)
	req = req.WithContext(auth.ContextWithClaims(req.Context(), &auth.Claims{UserID: 42}))
	rr = httptest.NewRecorder()
	authMiddleware.RequireAdmin()(next).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, next.called)
}

// keep the response writer helpers honest about the envelope
func TestWriteErrorEnvelope(t *testing.T) {
	rr := httptest.NewRecorder()
	pkg.WriteError(rr, http.StatusUnauthorized, "Access token required")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.JSONEq(t, `{"success": false, "error": "Access token required"}`, rr.Body.String())
}
