package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCorsMiddleware(t *testing.T) {
	testCases := []struct {
		name           string
		origin         string
		userAgent      string
		path           string
		method         string
		expectCors     bool
		expectedStatus int
	}{
		{
			name:           "AllowedOrigin",
			origin:         "https://www.markokovacevic.dev",
			expectCors:     true,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "NotAllowedOrigin",
			origin:         "https://www.notallowed.com",
			userAgent:      "Mozilla/5.0",
			expectCors:     false,
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "NoOriginNonBrowserClient",
			expectCors:     true,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "CurlAllowed",
			origin:         "https://www.notallowed.com",
			userAgent:      "curl/8.4.0",
			expectCors:     true,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "UploadsPathAlwaysAllowed",
			origin:         "https://www.notallowed.com",
			userAgent:      "Mozilla/5.0",
			path:           "/uploads/images/avatar-123.png",
			expectCors:     true,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "PreflightAllowedOrigin",
			origin:         "https://www.markokovacevic.dev",
			method:         "OPTIONS",
			expectCors:     true,
			expectedStatus: http.StatusOK,
		},
	}

	corsMiddleware := Cors([]string{
		"https://www.markokovacevic.dev",
		"http://localhost:5173",
	})

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := tc.path
			if path == "" {
				path = "/api/projects"
			}
			method := tc.method
			if method == "" {
				method = "GET"
			}

			req := httptest.NewRequest(method, path, nil)
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}
			if tc.userAgent != "" {
				req.Header.Set("User-Agent", tc.userAgent)
			}

			nextCalled := false
			next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
				nextCalled = true
			})

			rr := httptest.NewRecorder()
			corsMiddleware(next).ServeHTTP(rr, req)

			assert.Equal(t, tc.expectedStatus, rr.Code)
			if tc.expectCors {
				assert.NotEmpty(t, rr.Header().Get("Access-Control-Allow-Methods"))
			} else {
				assert.Empty(t, rr.Header().Get("Access-Control-Allow-Methods"))
			}
			if tc.expectCors && method != "OPTIONS" {
				assert.True(t, nextCalled)
			} else {
				assert.False(t, nextCalled)
			}
		})
	}
}
