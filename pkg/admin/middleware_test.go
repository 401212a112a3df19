package admin

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestIDAssigned(t *testing.T) {
	f := newFakeProjects(t)
	api := newTestAPI(t, f, true)

	rec := doRequest(t, api, "GET", "/health", "", nil)

	id := rec.Header().Get("X-Request-Id")
	require.NotEmpty(t, id)
	_, err := uuid.Parse(id)
	assert.NoError(t, err)
}

func TestRequestIDPreserved(t *testing.T) {
	f := newFakeProjects(t)
	api := newTestAPI(t, f, true)

	req := httptest.NewRequest("GET", "/health", nil)
	req.Header.Set("X-Request-Id", "upstream-trace-42")
	rec := httptest.NewRecorder()
	api.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "upstream-trace-42", rec.Header().Get("X-Request-Id"))
}

func TestSecurityHeaders(t *testing.T) {
	f := newFakeProjects(t)
	api := newTestAPI(t, f, true)

	rec := doRequest(t, api, "GET", "/health", "", nil)

	headers := map[string]string{
		"X-Content-Type-Options":  "nosniff",
		"X-Frame-Options":         "DENY",
		"X-XSS-Protection":        "1; mode=block",
		"Referrer-Policy":         "strict-origin-when-cross-origin",
		"Content-Security-Policy": "default-src 'self'",
		"Cache-Control":           "no-store",
	}
	for name, want := range headers {
		assert.Equal(t, want, rec.Header().Get(name), "header %s", name)
	}
}

func TestCORSPreflightAllowedOrigin(t *testing.T) {
	f := newFakeProjects(t)
	api := newTestAPI(t, f, true)
	api.corsConfig = DefaultCORSConfig("https://admin.example.com")

	req := httptest.NewRequest("OPTIONS", "/me", nil)
	req.Header.Set("Origin", "https://admin.example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	rec := httptest.NewRecorder()
	api.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://admin.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "PATCH")
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Authorization")
}

func TestCORSPreflightDisallowedOrigin(t *testing.T) {
	f := newFakeProjects(t)
	api := newTestAPI(t, f, true)
	api.corsConfig = DefaultCORSConfig("https://admin.example.com")

	req := httptest.NewRequest("OPTIONS", "/me", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	rec := httptest.NewRecorder()
	api.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSDisallowedOriginPassesThroughWithoutHeaders(t *testing.T) {
	f := newFakeProjects(t)
	api := newTestAPI(t, f, true)
	api.corsConfig = DefaultCORSConfig("https://admin.example.com")

	req := httptest.NewRequest("GET", "/health", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec := httptest.NewRecorder()
	api.Handler().ServeHTTP(rec, req)

	// The request is served; withholding the CORS headers is what blocks
	// the browser.
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSWildcardByDefault(t *testing.T) {
	f := newFakeProjects(t)
	api := newTestAPI(t, f, true)

	req := httptest.NewRequest("GET", "/health", nil)
	req.Header.Set("Origin", "https://anywhere.example.com")
	rec := httptest.NewRecorder()
	api.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"),
		"wildcard origins must not be credentialed")
}

func TestCORSVaryOrigin(t *testing.T) {
	f := newFakeProjects(t)
	api := newTestAPI(t, f, true)

	rec := doRequest(t, api, "GET", "/health", "", nil)
	assert.Contains(t, rec.Header().Values("Vary"), "Origin")
}

func TestRecoveryMiddleware(t *testing.T) {
	f := newFakeProjects(t)
	api := newTestAPI(t, f, true)

	h := api.recoveryMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	req := httptest.NewRequest("GET", "/anything", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	// The panic value stays server-side; the client gets the generic
	// envelope.
	assertErrorBody(t, rec, http.StatusInternalServerError, ErrMsgInternalError)
	assert.NotContains(t, rec.Body.String(), "boom")
}

func TestAllowOrigin(t *testing.T) {
	tests := []struct {
		name   string
		cfg    CORSConfig
		origin string
		want   string
	}{
		{
			name:   "exact match",
			cfg:    CORSConfig{AllowedOrigins: []string{"https://a.example.com"}},
			origin: "https://a.example.com",
			want:   "https://a.example.com",
		},
		{
			name:   "no match",
			cfg:    CORSConfig{AllowedOrigins: []string{"https://a.example.com"}},
			origin: "https://b.example.com",
			want:   "",
		},
		{
			name:   "wildcard without credentials",
			cfg:    CORSConfig{AllowedOrigins: []string{"*"}},
			origin: "https://b.example.com",
			want:   "*",
		},
		{
			name:   "wildcard with credentials echoes the origin",
			cfg:    CORSConfig{AllowedOrigins: []string{"*"}, AllowCredentials: true},
			origin: "https://b.example.com",
			want:   "https://b.example.com",
		},
		{
			name:   "mixed list prefers the exact match",
			cfg:    CORSConfig{AllowedOrigins: []string{"*", "https://a.example.com"}},
			origin: "https://a.example.com",
			want:   "https://a.example.com",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.allowOrigin(tt.origin))
		})
	}
}
