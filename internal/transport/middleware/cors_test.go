package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/medremind/medremind-backend/internal/config"
)

func corsConfig() config.CORSConfig {
	return config.CORSConfig{
		AllowedOrigins:   "https://app.medremind.io",
		AllowedMethods:   "GET,POST,PUT,DELETE,OPTIONS",
		AllowedHeaders:   "Authorization,Content-Type",
		AllowCredentials: true,
		MaxAge:           86400,
	}
}

func corsRequest(method, origin string) *http.Request {
	req := httptest.NewRequest(method, "/v1/schedules", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	return req
}

func TestCORS_PreflightShortCircuits(t *testing.T) {
	wrapped := CORS(corsConfig())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run for preflight")
	}))

	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, corsRequest(http.MethodOptions, "https://app.medremind.io"))

	if rec.Code != http.StatusNoContent {
		t.Errorf("expected status %d, got %d", http.StatusNoContent, rec.Code)
	}

	want := map[string]string{
		"Access-Control-Allow-Origin":      "https://app.medremind.io",
		"Access-Control-Allow-Methods":     "GET,POST,PUT,DELETE,OPTIONS",
		"Access-Control-Allow-Headers":     "Authorization,Content-Type",
		"Access-Control-Allow-Credentials": "true",
		"Access-Control-Max-Age":           "86400",
	}
	for header, expected := range want {
		if got := rec.Header().Get(header); got != expected {
			t.Errorf("expected %s %q, got %q", header, expected, got)
		}
	}
}

func TestCORS_AllowedOriginFromList(t *testing.T) {
	cfg := corsConfig()
	cfg.AllowedOrigins = "https://app.medremind.io, https://admin.medremind.io"

	called := false
	wrapped := CORS(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, corsRequest(http.MethodGet, "https://admin.medremind.io"))

	if !called {
		t.Error("expected handler to be called")
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://admin.medremind.io" {
		t.Errorf("expected Access-Control-Allow-Origin %q, got %q", "https://admin.medremind.io", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("expected Access-Control-Allow-Credentials %q, got %q", "true", got)
	}
}

func TestCORS_UnknownOriginGetsNoHeaders(t *testing.T) {
	called := false
	wrapped := CORS(corsConfig())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, corsRequest(http.MethodGet, "https://evil.example"))

	if !called {
		t.Error("expected handler to be called")
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("expected no Access-Control-Allow-Origin header, got %q", got)
	}
}

func TestCORS_WildcardEchoesOrigin(t *testing.T) {
	cfg := corsConfig()
	cfg.AllowedOrigins = "*"
	cfg.AllowCredentials = false

	wrapped := CORS(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, corsRequest(http.MethodGet, "https://anywhere.example"))

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://anywhere.example" {
		t.Errorf("expected Access-Control-Allow-Origin %q, got %q", "https://anywhere.example", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != "" {
		t.Errorf("expected no Access-Control-Allow-Credentials header, got %q", got)
	}
}
