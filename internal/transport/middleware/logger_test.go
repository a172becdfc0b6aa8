package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/medremind/medremind-backend/pkg/ctxutil"
)

func captureLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})), &buf
}

func statusHandler(code int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(code)
	})
}

func TestLogger_InfoLineForSuccess(t *testing.T) {
	logger, buf := captureLogger()

	wrapped := Logger(logger)(statusHandler(http.StatusOK))
	wrapped.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/doses", nil))

	line := buf.String()
	for _, want := range []string{"http.request", `"method":"GET"`, `"path":"/v1/doses"`, `"status":200`, "duration", `"INFO"`} {
		if !strings.Contains(line, want) {
			t.Errorf("expected log line to contain %q, got %q", want, line)
		}
	}
}

func TestLogger_ErrorLevelForServerError(t *testing.T) {
	logger, buf := captureLogger()

	wrapped := Logger(logger)(statusHandler(http.StatusInternalServerError))
	wrapped.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/v1/schedules", nil))

	line := buf.String()
	if !strings.Contains(line, `"ERROR"`) {
		t.Errorf("expected ERROR level for status 500, got %q", line)
	}
	if !strings.Contains(line, `"status":500`) {
		t.Errorf("expected status 500 in log line, got %q", line)
	}
}

func TestLogger_CarriesRequestAndUserIDs(t *testing.T) {
	logger, buf := captureLogger()
	userID := uuid.New()

	wrapped := Logger(logger)(statusHandler(http.StatusOK))

	req := httptest.NewRequest(http.MethodGet, "/v1/stats/adherence", nil)
	ctx := ctxutil.WithRequestID(req.Context(), "req-8842")
	ctx = ctxutil.WithUserID(ctx, userID)
	wrapped.ServeHTTP(httptest.NewRecorder(), req.WithContext(ctx))

	line := buf.String()
	if !strings.Contains(line, "req-8842") {
		t.Errorf("expected request_id in log line, got %q", line)
	}
	if !strings.Contains(line, userID.String()) {
		t.Errorf("expected user_id %s in log line, got %q", userID, line)
	}
}

func TestLogger_OmitsUserIDWhenAnonymous(t *testing.T) {
	logger, buf := captureLogger()

	wrapped := Logger(logger)(statusHandler(http.StatusOK))
	wrapped.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if strings.Contains(buf.String(), "user_id") {
		t.Errorf("expected no user_id attribute for anonymous request, got %q", buf.String())
	}
}
