package notify

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWebhookDispatcher(t *testing.T) {
	t.Parallel()

	recipient := uuid.New()
	notification := Notification{
		Recipient: recipient,
		Title:     "Time for Metformin",
		Body:      "500mg scheduled for 08:00",
		Metadata:  map[string]string{"doseId": uuid.NewString()},
	}

	t.Run("posts json payload", func(t *testing.T) {
		t.Parallel()

		var got Notification
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.WriteHeader(http.StatusAccepted)
		}))
		defer srv.Close()

		d := NewWebhookDispatcher(srv.URL, time.Second, newTestLogger())

		err := d.Dispatch(context.Background(), notification)
		require.NoError(t, err)

		assert.Equal(t, recipient, got.Recipient)
		assert.Equal(t, "Time for Metformin", got.Title)
		assert.Equal(t, notification.Metadata, got.Metadata)
	})

	t.Run("non-2xx is a delivery failure", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "queue full", http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		d := NewWebhookDispatcher(srv.URL, time.Second, newTestLogger())

		err := d.Dispatch(context.Background(), notification)
		assert.ErrorContains(t, err, "503")
	})

	t.Run("unreachable endpoint errors", func(t *testing.T) {
		t.Parallel()

		d := NewWebhookDispatcher("http://127.0.0.1:1", time.Second, newTestLogger())

		err := d.Dispatch(context.Background(), notification)
		assert.Error(t, err)
	})
}

func TestLogDispatcher(t *testing.T) {
	t.Parallel()

	d := NewLogDispatcher(newTestLogger())

	err := d.Dispatch(context.Background(), Notification{Recipient: uuid.New(), Title: "t"})
	assert.NoError(t, err)
}
