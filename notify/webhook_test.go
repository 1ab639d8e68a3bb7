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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWebhookSender_Send(t *testing.T) {
	t.Parallel()

	var got Event
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sender := NewWebhookSender(srv.URL, time.Second, testLogger())
	sender.now = func() time.Time { return time.Unix(1700000000, 0) }

	err := sender.Send(context.Background(), Event{
		Filename: "report.pdf",
		Size:     42,
		URL:      "https://files.catbox.moe/abc.pdf",
		Service:  "catbox.moe",
		Message:  "✓ PERMANENT link - Never expires!",
	})
	require.NoError(t, err)

	assert.Equal(t, "report.pdf", got.Filename)
	assert.Equal(t, 42, got.Size)
	assert.Equal(t, "catbox.moe", got.Service)
	assert.Equal(t, int64(1700000000), got.Timestamp)
}

func TestWebhookSender_NonSuccess(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := NewWebhookSender(srv.URL, time.Second, testLogger()).Send(context.Background(), Event{URL: "u"})
	assert.Error(t, err)
}

func TestWebhookSender_Disabled(t *testing.T) {
	t.Parallel()

	sender := NewWebhookSender("", time.Second, testLogger())
	assert.False(t, sender.Enabled())
	assert.NoError(t, sender.Send(context.Background(), Event{URL: "u"}))
}
