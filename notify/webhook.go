// Package notify tells an external endpoint about files that were uploaded
// and turned into QR codes.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Event is the JSON body POSTed to the webhook for each shared file.
type Event struct {
	Filename  string `json:"filename"`
	Size      int    `json:"size"`
	URL       string `json:"url"`
	Service   string `json:"service"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

// WebhookSender delivers events to an HTTP endpoint.
type WebhookSender struct {
	url    string
	client *http.Client
	log    *slog.Logger
	now    func() time.Time
}

// NewWebhookSender creates a WebhookSender ready to POST events to url. If
// url is empty the sender is a no-op.
func NewWebhookSender(url string, timeout time.Duration, log *slog.Logger) *WebhookSender {
	return &WebhookSender{
		url: url,
		client: &http.Client{
			Timeout: timeout,
		},
		log: log,
		now: time.Now,
	}
}

// Enabled reports whether a webhook URL is configured.
func (w *WebhookSender) Enabled() bool {
	return w.url != ""
}

// Send delivers one event. Timestamp is filled in when zero. A non-2xx reply
// is logged and returned as an error.
func (w *WebhookSender) Send(ctx context.Context, evt Event) error {
	if w.url == "" {
		return nil
	}
	if evt.Timestamp == 0 {
		evt.Timestamp = w.now().Unix()
	}

	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("webhook marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		w.log.Error("webhook delivery failed", "error", err, "url", evt.URL)
		return fmt.Errorf("webhook POST: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		w.log.Warn("webhook non-2xx response", "status", resp.StatusCode, "url", evt.URL)
		return fmt.Errorf("webhook POST: status %d", resp.StatusCode)
	}

	w.log.Info("webhook delivered", "status", resp.StatusCode, "url", evt.URL)
	return nil
}
