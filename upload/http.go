package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// ErrUnexpectedResponse marks a host reply that did not carry a usable URL.
var ErrUnexpectedResponse = errors.New("unexpected response")

// maxResponseBytes caps how much of a host's reply is read. Every host
// answers with a short URL or a small JSON document.
const maxResponseBytes = 1 << 20

const userAgent = "qrforge/1.0"

// response is what the adapters inspect after a call.
type response struct {
	status int
	body   []byte
}

func (r *response) text() string {
	return string(r.body)
}

func (r *response) decode(v interface{}) error {
	if err := json.Unmarshal(r.body, v); err != nil {
		return fmt.Errorf("%w: decode json: %v", ErrUnexpectedResponse, err)
	}
	return nil
}

func statusError(got, want int) error {
	return fmt.Errorf("%w: status %d, want %d", ErrUnexpectedResponse, got, want)
}

// filePart describes the single file attached to a multipart upload.
type filePart struct {
	field    string
	filename string
	data     []byte
}

// postMultipart sends fields and file as multipart/form-data to url, bounded
// by timeout.
func postMultipart(ctx context.Context, client *http.Client, url string, timeout time.Duration, fields map[string]string, file filePart) (*response, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("write field %s: %w", k, err)
		}
	}
	fw, err := mw.CreateFormFile(file.field, file.filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := fw.Write(file.data); err != nil {
		return nil, fmt.Errorf("write form file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	return do(ctx, client, http.MethodPost, url, timeout, &buf, mw.FormDataContentType())
}

// get issues a plain GET bounded by timeout.
func get(ctx context.Context, client *http.Client, url string, timeout time.Duration) (*response, error) {
	return do(ctx, client, http.MethodGet, url, timeout, nil, "")
}

func do(ctx context.Context, client *http.Client, method, url string, timeout time.Duration, body io.Reader, contentType string) (*response, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, url, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return &response{status: resp.StatusCode, body: data}, nil
}
