package upload

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// Gofile uploads to gofile.io, whose links expire after 10 days without
// downloads. It needs two calls: one to pick an upload server, one to send the
// file to it. Either failing fails the whole upload.
type Gofile struct {
	cfg    GofileEndpoint
	client *http.Client
}

// NewGofile returns a gofile backend that looks up an upload server first.
func NewGofile(cfg GofileEndpoint, client *http.Client) *Gofile {
	return &Gofile{cfg: cfg, client: client}
}

func (g *Gofile) Name() string { return "gofile.io" }

func (g *Gofile) Durability() string { return "✓ Link expires after 10 days of inactivity" }

type gofileServerResponse struct {
	Status string `json:"status"`
	Data   struct {
		Server string `json:"server"`
	} `json:"data"`
}

type gofileUploadResponse struct {
	Status string `json:"status"`
	Data   struct {
		DownloadPage string `json:"downloadPage"`
	} `json:"data"`
}

func (g *Gofile) Upload(ctx context.Context, data []byte, filename string) (string, error) {
	server, err := g.server(ctx)
	if err != nil {
		return "", fmt.Errorf("get server: %w", err)
	}

	target := strings.ReplaceAll(g.cfg.UploadURL, "{server}", server)
	resp, err := postMultipart(ctx, g.client, target, g.cfg.Timeout, nil,
		filePart{field: "file", filename: filename, data: data},
	)
	if err != nil {
		return "", fmt.Errorf("upload file: %w", err)
	}
	if resp.status != http.StatusOK {
		return "", fmt.Errorf("upload file: %w", statusError(resp.status, http.StatusOK))
	}

	var body gofileUploadResponse
	if err := resp.decode(&body); err != nil {
		return "", fmt.Errorf("upload file: %w", err)
	}
	if body.Status != "ok" {
		return "", fmt.Errorf("upload file: %w: status %q", ErrUnexpectedResponse, body.Status)
	}
	if body.Data.DownloadPage == "" {
		return "", fmt.Errorf("upload file: %w: missing downloadPage", ErrUnexpectedResponse)
	}
	return body.Data.DownloadPage, nil
}

// server asks gofile which host should receive the upload.
func (g *Gofile) server(ctx context.Context) (string, error) {
	resp, err := get(ctx, g.client, g.cfg.ServerURL, g.cfg.ServerTimeout)
	if err != nil {
		return "", err
	}
	if resp.status != http.StatusOK {
		return "", statusError(resp.status, http.StatusOK)
	}

	var body gofileServerResponse
	if err := resp.decode(&body); err != nil {
		return "", err
	}
	if body.Status != "ok" {
		return "", fmt.Errorf("%w: status %q", ErrUnexpectedResponse, body.Status)
	}
	if !validServerName(body.Data.Server) {
		return "", fmt.Errorf("%w: bad server name %q", ErrUnexpectedResponse, body.Data.Server)
	}
	return body.Data.Server, nil
}

// validServerName accepts a single DNS label, since the name is spliced into
// the upload host.
func validServerName(s string) bool {
	if s == "" || len(s) > 63 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
		default:
			return false
		}
	}
	return true
}
