package upload

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// Pixeldrain uploads to pixeldrain.com. Anonymous files are kept for at least
// 90 days.
type Pixeldrain struct {
	cfg    PixeldrainEndpoint
	client *http.Client
}

// NewPixeldrain returns a pixeldrain backend building links from cfg.ShareURL.
func NewPixeldrain(cfg PixeldrainEndpoint, client *http.Client) *Pixeldrain {
	return &Pixeldrain{cfg: cfg, client: client}
}

func (p *Pixeldrain) Name() string { return "pixeldrain.com" }

func (p *Pixeldrain) Durability() string { return "✓ Link available for 90+ days" }

// Upload expects 201 Created with {"id": "..."} and turns the ID into a share
// link.
func (p *Pixeldrain) Upload(ctx context.Context, data []byte, filename string) (string, error) {
	resp, err := postMultipart(ctx, p.client, p.cfg.URL, p.cfg.Timeout, nil,
		filePart{field: "file", filename: filename, data: data},
	)
	if err != nil {
		return "", err
	}
	if resp.status != http.StatusCreated {
		return "", statusError(resp.status, http.StatusCreated)
	}

	var body struct {
		ID string `json:"id"`
	}
	if err := resp.decode(&body); err != nil {
		return "", err
	}
	if body.ID == "" {
		return "", fmt.Errorf("%w: missing id", ErrUnexpectedResponse)
	}
	return p.cfg.ShareURL + url.PathEscape(body.ID), nil
}
