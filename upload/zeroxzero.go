package upload

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// ZeroXZero uploads to the 0x0.st paste host, which keeps small files for up
// to a year.
type ZeroXZero struct {
	cfg    Endpoint
	client *http.Client
}

// NewZeroXZero returns a 0x0.st backend posting to cfg.URL.
func NewZeroXZero(cfg Endpoint, client *http.Client) *ZeroXZero {
	return &ZeroXZero{cfg: cfg, client: client}
}

func (z *ZeroXZero) Name() string { return "0x0.st" }

func (z *ZeroXZero) Durability() string { return "✓ Link available for 365 days (1 year)" }

func (z *ZeroXZero) Upload(ctx context.Context, data []byte, filename string) (string, error) {
	resp, err := postMultipart(ctx, z.client, z.cfg.URL, z.cfg.Timeout, nil,
		filePart{field: "file", filename: filename, data: data},
	)
	if err != nil {
		return "", err
	}
	if resp.status != http.StatusOK {
		return "", statusError(resp.status, http.StatusOK)
	}

	link := strings.TrimSpace(resp.text())
	if link == "" {
		return "", fmt.Errorf("%w: empty body", ErrUnexpectedResponse)
	}
	return link, nil
}
