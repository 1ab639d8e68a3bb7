package upload

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// Catbox uploads to catbox.moe. Files there never expire.
type Catbox struct {
	cfg    Endpoint
	client *http.Client
}

// NewCatbox returns a catbox.moe backend posting to cfg.URL.
func NewCatbox(cfg Endpoint, client *http.Client) *Catbox {
	return &Catbox{cfg: cfg, client: client}
}

func (c *Catbox) Name() string { return "catbox.moe" }

func (c *Catbox) Durability() string { return "✓ PERMANENT link - Never expires!" }

// Upload posts the file as fileToUpload with reqtype=fileupload. The reply
// body is the file URL in plain text.
func (c *Catbox) Upload(ctx context.Context, data []byte, filename string) (string, error) {
	resp, err := postMultipart(ctx, c.client, c.cfg.URL, c.cfg.Timeout,
		map[string]string{"reqtype": "fileupload"},
		filePart{field: "fileToUpload", filename: filename, data: data},
	)
	if err != nil {
		return "", err
	}
	if resp.status != http.StatusOK {
		return "", statusError(resp.status, http.StatusOK)
	}
	if !strings.HasPrefix(resp.text(), "https://") {
		return "", fmt.Errorf("%w: body is not an https url", ErrUnexpectedResponse)
	}
	return strings.TrimSpace(resp.text()), nil
}
