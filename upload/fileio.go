package upload

import (
	"context"
	"fmt"
	"net/http"
)

// FileIO uploads to file.io. Links die after the first download or 14 days,
// so it is the last resort.
type FileIO struct {
	cfg    Endpoint
	client *http.Client
}

// NewFileIO returns a file.io backend posting to cfg.URL.
func NewFileIO(cfg Endpoint, client *http.Client) *FileIO {
	return &FileIO{cfg: cfg, client: client}
}

func (f *FileIO) Name() string { return "file.io" }

func (f *FileIO) Durability() string { return "⚠️ Link expires after FIRST download or 14 days" }

func (f *FileIO) Upload(ctx context.Context, data []byte, filename string) (string, error) {
	resp, err := postMultipart(ctx, f.client, f.cfg.URL, f.cfg.Timeout, nil,
		filePart{field: "file", filename: filename, data: data},
	)
	if err != nil {
		return "", err
	}
	if resp.status != http.StatusOK {
		return "", statusError(resp.status, http.StatusOK)
	}

	var body struct {
		Success bool   `json:"success"`
		Link    string `json:"link"`
	}
	if err := resp.decode(&body); err != nil {
		return "", err
	}
	if !body.Success {
		return "", fmt.Errorf("%w: success=false", ErrUnexpectedResponse)
	}
	if body.Link == "" {
		return "", fmt.Errorf("%w: missing link", ErrUnexpectedResponse)
	}
	return body.Link, nil
}
