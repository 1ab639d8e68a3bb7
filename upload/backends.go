package upload

import (
	"net/http"
	"time"
)

// Config holds the endpoints and timeouts of the built-in backends.
type Config struct {
	Catbox     Endpoint
	Pixeldrain PixeldrainEndpoint
	ZeroXZero  Endpoint
	Gofile     GofileEndpoint
	FileIO     Endpoint
}

// Endpoint is a single-request host.
type Endpoint struct {
	URL     string
	Timeout time.Duration
}

// PixeldrainEndpoint adds the prefix used to build share links from file IDs.
type PixeldrainEndpoint struct {
	URL      string
	ShareURL string
	Timeout  time.Duration
}

// GofileEndpoint describes the two-step gofile protocol. UploadURL contains a
// {server} placeholder replaced with the server name returned by ServerURL.
type GofileEndpoint struct {
	ServerURL     string
	ServerTimeout time.Duration
	UploadURL     string
	Timeout       time.Duration
}

// DefaultConfig returns the public endpoints with their usual timeouts.
func DefaultConfig() Config {
	return Config{
		Catbox: Endpoint{
			URL:     "https://catbox.moe/user/api.php",
			Timeout: 60 * time.Second,
		},
		Pixeldrain: PixeldrainEndpoint{
			URL:      "https://pixeldrain.com/api/file",
			ShareURL: "https://pixeldrain.com/u/",
			Timeout:  60 * time.Second,
		},
		ZeroXZero: Endpoint{
			URL:     "https://0x0.st",
			Timeout: 30 * time.Second,
		},
		Gofile: GofileEndpoint{
			ServerURL:     "https://api.gofile.io/getServer",
			ServerTimeout: 10 * time.Second,
			UploadURL:     "https://{server}.gofile.io/uploadFile",
			Timeout:       60 * time.Second,
		},
		FileIO: Endpoint{
			URL:     "https://file.io",
			Timeout: 30 * time.Second,
		},
	}
}

// DefaultBackends builds the chain ordered by link durability: permanent,
// ~90 days, 365 days, 10 days of inactivity, first download or 14 days.
func DefaultBackends(cfg Config, client *http.Client) []Backend {
	if client == nil {
		client = &http.Client{}
	}
	return []Backend{
		NewCatbox(cfg.Catbox, client),
		NewPixeldrain(cfg.Pixeldrain, client),
		NewZeroXZero(cfg.ZeroXZero, client),
		NewGofile(cfg.Gofile, client),
		NewFileIO(cfg.FileIO, client),
	}
}
