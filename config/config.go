// Package config handles loading and managing application configuration
// from YAML files, an optional .env file and environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/qrforge/qrforge/qr"
	"github.com/qrforge/qrforge/upload"
)

// Endpoint is a single-request upload host.
type Endpoint struct {
	URL     string   `yaml:"url"`
	Timeout Duration `yaml:"timeout"`
}

// PixeldrainEndpoint adds the share link prefix.
type PixeldrainEndpoint struct {
	URL      string   `yaml:"url"`
	ShareURL string   `yaml:"share_url"`
	Timeout  Duration `yaml:"timeout"`
}

// GofileEndpoint configures both gofile calls. UploadURL must contain
// {server}.
type GofileEndpoint struct {
	ServerURL     string   `yaml:"server_url"`
	ServerTimeout Duration `yaml:"server_timeout"`
	UploadURL     string   `yaml:"upload_url"`
	Timeout       Duration `yaml:"timeout"`
}

// UploadConfig holds the endpoints of the upload chain. The order of the
// chain itself is fixed.
type UploadConfig struct {
	Catbox     Endpoint           `yaml:"catbox"`
	Pixeldrain PixeldrainEndpoint `yaml:"pixeldrain"`
	ZeroXZero  Endpoint           `yaml:"zeroxzero"`
	Gofile     GofileEndpoint     `yaml:"gofile"`
	FileIO     Endpoint           `yaml:"fileio"`
}

// Config holds all application configuration values.
type Config struct {
	Port           int          `yaml:"port"`
	LogLevel       string       `yaml:"log_level"`
	MaxUploadBytes int64        `yaml:"max_upload_bytes"`
	WebhookURL     string       `yaml:"webhook_url"`
	WebhookTimeout Duration     `yaml:"webhook_timeout"`
	QR             qr.Options   `yaml:"qr"`
	Upload         UploadConfig `yaml:"upload"`
}

// Duration is a wrapper around time.Duration that supports YAML unmarshalling
// from human-readable strings like "30s", "5m", "1h".
type Duration struct {
	time.Duration
}

// UnmarshalYAML implements the yaml.Unmarshaler interface for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

// MarshalYAML implements the yaml.Marshaler interface for Duration.
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

// Defaults returns a Config populated with the public hosts and the stock QR
// look.
func Defaults() *Config {
	up := upload.DefaultConfig()
	return &Config{
		Port:           8555,
		LogLevel:       "info",
		MaxUploadBytes: 50 << 20,
		WebhookTimeout: Duration{10 * time.Second},
		QR:             qr.DefaultOptions(),
		Upload: UploadConfig{
			Catbox: Endpoint{URL: up.Catbox.URL, Timeout: Duration{up.Catbox.Timeout}},
			Pixeldrain: PixeldrainEndpoint{
				URL:      up.Pixeldrain.URL,
				ShareURL: up.Pixeldrain.ShareURL,
				Timeout:  Duration{up.Pixeldrain.Timeout},
			},
			ZeroXZero: Endpoint{URL: up.ZeroXZero.URL, Timeout: Duration{up.ZeroXZero.Timeout}},
			Gofile: GofileEndpoint{
				ServerURL:     up.Gofile.ServerURL,
				ServerTimeout: Duration{up.Gofile.ServerTimeout},
				UploadURL:     up.Gofile.UploadURL,
				Timeout:       Duration{up.Gofile.Timeout},
			},
			FileIO: Endpoint{URL: up.FileIO.URL, Timeout: Duration{up.FileIO.Timeout}},
		},
	}
}

// LoadEnvFile loads KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set. A missing file is not
// an error.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading env file %s: %w", path, err)
	}
	return nil
}

// Load reads configuration from the YAML file at path, falling back to
// defaults if the file does not exist. Environment variables with the QRF_
// prefix override any file or default values.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// File doesn't exist, proceed with defaults.
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the service cannot start with.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("max_upload_bytes must be positive")
	}
	if err := c.QR.Validate(); err != nil {
		return fmt.Errorf("qr: %w", err)
	}
	timeouts := []struct {
		key string
		d   Duration
	}{
		{"webhook_timeout", c.WebhookTimeout},
		{"upload.catbox.timeout", c.Upload.Catbox.Timeout},
		{"upload.pixeldrain.timeout", c.Upload.Pixeldrain.Timeout},
		{"upload.zeroxzero.timeout", c.Upload.ZeroXZero.Timeout},
		{"upload.gofile.server_timeout", c.Upload.Gofile.ServerTimeout},
		{"upload.gofile.timeout", c.Upload.Gofile.Timeout},
		{"upload.fileio.timeout", c.Upload.FileIO.Timeout},
	}
	for _, to := range timeouts {
		if to.d.Duration <= 0 {
			return fmt.Errorf("%s must be positive, got %s", to.key, to.d.Duration)
		}
	}
	return nil
}

// applyEnvOverrides applies QRF_* environment variable overrides to cfg.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("QRF_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Port = p
		}
	}
	if v := os.Getenv("QRF_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("QRF_MAX_UPLOAD_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.MaxUploadBytes = n
		}
	}
	if v := os.Getenv("QRF_WEBHOOK_URL"); v != "" {
		cfg.WebhookURL = v
	}
	if v := os.Getenv("QRF_WEBHOOK_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.WebhookTimeout = Duration{d}
		}
	}
	if v := os.Getenv("QRF_FILL_COLOR"); v != "" {
		cfg.QR.FillColor = v
	}
	if v := os.Getenv("QRF_BACK_COLOR"); v != "" {
		cfg.QR.BackColor = v
	}
	if v := os.Getenv("QRF_BOX_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.QR.BoxSize = n
		}
	}
	if v := os.Getenv("QRF_BORDER"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.QR.Border = n
		}
	}
}

// Backends converts the endpoint settings for upload.DefaultBackends.
func (u UploadConfig) Backends() upload.Config {
	return upload.Config{
		Catbox: upload.Endpoint{URL: u.Catbox.URL, Timeout: u.Catbox.Timeout.Duration},
		Pixeldrain: upload.PixeldrainEndpoint{
			URL:      u.Pixeldrain.URL,
			ShareURL: u.Pixeldrain.ShareURL,
			Timeout:  u.Pixeldrain.Timeout.Duration,
		},
		ZeroXZero: upload.Endpoint{URL: u.ZeroXZero.URL, Timeout: u.ZeroXZero.Timeout.Duration},
		Gofile: upload.GofileEndpoint{
			ServerURL:     u.Gofile.ServerURL,
			ServerTimeout: u.Gofile.ServerTimeout.Duration,
			UploadURL:     u.Gofile.UploadURL,
			Timeout:       u.Gofile.Timeout.Duration,
		},
		FileIO: upload.Endpoint{URL: u.FileIO.URL, Timeout: u.FileIO.Timeout.Duration},
	}
}
