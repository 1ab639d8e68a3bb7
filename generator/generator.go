// Package generator ties the upload chain and the QR encoder together.
package generator

import (
	"context"
	"log/slog"
	"strings"

	"github.com/qrforge/qrforge/notify"
	"github.com/qrforge/qrforge/qr"
	"github.com/qrforge/qrforge/upload"
)

// Uploader turns file bytes into a shareable link. *upload.Broker implements it.
type Uploader interface {
	Upload(ctx context.Context, data []byte, filename string) upload.Outcome
}

// Encoder renders a payload as a PNG.
type Encoder interface {
	Encode(payload string, opts qr.Options) ([]byte, error)
}

// EncoderFunc adapts a plain function to Encoder.
type EncoderFunc func(payload string, opts qr.Options) ([]byte, error)

// Encode calls f.
func (f EncoderFunc) Encode(payload string, opts qr.Options) ([]byte, error) {
	return f(payload, opts)
}

// Notifier is told about every file that ended up in a QR code.
type Notifier interface {
	Send(ctx context.Context, evt notify.Event) error
}

// UploadError is returned by FromFile when no backend accepted the file. It
// only carries the aggregate message; per-backend reasons are logged by the
// broker.
type UploadError struct {
	Message string
}

func (e *UploadError) Error() string {
	return e.Message
}

// ErrEmptyFile rejects zero-byte uploads before any host is contacted.
var ErrEmptyFile = &qr.ValidationError{Reason: "file cannot be empty"}

const defaultFilename = "file"

// Generator produces QR codes from text or from uploaded files.
type Generator struct {
	uploader Uploader
	encoder  Encoder
	notifier Notifier
	log      *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithEncoder replaces qr.Encode.
func WithEncoder(e Encoder) Option {
	return func(g *Generator) { g.encoder = e }
}

// WithNotifier sets a notifier called after each successful file QR.
func WithNotifier(n Notifier) Option {
	return func(g *Generator) { g.notifier = n }
}

// New returns a Generator that uploads through uploader and encodes with
// qr.Encode unless WithEncoder says otherwise.
func New(uploader Uploader, log *slog.Logger, opts ...Option) *Generator {
	g := &Generator{
		uploader: uploader,
		encoder:  EncoderFunc(qr.Encode),
		log:      log,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Services lists the upload hosts in the order they are tried, when the
// uploader exposes them.
func (g *Generator) Services() []string {
	chain, ok := g.uploader.(interface{ Backends() []upload.Backend })
	if !ok {
		return nil
	}
	names := make([]string, 0, len(chain.Backends()))
	for _, b := range chain.Backends() {
		names = append(names, b.Name())
	}
	return names
}

// FromText encodes payload directly.
func (g *Generator) FromText(payload string, opts qr.Options) ([]byte, error) {
	return g.encoder.Encode(payload, opts)
}

// Upload runs the upload chain without encoding anything.
func (g *Generator) Upload(ctx context.Context, data []byte, filename string) upload.Outcome {
	return g.uploader.Upload(ctx, data, normalizeFilename(filename))
}

// FromFile uploads data and encodes the resulting link. When every backend
// fails it returns an *UploadError and the encoder is not called. The outcome
// is returned alongside the image so callers can show which host was used.
func (g *Generator) FromFile(ctx context.Context, data []byte, filename string, opts qr.Options) ([]byte, upload.Outcome, error) {
	if len(data) == 0 {
		return nil, upload.Outcome{}, ErrEmptyFile
	}
	// Bad geometry would only surface after a slow upload.
	if err := opts.WithDefaults().Validate(); err != nil {
		return nil, upload.Outcome{}, err
	}
	filename = normalizeFilename(filename)

	outcome := g.uploader.Upload(ctx, data, filename)
	if !outcome.Success || outcome.URL == nil {
		return nil, outcome, &UploadError{Message: outcome.Message}
	}

	img, err := g.encoder.Encode(*outcome.URL, opts)
	if err != nil {
		return nil, outcome, err
	}

	if g.notifier != nil {
		evt := notify.Event{
			Filename: filename,
			Size:     len(data),
			URL:      *outcome.URL,
			Service:  *outcome.Service,
			Message:  outcome.Message,
		}
		if err := g.notifier.Send(ctx, evt); err != nil {
			g.log.Warn("upload notification failed", "error", err, "filename", filename)
		}
	}
	return img, outcome, nil
}

func normalizeFilename(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return defaultFilename
	}
	return name
}
