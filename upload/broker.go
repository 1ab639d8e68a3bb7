// Package upload pushes files to anonymous public file hosts and returns a
// shareable link.
//
// The Broker walks an ordered list of backends, most durable link first, and
// stops at the first one that hands back a URL. Attempts are sequential: the
// worst case latency is the sum of every backend's timeout. Failures inside a
// backend are logged and swallowed; only exhaustion of the whole chain is
// reported, as an Outcome with Success=false.
package upload

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Backend adapts one file-hosting API. Upload returns the public URL of the
// stored file; any error means "no URL from this host" and is never
// propagated past the Broker.
type Backend interface {
	Name() string
	Durability() string
	Upload(ctx context.Context, data []byte, filename string) (string, error)
}

// Broker runs the fallback chain.
type Broker struct {
	backends []Backend
	log      *slog.Logger
}

// NewBroker returns a Broker trying backends in the given order.
func NewBroker(backends []Backend, log *slog.Logger) *Broker {
	return &Broker{
		backends: backends,
		log:      log,
	}
}

// Backends returns the chain in priority order.
func (b *Broker) Backends() []Backend {
	return b.backends
}

// Upload tries each backend in turn and returns the first success. Backends
// after the successful one are not contacted. If ctx is cancelled the chain
// stops early and the aggregate failure is returned.
func (b *Broker) Upload(ctx context.Context, data []byte, filename string) Outcome {
	for i, backend := range b.backends {
		if err := ctx.Err(); err != nil {
			b.log.Warn("upload chain aborted", "error", err, "remaining", len(b.backends)-i)
			break
		}

		url, err := b.attempt(ctx, backend, data, filename)
		if err != nil {
			b.log.Warn("upload backend failed", "service", backend.Name(), "filename", filename, "error", err)
			continue
		}

		b.log.Info("upload succeeded", "service", backend.Name(), "filename", filename, "url", url)
		return Succeeded(backend.Name(), url, backend.Durability())
	}

	b.log.Error("all upload backends failed", "filename", filename, "tried", len(b.backends))
	return Failed()
}

// attempt isolates one backend call so that a panic or blank URL counts as an
// ordinary failure.
func (b *Broker) attempt(ctx context.Context, backend Backend, data []byte, filename string) (url string, err error) {
	defer func() {
		if r := recover(); r != nil {
			url, err = "", fmt.Errorf("panic: %v", r)
		}
	}()

	url, err = backend.Upload(ctx, data, filename)
	if err != nil {
		return "", err
	}
	url = strings.TrimSpace(url)
	if url == "" {
		return "", fmt.Errorf("%w: empty url", ErrUnexpectedResponse)
	}
	return url, nil
}
