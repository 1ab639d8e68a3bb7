package generator_test

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qrforge/qrforge/generator"
	"github.com/qrforge/qrforge/notify"
	"github.com/qrforge/qrforge/qr"
	"github.com/qrforge/qrforge/upload"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubBackend struct {
	name  string
	url   string
	calls int
}

func (s *stubBackend) Name() string       { return s.name }
func (s *stubBackend) Durability() string { return "kept for a while" }

func (s *stubBackend) Upload(ctx context.Context, data []byte, filename string) (string, error) {
	s.calls++
	if s.url == "" {
		return "", errors.New("unavailable")
	}
	return s.url, nil
}

type recordingEncoder struct {
	payloads []string
	opts     []qr.Options
	err      error
}

func (r *recordingEncoder) Encode(payload string, opts qr.Options) ([]byte, error) {
	r.payloads = append(r.payloads, payload)
	r.opts = append(r.opts, opts)
	if r.err != nil {
		return nil, r.err
	}
	return []byte("png:" + payload), nil
}

type recordingNotifier struct {
	events []notify.Event
	err    error
}

func (r *recordingNotifier) Send(ctx context.Context, evt notify.Event) error {
	r.events = append(r.events, evt)
	return r.err
}

func chain(backends ...*stubBackend) *upload.Broker {
	list := make([]upload.Backend, len(backends))
	for i, b := range backends {
		list[i] = b
	}
	return upload.NewBroker(list, discardLogger())
}

func TestFromFile_EncodesFirstWorkingURL(t *testing.T) {
	t.Parallel()

	backends := []*stubBackend{
		{name: "first"},
		{name: "second"},
		{name: "third", url: "https://host/x"},
		{name: "fourth", url: "https://unreachable/4"},
		{name: "fifth", url: "https://unreachable/5"},
	}
	enc := &recordingEncoder{}
	gen := generator.New(chain(backends...), discardLogger(), generator.WithEncoder(enc))

	opts := qr.Options{FillColor: "darkgreen", BackColor: "#fafafa", BoxSize: 6, Border: 2}
	img, outcome, err := gen.FromFile(context.Background(), []byte("content"), "doc.pdf", opts)
	require.NoError(t, err)

	assert.Equal(t, []byte("png:https://host/x"), img)
	assert.True(t, outcome.Success)
	assert.Equal(t, "third", *outcome.Service)
	assert.Equal(t, "https://host/x", *outcome.URL)

	require.Len(t, enc.payloads, 1, "encoder should be invoked exactly once")
	assert.Equal(t, "https://host/x", enc.payloads[0])
	assert.Equal(t, opts, enc.opts[0])

	assert.Zero(t, backends[3].calls)
	assert.Zero(t, backends[4].calls)
}

func TestFromFile_UploadFailureSkipsEncoder(t *testing.T) {
	t.Parallel()

	enc := &recordingEncoder{}
	notifier := &recordingNotifier{}
	gen := generator.New(chain(&stubBackend{name: "a"}, &stubBackend{name: "b"}), discardLogger(),
		generator.WithEncoder(enc), generator.WithNotifier(notifier))

	img, outcome, err := gen.FromFile(context.Background(), []byte("content"), "doc.pdf", qr.DefaultOptions())

	require.Error(t, err)
	var uerr *generator.UploadError
	require.True(t, errors.As(err, &uerr))
	assert.Equal(t, upload.FailureMessage, uerr.Message)
	assert.Equal(t, upload.FailureMessage, err.Error())

	assert.Nil(t, img)
	assert.False(t, outcome.Success)
	assert.Empty(t, enc.payloads, "encoder must not run when the upload failed")
	assert.Empty(t, notifier.events)
}

func TestFromFile_EmptyFile(t *testing.T) {
	t.Parallel()

	backend := &stubBackend{name: "a", url: "https://a/1"}
	gen := generator.New(chain(backend), discardLogger())

	_, _, err := gen.FromFile(context.Background(), nil, "empty.txt", qr.DefaultOptions())
	assert.True(t, errors.Is(err, generator.ErrEmptyFile))
	assert.Zero(t, backend.calls)
}

func TestFromFile_InvalidOptionsSkipUpload(t *testing.T) {
	t.Parallel()

	backend := &stubBackend{name: "a", url: "https://a/1"}
	gen := generator.New(chain(backend), discardLogger())

	_, _, err := gen.FromFile(context.Background(), []byte("x"), "x.bin", qr.Options{BoxSize: 0})
	var verr *qr.ValidationError
	assert.True(t, errors.As(err, &verr))
	assert.Zero(t, backend.calls)
}

func TestServices(t *testing.T) {
	t.Parallel()

	gen := generator.New(chain(&stubBackend{name: "a"}, &stubBackend{name: "b"}), discardLogger())
	assert.Equal(t, []string{"a", "b"}, gen.Services())
}

func TestFromFile_EncodingErrorKeepsOutcome(t *testing.T) {
	t.Parallel()

	enc := &recordingEncoder{err: &qr.EncodingError{Err: errors.New("boom")}}
	gen := generator.New(chain(&stubBackend{name: "a", url: "https://a/1"}), discardLogger(),
		generator.WithEncoder(enc))

	img, outcome, err := gen.FromFile(context.Background(), []byte("x"), "x.bin", qr.DefaultOptions())

	var eerr *qr.EncodingError
	assert.True(t, errors.As(err, &eerr))
	assert.Nil(t, img)
	assert.True(t, outcome.Success)
}

func TestFromFile_Notifies(t *testing.T) {
	t.Parallel()

	notifier := &recordingNotifier{err: errors.New("webhook down")}
	gen := generator.New(chain(&stubBackend{name: "catbox.moe", url: "https://files.catbox.moe/a.txt"}),
		discardLogger(), generator.WithEncoder(&recordingEncoder{}), generator.WithNotifier(notifier))

	_, _, err := gen.FromFile(context.Background(), []byte("hello"), "  ", qr.DefaultOptions())
	require.NoError(t, err, "notifier errors must not fail the request")

	require.Len(t, notifier.events, 1)
	evt := notifier.events[0]
	assert.Equal(t, "file", evt.Filename)
	assert.Equal(t, 5, evt.Size)
	assert.Equal(t, "catbox.moe", evt.Service)
	assert.Equal(t, "https://files.catbox.moe/a.txt", evt.URL)
}

func TestFromFile_RealEncoder(t *testing.T) {
	t.Parallel()

	gen := generator.New(chain(&stubBackend{name: "a", url: "https://www.example.com"}), discardLogger())

	img, _, err := gen.FromFile(context.Background(), []byte("x"), "x.bin", qr.DefaultOptions())
	require.NoError(t, err)

	_, err = png.Decode(bytes.NewReader(img))
	assert.NoError(t, err)
}

func TestFromText(t *testing.T) {
	t.Parallel()

	gen := generator.New(chain(), discardLogger())

	_, err := gen.FromText("   ", qr.DefaultOptions())
	assert.True(t, errors.Is(err, qr.ErrEmptyPayload))

	img, err := gen.FromText("https://www.example.com", qr.DefaultOptions())
	require.NoError(t, err)
	assert.NotEmpty(t, img)
}

func TestUpload(t *testing.T) {
	t.Parallel()

	gen := generator.New(chain(&stubBackend{name: "a", url: "https://a/1"}), discardLogger())

	outcome := gen.Upload(context.Background(), []byte("x"), "x.bin")
	assert.True(t, outcome.Success)
	assert.Equal(t, "https://a/1", *outcome.URL)
}
