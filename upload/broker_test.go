package upload_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qrforge/qrforge/upload"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeBackend returns a fixed url or error and counts how often it was hit.
type fakeBackend struct {
	name   string
	url    string
	err    error
	panics bool
	calls  int
}

func (f *fakeBackend) Name() string       { return f.name }
func (f *fakeBackend) Durability() string { return f.name + " durability" }

func (f *fakeBackend) Upload(ctx context.Context, data []byte, filename string) (string, error) {
	f.calls++
	if f.panics {
		panic("boom")
	}
	return f.url, f.err
}

func failing(name string) *fakeBackend {
	return &fakeBackend{name: name, err: errors.New(name + " is down")}
}

func succeeding(name, url string) *fakeBackend {
	return &fakeBackend{name: name, url: url}
}

func asBackends(fakes ...*fakeBackend) []upload.Backend {
	out := make([]upload.Backend, len(fakes))
	for i, f := range fakes {
		out[i] = f
	}
	return out
}

func TestBroker_StopsAtFirstSuccess(t *testing.T) {
	t.Parallel()

	chain := []*fakeBackend{
		failing("one"),
		failing("two"),
		succeeding("three", "https://host/x"),
		succeeding("four", "https://unreachable/4"),
		succeeding("five", "https://unreachable/5"),
	}
	broker := upload.NewBroker(asBackends(chain...), discardLogger())

	out := broker.Upload(context.Background(), []byte("data"), "test.pdf")

	require.True(t, out.Success)
	require.NotNil(t, out.URL)
	require.NotNil(t, out.Service)
	assert.Equal(t, "https://host/x", *out.URL)
	assert.Equal(t, "three", *out.Service)
	assert.Equal(t, "three durability", out.Message)

	assert.Equal(t, []int{1, 1, 1, 0, 0}, []int{
		chain[0].calls, chain[1].calls, chain[2].calls, chain[3].calls, chain[4].calls,
	})
}

func TestBroker_EachPositionCanWin(t *testing.T) {
	t.Parallel()

	for winner := 0; winner < 5; winner++ {
		chain := make([]*fakeBackend, 5)
		for i := range chain {
			name := string(rune('a' + i))
			if i < winner {
				chain[i] = failing(name)
			} else {
				chain[i] = succeeding(name, "https://host/"+name)
			}
		}

		out := upload.NewBroker(asBackends(chain...), discardLogger()).
			Upload(context.Background(), []byte("x"), "x.bin")

		require.True(t, out.Success)
		assert.Equal(t, chain[winner].name, *out.Service)
		for i, f := range chain {
			if i <= winner {
				assert.Equal(t, 1, f.calls, "backend %d should be tried once", i)
			} else {
				assert.Zero(t, f.calls, "backend %d should not be tried", i)
			}
		}
	}
}

func TestBroker_AllFail(t *testing.T) {
	t.Parallel()

	chain := []*fakeBackend{failing("a"), failing("b"), failing("c"), failing("d"), failing("e")}
	out := upload.NewBroker(asBackends(chain...), discardLogger()).
		Upload(context.Background(), []byte("x"), "x.bin")

	assert.False(t, out.Success)
	assert.Nil(t, out.URL)
	assert.Nil(t, out.Service)
	assert.Equal(t, upload.FailureMessage, out.Message)
	for _, f := range chain {
		assert.Equal(t, 1, f.calls)
	}
}

func TestBroker_EmptyChain(t *testing.T) {
	t.Parallel()

	out := upload.NewBroker(nil, discardLogger()).Upload(context.Background(), []byte("x"), "x.bin")
	assert.Equal(t, upload.Failed(), out)
}

func TestBroker_PanicAndBlankURLAreFailures(t *testing.T) {
	t.Parallel()

	chain := []*fakeBackend{
		{name: "panics", panics: true},
		{name: "blank", url: "   "},
		succeeding("ok", "https://ok/1"),
	}
	out := upload.NewBroker(asBackends(chain...), discardLogger()).
		Upload(context.Background(), []byte("x"), "x.bin")

	require.True(t, out.Success)
	assert.Equal(t, "ok", *out.Service)
	assert.Equal(t, 1, chain[0].calls)
	assert.Equal(t, 1, chain[1].calls)
}

func TestBroker_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	chain := []*fakeBackend{succeeding("a", "https://a/1")}
	out := upload.NewBroker(asBackends(chain...), discardLogger()).Upload(ctx, []byte("x"), "x.bin")

	assert.False(t, out.Success)
	assert.Zero(t, chain[0].calls)
}

func TestOutcome_JSON(t *testing.T) {
	t.Parallel()

	ok, err := json.Marshal(upload.Succeeded("0x0.st", "https://0x0.st/abc.txt", "msg"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"url":"https://0x0.st/abc.txt","service":"0x0.st","message":"msg"}`, string(ok))

	failed, err := json.Marshal(upload.Failed())
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"url":null,"service":null,"message":"`+upload.FailureMessage+`"}`, string(failed))
}
