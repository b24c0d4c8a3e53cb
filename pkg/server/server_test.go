package server

import (
	"context"
	"crypto/tls"
	"io"
	"io/fs"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/net/http2"
)

// socketPath keeps unix socket paths under the platform length limit.
func socketPath(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "pc")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	return filepath.Join(dir, "h.sock")
}

func startHealth(t *testing.T, path string) (*HealthServer, context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	srv := NewHealthServer(zap.NewNop(), path, 0o660)
	done := make(chan error, 1)
	go func() { done <- srv.Start(ctx) }()

	require.Eventually(t, func() bool {
		_, err := Probe(ctx, path)
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)
	return srv, cancel, done
}

func TestHealthServerLifecycle(t *testing.T) {
	path := socketPath(t)
	srv, cancel, done := startHealth(t, path)
	ctx := context.Background()

	status, err := Probe(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "NOT_SERVING", status)

	srv.SetServing(true)
	status, err = Probe(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "SERVING", status)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, fs.FileMode(0o660), info.Mode().Perm())

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("health server did not stop")
	}

	_, err = os.Stat(path)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestHealthServerRefusesLiveSocket(t *testing.T) {
	path := socketPath(t)
	_, cancel, done := startHealth(t, path)
	defer func() {
		cancel()
		<-done
	}()

	err := NewHealthServer(zap.NewNop(), path, 0o660).Start(context.Background())
	require.ErrorIs(t, err, ErrSocketInUse)
}

func TestHealthServerReplacesStaleSocket(t *testing.T) {
	path := socketPath(t)
	l, err := net.Listen("unix", path)
	require.NoError(t, err)
	l.(*net.UnixListener).SetUnlinkOnClose(false)
	require.NoError(t, l.Close())

	_, err = os.Stat(path)
	require.NoError(t, err)

	_, cancel, done := startHealth(t, path)
	cancel()
	require.NoError(t, <-done)
}

func TestProbeWithoutServer(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := Probe(ctx, socketPath(t))
	require.Error(t, err)
}

func TestServeAcceptsHTTP1AndCleartextHTTP2(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Serve(ctx, zap.NewNop(), l, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, r.Proto)
		}))
	}()

	url := "http://" + l.Addr().String() + "/"
	get := func(c *http.Client) string {
		resp, err := c.Get(url)
		require.NoError(t, err)
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return string(body)
	}

	assert.Equal(t, "HTTP/1.1", get(&http.Client{}))

	h2 := &http.Client{Transport: &http2.Transport{
		AllowHTTP: true,
		DialTLSContext: func(ctx context.Context, network, addr string, _ *tls.Config) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(ctx, network, addr)
		},
	}}
	assert.Equal(t, "HTTP/2.0", get(h2))

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("http server did not stop")
	}
}
