package supervisor

import (
	"context"
	"errors"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/marmos91/oversightprobe/internal/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listenerAddr(t *testing.T, ln net.Listener) (host, port string) {
	t.Helper()
	tcpAddr := ln.Addr().(*net.TCPAddr)
	return "127.0.0.1", strconv.Itoa(tcpAddr.Port)
}

func TestEnvOrDefaults(t *testing.T) {
	t.Setenv("AGENTCORE_HOST", "")
	t.Setenv("AGENTCORE_PORT", "")
	s := New(func(conn net.Conn) *wire.Link { return wire.NewLink(conn) }, func(ctx context.Context, link *wire.Link) error { return nil })
	assert.Equal(t, defaultHost, s.host)
	assert.Equal(t, defaultPort, s.port)
}

func TestEnvOrOverride(t *testing.T) {
	t.Setenv("AGENTCORE_HOST", "10.0.0.5")
	t.Setenv("AGENTCORE_PORT", "9999")
	s := New(func(conn net.Conn) *wire.Link { return wire.NewLink(conn) }, func(ctx context.Context, link *wire.Link) error { return nil })
	assert.Equal(t, "10.0.0.5", s.host)
	assert.Equal(t, "9999", s.port)
}

func TestAttemptSucceedsAndTracksConnectedState(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, 1024)
		_, _ = conn.Read(buf) // keep the connection open
	}()

	host, port := listenerAddr(t, ln)
	t.Setenv("AGENTCORE_HOST", host)
	t.Setenv("AGENTCORE_PORT", port)

	s := New(
		func(conn net.Conn) *wire.Link { return wire.NewLink(conn) },
		func(ctx context.Context, link *wire.Link) error { return nil },
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	require.Eventually(t, s.IsConnected, 2*time.Second, 10*time.Millisecond)
	assert.NotNil(t, s.Link())
}

func TestAttemptAnnounceFailureReturnsToDisconnected(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, 1024)
		_, _ = conn.Read(buf)
	}()

	host, port := listenerAddr(t, ln)
	t.Setenv("AGENTCORE_HOST", host)
	t.Setenv("AGENTCORE_PORT", port)

	s := New(
		func(conn net.Conn) *wire.Link { return wire.NewLink(conn) },
		func(ctx context.Context, link *wire.Link) error { return errors.New("boom") },
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.attempt(ctx)

	assert.False(t, s.IsConnected())
	assert.Nil(t, s.Link())
}

func TestAttemptDialFailureStaysDisconnected(t *testing.T) {
	// Bind then immediately close to get a port nothing is listening on.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	_, port := listenerAddr(t, ln)
	require.NoError(t, ln.Close())

	t.Setenv("AGENTCORE_HOST", "127.0.0.1")
	t.Setenv("AGENTCORE_PORT", port)

	s := New(
		func(conn net.Conn) *wire.Link { return wire.NewLink(conn) },
		func(ctx context.Context, link *wire.Link) error { return nil },
	)

	s.attempt(context.Background())
	assert.False(t, s.IsConnected())
}

func TestMinDuration(t *testing.T) {
	assert.Equal(t, 2*time.Second, minDuration(2*time.Second, 4*time.Second))
	assert.Equal(t, 4*time.Second, minDuration(8*time.Second, 4*time.Second))
}
