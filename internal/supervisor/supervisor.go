// Package supervisor drives the top-level reconnection loop to the
// coordinator: exponential backoff between attempts, a deadline-bounded
// dial and announce handshake, and idempotent state transitions between
// disconnected, connecting, and connected.
package supervisor

import (
	"context"
	"net"
	"os"
	"sync"
	"time"

	"github.com/marmos91/oversightprobe/internal/logger"
	"github.com/marmos91/oversightprobe/internal/wire"
)

const (
	defaultHost = "127.0.0.1"
	defaultPort = "8750"

	initialStep = 2 * time.Second
	maxStep     = 128 * time.Second
	dialTimeout = 10 * time.Second
)

type connState int

const (
	stateDisconnected connState = iota
	stateConnecting
	stateConnected
)

// Build wires a freshly dialed connection into a *wire.Link, registering
// whatever inbound handlers the host program needs (the AgentCore
// dispatcher, typically). It must not block.
type Build func(conn net.Conn) *wire.Link

// Announce performs the post-connect handshake (REQ_ANNOUNCE) over link,
// within the deadline already applied to ctx.
type Announce func(ctx context.Context, link *wire.Link) error

// Supervisor is the reconnect loop: if neither connected nor currently
// connecting, it launches a connection attempt and doubles its wait step;
// otherwise the step resets to its initial value.
type Supervisor struct {
	host, port string
	build      Build
	announce   Announce

	mu    sync.RWMutex
	state connState
	link  *wire.Link
}

// New builds a Supervisor reading AGENTCORE_HOST/AGENTCORE_PORT from the
// environment (defaults 127.0.0.1:8750).
func New(build Build, announce Announce) *Supervisor {
	return &Supervisor{
		host:     envOr("AGENTCORE_HOST", defaultHost),
		port:     envOr("AGENTCORE_PORT", defaultPort),
		build:    build,
		announce: announce,
	}
}

func envOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

// IsConnected reports whether a link is currently established.
func (s *Supervisor) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state == stateConnected
}

// Link returns the current link, or nil when not connected.
func (s *Supervisor) Link() *wire.Link {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.link
}

// Run drives the reconnect loop until ctx is cancelled. Each iteration:
// if neither connected nor connecting, launch an attempt and double the
// step (capped at maxStep); otherwise reset the step to initialStep. Then
// sleep for the step and repeat.
func (s *Supervisor) Run(ctx context.Context) {
	step := initialStep
	for {
		if ctx.Err() != nil {
			return
		}

		if s.isDisconnected() {
			go s.attempt(ctx)
			step = minDuration(step*2, maxStep)
		} else {
			step = initialStep
		}

		timer := time.NewTimer(step)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return
		}
	}
}

func (s *Supervisor) isDisconnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state == stateDisconnected
}

func (s *Supervisor) attempt(ctx context.Context) {
	s.mu.Lock()
	if s.state != stateDisconnected {
		s.mu.Unlock()
		return
	}
	s.state = stateConnecting
	s.mu.Unlock()

	addr := net.JoinHostPort(s.host, s.port)
	dialer := net.Dialer{Timeout: dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		logger.WarnCtx(ctx, "connection attempt failed", "addr", addr, logger.Err(err))
		s.setState(stateDisconnected)
		return
	}

	link := s.build(conn)
	readDone := make(chan error, 1)
	go func() { readDone <- link.ReadLoop(ctx) }()

	announceCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	announceErr := s.announce(announceCtx, link)
	cancel()

	if announceErr != nil {
		logger.WarnCtx(ctx, "announce failed", "addr", addr, logger.Err(announceErr))
		link.Close()
		<-readDone
		s.setState(stateDisconnected)
		return
	}

	s.mu.Lock()
	s.link = link
	s.state = stateConnected
	s.mu.Unlock()
	logger.InfoCtx(ctx, "connected to coordinator", "addr", addr)

	<-readDone

	s.mu.Lock()
	s.link = nil
	s.state = stateDisconnected
	s.mu.Unlock()
	logger.WarnCtx(ctx, "link dropped", "addr", addr)
}

func (s *Supervisor) setState(state connState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}
