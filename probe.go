// Package oversightprobe is the host-facing entry point of the library: it
// wires the local configuration store, the wire link, the AgentCore
// dispatcher, the check scheduler, and the connection supervisor together
// behind a small Probe type.
package oversightprobe

import (
	"context"
	"net"
	"os"
	"sync"

	"github.com/marmos91/oversightprobe/internal/agentcore"
	"github.com/marmos91/oversightprobe/internal/localconfig"
	"github.com/marmos91/oversightprobe/internal/logger"
	"github.com/marmos91/oversightprobe/internal/model"
	"github.com/marmos91/oversightprobe/internal/scheduler"
	"github.com/marmos91/oversightprobe/internal/supervisor"
	"github.com/marmos91/oversightprobe/internal/wire"
)

const defaultConfigPath = "/data/config/oversight.conf"

// Probe is the process this library builds: it runs a fixed catalog of
// checks against assets assigned by the coordinator.
type Probe struct {
	name, version string

	config     *localconfig.Store
	scheduler  *scheduler.Scheduler
	supervisor *supervisor.Supervisor
	transport  *transport

	ctx    context.Context
	cancel context.CancelFunc
}

// New builds a Probe from a name, version, and the fixed catalog of named
// check routines the host program supplies. If the local config file is
// absent or unparseable at startup, this logs and exits the process with
// status 0 — the original library's startup contract, preserved here even
// though it sits outside normal Go error-return style.
func New(name, version string, catalog scheduler.Catalog) *Probe {
	configPath := envOr("OVERSIGHT_CONF", defaultConfigPath)
	store := localconfig.NewStore(configPath, name)
	if err := store.LoadInitial(); err != nil {
		logger.Error("startup configuration failure, exiting", "path", configPath, logger.Err(err))
		os.Exit(0)
	}

	ctx, cancel := context.WithCancel(context.Background())

	p := &Probe{
		name:      name,
		version:   version,
		config:    store,
		transport: &transport{},
		ctx:       ctx,
		cancel:    cancel,
	}

	p.scheduler = scheduler.New(ctx, catalog, store, p.transport)

	build := func(conn net.Conn) *wire.Link {
		link := wire.NewLink(conn)
		dispatcher := agentcore.NewDispatcher(link, p.scheduler)
		p.transport.set(dispatcher)
		return link
	}
	announce := func(ctx context.Context, link *wire.Link) error {
		return p.transport.current().Announce(ctx, p.name, p.version)
	}
	p.supervisor = supervisor.New(build, announce)

	return p
}

// Start runs the connection supervisor until Close is called. Call it from
// its own goroutine, or last in the host program's main.
func (p *Probe) Start() {
	p.supervisor.Run(p.ctx)
}

// Close tears down every scheduled check task and stops the supervisor,
// blocking until all task goroutines have returned.
func (p *Probe) Close() {
	p.cancel()
	_ = p.scheduler.Wait()
}

// IsConnected reports whether the link to the coordinator is currently up.
func (p *Probe) IsConnected() bool {
	return p.supervisor.IsConnected()
}

func envOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

// transport indirects the scheduler's result sink through the dispatcher
// of the most recently dialed link (set when the link is built, before its
// announce handshake). Before any link has been dialed, DumpResult drops
// the result silently. Once that link has dropped, DumpResult returns the
// write error and the scheduler logs it and drops the result — the
// coordinator rediscovers the probe and its assignments on reconnect.
type transport struct {
	mu         sync.RWMutex
	dispatcher *agentcore.Dispatcher
}

func (t *transport) set(d *agentcore.Dispatcher) {
	t.mu.Lock()
	t.dispatcher = d
	t.mu.Unlock()
}

func (t *transport) current() *agentcore.Dispatcher {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.dispatcher
}

func (t *transport) DumpResult(path model.Path, result map[string]any, descriptor *agentcore.ErrorDescriptor, tsNext int64) error {
	d := t.current()
	if d == nil {
		return nil
	}
	return d.DumpResult(path, result, descriptor, tsNext)
}
