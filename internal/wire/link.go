package wire

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/marmos91/oversightprobe/internal/logger"
)

// Handler processes one inbound non-response frame. A returned error is
// logged and does not tear down the link.
type Handler func(ctx context.Context, f Frame) error

// Link owns one TCP connection: it reassembles inbound frames, dispatches
// them by type, and tracks in-flight request/response correlations. All
// writes go through a single mutex; there is otherwise no locking because
// nothing else touches the connection directly.
type Link struct {
	conn     net.Conn
	pending  *PendingTable
	handlers map[uint8]Handler

	writeMu sync.Mutex
}

// NewLink wraps an established connection. Register handlers with Handle
// before calling ReadLoop.
func NewLink(conn net.Conn) *Link {
	return &Link{
		conn:     conn,
		pending:  NewPendingTable(),
		handlers: make(map[uint8]Handler),
	}
}

// Handle registers the handler invoked for inbound frames of the given
// type. Frames with the response bit set never reach a registered handler
// — they resolve a pending request instead.
func (l *Link) Handle(frameType uint8, h Handler) {
	l.handlers[frameType] = h
}

// Send writes a fire-and-forget frame: no pid correlation, no response
// expected.
func (l *Link) Send(frameType uint8, partID uint32, body []byte) error {
	return l.write(Frame{Type: frameType, PartID: partID, Body: body})
}

// Request writes a frame expecting a correlated response within timeout
// and blocks until the response arrives, the timeout fires, or ctx is
// done, whichever comes first.
func (l *Link) Request(ctx context.Context, frameType uint8, partID uint32, body []byte, timeout time.Duration) ([]byte, error) {
	pid, wait := l.pending.Register(timeout)
	if err := l.write(Frame{Type: frameType, PID: pid, PartID: partID, Body: body}); err != nil {
		return nil, err
	}
	return wait(ctx)
}

// Reply writes a frame carrying an explicit pid, used to answer an inbound
// request (e.g. a heartbeat) by echoing its pid without registering a
// pending entry of our own.
func (l *Link) Reply(frameType uint8, pid uint16, partID uint32, body []byte) error {
	return l.write(Frame{Type: frameType, PID: pid, PartID: partID, Body: body})
}

func (l *Link) write(f Frame) error {
	l.writeMu.Lock()
	defer l.writeMu.Unlock()
	_, err := l.conn.Write(Marshal(f))
	return err
}

// ReadLoop reads from the connection until it closes or ctx is cancelled,
// reassembling and dispatching frames in arrival order. It always drains
// every still-pending request with ErrConnectionLost before returning.
func (l *Link) ReadLoop(ctx context.Context) error {
	defer l.pending.DrainLost()

	var reassembler Reassembler
	buf := make([]byte, 64*1024)
	for {
		if ctx.Err() != nil {
			return nil
		}

		n, err := l.conn.Read(buf)
		if n > 0 {
			for _, f := range reassembler.Feed(buf[:n]) {
				l.dispatch(ctx, f)
			}
		}
		if err != nil {
			reassembler.Reset()
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}

func (l *Link) dispatch(ctx context.Context, f Frame) {
	if f.IsResponse() {
		if l.pending.Resolve(f.PID, f.Body) {
			return
		}
		logger.WarnCtx(ctx, "response for unknown or expired pid", logger.PID(f.PID), logger.FrameType(f.Type))
		return
	}

	h, ok := l.handlers[f.Type]
	if !ok {
		logger.WarnCtx(ctx, "unknown frame type", logger.FrameType(f.Type))
		return
	}
	if err := h(ctx, f); err != nil {
		logger.ErrorCtx(ctx, "frame handler failed", logger.FrameType(f.Type), logger.Err(err))
	}
}

// Close closes the underlying connection, unblocking any in-progress Read
// inside ReadLoop.
func (l *Link) Close() error {
	return l.conn.Close()
}
