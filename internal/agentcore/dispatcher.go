// Package agentcore layers the coordinator's six message types on top of a
// wire.Link: heartbeat replies are answered inline, announce completes with
// the coordinator's initial assignment snapshot, and asset pushes are
// forwarded to the scheduler.
package agentcore

import (
	"context"
	"fmt"
	"time"

	"github.com/marmos91/oversightprobe/internal/logger"
	"github.com/marmos91/oversightprobe/internal/model"
	"github.com/marmos91/oversightprobe/internal/wire"
)

const (
	FAFDump     uint8 = 0x00
	ReqAnnounce uint8 = 0x01
	FAFAssets   uint8 = 0x02
	ReqInfo     uint8 = 0x03
	ResAnnounce uint8 = 0x81
	ResInfo     uint8 = 0x82
)

const AnnounceTimeout = 10 * time.Second

// AssignmentSink receives every assignment snapshot pushed by the
// coordinator, whether delivered via RES_ANNOUNCE or FAF_ASSETS. The
// scheduler implements this.
type AssignmentSink interface {
	Reconcile(ctx context.Context, assignments []model.Assignment)
}

// Dispatcher is the AgentCore role layered on a link.
type Dispatcher struct {
	link *wire.Link
	sink AssignmentSink
}

// NewDispatcher registers the dispatcher's handlers on link. Call before
// link.ReadLoop starts running.
func NewDispatcher(link *wire.Link, sink AssignmentSink) *Dispatcher {
	d := &Dispatcher{link: link, sink: sink}
	link.Handle(FAFAssets, d.onFAFAssets)
	link.Handle(ReqInfo, d.onReqInfo)
	return d
}

// Announce sends REQ_ANNOUNCE with the host program's name and version,
// waits for RES_ANNOUNCE, and delivers its embedded assignments to the
// sink before returning.
func (d *Dispatcher) Announce(ctx context.Context, name, version string) error {
	body, err := wire.EncodeBody([]any{name, version})
	if err != nil {
		return fmt.Errorf("agentcore: encode announce body: %w", err)
	}

	respBody, err := d.link.Request(ctx, ReqAnnounce, 0, body, AnnounceTimeout)
	if err != nil {
		return fmt.Errorf("agentcore: announce: %w", err)
	}

	var raw []any
	if err := wire.DecodeBody(respBody, &raw); err != nil {
		return fmt.Errorf("agentcore: decode announce response: %w", err)
	}
	assignments, err := decodeAssignments(raw)
	if err != nil {
		return fmt.Errorf("agentcore: decode announce assignments: %w", err)
	}

	d.sink.Reconcile(ctx, assignments)
	return nil
}

// DumpResult writes a fire-and-forget FAF_DUMP frame. errDescriptor is nil
// on pure success; result is nil on a failure that produced no partial
// data.
func (d *Dispatcher) DumpResult(path model.Path, result map[string]any, errDescriptor *ErrorDescriptor, tsNext int64) error {
	var resultValue, errValue any
	if result != nil {
		resultValue = result
	}
	if errDescriptor != nil {
		errValue = map[string]any{"message": errDescriptor.Message, "severity": string(errDescriptor.Severity)}
	}

	pathTriple := []any{path.ZoneID, path.AssetID, path.CollectorID}
	body, err := wire.EncodeBody([]any{pathTriple, []any{resultValue, errValue}, tsNext})
	if err != nil {
		return fmt.Errorf("agentcore: encode dump body: %w", err)
	}
	return d.link.Send(FAFDump, uint32(path.AssetID), body)
}

func (d *Dispatcher) onFAFAssets(ctx context.Context, f wire.Frame) error {
	var raw []any
	if err := wire.DecodeBody(f.Body, &raw); err != nil {
		return fmt.Errorf("decode assets body: %w", err)
	}
	assignments, err := decodeAssignments(raw)
	if err != nil {
		return fmt.Errorf("decode assignments: %w", err)
	}
	d.sink.Reconcile(ctx, assignments)
	return nil
}

func (d *Dispatcher) onReqInfo(ctx context.Context, f wire.Frame) error {
	now := float64(time.Now().UnixNano()) / 1e9
	body, err := wire.EncodeBody(now)
	if err != nil {
		return fmt.Errorf("encode info response: %w", err)
	}
	logger.DebugCtx(ctx, "heartbeat", logger.PID(f.PID))
	return d.link.Reply(ResInfo, f.PID, f.PartID, body)
}
