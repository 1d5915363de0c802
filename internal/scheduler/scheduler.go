// Package scheduler owns the set of running per-(asset, check) tasks: it
// consumes assignment snapshots pushed by the coordinator and drives each
// task's interval loop, timeouts, outcome classification, and result
// emission.
package scheduler

import (
	"context"
	"reflect"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/marmos91/oversightprobe/internal/agentcore"
	"github.com/marmos91/oversightprobe/internal/localconfig"
	"github.com/marmos91/oversightprobe/internal/model"
)

// ResultSink is the narrow slice of agentcore.Dispatcher the scheduler
// needs: a way to ship one check's outcome to the coordinator.
type ResultSink interface {
	DumpResult(path model.Path, result map[string]any, errDescriptor *agentcore.ErrorDescriptor, tsNext int64) error
}

type taskState int

const (
	stateScheduled taskState = iota
	stateRunning
	stateCancelled
)

// trackedTask is a scheduler-owned handle for one running check task.
// generation distinguishes a task from whatever the scheduler later spawns
// for the same path, which is how a task tells external retirement from
// an internal cancellation.
type trackedTask struct {
	generation string
	cancel     context.CancelFunc
	state      taskState
}

// Scheduler diffs assignment snapshots against the tracked task set and
// owns every running check's goroutine.
type Scheduler struct {
	catalog Catalog
	config  *localconfig.Store
	sink    ResultSink

	group    *errgroup.Group
	groupCtx context.Context

	mu             sync.Mutex
	tasks          map[model.Path]*trackedTask
	previousConfig map[model.Path]model.Assignment
}

// New builds a Scheduler whose tasks all derive from ctx; cancelling ctx
// tears the whole scheduler down.
func New(ctx context.Context, catalog Catalog, config *localconfig.Store, sink ResultSink) *Scheduler {
	group, groupCtx := errgroup.WithContext(ctx)
	return &Scheduler{
		catalog:        catalog,
		config:         config,
		sink:           sink,
		group:          group,
		groupCtx:       groupCtx,
		tasks:          make(map[model.Path]*trackedTask),
		previousConfig: make(map[model.Path]model.Assignment),
	}
}

// Wait blocks until every spawned task has returned. A task returns when it
// self-retires, when a snapshot retires its path, or when the scheduler's
// governing context is cancelled.
func (s *Scheduler) Wait() error {
	return s.group.Wait()
}

// Reconcile implements agentcore.AssignmentSink. It is the atomic diff
// between one assignment snapshot and the next:
//  1. filter the snapshot to known check names,
//  2. cancel tasks whose path left the desired set,
//  3. drop (for re-spawn) any cancelled task whose config changed,
//  4. spawn every desired path not already tracked.
func (s *Scheduler) Reconcile(ctx context.Context, assignments []model.Assignment) {
	desired := make(map[model.Path]model.Assignment, len(assignments))
	for _, a := range assignments {
		if _, known := s.catalog[a.Names.CheckName]; !known {
			continue
		}
		desired[a.Path] = a
	}

	s.mu.Lock()
	for path, task := range s.tasks {
		next, stillDesired := desired[path]
		if !stillDesired {
			task.cancel()
			delete(s.tasks, path)
			continue
		}
		prev, hadPrev := s.previousConfig[path]
		changed := !hadPrev || !reflect.DeepEqual(prev, next)
		if changed && task.state == stateCancelled {
			delete(s.tasks, path)
		}
	}
	s.previousConfig = desired

	var toSpawn []model.Path
	for path := range desired {
		if _, tracked := s.tasks[path]; !tracked {
			toSpawn = append(toSpawn, path)
		}
	}
	s.mu.Unlock()

	for _, path := range toSpawn {
		s.spawn(path)
	}
}

func (s *Scheduler) spawn(path model.Path) {
	taskCtx, cancel := context.WithCancel(s.groupCtx)
	tracked := &trackedTask{generation: uuid.NewString(), cancel: cancel, state: stateScheduled}

	s.mu.Lock()
	s.tasks[path] = tracked
	s.mu.Unlock()

	s.group.Go(func() error {
		s.runTask(taskCtx, path, tracked)
		return nil
	})
}

// markCancelled flips a task's own bookkeeping to "cancelled" without
// removing it from the tracked set. Only Reconcile removes entries, so a
// self-retired task stays visible — as cancelled — until a later snapshot
// with a changed config drops and re-spawns it.
func (s *Scheduler) markCancelled(path model.Path, tracked *trackedTask) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tasks[path] == tracked {
		tracked.state = stateCancelled
	}
}

// markRunning flips a task's bookkeeping to "running" for the duration of
// one check invocation.
func (s *Scheduler) markRunning(path model.Path, tracked *trackedTask) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tasks[path] == tracked {
		tracked.state = stateRunning
	}
}

// markScheduled flips a task's bookkeeping back to "scheduled" once an
// invocation finishes and it returns to waiting on its next tick.
func (s *Scheduler) markScheduled(path model.Path, tracked *trackedTask) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tasks[path] == tracked && tracked.state == stateRunning {
		tracked.state = stateScheduled
	}
}

// isRetired reports whether path's tracked entry is no longer tracked's own
// handle — the identity check that tells external retirement from an
// internal cancellation.
func (s *Scheduler) isRetired(path model.Path, tracked *trackedTask) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.tasks[path]
	return !ok || current.generation != tracked.generation
}

func (s *Scheduler) currentAssignment(path model.Path) (model.Assignment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.previousConfig[path]
	return a, ok
}
