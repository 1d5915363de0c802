package scheduler

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/marmos91/oversightprobe/internal/agentcore"
	"github.com/marmos91/oversightprobe/internal/checkerr"
	"github.com/marmos91/oversightprobe/internal/logger"
	"github.com/marmos91/oversightprobe/internal/model"
)

// invalidIntervalRetry is the cadence a task falls back to while its
// assignment's _interval is missing or non-positive. It keeps re-reading
// config at this pace, reporting the problem each time, instead of dying:
// nothing marks a bad interval as a permanent retirement signal the way
// ignore_check does, so a later corrected snapshot must be able to bring
// the task back without a respawn.
const invalidIntervalRetry = 60 * time.Second

// runTask drives one (asset, check) task for its entire lifetime: a
// jittered first tick, then a cadence-grid-preserving loop that refreshes
// config, invokes the check under a deadline, classifies the outcome, and
// ships a dump.
func (s *Scheduler) runTask(ctx context.Context, path model.Path, tracked *trackedTask) {
	assignment, ok := s.currentAssignment(path)
	if !ok {
		return
	}
	checkFn := s.catalog[assignment.Names.CheckName]
	ctx = logger.WithContext(ctx, logger.NewLogContext(path.ZoneID, path.AssetID, path.CollectorID, assignment.Names.AssetName, assignment.Names.CheckName))

	var tsNext int64
	interval, err := model.Interval(assignment.Config)
	if err != nil {
		if !s.reportInvalidInterval(ctx, path, err) {
			return
		}
		tsNext = time.Now().Unix() + int64(invalidIntervalRetry/time.Second)
	} else {
		tsNext = time.Now().Unix() + int64(rand.Float64()*float64(interval)) + 1
	}

	for {
		if err := sleepUntil(ctx, tsNext); err != nil {
			return // cancelled during sleep: clean exit at the next suspension point.
		}

		assignment, ok = s.currentAssignment(path)
		if !ok {
			return
		}
		checkFn = s.catalog[assignment.Names.CheckName]

		interval, err = model.Interval(assignment.Config)
		if err != nil {
			if !s.reportInvalidInterval(ctx, path, err) {
				return
			}
			tsNext += int64(invalidIntervalRetry / time.Second)
			continue
		}

		assetCfg := s.config.AssetConfig(path.AssetID)
		timeout := time.Duration(0.8 * float64(interval) * float64(time.Second))
		asset := model.AssetHandle{ID: path.AssetID, AssetName: assignment.Names.AssetName, CheckName: assignment.Names.CheckName}

		s.markRunning(path, tracked)
		result, checkErr, retired := s.invoke(ctx, timeout, checkFn, path, tracked, asset, assetCfg, assignment.Config)
		if retired {
			return
		}
		s.markScheduled(path, tracked)

		switch {
		case errors.Is(checkErr, checkerr.ErrIgnoreResult):
			logger.DebugCtx(ctx, "check ignored this tick's result")
		case errors.Is(checkErr, checkerr.ErrIgnoreCheck):
			logger.InfoCtx(ctx, "check self-retired")
			s.markCancelled(path, tracked)
			return
		default:
			s.dump(ctx, path, result, checkErr, tsNext)
		}

		tsNext += interval
	}
}

// reportInvalidInterval logs and dumps a check error for an assignment
// whose _interval is missing or non-positive, the same path a failing
// check invocation takes, and reports whether the task's governing
// context is still alive. A false return means the caller must exit
// immediately without rescheduling; a true return means the caller
// should keep the task alive and retry at invalidIntervalRetry, so a
// later snapshot correcting the interval can resume normal ticking
// without a respawn.
func (s *Scheduler) reportInvalidInterval(ctx context.Context, path model.Path, err error) bool {
	logger.ErrorCtx(ctx, "check assignment has invalid interval, reporting and retrying", logger.Err(err))
	s.dump(ctx, path, nil, checkerr.NewCheckError(err.Error()), time.Now().Unix())
	return ctx.Err() == nil
}

// invoke runs one tick under timeout and classifies its outcome. retired
// is true only when the task discovers mid-flight that the scheduler took
// its path away; the caller must exit immediately without dumping.
func (s *Scheduler) invoke(
	ctx context.Context,
	timeout time.Duration,
	fn CheckFunc,
	path model.Path,
	tracked *trackedTask,
	asset model.AssetHandle,
	assetCfg map[string]string,
	checkCfg map[string]any,
) (result map[string]any, checkErr error, retired bool) {
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	lc := logger.NewLogContext(path.ZoneID, path.AssetID, path.CollectorID, asset.AssetName, asset.CheckName)
	runCtx = logger.WithContext(runCtx, lc)

	type outcome struct {
		value any
		err   error
	}
	done := make(chan outcome, 1)
	go func() {
		value, err := fn(runCtx, asset, assetCfg, checkCfg)
		done <- outcome{value, err}
	}()

	select {
	case o := <-done:
		result, checkErr = classify(o.value, o.err)
		return result, checkErr, false
	case <-runCtx.Done():
		if ctx.Err() != nil {
			// The task's governing context ended, not just this tick's
			// deadline.
			if s.isRetired(path, tracked) {
				return nil, nil, true
			}
			return nil, checkerr.NewCheckError("cancelled"), false
		}
		return nil, checkerr.NewCheckError("timed out"), false
	}
}

func classify(value any, err error) (map[string]any, error) {
	if err != nil {
		if errors.Is(err, checkerr.ErrIgnoreResult) || errors.Is(err, checkerr.ErrIgnoreCheck) {
			return nil, err
		}
		var incomplete *checkerr.IncompleteResult
		if errors.As(err, &incomplete) {
			return incomplete.Partial, incomplete
		}
		var asCheckError *checkerr.CheckError
		if errors.As(err, &asCheckError) {
			return nil, asCheckError
		}
		return nil, checkerr.NewCheckError(err.Error())
	}

	result, ok := value.(map[string]any)
	if !ok {
		return nil, checkerr.NewCheckError(fmt.Sprintf("expecting map result, got %T", value))
	}
	return result, nil
}

func (s *Scheduler) dump(ctx context.Context, path model.Path, result map[string]any, checkErr error, tsNext int64) {
	var descriptor *agentcore.ErrorDescriptor
	if checkErr != nil {
		descriptor = toDescriptor(checkErr)
	}
	if err := s.sink.DumpResult(path, result, descriptor, tsNext); err != nil {
		logger.WarnCtx(ctx, "dump failed, transport likely down; dropping result", logger.Err(err))
	}
}

func toDescriptor(err error) *agentcore.ErrorDescriptor {
	var asCheckError *checkerr.CheckError
	if errors.As(err, &asCheckError) {
		return &agentcore.ErrorDescriptor{Message: asCheckError.Message, Severity: asCheckError.Severity}
	}
	return &agentcore.ErrorDescriptor{Message: err.Error(), Severity: model.DefaultSeverity}
}

func sleepUntil(ctx context.Context, tsNext int64) error {
	d := time.Until(time.Unix(tsNext, 0))
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
