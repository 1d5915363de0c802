// Package checkerr models the small closed set of outcomes a check function
// may signal beyond a plain successful result: ignore this tick, retire the
// check permanently, report a partial result alongside an error, or report
// a plain error. The scheduler's classification switch is built entirely
// on errors.Is/errors.As against the types here.
package checkerr

import (
	"errors"

	"github.com/marmos91/oversightprobe/internal/model"
)

// ErrIgnoreResult signals that nothing should be reported for this tick; the
// check remains scheduled and tries again next interval.
var ErrIgnoreResult = errors.New("ignore result")

// ErrIgnoreCheck signals that the check should stop running entirely. It
// will only run again if a later assignment snapshot changes its config.
var ErrIgnoreCheck = errors.New("ignore check")

// CheckError is the uniform shape every other check failure is converted
// into before being dumped to the coordinator: a message and a severity.
type CheckError struct {
	Message  string
	Severity model.Severity
}

func (e *CheckError) Error() string { return e.Message }

// NewCheckError builds a CheckError, defaulting to model.DefaultSeverity
// when none is given.
func NewCheckError(message string, severity ...model.Severity) *CheckError {
	return &CheckError{Message: message, Severity: pickSeverity(severity)}
}

// IncompleteResult carries a partial result map alongside the error that
// prevented the check from completing in full. Both the partial data and
// the error descriptor are dumped to the coordinator.
type IncompleteResult struct {
	Partial map[string]any
	*CheckError
}

// NewIncompleteResult builds an IncompleteResult, defaulting severity the
// same way NewCheckError does.
func NewIncompleteResult(partial map[string]any, message string, severity ...model.Severity) *IncompleteResult {
	return &IncompleteResult{
		Partial:    partial,
		CheckError: NewCheckError(message, severity...),
	}
}

func pickSeverity(severity []model.Severity) model.Severity {
	if len(severity) > 0 {
		return severity[0]
	}
	return model.DefaultSeverity
}
