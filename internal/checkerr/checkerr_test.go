package checkerr

import (
	"errors"
	"testing"

	"github.com/marmos91/oversightprobe/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestErrIgnoreResultIs(t *testing.T) {
	wrapped := errors.New("check ping: " + ErrIgnoreResult.Error())
	assert.False(t, errors.Is(wrapped, ErrIgnoreResult))
	assert.True(t, errors.Is(ErrIgnoreResult, ErrIgnoreResult))
}

func TestErrIgnoreCheckIs(t *testing.T) {
	assert.True(t, errors.Is(ErrIgnoreCheck, ErrIgnoreCheck))
	assert.False(t, errors.Is(ErrIgnoreCheck, ErrIgnoreResult))
}

func TestCheckError(t *testing.T) {
	t.Run("DefaultSeverity", func(t *testing.T) {
		err := NewCheckError("dial failed")
		assert.Equal(t, "dial failed", err.Error())
		assert.Equal(t, model.DefaultSeverity, err.Severity)
	})

	t.Run("ExplicitSeverity", func(t *testing.T) {
		err := NewCheckError("dial failed", model.SeverityHigh)
		assert.Equal(t, model.SeverityHigh, err.Severity)
	})

	t.Run("AsTarget", func(t *testing.T) {
		var target *CheckError
		var err error = NewCheckError("boom")
		assert.True(t, errors.As(err, &target))
		assert.Equal(t, "boom", target.Message)
	})
}

func TestIncompleteResult(t *testing.T) {
	partial := map[string]any{"latency_ms": 120}
	err := NewIncompleteResult(partial, "timed out reading reply", model.SeverityLow)

	assert.Equal(t, partial, err.Partial)
	assert.Equal(t, "timed out reading reply", err.Error())
	assert.Equal(t, model.SeverityLow, err.Severity)

	var asCheckError *CheckError
	assert.True(t, errors.As(error(err), &asCheckError))
}
