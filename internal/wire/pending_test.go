package wire

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPendingTableResolveBeforeTimeout(t *testing.T) {
	table := NewPendingTable()
	pid, wait := table.Register(time.Second)

	go func() {
		resolved := table.Resolve(pid, []byte("reply"))
		assert.True(t, resolved)
	}()

	body, err := wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte("reply"), body)
}

func TestPendingTableTimeout(t *testing.T) {
	table := NewPendingTable()
	_, wait := table.Register(10 * time.Millisecond)

	_, err := wait(context.Background())
	assert.ErrorIs(t, err, ErrRequestTimeout)
}

func TestPendingTableResolveAfterTimeoutIsIgnored(t *testing.T) {
	table := NewPendingTable()
	pid, wait := table.Register(5 * time.Millisecond)

	_, err := wait(context.Background())
	require.ErrorIs(t, err, ErrRequestTimeout)

	// The response arrives late; it must not resolve anything, and
	// Resolve reports that pid was no longer pending.
	assert.False(t, table.Resolve(pid, []byte("too late")))
}

func TestPendingTableDrainLost(t *testing.T) {
	table := NewPendingTable()
	_, wait1 := table.Register(time.Minute)
	_, wait2 := table.Register(time.Minute)

	table.DrainLost()

	_, err1 := wait1(context.Background())
	_, err2 := wait2(context.Background())
	assert.ErrorIs(t, err1, ErrConnectionLost)
	assert.ErrorIs(t, err2, ErrConnectionLost)
}

func TestPendingTableContextCancel(t *testing.T) {
	table := NewPendingTable()
	_, wait := table.Register(time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := wait(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestPendingTableRollingPID(t *testing.T) {
	table := NewPendingTable()
	pid1, _ := table.Register(time.Minute)
	pid2, _ := table.Register(time.Minute)
	assert.Equal(t, pid1+1, pid2)
}
