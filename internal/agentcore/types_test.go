package agentcore

import (
	"testing"

	"github.com/marmos91/oversightprobe/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeAssignmentsBareCheckName(t *testing.T) {
	raw := []any{
		[]any{
			[]any{int64(1), int64(2), int64(3)},
			"ping",
			map[string]any{"_interval": int64(10)},
		},
	}

	got, err := decodeAssignments(raw)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, model.Path{ZoneID: 1, AssetID: 2, CollectorID: 3}, got[0].Path)
	assert.Equal(t, model.Names{CheckName: "ping"}, got[0].Names)
}

func TestDecodeAssignmentsRichNamesPair(t *testing.T) {
	raw := []any{
		[]any{
			[]any{int64(1), int64(2), int64(3)},
			[]any{"db01", "ping"},
			map[string]any{"_interval": int64(10)},
		},
	}

	got, err := decodeAssignments(raw)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, model.Names{AssetName: "db01", CheckName: "ping"}, got[0].Names)
}

func TestDecodeAssignmentsEmptySnapshot(t *testing.T) {
	got, err := decodeAssignments(nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDecodeAssignmentsMalformedEntry(t *testing.T) {
	_, err := decodeAssignments([]any{"not a triple"})
	assert.Error(t, err)
}

func TestDecodeAssignmentsMalformedPath(t *testing.T) {
	raw := []any{
		[]any{
			[]any{int64(1), "not-an-int", int64(3)},
			"ping",
			map[string]any{},
		},
	}
	_, err := decodeAssignments(raw)
	assert.Error(t, err)
}

func TestDecodeAssignmentsMalformedConfig(t *testing.T) {
	raw := []any{
		[]any{
			[]any{int64(1), int64(2), int64(3)},
			"ping",
			"not-a-map",
		},
	}
	_, err := decodeAssignments(raw)
	assert.Error(t, err)
}
