package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReassemblerPartialFrame(t *testing.T) {
	encoded := Marshal(Frame{Type: 0x02, PID: 0, PartID: 9, Body: []byte("asset-snapshot-body")})

	var r Reassembler
	frames := r.Feed(encoded[:len(encoded)-1])
	assert.Empty(t, frames, "no dispatch until the final byte arrives")

	frames = r.Feed(encoded[len(encoded)-1:])
	require.Len(t, frames, 1)
	assert.Equal(t, uint8(0x02), frames[0].Type)
	assert.Equal(t, []byte("asset-snapshot-body"), frames[0].Body)
}

func TestReassemblerMultipleFramesInOneRead(t *testing.T) {
	a := Marshal(Frame{Type: 0x00, PartID: 1, Body: []byte("a")})
	b := Marshal(Frame{Type: 0x00, PartID: 2, Body: []byte("b")})

	var r Reassembler
	frames := r.Feed(append(append([]byte{}, a...), b...))
	require.Len(t, frames, 2)
	assert.Equal(t, uint32(1), frames[0].PartID)
	assert.Equal(t, uint32(2), frames[1].PartID)
}

func TestReassemblerByteAtATime(t *testing.T) {
	encoded := Marshal(Frame{Type: 0x01, PID: 5, Body: []byte("announce")})

	var r Reassembler
	var got []Frame
	for i := range encoded {
		got = append(got, r.Feed(encoded[i:i+1])...)
	}
	require.Len(t, got, 1)
	assert.Equal(t, []byte("announce"), got[0].Body)
}

func TestReassemblerCorruptHeaderDiscardsBuffer(t *testing.T) {
	var r Reassembler
	// total (first 4 bytes, little-endian) smaller than HeaderSize: corrupt.
	garbage := []byte{0x01, 0x00, 0x00, 0x00, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}
	frames := r.Feed(garbage)
	assert.Empty(t, frames)

	// Buffer was discarded, so a well-formed frame fed next decodes cleanly.
	good := Marshal(Frame{Type: 0x00, Body: []byte("ok")})
	frames = r.Feed(good)
	require.Len(t, frames, 1)
	assert.Equal(t, []byte("ok"), frames[0].Body)
}

func TestReassemblerReset(t *testing.T) {
	encoded := Marshal(Frame{Type: 0x00, Body: []byte("partial")})
	var r Reassembler
	r.Feed(encoded[:len(encoded)-2])
	r.Reset()
	assert.Empty(t, r.buf)
}
