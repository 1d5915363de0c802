// Package wire implements the length-prefixed binary frame protocol used
// on the link to the coordinator: frame encode/decode, inbound reassembly
// across partial reads, and request/response correlation by a rolling pid.
package wire

import "encoding/binary"

// HeaderSize is the fixed on-wire header length: total(u32) + pid(u16) +
// type(u8) + partid(u32).
const HeaderSize = 4 + 2 + 1 + 4

// ResponseBit marks a frame type as a response to a prior request.
const ResponseBit uint8 = 0x80

// Frame is one decoded protocol frame. Total is not stored — it is always
// HeaderSize + len(Body) and recomputed on encode.
type Frame struct {
	Type   uint8
	PID    uint16
	PartID uint32
	Body   []byte
}

// IsResponse reports whether the frame's type has the response bit set.
func (f Frame) IsResponse() bool {
	return f.Type&ResponseBit != 0
}

// Marshal renders a frame to its on-wire byte representation.
func Marshal(f Frame) []byte {
	total := uint32(HeaderSize + len(f.Body))
	out := make([]byte, total)
	encodeHeader(out, total, f.PID, f.Type, f.PartID)
	copy(out[HeaderSize:], f.Body)
	return out
}

func encodeHeader(buf []byte, total uint32, pid uint16, typ uint8, partID uint32) {
	binary.LittleEndian.PutUint32(buf[0:4], total)
	binary.LittleEndian.PutUint16(buf[4:6], pid)
	buf[6] = typ
	binary.LittleEndian.PutUint32(buf[7:11], partID)
}

// header is the parsed fixed-size prefix of a frame, before its body bytes
// are known to be fully buffered.
type header struct {
	Total  uint32
	PID    uint16
	Type   uint8
	PartID uint32
}

func decodeHeader(buf []byte) header {
	return header{
		Total:  binary.LittleEndian.Uint32(buf[0:4]),
		PID:    binary.LittleEndian.Uint16(buf[4:6]),
		Type:   buf[6],
		PartID: binary.LittleEndian.Uint32(buf[7:11]),
	}
}
