package wire

import "github.com/vmihailenco/msgpack/v4"

// EncodeBody serializes a frame body with the same self-describing binary
// encoding used on both ends of the link: nested maps, lists, scalars and
// nil all round-trip without a schema.
func EncodeBody(v any) ([]byte, error) {
	return msgpack.Marshal(v)
}

// DecodeBody parses a frame body into v, which should be a pointer to a
// slice, map, or struct matching the expected payload shape.
func DecodeBody(data []byte, v any) error {
	return msgpack.Unmarshal(data, v)
}
