package model

import "fmt"

// IntervalKey is the reserved config key every check assignment must carry:
// the number of whole seconds between ticks.
const IntervalKey = "_interval"

// Interval extracts and validates the "_interval" key from a check's config
// map. msgpack decodes a number into whichever sized integer type the
// coordinator's encoding used, or into float64, so all of those are
// accepted; the result must be a positive whole number of seconds.
func Interval(config map[string]any) (int64, error) {
	raw, ok := config[IntervalKey]
	if !ok {
		return 0, fmt.Errorf("config missing required key %q", IntervalKey)
	}

	var seconds int64
	switch v := raw.(type) {
	case int64:
		seconds = v
	case int:
		seconds = int64(v)
	case int8:
		seconds = int64(v)
	case int16:
		seconds = int64(v)
	case int32:
		seconds = int64(v)
	case uint8:
		seconds = int64(v)
	case uint16:
		seconds = int64(v)
	case uint32:
		seconds = int64(v)
	case uint64:
		seconds = int64(v)
	case float64:
		seconds = int64(v)
	default:
		return 0, fmt.Errorf("config key %q has unsupported type %T", IntervalKey, raw)
	}

	if seconds <= 0 {
		return 0, fmt.Errorf("config key %q must be a positive number of seconds, got %d", IntervalKey, seconds)
	}
	return seconds, nil
}
