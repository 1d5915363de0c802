package agentcore

import (
	"fmt"

	"github.com/marmos91/oversightprobe/internal/model"
)

// ErrorDescriptor is the wire-level shape of a check failure: a message
// and a severity tag, dumped alongside (or instead of) a result map.
type ErrorDescriptor struct {
	Message  string
	Severity model.Severity
}

// decodeAssignments converts the raw decoded RES_ANNOUNCE/FAF_ASSETS body
// — a list of [path, names, config] triples — into model.Assignment
// values. It accepts both observed `names` shapes: a bare check_name
// string, or the richer (asset_name, check_name) pair.
func decodeAssignments(raw []any) ([]model.Assignment, error) {
	out := make([]model.Assignment, 0, len(raw))
	for i, item := range raw {
		entry, ok := item.([]any)
		if !ok || len(entry) < 3 {
			return nil, fmt.Errorf("assignment %d: expected a [path, names, config] entry, got %T", i, item)
		}

		path, err := decodePath(entry[0])
		if err != nil {
			return nil, fmt.Errorf("assignment %d: %w", i, err)
		}
		names, err := decodeNames(entry[1])
		if err != nil {
			return nil, fmt.Errorf("assignment %d: %w", i, err)
		}
		config, ok := entry[2].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("assignment %d: expected a config map, got %T", i, entry[2])
		}

		out = append(out, model.Assignment{Path: path, Names: names, Config: config})
	}
	return out, nil
}

func decodePath(raw any) (model.Path, error) {
	triple, ok := raw.([]any)
	if !ok || len(triple) != 3 {
		return model.Path{}, fmt.Errorf("expected a 3-element path triple, got %T", raw)
	}
	zoneID, err1 := toInt64(triple[0])
	assetID, err2 := toInt64(triple[1])
	collectorID, err3 := toInt64(triple[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return model.Path{}, fmt.Errorf("path triple contains a non-integer element")
	}
	return model.Path{ZoneID: zoneID, AssetID: assetID, CollectorID: collectorID}, nil
}

func decodeNames(raw any) (model.Names, error) {
	switch v := raw.(type) {
	case string:
		return model.Names{CheckName: v}, nil
	case []any:
		if len(v) != 2 {
			return model.Names{}, fmt.Errorf("expected a (asset_name, check_name) pair, got %d elements", len(v))
		}
		assetName, ok1 := v[0].(string)
		checkName, ok2 := v[1].(string)
		if !ok1 || !ok2 {
			return model.Names{}, fmt.Errorf("expected string asset/check names")
		}
		return model.Names{AssetName: assetName, CheckName: checkName}, nil
	default:
		return model.Names{}, fmt.Errorf("expected a check name or (asset_name, check_name) pair, got %T", raw)
	}
}

func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case uint64:
		return int64(n), nil
	case int8:
		return int64(n), nil
	case int16:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case float64:
		return int64(n), nil
	default:
		return 0, fmt.Errorf("not an integer: %T", v)
	}
}
