package model

import "encoding/json"

// marshalWithExtra marshals base and merges extra keys into the top level
// of the resulting object. Known fields win over extra keys of the same name.
func marshalWithExtra(base any, extra map[string]any) ([]byte, error) {
	data, err := json.Marshal(base)
	if err != nil {
		return nil, err
	}
	if len(extra) == 0 {
		return data, nil
	}

	var merged map[string]any
	if err := json.Unmarshal(data, &merged); err != nil {
		return nil, err
	}
	for k, v := range extra {
		if _, known := merged[k]; known {
			continue
		}
		merged[k] = v
	}
	return json.Marshal(merged)
}

// extractExtra returns the top-level keys of data that aren't in known.
// Returns nil when there are none.
func extractExtra(data []byte, known map[string]bool) (map[string]any, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	extra := make(map[string]any)
	for k, v := range raw {
		if known[k] {
			continue
		}
		var val any
		if err := json.Unmarshal(v, &val); err != nil {
			return nil, err
		}
		extra[k] = val
	}

	if len(extra) == 0 {
		return nil, nil
	}
	return extra, nil
}
