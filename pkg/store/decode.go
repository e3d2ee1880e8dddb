package store

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// decodeList decodes a collection response. The API returns either a bare
// array or a paginated {"results": [...]} envelope; plugin endpoints may also
// wrap records as {"data": {"<key>": [...]}}. Any other shape is an empty list.
func decodeList[T any](body []byte, dataKey string) ([]T, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return []T{}, nil
	}

	if body[0] == '[' {
		var items []T
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, fmt.Errorf("failed to decode list: %w", err)
		}
		return items, nil
	}

	var envelope struct {
		Results []T                        `json:"results"`
		Data    map[string]json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode list envelope: %w", err)
	}

	if envelope.Results != nil {
		return envelope.Results, nil
	}

	if dataKey != "" {
		if raw, ok := envelope.Data[dataKey]; ok {
			var items []T
			if err := json.Unmarshal(raw, &items); err != nil {
				return nil, fmt.Errorf("failed to decode %s: %w", dataKey, err)
			}
			return items, nil
		}
	}

	return []T{}, nil
}
