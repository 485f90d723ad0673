package lms

import (
	"bytes"
	"encoding/json"
)

// ExtractList unwraps a list reply. A bare array and an object carrying a
// "results" array are both accepted; any other shape, including malformed
// JSON, yields an empty slice.
func ExtractList[T any](raw []byte) []T {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return []T{}
	}
	switch raw[0] {
	case '[':
		var out []T
		if err := json.Unmarshal(raw, &out); err != nil || out == nil {
			return []T{}
		}
		return out
	case '{':
		var env struct {
			Results json.RawMessage `json:"results"`
		}
		if err := json.Unmarshal(raw, &env); err != nil {
			return []T{}
		}
		results := bytes.TrimSpace(env.Results)
		if len(results) == 0 || results[0] != '[' {
			return []T{}
		}
		var out []T
		if err := json.Unmarshal(results, &out); err != nil || out == nil {
			return []T{}
		}
		return out
	default:
		return []T{}
	}
}
