package ingestion

import (
	"encoding/json"
	"strings"
)

// cleanString strips NUL bytes from s (spec §4.4 step 5).
func cleanString(s string) string {
	if !strings.ContainsRune(s, 0) {
		return s
	}
	return strings.ReplaceAll(s, "\x00", "")
}

// cleanJSON recursively strips NUL bytes from every string leaf of a
// decoded JSON value, leaving numbers, bools, null, and structure untouched.
// Idempotent: cleanJSON(cleanJSON(v)) produces the same value as cleanJSON(v).
func cleanJSON(v interface{}) interface{} {
	switch t := v.(type) {
	case string:
		return cleanString(t)
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[cleanString(k)] = cleanJSON(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, val := range t {
			out[i] = cleanJSON(val)
		}
		return out
	default:
		return v
	}
}

// CleanEventBody re-marshals body with every string leaf scrubbed of NUL
// bytes, the "clean" step that runs between per-event validation and raw
// persistence (spec §4.4 steps 4-6).
func CleanEventBody(body json.RawMessage) (json.RawMessage, error) {
	var decoded interface{}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, err
	}

	cleaned, err := json.Marshal(cleanJSON(decoded))
	if err != nil {
		return nil, err
	}
	return json.RawMessage(cleaned), nil
}
