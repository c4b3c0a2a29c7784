// Package output provides deterministic JSON encoding for canonical API reports.
//
// Re-running the extractor on unchanged input must produce byte-identical
// documents; that property is what makes the report diff-friendly. The encoder
// guarantees:
//
//  1. Stable key ordering: object keys are sorted alphabetically
//  2. Float formatting: rounded to max 6 decimal places
//  3. Nil values are omitted entirely
//  4. Empty containers are preserved: a report node's fixed container keys
//     (exports, members, values, parameters) are part of its shape even when empty
package output

import (
	"bytes"
	"encoding/json"
)

// Encode produces byte-identical compact JSON output.
func Encode(v interface{}) ([]byte, error) {
	normalized := normalizeValue(v)

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)

	if err := encoder.Encode(normalized); err != nil {
		return nil, err
	}

	// Drop the trailing newline added by Encode
	result := buf.Bytes()
	if len(result) > 0 && result[len(result)-1] == '\n' {
		result = result[:len(result)-1]
	}

	return result, nil
}

// EncodeIndented produces indented byte-identical JSON output.
func EncodeIndented(v interface{}, indent string) ([]byte, error) {
	normalized := normalizeValue(v)

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", indent)

	if err := encoder.Encode(normalized); err != nil {
		return nil, err
	}

	result := buf.Bytes()
	if len(result) > 0 && result[len(result)-1] == '\n' {
		result = result[:len(result)-1]
	}

	return result, nil
}

// normalizeValue recursively normalizes a value for deterministic encoding.
// Canonical documents are built from maps, slices, and scalars; anything else
// is passed through to encoding/json as-is.
func normalizeValue(v interface{}) interface{} {
	switch val := v.(type) {
	case nil:
		return nil
	case map[string]interface{}:
		return normalizeMap(val)
	case []interface{}:
		return normalizeSlice(val)
	case float64:
		return RoundFloat(val)
	case float32:
		return RoundFloat(float64(val))
	default:
		return v
	}
}

// normalizeMap normalizes all entries and drops nil values. Empty maps are
// kept: fixed container keys must survive encoding. encoding/json emits map
// keys in sorted order, which supplies the stable key ordering.
func normalizeMap(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return nil
	}

	result := make(map[string]interface{}, len(m))
	for k, v := range m {
		value := normalizeValue(v)
		if value != nil {
			result[k] = value
		}
	}
	return result
}

func normalizeSlice(s []interface{}) []interface{} {
	if s == nil {
		return nil
	}

	result := make([]interface{}, len(s))
	for i, v := range s {
		result[i] = normalizeValue(v)
	}
	return result
}
