// Package llmjson extracts and decodes the JSON payload embedded in raw model
// output, which is routinely wrapped in prose or markdown fences.
package llmjson

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoPayload        = errors.New("no JSON object found in model output")
	ErrMalformedPayload = errors.New("model output contains malformed JSON")
)

// ExtractObject returns the outermost brace-delimited span of raw: first '{'
// to last '}'. This cannot tell a payload apart from prose containing braces,
// so prompts must demand a single JSON object.
func ExtractObject(raw string) (string, error) {
	cleaned := stripFences(raw)

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start == -1 || end == -1 || end <= start {
		return "", fmt.Errorf("%w:\n%s", ErrNoPayload, raw)
	}

	return cleaned[start : end+1], nil
}

// DecodeInto extracts the JSON object from raw and unmarshals it into v.
// Parse failures carry the extracted span and the raw output for diagnosis.
func DecodeInto(raw string, v any) error {
	payload, err := ExtractObject(raw)
	if err != nil {
		return err
	}

	if err := json.Unmarshal([]byte(payload), v); err != nil {
		return fmt.Errorf("%w: %v\nextracted:\n%s\noriginal:\n%s", ErrMalformedPayload, err, payload, raw)
	}
	return nil
}

func stripFences(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	return strings.TrimSpace(raw)
}
