package textutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoObject reports that no JSON object could be located in a payload.
var ErrNoObject = errors.New("no JSON object found")

// ExtractObject returns the substring spanning the first '{' through the last
// '}' of raw. Model responses frequently wrap the object in prose or code
// fences, so the span is located after stripping a leading fence.
func ExtractObject(raw string) (string, error) {
	trimmed := strings.TrimSpace(stripCodeFence(raw))
	if trimmed == "" {
		return "", ErrNoObject
	}
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start < 0 || end <= start {
		return "", ErrNoObject
	}
	return trimmed[start : end+1], nil
}

// DecodeObject extracts the embedded JSON object from raw and unmarshals it
// into target.
func DecodeObject(raw string, target any) error {
	payload, err := ExtractObject(raw)
	if err != nil {
		return fmt.Errorf("%w (payload snippet: %s)", err, Snippet(raw, 160))
	}
	if err := json.Unmarshal([]byte(payload), target); err != nil {
		return fmt.Errorf("decode object: %w (payload snippet: %s)", err, Snippet(payload, 160))
	}
	return nil
}

func stripCodeFence(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	body := strings.TrimLeft(trimmed[3:], " \t\r\n")
	if len(body) >= 4 && strings.EqualFold(body[:4], "json") {
		body = strings.TrimLeft(body[4:], " \t\r\n")
	}
	if idx := strings.LastIndex(body, "```"); idx >= 0 {
		body = body[:idx]
	}
	return strings.TrimSpace(body)
}

// Snippet flattens whitespace and truncates s to at most limit runes for use
// in log and error messages.
func Snippet(s string, limit int) string {
	clean := strings.Join(strings.Fields(s), " ")
	if clean == "" {
		return "<empty>"
	}
	if limit <= 0 {
		limit = 160
	}
	runes := []rune(clean)
	if len(runes) > limit {
		return string(runes[:limit]) + "..."
	}
	return clean
}
