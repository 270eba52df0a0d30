// Package llm — message content coercion.
// Backends disagree on the shape of message content: a plain string, an
// array of content parts, or an embedded object. The gateway normalizes all
// of them to a single string at this boundary so callers never re-implement
// the coercion ad hoc.
package llm

import (
	"encoding/json"
	"strings"
)

// CoerceContent flattens a decoded message content value into one string.
// Supported shapes:
//   - string                          → as-is
//   - []any of parts                  → concatenated part texts
//   - map[string]any with text field  → that field
//
// Anything else is re-encoded as JSON so the caller still gets a string.
func CoerceContent(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case []any:
		var b strings.Builder
		for _, part := range c {
			b.WriteString(CoerceContent(part))
		}
		return b.String()
	case map[string]any:
		for _, field := range []string{"text", "content"} {
			if s, ok := c[field].(string); ok {
				return s
			}
		}
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(raw)
}

// StripFences removes a Markdown code-fence wrapper from s, if present.
// Models asked for structured output frequently wrap the JSON payload in
// ```json ... ``` despite instructions not to.
func StripFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	// drop an optional language tag on the opening fence
	if idx := strings.IndexByte(trimmed, '\n'); idx >= 0 {
		first := strings.TrimSpace(trimmed[:idx])
		if first == "" || isFenceTag(first) {
			trimmed = trimmed[idx+1:]
		}
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

// isFenceTag reports whether s looks like a fence language tag ("json", "js").
func isFenceTag(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return len(s) <= 10
}
