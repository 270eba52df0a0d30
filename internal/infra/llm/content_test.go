// Unit tests for message content coercion and fence stripping.
package llm

import "testing"

func TestCoerceContent_String(t *testing.T) {
	t.Parallel()

	if got := CoerceContent("hello"); got != "hello" {
		t.Errorf("expected 'hello', got %q", got)
	}
}

func TestCoerceContent_PartsArray(t *testing.T) {
	t.Parallel()

	parts := []any{
		map[string]any{"type": "text", "text": "first "},
		map[string]any{"type": "text", "text": "second"},
	}
	if got := CoerceContent(parts); got != "first second" {
		t.Errorf("expected concatenated parts, got %q", got)
	}
}

func TestCoerceContent_EmbeddedObject(t *testing.T) {
	t.Parallel()

	obj := map[string]any{"content": "inner"}
	if got := CoerceContent(obj); got != "inner" {
		t.Errorf("expected 'inner', got %q", got)
	}
}

func TestCoerceContent_UnknownShape_ReencodesJSON(t *testing.T) {
	t.Parallel()

	obj := map[string]any{"wants_chart": true}
	got := CoerceContent(obj)
	if got != `{"wants_chart":true}` {
		t.Errorf("expected JSON re-encoding, got %q", got)
	}
}

func TestCoerceContent_Nil_ReturnsEmpty(t *testing.T) {
	t.Parallel()

	if got := CoerceContent(nil); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

func TestStripFences_JSONFence(t *testing.T) {
	t.Parallel()

	in := "```json\n{\"wants_chart\": false}\n```"
	if got := StripFences(in); got != `{"wants_chart": false}` {
		t.Errorf("expected bare JSON, got %q", got)
	}
}

func TestStripFences_BareFence(t *testing.T) {
	t.Parallel()

	in := "```\n{\"a\":1}\n```"
	if got := StripFences(in); got != `{"a":1}` {
		t.Errorf("expected bare JSON, got %q", got)
	}
}

func TestStripFences_NoFence_TrimsOnly(t *testing.T) {
	t.Parallel()

	in := "  {\"a\":1}  "
	if got := StripFences(in); got != `{"a":1}` {
		t.Errorf("expected trimmed payload, got %q", got)
	}
}
