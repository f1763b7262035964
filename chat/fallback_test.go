package chat

import (
	"strings"
	"testing"
)

func TestFormatFallbackSearch(t *testing.T) {
	result := map[string]any{
		"query": "golang",
		"organic": []any{
			map[string]any{"title": "One", "link": "https://one.example", "snippet": "First hit"},
			map[string]any{"title": "Two", "link": "https://two.example", "snippet": "Second hit"},
			map[string]any{"title": "Three", "link": "https://three.example", "snippet": "Third hit"},
			map[string]any{"title": "Four", "link": "https://four.example", "snippet": "Fourth hit"},
		},
	}

	text := FormatFallback("google_search", result)
	if text == "" {
		t.Fatal("expected a rendering")
	}
	for _, want := range []string{"One", "https://one.example", "First hit", "Three"} {
		if !strings.Contains(text, want) {
			t.Errorf("missing %q in:\n%s", want, text)
		}
	}
	// Only the top three hits are shown
	if strings.Contains(text, "Four") {
		t.Errorf("fourth hit should be cut:\n%s", text)
	}
}

func TestFormatFallbackGroupContext(t *testing.T) {
	result := map[string]any{
		"messages": []any{
			map[string]any{"time": "14:02", "sender": "alice", "text": "lunch?"},
			map[string]any{"time": "14:03", "sender": "bob", "text": "sure"},
		},
	}

	text := FormatFallback("get_group_context", result)
	if !strings.Contains(text, "[14:02] alice: lunch?") {
		t.Errorf("rendering = %q", text)
	}
	if !strings.Contains(text, "[14:03] bob: sure") {
		t.Errorf("rendering = %q", text)
	}
}

func TestFormatFallbackStructResult(t *testing.T) {
	// Typed results canonicalize through JSON before formatting
	type hit struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	}
	type searchResult struct {
		Organic []hit `json:"organic"`
	}

	text := FormatFallback("google_search", searchResult{
		Organic: []hit{{Title: "Typed", Link: "https://typed.example", Snippet: "works"}},
	})
	if !strings.Contains(text, "Typed") {
		t.Errorf("rendering = %q", text)
	}
}

func TestFormatFallbackUnknownTool(t *testing.T) {
	if text := FormatFallback("get_help_text", map[string]any{"help": "hi"}); text != "" {
		t.Errorf("unknown tool rendering = %q, want empty", text)
	}
}

func TestFormatFallbackDegenerateResults(t *testing.T) {
	cases := []struct {
		name   string
		tool   string
		result any
	}{
		{"nil result", "google_search", nil},
		{"empty organic", "google_search", map[string]any{"organic": []any{}}},
		{"wrong shape", "google_search", map[string]any{"organic": "not a list"}},
		{"no messages", "get_group_context", map[string]any{}},
		{"non-map result", "google_search", "just a string"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if text := FormatFallback(tc.tool, tc.result); text != "" {
				t.Errorf("rendering = %q, want empty", text)
			}
		})
	}
}
