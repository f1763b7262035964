package provider

import (
	"encoding/json"
	"testing"

	"github.com/ollama/ollama/api"

	"fogmoe/model"
)

func TestParseToolArguments(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected map[string]any
	}{
		{
			name:     "valid object",
			input:    `{"query": "weather", "count": 3}`,
			expected: map[string]any{"query": "weather", "count": float64(3)},
		},
		{
			name:     "empty object",
			input:    `{}`,
			expected: map[string]any{},
		},
		{
			name:     "malformed JSON",
			input:    `{broken`,
			expected: map[string]any{},
		},
		{
			name:     "empty string",
			input:    ``,
			expected: map[string]any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ParseToolArguments(tt.input)
			if result == nil {
				t.Fatal("expected non-nil map")
			}
			if len(result) != len(tt.expected) {
				t.Fatalf("got %d keys, want %d", len(result), len(tt.expected))
			}
			for k, v := range tt.expected {
				if result[k] != v {
					t.Errorf("key %q = %v, want %v", k, result[k], v)
				}
			}
		})
	}
}

func TestCanonicalizeArguments(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"nil", nil, "{}"},
		{"empty string", "", "{}"},
		{"JSON string passthrough", `{"a":1}`, `{"a":1}`},
		{"JSON list passthrough", `[1,2]`, `[1,2]`},
		{"non-JSON string wrapped", `hello world`, `"hello world"`},
		{"map", map[string]any{"q": "x"}, `{"q":"x"}`},
		{"raw message", json.RawMessage(`{"b":2}`), `{"b":2}`},
		{"empty raw message", json.RawMessage(nil), "{}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanonicalizeArguments(tt.input); got != tt.expected {
				t.Errorf("got %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestNewToolCall(t *testing.T) {
	call := NewToolCall("call-9", "google_search", map[string]any{"query": "go"})
	if call.ID != "call-9" {
		t.Errorf("ID = %q", call.ID)
	}
	if call.Type != model.ToolCallTypeFunction {
		t.Errorf("Type = %q", call.Type)
	}
	if call.Function.Arguments != `{"query":"go"}` {
		t.Errorf("Arguments = %q", call.Function.Arguments)
	}

	// An empty ID gets a generated one
	generated := NewToolCall("", "x", nil)
	if generated.ID == "" {
		t.Error("expected a generated ID")
	}
	other := NewToolCall("", "x", nil)
	if generated.ID == other.ID {
		t.Error("generated IDs must be unique")
	}
}

func TestConvertToOllamaMessages(t *testing.T) {
	messages := []model.Message{
		{Role: "system", Content: "be brief"},
		{Role: "user", Content: "hi"},
		{
			Role: "assistant",
			ToolCalls: []model.ToolCall{{
				ID:   "c1",
				Type: model.ToolCallTypeFunction,
				Function: model.ToolCallFunction{
					Name:      "google_search",
					Arguments: `{"query":"news"}`,
				},
			}},
		},
		{Role: "tool", Content: `{"organic":[]}`, ToolCallID: "c1", Name: "google_search"},
	}

	result := ConvertToOllamaMessages(messages)
	if len(result) != 4 {
		t.Fatalf("got %d messages, want 4", len(result))
	}
	if result[0].Role != "system" || result[0].Content != "be brief" {
		t.Errorf("system message = %+v", result[0])
	}
	if len(result[2].ToolCalls) != 1 {
		t.Fatalf("assistant tool calls lost: %+v", result[2])
	}
	fn := result[2].ToolCalls[0].Function
	if fn.Name != "google_search" {
		t.Errorf("tool call name = %q", fn.Name)
	}
	if fn.Arguments["query"] != "news" {
		t.Errorf("tool call args = %+v", fn.Arguments)
	}
	if result[3].Role != "tool" {
		t.Errorf("tool result role = %q", result[3].Role)
	}
}

func TestConvertFromOllamaToolCalls(t *testing.T) {
	if got := ConvertFromOllamaToolCalls(nil); got != nil {
		t.Errorf("nil input should stay nil, got %+v", got)
	}

	calls := []api.ToolCall{{
		Function: api.ToolCallFunction{
			Name:      "get_help_text",
			Arguments: map[string]any{},
		},
	}}

	result := ConvertFromOllamaToolCalls(calls)
	if len(result) != 1 {
		t.Fatalf("got %d calls, want 1", len(result))
	}
	if result[0].ID == "" {
		t.Error("Ollama calls must get generated IDs")
	}
	if result[0].Function.Name != "get_help_text" {
		t.Errorf("name = %q", result[0].Function.Name)
	}
	if result[0].Function.Arguments != "{}" {
		t.Errorf("arguments = %q, want canonical empty object", result[0].Function.Arguments)
	}
}
