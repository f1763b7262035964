package tools

import (
	"testing"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
	"github.com/ollama/ollama/api"
)

func calculatorDef() mcptypes.Tool {
	return mcptypes.Tool{
		Name:        "calculate",
		Description: "Perform calculation",
		InputSchema: mcptypes.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"operation": map[string]any{
					"type":        "string",
					"description": "The operation to perform",
					"enum":        []any{"add", "subtract", "multiply", "divide"},
				},
				"a": map[string]any{
					"type":        "number",
					"description": "First operand",
				},
				"b": map[string]any{
					"type":        "number",
					"description": "Second operand",
				},
			},
			Required: []string{"operation", "a", "b"},
		},
	}
}

func TestConvertToOllamaFormat(t *testing.T) {
	tests := []struct {
		name     string
		input    []mcptypes.Tool
		expected int
		validate func(t *testing.T, result []api.Tool)
	}{
		{
			name:     "empty tools",
			input:    []mcptypes.Tool{},
			expected: 0,
		},
		{
			name: "single simple tool",
			input: []mcptypes.Tool{
				{
					Name:        "get_help_text",
					Description: "Return the bot's usage help text.",
					InputSchema: mcptypes.ToolInputSchema{Type: "object"},
				},
			},
			expected: 1,
			validate: func(t *testing.T, result []api.Tool) {
				if result[0].Type != "function" {
					t.Errorf("expected type 'function', got %q", result[0].Type)
				}
				if result[0].Function.Name != "get_help_text" {
					t.Errorf("expected name 'get_help_text', got %q", result[0].Function.Name)
				}
			},
		},
		{
			name:     "tool with properties",
			input:    []mcptypes.Tool{calculatorDef()},
			expected: 1,
			validate: func(t *testing.T, result []api.Tool) {
				params := result[0].Function.Parameters
				if len(params.Required) != 3 {
					t.Errorf("expected 3 required fields, got %d", len(params.Required))
				}
				op, ok := params.Properties["operation"]
				if !ok {
					t.Fatal("operation property missing")
				}
				if len(op.Type) != 1 || op.Type[0] != "string" {
					t.Errorf("operation type = %v", op.Type)
				}
				if op.Description != "The operation to perform" {
					t.Errorf("operation description = %q", op.Description)
				}
				if len(op.Enum) != 4 {
					t.Errorf("operation enum = %v", op.Enum)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ConvertToOllamaFormat(tt.input)
			if len(result) != tt.expected {
				t.Fatalf("got %d tools, want %d", len(result), tt.expected)
			}
			if tt.validate != nil {
				tt.validate(t, result)
			}
		})
	}
}

func TestConvertToOpenAIFormat(t *testing.T) {
	if got := ConvertToOpenAIFormat(nil); got != nil {
		t.Errorf("nil input should stay nil, got %v", got)
	}

	result := ConvertToOpenAIFormat([]mcptypes.Tool{calculatorDef()})
	if len(result) != 1 {
		t.Fatalf("got %d tools, want 1", len(result))
	}

	if result[0].OfFunction == nil {
		t.Fatal("expected a function tool")
	}
	fn := result[0].OfFunction.Function
	if fn.Name != "calculate" {
		t.Errorf("name = %q", fn.Name)
	}
	params := fn.Parameters
	if params["type"] != "object" {
		t.Errorf("parameters type = %v", params["type"])
	}
	props, ok := params["properties"].(map[string]any)
	if !ok {
		t.Fatalf("properties have wrong type: %T", params["properties"])
	}
	if _, ok := props["operation"]; !ok {
		t.Error("operation property missing")
	}
	required, ok := params["required"].([]string)
	if !ok || len(required) != 3 {
		t.Errorf("required = %v", params["required"])
	}
}

func TestConvertToAnthropicFormat(t *testing.T) {
	if got := ConvertToAnthropicFormat(nil); got != nil {
		t.Errorf("nil input should stay nil, got %v", got)
	}

	result := ConvertToAnthropicFormat([]mcptypes.Tool{calculatorDef()})
	if len(result) != 1 {
		t.Fatalf("got %d tools, want 1", len(result))
	}

	tool := result[0].OfTool
	if tool == nil {
		t.Fatal("expected OfTool to be set")
	}
	if tool.Name != "calculate" {
		t.Errorf("name = %q", tool.Name)
	}
	if tool.Description.Value != "Perform calculation" {
		t.Errorf("description = %q", tool.Description.Value)
	}
	if len(tool.InputSchema.Required) != 3 {
		t.Errorf("required = %v", tool.InputSchema.Required)
	}
	props, ok := tool.InputSchema.Properties.(map[string]any)
	if !ok {
		t.Fatalf("properties have wrong type: %T", tool.InputSchema.Properties)
	}
	if _, ok := props["b"]; !ok {
		t.Error("property b missing")
	}
}
