package provider

import (
	"strings"
	"testing"
)

func TestMapProviderIDToType(t *testing.T) {
	tests := []struct {
		id       string
		expected ProviderType
	}{
		{"ollama", ProviderTypeOllama},
		{"openrouter", ProviderTypeOpenRouter},
		{"openai", ProviderTypeOpenAI},
		{"anthropic", ProviderTypeAnthropic},
		{"something-else", ProviderType("something-else")},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			if got := MapProviderIDToType(tt.id); got != tt.expected {
				t.Errorf("MapProviderIDToType(%q) = %q, want %q", tt.id, got, tt.expected)
			}
		})
	}
}

func TestNewProviderUnknownType(t *testing.T) {
	_, err := NewProvider(Config{Type: "telepathy"})
	if err == nil {
		t.Fatal("expected error for unknown provider type")
	}
	if !strings.Contains(err.Error(), "unknown provider type") {
		t.Errorf("error = %v", err)
	}
}

func TestNewProviderRequiresAPIKey(t *testing.T) {
	for _, typ := range []ProviderType{ProviderTypeOpenAI, ProviderTypeOpenRouter, ProviderTypeAnthropic} {
		t.Run(string(typ), func(t *testing.T) {
			_, err := NewProvider(Config{Type: typ})
			if err == nil {
				t.Fatal("expected error for missing API key")
			}
		})
	}
}

func TestNewProviderOllamaDefaults(t *testing.T) {
	p, err := NewProvider(Config{Type: ProviderTypeOllama})
	if err != nil {
		t.Fatalf("NewProvider failed: %v", err)
	}
	if p.GetModel() != "llama3.1:latest" {
		t.Errorf("default model = %q", p.GetModel())
	}

	p.SetModel("qwen2.5-coder")
	if p.GetModel() != "qwen2.5-coder" {
		t.Errorf("SetModel did not stick: %q", p.GetModel())
	}
}

func TestNewProviderOllamaInvalidURL(t *testing.T) {
	_, err := NewProvider(Config{Type: ProviderTypeOllama, BaseURL: "://not-a-url"})
	if err == nil {
		t.Fatal("expected error for invalid Ollama URL")
	}
}
