package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/ollama/ollama/api"

	"fogmoe/model"
	"fogmoe/ollama"
	"fogmoe/tools"
)

// OllamaProvider wraps the ollama.Client to implement the Provider interface.
//
// This provider handles all type conversions between FogMoe's
// provider-agnostic types and Ollama's API types. Ollama does not assign tool
// call IDs, so the conversion layer generates them.
type OllamaProvider struct {
	client *ollama.Client
}

// NewOllamaProvider creates a new Ollama provider instance.
//
// Parameters:
//   - baseURL: The Ollama server URL (e.g., "http://localhost:11434").
//     If empty, defaults to "http://localhost:11434".
//   - model: The model name to use (e.g., "llama3.1:latest").
//     If empty, defaults to "llama3.1:latest".
//
// Returns an error if the baseURL is invalid.
func NewOllamaProvider(baseURL, model string) (*OllamaProvider, error) {
	client, err := ollama.NewClient(baseURL, model)
	if err != nil {
		return nil, fmt.Errorf("failed to create Ollama client: %w", err)
	}

	return &OllamaProvider{
		client: client,
	}, nil
}

// Chat implements Provider.Chat by delegating to ChatWithTools with no tools.
func (p *OllamaProvider) Chat(ctx context.Context, messages []model.Message) (*model.ChatResponse, error) {
	return p.ChatWithTools(ctx, model.ChatRequest{Messages: messages})
}

// ChatWithTools implements Provider.ChatWithTools with type conversions.
//
// Tools are only passed through when the active model is known to support
// tool calling; unsupported models get a plain chat request instead of a
// hard API error.
func (p *OllamaProvider) ChatWithTools(ctx context.Context, req model.ChatRequest) (*model.ChatResponse, error) {
	ollamaMessages := ConvertToOllamaMessages(req.Messages)

	var ollamaTools []api.Tool
	if len(req.Tools) > 0 && p.client.SupportsToolCalling() {
		ollamaTools = tools.ConvertToOllamaFormat(req.Tools)
	}

	content, toolCalls, err := p.client.ChatWithTools(ctx, ollamaMessages, ollamaTools)
	if err != nil {
		return nil, fmt.Errorf("Ollama request failed: %w", err)
	}

	return &model.ChatResponse{
		Content:   strings.TrimSpace(content),
		ToolCalls: ConvertFromOllamaToolCalls(toolCalls),
	}, nil
}

// GetModel implements Provider.GetModel (direct passthrough).
func (p *OllamaProvider) GetModel() string {
	return p.client.GetModel()
}

// SetModel implements Provider.SetModel (direct passthrough).
func (p *OllamaProvider) SetModel(model string) {
	p.client.SetModel(model)
}

// Ping implements Provider.Ping (direct passthrough).
func (p *OllamaProvider) Ping(ctx context.Context) error {
	return p.client.Ping(ctx)
}
