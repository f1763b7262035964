// Package provider defines the concrete backend implementations for LLM access.
//
// FogMoe supports multiple LLM backends (Ollama, OpenRouter, OpenAI, Anthropic)
// through a common Provider interface. This allows the chat orchestration layer
// to remain backend-agnostic, making it easy to add support for new providers
// without changing the core application logic.
//
// # Type Conversions
//
// The provider layer handles all type conversions between FogMoe's
// provider-agnostic types and provider-specific types. Every backend returns
// the same normalized tool call shape regardless of wire format:
//   - Every tool call carries a non-empty ID (generated when the backend
//     supplies none, as Ollama does)
//   - Function arguments are always a JSON object string
//
// # Architecture
//
//   - model.Provider defines the contract (interface, in the model package
//     to avoid import cycles)
//   - provider.OllamaProvider implements for a local Ollama server
//   - provider.OpenRouterProvider and provider.OpenAIProvider share the
//     OpenAI-compatible wire format
//   - provider.AnthropicProvider implements for the Anthropic Messages API
//   - provider.NewProvider() factory creates providers from config
package provider

// ProviderType identifies the provider implementation.
type ProviderType string

const (
	ProviderTypeOllama     ProviderType = "ollama"
	ProviderTypeOpenRouter ProviderType = "openrouter"
	ProviderTypeOpenAI     ProviderType = "openai"
	ProviderTypeAnthropic  ProviderType = "anthropic"
)

// Config holds provider-specific configuration.
type Config struct {
	Type    ProviderType
	BaseURL string
	Model   string
	APIKey  string // For OpenAI/OpenRouter/Anthropic (unused for Ollama)
}
