package model

import (
	"context"
	"errors"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
)

// ErrSafetyBlocked marks a backend refusal caused by a content-moderation
// policy, as opposed to a transient network or API failure. The multi-backend
// router matches it with errors.Is and moves on to the next backend without
// logging it as an error.
var ErrSafetyBlocked = errors.New("content blocked by backend safety policy")

// ChatRequest is the uniform chat-completions request shape shared by all
// backend adapters.
type ChatRequest struct {
	Messages []Message
	Tools    []mcptypes.Tool

	// ForceTool, when non-empty, forces the backend to call this tool on
	// this turn instead of choosing freely ("auto" is the default).
	ForceTool string

	Temperature float64
	MaxTokens   int
}

// ChatResponse is the normalized backend response: final text, tool calls,
// or both. ToolCalls are already in the provider-agnostic form.
type ChatResponse struct {
	Content   string
	ToolCalls []ToolCall
}

// Provider abstracts chat-completion backends (OpenAI, OpenRouter,
// Anthropic, Ollama) behind provider-agnostic types.
//
// This interface is defined in the model package (not provider package) to
// avoid import cycles: provider implementations import model, and the chat
// orchestrator can use the Provider interface without importing the
// provider package.
type Provider interface {
	// Chat sends messages without any tools and returns the response.
	Chat(ctx context.Context, messages []Message) (*ChatResponse, error)

	// ChatWithTools sends messages plus tool schemas and returns the
	// normalized response. Tool calls in the response are canonicalized
	// per the ToolCall contract.
	ChatWithTools(ctx context.Context, req ChatRequest) (*ChatResponse, error)

	// GetModel returns the currently selected model name.
	GetModel() string

	// SetModel changes the active model.
	SetModel(model string)

	// Ping checks if the backend is reachable.
	Ping(ctx context.Context) error
}

// RequestContext carries the caller's identity and chat metadata through an
// orchestration call into tool handlers. It is passed explicitly down the
// call chain rather than stored in goroutine-local state, so a concurrent
// call for a different user can never observe it.
//
// The orchestrator never interprets the context beyond two fields: IsGroup
// selects the forced group-context tool on the first iteration, and
// StatePrompt is appended to the system prompt.
type RequestContext struct {
	UserID      int64
	ChatID      int64
	UserName    string
	IsGroup     bool
	StatePrompt string
}
