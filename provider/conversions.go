package provider

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/ollama/ollama/api"

	"fogmoe/config"
	"fogmoe/model"
)

// ParseToolArguments parses a JSON arguments string into a map.
//
// Malformed argument payloads from a backend must not abort the tool loop, so
// parse failures return an empty map and the tool runs with no arguments.
func ParseToolArguments(argsJSON string) map[string]any {
	var args map[string]any
	if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
		if config.Debug {
			config.DebugLog.Printf("[Provider] Malformed tool arguments %q: %v", argsJSON, err)
		}
		return make(map[string]any)
	}
	return args
}

// CanonicalizeArguments renders backend tool arguments as a JSON object string.
//
// Backends disagree on the wire shape: OpenAI-compatible APIs send a JSON
// string, Anthropic sends raw JSON, Ollama sends a decoded map. All of them
// funnel through here so the rest of the system only ever sees a JSON string.
func CanonicalizeArguments(args any) string {
	switch v := args.(type) {
	case nil:
		return "{}"
	case string:
		if v == "" {
			return "{}"
		}
		if !json.Valid([]byte(v)) {
			// Keep the payload; the parse-side fallback handles it
			wrapped, err := json.Marshal(v)
			if err != nil {
				return "{}"
			}
			return string(wrapped)
		}
		return v
	case json.RawMessage:
		if len(v) == 0 {
			return "{}"
		}
		return string(v)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return "{}"
		}
		return string(data)
	}
}

// NewToolCall builds a normalized tool call. Backends that do not assign call
// IDs (Ollama) get a generated UUID so results can always be matched to calls.
func NewToolCall(id, name string, args any) model.ToolCall {
	if id == "" {
		id = uuid.New().String()
	}
	return model.ToolCall{
		ID:   id,
		Type: model.ToolCallTypeFunction,
		Function: model.ToolCallFunction{
			Name:      name,
			Arguments: CanonicalizeArguments(args),
		},
	}
}

// ConvertToOllamaMessages converts FogMoe model.Message to Ollama api.Message.
//
// Assistant tool calls and tool results survive the round trip: assistant
// messages carry their ToolCalls (arguments decoded back into maps) and tool
// results map onto Ollama's "tool" role.
func ConvertToOllamaMessages(messages []model.Message) []api.Message {
	result := make([]api.Message, len(messages))
	for i, msg := range messages {
		m := api.Message{
			Role:    msg.Role,
			Content: msg.Content,
		}
		for _, call := range msg.ToolCalls {
			m.ToolCalls = append(m.ToolCalls, api.ToolCall{
				Function: api.ToolCallFunction{
					Name:      call.Function.Name,
					Arguments: ParseToolArguments(call.Function.Arguments),
				},
			})
		}
		result[i] = m
	}
	return result
}

// ConvertFromOllamaToolCalls converts Ollama api.ToolCall to normalized
// model.ToolCall, generating IDs since Ollama provides none.
//
// Returns nil if the input is nil or empty, maintaining the same nil
// semantics as the Ollama API.
func ConvertFromOllamaToolCalls(ollamaCalls []api.ToolCall) []model.ToolCall {
	if len(ollamaCalls) == 0 {
		return nil
	}

	result := make([]model.ToolCall, len(ollamaCalls))
	for i, call := range ollamaCalls {
		result[i] = NewToolCall("", call.Function.Name, call.Function.Arguments)
	}
	return result
}
