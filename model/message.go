package model

// Role values used in conversation logs. These match the chat-completions
// wire protocol, so stored messages replay into any backend unchanged.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message is one entry in a conversation log.
//
// A plain text message carries Role and Content. An assistant message that
// invoked tools carries ToolCalls (Content may be empty). A tool result
// carries ToolCallID and Name identifying which call it answers; a tool
// entry's ToolCallID always refers to a ToolCall.ID from an earlier
// assistant entry in the same conversation.
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	Name       string     `json:"name,omitempty"`
}

// IsEmpty reports whether the message carries neither text nor tool data.
// Empty messages are dropped before a backend call; some backends reject
// them outright.
func (m Message) IsEmpty() bool {
	return m.Content == "" && len(m.ToolCalls) == 0 && m.ToolCallID == ""
}

// ToolCall is the normalized, provider-agnostic form of a model tool call.
//
// Every backend adapter converts its SDK's tool-call shape into this
// structure: the id is preserved when the backend supplies one (generated
// otherwise), and Function.Arguments is always a canonical JSON string no
// matter whether the SDK delivered a map, a list, or a raw string.
type ToolCall struct {
	ID       string           `json:"id"`
	Type     string           `json:"type"`
	Function ToolCallFunction `json:"function"`
}

// ToolCallFunction names the function to invoke and its JSON arguments.
type ToolCallFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolCallTypeFunction is the only tool call type the orchestrator manages.
const ToolCallTypeFunction = "function"

// Tool log entry types.
const (
	LogAssistantToolCall = "assistant_tool_call"
	LogToolResult        = "tool_result"
)

// ToolLogEntry records one step of a tool exchange. Entries are ephemeral:
// the orchestrator produces them fresh per invocation and the caller
// consumes them to build persisted messages or debug output.
type ToolLogEntry struct {
	Type       string `json:"type"`
	ToolName   string `json:"tool_name"`
	Arguments  string `json:"arguments"`
	Result     string `json:"result,omitempty"`
	ToolCallID string `json:"tool_call_id"`
}
