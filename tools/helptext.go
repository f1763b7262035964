package tools

import (
	"context"

	mcptypes "github.com/mark3labs/mcp-go/mcp"

	"fogmoe/model"
)

const defaultHelpText = "FogMoe is an AI chat assistant. Send a message to chat, " +
	"or use /clear to reset the conversation and /history to export archived logs."

// HelpTextTool returns the bot's usage help so the model can answer
// "what can you do" questions accurately instead of inventing commands.
type HelpTextTool struct {
	text string
}

// NewHelpTextTool creates the get_help_text tool. An empty text selects the
// built-in default.
func NewHelpTextTool(text string) *HelpTextTool {
	if text == "" {
		text = defaultHelpText
	}
	return &HelpTextTool{text: text}
}

// Definition implements Tool.
func (t *HelpTextTool) Definition() mcptypes.Tool {
	return mcptypes.Tool{
		Name:        "get_help_text",
		Description: "Return the bot's usage help text.",
		InputSchema: mcptypes.ToolInputSchema{Type: "object"},
	}
}

// Execute implements Tool.
func (t *HelpTextTool) Execute(ctx context.Context, rc *model.RequestContext, args map[string]any) (any, error) {
	return map[string]any{"help": t.text}, nil
}
