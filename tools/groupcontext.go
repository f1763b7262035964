package tools

import (
	"context"
	"fmt"
	"time"

	mcptypes "github.com/mark3labs/mcp-go/mcp"

	"fogmoe/model"
)

// maxGroupContextMessages caps the transcript returned to the model.
const maxGroupContextMessages = 10

// GroupMessage is one recent message from a group chat.
type GroupMessage struct {
	Sender string
	Text   string
	SentAt time.Time
}

// GroupContextReader supplies recent group messages. The Telegram layer
// implements this against its own message cache; tests use a stub.
type GroupContextReader interface {
	RecentMessages(ctx context.Context, chatID int64, limit int) ([]GroupMessage, error)
}

// GroupContextTool fetches the recent messages of the current group chat so
// replies can be grounded in what was just said. The orchestrator forces
// this tool on the first iteration of group-chat requests.
type GroupContextTool struct {
	reader GroupContextReader
}

// NewGroupContextTool creates the get_group_context tool.
func NewGroupContextTool(reader GroupContextReader) *GroupContextTool {
	return &GroupContextTool{reader: reader}
}

// Definition implements Tool.
func (t *GroupContextTool) Definition() mcptypes.Tool {
	return mcptypes.Tool{
		Name:        "get_group_context",
		Description: "Fetch the most recent messages in the current group chat as context for the reply.",
		InputSchema: mcptypes.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"limit": map[string]any{
					"type":        "integer",
					"description": "How many recent messages to fetch (max 10)",
				},
			},
		},
	}
}

// Execute implements Tool.
func (t *GroupContextTool) Execute(ctx context.Context, rc *model.RequestContext, args map[string]any) (any, error) {
	if rc == nil || rc.ChatID == 0 {
		return nil, fmt.Errorf("no group chat in request context")
	}

	limit := maxGroupContextMessages
	if v, ok := args["limit"].(float64); ok && int(v) > 0 && int(v) < limit {
		limit = int(v)
	}

	msgs, err := t.reader.RecentMessages(ctx, rc.ChatID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch group context: %w", err)
	}

	out := make([]map[string]any, len(msgs))
	for i, m := range msgs {
		out[i] = map[string]any{
			"time":   m.SentAt.Format("15:04"),
			"sender": m.Sender,
			"text":   m.Text,
		}
	}

	return map[string]any{"messages": out}, nil
}
