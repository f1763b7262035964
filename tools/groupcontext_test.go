package tools

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"fogmoe/model"
)

type stubReader struct {
	messages  []GroupMessage
	err       error
	lastChat  int64
	lastLimit int
}

func (r *stubReader) RecentMessages(ctx context.Context, chatID int64, limit int) ([]GroupMessage, error) {
	r.lastChat = chatID
	r.lastLimit = limit
	if r.err != nil {
		return nil, r.err
	}
	if limit < len(r.messages) {
		return r.messages[:limit], nil
	}
	return r.messages, nil
}

func groupFixture(n int) []GroupMessage {
	base := time.Date(2026, 8, 28, 14, 0, 0, 0, time.UTC)
	msgs := make([]GroupMessage, n)
	for i := range msgs {
		msgs[i] = GroupMessage{
			Sender: fmt.Sprintf("user%d", i+1),
			Text:   fmt.Sprintf("message %d", i+1),
			SentAt: base.Add(time.Duration(i) * time.Minute),
		}
	}
	return msgs
}

func TestGroupContextExecute(t *testing.T) {
	reader := &stubReader{messages: groupFixture(3)}
	tool := NewGroupContextTool(reader)
	rc := &model.RequestContext{ChatID: -100123, IsGroup: true}

	result, err := tool.Execute(context.Background(), rc, map[string]any{})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if reader.lastChat != -100123 {
		t.Errorf("chatID passed to reader = %d", reader.lastChat)
	}
	if reader.lastLimit != maxGroupContextMessages {
		t.Errorf("default limit = %d, want %d", reader.lastLimit, maxGroupContextMessages)
	}

	msgs, ok := result.(map[string]any)["messages"].([]map[string]any)
	if !ok {
		t.Fatalf("messages has wrong type: %T", result)
	}
	if len(msgs) != 3 {
		t.Fatalf("got %d messages, want 3", len(msgs))
	}
	if msgs[0]["time"] != "14:00" {
		t.Errorf("time = %v", msgs[0]["time"])
	}
	if msgs[0]["sender"] != "user1" || msgs[0]["text"] != "message 1" {
		t.Errorf("first message = %v", msgs[0])
	}
}

func TestGroupContextLimitArg(t *testing.T) {
	tests := []struct {
		name      string
		args      map[string]any
		wantLimit int
	}{
		// JSON numbers arrive as float64.
		{"explicit limit", map[string]any{"limit": float64(4)}, 4},
		{"limit above cap", map[string]any{"limit": float64(50)}, maxGroupContextMessages},
		{"zero limit", map[string]any{"limit": float64(0)}, maxGroupContextMessages},
		{"negative limit", map[string]any{"limit": float64(-2)}, maxGroupContextMessages},
		{"wrong type", map[string]any{"limit": "five"}, maxGroupContextMessages},
		{"no limit", map[string]any{}, maxGroupContextMessages},
	}

	rc := &model.RequestContext{ChatID: 7, IsGroup: true}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := &stubReader{messages: groupFixture(12)}
			tool := NewGroupContextTool(reader)
			if _, err := tool.Execute(context.Background(), rc, tt.args); err != nil {
				t.Fatalf("Execute failed: %v", err)
			}
			if reader.lastLimit != tt.wantLimit {
				t.Errorf("limit = %d, want %d", reader.lastLimit, tt.wantLimit)
			}
		})
	}
}

func TestGroupContextRequiresChat(t *testing.T) {
	tool := NewGroupContextTool(&stubReader{})

	if _, err := tool.Execute(context.Background(), nil, nil); err == nil {
		t.Error("expected error for nil request context")
	}
	if _, err := tool.Execute(context.Background(), &model.RequestContext{}, nil); err == nil {
		t.Error("expected error for zero chat ID")
	}
}

func TestGroupContextReaderError(t *testing.T) {
	readErr := errors.New("cache unavailable")
	tool := NewGroupContextTool(&stubReader{err: readErr})
	rc := &model.RequestContext{ChatID: 7, IsGroup: true}

	_, err := tool.Execute(context.Background(), rc, nil)
	if !errors.Is(err, readErr) {
		t.Errorf("error = %v, want wrapped reader error", err)
	}
}
