package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"fogmoe/model"
)

func newTestStore(t *testing.T, limits Limits) *HistoryStore {
	t.Helper()
	store, err := NewHistoryStore(t.TempDir(), limits)
	if err != nil {
		t.Fatalf("NewHistoryStore failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func userMsg(text string) model.Message {
	return model.Message{Role: model.RoleUser, Content: text}
}

func TestFetchMissingConversation(t *testing.T) {
	store := newTestStore(t, Limits{})
	ctx := context.Background()

	msgs, err := store.Fetch(ctx, 42)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if msgs == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(msgs) != 0 {
		t.Fatalf("expected no messages, got %d", len(msgs))
	}
}

func TestAppendAndFetchPreservesOrder(t *testing.T) {
	store := newTestStore(t, Limits{})
	ctx := context.Background()

	texts := []string{"first", "second", "third"}
	for _, text := range texts {
		result, err := store.Append(ctx, 1, userMsg(text))
		if err != nil {
			t.Fatalf("Append(%q) failed: %v", text, err)
		}
		if result.Archived {
			t.Errorf("Append(%q) archived unexpectedly", text)
		}
		if result.Warning != WarningNone {
			t.Errorf("Append(%q) warning = %v, want none", text, result.Warning)
		}
	}

	msgs, err := store.Fetch(ctx, 1)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(msgs) != len(texts) {
		t.Fatalf("expected %d messages, got %d", len(texts), len(msgs))
	}
	for i, text := range texts {
		if msgs[i].Content != text {
			t.Errorf("message %d content = %q, want %q", i, msgs[i].Content, text)
		}
	}
}

func TestAppendIsolatesOwners(t *testing.T) {
	store := newTestStore(t, Limits{})
	ctx := context.Background()

	if _, err := store.Append(ctx, 1, userMsg("for one")); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if _, err := store.Append(ctx, 2, userMsg("for two")); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	msgs, err := store.Fetch(ctx, 2)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Content != "for two" {
		t.Fatalf("owner 2 sees wrong messages: %+v", msgs)
	}
}

func TestAppendSoftCeilingWarns(t *testing.T) {
	store := newTestStore(t, Limits{
		SoftCeilingBytes: 200,
		HardCeilingBytes: 10000,
		ArchiveRetention: 5,
	})
	ctx := context.Background()

	// Push the serialized array past 200 bytes
	if _, err := store.Append(ctx, 1, userMsg(strings.Repeat("x", 300))); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	result, err := store.Append(ctx, 1, userMsg("next"))
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if result.Warning != WarningNearLimit {
		t.Errorf("warning = %v, want near_limit", result.Warning)
	}
	if result.Archived {
		t.Error("soft ceiling must not archive")
	}

	msgs, err := store.Fetch(ctx, 1)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected both messages kept, got %d", len(msgs))
	}
}

func TestAppendHardCeilingArchivesAndResets(t *testing.T) {
	store := newTestStore(t, Limits{
		SoftCeilingBytes: 100,
		HardCeilingBytes: 300,
		ArchiveRetention: 5,
	})
	ctx := context.Background()

	big := userMsg(strings.Repeat("y", 400))
	if _, err := store.Append(ctx, 1, big); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	result, err := store.Append(ctx, 1, userMsg("fresh start"))
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if !result.Archived {
		t.Fatal("expected overflow append to archive")
	}
	if result.Warning != WarningOverflow {
		t.Errorf("warning = %v, want overflow", result.Warning)
	}
	if len(result.Snapshots) != 1 {
		t.Fatalf("expected 1 snapshot, got %d", len(result.Snapshots))
	}

	// Snapshot holds the complete prior array
	archived, err := result.Snapshots[0].Messages()
	if err != nil {
		t.Fatalf("snapshot decode failed: %v", err)
	}
	if len(archived) != 1 || archived[0].Content != big.Content {
		t.Errorf("snapshot does not contain the prior array")
	}

	// The live conversation holds only the new message
	msgs, err := store.Fetch(ctx, 1)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Content != "fresh start" {
		t.Fatalf("expected reset conversation with one message, got %+v", msgs)
	}
}

func TestArchiveRetentionPrunes(t *testing.T) {
	store := newTestStore(t, Limits{
		SoftCeilingBytes: 50,
		HardCeilingBytes: 100,
		ArchiveRetention: 3,
	})
	ctx := context.Background()

	// Each big append overflows the previous one, creating an archive each time
	for i := 0; i < 6; i++ {
		msg := userMsg(fmt.Sprintf("%d-%s", i, strings.Repeat("z", 150)))
		if _, err := store.Append(ctx, 1, msg); err != nil {
			t.Fatalf("Append %d failed: %v", i, err)
		}
	}

	archives, err := store.ListArchives(ctx, 1)
	if err != nil {
		t.Fatalf("ListArchives failed: %v", err)
	}
	if len(archives) != 3 {
		t.Fatalf("expected retention to keep 3 archives, got %d", len(archives))
	}

	// Newest first: the most recent archive holds the highest-numbered message
	newest, err := archives[0].Messages()
	if err != nil {
		t.Fatalf("snapshot decode failed: %v", err)
	}
	if !strings.HasPrefix(newest[0].Content, "4-") {
		t.Errorf("newest archive content = %q, want prefix 4-", newest[0].Content[:2])
	}
}

func TestArchiveNow(t *testing.T) {
	store := newTestStore(t, Limits{})
	ctx := context.Background()

	// Empty conversation: no-op, no snapshot
	snap, err := store.ArchiveNow(ctx, 1)
	if err != nil {
		t.Fatalf("ArchiveNow on empty failed: %v", err)
	}
	if snap != nil {
		t.Fatal("expected nil snapshot for empty conversation")
	}

	if _, err := store.Append(ctx, 1, userMsg("hello")); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	snap, err = store.ArchiveNow(ctx, 1)
	if err != nil {
		t.Fatalf("ArchiveNow failed: %v", err)
	}
	if snap == nil {
		t.Fatal("expected a snapshot")
	}
	msgs, err := snap.Messages()
	if err != nil {
		t.Fatalf("snapshot decode failed: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Content != "hello" {
		t.Errorf("snapshot messages = %+v", msgs)
	}

	live, err := store.Fetch(ctx, 1)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(live) != 0 {
		t.Fatalf("expected empty conversation after ArchiveNow, got %d messages", len(live))
	}
}

func TestConcurrentAppendsLoseNothing(t *testing.T) {
	store := newTestStore(t, Limits{})
	ctx := context.Background()

	const writers = 8
	const perWriter = 10

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				msg := userMsg(fmt.Sprintf("w%d-%d", w, i))
				if _, err := store.Append(ctx, 7, msg); err != nil {
					t.Errorf("Append failed: %v", err)
					return
				}
			}
		}(w)
	}
	wg.Wait()

	msgs, err := store.Fetch(ctx, 7)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(msgs) != writers*perWriter {
		t.Fatalf("lost updates: got %d messages, want %d", len(msgs), writers*perWriter)
	}
}

func TestStorageErrorsWrapSentinel(t *testing.T) {
	store := newTestStore(t, Limits{})
	store.Close()

	_, err := store.Append(context.Background(), 1, userMsg("after close"))
	if err == nil {
		t.Fatal("expected error appending to closed store")
	}
	if !errors.Is(err, ErrStorage) {
		t.Errorf("error %v does not wrap ErrStorage", err)
	}
}

func TestToolMessagesSurviveRoundTrip(t *testing.T) {
	store := newTestStore(t, Limits{})
	ctx := context.Background()

	call := model.ToolCall{
		ID:   "call-1",
		Type: model.ToolCallTypeFunction,
		Function: model.ToolCallFunction{
			Name:      "google_search",
			Arguments: `{"query":"weather"}`,
		},
	}

	appends := []model.Message{
		{Role: model.RoleAssistant, ToolCalls: []model.ToolCall{call}},
		{Role: model.RoleTool, Content: `{"organic":[]}`, ToolCallID: "call-1", Name: "google_search"},
	}
	for _, msg := range appends {
		if _, err := store.Append(ctx, 1, msg); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	msgs, err := store.Fetch(ctx, 1)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if len(msgs[0].ToolCalls) != 1 || msgs[0].ToolCalls[0].Function.Arguments != `{"query":"weather"}` {
		t.Errorf("tool call lost in round trip: %+v", msgs[0])
	}
	if msgs[1].ToolCallID != "call-1" || msgs[1].Name != "google_search" {
		t.Errorf("tool result metadata lost: %+v", msgs[1])
	}
}
