package chat

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FormatFallback renders a plain-text reply straight from a tool result.
//
// Some models return an empty completion after a successful tool call. Rather
// than answering with nothing, the orchestrator degrades to a mechanical
// rendering of the last good result for the tools where that makes sense.
// Returns "" for tools with no useful rendering.
func FormatFallback(toolName string, result any) string {
	m := asMap(result)
	if m == nil {
		return ""
	}

	switch toolName {
	case "google_search":
		return formatSearchFallback(m)
	case "get_group_context":
		return formatGroupContextFallback(m)
	default:
		return ""
	}
}

// formatSearchFallback lists the top search hits as bullets.
func formatSearchFallback(result map[string]any) string {
	organic, ok := result["organic"].([]any)
	if !ok || len(organic) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("Here is what I found:\n")
	count := 0
	for _, entry := range organic {
		hit, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		title, _ := hit["title"].(string)
		link, _ := hit["link"].(string)
		snippet, _ := hit["snippet"].(string)
		if title == "" && snippet == "" {
			continue
		}

		fmt.Fprintf(&b, "\n• %s\n", title)
		if link != "" {
			fmt.Fprintf(&b, "  %s\n", link)
		}
		if snippet != "" {
			fmt.Fprintf(&b, "  %s\n", snippet)
		}

		count++
		if count >= 3 {
			break
		}
	}
	if count == 0 {
		return ""
	}
	return strings.TrimRight(b.String(), "\n")
}

// formatGroupContextFallback replays recent group messages as plain lines.
func formatGroupContextFallback(result map[string]any) string {
	msgs, ok := result["messages"].([]any)
	if !ok || len(msgs) == 0 {
		return ""
	}

	var lines []string
	for _, entry := range msgs {
		msg, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		ts, _ := msg["time"].(string)
		sender, _ := msg["sender"].(string)
		text, _ := msg["text"].(string)
		if sender == "" && text == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("[%s] %s: %s", ts, sender, text))
		if len(lines) >= 10 {
			break
		}
	}
	if len(lines) == 0 {
		return ""
	}
	return "Recent messages in this chat:\n" + strings.Join(lines, "\n")
}

// asMap canonicalizes a tool result into map form. Typed structs round-trip
// through JSON so the formatters only deal with one shape.
func asMap(result any) map[string]any {
	switch v := result.(type) {
	case nil:
		return nil
	case map[string]any:
		return v
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil
		}
		var m map[string]any
		if err := json.Unmarshal(data, &m); err != nil {
			return nil
		}
		return m
	}
}
