// Package chat runs the tool-calling loop and the multi-backend router.
//
// The orchestrator drives one request through a provider: it sends the
// conversation, executes any tool calls the model asks for, feeds the results
// back, and repeats until the model produces a plain text answer or the
// iteration cap is hit. The router above it walks an ordered backend list and
// guarantees the caller always gets a reply.
package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"fogmoe/config"
	"fogmoe/model"
	"fogmoe/tools"
)

// DefaultMaxIterations caps provider round trips for a single request.
const DefaultMaxIterations = 10

const exhaustedReply = "I could not finish working through the tools for that request. Please try asking again."

// Orchestrator executes the tool-calling loop against a single provider.
type Orchestrator struct {
	Registry     *tools.Registry
	SystemPrompt string

	// MaxIterations bounds provider round trips. Zero means DefaultMaxIterations.
	MaxIterations int

	// SkipTools names registered tools that must not execute for this
	// deployment; calls to them get an error result instead.
	SkipTools map[string]bool

	// GroupContextTool, when set, is forced as the first tool call for
	// group conversations so the model sees recent room context.
	GroupContextTool string
}

// Run sends the conversation through the provider, executing tool calls until
// the model answers in plain text.
//
// Returns the reply text and a log of every tool call and result, in
// execution order. The returned error is the provider's error untouched, so
// callers can test it with errors.Is.
func (o *Orchestrator) Run(ctx context.Context, p model.Provider, history []model.Message, rc *model.RequestContext) (string, []model.ToolLogEntry, error) {
	messages := o.buildMessages(history, rc)

	maxIterations := o.MaxIterations
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}

	defs := o.Registry.Definitions()

	var toolLog []model.ToolLogEntry
	var lastTool string
	var lastResult any

	for iteration := 0; iteration < maxIterations; iteration++ {
		req := model.ChatRequest{
			Messages: messages,
			Tools:    defs,
		}
		if iteration == 0 && rc != nil && rc.IsGroup && o.GroupContextTool != "" {
			if _, ok := o.Registry.Get(o.GroupContextTool); ok {
				req.ForceTool = o.GroupContextTool
			}
		}

		resp, err := p.ChatWithTools(ctx, req)
		if err != nil {
			return "", toolLog, err
		}

		if len(resp.ToolCalls) == 0 {
			text := strings.TrimSpace(resp.Content)
			if text == "" && lastTool != "" {
				text = FormatFallback(lastTool, lastResult)
			}
			return text, toolLog, nil
		}

		// The assistant turn that requested the calls must precede the
		// tool results in the transcript.
		messages = append(messages, model.Message{
			Role:      model.RoleAssistant,
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})

		for _, call := range resp.ToolCalls {
			result := o.executeCall(ctx, rc, call)

			resultJSON := marshalResult(result)
			messages = append(messages, model.Message{
				Role:       model.RoleTool,
				Content:    resultJSON,
				ToolCallID: call.ID,
				Name:       call.Function.Name,
			})

			toolLog = append(toolLog,
				model.ToolLogEntry{
					Type:       model.LogAssistantToolCall,
					ToolName:   call.Function.Name,
					Arguments:  call.Function.Arguments,
					ToolCallID: call.ID,
				},
				model.ToolLogEntry{
					Type:       model.LogToolResult,
					ToolName:   call.Function.Name,
					Result:     resultJSON,
					ToolCallID: call.ID,
				},
			)

			if !isErrorResult(result) {
				lastTool = call.Function.Name
				lastResult = result
			}
		}
	}

	if config.Debug {
		config.DebugLog.Printf("[Orchestrator] Iteration cap reached after %d rounds (last tool: %s)", maxIterations, lastTool)
	}
	if lastTool != "" {
		if text := FormatFallback(lastTool, lastResult); text != "" {
			return text, toolLog, nil
		}
	}
	return exhaustedReply, toolLog, nil
}

// buildMessages assembles the outgoing transcript: system prompt first, then
// the stored history with empty messages dropped.
func (o *Orchestrator) buildMessages(history []model.Message, rc *model.RequestContext) []model.Message {
	system := o.SystemPrompt
	if rc != nil && rc.StatePrompt != "" {
		if system != "" {
			system += "\n\n"
		}
		system += rc.StatePrompt
	}

	messages := make([]model.Message, 0, len(history)+1)
	if system != "" {
		messages = append(messages, model.Message{Role: model.RoleSystem, Content: system})
	}
	for _, msg := range history {
		if msg.IsEmpty() {
			continue
		}
		messages = append(messages, msg)
	}
	return messages
}

// executeCall runs one tool call. Every failure mode (unknown tool, disabled
// tool, bad arguments, execution error, panic) produces an error-object
// result so the loop keeps going.
func (o *Orchestrator) executeCall(ctx context.Context, rc *model.RequestContext, call model.ToolCall) (result any) {
	name := call.Function.Name

	defer func() {
		if r := recover(); r != nil {
			if config.Debug {
				config.DebugLog.Printf("[Orchestrator] Tool %s panicked: %v", name, r)
			}
			result = errorResult(fmt.Sprintf("tool %s failed unexpectedly", name))
		}
	}()

	if o.SkipTools[name] {
		return errorResult(fmt.Sprintf("tool disabled: %s", name))
	}

	tool, ok := o.Registry.Get(name)
	if !ok {
		if config.Debug {
			config.DebugLog.Printf("[Orchestrator] Model requested unregistered tool: %s", name)
		}
		return errorResult(fmt.Sprintf("unknown tool: %s", name))
	}

	args := parseArguments(call.Function.Arguments)

	if config.Debug {
		config.DebugLog.Printf("[Orchestrator] Executing %s args=%s", name, call.Function.Arguments)
	}

	out, err := tool.Execute(ctx, rc, args)
	if err != nil {
		if config.Debug {
			config.DebugLog.Printf("[Orchestrator] Tool %s failed: %v", name, err)
		}
		return errorResult(err.Error())
	}
	return out
}

// parseArguments decodes a tool arguments JSON string, falling back to an
// empty map on malformed payloads.
func parseArguments(argsJSON string) map[string]any {
	var args map[string]any
	if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
		if config.Debug {
			config.DebugLog.Printf("[Orchestrator] Malformed tool arguments %q: %v", argsJSON, err)
		}
		return make(map[string]any)
	}
	if args == nil {
		args = make(map[string]any)
	}
	return args
}

func errorResult(msg string) map[string]any {
	return map[string]any{"error": msg}
}

func isErrorResult(result any) bool {
	m, ok := result.(map[string]any)
	if !ok {
		return false
	}
	_, hasErr := m["error"]
	return hasErr && len(m) == 1
}

// marshalResult renders a tool result for the transcript. Results that fail
// to serialize become error objects rather than aborting the loop.
func marshalResult(result any) string {
	data, err := json.Marshal(result)
	if err != nil {
		data, _ = json.Marshal(errorResult(fmt.Sprintf("unserializable tool result: %v", err)))
	}
	return string(data)
}
