package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"fogmoe/chat"
	"fogmoe/config"
	"fogmoe/model"
	"fogmoe/provider"
	"fogmoe/storage"
	"fogmoe/tools"
)

const (
	Version = "v0.01.00"
	License = "Apache-2.0"
)

// localOwnerID is the conversation key for the single-user CLI session.
const localOwnerID int64 = 1

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize debug logging after config is loaded
	config.InitDebugLog(cfg.DataDir())

	store, err := storage.NewHistoryStore(cfg.DataDir(), storage.Limits{
		SoftCeilingBytes: cfg.History.SoftCeilingBytes,
		HardCeilingBytes: cfg.History.HardCeilingBytes,
		ArchiveRetention: cfg.History.ArchiveRetention,
	})
	if err != nil {
		fmt.Printf("Failed to initialize history store: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	registry := buildRegistry(cfg)

	providers := provider.InitializeProviders(cfg)
	router := buildRouter(cfg, providers, registry)
	if len(router.Backends) == 0 {
		fmt.Println("No AI backend is available. Configure a backend in config.toml or start Ollama.")
		os.Exit(1)
	}

	runREPL(store, router)
}

func buildRegistry(cfg *config.Config) *tools.Registry {
	registry := tools.NewRegistry()
	registry.Register(tools.NewHelpTextTool(""))

	serperKey := ""
	if cfg.CredentialStore != nil {
		serperKey = cfg.CredentialStore.Get("serper")
	}
	if serperKey != "" {
		registry.Register(tools.NewSearchTool(serperKey, cfg.Search.Endpoint))
	} else if config.Debug {
		config.DebugLog.Printf("[Main] No serper credential, google_search disabled")
	}

	if config.Debug {
		config.DebugLog.Printf("[Main] Registered tools: %s", registry.Names())
	}
	return registry
}

func buildRouter(cfg *config.Config, providers map[string]model.Provider, registry *tools.Registry) *chat.Router {
	orchestrator := &chat.Orchestrator{
		Registry:         registry,
		SystemPrompt:     cfg.Orchestrator.SystemPrompt,
		MaxIterations:    cfg.Orchestrator.MaxIterations,
		GroupContextTool: "get_group_context",
	}

	router := &chat.Router{Orchestrator: orchestrator}

	// Cloud backends in config order, Ollama as the final fallback
	for _, backendCfg := range cfg.Backends {
		if p, ok := providers[backendCfg.ID]; ok {
			router.Backends = append(router.Backends, chat.Backend{Name: backendCfg.ID, Provider: p})
		}
	}
	if p, ok := providers["ollama"]; ok {
		router.Backends = append(router.Backends, chat.Backend{Name: "ollama", Provider: p})
	}

	return router
}

func runREPL(store *storage.HistoryStore, router *chat.Router) {
	ctx := context.Background()
	rc := &model.RequestContext{UserID: localOwnerID, ChatID: localOwnerID}

	fmt.Printf("FogMoe %s - type a message, /clear to archive, /history to list archives, /quit to exit\n", Version)

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch line {
		case "/quit", "/exit":
			return
		case "/clear":
			snap, err := store.ArchiveNow(ctx, localOwnerID)
			if err != nil {
				fmt.Printf("Failed to archive conversation: %v\n", err)
			} else if snap == nil {
				fmt.Println("Nothing to archive.")
			} else {
				fmt.Printf("Conversation archived (%s).\n", snap.ID)
			}
			continue
		case "/history":
			printArchives(ctx, store)
			continue
		}

		handleMessage(ctx, store, router, rc, line)
	}
}

func handleMessage(ctx context.Context, store *storage.HistoryStore, router *chat.Router, rc *model.RequestContext, text string) {
	appendRes, err := store.Append(ctx, localOwnerID, model.Message{Role: model.RoleUser, Content: text})
	if err != nil {
		fmt.Printf("Failed to save message: %v\n", err)
		return
	}
	if appendRes.Archived {
		fmt.Println("(conversation grew too large and was archived; starting fresh)")
	} else if appendRes.Warning == storage.WarningNearLimit {
		fmt.Println("(conversation is getting long; /clear archives it)")
	}

	history, err := store.Fetch(ctx, localOwnerID)
	if err != nil {
		fmt.Printf("Failed to load history: %v\n", err)
		return
	}

	reply, toolLog := router.Ask(ctx, history, rc)
	fmt.Println(reply)

	// Persist the tool exchange so follow-up turns see it
	for _, entry := range toolLog {
		msg := toolLogMessage(entry)
		if _, err := store.Append(ctx, localOwnerID, msg); err != nil {
			fmt.Printf("Failed to save tool log: %v\n", err)
			return
		}
	}
	if _, err := store.Append(ctx, localOwnerID, model.Message{Role: model.RoleAssistant, Content: reply}); err != nil {
		fmt.Printf("Failed to save reply: %v\n", err)
	}
}

// toolLogMessage converts an orchestrator log entry back into a transcript
// message for storage.
func toolLogMessage(entry model.ToolLogEntry) model.Message {
	if entry.Type == model.LogAssistantToolCall {
		return model.Message{
			Role: model.RoleAssistant,
			ToolCalls: []model.ToolCall{{
				ID:   entry.ToolCallID,
				Type: model.ToolCallTypeFunction,
				Function: model.ToolCallFunction{
					Name:      entry.ToolName,
					Arguments: entry.Arguments,
				},
			}},
		}
	}
	return model.Message{
		Role:       model.RoleTool,
		Content:    entry.Result,
		ToolCallID: entry.ToolCallID,
		Name:       entry.ToolName,
	}
}

func printArchives(ctx context.Context, store *storage.HistoryStore) {
	archives, err := store.ListArchives(ctx, localOwnerID)
	if err != nil {
		fmt.Printf("Failed to list archives: %v\n", err)
		return
	}
	if len(archives) == 0 {
		fmt.Println("No archived conversations.")
		return
	}
	for _, a := range archives {
		msgs, err := a.Messages()
		count := "?"
		if err == nil {
			count = fmt.Sprintf("%d", len(msgs))
		}
		fmt.Printf("%s  %s  %s messages\n", a.CreatedAt.Format("2006-01-02 15:04"), a.ID, count)
	}
}
