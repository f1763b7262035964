package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
)

type SystemConfig struct {
	DataDirectory string `toml:"data_directory"`
}

type OllamaConfig struct {
	Host         string `toml:"host"`
	DefaultModel string `toml:"default_model"`
}

// BackendConfig describes one cloud backend entry in the router order.
type BackendConfig struct {
	ID      string `toml:"id"`
	Name    string `toml:"name"`
	BaseURL string `toml:"base_url"`
	Model   string `toml:"model"`
	Enabled bool   `toml:"enabled"`
}

// HistoryConfig bounds the per-conversation message log.
type HistoryConfig struct {
	SoftCeilingBytes int `toml:"soft_ceiling_bytes"`
	HardCeilingBytes int `toml:"hard_ceiling_bytes"`
	ArchiveRetention int `toml:"archive_retention"`
}

// OrchestratorConfig tunes the tool-calling loop.
type OrchestratorConfig struct {
	MaxIterations int    `toml:"max_iterations"`
	SystemPrompt  string `toml:"system_prompt"`
}

type SearchConfig struct {
	Endpoint string `toml:"endpoint"`
}

// SecurityConfig selects how API credentials are stored on disk.
type SecurityConfig struct {
	Method     string `toml:"method"` // "plaintext" or "ssh_key"
	SSHKeyPath string `toml:"ssh_key_path,omitempty"`
}

type UserConfig struct {
	Ollama       OllamaConfig       `toml:"ollama"`
	Backends     []BackendConfig    `toml:"backends"`
	History      HistoryConfig      `toml:"history"`
	Orchestrator OrchestratorConfig `toml:"orchestrator"`
	Search       SearchConfig       `toml:"search"`
	Security     SecurityConfig     `toml:"security"`
}

type Config struct {
	DataDirectory   string
	OllamaHost      string
	DefaultModel    string
	Backends        []BackendConfig
	History         HistoryConfig
	Orchestrator    OrchestratorConfig
	Search          SearchConfig
	CredentialStore *CredentialStore
}

var Debug = false
var DebugLog *log.Logger

func (c *Config) OllamaURL() string {
	return c.OllamaHost
}

func (c *Config) Model() string {
	return c.DefaultModel
}

func (c *Config) DataDir() string {
	return ExpandPath(c.DataDirectory)
}

func (c *Config) applyEnvOverrides() {
	if host := os.Getenv("FOGMOE_OLLAMA_HOST"); host != "" {
		c.OllamaHost = host
	}
	if model := os.Getenv("FOGMOE_OLLAMA_MODEL"); model != "" {
		c.DefaultModel = model
	}
	if dataDir := os.Getenv("FOGMOE_DATA_DIR"); dataDir != "" {
		c.DataDirectory = dataDir
	}
}

func CheckDebug() bool {
	debug := os.Getenv("FOGMOE_DEBUG")
	return debug == "true" || debug == "1"
}

func InitDebugLog(dataDir string) {
	if !CheckDebug() {
		return
	}

	Debug = true
	logPath := filepath.Join(dataDir, "debug.log")

	// 0600: debug output may contain message content
	f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not open debug log at %s: %v\n", logPath, err)
		return
	}

	DebugLog = log.New(f, "", log.Ldate|log.Ltime|log.Lmicroseconds|log.Lshortfile)
	DebugLog.Printf("=== Debug logging started (FOGMOE_DEBUG=%s) ===", os.Getenv("FOGMOE_DEBUG"))
	DebugLog.Printf("Log path: %s", logPath)
}

func Load() (*Config, error) {
	cfg := defaultConfig()

	systemCfg, err := LoadSystemConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load system config: %w", err)
	}
	cfg.DataDirectory = systemCfg.DataDirectory
	cfg.applyEnvOverrides()

	dataDir := cfg.DataDir()
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := EnsureDataDirPermissions(dataDir); err != nil {
		return nil, fmt.Errorf("failed to set data directory permissions: %w", err)
	}

	userCfg, err := LoadUserConfig(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	}
	cfg.OllamaHost = userCfg.Ollama.Host
	cfg.DefaultModel = userCfg.Ollama.DefaultModel
	cfg.Backends = userCfg.Backends
	cfg.History = normalizeHistory(userCfg.History)
	cfg.Orchestrator = normalizeOrchestrator(userCfg.Orchestrator)
	cfg.Search = userCfg.Search
	cfg.applyEnvOverrides()

	store, err := loadCredentialStore(userCfg.Security, dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load credentials: %w", err)
	}
	cfg.CredentialStore = store

	return cfg, nil
}

func loadCredentialStore(sec SecurityConfig, dataDir string) (*CredentialStore, error) {
	method := SecurityMethod(sec.Method)
	if method == "" {
		method = SecurityPlainText
	}

	store := NewCredentialStore(method, ExpandPath(sec.SSHKeyPath))
	if err := store.Load(dataDir); err != nil {
		return nil, err
	}
	return store, nil
}

func normalizeHistory(h HistoryConfig) HistoryConfig {
	d := DefaultUserConfig().History
	if h.SoftCeilingBytes <= 0 {
		h.SoftCeilingBytes = d.SoftCeilingBytes
	}
	if h.HardCeilingBytes <= 0 {
		h.HardCeilingBytes = d.HardCeilingBytes
	}
	if h.ArchiveRetention <= 0 {
		h.ArchiveRetention = d.ArchiveRetention
	}
	return h
}

func normalizeOrchestrator(o OrchestratorConfig) OrchestratorConfig {
	if o.MaxIterations <= 0 {
		o.MaxIterations = DefaultUserConfig().Orchestrator.MaxIterations
	}
	return o
}

func defaultConfig() *Config {
	user := DefaultUserConfig()
	return &Config{
		DataDirectory: "~/.local/share/fogmoe",
		OllamaHost:    user.Ollama.Host,
		DefaultModel:  user.Ollama.DefaultModel,
		History:       user.History,
		Orchestrator:  user.Orchestrator,
	}
}
