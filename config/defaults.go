package config

func DefaultSystemConfig() *SystemConfig {
	return &SystemConfig{
		DataDirectory: "~/.local/share/fogmoe",
	}
}

func DefaultUserConfig() *UserConfig {
	return &UserConfig{
		Ollama: OllamaConfig{
			Host:         "http://localhost:11434",
			DefaultModel: "llama3.1:latest",
		},
		History: HistoryConfig{
			SoftCeilingBytes: 110000,
			HardCeilingBytes: 120000,
			ArchiveRetention: 100,
		},
		Orchestrator: OrchestratorConfig{
			MaxIterations: 10,
		},
		Security: SecurityConfig{
			Method: string(SecurityPlainText),
		},
	}
}

func GenerateSystemConfigTemplate() string {
	return `# FogMoe System Configuration
# Location: ~/.config/fogmoe/settings.toml
# This file uses TOML format: https://toml.io

# Directory where conversation history and user config are stored
data_directory = "~/.local/share/fogmoe"
`
}

func GenerateUserConfigTemplate() string {
	return `# FogMoe User Configuration
# Location: <data_directory>/config.toml
# This file uses TOML format: https://toml.io

[ollama]
# Ollama server URL
host = "http://localhost:11434"

# Model used when no cloud backend answers
default_model = "llama3.1:latest"

[history]
# Conversation log limits, in bytes of encoded JSON
soft_ceiling_bytes = 110000
hard_ceiling_bytes = 120000

# How many archived snapshots to keep per conversation
archive_retention = 100

[orchestrator]
# Maximum tool-call round trips per request
max_iterations = 10

# System prompt prepended to every conversation (optional)
system_prompt = ""

[search]
# Serper search endpoint; the API key lives in credentials.toml
# under the "serper" entry
endpoint = "https://google.serper.dev/search"

[security]
# Credential storage: "plaintext" or "ssh_key"
method = "plaintext"
# ssh_key_path = "~/.ssh/fogmoe_ed25519"

# Cloud backends, tried in order. API keys live in credentials.toml
# keyed by backend id.
#
# [[backends]]
# id = "openrouter"
# name = "OpenRouter"
# base_url = "https://openrouter.ai/api/v1"
# model = "meta-llama/llama-3.3-70b-instruct"
# enabled = true
#
# [[backends]]
# id = "anthropic"
# name = "Anthropic"
# base_url = "https://api.anthropic.com"
# model = "claude-sonnet-4-5"
# enabled = false
`
}
