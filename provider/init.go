package provider

import (
	"fogmoe/config"
	"fogmoe/model"
)

// InitializeProviders creates ALL provider instances for the application.
//
// This function is the single entry point for provider initialization.
// It handles:
//   - Creating the Ollama provider (if reachable config exists)
//   - Creating all enabled cloud backends from config
//   - Loading API keys from the credential store
//   - Graceful degradation (logs warnings but doesn't fail)
//
// The provider package owns the complete provider lifecycle, so all
// initialization logic lives here, not in config or main.
//
// Returns a map of backend ID to provider instance. Backends that fail to
// initialize are simply absent from the map.
func InitializeProviders(cfg *config.Config) map[string]model.Provider {
	providers := make(map[string]model.Provider)

	// Ollama first (special case - no API key, always attempted)
	if ollamaProvider := initializeOllama(cfg); ollamaProvider != nil {
		providers["ollama"] = ollamaProvider
		if config.Debug {
			config.DebugLog.Printf("[Provider] Initialized Ollama provider")
		}
	} else if config.Debug {
		config.DebugLog.Printf("[Provider] Ollama provider initialization failed (offline mode)")
	}

	for _, backendCfg := range cfg.Backends {
		if !backendCfg.Enabled {
			continue
		}

		apiKey := ""
		if cfg.CredentialStore != nil {
			apiKey = cfg.CredentialStore.Get(backendCfg.ID)
		}

		providerType := MapProviderIDToType(backendCfg.ID)

		p, err := NewProvider(Config{
			Type:    providerType,
			BaseURL: backendCfg.BaseURL,
			APIKey:  apiKey,
			Model:   backendCfg.Model,
		})

		if err != nil {
			// Log warning but don't fail - allow the app to start
			if config.Debug {
				config.DebugLog.Printf("[Provider] Warning: failed to initialize backend %s: %v", backendCfg.ID, err)
			}
			continue
		}

		providers[backendCfg.ID] = p
		if config.Debug {
			config.DebugLog.Printf("[Provider] Initialized backend: %s (type: %s)", backendCfg.ID, providerType)
		}
	}

	return providers
}

// initializeOllama creates the Ollama provider instance.
// Returns nil if initialization fails (allows offline mode).
func initializeOllama(cfg *config.Config) model.Provider {
	p, err := NewProvider(Config{
		Type:    ProviderTypeOllama,
		BaseURL: cfg.OllamaURL(),
		Model:   cfg.Model(),
	})
	if err != nil {
		if config.Debug {
			config.DebugLog.Printf("[Provider] Ollama provider creation failed: %v", err)
		}
		return nil
	}

	return p
}
