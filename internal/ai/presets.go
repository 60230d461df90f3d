package ai

// PresetCatalog returns a built-in curated catalog for a known provider.
// The catalog can be merged or used to replace the in-memory catalog.
func PresetCatalog(provider string) (map[string]ModelInfo, bool) {
	switch provider {
	case ProviderGemini, ProviderGoogle:
		// Curated minimal set; values illustrative and aligned with models.go defaults
		return map[string]ModelInfo{
			"gemini-1.5-flash": {
				Name:          "gemini-1.5-flash",
				ContextTokens: 1000000,
				InputPerK:     0.000075,
				OutputPerK:    0.0003,
			},
			"gemini-1.5-flash-8b": {
				Name:          "gemini-1.5-flash-8b",
				ContextTokens: 1000000,
				InputPerK:     0.0000375,
				OutputPerK:    0.00015,
			},
			"gemini-1.5-pro": {
				Name:          "gemini-1.5-pro",
				ContextTokens: 2000000,
				InputPerK:     0.00125,
				OutputPerK:    0.005,
			},
			"gemini-2.0-flash": {
				Name:          "gemini-2.0-flash",
				ContextTokens: 1000000,
				InputPerK:     0.0001,
				OutputPerK:    0.0004,
			},
		}, true
	case ProviderOllama, ProviderLocal:
		// Local-friendly defaults that commonly exist in Ollama registries
		return map[string]ModelInfo{
			"llama3:latest": {
				Name:          "llama3:latest",
				ContextTokens: 8192,
				InputPerK:     0.0,
				OutputPerK:    0.0,
			},
			"llama3.1:8b-instruct": {
				Name:          "llama3.1:8b-instruct",
				ContextTokens: 8192,
				InputPerK:     0.0,
				OutputPerK:    0.0,
			},
			"mistral:7b-instruct": {
				Name:          "mistral:7b-instruct",
				ContextTokens: 8192,
				InputPerK:     0.0,
				OutputPerK:    0.0,
			},
			"phi3:mini-128k-instruct": {
				Name:          "phi3:mini-128k-instruct",
				ContextTokens: 128000,
				InputPerK:     0.0,
				OutputPerK:    0.0,
			},
		}, true
	default:
		return nil, false
	}
}

// RecommendModel returns a recommended model name for a given tier and provider.
// If provider is empty, defaults to "gemini". Tiers: cheap|balanced|high-context.
func RecommendModel(provider, tier string) (string, bool) {
	if provider == "" {
		provider = ProviderGemini
	}
	switch tier {
	case "cheap":
		switch provider {
		case ProviderGemini, ProviderGoogle:
			return "gemini-1.5-flash-8b", true
		case ProviderOllama, ProviderLocal:
			return "llama3.1:8b-instruct", true
		}
	case "balanced":
		switch provider {
		case ProviderGemini, ProviderGoogle:
			return "gemini-2.0-flash", true
		case ProviderOllama, ProviderLocal:
			return "mistral:7b-instruct", true
		}
	case "high-context":
		switch provider {
		case ProviderGemini, ProviderGoogle:
			return "gemini-1.5-pro", true // very large context
		case ProviderOllama, ProviderLocal:
			return "phi3:mini-128k-instruct", true
		}
	}
	return "", false
}
