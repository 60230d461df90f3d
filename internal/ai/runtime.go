package ai

import "context"

// Runtime is a minimal interface implemented by narration backends
// such as the Gemini API and local runtimes (e.g., Ollama).
// It aligns to the shared request/response types in this package.
type Runtime interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)
}

// Provider identifiers used across the CLI for selection.
const (
	ProviderGemini = "gemini"
	ProviderGoogle = "google"
	ProviderOllama = "ollama"
	ProviderLocal  = "local"
)
