package ai

import (
	"encoding/json"
	"os"
)

// Model metadata and simple pricing helpers for UX warnings.
// Prices are illustrative and should be verified against Google's docs.

type ModelInfo struct {
	Name          string
	ContextTokens int     // approximate context window
	InputPerK     float64 // USD per 1K input tokens
	OutputPerK    float64 // USD per 1K output tokens
}

var models = map[string]ModelInfo{
	// Google Gemini API models
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
	"gemini-2.0-flash-lite": {
		Name:          "gemini-2.0-flash-lite",
		ContextTokens: 1000000,
		InputPerK:     0.000075,
		OutputPerK:    0.0003,
	},
	// Common local (Ollama) tags
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
	"llama3.1:70b-instruct": {
		Name:          "llama3.1:70b-instruct",
		ContextTokens: 8192,
		InputPerK:     0.0,
		OutputPerK:    0.0,
	},
	"mistral-nemo:latest": {
		Name:          "mistral-nemo:latest",
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
	"phi3:mini-4k-instruct": {
		Name:          "phi3:mini-4k-instruct",
		ContextTokens: 4096,
		InputPerK:     0.0,
		OutputPerK:    0.0,
	},
	"phi3:mini-128k-instruct": {
		Name:          "phi3:mini-128k-instruct",
		ContextTokens: 128000,
		InputPerK:     0.0,
		OutputPerK:    0.0,
	},
}

// LookupModel returns ModelInfo and ok flag.
func LookupModel(name string) (ModelInfo, bool) {
	mi, ok := models[name]
	return mi, ok
}

// EstimateCostUSD estimates total cost in USD for given tokens using model pricing.
// If the model is unknown, returns 0 and ok=false.
func EstimateCostUSD(model string, promptTokens, completionTokens int) (float64, bool) {
	mi, ok := LookupModel(model)
	if !ok {
		return 0, false
	}
	inCost := (float64(promptTokens) / 1000.0) * mi.InputPerK
	outCost := (float64(completionTokens) / 1000.0) * mi.OutputPerK
	return inCost + outCost, true
}

// ---- Sync/override helpers ----

// LoadCatalogFromJSON loads a JSON object map[string]ModelInfo from a file path.
// Example JSON entry:
// { "gemini-1.5-flash": {"Name":"gemini-1.5-flash","ContextTokens":1000000,"InputPerK":0.000075,"OutputPerK":0.0003} }
func LoadCatalogFromJSON(path string) (map[string]ModelInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	dec := json.NewDecoder(f)
	var m map[string]ModelInfo
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}
	return m, nil
}

// OverrideCatalog replaces the in-memory catalog entirely.
func OverrideCatalog(m map[string]ModelInfo) {
	if m == nil {
		return
	}
	models = m
}

// MergeCatalog merges/overrides entries in the in-memory catalog.
func MergeCatalog(m map[string]ModelInfo) {
	if m == nil {
		return
	}
	for k, v := range m {
		models[k] = v
	}
}

// Catalog returns a shallow copy of the current model catalog.
func Catalog() map[string]ModelInfo {
	out := make(map[string]ModelInfo, len(models))
	for k, v := range models {
		out[k] = v
	}
	return out
}
