package ai

import "testing"

func TestPresetCatalogGemini(t *testing.T) {
	m, ok := PresetCatalog("gemini")
	if !ok || len(m) == 0 {
		t.Fatalf("expected gemini preset to be available")
	}
	if _, exists := m["gemini-1.5-flash"]; !exists {
		t.Fatalf("expected gemini-1.5-flash in gemini preset")
	}
	if _, exists := m["gemini-1.5-pro"]; !exists {
		t.Fatalf("expected gemini-1.5-pro in gemini preset")
	}
	if _, ok := PresetCatalog("anthropic"); ok {
		t.Fatalf("expected unknown provider to be false")
	}
}

func TestRecommendModel(t *testing.T) {
	if name, ok := RecommendModel("gemini", "cheap"); !ok || name != "gemini-1.5-flash-8b" {
		t.Fatalf("unexpected recommendation for gemini/cheap: %s", name)
	}
	if name, ok := RecommendModel("", "balanced"); !ok || name != "gemini-2.0-flash" {
		t.Fatalf("unexpected recommendation for default/balanced: %s", name)
	}
	if name, ok := RecommendModel("google", "high-context"); !ok || name != "gemini-1.5-pro" {
		t.Fatalf("unexpected recommendation for google/high-context: %s", name)
	}
	if name, ok := RecommendModel("ollama", "cheap"); !ok || name != "llama3.1:8b-instruct" {
		t.Fatalf("unexpected recommendation for ollama/cheap: %s", name)
	}
	if _, ok := RecommendModel("", "unknown"); ok {
		t.Fatalf("expected unknown tier to be false")
	}
}
