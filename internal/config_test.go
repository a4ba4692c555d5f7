package internal

import (
	"os"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	scope := NewProjectScope(t.TempDir())

	cfg, err := LoadConfig(scope)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Recommend.TopK != DefaultTopK {
		t.Errorf("expected top_k %d, got %d", DefaultTopK, cfg.Recommend.TopK)
	}
	if cfg.Log.Level != "warn" || cfg.Log.Format != "console" {
		t.Errorf("unexpected log defaults: %+v", cfg.Log)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("expected addr :8080, got %q", cfg.Server.Addr)
	}
}

func TestSaveAndLoadConfig(t *testing.T) {
	scope := NewProjectScope(t.TempDir())
	if err := os.MkdirAll(scope.StatePath, 0755); err != nil {
		t.Fatal(err)
	}

	cfg := DefaultConfig()
	cfg.Recommend.TopK = 3
	cfg.Catalog.Path = "places.yaml"
	cfg.Providers["local"] = ProviderConfig{Kind: "openai", BaseURL: "http://localhost:11434/v1", Model: "llama3"}
	cfg.DefaultProvider = "local"

	if err := SaveConfig(scope, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := LoadConfig(scope)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Recommend.TopK != 3 {
		t.Errorf("expected top_k 3, got %d", got.Recommend.TopK)
	}
	if got.Catalog.Path != "places.yaml" {
		t.Errorf("expected catalog path, got %q", got.Catalog.Path)
	}
	if got.Providers["local"].Model != "llama3" || got.DefaultProvider != "local" {
		t.Errorf("providers not round-tripped: %+v", got.Providers)
	}
}

func TestLoadConfigPartialKeepsDefaults(t *testing.T) {
	scope := NewProjectScope(t.TempDir())
	if err := os.MkdirAll(scope.StatePath, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(scope.ConfigPath(), []byte("log:\n  level: debug\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(scope)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("expected debug, got %q", cfg.Log.Level)
	}
	if cfg.Recommend.TopK != DefaultTopK {
		t.Errorf("expected default top_k, got %d", cfg.Recommend.TopK)
	}
	if cfg.Providers == nil {
		t.Error("providers map should be initialized")
	}
}

func TestLoadConfigRejectsNegativeTopK(t *testing.T) {
	scope := NewProjectScope(t.TempDir())
	if err := os.MkdirAll(scope.StatePath, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(scope.ConfigPath(), []byte("recommend:\n  top_k: -1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadConfig(scope); err == nil {
		t.Error("expected error for negative top_k")
	}
}

func TestLoadConfigRejectsInvalidSettings(t *testing.T) {
	tests := map[string]string{
		"log format":    "log:\n  format: xml\n",
		"provider kind": "providers:\n  local:\n    kind: mystery\n    model: x\n",
		"top_k too big": "recommend:\n  top_k: 1000\n",
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			scope := NewProjectScope(t.TempDir())
			if err := os.MkdirAll(scope.StatePath, 0755); err != nil {
				t.Fatal(err)
			}
			if err := os.WriteFile(scope.ConfigPath(), []byte(body), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadConfig(scope); err == nil {
				t.Errorf("expected error for %s", name)
			}
		})
	}
}
