package scixtract

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Ollama.BaseURL != "http://localhost:11434" {
		t.Errorf("BaseURL = %q", cfg.Ollama.BaseURL)
	}
	if cfg.Ollama.Model != "qwen2.5:7b" {
		t.Errorf("Model = %q", cfg.Ollama.Model)
	}
	if !cfg.Extraction.UpdateKnowledge {
		t.Error("UpdateKnowledge should default true")
	}
	if cfg.Knowledge.MaxSearchResults != 20 {
		t.Errorf("MaxSearchResults = %d", cfg.Knowledge.MaxSearchResults)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `ollama:
  model: llama3.2
  timeout_secs: 60
extraction:
  output_dir: /tmp/out
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Ollama.Model != "llama3.2" {
		t.Errorf("Model = %q", cfg.Ollama.Model)
	}
	if cfg.Ollama.TimeoutSecs != 60 {
		t.Errorf("TimeoutSecs = %d", cfg.Ollama.TimeoutSecs)
	}
	if cfg.Extraction.OutputDir != "/tmp/out" {
		t.Errorf("OutputDir = %q", cfg.Extraction.OutputDir)
	}
	// Fields absent from the file keep their defaults.
	if cfg.Ollama.BaseURL != "http://localhost:11434" {
		t.Errorf("BaseURL = %q, want default", cfg.Ollama.BaseURL)
	}
	if cfg.Knowledge.DBPath != "knowledge.db" {
		t.Errorf("DBPath = %q, want default", cfg.Knowledge.DBPath)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v, want defaults for missing file", err)
	}
	if cfg.Ollama.Model != "qwen2.5:7b" {
		t.Errorf("Model = %q", cfg.Ollama.Model)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("OLLAMA_MODEL", "mistral")
	t.Setenv("OLLAMA_TIMEOUT", "30")
	t.Setenv("SCIXTRACT_KNOWLEDGE_DB", "/data/kb.db")
	t.Setenv("SCIXTRACT_UPDATE_KNOWLEDGE", "false")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Ollama.Model != "mistral" {
		t.Errorf("Model = %q", cfg.Ollama.Model)
	}
	if cfg.Ollama.TimeoutSecs != 30 {
		t.Errorf("TimeoutSecs = %d", cfg.Ollama.TimeoutSecs)
	}
	if cfg.Knowledge.DBPath != "/data/kb.db" {
		t.Errorf("DBPath = %q", cfg.Knowledge.DBPath)
	}
	if cfg.Extraction.UpdateKnowledge {
		t.Error("UpdateKnowledge should be overridden to false")
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.Ollama.Model = "custom-model"

	if err := SaveConfig(path, cfg); err != nil {
		t.Fatalf("SaveConfig() error = %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if loaded.Ollama.Model != "custom-model" {
		t.Errorf("Model = %q after round trip", loaded.Ollama.Model)
	}
}

func TestClientConfigConversion(t *testing.T) {
	cfg := DefaultConfig()
	cc := cfg.ClientConfig()
	if cc.Timeout != 120*time.Second {
		t.Errorf("Timeout = %v", cc.Timeout)
	}
	if cc.Model != cfg.Ollama.Model || cc.NumCtx != cfg.Ollama.NumCtx {
		t.Errorf("ClientConfig = %+v", cc)
	}
}

func TestIsTruthy(t *testing.T) {
	for _, v := range []string{"1", "true", "yes", "on", "TRUE"} {
		if !isTruthy(v) {
			t.Errorf("isTruthy(%q) = false", v)
		}
	}
	for _, v := range []string{"0", "false", "", "no"} {
		if isTruthy(v) {
			t.Errorf("isTruthy(%q) = true", v)
		}
	}
}
