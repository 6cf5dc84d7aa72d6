package scixtract

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// OllamaSettings configures the AI service connection.
type OllamaSettings struct {
	BaseURL     string  `yaml:"base_url"`
	Model       string  `yaml:"model"`
	TimeoutSecs int     `yaml:"timeout_secs"`
	Temperature float64 `yaml:"temperature"`
	TopP        float64 `yaml:"top_p"`
	NumCtx      int     `yaml:"num_ctx"`
}

// ExtractionSettings configures output handling.
type ExtractionSettings struct {
	OutputDir       string `yaml:"output_dir"`
	UpdateKnowledge bool   `yaml:"update_knowledge"`
	SaveMarkdown    bool   `yaml:"save_markdown"`
}

// KnowledgeSettings configures the knowledge store.
type KnowledgeSettings struct {
	DBPath           string `yaml:"db_path"`
	MaxSearchResults int    `yaml:"max_search_results"`
}

// Config is the root application configuration.
type Config struct {
	Ollama     OllamaSettings     `yaml:"ollama"`
	Extraction ExtractionSettings `yaml:"extraction"`
	Knowledge  KnowledgeSettings  `yaml:"knowledge"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Ollama: OllamaSettings{
			BaseURL:     "http://localhost:11434",
			Model:       "qwen2.5:7b",
			TimeoutSecs: 120,
			Temperature: 0.1,
			TopP:        0.9,
			NumCtx:      8192,
		},
		Extraction: ExtractionSettings{
			OutputDir:       "extractions",
			UpdateKnowledge: true,
			SaveMarkdown:    true,
		},
		Knowledge: KnowledgeSettings{
			DBPath:           "knowledge.db",
			MaxSearchResults: 20,
		},
	}
}

// LoadConfig reads configuration from path. An empty path searches
// ./scixtract.yaml then ~/.config/scixtract/config.yaml; a missing file
// yields defaults, not an error. Environment variables override the file.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, err
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)
	return cfg, nil
}

// SaveConfig writes the config to path, creating directories as needed.
func SaveConfig(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ClientConfig converts the Ollama section into a client configuration.
func (c *Config) ClientConfig() ClientConfig {
	return ClientConfig{
		BaseURL:     c.Ollama.BaseURL,
		Model:       c.Ollama.Model,
		Timeout:     time.Duration(c.Ollama.TimeoutSecs) * time.Second,
		Temperature: c.Ollama.Temperature,
		TopP:        c.Ollama.TopP,
		NumCtx:      c.Ollama.NumCtx,
	}
}

func findConfigFile() string {
	if _, err := os.Stat("scixtract.yaml"); err == nil {
		return "scixtract.yaml"
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	userPath := filepath.Join(home, ".config", "scixtract", "config.yaml")
	if _, err := os.Stat(userPath); err == nil {
		return userPath
	}
	return ""
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("OLLAMA_BASE_URL"); v != "" {
		cfg.Ollama.BaseURL = v
	}
	if v := os.Getenv("OLLAMA_MODEL"); v != "" {
		cfg.Ollama.Model = v
	}
	if v := os.Getenv("OLLAMA_TIMEOUT"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			cfg.Ollama.TimeoutSecs = secs
		}
	}
	if v := os.Getenv("SCIXTRACT_OUTPUT_DIR"); v != "" {
		cfg.Extraction.OutputDir = v
	}
	if v := os.Getenv("SCIXTRACT_KNOWLEDGE_DB"); v != "" {
		cfg.Knowledge.DBPath = v
	}
	if v := os.Getenv("SCIXTRACT_UPDATE_KNOWLEDGE"); v != "" {
		cfg.Extraction.UpdateKnowledge = isTruthy(v)
	}
}

// applyDefaults fills zero values left by a sparse config file.
func applyDefaults(cfg *Config) {
	def := DefaultConfig()
	if cfg.Ollama.BaseURL == "" {
		cfg.Ollama.BaseURL = def.Ollama.BaseURL
	}
	if cfg.Ollama.Model == "" {
		cfg.Ollama.Model = def.Ollama.Model
	}
	if cfg.Ollama.TimeoutSecs == 0 {
		cfg.Ollama.TimeoutSecs = def.Ollama.TimeoutSecs
	}
	if cfg.Ollama.Temperature == 0 {
		cfg.Ollama.Temperature = def.Ollama.Temperature
	}
	if cfg.Ollama.TopP == 0 {
		cfg.Ollama.TopP = def.Ollama.TopP
	}
	if cfg.Ollama.NumCtx == 0 {
		cfg.Ollama.NumCtx = def.Ollama.NumCtx
	}
	if cfg.Extraction.OutputDir == "" {
		cfg.Extraction.OutputDir = def.Extraction.OutputDir
	}
	if cfg.Knowledge.DBPath == "" {
		cfg.Knowledge.DBPath = def.Knowledge.DBPath
	}
	if cfg.Knowledge.MaxSearchResults == 0 {
		cfg.Knowledge.MaxSearchResults = def.Knowledge.MaxSearchResults
	}
}

func isTruthy(s string) bool {
	switch s {
	case "1", "true", "yes", "on", "TRUE", "True", "YES", "ON":
		return true
	}
	return false
}
