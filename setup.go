package scixtract

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// ModelInfo describes a model the setup command can recommend.
type ModelInfo struct {
	Name        string
	Size        string
	Description string
	Recommended bool
}

// RecommendedModels lists models known to work well for academic text
// processing, largest-quality first among the recommended ones.
func RecommendedModels() []ModelInfo {
	return []ModelInfo{
		{
			Name:        "qwen2.5:7b",
			Size:        "4.7GB",
			Description: "Good balance of speed and quality for text cleanup and JSON output",
			Recommended: true,
		},
		{
			Name:        "qwen2.5:32b-instruct-q4_K_M",
			Size:        "19GB",
			Description: "High-quality model with excellent JSON output for keyword extraction",
			Recommended: true,
		},
		{
			Name:        "llama3.2",
			Size:        "2.0GB",
			Description: "Small and fast, acceptable for text fixing",
			Recommended: false,
		},
		{
			Name:        "mistral",
			Size:        "4.1GB",
			Description: "Fast general-purpose model with good JSON output",
			Recommended: false,
		},
	}
}

// SetupReport is the result of probing the local Ollama installation.
// Setup only ever talks to the AI service collaborator; it never touches
// the extraction pipeline.
type SetupReport struct {
	BinaryVersion   string
	BinaryInstalled bool
	ServiceRunning  bool
	InstalledModels []string
	ModelReady      bool
}

// CheckSetup probes the Ollama binary, service, and model availability for
// the given client.
func CheckSetup(ctx context.Context, client *Client) SetupReport {
	report := SetupReport{}

	if version, err := ollamaVersion(); err == nil {
		report.BinaryInstalled = true
		report.BinaryVersion = version
	}

	models, err := client.ListModels(ctx)
	if err != nil {
		return report
	}
	report.ServiceRunning = true
	report.InstalledModels = models
	report.ModelReady = client.IsAvailable(ctx)
	return report
}

func ollamaVersion() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	out, err := exec.CommandContext(ctx, "ollama", "--version").Output()
	if err != nil {
		return "", fmt.Errorf("ollama not found: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}
