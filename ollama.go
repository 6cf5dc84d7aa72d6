package scixtract

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// ClientConfig configures the Ollama client.
type ClientConfig struct {
	// BaseURL is the Ollama API base URL (default: http://localhost:11434).
	BaseURL string

	// Model is the text-generation model to use (default: qwen2.5:7b).
	Model string

	// Timeout is the per-request timeout (default: 120s).
	Timeout time.Duration

	// Sampling options. Zero values take the defaults below.
	Temperature float64
	TopP        float64
	NumCtx      int
}

// Client is a thin HTTP client to a local Ollama instance. It is stateless
// between calls apart from the reusable connection.
type Client struct {
	cfg        ClientConfig
	httpClient *http.Client
}

// NewClient creates an Ollama client with defaults applied.
func NewClient(cfg ClientConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:11434"
	}
	if cfg.Model == "" {
		cfg.Model = "qwen2.5:7b"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.1
	}
	if cfg.TopP == 0 {
		cfg.TopP = 0.9
	}
	if cfg.NumCtx == 0 {
		cfg.NumCtx = 8192
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.cfg.Model
}

// GenerateOptions tunes a single generation call.
type GenerateOptions struct {
	// System is an optional system prompt.
	System string

	// JSON requests strict JSON output from the model. Passes that expect
	// structured data must set it.
	JSON bool
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	System  string          `json:"system,omitempty"`
	Format  string          `json:"format,omitempty"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
	NumCtx      int     `json:"num_ctx"`
}

type generateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

// Generate sends a prompt to the model and returns its text response.
// Empty or whitespace-only prompts are returned unchanged without touching
// the service. A timed-out call is retried once with the prompt halved;
// connection and timeout failures surface as ErrServiceUnavailable.
func (c *Client) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return prompt, nil
	}

	text, err := c.generateOnce(ctx, prompt, opts)
	if err == nil {
		return text, nil
	}

	// One retry on timeout with a shorter prompt. Parse errors are not
	// retried: the fallback is cheaper than re-querying a model that
	// already failed to format correctly.
	if isTimeout(err) && len(prompt) > 1 {
		return c.generateOnce(ctx, truncateRunes(prompt, len(prompt)/2), opts)
	}
	return "", err
}

func (c *Client) generateOnce(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	req := generateRequest{
		Model:  c.cfg.Model,
		Prompt: prompt,
		System: opts.System,
		Stream: false,
		Options: generateOptions{
			Temperature: c.cfg.Temperature,
			TopP:        c.cfg.TopP,
			NumCtx:      c.cfg.NumCtx,
		},
	}
	if opts.JSON {
		req.Format = "json"
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		// Both errors stay in the chain: callers match the sentinel,
		// isTimeout still sees the transport error underneath.
		return "", fmt.Errorf("%w: %w", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%w: status %d: %s", ErrServiceUnavailable, resp.StatusCode, string(respBody))
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrMalformedResponse, err)
	}
	if genResp.Error != "" {
		return "", fmt.Errorf("%w: %s", ErrServiceUnavailable, genResp.Error)
	}

	return strings.TrimSpace(genResp.Response), nil
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// ListModels returns the names of the models installed on the service.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/api/tags", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrServiceUnavailable, resp.StatusCode)
	}

	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrMalformedResponse, err)
	}

	names := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

// IsAvailable reports whether the service answers and the configured model
// is installed (exact match or name prefix, so "qwen2.5:7b" matches
// "qwen2.5:7b-instruct").
func (c *Client) IsAvailable(ctx context.Context) bool {
	names, err := c.ListModels(ctx)
	if err != nil {
		return false
	}
	for _, name := range names {
		if strings.Contains(name, c.cfg.Model) || strings.HasPrefix(name, c.cfg.Model) {
			return true
		}
	}
	return false
}

// extractJSON parses a JSON value from model output, tolerating fenced code
// blocks and trailing commas.
func extractJSON(content string, v any) error {
	content = strings.TrimSpace(content)

	if startIdx := strings.Index(content, "```json"); startIdx != -1 {
		startIdx += 7
		if endIdx := strings.LastIndex(content, "```"); endIdx > startIdx {
			content = content[startIdx:endIdx]
		}
	} else if startIdx := strings.Index(content, "```"); startIdx != -1 {
		startIdx += 3
		if endIdx := strings.LastIndex(content[startIdx:], "```"); endIdx != -1 {
			content = content[startIdx : startIdx+endIdx]
		}
	}

	content = strings.TrimSpace(content)
	if err := json.Unmarshal([]byte(content), v); err != nil {
		content = strings.ReplaceAll(content, ",]", "]")
		content = strings.ReplaceAll(content, ",}", "}")
		if err := json.Unmarshal([]byte(content), v); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
	}
	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var nerr net.Error
	return errors.As(err, &nerr) && nerr.Timeout()
}

// truncateRunes shortens s to at most n bytes without splitting a rune.
func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !isRuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
