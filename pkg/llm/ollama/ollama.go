// Package ollama provides an llm.Provider backed by a local Ollama server's
// generate API.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/entrhq/recall/pkg/llm"
)

const (
	// DefaultBaseURL is the default Ollama server address
	DefaultBaseURL = "http://127.0.0.1:11434"

	// defaultTimeout bounds a single generate call; local models can be
	// slow to load on first use.
	defaultTimeout = 60 * time.Second
)

// Provider implements the llm.Provider interface against Ollama's
// POST /api/generate endpoint with streaming disabled.
type Provider struct {
	httpClient *http.Client
	baseURL    string
	model      string
}

// ProviderOption is a function that configures a Provider.
type ProviderOption func(*Provider)

// WithModel sets the model to use for generation.
func WithModel(model string) ProviderOption {
	return func(p *Provider) {
		p.model = model
	}
}

// WithBaseURL sets a custom Ollama server address.
func WithBaseURL(baseURL string) ProviderOption {
	return func(p *Provider) {
		p.baseURL = baseURL
	}
}

// WithHTTPClient sets a custom HTTP client, mainly for tests.
func WithHTTPClient(client *http.Client) ProviderOption {
	return func(p *Provider) {
		p.httpClient = client
	}
}

// NewProvider creates an Ollama provider. The default model is "llama3" and
// the default server is DefaultBaseURL.
func NewProvider(opts ...ProviderOption) *Provider {
	p := &Provider{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    DefaultBaseURL,
		model:      "llama3",
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// generateRequest is the wire format for /api/generate.
type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	System  string          `json:"system,omitempty"`
	Stream  bool            `json:"stream"`
	Options *requestOptions `json:"options,omitempty"`
}

type requestOptions struct {
	TopP          float64 `json:"top_p,omitempty"`
	TopK          int     `json:"top_k,omitempty"`
	RepeatPenalty float64 `json:"repeat_penalty,omitempty"`
	MinP          float64 `json:"min_p,omitempty"`
	Seed          *int    `json:"seed,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Generate implements llm.Provider.
func (p *Provider) Generate(ctx context.Context, prompt string, opts *llm.Options) (string, error) {
	reqBody := generateRequest{
		Model:  p.model,
		Prompt: prompt,
		Stream: false,
	}
	if opts != nil {
		reqBody.System = opts.SystemPrompt
		ro := &requestOptions{
			TopP:          opts.TopP,
			TopK:          opts.TopK,
			RepeatPenalty: opts.RepeatPenalty,
			MinP:          opts.MinP,
		}
		if opts.Seed >= 0 {
			seed := opts.Seed
			ro.Seed = &seed
		}
		reqBody.Options = ro
	}

	payload, err := json.Marshal(&reqBody)
	if err != nil {
		return "", fmt.Errorf("ollama: encode request: %w", err)
	}

	url := strings.TrimSuffix(p.baseURL, "/") + "/api/generate"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("ollama: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama: generate request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("ollama: generate returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("ollama: decode response: %w", err)
	}
	return out.Response, nil
}

// GetModel returns the model name being used.
func (p *Provider) GetModel() string {
	return p.model
}

// GetBaseURL returns the Ollama server address.
func (p *Provider) GetBaseURL() string {
	return p.baseURL
}
