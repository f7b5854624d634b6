// Package openai provides an llm.Provider for OpenAI-compatible chat
// completion APIs, enabling hosted models or any local server that speaks
// the same protocol.
package openai

import (
	"context"
	"fmt"
	"os"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/entrhq/recall/pkg/llm"
)

const (
	// DefaultBaseURL is the default OpenAI API base URL
	DefaultBaseURL = "https://api.openai.com/v1"

	// DefaultModel is used when no model is configured
	DefaultModel = "gpt-4o-mini"
)

// Provider implements the llm.Provider interface for OpenAI-compatible APIs.
// Sampling options without an OpenAI equivalent (top_k, repeat_penalty,
// min_p) are ignored.
type Provider struct {
	client  openai.Client
	baseURL string
	model   string
}

// ProviderOption is a function that configures a Provider.
type ProviderOption func(*Provider)

// WithModel sets the model to use for completions.
func WithModel(model string) ProviderOption {
	return func(p *Provider) {
		p.model = model
	}
}

// WithBaseURL sets a custom base URL for OpenAI-compatible APIs.
func WithBaseURL(baseURL string) ProviderOption {
	return func(p *Provider) {
		p.baseURL = baseURL
	}
}

// NewProvider creates a new OpenAI provider with the given API key.
//
// If apiKey is empty, it will attempt to read from the OPENAI_API_KEY
// environment variable.
func NewProvider(apiKey string, opts ...ProviderOption) (*Provider, error) {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("openai: API key is required (provide via parameter or OPENAI_API_KEY environment variable)")
	}

	p := &Provider{
		baseURL: DefaultBaseURL,
		model:   DefaultModel,
	}
	for _, opt := range opts {
		opt(p)
	}

	p.client = openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(p.baseURL),
	)
	return p, nil
}

// Generate implements llm.Provider.
func (p *Provider) Generate(ctx context.Context, prompt string, opts *llm.Options) (string, error) {
	var messages []openai.ChatCompletionMessageParamUnion
	if opts != nil && opts.SystemPrompt != "" {
		messages = append(messages, openai.SystemMessage(opts.SystemPrompt))
	}
	messages = append(messages, openai.UserMessage(prompt))

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(p.model),
		Messages: messages,
	}
	if opts != nil {
		if opts.TopP > 0 {
			params.TopP = openai.Float(opts.TopP)
		}
		if opts.Seed >= 0 {
			params.Seed = openai.Int(int64(opts.Seed))
		}
	}

	completion, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai: chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("openai: chat completion returned no choices")
	}
	return completion.Choices[0].Message.Content, nil
}

// GetModel returns the model name being used.
func (p *Provider) GetModel() string {
	return p.model
}

// GetBaseURL returns the base URL being used for API requests.
func (p *Provider) GetBaseURL() string {
	return p.baseURL
}
