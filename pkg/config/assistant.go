package config

import (
	"fmt"
	"sync"
)

const (
	// SectionIDAssistant is the identifier for the assistant settings section
	SectionIDAssistant = "assistant"

	// ProviderOllama selects the native Ollama generate backend
	ProviderOllama = "ollama"
	// ProviderOpenAI selects an OpenAI-compatible chat completions backend
	ProviderOpenAI = "openai"
)

// AssistantSection manages the assistant's model, sampling, and cache
// settings.
type AssistantSection struct {
	Provider         string
	BaseURL          string
	Model            string
	APIKey           string
	SystemPrompt     string
	TopP             float64
	TopK             int
	RepeatPenalty    float64
	MinP             float64
	Seed             int
	DBFilename       string
	MatchPunctuation bool
	mu               sync.RWMutex
}

// NewAssistantSection creates an assistant section with default settings.
func NewAssistantSection() *AssistantSection {
	s := &AssistantSection{}
	s.applyDefaults()
	return s
}

func (s *AssistantSection) applyDefaults() {
	s.Provider = ProviderOllama
	s.BaseURL = "http://127.0.0.1:11434"
	s.Model = "llama3"
	s.APIKey = ""
	s.SystemPrompt = ""
	s.TopP = 0.9
	s.TopK = 40
	s.RepeatPenalty = 1.1
	s.MinP = 0.0
	s.Seed = -1
	s.DBFilename = "qa_cache.json"
	s.MatchPunctuation = true
}

// ID returns the section identifier.
func (s *AssistantSection) ID() string {
	return SectionIDAssistant
}

// Title returns the section title.
func (s *AssistantSection) Title() string {
	return "Assistant Settings"
}

// Description returns the section description.
func (s *AssistantSection) Description() string {
	return "Configure the model backend, sampling parameters, and answer cache. match_punctuation controls whether punctuation distinguishes cached questions."
}

// Data returns the current configuration data.
func (s *AssistantSection) Data() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]interface{}{
		"provider":          s.Provider,
		"base_url":          s.BaseURL,
		"model":             s.Model,
		"api_key":           s.APIKey,
		"system_prompt":     s.SystemPrompt,
		"top_p":             s.TopP,
		"top_k":             s.TopK,
		"repeat_penalty":    s.RepeatPenalty,
		"min_p":             s.MinP,
		"seed":              s.Seed,
		"db_filename":       s.DBFilename,
		"match_punctuation": s.MatchPunctuation,
	}
}

// SetData updates the configuration from the provided data. Numeric values
// arrive as float64 after a JSON round-trip and are coerced here.
func (s *AssistantSection) SetData(data map[string]interface{}) error {
	if data == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := data["provider"].(string); ok {
		s.Provider = v
	}
	if v, ok := data["base_url"].(string); ok {
		s.BaseURL = v
	}
	if v, ok := data["model"].(string); ok {
		s.Model = v
	}
	if v, ok := data["api_key"].(string); ok {
		s.APIKey = v
	}
	if v, ok := data["system_prompt"].(string); ok {
		s.SystemPrompt = v
	}
	if v, ok := toFloat(data["top_p"]); ok {
		s.TopP = v
	}
	if v, ok := toInt(data["top_k"]); ok {
		s.TopK = v
	}
	if v, ok := toFloat(data["repeat_penalty"]); ok {
		s.RepeatPenalty = v
	}
	if v, ok := toFloat(data["min_p"]); ok {
		s.MinP = v
	}
	if v, ok := toInt(data["seed"]); ok {
		s.Seed = v
	}
	if v, ok := data["db_filename"].(string); ok && v != "" {
		s.DBFilename = v
	}
	if v, ok := data["match_punctuation"].(bool); ok {
		s.MatchPunctuation = v
	}

	return nil
}

// Validate validates the current configuration.
func (s *AssistantSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.Provider != ProviderOllama && s.Provider != ProviderOpenAI {
		return fmt.Errorf("unknown provider %q", s.Provider)
	}
	if s.TopP < 0 || s.TopP > 1 {
		return fmt.Errorf("top_p must be within [0, 1], got %v", s.TopP)
	}
	if s.MinP < 0 || s.MinP > 1 {
		return fmt.Errorf("min_p must be within [0, 1], got %v", s.MinP)
	}
	if s.TopK < 0 {
		return fmt.Errorf("top_k must be non-negative, got %d", s.TopK)
	}
	if s.RepeatPenalty <= 0 {
		return fmt.Errorf("repeat_penalty must be positive, got %v", s.RepeatPenalty)
	}
	return nil
}

// Reset resets the section to default configuration.
func (s *AssistantSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyDefaults()
}

// GetProvider returns the configured backend provider.
func (s *AssistantSection) GetProvider() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Provider
}

// SetProvider sets the backend provider.
func (s *AssistantSection) SetProvider(provider string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Provider = provider
}

// GetBaseURL returns the configured base URL.
func (s *AssistantSection) GetBaseURL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.BaseURL
}

// SetBaseURL sets the base URL.
func (s *AssistantSection) SetBaseURL(baseURL string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.BaseURL = baseURL
}

// GetModel returns the configured model name.
func (s *AssistantSection) GetModel() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Model
}

// SetModel sets the model name.
func (s *AssistantSection) SetModel(model string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Model = model
}

// GetAPIKey returns the configured API key.
func (s *AssistantSection) GetAPIKey() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.APIKey
}

// SetAPIKey sets the API key.
func (s *AssistantSection) SetAPIKey(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.APIKey = key
}

// GetSystemPrompt returns the configured system prompt.
func (s *AssistantSection) GetSystemPrompt() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.SystemPrompt
}

// GetDBFilename returns the configured cache filename.
func (s *AssistantSection) GetDBFilename() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.DBFilename
}

// GetMatchPunctuation reports whether punctuation distinguishes questions.
func (s *AssistantSection) GetMatchPunctuation() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.MatchPunctuation
}

// SetMatchPunctuation sets the punctuation matching flag.
func (s *AssistantSection) SetMatchPunctuation(match bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.MatchPunctuation = match
}

// Sampling returns the sampling parameters as a snapshot.
func (s *AssistantSection) Sampling() (topP float64, topK int, repeatPenalty, minP float64, seed int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.TopP, s.TopK, s.RepeatPenalty, s.MinP, s.Seed
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
