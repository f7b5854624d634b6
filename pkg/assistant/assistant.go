// Package assistant implements the conversation flow: answer questions from
// the persistent cache first, fall back to the configured language model on
// a miss, and record what happened. Caching is an optimization, never a
// gate. Once the model has produced an answer it is returned to the user
// even if it could not be durably cached.
package assistant

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/entrhq/recall/pkg/assistant/transcript"
	"github.com/entrhq/recall/pkg/cache"
	"github.com/entrhq/recall/pkg/config"
	"github.com/entrhq/recall/pkg/llm"
	"github.com/entrhq/recall/pkg/logging"
)

// FallbackAnswer is returned when the model backend fails to produce an
// answer.
const FallbackAnswer = "Sorry, I couldn't find an answer to that."

// timeNow allows tests to control exchange timestamps.
var timeNow = time.Now

// Answer is the result of asking the assistant a question.
type Answer struct {
	Text string

	// Cached reports that the answer came from the cache rather than the
	// model.
	Cached bool

	// Fallback reports that the model failed and Text is the stock apology.
	Fallback bool
}

// Assistant wires the cache, the model provider, and the settings section
// together for one conversation session.
type Assistant struct {
	cache          *cache.Cache
	provider       llm.Provider
	settings       *config.AssistantSection
	transcripts    *transcript.FileStore
	logger         *logging.Logger
	conversationID string
}

// Option configures an Assistant.
type Option func(*Assistant)

// WithTranscripts enables per-exchange transcript recording.
func WithTranscripts(store *transcript.FileStore) Option {
	return func(a *Assistant) {
		a.transcripts = store
	}
}

// WithLogger overrides the component logger.
func WithLogger(logger *logging.Logger) Option {
	return func(a *Assistant) {
		a.logger = logger
	}
}

// New creates an Assistant. Each Assistant represents one conversation and
// gets its own conversation ID.
func New(c *cache.Cache, provider llm.Provider, settings *config.AssistantSection, opts ...Option) *Assistant {
	a := &Assistant{
		cache:          c,
		provider:       provider,
		settings:       settings,
		conversationID: uuid.New().String(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger, _ = logging.NewLogger("assistant") // falls back to stderr
	}
	return a
}

// ConversationID returns this session's conversation identifier.
func (a *Assistant) ConversationID() string {
	return a.conversationID
}

// Cache returns the underlying answer cache.
func (a *Assistant) Cache() *cache.Cache {
	return a.cache
}

// Answer resolves a question: cache hit, or model fallback with best-effort
// caching of the fresh answer. It never fails outright; when the model
// backend errors the stock apology is returned with Fallback set.
func (a *Assistant) Answer(ctx context.Context, question string) Answer {
	if rec, ok := a.cache.AnswerFor(question); ok {
		a.logger.Debugf("cache hit for %q", rec.NormalizedKey)
		a.recordExchange(ctx, question, rec.Answer, transcript.SourceCache)
		return Answer{Text: rec.Answer, Cached: true}
	}

	text, err := a.provider.Generate(ctx, question, a.generateOptions())
	if err != nil {
		a.logger.Errorf("model generate failed: %v", err)
		return Answer{Text: FallbackAnswer, Fallback: true}
	}

	// A write failure means the answer is not durably cached; it is still
	// the user's answer.
	if _, err := a.cache.RecordAnswer(question, text); err != nil {
		a.logger.Warnf("answer not cached: %v", err)
	}
	a.recordExchange(ctx, question, text, transcript.SourceModel)
	return Answer{Text: text}
}

// ApplySettings re-reads the settings section and brings the cache's
// matching policy in line with it, merging variants as needed. Model and
// sampling changes take effect on the next Answer call without any action
// here.
func (a *Assistant) ApplySettings() error {
	return a.cache.SwitchPolicy(PolicyFromSettings(a.settings))
}

// PolicyFromSettings maps the match_punctuation flag onto a cache policy.
func PolicyFromSettings(s *config.AssistantSection) cache.PunctuationPolicy {
	if s.GetMatchPunctuation() {
		return cache.PolicyExact
	}
	return cache.PolicyIgnored
}

func (a *Assistant) generateOptions() *llm.Options {
	topP, topK, repeatPenalty, minP, seed := a.settings.Sampling()
	return &llm.Options{
		SystemPrompt:  a.settings.GetSystemPrompt(),
		TopP:          topP,
		TopK:          topK,
		RepeatPenalty: repeatPenalty,
		MinP:          minP,
		Seed:          seed,
	}
}

// recordExchange appends the exchange to the transcript store, best-effort.
func (a *Assistant) recordExchange(ctx context.Context, question, answer string, source transcript.Source) {
	if a.transcripts == nil {
		return
	}
	e := &transcript.Exchange{
		Meta: transcript.ExchangeMeta{
			ID:             transcript.NewExchangeID(),
			ConversationID: a.conversationID,
			Question:       question,
			AskedAt:        timeNow().UTC(),
			Source:         source,
			Model:          a.provider.GetModel(),
		},
		Answer: answer,
	}
	if err := a.transcripts.Write(ctx, e); err != nil {
		a.logger.Warnf("transcript not recorded: %v", err)
	}
}
