package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/entrhq/recall/pkg/assistant"
	"github.com/entrhq/recall/pkg/cache"
	"github.com/entrhq/recall/pkg/config"
	"github.com/entrhq/recall/pkg/llm"
)

type scriptedProvider struct {
	answer string
	calls  int
}

func (p *scriptedProvider) Generate(_ context.Context, _ string, _ *llm.Options) (string, error) {
	p.calls++
	return p.answer, nil
}

func (p *scriptedProvider) GetModel() string   { return "test-model" }
func (p *scriptedProvider) GetBaseURL() string { return "http://test" }

func runScript(t *testing.T, script string) (string, *scriptedProvider) {
	t.Helper()
	provider := &scriptedProvider{answer: "Not much."}
	c, err := cache.New(t.TempDir(), "qa_cache.json", cache.PolicyExact)
	if err != nil {
		t.Fatalf("cache.New failed: %v", err)
	}
	a := assistant.New(c, provider, config.NewAssistantSection())

	var out bytes.Buffer
	e := NewExecutor(a, WithReader(strings.NewReader(script)), WithWriter(&out))
	if err := e.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	return out.String(), provider
}

func TestRunExitsOnQuit(t *testing.T) {
	out, provider := runScript(t, "quit\n")
	if !strings.Contains(out, "Recall Assistant") {
		t.Error("Expected welcome banner")
	}
	if provider.calls != 0 {
		t.Errorf("Expected no provider calls, got %d", provider.calls)
	}
}

func TestRunExitsOnEOF(t *testing.T) {
	out, _ := runScript(t, "")
	if !strings.Contains(out, "> ") {
		t.Error("Expected prompt before EOF")
	}
}

func TestRunAnswersQuestion(t *testing.T) {
	out, provider := runScript(t, "What's up?\nexit\n")
	if !strings.Contains(out, "Not much.") {
		t.Errorf("Expected answer in output, got:\n%s", out)
	}
	if provider.calls != 1 {
		t.Errorf("Expected 1 provider call, got %d", provider.calls)
	}
}

func TestRunMarksCachedAnswers(t *testing.T) {
	out, provider := runScript(t, "What's up?\nWhat's up?\nexit\n")
	if !strings.Contains(out, "Assistant (cached):") {
		t.Errorf("Expected cached marker on repeat ask, got:\n%s", out)
	}
	if provider.calls != 1 {
		t.Errorf("Expected repeat ask to hit the cache, got %d calls", provider.calls)
	}
}

func TestRunSkipsEmptyInput(t *testing.T) {
	_, provider := runScript(t, "\n   \nexit\n")
	if provider.calls != 0 {
		t.Errorf("Expected empty lines ignored, got %d provider calls", provider.calls)
	}
}

func TestPolicyCommand(t *testing.T) {
	out, _ := runScript(t, "/policy\n/policy ignored\n/policy\nexit\n")
	if !strings.Contains(out, "Matching policy: exact") {
		t.Errorf("Expected initial exact policy, got:\n%s", out)
	}
	if !strings.Contains(out, "Matching policy: ignored") {
		t.Errorf("Expected switched policy, got:\n%s", out)
	}
}

func TestPolicyCommandRejectsUnknown(t *testing.T) {
	out, _ := runScript(t, "/policy fuzzy\nexit\n")
	if !strings.Contains(out, "Error:") {
		t.Errorf("Expected error for unknown policy, got:\n%s", out)
	}
}

func TestStatsCommand(t *testing.T) {
	out, _ := runScript(t, "What's up?\n/stats\nexit\n")
	if !strings.Contains(out, "Answers: 1") {
		t.Errorf("Expected one cached answer in stats, got:\n%s", out)
	}
	if !strings.Contains(out, "qa_cache-exact.json") {
		t.Errorf("Expected store path in stats, got:\n%s", out)
	}
}

func TestUnknownCommand(t *testing.T) {
	out, _ := runScript(t, "/bogus\nexit\n")
	if !strings.Contains(out, "Unknown command /bogus") {
		t.Errorf("Expected unknown command message, got:\n%s", out)
	}
}
