package cache

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCacheHitMissScenario(t *testing.T) {
	dir := t.TempDir()
	c, err := New(dir, "qa_cache.json", PolicyExact)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if _, ok := c.AnswerFor("What's up?"); ok {
		t.Fatal("Expected miss on empty cache")
	}

	if _, err := c.RecordAnswer("What's up?", "Not much."); err != nil {
		t.Fatalf("RecordAnswer failed: %v", err)
	}

	// Case and whitespace variations hit under exact matching.
	rec, ok := c.AnswerFor("what's up?")
	if !ok {
		t.Fatal("Expected hit for case-variant question")
	}
	if rec.Answer != "Not much." {
		t.Errorf("Expected %q, got %q", "Not much.", rec.Answer)
	}

	// Punctuation still matters under exact matching.
	if _, ok := c.AnswerFor("whats up"); ok {
		t.Fatal("Expected miss for de-punctuated question under exact policy")
	}

	// After switching to ignored, the merged record is reachable without
	// punctuation.
	if err := c.SwitchPolicy(PolicyIgnored); err != nil {
		t.Fatalf("SwitchPolicy failed: %v", err)
	}
	rec, ok = c.AnswerFor("whats up")
	if !ok {
		t.Fatal("Expected hit under ignored policy after switch")
	}
	if rec.Answer != "Not much." {
		t.Errorf("Expected %q, got %q", "Not much.", rec.Answer)
	}
}

func TestCacheRecordAnswerSurvivesReload(t *testing.T) {
	dir := t.TempDir()
	c, err := New(dir, "qa_cache.json", PolicyIgnored)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := c.RecordAnswer("Does it persist?", "Yes."); err != nil {
		t.Fatalf("RecordAnswer failed: %v", err)
	}

	c2, err := New(dir, "qa_cache.json", PolicyIgnored)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, ok := c2.AnswerFor("does it persist"); !ok {
		t.Error("Expected recorded answer to survive a reload")
	}
}

func TestCacheWriteFailureSurfaces(t *testing.T) {
	dir := t.TempDir()
	c, err := New(dir, "qa_cache.json", PolicyExact)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := os.Mkdir(filepath.Join(dir, "qa_cache-exact.json.tmp"), 0o750); err != nil {
		t.Fatalf("Mkdir failed: %v", err)
	}

	if _, err := c.RecordAnswer("hi", "hello"); err == nil {
		t.Fatal("Expected write failure to surface from RecordAnswer")
	}

	// The failed write must not poison in-memory state: the record is
	// absent, not half-visible.
	if _, ok := c.AnswerFor("hi"); ok {
		t.Error("Record from failed write should not be observable")
	}
}

func TestCacheLenAndPolicy(t *testing.T) {
	c, err := New(t.TempDir(), "qa_cache.json", PolicyExact)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if c.Len() != 0 {
		t.Errorf("Expected empty cache, got %d", c.Len())
	}
	if c.ActivePolicy() != PolicyExact {
		t.Errorf("Expected exact policy, got %s", c.ActivePolicy())
	}
	if _, err := c.RecordAnswer("hi", "hello"); err != nil {
		t.Fatalf("RecordAnswer failed: %v", err)
	}
	if c.Len() != 1 {
		t.Errorf("Expected 1 record, got %d", c.Len())
	}
}
