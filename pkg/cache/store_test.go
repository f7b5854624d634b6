package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qa_cache-exact.json")

	s := Load(path, PolicyExact)
	if s.Len() != 0 {
		t.Errorf("Expected empty store for missing file, got %d records", s.Len())
	}
	if s.Policy() != PolicyExact {
		t.Errorf("Expected policy exact, got %s", s.Policy())
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qa_cache-exact.json")

	s := NewStore(path, PolicyExact)
	if _, err := s.Insert("What's up?", "Not much."); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if _, err := s.Insert("How are you?", "Fine, thanks."); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	loaded := Load(path, PolicyExact)
	if loaded.Len() != 2 {
		t.Fatalf("Expected 2 records after reload, got %d", loaded.Len())
	}

	rec, ok := loaded.Lookup("what's up?")
	if !ok {
		t.Fatal("Expected hit for normalized key")
	}
	if rec.Answer != "Not much." {
		t.Errorf("Expected answer %q, got %q", "Not much.", rec.Answer)
	}
	if rec.Question != "What's up?" {
		t.Errorf("Expected original question preserved, got %q", rec.Question)
	}
	if rec.CreatedAt.IsZero() {
		t.Error("Expected timestamp to round-trip")
	}
}

func TestLoadPreservesInsertionOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qa_cache-exact.json")

	s := NewStore(path, PolicyExact)
	questions := []string{"first?", "second?", "third?"}
	for _, q := range questions {
		if _, err := s.Insert(q, "answer"); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	recs := Load(path, PolicyExact).Records()
	if len(recs) != len(questions) {
		t.Fatalf("Expected %d records, got %d", len(questions), len(recs))
	}
	for i, q := range questions {
		if recs[i].Question != q {
			t.Errorf("Expected record %d to be %q, got %q", i, q, recs[i].Question)
		}
	}
}

func TestLoadDegradesToEmpty(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"truncated json", `{"version": 1, "items": [{"q": "hi"`},
		{"non-object root", `[1, 2, 3]`},
		{"wrong version marker", `{"version": 99, "items": []}`},
		{"plain garbage", "not json at all"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "qa_cache-exact.json")
			if err := os.WriteFile(path, []byte(tt.raw), 0o600); err != nil {
				t.Fatalf("WriteFile failed: %v", err)
			}

			s := Load(path, PolicyExact)
			if s.Len() != 0 {
				t.Errorf("Expected malformed file to degrade to empty store, got %d records", s.Len())
			}
		})
	}
}

func TestLoadToleratesTrailingGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qa_cache-exact.json")

	content := `{"version": 1, "items": [{"q": "Hi", "q_norm": "hi", "a": "Hello", "ts": "2025-01-15T10:30:00Z"}]}`
	raw := append([]byte(content), 0, 0, 0, '\n', '\t')
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	s := Load(path, PolicyExact)
	if s.Len() != 1 {
		t.Fatalf("Expected trailing NULs to be tolerated, got %d records", s.Len())
	}
	if _, ok := s.Lookup("hi"); !ok {
		t.Error("Expected lookup hit after tolerant load")
	}
}

func TestPunctuationOnlyQuestionSurvivesReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qa_cache-ignored.json")

	s := NewStore(path, PolicyIgnored)
	if _, err := s.Insert("What is Go?", "A language."); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	// "?!" normalizes to the empty key under the ignored policy; a record
	// the engine wrote must load back without taking the rest of the file
	// down with it.
	if _, err := s.Insert("?!", "Good question."); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	loaded := Load(path, PolicyIgnored)
	if loaded.Len() != 2 {
		t.Fatalf("Expected both records after reload, got %d", loaded.Len())
	}
	if rec, ok := loaded.Lookup("what is go"); !ok || rec.Answer != "A language." {
		t.Errorf("Expected the ordinary record to survive, got %+v (hit=%v)", rec, ok)
	}
	if rec, ok := loaded.Lookup(""); !ok || rec.Answer != "Good question." {
		t.Errorf("Expected the empty-key record to survive, got %+v (hit=%v)", rec, ok)
	}
}

func TestEmptyQuestionRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qa_cache-exact.json")

	s := NewStore(path, PolicyExact)
	if _, err := s.Insert("", "nothing asked"); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	loaded := Load(path, PolicyExact)
	if loaded.Len() != 1 {
		t.Fatalf("Expected empty question to round-trip, got %d records", loaded.Len())
	}
	if rec, ok := loaded.Lookup(""); !ok || rec.Answer != "nothing asked" {
		t.Errorf("Expected hit for empty key, got %+v (hit=%v)", rec, ok)
	}
}

func TestInsertLastWriteWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qa_cache-exact.json")

	s := NewStore(path, PolicyExact)
	if _, err := s.Insert("What's up?", "first answer"); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if _, err := s.Insert("WHAT'S   UP?", "second answer"); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	if s.Len() != 1 {
		t.Fatalf("Expected overwrite to keep a single record, got %d", s.Len())
	}
	rec, _ := s.Lookup("what's up?")
	if rec.Answer != "second answer" {
		t.Errorf("Expected last write to win, got %q", rec.Answer)
	}
}

func TestInsertTimestamps(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	timeNow = func() time.Time { return now }
	defer func() { timeNow = time.Now }()

	s := NewStore(filepath.Join(t.TempDir(), "qa_cache-exact.json"), PolicyExact)
	rec, err := s.Insert("hi", "hello")
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if !rec.CreatedAt.Equal(now) {
		t.Errorf("Expected CreatedAt %v, got %v", now, rec.CreatedAt)
	}
}

func TestMergeFromReceiverWins(t *testing.T) {
	dir := t.TempDir()

	a := NewStore(filepath.Join(dir, "a.json"), PolicyIgnored)
	b := NewStore(filepath.Join(dir, "b.json"), PolicyIgnored)

	if _, err := b.Insert("foo", "baz"); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if _, err := a.Insert("foo", "bar"); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	merged := b.MergeFrom(a)
	if merged != 0 {
		t.Errorf("Expected no records merged over existing keys, got %d", merged)
	}
	rec, _ := b.Lookup("foo")
	if rec.Answer != "baz" {
		t.Errorf("Expected receiving store to win, got %q", rec.Answer)
	}
}

func TestMergeFromRenormalizes(t *testing.T) {
	dir := t.TempDir()

	exact := NewStore(filepath.Join(dir, "exact.json"), PolicyExact)
	if _, err := exact.Insert("What's up?", "Not much."); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	ignored := NewStore(filepath.Join(dir, "ignored.json"), PolicyIgnored)
	merged := ignored.MergeFrom(exact)
	if merged != 1 {
		t.Fatalf("Expected 1 record merged, got %d", merged)
	}

	// The key must be recomputed from the original question text under the
	// receiving store's policy, not copied verbatim.
	rec, ok := ignored.Lookup("whats up")
	if !ok {
		t.Fatal("Expected hit under re-normalized key")
	}
	if rec.NormalizedKey != "whats up" {
		t.Errorf("Expected normalized key rewritten, got %q", rec.NormalizedKey)
	}
	if rec.Question != "What's up?" {
		t.Errorf("Expected original question text preserved, got %q", rec.Question)
	}
}

func TestMergeFromDoesNotSave(t *testing.T) {
	dir := t.TempDir()

	src := NewStore(filepath.Join(dir, "src.json"), PolicyExact)
	if _, err := src.Insert("hi", "hello"); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	dstPath := filepath.Join(dir, "dst.json")
	dst := NewStore(dstPath, PolicyExact)
	dst.MergeFrom(src)

	if _, err := os.Stat(dstPath); !os.IsNotExist(err) {
		t.Error("MergeFrom must not persist; saving is the caller's explicit step")
	}
}

func TestSaveLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "qa_cache-exact.json")

	s := NewStore(path, PolicyExact)
	if _, err := s.Insert("hi", "hello"); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "qa_cache-exact.json" {
		t.Errorf("Expected only the destination file after save, got %v", entries)
	}
}

func TestSaveFailureLeavesOriginalUntouched(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "qa_cache-exact.json")

	s := NewStore(path, PolicyExact)
	if _, err := s.Insert("hi", "hello"); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	original, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	// Block the temp file slot with a directory so the next save fails
	// before it can ever touch the destination.
	if err := os.Mkdir(path+".tmp", 0o750); err != nil {
		t.Fatalf("Mkdir failed: %v", err)
	}

	if _, err := s.Insert("bye", "goodbye"); err == nil {
		t.Fatal("Expected save failure to surface from Insert")
	}

	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(after) != string(original) {
		t.Error("Destination file changed despite failed save")
	}
}

func TestCloneIsDeep(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "qa_cache-exact.json"), PolicyExact)
	if _, err := s.Insert("hi", "hello"); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	c := s.Clone()
	if _, err := c.Insert("bye", "goodbye"); err != nil {
		t.Fatalf("Insert on clone failed: %v", err)
	}

	if s.Len() != 1 {
		t.Errorf("Mutating a clone leaked into the original: %d records", s.Len())
	}
	if c.Len() != 2 {
		t.Errorf("Expected clone to hold 2 records, got %d", c.Len())
	}
}
