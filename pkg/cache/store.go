package cache

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// FormatVersion is the on-disk cache file format version. Files carrying any
// other version marker are discarded as malformed rather than migrated.
const FormatVersion = 1

var timeNow = time.Now // injected for testability

// Record is a single cached question/answer pair. Records are immutable once
// written; inserting the same normalized key again replaces the whole record.
type Record struct {
	Question      string    `json:"q"`
	NormalizedKey string    `json:"q_norm"`
	Answer        string    `json:"a"`
	CreatedAt     time.Time `json:"ts"`
}

// storeFile is the serialized form of a Store.
type storeFile struct {
	Version int      `json:"version"`
	Items   []Record `json:"items"`
}

// Store holds the in-memory records for one punctuation-policy variant,
// backed by a single JSON file. A Store is not safe for concurrent mutation;
// the Manager serializes writes and hands out immutable snapshots to readers
// via Clone.
type Store struct {
	path    string
	policy  PunctuationPolicy
	records map[string]Record
	order   []string // normalized keys in insertion order, for stable file output
}

// NewStore returns an empty Store for the given backing path and policy.
func NewStore(path string, policy PunctuationPolicy) *Store {
	return &Store{
		path:    path,
		policy:  policy,
		records: make(map[string]Record),
	}
}

// Load reads the backing file at path. A missing file yields an empty Store.
// A file that cannot be parsed or carries the wrong version marker is logged
// and discarded, also yielding an empty Store: losing unreadable data is
// preferable to blocking the assistant.
func Load(path string, policy PunctuationPolicy) *Store {
	s := NewStore(path, policy)

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s
	}
	if err != nil {
		slog.Warn("cache: store file unreadable, starting empty", "path", path, "err", err)
		return s
	}

	// Tolerate trailing NULs and whitespace left behind by interrupted
	// writers on some filesystems.
	raw = bytes.TrimRight(raw, "\x00\r\n\t ")
	if len(raw) == 0 {
		return s
	}

	var file storeFile
	if err := json.Unmarshal(raw, &file); err != nil {
		slog.Warn("cache: discarding malformed store file", "path", path, "err", err)
		return s
	}
	if err := file.validate(); err != nil {
		slog.Warn("cache: discarding invalid store file", "path", path, "err", err)
		return s
	}

	for _, rec := range file.Items {
		s.set(rec)
	}
	return s
}

// validate performs the structural check required before a loaded file may
// be trusted. Only the version marker gates the whole file. Record fields
// are not checked: the empty string is a legal question and a legal
// normalized key (a punctuation-only question under the ignored policy
// normalizes to ""), so a record the engine wrote must always load back.
func (f *storeFile) validate() error {
	if f.Version != FormatVersion {
		return fmt.Errorf("cache: unsupported format version %d", f.Version)
	}
	return nil
}

// set stores rec under its normalized key, preserving first-insertion order.
func (s *Store) set(rec Record) {
	if _, exists := s.records[rec.NormalizedKey]; !exists {
		s.order = append(s.order, rec.NormalizedKey)
	}
	s.records[rec.NormalizedKey] = rec
}

// Lookup returns the record for the given normalized key, if present. Only
// exact key matches hit; there is no fuzzy matching.
func (s *Store) Lookup(normalizedKey string) (Record, bool) {
	rec, ok := s.records[normalizedKey]
	return rec, ok
}

// Insert computes the normalized key for question under this Store's own
// policy, records the answer with the current timestamp (replacing any
// existing record for the same key), and persists the Store. On a save
// failure the error is returned and the on-disk file is left untouched;
// callers using copy-on-write snapshots simply discard the mutated clone.
func (s *Store) Insert(question, answer string) (Record, error) {
	rec := Record{
		Question:      question,
		NormalizedKey: Normalize(question, s.policy),
		Answer:        answer,
		CreatedAt:     timeNow().UTC(),
	}
	s.set(rec)
	if err := s.Save(); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// MergeFrom re-normalizes every record in other under this Store's policy
// and adopts it only when this Store has no record for the resulting key:
// existing records always win, so a stale variant never clobbers answers
// already validated under the target policy. MergeFrom never saves;
// persistence is the caller's explicit next step. It returns the number of
// records adopted.
func (s *Store) MergeFrom(other *Store) int {
	merged := 0
	for _, key := range other.order {
		rec := other.records[key]
		targetKey := Normalize(rec.Question, s.policy)
		if _, exists := s.records[targetKey]; exists {
			continue
		}
		rec.NormalizedKey = targetKey
		s.set(rec)
		merged++
	}
	return merged
}

// Save atomically persists the Store: the full serialized content is written
// to a temporary file in the same directory, synced to disk, then renamed
// over the destination. A crash before the rename leaves the original file
// byte-identical; a crash after leaves the new content fully in place.
func (s *Store) Save() error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("cache: create store directory: %w", err)
		}
	}

	file := storeFile{Version: FormatVersion, Items: s.Records()}
	data, err := json.MarshalIndent(&file, "", "  ")
	if err != nil {
		return fmt.Errorf("cache: serialize store: %w", err)
	}

	tmp := s.path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("cache: create temp store file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("cache: write temp store file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("cache: sync temp store file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("cache: close temp store file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("cache: atomic rename %s: %w", s.path, err)
	}
	return nil
}

// Clone returns a deep copy of the Store. The Manager mutates clones and
// swaps them in wholesale so in-flight readers never observe a half-merged
// structure.
func (s *Store) Clone() *Store {
	c := &Store{
		path:    s.path,
		policy:  s.policy,
		records: make(map[string]Record, len(s.records)),
		order:   make([]string, len(s.order)),
	}
	copy(c.order, s.order)
	for k, v := range s.records {
		c.records[k] = v
	}
	return c
}

// Records returns the records in insertion order.
func (s *Store) Records() []Record {
	out := make([]Record, 0, len(s.order))
	for _, key := range s.order {
		out = append(out, s.records[key])
	}
	return out
}

// Len returns the number of records in the Store.
func (s *Store) Len() int { return len(s.records) }

// Policy returns the punctuation policy this Store normalizes under.
func (s *Store) Policy() PunctuationPolicy { return s.policy }

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }
