package cache

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
)

// Manager owns the two policy-variant Stores and decides which one is active.
// It is the only component allowed to mutate Store state.
//
// All mutating operations (insert, policy switch) are serialized behind a
// single mutex. Lookups never take the lock: they read the active Store
// through an atomic pointer, and every mutation replaces that Store
// wholesale, so a reader always observes either the pre- or post-mutation
// snapshot, never a partially updated one.
type Manager struct {
	mu sync.Mutex

	dir      string
	baseName string

	activePolicy PunctuationPolicy
	loaded       map[PunctuationPolicy]*Store // lazily populated, guarded by mu
	active       atomic.Pointer[Store]
}

// NewManager creates a Manager rooted at dir. baseName is the configured
// cache filename (e.g. "qa_cache.json"); each variant gets its own suffixed
// file next to it. Stores are loaded lazily on first use, not at startup.
func NewManager(dir, baseName string, initial PunctuationPolicy) (*Manager, error) {
	if !initial.Valid() {
		return nil, fmt.Errorf("cache: invalid initial policy %q", initial)
	}
	if baseName == "" {
		baseName = "qa_cache.json"
	}
	return &Manager{
		dir:          dir,
		baseName:     baseName,
		activePolicy: initial,
		loaded:       make(map[PunctuationPolicy]*Store),
	}, nil
}

// VariantPath returns the backing file path for the given policy variant:
// "qa_cache.json" becomes "qa_cache-exact.json" or "qa_cache-ignored.json".
func (m *Manager) VariantPath(policy PunctuationPolicy) string {
	ext := filepath.Ext(m.baseName)
	stem := strings.TrimSuffix(m.baseName, ext)
	return filepath.Join(m.dir, fmt.Sprintf("%s-%s%s", stem, policy, ext))
}

// variantLocked returns the Store for policy, loading it from disk on first
// access. Callers must hold m.mu.
func (m *Manager) variantLocked(policy PunctuationPolicy) *Store {
	if s, ok := m.loaded[policy]; ok {
		return s
	}
	s := Load(m.VariantPath(policy), policy)
	m.loaded[policy] = s
	return s
}

// ActiveStore returns the Store for the currently active policy, loading it
// lazily. The returned Store is an immutable snapshot safe for lock-free
// reads.
func (m *Manager) ActiveStore() *Store {
	if s := m.active.Load(); s != nil {
		return s
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.variantLocked(m.activePolicy)
	m.active.Store(s)
	return s
}

// ActivePolicy returns the currently active punctuation policy.
func (m *Manager) ActivePolicy() PunctuationPolicy {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activePolicy
}

// Insert records a new answer in the active Store and persists it. The
// in-memory snapshot is only replaced after the save succeeds, so a failed
// write leaves both memory and disk in their last-known-good state.
func (m *Manager) Insert(question, answer string) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := m.variantLocked(m.activePolicy).Clone()
	rec, err := next.Insert(question, answer)
	if err != nil {
		return Record{}, err
	}
	m.loaded[m.activePolicy] = next
	m.active.Store(next)
	return rec, nil
}

// SwitchPolicy migrates the cache to a new matching policy. It is a no-op
// when the policy is unchanged. Otherwise it loads both variants, merges the
// currently active records into the target variant (target records win),
// persists the merged target, and only then flips the active policy. If
// persistence fails the switch is aborted and the previous policy stays
// active, so configuration and on-disk state never disagree. Concurrent
// switches are linearized by the lock.
func (m *Manager) SwitchPolicy(newPolicy PunctuationPolicy) error {
	if !newPolicy.Valid() {
		return fmt.Errorf("cache: invalid policy %q", newPolicy)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if newPolicy == m.activePolicy {
		return nil
	}

	current := m.variantLocked(m.activePolicy)
	target := m.variantLocked(newPolicy).Clone()

	merged := target.MergeFrom(current)
	if err := target.Save(); err != nil {
		return fmt.Errorf("cache: persist merged %s store: %w", newPolicy, err)
	}

	m.loaded[newPolicy] = target
	m.activePolicy = newPolicy
	m.active.Store(target)

	slog.Debug("cache: policy switched", "policy", newPolicy, "merged", merged, "records", target.Len())
	return nil
}
