package cache

// Cache is the single entry point used by the conversation flow. It wraps a
// Manager and exposes the three operations the assistant needs: look up an
// answer, record a new one, and toggle the matching policy.
type Cache struct {
	manager *Manager
}

// New creates a Cache persisting under dir with the given base filename and
// initial matching policy.
func New(dir, baseName string, policy PunctuationPolicy) (*Cache, error) {
	m, err := NewManager(dir, baseName, policy)
	if err != nil {
		return nil, err
	}
	return &Cache{manager: m}, nil
}

// AnswerFor looks up a cached answer for question under the active policy.
// The second return value reports a hit. Lookups are lock-free and never
// touch disk after the active store has been loaded.
func (c *Cache) AnswerFor(question string) (Record, bool) {
	store := c.manager.ActiveStore()
	return store.Lookup(Normalize(question, store.Policy()))
}

// RecordAnswer stores a freshly generated answer under the active policy and
// persists it before returning. A persistence failure means the answer is
// not durably cached; callers should still return the answer to the user.
func (c *Cache) RecordAnswer(question, answer string) (Record, error) {
	return c.manager.Insert(question, answer)
}

// SwitchPolicy changes the active matching policy, merging the old variant's
// records into the new one so no learned answer is lost.
func (c *Cache) SwitchPolicy(policy PunctuationPolicy) error {
	return c.manager.SwitchPolicy(policy)
}

// ActivePolicy returns the matching policy currently in effect.
func (c *Cache) ActivePolicy() PunctuationPolicy {
	return c.manager.ActivePolicy()
}

// Len returns the number of records in the active store.
func (c *Cache) Len() int {
	return c.manager.ActiveStore().Len()
}

// StorePath returns the backing file path of the active store.
func (c *Cache) StorePath() string {
	return c.manager.ActiveStore().Path()
}
