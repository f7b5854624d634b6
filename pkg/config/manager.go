// Package config provides the persistent settings layer for the assistant:
// a JSON file store, a section registry, and typed sections for the
// assistant's model and cache options. The Manager instance is constructed
// at startup and passed by reference; there is no package-level singleton.
package config

import (
	"fmt"
	"sync"
)

// Section is a named, typed slice of the configuration file. Sections
// register with a Manager, which handles loading, saving, and validation.
type Section interface {
	// ID returns the stable section identifier used as the file key
	ID() string

	// Title returns a human-readable section name
	Title() string

	// Description explains what the section configures
	Description() string

	// Data returns the section's current values for persistence
	Data() map[string]interface{}

	// SetData applies loaded values to the section
	SetData(data map[string]interface{}) error

	// Validate checks the section's current values
	Validate() error

	// Reset restores the section's defaults
	Reset()
}

// Manager coordinates registered sections with a backing Store.
type Manager struct {
	store    Store
	mu       sync.RWMutex
	sections map[string]Section
	order    []string // registration order, for stable listing
}

// NewManager creates a manager over the given store.
func NewManager(store Store) *Manager {
	return &Manager{
		store:    store,
		sections: make(map[string]Section),
	}
}

// RegisterSection adds a section to the manager. Registering two sections
// with the same ID is an error.
func (m *Manager) RegisterSection(section Section) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := section.ID()
	if _, exists := m.sections[id]; exists {
		return fmt.Errorf("config: section %q already registered", id)
	}
	m.sections[id] = section
	m.order = append(m.order, id)
	return nil
}

// GetSection returns the registered section with the given ID.
func (m *Manager) GetSection(id string) (Section, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	section, ok := m.sections[id]
	return section, ok
}

// GetSections returns all registered sections in registration order.
func (m *Manager) GetSections() []Section {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Section, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.sections[id])
	}
	return out
}

// LoadAll reads the store from disk and applies each section's data.
func (m *Manager) LoadAll() error {
	if err := m.store.Load(); err != nil {
		return fmt.Errorf("config: load store: %w", err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, id := range m.order {
		data, err := m.store.GetSection(id)
		if err != nil {
			return fmt.Errorf("config: read section %q: %w", id, err)
		}
		if len(data) == 0 {
			continue // keep section defaults
		}
		if err := m.sections[id].SetData(data); err != nil {
			return fmt.Errorf("config: apply section %q: %w", id, err)
		}
	}
	return nil
}

// SaveAll validates every section, writes their data into the store, and
// persists the store to disk.
func (m *Manager) SaveAll() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, id := range m.order {
		if err := m.sections[id].Validate(); err != nil {
			return fmt.Errorf("config: section %q invalid: %w", id, err)
		}
	}
	for _, id := range m.order {
		if err := m.store.SetSection(id, m.sections[id].Data()); err != nil {
			return fmt.Errorf("config: write section %q: %w", id, err)
		}
	}
	if err := m.store.Save(); err != nil {
		return fmt.Errorf("config: save store: %w", err)
	}
	return nil
}

// ResetAll restores every section to its defaults. The store is not saved;
// call SaveAll to persist.
func (m *Manager) ResetAll() {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, id := range m.order {
		m.sections[id].Reset()
	}
}

// Store returns the backing store.
func (m *Manager) Store() Store {
	return m.store
}
