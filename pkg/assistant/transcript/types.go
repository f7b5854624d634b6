// Package transcript persists a per-exchange record of every question the
// assistant answered, as Markdown files with YAML front-matter. Transcripts
// are an audit trail; the answer cache remains the source of truth for
// lookups.
package transcript

import (
	"fmt"
	"time"
)

// Source records where an answer came from.
type Source string

const (
	SourceCache Source = "cache"
	SourceModel Source = "model"
)

// ExchangeMeta holds all YAML front-matter fields.
type ExchangeMeta struct {
	ID             string    `yaml:"id"`
	ConversationID string    `yaml:"conversation_id"`
	Question       string    `yaml:"question"`
	AskedAt        time.Time `yaml:"asked_at"`
	Source         Source    `yaml:"source"`
	Model          string    `yaml:"model,omitempty"`
}

// Validate ensures all required exchange metadata fields are populated.
func (m *ExchangeMeta) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("transcript: missing ID")
	}
	if m.ConversationID == "" {
		return fmt.Errorf("transcript: missing ConversationID")
	}
	if m.Question == "" {
		return fmt.Errorf("transcript: missing Question")
	}
	if m.Source != SourceCache && m.Source != SourceModel {
		return fmt.Errorf("transcript: invalid Source %q", m.Source)
	}
	return nil
}

// Exchange is the fully parsed in-memory representation of a transcript
// file. Answer is the Markdown body.
type Exchange struct {
	Meta   ExchangeMeta
	Answer string
}
