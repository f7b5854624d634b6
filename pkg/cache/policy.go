// Package cache implements the persistent question/answer cache used by the
// assistant. Questions are normalized into lookup keys, answers are stored in
// a JSON file per matching policy, and all writes go through an atomic
// temp-file-and-rename discipline so a crash never leaves a half-written
// cache behind.
package cache

import (
	"fmt"
	"strings"
	"unicode"
)

// PunctuationPolicy controls how punctuation affects question matching.
// Exactly one policy is active at a time; each policy has its own backing
// store file.
type PunctuationPolicy string

const (
	// PolicyExact preserves punctuation when computing lookup keys, so
	// "what's up?" and "whats up" are distinct questions.
	PolicyExact PunctuationPolicy = "exact"

	// PolicyIgnored strips punctuation before matching, so "what's up?"
	// and "whats up" share a cache entry.
	PolicyIgnored PunctuationPolicy = "ignored"
)

// Valid reports whether p is one of the two known policies.
func (p PunctuationPolicy) Valid() bool {
	return p == PolicyExact || p == PolicyIgnored
}

// ParsePolicy converts a user-supplied string into a PunctuationPolicy.
func ParsePolicy(s string) (PunctuationPolicy, error) {
	switch PunctuationPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case PolicyExact:
		return PolicyExact, nil
	case PolicyIgnored:
		return PolicyIgnored, nil
	default:
		return "", fmt.Errorf("cache: unknown punctuation policy %q", s)
	}
}

// Normalize maps raw question text to its canonical lookup key under the
// given policy: lowercase, leading/trailing whitespace trimmed, internal
// whitespace runs collapsed to a single space. Under PolicyIgnored,
// punctuation is stripped before whitespace collapsing.
//
// Normalize is pure and total; it never fails, and normalizing an already
// normalized string is a no-op.
func Normalize(question string, policy PunctuationPolicy) string {
	s := strings.ToLower(question)
	if policy == PolicyIgnored {
		s = strings.Map(func(r rune) rune {
			if unicode.IsPunct(r) {
				return -1
			}
			return r
		}, s)
	}
	return strings.Join(strings.Fields(s), " ")
}
