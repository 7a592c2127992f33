// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// TermOrigin records how a knowledge base entry came to exist.
type TermOrigin string

const (
	// OriginConfigured marks entries seeded from the brand term
	// configuration. Their canonical form is authoritative.
	OriginConfigured TermOrigin = "configured"

	// OriginLearned marks entries discovered by the fallback-learn repair
	// strategy during a run.
	OriginLearned TermOrigin = "learned"
)

// TermEntry is one knowledge base record. The term key is stored
// case-insensitively; the canonical form preserves its casing.
type TermEntry struct {
	// Canonical is the correct spelling, capitalization, and hyphenation.
	Canonical string `json:"canonical" yaml:"canonical"`

	// FirstSeen is the RFC 3339 timestamp of the entry's creation.
	FirstSeen string `json:"first_seen" yaml:"first_seen"`

	// Origin is configured or learned.
	Origin TermOrigin `json:"origin" yaml:"origin"`
}
