package core

import (
	"time"
)

// Email represents a single email message as exported from the mailbox.
// Missing header fields are carried as empty strings; the engine never
// faults on an incomplete record.
type Email struct {
	Subject string
	Body    string
	From    string
	To      string
	Cc      string
	Date    time.Time
}

// NormalizedEmail is the case-folded view of an Email used for pattern
// matching. It is derived fresh for each classification and discarded
// afterwards.
type NormalizedEmail struct {
	Subject  string
	Body     string
	From     string
	Combined string
}

// Result is the verdict for a single email. It is a value and is never
// mutated after construction.
type Result struct {
	// Pertains is true when the email belongs in the inbox.
	Pertains bool

	// Reason is a human-readable explanation of the verdict.
	Reason string

	// Confidence is a fixed per-rule constant in [0,1], a priority label
	// rather than a computed score.
	Confidence float64

	// MatchedRules lists the rule identifiers that produced the verdict,
	// in evaluation order. Empty for the fail-safe default.
	MatchedRules []string
}

// CacheEntry is a stored verdict keyed by a digest of the message content.
type CacheEntry struct {
	Digest       string
	Pertains     bool
	Confidence   float64
	Reason       string
	MatchedRules []string
	LastSeen     time.Time
	ExpiresAt    time.Time
}
