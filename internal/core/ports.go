package core

import (
	"context"
)

// CacheRepository defines the interface for caching classification verdicts
type CacheRepository interface {
	// Get retrieves a cached verdict by content digest
	Get(ctx context.Context, digest string) (*CacheEntry, error)

	// Set stores a cache entry
	Set(ctx context.Context, entry *CacheEntry) error

	// Delete removes a cache entry
	Delete(ctx context.Context, digest string) error

	// Cleanup removes expired entries
	Cleanup(ctx context.Context) error
}

// MailSource supplies email records from a user's mailbox
type MailSource interface {
	// Fetch returns the next batch of emails to classify, with the
	// mailbox ids needed to act on them later
	Fetch(ctx context.Context, max int64) ([]SourcedEmail, error)
}

// ActionDispatcher applies a verdict to the mailbox. Implementations must
// be fail-open: any error while applying an action leaves the message in
// the inbox.
type ActionDispatcher interface {
	// Dispatch applies the label/move operation for one verdict
	Dispatch(ctx context.Context, msg SourcedEmail, result Result) error
}

// SourcedEmail pairs an email record with its mailbox identity
type SourcedEmail struct {
	ID    string
	Email *Email
}
