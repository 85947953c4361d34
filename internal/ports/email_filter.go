package ports

import (
	"context"

	"github.com/mikey/admissions-mail-filter/internal/core"
)

// EmailFilter defines the interface for a filtering surface: the mailbox
// scanner or the SMTP content filter
type EmailFilter interface {
	// ProcessEmail classifies one email and returns the verdict
	ProcessEmail(ctx context.Context, email *core.Email) (core.Result, error)

	// Start starts the filter surface
	Start() error

	// Stop stops the filter surface
	Stop() error
}
