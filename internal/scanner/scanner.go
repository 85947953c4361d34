package scanner

import (
	"context"
	"time"

	"github.com/mikey/admissions-mail-filter/internal/core"
	"go.uber.org/zap"
)

// Scanner periodically pulls a batch of messages from the mailbox source,
// classifies each one, and hands the verdicts to the action dispatcher.
// Per-message failures are logged and skipped; a bad record never aborts
// a batch.
type Scanner struct {
	service    *core.FilterService
	source     core.MailSource
	dispatcher core.ActionDispatcher
	logger     *zap.Logger
	interval   time.Duration
	batchSize  int64
	cancel     context.CancelFunc
	doneCh     chan struct{}
}

// New creates a new mailbox scanner
func New(
	service *core.FilterService,
	source core.MailSource,
	dispatcher core.ActionDispatcher,
	logger *zap.Logger,
	interval time.Duration,
	batchSize int64,
) *Scanner {
	return &Scanner{
		service:    service,
		source:     source,
		dispatcher: dispatcher,
		logger:     logger,
		interval:   interval,
		batchSize:  batchSize,
	}
}

// ProcessEmail classifies one email
func (s *Scanner) ProcessEmail(ctx context.Context, email *core.Email) (core.Result, error) {
	return s.service.Classify(ctx, email), nil
}

// Start begins the periodic scan loop
func (s *Scanner) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.doneCh = make(chan struct{})

	go func() {
		defer close(s.doneCh)

		// First pass immediately, then on the interval
		s.RunOnce(ctx)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.RunOnce(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()

	s.logger.Info("Mailbox scanner started",
		zap.Duration("interval", s.interval),
		zap.Int64("batch_size", s.batchSize))
	return nil
}

// Stop stops the scan loop
func (s *Scanner) Stop() error {
	if s.cancel != nil {
		s.cancel()
		<-s.doneCh
	}
	s.logger.Info("Mailbox scanner stopped")
	return nil
}

// RunOnce fetches and processes a single batch. It returns the number of
// messages kept and filtered.
func (s *Scanner) RunOnce(ctx context.Context) (kept, filtered int) {
	emails, err := s.source.Fetch(ctx, s.batchSize)
	if err != nil {
		s.logger.Error("Failed to fetch mailbox batch", zap.Error(err))
		return 0, 0
	}

	for _, msg := range emails {
		result := s.service.Classify(ctx, msg.Email)

		if err := s.dispatcher.Dispatch(ctx, msg, result); err != nil {
			// The dispatcher is fail-open: an action error means the
			// message stayed in the inbox. Count it as kept and move on.
			s.logger.Warn("Dispatch failed, message kept in inbox",
				zap.String("id", msg.ID), zap.Error(err))
			kept++
			continue
		}

		if result.Pertains {
			kept++
		} else {
			filtered++
		}
	}

	s.logger.Info("Scan batch complete",
		zap.Int("total", len(emails)),
		zap.Int("kept", kept),
		zap.Int("filtered", filtered))
	return kept, filtered
}
