package factory

import (
	"context"
	"fmt"

	"github.com/mikey/admissions-mail-filter/internal/adapters/filter"
	"github.com/mikey/admissions-mail-filter/internal/adapters/mailbox"
	"github.com/mikey/admissions-mail-filter/internal/config"
	"github.com/mikey/admissions-mail-filter/internal/core"
	"github.com/mikey/admissions-mail-filter/internal/ports"
	"github.com/mikey/admissions-mail-filter/internal/scanner"
	"github.com/mikey/admissions-mail-filter/internal/utils"
	"go.uber.org/zap"
)

// FilterFactory creates filter surfaces based on configuration
type FilterFactory struct {
	cfg     *config.Config
	logger  *zap.Logger
	service *core.FilterService
	tp      *utils.TextProcessor
}

// NewFilterFactory creates a new filter factory
func NewFilterFactory(cfg *config.Config, logger *zap.Logger, service *core.FilterService, tp *utils.TextProcessor) *FilterFactory {
	return &FilterFactory{
		cfg:     cfg,
		logger:  logger,
		service: service,
		tp:      tp,
	}
}

// CreateEmailFilter creates a filter surface based on the configuration
func (f *FilterFactory) CreateEmailFilter() (ports.EmailFilter, error) {
	filterType := f.cfg.GetString("server.filter_type")

	switch filterType {
	case "scanner":
		return f.createScanner()
	case "smtp":
		srv := f.cfg.GetServer()
		return filter.NewSMTPFilter(
			f.service,
			f.logger,
			srv.ListenAddress,
			srv.StatusHeader,
			srv.ConfHeader,
			srv.ReasonHeader,
			srv.RulesHeader,
			srv.SubjectPrefix,
			srv.ModifySubject,
			srv.RelayAddress,
			srv.RelayPort,
			srv.RelayEnabled,
		), nil
	case "cli":
		return filter.NewCliFilter(
			f.service,
			f.logger,
			f.cfg.GetBool("cli.verbose"),
		)
	default:
		return nil, fmt.Errorf("unsupported filter type: %s", filterType)
	}
}

// createScanner wires the Gmail source and dispatcher under the batch
// scanner surface
func (f *FilterFactory) createScanner() (ports.EmailFilter, error) {
	gm := f.cfg.GetGmail()

	svc, err := mailbox.NewGmailService(context.Background(), gm.CredentialsFile, gm.TokenFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}

	source := mailbox.NewGmailSource(svc, f.logger, f.tp, gm.User, gm.Query)
	dispatcher := mailbox.NewGmailDispatcher(svc, f.logger, gm.User, gm.FilteredLabel, f.cfg.GetBool("scanner.dry_run"))

	interval, err := f.cfg.GetDuration("scanner.interval")
	if err != nil {
		return nil, fmt.Errorf("invalid scanner interval: %w", err)
	}

	return scanner.New(
		f.service,
		source,
		dispatcher,
		f.logger,
		interval,
		int64(gm.BatchSize),
	), nil
}
