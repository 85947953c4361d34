package di

import (
	"flag"
	"strings"
	"time"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/admissions-mail-filter/internal/adapters/cache"
	"github.com/mikey/admissions-mail-filter/internal/config"
	"github.com/mikey/admissions-mail-filter/internal/core"
	"github.com/mikey/admissions-mail-filter/internal/logging"
	"github.com/mikey/admissions-mail-filter/internal/whitelist"
)

// CLIFlags contains all command line flags for the one-shot CLI
type CLIFlags struct {
	// Classification flags
	TrustedDomains string

	// Input flags
	InputFile  string
	Verbose    bool
	JSONLog    bool
	ConfigFile string
}

// ParseFlags parses command line flags and returns a CLIFlags struct
func ParseFlags() *CLIFlags {
	flags := &CLIFlags{}

	flag.StringVar(&flags.TrustedDomains, "trusted", "", "Comma-separated list of trusted sender domains")
	flag.StringVar(&flags.InputFile, "file", "", "Input email file (use stdin if not specified)")
	flag.BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")
	flag.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")
	flag.StringVar(&flags.ConfigFile, "config", "", "Path to config file (overrides command line flags)")

	flag.Parse()
	return flags
}

// TrustedDomainList splits and trims the -trusted flag
func (f *CLIFlags) TrustedDomainList() []string {
	if f.TrustedDomains == "" {
		return nil
	}
	domains := strings.Split(f.TrustedDomains, ",")
	for i, domain := range domains {
		domains[i] = strings.TrimSpace(domain)
	}
	return domains
}

// BuildCLIContainer creates and configures a dependency injection container
// for the one-shot CLI. The CLI classifies a single message, so the cache
// is a throwaway in-memory one and the Gmail surface is never wired.
func BuildCLIContainer(flags *CLIFlags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
		if flags.ConfigFile != "" {
			cfg, err := config.New()
			if err != nil {
				return nil, err
			}
			logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
			return cfg, nil
		}
		return config.NewFromViper(config.NewEmptyViper()), nil
	}); err != nil {
		return nil, err
	}

	// Register the rule engine
	if err := container.Provide(core.NewEngine); err != nil {
		return nil, err
	}

	// Register filter service over a throwaway memory cache
	if err := container.Provide(func(engine *core.Engine, cfg *config.Config, flags *CLIFlags, logger *zap.Logger) *core.FilterService {
		trusted := flags.TrustedDomainList()
		if len(trusted) == 0 {
			trusted = cfg.GetEngine().TrustedDomains
		}
		mem := cache.NewMemoryCache(logger, time.Hour)
		return core.NewFilterService(engine, mem, logger, false, 0, whitelist.NewChecker(trusted, logger))
	}); err != nil {
		return nil, err
	}

	return container, nil
}
