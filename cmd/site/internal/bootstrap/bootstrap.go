package bootstrap

import (
	"fmt"
	"os"
	"strings"

	site "github.com/nycb2b/site"
	"github.com/nycb2b/site/internal/di"
	"github.com/nycb2b/site/internal/identity"
	"github.com/nycb2b/site/internal/runtimeconfig"
	"github.com/nycb2b/site/pkg/interfaces"
)

// Options captures configuration for CLI bootstraps.
type Options struct {
	ConfigPath     string
	Driver         string
	DSN            string
	LogLevel       string
	LoggerProvider interfaces.LoggerProvider
	IDGenerator    identity.Generator
	Lookup         runtimeconfig.LookupFunc
}

// LoadConfig reads the config file, applies SITE_* overrides and then the
// explicit flag overrides carried by opts.
func LoadConfig(opts Options) (site.Config, error) {
	lookup := opts.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	cfg, err := runtimeconfig.LoadWithEnv(opts.ConfigPath, lookup)
	if err != nil {
		return site.Config{}, err
	}
	if driver := strings.TrimSpace(opts.Driver); driver != "" {
		cfg.Storage.Driver = driver
		if strings.EqualFold(driver, runtimeconfig.DriverMemory) {
			cfg.Storage.DSN = ""
		}
	}
	if dsn := strings.TrimSpace(opts.DSN); dsn != "" {
		cfg.Storage.DSN = dsn
	}
	if level := strings.TrimSpace(opts.LogLevel); level != "" {
		cfg.Logging.Level = level
	}
	return cfg, nil
}

// BuildModule constructs a site module from the options.
func BuildModule(opts Options) (*site.Module, error) {
	cfg, err := LoadConfig(opts)
	if err != nil {
		return nil, err
	}

	diOpts := []di.Option{}
	if opts.LoggerProvider != nil {
		diOpts = append(diOpts, di.WithLoggerProvider(opts.LoggerProvider))
	}
	if opts.IDGenerator != nil {
		diOpts = append(diOpts, di.WithIDGenerator(opts.IDGenerator))
	}

	module, err := site.New(cfg, diOpts...)
	if err != nil {
		return nil, fmt.Errorf("initialise site module: %w", err)
	}
	return module, nil
}
