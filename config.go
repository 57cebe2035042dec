package site

import "github.com/nycb2b/site/internal/runtimeconfig"

var (
	ErrStorageDriverUnknown      = runtimeconfig.ErrStorageDriverUnknown
	ErrStorageDSNRequired        = runtimeconfig.ErrStorageDSNRequired
	ErrCacheTTLInvalid           = runtimeconfig.ErrCacheTTLInvalid
	ErrEscapePolicyInvalid       = runtimeconfig.ErrEscapePolicyInvalid
	ErrAdminPasswordHashRequired = runtimeconfig.ErrAdminPasswordHashRequired
	ErrSessionTTLInvalid         = runtimeconfig.ErrSessionTTLInvalid
	ErrBasePathInvalid           = runtimeconfig.ErrBasePathInvalid
	ErrBaseURLRequired           = runtimeconfig.ErrBaseURLRequired
	ErrLoggingProviderUnknown    = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid       = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid      = runtimeconfig.ErrLoggingFormatInvalid
	ErrCommandTimeoutInvalid     = runtimeconfig.ErrCommandTimeoutInvalid
)

type (
	Config         = runtimeconfig.Config
	SiteConfig     = runtimeconfig.SiteConfig
	StorageConfig  = runtimeconfig.StorageConfig
	CacheConfig    = runtimeconfig.CacheConfig
	RenderConfig   = runtimeconfig.RenderConfig
	MarkdownConfig = runtimeconfig.MarkdownConfig
	AdminConfig    = runtimeconfig.AdminConfig
	HTTPConfig     = runtimeconfig.HTTPConfig
	LoggingConfig  = runtimeconfig.LoggingConfig
	CommandsConfig = runtimeconfig.CommandsConfig
	Features       = runtimeconfig.Features
)

// DefaultConfig returns the baseline configuration.
func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig reads a YAML config file and applies SITE_* environment overrides.
func LoadConfig(path string) (Config, error) {
	return runtimeconfig.Load(path)
}
