package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nycb2b/site/internal/richtext"
)

var (
	ErrStorageDriverUnknown      = errors.New("site config: storage driver is invalid")
	ErrStorageDSNRequired        = errors.New("site config: storage dsn is required for sql drivers")
	ErrCacheTTLInvalid           = errors.New("site config: cache ttl must be positive when cache is enabled")
	ErrEscapePolicyInvalid       = errors.New("site config: render escape policy is invalid")
	ErrAdminPasswordHashRequired = errors.New("site config: admin password hash is required when admin is enabled")
	ErrSessionTTLInvalid         = errors.New("site config: admin session ttl must be positive")
	ErrBasePathInvalid           = errors.New("site config: http base paths must start with /")
	ErrBaseURLRequired           = errors.New("site config: site base url is required")
	ErrLoggingProviderUnknown    = errors.New("site config: logging provider is invalid")
	ErrLoggingLevelInvalid       = errors.New("site config: logging level is invalid")
	ErrLoggingFormatInvalid      = errors.New("site config: logging format is invalid")
	ErrCommandTimeoutInvalid     = errors.New("site config: command timeout must not be negative")
)

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config aggregates every runtime setting of the site.
type Config struct {
	Site     SiteConfig     `yaml:"site"`
	Storage  StorageConfig  `yaml:"storage"`
	Cache    CacheConfig    `yaml:"cache"`
	Render   RenderConfig   `yaml:"render"`
	Markdown MarkdownConfig `yaml:"markdown"`
	Admin    AdminConfig    `yaml:"admin"`
	HTTP     HTTPConfig     `yaml:"http"`
	Logging  LoggingConfig  `yaml:"logging"`
	Commands CommandsConfig `yaml:"commands"`
	Features Features       `yaml:"features"`
}

// SiteConfig holds the public identity used for canonical links.
type SiteConfig struct {
	Name    string `yaml:"name"`
	BaseURL string `yaml:"base_url"`
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
	// Debug logs every SQL query.
	Debug bool `yaml:"debug"`
	// AutoMigrate creates missing tables on startup.
	AutoMigrate bool `yaml:"auto_migrate"`
}

// CacheConfig controls the repository read cache.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	TTL     time.Duration `yaml:"ttl"`
}

// RenderConfig controls the rich-text renderer.
type RenderConfig struct {
	EscapePolicy string `yaml:"escape_policy"`
}

// MarkdownConfig mirrors interfaces.ParseOptions for articles stored as markdown.
type MarkdownConfig struct {
	Extensions []string `yaml:"extensions"`
	HardWraps  bool     `yaml:"hard_wraps"`
	SafeMode   bool     `yaml:"safe_mode"`
}

// AdminConfig configures the password gate in front of moderation.
type AdminConfig struct {
	Enabled      bool          `yaml:"enabled"`
	PasswordHash string        `yaml:"password_hash"`
	Subject      string        `yaml:"subject"`
	SessionTTL   time.Duration `yaml:"session_ttl"`
}

// HTTPConfig configures the API server.
type HTTPConfig struct {
	Addr            string        `yaml:"addr"`
	APIBasePath     string        `yaml:"api_base_path"`
	AdminBasePath   string        `yaml:"admin_base_path"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes"`
}

// LoggingConfig selects and tunes the logger provider.
type LoggingConfig struct {
	Provider  string   `yaml:"provider"`
	Level     string   `yaml:"level"`
	Format    string   `yaml:"format"`
	AddSource bool     `yaml:"add_source"`
	Focus     []string `yaml:"focus"`
}

// CommandsConfig tunes the moderation, reorder and import command handlers.
type CommandsConfig struct {
	// Timeout bounds a single command. Zero disables the bound.
	Timeout time.Duration `yaml:"timeout"`
}

// Features toggles optional surfaces.
type Features struct {
	// Submissions enables the public POST endpoints.
	Submissions bool `yaml:"submissions"`
	// Preview enables the public render preview endpoint.
	Preview bool `yaml:"preview"`
	// MarkdownArticles allows articles stored in full markdown.
	MarkdownArticles bool `yaml:"markdown_articles"`
}

// DefaultConfig returns a configuration suitable for local development.
func DefaultConfig() Config {
	return Config{
		Site: SiteConfig{
			Name:    "NYC B2B",
			BaseURL: "http://localhost:8080",
		},
		Storage: StorageConfig{
			Driver:      DriverSQLite,
			DSN:         "file:site.db?cache=shared&_fk=1",
			AutoMigrate: true,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     time.Minute,
		},
		Render: RenderConfig{
			EscapePolicy: richtext.EscapeHTML.String(),
		},
		Markdown: MarkdownConfig{
			Extensions: []string{"gfm", "linkify", "tasklist"},
			SafeMode:   true,
		},
		Admin: AdminConfig{
			Subject:    "admin",
			SessionTTL: 12 * time.Hour,
		},
		HTTP: HTTPConfig{
			Addr:            ":8080",
			APIBasePath:     "/api",
			AdminBasePath:   "/admin/api",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxBodyBytes:    1 << 20,
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
		Commands: CommandsConfig{
			Timeout: 30 * time.Second,
		},
		Features: Features{
			Submissions:      true,
			Preview:          true,
			MarkdownArticles: true,
		},
	}
}

// Validate performs consistency checks. It does not touch the network or disk.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.Site.BaseURL) == "" {
		return ErrBaseURLRequired
	}

	switch driver := normalize(cfg.Storage.Driver); driver {
	case DriverMemory:
	case DriverSQLite, DriverPostgres:
		if strings.TrimSpace(cfg.Storage.DSN) == "" {
			return fmt.Errorf("%w: %s", ErrStorageDSNRequired, driver)
		}
	default:
		return fmt.Errorf("%w: %q", ErrStorageDriverUnknown, cfg.Storage.Driver)
	}

	if cfg.Cache.Enabled && cfg.Cache.TTL <= 0 {
		return ErrCacheTTLInvalid
	}

	if _, err := richtext.ParsePolicy(cfg.Render.EscapePolicy); err != nil {
		return fmt.Errorf("%w: %q", ErrEscapePolicyInvalid, cfg.Render.EscapePolicy)
	}

	if cfg.Admin.Enabled {
		if strings.TrimSpace(cfg.Admin.PasswordHash) == "" {
			return ErrAdminPasswordHashRequired
		}
		if cfg.Admin.SessionTTL <= 0 {
			return ErrSessionTTLInvalid
		}
	}

	for _, path := range []string{cfg.HTTP.APIBasePath, cfg.HTTP.AdminBasePath} {
		if !strings.HasPrefix(path, "/") {
			return fmt.Errorf("%w: %q", ErrBasePathInvalid, path)
		}
	}

	if cfg.Commands.Timeout < 0 {
		return fmt.Errorf("%w: %s", ErrCommandTimeoutInvalid, cfg.Commands.Timeout)
	}

	provider := normalize(cfg.Logging.Provider)
	switch provider {
	case "", "console", "gologger":
	default:
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if provider == "gologger" {
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}
	return nil
}

// EscapePolicy returns the parsed render policy, defaulting to EscapeHTML.
func (cfg Config) EscapePolicy() richtext.EscapePolicy {
	policy, err := richtext.ParsePolicy(cfg.Render.EscapePolicy)
	if err != nil {
		return richtext.EscapeHTML
	}
	return policy
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isSupportedLevel(level string) bool {
	switch normalize(level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch normalize(format) {
	case "json", "console", "text", "pretty":
		return true
	default:
		return false
	}
}
