package runtimeconfig_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nycb2b/site/internal/richtext"
	"github.com/nycb2b/site/internal/runtimeconfig"
)

func TestDefaultConfigValidates(t *testing.T) {
	if err := runtimeconfig.DefaultConfig().Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
}

func TestConfigValidateErrors(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*runtimeconfig.Config)
		want   error
	}{
		{
			name:   "unknown driver",
			mutate: func(c *runtimeconfig.Config) { c.Storage.Driver = "mongo" },
			want:   runtimeconfig.ErrStorageDriverUnknown,
		},
		{
			name:   "postgres without dsn",
			mutate: func(c *runtimeconfig.Config) { c.Storage.Driver = "postgres"; c.Storage.DSN = " " },
			want:   runtimeconfig.ErrStorageDSNRequired,
		},
		{
			name:   "cache without ttl",
			mutate: func(c *runtimeconfig.Config) { c.Cache.TTL = 0 },
			want:   runtimeconfig.ErrCacheTTLInvalid,
		},
		{
			name:   "unknown escape policy",
			mutate: func(c *runtimeconfig.Config) { c.Render.EscapePolicy = "strip" },
			want:   runtimeconfig.ErrEscapePolicyInvalid,
		},
		{
			name:   "admin without hash",
			mutate: func(c *runtimeconfig.Config) { c.Admin.Enabled = true },
			want:   runtimeconfig.ErrAdminPasswordHashRequired,
		},
		{
			name: "admin without session ttl",
			mutate: func(c *runtimeconfig.Config) {
				c.Admin.Enabled = true
				c.Admin.PasswordHash = "$2a$10$hash"
				c.Admin.SessionTTL = 0
			},
			want: runtimeconfig.ErrSessionTTLInvalid,
		},
		{
			name:   "relative base path",
			mutate: func(c *runtimeconfig.Config) { c.HTTP.AdminBasePath = "admin" },
			want:   runtimeconfig.ErrBasePathInvalid,
		},
		{
			name:   "unknown logging provider",
			mutate: func(c *runtimeconfig.Config) { c.Logging.Provider = "syslog" },
			want:   runtimeconfig.ErrLoggingProviderUnknown,
		},
		{
			name:   "invalid logging level",
			mutate: func(c *runtimeconfig.Config) { c.Logging.Level = "loud" },
			want:   runtimeconfig.ErrLoggingLevelInvalid,
		},
		{
			name: "invalid gologger format",
			mutate: func(c *runtimeconfig.Config) {
				c.Logging.Provider = "gologger"
				c.Logging.Format = "xml"
			},
			want: runtimeconfig.ErrLoggingFormatInvalid,
		},
		{
			name:   "negative command timeout",
			mutate: func(c *runtimeconfig.Config) { c.Commands.Timeout = -time.Second },
			want:   runtimeconfig.ErrCommandTimeoutInvalid,
		},
		{
			name:   "missing base url",
			mutate: func(c *runtimeconfig.Config) { c.Site.BaseURL = "" },
			want:   runtimeconfig.ErrBaseURLRequired,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := runtimeconfig.DefaultConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestMemoryDriverNeedsNoDSN(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Storage.Driver = "memory"
	cfg.Storage.DSN = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := runtimeconfig.LoadWithEnv(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTP.Addr != runtimeconfig.DefaultConfig().HTTP.Addr {
		t.Fatalf("expected default addr, got %q", cfg.HTTP.Addr)
	}
}

func TestLoadMergesFileAndEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.yaml")
	content := `
site:
  name: NYC B2B
  base_url: https://nycb2b.test
storage:
  driver: postgres
  dsn: postgres://localhost/site
admin:
  enabled: true
  password_hash: "$2a$10$fromfile"
  session_ttl: 30m
render:
  escape_policy: legacy
commands:
  timeout: 5s
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	env := map[string]string{
		"SITE_DATABASE_URL":  "postgres://db.internal/site",
		"SITE_CACHE_ENABLED": "false",
		"SITE_SESSION_TTL":   "2h",
	}
	cfg, err := runtimeconfig.LoadWithEnv(path, func(key string) (string, bool) {
		value, ok := env[key]
		return value, ok
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Site.BaseURL != "https://nycb2b.test" {
		t.Fatalf("unexpected base url %q", cfg.Site.BaseURL)
	}
	if cfg.Storage.DSN != "postgres://db.internal/site" {
		t.Fatalf("expected env DSN override, got %q", cfg.Storage.DSN)
	}
	if cfg.Cache.Enabled {
		t.Fatalf("expected cache disabled by env")
	}
	if cfg.Admin.SessionTTL != 2*time.Hour {
		t.Fatalf("expected env session ttl, got %s", cfg.Admin.SessionTTL)
	}
	if cfg.Commands.Timeout != 5*time.Second {
		t.Fatalf("expected file command timeout, got %s", cfg.Commands.Timeout)
	}
	if cfg.EscapePolicy() != richtext.LegacyPassthrough {
		t.Fatalf("expected legacy policy, got %s", cfg.EscapePolicy())
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestLoadRejectsBadEnvironmentValues(t *testing.T) {
	_, err := runtimeconfig.LoadWithEnv("", func(key string) (string, bool) {
		if key == "SITE_SESSION_TTL" {
			return "forever", true
		}
		return "", false
	})
	if err == nil {
		t.Fatalf("expected error for invalid duration")
	}
}

func TestLoadCommandTimeoutFromEnvironment(t *testing.T) {
	cfg, err := runtimeconfig.LoadWithEnv("", func(key string) (string, bool) {
		if key == "SITE_COMMAND_TIMEOUT" {
			return "45s", true
		}
		return "", false
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Commands.Timeout != 45*time.Second {
		t.Fatalf("expected env command timeout, got %s", cfg.Commands.Timeout)
	}

	_, err = runtimeconfig.LoadWithEnv("", func(key string) (string, bool) {
		if key == "SITE_COMMAND_TIMEOUT" {
			return "soon", true
		}
		return "", false
	})
	if err == nil {
		t.Fatalf("expected error for invalid command timeout")
	}
}
