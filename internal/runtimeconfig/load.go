package runtimeconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SITE_"

// LookupFunc resolves an environment variable.
type LookupFunc func(key string) (string, bool)

// Load reads the YAML file at path over DefaultConfig and applies SITE_*
// environment overrides. A missing file yields the defaults. The result is
// not validated.
func Load(path string) (Config, error) {
	return LoadWithEnv(path, os.LookupEnv)
}

// LoadWithEnv is Load with an explicit environment lookup.
func LoadWithEnv(path string, lookup LookupFunc) (Config, error) {
	cfg := DefaultConfig()

	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("site config: read %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("site config: parse %s: %w", path, err)
			}
		}
	}

	if lookup == nil {
		lookup = func(string) (string, bool) { return "", false }
	}
	if err := applyEnvOverrides(&cfg, lookup); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config, lookup LookupFunc) error {
	str := func(name string, target *string) {
		if value, ok := lookup(EnvPrefix + name); ok && strings.TrimSpace(value) != "" {
			*target = strings.TrimSpace(value)
		}
	}
	str("BASE_URL", &cfg.Site.BaseURL)
	str("STORAGE_DRIVER", &cfg.Storage.Driver)
	str("DATABASE_URL", &cfg.Storage.DSN)
	str("ESCAPE_POLICY", &cfg.Render.EscapePolicy)
	str("ADMIN_PASSWORD_HASH", &cfg.Admin.PasswordHash)
	str("HTTP_ADDR", &cfg.HTTP.Addr)
	str("LOG_PROVIDER", &cfg.Logging.Provider)
	str("LOG_LEVEL", &cfg.Logging.Level)
	str("LOG_FORMAT", &cfg.Logging.Format)

	if value, ok := lookup(EnvPrefix + "CACHE_ENABLED"); ok && value != "" {
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("site config: %sCACHE_ENABLED: %w", EnvPrefix, err)
		}
		cfg.Cache.Enabled = enabled
	}
	durations := map[string]*time.Duration{
		"SESSION_TTL":     &cfg.Admin.SessionTTL,
		"COMMAND_TIMEOUT": &cfg.Commands.Timeout,
	}
	for name, target := range durations {
		value, ok := lookup(EnvPrefix + name)
		if !ok || value == "" {
			continue
		}
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("site config: %s%s: %w", EnvPrefix, name, err)
		}
		*target = parsed
	}
	return nil
}
