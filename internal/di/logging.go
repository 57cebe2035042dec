package di

import (
	"strings"

	"github.com/nycb2b/site/internal/logging"
	"github.com/nycb2b/site/pkg/interfaces"
)

// commandLogger scopes a logger to a command family, e.g. site.commands.moderation.
func commandLogger(provider interfaces.LoggerProvider, family string) interfaces.Logger {
	name := strings.TrimSpace(family)
	if name == "" {
		name = "core"
	}
	logger := logging.ModuleLogger(provider, logging.CommandsModule+"."+name)
	return logging.WithFields(logger, map[string]any{
		"component":      "command",
		"command_family": name,
	})
}
