package logging

import (
	"context"

	"github.com/nycb2b/site/pkg/interfaces"
)

// Module names used when requesting loggers from a provider.
const (
	RootModule     = "site"
	EventsModule   = "site.events"
	JobsModule     = "site.jobs"
	ArticlesModule = "site.articles"
	AuthModule     = "site.auth"
	HTTPModule     = "site.http"
	CommandsModule = "site.commands"
	StorageModule  = "site.storage"
)

// ModuleLogger returns a logger scoped to module. A nil provider, or one that
// returns nil, yields a no-op logger. The module name is attached as the
// "module" field.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = RootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{"module": module})
}

// NoOp returns a logger that drops every entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var (
	_ interfaces.Logger       = noopLogger{}
	_ interfaces.FieldsLogger = noopLogger{}
)

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
