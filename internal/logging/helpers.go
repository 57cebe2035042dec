package logging

import (
	"maps"
	"strings"

	"github.com/nycb2b/site/pkg/interfaces"
)

// WithFields attaches fields when the logger supports FieldsLogger and
// returns it unchanged otherwise.
func WithFields(logger interfaces.Logger, fields map[string]any) interfaces.Logger {
	if logger == nil || len(fields) == 0 {
		return logger
	}
	if fieldsLogger, ok := logger.(interfaces.FieldsLogger); ok {
		copied := make(map[string]any, len(fields))
		maps.Copy(copied, fields)
		return fieldsLogger.WithFields(copied)
	}
	return logger
}

// WithRecord annotates a logger with the kind, id and slug of a content
// record. Empty values are skipped.
func WithRecord(logger interfaces.Logger, kind, id, slug string) interfaces.Logger {
	fields := map[string]any{}
	if v := strings.TrimSpace(kind); v != "" {
		fields["kind"] = v
	}
	if v := strings.TrimSpace(id); v != "" {
		fields["id"] = v
	}
	if v := strings.TrimSpace(slug); v != "" {
		fields["slug"] = v
	}
	return WithFields(logger, fields)
}
