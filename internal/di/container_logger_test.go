package di_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nycb2b/site/internal/di"
	"github.com/nycb2b/site/internal/events"
	"github.com/nycb2b/site/internal/runtimeconfig"
	"github.com/nycb2b/site/pkg/interfaces"
)

func memoryConfig() runtimeconfig.Config {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Storage.Driver = runtimeconfig.DriverMemory
	cfg.Storage.DSN = ""
	return cfg
}

func TestContainerLogsThroughInjectedProvider(t *testing.T) {
	rec := newRecordingProvider()

	container, err := di.NewContainer(memoryConfig(), di.WithLoggerProvider(rec))
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}

	entry := rec.find("container.configured")
	if entry == nil {
		t.Fatalf("expected container.configured log entry, got %#v", rec.entries)
	}
	if got := entry.fields["driver"]; got != runtimeconfig.DriverMemory {
		t.Fatalf("expected driver field memory, got %v", got)
	}
	if got := entry.fields["module"]; got != "site" {
		t.Fatalf("expected module field site, got %v", got)
	}

	ctx := context.Background()
	svc := container.EventService()
	first, err := svc.Create(ctx, events.CreateEventInput{EventInput: events.EventInput{
		Title:    "Founders Mixer",
		StartsAt: time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC),
	}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Reorder(ctx, []uuid.UUID{first.ID}); err != nil {
		t.Fatalf("reorder: %v", err)
	}
	reordered := rec.find("events.reordered")
	if reordered == nil {
		t.Fatalf("expected events.reordered log entry")
	}
	if got := reordered.fields["module"]; got != "site.events" {
		t.Fatalf("expected module field site.events, got %v", got)
	}
}

type recordingProvider struct {
	entries []recordedEntry
}

type recordedEntry struct {
	level  string
	msg    string
	fields map[string]any
}

func newRecordingProvider() *recordingProvider {
	return &recordingProvider{entries: []recordedEntry{}}
}

func (p *recordingProvider) GetLogger(name string) interfaces.Logger {
	return &recordingLogger{
		provider: p,
		fields: map[string]any{
			"logger": name,
		},
	}
}

func (p *recordingProvider) record(entry recordedEntry) {
	p.entries = append(p.entries, entry)
}

func (p *recordingProvider) find(msg string) *recordedEntry {
	for i := range p.entries {
		if p.entries[i].msg == msg {
			return &p.entries[i]
		}
	}
	return nil
}

type recordingLogger struct {
	provider *recordingProvider
	fields   map[string]any
}

var _ interfaces.Logger = (*recordingLogger)(nil)

func (l *recordingLogger) Trace(msg string, args ...any) { l.log("TRACE", msg, args...) }
func (l *recordingLogger) Debug(msg string, args ...any) { l.log("DEBUG", msg, args...) }
func (l *recordingLogger) Info(msg string, args ...any)  { l.log("INFO", msg, args...) }
func (l *recordingLogger) Warn(msg string, args ...any)  { l.log("WARN", msg, args...) }
func (l *recordingLogger) Error(msg string, args ...any) { l.log("ERROR", msg, args...) }
func (l *recordingLogger) Fatal(msg string, args ...any) { l.log("FATAL", msg, args...) }

func (l *recordingLogger) WithFields(fields map[string]any) interfaces.Logger {
	if len(fields) == 0 {
		return l
	}
	merged := make(map[string]any, len(l.fields)+len(fields))
	for key, value := range l.fields {
		merged[key] = value
	}
	for key, value := range fields {
		merged[key] = value
	}
	return &recordingLogger{
		provider: l.provider,
		fields:   merged,
	}
}

func (l *recordingLogger) WithContext(context.Context) interfaces.Logger {
	return &recordingLogger{
		provider: l.provider,
		fields:   cloneFields(l.fields),
	}
}

func (l *recordingLogger) log(level, msg string, args ...any) {
	fields := cloneFields(l.fields)
	for i := 0; i < len(args); i += 2 {
		if i+1 >= len(args) {
			break
		}
		key, _ := args[i].(string)
		if key == "" {
			continue
		}
		fields[key] = args[i+1]
	}
	l.provider.record(recordedEntry{
		level:  level,
		msg:    msg,
		fields: fields,
	})
}

func cloneFields(fields map[string]any) map[string]any {
	if len(fields) == 0 {
		return map[string]any{}
	}
	copied := make(map[string]any, len(fields))
	for key, value := range fields {
		copied[key] = value
	}
	return copied
}
