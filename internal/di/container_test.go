package di_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/goliatone/go-gitcontent/internal/di"
	"github.com/goliatone/go-gitcontent/internal/runtimeconfig"
	"github.com/goliatone/go-gitcontent/internal/source"
	"github.com/goliatone/go-gitcontent/pkg/interfaces"
)

func localConfig() runtimeconfig.Config {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Source.Provider = runtimeconfig.ProviderLocal
	cfg.Source.LocalRoot = "site"
	cfg.Refresh.Enabled = false
	return cfg
}

func siteFS() fstest.MapFS {
	return fstest.MapFS{
		"content/blog/hello.md":  {Data: []byte("---\ntitle: Hello\ndate: 2024-02-01\npublish: true\n---\n**hi**\n")},
		"content/blog/draft.md":  {Data: []byte("---\ntitle: Draft\npublish: false\n---\nnot yet\n")},
		"content/images/cat.png": {Data: []byte("png")},
	}
}

func TestContainerLogsConfiguration(t *testing.T) {
	rec := newRecordingProvider()
	_, err := di.NewContainer(localConfig(),
		di.WithLoggerProvider(rec),
		di.WithSource(source.NewLocal(siteFS(), "site")),
	)
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}

	entry := rec.find("container.configured")
	if entry == nil {
		t.Fatalf("expected container.configured log entry, got %#v", rec.entries)
	}
	if got := entry.fields["module"]; got != "gitcontent.di" {
		t.Fatalf("expected module field gitcontent.di, got %v", got)
	}
	if got := entry.fields["collections"]; got != 2 {
		t.Fatalf("expected two collections, got %v", got)
	}
}

func TestContainerRejectsInvalidConfig(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Source.Owner = ""
	if _, err := di.NewContainer(cfg); !errors.Is(err, runtimeconfig.ErrSourceRepositoryMissing) {
		t.Fatalf("expected ErrSourceRepositoryMissing, got %v", err)
	}
}

func TestContainerLoadsAndRendersPage(t *testing.T) {
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	container, err := di.NewContainer(localConfig(),
		di.WithLoggerProvider(newRecordingProvider()),
		di.WithSource(source.NewLocal(siteFS(), "site")),
		di.WithClock(func() time.Time { return fixed }),
	)
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}

	if err := container.Loader().Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer container.Loader().Stop()

	var sb strings.Builder
	if err := container.Page().Render(&sb); err != nil {
		t.Fatalf("render: %v", err)
	}
	html := sb.String()
	if !strings.Contains(html, "<strong>hi</strong>") {
		t.Fatalf("expected published post body, got %s", html)
	}
	if strings.Contains(html, "not yet") {
		t.Fatalf("expected draft hidden, got %s", html)
	}
	if !strings.Contains(html, `src="/content/images/cat.png"`) {
		t.Fatalf("expected synthesized image card, got %s", html)
	}

	result, ok := container.Loader().Result("posts")
	if !ok || len(result.Items) != 2 {
		t.Fatalf("expected both posts fetched, got %+v", result)
	}
}

func TestContainerRegistersCommands(t *testing.T) {
	reg := &recordingRegistry{}
	container, err := di.NewContainer(localConfig(),
		di.WithLoggerProvider(newRecordingProvider()),
		di.WithSource(source.NewLocal(siteFS(), "site")),
		di.WithCommandRegistry(reg),
	)
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}
	if len(reg.handlers) != 2 {
		t.Fatalf("expected two registered handlers, got %d", len(reg.handlers))
	}
	if container.Commands().Refresh == nil || container.API() == nil {
		t.Fatalf("expected commands and api wired")
	}
}

type recordingRegistry struct {
	handlers []any
}

func (r *recordingRegistry) RegisterCommand(handler any) error {
	r.handlers = append(r.handlers, handler)
	return nil
}

type recordingProvider struct {
	mu      sync.Mutex
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
	p.mu.Lock()
	p.entries = append(p.entries, entry)
	p.mu.Unlock()
}

func (p *recordingProvider) find(msg string) *recordedEntry {
	p.mu.Lock()
	defer p.mu.Unlock()
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
