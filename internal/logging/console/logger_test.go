package console_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-gitcontent/internal/logging"
	"github.com/goliatone/go-gitcontent/internal/logging/console"
)

func TestLoggerWritesScopedContextAndCallFields(t *testing.T) {
	var buf bytes.Buffer
	now := time.Date(2024, 3, 14, 15, 9, 26, 535897000, time.UTC)
	minLevel := console.LevelDebug
	provider := console.NewProvider(console.Options{
		Writer:   &buf,
		TimeFunc: func() time.Time { return now },
		MinLevel: &minLevel,
	})

	logger := logging.ModuleLogger(provider, "gitcontent.fetcher")
	logger = logging.WithFields(logger, map[string]any{"collection": "posts"})
	ctx := logging.ContextWithFields(context.Background(), map[string]any{"request_id": "req-1"})
	logger = logger.WithContext(ctx)

	logger.Info("collection.loaded", "items", 4, "title", "Hello world", "took", 1500*time.Millisecond)

	got := strings.TrimSpace(buf.String())
	want := `15:09:26.535 INF [gitcontent.fetcher] collection.loaded collection=posts request_id=req-1 items=4 title="Hello world" took=1.5s`
	if got != want {
		t.Fatalf("unexpected line\nwant: %s\ngot:  %s", want, got)
	}
}

func TestLoggerFiltersBelowMinLevel(t *testing.T) {
	var buf bytes.Buffer
	provider := console.NewProvider(console.Options{Writer: &buf})

	logger := provider.GetLogger("gitcontent.loader")
	logger.Debug("load.skipped")
	logger.Warn("load.superseded", "generation", 3)

	out := strings.TrimSpace(buf.String())
	if strings.Contains(out, "load.skipped") {
		t.Fatalf("expected debug line filtered, got %s", out)
	}
	if !strings.HasSuffix(out, "WRN [gitcontent.loader] load.superseded generation=3") {
		t.Fatalf("unexpected warn line: %s", out)
	}
}

func TestLoggerRendersTextCodesAndDanglingArgs(t *testing.T) {
	var buf bytes.Buffer
	provider := console.NewProvider(console.Options{Writer: &buf})

	err := goerrors.New("file vanished", goerrors.CategoryExternal).WithTextCode("ITEM_FETCH_FAILED")
	provider.GetLogger("gitcontent.fetcher").Error("collection.item.failed", "error", err, "orphan")

	out := buf.String()
	if !strings.Contains(out, `error="ITEM_FETCH_FAILED: `) || !strings.Contains(out, "file vanished") {
		t.Fatalf("expected text code in error value, got %s", out)
	}
	if !strings.Contains(out, "arg1=orphan") {
		t.Fatalf("expected dangling value under positional key, got %s", out)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]console.Level{
		"trace":   console.LevelTrace,
		"DEBUG":   console.LevelDebug,
		"":        console.LevelInfo,
		"warning": console.LevelWarn,
		" error ": console.LevelError,
	}
	for name, want := range cases {
		got, ok := console.ParseLevel(name)
		if !ok || got != want {
			t.Fatalf("ParseLevel(%q) = %v, %v; want %v", name, got, ok, want)
		}
	}
	if _, ok := console.ParseLevel("loud"); ok {
		t.Fatal("expected unknown level rejected")
	}
}
