package cms

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/goliatone/go-gitcontent/internal/content"
	"github.com/goliatone/go-gitcontent/internal/di"
	"github.com/goliatone/go-gitcontent/internal/fetcher"
	"github.com/goliatone/go-gitcontent/internal/loader"
	"github.com/goliatone/go-gitcontent/internal/page"
)

// Item exports the parsed content item.
type Item = content.Item

// Metadata exports the front matter mapping.
type Metadata = content.Metadata

// Result exports a collection fetch result.
type Result = fetcher.Result

// Status exports the loader status snapshot.
type Status = loader.Status

// Option exports the container overrides.
type Option = di.Option

var (
	WithLoggerProvider   = di.WithLoggerProvider
	WithSource           = di.WithSource
	WithHTTPClient       = di.WithHTTPClient
	WithMarkdownRenderer = di.WithMarkdownRenderer
	WithClock            = di.WithClock
	WithCommandRegistry  = di.WithCommandRegistry
	WithCronRegistrar    = di.WithCronRegistrar
)

// Module is the top level façade over the content pipeline.
type Module struct {
	container *di.Container
}

// New constructs a module using cfg and optional container overrides.
func New(cfg Config, opts ...Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Loader returns the render loop service.
func (m *Module) Loader() *loader.Service {
	return m.container.Loader()
}

// Page returns the rendered page.
func (m *Module) Page() *page.Page {
	return m.container.Page()
}

// Handler returns the HTTP handler serving the page and JSON views.
func (m *Module) Handler() http.Handler {
	return m.container.API().Router()
}

// Start runs the initial load and the background refresh.
func (m *Module) Start(ctx context.Context) error {
	return m.container.Loader().Start(ctx)
}

// Refresh runs a manual refresh.
func (m *Module) Refresh(ctx context.Context) error {
	return m.container.Loader().Refresh(ctx)
}

// Stop halts background refresh.
func (m *Module) Stop() {
	m.container.Loader().Stop()
}

// Build loads every collection once and writes the page to
// Config.Output.Path. A failed load fails the build.
func (m *Module) Build(ctx context.Context) (string, error) {
	cfg := m.container.Config
	if err := cfg.ValidateBuild(); err != nil {
		return "", err
	}
	if err := m.container.Loader().Load(ctx, loader.TriggerInitial); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := m.container.Page().Render(&buf); err != nil {
		return "", fmt.Errorf("render page: %w", err)
	}

	target := cfg.Output.Path
	if dir := filepath.Dir(target); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(target, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write page: %w", err)
	}
	return target, nil
}
