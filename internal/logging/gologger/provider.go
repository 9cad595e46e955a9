// Package gologger backs the pipeline loggers with go-logger for structured
// JSON or pretty output.
package gologger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-gitcontent/internal/logging"
	"github.com/goliatone/go-gitcontent/internal/runtimeconfig"
	"github.com/goliatone/go-gitcontent/pkg/interfaces"
)

const modulePrefix = "gitcontent."

var formats = map[string]func() glog.Option{
	"":        glog.WithLoggerTypeJSON,
	"json":    glog.WithLoggerTypeJSON,
	"console": glog.WithLoggerTypeConsole,
	"pretty":  glog.WithLoggerTypePretty,
}

var levels = map[string]string{
	"trace":   glog.Trace,
	"debug":   glog.Debug,
	"info":    glog.Info,
	"warn":    glog.Warn,
	"warning": glog.Warn,
	"error":   glog.Error,
	"fatal":   glog.Fatal,
}

// Provider hands out one go-logger child per module name.
type Provider struct {
	root *glog.BaseLogger

	mu       sync.Mutex
	children map[string]interfaces.Logger
}

// NewProvider builds a provider from the logging section of the config.
// Focus entries may omit the "gitcontent." prefix: "fetcher" selects
// gitcontent.fetcher.
func NewProvider(cfg runtimeconfig.LoggingConfig) (*Provider, error) {
	format, ok := formats[strings.ToLower(strings.TrimSpace(cfg.Format))]
	if !ok {
		return nil, fmt.Errorf("logging: unsupported go-logger format %q", cfg.Format)
	}
	options := []glog.Option{format()}
	if level, ok := levels[strings.ToLower(strings.TrimSpace(cfg.Level))]; ok {
		options = append(options, glog.WithLevel(level))
	}
	if cfg.AddSource {
		options = append(options, glog.WithAddSource(true))
	}

	root := glog.NewLogger(options...)
	if focus := focusModules(cfg.Focus); len(focus) > 0 {
		root.Focus(focus...)
	}
	return &Provider{root: root, children: map[string]interfaces.Logger{}}, nil
}

// GetLogger returns the cached child logger for name.
func (p *Provider) GetLogger(name string) interfaces.Logger {
	if p == nil || p.root == nil {
		return logging.NoOp()
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return &adapter{inner: p.root}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if logger, ok := p.children[name]; ok {
		return logger
	}
	logger := &adapter{inner: p.root.GetLogger(name)}
	p.children[name] = logger
	return logger
}

func focusModules(names []string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if !strings.HasPrefix(name, modulePrefix) {
			name = modulePrefix + name
		}
		out = append(out, name)
	}
	return out
}

// adapter forwards to go-logger. Error values carrying a go-errors text code
// also log it under text_code so JSON output can be filtered by code.
type adapter struct {
	inner glog.Logger
}

func (l *adapter) Trace(msg string, args ...any) { l.inner.Trace(msg, withTextCode(args)...) }
func (l *adapter) Debug(msg string, args ...any) { l.inner.Debug(msg, withTextCode(args)...) }
func (l *adapter) Info(msg string, args ...any)  { l.inner.Info(msg, withTextCode(args)...) }
func (l *adapter) Warn(msg string, args ...any)  { l.inner.Warn(msg, withTextCode(args)...) }
func (l *adapter) Error(msg string, args ...any) { l.inner.Error(msg, withTextCode(args)...) }
func (l *adapter) Fatal(msg string, args ...any) { l.inner.Fatal(msg, withTextCode(args)...) }

func (l *adapter) WithFields(fields map[string]any) interfaces.Logger {
	if len(fields) == 0 {
		return l
	}
	copied := make(map[string]any, len(fields))
	for key, value := range fields {
		copied[key] = value
	}
	if with, ok := l.inner.(glog.FieldsLogger); ok {
		return &adapter{inner: with.WithFields(copied)}
	}

	keys := make([]string, 0, len(copied))
	for key := range copied {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	args := make([]any, 0, len(keys)*2)
	for _, key := range keys {
		args = append(args, key, copied[key])
	}
	if with, ok := l.inner.(interface{ With(...any) *glog.BaseLogger }); ok {
		return &adapter{inner: with.With(args...)}
	}
	return l
}

func (l *adapter) WithContext(ctx context.Context) interfaces.Logger {
	if ctx == nil {
		return l
	}
	return &adapter{inner: l.inner.WithContext(ctx)}
}

func withTextCode(args []any) []any {
	for i := 1; i < len(args); i += 2 {
		err, ok := args[i].(error)
		if !ok {
			continue
		}
		var rich *goerrors.Error
		if errors.As(err, &rich) && rich.TextCode != "" {
			out := make([]any, 0, len(args)+2)
			out = append(out, args...)
			return append(out, "text_code", rich.TextCode)
		}
	}
	return args
}
