package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-gitcontent/pkg/interfaces"
)

const (
	rootModule     = "gitcontent"
	loaderModule   = "gitcontent.loader"
	fetcherModule  = "gitcontent.fetcher"
	sourceModule   = "gitcontent.source"
	markdownModule = "gitcontent.markdown"
	httpModule     = "gitcontent.http"
	cliModule      = "gitcontent.cli"
)

const (
	fieldCollection = "collection"
	fieldEntryPath  = "entry_path"
	fieldEntrySHA   = "sha"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The returned logger attaches
// the module identifier as structured context so downstream entries can be
// filtered predictably.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// LoaderLogger returns the logger namespace reserved for the render loop.
func LoaderLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, loaderModule)
}

// FetcherLogger returns the logger namespace reserved for collection fetches.
func FetcherLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, fetcherModule)
}

// SourceLogger returns the logger namespace reserved for content sources.
func SourceLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, sourceModule)
}

// MarkdownLogger returns the logger namespace reserved for markdown rendering.
func MarkdownLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, markdownModule)
}

// HTTPLogger returns the logger namespace reserved for the HTTP surface.
func HTTPLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, httpModule)
}

// CLILogger returns the logger used by the gitcontent binary.
func CLILogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, cliModule)
}

// WithCollectionContext enriches the logger with the collection name and,
// when known, the entry path and content hash. Empty values are ignored.
func WithCollectionContext(logger interfaces.Logger, collection, path, sha string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(collection); trimmed != "" {
		fields[fieldCollection] = trimmed
	}
	if trimmed := strings.TrimSpace(path); trimmed != "" {
		fields[fieldEntryPath] = trimmed
	}
	if trimmed := strings.TrimSpace(sha); trimmed != "" {
		fields[fieldEntrySHA] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every log entry. It satisfies the Logger
// contract so services can safely operate when logging is disabled.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

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
