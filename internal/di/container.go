package di

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-gitcontent/internal/cache"
	refreshcmd "github.com/goliatone/go-gitcontent/internal/commands/refresh"
	"github.com/goliatone/go-gitcontent/internal/content"
	"github.com/goliatone/go-gitcontent/internal/fetcher"
	cmshttp "github.com/goliatone/go-gitcontent/internal/http"
	"github.com/goliatone/go-gitcontent/internal/loader"
	"github.com/goliatone/go-gitcontent/internal/logging"
	"github.com/goliatone/go-gitcontent/internal/logging/console"
	"github.com/goliatone/go-gitcontent/internal/logging/gologger"
	"github.com/goliatone/go-gitcontent/internal/markdown"
	"github.com/goliatone/go-gitcontent/internal/media"
	"github.com/goliatone/go-gitcontent/internal/page"
	"github.com/goliatone/go-gitcontent/internal/runtimeconfig"
	"github.com/goliatone/go-gitcontent/internal/source"
	"github.com/goliatone/go-gitcontent/pkg/interfaces"
)

// CommandRegistry receives command handlers built by the container.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// CronRegistrar matches the go-command cron registration signature.
type CronRegistrar func(command.HandlerConfig, any) error

// Container wires the content pipeline from configuration.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	httpClient     *http.Client
	clock          func() time.Time

	source      interfaces.ContentSource
	collections []content.Collection
	cache       *cache.Store[fetcher.Entry]
	resolver    *media.Resolver
	markdown    interfaces.MarkdownRenderer
	fetcher     *fetcher.Fetcher
	renderer    *page.Renderer
	page        *page.Page
	watcher     loader.ChangeWatcher
	loader      *loader.Service
	commands    *refreshcmd.HandlerSet
	api         *cmshttp.API

	commandRegistry CommandRegistry
	cronRegistrar   CronRegistrar
	cronConfig      command.HandlerConfig
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithLoggerProvider overrides the provider picked from Config.Logging.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithSource overrides the content source built from Config.Source.
func WithSource(src interfaces.ContentSource) Option {
	return func(c *Container) {
		c.source = src
	}
}

// WithHTTPClient sets the client used by the GitHub source.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Container) {
		c.httpClient = client
	}
}

// WithMarkdownRenderer replaces the goldmark renderer.
func WithMarkdownRenderer(renderer interfaces.MarkdownRenderer) Option {
	return func(c *Container) {
		c.markdown = renderer
	}
}

// WithClock overrides time.Now for fetch and commit timestamps.
func WithClock(clock func() time.Time) Option {
	return func(c *Container) {
		c.clock = clock
	}
}

// WithCommandRegistry registers the refresh handlers with reg.
func WithCommandRegistry(reg CommandRegistry) Option {
	return func(c *Container) {
		c.commandRegistry = reg
	}
}

// WithCronRegistrar schedules the refresh handler with reg using cfg.
func WithCronRegistrar(reg CronRegistrar, cfg command.HandlerConfig) Option {
	return func(c *Container) {
		c.cronRegistrar = reg
		c.cronConfig = cfg
	}
}

// NewContainer validates cfg and builds every service.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Container{Config: cfg, clock: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if err := c.configureLoggerProvider(); err != nil {
		return nil, err
	}
	if err := c.configureCollections(); err != nil {
		return nil, err
	}
	c.configureSource()
	if err := c.configurePresentation(); err != nil {
		return nil, err
	}
	c.configureLoader()
	if err := c.configureCommands(); err != nil {
		return nil, err
	}

	c.api = cmshttp.NewAPI(c.page, c.loader, c.fetcher,
		cmshttp.WithLogger(logging.HTTPLogger(c.loggerProvider)),
		cmshttp.WithRefreshPath(c.renderer.RefreshPath()),
		cmshttp.WithCommands(c.commands.Refresh, c.commands.LoadCollection),
	)

	logging.ModuleLogger(c.loggerProvider, "gitcontent.di").Info("container.configured",
		"source", c.source.Describe(),
		"collections", len(c.collections),
		"refresh_interval", c.refreshInterval().String(),
		"watch", c.watcher != nil,
	)
	return c, nil
}

func (c *Container) configureLoggerProvider() error {
	if c.loggerProvider != nil {
		return nil
	}
	logCfg := c.Config.Logging
	switch strings.ToLower(strings.TrimSpace(logCfg.Provider)) {
	case "none":
		c.loggerProvider = noopProvider{}
	case "gologger":
		provider, err := gologger.NewProvider(logCfg)
		if err != nil {
			return fmt.Errorf("configure logger provider: %w", err)
		}
		c.loggerProvider = provider
	default:
		opts := console.Options{}
		if level, ok := console.ParseLevel(logCfg.Level); ok {
			opts.MinLevel = &level
		}
		c.loggerProvider = console.NewProvider(opts)
	}
	return nil
}

func (c *Container) configureCollections() error {
	collections := make([]content.Collection, 0, len(c.Config.Collections))
	for _, cfg := range c.Config.Collections {
		collection, err := content.CollectionFromConfig(cfg)
		if err != nil {
			return err
		}
		collections = append(collections, collection)
	}
	c.collections = collections
	return nil
}

func (c *Container) configureSource() {
	logger := logging.SourceLogger(c.loggerProvider)
	if c.source == nil {
		switch strings.ToLower(strings.TrimSpace(c.Config.Source.Provider)) {
		case runtimeconfig.ProviderLocal:
			root := c.Config.Source.LocalRoot
			c.source = source.NewLocal(os.DirFS(root), root)
		default:
			c.source = source.NewGitHub(c.Config.Source,
				source.WithHTTPClient(c.httpClient),
				source.WithLogger(logger),
			)
		}
	}
	if c.Config.Refresh.Watch {
		dirs := make([]string, 0, len(c.collections))
		for _, collection := range c.collections {
			dirs = append(dirs, collection.Path)
		}
		c.watcher = source.NewWatcher(c.Config.Source.LocalRoot, dirs, c.Config.Refresh.Debounce, logger)
	}
}

func (c *Container) configurePresentation() error {
	c.resolver = media.NewResolverFromConfig(c.Config.Media)
	if c.markdown == nil {
		c.markdown = markdown.NewGoldmarkRenderer(interfaces.ParseOptions{
			Extensions: c.Config.Markdown.Extensions,
			HardWraps:  c.Config.Markdown.HardWraps,
			SafeMode:   c.Config.Markdown.SafeMode,
		}, c.resolver)
	}

	c.cache = cache.New[fetcher.Entry]()
	c.fetcher = fetcher.New(c.source, c.collections,
		fetcher.WithCache(c.cache),
		fetcher.WithConcurrency(c.Config.Fetch.Concurrency),
		fetcher.WithClock(c.clock),
		fetcher.WithLogger(logging.FetcherLogger(c.loggerProvider)),
	)

	renderer, err := page.NewRenderer(c.markdown, c.resolver,
		page.WithRendererLogger(logging.MarkdownLogger(c.loggerProvider)),
	)
	if err != nil {
		return fmt.Errorf("configure renderer: %w", err)
	}
	c.renderer = renderer

	mounts := make([]string, 0, len(c.collections))
	for _, collection := range c.collections {
		mounts = append(mounts, collection.Mount)
	}
	display, err := page.NewPage(c.Config.Title, c.source.Describe(), mounts, renderer.RefreshPath())
	if err != nil {
		return fmt.Errorf("configure page: %w", err)
	}
	c.page = display
	return nil
}

func (c *Container) configureLoader() {
	c.loader = loader.New(loader.Config{
		Fetcher:  c.fetcher,
		Renderer: c.renderer,
		Display:  c.page,
		Source:   c.source.Describe(),
		Interval: c.refreshInterval(),
		Watcher:  c.watcher,
		Clock:    c.clock,
		Logger:   logging.LoaderLogger(c.loggerProvider),
	})
}

func (c *Container) configureCommands() error {
	set, err := refreshcmd.RegisterRefreshCommands(c.commandRegistry, c.loader, c.loggerProvider)
	if err != nil {
		return err
	}
	c.commands = set
	if c.cronRegistrar != nil {
		if err := refreshcmd.RegisterRefreshCron(refreshcmd.CronRegistrar(c.cronRegistrar), set.Refresh, c.cronConfig); err != nil {
			return fmt.Errorf("register refresh cron: %w", err)
		}
	}
	return nil
}

func (c *Container) refreshInterval() time.Duration {
	if !c.Config.Refresh.Enabled {
		return 0
	}
	return c.Config.Refresh.Interval
}

// LoggerProvider returns the configured provider.
func (c *Container) LoggerProvider() interfaces.LoggerProvider { return c.loggerProvider }

// Source returns the content source.
func (c *Container) Source() interfaces.ContentSource { return c.source }

// Collections returns the configured collections in display order.
func (c *Container) Collections() []content.Collection {
	return append([]content.Collection(nil), c.collections...)
}

// Resolver returns the image path resolver.
func (c *Container) Resolver() *media.Resolver { return c.resolver }

// MarkdownRenderer returns the markdown renderer.
func (c *Container) MarkdownRenderer() interfaces.MarkdownRenderer { return c.markdown }

// Fetcher returns the content fetcher.
func (c *Container) Fetcher() *fetcher.Fetcher { return c.fetcher }

// Renderer returns the fragment renderer.
func (c *Container) Renderer() *page.Renderer { return c.renderer }

// Page returns the display.
func (c *Container) Page() *page.Page { return c.page }

// Loader returns the render loop service.
func (c *Container) Loader() *loader.Service { return c.loader }

// Commands returns the refresh command handlers.
func (c *Container) Commands() *refreshcmd.HandlerSet { return c.commands }

// API returns the HTTP surface.
func (c *Container) API() *cmshttp.API { return c.api }

type noopProvider struct{}

func (noopProvider) GetLogger(string) interfaces.Logger { return logging.NoOp() }
