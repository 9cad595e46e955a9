package runtimeconfig

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var (
	ErrSourceProviderUnknown   = errors.New("gitcontent config: source provider is invalid")
	ErrSourceRepositoryMissing = errors.New("gitcontent config: github source requires owner and repo")
	ErrSourceAPIBaseURLInvalid = errors.New("gitcontent config: github api base url is invalid")
	ErrSourceLocalRootMissing  = errors.New("gitcontent config: local source requires a root directory")
	ErrCollectionsRequired     = errors.New("gitcontent config: at least one collection is required")
	ErrCollectionInvalid       = errors.New("gitcontent config: collection is invalid")
	ErrCollectionDuplicate     = errors.New("gitcontent config: collection names and mounts must be unique")
	ErrUploadsPathInvalid      = errors.New("gitcontent config: uploads path must be rooted and end with a slash")
	ErrRefreshIntervalInvalid  = errors.New("gitcontent config: refresh interval must be positive when refresh is enabled")
	ErrWatchRequiresLocal      = errors.New("gitcontent config: watch mode requires the local source provider")
	ErrOutputPathRequired      = errors.New("gitcontent config: output path is required for static builds")
	ErrLoggingProviderUnknown  = errors.New("gitcontent config: logging provider is invalid")
	ErrLoggingLevelInvalid     = errors.New("gitcontent config: logging level is invalid")
	ErrLoggingFormatInvalid    = errors.New("gitcontent config: logging format is invalid")
)

// Source providers.
const (
	ProviderGitHub = "github"
	ProviderLocal  = "local"
)

// Collection kinds.
const (
	KindPosts  = "posts"
	KindImages = "images"
)

// DefaultUploadsPath is the canonical URL prefix for locally hosted images.
const DefaultUploadsPath = "/images/uploads/"

// Config aggregates everything the content pipeline needs at runtime.
type Config struct {
	Title       string             `mapstructure:"title"`
	Source      SourceConfig       `mapstructure:"source"`
	Collections []CollectionConfig `mapstructure:"collections"`
	Media       MediaConfig        `mapstructure:"media"`
	Markdown    MarkdownConfig     `mapstructure:"markdown"`
	Refresh     RefreshConfig      `mapstructure:"refresh"`
	Fetch       FetchConfig        `mapstructure:"fetch"`
	Server      ServerConfig       `mapstructure:"server"`
	Output      OutputConfig       `mapstructure:"output"`
	Logging     LoggingConfig      `mapstructure:"logging"`
}

// SourceConfig selects and configures the content source.
type SourceConfig struct {
	Provider   string        `mapstructure:"provider"`
	Owner      string        `mapstructure:"owner"`
	Repo       string        `mapstructure:"repo"`
	Branch     string        `mapstructure:"branch"`
	APIBaseURL string        `mapstructure:"api_base_url"`
	Token      string        `mapstructure:"token"`
	LocalRoot  string        `mapstructure:"local_root"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// CollectionConfig declares one named collection backed by a repository folder.
type CollectionConfig struct {
	Name  string `mapstructure:"name"`
	Kind  string `mapstructure:"kind"`
	Path  string `mapstructure:"path"`
	Mount string `mapstructure:"mount"`
	// AcceptAllEntries admits non-file listing entries. Nil picks the kind
	// default: images accept every entry, posts only files.
	AcceptAllEntries *bool `mapstructure:"accept_all_entries"`
	// Schema is an optional JSON schema applied to item metadata.
	Schema string `mapstructure:"schema"`
}

// MediaConfig controls image path resolution.
type MediaConfig struct {
	UploadsPath         string   `mapstructure:"uploads_path"`
	RootedPrefixes      []string `mapstructure:"rooted_prefixes"`
	PassthroughPrefixes []string `mapstructure:"passthrough_prefixes"`
}

// MarkdownConfig mirrors interfaces.ParseOptions for runtime configuration.
type MarkdownConfig struct {
	Extensions []string `mapstructure:"extensions"`
	HardWraps  bool     `mapstructure:"hard_wraps"`
	SafeMode   bool     `mapstructure:"safe_mode"`
}

// RefreshConfig drives the background refresh loop.
type RefreshConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval"`
	Watch    bool          `mapstructure:"watch"`
	Debounce time.Duration `mapstructure:"debounce"`
}

// FetchConfig bounds per-collection fetch concurrency. Zero means unbounded.
type FetchConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

// ServerConfig captures the HTTP listener settings.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// OutputConfig captures the static build target.
type OutputConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig selects the logger provider.
type LoggingConfig struct {
	Provider  string   `mapstructure:"provider"`
	Level     string   `mapstructure:"level"`
	Format    string   `mapstructure:"format"`
	AddSource bool     `mapstructure:"add_source"`
	Focus     []string `mapstructure:"focus"`
}

// DefaultConfig returns the stock layout: a posts
// collection under content/blog and an images collection under
// content/images, refreshed every thirty seconds.
func DefaultConfig() Config {
	return Config{
		Title: "Content",
		Source: SourceConfig{
			Provider:   ProviderGitHub,
			Branch:     "main",
			APIBaseURL: "https://api.github.com",
			Timeout:    15 * time.Second,
		},
		Collections: []CollectionConfig{
			{Name: "posts", Kind: KindPosts, Path: "content/blog", Mount: "posts"},
			{Name: "images", Kind: KindImages, Path: "content/images", Mount: "images"},
		},
		Media: MediaConfig{
			UploadsPath:         DefaultUploadsPath,
			RootedPrefixes:      []string{"images/", "content/"},
			PassthroughPrefixes: []string{"/images/"},
		},
		Markdown: MarkdownConfig{
			Extensions: []string{"gfm"},
		},
		Refresh: RefreshConfig{
			Enabled:  true,
			Interval: 30 * time.Second,
			Debounce: 250 * time.Millisecond,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Output: OutputConfig{
			Path: "dist/index.html",
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
	}
}

// Validate performs consistency checks. Returned errors wrap the sentinel
// values above so callers can match them with errors.Is.
func (cfg Config) Validate() error {
	if err := cfg.Source.validate(); err != nil {
		return err
	}
	if len(cfg.Collections) == 0 {
		return ErrCollectionsRequired
	}
	names := map[string]struct{}{}
	mounts := map[string]struct{}{}
	for i, collection := range cfg.Collections {
		if err := collection.Validate(); err != nil {
			return fmt.Errorf("%w: collections[%d]: %v", ErrCollectionInvalid, i, err)
		}
		name := strings.TrimSpace(collection.Name)
		mount := collection.MountName()
		if _, ok := names[name]; ok {
			return fmt.Errorf("%w: %s", ErrCollectionDuplicate, name)
		}
		if _, ok := mounts[mount]; ok {
			return fmt.Errorf("%w: mount %s", ErrCollectionDuplicate, mount)
		}
		names[name] = struct{}{}
		mounts[mount] = struct{}{}
	}
	if uploads := strings.TrimSpace(cfg.Media.UploadsPath); uploads != "" {
		if !strings.HasPrefix(uploads, "/") || !strings.HasSuffix(uploads, "/") {
			return fmt.Errorf("%w: %s", ErrUploadsPathInvalid, uploads)
		}
	}
	if cfg.Refresh.Enabled && cfg.Refresh.Interval <= 0 {
		return ErrRefreshIntervalInvalid
	}
	if cfg.Refresh.Watch && normalize(cfg.Source.Provider) != ProviderLocal {
		return ErrWatchRequiresLocal
	}
	return cfg.Logging.validate()
}

// ValidateBuild extends Validate with the checks required by static builds.
func (cfg Config) ValidateBuild() error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(cfg.Output.Path) == "" {
		return ErrOutputPathRequired
	}
	return nil
}

func (s SourceConfig) validate() error {
	switch normalize(s.Provider) {
	case ProviderGitHub:
		if strings.TrimSpace(s.Owner) == "" || strings.TrimSpace(s.Repo) == "" {
			return ErrSourceRepositoryMissing
		}
		if base := strings.TrimSpace(s.APIBaseURL); base != "" {
			parsed, err := url.Parse(base)
			if err != nil || parsed.Scheme == "" || parsed.Host == "" {
				return fmt.Errorf("%w: %s", ErrSourceAPIBaseURLInvalid, base)
			}
		}
	case ProviderLocal:
		if strings.TrimSpace(s.LocalRoot) == "" {
			return ErrSourceLocalRootMissing
		}
	default:
		return fmt.Errorf("%w: %q", ErrSourceProviderUnknown, s.Provider)
	}
	return nil
}

// Validate checks a single collection declaration.
func (c CollectionConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Name, validation.Required),
		validation.Field(&c.Kind, validation.Required, validation.In(KindPosts, KindImages)),
		validation.Field(&c.Path, validation.Required, validation.By(cleanRelativePath)),
	)
}

// MountName returns the configured mount or the collection name.
func (c CollectionConfig) MountName() string {
	if mount := strings.TrimSpace(c.Mount); mount != "" {
		return mount
	}
	return strings.TrimSpace(c.Name)
}

// AcceptsAllEntries resolves the per-kind default for AcceptAllEntries.
func (c CollectionConfig) AcceptsAllEntries() bool {
	if c.AcceptAllEntries != nil {
		return *c.AcceptAllEntries
	}
	return c.Kind == KindImages
}

func cleanRelativePath(value any) error {
	raw, _ := value.(string)
	trimmed := strings.Trim(strings.TrimSpace(raw), "/")
	if trimmed == "" {
		return errors.New("must not be empty")
	}
	if cleaned := path.Clean(trimmed); cleaned != trimmed || strings.HasPrefix(cleaned, "..") {
		return errors.New("must be a clean repository-relative path")
	}
	return nil
}

func (l LoggingConfig) validate() error {
	provider := normalize(l.Provider)
	if !isSupportedProvider(provider) {
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	if level := strings.TrimSpace(l.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if provider == "gologger" {
		if format := strings.TrimSpace(l.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}
	return nil
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "", "console", "gologger", "none":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
