package bootstrap

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/goliatone/go-gitcontent"
)

// EnvPrefix namespaces environment overrides, e.g. GITCONTENT_SOURCE_OWNER.
const EnvPrefix = "GITCONTENT"

// ConfigName is the file looked up in the working directory when no
// explicit path is given.
const ConfigName = "gitcontent"

// NewViper returns a viper instance with defaults, env binding and the
// config search path applied.
func NewViper(configFile string) *viper.Viper {
	v := viper.New()
	applyDefaults(v, cms.DefaultConfig())

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName(ConfigName)
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadConfig reads the config file when present and decodes the result. A
// missing file is only an error when it was named explicitly.
func LoadConfig(v *viper.Viper, explicit bool) (cms.Config, string, error) {
	used := ""
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit || !errors.As(err, &notFound) {
			return cms.Config{}, "", fmt.Errorf("read config: %w", err)
		}
	} else {
		used = v.ConfigFileUsed()
	}

	defaults := cms.DefaultConfig()
	cfg := defaults
	cfg.Collections = nil
	if err := v.Unmarshal(&cfg); err != nil {
		return cms.Config{}, used, fmt.Errorf("decode config: %w", err)
	}
	if len(cfg.Collections) == 0 {
		cfg.Collections = defaults.Collections
	}
	return cfg, used, nil
}

func applyDefaults(v *viper.Viper, cfg cms.Config) {
	v.SetDefault("title", cfg.Title)

	v.SetDefault("source.provider", cfg.Source.Provider)
	v.SetDefault("source.owner", cfg.Source.Owner)
	v.SetDefault("source.repo", cfg.Source.Repo)
	v.SetDefault("source.branch", cfg.Source.Branch)
	v.SetDefault("source.api_base_url", cfg.Source.APIBaseURL)
	v.SetDefault("source.token", cfg.Source.Token)
	v.SetDefault("source.local_root", cfg.Source.LocalRoot)
	v.SetDefault("source.timeout", cfg.Source.Timeout)

	v.SetDefault("media.uploads_path", cfg.Media.UploadsPath)
	v.SetDefault("media.rooted_prefixes", cfg.Media.RootedPrefixes)
	v.SetDefault("media.passthrough_prefixes", cfg.Media.PassthroughPrefixes)

	v.SetDefault("markdown.extensions", cfg.Markdown.Extensions)
	v.SetDefault("markdown.hard_wraps", cfg.Markdown.HardWraps)
	v.SetDefault("markdown.safe_mode", cfg.Markdown.SafeMode)

	v.SetDefault("refresh.enabled", cfg.Refresh.Enabled)
	v.SetDefault("refresh.interval", cfg.Refresh.Interval)
	v.SetDefault("refresh.watch", cfg.Refresh.Watch)
	v.SetDefault("refresh.debounce", cfg.Refresh.Debounce)

	v.SetDefault("fetch.concurrency", cfg.Fetch.Concurrency)
	v.SetDefault("server.addr", cfg.Server.Addr)
	v.SetDefault("output.path", cfg.Output.Path)

	v.SetDefault("logging.provider", cfg.Logging.Provider)
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
	v.SetDefault("logging.add_source", cfg.Logging.AddSource)
	v.SetDefault("logging.focus", cfg.Logging.Focus)
}
