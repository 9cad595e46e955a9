package runtimeconfig_test

import (
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-gitcontent/internal/runtimeconfig"
)

func validConfig() runtimeconfig.Config {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Source.Owner = "acme"
	cfg.Source.Repo = "site"
	return cfg
}

func TestConfigValidate_DefaultsNeedRepository(t *testing.T) {
	err := runtimeconfig.DefaultConfig().Validate()
	if !errors.Is(err, runtimeconfig.ErrSourceRepositoryMissing) {
		t.Fatalf("expected ErrSourceRepositoryMissing, got %v", err)
	}
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
}

func TestConfigValidate_Source(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*runtimeconfig.Config)
		want   error
	}{
		{"unknown provider", func(c *runtimeconfig.Config) { c.Source.Provider = "svn" }, runtimeconfig.ErrSourceProviderUnknown},
		{"bad base url", func(c *runtimeconfig.Config) { c.Source.APIBaseURL = "not a url" }, runtimeconfig.ErrSourceAPIBaseURLInvalid},
		{"local without root", func(c *runtimeconfig.Config) { c.Source.Provider = "local" }, runtimeconfig.ErrSourceLocalRootMissing},
		{"watch on github", func(c *runtimeconfig.Config) { c.Refresh.Watch = true }, runtimeconfig.ErrWatchRequiresLocal},
		{"zero interval", func(c *runtimeconfig.Config) { c.Refresh.Interval = 0 }, runtimeconfig.ErrRefreshIntervalInvalid},
		{"relative uploads", func(c *runtimeconfig.Config) { c.Media.UploadsPath = "images/uploads" }, runtimeconfig.ErrUploadsPathInvalid},
		{"unknown logger", func(c *runtimeconfig.Config) { c.Logging.Provider = "syslog" }, runtimeconfig.ErrLoggingProviderUnknown},
		{"bad level", func(c *runtimeconfig.Config) { c.Logging.Level = "loud" }, runtimeconfig.ErrLoggingLevelInvalid},
		{"bad format", func(c *runtimeconfig.Config) {
			c.Logging.Provider = "gologger"
			c.Logging.Format = "xml"
		}, runtimeconfig.ErrLoggingFormatInvalid},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestConfigValidate_Collections(t *testing.T) {
	cfg := validConfig()
	cfg.Collections = nil
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrCollectionsRequired) {
		t.Fatalf("expected ErrCollectionsRequired, got %v", err)
	}

	cfg = validConfig()
	cfg.Collections[1].Kind = "videos"
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrCollectionInvalid) {
		t.Fatalf("expected ErrCollectionInvalid, got %v", err)
	}

	cfg = validConfig()
	cfg.Collections[1].Path = "../secrets"
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrCollectionInvalid) {
		t.Fatalf("expected ErrCollectionInvalid for escaping path, got %v", err)
	}

	cfg = validConfig()
	cfg.Collections[1].Mount = "posts"
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrCollectionDuplicate) {
		t.Fatalf("expected ErrCollectionDuplicate, got %v", err)
	}
}

func TestConfigValidate_LocalWatch(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Source.Provider = "local"
	cfg.Source.LocalRoot = "./site"
	cfg.Refresh.Watch = true
	cfg.Refresh.Interval = time.Minute

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
}

func TestConfigValidateBuild_RequiresOutput(t *testing.T) {
	cfg := validConfig()
	cfg.Output.Path = " "
	if err := cfg.ValidateBuild(); !errors.Is(err, runtimeconfig.ErrOutputPathRequired) {
		t.Fatalf("expected ErrOutputPathRequired, got %v", err)
	}
}

func TestCollectionConfig_Defaults(t *testing.T) {
	posts := runtimeconfig.CollectionConfig{Name: "posts", Kind: runtimeconfig.KindPosts}
	images := runtimeconfig.CollectionConfig{Name: "gallery", Kind: runtimeconfig.KindImages, Mount: "photos"}

	if posts.AcceptsAllEntries() {
		t.Fatalf("expected posts to accept only files by default")
	}
	if !images.AcceptsAllEntries() {
		t.Fatalf("expected images to accept every entry by default")
	}
	off := false
	images.AcceptAllEntries = &off
	if images.AcceptsAllEntries() {
		t.Fatalf("expected explicit override to win")
	}
	if posts.MountName() != "posts" || images.MountName() != "photos" {
		t.Fatalf("unexpected mount names %q %q", posts.MountName(), images.MountName())
	}
}
