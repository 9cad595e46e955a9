package media

import (
	"strings"

	"github.com/goliatone/go-gitcontent/internal/runtimeconfig"
	"github.com/goliatone/go-gitcontent/pkg/interfaces"
)

// Resolver maps image references found in content onto loadable URLs.
//
// Resolution order:
//   - empty references stay empty;
//   - absolute URLs (http, https, protocol-relative, data) pass through;
//   - references under the uploads path or a passthrough prefix pass through;
//   - references starting with a rooted prefix (images/, content/) gain a
//     leading slash;
//   - other rooted paths are already site URLs and pass through;
//   - anything else is treated as relative to the uploads path.
type Resolver struct {
	uploadsPath         string
	rootedPrefixes      []string
	passthroughPrefixes []string
}

var _ interfaces.ImageResolver = (*Resolver)(nil)

// Option customises a Resolver.
type Option func(*Resolver)

// WithRootedPrefixes replaces the repository-relative prefixes that are
// served from the site root.
func WithRootedPrefixes(prefixes ...string) Option {
	return func(r *Resolver) {
		r.rootedPrefixes = cleanPrefixes(prefixes)
	}
}

// WithPassthroughPrefixes replaces the rooted prefixes returned unchanged.
func WithPassthroughPrefixes(prefixes ...string) Option {
	return func(r *Resolver) {
		r.passthroughPrefixes = cleanPrefixes(prefixes)
	}
}

// NewResolver builds a resolver for the given canonical uploads path. An
// empty path falls back to /images/uploads/.
func NewResolver(uploadsPath string, opts ...Option) *Resolver {
	r := &Resolver{
		uploadsPath:         normalizeUploads(uploadsPath),
		rootedPrefixes:      []string{"images/", "content/"},
		passthroughPrefixes: []string{"/images/"},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// NewResolverFromConfig builds a resolver from media configuration. Empty
// prefix lists keep the defaults.
func NewResolverFromConfig(cfg runtimeconfig.MediaConfig) *Resolver {
	opts := []Option{}
	if len(cfg.RootedPrefixes) > 0 {
		opts = append(opts, WithRootedPrefixes(cfg.RootedPrefixes...))
	}
	if len(cfg.PassthroughPrefixes) > 0 {
		opts = append(opts, WithPassthroughPrefixes(cfg.PassthroughPrefixes...))
	}
	return NewResolver(cfg.UploadsPath, opts...)
}

// UploadsPath returns the canonical uploads prefix.
func (r *Resolver) UploadsPath() string {
	return r.uploadsPath
}

// Resolve implements interfaces.ImageResolver.
func (r *Resolver) Resolve(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	if isAbsoluteURL(ref) || strings.HasPrefix(ref, r.uploadsPath) {
		return ref
	}
	for _, prefix := range r.passthroughPrefixes {
		if strings.HasPrefix(ref, prefix) {
			return ref
		}
	}
	for _, prefix := range r.rootedPrefixes {
		if strings.HasPrefix(ref, prefix) {
			return "/" + ref
		}
	}
	if strings.HasPrefix(ref, "/") {
		return ref
	}
	return r.uploadsPath + strings.TrimPrefix(ref, "./")
}

func isAbsoluteURL(ref string) bool {
	lower := strings.ToLower(ref)
	return strings.HasPrefix(lower, "http://") ||
		strings.HasPrefix(lower, "https://") ||
		strings.HasPrefix(lower, "//") ||
		strings.HasPrefix(lower, "data:")
}

func normalizeUploads(path string) string {
	trimmed := strings.Trim(strings.TrimSpace(path), "/")
	if trimmed == "" {
		return runtimeconfig.DefaultUploadsPath
	}
	return "/" + trimmed + "/"
}

func cleanPrefixes(prefixes []string) []string {
	out := make([]string, 0, len(prefixes))
	for _, prefix := range prefixes {
		if trimmed := strings.TrimSpace(prefix); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
