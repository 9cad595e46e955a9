package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goliatone/go-gitcontent/internal/logging"
	"github.com/goliatone/go-gitcontent/internal/runtimeconfig"
	"github.com/goliatone/go-gitcontent/pkg/interfaces"
)

const (
	defaultAPIBaseURL = "https://api.github.com"
	acceptHeader      = "application/vnd.github.v3+json"
	userAgent         = "go-gitcontent"
)

// GitHub lists and reads repository content through the GitHub contents API.
type GitHub struct {
	baseURL string
	owner   string
	repo    string
	branch  string
	token   string
	client  *http.Client
	logger  interfaces.Logger
}

var _ interfaces.ContentSource = (*GitHub)(nil)

// GitHubOption customises the GitHub source.
type GitHubOption func(*GitHub)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) GitHubOption {
	return func(g *GitHub) {
		if client != nil {
			g.client = client
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger interfaces.Logger) GitHubOption {
	return func(g *GitHub) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// NewGitHub builds a GitHub source from configuration.
func NewGitHub(cfg runtimeconfig.SourceConfig, opts ...GitHubOption) *GitHub {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.APIBaseURL), "/")
	if base == "" {
		base = defaultAPIBaseURL
	}
	branch := strings.TrimSpace(cfg.Branch)
	if branch == "" {
		branch = "main"
	}
	g := &GitHub{
		baseURL: base,
		owner:   strings.TrimSpace(cfg.Owner),
		repo:    strings.TrimSpace(cfg.Repo),
		branch:  branch,
		token:   strings.TrimSpace(cfg.Token),
		client:  &http.Client{Timeout: timeout},
		logger:  logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Describe returns owner/repo@branch.
func (g *GitHub) Describe() string {
	return fmt.Sprintf("%s/%s@%s", g.owner, g.repo, g.branch)
}

// Repository returns owner/repo.
func (g *GitHub) Repository() string {
	return g.owner + "/" + g.repo
}

// List returns the entries of dir at the configured branch. A 404 maps to
// ErrNotFound; any other non-success status carries the HTTP status code.
func (g *GitHub) List(ctx context.Context, dir string) ([]interfaces.SourceEntry, error) {
	endpoint := g.contentsURL(dir)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, transportError(err, "list", dir)
	}
	req.Header.Set("Accept", acceptHeader)
	g.decorate(req)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, transportError(err, "list", dir)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, notFoundError(dir)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, statusError("list", dir, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(err, "list", dir)
	}
	entries, err := decodeListing(body)
	if err != nil {
		return nil, transportError(err, "decode listing", dir)
	}
	g.logger.Debug("source.github.listed", "path", dir, "entries", len(entries))
	return entries, nil
}

// Read downloads the raw bytes of entry through its download URL.
func (g *GitHub) Read(ctx context.Context, entry interfaces.SourceEntry) ([]byte, error) {
	target := strings.TrimSpace(entry.DownloadURL)
	if target == "" {
		return nil, readError(fmt.Errorf("entry %s has no download url", entry.Name), entry.Path)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, transportError(err, "fetch", entry.Name)
	}
	g.decorate(req)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, transportError(err, "fetch", entry.Name)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError("fetch", entry.Name, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(err, "fetch", entry.Name)
	}
	return data, nil
}

func (g *GitHub) decorate(req *http.Request) {
	req.Header.Set("User-Agent", userAgent)
	if g.token != "" {
		req.Header.Set("Authorization", "Bearer "+g.token)
	}
}

func (g *GitHub) contentsURL(dir string) string {
	segments := []string{}
	for _, segment := range strings.Split(strings.Trim(dir, "/"), "/") {
		if segment != "" {
			segments = append(segments, url.PathEscape(segment))
		}
	}
	return fmt.Sprintf("%s/repos/%s/%s/contents/%s?ref=%s",
		g.baseURL,
		url.PathEscape(g.owner),
		url.PathEscape(g.repo),
		strings.Join(segments, "/"),
		url.QueryEscape(g.branch),
	)
}

// decodeListing accepts either an array of entries or a single entry object,
// which the API returns when the path names a file.
func decodeListing(body []byte) ([]interfaces.SourceEntry, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var single interfaces.SourceEntry
		if err := json.Unmarshal(trimmed, &single); err != nil {
			return nil, err
		}
		return []interfaces.SourceEntry{single}, nil
	}
	var entries []interfaces.SourceEntry
	if err := json.Unmarshal(trimmed, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
