package http

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	goerrors "github.com/goliatone/go-errors"

	refreshcmd "github.com/goliatone/go-gitcontent/internal/commands/refresh"
	"github.com/goliatone/go-gitcontent/internal/content"
	"github.com/goliatone/go-gitcontent/internal/fetcher"
	"github.com/goliatone/go-gitcontent/internal/loader"
	"github.com/goliatone/go-gitcontent/internal/logging"
	"github.com/goliatone/go-gitcontent/pkg/interfaces"
)

// PageView is the rendered page surface.
type PageView interface {
	Render(w io.Writer) error
	Fragment(mount string) (template.HTML, bool)
}

// LoaderView exposes the last committed load.
type LoaderView interface {
	Results() map[string]*fetcher.Result
	Result(name string) (*fetcher.Result, bool)
	Status() loader.Status
}

// CollectionLister lists configured collections in display order.
type CollectionLister interface {
	Collections() []content.Collection
}

// Commander runs a command message.
type Commander[T any] interface {
	Execute(ctx context.Context, msg T) error
}

// API registers the content endpoints.
type API struct {
	page           PageView
	loader         LoaderView
	collections    CollectionLister
	refresh        Commander[refreshcmd.RefreshCommand]
	loadCollection Commander[refreshcmd.LoadCollectionCommand]
	refreshPath    string
	logger         interfaces.Logger
}

// Option mutates the API configuration.
type Option func(*API)

// WithRefreshPath overrides the manual refresh path (defaults to /refresh).
func WithRefreshPath(path string) Option {
	return func(api *API) {
		if trimmed := strings.TrimSpace(path); trimmed != "" {
			api.refreshPath = "/" + strings.Trim(trimmed, "/")
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(api *API) {
		if logger != nil {
			api.logger = logger
		}
	}
}

// WithCommands wires the refresh command handlers.
func WithCommands(refresh Commander[refreshcmd.RefreshCommand], load Commander[refreshcmd.LoadCollectionCommand]) Option {
	return func(api *API) {
		api.refresh = refresh
		api.loadCollection = load
	}
}

// NewAPI constructs an API over the page, loader and collections.
func NewAPI(page PageView, view LoaderView, collections CollectionLister, opts ...Option) *API {
	api := &API{
		page:        page,
		loader:      view,
		collections: collections,
		refreshPath: "/refresh",
		logger:      logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(api)
		}
	}
	return api
}

// Router returns a chi router with every route and the standard middleware.
func (a *API) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(a.logRequests)
	a.Register(r)
	return r
}

// Register mounts the routes on r.
func (a *API) Register(r chi.Router) {
	r.Get("/", a.handlePage)
	r.Get("/healthz", a.handleHealth)
	r.Get("/fragments/{mount}", a.handleFragment)
	r.Post(a.refreshPath, a.handleRefresh)
	r.Route("/api/collections", func(r chi.Router) {
		r.Get("/", a.handleCollections)
		r.Get("/{name}", a.handleCollection)
		r.Post("/{name}/refresh", a.handleCollectionRefresh)
	})
}

func (a *API) handlePage(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := a.page.Render(w); err != nil {
		a.logger.Error("http.page.render_failed", "error", err)
	}
}

func (a *API) handleFragment(w http.ResponseWriter, r *http.Request) {
	mount := chi.URLParam(r, "mount")
	fragment, ok := a.page.Fragment(mount)
	if !ok {
		writeError(w, goerrors.New(fmt.Sprintf("unknown mount %q", mount), goerrors.CategoryNotFound).
			WithTextCode("MOUNT_NOT_FOUND"))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, string(fragment))
}

type collectionSummary struct {
	Name      string    `json:"name"`
	Kind      string    `json:"kind"`
	Path      string    `json:"path"`
	Mount     string    `json:"mount"`
	Items     int       `json:"items"`
	Visible   int       `json:"visible"`
	Errors    int       `json:"errors"`
	Missing   bool      `json:"missing,omitempty"`
	FetchedAt time.Time `json:"fetched_at,omitempty"`
}

func (a *API) handleCollections(w http.ResponseWriter, _ *http.Request) {
	results := a.loader.Results()
	collections := a.collections.Collections()
	out := make([]collectionSummary, 0, len(collections))
	for _, collection := range collections {
		summary := collectionSummary{
			Name:  collection.Name,
			Kind:  string(collection.Kind),
			Path:  collection.Path,
			Mount: collection.Mount,
		}
		if result, ok := results[collection.Name]; ok {
			summary.Items = len(result.Items)
			summary.Visible = len(collection.Filter(result.Items))
			summary.Errors = len(result.Errors)
			summary.Missing = result.Missing
			summary.FetchedAt = result.FetchedAt
		}
		out = append(out, summary)
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *API) handleCollection(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	result, ok := a.loader.Result(name)
	if !ok {
		writeError(w, goerrors.New(fmt.Sprintf("collection %q not loaded", name), goerrors.CategoryNotFound).
			WithTextCode("COLLECTION_NOT_LOADED").
			WithMetadata(map[string]any{"collection": name}))
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (a *API) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if a.refresh == nil {
		writeError(w, goerrors.New("refresh is not configured", goerrors.CategoryInternal))
		return
	}
	reason := refreshcmd.ReasonAPI
	html := wantsHTML(r)
	if html {
		reason = refreshcmd.ReasonManual
	}
	err := a.refresh.Execute(r.Context(), refreshcmd.RefreshCommand{Reason: reason})
	if html {
		// The page carries the error panel on failure.
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a.loader.Status())
}

func (a *API) handleCollectionRefresh(w http.ResponseWriter, r *http.Request) {
	if a.loadCollection == nil {
		writeError(w, goerrors.New("collection refresh is not configured", goerrors.CategoryInternal))
		return
	}
	name := chi.URLParam(r, "name")
	if err := a.loadCollection.Execute(r.Context(), refreshcmd.LoadCollectionCommand{Collection: name}); err != nil {
		writeError(w, err)
		return
	}
	result, _ := a.loader.Result(name)
	writeJSON(w, http.StatusOK, result)
}

func (a *API) handleHealth(w http.ResponseWriter, _ *http.Request) {
	status := a.loader.Status()
	code := http.StatusOK
	if status.Committed == 0 && status.LastError != "" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, status)
}

func (a *API) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		started := time.Now()
		next.ServeHTTP(ww, r)
		a.logger.Debug("http.request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(started).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
