package fetcher

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-gitcontent/internal/cache"
	"github.com/goliatone/go-gitcontent/internal/content"
	"github.com/goliatone/go-gitcontent/internal/logging"
	"github.com/goliatone/go-gitcontent/internal/markdown"
	"github.com/goliatone/go-gitcontent/internal/source"
	"github.com/goliatone/go-gitcontent/pkg/interfaces"
)

// Result is the outcome of fetching one collection: the items that parsed,
// in listing order, plus the per-item failures that were left out.
type Result struct {
	Collection string            `json:"collection"`
	Items      []*content.Item   `json:"items"`
	Errors     []*goerrors.Error `json:"errors,omitempty"`
	// Missing is set when the collection folder does not exist.
	Missing   bool      `json:"missing,omitempty"`
	CacheHits int       `json:"cache_hits"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Entry is what the fetcher caches per content hash: a parsed item, or the
// deterministic failure that bytes with this hash always produce.
type Entry struct {
	Item *content.Item
	Err  *goerrors.Error
}

// Fetcher loads collections from a content source through the item cache.
type Fetcher struct {
	source      interfaces.ContentSource
	cache       *cache.Store[Entry]
	collections map[string]content.Collection
	order       []string
	concurrency int
	clock       func() time.Time
	logger      interfaces.Logger
}

// Option customises a Fetcher.
type Option func(*Fetcher)

// WithCache shares a cache store across fetchers.
func WithCache(store *cache.Store[Entry]) Option {
	return func(f *Fetcher) {
		if store != nil {
			f.cache = store
		}
	}
}

// WithConcurrency bounds parallel reads per collection. Zero or less means
// unbounded.
func WithConcurrency(limit int) Option {
	return func(f *Fetcher) {
		f.concurrency = limit
	}
}

// WithClock overrides the time source used for fetch timestamps.
func WithClock(clock func() time.Time) Option {
	return func(f *Fetcher) {
		if clock != nil {
			f.clock = clock
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(f *Fetcher) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// New builds a fetcher over collections, which must have unique names.
func New(src interfaces.ContentSource, collections []content.Collection, opts ...Option) *Fetcher {
	f := &Fetcher{
		source:      src,
		cache:       cache.New[Entry](),
		collections: make(map[string]content.Collection, len(collections)),
		clock:       time.Now,
		logger:      logging.NoOp(),
	}
	for _, collection := range collections {
		f.collections[collection.Name] = collection
		f.order = append(f.order, collection.Name)
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

// Collections returns the configured collections in declaration order.
func (f *Fetcher) Collections() []content.Collection {
	out := make([]content.Collection, 0, len(f.order))
	for _, name := range f.order {
		out = append(out, f.collections[name])
	}
	return out
}

// Collection looks up a collection by name.
func (f *Fetcher) Collection(name string) (content.Collection, bool) {
	collection, ok := f.collections[name]
	return collection, ok
}

// CacheStats exposes the item cache counters.
func (f *Fetcher) CacheStats() cache.Stats {
	return f.cache.Stats()
}

// Fetch lists the collection folder and loads every member concurrently.
// A missing folder yields an empty result. Any other listing failure is
// returned. Member failures never fail the collection; they are reported in
// Result.Errors and the member is left out.
func (f *Fetcher) Fetch(ctx context.Context, name string) (*Result, error) {
	collection, ok := f.collections[name]
	if !ok {
		return nil, unknownCollectionError(name)
	}
	logger := logging.WithCollectionContext(f.logger, collection.Name, "", "")
	result := &Result{Collection: collection.Name, Items: []*content.Item{}, FetchedAt: f.clock()}

	listing, err := f.source.List(ctx, collection.Path)
	if err != nil {
		if errors.Is(err, source.ErrNotFound) {
			logger.Warn("collection.folder_missing", "path", collection.Path)
			result.Missing = true
			return result, nil
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryExternal, fmt.Sprintf("list collection %s", collection.Name))
	}

	members := make([]interfaces.SourceEntry, 0, len(listing))
	for _, entry := range listing {
		if !collection.Accepts(entry) {
			continue
		}
		if !entry.IsFile() {
			logger.Debug("collection.entry.non_file_accepted", "file", entry.Name, "type", entry.Type)
		}
		members = append(members, entry)
	}

	type slot struct {
		entry Entry
		err   error
	}
	slots := make([]slot, len(members))
	var hits atomic.Int32

	var group errgroup.Group
	if f.concurrency > 0 {
		group.SetLimit(f.concurrency)
	}
	for i, entry := range members {
		group.Go(func() error {
			cached, hit, err := f.loadMember(ctx, collection, entry)
			if hit {
				hits.Add(1)
			}
			slots[i] = slot{entry: cached, err: err}
			return nil
		})
	}
	_ = group.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	collector := goerrors.NewCollector(goerrors.WithMaxErrors(len(members) + 1))
	for i, s := range slots {
		entry := members[i]
		switch {
		case s.err != nil:
			collector.Add(itemError(s.err, TextCodeItemFetchFailed, collection.Name, entry))
		case s.entry.Err != nil:
			collector.Add(s.entry.Err)
		case s.entry.Item != nil:
			result.Items = append(result.Items, s.entry.Item)
		}
	}
	result.Errors = collector.Errors()
	result.CacheHits = int(hits.Load())

	for _, itemErr := range result.Errors {
		logger.Error("collection.item.failed", "error", itemErr, "text_code", itemErr.TextCode)
	}
	logger.Debug("collection.fetched",
		"members", len(members),
		"items", len(result.Items),
		"failed", len(result.Errors),
		"cache_hits", result.CacheHits,
	)
	return result, nil
}

// FetchAll fetches every collection concurrently. It fails as a whole when
// any collection fails, so callers never commit a partial set.
func (f *Fetcher) FetchAll(ctx context.Context) (map[string]*Result, error) {
	results := make([]*Result, len(f.order))
	group, gctx := errgroup.WithContext(ctx)
	for i, name := range f.order {
		group.Go(func() error {
			result, err := f.Fetch(gctx, name)
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	out := make(map[string]*Result, len(results))
	for _, result := range results {
		out[result.Collection] = result
	}
	return out, nil
}

// loadMember returns the cached entry for a member or produces one. Read
// failures are transient and not cached; parse and schema outcomes are
// fixed by the content hash and are.
func (f *Fetcher) loadMember(ctx context.Context, collection content.Collection, entry interfaces.SourceEntry) (Entry, bool, error) {
	produce := func() (Entry, bool, error) {
		if collection.Kind == content.KindImages && !content.IsMarkdown(entry.Name) {
			return Entry{Item: markdown.SynthesizeImageItem(collection.Name, entry, f.clock())}, true, nil
		}
		data, err := f.source.Read(ctx, entry)
		if err != nil {
			return Entry{}, false, err
		}
		return f.parse(collection, entry, data), true, nil
	}

	if entry.SHA == "" {
		value, _, err := produce()
		return value, false, err
	}

	// A shared read runs under whichever caller started it. When that caller
	// is cancelled, callers whose own context is still live read again.
	key := cache.Key(collection.Name, entry.SHA)
	for attempt := 0; ; attempt++ {
		value, hit, err := f.cache.Load(ctx, key, produce)
		if err == nil || attempt >= maxSharedRetries || ctx.Err() != nil || !isContextError(err) {
			return value, hit, err
		}
	}
}

const maxSharedRetries = 3

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func (f *Fetcher) parse(collection content.Collection, entry interfaces.SourceEntry, data []byte) (out Entry) {
	defer func() {
		if r := recover(); r != nil {
			out = Entry{Err: itemError(fmt.Errorf("panic: %v", r), TextCodeItemParseFailed, collection.Name, entry)}
		}
	}()
	item := markdown.BuildItem(collection.Name, entry, data, f.clock())
	if err := collection.Schema.Validate(item.Metadata); err != nil {
		return Entry{Err: itemError(err, TextCodeItemSchemaInvalid, collection.Name, entry)}
	}
	return Entry{Item: item}
}
