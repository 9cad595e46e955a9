package fetcher_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-gitcontent/internal/content"
	"github.com/goliatone/go-gitcontent/internal/fetcher"
	"github.com/goliatone/go-gitcontent/internal/source"
	"github.com/goliatone/go-gitcontent/pkg/interfaces"
)

type fakeSource struct {
	mu       sync.Mutex
	listings map[string][]interfaces.SourceEntry
	listErr  map[string]error
	files    map[string]string
	readErr  map[string]error
	reads    map[string]int
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		listings: map[string][]interfaces.SourceEntry{},
		listErr:  map[string]error{},
		files:    map[string]string{},
		readErr:  map[string]error{},
		reads:    map[string]int{},
	}
}

func (f *fakeSource) add(dir, name, sha, body string) {
	path := dir + "/" + name
	f.listings[dir] = append(f.listings[dir], interfaces.SourceEntry{
		Name: name, Path: path, Type: interfaces.EntryTypeFile, SHA: sha,
	})
	f.files[path] = body
}

func (f *fakeSource) List(_ context.Context, dir string) ([]interfaces.SourceEntry, error) {
	if err := f.listErr[dir]; err != nil {
		return nil, err
	}
	entries, ok := f.listings[dir]
	if !ok {
		return nil, source.ErrNotFound
	}
	return entries, nil
}

func (f *fakeSource) Read(_ context.Context, entry interfaces.SourceEntry) ([]byte, error) {
	f.mu.Lock()
	f.reads[entry.Path]++
	f.mu.Unlock()
	if err := f.readErr[entry.Path]; err != nil {
		return nil, err
	}
	return []byte(f.files[entry.Path]), nil
}

func (f *fakeSource) Describe() string { return "fake" }

func (f *fakeSource) readCount(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reads[path]
}

var (
	posts  = content.Collection{Name: "posts", Kind: content.KindPosts, Path: "content/blog", Mount: "posts"}
	images = content.Collection{Name: "images", Kind: content.KindImages, Path: "content/images", Mount: "images", AcceptAllEntries: true}
	fixed  = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
)

func TestFetch_ItemFailureIsIsolated(t *testing.T) {
	src := newFakeSource()
	src.add("content/blog", "a.md", "sa", "---\ntitle: A\npublish: true\n---\nA body")
	src.add("content/blog", "b.md", "sb", "never read")
	src.add("content/blog", "c.md", "sc", "---\ntitle: C\n---\nC body")
	src.readErr["content/blog/b.md"] = errors.New("connection reset")

	f := fetcher.New(src, []content.Collection{posts}, fetcher.WithClock(func() time.Time { return fixed }))

	result, err := f.Fetch(context.Background(), "posts")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(result.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(result.Items))
	}
	if result.Items[0].Filename != "a.md" || result.Items[1].Filename != "c.md" {
		t.Fatalf("expected listing order, got %s %s", result.Items[0].Filename, result.Items[1].Filename)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected one item error, got %d", len(result.Errors))
	}
	if result.Errors[0].TextCode != fetcher.TextCodeItemFetchFailed || result.Errors[0].Metadata["file"] != "b.md" {
		t.Fatalf("unexpected item error %+v", result.Errors[0])
	}
	if !result.FetchedAt.Equal(fixed) {
		t.Fatalf("expected fixed clock, got %v", result.FetchedAt)
	}
}

func TestFetch_CachesByHash(t *testing.T) {
	src := newFakeSource()
	src.add("content/blog", "a.md", "sa", "---\ntitle: A\n---\nbody")
	src.add("content/blog", "b.md", "sb", "body")
	src.readErr["content/blog/b.md"] = errors.New("timeout")

	f := fetcher.New(src, []content.Collection{posts})
	ctx := context.Background()

	first, err := f.Fetch(ctx, "posts")
	if err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	second, err := f.Fetch(ctx, "posts")
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}

	if src.readCount("content/blog/a.md") != 1 {
		t.Fatalf("expected cached file to be read once, got %d", src.readCount("content/blog/a.md"))
	}
	if src.readCount("content/blog/b.md") != 2 {
		t.Fatalf("expected transient failure to be retried, got %d", src.readCount("content/blog/b.md"))
	}
	if first.Items[0] != second.Items[0] {
		t.Fatalf("expected cached item to be reused")
	}
	if second.CacheHits != 1 {
		t.Fatalf("expected one cache hit, got %d", second.CacheHits)
	}

	// new hash for the same file forces a re-read
	src.listings["content/blog"][0].SHA = "sa2"
	if _, err := f.Fetch(ctx, "posts"); err != nil {
		t.Fatalf("third fetch: %v", err)
	}
	if src.readCount("content/blog/a.md") != 2 {
		t.Fatalf("expected changed hash to be fetched again")
	}
}

func TestFetch_MissingFolderIsEmpty(t *testing.T) {
	f := fetcher.New(newFakeSource(), []content.Collection{posts})

	result, err := f.Fetch(context.Background(), "posts")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !result.Missing || len(result.Items) != 0 || len(result.Errors) != 0 {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestFetch_ListingFailurePropagates(t *testing.T) {
	src := newFakeSource()
	src.listErr["content/blog"] = goerrors.New("content API error: 403", goerrors.CategoryAuthz).WithCode(http.StatusForbidden)

	f := fetcher.New(src, []content.Collection{posts})

	_, err := f.Fetch(context.Background(), "posts")
	if err == nil {
		t.Fatalf("expected listing failure")
	}
	if source.StatusCode(err) != http.StatusForbidden {
		t.Fatalf("expected status code to survive wrapping, got %v", err)
	}
}

func TestFetch_UnknownCollection(t *testing.T) {
	f := fetcher.New(newFakeSource(), []content.Collection{posts})
	_, err := f.Fetch(context.Background(), "videos")
	if !goerrors.IsCategory(err, goerrors.CategoryBadInput) {
		t.Fatalf("expected bad input error, got %v", err)
	}
}

func TestFetch_ImagesSynthesizeUploads(t *testing.T) {
	src := newFakeSource()
	src.add("content/images", "photo.png", "p1", "binary")
	src.add("content/images", "sunset.md", "s1", "---\ntitle: Sunset\nimage: sunset.jpg\n---\n")
	src.listings["content/images"] = append(src.listings["content/images"], interfaces.SourceEntry{
		Name: "raw", Path: "content/images/raw", Type: interfaces.EntryTypeDir, SHA: "d1",
	})

	f := fetcher.New(src, []content.Collection{images}, fetcher.WithClock(func() time.Time { return fixed }))

	result, err := f.Fetch(context.Background(), "images")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(result.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(result.Items))
	}
	if !result.Items[0].Synthesized || src.readCount("content/images/photo.png") != 0 {
		t.Fatalf("expected binary upload to be synthesized without a read")
	}
	if result.Items[1].Synthesized || result.Items[1].Title() != "Sunset" {
		t.Fatalf("expected markdown image item to be parsed, got %+v", result.Items[1])
	}
	if !result.Items[2].Synthesized {
		t.Fatalf("expected accepted directory entry to be synthesized")
	}
}

func TestFetch_SchemaViolationsAreCachedFailures(t *testing.T) {
	strict := posts
	validator, err := content.NewSchemaValidator("posts", `{"type":"object","required":["title"]}`)
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	strict.Schema = validator

	src := newFakeSource()
	src.add("content/blog", "ok.md", "s1", "---\ntitle: OK\n---\n")
	src.add("content/blog", "bad.md", "s2", "---\npublish: true\n---\n")

	f := fetcher.New(src, []content.Collection{strict})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		result, err := f.Fetch(ctx, "posts")
		if err != nil {
			t.Fatalf("Fetch: %v", err)
		}
		if len(result.Items) != 1 || len(result.Errors) != 1 {
			t.Fatalf("expected 1 item and 1 error, got %d/%d", len(result.Items), len(result.Errors))
		}
		if result.Errors[0].TextCode != fetcher.TextCodeItemSchemaInvalid {
			t.Fatalf("unexpected error code %q", result.Errors[0].TextCode)
		}
	}
	if src.readCount("content/blog/bad.md") != 1 {
		t.Fatalf("expected invalid file to be parsed once")
	}
}

func TestFetchAll(t *testing.T) {
	src := newFakeSource()
	src.add("content/blog", "a.md", "sa", "---\npublish: true\n---\n")
	f := fetcher.New(src, []content.Collection{posts, images}, fetcher.WithConcurrency(2))

	results, err := f.FetchAll(context.Background())
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if len(results["posts"].Items) != 1 || !results["images"].Missing {
		t.Fatalf("unexpected results %+v", results)
	}

	src.listErr["content/images"] = errors.New("boom")
	if _, err := f.FetchAll(context.Background()); err == nil {
		t.Fatalf("expected FetchAll to fail when one collection fails")
	}
}

func TestFetch_CanceledContext(t *testing.T) {
	src := newFakeSource()
	src.add("content/blog", "a.md", "sa", "body")
	f := fetcher.New(src, []content.Collection{posts})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := f.Fetch(ctx, "posts"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

// gatedSource blocks reads until release is closed or the reader's context
// ends.
type gatedSource struct {
	*fakeSource
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *gatedSource) Read(ctx context.Context, entry interfaces.SourceEntry) ([]byte, error) {
	g.once.Do(func() { close(g.started) })
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-g.release:
	}
	return g.fakeSource.Read(ctx, entry)
}

func TestFetch_SharedReadSurvivesOtherCallerCancel(t *testing.T) {
	base := newFakeSource()
	base.add("content/blog", "a.md", "sha-a", "---\ntitle: A\npublish: true\n---\nbody")
	src := &gatedSource{fakeSource: base, started: make(chan struct{}), release: make(chan struct{})}
	f := fetcher.New(src, []content.Collection{posts}, fetcher.WithClock(func() time.Time { return fixed }))

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstDone := make(chan struct{})
	go func() {
		defer close(firstDone)
		_, _ = f.Fetch(firstCtx, "posts")
	}()
	<-src.started

	type outcome struct {
		result *fetcher.Result
		err    error
	}
	second := make(chan outcome, 1)
	go func() {
		result, err := f.Fetch(context.Background(), "posts")
		second <- outcome{result: result, err: err}
	}()

	// let the second caller join the in-flight read before cancelling
	time.Sleep(20 * time.Millisecond)
	cancelFirst()
	<-firstDone
	close(src.release)

	select {
	case got := <-second:
		if got.err != nil {
			t.Fatalf("fetch: %v", got.err)
		}
		if len(got.result.Items) != 1 || len(got.result.Errors) != 0 {
			t.Fatalf("expected item kept for live caller, got items=%d errors=%v", len(got.result.Items), got.result.Errors)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("second fetch did not finish")
	}
}
