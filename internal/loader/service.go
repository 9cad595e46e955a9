package loader

import (
	"context"
	"html/template"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goliatone/go-gitcontent/internal/content"
	"github.com/goliatone/go-gitcontent/internal/fetcher"
	"github.com/goliatone/go-gitcontent/internal/logging"
	"github.com/goliatone/go-gitcontent/pkg/interfaces"
)

// Trigger names what started a load.
type Trigger string

const (
	TriggerInitial  Trigger = "initial"
	TriggerManual   Trigger = "manual"
	TriggerInterval Trigger = "interval"
	TriggerWatch    Trigger = "watch"
)

// Interactive reports whether failures of this trigger are shown to the
// reader. Background refreshes only log.
func (t Trigger) Interactive() bool {
	return t == TriggerInitial || t == TriggerManual
}

// NoticeUpdated is set on the display after a successful manual refresh.
const NoticeUpdated = "Content updated"

// ContentFetcher is the part of the fetcher the loader drives.
type ContentFetcher interface {
	Collections() []content.Collection
	Collection(name string) (content.Collection, bool)
	Fetch(ctx context.Context, name string) (*fetcher.Result, error)
	FetchAll(ctx context.Context) (map[string]*fetcher.Result, error)
}

// FragmentRenderer turns fetch results into display fragments.
type FragmentRenderer interface {
	RenderCollection(collection content.Collection, items []*content.Item) (template.HTML, error)
	Loading(source string) template.HTML
	ErrorPanel(source string, err error) template.HTML
}

// Noticer is implemented by displays that show a status line.
type Noticer interface {
	SetNotice(notice string)
}

// ChangeWatcher emits change notifications until ctx is done.
type ChangeWatcher interface {
	Run(ctx context.Context, onChange func()) error
}

// Config carries the loader collaborators and schedule.
type Config struct {
	Fetcher  ContentFetcher
	Renderer FragmentRenderer
	Display  interfaces.Display
	// Source labels the content origin in loading and error states.
	Source   string
	Interval time.Duration
	Watcher  ChangeWatcher
	Clock    func() time.Time
	Logger   interfaces.Logger
}

// Status is a snapshot of the last load outcomes.
type Status struct {
	Generation  uint64    `json:"generation"`
	Committed   uint64    `json:"committed_generation"`
	LastSuccess time.Time `json:"last_success,omitempty"`
	LastError   string    `json:"last_error,omitempty"`
	Running     bool      `json:"running"`
}

// Service loads every collection, renders it and commits the fragments to
// the display. Every load takes a generation number. A finished load commits
// unless a newer generation has already committed, so a failing newer load
// never hides the result of an older one that succeeded.
type Service struct {
	cfg    Config
	logger interfaces.Logger

	generation atomic.Uint64
	// interactive is the newest generation that put a loading state on
	// screen; only it may replace that state.
	interactive atomic.Uint64

	commitMu    sync.Mutex
	committed   uint64
	results     map[string]*fetcher.Result
	fragments   map[string]template.HTML
	lastSuccess time.Time
	lastErr     error

	lifecycleMu sync.Mutex
	cancel      context.CancelFunc
	done        sync.WaitGroup
	running     bool
	stopped     bool
}

// New constructs a Service. It does not load anything until Start or Load.
func New(cfg Config) *Service {
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NoOp()
	}
	return &Service{
		cfg:       cfg,
		logger:    logger,
		results:   map[string]*fetcher.Result{},
		fragments: map[string]template.HTML{},
	}
}

// Start performs the initial load, then starts the interval ticker and the
// watch trigger when configured. The initial load error is returned, but the
// background refresh still runs so a later load can recover.
func (s *Service) Start(ctx context.Context) error {
	s.lifecycleMu.Lock()
	if s.stopped {
		s.lifecycleMu.Unlock()
		return ErrStopped
	}
	if s.running {
		s.lifecycleMu.Unlock()
		return nil
	}
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.running = true
	s.lifecycleMu.Unlock()

	err := s.Load(ctx, TriggerInitial)

	if s.cfg.Interval > 0 {
		s.done.Add(1)
		go s.tick(runCtx)
	}
	if s.cfg.Watcher != nil {
		s.done.Add(1)
		go s.watch(runCtx)
	}
	s.logger.Info("loader.started", "interval", s.cfg.Interval.String(), "watch", s.cfg.Watcher != nil)
	return err
}

// Stop cancels background refresh and waits for it to exit.
func (s *Service) Stop() {
	s.lifecycleMu.Lock()
	if s.stopped {
		s.lifecycleMu.Unlock()
		return
	}
	s.stopped = true
	s.running = false
	cancel := s.cancel
	s.lifecycleMu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.done.Wait()
	s.logger.Info("loader.stopped")
}

// Refresh runs a manual load. Failures replace the content with the error
// panel and are returned.
func (s *Service) Refresh(ctx context.Context) error {
	return s.Load(ctx, TriggerManual)
}

// RefreshCollection reloads a single collection and replaces only its mount.
func (s *Service) RefreshCollection(ctx context.Context, name string) error {
	collection, ok := s.cfg.Fetcher.Collection(name)
	if !ok {
		// Fetch reports the unknown collection error.
		_, err := s.cfg.Fetcher.Fetch(ctx, name)
		return err
	}
	generation := s.generation.Add(1)
	logger := logging.WithFields(s.logger, map[string]any{"generation": generation, "collection": name})

	result, err := s.cfg.Fetcher.Fetch(ctx, name)
	if err != nil {
		s.recordFailure(err)
		logger.Error("loader.collection.failed", "error", err)
		return loadError(err, TriggerManual, generation)
	}
	fragment, err := s.cfg.Renderer.RenderCollection(collection, result.Items)
	if err != nil {
		return renderError(err, name)
	}

	s.commitMu.Lock()
	defer s.commitMu.Unlock()
	if generation < s.committed {
		logger.Info("loader.commit.skipped_stale", "committed", s.committed)
		return ErrSuperseded
	}
	s.cfg.Display.Replace(collection.Mount, fragment)
	s.fragments[collection.Mount] = fragment
	s.results[name] = result
	s.commitLocked(generation, TriggerManual)
	return nil
}

// Load fetches all collections and commits them unless a newer load has
// committed first. Such a load returns ErrSuperseded and leaves the newer
// content in place.
func (s *Service) Load(ctx context.Context, trigger Trigger) error {
	generation := s.generation.Add(1)
	logger := logging.WithFields(s.logger, map[string]any{"generation": generation, "trigger": string(trigger)})
	collections := s.cfg.Fetcher.Collections()

	if trigger.Interactive() {
		s.interactive.Store(generation)
		if mount := firstMount(collections); mount != "" {
			s.replaceIfCurrent(generation, mount, s.cfg.Renderer.Loading(s.cfg.Source))
		}
	}

	started := s.cfg.Clock()
	results, err := s.cfg.Fetcher.FetchAll(ctx)
	if err != nil {
		return s.fail(generation, trigger, collections, err)
	}

	fragments := make(map[string]template.HTML, len(collections))
	for _, collection := range collections {
		result := results[collection.Name]
		var items []*content.Item
		if result != nil {
			items = result.Items
		}
		fragment, renderErr := s.cfg.Renderer.RenderCollection(collection, items)
		if renderErr != nil {
			return s.fail(generation, trigger, collections, renderError(renderErr, collection.Name))
		}
		fragments[collection.Mount] = fragment
	}

	s.commitMu.Lock()
	defer s.commitMu.Unlock()
	if generation < s.committed {
		logger.Info("loader.commit.skipped_stale", "committed", s.committed)
		if trigger.Interactive() {
			s.restoreLocked(generation, firstMount(collections))
		}
		return ErrSuperseded
	}
	for _, collection := range collections {
		s.cfg.Display.Replace(collection.Mount, fragments[collection.Mount])
		s.fragments[collection.Mount] = fragments[collection.Mount]
	}
	s.results = results
	s.commitLocked(generation, trigger)

	itemErrors := 0
	for _, result := range results {
		itemErrors += len(result.Errors)
	}
	logger.Info("loader.commit",
		"collections", len(results),
		"item_errors", itemErrors,
		"duration", s.cfg.Clock().Sub(started).String(),
	)
	return nil
}

// commitLocked records a successful commit. commitMu must be held.
func (s *Service) commitLocked(generation uint64, trigger Trigger) {
	now := s.cfg.Clock()
	s.committed = generation
	s.lastSuccess = now
	s.lastErr = nil
	s.cfg.Display.MarkUpdated(now)
	if noticer, ok := s.cfg.Display.(Noticer); ok {
		if trigger == TriggerManual {
			noticer.SetNotice(NoticeUpdated)
		} else {
			noticer.SetNotice("")
		}
	}
}

func (s *Service) fail(generation uint64, trigger Trigger, collections []content.Collection, err error) error {
	logger := logging.WithFields(s.logger, map[string]any{"generation": generation, "trigger": string(trigger)})
	s.recordFailure(err)
	wrapped := loadError(err, trigger, generation)

	if !trigger.Interactive() {
		logger.Warn("loader.refresh.failed", "error", err)
		return wrapped
	}
	logger.Error("loader.load.failed", "error", err)
	mount := firstMount(collections)
	if mount == "" {
		return wrapped
	}
	if !s.replaceIfCurrent(generation, mount, s.cfg.Renderer.ErrorPanel(s.cfg.Source, err)) {
		s.commitMu.Lock()
		s.restoreLocked(generation, mount)
		s.commitMu.Unlock()
	}
	return wrapped
}

func (s *Service) recordFailure(err error) {
	s.commitMu.Lock()
	s.lastErr = err
	s.commitMu.Unlock()
}

// replaceIfCurrent writes a loading or error state for an interactive load.
// It refuses once a newer load has committed or a newer interactive load
// owns the state.
func (s *Service) replaceIfCurrent(generation uint64, mount string, fragment template.HTML) bool {
	s.commitMu.Lock()
	defer s.commitMu.Unlock()
	if generation < s.committed || generation < s.interactive.Load() {
		return false
	}
	s.cfg.Display.Replace(mount, fragment)
	return true
}

// restoreLocked puts the last committed fragment back on mount when the
// interactive load ending here was the one that put its loading state
// there. commitMu must be held.
func (s *Service) restoreLocked(generation uint64, mount string) {
	if mount == "" || generation != s.interactive.Load() {
		return
	}
	if fragment, ok := s.fragments[mount]; ok {
		s.cfg.Display.Replace(mount, fragment)
	}
}

func (s *Service) tick(ctx context.Context) {
	defer s.done.Done()
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = s.Load(ctx, TriggerInterval)
		}
	}
}

func (s *Service) watch(ctx context.Context) {
	defer s.done.Done()
	err := s.cfg.Watcher.Run(ctx, func() {
		_ = s.Load(ctx, TriggerWatch)
	})
	if err != nil && ctx.Err() == nil {
		s.logger.Error("loader.watch.failed", "error", err)
	}
}

// Results returns the results of the last committed load.
func (s *Service) Results() map[string]*fetcher.Result {
	s.commitMu.Lock()
	defer s.commitMu.Unlock()
	out := make(map[string]*fetcher.Result, len(s.results))
	for name, result := range s.results {
		out[name] = result
	}
	return out
}

// Result returns the last committed result of one collection.
func (s *Service) Result(name string) (*fetcher.Result, bool) {
	s.commitMu.Lock()
	defer s.commitMu.Unlock()
	result, ok := s.results[name]
	return result, ok
}

// Status reports generation counters and the last outcome.
func (s *Service) Status() Status {
	s.commitMu.Lock()
	status := Status{
		Generation:  s.generation.Load(),
		Committed:   s.committed,
		LastSuccess: s.lastSuccess,
	}
	if s.lastErr != nil {
		status.LastError = s.lastErr.Error()
	}
	s.commitMu.Unlock()

	s.lifecycleMu.Lock()
	status.Running = s.running
	s.lifecycleMu.Unlock()
	return status
}

func firstMount(collections []content.Collection) string {
	if len(collections) == 0 {
		return ""
	}
	return collections[0].Mount
}
