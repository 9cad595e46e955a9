package source_test

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goliatone/go-gitcontent/internal/source"
)

func TestWatcherDebouncesChanges(t *testing.T) {
	root := t.TempDir()
	blog := filepath.Join(root, "content", "blog")
	if err := os.MkdirAll(blog, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := make(chan struct{}, 8)
	watcher := source.NewWatcher(root, []string{"content/blog"}, 50*time.Millisecond, nil)
	done := make(chan error, 1)
	go func() {
		done <- watcher.Run(ctx, func() { calls <- struct{}{} })
	}()

	// give the watcher time to register
	time.Sleep(100 * time.Millisecond)
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(filepath.Join(blog, "a.md"), []byte{byte('a' + i)}, 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	select {
	case <-calls:
	case <-time.After(2 * time.Second):
		t.Fatalf("expected change callback")
	}
	select {
	case <-calls:
		t.Fatalf("expected burst to collapse into one callback")
	case <-time.After(200 * time.Millisecond):
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run returned %v", err)
	}
}

func TestWatcherRunWaitsForRunningCallback(t *testing.T) {
	root := t.TempDir()
	blog := filepath.Join(root, "content", "blog")
	if err := os.MkdirAll(blog, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	watcher := source.NewWatcher(root, []string{"content/blog"}, 20*time.Millisecond, nil)
	done := make(chan error, 1)
	go func() {
		done <- watcher.Run(ctx, func() {
			if calls.Add(1) == 1 {
				close(started)
			}
			<-release
		})
	}()

	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(blog, "a.md"), []byte("a"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("expected change callback")
	}

	cancel()
	select {
	case <-done:
		t.Fatal("Run returned while the change callback was still running")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after the callback finished")
	}
}
