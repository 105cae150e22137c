package tasks

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/desertthunder/wallview/internal/imaging"
	"github.com/desertthunder/wallview/internal/shared"
	tu "github.com/desertthunder/wallview/internal/testing"
)

// memStore is an in-memory IndexStore keyed by path.
type memStore struct {
	mu        sync.Mutex
	rows      map[string]*imaging.Info
	reindexed int
	failOn    string
}

func newMemStore() *memStore {
	return &memStore{rows: map[string]*imaging.Info{}}
}

func (m *memStore) Paths(string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	paths := make(map[string]string, len(m.rows))
	for p := range m.rows {
		paths[p] = p
	}
	return paths, nil
}

func (m *memStore) Upsert(_ string, info *imaging.Info) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if info.Path == m.failOn {
		return errors.New("disk full")
	}
	m.rows[info.Path] = info
	return nil
}

func (m *memStore) Remove(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
	return nil
}

func (m *memStore) Reindex(string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reindexed++
	return nil
}

func (m *memStore) has(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.rows[path]
	return ok
}

func (m *memStore) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

func testOpts() ScanOpts {
	return ScanOpts{
		Include:    []string{"**/*.{png,jpg,jpeg,gif,bmp,webp}"},
		Exclude:    []string{"**/.*/**"},
		NumWorkers: 2,
		RateLimit:  1000,
	}
}

func TestScan(t *testing.T) {
	t.Run("indexes images and skips other files", func(t *testing.T) {
		root := t.TempDir()
		tu.MustWritePNG(t, filepath.Join(root, "a.png"), 4, 4)
		tu.MustWritePNG(t, filepath.Join(root, "nested", "b.png"), 8, 2)
		tu.MustWritePNG(t, filepath.Join(root, ".thumbs", "c.png"), 2, 2)
		if err := os.WriteFile(filepath.Join(root, "readme.txt"), []byte("hi"), 0644); err != nil {
			t.Fatal(err)
		}

		store := newMemStore()
		progress := make(chan ProgressUpdate, 100)
		result, err := NewScanner(store, testOpts(), nil).Scan(context.Background(), progress, "cat-1", root)
		if err != nil {
			t.Fatalf("Scan() error = %v", err)
		}

		if result.Found != 2 || result.Indexed != 2 {
			t.Errorf("expected 2 found and indexed, got %d/%d", result.Found, result.Indexed)
		}
		if !store.has(filepath.Join(root, "nested", "b.png")) {
			t.Error("nested image should be indexed")
		}
		if store.has(filepath.Join(root, ".thumbs", "c.png")) {
			t.Error("hidden directory should be excluded")
		}
		if store.reindexed != 1 {
			t.Errorf("expected one reindex, got %d", store.reindexed)
		}

		close(progress)
		phases := map[Phase]bool{}
		for u := range progress {
			phases[u.Phase] = true
		}
		for _, p := range []Phase{Walk, Probe, Index, Prune, Reindex} {
			if !phases[p] {
				t.Errorf("expected a %s update", p)
			}
		}
	})

	t.Run("removes rows for missing files", func(t *testing.T) {
		root := t.TempDir()
		tu.MustWritePNG(t, filepath.Join(root, "keep.png"), 4, 4)

		store := newMemStore()
		store.rows["/gone/old.png"] = &imaging.Info{Path: "/gone/old.png"}

		result, err := NewScanner(store, testOpts(), nil).Scan(context.Background(), nil, "cat-1", root)
		if err != nil {
			t.Fatalf("Scan() error = %v", err)
		}
		if result.Removed != 1 {
			t.Errorf("expected 1 removed, got %d", result.Removed)
		}
		if store.has("/gone/old.png") {
			t.Error("stale row should be removed")
		}
	})

	t.Run("reports unreadable images without failing", func(t *testing.T) {
		root := t.TempDir()
		tu.MustWritePNG(t, filepath.Join(root, "good.png"), 4, 4)
		if err := os.WriteFile(filepath.Join(root, "broken.jpg"), []byte("nope"), 0644); err != nil {
			t.Fatal(err)
		}

		store := newMemStore()
		result, err := NewScanner(store, testOpts(), nil).Scan(context.Background(), nil, "cat-1", root)
		if err != nil {
			t.Fatalf("Scan() error = %v", err)
		}
		if len(result.Failed) != 1 || filepath.Base(result.Failed[0].Path) != "broken.jpg" {
			t.Errorf("expected broken.jpg to fail, got %v", result.Failed)
		}
		if !errors.Is(result.Failed[0].Error, shared.ErrUnsupportedImage) {
			t.Errorf("expected ErrUnsupportedImage, got %v", result.Failed[0].Error)
		}
		if result.Indexed != 1 {
			t.Errorf("expected 1 indexed, got %d", result.Indexed)
		}
	})

	t.Run("store errors abort", func(t *testing.T) {
		root := t.TempDir()
		path := filepath.Join(root, "a.png")
		tu.MustWritePNG(t, path, 4, 4)

		store := newMemStore()
		store.failOn = path
		if _, err := NewScanner(store, testOpts(), nil).Scan(context.Background(), nil, "cat-1", root); err == nil {
			t.Error("expected error from store")
		}
	})

	t.Run("rejects concurrent scans", func(t *testing.T) {
		s := NewScanner(newMemStore(), testOpts(), nil)
		s.running.Store(true)

		_, err := s.Scan(context.Background(), nil, "cat-1", t.TempDir())
		if !errors.Is(err, shared.ErrScanInProgress) {
			t.Errorf("expected ErrScanInProgress, got %v", err)
		}
	})

	t.Run("guard resets after a scan", func(t *testing.T) {
		s := NewScanner(newMemStore(), testOpts(), nil)
		for range 2 {
			if _, err := s.Scan(context.Background(), nil, "cat-1", t.TempDir()); err != nil {
				t.Fatalf("Scan() error = %v", err)
			}
		}
		if s.Running() {
			t.Error("scanner should be idle")
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		root := t.TempDir()
		tu.MustWritePNG(t, filepath.Join(root, "a.png"), 4, 4)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := NewScanner(newMemStore(), testOpts(), nil).Scan(ctx, nil, "cat-1", root)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

func TestAccepts(t *testing.T) {
	s := NewScanner(newMemStore(), testOpts(), nil)

	tc := []struct {
		rel  string
		want bool
	}{
		{"a.png", true},
		{"deep/er/b.JPG", true},
		{"c.webp", true},
		{"notes.txt", false},
		{".cache/d.png", false},
		{"x/.git/e.png", false},
	}

	for _, tt := range tc {
		t.Run(tt.rel, func(t *testing.T) {
			if got := s.accepts(tt.rel); got != tt.want {
				t.Errorf("accepts(%q) = %v, want %v", tt.rel, got, tt.want)
			}
		})
	}
}

func TestDebouncer(t *testing.T) {
	t.Run("coalesces triggers", func(t *testing.T) {
		d := NewDebouncer(30 * time.Millisecond)
		var calls atomic.Int32
		for range 5 {
			d.Trigger(func() { calls.Add(1) })
		}
		time.Sleep(150 * time.Millisecond)
		if n := calls.Load(); n != 1 {
			t.Errorf("expected 1 call, got %d", n)
		}
	})

	t.Run("cancel drops pending", func(t *testing.T) {
		d := NewDebouncer(30 * time.Millisecond)
		var calls atomic.Int32
		d.Trigger(func() { calls.Add(1) })
		d.Cancel()
		time.Sleep(100 * time.Millisecond)
		if n := calls.Load(); n != 0 {
			t.Errorf("expected no calls, got %d", n)
		}
	})

	t.Run("zero uses default", func(t *testing.T) {
		if d := NewDebouncer(0); d.duration != DefaultDebounceDuration {
			t.Errorf("expected %v, got %v", DefaultDebounceDuration, d.duration)
		}
	})
}

func TestWatch(t *testing.T) {
	root := t.TempDir()
	store := newMemStore()
	s := NewScanner(store, testOpts(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Watch(ctx, nil, "cat-1", root, 20*time.Millisecond) }()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	path := filepath.Join(root, "fresh.png")
	tu.MustWritePNG(t, path, 4, 4)

	deadline := time.Now().Add(5 * time.Second)
	for !store.has(path) && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	if !store.has(path) {
		t.Error("expected new file to be indexed by the watcher")
	}

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	deadline = time.Now().Add(5 * time.Second)
	for store.len() > 0 && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	if store.len() != 0 {
		t.Error("expected removed file to be pruned by the watcher")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Error("Watch did not stop after cancel")
	}
}
