package tasks

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/wallview/internal/imaging"
	"github.com/desertthunder/wallview/internal/shared"
	"golang.org/x/time/rate"
)

// IndexStore persists scan results for one category.
type IndexStore interface {
	Paths(categoryID string) (map[string]string, error) // Paths maps indexed file paths to image IDs
	Upsert(categoryID string, info *imaging.Info) error // Upsert inserts or refreshes the row for info.Path
	Remove(id string) error                             // Remove drops an image row
	Reindex(categoryID string) error                    // Reindex rebuilds the category's sort order
}

// ScanOpts contains configuration for folder scans.
type ScanOpts struct {
	Include    []string // Glob patterns a file must match (empty matches all)
	Exclude    []string // Glob patterns that drop a file
	NumWorkers int      // Concurrent probe workers (default: 4)
	RateLimit  float64  // Probes per second (default: 50)
}

// FileError records a file that could not be probed or indexed.
type FileError struct {
	Path  string
	Error error
}

// ScanResult summarizes one scan.
type ScanResult struct {
	Found   int         // Image files on disk after filtering
	Indexed int         // Rows inserted or refreshed
	Removed int         // Rows dropped because the file is gone
	Failed  []FileError // Files skipped with their errors
}

// Scanner indexes category folders into an [IndexStore].
type Scanner struct {
	store   IndexStore
	opts    ScanOpts
	logger  *log.Logger
	probe   func(path string) (*imaging.Info, error)
	running atomic.Bool
}

// NewScanner creates a Scanner. A nil logger discards output.
func NewScanner(store IndexStore, opts ScanOpts, logger *log.Logger) *Scanner {
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 4
	}
	if opts.NumWorkers > 16 {
		opts.NumWorkers = 16
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 50
	}
	if logger == nil {
		logger = log.New(nopWriter{})
	}
	return &Scanner{store: store, opts: opts, logger: logger, probe: imaging.Probe}
}

// ScanOptsFrom builds scan options from the loaded configuration.
func ScanOptsFrom(cfg *shared.Config) ScanOpts {
	return ScanOpts{
		Include:    cfg.Scan.Include,
		Exclude:    cfg.Scan.Exclude,
		NumWorkers: cfg.Gallery.LoadWorkers,
		RateLimit:  cfg.Gallery.LoadRate * 2,
	}
}

// Running reports whether a scan is underway.
func (s *Scanner) Running() bool { return s.running.Load() }

type probeResult struct {
	path string
	info *imaging.Info
	err  error
}

// Scan brings the index for categoryID in line with the files under root.
//
// Files that fail to probe are reported in the result and do not abort the scan.
// Store errors do abort it.
func (s *Scanner) Scan(ctx context.Context, progress chan<- ProgressUpdate, categoryID, root string) (*ScanResult, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, shared.ErrScanInProgress
	}
	defer s.running.Store(false)

	logger := s.logger.With("category", categoryID, "root", root)

	sendProgress(progress, walkUpdate(root))
	files, err := s.walk(root)
	if err != nil {
		return nil, err
	}
	sendProgress(progress, foundFilesUpdate(len(files)))
	logger.Debug("walked folder", "files", len(files))

	result := &ScanResult{Found: len(files)}
	probed := s.probeAll(ctx, progress, files, result)
	if err := ctx.Err(); err != nil {
		return result, err
	}

	for i, info := range probed {
		if err := s.store.Upsert(categoryID, info); err != nil {
			return result, fmt.Errorf("failed to index %s: %w", info.Path, err)
		}
		result.Indexed++
		sendProgress(progress, indexUpdate(i+1, len(probed)))
	}

	indexed, err := s.store.Paths(categoryID)
	if err != nil {
		return result, fmt.Errorf("failed to list indexed paths: %w", err)
	}

	onDisk := make(map[string]struct{}, len(files))
	for _, f := range files {
		onDisk[f] = struct{}{}
	}

	for path, id := range indexed {
		if _, ok := onDisk[path]; ok {
			continue
		}
		if err := s.store.Remove(id); err != nil {
			return result, fmt.Errorf("failed to remove %s: %w", path, err)
		}
		result.Removed++
	}
	sendProgress(progress, pruneUpdate(result.Removed))

	sendProgress(progress, reindexUpdate())
	if err := s.store.Reindex(categoryID); err != nil {
		return result, fmt.Errorf("failed to reindex: %w", err)
	}

	logger.Info("scan complete", "found", result.Found, "indexed", result.Indexed, "removed", result.Removed, "failed", len(result.Failed))
	return result, nil
}

// walk returns the absolute paths of image files under root that pass the filters.
func (s *Scanner) walk(root string) ([]string, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", root, err)
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if s.accepts(rel) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}
	return files, nil
}

// accepts reports whether a path relative to the scan root should be indexed.
func (s *Scanner) accepts(rel string) bool {
	if !shared.AllowedImage(rel) {
		return false
	}
	if len(s.opts.Include) > 0 && !matchesAny(rel, s.opts.Include) {
		return false
	}
	return !matchesAny(rel, s.opts.Exclude)
}

// matchesAny checks rel against each pattern, then against its base name.
// Paths are lowercased so extension globs match regardless of case.
func matchesAny(rel string, patterns []string) bool {
	normalized := strings.ToLower(filepath.ToSlash(rel))
	base := filepath.Base(normalized)

	for _, pattern := range patterns {
		pattern = filepath.ToSlash(pattern)
		if matched, err := doublestar.Match(pattern, normalized); err == nil && matched {
			return true
		}
		if matched, err := doublestar.Match(pattern, base); err == nil && matched {
			return true
		}
	}
	return false
}

// probeAll probes files on a rate-limited worker pool, returning successes in walk order.
func (s *Scanner) probeAll(ctx context.Context, progress chan<- ProgressUpdate, files []string, result *ScanResult) []*imaging.Info {
	limiter := rate.NewLimiter(rate.Limit(s.opts.RateLimit), 1)

	jobs := make(chan string, len(files))
	results := make(chan probeResult, len(files))

	var wg sync.WaitGroup
	for i := 0; i < s.opts.NumWorkers; i++ {
		wg.Add(1)
		go s.probeWorker(ctx, &wg, limiter, jobs, results)
	}

	for _, f := range files {
		jobs <- f
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	byPath := make(map[string]*imaging.Info, len(files))
	completed := 0
	for res := range results {
		completed++
		if res.err != nil {
			result.Failed = append(result.Failed, FileError{Path: res.path, Error: res.err})
			s.logger.Warn("skipping file", "path", res.path, "error", res.err)
			sendProgress(progress, probeFailedUpdate(completed, len(files), res.path, res.err))
			continue
		}
		byPath[res.path] = res.info
		sendProgress(progress, probedUpdate(completed, len(files), res.path))
	}

	probed := make([]*imaging.Info, 0, len(byPath))
	for _, f := range files {
		if info, ok := byPath[f]; ok {
			probed = append(probed, info)
		}
	}
	return probed
}

// probeWorker probes paths from the jobs channel until it closes or ctx is cancelled.
func (s *Scanner) probeWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	limiter *rate.Limiter,
	jobs <-chan string,
	results chan<- probeResult,
) {
	defer wg.Done()

	for path := range jobs {
		if err := limiter.Wait(ctx); err != nil {
			return
		}
		info, err := s.probe(path)
		results <- probeResult{path: path, info: info, err: err}
	}
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }
