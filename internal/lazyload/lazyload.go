// Package lazyload defers thumbnail decoding until an item scrolls into view.
//
// Items are observed with their on-screen bounds. [Loader.Intersect] loads every
// observed item that overlaps the viewport and stops observing it, so each item
// loads at most once. When the front end cannot report visibility, [Options.Eager]
// loads items as soon as they are observed.
package lazyload

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/wallview/internal/imaging"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// ErrInterrupted marks a result whose load was cut short by cancellation or the rate limiter.
var ErrInterrupted = errors.New("thumbnail load interrupted")

// Rect is an axis-aligned rectangle in layout units.
type Rect struct {
	X, Y, W, H float64
}

// Intersects reports whether r and o overlap. Touching edges do not count.
func (r Rect) Intersects(o Rect) bool {
	return r.X < o.X+o.W && o.X < r.X+r.W && r.Y < o.Y+o.H && o.Y < r.Y+r.H
}

// Item is one image waiting for its thumbnail.
type Item struct {
	ID     string
	Path   string
	Bounds Rect
}

// Result is the outcome of loading one item.
type Result struct {
	ID    string
	Thumb image.Image
	Err   error
}

// LoadFunc produces the thumbnail for an item.
type LoadFunc func(ctx context.Context, item Item) (image.Image, error)

// Options configures a [Loader].
type Options struct {
	Eager     bool    // Load on observe instead of on intersection
	Workers   int     // Concurrent decodes (default: 4)
	Rate      float64 // Decodes per second (default: 20)
	ThumbSize int     // Longest thumbnail edge in pixels (default: 320)
	Load      LoadFunc
	Logger    *log.Logger
}

// Loader tracks observed items. Observe, Intersect's selection step and the
// accessors must be called from one goroutine; [Loader.Load] may run elsewhere.
type Loader struct {
	opts     Options
	limiter  *rate.Limiter
	observed []Item
	inflight map[string]Item
	loaded   map[string]bool
}

// New creates a Loader.
func New(opts Options) *Loader {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.Rate <= 0 {
		opts.Rate = 20
	}
	if opts.ThumbSize <= 0 {
		opts.ThumbSize = 320
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	l := &Loader{
		opts:    opts,
		limiter: rate.NewLimiter(rate.Limit(opts.Rate), opts.Workers),
		inflight: map[string]Item{},
		loaded:   map[string]bool{},
	}
	if l.opts.Load == nil {
		l.opts.Load = l.thumbnail
	}
	return l
}

// Observe starts watching items. Items already loaded, loading or observed are ignored.
//
// In eager mode nothing is kept: the returned items are due immediately.
func (l *Loader) Observe(items ...Item) []Item {
	var due []Item
	for _, item := range items {
		if l.loaded[item.ID] || l.observing(item.ID) || l.loading(item.ID) {
			continue
		}
		if l.opts.Eager {
			l.inflight[item.ID] = item
			due = append(due, item)
			continue
		}
		l.observed = append(l.observed, item)
	}
	return due
}

func (l *Loader) observing(id string) bool {
	for _, item := range l.observed {
		if item.ID == id {
			return true
		}
	}
	return false
}

func (l *Loader) loading(id string) bool {
	_, ok := l.inflight[id]
	return ok
}

// Move updates the bounds of an observed item after a relayout.
func (l *Loader) Move(id string, bounds Rect) bool {
	for i := range l.observed {
		if l.observed[i].ID == id {
			l.observed[i].Bounds = bounds
			return true
		}
	}
	return false
}

// Due removes and returns the observed items that intersect viewport.
// They stay in flight until their results are passed to [Loader.Settle].
func (l *Loader) Due(viewport Rect) []Item {
	var due []Item
	kept := l.observed[:0]
	for _, item := range l.observed {
		if item.Bounds.Intersects(viewport) {
			l.inflight[item.ID] = item
			due = append(due, item)
			continue
		}
		kept = append(kept, item)
	}
	l.observed = kept
	return due
}

// Intersect loads every observed item inside viewport and waits for the results.
func (l *Loader) Intersect(ctx context.Context, viewport Rect) ([]Result, error) {
	results, err := l.Load(ctx, l.Due(viewport))
	l.Settle(results)
	return results, err
}

// Settle records the outcome of a [Loader.Load] call on the owning goroutine.
// Finished items are loaded, even when their decode failed. Interrupted items are
// observed again at their last bounds. Results for items no longer in flight, as
// after [Loader.Reset], are ignored.
func (l *Loader) Settle(results []Result) {
	for _, r := range results {
		item, ok := l.inflight[r.ID]
		if !ok {
			continue
		}
		delete(l.inflight, r.ID)
		if errors.Is(r.Err, ErrInterrupted) {
			l.observed = append(l.observed, item)
			continue
		}
		l.loaded[r.ID] = true
	}
}

// Load runs the load function for items on a bounded, rate-limited pool.
//
// Results keep the order of items and every result carries its item's ID. A failing
// item is reported in its Result and does not stop the others; only cancellation of
// ctx returns an error, and the items it cut short report [ErrInterrupted].
func (l *Loader) Load(ctx context.Context, items []Item) ([]Result, error) {
	results := make([]Result, len(items))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(l.opts.Workers)

	for i, item := range items {
		g.Go(func() error {
			if err := l.limiter.Wait(ctx); err != nil {
				results[i] = Result{ID: item.ID, Err: fmt.Errorf("%w: %w", ErrInterrupted, err)}
				return err
			}
			thumb, err := l.opts.Load(ctx, item)
			if err != nil && ctx.Err() != nil {
				err = fmt.Errorf("%w: %w", ErrInterrupted, err)
			} else if err != nil {
				l.opts.Logger.Warn("thumbnail failed", "id", item.ID, "path", item.Path, "error", err)
			}
			results[i] = Result{ID: item.ID, Thumb: thumb, Err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// Pending is the number of items still waiting to intersect.
func (l *Loader) Pending() int { return len(l.observed) }

// Loaded reports whether an item finished loading, successfully or not.
func (l *Loader) Loaded(id string) bool { return l.loaded[id] }

// Reset forgets all observed and loaded items, as when a new page replaces the old one.
func (l *Loader) Reset() {
	l.observed = nil
	l.inflight = map[string]Item{}
	l.loaded = map[string]bool{}
}

func (l *Loader) thumbnail(ctx context.Context, item Item) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, err := imaging.Decode(item.Path)
	if err != nil {
		return nil, err
	}
	return imaging.Thumbnail(img, l.opts.ThumbSize)
}
