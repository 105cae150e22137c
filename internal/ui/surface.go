package ui

import (
	"time"

	"github.com/desertthunder/wallview/internal/viewer"
)

// Terminal cells are treated as 8x16 pixel boxes when converting between
// mouse coordinates and viewer transforms.
const (
	cellWidth  = 8
	cellHeight = 16
)

// Surface is a [viewer.Surface] for the terminal. Animated transforms are
// interpolated by [Surface.Step], which the model calls on every tick.
type Surface struct {
	cols     int
	current  viewer.Transform
	from     viewer.Transform
	to       viewer.Transform
	start    time.Time
	duration time.Duration
	controls bool
	locked   bool
}

// NewSurface creates a surface at the identity transform.
func NewSurface() *Surface {
	t := viewer.Identity()
	return &Surface{current: t, from: t, to: t}
}

// Apply starts a transition to t, or jumps there when d is not positive.
func (s *Surface) Apply(t viewer.Transform, d time.Duration) {
	if d <= 0 {
		s.current, s.from, s.to = t, t, t
		s.duration = 0
		return
	}
	s.from, s.to = s.current, t
	s.start = time.Time{}
	s.duration = d
}

// Step advances a running transition to now. The first step after Apply starts the clock.
func (s *Surface) Step(now time.Time) {
	if s.duration <= 0 {
		return
	}
	if s.start.IsZero() {
		s.start = now
	}

	p := float64(now.Sub(s.start)) / float64(s.duration)
	if p >= 1 {
		s.current = s.to
		s.duration = 0
		return
	}
	s.current = viewer.Transform{
		Scale: lerp(s.from.Scale, s.to.Scale, p),
		X:     lerp(s.from.X, s.to.X, p),
		Y:     lerp(s.from.Y, s.to.Y, p),
	}
}

func (s *Surface) SetControlsVisible(v bool)   { s.controls = v }
func (s *Surface) SetScrollLocked(locked bool) { s.locked = locked }
func (s *Surface) Width() float64              { return float64(s.cols * cellWidth) }

// Current is the transform as currently drawn.
func (s *Surface) Current() viewer.Transform { return s.current }

// Animating reports whether a transition is in progress.
func (s *Surface) Animating() bool { return s.duration > 0 }

// Locked reports whether gallery scrolling is suspended.
func (s *Surface) Locked() bool { return s.locked }

func (s *Surface) resize(cols int) { s.cols = cols }

func lerp(a, b, p float64) float64 { return a + (b-a)*p }
