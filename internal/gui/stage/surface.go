package stage

import (
	"time"

	"github.com/desertthunder/wallview/internal/viewer"
)

// Surface is the window's [viewer.Surface]. Transitions ease out over their
// duration and are advanced once per frame by [Surface.Step].
type Surface struct {
	width    float64
	current  viewer.Transform
	from     viewer.Transform
	to       viewer.Transform
	start    time.Time
	duration time.Duration
	controls bool
	locked   bool
}

// NewSurface returns a surface at rest at the identity transform.
func NewSurface(width float64) *Surface {
	t := viewer.Identity()
	return &Surface{width: width, current: t, from: t, to: t}
}

// Apply moves to t, instantly when d is not positive.
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

// Step advances the running transition. Its clock starts on the first step after Apply.
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
	e := easeOut(p)
	s.current = viewer.Transform{
		Scale: s.from.Scale + (s.to.Scale-s.from.Scale)*e,
		X:     s.from.X + (s.to.X-s.from.X)*e,
		Y:     s.from.Y + (s.to.Y-s.from.Y)*e,
	}
}

func (s *Surface) SetControlsVisible(v bool)   { s.controls = v }
func (s *Surface) SetScrollLocked(locked bool) { s.locked = locked }
func (s *Surface) Width() float64              { return s.width }

func (s *Surface) Current() viewer.Transform { return s.current }
func (s *Surface) Animating() bool           { return s.duration > 0 }
func (s *Surface) ControlsVisible() bool     { return s.controls }

// Resize sets the width used to move images off-screen.
func (s *Surface) Resize(width float64) { s.width = width }

// easeOut is a cubic ease-out on [0, 1].
func easeOut(p float64) float64 {
	q := 1 - p
	return 1 - q*q*q
}
