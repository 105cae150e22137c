package viewer

import (
	"math"
	"time"

	"github.com/desertthunder/wallview/internal/input"
)

type swipeState struct {
	tracking bool
	id       int
	start    input.Point
	current  input.Point
	began    time.Time
	engaged  bool
}

type tapState struct {
	pending *Task
	last    time.Time
}

// TouchStart begins tracking a single-finger gesture.
// Touches that land during a transition, or while another finger is tracked, are ignored.
func (c *Controller) TouchStart(ev input.TouchEvent) {
	if !c.active || !c.mobile {
		return
	}
	if c.state.Animating() {
		c.logger.Debug("touch ignored during transition", "state", c.state)
		return
	}
	if c.swipe.tracking && c.swipe.id != ev.ID {
		return
	}

	c.swipe = swipeState{
		tracking: true,
		id:       ev.ID,
		start:    ev.Pos,
		current:  ev.Pos,
		began:    ev.Time,
	}
}

// TouchMove tracks the finger. Once the gesture is clearly horizontal the image follows it 1:1.
func (c *Controller) TouchMove(ev input.TouchEvent) {
	if !c.tracks(ev) {
		return
	}

	c.swipe.current = ev.Pos
	d := ev.Pos.Sub(c.swipe.start)
	if !c.swipe.engaged && !horizontal(d) {
		return
	}

	c.swipe.engaged = true
	c.state = StateDragging
	c.transform = Transform{Scale: 1, X: d.X}
	c.push(c.transform, 0)
}

// TouchEnd decides between tap, navigation and snap-back.
func (c *Controller) TouchEnd(ev input.TouchEvent) {
	if !c.tracks(ev) {
		return
	}

	sw := c.swipe
	c.swipe = swipeState{}

	d := ev.Pos.Sub(sw.start)
	elapsed := ev.Time.Sub(sw.began)
	engaged := sw.engaged || horizontal(d)

	switch {
	case engaged && c.shouldNavigate(d.X, elapsed):
		c.transition(d.X, ev.Time)
	case math.Hypot(d.X, d.Y) <= c.cfg.TapSlop:
		if sw.engaged {
			c.transform = Identity()
			c.push(c.transform, 0)
			c.state = StateIdle
		}
		c.handleTap(ev.Time)
	case sw.engaged:
		c.snapBack(ev.Time)
	}
}

// TouchCancel abandons the gesture and recenters the image.
func (c *Controller) TouchCancel(ev input.TouchEvent) {
	if !c.tracks(ev) {
		return
	}
	engaged := c.swipe.engaged
	c.swipe = swipeState{}
	if engaged {
		c.snapBack(ev.Time)
	}
}

func (c *Controller) tracks(ev input.TouchEvent) bool {
	return c.active && c.mobile && c.swipe.tracking && c.swipe.id == ev.ID
}

// horizontal gates swipes against vertical scrolling.
func horizontal(d input.Point) bool {
	return math.Abs(d.X) > 2*math.Abs(d.Y)
}

// shouldNavigate applies the exclusive distance and velocity thresholds.
// A non-zero displacement with no measurable duration counts as infinitely fast.
func (c *Controller) shouldNavigate(dx float64, elapsed time.Duration) bool {
	dist := math.Abs(dx)
	if dist == 0 {
		return false
	}
	if dist > c.cfg.SwipeDistance {
		return true
	}

	ms := float64(elapsed) / float64(time.Millisecond)
	if ms <= 0 {
		return true
	}
	return dist/ms > c.cfg.SwipeVelocity
}

// transition runs the two-phase slide: the old image leaves in the swipe
// direction, the gallery navigates, and the new image enters from the opposite side.
// Phases are timed from the release at start, not from the last frame.
func (c *Controller) transition(dx float64, start time.Time) {
	nav, ok := c.host.(Navigator)
	if !ok {
		c.logger.Debug("host does not support navigation")
		c.snapBack(start)
		return
	}

	width := c.offscreen()
	exit := -width
	step := nav.ViewNextImage
	if dx > 0 {
		exit = width
		step = nav.ViewPrevImage
	}

	c.state = StateAnimatingOut
	c.transform = Transform{Scale: 1, X: exit}
	c.push(c.transform, c.cfg.OutDuration)

	c.at(start.Add(c.cfg.OutDuration), func() {
		step()
		c.after(c.cfg.NavigateDelay, func() {
			c.state = StateAnimatingIn
			c.push(Transform{Scale: 1, X: -exit}, 0)
			c.transform = Identity()
			c.push(c.transform, c.cfg.InDuration)
			c.after(c.cfg.InDuration, func() { c.state = StateIdle })
		})
	})
}

func (c *Controller) snapBack(start time.Time) {
	c.state = StateAnimatingIn
	c.transform = Identity()
	c.push(c.transform, c.cfg.InDuration)
	c.at(start.Add(c.cfg.InDuration), func() { c.state = StateIdle })
}

// handleTap toggles the controls once the double-tap window closes without a second tap.
// A second tap inside the window opens the image instead.
// The window is measured from the tap's own time stamp.
func (c *Controller) handleTap(at time.Time) {
	window := c.cfg.DoubleTapWindow

	if c.tap.pending.Pending() {
		if at.Sub(c.tap.last) <= window {
			c.tap.pending.Cancel()
			c.tap = tapState{}
			c.Open()
			return
		}
		// the window closed but no frame ran the toggle yet
		c.tap.pending.Cancel()
		c.toggleControls()
	}

	c.tap.last = at
	c.tap.pending = c.at(at.Add(window), func() {
		c.tap.pending = nil
		c.toggleControls()
	})
}

func (c *Controller) toggleControls() {
	c.setControls(!c.controlsVisible)
}
