package stage

import (
	"time"

	"github.com/desertthunder/wallview/internal/input"
)

// Touch is one finger's position in a frame.
type Touch struct {
	ID  int
	Pos input.Point
}

// Frame is the raw viewer input of one frame, polled before any handling.
type Frame struct {
	Now    time.Time
	Mods   input.Modifiers
	Cursor input.Point
	WheelY float64 // positive scrolls down, as in a browser wheel event

	Pressed  bool // primary button went down this frame
	Released bool // primary button went up this frame

	Escape, Left, Right bool
	ZoomIn, ZoomOut     bool
	Open, Details       bool
	Remove              bool

	TouchStarts []Touch
	TouchMoves  []Touch
	TouchEnds   []Touch
}

// Controller is the part of the viewer controller a [Dispatcher] drives.
type Controller interface {
	Wheel(ev input.WheelEvent) bool
	PointerDown(ev input.PointerEvent) bool
	PointerMove(ev input.PointerEvent) bool
	PointerUp(ev input.PointerEvent) bool
	Click(ev input.ClickEvent)
	Key(ev input.KeyEvent) bool
	TouchStart(ev input.TouchEvent)
	TouchMove(ev input.TouchEvent)
	TouchEnd(ev input.TouchEvent)
}

// Dispatcher translates frames into controller calls.
// It remembers which element a press or touch began on, so a release
// only counts as a click when it lands on the same element.
type Dispatcher struct {
	ctrl    Controller
	pressed input.Target
	touches map[int]input.Target
	last    input.Point
	note    func(format string, args ...any)
}

// NewDispatcher creates a Dispatcher. note, if set, receives a line per touch event.
func NewDispatcher(ctrl Controller, note func(format string, args ...any)) *Dispatcher {
	if note == nil {
		note = func(string, ...any) {}
	}
	return &Dispatcher{ctrl: ctrl, touches: map[int]input.Target{}, note: note}
}

// Handle feeds one frame to the controller. hit resolves a position to the
// element drawn there, and center anchors keyboard zoom.
func (d *Dispatcher) Handle(f Frame, hit func(input.Point) input.Target, center input.Point) {
	d.keys(f, center)
	d.mouse(f, hit)
	d.touch(f, hit)
}

func (d *Dispatcher) keys(f Frame, center input.Point) {
	switch {
	case f.Escape:
		d.ctrl.Key(input.KeyEvent{Key: input.KeyEscape, Mods: f.Mods})
	case f.Left:
		d.ctrl.Key(input.KeyEvent{Key: input.KeyLeft, Mods: f.Mods})
	case f.Right:
		d.ctrl.Key(input.KeyEvent{Key: input.KeyRight, Mods: f.Mods})
	}

	if f.ZoomIn {
		d.ctrl.Wheel(input.WheelEvent{Pos: center, DeltaY: -1, Mods: input.ModCtrl})
	}
	if f.ZoomOut {
		d.ctrl.Wheel(input.WheelEvent{Pos: center, DeltaY: 1, Mods: input.ModCtrl})
	}
	if f.Open {
		d.ctrl.Click(input.ClickEvent{Pos: center, Target: input.TargetImage})
	}
	if f.Details {
		d.ctrl.Click(input.ClickEvent{Target: input.TargetDetails})
	}
	if f.Remove {
		d.ctrl.Click(input.ClickEvent{Target: input.TargetDelete})
	}
}

func (d *Dispatcher) mouse(f Frame, hit func(input.Point) input.Target) {
	if f.WheelY != 0 {
		d.ctrl.Wheel(input.WheelEvent{Pos: f.Cursor, DeltaY: f.WheelY, Mods: f.Mods})
	}

	if f.Pressed {
		d.pressed = hit(f.Cursor)
		d.ctrl.PointerDown(input.PointerEvent{
			Pos: f.Cursor, Button: input.ButtonPrimary, Target: d.pressed, Mods: f.Mods,
		})
	}
	if f.Cursor != d.last {
		d.ctrl.PointerMove(input.PointerEvent{Pos: f.Cursor, Mods: f.Mods})
		d.last = f.Cursor
	}
	if f.Released {
		d.ctrl.PointerUp(input.PointerEvent{Pos: f.Cursor, Button: input.ButtonPrimary, Mods: f.Mods})
		target := hit(f.Cursor)
		if target != input.TargetNone && target == d.pressed {
			d.ctrl.Click(input.ClickEvent{Pos: f.Cursor, Target: target, Mods: f.Mods})
		}
		d.pressed = input.TargetNone
	}
}

// touch routes fingers that land on the image to the gesture recognizer.
// Fingers on any other element act like a click on release.
func (d *Dispatcher) touch(f Frame, hit func(input.Point) input.Target) {
	for _, t := range f.TouchStarts {
		target := hit(t.Pos)
		d.touches[t.ID] = target
		d.note("touchstart id=%d target=%s x=%.0f y=%.0f", t.ID, target, t.Pos.X, t.Pos.Y)
		if target == input.TargetImage {
			d.ctrl.TouchStart(input.TouchEvent{ID: t.ID, Pos: t.Pos, Time: f.Now, Target: target})
		}
	}

	for _, t := range f.TouchMoves {
		if d.touches[t.ID] == input.TargetImage {
			d.ctrl.TouchMove(input.TouchEvent{ID: t.ID, Pos: t.Pos, Time: f.Now, Target: input.TargetImage})
		}
	}

	for _, t := range f.TouchEnds {
		target, ok := d.touches[t.ID]
		if !ok {
			continue
		}
		delete(d.touches, t.ID)
		d.note("touchend id=%d x=%.0f y=%.0f", t.ID, t.Pos.X, t.Pos.Y)

		if target == input.TargetImage {
			d.ctrl.TouchEnd(input.TouchEvent{ID: t.ID, Pos: t.Pos, Time: f.Now, Target: target})
			continue
		}
		if target != input.TargetNone && hit(t.Pos) == target {
			d.ctrl.Click(input.ClickEvent{Pos: t.Pos, Target: target})
		}
	}
}
