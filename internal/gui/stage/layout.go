package stage

import (
	"github.com/desertthunder/wallview/internal/input"
	"github.com/desertthunder/wallview/internal/viewer"
)

const (
	BarHeight    = 40
	buttonWidth  = 96
	buttonHeight = 28
	buttonGap    = 8
)

// Rect is an axis-aligned rectangle in window pixels.
type Rect struct {
	X, Y, W, H float64
}

// Contains reports whether p lies inside r. The right and bottom edges are exclusive.
func (r Rect) Contains(p input.Point) bool {
	return p.X >= r.X && p.X < r.X+r.W && p.Y >= r.Y && p.Y < r.Y+r.H
}

// Center is the midpoint of r.
func (r Rect) Center() input.Point {
	return input.Point{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

// Control is one button of the control bar.
type Control struct {
	Label  string
	Target input.Target
}

// Controls are the control bar buttons, left to right.
var Controls = []Control{
	{"< prev", input.TargetPrev},
	{"details", input.TargetDetails},
	{"delete", input.TargetDelete},
	{"next >", input.TargetNext},
	{"x close", input.TargetClose},
}

// Layout positions the image and control bar inside a window.
type Layout struct {
	Width, Height float64
	// ImageW and ImageH are the source image dimensions, zero while loading.
	ImageW, ImageH float64
	// ShowControls is false while the control bar is hidden.
	ShowControls bool
}

// Stage is the area above the control bar the image is fitted into.
func (l Layout) Stage() Rect {
	return Rect{W: l.Width, H: max(l.Height-BarHeight, 0)}
}

// Fit is the scale that fits the image inside the stage without enlarging it.
func (l Layout) Fit() float64 {
	if l.ImageW <= 0 || l.ImageH <= 0 {
		return 1
	}
	s := l.Stage()
	return min(s.W/l.ImageW, s.H/l.ImageH, 1)
}

// Base is the untransformed image rectangle, centered on the stage.
func (l Layout) Base() Rect {
	s := l.Stage()
	f := l.Fit()
	w, h := l.ImageW*f, l.ImageH*f
	return Rect{X: (s.W - w) / 2, Y: (s.H - h) / 2, W: w, H: h}
}

// Placed applies t to the base rectangle. Points map as p -> t.X,t.Y + t.Scale*p,
// matching [viewer.Transform.ZoomAt].
func (l Layout) Placed(t viewer.Transform) Rect {
	b := l.Base()
	return Rect{
		X: t.X + t.Scale*b.X,
		Y: t.Y + t.Scale*b.Y,
		W: t.Scale * b.W,
		H: t.Scale * b.H,
	}
}

// Buttons returns the rectangles of [Controls], centered along the bottom edge.
func (l Layout) Buttons() []Rect {
	n := float64(len(Controls))
	total := n*buttonWidth + (n-1)*buttonGap
	x := (l.Width - total) / 2
	y := l.Height - BarHeight + (BarHeight-buttonHeight)/2

	rects := make([]Rect, len(Controls))
	for i := range Controls {
		rects[i] = Rect{X: x, Y: y, W: buttonWidth, H: buttonHeight}
		x += buttonWidth + buttonGap
	}
	return rects
}

// Hit maps a window position to the viewer element under it.
// Buttons take precedence over the image, and only respond while shown.
func (l Layout) Hit(p input.Point, t viewer.Transform) input.Target {
	if l.ShowControls {
		for i, r := range l.Buttons() {
			if r.Contains(p) {
				return Controls[i].Target
			}
		}
	}
	if l.ImageW > 0 && l.Placed(t).Contains(p) {
		return input.TargetImage
	}
	if p.X >= 0 && p.X < l.Width && p.Y >= 0 && p.Y < l.Height {
		return input.TargetBackdrop
	}
	return input.TargetNone
}
