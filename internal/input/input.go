// Package input defines the device-neutral events fed to the image viewer and selection set.
//
// Front ends (terminal, desktop window, tests) translate their native events
// into these types so the interaction logic never sees a toolkit type.
package input

import (
	"strings"
	"time"
)

// Modifiers is a bitmask of keyboard modifiers held during an event.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModCtrl
	ModAlt
	ModMeta
)

// Has reports whether all bits of m are set.
func (mods Modifiers) Has(m Modifiers) bool { return mods&m == m }

// Command reports whether the platform command modifier (Ctrl or Meta) is held.
func (mods Modifiers) Command() bool { return mods&(ModCtrl|ModMeta) != 0 }

func (mods Modifiers) String() string {
	if mods == 0 {
		return "none"
	}
	var parts []string
	for _, m := range []struct {
		bit  Modifiers
		name string
	}{{ModShift, "shift"}, {ModCtrl, "ctrl"}, {ModAlt, "alt"}, {ModMeta, "meta"}} {
		if mods.Has(m.bit) {
			parts = append(parts, m.name)
		}
	}
	return strings.Join(parts, "+")
}

// Point is a position in surface coordinates.
type Point struct {
	X, Y float64
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Button identifies a pointer button.
type Button int

const (
	ButtonNone Button = iota
	ButtonPrimary
	ButtonMiddle
	ButtonSecondary
)

// Target is the viewer element an event landed on.
type Target int

const (
	TargetNone Target = iota
	TargetImage
	TargetBackdrop
	TargetClose
	TargetPrev
	TargetNext
	TargetDetails
	TargetDelete
)

func (t Target) String() string {
	switch t {
	case TargetImage:
		return "image"
	case TargetBackdrop:
		return "backdrop"
	case TargetClose:
		return "close"
	case TargetPrev:
		return "prev"
	case TargetNext:
		return "next"
	case TargetDetails:
		return "details"
	case TargetDelete:
		return "delete"
	default:
		return "none"
	}
}

// Region is the page area a document-level click landed in.
type Region int

const (
	RegionOther Region = iota
	RegionImageCard
	RegionViewControls
	RegionPagination
)

func (r Region) String() string {
	switch r {
	case RegionImageCard:
		return "image-card"
	case RegionViewControls:
		return "view-controls"
	case RegionPagination:
		return "pagination"
	default:
		return "other"
	}
}

// Key is a named key the viewer reacts to.
type Key int

const (
	KeyOther Key = iota
	KeyEscape
	KeyLeft
	KeyRight
)

// WheelEvent is one wheel notch. Negative DeltaY scrolls up (zoom in).
type WheelEvent struct {
	Pos    Point
	DeltaY float64
	Mods   Modifiers
}

// PointerEvent is a mouse press, move or release.
type PointerEvent struct {
	Pos    Point
	Button Button
	Target Target
	Mods   Modifiers
}

// ClickEvent is a completed press and release on a single target.
type ClickEvent struct {
	Pos    Point
	Target Target
	Mods   Modifiers
}

// KeyEvent is a key press.
type KeyEvent struct {
	Key  Key
	Mods Modifiers
}

// TouchEvent is a single-finger touch sample.
type TouchEvent struct {
	ID     int
	Pos    Point
	Time   time.Time
	Target Target
}
