package viewer

import (
	"time"

	"github.com/charmbracelet/log"
)

// Navigator moves the gallery to the adjacent image.
type Navigator interface {
	ViewPrevImage()
	ViewNextImage()
}

// Closer deactivates the viewer from the gallery's side.
type Closer interface {
	CloseImageViewer()
}

// Detailer shows metadata for the current image.
type Detailer interface {
	ShowImageDetails()
}

// Deleter removes the current image.
type Deleter interface {
	DeleteCurrentImage()
}

// ImageSource reports the resource URL of the image being viewed.
type ImageSource interface {
	CurrentImageURL() string
}

// Opener opens a resource in a new browsing context.
type Opener interface {
	Open(url string)
}

// Surface renders the viewer. Apply is only called from [Controller.Frame].
type Surface interface {
	// Apply moves the image to t, animating over d when d is positive.
	Apply(t Transform, d time.Duration)
	SetControlsVisible(visible bool)
	// SetScrollLocked stops the page behind the overlay from scrolling.
	SetScrollLocked(locked bool)
	// Width is the viewport width used to move the image fully off-screen.
	Width() float64
}

// NopHost stands in when no gallery is attached. It logs each call and does nothing.
//
// It deliberately does not implement [Closer] so closing falls back to local deactivation.
type NopHost struct {
	Logger *log.Logger
}

func (h NopHost) note(method string) {
	if h.Logger != nil {
		h.Logger.Debug("no gallery attached", "method", method)
	}
}

func (h NopHost) ViewPrevImage()          { h.note("ViewPrevImage") }
func (h NopHost) ViewNextImage()          { h.note("ViewNextImage") }
func (h NopHost) ShowImageDetails()       { h.note("ShowImageDetails") }
func (h NopHost) DeleteCurrentImage()     { h.note("DeleteCurrentImage") }
func (h NopHost) CurrentImageURL() string { h.note("CurrentImageURL"); return "" }

type nopSurface struct{}

func (nopSurface) Apply(Transform, time.Duration) {}
func (nopSurface) SetControlsVisible(bool)        {}
func (nopSurface) SetScrollLocked(bool)           {}
func (nopSurface) Width() float64                 { return 0 }

type nopOpener struct{}

func (nopOpener) Open(string) {}
