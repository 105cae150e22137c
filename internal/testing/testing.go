// package testing contains shared testing utilities
package testing

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/desertthunder/wallview/internal/viewer"
)

// RecordingHost is a gallery double implementing every viewer capability.
type RecordingHost struct {
	URL     string
	Prev    int
	Next    int
	Closed  int
	Details int
	Deleted int
	// OnClose runs inside CloseImageViewer, typically to deactivate the controller.
	OnClose func()
}

func (h *RecordingHost) ViewPrevImage()          { h.Prev++ }
func (h *RecordingHost) ViewNextImage()          { h.Next++ }
func (h *RecordingHost) ShowImageDetails()       { h.Details++ }
func (h *RecordingHost) DeleteCurrentImage()     { h.Deleted++ }
func (h *RecordingHost) CurrentImageURL() string { return h.URL }

func (h *RecordingHost) CloseImageViewer() {
	h.Closed++
	if h.OnClose != nil {
		h.OnClose()
	}
}

// NavigatorOnly is a host that can navigate and report its image but cannot close the viewer.
type NavigatorOnly struct {
	URL  string
	Prev int
	Next int
}

func (h *NavigatorOnly) ViewPrevImage()          { h.Prev++ }
func (h *NavigatorOnly) ViewNextImage()          { h.Next++ }
func (h *NavigatorOnly) CurrentImageURL() string { return h.URL }

// Applied is one transform pushed to a [RecordingSurface].
type Applied struct {
	Transform viewer.Transform
	Duration  time.Duration
}

// RecordingSurface is a [viewer.Surface] that records every call.
type RecordingSurface struct {
	Applied         []Applied
	ControlsVisible bool
	ControlToggles  int
	ScrollLocked    bool
	W               float64
}

func (s *RecordingSurface) Apply(t viewer.Transform, d time.Duration) {
	s.Applied = append(s.Applied, Applied{Transform: t, Duration: d})
}

func (s *RecordingSurface) SetControlsVisible(v bool) {
	s.ControlsVisible = v
	s.ControlToggles++
}

func (s *RecordingSurface) SetScrollLocked(locked bool) { s.ScrollLocked = locked }
func (s *RecordingSurface) Width() float64              { return s.W }

// Last returns the most recent applied transform, or the zero value.
func (s *RecordingSurface) Last() Applied {
	if len(s.Applied) == 0 {
		return Applied{}
	}
	return s.Applied[len(s.Applied)-1]
}

// RecordingOpener is a [viewer.Opener] that records opened URLs.
type RecordingOpener struct {
	URLs []string
}

func (o *RecordingOpener) Open(url string) { o.URLs = append(o.URLs, url) }

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MustWritePNG writes a solid w×h PNG to path, creating parent directories.
func MustWritePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create directory for %s: %v", path, err)
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create %s: %v", path, err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("Failed to encode %s: %v", path, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
