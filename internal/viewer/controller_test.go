package viewer_test

import (
	"io"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/wallview/internal/input"
	tu "github.com/desertthunder/wallview/internal/testing"
	"github.com/desertthunder/wallview/internal/viewer"
)

var epoch = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	c       *viewer.Controller
	host    *tu.RecordingHost
	surface *tu.RecordingSurface
	opener  *tu.RecordingOpener
	sched   *viewer.Scheduler
}

func newFixture(t *testing.T, mobile bool) *fixture {
	t.Helper()
	f := &fixture{
		host:    &tu.RecordingHost{URL: "/uploads/aurora.jpg"},
		surface: &tu.RecordingSurface{W: 400},
		opener:  &tu.RecordingOpener{},
		sched:   viewer.NewScheduler(epoch),
	}
	f.c = viewer.New(viewer.Options{
		Host:      f.host,
		Surface:   f.surface,
		Opener:    f.opener,
		Scheduler: f.sched,
		Logger:    log.New(io.Discard),
		Mobile:    mobile,
	})
	f.host.OnClose = func() { f.c.SetActive(false) }
	f.c.SetActive(true)
	f.c.Frame()
	return f
}

func (f *fixture) at(d time.Duration) {
	f.c.Tick(epoch.Add(d))
}

func (f *fixture) wheel(x, y, dy float64, mods input.Modifiers) bool {
	return f.c.Wheel(input.WheelEvent{Pos: input.Point{X: x, Y: y}, DeltaY: dy, Mods: mods})
}

func TestControllerActivation(t *testing.T) {
	t.Run("activation resets transform and locks scroll", func(t *testing.T) {
		f := newFixture(t, false)
		for range 5 {
			f.wheel(100, 100, -1, input.ModCtrl)
		}

		f.c.SetActive(false)
		f.c.SetActive(true)
		f.c.Frame()

		if got := f.surface.Last().Transform; got != viewer.Identity() {
			t.Errorf("expected identity after reactivation, got %v", got)
		}
		if !f.surface.ScrollLocked {
			t.Error("scroll should be locked while active")
		}
	})

	t.Run("repeated activation does not stack handlers", func(t *testing.T) {
		f := newFixture(t, false)
		f.c.SetActive(true)
		f.c.SetActive(false)
		f.c.SetActive(true)
		f.c.SetActive(true)

		f.c.Click(input.ClickEvent{Target: input.TargetNext})
		f.c.Click(input.ClickEvent{Target: input.TargetDetails})
		f.c.Click(input.ClickEvent{Target: input.TargetDelete})

		if f.host.Next != 1 || f.host.Details != 1 || f.host.Deleted != 1 {
			t.Errorf("expected each handler once, got next=%d details=%d deleted=%d", f.host.Next, f.host.Details, f.host.Deleted)
		}
	})

	t.Run("inactive viewer ignores input", func(t *testing.T) {
		f := newFixture(t, false)
		f.c.SetActive(false)

		if f.wheel(0, 0, -1, input.ModCtrl) {
			t.Error("wheel should not be handled while inactive")
		}
		if f.c.Key(input.KeyEvent{Key: input.KeyEscape}) {
			t.Error("escape should not be handled while inactive")
		}
		f.c.Click(input.ClickEvent{Target: input.TargetPrev})
		if f.host.Closed != 0 || f.host.Prev != 0 {
			t.Error("host should not be called while inactive")
		}
	})
}

func TestControllerWheel(t *testing.T) {
	t.Run("scale stays within bounds", func(t *testing.T) {
		f := newFixture(t, false)
		rng := rand.New(rand.NewSource(7))

		for i := range 2000 {
			dir := -1.0
			// long runs in one direction push against both bounds
			if (i/150)%2 == 1 || rng.Intn(10) == 0 {
				dir = 1
			}
			mods := input.ModCtrl
			if rng.Intn(2) == 0 {
				mods = input.ModMeta
			}
			f.wheel(rng.Float64()*800, rng.Float64()*600, dir, mods)

			if s := f.c.Transform().Scale; s < 0.5 || s > 5.0 {
				t.Fatalf("scale %v out of bounds after %d events", s, i+1)
			}
		}
	})

	t.Run("reaches but never passes the bounds", func(t *testing.T) {
		f := newFixture(t, false)
		for range 100 {
			f.wheel(10, 10, -1, input.ModCtrl)
		}
		if s := f.c.Transform().Scale; s != 5.0 {
			t.Errorf("expected scale 5.0, got %v", s)
		}
		for range 100 {
			f.wheel(10, 10, 1, input.ModCtrl)
		}
		if s := f.c.Transform().Scale; s != 0.5 {
			t.Errorf("expected scale 0.5, got %v", s)
		}
	})

	t.Run("zoom in then out restores translation", func(t *testing.T) {
		f := newFixture(t, false)
		for range 3 {
			f.wheel(320, 90, -1, input.ModCtrl)
		}
		before := f.c.Transform()

		for _, n := range []int{1, 4, 9} {
			for range n {
				f.wheel(150, 410, -1, input.ModCtrl)
			}
			for range n {
				f.wheel(150, 410, 1, input.ModCtrl)
			}

			after := f.c.Transform()
			if math.Abs(after.X-before.X) > 1e-9 || math.Abs(after.Y-before.Y) > 1e-9 || after.Scale != before.Scale {
				t.Errorf("after %d steps in and out: expected %v, got %v", n, before, after)
			}
		}
	})

	t.Run("unmodified wheel is not handled", func(t *testing.T) {
		f := newFixture(t, false)
		for _, mods := range []input.Modifiers{0, input.ModShift, input.ModAlt} {
			if f.wheel(10, 10, -1, mods) {
				t.Errorf("wheel with %v should scroll the page", mods)
			}
		}
		if f.c.Transform() != viewer.Identity() {
			t.Errorf("transform changed: %v", f.c.Transform())
		}
	})

	t.Run("transforms reach the surface only on frames", func(t *testing.T) {
		f := newFixture(t, false)
		applied := len(f.surface.Applied)

		for range 3 {
			f.wheel(0, 0, -1, input.ModCtrl)
		}
		if len(f.surface.Applied) != applied {
			t.Fatal("wheel should not apply before the frame")
		}

		f.c.Frame()
		if len(f.surface.Applied) != applied+1 {
			t.Fatalf("expected one collapsed apply, got %d", len(f.surface.Applied)-applied)
		}
		if got := f.surface.Last(); got.Transform.Scale != 1.3 || got.Duration != 0 {
			t.Errorf("expected instant scale 1.3, got %+v", got)
		}
	})

	t.Run("mobile ignores zoom", func(t *testing.T) {
		f := newFixture(t, true)
		if f.wheel(10, 10, -1, input.ModCtrl) {
			t.Error("mobile viewer should not zoom")
		}
	})
}

func TestControllerDrag(t *testing.T) {
	down := func(x, y float64) input.PointerEvent {
		return input.PointerEvent{Pos: input.Point{X: x, Y: y}, Button: input.ButtonPrimary, Target: input.TargetImage}
	}

	t.Run("no pan at identity scale", func(t *testing.T) {
		f := newFixture(t, false)
		if f.c.PointerDown(down(100, 100)) {
			t.Error("drag should not start at scale 1")
		}
	})

	t.Run("pan follows the cursor", func(t *testing.T) {
		f := newFixture(t, false)
		for range 5 {
			f.wheel(0, 0, -1, input.ModCtrl)
		}
		origin := f.c.Transform()

		if !f.c.PointerDown(down(100, 100)) {
			t.Fatal("drag should start when zoomed in")
		}
		if f.c.State() != viewer.StateDragging {
			t.Fatalf("expected dragging, got %v", f.c.State())
		}

		f.c.PointerMove(down(110, 95))
		f.c.PointerMove(down(130, 90))
		got := f.c.Transform()
		if got.X != origin.X+30 || got.Y != origin.Y-10 || got.Scale != origin.Scale {
			t.Errorf("expected %v moved by (30, -10), got %v", origin, got)
		}

		f.c.PointerUp(down(130, 90))
		if f.c.State() != viewer.StateIdle {
			t.Errorf("expected idle after release, got %v", f.c.State())
		}
	})

	t.Run("secondary button does not pan", func(t *testing.T) {
		f := newFixture(t, false)
		for range 5 {
			f.wheel(0, 0, -1, input.ModCtrl)
		}
		ev := down(10, 10)
		ev.Button = input.ButtonSecondary
		if f.c.PointerDown(ev) {
			t.Error("secondary button should not pan")
		}
	})

	t.Run("click after a drag is swallowed once", func(t *testing.T) {
		f := newFixture(t, false)
		for range 5 {
			f.wheel(0, 0, -1, input.ModCtrl)
		}
		f.c.PointerDown(down(100, 100))
		f.c.PointerMove(down(140, 100))
		f.c.PointerUp(down(140, 100))

		f.c.Click(input.ClickEvent{Target: input.TargetImage})
		if len(f.opener.URLs) != 0 {
			t.Fatal("click ending a drag should not open the image")
		}

		f.c.Click(input.ClickEvent{Target: input.TargetImage})
		if len(f.opener.URLs) != 1 {
			t.Errorf("next plain click should open the image, got %v", f.opener.URLs)
		}
	})
}

func TestControllerClickAndKeys(t *testing.T) {
	t.Run("plain image click opens in a new context", func(t *testing.T) {
		f := newFixture(t, false)
		f.c.Click(input.ClickEvent{Target: input.TargetImage})
		if len(f.opener.URLs) != 1 || f.opener.URLs[0] != "/uploads/aurora.jpg" {
			t.Errorf("expected image to open, got %v", f.opener.URLs)
		}
	})

	t.Run("backdrop and close button close through the host", func(t *testing.T) {
		for _, target := range []input.Target{input.TargetBackdrop, input.TargetClose} {
			t.Run(target.String(), func(t *testing.T) {
				f := newFixture(t, false)
				f.c.Click(input.ClickEvent{Target: target})

				if f.host.Closed != 1 {
					t.Errorf("expected host close, got %d", f.host.Closed)
				}
				if f.c.Active() || f.surface.ScrollLocked {
					t.Error("viewer should be inactive with scroll restored")
				}
			})
		}
	})

	t.Run("close falls back to local deactivation", func(t *testing.T) {
		host := &tu.NavigatorOnly{URL: "/uploads/x.png"}
		surface := &tu.RecordingSurface{}
		c := viewer.New(viewer.Options{Host: host, Surface: surface, Logger: log.New(io.Discard), Scheduler: viewer.NewScheduler(epoch)})
		c.SetActive(true)

		c.Click(input.ClickEvent{Target: input.TargetBackdrop})
		if c.Active() {
			t.Error("viewer should deactivate without a host closer")
		}
		if surface.ScrollLocked {
			t.Error("page scroll should be restored")
		}
	})

	t.Run("no host is tolerated", func(t *testing.T) {
		c := viewer.New(viewer.Options{Logger: log.New(io.Discard)})
		c.SetActive(true)

		c.Click(input.ClickEvent{Target: input.TargetNext})
		c.Click(input.ClickEvent{Target: input.TargetDetails})
		c.Click(input.ClickEvent{Target: input.TargetImage})
		c.Key(input.KeyEvent{Key: input.KeyEscape})

		if c.Active() {
			t.Error("escape should close the viewer even without a host")
		}
	})

	t.Run("escape closes only while active", func(t *testing.T) {
		f := newFixture(t, false)
		if !f.c.Key(input.KeyEvent{Key: input.KeyEscape}) {
			t.Fatal("escape should be handled while active")
		}
		if f.host.Closed != 1 {
			t.Errorf("expected one close, got %d", f.host.Closed)
		}
		f.c.Key(input.KeyEvent{Key: input.KeyEscape})
		if f.host.Closed != 1 {
			t.Errorf("escape while inactive should do nothing, got %d closes", f.host.Closed)
		}
	})

	t.Run("arrow keys navigate and reset zoom", func(t *testing.T) {
		f := newFixture(t, false)
		f.wheel(50, 50, -1, input.ModCtrl)

		f.c.Key(input.KeyEvent{Key: input.KeyRight})
		f.c.Key(input.KeyEvent{Key: input.KeyLeft})
		f.c.Key(input.KeyEvent{Key: input.KeyLeft})

		if f.host.Next != 1 || f.host.Prev != 2 {
			t.Errorf("expected next=1 prev=2, got next=%d prev=%d", f.host.Next, f.host.Prev)
		}
		if f.c.Transform() != viewer.Identity() {
			t.Errorf("navigation should reset the transform, got %v", f.c.Transform())
		}
		if f.c.Key(input.KeyEvent{Key: input.KeyOther}) {
			t.Error("unrelated keys should not be handled")
		}
	})
}
