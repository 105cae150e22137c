package viewer_test

import (
	"testing"
	"time"

	"github.com/desertthunder/wallview/internal/input"
	"github.com/desertthunder/wallview/internal/viewer"
)

func touchAt(id int, x, y float64, d time.Duration) input.TouchEvent {
	return input.TouchEvent{ID: id, Pos: input.Point{X: x, Y: y}, Time: epoch.Add(d), Target: input.TargetImage}
}

// swipe drags one finger from (200, 300) by (dx, dy) over dur, sampling the midpoint.
func (f *fixture) swipe(dx, dy float64, dur time.Duration) {
	f.c.TouchStart(touchAt(1, 200, 300, 0))
	f.c.TouchMove(touchAt(1, 200+dx/2, 300+dy/2, dur/2))
	f.c.TouchEnd(touchAt(1, 200+dx, 300+dy, dur))
}

func (f *fixture) tap(at time.Duration) {
	f.c.TouchStart(touchAt(1, 50, 50, at))
	f.c.TouchEnd(touchAt(1, 50, 50, at))
}

func TestSwipeThresholds(t *testing.T) {
	tc := []struct {
		name     string
		dx, dy   float64
		dur      time.Duration
		wantNext int
		wantPrev int
	}{
		{"exactly 80px slowly does not navigate", -80, 0, time.Second, 0, 0},
		{"81px slowly navigates", -81, 0, time.Second, 1, 0},
		{"81px rightwards goes back", 81, 0, time.Second, 0, 1},
		{"fast short flick navigates", 30, 0, 10 * time.Millisecond, 0, 1},
		{"velocity at threshold does not navigate", -30, 0, 60 * time.Millisecond, 0, 0},
		{"zero duration navigates", -40, 0, 0, 1, 0},
		{"zero displacement never navigates", 0, 0, 0, 0, 0},
		{"vertical drag is not a swipe", -100, 60, 50 * time.Millisecond, 0, 0},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, true)
			f.swipe(tt.dx, tt.dy, tt.dur)
			f.at(2 * time.Second)

			if f.host.Next != tt.wantNext || f.host.Prev != tt.wantPrev {
				t.Errorf("expected next=%d prev=%d, got next=%d prev=%d", tt.wantNext, tt.wantPrev, f.host.Next, f.host.Prev)
			}
			if f.c.State() != viewer.StateIdle {
				t.Errorf("expected idle once transitions finish, got %v", f.c.State())
			}
			if f.c.Transform() != viewer.Identity() {
				t.Errorf("expected image recentered, got %v", f.c.Transform())
			}
		})
	}
}

func TestSwipeTracking(t *testing.T) {
	t.Run("horizontal drag follows the finger", func(t *testing.T) {
		f := newFixture(t, true)
		f.c.TouchStart(touchAt(1, 200, 300, 0))
		f.c.TouchMove(touchAt(1, 150, 305, 20*time.Millisecond))
		f.c.Frame()

		if f.c.State() != viewer.StateDragging {
			t.Fatalf("expected dragging, got %v", f.c.State())
		}
		got := f.surface.Last()
		if got.Transform.X != -50 || got.Transform.Y != 0 || got.Duration != 0 {
			t.Errorf("expected instant translateX(-50), got %+v", got)
		}
	})

	t.Run("vertical drag leaves the image alone", func(t *testing.T) {
		f := newFixture(t, true)
		applied := len(f.surface.Applied)
		f.c.TouchStart(touchAt(1, 200, 300, 0))
		f.c.TouchMove(touchAt(1, 210, 360, 20*time.Millisecond))
		f.c.Frame()

		if len(f.surface.Applied) != applied || f.c.State() != viewer.StateIdle {
			t.Error("vertical movement should not engage the swipe")
		}
	})

	t.Run("slow short swipe snaps back", func(t *testing.T) {
		f := newFixture(t, true)
		f.swipe(-60, 0, time.Second)
		f.c.Frame()

		if f.c.State() != viewer.StateAnimatingIn {
			t.Fatalf("expected snap-back animation, got %v", f.c.State())
		}
		if got := f.surface.Last(); got.Transform != viewer.Identity() || got.Duration <= 0 {
			t.Errorf("expected animated return to center, got %+v", got)
		}
	})

	t.Run("second finger is ignored", func(t *testing.T) {
		f := newFixture(t, true)
		f.c.TouchStart(touchAt(1, 200, 300, 0))
		f.c.TouchStart(touchAt(2, 10, 10, 0))
		f.c.TouchEnd(touchAt(2, 300, 10, 10*time.Millisecond))
		f.at(2 * time.Second)

		if f.host.Next != 0 || f.host.Prev != 0 {
			t.Error("touch from a second finger should not navigate")
		}
	})
}

func TestSwipeTransition(t *testing.T) {
	t.Run("phases run in order", func(t *testing.T) {
		f := newFixture(t, true)
		f.swipe(-120, 0, 100*time.Millisecond)
		f.c.Frame()

		if f.c.State() != viewer.StateAnimatingOut {
			t.Fatalf("expected animating-out, got %v", f.c.State())
		}
		if got := f.surface.Last(); got.Transform.X != -400 || got.Duration != 300*time.Millisecond {
			t.Errorf("expected slide off to the left, got %+v", got)
		}

		f.at(399 * time.Millisecond)
		if f.host.Next != 0 {
			t.Fatal("navigation should wait for the exit animation")
		}

		f.at(400 * time.Millisecond)
		if f.host.Next != 1 {
			t.Fatal("navigation should run after the exit animation")
		}
		if f.c.State() != viewer.StateAnimatingOut {
			t.Errorf("expected to wait for the new image, got %v", f.c.State())
		}

		applied := len(f.surface.Applied)
		f.at(450 * time.Millisecond)
		if f.c.State() != viewer.StateAnimatingIn {
			t.Fatalf("expected animating-in, got %v", f.c.State())
		}
		entered := f.surface.Applied[applied:]
		if len(entered) != 2 {
			t.Fatalf("expected pre-position and entry, got %+v", entered)
		}
		if entered[0].Transform.X != 400 || entered[0].Duration != 0 {
			t.Errorf("new image should start off the right edge, got %+v", entered[0])
		}
		if entered[1].Transform != viewer.Identity() || entered[1].Duration != 300*time.Millisecond {
			t.Errorf("new image should slide to center, got %+v", entered[1])
		}

		f.at(750 * time.Millisecond)
		if f.c.State() != viewer.StateIdle {
			t.Errorf("expected idle, got %v", f.c.State())
		}
	})

	t.Run("touches during a transition are ignored", func(t *testing.T) {
		f := newFixture(t, true)
		f.swipe(-120, 0, 100*time.Millisecond)

		f.c.TouchStart(touchAt(3, 200, 300, 150*time.Millisecond))
		f.c.TouchEnd(touchAt(3, 400, 300, 160*time.Millisecond))
		f.at(2 * time.Second)

		if f.host.Next != 1 || f.host.Prev != 0 {
			t.Errorf("expected only the first swipe to navigate, got next=%d prev=%d", f.host.Next, f.host.Prev)
		}
	})

	t.Run("keyboard navigation waits for the transition", func(t *testing.T) {
		f := newFixture(t, true)
		f.swipe(-120, 0, 100*time.Millisecond)
		f.c.Key(input.KeyEvent{Key: input.KeyRight})
		f.at(2 * time.Second)

		if f.host.Next != 1 {
			t.Errorf("expected one navigation, got %d", f.host.Next)
		}
	})

	t.Run("deactivation cancels pending phases", func(t *testing.T) {
		f := newFixture(t, true)
		f.swipe(-120, 0, 100*time.Millisecond)
		f.c.SetActive(false)
		f.at(2 * time.Second)

		if f.host.Next != 0 {
			t.Errorf("navigation should be cancelled, got %d", f.host.Next)
		}
		if f.c.State() != viewer.StateIdle {
			t.Errorf("expected idle, got %v", f.c.State())
		}
	})
}

func TestMobileControls(t *testing.T) {
	t.Run("controls hide after activation", func(t *testing.T) {
		f := newFixture(t, true)
		if !f.surface.ControlsVisible {
			t.Fatal("controls should show on activation")
		}
		f.at(999 * time.Millisecond)
		if !f.c.ControlsVisible() {
			t.Fatal("controls should still be visible")
		}
		f.at(time.Second)
		if f.c.ControlsVisible() || f.surface.ControlsVisible {
			t.Error("controls should hide after one second")
		}
	})

	t.Run("single tap toggles after the double tap window", func(t *testing.T) {
		f := newFixture(t, true)
		f.tap(0)

		f.at(299 * time.Millisecond)
		if !f.c.ControlsVisible() {
			t.Fatal("toggle should wait for the double tap window")
		}
		f.at(300 * time.Millisecond)
		if f.c.ControlsVisible() {
			t.Error("tap should hide the controls")
		}
		if len(f.opener.URLs) != 0 {
			t.Error("single tap should not open the image")
		}
	})

	t.Run("double tap opens instead of toggling", func(t *testing.T) {
		f := newFixture(t, true)
		f.tap(0)
		f.tap(200 * time.Millisecond)
		f.at(600 * time.Millisecond)

		if len(f.opener.URLs) != 1 || f.opener.URLs[0] != "/uploads/aurora.jpg" {
			t.Errorf("expected image to open once, got %v", f.opener.URLs)
		}
		if !f.c.ControlsVisible() {
			t.Error("double tap should not toggle controls")
		}
	})

	t.Run("taps outside the window are separate", func(t *testing.T) {
		f := newFixture(t, true)
		f.tap(0)
		f.at(300 * time.Millisecond)
		f.tap(400 * time.Millisecond)
		f.at(700 * time.Millisecond)

		if len(f.opener.URLs) != 0 {
			t.Errorf("separate taps should not open, got %v", f.opener.URLs)
		}
		if !f.c.ControlsVisible() {
			t.Error("two taps should toggle twice")
		}
	})

	t.Run("late second tap without a frame still toggles", func(t *testing.T) {
		f := newFixture(t, true)
		f.tap(0)
		f.tap(500 * time.Millisecond)

		if len(f.opener.URLs) != 0 {
			t.Error("taps 500ms apart are not a double tap")
		}
		if f.c.ControlsVisible() {
			t.Error("first tap should have toggled when the second arrived")
		}
	})

	t.Run("double tap window follows the taps, not the last frame", func(t *testing.T) {
		f := newFixture(t, true)
		f.tap(900 * time.Millisecond)
		f.at(950 * time.Millisecond)
		f.tap(time.Second)
		f.at(2 * time.Second)

		if len(f.opener.URLs) != 1 {
			t.Errorf("expected double tap to open once, got %v", f.opener.URLs)
		}
	})

	t.Run("swipe phases start at the release", func(t *testing.T) {
		f := newFixture(t, true)
		f.at(100 * time.Millisecond)
		f.c.TouchStart(touchAt(1, 200, 300, time.Second))
		f.c.TouchEnd(touchAt(1, 80, 300, time.Second+100*time.Millisecond))

		f.at(time.Second + 399*time.Millisecond)
		if f.host.Next != 0 {
			t.Fatal("navigation should wait for the exit animation after the release")
		}
		f.at(time.Second + 400*time.Millisecond)
		if f.host.Next != 1 {
			t.Error("navigation should run once the exit animation ends")
		}
	})

	t.Run("desktop clicks on the image are left to taps", func(t *testing.T) {
		f := newFixture(t, true)
		f.c.Click(input.ClickEvent{Target: input.TargetImage})
		if len(f.opener.URLs) != 0 {
			t.Error("mobile image click should not open")
		}
	})
}
