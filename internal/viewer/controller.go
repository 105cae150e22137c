package viewer

import (
	"math"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/wallview/internal/input"
	"github.com/desertthunder/wallview/internal/shared"
)

// State is the phase of the viewer's gesture and transition state machine.
type State int

const (
	StateIdle State = iota
	StateDragging
	StateAnimatingOut
	StateAnimatingIn
)

func (s State) String() string {
	switch s {
	case StateDragging:
		return "dragging"
	case StateAnimatingOut:
		return "animating-out"
	case StateAnimatingIn:
		return "animating-in"
	default:
		return "idle"
	}
}

// Animating reports whether a transition owns the image.
func (s State) Animating() bool {
	return s == StateAnimatingOut || s == StateAnimatingIn
}

// Options configures a [Controller]. Nil collaborators are replaced with no-op defaults.
type Options struct {
	// Host is the owning gallery. Capabilities are discovered by type assertion.
	Host      any
	Surface   Surface
	Opener    Opener
	Scheduler *Scheduler
	Logger    *log.Logger
	Config    *Config
	// Mobile selects the touch contract: scale is fixed at identity, taps toggle controls.
	Mobile bool
}

// Controller mediates between input events, the render surface and the gallery host.
type Controller struct {
	host    any
	surface Surface
	opener  Opener
	sched   *Scheduler
	logger  *log.Logger
	cfg     Config
	mobile  bool

	active    bool
	state     State
	transform Transform
	frames    []frame
	bindings  map[input.Target]func()
	tasks     []*Task

	controlsVisible bool

	drag  dragState
	swipe swipeState
	tap   tapState
}

type frame struct {
	t Transform
	d time.Duration
}

type dragState struct {
	start    input.Point
	origin   Transform
	moved    bool
	suppress bool
}

// New creates a Controller from opts.
func New(opts Options) *Controller {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Host == nil {
		opts.Host = NopHost{Logger: opts.Logger}
	}
	if opts.Surface == nil {
		opts.Surface = nopSurface{}
	}
	if opts.Opener == nil {
		opts.Opener = nopOpener{}
	}
	if opts.Scheduler == nil {
		opts.Scheduler = NewScheduler(time.Now())
	}
	cfg := DefaultConfig()
	if opts.Config != nil {
		cfg = *opts.Config
	}

	return &Controller{
		host:      opts.Host,
		surface:   opts.Surface,
		opener:    opts.Opener,
		sched:     opts.Scheduler,
		logger:    shared.WithLogger(opts.Logger, "component", "viewer"),
		cfg:       cfg,
		mobile:    opts.Mobile,
		transform: Identity(),
	}
}

// Active reports whether the viewer overlay is shown.
func (c *Controller) Active() bool { return c.active }

// State returns the current state machine phase.
func (c *Controller) State() State { return c.state }

// Transform returns the transform most recently computed, which may not have been flushed yet.
func (c *Controller) Transform() Transform { return c.transform }

// ControlsVisible reports whether the mobile control group is shown.
func (c *Controller) ControlsVisible() bool { return c.controlsVisible }

// Scheduler exposes the scheduler driving delayed steps.
func (c *Controller) Scheduler() *Scheduler { return c.sched }

// SetActive shows or hides the viewer.
//
// Becoming active resets the transform to identity and rebinds the control
// handlers; a repeated activation does nothing. Becoming inactive cancels every
// pending step, drops gesture state and releases the page scroll lock.
func (c *Controller) SetActive(active bool) {
	if active == c.active {
		return
	}
	c.active = active

	if !active {
		c.cancelAll()
		c.state = StateIdle
		c.drag = dragState{}
		c.swipe = swipeState{}
		c.tap = tapState{}
		c.bindings = nil
		c.frames = nil
		c.surface.SetScrollLocked(false)
		c.logger.Debug("viewer deactivated")
		return
	}

	c.cancelAll()
	c.state = StateIdle
	c.transform = Identity()
	c.push(c.transform, 0)
	c.bind()
	c.surface.SetScrollLocked(true)

	if c.mobile {
		c.setControls(true)
		c.after(c.cfg.ControlsHideDelay, func() { c.setControls(false) })
	}
	c.logger.Debug("viewer activated", "mobile", c.mobile)
}

// bind replaces the control handler table, so rebinding never stacks handlers.
func (c *Controller) bind() {
	c.bindings = map[input.Target]func(){
		input.TargetClose:   c.Close,
		input.TargetPrev:    c.Prev,
		input.TargetNext:    c.Next,
		input.TargetDetails: c.details,
		input.TargetDelete:  c.delete,
	}
}

// Tick advances the scheduler to now and flushes pending transforms.
func (c *Controller) Tick(now time.Time) {
	c.sched.Advance(now)
	c.Frame()
}

// Frame pushes transforms computed since the previous frame to the surface, in order.
func (c *Controller) Frame() {
	frames := c.frames
	c.frames = nil
	for _, f := range frames {
		c.surface.Apply(f.t, f.d)
	}
}

// push queues t for the next frame. Consecutive instant transforms collapse into the latest.
func (c *Controller) push(t Transform, d time.Duration) {
	if n := len(c.frames); n > 0 && d == 0 && c.frames[n-1].d == 0 {
		c.frames[n-1].t = t
		return
	}
	c.frames = append(c.frames, frame{t: t, d: d})
}

func (c *Controller) after(d time.Duration, fn func()) *Task {
	return c.track(c.sched.After(d, fn))
}

// at schedules fn at an absolute time, typically an input event's time stamp plus a delay.
func (c *Controller) at(due time.Time, fn func()) *Task {
	return c.track(c.sched.At(due, fn))
}

func (c *Controller) track(t *Task) *Task {
	live := c.tasks[:0]
	for _, existing := range c.tasks {
		if existing.Pending() {
			live = append(live, existing)
		}
	}
	c.tasks = append(live, t)
	return t
}

func (c *Controller) cancelAll() {
	for _, t := range c.tasks {
		t.Cancel()
	}
	c.tasks = nil
}

// Wheel zooms about the cursor while Ctrl or Meta is held.
// It reports false, leaving the page to scroll, for unmodified wheels and on mobile.
func (c *Controller) Wheel(ev input.WheelEvent) bool {
	if !c.active || c.mobile || !ev.Mods.Command() || ev.DeltaY == 0 {
		return false
	}
	if c.state.Animating() {
		return true
	}

	steps := 1.0
	if ev.DeltaY > 0 {
		steps = -1
	}
	c.transform = c.transform.ZoomAt(ev.Pos, steps, c.cfg.ZoomStep, c.cfg.MinScale, c.cfg.MaxScale)
	c.push(c.transform, 0)
	return true
}

// PointerDown starts a pan when the primary button is pressed on a zoomed-in image.
func (c *Controller) PointerDown(ev input.PointerEvent) bool {
	if !c.active || c.mobile || ev.Button != input.ButtonPrimary || ev.Target != input.TargetImage {
		return false
	}
	if c.transform.Scale <= 1 || c.state != StateIdle {
		return false
	}

	c.state = StateDragging
	c.drag = dragState{start: ev.Pos, origin: c.transform}
	return true
}

// PointerMove follows the cursor while panning.
func (c *Controller) PointerMove(ev input.PointerEvent) bool {
	if c.state != StateDragging || c.mobile {
		return false
	}

	delta := ev.Pos.Sub(c.drag.start)
	if delta.X != 0 || delta.Y != 0 {
		c.drag.moved = true
	}
	c.transform = c.drag.origin.Translate(delta)
	c.push(c.transform, 0)
	return true
}

// PointerUp ends a pan. A pan that moved swallows the click that follows it.
func (c *Controller) PointerUp(ev input.PointerEvent) bool {
	if c.state != StateDragging || c.mobile {
		return false
	}

	c.state = StateIdle
	c.drag.suppress = c.drag.moved
	c.drag.moved = false
	return true
}

// Click handles a completed click inside the overlay.
//
// A plain image click opens the image in a new context, the backdrop and close
// button close the viewer, and the remaining controls call their bound handlers.
// On mobile, image clicks are left to the tap recognizer.
func (c *Controller) Click(ev input.ClickEvent) {
	if !c.active {
		return
	}

	switch ev.Target {
	case input.TargetImage:
		if c.mobile {
			return
		}
		if c.drag.suppress {
			c.drag.suppress = false
			return
		}
		c.Open()
	case input.TargetBackdrop:
		c.Close()
	default:
		if fn, ok := c.bindings[ev.Target]; ok {
			fn()
		}
	}
}

// Key handles Escape (close) and the arrow keys (navigate) while active.
func (c *Controller) Key(ev input.KeyEvent) bool {
	if !c.active {
		return false
	}

	switch ev.Key {
	case input.KeyEscape:
		c.Close()
	case input.KeyLeft:
		c.Prev()
	case input.KeyRight:
		c.Next()
	default:
		return false
	}
	return true
}

// Close deactivates the viewer through the host, or locally when the host cannot close it.
func (c *Controller) Close() {
	if !c.active {
		return
	}
	if closer, ok := c.host.(Closer); ok {
		closer.CloseImageViewer()
		return
	}
	c.logger.Debug("host cannot close viewer, deactivating locally")
	c.SetActive(false)
}

// Open opens the current image in a new browsing context.
func (c *Controller) Open() {
	src, ok := c.host.(ImageSource)
	if !ok {
		c.logger.Debug("host does not expose the current image")
		return
	}
	url := src.CurrentImageURL()
	if url == "" {
		c.logger.Debug("no current image to open")
		return
	}
	c.opener.Open(url)
}

// Prev shows the previous image. Ignored while a transition is running.
func (c *Controller) Prev() { c.navigate(-1) }

// Next shows the next image. Ignored while a transition is running.
func (c *Controller) Next() { c.navigate(1) }

func (c *Controller) navigate(dir int) {
	if c.state.Animating() {
		return
	}
	nav, ok := c.host.(Navigator)
	if !ok {
		c.logger.Debug("host does not support navigation")
		return
	}

	// A zoomed image belongs to the old picture.
	c.transform = Identity()
	c.push(c.transform, 0)
	c.drag = dragState{}
	c.state = StateIdle

	if dir < 0 {
		nav.ViewPrevImage()
	} else {
		nav.ViewNextImage()
	}
}

func (c *Controller) details() {
	if d, ok := c.host.(Detailer); ok {
		d.ShowImageDetails()
		return
	}
	c.logger.Debug("host does not support image details")
}

func (c *Controller) delete() {
	if d, ok := c.host.(Deleter); ok {
		d.DeleteCurrentImage()
		return
	}
	c.logger.Debug("host does not support deletion")
}

func (c *Controller) setControls(visible bool) {
	c.controlsVisible = visible
	c.surface.SetControlsVisible(visible)
}

func (c *Controller) offscreen() float64 {
	if w := c.surface.Width(); w > 0 {
		return w
	}
	return math.Max(c.cfg.SwipeDistance*10, 1000)
}
