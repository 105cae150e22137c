package gui

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/wallview/internal/debug"
	"github.com/desertthunder/wallview/internal/formatter"
	"github.com/desertthunder/wallview/internal/gallery"
	"github.com/desertthunder/wallview/internal/gui/stage"
	"github.com/desertthunder/wallview/internal/imaging"
	"github.com/desertthunder/wallview/internal/input"
	"github.com/desertthunder/wallview/internal/models"
	"github.com/desertthunder/wallview/internal/shared"
	"github.com/desertthunder/wallview/internal/viewer"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	defaultWidth  = 1280
	defaultHeight = 800
	debugRows     = 12
	lineHeight    = 16
)

var (
	backdrop   = color.RGBA{R: 0x10, G: 0x10, B: 0x10, A: 0xFF}
	buttonFill = color.RGBA{R: 0x30, G: 0x30, B: 0x30, A: 0xE0}
)

// Options configures a [Window].
type Options struct {
	Store    gallery.Store
	Category string
	Config   *shared.Config
	// Mobile switches the viewer to the touch contract: swipes navigate and taps toggle the controls.
	Mobile bool
	Opener viewer.Opener // Defaults to the system browser
	Logger *log.Logger
}

type loadResult struct {
	id  string
	img image.Image
	err error
}

// Window is a desktop image viewer over one category. It implements [ebiten.Game].
//
// Closing the viewer, by Escape, the close button or a backdrop click, ends the game loop.
type Window struct {
	gallery *gallery.Gallery
	ctrl    *viewer.Controller
	surface *stage.Surface
	input   *stage.Dispatcher
	debug   *debug.Panel
	logger  *log.Logger
	mobile  bool

	width, height float64

	jobs    chan string
	results chan loadResult
	loading string

	pictureID string
	picture   image.Image
	texture   *ebiten.Image
	stale     *ebiten.Image
	title     string
	done      <-chan struct{}
	err       error
}

// New loads the first page of the category and opens the viewer on its first image.
func New(opts Options) (*Window, error) {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Opener == nil {
		opts.Opener = shared.BrowserOpener{Logger: opts.Logger}
	}
	cfg := opts.Config
	logger := shared.WithLogger(opts.Logger, "component", "gui")

	sort, err := gallery.ParseSort(cfg.Gallery.Sort)
	if err != nil {
		return nil, err
	}
	g := gallery.New(opts.Store, gallery.Options{
		Category: opts.Category,
		PerPage:  cfg.Gallery.PerPage,
		Sort:     sort,
		Logger:   opts.Logger,
	})
	if err := g.Load(); err != nil {
		return nil, fmt.Errorf("loading %s: %w", opts.Category, err)
	}
	if g.Len() == 0 {
		return nil, fmt.Errorf("%w: category %q has no images", shared.ErrImageNotFound, opts.Category)
	}

	surface := stage.NewSurface(defaultWidth)
	vcfg := viewer.ConfigFrom(cfg.Viewer)
	ctrl := viewer.New(viewer.Options{
		Host:      g,
		Surface:   surface,
		Opener:    opts.Opener,
		Scheduler: viewer.NewScheduler(time.Now()),
		Logger:    opts.Logger,
		Config:    &vcfg,
		Mobile:    opts.Mobile,
	})
	g.Attach(ctrl)

	w := &Window{
		gallery: g,
		ctrl:    ctrl,
		surface: surface,
		debug:   debug.New(debug.Options{Logger: logger}),
		logger:  logger,
		mobile:  opts.Mobile,
		width:   defaultWidth,
		height:  defaultHeight,
		jobs:    make(chan string, 4),
		results: make(chan loadResult, 4),
	}
	w.input = stage.NewDispatcher(ctrl, w.debug.Addf)

	g.Select(0)
	ctrl.SetActive(true)
	ctrl.Frame()
	w.debug.Addf("category: %s", opts.Category)
	w.debug.Snapshot(g)
	return w, nil
}

// Run opens the window and blocks until the viewer closes or ctx is cancelled.
func (w *Window) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	w.done = ctx.Done()
	go w.load(ctx)

	ebiten.SetWindowSize(defaultWidth, defaultHeight)
	ebiten.SetWindowTitle("wallview")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	w.logger.Info("opening viewer", "category", w.gallery.Category(), "images", w.gallery.Len(), "mobile", w.mobile)
	if err := ebiten.RunGame(w); err != nil {
		return err
	}
	return w.err
}

// load decodes requested images off the game loop.
func (w *Window) load(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case id := <-w.jobs:
			res := loadResult{id: id}
			path, _, err := w.gallery.Store().File(id)
			if err == nil {
				res.img, err = imaging.Decode(path)
			}
			res.err = err

			select {
			case w.results <- res:
			case <-ctx.Done():
				return
			}
		}
	}
}

// Update implements [ebiten.Game].
func (w *Window) Update() error {
	if w.stale != nil {
		w.stale.Deallocate()
		w.stale = nil
	}
	return w.step(w.poll(), pollKeys())
}

// step handles one frame of input. It makes no ebiten calls beyond those the keys ask for.
func (w *Window) step(in stage.Frame, k keys) error {
	w.receive()

	select {
	case <-w.done:
		return ebiten.Termination
	default:
	}
	if k.quit {
		return ebiten.Termination
	}
	if k.fullscreen {
		ebiten.SetFullscreen(!ebiten.IsFullscreen())
	}
	if k.debug && w.debug.Toggle() {
		w.debug.Snapshot(w.gallery)
	}
	if k.clear {
		w.debug.Clear()
	}

	l := w.layout()
	t := w.surface.Current()
	w.input.Handle(in, func(p input.Point) input.Target { return l.Hit(p, t) }, l.Placed(t).Center())

	w.ctrl.Tick(in.Now)
	w.surface.Step(in.Now)

	if !w.ctrl.Active() {
		w.logger.Info("viewer closed")
		return ebiten.Termination
	}
	w.request()
	return nil
}

// receive takes a finished decode, keeping it only if it is still the current image.
func (w *Window) receive() {
	select {
	case res := <-w.results:
		if res.id != w.loading {
			return
		}
		w.loading = ""
		if res.err != nil {
			w.err = res.err
			w.logger.Error("failed to decode image", "id", res.id, "error", res.err)
			w.debug.Addf("decode failed: %v", res.err)
			return
		}
		w.pictureID = res.id
		w.picture = res.img
		w.stale, w.texture = w.texture, nil
		w.debug.Addf("loaded %s", res.id)
	default:
	}
}

// request queues a decode when the current image changed.
func (w *Window) request() {
	img, ok := w.gallery.Current()
	if !ok || img.ID == w.pictureID || img.ID == w.loading {
		return
	}
	select {
	case w.jobs <- img.ID:
		w.loading = img.ID
	default:
	}
}

func (w *Window) layout() stage.Layout {
	l := stage.Layout{Width: w.width, Height: w.height, ShowControls: !w.mobile || w.surface.ControlsVisible()}
	if img, ok := w.gallery.Current(); ok && img.ID == w.pictureID && w.picture != nil {
		b := w.picture.Bounds()
		l.ImageW, l.ImageH = float64(b.Dx()), float64(b.Dy())
	}
	return l
}

// keys are the window's own shortcuts, handled before the viewer sees the frame.
type keys struct {
	debug, clear     bool
	fullscreen, quit bool
}

func pollKeys() keys {
	return keys{
		debug:      inpututil.IsKeyJustPressed(ebiten.KeyD),
		clear:      inpututil.IsKeyJustPressed(ebiten.KeyX),
		fullscreen: inpututil.IsKeyJustPressed(ebiten.KeyF11),
		quit:       inpututil.IsKeyJustPressed(ebiten.KeyQ),
	}
}

// poll gathers this frame's viewer keys, mouse and touch state.
func (w *Window) poll() stage.Frame {
	_, wheelY := ebiten.Wheel()
	mx, my := ebiten.CursorPosition()

	f := stage.Frame{
		Now:      time.Now(),
		Mods:     modifiers(),
		Cursor:   input.Point{X: float64(mx), Y: float64(my)},
		WheelY:   -wheelY,
		Pressed:  inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft),
		Released: inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft),
		Escape:   inpututil.IsKeyJustPressed(ebiten.KeyEscape),
		Left:     inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft),
		Right:    inpututil.IsKeyJustPressed(ebiten.KeyArrowRight),
		ZoomIn:   inpututil.IsKeyJustPressed(ebiten.KeyEqual) || inpututil.IsKeyJustPressed(ebiten.KeyNumpadAdd),
		ZoomOut:  inpututil.IsKeyJustPressed(ebiten.KeyMinus) || inpututil.IsKeyJustPressed(ebiten.KeyNumpadSubtract),
		Open:     inpututil.IsKeyJustPressed(ebiten.KeyO),
		Details:  inpututil.IsKeyJustPressed(ebiten.KeyI),
		Remove:   inpututil.IsKeyJustPressed(ebiten.KeyDelete),
	}

	for _, id := range inpututil.AppendJustPressedTouchIDs(nil) {
		f.TouchStarts = append(f.TouchStarts, stage.Touch{ID: int(id), Pos: point(ebiten.TouchPosition(id))})
	}
	for _, id := range ebiten.AppendTouchIDs(nil) {
		if inpututil.TouchPressDuration(id) <= 1 {
			continue
		}
		x, y := ebiten.TouchPosition(id)
		if px, py := inpututil.TouchPositionInPreviousTick(id); x == px && y == py {
			continue
		}
		f.TouchMoves = append(f.TouchMoves, stage.Touch{ID: int(id), Pos: point(x, y)})
	}
	// A released touch no longer reports a current position.
	for _, id := range inpututil.AppendJustReleasedTouchIDs(nil) {
		f.TouchEnds = append(f.TouchEnds, stage.Touch{ID: int(id), Pos: point(inpututil.TouchPositionInPreviousTick(id))})
	}
	return f
}

func point(x, y int) input.Point {
	return input.Point{X: float64(x), Y: float64(y)}
}

func modifiers() input.Modifiers {
	var mods input.Modifiers
	if ebiten.IsKeyPressed(ebiten.KeyShift) {
		mods |= input.ModShift
	}
	if ebiten.IsKeyPressed(ebiten.KeyControl) {
		mods |= input.ModCtrl
	}
	if ebiten.IsKeyPressed(ebiten.KeyAlt) {
		mods |= input.ModAlt
	}
	if ebiten.IsKeyPressed(ebiten.KeyMeta) {
		mods |= input.ModMeta
	}
	return mods
}

// Draw implements [ebiten.Game].
func (w *Window) Draw(screen *ebiten.Image) {
	screen.Fill(backdrop)
	l := w.layout()
	img, ok := w.gallery.Current()
	if !ok {
		return
	}

	if title := caption(img, w.gallery.Index(), w.gallery.Len()); title != w.title {
		ebiten.SetWindowTitle("wallview - " + title)
		w.title = title
	}

	if l.ImageW > 0 {
		if w.texture == nil {
			w.texture = ebiten.NewImageFromImage(w.picture)
		}
		t := w.surface.Current()
		base := l.Base()
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Scale(l.Fit(), l.Fit())
		op.GeoM.Translate(base.X, base.Y)
		op.GeoM.Scale(t.Scale, t.Scale)
		op.GeoM.Translate(t.X, t.Y)
		op.Filter = ebiten.FilterLinear
		screen.DrawImage(w.texture, op)
	} else {
		ebitenutil.DebugPrintAt(screen, "Loading: "+img.Filename, 8, int(w.height/2))
	}

	lines := []string{caption(img, w.gallery.Index(), w.gallery.Len())}
	if d := w.gallery.Detail(); d != nil {
		lines = append(lines, detailLine(d))
	}
	if err := w.gallery.Err(); err != nil {
		lines = append(lines, "error: "+err.Error())
	}
	ebitenutil.DebugPrintAt(screen, strings.Join(lines, "\n"), 8, 8)

	if l.ShowControls {
		for i, r := range l.Buttons() {
			vector.DrawFilledRect(screen, float32(r.X), float32(r.Y), float32(r.W), float32(r.H), buttonFill, false)
			ebitenutil.DebugPrintAt(screen, stage.Controls[i].Label, int(r.X)+8, int(r.Y)+6)
		}
	}

	if w.debug.Visible() {
		shown := w.debug.Lines()
		if len(shown) > debugRows {
			shown = shown[len(shown)-debugRows:]
		}
		y := int(w.height) - stage.BarHeight - (len(shown)+1)*lineHeight
		ebitenutil.DebugPrintAt(screen, strings.Join(append(shown, "D hide | X clear"), "\n"), 8, y)
	}
}

// Layout implements [ebiten.Game] with a 1:1 pixel mapping.
func (w *Window) Layout(outsideWidth, outsideHeight int) (int, int) {
	w.width, w.height = float64(outsideWidth), float64(outsideHeight)
	w.surface.Resize(w.width)
	return outsideWidth, outsideHeight
}

func caption(img models.Image, index, total int) string {
	return fmt.Sprintf("%s (%d/%d)", img.Filename, index+1, total)
}

// detailLine avoids non-ASCII glyphs, which the debug font cannot draw.
func detailLine(d *models.ImageDetail) string {
	parts := []string{fmt.Sprintf("%dx%d", d.Width, d.Height), formatter.FormatSize(d.Size), d.UploadTime}
	if d.Camera != "" {
		parts = append(parts, d.Camera)
	}
	if d.TakenAt != "" {
		parts = append(parts, "taken "+d.TakenAt)
	}
	return strings.Join(parts, " | ")
}
