package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/wallview/internal/debug"
	"github.com/desertthunder/wallview/internal/formatter"
	"github.com/desertthunder/wallview/internal/gallery"
	"github.com/desertthunder/wallview/internal/input"
	"github.com/desertthunder/wallview/internal/lazyload"
	"github.com/desertthunder/wallview/internal/models"
	"github.com/desertthunder/wallview/internal/selection"
	"github.com/desertthunder/wallview/internal/shared"
	"github.com/desertthunder/wallview/internal/viewer"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	CategoryListView ViewState = iota
	GalleryView
	SearchView
	ViewerView
)

const (
	frameInterval = 33 * time.Millisecond
	gridCellWidth = 28
	headerLines   = 2
	footerLines   = 2
	debugLines    = 8
)

// Options configures a [Model].
type Options struct {
	Store gallery.Store
	// Category is opened directly instead of showing the category list.
	Category  string
	Config    *shared.Config
	Opener    viewer.Opener      // Defaults to the system browser
	Clipboard func(string) error // Defaults to the system clipboard
	Logger    *log.Logger
}

// Model represents the TUI application state.
type Model struct {
	ctx       context.Context
	view      ViewState
	store     gallery.Store
	gallery   *gallery.Gallery
	viewer    *viewer.Controller
	surface   *Surface
	selection *selection.Set
	loader    *lazyload.Loader
	debug     *debug.Panel
	clipboard func(string) error
	logger    *log.Logger

	categories list.Model
	search     textinput.Model
	help       help.Model
	keys       keyMap

	category   string
	swatches   map[string]string
	generation int
	offset     int
	pressed    input.Target
	ticking    bool
	width      int
	height     int
	status     string
	err        error
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, opts Options) *Model {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Opener == nil {
		opts.Opener = shared.BrowserOpener{Logger: opts.Logger}
	}
	if opts.Clipboard == nil {
		opts.Clipboard = clipboard.WriteAll
	}
	cfg := opts.Config

	sort, err := gallery.ParseSort(cfg.Gallery.Sort)
	if err != nil {
		sort = gallery.SortDesc
	}
	mode, err := gallery.ParseViewMode(cfg.Gallery.ViewMode)
	if err != nil {
		mode = gallery.Waterfall
	}

	g := gallery.New(opts.Store, gallery.Options{
		Category: opts.Category,
		PerPage:  cfg.Gallery.PerPage,
		Sort:     sort,
		ViewMode: mode,
		Logger:   opts.Logger,
	})

	surface := NewSurface()
	vcfg := viewer.ConfigFrom(cfg.Viewer)
	ctrl := viewer.New(viewer.Options{
		Host:      g,
		Surface:   surface,
		Opener:    opts.Opener,
		Scheduler: viewer.NewScheduler(time.Now()),
		Logger:    opts.Logger,
		Config:    &vcfg,
	})
	g.Attach(ctrl)

	ti := textinput.New()
	ti.Placeholder = "Search filenames..."
	ti.CharLimit = 100
	ti.Width = 40

	categories := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	categories.Title = "Categories"

	return &Model{
		ctx:       ctx,
		view:      CategoryListView,
		store:     opts.Store,
		gallery:   g,
		viewer:    ctrl,
		surface:   surface,
		selection: selection.New(opts.Logger),
		loader: lazyload.New(lazyload.Options{
			Workers:   cfg.Gallery.LoadWorkers,
			Rate:      cfg.Gallery.LoadRate,
			ThumbSize: cfg.Gallery.ThumbnailSize,
			Logger:    opts.Logger,
		}),
		debug:      debug.New(debug.Options{Logger: opts.Logger}),
		clipboard:  opts.Clipboard,
		logger:     opts.Logger,
		categories: categories,
		search:     ti,
		help:       help.New(),
		keys:       newKeyMap(),
		category:   opts.Category,
		swatches:   map[string]string{},
	}
}

// Init fetches the category list.
func (m *Model) Init() tea.Cmd {
	return m.fetchCategories()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.surface.resize(msg.Width)
		m.categories.SetSize(msg.Width-4, msg.Height-4)
		return m, m.observe()

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.view {
		case CategoryListView:
			return m.handleCategoryKeys(msg)
		case GalleryView:
			return m.handleGalleryKeys(msg)
		case SearchView:
			return m.handleSearchKeys(msg)
		case ViewerView:
			return m.handleViewerKeys(msg)
		}

	case tea.MouseMsg:
		switch m.view {
		case GalleryView:
			return m.handleGalleryMouse(msg)
		case ViewerView:
			return m.handleViewerMouse(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	if m.view == CategoryListView {
		var cmd tea.Cmd
		m.categories, cmd = m.categories.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgCategoriesFetched:
		res := msg.data.(categoriesResult)
		if res.err != nil {
			m.err = res.err
			return m, nil
		}
		items := make([]list.Item, len(res.categories))
		for i, c := range res.categories {
			items[i] = categoryItem{category: c}
		}
		cmd := m.categories.SetItems(items)
		m.debug.Addf("categories: %d", len(items))
		if m.category != "" {
			return m, tea.Batch(cmd, m.openCategory(m.category))
		}
		return m, cmd

	case MsgThumbsLoaded:
		res := msg.data.(thumbsResult)
		if res.page != m.generation {
			return m, nil
		}
		m.loader.Settle(res.results)
		loaded := 0
		for _, r := range res.results {
			if r.Err != nil || r.Thumb == nil {
				continue
			}
			m.swatches[r.ID] = averageColor(r.Thumb)
			loaded++
		}
		m.debug.Addf("thumbnails loaded: %d/%d", loaded, len(res.results))
		if res.err != nil && !errors.Is(res.err, context.Canceled) {
			m.logger.Warn("thumbnail loading stopped", "error", res.err)
		}
		return m, nil

	case MsgTick:
		now := msg.data.(time.Time)
		m.viewer.Tick(now)
		m.surface.Step(now)
		if !m.viewer.Active() {
			m.ticking = false
			return m, m.syncViewer()
		}
		return m, m.nextFrame()

	case MsgCopied:
		res := msg.data.(copyResult)
		if res.err != nil {
			m.status = styles.err.Render(fmt.Sprintf("copy failed: %v", res.err))
			return m, nil
		}
		m.status = styles.ok.Render("copied " + res.url)
		m.debug.Addf("copied %s", res.url)
	}
	return m, nil
}

func (m *Model) handleCategoryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.categories.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.categories, cmd = m.categories.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.categories.SelectedItem().(categoryItem); ok {
			return m, m.openCategory(item.category.Name)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.categories, cmd = m.categories.Update(msg)
	return m, cmd
}

func (m *Model) handleGalleryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		switch {
		case m.selection.Len() > 0:
			m.selection.Clear()
			m.status = ""
		case m.gallery.Search() != "":
			return m, m.reload(m.gallery.ClearSearch())
		default:
			m.view = CategoryListView
		}
	case key.Matches(msg, m.keys.up):
		return m, m.moveCursor(-m.columns())
	case key.Matches(msg, m.keys.down):
		return m, m.moveCursor(m.columns())
	case key.Matches(msg, m.keys.left):
		return m, m.moveCursor(-1)
	case key.Matches(msg, m.keys.right):
		return m, m.moveCursor(1)
	case key.Matches(msg, m.keys.enter):
		return m, m.openViewer()
	case key.Matches(msg, m.keys.nextPage):
		return m, m.reload(m.gallery.NextPage())
	case key.Matches(msg, m.keys.prevPage):
		return m, m.reload(m.gallery.PrevPage())
	case key.Matches(msg, m.keys.search):
		m.view = SearchView
		m.search.SetValue(m.gallery.Search())
		return m, m.search.Focus()
	case key.Matches(msg, m.keys.sort):
		next := gallery.SortAsc
		if m.gallery.Sort() == gallery.SortAsc {
			next = gallery.SortDesc
		}
		if err := m.gallery.SetSort(string(next)); err != nil {
			m.status = styles.err.Render(err.Error())
			return m, nil
		}
		m.debug.Addf("sorted %s", next)
		return m, m.observe()
	case key.Matches(msg, m.keys.view):
		mode := m.gallery.ToggleViewMode()
		m.offset = 0
		m.debug.Addf("view mode: %s", mode)
		return m, m.observe()
	case key.Matches(msg, m.keys.mark):
		if img, ok := m.gallery.Current(); ok {
			m.selection.Click(img.URL, input.ModCtrl)
			m.status = fmt.Sprintf("%d selected", m.selection.Len())
		}
	case key.Matches(msg, m.keys.copy):
		return m, m.copyCurrent()
	case key.Matches(msg, m.keys.debug):
		m.toggleDebug()
		return m, m.observe()
	case key.Matches(msg, m.keys.clear):
		m.debug.Clear()
	}
	return m, nil
}

func (m *Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.search.Blur()
		m.view = GalleryView
		return m, nil
	case tea.KeyEnter:
		if _, err := m.gallery.ValidateSearch(m.search.Value()); err != nil {
			m.status = styles.warn.Render(err.Error())
			return m, nil
		}
		m.search.Blur()
		m.view = GalleryView
		err := m.gallery.SetSearch(m.search.Value())
		m.debug.Addf("search %q: %d results", m.gallery.Search(), m.gallery.TotalCount())
		return m, m.reload(err)
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m *Model) handleViewerKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		m.viewer.Key(input.KeyEvent{Key: input.KeyEscape})
	case key.Matches(msg, m.keys.left):
		m.viewer.Key(input.KeyEvent{Key: input.KeyLeft})
	case key.Matches(msg, m.keys.right):
		m.viewer.Key(input.KeyEvent{Key: input.KeyRight})
	case key.Matches(msg, m.keys.zoomIn):
		m.viewer.Wheel(input.WheelEvent{Pos: m.imageCenter(), DeltaY: -1, Mods: input.ModCtrl})
	case key.Matches(msg, m.keys.zoomOut):
		m.viewer.Wheel(input.WheelEvent{Pos: m.imageCenter(), DeltaY: 1, Mods: input.ModCtrl})
	case key.Matches(msg, m.keys.open):
		m.viewer.Click(input.ClickEvent{Pos: m.imageCenter(), Target: input.TargetImage})
	case key.Matches(msg, m.keys.details):
		m.viewer.Click(input.ClickEvent{Target: input.TargetDetails})
	case key.Matches(msg, m.keys.remove):
		m.viewer.Click(input.ClickEvent{Target: input.TargetDelete})
	case key.Matches(msg, m.keys.copy):
		return m, m.copyCurrent()
	case key.Matches(msg, m.keys.debug):
		m.toggleDebug()
	case key.Matches(msg, m.keys.clear):
		m.debug.Clear()
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	}
	return m, m.syncViewer()
}

func (m *Model) handleGalleryMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.scroll(-1)
		return m, m.observe()
	case msg.Button == tea.MouseButtonWheelDown:
		m.scroll(1)
		return m, m.observe()
	case msg.Button != tea.MouseButtonLeft || msg.Action != tea.MouseActionPress:
		return m, nil
	}

	region, idx := m.hitGallery(msg.X, msg.Y)
	mods := modifiers(msg)
	if region == input.RegionImageCard && idx >= 0 {
		img := m.gallery.Images()[idx]
		if m.selection.Click(img.URL, mods) {
			m.status = fmt.Sprintf("%d selected", m.selection.Len())
			return m, nil
		}
	}
	if m.selection.DocumentClick(region) {
		m.status = ""
	}
	if region == input.RegionImageCard && idx >= 0 {
		m.gallery.Select(idx)
		return m, m.openViewer()
	}
	return m, nil
}

func (m *Model) handleViewerMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	pos := input.Point{X: float64(msg.X * cellWidth), Y: float64(msg.Y * cellHeight)}
	mods := modifiers(msg)

	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.viewer.Wheel(input.WheelEvent{Pos: pos, DeltaY: -1, Mods: mods})
	case msg.Button == tea.MouseButtonWheelDown:
		m.viewer.Wheel(input.WheelEvent{Pos: pos, DeltaY: 1, Mods: mods})
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		m.pressed = m.hitViewer(msg.X, msg.Y)
		m.viewer.PointerDown(input.PointerEvent{Pos: pos, Button: input.ButtonPrimary, Target: m.pressed, Mods: mods})
	case msg.Action == tea.MouseActionMotion:
		m.viewer.PointerMove(input.PointerEvent{Pos: pos, Button: input.ButtonPrimary, Target: m.pressed, Mods: mods})
	case msg.Action == tea.MouseActionRelease:
		target := m.hitViewer(msg.X, msg.Y)
		m.viewer.PointerUp(input.PointerEvent{Pos: pos, Button: input.ButtonPrimary, Target: target, Mods: mods})
		if target == m.pressed {
			m.viewer.Click(input.ClickEvent{Pos: pos, Target: target, Mods: mods})
		}
		m.pressed = input.TargetNone
	}
	return m, m.syncViewer()
}

func modifiers(msg tea.MouseMsg) input.Modifiers {
	var mods input.Modifiers
	if msg.Shift {
		mods |= input.ModShift
	}
	if msg.Ctrl {
		mods |= input.ModCtrl
	}
	if msg.Alt {
		mods |= input.ModAlt
	}
	return mods
}

func (m *Model) openCategory(name string) tea.Cmd {
	m.category = name
	m.selection.Clear()
	if err := m.gallery.SetCategory(name); err != nil {
		m.status = styles.err.Render(err.Error())
		m.view = CategoryListView
		return nil
	}
	m.view = GalleryView
	m.debug.Addf("category: %s", name)
	m.debug.Snapshot(m.gallery)
	return m.reload(nil)
}

// reload resets per-page state after the gallery loaded a new page.
func (m *Model) reload(err error) tea.Cmd {
	if err != nil {
		m.status = styles.err.Render(err.Error())
		return nil
	}
	m.generation++
	m.offset = 0
	m.swatches = map[string]string{}
	m.loader.Reset()
	m.status = ""
	m.debug.Addf("page %d/%d", m.gallery.CurrentPage(), m.gallery.TotalPages())
	return m.observe()
}

func (m *Model) openViewer() tea.Cmd {
	img, ok := m.gallery.Current()
	if !ok {
		return nil
	}
	m.view = ViewerView
	m.viewer.SetActive(true)
	m.debug.Addf("viewer opened: %s", img.Filename)
	return m.tick()
}

// syncViewer leaves the viewer view once the controller has been deactivated.
func (m *Model) syncViewer() tea.Cmd {
	if m.view != ViewerView || m.viewer.Active() {
		return nil
	}
	m.view = GalleryView
	m.debug.Add("viewer closed")
	m.ensureVisible()
	return m.observe()
}

// tick starts the frame loop unless it is already running.
func (m *Model) tick() tea.Cmd {
	if m.ticking {
		return nil
	}
	m.ticking = true
	return m.nextFrame()
}

func (m *Model) nextFrame() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) toggleDebug() {
	if m.debug.Toggle() {
		m.debug.Snapshot(m.gallery)
	}
}

func (m *Model) copyCurrent() tea.Cmd {
	img, ok := m.gallery.Current()
	if !ok {
		return nil
	}
	return func() tea.Msg {
		return copiedMsg(img.URL, m.clipboard(img.URL))
	}
}

func (m *Model) fetchCategories() tea.Cmd {
	return func() tea.Msg {
		categories, err := m.store.Categories()
		return categoriesFetchedMsg(categories, err)
	}
}

// columns is the number of images per grid row.
func (m *Model) columns() int {
	if m.gallery.ViewMode() == gallery.Waterfall {
		return 1
	}
	return max(1, m.width/gridCellWidth)
}

func (m *Model) cellWidth() int {
	if m.columns() == 1 {
		return max(m.width, 1)
	}
	return gridCellWidth
}

// visibleRows is the number of grid rows between the header and footer.
func (m *Model) visibleRows() int {
	rows := m.height - headerLines - footerLines
	if m.debug.Visible() {
		rows -= debugLines + 4
	}
	return max(rows, 1)
}

func (m *Model) moveCursor(delta int) tea.Cmd {
	i := m.gallery.Index() + delta
	if i < 0 || i >= m.gallery.Len() {
		return nil
	}
	m.gallery.Select(i)
	m.ensureVisible()
	return m.observe()
}

func (m *Model) ensureVisible() {
	row := m.gallery.Index() / m.columns()
	switch {
	case row < m.offset:
		m.offset = row
	case row >= m.offset+m.visibleRows():
		m.offset = row - m.visibleRows() + 1
	}
}

func (m *Model) scroll(delta int) {
	if m.surface.Locked() {
		return
	}
	rows := (m.gallery.Len() + m.columns() - 1) / m.columns()
	m.offset = max(0, min(m.offset+delta, rows-m.visibleRows()))
}

// observe registers the page's images with the lazy loader at their current
// layout position and loads the ones inside the visible rows.
func (m *Model) observe() tea.Cmd {
	if m.view != GalleryView || m.width == 0 {
		return nil
	}

	cols, w := m.columns(), float64(m.cellWidth())
	for i, img := range m.gallery.Images() {
		bounds := lazyload.Rect{X: float64(i%cols) * w, Y: float64(i / cols), W: w, H: 1}
		if !m.loader.Move(img.ID, bounds) {
			m.loader.Observe(lazyload.Item{ID: img.ID, Path: img.Path, Bounds: bounds})
		}
	}

	viewport := lazyload.Rect{X: 0, Y: float64(m.offset), W: float64(m.width), H: float64(m.visibleRows())}
	due := m.loader.Due(viewport)
	if len(due) == 0 {
		return nil
	}

	gen := m.generation
	return func() tea.Msg {
		results, err := m.loader.Load(m.ctx, due)
		return thumbsLoadedMsg(gen, results, err)
	}
}

// hitGallery maps a terminal cell to a page region and, for image cards, the image index.
func (m *Model) hitGallery(x, y int) (input.Region, int) {
	switch {
	case y < headerLines:
		return input.RegionViewControls, -1
	case y >= headerLines+m.visibleRows():
		if y < headerLines+m.visibleRows()+1 {
			return input.RegionPagination, -1
		}
		return input.RegionOther, -1
	}

	col := x / m.cellWidth()
	if col >= m.columns() {
		return input.RegionOther, -1
	}
	idx := (y-headerLines+m.offset)*m.columns() + col
	if idx >= m.gallery.Len() {
		return input.RegionOther, -1
	}
	return input.RegionImageCard, idx
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress ctrl+c to quit", m.err))
	}

	var body string
	switch m.view {
	case CategoryListView:
		body = m.renderCategories()
	case GalleryView:
		body = m.renderGallery()
	case SearchView:
		body = m.renderSearch()
	case ViewerView:
		body = m.renderViewer()
	}

	if panel := m.debug.View(m.width, debugLines); panel != "" {
		body = lipgloss.JoinVertical(lipgloss.Left, body, panel)
	}
	return body
}

func (m *Model) renderCategories() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.quit})
	out := fmt.Sprintf("%s\n\n%s", m.categories.View(), helpView)
	if m.status != "" {
		out += "\n" + m.status
	}
	return out
}

func (m *Model) header() string {
	title := fmt.Sprintf("%s · page %d/%d · %d images · %s · %s",
		m.gallery.Category(),
		m.gallery.CurrentPage(),
		max(m.gallery.TotalPages(), 1),
		m.gallery.TotalCount(),
		m.gallery.Sort(),
		m.gallery.ViewMode(),
	)
	sub := m.status
	if q := m.gallery.Search(); q != "" {
		sub = strings.TrimSpace(fmt.Sprintf("search: %q  %s", q, sub))
	}
	return styles.ok.Render(title) + "\n" + sub
}

func (m *Model) renderGallery() string {
	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n")

	images := m.gallery.Images()
	cols := m.columns()
	rows := m.visibleRows()
	for r := range rows {
		start := (m.offset + r) * cols
		cells := make([]string, 0, cols)
		for c := range cols {
			i := start + c
			if i >= len(images) {
				break
			}
			cells = append(cells, m.renderCard(i, images[i]))
		}
		b.WriteString(strings.Join(cells, ""))
		b.WriteString("\n")
	}

	pages := fmt.Sprintf("‹ p  page %d of %d  n ›", m.gallery.CurrentPage(), max(m.gallery.TotalPages(), 1))
	b.WriteString(styles.help.Render(pages))
	b.WriteString("\n")
	b.WriteString(m.help.ShortHelpView([]key.Binding{
		m.keys.enter, m.keys.search, m.keys.sort, m.keys.view, m.keys.mark, m.keys.debug, m.keys.quit,
	}))
	return b.String()
}

func (m *Model) renderCard(i int, img models.Image) string {
	color, ok := m.swatches[img.ID]
	if !ok {
		color = placeholder
	}

	mark := " "
	if m.selection.Has(img.URL) {
		mark = styles.selected.Render("✓")
	}

	text := img.Filename
	if m.columns() == 1 {
		text = fmt.Sprintf("%-32s %10s %10s  %s",
			img.Filename,
			formatter.Dimensions(img.Width, img.Height),
			formatter.FormatSize(img.Size),
			img.UploadTime,
		)
	}

	inner := max(m.cellWidth()-5, 1)
	text = truncate(text, inner)
	if i == m.gallery.Index() {
		text = styles.cursor.Render(text)
	}
	return lipgloss.NewStyle().Width(m.cellWidth()).Render(fmt.Sprintf("%s%s %s", swatch(color), mark, text))
}

func (m *Model) renderSearch() string {
	title := styles.title.Render("Search")
	helpView := m.help.ShortHelpView([]key.Binding{
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "search")),
		m.keys.back,
	})
	out := fmt.Sprintf("%s\n%s\n\n%s", title, m.search.View(), helpView)
	if m.status != "" {
		out += "\n" + m.status
	}
	return out
}

// viewerArea is the number of rows between the viewer title and its control bar.
func (m *Model) viewerArea() int {
	rows := m.height - 3
	if m.debug.Visible() {
		rows -= debugLines + 4
	}
	return max(rows, 1)
}

// imageBox returns the drawn image rectangle in cells: left, top, width, height.
func (m *Model) imageBox() (int, int, int, int) {
	t := m.surface.Current()
	area := m.viewerArea()
	baseW := max(min(m.width-4, 48), 1)
	baseH := max(min(area-2, 12), 1)

	w := max(int(float64(baseW)*t.Scale), 1)
	h := max(int(float64(baseH)*t.Scale), 1)
	left := (m.width-w)/2 + int(t.X/cellWidth)
	top := 1 + (area-h)/2 + int(t.Y/cellHeight)
	return left, top, w, h
}

func (m *Model) imageCenter() input.Point {
	left, top, w, h := m.imageBox()
	return input.Point{X: float64((left + w/2) * cellWidth), Y: float64((top + h/2) * cellHeight)}
}

// viewerControls are the buttons of the control bar, left to right.
var viewerControls = []struct {
	label  string
	target input.Target
}{
	{"‹ prev", input.TargetPrev},
	{"details", input.TargetDetails},
	{"delete", input.TargetDelete},
	{"next ›", input.TargetNext},
	{"× close", input.TargetClose},
}

// hitViewer maps a terminal cell to the viewer element under it.
func (m *Model) hitViewer(x, y int) input.Target {
	if y == m.viewerArea()+1 {
		col := 0
		for _, c := range viewerControls {
			w := len([]rune(c.label)) + 2
			if x >= col && x < col+w {
				return c.target
			}
			col += w + 1
		}
		return input.TargetNone
	}

	left, top, w, h := m.imageBox()
	if x >= left && x < left+w && y >= top && y < top+h {
		return input.TargetImage
	}
	if y >= 1 && y <= m.viewerArea() {
		return input.TargetBackdrop
	}
	return input.TargetNone
}

func (m *Model) renderViewer() string {
	img, ok := m.gallery.Current()
	if !ok {
		return ""
	}

	var b strings.Builder
	title := fmt.Sprintf("%s  (%d/%d)", img.Filename, m.gallery.Index()+1, m.gallery.Len())
	if d := m.gallery.Detail(); d != nil {
		title += "  " + detailLine(d)
	}
	b.WriteString(styles.ok.Render(title))
	b.WriteString("\n")

	color, ok := m.swatches[img.ID]
	if !ok {
		color = placeholder
	}
	block := lipgloss.NewStyle().Foreground(lipgloss.Color(color))
	left, top, w, h := m.imageBox()
	for y := 1; y <= m.viewerArea(); y++ {
		if y >= top && y < top+h {
			b.WriteString(clipRow(left, w, m.width, block))
		}
		b.WriteString("\n")
	}

	labels := make([]string, len(viewerControls))
	for i, c := range viewerControls {
		labels[i] = styles.control.Render(c.label)
	}
	b.WriteString(strings.Join(labels, " "))
	b.WriteString("\n")
	b.WriteString(styles.help.Render(m.surface.Current().String()))
	if m.status != "" {
		b.WriteString("  " + m.status)
	}
	return b.String()
}

// clipRow draws a w-cell block starting at column left, cut to the screen width.
func clipRow(left, w, screen int, style lipgloss.Style) string {
	start := max(left, 0)
	end := min(left+w, screen)
	if end <= start {
		return ""
	}
	return strings.Repeat(" ", start) + style.Render(strings.Repeat("█", end-start))
}

func detailLine(d *models.ImageDetail) string {
	parts := []string{formatter.Dimensions(d.Width, d.Height), formatter.FormatSize(d.Size), d.UploadTime}
	if d.Camera != "" {
		parts = append(parts, d.Camera)
	}
	if d.TakenAt != "" {
		parts = append(parts, "taken "+d.TakenAt)
	}
	return strings.Join(parts, " · ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
