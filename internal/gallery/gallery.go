package gallery

import (
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/wallview/internal/models"
	"github.com/desertthunder/wallview/internal/shared"
)

// Activator is the part of the viewer controller the gallery drives.
type Activator interface {
	SetActive(active bool)
}

// Options configures a [Gallery].
type Options struct {
	Category string
	PerPage  int
	Sort     SortOrder
	ViewMode ViewMode
	Logger   *log.Logger
}

// Gallery is one page of a category plus the image open in the viewer.
type Gallery struct {
	store  Store
	logger *log.Logger
	viewer Activator

	category   string
	perPage    int
	sort       SortOrder
	viewMode   ViewMode
	search     string
	page       int
	totalPages int
	totalCount int

	images []models.Image
	index  int
	detail *models.ImageDetail
	err    error
}

// New creates a gallery over store. Call [Gallery.Load] to fetch the first page.
func New(store Store, opts Options) *Gallery {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Sort == "" {
		opts.Sort = SortDesc
	}
	if opts.ViewMode == "" {
		opts.ViewMode = Waterfall
	}
	_, perPage := shared.ClampPage(1, opts.PerPage)

	return &Gallery{
		store:    store,
		logger:   opts.Logger,
		category: opts.Category,
		perPage:  perPage,
		sort:     opts.Sort,
		viewMode: opts.ViewMode,
		page:     1,
	}
}

// Attach sets the viewer the gallery closes from [Gallery.CloseImageViewer].
func (g *Gallery) Attach(v Activator) { g.viewer = v }

func (g *Gallery) Images() []models.Image      { return g.images }
func (g *Gallery) Len() int                    { return len(g.images) }
func (g *Gallery) Index() int                  { return g.index }
func (g *Gallery) Category() string            { return g.category }
func (g *Gallery) CurrentPage() int            { return g.page }
func (g *Gallery) TotalPages() int             { return g.totalPages }
func (g *Gallery) TotalCount() int             { return g.totalCount }
func (g *Gallery) Sort() SortOrder             { return g.sort }
func (g *Gallery) ViewMode() ViewMode          { return g.viewMode }
func (g *Gallery) Search() string              { return g.search }
func (g *Gallery) Detail() *models.ImageDetail { return g.detail }
func (g *Gallery) Err() error                  { return g.err }
func (g *Gallery) Store() Store                { return g.store }

// Current returns the image open in the viewer.
func (g *Gallery) Current() (models.Image, bool) {
	if g.index < 0 || g.index >= len(g.images) {
		return models.Image{}, false
	}
	return g.images[g.index], true
}

// Load fetches the current page. The selected index is kept when it is still in range.
func (g *Gallery) Load() error {
	page, err := g.store.Page(Query{
		Category: g.category,
		Page:     g.page,
		PerPage:  g.perPage,
		Search:   g.search,
		Sort:     g.sort,
		ViewMode: g.viewMode,
	})
	if err != nil {
		g.err = err
		return err
	}

	g.images = page.Images
	g.page = page.CurrentPage
	g.totalPages = page.TotalPages
	g.totalCount = page.TotalCount
	g.detail = nil
	g.err = nil
	if g.index >= len(g.images) {
		g.index = 0
	}
	g.logger.Debug("page loaded", "category", g.category, "page", g.page, "images", len(g.images), "total", g.totalCount)
	return nil
}

// SetCategory switches category and loads its first page.
func (g *Gallery) SetCategory(name string) error {
	g.category = name
	g.page = 1
	g.index = 0
	return g.Load()
}

// GoToPage loads page n, clamped to the known page range.
func (g *Gallery) GoToPage(n int) error {
	if g.totalPages > 0 && n > g.totalPages {
		n = g.totalPages
	}
	if n < 1 {
		n = 1
	}
	g.page = n
	g.index = 0
	return g.Load()
}

func (g *Gallery) NextPage() error { return g.GoToPage(g.page + 1) }
func (g *Gallery) PrevPage() error { return g.GoToPage(g.page - 1) }

// Select makes image i current.
func (g *Gallery) Select(i int) bool {
	if i < 0 || i >= len(g.images) {
		return false
	}
	g.index = i
	g.detail = nil
	return true
}

// ViewNextImage moves to the next image on the page, wrapping to the first.
func (g *Gallery) ViewNextImage() { g.step(1) }

// ViewPrevImage moves to the previous image on the page, wrapping to the last.
func (g *Gallery) ViewPrevImage() { g.step(-1) }

func (g *Gallery) step(delta int) {
	n := len(g.images)
	if n == 0 {
		return
	}
	g.index = (g.index + delta%n + n) % n
	g.detail = nil
}

// CurrentImageURL is the URL of the current image, empty when the page is empty.
func (g *Gallery) CurrentImageURL() string {
	if img, ok := g.Current(); ok {
		return img.URL
	}
	return ""
}

// CloseImageViewer deactivates the attached viewer.
func (g *Gallery) CloseImageViewer() {
	g.detail = nil
	if g.viewer != nil {
		g.viewer.SetActive(false)
	}
}

// ShowImageDetails loads metadata for the current image. Failures are logged and kept in [Gallery.Err].
func (g *Gallery) ShowImageDetails() {
	img, ok := g.Current()
	if !ok {
		return
	}
	detail, err := g.store.Detail(img.ID)
	if err != nil {
		g.err = err
		g.logger.Error("failed to load image details", "id", img.ID, "error", err)
		return
	}
	g.detail = detail
}

// DeleteCurrentImage deletes the current image and drops it from the page.
// The viewer closes when the page becomes empty.
func (g *Gallery) DeleteCurrentImage() {
	img, ok := g.Current()
	if !ok {
		return
	}
	if err := g.store.Delete(img.ID); err != nil {
		g.err = err
		g.logger.Error("failed to delete image", "id", img.ID, "error", err)
		return
	}

	g.logger.Info("image deleted", "id", img.ID, "filename", img.Filename)
	g.images = slices.Delete(g.images, g.index, g.index+1)
	g.totalCount--
	g.detail = nil

	if len(g.images) == 0 {
		g.index = 0
		g.CloseImageViewer()
		return
	}
	if g.index >= len(g.images) {
		g.index = len(g.images) - 1
	}
}

// ValidateSearch normalizes a search term, rejecting blank input with shared.ErrEmptySearch.
func (g *Gallery) ValidateSearch(term string) (string, error) {
	return shared.NormalizeSearch(term)
}

// SetSearch validates term and loads the first page of matches.
func (g *Gallery) SetSearch(term string) error {
	normalized, err := g.ValidateSearch(term)
	if err != nil {
		return err
	}
	g.search = normalized
	g.page = 1
	g.index = 0
	return g.Load()
}

// ClearSearch drops the search term and reloads the first page.
func (g *Gallery) ClearSearch() error {
	if g.search == "" {
		return nil
	}
	g.search = ""
	g.page = 1
	g.index = 0
	return g.Load()
}

// ToggleViewMode switches between waterfall and grid.
func (g *Gallery) ToggleViewMode() ViewMode {
	g.viewMode = g.viewMode.Toggle()
	return g.viewMode
}

// SetViewMode parses and applies a view mode.
func (g *Gallery) SetViewMode(s string) error {
	mode, err := ParseViewMode(s)
	if err != nil {
		return err
	}
	g.viewMode = mode
	return nil
}

// SetSort parses a sort order, reorders the loaded page and uses the order for later loads.
func (g *Gallery) SetSort(s string) error {
	order, err := ParseSort(s)
	if err != nil {
		return err
	}
	g.sort = order
	g.SortByTime(order)
	return nil
}

// SortByTime reorders the loaded page by upload time.
//
// A timestamp that does not parse compares equal to everything, so the stable
// sort leaves it where it was. Each malformed value is logged once per call.
func (g *Gallery) SortByTime(order SortOrder) {
	current, hasCurrent := g.Current()

	times := make(map[string]time.Time, len(g.images))
	for _, img := range g.images {
		t, err := time.Parse(models.TimestampLayout, img.UploadTime)
		if err != nil {
			g.logger.Warn("unsortable upload time", "id", img.ID, "upload_time", img.UploadTime, "error", err)
			continue
		}
		times[img.ID] = t
	}

	slices.SortStableFunc(g.images, func(a, b models.Image) int {
		ta, okA := times[a.ID]
		tb, okB := times[b.ID]
		if !okA || !okB {
			return 0
		}
		if order == SortAsc {
			return ta.Compare(tb)
		}
		return tb.Compare(ta)
	})

	if hasCurrent {
		g.index = slices.IndexFunc(g.images, func(img models.Image) bool { return img.ID == current.ID })
	}
}
