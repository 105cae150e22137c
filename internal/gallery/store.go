package gallery

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/desertthunder/wallview/internal/models"
	"github.com/desertthunder/wallview/internal/shared"
)

// SortOrder is the upload time ordering of a page.
type SortOrder string

const (
	SortDesc SortOrder = "desc"
	SortAsc  SortOrder = "asc"
)

// ParseSort accepts "asc" or "desc" in any case. Empty means desc.
func ParseSort(s string) (SortOrder, error) {
	switch SortOrder(strings.ToLower(strings.TrimSpace(s))) {
	case "", SortDesc:
		return SortDesc, nil
	case SortAsc:
		return SortAsc, nil
	}
	return "", fmt.Errorf("%w: %q", shared.ErrInvalidSort, s)
}

// ViewMode is the layout used to present a page.
type ViewMode string

const (
	Waterfall ViewMode = "waterfall"
	Grid      ViewMode = "grid"
)

// ParseViewMode accepts "waterfall" or "grid" in any case. Empty means waterfall.
func ParseViewMode(s string) (ViewMode, error) {
	switch ViewMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", Waterfall:
		return Waterfall, nil
	case Grid:
		return Grid, nil
	}
	return "", fmt.Errorf("%w: %q", shared.ErrInvalidViewMode, s)
}

// Toggle returns the other view mode.
func (v ViewMode) Toggle() ViewMode {
	if v == Grid {
		return Waterfall
	}
	return Grid
}

// Query selects one page of a category.
type Query struct {
	Category string // Category name
	Page     int
	PerPage  int
	Search   string
	Sort     SortOrder
	ViewMode ViewMode
}

// Store serves gallery pages and applies deletes.
type Store interface {
	Categories() ([]models.Category, error)                   // Categories lists every browsable category
	Page(q Query) (*models.Page, error)                       // Page returns one page of a category
	Detail(id string) (*models.ImageDetail, error)            // Detail returns metadata for one image
	Delete(id string) error                                   // Delete removes an image
	File(id string) (path string, filename string, err error) // File locates an image on disk
}

// ImageURL is where the HTTP server serves an image.
func ImageURL(base, id, filename string) string {
	return strings.TrimRight(base, "/") + "/uploads/" + url.PathEscape(id) + "/" + url.PathEscape(filename)
}
