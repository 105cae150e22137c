package gallery

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/wallview/internal/imaging"
	"github.com/desertthunder/wallview/internal/models"
	"github.com/desertthunder/wallview/internal/repositories"
	"github.com/desertthunder/wallview/internal/shared"
)

// SQLStore serves pages from the SQLite index.
type SQLStore struct {
	categories *repositories.CategoryRepository
	images     *repositories.ImageRepository
	baseURL    string
	logger     *log.Logger
}

// NewSQLStore creates a store over db. Image URLs are rooted at baseURL, which may be empty for relative URLs.
func NewSQLStore(db *sql.DB, baseURL string, logger *log.Logger) *SQLStore {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &SQLStore{
		categories: repositories.NewCategoryRepository(db),
		images:     repositories.NewImageRepository(db),
		baseURL:    baseURL,
		logger:     logger,
	}
}

func (s *SQLStore) Categories() ([]models.Category, error) {
	rows, err := s.categories.List(nil)
	if err != nil {
		return nil, err
	}

	categories := make([]models.Category, 0, len(rows))
	for _, c := range rows {
		categories = append(categories, c.DTO())
	}
	return categories, nil
}

// Page resolves the category by name and returns the requested page.
// An out-of-range page yields no images rather than an error.
func (s *SQLStore) Page(q Query) (*models.Page, error) {
	category, err := s.categories.GetByName(q.Category)
	if err != nil {
		return nil, err
	}

	page, perPage := shared.ClampPage(q.Page, q.PerPage)
	rows, total, err := s.images.ListPage(repositories.PageQuery{
		CategoryID: category.ID(),
		Page:       page,
		PerPage:    perPage,
		Search:     q.Search,
		Ascending:  q.Sort == SortAsc,
	})
	if err != nil {
		return nil, err
	}

	images := make([]models.Image, 0, len(rows))
	for _, row := range rows {
		images = append(images, row.DTO(ImageURL(s.baseURL, row.ID(), row.Filename())))
	}

	mode := q.ViewMode
	if mode == "" {
		mode = Waterfall
	}

	return &models.Page{
		Images:      images,
		TotalPages:  shared.TotalPages(total, perPage),
		CurrentPage: page,
		TotalCount:  total,
		ViewMode:    string(mode),
	}, nil
}

// Detail joins the image with its category and reads EXIF data from the file when it is still readable.
func (s *SQLStore) Detail(id string) (*models.ImageDetail, error) {
	image, category, err := s.images.Detail(id)
	if err != nil {
		return nil, err
	}

	detail := &models.ImageDetail{
		ID:         image.ID(),
		Filename:   image.Filename(),
		Path:       ImageURL(s.baseURL, image.ID(), image.Filename()),
		UploadTime: image.UploadTime().UTC().Format(models.TimestampLayout),
		Category:   category,
		Width:      image.Width(),
		Height:     image.Height(),
		Size:       image.Size(),
	}

	info, err := imaging.Probe(image.Filepath())
	if err != nil {
		s.logger.Warn("could not read image file", "id", id, "path", image.Filepath(), "error", err)
		return detail, nil
	}
	applyExif(detail, info)
	return detail, nil
}

// Delete removes the row first, then the file. A file that cannot be removed is logged and left behind.
func (s *SQLStore) Delete(id string) error {
	image, err := s.images.Get(id)
	if err != nil {
		return err
	}

	if err := s.images.Delete(id); err != nil {
		return err
	}

	if err := os.Remove(image.Filepath()); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("image row deleted but file remains", "id", id, "path", image.Filepath(), "error", err)
	}

	if err := s.images.Reindex(image.CategoryID()); err != nil {
		return fmt.Errorf("image deleted but reindex failed: %w", err)
	}
	return nil
}

func (s *SQLStore) File(id string) (string, string, error) {
	image, err := s.images.Get(id)
	if err != nil {
		return "", "", err
	}
	return image.Filepath(), image.Filename(), nil
}

func applyExif(detail *models.ImageDetail, info *imaging.Info) {
	detail.Camera = info.Camera
	if !info.TakenAt.IsZero() {
		detail.TakenAt = info.TakenAt.Format(models.TimestampLayout)
	}
}
