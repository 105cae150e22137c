package gallery

import (
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/wallview/internal/imaging"
	"github.com/desertthunder/wallview/internal/models"
	"github.com/desertthunder/wallview/internal/shared"
	"github.com/google/uuid"
	"github.com/sahilm/fuzzy"
)

// DirStore serves a single folder as one category, without a database.
//
// The folder is read once by [OpenDir]; files that fail to decode are skipped.
type DirStore struct {
	root   string
	name   string
	items  []dirItem
	logger *log.Logger
}

type dirItem struct {
	id   string
	info *imaging.Info
}

// OpenDir probes every image below root. The category is named after the folder.
func OpenDir(root string, logger *log.Logger) (*DirStore, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", root, err)
	}

	s := &DirStore{root: root, name: filepath.Base(root), logger: logger}
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !shared.AllowedImage(path) {
			return nil
		}

		info, err := imaging.Probe(path)
		if err != nil {
			logger.Warn("skipping file", "path", path, "error", err)
			return nil
		}
		s.items = append(s.items, dirItem{id: pathID(path), info: info})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", root, err)
	}

	logger.Debug("opened folder", "root", root, "images", len(s.items))
	return s, nil
}

// pathID derives a stable ID from a file path so reopening a folder keeps IDs.
func pathID(path string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+path)).String()
}

// Name is the single category this store serves.
func (s *DirStore) Name() string { return s.name }

func (s *DirStore) Categories() ([]models.Category, error) {
	return []models.Category{{ID: pathID(s.root), Name: s.name, FolderPath: s.root}}, nil
}

// Page filters by fuzzy file name match, orders by modification time and slices out one page.
func (s *DirStore) Page(q Query) (*models.Page, error) {
	if q.Category != "" && q.Category != s.name {
		return nil, fmt.Errorf("%w: %s", shared.ErrCategoryNotFound, q.Category)
	}

	items := s.match(q.Search)
	slices.SortStableFunc(items, func(a, b dirItem) int {
		c := a.info.ModTime.Compare(b.info.ModTime)
		if q.Sort == SortAsc {
			return c
		}
		return -c
	})

	page, perPage := shared.ClampPage(q.Page, q.PerPage)
	start := min((page-1)*perPage, len(items))
	end := min(start+perPage, len(items))

	images := make([]models.Image, 0, end-start)
	for i, item := range items[start:end] {
		images = append(images, item.dto(start+i+1))
	}

	mode := q.ViewMode
	if mode == "" {
		mode = Waterfall
	}

	return &models.Page{
		Images:      images,
		TotalPages:  shared.TotalPages(len(items), perPage),
		CurrentPage: page,
		TotalCount:  len(items),
		ViewMode:    string(mode),
	}, nil
}

// match returns the items whose file name fuzzily matches term, all items when term is empty.
func (s *DirStore) match(term string) []dirItem {
	if term == "" {
		return slices.Clone(s.items)
	}

	names := make([]string, len(s.items))
	for i, item := range s.items {
		names[i] = filepath.Base(item.info.Path)
	}

	matches := fuzzy.Find(term, names)
	items := make([]dirItem, 0, len(matches))
	for _, m := range matches {
		items = append(items, s.items[m.Index])
	}
	return items
}

func (s *DirStore) Detail(id string) (*models.ImageDetail, error) {
	item, _, err := s.find(id)
	if err != nil {
		return nil, err
	}

	detail := &models.ImageDetail{
		ID:         item.id,
		Filename:   filepath.Base(item.info.Path),
		Path:       fileURL(item.info.Path),
		UploadTime: item.info.ModTime.UTC().Format(models.TimestampLayout),
		Category:   s.name,
		Width:      item.info.Width,
		Height:     item.info.Height,
		Size:       item.info.Size,
	}
	applyExif(detail, item.info)
	return detail, nil
}

// Delete removes the file from disk and forgets it.
func (s *DirStore) Delete(id string) error {
	item, i, err := s.find(id)
	if err != nil {
		return err
	}
	if err := os.Remove(item.info.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete %s: %w", item.info.Path, err)
	}
	s.items = slices.Delete(s.items, i, i+1)
	return nil
}

func (s *DirStore) File(id string) (string, string, error) {
	item, _, err := s.find(id)
	if err != nil {
		return "", "", err
	}
	return item.info.Path, filepath.Base(item.info.Path), nil
}

func (s *DirStore) find(id string) (dirItem, int, error) {
	for i, item := range s.items {
		if item.id == id {
			return item, i, nil
		}
	}
	return dirItem{}, -1, fmt.Errorf("%w: %s", shared.ErrImageNotFound, id)
}

func (item dirItem) dto(sortIndex int) models.Image {
	return models.Image{
		ID:         item.id,
		Filename:   filepath.Base(item.info.Path),
		URL:        fileURL(item.info.Path),
		UploadTime: item.info.ModTime.UTC().Format(models.TimestampLayout),
		Width:      item.info.Width,
		Height:     item.info.Height,
		Size:       item.info.Size,
		SortIndex:  sortIndex,
		Path:       item.info.Path,
	}
}

func fileURL(path string) string {
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String()
}
