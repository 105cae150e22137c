package repositories

import (
	"errors"
	"fmt"

	"github.com/desertthunder/wallview/internal/imaging"
	"github.com/desertthunder/wallview/internal/models"
	"github.com/desertthunder/wallview/internal/shared"
)

// ScanStore adapts [ImageRepository] to the index store used by folder scans.
type ScanStore struct {
	images *ImageRepository
}

// NewScanStore wraps an image repository for scan tasks.
func NewScanStore(images *ImageRepository) *ScanStore {
	return &ScanStore{images: images}
}

// Paths maps every indexed path of a category to its image ID.
func (s *ScanStore) Paths(categoryID string) (map[string]string, error) {
	return s.images.Paths(categoryID)
}

// Upsert indexes a probed file, updating the existing row when the path is already known.
// The file's modification time becomes its upload time.
func (s *ScanStore) Upsert(categoryID string, info *imaging.Info) error {
	existing, err := s.images.GetByPath(categoryID, info.Path)
	switch {
	case errors.Is(err, shared.ErrImageNotFound):
		image := models.NewPersistedImage(0, categoryID, info.Path)
		fill(image, info)
		return s.images.Create(image)
	case err != nil:
		return fmt.Errorf("failed to look up %s: %w", info.Path, err)
	}

	fill(existing, info)
	return s.images.Update(existing)
}

// Remove drops an image row by ID.
func (s *ScanStore) Remove(id string) error {
	return s.images.Delete(id)
}

// Reindex renumbers a category after a scan.
func (s *ScanStore) Reindex(categoryID string) error {
	return s.images.Reindex(categoryID)
}

func fill(image *models.PersistedImage, info *imaging.Info) {
	image.SetDimensions(info.Width, info.Height)
	image.SetSize(info.Size)
	image.SetUploadTime(info.ModTime)
}
