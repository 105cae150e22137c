// package models defines the data model for the wallpaper gallery
package models

import (
	"time"
)

// TimestampLayout is the upload time format used on the wire.
const TimestampLayout = "2006-01-02 15:04:05"

// Model defines the base interface for all persistent models in the gallery.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
// Implementations handle database interactions for specific model types.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	Update(model T) error                      // Update modifies an existing model in the database
	Delete(id string) error                    // Delete removes a model from the database by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}

// Category is a named folder of wallpapers.
type Category struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	FolderPath string `json:"folder_path,omitempty"`
}

// Image is one wallpaper as listed on a gallery page.
//
// UploadTime is kept as the wire string; clients sort on it and must tolerate bad values.
type Image struct {
	ID         string `json:"id"`
	Filename   string `json:"filename"`
	URL        string `json:"filepath"`
	UploadTime string `json:"upload_time"`
	Width      int    `json:"width,omitempty"`
	Height     int    `json:"height,omitempty"`
	Size       int64  `json:"size,omitempty"`
	SortIndex  int    `json:"sort_index"`
	// Path is the file on local disk. Never sent to clients.
	Path string `json:"-"`
}

// Page is one page of a category listing.
type Page struct {
	Images      []Image `json:"images"`
	TotalPages  int     `json:"total_pages"`
	CurrentPage int     `json:"current_page"`
	TotalCount  int     `json:"total_count"`
	ViewMode    string  `json:"view_mode"`
}

// ImageDetail is the metadata shown for the image open in the viewer.
type ImageDetail struct {
	ID         string `json:"id"`
	Filename   string `json:"filename"`
	Path       string `json:"filepath"`
	UploadTime string `json:"upload_time"`
	Category   string `json:"category"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Size       int64  `json:"size"`
	Camera     string `json:"camera,omitempty"`
	TakenAt    string `json:"taken_at,omitempty"`
}
