package models

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// PersistedCategory is a category row.
type PersistedCategory struct {
	id         string
	sequence   int
	name       string
	folderPath string
	createdAt  time.Time
	updatedAt  time.Time
	deletedAt  *time.Time
}

// NewPersistedCategory creates an unsaved category for folder.
func NewPersistedCategory(sequence int, name, folder string) *PersistedCategory {
	now := time.Now()
	return &PersistedCategory{
		sequence:   sequence,
		name:       name,
		folderPath: folder,
		createdAt:  now,
		updatedAt:  now,
	}
}

func (c *PersistedCategory) ID() string            { return c.id }
func (c *PersistedCategory) Sequence() int         { return c.sequence }
func (c *PersistedCategory) Name() string          { return c.name }
func (c *PersistedCategory) FolderPath() string    { return c.folderPath }
func (c *PersistedCategory) CreatedAt() time.Time  { return c.createdAt }
func (c *PersistedCategory) UpdatedAt() time.Time  { return c.updatedAt }
func (c *PersistedCategory) DeletedAt() *time.Time { return c.deletedAt }

func (c *PersistedCategory) SetID(id string)           { c.id = id }
func (c *PersistedCategory) SetSequence(seq int)       { c.sequence = seq }
func (c *PersistedCategory) SetName(name string)       { c.name = name }
func (c *PersistedCategory) SetFolderPath(p string)    { c.folderPath = p }
func (c *PersistedCategory) SetCreatedAt(t time.Time)  { c.createdAt = t }
func (c *PersistedCategory) SetUpdatedAt(t time.Time)  { c.updatedAt = t }
func (c *PersistedCategory) SetDeletedAt(t *time.Time) { c.deletedAt = t }

// Validate requires a name and a folder path.
func (c *PersistedCategory) Validate() error {
	if strings.TrimSpace(c.name) == "" {
		return fmt.Errorf("category name is required")
	}
	if strings.TrimSpace(c.folderPath) == "" {
		return fmt.Errorf("category folder path is required")
	}
	return nil
}

// DTO converts the row to its API shape.
func (c *PersistedCategory) DTO() Category {
	return Category{ID: c.id, Name: c.name, FolderPath: c.folderPath}
}

// PersistedImage is an indexed image file.
type PersistedImage struct {
	id         string
	sequence   int
	categoryID string
	filename   string
	filepath   string
	width      int
	height     int
	size       int64
	uploadTime time.Time
	sortIndex  int
	createdAt  time.Time
	updatedAt  time.Time
}

// NewPersistedImage creates an unsaved image row for the file at path.
// The upload time defaults to now.
func NewPersistedImage(sequence int, categoryID, path string) *PersistedImage {
	now := time.Now()
	return &PersistedImage{
		sequence:   sequence,
		categoryID: categoryID,
		filename:   filepath.Base(path),
		filepath:   path,
		uploadTime: now,
		createdAt:  now,
		updatedAt:  now,
	}
}

func (i *PersistedImage) ID() string            { return i.id }
func (i *PersistedImage) Sequence() int         { return i.sequence }
func (i *PersistedImage) CategoryID() string    { return i.categoryID }
func (i *PersistedImage) Filename() string      { return i.filename }
func (i *PersistedImage) Filepath() string      { return i.filepath }
func (i *PersistedImage) Width() int            { return i.width }
func (i *PersistedImage) Height() int           { return i.height }
func (i *PersistedImage) Size() int64           { return i.size }
func (i *PersistedImage) UploadTime() time.Time { return i.uploadTime }
func (i *PersistedImage) SortIndex() int        { return i.sortIndex }
func (i *PersistedImage) CreatedAt() time.Time  { return i.createdAt }
func (i *PersistedImage) UpdatedAt() time.Time  { return i.updatedAt }

func (i *PersistedImage) SetID(id string)           { i.id = id }
func (i *PersistedImage) SetSequence(seq int)       { i.sequence = seq }
func (i *PersistedImage) SetDimensions(w, h int)    { i.width, i.height = w, h }
func (i *PersistedImage) SetSize(n int64)           { i.size = n }
func (i *PersistedImage) SetUploadTime(t time.Time) { i.uploadTime = t }
func (i *PersistedImage) SetSortIndex(n int)        { i.sortIndex = n }
func (i *PersistedImage) SetCreatedAt(t time.Time)  { i.createdAt = t }
func (i *PersistedImage) SetUpdatedAt(t time.Time)  { i.updatedAt = t }

// Validate requires a category, a file name and a path.
func (i *PersistedImage) Validate() error {
	switch {
	case i.categoryID == "":
		return fmt.Errorf("image category is required")
	case i.filename == "" || i.filename == "." || i.filename == string(filepath.Separator):
		return fmt.Errorf("image filename is required")
	case i.filepath == "":
		return fmt.Errorf("image filepath is required")
	}
	return nil
}

// DTO converts the row to its listing shape. url is where the file is served.
func (i *PersistedImage) DTO(url string) Image {
	return Image{
		ID:         i.id,
		Filename:   i.filename,
		URL:        url,
		UploadTime: i.uploadTime.UTC().Format(TimestampLayout),
		Width:      i.width,
		Height:     i.height,
		Size:       i.size,
		SortIndex:  i.sortIndex,
		Path:       i.filepath,
	}
}
