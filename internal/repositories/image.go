package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/wallview/internal/models"
	"github.com/desertthunder/wallview/internal/shared"
)

// ImageRepository implements models.Repository[*models.PersistedImage].
type ImageRepository struct {
	db *sql.DB
}

// NewImageRepository creates a new ImageRepository with the given database connection
func NewImageRepository(db *sql.DB) *ImageRepository {
	return &ImageRepository{db: db}
}

// PageQuery selects one page of a category listing.
type PageQuery struct {
	CategoryID string
	Page       int
	PerPage    int
	Search     string
	// Ascending lists oldest first; the default is newest first.
	Ascending bool
}

const imageColumns = `id, sequence, category_id, filename, filepath, width, height, size, upload_time, sort_index, created_at, updated_at`

// Create inserts a new image row with generated ID and sequence
func (r *ImageRepository) Create(image *models.PersistedImage) error {
	if err := image.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	sequence, err := NextSequence(r.db, "images")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()

	query := `
		INSERT INTO images (` + imageColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		image.CategoryID(),
		image.Filename(),
		image.Filepath(),
		image.Width(),
		image.Height(),
		image.Size(),
		image.UploadTime().UTC(),
		image.SortIndex(),
		image.CreatedAt(),
		image.UpdatedAt(),
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s is already indexed", shared.ErrInvalidInput, image.Filepath())
	}
	if err != nil {
		return fmt.Errorf("failed to insert image: %w", err)
	}

	image.SetID(id)
	image.SetSequence(sequence)
	return nil
}

// Get retrieves an image by ID
func (r *ImageRepository) Get(id string) (*models.PersistedImage, error) {
	return r.scan(r.db.QueryRow(`SELECT `+imageColumns+` FROM images WHERE id = ?`, id))
}

// GetByPath retrieves the image indexed at path within a category
func (r *ImageRepository) GetByPath(categoryID, path string) (*models.PersistedImage, error) {
	query := `SELECT ` + imageColumns + ` FROM images WHERE category_id = ? AND filepath = ?`
	return r.scan(r.db.QueryRow(query, categoryID, path))
}

// Update stores new dimensions, size and upload time for an image
func (r *ImageRepository) Update(image *models.PersistedImage) error {
	if err := image.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	now := time.Now()
	image.SetUpdatedAt(now)

	query := `
		UPDATE images
		SET width = ?, height = ?, size = ?, upload_time = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query, image.Width(), image.Height(), image.Size(), image.UploadTime().UTC(), now, image.ID())
	if err != nil {
		return fmt.Errorf("failed to update image: %w", err)
	}
	return requireRow(result, shared.ErrImageNotFound, image.ID())
}

// Delete removes an image row by ID
func (r *ImageRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM images WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return requireRow(result, shared.ErrImageNotFound, id)
}

// List retrieves images ordered by sort index. Supported criteria: "category_id" and "filename".
func (r *ImageRepository) List(criteria map[string]any) ([]*models.PersistedImage, error) {
	query := `SELECT ` + imageColumns + ` FROM images WHERE 1 = 1`
	args := []any{}

	if categoryID, ok := criteria["category_id"].(string); ok && categoryID != "" {
		query += " AND category_id = ?"
		args = append(args, categoryID)
	}

	if filename, ok := criteria["filename"].(string); ok && filename != "" {
		query += " AND filename = ?"
		args = append(args, filename)
	}

	query += " ORDER BY sort_index ASC, sequence ASC"
	return r.query(query, args...)
}

// ListPage returns one page of a category and the total number of matching images.
//
// Search matches file names by substring. Pages are ordered by sort index, so
// the newest upload comes first unless q.Ascending is set.
func (r *ImageRepository) ListPage(q PageQuery) ([]*models.PersistedImage, int, error) {
	page, perPage := shared.ClampPage(q.Page, q.PerPage)

	where := " WHERE category_id = ?"
	args := []any{q.CategoryID}
	if q.Search != "" {
		where += ` AND filename LIKE ? ESCAPE '\'`
		args = append(args, "%"+escapeLike(q.Search)+"%")
	}

	var total int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM images`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count images: %w", err)
	}

	// sort_index 1 is the newest upload.
	order := " ORDER BY sort_index ASC"
	if q.Ascending {
		order = " ORDER BY sort_index DESC"
	}

	query := `SELECT ` + imageColumns + ` FROM images` + where + order + ` LIMIT ? OFFSET ?`
	images, err := r.query(query, append(args, perPage, (page-1)*perPage)...)
	if err != nil {
		return nil, 0, err
	}
	return images, total, nil
}

// Detail returns an image together with its category name.
func (r *ImageRepository) Detail(id string) (*models.PersistedImage, string, error) {
	query := `
		SELECT i.id, i.sequence, i.category_id, i.filename, i.filepath, i.width, i.height, i.size,
		       i.upload_time, i.sort_index, i.created_at, i.updated_at, c.name
		FROM images i
		JOIN categories c ON c.id = i.category_id
		WHERE i.id = ?
	`

	var category string
	image, err := r.scanWith(r.db.QueryRow(query, id), &category)
	if err != nil {
		return nil, "", err
	}
	return image, category, nil
}

// Paths maps every indexed file path of a category to its image ID.
func (r *ImageRepository) Paths(categoryID string) (map[string]string, error) {
	rows, err := r.db.Query(`SELECT id, filepath FROM images WHERE category_id = ?`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query image paths: %w", err)
	}
	defer rows.Close()

	paths := map[string]string{}
	for rows.Next() {
		var id, path string
		if err := rows.Scan(&id, &path); err != nil {
			return nil, fmt.Errorf("failed to scan image path: %w", err)
		}
		paths[path] = id
	}
	return paths, rows.Err()
}

// Reindex renumbers a category's sort index from 1, newest upload first.
func (r *ImageRepository) Reindex(categoryID string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.Query(`SELECT id FROM images WHERE category_id = ? ORDER BY upload_time DESC, sequence DESC`, categoryID)
	if err != nil {
		return fmt.Errorf("failed to query images: %w", err)
	}

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan image id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("row iteration error: %w", err)
	}

	stmt, err := tx.Prepare(`UPDATE images SET sort_index = ? WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare reindex: %w", err)
	}
	defer stmt.Close()

	for i, id := range ids {
		if _, err := stmt.Exec(i+1, id); err != nil {
			return fmt.Errorf("failed to reindex image %s: %w", id, err)
		}
	}

	return tx.Commit()
}

func (r *ImageRepository) query(query string, args ...any) ([]*models.PersistedImage, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query images: %w", err)
	}
	defer rows.Close()

	var images []*models.PersistedImage
	for rows.Next() {
		image, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		images = append(images, image)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return images, nil
}

func (r *ImageRepository) scan(row scanner) (*models.PersistedImage, error) {
	return r.scanWith(row)
}

// scanWith scans the image columns followed by any extra destinations.
func (r *ImageRepository) scanWith(row scanner, extra ...any) (*models.PersistedImage, error) {
	var (
		id         string
		sequence   int
		categoryID string
		filename   string
		path       string
		width      int
		height     int
		size       int64
		uploadTime time.Time
		sortIndex  int
		createdAt  time.Time
		updatedAt  time.Time
	)

	dest := append([]any{&id, &sequence, &categoryID, &filename, &path, &width, &height, &size, &uploadTime, &sortIndex, &createdAt, &updatedAt}, extra...)
	err := row.Scan(dest...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrImageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan image: %w", err)
	}

	image := models.NewPersistedImage(sequence, categoryID, path)
	image.SetID(id)
	image.SetDimensions(width, height)
	image.SetSize(size)
	image.SetUploadTime(uploadTime)
	image.SetSortIndex(sortIndex)
	image.SetCreatedAt(createdAt)
	image.SetUpdatedAt(updatedAt)

	return image, nil
}
