package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/wallview/internal/models"
	"github.com/desertthunder/wallview/internal/shared"
)

// CategoryRepository implements models.Repository[*models.PersistedCategory].
type CategoryRepository struct {
	db *sql.DB
}

// NewCategoryRepository creates a new CategoryRepository with the given database connection
func NewCategoryRepository(db *sql.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

const categoryColumns = `id, sequence, name, folder_path, created_at, updated_at, deleted_at`

// Create inserts a new category with generated ID and sequence
func (r *CategoryRepository) Create(category *models.PersistedCategory) error {
	if err := category.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	sequence, err := NextSequence(r.db, "categories")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()

	query := `
		INSERT INTO categories (id, sequence, name, folder_path, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query, id, sequence, category.Name(), category.FolderPath(), category.CreatedAt(), category.UpdatedAt())
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: category %q or folder %q already exists", shared.ErrInvalidInput, category.Name(), category.FolderPath())
	}
	if err != nil {
		return fmt.Errorf("failed to insert category: %w", err)
	}

	category.SetID(id)
	category.SetSequence(sequence)
	return nil
}

// Get retrieves a category by ID, excluding soft-deleted categories
func (r *CategoryRepository) Get(id string) (*models.PersistedCategory, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = ? AND deleted_at IS NULL`
	return r.scan(r.db.QueryRow(query, id))
}

// GetByName retrieves a category by its display name
func (r *CategoryRepository) GetByName(name string) (*models.PersistedCategory, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE name = ? AND deleted_at IS NULL`
	return r.scan(r.db.QueryRow(query, name))
}

// Update renames a category or moves it to another folder
func (r *CategoryRepository) Update(category *models.PersistedCategory) error {
	if err := category.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	now := time.Now()
	category.SetUpdatedAt(now)

	query := `
		UPDATE categories
		SET name = ?, folder_path = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, category.Name(), category.FolderPath(), now, category.ID())
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}
	return requireRow(result, shared.ErrCategoryNotFound, category.ID())
}

// Delete soft-deletes a category by ID
func (r *CategoryRepository) Delete(id string) error {
	result, err := r.db.Exec(`UPDATE categories SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return requireRow(result, shared.ErrCategoryNotFound, id)
}

// List retrieves categories in creation order. The "name" criterion filters by exact name.
func (r *CategoryRepository) List(criteria map[string]any) ([]*models.PersistedCategory, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE deleted_at IS NULL`
	args := []any{}

	if name, ok := criteria["name"].(string); ok && name != "" {
		query += " AND name = ?"
		args = append(args, name)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []*models.PersistedCategory
	for rows.Next() {
		category, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return categories, nil
}

// scanner is satisfied by both [sql.Row] and [sql.Rows].
type scanner interface {
	Scan(dest ...any) error
}

func (r *CategoryRepository) scan(row scanner) (*models.PersistedCategory, error) {
	var (
		id         string
		sequence   int
		name       string
		folderPath string
		createdAt  time.Time
		updatedAt  time.Time
		deletedAt  sql.NullTime
	)

	err := row.Scan(&id, &sequence, &name, &folderPath, &createdAt, &updatedAt, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrCategoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan category: %w", err)
	}

	category := models.NewPersistedCategory(sequence, name, folderPath)
	category.SetID(id)
	category.SetCreatedAt(createdAt)
	category.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		category.SetDeletedAt(&deletedAt.Time)
	}

	return category, nil
}

// requireRow turns a zero-row result into notFound.
func requireRow(result sql.Result, notFound error, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", notFound, id)
	}
	return nil
}
