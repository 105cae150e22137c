package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/desertthunder/wallview/internal/models"
	"github.com/desertthunder/wallview/internal/repositories"
	"github.com/desertthunder/wallview/internal/shared"
	"github.com/urfave/cli/v3"
)

// CategoryAdd registers a folder under a category name.
func (r *Runner) CategoryAdd(ctx context.Context, cmd *cli.Command) error {
	name := cmd.StringArg("name")
	folder := cmd.StringArg("folder")
	if name == "" || folder == "" {
		return fmt.Errorf("%w: usage: category add <name> <folder>", shared.ErrMissingArgument)
	}

	abs, err := filepath.Abs(folder)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}
	if info, err := os.Stat(abs); err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", shared.ErrInvalidArgument, abs)
	}

	db, err := r.database()
	if err != nil {
		return err
	}
	defer db.Close()

	category := models.NewPersistedCategory(0, name, abs)
	if err := repositories.NewCategoryRepository(db).Create(category); err != nil {
		return err
	}

	r.logger.Info("category added", "name", name, "folder", abs, "id", category.ID())
	return r.writePlain("✓ Category %q added. Run 'wallview scan %s' to index it.\n", name, name)
}

// CategoryList prints every category.
func (r *Runner) CategoryList(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}
	defer db.Close()

	rows, err := repositories.NewCategoryRepository(db).List(nil)
	if err != nil {
		return err
	}

	categories := make([]models.Category, len(rows))
	for i, c := range rows {
		categories[i] = c.DTO()
	}
	if cmd.Bool("json") {
		return r.writeJSON(categories, true)
	}

	if len(categories) == 0 {
		return r.writePlain("No categories. Add one with 'wallview category add <name> <folder>'.\n")
	}
	r.writePlainHeader(fmt.Sprintf("Categories (%d)", len(categories)))
	for _, c := range categories {
		if err := r.writePlain("%-20s %s\n", c.Name, c.FolderPath); err != nil {
			return err
		}
	}
	return nil
}

// CategoryRemove soft-deletes a category. Its files and image rows are left alone.
func (r *Runner) CategoryRemove(ctx context.Context, cmd *cli.Command) error {
	name := cmd.StringArg("name")
	if name == "" {
		return fmt.Errorf("%w: category name", shared.ErrMissingArgument)
	}

	db, err := r.database()
	if err != nil {
		return err
	}
	defer db.Close()

	repo := repositories.NewCategoryRepository(db)
	category, err := repo.GetByName(name)
	if err != nil {
		return err
	}
	if err := repo.Delete(category.ID()); err != nil {
		return err
	}

	r.logger.Info("category removed", "name", name)
	return r.writePlain("✓ Category %q removed\n", name)
}
