package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/wallview/internal/formatter"
	"github.com/desertthunder/wallview/internal/gallery"
	"github.com/desertthunder/wallview/internal/repositories"
	"github.com/desertthunder/wallview/internal/shared"
	"github.com/desertthunder/wallview/internal/tasks"
	"github.com/urfave/cli/v3"
)

// ImagesList prints one page of a category in the requested format.
func (r *Runner) ImagesList(ctx context.Context, cmd *cli.Command) error {
	name := cmd.StringArg("category")
	if name == "" {
		return fmt.Errorf("%w: category name", shared.ErrMissingArgument)
	}

	sort, err := gallery.ParseSort(cmd.String("sort"))
	if err != nil {
		return err
	}
	perPage := int(cmd.Int("per-page"))
	if perPage == 0 {
		perPage = r.config.Gallery.PerPage
	}
	page, perPage := shared.ClampPage(int(cmd.Int("page")), perPage)

	db, err := r.database()
	if err != nil {
		return err
	}
	defer db.Close()

	store := gallery.NewSQLStore(db, r.baseURL(), r.logger)
	result, err := store.Page(gallery.Query{
		Category: name,
		Page:     page,
		PerPage:  perPage,
		Search:   cmd.String("search"),
		Sort:     sort,
	})
	if err != nil {
		return err
	}

	format := cmd.String("format")
	if out := cmd.String("output"); out != "" {
		if err := formatter.WriteFile(out, format, name, result); err != nil {
			return err
		}
		r.logger.Info("page written", "path", out, "format", format, "images", len(result.Images))
		return nil
	}
	return formatter.Write(r.output, format, name, result)
}

// ImagesAdd copies each file into the category folder and indexes it.
// Names already taken in the folder get a timestamp suffix.
func (r *Runner) ImagesAdd(ctx context.Context, cmd *cli.Command) error {
	args := cmd.Args().Slice()
	if len(args) == 0 {
		return fmt.Errorf("%w: category name", shared.ErrMissingArgument)
	}
	if len(args) == 1 {
		return fmt.Errorf("%w: at least one image file", shared.ErrMissingArgument)
	}
	name, files := args[0], args[1:]

	db, err := r.database()
	if err != nil {
		return err
	}
	defer db.Close()

	category, err := repositories.NewCategoryRepository(db).GetByName(name)
	if err != nil {
		return err
	}

	uploader := tasks.NewUploader(repositories.NewScanStore(repositories.NewImageRepository(db)), r.logger)
	var failed int
	for _, src := range files {
		info, err := uploader.UploadFile(category.ID(), category.FolderPath(), src)
		if err != nil {
			failed++
			r.logger.Error("image not added", "file", src, "error", err)
			continue
		}
		if err := r.writePlain("✓ Added %s (%dx%d)\n", info.Path, info.Width, info.Height); err != nil {
			return err
		}
	}

	if failed == len(files) {
		return fmt.Errorf("no images added to %s", name)
	}
	return nil
}

// baseURL is where the configured server serves image files.
func (r *Runner) baseURL() string {
	return fmt.Sprintf("http://%s:%d", r.config.Server.Host, r.config.Server.Port)
}
