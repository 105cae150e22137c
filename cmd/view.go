package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/wallview/internal/gui"
	"github.com/desertthunder/wallview/internal/shared"
	"github.com/urfave/cli/v3"
)

// View opens the desktop viewer on a category or folder.
func (r *Runner) View(ctx context.Context, cmd *cli.Command) error {
	dir := cmd.String("dir")
	category := cmd.StringArg("category")
	if dir == "" && category == "" {
		return fmt.Errorf("%w: a category name or --dir", shared.ErrMissingArgument)
	}

	store, name, closeStore, err := r.openStore(dir, category)
	if err != nil {
		return err
	}
	defer closeStore()

	window, err := gui.New(gui.Options{
		Store:    store,
		Category: name,
		Config:   r.config,
		Mobile:   cmd.Bool("touch"),
		Logger:   r.logger,
	})
	if err != nil {
		return err
	}
	return window.Run(ctx)
}
