package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/wallview/internal/gallery"
	"github.com/desertthunder/wallview/internal/shared"
	"github.com/desertthunder/wallview/internal/ui"
	"github.com/urfave/cli/v3"
)

const tuiLogPath = "./tmp/wallview-tui.log"

// openStore returns a store over dir when set, otherwise over the SQLite index.
// The returned category is the directory's name for a folder store. release frees the store.
func (r *Runner) openStore(dir, category string) (store gallery.Store, name string, release func(), err error) {
	if dir != "" {
		ds, err := gallery.OpenDir(dir, r.logger)
		if err != nil {
			return nil, "", nil, err
		}
		return ds, ds.Name(), func() {}, nil
	}

	db, err := r.database()
	if err != nil {
		return nil, "", nil, err
	}
	return gallery.NewSQLStore(db, r.baseURL(), r.logger), category, func() { db.Close() }, nil
}

// TUI launches the interactive terminal gallery.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(tuiLogPath)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	store, category, closeStore, err := r.openStore(cmd.String("dir"), cmd.String("category"))
	if err != nil {
		return err
	}
	defer closeStore()

	model := ui.NewModel(ctx, ui.Options{
		Store:    store,
		Category: category,
		Config:   r.config,
		Logger:   r.logger,
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
