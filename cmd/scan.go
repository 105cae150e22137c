package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/desertthunder/wallview/internal/repositories"
	"github.com/desertthunder/wallview/internal/shared"
	"github.com/desertthunder/wallview/internal/tasks"
	"github.com/urfave/cli/v3"
)

type scanSummary struct {
	Category string   `json:"category"`
	Found    int      `json:"found"`
	Indexed  int      `json:"indexed"`
	Removed  int      `json:"removed"`
	Failed   []string `json:"failed,omitempty"`
}

// Scan indexes a category folder, then optionally keeps watching it.
func (r *Runner) Scan(ctx context.Context, cmd *cli.Command) error {
	name := cmd.StringArg("category")
	if name == "" {
		return fmt.Errorf("%w: category name", shared.ErrMissingArgument)
	}

	db, err := r.database()
	if err != nil {
		return err
	}
	defer db.Close()

	category, err := repositories.NewCategoryRepository(db).GetByName(name)
	if err != nil {
		return err
	}

	store := repositories.NewScanStore(repositories.NewImageRepository(db))
	scanner := tasks.NewScanner(store, tasks.ScanOptsFrom(r.config), r.logger)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	progress := make(chan tasks.ProgressUpdate, 64)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		r.logProgress(progress)
	}()

	result, err := scanner.Scan(ctx, progress, category.ID(), category.FolderPath())
	if err != nil {
		close(progress)
		wg.Wait()
		return fmt.Errorf("scan of %s failed: %w", name, err)
	}

	if err := r.writeScanResult(name, result, cmd.Bool("json")); err != nil {
		close(progress)
		wg.Wait()
		return err
	}

	if cmd.Bool("watch") {
		r.logger.Info("watching category, press Ctrl+C to stop", "category", name, "folder", category.FolderPath())
		err = scanner.Watch(ctx, progress, category.ID(), category.FolderPath(), r.config.Scan.Debounce.Duration)
	}
	close(progress)
	wg.Wait()
	return err
}

func (r *Runner) logProgress(progress <-chan tasks.ProgressUpdate) {
	for u := range progress {
		switch u.Phase {
		case tasks.Probe, tasks.Index:
			r.logger.Debug(u.Message, "phase", u.Phase, "step", u.Step, "total", u.Total)
		default:
			r.logger.Info(u.Message, "phase", u.Phase)
		}
	}
}

func (r *Runner) writeScanResult(name string, result *tasks.ScanResult, asJSON bool) error {
	summary := scanSummary{
		Category: name,
		Found:    result.Found,
		Indexed:  result.Indexed,
		Removed:  result.Removed,
	}
	for _, f := range result.Failed {
		summary.Failed = append(summary.Failed, fmt.Sprintf("%s: %v", f.Path, f.Error))
	}
	if asJSON {
		return r.writeJSON(summary, true)
	}

	r.writePlainHeader("Scan: " + name)
	r.writePlain("Found:   %d\n", summary.Found)
	r.writePlain("Indexed: %d\n", summary.Indexed)
	r.writePlain("Removed: %d\n", summary.Removed)
	if len(summary.Failed) > 0 {
		r.writePlainln("Skipped %d files:", len(summary.Failed))
		for _, f := range summary.Failed {
			r.writePlain("  ✗ %s\n", f)
		}
	}
	return nil
}
