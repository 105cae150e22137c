package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/desertthunder/wallview/internal/gallery"
	"github.com/desertthunder/wallview/internal/repositories"
	"github.com/desertthunder/wallview/internal/server"
	"github.com/desertthunder/wallview/internal/tasks"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

// Serve runs the gallery API until interrupted.
//
// With --watch, every category folder is watched and rescanned on change
// through the same scanner the admin endpoint uses, so the two never overlap.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	host := cmd.String("host")
	if host == "" {
		host = r.config.Server.Host
	}
	port := int(cmd.Int("port"))
	if port == 0 {
		port = r.config.Server.Port
	}

	db, err := r.database()
	if err != nil {
		return err
	}
	defer db.Close()

	categories := repositories.NewCategoryRepository(db)
	store := gallery.NewSQLStore(db, "", r.logger)
	index := repositories.NewScanStore(repositories.NewImageRepository(db))
	scanner := tasks.NewScanner(index, tasks.ScanOptsFrom(r.config), r.logger)

	router := server.NewGalleryRouter(
		r.logger,
		server.NewAPI(store, r.logger),
		server.NewScanHandler(scanner, categories, r.logger),
		server.NewUploadHandler(tasks.NewUploader(index, r.logger), categories, r.logger),
	)
	srv := server.New(net.JoinHostPort(host, strconv.Itoa(port)), router, r.logger)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(ctx) })

	if cmd.Bool("watch") {
		rows, err := categories.List(nil)
		if err != nil {
			stop()
			g.Wait()
			return err
		}
		for _, c := range rows {
			g.Go(func() error {
				if err := scanner.Watch(ctx, nil, c.ID(), c.FolderPath(), r.config.Scan.Debounce.Duration); err != nil {
					return fmt.Errorf("watching %s: %w", c.Name(), err)
				}
				return nil
			})
		}
	}

	r.logger.Info("gallery API ready", "url", fmt.Sprintf("http://%s", srv.Addr()))
	return g.Wait()
}
