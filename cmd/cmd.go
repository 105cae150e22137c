// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand handles first-run setup.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Write a default config if missing, then initialize the database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}

// categoryCommand manages the folders the gallery indexes.
func categoryCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "category",
		Aliases: []string{"cat"},
		Usage:   "Manage gallery categories",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Register a folder as a category",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "name"},
					&cli.StringArg{Name: "folder"},
				},
				Action: r.CategoryAdd,
			},
			{
				Name:  "list",
				Usage: "List categories",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.CategoryList,
			},
			{
				Name:  "remove",
				Usage: "Remove a category from the gallery (files are kept)",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "name"},
				},
				Action: r.CategoryRemove,
			},
		},
	}
}

// scanCommand indexes a category folder.
func scanCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "scan",
		Usage: "Index the images in a category folder",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "category"},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "watch",
				Aliases: []string{"w"},
				Usage:   "Keep watching the folder and rescan on changes",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output the scan summary as JSON",
			},
		},
		Action: r.Scan,
	}
}

// imagesCommand prints gallery pages and adds images to categories.
func imagesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "images",
		Usage: "Inspect indexed images",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "Print one page of a category",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "category"},
				},
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "page",
						Usage: "Page number",
						Value: 1,
					},
					&cli.IntFlag{
						Name:  "per-page",
						Usage: "Images per page (1-100)",
					},
					&cli.StringFlag{
						Name:  "search",
						Usage: "Filename filter",
					},
					&cli.StringFlag{
						Name:  "sort",
						Usage: "Upload time order: desc or asc",
						Value: "desc",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format: text, csv, markdown or json",
						Value:   "text",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write to a file instead of stdout",
					},
				},
				Action: r.ImagesList,
			},
			{
				Name:      "add",
				Usage:     "Copy image files into a category folder and index them",
				ArgsUsage: "<category> <file>...",
				Action:    r.ImagesAdd,
			},
		},
	}
}

// serveCommand runs the HTTP gallery API.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the gallery API and image files over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Listen host (defaults to server.host)",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Listen port (defaults to server.port)",
			},
			&cli.BoolFlag{
				Name:    "watch",
				Aliases: []string{"w"},
				Usage:   "Rescan category folders when their files change",
			},
		},
		Action: r.Serve,
	}
}

// tuiCommand returns the top-level TUI command for interactive browsing.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Browse categories in the terminal",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "category",
				Usage: "Open this category directly",
			},
			&cli.StringFlag{
				Name:  "dir",
				Usage: "Browse a folder without indexing it",
			},
		},
		Action: r.TUI,
	}
}

// viewCommand opens the desktop viewer.
func viewCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "view",
		Usage: "Open a category in the desktop image viewer",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "category"},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "dir",
				Usage: "View a folder without indexing it",
			},
			&cli.BoolFlag{
				Name:  "touch",
				Usage: "Use touch gestures: swipe to navigate, tap to toggle controls",
			},
		},
		Action: r.View,
	}
}
