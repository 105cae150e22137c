package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/wallview/internal/models"
	"github.com/desertthunder/wallview/internal/shared"
	tu "github.com/desertthunder/wallview/internal/testing"
	"github.com/urfave/cli/v3"
)

// newTestRunner returns a runner over a fresh database file, writing to the returned buffer.
func newTestRunner(t *testing.T) (*Runner, *bytes.Buffer) {
	t.Helper()
	config := shared.DefaultConfig()
	config.Database.Path = filepath.Join(t.TempDir(), "wallview.db")
	config.Database.MaxOpenConns = 1
	config.Database.MaxIdleConns = 1

	output := &bytes.Buffer{}
	return NewRunner(RunnerOpts{
		Config: config,
		Logger: shared.NewLogger(io.Discard),
		Output: output,
	}), output
}

// run executes the CLI with args, as if typed after the program name.
func run(t *testing.T, r *Runner, args ...string) error {
	t.Helper()
	app := &cli.Command{Name: "wallview", Commands: r.register()}
	return app.Run(context.Background(), append([]string{"wallview"}, args...))
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				ConfigPath: "/test/path/config.toml",
				Logger:     logger,
				Output:     output,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
		})

		t.Run("with nil options uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
			if runner.openDB == nil {
				t.Error("expected database opener to be set")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if result := output.String(); result != expected {
				t.Errorf("expected %q, got %q", expected, result)
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			// channels cannot be marshaled to JSON
			err := runner.writeJSON(make(chan int), false)
			if err == nil || !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if result := output.String(); result != "hello world" {
				t.Errorf("expected 'hello world', got %q", result)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writePlain("test")
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		commands := NewRunner(RunnerOpts{}).register()

		var names []string
		for i, cmd := range commands {
			if cmd == nil {
				t.Fatalf("command at index %d is nil", i)
			}
			names = append(names, cmd.Name)
		}

		want := "setup category scan images serve tui view"
		if got := strings.Join(names, " "); got != want {
			t.Errorf("expected commands %q, got %q", want, got)
		}
	})

	t.Run("database", func(t *testing.T) {
		t.Run("runs migrations", func(t *testing.T) {
			runner, _ := newTestRunner(t)

			db, err := runner.database()
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			defer db.Close()

			if _, err := db.Exec("SELECT 1 FROM images LIMIT 1"); err != nil {
				t.Errorf("expected images table, got %v", err)
			}
		})

		t.Run("wraps open failures", func(t *testing.T) {
			runner, _ := newTestRunner(t)
			runner.openDB = func(string) (*sql.DB, error) { return nil, errors.New("disk on fire") }

			_, err := runner.database()
			if err == nil || !strings.Contains(err.Error(), "failed to open database") {
				t.Errorf("expected open error, got %v", err)
			}
		})
	})
}

func TestCommands(t *testing.T) {
	t.Run("setup database", func(t *testing.T) {
		runner, output := newTestRunner(t)
		dir := t.TempDir()
		configPath := filepath.Join(dir, "config.toml")
		dbPath := filepath.Join(dir, "setup.db")
		content := "[database]\npath = \"" + filepath.ToSlash(dbPath) + "\"\nmax_open_conns = 1\nmax_idle_conns = 1\n"
		if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		if err := run(t, runner, "setup", "database", "--config", configPath); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		tu.AssertFileExists(t, dbPath)
		if !strings.Contains(output.String(), "Database ready") {
			t.Errorf("expected confirmation, got %q", output.String())
		}
	})

	t.Run("category lifecycle", func(t *testing.T) {
		runner, output := newTestRunner(t)
		folder := t.TempDir()

		if err := run(t, runner, "category", "add", "nature", folder); err != nil {
			t.Fatalf("failed to add category: %v", err)
		}

		output.Reset()
		if err := run(t, runner, "category", "list", "--json"); err != nil {
			t.Fatalf("failed to list categories: %v", err)
		}
		var categories []models.Category
		if err := json.Unmarshal(output.Bytes(), &categories); err != nil {
			t.Fatalf("failed to decode %q: %v", output.String(), err)
		}
		if len(categories) != 1 || categories[0].Name != "nature" || categories[0].FolderPath != folder {
			t.Errorf("expected nature at %s, got %+v", folder, categories)
		}

		if err := run(t, runner, "category", "remove", "nature"); err != nil {
			t.Fatalf("failed to remove category: %v", err)
		}
		output.Reset()
		if err := run(t, runner, "category", "list"); err != nil {
			t.Fatalf("failed to list categories: %v", err)
		}
		if !strings.Contains(output.String(), "No categories") {
			t.Errorf("expected empty listing, got %q", output.String())
		}
	})

	t.Run("category add errors", func(t *testing.T) {
		runner, _ := newTestRunner(t)
		file := filepath.Join(t.TempDir(), "not-a-dir.txt")
		if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}

		tc := []struct {
			name string
			args []string
			want error
		}{
			{"missing folder", []string{"category", "add", "nature"}, shared.ErrMissingArgument},
			{"file instead of folder", []string{"category", "add", "nature", file}, shared.ErrInvalidArgument},
			{"remove unknown", []string{"category", "remove", "space"}, shared.ErrCategoryNotFound},
		}
		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				if err := run(t, runner, tt.args...); !errors.Is(err, tt.want) {
					t.Errorf("expected %v, got %v", tt.want, err)
				}
			})
		}
	})

	t.Run("scan and list images", func(t *testing.T) {
		runner, output := newTestRunner(t)
		folder := t.TempDir()
		tu.MustWritePNG(t, filepath.Join(folder, "dunes.png"), 16, 8)
		tu.MustWritePNG(t, filepath.Join(folder, "sub", "glacier.png"), 8, 16)
		if err := os.WriteFile(filepath.Join(folder, "notes.txt"), []byte("skip me"), 0644); err != nil {
			t.Fatal(err)
		}

		if err := run(t, runner, "category", "add", "nature", folder); err != nil {
			t.Fatalf("failed to add category: %v", err)
		}

		output.Reset()
		if err := run(t, runner, "scan", "--json", "nature"); err != nil {
			t.Fatalf("scan failed: %v", err)
		}
		var summary scanSummary
		if err := json.Unmarshal(output.Bytes(), &summary); err != nil {
			t.Fatalf("failed to decode %q: %v", output.String(), err)
		}
		if summary.Found != 2 || summary.Indexed != 2 || summary.Removed != 0 {
			t.Errorf("expected 2 found and indexed, got %+v", summary)
		}

		output.Reset()
		if err := run(t, runner, "images", "list", "--format", "csv", "nature"); err != nil {
			t.Fatalf("images list failed: %v", err)
		}
		for _, name := range []string{"dunes.png", "glacier.png"} {
			if !strings.Contains(output.String(), name) {
				t.Errorf("expected %s in listing, got %q", name, output.String())
			}
		}

		out := filepath.Join(t.TempDir(), "page.md")
		if err := run(t, runner, "images", "list", "--search", "dune", "--format", "markdown", "--output", out, "nature"); err != nil {
			t.Fatalf("images list to file failed: %v", err)
		}
		content := tu.MustReadFile(t, out)
		if !strings.Contains(content, "dunes.png") || strings.Contains(content, "glacier.png") {
			t.Errorf("expected only dunes.png in %q", content)
		}
	})

	t.Run("images list rejects bad input", func(t *testing.T) {
		runner, _ := newTestRunner(t)

		tc := []struct {
			name string
			args []string
			want error
		}{
			{"missing category", []string{"images", "list"}, shared.ErrMissingArgument},
			{"bad sort", []string{"images", "list", "--sort", "sideways", "nature"}, shared.ErrInvalidSort},
		}
		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				if err := run(t, runner, tt.args...); !errors.Is(err, tt.want) {
					t.Errorf("expected %v, got %v", tt.want, err)
				}
			})
		}
	})

	t.Run("images add copies and indexes files", func(t *testing.T) {
		runner, output := newTestRunner(t)
		folder := t.TempDir()
		src := filepath.Join(t.TempDir(), "dunes.png")
		tu.MustWritePNG(t, src, 12, 6)

		if err := run(t, runner, "category", "add", "nature", folder); err != nil {
			t.Fatalf("failed to add category: %v", err)
		}

		output.Reset()
		if err := run(t, runner, "images", "add", "nature", src); err != nil {
			t.Fatalf("images add failed: %v", err)
		}
		if !strings.Contains(output.String(), "✓ Added") || !strings.Contains(output.String(), "(12x6)") {
			t.Errorf("unexpected output %q", output.String())
		}
		if err := run(t, runner, "images", "add", "nature", src); err != nil {
			t.Fatalf("second images add failed: %v", err)
		}

		entries, err := os.ReadDir(folder)
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) != 2 {
			t.Fatalf("expected the second copy to be renamed, got %d files", len(entries))
		}

		output.Reset()
		if err := run(t, runner, "images", "list", "--format", "json", "nature"); err != nil {
			t.Fatalf("images list failed: %v", err)
		}
		for _, e := range entries {
			if !strings.Contains(output.String(), e.Name()) {
				t.Errorf("expected %s in listing, got %q", e.Name(), output.String())
			}
		}
	})

	t.Run("images add rejects bad input", func(t *testing.T) {
		runner, _ := newTestRunner(t)
		if err := run(t, runner, "category", "add", "nature", t.TempDir()); err != nil {
			t.Fatalf("failed to add category: %v", err)
		}
		notes := filepath.Join(t.TempDir(), "notes.txt")
		if err := os.WriteFile(notes, []byte("hello"), 0644); err != nil {
			t.Fatal(err)
		}

		if err := run(t, runner, "images", "add"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected missing argument, got %v", err)
		}
		if err := run(t, runner, "images", "add", "nature"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected missing argument without files, got %v", err)
		}
		if err := run(t, runner, "images", "add", "space", notes); !errors.Is(err, shared.ErrCategoryNotFound) {
			t.Errorf("expected category not found, got %v", err)
		}
		if err := run(t, runner, "images", "add", "nature", notes); err == nil {
			t.Error("expected an error when nothing was added")
		}
	})

	t.Run("scan unknown category", func(t *testing.T) {
		runner, _ := newTestRunner(t)
		if err := run(t, runner, "scan", "space"); !errors.Is(err, shared.ErrCategoryNotFound) {
			t.Errorf("expected category not found, got %v", err)
		}
	})

	t.Run("view needs a source", func(t *testing.T) {
		runner, _ := newTestRunner(t)
		if err := run(t, runner, "view"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected missing argument, got %v", err)
		}
	})
}
