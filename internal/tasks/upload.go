package tasks

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/wallview/internal/imaging"
	"github.com/desertthunder/wallview/internal/shared"
)

// Uploader saves new image files into a category folder and indexes them.
//
// A name already taken in the folder gets a timestamp suffix, then a counter
// if that is taken too, so an upload never overwrites an existing file.
type Uploader struct {
	store  IndexStore
	logger *log.Logger
	probe  func(path string) (*imaging.Info, error)
	now    func() time.Time
}

// NewUploader creates an Uploader. A nil logger discards output.
func NewUploader(store IndexStore, logger *log.Logger) *Uploader {
	if logger == nil {
		logger = log.New(nopWriter{})
	}
	return &Uploader{store: store, logger: logger, probe: imaging.Probe, now: time.Now}
}

// Upload writes the contents of r into root under name, indexes the new file and
// renumbers the category. Files that are not decodable images are removed again.
func (u *Uploader) Upload(categoryID, root, name string, r io.Reader) (*imaging.Info, error) {
	name = cleanName(name)
	if name == "" {
		return nil, fmt.Errorf("%w: empty file name", shared.ErrInvalidInput)
	}
	if !shared.AllowedImage(name) {
		return nil, fmt.Errorf("%w: %s", shared.ErrUnsupportedImage, name)
	}

	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", root, err)
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", shared.ErrInvalidInput, root)
	}

	path, err := u.save(root, name, r)
	if err != nil {
		return nil, err
	}

	info, err := u.probe(path)
	if err != nil {
		os.Remove(path)
		return nil, err
	}
	if err := u.store.Upsert(categoryID, info); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to index %s: %w", path, err)
	}
	if err := u.store.Reindex(categoryID); err != nil {
		return info, fmt.Errorf("failed to reindex: %w", err)
	}

	u.logger.Info("image uploaded", "category", categoryID, "path", path, "size", info.Size)
	return info, nil
}

// UploadFile copies the file at src into root, keeping its base name.
func (u *Uploader) UploadFile(categoryID, root, src string) (*imaging.Info, error) {
	f, err := os.Open(src)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer f.Close()
	return u.Upload(categoryID, root, filepath.Base(src), f)
}

// save creates the first free name for name in root and copies r into it.
func (u *Uploader) save(root, name string, r io.Reader) (string, error) {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	stamp := u.now().Format("20060102150405")

	candidates := []string{name, stem + "_" + stamp + ext}
	for i := 1; ; i++ {
		var candidate string
		if i <= len(candidates) {
			candidate = candidates[i-1]
		} else {
			candidate = fmt.Sprintf("%s_%s_%d%s", stem, stamp, i-len(candidates), ext)
		}

		path := filepath.Join(root, candidate)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to create %s: %w", path, err)
		}

		if _, err := io.Copy(f, r); err != nil {
			f.Close()
			os.Remove(path)
			return "", fmt.Errorf("failed to write %s: %w", path, err)
		}
		if err := f.Close(); err != nil {
			os.Remove(path)
			return "", fmt.Errorf("failed to write %s: %w", path, err)
		}
		return path, nil
	}
}

// cleanName strips any directory part a client sent along with the file name.
func cleanName(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimSpace(name)
	if name == "." || name == ".." {
		return ""
	}
	return name
}
