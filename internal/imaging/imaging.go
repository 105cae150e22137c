// Package imaging reads image metadata and produces thumbnails.
package imaging

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"io"
	"os"
	"time"

	"github.com/desertthunder/wallview/internal/shared"
	"github.com/rwcarlsen/goexif/exif"
	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"  // Register BMP decoder
	_ "golang.org/x/image/webp" // Register WebP decoder
)

// Info holds metadata about an image file.
type Info struct {
	Path    string
	Format  string
	Width   int
	Height  int
	Size    int64
	ModTime time.Time
	// TakenAt is the EXIF capture time, zero when absent.
	TakenAt time.Time
	Camera  string
}

// Probe reads an image's dimensions and file stats without decoding the pixels.
// EXIF data is read when present and ignored otherwise.
func Probe(path string) (*Info, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer file.Close()

	config, format, err := image.DecodeConfig(file)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", shared.ErrUnsupportedImage, path, err)
	}

	stat, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("getting file stats: %w", err)
	}

	info := &Info{
		Path:    path,
		Format:  format,
		Width:   config.Width,
		Height:  config.Height,
		Size:    stat.Size(),
		ModTime: stat.ModTime(),
	}

	if format == "jpeg" {
		if _, err := file.Seek(0, io.SeekStart); err != nil {
			return nil, fmt.Errorf("seeking file for exif: %w", err)
		}
		readExif(file, info)
	}

	return info, nil
}

func readExif(r io.Reader, info *Info) {
	x, err := exif.Decode(r)
	if err != nil {
		return
	}
	if model, err := x.Get(exif.Model); err == nil {
		if s, err := model.StringVal(); err == nil {
			info.Camera = s
		}
	}
	if taken, err := x.DateTime(); err == nil {
		info.TakenAt = taken
	}
}

// Decode fully decodes the image at path.
func Decode(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", shared.ErrUnsupportedImage, path, err)
	}
	return img, nil
}

// Thumbnail scales src so its longest edge is at most max pixels, preserving aspect ratio.
// Images already within bounds are returned unchanged.
func Thumbnail(src image.Image, max int) (image.Image, error) {
	if max <= 0 {
		return nil, errors.New("thumbnail size must be positive")
	}

	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= max && h <= max {
		return src, nil
	}

	tw, th := Fit(w, h, max)
	dst := image.NewRGBA(image.Rect(0, 0, tw, th))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst, nil
}

// Fit returns w×h scaled so the longest edge equals size. Each edge is at least 1.
func Fit(w, h, size int) (int, int) {
	if w >= h {
		return size, max(1, h*size/w)
	}
	return max(1, w*size/h), size
}
