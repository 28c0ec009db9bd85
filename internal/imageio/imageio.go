// Package imageio loads source images and writes cropped regions.
package imageio

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// ErrUnsupportedFormat is returned for an export extension with no encoder.
var ErrUnsupportedFormat = errors.New("imageio: unsupported format")

// Load decodes the image at path. EXIF orientation is applied so the
// selection matches what the user sees in other viewers.
func Load(path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err == nil {
		return img, nil
	}
	if !strings.EqualFold(filepath.Ext(path), ".webp") {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	f, ferr := os.Open(path)
	if ferr != nil {
		return nil, fmt.Errorf("load %s: %w", path, ferr)
	}
	defer f.Close()
	img, werr := webp.Decode(f)
	if werr != nil {
		return nil, fmt.Errorf("load %s: %w", path, errors.Join(err, werr))
	}
	return img, nil
}

// Crop returns a copy of the part of img inside r.
func Crop(img image.Image, r image.Rectangle) image.Image {
	return imaging.Crop(img, r)
}

// Writer saves regions of an image, choosing the encoder from the file
// extension.
type Writer struct {
	JPEGQuality  int
	WebPQuality  float32
	WebPLossless bool
}

// DefaultWriter returns the encoder settings used when nothing is configured.
func DefaultWriter() Writer {
	return Writer{JPEGQuality: 95, WebPQuality: 90}
}

// Write crops r out of img and saves it as name.
func (w Writer) Write(img image.Image, r image.Rectangle, name string) error {
	if r.Empty() || !r.In(img.Bounds()) {
		return fmt.Errorf("write %s: region %v outside image %v", name, r, img.Bounds())
	}
	return w.Save(Crop(img, r), name)
}

// Save encodes img to name.
func (w Writer) Save(img image.Image, name string) error {
	if dir := filepath.Dir(name); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	ext := strings.ToLower(filepath.Ext(name))
	if ext == ".webp" {
		return w.saveWebP(img, name)
	}
	if _, err := imaging.FormatFromExtension(ext); err != nil {
		return fmt.Errorf("write %s: %w %q", name, ErrUnsupportedFormat, ext)
	}
	q := w.JPEGQuality
	if q <= 0 || q > 100 {
		q = DefaultWriter().JPEGQuality
	}
	if err := imaging.Save(img, name, imaging.JPEGQuality(q)); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

func (w Writer) saveWebP(img image.Image, name string) error {
	out, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	q := w.WebPQuality
	if q <= 0 || q > 100 {
		q = DefaultWriter().WebPQuality
	}
	if err := webp.Encode(out, img, &webp.Options{Lossless: w.WebPLossless, Quality: q}); err != nil {
		if cerr := out.Close(); cerr != nil {
			return fmt.Errorf("write %s: closing file: %w", name, cerr)
		}
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("write %s: closing file: %w", name, err)
	}
	return nil
}

// Supported reports whether ext (with or without the leading dot) can be
// written.
func Supported(ext string) bool {
	ext = "." + strings.TrimPrefix(strings.ToLower(ext), ".")
	if ext == ".webp" {
		return true
	}
	_, err := imaging.FormatFromExtension(ext)
	return err == nil
}
