// Package snapshot saves and compares rendered images.
package snapshot

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fogleman/fauxgl"
	"github.com/nfnt/resize"
	"golang.org/x/image/bmp"
	"gonum.org/v1/plot/cmpimg"
)

// Format is an image encoding.
type Format string

const (
	PNG Format = "png"
	BMP Format = "bmp"
)

// FormatFromPath returns the format matching the extension of path.
func FormatFromPath(path string) (Format, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch Format(ext) {
	case PNG, BMP:
		return Format(ext), nil
	}
	return "", fmt.Errorf("unsupported image extension %q", filepath.Ext(path))
}

// Encode writes img to w in the given format.
func Encode(w io.Writer, img image.Image, format Format) error {
	switch format {
	case PNG:
		return png.Encode(w, img)
	case BMP:
		return bmp.Encode(w, img)
	}
	return fmt.Errorf("unsupported image format %q", format)
}

// Save writes img to path, choosing the format by extension.
func Save(path string, img image.Image) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	if format == PNG {
		return fauxgl.SavePNG(path, img)
	}
	fp, err := os.Create(path)
	if err != nil {
		return err
	}
	defer fp.Close()
	if err = Encode(fp, img, format); err != nil {
		return err
	}
	return fp.Close()
}

// Downsample shrinks img by an integer factor with bilinear filtering.
// A factor of 1 or less returns img unchanged.
func Downsample(img image.Image, factor int) image.Image {
	if factor <= 1 {
		return img
	}
	b := img.Bounds()
	w, h := max(b.Dx()/factor, 1), max(b.Dy()/factor, 1)
	return resize.Resize(uint(w), uint(h), img, resize.Bilinear)
}

// EqualApprox reports whether two images match within delta, a normalized
// tolerance where 0 requires a perfect match and 1 accepts anything.
func EqualApprox(a, b image.Image, delta float64) (bool, error) {
	var ba, bb bytes.Buffer
	if err := png.Encode(&ba, a); err != nil {
		return false, err
	}
	if err := png.Encode(&bb, b); err != nil {
		return false, err
	}
	return cmpimg.EqualApprox(string(PNG), ba.Bytes(), bb.Bytes(), delta)
}

// EqualFile compares img against the PNG or BMP image stored at path.
func EqualFile(path string, img image.Image, delta float64) (bool, error) {
	if _, err := FormatFromPath(path); err != nil {
		return false, err
	}
	fp, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer fp.Close()
	want, _, err := image.Decode(fp)
	if err != nil {
		return false, err
	}
	return EqualApprox(img, want, delta)
}
