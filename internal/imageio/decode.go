// Package imageio decodes raw certificate photographs into rasters.
package imageio

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/h2non/filetype"

	// Extra raster formats seen from scanners and phone exports
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrEmpty is returned for a zero-length buffer
var ErrEmpty = errors.New("empty image buffer")

// Sniff returns the detected image extension, or "" when buf is not a known image kind.
func Sniff(buf []byte) string {
	if !filetype.IsImage(buf) {
		return ""
	}
	kind, err := filetype.Match(buf)
	if err != nil || kind == filetype.Unknown {
		return ""
	}
	return kind.Extension
}

// Decode decodes raw honoring EXIF orientation.
func Decode(raw []byte) (image.Image, error) {
	if len(raw) == 0 {
		return nil, ErrEmpty
	}
	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image (%s): %w", describe(raw), err)
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("decode image: zero-sized raster %dx%d", b.Dx(), b.Dy())
	}
	return img, nil
}

func describe(raw []byte) string {
	if ext := Sniff(raw); ext != "" {
		return ext
	}
	return "unknown format"
}
