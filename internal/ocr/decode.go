// Package ocr decodes image attachments and recovers their text.
package ocr

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// MaxPixels caps the decoded size of an attachment. Compressed formats can
// describe far more pixels than their file size suggests.
const MaxPixels = 40_000_000

// ErrTooManyPixels is returned for images larger than MaxPixels.
var ErrTooManyPixels = errors.New("image exceeds pixel limit")

// Image is a raster attachment whose header has been validated. Pixel data is
// only decoded when the image has to be converted.
type Image struct {
	Format string // as registered with the image package: "png", "jpeg", "gif", "webp", "bmp", "tiff"
	Data   []byte
	Width  int
	Height int
}

// Decode identifies data as a supported raster image and checks its
// dimensions. Anything that is not a supported image format, has no pixels or
// exceeds MaxPixels is an error.
func Decode(data []byte) (*Image, error) {
	if len(data) == 0 {
		return nil, errors.New("empty attachment")
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%s image has no pixels (%dx%d)", format, cfg.Width, cfg.Height)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, fmt.Errorf("%w: %s image is %dx%d", ErrTooManyPixels, format, cfg.Width, cfg.Height)
	}
	return &Image{Format: format, Data: data, Width: cfg.Width, Height: cfg.Height}, nil
}

// MIMEType returns the image's media type.
func (i *Image) MIMEType() string {
	return "image/" + i.Format
}

// PNG returns the image encoded as PNG, reusing the original bytes when it already is one.
func (i *Image) PNG() ([]byte, error) {
	if i.Format == "png" {
		return i.Data, nil
	}
	img, _, err := image.Decode(bytes.NewReader(i.Data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s image: %w", i.Format, err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to re-encode %s image as png: %w", i.Format, err)
	}
	return buf.Bytes(), nil
}
