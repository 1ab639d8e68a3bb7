// Package qr renders QR code PNGs from text payloads.
//
// Matrix generation is delegated to github.com/skip2/go-qrcode at the lowest
// error-correction level, letting the library pick the smallest version that
// fits. This package only rasterises the matrix with the requested colours,
// module size and quiet zone.
package qr

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"strings"

	"github.com/skip2/go-qrcode"
)

// Look used when a request leaves a field unset.
const (
	DefaultBoxSize   = 10
	DefaultBorder    = 4
	DefaultFillColor = "black"
	DefaultBackColor = "white"
)

// Geometry limits. MaxImageSide is checked once the matrix size is known,
// since the module count depends on the payload.
const (
	MaxBoxSize   = 100
	MaxBorder    = 100
	MaxImageSide = 8192
)

// Options controls how a QR matrix is drawn.
type Options struct {
	FillColor string `json:"fill_color" yaml:"fill_color"`
	BackColor string `json:"back_color" yaml:"back_color"`
	BoxSize   int    `json:"box_size" yaml:"box_size"`
	Border    int    `json:"border" yaml:"border"`
}

// DefaultOptions returns black modules on white, 10px per module and a
// four-module quiet zone.
func DefaultOptions() Options {
	return Options{
		FillColor: DefaultFillColor,
		BackColor: DefaultBackColor,
		BoxSize:   DefaultBoxSize,
		Border:    DefaultBorder,
	}
}

// WithDefaults fills zero-valued colour fields from DefaultOptions. Box size
// and border are left alone since zero border is a legitimate choice.
func (o Options) WithDefaults() Options {
	if o.FillColor == "" {
		o.FillColor = DefaultFillColor
	}
	if o.BackColor == "" {
		o.BackColor = DefaultBackColor
	}
	return o
}

// Validate reports geometry that cannot produce an image within the limits.
func (o Options) Validate() error {
	if o.BoxSize < 1 {
		return &ValidationError{Reason: fmt.Sprintf("box size must be at least 1, got %d", o.BoxSize)}
	}
	if o.BoxSize > MaxBoxSize {
		return &ValidationError{Reason: fmt.Sprintf("box size must be at most %d, got %d", MaxBoxSize, o.BoxSize)}
	}
	if o.Border < 0 {
		return &ValidationError{Reason: fmt.Sprintf("border cannot be negative, got %d", o.Border)}
	}
	if o.Border > MaxBorder {
		return &ValidationError{Reason: fmt.Sprintf("border must be at most %d, got %d", MaxBorder, o.Border)}
	}
	return nil
}

// Encode renders payload as a PNG. It returns ErrEmptyPayload for blank
// input, a *ValidationError for geometry outside the limits and an
// *EncodingError for anything that goes wrong while rendering.
func Encode(payload string, opts Options) ([]byte, error) {
	if strings.TrimSpace(payload) == "" {
		return nil, ErrEmptyPayload
	}
	opts = opts.WithDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	fill, err := ParseColor(opts.FillColor)
	if err != nil {
		return nil, &EncodingError{Err: fmt.Errorf("fill color: %w", err)}
	}
	back, err := ParseColor(opts.BackColor)
	if err != nil {
		return nil, &EncodingError{Err: fmt.Errorf("back color: %w", err)}
	}

	code, err := qrcode.New(payload, qrcode.Low)
	if err != nil {
		return nil, &EncodingError{Err: err}
	}
	// The quiet zone is drawn by render so its width can be configured.
	code.DisableBorder = true
	bitmap := code.Bitmap()

	if side := imageSide(len(bitmap), opts.BoxSize, opts.Border); side > MaxImageSide {
		return nil, &ValidationError{Reason: fmt.Sprintf(
			"image would be %dpx wide, limit is %dpx; lower box size or border", side, MaxImageSide)}
	}

	img := render(bitmap, opts.BoxSize, opts.Border, fill, back)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, &EncodingError{Err: fmt.Errorf("png encode: %w", err)}
	}
	return buf.Bytes(), nil
}

// render draws bitmap[y][x] modules as box×box squares surrounded by border
// modules of background.
func render(bitmap [][]bool, box, border int, fill, back color.Color) image.Image {
	side := imageSide(len(bitmap), box, border)

	img := image.NewPaletted(image.Rect(0, 0, side, side), color.Palette{back, fill})
	// Index 0 (background) is the zero value, so only dark modules are painted.
	for y, row := range bitmap {
		for x, dark := range row {
			if !dark {
				continue
			}
			x0 := (x + border) * box
			y0 := (y + border) * box
			for py := y0; py < y0+box; py++ {
				for px := x0; px < x0+box; px++ {
					img.SetColorIndex(px, py, 1)
				}
			}
		}
	}
	return img
}

// imageSide is the pixel width of a square image holding modules plus the
// quiet zone on both sides.
func imageSide(modules, box, border int) int {
	return (modules + 2*border) * box
}

// WriteFile stores a rendered PNG at path.
func WriteFile(img []byte, path string) error {
	if err := os.WriteFile(path, img, 0o644); err != nil {
		return fmt.Errorf("write qr image %s: %w", path, err)
	}
	return nil
}
