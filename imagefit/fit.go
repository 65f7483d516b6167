// Package imagefit computes the size an image should be drawn at so that it
// fits inside a fixed page canvas without distorting its aspect ratio.
//
// Images are only ever scaled down. An image that already fits the canvas on
// both axes is returned at its natural size.
package imagefit

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidDimensions is returned when an image or canvas has a
// non-positive width or height.
var ErrInvalidDimensions = errors.New("imagefit: dimensions must be positive")

// Canvas is the target rectangle images are fitted into, in pixels (or
// points, at 72 dpi).
type Canvas struct {
	Width  int
	Height int
}

// A4 is an A4 page at 72 dpi.
var A4 = Canvas{Width: 595, Height: 842}

// Validate reports whether both canvas dimensions are positive.
func (c Canvas) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: canvas %dx%d", ErrInvalidDimensions, c.Width, c.Height)
	}
	return nil
}

func (c Canvas) String() string {
	return fmt.Sprintf("%dx%d", c.Width, c.Height)
}

// Target is the size an image should be drawn at.
type Target struct {
	Width  float64
	Height float64

	// Scaled is false when the image already fitted and Width and Height
	// equal its natural size.
	Scaled bool
}

// Pixels rounds the target to the nearest whole pixel, halves away from
// zero, rather than truncating: 400×1000 on [A4] gives 337×842, not
// 336×842. Neither axis drops below 1.
func (t Target) Pixels() (width, height int) {
	width = int(math.Round(t.Width))
	height = int(math.Round(t.Height))
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	return width, height
}

// Fits reports whether an image of the given natural size fits inside c on
// both axes.
func Fits(width, height int, c Canvas) bool {
	return width <= c.Width && height <= c.Height
}

// Fit returns the size an image of natural size width×height should be
// drawn at to fit inside c.
//
// The binding axis is chosen by comparing aspect ratios: an image at least
// as wide (relative to its height) as the canvas is constrained by width,
// otherwise by height. Equal ratios take the width path.
func Fit(width, height int, c Canvas) (Target, error) {
	if width <= 0 || height <= 0 {
		return Target{}, fmt.Errorf("%w: image %dx%d", ErrInvalidDimensions, width, height)
	}
	if err := c.Validate(); err != nil {
		return Target{}, err
	}

	w, h := float64(width), float64(height)

	// width/height >= canvasWidth/canvasHeight, without float rounding.
	if int64(width)*int64(c.Height) >= int64(c.Width)*int64(height) {
		if width > c.Width {
			cw := float64(c.Width)
			return Target{Width: cw, Height: h * cw / w, Scaled: true}, nil
		}
		return Target{Width: w, Height: h}, nil
	}

	if height > c.Height {
		ch := float64(c.Height)
		return Target{Width: w * ch / h, Height: ch, Scaled: true}, nil
	}
	return Target{Width: w, Height: h}, nil
}
