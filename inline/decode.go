package inline

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	mimePNG = "image/png"
	mimeSVG = "image/svg+xml"
)

// Descriptor is the natural size of a decoded image and the MIME type
// sniffed from its bytes.
type Descriptor struct {
	Width  int
	Height int
	MIME   string
}

// source is a decoded image that can be drawn at any size. Vector images
// keep their icon so they are rendered at the target size rather than
// scaled from a bitmap.
type source struct {
	desc Descriptor
	img  image.Image
	icon *oksvg.SvgIcon

	// warnings are problems that did not stop decoding.
	warnings []string
}

// sniffMIME returns the bare media type of data, e.g. "image/jpeg".
func sniffMIME(data []byte) string {
	m := mimetype.Detect(data).String()
	if i := strings.Index(m, ";"); i >= 0 {
		m = m[:i]
	}
	return strings.TrimSpace(m)
}

// inlineMIME is the media type used when the original bytes are embedded
// unchanged. Anything that is not an image type falls back to PNG.
func inlineMIME(sniffed string) string {
	if strings.HasPrefix(sniffed, "image/") && strings.Count(sniffed, "/") == 1 {
		return sniffed
	}
	return mimePNG
}

func decodeSource(data []byte) (*source, error) {
	if len(data) == 0 {
		return nil, errors.New("empty image data")
	}
	mime := sniffMIME(data)
	if mime == mimeSVG {
		return decodeSVG(data)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", mime, err)
	}
	b := img.Bounds()
	return &source{
		desc: Descriptor{Width: b.Dx(), Height: b.Dy(), MIME: mime},
		img:  img,
	}, nil
}

// draw renders the source onto a new surface of w×h pixels.
func (s *source) draw(w, h int, interp xdraw.Interpolator) image.Image {
	if s.icon != nil {
		rgba := image.NewRGBA(image.Rect(0, 0, w, h))
		s.icon.SetTarget(0, 0, float64(w), float64(h))
		scanner := rasterx.NewScannerGV(w, h, rgba, rgba.Bounds())
		s.icon.Draw(rasterx.NewDasher(w, h, scanner), 1)
		return rgba
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	interp.Scale(dst, dst.Bounds(), s.img, s.img.Bounds(), xdraw.Over, nil)
	return dst
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode decodes a raster or SVG image and reports its natural size. SVG
// images are rendered at their natural size.
func Decode(data []byte) (image.Image, Descriptor, error) {
	src, err := decodeSource(data)
	if err != nil {
		return nil, Descriptor{}, err
	}
	if src.img != nil {
		return src.img, src.desc, nil
	}
	return src.draw(src.desc.Width, src.desc.Height, nil), src.desc, nil
}

// RasterizePNG re-encodes any supported image as PNG at its natural size.
func RasterizePNG(data []byte) ([]byte, error) {
	img, _, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return encodePNG(img)
}
