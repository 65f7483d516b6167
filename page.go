package htmlprint

import (
	"fmt"
	"math"
	"strings"

	"github.com/porticus-lab/go-html-print/docx"
	"github.com/porticus-lab/go-html-print/imagefit"
)

// PageSize represents paper dimensions in PostScript points (1/72 inch).
type PageSize struct {
	Width  float64 // Width in points.
	Height float64 // Height in points.
}

// Standard paper sizes.
var (
	A3      = PageSize{Width: 841.89, Height: 1190.55}
	A4      = PageSize{Width: 595.28, Height: 841.89}
	A5      = PageSize{Width: 419.53, Height: 595.28}
	Letter  = PageSize{Width: 612, Height: 792}
	Legal   = PageSize{Width: 612, Height: 1008}
	Tabloid = PageSize{Width: 792, Height: 1224}
)

var pageSizes = map[string]PageSize{
	"a3":      A3,
	"a4":      A4,
	"a5":      A5,
	"letter":  Letter,
	"legal":   Legal,
	"tabloid": Tabloid,
}

// ParsePageSize looks up a standard paper size by name, e.g. "A4" or
// "letter". The empty string is A4.
func ParsePageSize(name string) (PageSize, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return A4, nil
	}
	size, ok := pageSizes[name]
	if !ok {
		return PageSize{}, fmt.Errorf("htmlprint: unknown page size %q", name)
	}
	return size, nil
}

// Orientation represents the page orientation.
type Orientation int

const (
	// Portrait is the default vertical orientation.
	Portrait Orientation = iota
	// Landscape rotates the page to horizontal orientation.
	Landscape
)

// ParseOrientation parses "portrait" or "landscape". The empty string is
// [Portrait].
func ParseOrientation(name string) (Orientation, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "portrait":
		return Portrait, nil
	case "landscape":
		return Landscape, nil
	}
	return Portrait, fmt.Errorf("htmlprint: unknown orientation %q", name)
}

// Margin represents page margins in points.
type Margin struct {
	Top    float64
	Right  float64
	Bottom float64
	Left   float64
}

// UniformMargin returns a Margin with the same value on all sides.
func UniformMargin(pt float64) Margin {
	return Margin{Top: pt, Right: pt, Bottom: pt, Left: pt}
}

// DefaultMargin is 40pt top and bottom, 20pt left and right.
var DefaultMargin = Margin{Top: 40, Right: 20, Bottom: 40, Left: 20}

// PageConfig controls the page layout shared by every output format.
//
// A nil PageConfig or zero-value fields will use sensible defaults:
// A4 paper, portrait orientation, [DefaultMargin], scale 1.0, with
// background graphics enabled.
type PageConfig struct {
	// Size specifies the paper size. Defaults to A4.
	Size PageSize

	// Orientation specifies portrait or landscape. Defaults to Portrait.
	Orientation Orientation

	// Margin specifies page margins in points. Defaults to [DefaultMargin].
	Margin Margin

	// Scale of the webpage rendering. Must be between 0.1 and 2.0. Defaults to 1.0.
	Scale float64

	// PrintBackground enables printing of background colors and images.
	// Defaults to true.
	PrintBackground bool

	// DisplayHeaderFooter enables the header and footer templates.
	DisplayHeaderFooter bool

	// HeaderTemplate is an HTML template for the print header.
	// It uses the same format as Chrome's print header template, supporting
	// the classes: date, title, url, pageNumber, totalPages.
	HeaderTemplate string

	// FooterTemplate is an HTML template for the print footer.
	FooterTemplate string

	// PreferCSSPageSize gives precedence to any CSS @page size declared
	// in the document over the Size field.
	PreferCSSPageSize bool
}

// DefaultPageConfig returns a PageConfig with sensible defaults.
func DefaultPageConfig() PageConfig {
	return PageConfig{
		Size:            A4,
		Orientation:     Portrait,
		Margin:          DefaultMargin,
		Scale:           1.0,
		PrintBackground: true,
	}
}

// resolved returns a PageConfig with all zero values replaced by defaults.
func (p *PageConfig) resolved() PageConfig {
	d := DefaultPageConfig()
	if p == nil {
		return d
	}
	r := *p
	if r.Size == (PageSize{}) {
		r.Size = d.Size
	}
	if r.Scale <= 0 {
		r.Scale = d.Scale
	}
	if r.Margin == (Margin{}) {
		r.Margin = d.Margin
	}
	return r
}

// pointsToInches converts points to inches.
func pointsToInches(pt float64) float64 {
	return pt / 72
}

// paperPoints returns the paper width and height in points, accounting
// for orientation.
func (p *PageConfig) paperPoints() (width, height float64) {
	r := p.resolved()
	if r.Orientation == Landscape {
		return r.Size.Height, r.Size.Width
	}
	return r.Size.Width, r.Size.Height
}

// paperDimensions returns the paper width and height in inches.
func (p *PageConfig) paperDimensions() (width, height float64) {
	w, h := p.paperPoints()
	return pointsToInches(w), pointsToInches(h)
}

// marginInches returns margins converted to inches.
func (p *PageConfig) marginInches() (top, right, bottom, left float64) {
	r := p.resolved()
	return pointsToInches(r.Margin.Top),
		pointsToInches(r.Margin.Right),
		pointsToInches(r.Margin.Bottom),
		pointsToInches(r.Margin.Left)
}

// Canvas returns the paper size as an image canvas, rounded to whole
// points. A4 portrait yields [imagefit.A4].
func (p *PageConfig) Canvas() imagefit.Canvas {
	w, h := p.paperPoints()
	return imagefit.Canvas{Width: int(math.Round(w)), Height: int(math.Round(h))}
}

// docxOptions maps the page layout onto Word page setup.
func (p *PageConfig) docxOptions() docx.Options {
	r := p.resolved()
	o := docx.DefaultOptions()
	o.PageWidth, o.PageHeight = p.paperPoints()
	o.MarginTop, o.MarginRight = r.Margin.Top, r.Margin.Right
	o.MarginBottom, o.MarginLeft = r.Margin.Bottom, r.Margin.Left
	return o
}
