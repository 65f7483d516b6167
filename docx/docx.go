// Package docx renders an HTML fragment into a Word (.docx) document.
//
// It understands the subset of HTML produced by document editors: headings,
// paragraphs, emphasis, lists, block quotes, preformatted text, tables and
// figures with images. Images must already be embedded as data URIs; run
// the HTML through package inline first.
//
//	data, err := docx.Render(body, docx.DefaultOptions())
package docx

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"
	"golang.org/x/net/html"
)

// ErrImageFormat is returned for an embedded image Word cannot display when
// no [Options.ConvertImage] hook is set.
var ErrImageFormat = errors.New("docx: unsupported image format")

// Options controls page setup and table layout. Lengths are in points.
type Options struct {
	PageWidth    float64
	PageHeight   float64
	MarginTop    float64
	MarginRight  float64
	MarginBottom float64
	MarginLeft   float64

	// CantSplitRows keeps every table row on a single page.
	CantSplitRows bool

	// Title is stored in the document properties.
	Title string

	// ConvertImage converts an embedded image Word cannot display (for
	// example SVG or WebP) to PNG.
	ConvertImage func(data []byte, mime string) ([]byte, error)
}

// DefaultOptions returns A4 portrait with margins of 40pt top and bottom
// and 20pt left and right, and unsplittable table rows.
func DefaultOptions() Options {
	return Options{
		PageWidth:     595.28,
		PageHeight:    841.89,
		MarginTop:     40,
		MarginRight:   20,
		MarginBottom:  40,
		MarginLeft:    20,
		CantSplitRows: true,
	}
}

func (o Options) resolved() Options {
	d := DefaultOptions()
	if o.PageWidth <= 0 || o.PageHeight <= 0 {
		o.PageWidth, o.PageHeight = d.PageWidth, d.PageHeight
	}
	return o
}

// textWidth and textHeight are the printable area in points.
func (o Options) textWidth() float64 {
	return o.PageWidth - o.MarginLeft - o.MarginRight
}

func (o Options) textHeight() float64 {
	return o.PageHeight - o.MarginTop - o.MarginBottom
}

// Render converts htmlText into a .docx package. htmlText may be a full
// document or a body fragment.
func Render(htmlText string, opts Options) ([]byte, error) {
	opts = opts.resolved()
	if opts.textWidth() <= 0 || opts.textHeight() <= 0 {
		return nil, fmt.Errorf("docx: margins leave no room on a %gx%g page", opts.PageWidth, opts.PageHeight)
	}

	doc, err := html.Parse(strings.NewReader(htmlText))
	if err != nil {
		return nil, fmt.Errorf("docx: parsing html: %w", err)
	}

	b := newBuilder(opts)
	if body := findBody(doc); body != nil {
		b.blocks(body, paraProps{}, runProps{})
	}
	if b.err != nil {
		return nil, b.err
	}
	return b.pack(time.Now().UTC())
}

type part struct {
	name string
	data []byte
}

// pack writes the OOXML parts into a zip container.
func (b *builder) pack(created time.Time) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	write := func(name string, data []byte) error {
		f, err := zw.Create(name)
		if err != nil {
			return err
		}
		_, err = f.Write(data)
		return err
	}

	parts := []part{
		{"[Content_Types].xml", []byte(contentTypesXML(b.media))},
		{"_rels/.rels", []byte(packageRelsXML)},
		{"docProps/core.xml", []byte(corePropsXML(b.opts.Title, created))},
		{"word/document.xml", []byte(b.documentXML())},
		{"word/styles.xml", []byte(stylesXML)},
		{"word/_rels/document.xml.rels", []byte(documentRelsXML(b.media))},
	}
	for _, m := range b.media {
		parts = append(parts, part{"word/" + m.target(), m.data})
	}

	for _, p := range parts {
		if err := write(p.name, p.data); err != nil {
			return nil, fmt.Errorf("docx: writing %s: %w", p.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("docx: closing package: %w", err)
	}
	return buf.Bytes(), nil
}
