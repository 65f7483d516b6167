package htmlprint

import (
	"context"
	"errors"
	"fmt"

	"github.com/porticus-lab/go-html-print/docx"
	"github.com/porticus-lab/go-html-print/inline"
)

// Renderer turns a prepared HTML page into one output document.
// Implementations must not modify the HTML they are given.
type Renderer interface {
	Format() Format
	Render(ctx context.Context, htmlText string) (*Result, error)
}

// PDFRenderer prints the page with headless Chrome.
type PDFRenderer struct {
	Converter *Converter
	// Page controls paper size and margins. Nil means [DefaultPageConfig].
	Page *PageConfig
}

// Format implements [Renderer].
func (r PDFRenderer) Format() Format { return FormatPDF }

// Render implements [Renderer].
func (r PDFRenderer) Render(ctx context.Context, htmlText string) (*Result, error) {
	if r.Converter == nil {
		return nil, errors.New("htmlprint: pdf renderer has no converter")
	}
	return r.Converter.ConvertHTML(ctx, htmlText, r.Page)
}

// WordRenderer writes a .docx document. Table rows never split across
// pages. Embedded images Word cannot display are converted to PNG.
type WordRenderer struct {
	// Page controls paper size and margins. Nil means [DefaultPageConfig].
	Page  *PageConfig
	Title string
}

// Format implements [Renderer].
func (r WordRenderer) Format() Format { return FormatDOCX }

// Render implements [Renderer].
func (r WordRenderer) Render(ctx context.Context, htmlText string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	opts := r.Page.docxOptions()
	opts.Title = r.Title
	opts.ConvertImage = func(data []byte, _ string) ([]byte, error) {
		return inline.RasterizePNG(data)
	}

	data, err := docx.Render(htmlText, opts)
	if err != nil {
		return nil, fmt.Errorf("htmlprint: rendering docx: %w", err)
	}
	return &Result{data: data, format: FormatDOCX}, nil
}
