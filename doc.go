// Package htmlprint turns an HTML fragment that references local images
// into printable documents: PDF via headless Chrome, Word (.docx) and
// optionally EPUB.
//
// # Pipeline
//
// A [Pipeline] inlines every <img> as a base64 data URI scaled to fit the
// page (see package inline), wraps the body in a print [Template] and
// renders each configured format:
//
//	c, err := htmlprint.NewConverter(htmlprint.WithNoSandbox())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer c.Close()
//
//	p, err := htmlprint.NewPipeline(
//	    htmlprint.WithInliner(inline.New(inline.WithBaseDir("assets"))),
//	    htmlprint.WithRenderer(htmlprint.PDFRenderer{Converter: c}),
//	    htmlprint.WithRenderer(htmlprint.WordRenderer{}),
//	)
//	err = p.Convert(ctx, body, map[htmlprint.Format]string{
//	    htmlprint.FormatPDF:  "dist/document.pdf",
//	    htmlprint.FormatDOCX: "dist/document.docx",
//	})
//
// Nothing is written unless every image and every renderer succeeds.
//
// # HTML to PDF
//
// The [Converter] can also be used on its own. It reuses the browser
// process across conversions:
//
//	res, err := c.ConvertHTML(ctx, "<h1>Hello</h1>", nil)
//	res, err  = c.ConvertURL(ctx, "https://example.com", nil)
//	res, err  = c.ConvertFile(ctx, "report.html", nil)
//
// Use [PageConfig] to control paper size, orientation, margins, and scale.
// Lengths are in points; the default is A4 portrait with 40pt top and
// bottom and 20pt side margins.
//
// A [Result] gives flexible access to the generated bytes:
//
//	res.Bytes()                       // []byte
//	res.Base64()                      // base64 string (RFC 4648)
//	res.Reader()                      // *bytes.Reader
//	res.WriteTo(w)                    // io.WriterTo
//	res.WriteToFile("out.pdf", 0o644) // write to disk
//
// Chrome or Chromium must be available in PATH, or use [WithAutoDownload]:
//
//	c, err := htmlprint.NewConverter(htmlprint.WithAutoDownload())
package htmlprint
