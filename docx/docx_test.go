package docx

import (
	"bytes"
	"image"
	"image/png"
	"io"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vincent-petithory/dataurl"
)

func pngURI(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return dataurl.New(buf.Bytes(), "image/png").String()
}

// unpack returns the package parts by name.
func unpack(t *testing.T, data []byte) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	parts := make(map[string]string, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		b, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		parts[f.Name] = string(b)
	}
	return parts
}

func render(t *testing.T, htmlText string, opts Options) map[string]string {
	t.Helper()
	data, err := Render(htmlText, opts)
	require.NoError(t, err)
	return unpack(t, data)
}

func TestRender_PackageParts(t *testing.T) {
	opts := DefaultOptions()
	opts.Title = "Report <Q3>"
	parts := render(t, "<p>hello</p>", opts)

	for _, name := range []string{
		"[Content_Types].xml", "_rels/.rels", "docProps/core.xml",
		"word/document.xml", "word/styles.xml", "word/_rels/document.xml.rels",
	} {
		assert.Contains(t, parts, name)
	}
	assert.Contains(t, parts["docProps/core.xml"], "<dc:title>Report &lt;Q3&gt;</dc:title>")
	assert.Contains(t, parts["word/document.xml"], `<w:t xml:space="preserve">hello</w:t>`)
}

func TestRender_PageSetup(t *testing.T) {
	doc := render(t, "<p>x</p>", DefaultOptions())["word/document.xml"]
	assert.Contains(t, doc, `<w:pgSz w:w="11906" w:h="16838"/>`)
	assert.Contains(t, doc, `<w:pgMar w:top="800" w:right="400" w:bottom="800" w:left="400"`)

	landscape := DefaultOptions()
	landscape.PageWidth, landscape.PageHeight = 841.89, 595.28
	doc = render(t, "<p>x</p>", landscape)["word/document.xml"]
	assert.Contains(t, doc, `w:orient="landscape"`)
}

func TestRender_ZeroOptionsUseA4(t *testing.T) {
	doc := render(t, "<p>x</p>", Options{})["word/document.xml"]
	assert.Contains(t, doc, `<w:pgSz w:w="11906" w:h="16838"/>`)
}

func TestRender_MarginsTooLarge(t *testing.T) {
	opts := DefaultOptions()
	opts.MarginLeft, opts.MarginRight = 300, 300
	_, err := Render("<p>x</p>", opts)
	assert.Error(t, err)
}

func TestRender_Blocks(t *testing.T) {
	doc := render(t, `
		<h1>Title</h1>
		<h3>Sub</h3>
		<p>Some <b>bold</b>, <i>italic</i> and <code>code</code>.</p>
		<blockquote>quoted</blockquote>
		<pre>line one
line two</pre>
		<hr>
		<ol><li>first</li><li>second</li></ol>
		<ul><li>dot</li></ul>
		<script>ignored()</script>
	`, DefaultOptions())["word/document.xml"]

	assert.Contains(t, doc, `<w:pStyle w:val="Heading1"/>`)
	assert.Contains(t, doc, `<w:pStyle w:val="Heading3"/>`)
	assert.Contains(t, doc, `<w:rPr><w:b/></w:rPr><w:t xml:space="preserve">bold</w:t>`)
	assert.Contains(t, doc, `<w:rPr><w:i/></w:rPr><w:t xml:space="preserve">italic</w:t>`)
	assert.Contains(t, doc, `Courier New`)
	assert.Contains(t, doc, `<w:pStyle w:val="Quote"/>`)
	assert.Contains(t, doc, `<w:pStyle w:val="Preformatted"/>`)
	assert.Contains(t, doc, `line one</w:t></w:r><w:r><w:br/></w:r>`)
	assert.Contains(t, doc, `<w:pBdr>`)
	assert.Contains(t, doc, `>1. </w:t>`)
	assert.Contains(t, doc, `>2. </w:t>`)
	assert.Contains(t, doc, `>• </w:t>`)
	assert.NotContains(t, doc, "ignored")
}

func TestRender_CollapsesWhitespace(t *testing.T) {
	doc := render(t, "<p>\n   a \n\t b   </p><div>   </div>", DefaultOptions())["word/document.xml"]
	assert.Contains(t, doc, `<w:t xml:space="preserve">a b </w:t>`)
	assert.Equal(t, 1, strings.Count(doc, "<w:p>"))
}

func TestRender_EscapesText(t *testing.T) {
	doc := render(t, "<p>a &amp; b &lt; c</p>", DefaultOptions())["word/document.xml"]
	assert.Contains(t, doc, "a &amp; b &lt; c")
}

func TestRender_Table(t *testing.T) {
	const table = `<table>
		<thead><tr><th>A</th><th>B</th></tr></thead>
		<tbody>
			<tr><td colspan="2">wide</td></tr>
			<tr><td>1</td></tr>
			<tr><td><table><tr><td>inner</td></tr></table></td><td></td></tr>
		</tbody>
	</table>`

	doc := render(t, table, DefaultOptions())["word/document.xml"]
	assert.Equal(t, 5, strings.Count(doc, "<w:tr>"))
	assert.Equal(t, 5, strings.Count(doc, "<w:cantSplit/>"))
	assert.Equal(t, 1, strings.Count(doc, "<w:tblHeader/>"))
	assert.Contains(t, doc, `<w:gridSpan w:val="2"/>`)
	assert.Contains(t, doc, `</w:tbl><w:p/></w:tc>`)
	assert.Contains(t, doc, `color="A8AEB2"`)

	opts := DefaultOptions()
	opts.CantSplitRows = false
	doc = render(t, table, opts)["word/document.xml"]
	assert.NotContains(t, doc, "<w:cantSplit/>")
}

func TestRender_Image(t *testing.T) {
	parts := render(t, `<figure><img src="`+pngURI(t, 400, 200)+`" alt="chart"><figcaption>Fig 1</figcaption></figure>`, DefaultOptions())

	doc := parts["word/document.xml"]
	assert.Contains(t, doc, `<a:blip r:embed="rIdImg1"/>`)
	assert.Contains(t, doc, `descr="chart"`)
	// 400px is 300pt.
	assert.Contains(t, doc, `<wp:extent cx="3810000" cy="1905000"/>`)
	assert.Contains(t, doc, `<w:jc w:val="center"/>`)
	assert.Contains(t, doc, `<w:pStyle w:val="Caption"/>`)

	assert.Contains(t, parts, "word/media/image1.png")
	assert.Contains(t, parts["word/_rels/document.xml.rels"], `Id="rIdImg1"`)
	assert.Contains(t, parts["word/_rels/document.xml.rels"], `Target="media/image1.png"`)
	assert.Contains(t, parts["[Content_Types].xml"], `<Default Extension="png" ContentType="image/png"/>`)
}

func TestRender_ImageClampedToTextArea(t *testing.T) {
	doc := render(t, `<img src="`+pngURI(t, 2000, 1000)+`">`, DefaultOptions())["word/document.xml"]
	// Text width is 595.28-40 = 555.28pt.
	assert.Contains(t, doc, `<wp:extent cx="7052056" cy="3526028"/>`)
}

func TestRender_ImageErrors(t *testing.T) {
	_, err := Render(`<img src="img/a.png">`, DefaultOptions())
	assert.Error(t, err)

	svg := dataurl.New([]byte(`<svg xmlns="http://www.w3.org/2000/svg" width="4" height="4"/>`), "image/svg+xml").String()
	_, err = Render(`<img src="`+svg+`">`, DefaultOptions())
	assert.ErrorIs(t, err, ErrImageFormat)
}

func TestRender_ConvertImage(t *testing.T) {
	converted := pngURI(t, 8, 8)
	du, err := dataurl.DecodeString(converted)
	require.NoError(t, err)

	opts := DefaultOptions()
	var gotMIME string
	opts.ConvertImage = func(_ []byte, mime string) ([]byte, error) {
		gotMIME = mime
		return du.Data, nil
	}
	svg := dataurl.New([]byte(`<svg/>`), "image/svg+xml").String()
	parts := render(t, `<p><img src="`+svg+`"></p>`, opts)

	assert.Equal(t, "image/svg+xml", gotMIME)
	assert.Contains(t, parts, "word/media/image1.png")
}

func TestExtent(t *testing.T) {
	b := newBuilder(DefaultOptions())
	cx, cy := b.extent(100, 100)
	assert.Equal(t, int64(75*emuPerPoint), cx)
	assert.Equal(t, int64(75*emuPerPoint), cy)
}
