package docx

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"strconv"
	"strings"

	"github.com/JohannesKaufmann/dom"
	"github.com/vincent-petithory/dataurl"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	emuPerPoint = 12700
	// CSS pixels are 0.75pt.
	pointsPerPixel = 0.75
)

// nativeImages are the formats Word displays without conversion.
var nativeImages = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpeg",
	"image/gif":  "gif",
}

type media struct {
	id   int
	ext  string
	mime string
	data []byte
}

func (m media) relID() string  { return "rIdImg" + strconv.Itoa(m.id) }
func (m media) target() string { return fmt.Sprintf("media/image%d.%s", m.id, m.ext) }

// paraProps are paragraph-level properties inherited by nested blocks.
type paraProps struct {
	style  string
	align  string
	indent int // list nesting depth
	pre    bool
}

// runProps are character properties inherited by nested inline elements.
type runProps struct {
	bold, italic, underline, strike, mono bool
	vertAlign                             string
	link                                  bool
}

type paragraph struct {
	props   paraProps
	runs    bytes.Buffer
	visible bool
	border  bool
}

type builder struct {
	opts   Options
	out    *bytes.Buffer
	body   bytes.Buffer
	media  []media
	drawID int

	// prefix is the list marker for the next paragraph written.
	prefix string
	err    error
}

func newBuilder(opts Options) *builder {
	b := &builder{opts: opts}
	b.out = &b.body
	return b
}

func (b *builder) documentXML() string {
	return documentOpen + b.body.String() + sectPr(b.opts) + documentClose
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == atom.Body {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if body := findBody(c); body != nil {
			return body
		}
	}
	return nil
}

var blockElements = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Section: true, atom.Article: true,
	atom.Header: true, atom.Footer: true, atom.Main: true, atom.Nav: true,
	atom.Aside: true, atom.Address: true, atom.Figure: true, atom.Figcaption: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Ul: true, atom.Ol: true, atom.Li: true, atom.Dl: true, atom.Dt: true, atom.Dd: true,
	atom.Blockquote: true, atom.Pre: true, atom.Hr: true, atom.Table: true,
	atom.Script: true, atom.Style: true, atom.Template: true, atom.Noscript: true,
	atom.Head: true, atom.Title: true, atom.Meta: true, atom.Link: true,
}

var skipped = map[atom.Atom]bool{
	atom.Script: true, atom.Style: true, atom.Template: true, atom.Noscript: true,
	atom.Head: true, atom.Title: true, atom.Meta: true, atom.Link: true,
}

func isBlock(n *html.Node) bool {
	return n.Type == html.ElementNode && blockElements[n.DataAtom]
}

// blocks writes the children of parent as a sequence of paragraphs and
// tables. Consecutive inline children share one paragraph.
func (b *builder) blocks(parent *html.Node, pp paraProps, rp runProps) {
	var p *paragraph
	flush := func() {
		if p != nil {
			b.writeParagraph(p)
			p = nil
		}
	}
	for c := parent.FirstChild; c != nil && b.err == nil; c = c.NextSibling {
		if isBlock(c) {
			flush()
			b.block(c, pp, rp)
			continue
		}
		if p == nil {
			p = &paragraph{props: pp}
		}
		b.inline(p, c, rp)
	}
	flush()
}

func (b *builder) block(n *html.Node, pp paraProps, rp runProps) {
	if skipped[n.DataAtom] {
		return
	}
	switch n.DataAtom {
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		pp.style = "Heading" + n.Data[1:]
		b.blocks(n, pp, rp)
	case atom.Figure:
		pp.align = "center"
		b.blocks(n, pp, rp)
	case atom.Figcaption:
		pp.style = "Caption"
		b.blocks(n, pp, rp)
	case atom.Blockquote:
		pp.style = "Quote"
		b.blocks(n, pp, rp)
	case atom.Pre:
		pp.style = "Preformatted"
		pp.pre = true
		b.blocks(n, pp, rp)
	case atom.Ul, atom.Ol:
		b.list(n, pp, rp)
	case atom.Li:
		b.listItem(n, "• ", pp, rp)
	case atom.Dt:
		rp.bold = true
		b.blocks(n, pp, rp)
	case atom.Dd:
		pp.indent++
		b.blocks(n, pp, rp)
	case atom.Hr:
		b.writeParagraph(&paragraph{props: pp, border: true})
	case atom.Table:
		b.table(n, rp)
	default:
		if a := dom.GetAttributeOr(n, "align", ""); a != "" && pp.align == "" {
			pp.align = a
		}
		b.blocks(n, pp, rp)
	}
}

func (b *builder) list(n *html.Node, pp paraProps, rp runProps) {
	ordered := n.DataAtom == atom.Ol
	num := 1
	if s, err := strconv.Atoi(dom.GetAttributeOr(n, "start", "")); err == nil {
		num = s
	}
	pp.indent++
	for c := n.FirstChild; c != nil && b.err == nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.DataAtom != atom.Li {
			continue
		}
		marker := "• "
		if ordered {
			marker = strconv.Itoa(num) + ". "
			num++
		}
		b.listItem(c, marker, pp, rp)
	}
}

func (b *builder) listItem(n *html.Node, marker string, pp paraProps, rp runProps) {
	b.prefix = marker
	b.blocks(n, pp, rp)
	b.prefix = ""
}

func (b *builder) inline(p *paragraph, n *html.Node, rp runProps) {
	switch n.Type {
	case html.TextNode:
		b.text(p, n.Data, rp)
		return
	case html.ElementNode:
	default:
		return
	}
	if skipped[n.DataAtom] {
		return
	}

	switch n.DataAtom {
	case atom.Br:
		p.runs.WriteString(`<w:r><w:br/></w:r>`)
		p.visible = true
		return
	case atom.Img:
		b.image(p, n)
		return
	case atom.Strong, atom.B:
		rp.bold = true
	case atom.Em, atom.I, atom.Cite, atom.Var:
		rp.italic = true
	case atom.U, atom.Ins:
		rp.underline = true
	case atom.S, atom.Strike, atom.Del:
		rp.strike = true
	case atom.Code, atom.Kbd, atom.Samp, atom.Tt:
		rp.mono = true
	case atom.Sup:
		rp.vertAlign = "superscript"
	case atom.Sub:
		rp.vertAlign = "subscript"
	case atom.A:
		rp.link = dom.GetAttributeOr(n, "href", "") != ""
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.inline(p, c, rp)
	}
}

func (b *builder) text(p *paragraph, s string, rp runProps) {
	if p.props.pre {
		lines := strings.Split(s, "\n")
		for i, line := range lines {
			if i > 0 {
				p.runs.WriteString(`<w:r><w:br/></w:r>`)
			}
			if line != "" {
				writeRun(&p.runs, line, rp)
			}
		}
		p.visible = p.visible || strings.TrimSpace(s) != ""
		return
	}

	s = collapseSpace(s)
	if !p.visible {
		s = strings.TrimLeft(s, " ")
	}
	if s == "" {
		return
	}
	writeRun(&p.runs, s, rp)
	p.visible = true
}

func collapseSpace(s string) string {
	var sb strings.Builder
	space := false
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r', '\f':
			if !space {
				sb.WriteByte(' ')
			}
			space = true
		default:
			sb.WriteRune(r)
			space = false
		}
	}
	return sb.String()
}

func writeRun(buf *bytes.Buffer, s string, rp runProps) {
	buf.WriteString(`<w:r>`)
	if rPr := rp.xml(); rPr != "" {
		buf.WriteString(rPr)
	}
	buf.WriteString(`<w:t xml:space="preserve">`)
	buf.WriteString(escape(s))
	buf.WriteString(`</w:t></w:r>`)
}

func (rp runProps) xml() string {
	var sb strings.Builder
	if rp.link {
		sb.WriteString(`<w:rStyle w:val="Hyperlink"/>`)
	}
	if rp.mono {
		sb.WriteString(`<w:rFonts w:ascii="Courier New" w:hAnsi="Courier New" w:cs="Courier New"/>`)
	}
	if rp.bold {
		sb.WriteString(`<w:b/>`)
	}
	if rp.italic {
		sb.WriteString(`<w:i/>`)
	}
	if rp.strike {
		sb.WriteString(`<w:strike/>`)
	}
	if rp.underline {
		sb.WriteString(`<w:u w:val="single"/>`)
	}
	if rp.vertAlign != "" {
		sb.WriteString(`<w:vertAlign w:val="` + rp.vertAlign + `"/>`)
	}
	if sb.Len() == 0 {
		return ""
	}
	return "<w:rPr>" + sb.String() + "</w:rPr>"
}

func (b *builder) writeParagraph(p *paragraph) {
	if !p.visible && !p.border {
		return
	}
	out := b.out
	out.WriteString(`<w:p>`)

	var pPr strings.Builder
	if p.props.style != "" {
		pPr.WriteString(`<w:pStyle w:val="` + p.props.style + `"/>`)
	}
	if p.border {
		pPr.WriteString(`<w:pBdr><w:bottom w:val="single" w:sz="6" w:space="1" w:color="A8AEB2"/></w:pBdr>`)
	}
	if p.props.indent > 0 {
		fmt.Fprintf(&pPr, `<w:ind w:left="%d" w:hanging="360"/>`, 360*p.props.indent)
	}
	if jc := justification(p.props.align); jc != "" {
		pPr.WriteString(`<w:jc w:val="` + jc + `"/>`)
	}
	if pPr.Len() > 0 {
		out.WriteString(`<w:pPr>` + pPr.String() + `</w:pPr>`)
	}

	if b.prefix != "" {
		writeRun(out, b.prefix, runProps{})
		b.prefix = ""
	}
	out.Write(p.runs.Bytes())
	out.WriteString(`</w:p>`)
}

func justification(align string) string {
	switch strings.ToLower(strings.TrimSpace(align)) {
	case "center", "middle":
		return "center"
	case "right":
		return "right"
	case "justify":
		return "both"
	default:
		return ""
	}
}

func (b *builder) table(n *html.Node, rp runProps) {
	type row struct {
		node   *html.Node
		header bool
	}
	var rows []row
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch {
		case c.Type != html.ElementNode:
		case c.DataAtom == atom.Tr:
			rows = append(rows, row{node: c})
		case c.DataAtom == atom.Thead || c.DataAtom == atom.Tbody || c.DataAtom == atom.Tfoot:
			for r := c.FirstChild; r != nil; r = r.NextSibling {
				if r.Type == html.ElementNode && r.DataAtom == atom.Tr {
					rows = append(rows, row{node: r, header: c.DataAtom == atom.Thead})
				}
			}
		}
	}
	if len(rows) == 0 {
		return
	}

	cols := 1
	for _, r := range rows {
		span := 0
		for _, c := range cells(r.node) {
			span += colspan(c)
		}
		cols = max(cols, span)
	}
	width := twips(b.opts.textWidth())
	colWidth := width / cols

	out := b.out
	out.WriteString(`<w:tbl><w:tblPr>`)
	fmt.Fprintf(out, `<w:tblW w:w="%d" w:type="dxa"/><w:jc w:val="center"/>`, width)
	out.WriteString(`<w:tblBorders>`)
	for _, side := range []string{"top", "left", "bottom", "right", "insideH", "insideV"} {
		out.WriteString(`<w:` + side + ` w:val="single" w:sz="4" w:space="0" w:color="A8AEB2"/>`)
	}
	out.WriteString(`</w:tblBorders><w:tblLayout w:type="fixed"/>`)
	out.WriteString(`<w:tblCellMar><w:top w:w="100" w:type="dxa"/><w:left w:w="200" w:type="dxa"/>` +
		`<w:bottom w:w="100" w:type="dxa"/><w:right w:w="200" w:type="dxa"/></w:tblCellMar></w:tblPr><w:tblGrid>`)
	for i := 0; i < cols; i++ {
		fmt.Fprintf(out, `<w:gridCol w:w="%d"/>`, colWidth)
	}
	out.WriteString(`</w:tblGrid>`)

	cellPP := paraProps{align: "center"}
	for _, r := range rows {
		out.WriteString(`<w:tr>`)
		var trPr string
		if b.opts.CantSplitRows {
			trPr += `<w:cantSplit/>`
		}
		if r.header {
			trPr += `<w:tblHeader/>`
		}
		if trPr != "" {
			out.WriteString(`<w:trPr>` + trPr + `</w:trPr>`)
		}

		used := 0
		for _, c := range cells(r.node) {
			span := min(colspan(c), cols-used)
			if span < 1 {
				break
			}
			used += span
			crp := rp
			if c.DataAtom == atom.Th || r.header {
				crp.bold = true
			}
			b.cell(c, span, colWidth, cellPP, crp)
		}
		// Word needs the grid filled on every row.
		for ; used < cols; used++ {
			fmt.Fprintf(out, `<w:tc><w:tcPr><w:tcW w:w="%d" w:type="dxa"/></w:tcPr><w:p/></w:tc>`, colWidth)
		}
		out.WriteString(`</w:tr>`)
	}
	out.WriteString(`</w:tbl>`)
}

func (b *builder) cell(n *html.Node, span, colWidth int, pp paraProps, rp runProps) {
	var buf bytes.Buffer
	saved := b.out
	b.out = &buf
	b.blocks(n, pp, rp)
	b.out = saved

	content := buf.String()
	if content == "" || strings.HasSuffix(content, "</w:tbl>") {
		content += `<w:p/>`
	}

	out := b.out
	out.WriteString(`<w:tc><w:tcPr>`)
	fmt.Fprintf(out, `<w:tcW w:w="%d" w:type="dxa"/>`, colWidth*span)
	if span > 1 {
		fmt.Fprintf(out, `<w:gridSpan w:val="%d"/>`, span)
	}
	out.WriteString(`<w:vAlign w:val="center"/></w:tcPr>`)
	out.WriteString(content)
	out.WriteString(`</w:tc>`)
}

func cells(tr *html.Node) []*html.Node {
	var out []*html.Node
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.DataAtom == atom.Td || c.DataAtom == atom.Th) {
			out = append(out, c)
		}
	}
	return out
}

func colspan(n *html.Node) int {
	if s, err := strconv.Atoi(dom.GetAttributeOr(n, "colspan", "")); err == nil && s > 0 {
		return s
	}
	return 1
}

// image embeds a data URI <img> as an inline picture.
func (b *builder) image(p *paragraph, n *html.Node) {
	src := strings.TrimSpace(dom.GetAttributeOr(n, "src", ""))
	du, err := dataurl.DecodeString(src)
	if err != nil {
		b.err = fmt.Errorf("docx: image %.40q is not an embedded data URI: %w", src, err)
		return
	}
	data, mime := du.Data, du.ContentType()

	ext, ok := nativeImages[mime]
	if !ok {
		if b.opts.ConvertImage == nil {
			b.err = fmt.Errorf("%w: %s", ErrImageFormat, mime)
			return
		}
		data, err = b.opts.ConvertImage(data, mime)
		if err != nil {
			b.err = fmt.Errorf("docx: converting %s image: %w", mime, err)
			return
		}
		mime, ext = "image/png", "png"
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		b.err = fmt.Errorf("docx: reading %s image: %w", mime, err)
		return
	}
	cx, cy := b.extent(cfg.Width, cfg.Height)

	b.drawID++
	m := media{id: len(b.media) + 1, ext: ext, mime: mime, data: data}
	b.media = append(b.media, m)

	alt := dom.GetAttributeOr(n, "alt", "")
	fmt.Fprintf(&p.runs, `<w:r><w:drawing><wp:inline distT="0" distB="0" distL="0" distR="0">`+
		`<wp:extent cx="%[1]d" cy="%[2]d"/><wp:docPr id="%[3]d" name="Picture %[3]d" descr="%[4]s"/>`+
		`<wp:cNvGraphicFramePr><a:graphicFrameLocks noChangeAspect="1"/></wp:cNvGraphicFramePr>`+
		`<a:graphic><a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/picture">`+
		`<pic:pic><pic:nvPicPr><pic:cNvPr id="%[3]d" name="image%[5]d.%[6]s"/><pic:cNvPicPr/></pic:nvPicPr>`+
		`<pic:blipFill><a:blip r:embed="%[7]s"/><a:stretch><a:fillRect/></a:stretch></pic:blipFill>`+
		`<pic:spPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="%[1]d" cy="%[2]d"/></a:xfrm>`+
		`<a:prstGeom prst="rect"><a:avLst/></a:prstGeom></pic:spPr></pic:pic>`+
		`</a:graphicData></a:graphic></wp:inline></w:drawing></w:r>`,
		cx, cy, b.drawID, escape(alt), m.id, m.ext, m.relID())
	p.visible = true
}

// extent converts a pixel size to EMUs, shrinking it to the text area.
func (b *builder) extent(w, h int) (cx, cy int64) {
	pw := float64(w) * pointsPerPixel
	ph := float64(h) * pointsPerPixel
	scale := math.Min(1, math.Min(b.opts.textWidth()/pw, b.opts.textHeight()/ph))
	return int64(math.Round(pw * scale * emuPerPoint)), int64(math.Round(ph * scale * emuPerPoint))
}

func twips(points float64) int {
	return int(math.Round(points * 20))
}

func escape(s string) string {
	var sb strings.Builder
	_ = xml.EscapeText(&sb, []byte(s))
	return sb.String()
}
