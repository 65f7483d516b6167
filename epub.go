package htmlprint

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	epub "github.com/go-shiori/go-epub"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/porticus-lab/go-html-print/inline"
)

const epubCSS = `body { margin: 1em; line-height: 1.5; }
img { max-width: 100%; height: auto; }
table { border-collapse: collapse; text-align: center; }
table, th, td { border: 1px solid #a8aeb2; padding: 5px 10px; }
figure.image { text-align: center; margin: 1em auto; }`

// EPUBRenderer packages the prepared document as a single-section EPUB 3
// book. Embedded data URI images are stored as book resources.
type EPUBRenderer struct {
	Title  string
	Author string
}

// Format implements [Renderer].
func (r EPUBRenderer) Format() Format { return FormatEPUB }

// Render implements [Renderer].
func (r EPUBRenderer) Render(ctx context.Context, htmlText string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	title := r.Title
	if title == "" {
		title = "Document"
	}

	e, err := epub.NewEpub(title)
	if err != nil {
		return nil, fmt.Errorf("htmlprint: creating epub: %w", err)
	}
	e.SetLang("en")
	if r.Author != "" {
		e.SetAuthor(r.Author)
	}

	cssPath, err := e.AddCSS(inline.DataURI("text/css", []byte(epubCSS)), "styles.css")
	if err != nil {
		return nil, fmt.Errorf("htmlprint: adding epub stylesheet: %w", err)
	}

	body, err := epubBody(e, htmlText)
	if err != nil {
		return nil, err
	}
	if _, err := e.AddSection(body, title, "document.xhtml", cssPath); err != nil {
		return nil, fmt.Errorf("htmlprint: adding epub section: %w", err)
	}

	var buf bytes.Buffer
	if _, err := e.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("htmlprint: writing epub: %w", err)
	}
	return &Result{data: buf.Bytes(), format: FormatEPUB}, nil
}

// epubBody registers every data URI image with e, points the img at the
// stored resource and returns the body as XHTML.
func epubBody(e *epub.Epub, htmlText string) (string, error) {
	doc, err := html.Parse(strings.NewReader(htmlText))
	if err != nil {
		return "", fmt.Errorf("htmlprint: parsing html: %w", err)
	}

	body := findElement(doc, atom.Body)
	if body == nil {
		return "", nil
	}

	n := 0
	var walk func(*html.Node) error
	walk = func(node *html.Node) error {
		if node.Type == html.ElementNode && node.DataAtom == atom.Img {
			for i, a := range node.Attr {
				if a.Key != "src" || !inline.IsDataURI(a.Val) {
					continue
				}
				mime, data, err := inline.ParseDataURI(a.Val)
				if err != nil {
					return fmt.Errorf("htmlprint: epub image: %w", err)
				}
				src := strings.TrimSpace(a.Val)
				ext, ok := epubImageTypes[mime]
				if !ok {
					png, err := inline.RasterizePNG(data)
					if err != nil {
						return fmt.Errorf("htmlprint: epub image: %w", err)
					}
					src, ext = inline.DataURI("image/png", png), ".png"
				}
				n++
				name := fmt.Sprintf("image%03d%s", n, ext)
				path, err := e.AddImage(src, name)
				if err != nil {
					return fmt.Errorf("htmlprint: adding epub image %s: %w", name, err)
				}
				node.Attr[i].Val = path
			}
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			if err := walk(c); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(body); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		renderXHTML(&buf, c)
	}
	return buf.String(), nil
}

// epubImageTypes are the image core media types of EPUB 3 and their file
// extensions. Other images are converted to PNG.
var epubImageTypes = map[string]string{
	"image/png":     ".png",
	"image/jpeg":    ".jpg",
	"image/gif":     ".gif",
	"image/svg+xml": ".svg",
	"image/webp":    ".webp",
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}

// voidElements are HTML elements that must be self-closing in XHTML.
var voidElements = map[atom.Atom]bool{
	atom.Area: true, atom.Base: true, atom.Br: true, atom.Col: true,
	atom.Embed: true, atom.Hr: true, atom.Img: true, atom.Input: true,
	atom.Link: true, atom.Meta: true, atom.Source: true, atom.Wbr: true,
}

// renderXHTML renders an html.Node tree as XHTML.
func renderXHTML(buf *bytes.Buffer, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		buf.WriteString(html.EscapeString(n.Data))
	case html.ElementNode:
		if n.DataAtom == atom.Script || n.DataAtom == atom.Style {
			return
		}
		buf.WriteByte('<')
		buf.WriteString(n.Data)
		for _, a := range n.Attr {
			if a.Namespace != "" || strings.HasPrefix(a.Key, "on") {
				continue
			}
			buf.WriteByte(' ')
			buf.WriteString(a.Key)
			buf.WriteString(`="`)
			buf.WriteString(html.EscapeString(a.Val))
			buf.WriteByte('"')
		}
		if voidElements[n.DataAtom] {
			buf.WriteString("/>")
			return
		}
		buf.WriteByte('>')
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			renderXHTML(buf, c)
		}
		buf.WriteString("</")
		buf.WriteString(n.Data)
		buf.WriteByte('>')
	case html.RawNode:
		buf.WriteString(n.Data)
	}
}
