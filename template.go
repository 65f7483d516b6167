package htmlprint

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"golang.org/x/net/html"
)

//go:embed templates/page.html
var defaultShell string

const (
	// ContentPlaceholder marks where the document body is inserted.
	ContentPlaceholder = "{{content}}"
	// TitlePlaceholder is replaced by the escaped document title.
	TitlePlaceholder = "{{title}}"
)

// Template is the HTML page a body fragment is wrapped in before
// rendering. Shell must contain Placeholder exactly once.
type Template struct {
	Shell       string
	Placeholder string
}

// DefaultTemplate returns the built-in print page: bordered tables with
// rows that do not split, images capped at the page box and centered
// figures.
func DefaultTemplate() Template {
	return Template{Shell: defaultShell, Placeholder: ContentPlaceholder}
}

// LoadTemplate reads a template shell from path. The file must contain
// [ContentPlaceholder].
func LoadTemplate(path string) (Template, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Template{}, fmt.Errorf("htmlprint: reading template: %w", err)
	}
	t := Template{Shell: string(b), Placeholder: ContentPlaceholder}
	if err := t.Validate(); err != nil {
		return Template{}, err
	}
	return t, nil
}

// Validate reports whether the shell contains its placeholder exactly once.
func (t Template) Validate() error {
	if t.Placeholder == "" {
		return fmt.Errorf("%w %q", ErrTemplatePlaceholder, t.Placeholder)
	}
	if n := strings.Count(t.Shell, t.Placeholder); n != 1 {
		return fmt.Errorf("%w %q (found %d)", ErrTemplatePlaceholder, t.Placeholder, n)
	}
	return nil
}

// Wrap inserts body into the shell. The body is inserted verbatim; title
// is HTML-escaped. An empty title becomes "Document".
func (t Template) Wrap(title, body string) (string, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}
	if title == "" {
		title = "Document"
	}
	before, after, _ := strings.Cut(t.Shell, t.Placeholder)
	before = strings.ReplaceAll(before, TitlePlaceholder, html.EscapeString(title))
	after = strings.ReplaceAll(after, TitlePlaceholder, html.EscapeString(title))
	return before + body + after, nil
}
