package htmlprint

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/porticus-lab/go-html-print/inline"
)

// Pipeline inlines the images of an HTML fragment, wraps it in a page
// template and hands the result to every configured [Renderer].
//
// A Pipeline is safe for concurrent use if its renderers are.
type Pipeline struct {
	inliner   *inline.Inliner
	page      *PageConfig
	template  Template
	renderers []Renderer
	logger    *slog.Logger
	title     string
}

// PipelineOption configures a [Pipeline].
type PipelineOption func(*Pipeline)

// WithInliner sets the image inliner. Defaults to [inline.New] fitting
// images to the page set by [WithPage] and resolving them relative to the
// working directory. An inliner given here keeps its own canvas.
func WithInliner(in *inline.Inliner) PipelineOption {
	return func(p *Pipeline) {
		p.inliner = in
	}
}

// WithPage sets the page the default inliner fits images to. Pass the same
// [PageConfig] to the renderers so images and paper agree. Defaults to
// [DefaultPageConfig].
func WithPage(page *PageConfig) PipelineOption {
	return func(p *Pipeline) {
		p.page = page
	}
}

// WithTemplate sets the page template. Defaults to [DefaultTemplate].
func WithTemplate(t Template) PipelineOption {
	return func(p *Pipeline) {
		p.template = t
	}
}

// WithRenderer adds an output renderer. At most one renderer per
// [Format] is kept; a later one replaces an earlier one.
func WithRenderer(r Renderer) PipelineOption {
	return func(p *Pipeline) {
		for i, existing := range p.renderers {
			if existing.Format() == r.Format() {
				p.renderers[i] = r
				return
			}
		}
		p.renderers = append(p.renderers, r)
	}
}

// WithPipelineLogger sets the logger. Defaults to discarding output.
// A nil logger is ignored.
func WithPipelineLogger(l *slog.Logger) PipelineOption {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithTitle sets the document title used by the page template.
func WithTitle(title string) PipelineOption {
	return func(p *Pipeline) {
		p.title = title
	}
}

// NewPipeline creates a Pipeline with the given options.
func NewPipeline(opts ...PipelineOption) (*Pipeline, error) {
	p := &Pipeline{
		template: DefaultTemplate(),
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(p)
	}
	if p.inliner == nil {
		p.inliner = inline.New(
			inline.WithCanvas(p.page.Canvas()),
			inline.WithLogger(p.logger),
		)
	}
	if err := p.template.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Formats lists the formats the pipeline produces, in the order the
// renderers were added.
func (p *Pipeline) Formats() []Format {
	out := make([]Format, len(p.renderers))
	for i, r := range p.renderers {
		out[i] = r.Format()
	}
	return out
}

// Prepare inlines every image of htmlText and wraps the resulting body in
// the page template.
func (p *Pipeline) Prepare(ctx context.Context, htmlText string) (string, error) {
	p.logger.Debug("preparing document", "canvas", p.inliner.Canvas().String())
	body, err := p.inliner.Inline(ctx, htmlText)
	if err != nil {
		return "", err
	}
	return p.template.Wrap(p.title, body)
}

// Render prepares htmlText once and runs every renderer on the result
// concurrently. Results are returned in renderer order. If any renderer
// fails, no results are returned.
func (p *Pipeline) Render(ctx context.Context, htmlText string) ([]*Result, error) {
	if len(p.renderers) == 0 {
		return nil, ErrNoRenderers
	}

	page, err := p.Prepare(ctx, htmlText)
	if err != nil {
		return nil, err
	}

	results := make([]*Result, len(p.renderers))
	g, gctx := errgroup.WithContext(ctx)
	for i, r := range p.renderers {
		g.Go(func() error {
			start := time.Now()
			res, err := r.Render(gctx, page)
			if err != nil {
				return fmt.Errorf("htmlprint: %s: %w", r.Format(), err)
			}
			p.logger.Info("rendered document",
				"format", r.Format().String(),
				"bytes", res.Len(),
				"elapsed", time.Since(start))
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Convert renders htmlText and writes each document to the path given for
// its format in outputs. Files are written only after every document has
// been rendered, and each one is replaced atomically.
func (p *Pipeline) Convert(ctx context.Context, htmlText string, outputs map[Format]string) error {
	if len(p.renderers) == 0 {
		return ErrNoRenderers
	}
	for _, r := range p.renderers {
		if outputs[r.Format()] == "" {
			return fmt.Errorf("%w for %s", ErrMissingOutput, r.Format())
		}
	}

	results, err := p.Render(ctx, htmlText)
	if err != nil {
		return err
	}

	staged := make([]string, 0, len(results))
	cleanup := func() {
		for _, tmp := range staged {
			os.Remove(tmp)
		}
	}
	for _, res := range results {
		tmp, err := stage(outputs[res.Format()], res)
		if err != nil {
			cleanup()
			return err
		}
		staged = append(staged, tmp)
	}

	for i, res := range results {
		path := outputs[res.Format()]
		if err := os.Rename(staged[i], path); err != nil {
			staged = staged[i:]
			cleanup()
			return fmt.Errorf("htmlprint: writing %s: %w", path, err)
		}
		p.logger.Info("wrote document", "format", res.Format().String(), "path", path)
	}
	return nil
}

// stage writes res to a temporary file next to path and returns its name.
func stage(path string, res *Result) (string, error) {
	f, err := os.CreateTemp(filepath.Dir(path), ".htmlprint-*"+res.Format().Ext())
	if err != nil {
		return "", fmt.Errorf("htmlprint: creating temp file: %w", err)
	}
	name := f.Name()
	if _, err := res.WriteTo(f); err != nil {
		f.Close()
		os.Remove(name)
		return "", fmt.Errorf("htmlprint: writing temp file: %w", err)
	}
	if err := f.Chmod(0o644); err != nil {
		f.Close()
		os.Remove(name)
		return "", fmt.Errorf("htmlprint: writing temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(name)
		return "", fmt.Errorf("htmlprint: closing temp file: %w", err)
	}
	return name, nil
}
