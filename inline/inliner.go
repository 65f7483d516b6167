// Package inline replaces the file references of <img> elements in an HTML
// document with self-contained data URIs, scaling images down to fit a page
// canvas on the way.
//
// Images that already fit are embedded byte for byte. Images that do not are
// redrawn at the size computed by [imagefit.Fit] and embedded as PNG.
//
//	in := inline.New(inline.WithBaseDir("assets"))
//	body, err := in.Inline(ctx, htmlText)
package inline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/JohannesKaufmann/dom"
	"github.com/andybalholm/cascadia"
	"github.com/porticus-lab/go-html-print/imagefit"
	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"
)

var (
	imgSelector  = cascadia.MustCompile("img")
	bodySelector = cascadia.MustCompile("body")
)

// Inliner rewrites image references into data URIs. It is safe for
// concurrent use; each call owns the document it is given.
type Inliner struct {
	cfg config
}

// New creates an Inliner with the given options.
func New(opts ...Option) *Inliner {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	return &Inliner{cfg: cfg}
}

// Canvas returns the rectangle images are fitted into.
func (in *Inliner) Canvas() imagefit.Canvas {
	return in.cfg.canvas
}

// Stats summarizes one pass over a document.
type Stats struct {
	Images    int // <img> elements found
	Inlined   int // original bytes embedded
	Redrawn   int // rescaled or rasterized to PNG
	Unchanged int // already data URIs that fit
	Skipped   int // failed and left as is (WithSkipBroken only)
}

type action int

const (
	actionUnchanged action = iota
	actionInlined
	actionRedrawn
	actionSkipped
)

type outcome struct {
	src    string
	action action
}

// Inline parses htmlText, inlines every image and returns the inner markup
// of the document body.
func (in *Inliner) Inline(ctx context.Context, htmlText string) (string, error) {
	doc, err := html.Parse(strings.NewReader(htmlText))
	if err != nil {
		return "", fmt.Errorf("inline: parsing html: %w", err)
	}
	if _, err := in.InlineDocument(ctx, doc); err != nil {
		return "", err
	}
	return BodyInner(doc)
}

// InlineDocument inlines every <img> in doc, mutating it in place. Only the
// src attribute of each element is changed.
//
// The elements are collected before any work starts and the new src values
// are written only after every image has been processed, in document order.
// If any image fails, doc is left untouched and the first error is returned.
func (in *Inliner) InlineDocument(ctx context.Context, doc *html.Node) (Stats, error) {
	if err := in.cfg.canvas.Validate(); err != nil {
		return Stats{}, fmt.Errorf("inline: %w", err)
	}

	imgs := imgSelector.MatchAll(doc)
	outcomes := make([]outcome, len(imgs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(in.cfg.concurrency)
	for i, n := range imgs {
		ref := dom.GetAttributeOr(n, "src", "")
		g.Go(func() error {
			o, err := in.inlineImage(gctx, ref)
			if err != nil {
				if !in.cfg.skipBroken || ctx.Err() != nil {
					return err
				}
				in.cfg.logger.Warn("skipping image", "ref", ref, "error", err)
				o = outcome{action: actionSkipped}
			}
			outcomes[i] = o
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Stats{}, err
	}

	st := Stats{Images: len(imgs)}
	for i, n := range imgs {
		o := outcomes[i]
		switch o.action {
		case actionInlined:
			st.Inlined++
		case actionRedrawn:
			st.Redrawn++
		case actionUnchanged:
			st.Unchanged++
		case actionSkipped:
			st.Skipped++
		}
		if o.src != "" {
			setAttr(n, "src", o.src)
		}
	}

	in.cfg.logger.Info("converted images to data URIs",
		"images", st.Images, "inlined", st.Inlined, "redrawn", st.Redrawn,
		"unchanged", st.Unchanged, "skipped", st.Skipped)
	return st, nil
}

// inlineImage produces the new src for a single reference.
func (in *Inliner) inlineImage(ctx context.Context, ref string) (outcome, error) {
	if in.cfg.imageTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, in.cfg.imageTimeout)
		defer cancel()
	}

	embedded := IsDataURI(ref)
	var data []byte
	if embedded {
		_, payload, err := ParseDataURI(ref)
		if err != nil {
			return outcome{}, imageErr(ref, KindDecode, err)
		}
		data = payload
	} else {
		b, err := in.load(ctx, ref)
		if err != nil {
			return outcome{}, imageErr(ref, KindResolve, err)
		}
		data = b
	}

	src, err := withContext(ctx, func() (*source, error) { return decodeSource(data) })
	if err != nil {
		return outcome{}, imageErr(ref, KindDecode, err)
	}
	for _, w := range src.warnings {
		in.cfg.logger.Warn("ignoring image attribute", "ref", ref, "detail", w)
	}

	target, err := imagefit.Fit(src.desc.Width, src.desc.Height, in.cfg.canvas)
	if err != nil {
		return outcome{}, imageErr(ref, KindDecode, err)
	}

	if !target.Scaled {
		if embedded && (!in.cfg.rasterizeAll || src.desc.MIME == mimePNG) {
			return outcome{action: actionUnchanged}, nil
		}
		if !in.cfg.rasterizeAll {
			in.cfg.logger.Debug("embedding image", "ref", ref, "mime", src.desc.MIME,
				"width", src.desc.Width, "height", src.desc.Height)
			return outcome{src: DataURI(inlineMIME(src.desc.MIME), data), action: actionInlined}, nil
		}
	}

	w, h := target.Pixels()
	in.cfg.logger.Info("redrawing image", "ref", ref, "width", w, "height", h)

	encoded, err := withContext(ctx, func() ([]byte, error) {
		return encodePNG(src.draw(w, h, in.cfg.interp))
	})
	if err != nil {
		return outcome{}, imageErr(ref, KindEncode, err)
	}
	return outcome{src: DataURI(mimePNG, encoded), action: actionRedrawn}, nil
}

func (in *Inliner) load(ctx context.Context, ref string) ([]byte, error) {
	rc, err := in.cfg.resolver.Resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return withContext(ctx, func() ([]byte, error) { return io.ReadAll(rc) })
}

// withContext runs fn and returns early with ctx.Err() if ctx is done first.
// fn keeps running in the background until it returns.
func withContext[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	type result struct {
		v   T
		err error
	}
	ch := make(chan result, 1)
	go func() {
		v, err := fn()
		ch <- result{v, err}
	}()
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case r := <-ch:
		return r.v, r.err
	}
}

func setAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Namespace == "" && n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// BodyInner renders the children of the document's <body> element.
func BodyInner(doc *html.Node) (string, error) {
	body := bodySelector.MatchFirst(doc)
	if body == nil {
		return "", errors.New("inline: document has no body")
	}
	var buf bytes.Buffer
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", fmt.Errorf("inline: rendering body: %w", err)
		}
	}
	return buf.String(), nil
}
