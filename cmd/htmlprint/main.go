// htmlprint turns an HTML fragment with local images into PDF, Word and
// EPUB documents.
//
// Usage:
//
//	htmlprint convert [options]
//	htmlprint inline [options]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	htmlprint "github.com/porticus-lab/go-html-print"
	"github.com/porticus-lab/go-html-print/internal/config"
	"github.com/porticus-lab/go-html-print/inline"
)

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stderr)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, logger := config.Load()

	var err error
	switch os.Args[1] {
	case "convert":
		err = runConvert(ctx, cfg, logger, os.Args[2:])
	case "inline":
		err = runInline(ctx, cfg, logger, os.Args[2:], os.Stdout)
	case "help", "-h", "--help":
		printUsage(os.Stdout)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		printUsage(os.Stderr)
		os.Exit(1)
	}
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `htmlprint - print HTML with local images to PDF, Word and EPUB

Usage:
  htmlprint convert [options]
  htmlprint inline [options]

Commands:
  convert   Inline images, then write every enabled output document
  inline    Inline images and print the resulting body markup

Every option defaults to its HTMLPRINT_* environment variable, which may
also be set in .env or htmlprint.env. Run "htmlprint <command> -h" for
the list of options.

Examples:
  htmlprint convert
  htmlprint convert -in report.html -assets report/ -pdf out/report.pdf -docx ""
  htmlprint convert -page letter -orientation landscape
  htmlprint inline -in assets/index.html > inlined.html
`)
}

// imageFlags registers the options shared by every command that inlines
// images.
func imageFlags(fs *flag.FlagSet, cfg *config.Config) {
	fs.StringVar(&cfg.AssetsDir, "assets", cfg.AssetsDir, "directory image paths are resolved against")
	fs.StringVar(&cfg.Input, "in", cfg.Input, "HTML input file (default: <assets>/index.html)")
	fs.DurationVar(&cfg.ImageTimeout, "image-timeout", cfg.ImageTimeout, "time limit per image, 0 for none")
	fs.StringVar(&cfg.PageSize, "page", cfg.PageSize, "paper size images are fitted to: a3, a4, a5, letter, legal, tabloid")
	fs.StringVar(&cfg.Orientation, "orientation", cfg.Orientation, "paper orientation: portrait or landscape")
	fs.IntVar(&cfg.Concurrency, "concurrency", cfg.Concurrency, "images processed in parallel")
	fs.StringVar(&cfg.Interpolation, "interp", cfg.Interpolation, "scaling kernel: nearest, approx-bilinear, bilinear, catmull-rom")
	fs.BoolVar(&cfg.AlwaysRasterize, "rasterize-all", cfg.AlwaysRasterize, "redraw every image as PNG, even when it already fits")
	fs.BoolVar(&cfg.SkipBroken, "skip-broken", cfg.SkipBroken, "leave unreadable images untouched instead of failing")
}

// pageConfig builds the page layout shared by the inliner and every
// renderer.
func pageConfig(cfg config.Config) (*htmlprint.PageConfig, error) {
	size, err := htmlprint.ParsePageSize(cfg.PageSize)
	if err != nil {
		return nil, err
	}
	orientation, err := htmlprint.ParseOrientation(cfg.Orientation)
	if err != nil {
		return nil, err
	}
	return &htmlprint.PageConfig{Size: size, Orientation: orientation}, nil
}

func newInliner(cfg config.Config, page *htmlprint.PageConfig, logger *slog.Logger) (*inline.Inliner, error) {
	interp, ok := inline.Interpolator(cfg.Interpolation)
	if !ok {
		return nil, fmt.Errorf("unknown interpolation %q", cfg.Interpolation)
	}
	opts := []inline.Option{
		inline.WithCanvas(page.Canvas()),
		inline.WithBaseDir(cfg.AssetsDir),
		inline.WithConcurrency(cfg.Concurrency),
		inline.WithImageTimeout(cfg.ImageTimeout),
		inline.WithInterpolator(interp),
		inline.WithLogger(logger),
	}
	if cfg.AlwaysRasterize {
		opts = append(opts, inline.WithAlwaysRasterize())
	}
	if cfg.SkipBroken {
		opts = append(opts, inline.WithSkipBroken())
	}
	return inline.New(opts...), nil
}

// runInline implements the "inline" command.
func runInline(ctx context.Context, cfg config.Config, logger *slog.Logger, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("inline", flag.ContinueOnError)
	imageFlags(fs, &cfg)
	output := fs.String("o", "", "write output to file (default: stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	page, err := pageConfig(cfg)
	if err != nil {
		return err
	}
	in, err := newInliner(cfg, page, logger)
	if err != nil {
		return err
	}
	src, err := os.ReadFile(cfg.InputPath())
	if err != nil {
		return err
	}
	body, err := in.Inline(ctx, string(src))
	if err != nil {
		return err
	}

	if *output == "" {
		_, err = io.WriteString(stdout, body)
		return err
	}
	return os.WriteFile(*output, []byte(body), 0o644)
}

// runConvert implements the "convert" command.
func runConvert(ctx context.Context, cfg config.Config, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	imageFlags(fs, &cfg)
	fs.StringVar(&cfg.PDF, "pdf", cfg.PDF, `PDF output path, "" to skip`)
	fs.StringVar(&cfg.DOCX, "docx", cfg.DOCX, `Word output path, "" to skip`)
	fs.StringVar(&cfg.EPUB, "epub", cfg.EPUB, `EPUB output path, "" to skip`)
	fs.StringVar(&cfg.Title, "title", cfg.Title, "document title")
	fs.StringVar(&cfg.Template, "template", cfg.Template, "HTML template file containing {{content}}")
	fs.StringVar(&cfg.ChromePath, "chrome", cfg.ChromePath, "Chrome or Chromium executable")
	fs.BoolVar(&cfg.NoSandbox, "no-sandbox", cfg.NoSandbox, "disable the Chrome sandbox")
	fs.BoolVar(&cfg.AutoDownload, "auto-download", cfg.AutoDownload, "download Chromium when none is installed")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "time limit for printing the PDF")
	if err := fs.Parse(args); err != nil {
		return err
	}

	page, err := pageConfig(cfg)
	if err != nil {
		return err
	}
	in, err := newInliner(cfg, page, logger)
	if err != nil {
		return err
	}
	opts := []htmlprint.PipelineOption{
		htmlprint.WithPage(page),
		htmlprint.WithInliner(in),
		htmlprint.WithPipelineLogger(logger),
		htmlprint.WithTitle(cfg.Title),
	}
	if cfg.Template != "" {
		tpl, err := htmlprint.LoadTemplate(cfg.Template)
		if err != nil {
			return err
		}
		opts = append(opts, htmlprint.WithTemplate(tpl))
	}

	outputs := map[htmlprint.Format]string{}
	if cfg.PDF != "" {
		conv, err := htmlprint.NewConverter(converterOptions(cfg)...)
		if err != nil {
			return err
		}
		defer conv.Close()
		opts = append(opts, htmlprint.WithRenderer(htmlprint.PDFRenderer{Converter: conv, Page: page}))
		outputs[htmlprint.FormatPDF] = cfg.PDF
	}
	if cfg.DOCX != "" {
		opts = append(opts, htmlprint.WithRenderer(htmlprint.WordRenderer{Page: page, Title: cfg.Title}))
		outputs[htmlprint.FormatDOCX] = cfg.DOCX
	}
	if cfg.EPUB != "" {
		opts = append(opts, htmlprint.WithRenderer(htmlprint.EPUBRenderer{Title: cfg.Title}))
		outputs[htmlprint.FormatEPUB] = cfg.EPUB
	}

	p, err := htmlprint.NewPipeline(opts...)
	if err != nil {
		return err
	}

	src, err := os.ReadFile(cfg.InputPath())
	if err != nil {
		return err
	}
	for _, path := range outputs {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
	}
	return p.Convert(ctx, string(src), outputs)
}

func converterOptions(cfg config.Config) []htmlprint.Option {
	opts := []htmlprint.Option{htmlprint.WithTimeout(cfg.Timeout)}
	if cfg.ChromePath != "" {
		opts = append(opts, htmlprint.WithChromePath(cfg.ChromePath))
	}
	if cfg.NoSandbox {
		opts = append(opts, htmlprint.WithNoSandbox())
	}
	if cfg.AutoDownload {
		opts = append(opts, htmlprint.WithAutoDownload())
	}
	return opts
}
