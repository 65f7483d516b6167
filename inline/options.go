package inline

import (
	"log/slog"
	"time"

	"github.com/porticus-lab/go-html-print/imagefit"
	xdraw "golang.org/x/image/draw"
)

// config holds internal configuration for an Inliner.
type config struct {
	canvas       imagefit.Canvas
	resolver     Resolver
	concurrency  int
	imageTimeout time.Duration
	interp       xdraw.Interpolator
	rasterizeAll bool
	skipBroken   bool
	logger       *slog.Logger
}

func defaultConfig() config {
	return config{
		canvas:      imagefit.A4,
		resolver:    DirResolver("."),
		concurrency: 1,
		interp:      xdraw.BiLinear,
		logger:      slog.New(slog.DiscardHandler),
	}
}

// Option configures an [Inliner].
type Option func(*config)

// WithCanvas sets the rectangle images are fitted into. Defaults to
// [imagefit.A4].
func WithCanvas(c imagefit.Canvas) Option {
	return func(cfg *config) {
		cfg.canvas = c
	}
}

// WithResolver sets how src references are turned into image bytes.
// Defaults to resolving against the current working directory.
func WithResolver(r Resolver) Option {
	return func(cfg *config) {
		if r != nil {
			cfg.resolver = r
		}
	}
}

// WithBaseDir resolves src references relative to dir.
func WithBaseDir(dir string) Option {
	return WithResolver(DirResolver(dir))
}

// WithConcurrency sets how many images are loaded and redrawn at once.
// Values below 1 mean 1. The order of the document is preserved regardless.
func WithConcurrency(n int) Option {
	return func(cfg *config) {
		if n < 1 {
			n = 1
		}
		cfg.concurrency = n
	}
}

// WithImageTimeout bounds the time spent loading and redrawing a single
// image. A zero or negative value disables the timeout.
func WithImageTimeout(d time.Duration) Option {
	return func(cfg *config) {
		cfg.imageTimeout = d
	}
}

// WithInterpolator sets the resampling kernel used when a raster image is
// scaled down. Defaults to bilinear.
func WithInterpolator(i xdraw.Interpolator) Option {
	return func(cfg *config) {
		if i != nil {
			cfg.interp = i
		}
	}
}

// WithAlwaysRasterize redraws every image to PNG, even when it already fits
// the canvas.
func WithAlwaysRasterize() Option {
	return func(cfg *config) {
		cfg.rasterizeAll = true
	}
}

// WithSkipBroken logs and skips images that cannot be inlined instead of
// failing the whole document. Skipped elements keep their original src.
func WithSkipBroken() Option {
	return func(cfg *config) {
		cfg.skipBroken = true
	}
}

// WithLogger sets the logger. By default nothing is logged.
func WithLogger(l *slog.Logger) Option {
	return func(cfg *config) {
		if l != nil {
			cfg.logger = l
		}
	}
}

// Interpolator returns the resampling kernel named by name: "nearest",
// "approx-bilinear", "bilinear" or "catmull-rom".
func Interpolator(name string) (xdraw.Interpolator, bool) {
	switch name {
	case "nearest":
		return xdraw.NearestNeighbor, true
	case "approx-bilinear":
		return xdraw.ApproxBiLinear, true
	case "bilinear", "":
		return xdraw.BiLinear, true
	case "catmull-rom":
		return xdraw.CatmullRom, true
	default:
		return nil, false
	}
}
