package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, key := range []string{
		"HTMLPRINT_ASSETS_DIR", "HTMLPRINT_INPUT", "HTMLPRINT_PDF", "HTMLPRINT_DOCX",
		"HTMLPRINT_CONCURRENCY", "HTMLPRINT_TIMEOUT", "HTMLPRINT_SKIP_BROKEN",
		"HTMLPRINT_PAGE_SIZE", "HTMLPRINT_ORIENTATION",
	} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()
	if cfg.AssetsDir != "assets" {
		t.Errorf("AssetsDir = %q, want assets", cfg.AssetsDir)
	}
	if cfg.InputPath() != filepath.Join("assets", "index.html") {
		t.Errorf("InputPath() = %q", cfg.InputPath())
	}
	if cfg.PDF != filepath.Join("dist", "document.pdf") || cfg.DOCX != filepath.Join("dist", "document.docx") {
		t.Errorf("outputs = %q, %q", cfg.PDF, cfg.DOCX)
	}
	if cfg.Concurrency != 1 {
		t.Errorf("Concurrency = %d, want 1", cfg.Concurrency)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Timeout)
	}
	if cfg.SkipBroken {
		t.Error("SkipBroken should default to false")
	}
	if cfg.PageSize != "a4" || cfg.Orientation != "portrait" {
		t.Errorf("page = %q %q, want a4 portrait", cfg.PageSize, cfg.Orientation)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("HTMLPRINT_ASSETS_DIR", "docs")
	t.Setenv("HTMLPRINT_INPUT", "docs/report.html")
	t.Setenv("HTMLPRINT_EPUB", "out/report.epub")
	t.Setenv("HTMLPRINT_CONCURRENCY", "8")
	t.Setenv("HTMLPRINT_IMAGE_TIMEOUT", "2s")
	t.Setenv("HTMLPRINT_ALWAYS_RASTERIZE", "true")
	t.Setenv("HTMLPRINT_NO_SANDBOX", "1")
	t.Setenv("HTMLPRINT_PAGE_SIZE", "letter")
	t.Setenv("HTMLPRINT_ORIENTATION", "landscape")

	cfg := FromEnv()
	if cfg.InputPath() != "docs/report.html" {
		t.Errorf("InputPath() = %q", cfg.InputPath())
	}
	if cfg.EPUB != "out/report.epub" {
		t.Errorf("EPUB = %q", cfg.EPUB)
	}
	if cfg.Concurrency != 8 {
		t.Errorf("Concurrency = %d, want 8", cfg.Concurrency)
	}
	if cfg.ImageTimeout != 2*time.Second {
		t.Errorf("ImageTimeout = %v, want 2s", cfg.ImageTimeout)
	}
	if !cfg.AlwaysRasterize || !cfg.NoSandbox {
		t.Error("boolean overrides not applied")
	}
	if cfg.PageSize != "letter" || cfg.Orientation != "landscape" {
		t.Errorf("page = %q %q, want letter landscape", cfg.PageSize, cfg.Orientation)
	}
}

func TestFromEnv_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("HTMLPRINT_CONCURRENCY", "lots")
	t.Setenv("HTMLPRINT_TIMEOUT", "soon")
	t.Setenv("HTMLPRINT_SKIP_BROKEN", "maybe")

	cfg := FromEnv()
	if cfg.Concurrency != 1 {
		t.Errorf("Concurrency = %d, want 1", cfg.Concurrency)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Timeout)
	}
	if cfg.SkipBroken {
		t.Error("SkipBroken should fall back to false")
	}

	t.Setenv("HTMLPRINT_CONCURRENCY", "-3")
	if got := FromEnv().Concurrency; got != 1 {
		t.Errorf("negative concurrency = %d, want 1", got)
	}
}

func TestSetupLogging_Level(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Setenv("LOG_LEVEL", tt.level)
		t.Setenv("LOG_OUTPUT", "stderr")
		logger := setupLogging()
		if !logger.Enabled(context.Background(), tt.want) {
			t.Errorf("LOG_LEVEL=%s: level %v should be enabled", tt.level, tt.want)
		}
		if tt.want > slog.LevelDebug && logger.Enabled(context.Background(), tt.want-1) {
			t.Errorf("LOG_LEVEL=%s: level below %v should be disabled", tt.level, tt.want)
		}
	}
}

func TestSetupLogging_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "htmlprint.log")
	t.Setenv("LOG_LEVEL", "info")
	t.Setenv("LOG_OUTPUT", "file")
	t.Setenv("LOG_FILE", path)

	setupLogging().Info("hello", "k", "v")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if len(data) == 0 {
		t.Error("log file is empty")
	}
}
