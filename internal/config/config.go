package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config contains all of the conversion settings.
type Config struct {
	AssetsDir string // directory image references are resolved against
	Input     string // HTML fragment; empty means AssetsDir/index.html
	PDF       string // PDF output path; empty disables PDF
	DOCX      string // Word output path; empty disables Word
	EPUB      string // EPUB output path; empty disables EPUB

	ChromePath   string
	NoSandbox    bool
	AutoDownload bool
	Timeout      time.Duration

	PageSize    string // a3, a4, a5, letter, legal or tabloid
	Orientation string // portrait or landscape

	ImageTimeout    time.Duration
	Concurrency     int
	Interpolation   string
	AlwaysRasterize bool
	SkipBroken      bool

	Template string // optional template file
	Title    string
}

// InputPath returns the HTML input file.
func (c Config) InputPath() string {
	if c.Input != "" {
		return c.Input
	}
	return filepath.Join(c.AssetsDir, "index.html")
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	boolVal, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return boolVal
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intVal, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intVal
}

// getEnvDuration gets a duration environment variable such as "30s"
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}

// Load reads .env and htmlprint.env if present, then the HTMLPRINT_*
// environment variables, and returns the configuration and a logger.
func Load() (Config, *slog.Logger) {
	// Load .env file (silently ignore if doesn't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load("htmlprint.env")

	logger := setupLogging()
	cfg := FromEnv()

	logger.Debug("configuration loaded",
		"assets", cfg.AssetsDir,
		"input", cfg.InputPath(),
		"page", cfg.PageSize+" "+cfg.Orientation,
		"concurrency", cfg.Concurrency)
	return cfg, logger
}

// FromEnv builds a Config from the environment alone.
func FromEnv() Config {
	return Config{
		AssetsDir: getEnv("HTMLPRINT_ASSETS_DIR", "assets"),
		Input:     getEnv("HTMLPRINT_INPUT", ""),
		PDF:       getEnv("HTMLPRINT_PDF", filepath.Join("dist", "document.pdf")),
		DOCX:      getEnv("HTMLPRINT_DOCX", filepath.Join("dist", "document.docx")),
		EPUB:      getEnv("HTMLPRINT_EPUB", ""),

		ChromePath:   getEnv("HTMLPRINT_CHROME_PATH", ""),
		NoSandbox:    getEnvBool("HTMLPRINT_NO_SANDBOX", false),
		AutoDownload: getEnvBool("HTMLPRINT_AUTO_DOWNLOAD", false),
		Timeout:      getEnvDuration("HTMLPRINT_TIMEOUT", 30*time.Second),

		PageSize:    getEnv("HTMLPRINT_PAGE_SIZE", "a4"),
		Orientation: getEnv("HTMLPRINT_ORIENTATION", "portrait"),

		ImageTimeout:    getEnvDuration("HTMLPRINT_IMAGE_TIMEOUT", 0),
		Concurrency:     max(1, getEnvInt("HTMLPRINT_CONCURRENCY", 1)),
		Interpolation:   getEnv("HTMLPRINT_INTERPOLATION", "bilinear"),
		AlwaysRasterize: getEnvBool("HTMLPRINT_ALWAYS_RASTERIZE", false),
		SkipBroken:      getEnvBool("HTMLPRINT_SKIP_BROKEN", false),

		Template: getEnv("HTMLPRINT_TEMPLATE", ""),
		Title:    getEnv("HTMLPRINT_TITLE", ""),
	}
}

// setupLogging configures the application logger
func setupLogging() *slog.Logger {
	var level slog.Level
	switch getEnv("LOG_LEVEL", "info") {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	handlerOptions := &slog.HandlerOptions{Level: level}

	var logWriter io.Writer
	switch getEnv("LOG_OUTPUT", "stderr") {
	case "stdout":
		logWriter = os.Stdout
	case "file":
		logPath, err := filepath.Abs(filepath.ToSlash(getEnv("LOG_FILE", "htmlprint.log")))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating log file path: %v\n", err)
			logWriter = os.Stderr
			break
		}
		logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
			logWriter = os.Stderr
			break
		}
		logWriter = logFile
	default:
		logWriter = os.Stderr
	}

	return slog.New(slog.NewTextHandler(logWriter, handlerOptions))
}
