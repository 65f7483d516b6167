package htmlprint

import "errors"

// Sentinel errors returned by the library.
var (
	// ErrClosed is returned when attempting to use a closed [Converter].
	ErrClosed = errors.New("htmlprint: converter is closed")

	// ErrTemplatePlaceholder is returned when a template shell does not
	// contain its body placeholder exactly once.
	ErrTemplatePlaceholder = errors.New("htmlprint: template needs exactly one body placeholder")

	// ErrNoRenderers is returned by a [Pipeline] with no output renderer.
	ErrNoRenderers = errors.New("htmlprint: no renderers configured")

	// ErrMissingOutput is returned by [Pipeline.Convert] when a renderer has
	// no output path.
	ErrMissingOutput = errors.New("htmlprint: missing output path")
)
