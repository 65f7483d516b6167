package inline

import (
	"errors"
	"fmt"
)

// Sentinel errors matched by [ImageError] through errors.Is.
var (
	ErrResolve = errors.New("inline: image cannot be read")
	ErrDecode  = errors.New("inline: image cannot be decoded")
	ErrEncode  = errors.New("inline: image cannot be encoded")
)

// ErrorKind identifies the stage an image failed in.
type ErrorKind int

const (
	// KindResolve means the reference could not be opened or read.
	KindResolve ErrorKind = iota + 1
	// KindDecode means the bytes are not a supported image.
	KindDecode
	// KindEncode means the redrawn surface could not be serialized.
	KindEncode
)

func (k ErrorKind) String() string {
	switch k {
	case KindResolve:
		return "resolve"
	case KindDecode:
		return "decode"
	case KindEncode:
		return "encode"
	default:
		return "unknown"
	}
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindResolve:
		return ErrResolve
	case KindDecode:
		return ErrDecode
	case KindEncode:
		return ErrEncode
	default:
		return nil
	}
}

// ImageError reports a failure to inline a single image element.
type ImageError struct {
	Ref  string // src attribute as written in the document
	Kind ErrorKind
	Err  error
}

func (e *ImageError) Error() string {
	return fmt.Sprintf("inline: %s %q: %v", e.Kind, e.Ref, e.Err)
}

func (e *ImageError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrDecode) and friends match by kind.
func (e *ImageError) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

func imageErr(ref string, kind ErrorKind, err error) *ImageError {
	return &ImageError{Ref: ref, Kind: kind, Err: err}
}
