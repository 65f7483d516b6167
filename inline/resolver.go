package inline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path"
	"strings"
)

// Resolver maps an image reference, as written in a src attribute, to the
// image bytes.
type Resolver interface {
	Resolve(ctx context.Context, ref string) (io.ReadCloser, error)
}

// ResolverFunc adapts a function to a [Resolver].
type ResolverFunc func(ctx context.Context, ref string) (io.ReadCloser, error)

// Resolve calls f(ctx, ref).
func (f ResolverFunc) Resolve(ctx context.Context, ref string) (io.ReadCloser, error) {
	return f(ctx, ref)
}

// FSResolver resolves references as slash-separated paths relative to the
// root of FS. References that leave the root or carry a URL scheme are
// rejected.
type FSResolver struct {
	FS fs.FS
}

// DirResolver resolves references relative to the directory dir.
func DirResolver(dir string) FSResolver {
	return FSResolver{FS: os.DirFS(dir)}
}

// Resolve opens ref within r.FS.
func (r FSResolver) Resolve(ctx context.Context, ref string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name, err := cleanRef(ref)
	if err != nil {
		return nil, err
	}
	return r.FS.Open(name)
}

var errEmptyRef = errors.New("empty image reference")

// cleanRef turns a src value into an fs.ValidPath name.
func cleanRef(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", errEmptyRef
	}
	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("parsing reference: %w", err)
	}
	if u.Scheme != "" || u.Host != "" {
		return "", fmt.Errorf("unsupported reference scheme %q", u.Scheme)
	}

	name := path.Clean("/" + u.Path)[1:]
	if name == "" || !fs.ValidPath(name) {
		return "", fmt.Errorf("invalid reference path %q", ref)
	}
	return name, nil
}
