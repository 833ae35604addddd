// Package artifact downloads model files referenced by model records into a
// local directory. References may be paths relative to the API, absolute
// http(s) URLs or s3://bucket/key locations.
package artifact

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/euronode/euronode/internal/filex"
	"github.com/euronode/euronode/internal/logging"
	"github.com/euronode/euronode/internal/netx"
)

var (
	ErrNoArtifact        = errors.New("model record has no file")
	ErrS3NotConfigured   = errors.New("s3 reference but no s3 settings configured")
	ErrUnsupportedScheme = errors.New("unsupported artifact reference")
)

const fallbackName = "model.bin"

type Fetcher struct {
	base *url.URL
	dir  string
	http *http.Client
	s3   S3Getter
	log  logging.Logger
}

type Option func(*Fetcher)

func WithS3(g S3Getter) Option { return func(f *Fetcher) { f.s3 = g } }

func WithHTTPClient(c *http.Client) Option { return func(f *Fetcher) { f.http = c } }

func WithLogger(l logging.Logger) Option { return func(f *Fetcher) { f.log = l } }

// NewFetcher resolves relative references against base and stores files in dir.
func NewFetcher(base *url.URL, dir string, opts ...Option) *Fetcher {
	f := &Fetcher{base: base, dir: dir, http: http.DefaultClient, log: logging.Nop()}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch downloads ref and returns the local path and size.
func (f *Fetcher) Fetch(ctx context.Context, ref string) (string, int64, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", 0, ErrNoArtifact
	}
	u, err := url.Parse(ref)
	if err != nil {
		return "", 0, fmt.Errorf("parse %q: %w", ref, err)
	}

	dir, err := filex.EnsureDir(f.dir)
	if err != nil {
		return "", 0, err
	}
	dest := filepath.Join(dir, fileName(u.Path))

	var n int64
	switch u.Scheme {
	case "s3":
		n, err = f.fetchS3(ctx, u, dest)
	case "http", "https":
		n, err = netx.DownloadToFile(ctx, f.http, u.String(), dest)
	case "":
		n, err = netx.DownloadToFile(ctx, f.http, f.base.ResolveReference(u).String(), dest)
	default:
		return "", 0, fmt.Errorf("%w: %s", ErrUnsupportedScheme, u.Scheme)
	}
	if err != nil {
		return "", 0, fmt.Errorf("fetch %s: %w", ref, err)
	}

	f.log.Info(ctx, "artifact downloaded", "ref", ref, "path", dest, "bytes", n)
	return dest, n, nil
}

func (f *Fetcher) fetchS3(ctx context.Context, u *url.URL, dest string) (int64, error) {
	if f.s3 == nil {
		return 0, ErrS3NotConfigured
	}
	out, err := f.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(u.Host),
		Key:    aws.String(strings.TrimPrefix(u.Path, "/")),
	})
	if err != nil {
		return 0, err
	}
	defer out.Body.Close()
	return netx.WriteFileAtomic(dest, out.Body)
}

func fileName(p string) string {
	name := path.Base(p)
	if name == "." || name == "/" || name == "" {
		return fallbackName
	}
	return name
}
