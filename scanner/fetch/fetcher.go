package fetch

import (
	"context"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// Fetcher retrieves page content for a static search. Implementations follow
// redirects and report the final URL. The caller closes the content.
type Fetcher interface {
	Fetch(ctx context.Context, targetURL string) (content io.ReadCloser, finalURL string, err error)
}

// ForURL picks the FileFetcher for file:// urls and bare paths, otherwise a
// new HTTPFetcher.
func ForURL(targetURL string) Fetcher {
	if IsFile(targetURL) {
		return &FileFetcher{}
	}
	return NewHTTPFetcher()
}

// IsFile reports whether the target should be read from disk
func IsFile(targetURL string) bool {
	lowered := strings.ToLower(targetURL)
	return strings.HasPrefix(lowered, "file://") || !(strings.HasPrefix(lowered, "http://") || strings.HasPrefix(lowered, "https://"))
}

// FileFetcher reads html from the local filesystem
type FileFetcher struct{}

// Fetch opens the file named by a file:// url or plain path
func (f *FileFetcher) Fetch(ctx context.Context, targetURL string) (io.ReadCloser, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, targetURL, err
	}

	path := targetURL
	if strings.HasPrefix(strings.ToLower(targetURL), "file://") {
		u, err := url.Parse(targetURL)
		if err != nil {
			return nil, targetURL, errors.Wrap(err, "parsing file url")
		}
		path = u.Path
		// file://relative/page.html puts the first segment in the host
		if u.Host != "" && u.Host != "localhost" {
			path = u.Host + u.Path
		}
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, targetURL, err
	}
	return file, targetURL, nil
}
