package fetch_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/browserker/locate/scanner/fetch"
)

func TestIsFile(t *testing.T) {
	assert.True(t, fetch.IsFile("testdata/page.html"))
	assert.True(t, fetch.IsFile("file:///tmp/page.html"))
	assert.False(t, fetch.IsFile("http://example.com"))
	assert.False(t, fetch.IsFile("HTTPS://example.com"))

	_, ok := fetch.ForURL("/tmp/page.html").(*fetch.FileFetcher)
	assert.True(t, ok)
}

func TestFileFetcher(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "page.html")
	require.NoError(t, os.WriteFile(path, []byte("<p>hi</p>"), 0644))

	f := &fetch.FileFetcher{}
	for _, target := range []string{path, "file://" + path} {
		content, finalURL, err := f.Fetch(context.Background(), target)
		require.NoError(t, err)
		body, err := io.ReadAll(content)
		content.Close()
		require.NoError(t, err)
		assert.Equal(t, "<p>hi</p>", string(body))
		assert.Equal(t, target, finalURL)
	}

	_, _, err := f.Fetch(context.Background(), filepath.Join(dir, "missing.html"))
	require.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = f.Fetch(ctx, path)
	require.ErrorIs(t, err, context.Canceled)
}
