package scanner

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"gitlab.com/browserker/locate/browserk"
	"gitlab.com/browserker/locate/browserk/navi"
	"gitlab.com/browserker/locate/scanner/browser"
	"gitlab.com/browserker/locate/scanner/document"
	"gitlab.com/browserker/locate/scanner/fetch"
)

func noop() {}

// DocumentOpener parses the static html of each target
type DocumentOpener struct {
	files fetch.Fetcher

	once sync.Once
	http fetch.Fetcher
}

// NewDocumentOpener reads file targets from disk and fetches the rest
func NewDocumentOpener() *DocumentOpener {
	return &DocumentOpener{files: &fetch.FileFetcher{}}
}

// NewDocumentOpenerWithFetcher uses fetcher for http targets
func NewDocumentOpenerWithFetcher(fetcher fetch.Fetcher) *DocumentOpener {
	o := NewDocumentOpener()
	o.once.Do(func() { o.http = fetcher })
	return o
}

func (o *DocumentOpener) fetcher(target string) fetch.Fetcher {
	if fetch.IsFile(target) {
		return o.files
	}
	// one client for every target
	o.once.Do(func() { o.http = fetch.NewHTTPFetcher() })
	return o.http
}

// Open loads and parses target
func (o *DocumentOpener) Open(ctx context.Context, target string) (navi.SearchContext, func(), error) {
	doc, err := document.Load(ctx, o.fetcher(target), target)
	if err != nil {
		return nil, noop, err
	}
	return doc, noop, nil
}

// BrowserOpener loads each target in a new chrome tab
type BrowserOpener struct {
	pool       *browser.GCDBrowserPool
	navTimeout time.Duration
}

// NewBrowserOpener starts a pool of cfg.NumBrowsers chrome processes
func NewBrowserOpener(cfg *browserk.Config) (*BrowserOpener, error) {
	log.Info().Msg("starting leaser")
	leaser := browser.NewLocalLeaser(cfg.ChromePath)
	pool := browser.NewGCDBrowserPool(cfg.NumBrowsers, leaser)
	log.Info().Int("browsers", cfg.NumBrowsers).Msg("starting browser pool")
	if err := pool.Init(); err != nil {
		return nil, err
	}
	return &BrowserOpener{pool: pool, navTimeout: cfg.NavTimeout()}, nil
}

// Open a tab and navigate it to target
func (o *BrowserOpener) Open(ctx context.Context, target string) (navi.SearchContext, func(), error) {
	b, err := o.pool.Take(ctx)
	if err != nil {
		return nil, noop, err
	}

	tab, err := browser.NewTab(ctx, b)
	if err != nil {
		o.pool.Return(context.Background(), b)
		return nil, noop, err
	}
	closeFn := func() {
		tab.Close()
		o.pool.Return(context.Background(), b)
	}

	tab.SetNavigationTimeout(o.navTimeout)
	if err := tab.Navigate(ctx, browserURL(target)); err != nil {
		return nil, closeFn, err
	}
	return tab, closeFn, nil
}

// Close the pool
func (o *BrowserOpener) Close(ctx context.Context) error {
	return o.pool.Close(ctx)
}

// browserURL turns bare paths into file urls chrome can load
func browserURL(target string) string {
	if !fetch.IsFile(target) || strings.HasPrefix(strings.ToLower(target), "file://") {
		return target
	}
	abs, err := filepath.Abs(target)
	if err != nil {
		return target
	}
	return "file://" + filepath.ToSlash(abs)
}
