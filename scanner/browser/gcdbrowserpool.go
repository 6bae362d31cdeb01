package browser

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/wirepair/gcd"
)

// BrowserPool hands out connected debuggers
type BrowserPool interface {
	Take(ctx context.Context) (*gcd.Gcd, error)
	Return(ctx context.Context, browser *gcd.Gcd)
}

var startupFlags = []string{
	"--enable-automation",
	"--enable-features=NetworkService",
	"--test-type",
	"--disable-client-side-phishing-detection",
	"--disable-component-update",
	"--disable-infobars",
	"--disable-ntp-popular-sites",
	"--disable-ntp-most-likely-favicons-from-server",
	"--disable-sync-app-list",
	"--disable-domain-reliability",
	"--disable-background-networking",
	"--disable-sync",
	"--disable-new-browser-first-run",
	"--disable-default-apps",
	"--disable-popup-blocking",
	"--disable-extensions",
	"--disable-features=TranslateUI",
	"--disable-gpu",
	"--disable-dev-shm-usage",
	"--no-sandbox",
	"--allow-running-insecure-content",
	"--no-first-run",
	"--window-size=1024,768",
	"--safebrowsing-disable-auto-update",
	"--safebrowsing-disable-download-protection",
	"--password-store=basic",
	"--headless",
	"about:blank",
}

// GCDBrowserPool keeps maxBrowsers debuggers ready. Returned browsers are
// destroyed and replaced so every Take gets a clean profile.
type GCDBrowserPool struct {
	maxBrowsers      int
	acquiredBrowsers int32
	acquireErrors    int32
	browsers         chan *gcd.Gcd
	closing          int32
	restarting       int32
	leaser           LeaserService
	startCount       int32

	connect    func(port string) (*gcd.Gcd, error)
	settle     time.Duration // wait after (re)starting browsers
	retryDelay time.Duration // wait before replacing a browser that failed to start
}

// NewGCDBrowserPool of maxBrowsers, started with Init
func NewGCDBrowserPool(maxBrowsers int, leaser LeaserService) *GCDBrowserPool {
	if maxBrowsers < 1 {
		maxBrowsers = 1
	}
	b := &GCDBrowserPool{}
	b.maxBrowsers = maxBrowsers
	b.leaser = leaser
	b.browsers = make(chan *gcd.Gcd, b.maxBrowsers)
	b.connect = connectDebugger
	b.settle = time.Second * 2
	b.retryDelay = time.Second
	return b
}

func connectDebugger(port string) (*gcd.Gcd, error) {
	browser := gcd.NewChromeDebugger()
	if err := browser.ConnectToInstance("localhost", port); err != nil {
		return nil, err
	}
	return browser, nil
}

// Init starts the browser pool
func (b *GCDBrowserPool) Init() error {
	return b.Start()
}

// Start the browsers, clearing out any this pool started before
func (b *GCDBrowserPool) Start() error {
	// allow 3 seconds per browser
	timeoutCtx, cancel := context.WithTimeout(context.Background(), time.Second*time.Duration(b.maxBrowsers*3))
	defer cancel()

	if _, err := b.leaser.Cleanup(); err != nil {
		return errors.Wrap(err, "failed to clean up browsers")
	}

	log.Info().Int("browsers", b.maxBrowsers).Msg("creating browsers")
	currentCount := atomic.AddInt32(&b.startCount, 1)
	for i := 0; i < b.maxBrowsers; i++ {
		b.returnBrowser(timeoutCtx, nil, currentCount) // passing nil will just create a new one for us
	}

	time.Sleep(b.settle) // give time for browser to settle
	return nil
}

// Acquire a browser, unless context expired. If expired, increment our error count
// and restart the pool. Slots whose browser failed to start are refilled while
// we keep waiting.
func (b *GCDBrowserPool) Acquire(ctx context.Context) *gcd.Gcd {
	for {
		select {
		case browser := <-b.browsers:
			if browser != nil {
				atomic.AddInt32(&b.acquiredBrowsers, 1)
				return browser
			}
			go b.refill(atomic.LoadInt32(&b.startCount))
		case <-ctx.Done():
			log.Ctx(ctx).Warn().Err(ctx.Err()).Msg("failed to acquire browser from pool")
			atomic.AddInt32(&b.acquireErrors, 1)
			if atomic.LoadInt32(&b.closing) == 0 {
				b.restart()
			}
			return nil
		}
	}
}

// refill a slot that was left empty by a failed launch
func (b *GCDBrowserPool) refill(startCount int32) {
	time.Sleep(b.retryDelay)
	doneCh := make(chan struct{})
	b.closeAndCreateBrowser(nil, doneCh, startCount)
}

// restart the pool, only one caller restarts at a time and the others give up
func (b *GCDBrowserPool) restart() {
	if !atomic.CompareAndSwapInt32(&b.restarting, 0, 1) {
		return
	}
	defer atomic.StoreInt32(&b.restarting, 0)

	acquired := atomic.LoadInt32(&b.acquiredBrowsers)
	errored := atomic.LoadInt32(&b.acquireErrors)
	count, _ := b.leaser.Count()
	log.Warn().Int32("acquired", acquired).Int32("errored", errored).Str("leaser_count", count).Msg("force restarting due to failure to acquire browsers")
	atomic.StoreInt32(&b.acquiredBrowsers, 0)
	atomic.StoreInt32(&b.acquireErrors, 0)
	// empty pool
	for {
		select {
		case <-b.browsers:
			log.Debug().Msg("emptying browser")
		default:
			goto EMPTY
		}
	}
EMPTY:
	time.Sleep(b.settle / 2)
	if err := b.Start(); err != nil {
		log.Error().Err(err).Msg("failed to restart browsers")
	}
}

func (b *GCDBrowserPool) returnBrowser(ctx context.Context, browser *gcd.Gcd, startCount int32) {
	timeoutCtx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()
	doneCh := make(chan struct{})

	go b.closeAndCreateBrowser(browser, doneCh, startCount)

	select {
	case <-timeoutCtx.Done():
		log.Error().Msg("failed to closeAndCreateBrowser in time")
	case <-doneCh:
		return
	}
}

// closeAndCreateBrowser takes an optional browser to close, and creates a new one, closing doneCh
// to signal it completed (although it may be a nil browser if error occurred).
func (b *GCDBrowserPool) closeAndCreateBrowser(browser *gcd.Gcd, doneCh chan struct{}, startCount int32) {
	defer close(doneCh)

	if browser != nil {
		if err := b.leaser.Return(browser.Port()); err != nil {
			log.Error().Err(err).Msg("failed to return browser")
		}
		atomic.AddInt32(&b.acquiredBrowsers, -1)
	}

	// if we've restarted or are closing, don't replace it
	if atomic.LoadInt32(&b.startCount) != startCount || atomic.LoadInt32(&b.closing) == 1 {
		return
	}

	port, err := b.leaser.Acquire()
	if err != nil {
		log.Warn().Err(err).Msg("unable to acquire new browser")
		b.browsers <- nil
		return
	}

	browser, err = b.connect(port)
	if err != nil {
		log.Warn().Err(err).Str("port", port).Msg("failed to connect to instance")
		b.browsers <- nil
		return
	}

	log.Debug().Str("port", port).Msg("browser created")
	b.browsers <- browser
}

// Take a browser, user is responsible for closing tabs they opened.
func (b *GCDBrowserPool) Take(ctx context.Context) (*gcd.Gcd, error) {
	if atomic.LoadInt32(&b.closing) == 1 {
		return nil, ErrBrowserClosing
	}

	browser := b.Acquire(ctx)
	if browser == nil {
		return nil, errors.New("browser acquisition failed during Take")
	}

	log.Ctx(ctx).Debug().Int32("acquired", atomic.LoadInt32(&b.acquiredBrowsers)).Int32("errors", atomic.LoadInt32(&b.acquireErrors)).Msg("acquired browser")
	return browser, nil
}

// Return a browser for destruction, a new one takes its place
func (b *GCDBrowserPool) Return(ctx context.Context, browser *gcd.Gcd) {
	startCount := atomic.LoadInt32(&b.startCount)
	log.Ctx(ctx).Debug().Msg("closing browser")
	b.returnBrowser(ctx, browser, startCount)
}

// Close all browsers and return
func (b *GCDBrowserPool) Close(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&b.closing, 0, 1) {
		return nil
	}
	defer b.leaser.Cleanup()

	for {
		select {
		case browser := <-b.browsers:
			if browser == nil {
				continue
			}
			if err := b.leaser.Return(browser.Port()); err != nil {
				log.Warn().Err(err).Msg("failed to return browser")
			}
		case <-ctx.Done():
			return ctx.Err()
		default:
			return nil
		}
	}
}
