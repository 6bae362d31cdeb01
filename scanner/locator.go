package scanner

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gitlab.com/browserker/locate/browserk"
	"gitlab.com/browserker/locate/browserk/navi"
	"golang.org/x/sync/errgroup"
)

// Opener loads a target and returns something to search it with. close is
// always safe to call, even after an error.
type Opener interface {
	Open(ctx context.Context, target string) (sc navi.SearchContext, close func(), err error)
}

// ElementInfo is what gets reported about a matched element
type ElementInfo struct {
	Tag   string `json:"tag"`
	ID    string `json:"id,omitempty"`
	Name  string `json:"name,omitempty"`
	Class string `json:"class,omitempty"`
	Href  string `json:"href,omitempty"`
	Text  string `json:"text,omitempty"`
}

// NewElementInfo reads the reported fields from e
func NewElementInfo(e navi.Element) ElementInfo {
	info := ElementInfo{Tag: e.TagName(), Text: e.Text()}
	info.ID, _ = e.Attribute("id")
	info.Name, _ = e.Attribute("name")
	info.Class, _ = e.Attribute("class")
	info.Href, _ = e.Attribute("href")
	return info
}

// Result of running the locator against one target
type Result struct {
	Target   string        `json:"target"`
	Locator  string        `json:"locator"`
	Elements []ElementInfo `json:"elements"`
	Err      error         `json:"-"`
	Error    string        `json:"error,omitempty"`
}

// Matched reports whether anything was found
func (r *Result) Matched() bool {
	return len(r.Elements) > 0
}

// Locator runs one ordered locator across many targets
type Locator struct {
	cfg     *browserk.Config
	opener  Opener
	locator navi.Locator
}

// New parses cfg.Locators, in order, into an ordered locator
func New(cfg *browserk.Config, opener Opener) (*Locator, error) {
	ordered, err := navi.ParseOrdered(cfg.Locators)
	if err != nil {
		return nil, err
	}
	if len(ordered.Locators()) == 0 {
		log.Warn().Msg("no locators configured, nothing will match")
	}
	return NewWithLocator(cfg, opener, ordered), nil
}

// NewWithLocator runs an already built locator
func NewWithLocator(cfg *browserk.Config, opener Opener, locator navi.Locator) *Locator {
	return &Locator{cfg: cfg, opener: opener, locator: locator}
}

// Locator being run
func (l *Locator) Locator() navi.Locator {
	return l.locator
}

// Run searches every target, at most Config.Concurrency at a time. Results
// are in target order. Failing to open a target stops the run, not finding an
// element does not.
func (l *Locator) Run(ctx context.Context, targets []string) ([]*Result, error) {
	results := make([]*Result, len(targets))

	limit := l.cfg.Concurrency
	if limit < 1 {
		limit = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, target := range targets {
		g.Go(func() error {
			result, err := l.locate(gctx, target)
			if err != nil {
				return errors.Wrapf(err, "locating in %s", target)
			}
			results[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (l *Locator) locate(ctx context.Context, target string) (*Result, error) {
	logger := log.Ctx(ctx).With().Str("target", target).Logger()
	ctx = logger.WithContext(ctx)

	openCtx, cancel := context.WithTimeout(ctx, l.cfg.NavTimeout())
	defer cancel()

	sc, closeFn, err := l.opener.Open(openCtx, target)
	if closeFn != nil {
		defer closeFn()
	}
	if err != nil {
		return nil, err
	}

	result := &Result{
		Target:   target,
		Locator:  l.locator.String(),
		Elements: make([]ElementInfo, 0),
	}

	if l.cfg.First {
		element, err := l.locator.FindElement(ctx, sc)
		if errors.Is(err, navi.ErrElementNotFound) {
			result.Err = err
			result.Error = err.Error()
			logger.Info().Msg("no element found")
			return result, nil
		}
		if err != nil {
			return nil, err
		}
		result.Elements = append(result.Elements, NewElementInfo(element))
		return result, nil
	}

	elements, err := l.locator.FindElements(ctx, sc)
	if err != nil {
		return nil, err
	}
	for _, e := range elements {
		result.Elements = append(result.Elements, NewElementInfo(e))
	}
	logger.Info().Int("found", len(elements)).Msg("located elements")
	return result, nil
}
