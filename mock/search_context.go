package mock

import (
	"context"
	"sync"

	"gitlab.com/browserker/locate/browserk/navi"
)

// SearchContext answers selectors from a fixed map and records every
// selector it was asked for, in order.
type SearchContext struct {
	lock sync.Mutex

	Results map[navi.Selector][]navi.Element
	Errors  map[navi.Selector]error

	FindElementsFn     func(ctx context.Context, s *navi.Selector) ([]navi.Element, error)
	FindElementsCalled bool

	queried []navi.Selector
}

// NewSearchContext with no results configured
func NewSearchContext() *SearchContext {
	return &SearchContext{
		Results: make(map[navi.Selector][]navi.Element),
		Errors:  make(map[navi.Selector]error),
	}
}

// Add results for a selector
func (c *SearchContext) Add(s *navi.Selector, elements ...navi.Element) *SearchContext {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.Results[*s] = append(c.Results[*s], elements...)
	return c
}

// Fail the selector with err
func (c *SearchContext) Fail(s *navi.Selector, err error) *SearchContext {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.Errors[*s] = err
	return c
}

func (c *SearchContext) FindElements(ctx context.Context, s *navi.Selector) ([]navi.Element, error) {
	c.lock.Lock()
	c.FindElementsCalled = true
	c.queried = append(c.queried, *s)
	fn := c.FindElementsFn
	err := c.Errors[*s]
	found := c.Results[*s]
	c.lock.Unlock()

	if fn != nil {
		return fn(ctx, s)
	}
	if err != nil {
		return nil, err
	}
	elements := make([]navi.Element, len(found))
	copy(elements, found)
	return elements, nil
}

// Queried returns the selectors asked for so far
func (c *SearchContext) Queried() []navi.Selector {
	c.lock.Lock()
	defer c.lock.Unlock()
	q := make([]navi.Selector, len(c.queried))
	copy(q, c.queried)
	return q
}
