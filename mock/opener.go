package mock

import (
	"context"
	"sync"

	"gitlab.com/browserker/locate/browserk/navi"
)

// Opener hands out search contexts per target
type Opener struct {
	lock sync.Mutex

	Contexts map[string]navi.SearchContext

	OpenFn     func(ctx context.Context, target string) (navi.SearchContext, func(), error)
	OpenCalled bool

	opened int
	closed int
}

// NewOpener with no targets
func NewOpener() *Opener {
	return &Opener{Contexts: make(map[string]navi.SearchContext)}
}

// Add the search context returned for target
func (o *Opener) Add(target string, sc navi.SearchContext) *Opener {
	o.lock.Lock()
	defer o.lock.Unlock()
	o.Contexts[target] = sc
	return o
}

func (o *Opener) Open(ctx context.Context, target string) (navi.SearchContext, func(), error) {
	o.lock.Lock()
	o.OpenCalled = true
	o.opened++
	fn := o.OpenFn
	sc, ok := o.Contexts[target]
	o.lock.Unlock()

	closeFn := func() {
		o.lock.Lock()
		o.closed++
		o.lock.Unlock()
	}

	if fn != nil {
		return fn(ctx, target)
	}
	if !ok {
		sc = NewSearchContext()
	}
	return sc, closeFn, nil
}

// Counts of opened and closed targets
func (o *Opener) Counts() (opened, closed int) {
	o.lock.Lock()
	defer o.lock.Unlock()
	return o.opened, o.closed
}
