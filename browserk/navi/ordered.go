package navi

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
)

// OrderedLocator tries each of its locators in order and returns the matches
// of the first one that finds anything. Results are never merged across
// locators.
type OrderedLocator struct {
	locators []Locator
}

// Ordered builds an OrderedLocator. The slice is copied, so the search order
// is fixed here. No locators means it never matches.
func Ordered(locators ...Locator) *OrderedLocator {
	l := make([]Locator, len(locators))
	copy(l, locators)
	return &OrderedLocator{locators: l}
}

// Locators returns a copy of the locators in search order
func (o *OrderedLocator) Locators() []Locator {
	l := make([]Locator, len(o.locators))
	copy(l, o.locators)
	return l
}

// FindElements returns the matches of the first locator with any. No match is
// an empty slice, not an error. Errors from a locator stop the search and
// are returned as is.
func (o *OrderedLocator) FindElements(ctx context.Context, sc SearchContext) ([]Element, error) {
	elements := make([]Element, 0)
	if len(o.locators) == 0 {
		return elements, nil
	}

	for i, locator := range o.locators {
		found, err := locator.FindElements(ctx, sc)
		if err != nil {
			return nil, err
		}
		elements = append(elements, found...)

		if len(elements) > 0 {
			log.Ctx(ctx).Debug().Int("index", i).Str("locator", locator.String()).Int("found", len(elements)).Msg("ordered locator matched")
			break
		}
	}
	return elements, nil
}

// FindElement returns the first element of FindElements, or an
// ElementNotFoundErr naming this locator.
func (o *OrderedLocator) FindElement(ctx context.Context, sc SearchContext) (Element, error) {
	elements, err := o.FindElements(ctx, sc)
	if err != nil {
		return nil, err
	}
	if len(elements) == 0 {
		return nil, &ElementNotFoundErr{Locator: o.String()}
	}
	return elements[0], nil
}

// String writes out Ordered([...]) with each locator's description
func (o *OrderedLocator) String() string {
	descs := make([]string, len(o.locators))
	for i, locator := range o.locators {
		descs[i] = locator.String()
	}
	return "Ordered([" + strings.Join(descs, ",") + "])"
}
