package navi

import (
	"strings"

	"github.com/pkg/errors"
)

var strategies = map[string]By{
	"id":          ID,
	"name":        Name,
	"css":         CSS,
	"xpath":       XPath,
	"tag":         TagName,
	"class":       ClassName,
	"link":        LinkText,
	"partiallink": PartialLinkText,
}

// Parse a "strategy=query" string such as css=.login or xpath=//a. Only the
// first = separates the strategy, the rest belongs to the query.
func Parse(input string) (*Selector, error) {
	idx := strings.Index(input, "=")
	if idx <= 0 {
		return nil, errors.Errorf("locator %q must be in the form strategy=query", input)
	}

	name := strings.ToLower(strings.TrimSpace(input[:idx]))
	by, ok := strategies[name]
	if !ok {
		return nil, errors.Errorf("unknown locator strategy %q", name)
	}
	return &Selector{By: by, Query: input[idx+1:]}, nil
}

// ParseOrdered parses each input and keeps their order
func ParseOrdered(inputs []string) (*OrderedLocator, error) {
	locators := make([]Locator, 0, len(inputs))
	for i, input := range inputs {
		s, err := Parse(input)
		if err != nil {
			return nil, errors.Wrapf(err, "locator %d", i)
		}
		locators = append(locators, s)
	}
	return Ordered(locators...), nil
}

// SplitLocators breaks a newline separated list of locators, dropping blank
// entries. Queries may contain any other character, ; included.
func SplitLocators(list string) []string {
	fields := strings.Split(list, "\n")
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
