package navi

import (
	"context"
	"strings"
)

// Element is a handle to a node found by a SearchContext. Elements are owned
// by the context that returned them and are never modified by locators.
type Element interface {
	TagName() string
	Attribute(name string) (string, bool)
	Text() string
}

// SearchContext is anything that can be queried for elements: a tab, a
// frame, a parsed document or an element subtree. Results are returned
// in document order.
type SearchContext interface {
	FindElements(ctx context.Context, s *Selector) ([]Element, error)
}

// Locator finds elements within a SearchContext and describes itself
type Locator interface {
	FindElement(ctx context.Context, sc SearchContext) (Element, error)
	FindElements(ctx context.Context, sc SearchContext) ([]Element, error)
	String() string
}

// By is the strategy of a basic selector
type By int8

// revive:disable:var-naming
const (
	ID By = iota
	Name
	CSS
	XPath
	TagName
	ClassName
	LinkText
	PartialLinkText
)

var byNames = map[By]string{
	ID:              "Id",
	Name:            "Name",
	CSS:             "CssSelector",
	XPath:           "XPath",
	TagName:         "TagName",
	ClassName:       "ClassName[Contains]",
	LinkText:        "LinkText",
	PartialLinkText: "PartialLinkText",
}

func (b By) String() string {
	if s, ok := byNames[b]; ok {
		return s
	}
	return "Unknown"
}

// Selector is a single strategy and its query. Selectors are comparable and
// may be used as map keys.
type Selector struct {
	By    By
	Query string
}

func ByID(id string) *Selector {
	return &Selector{By: ID, Query: id}
}

func ByName(name string) *Selector {
	return &Selector{By: Name, Query: name}
}

func ByCSS(selector string) *Selector {
	return &Selector{By: CSS, Query: selector}
}

func ByXPath(expr string) *Selector {
	return &Selector{By: XPath, Query: expr}
}

func ByTagName(tag string) *Selector {
	return &Selector{By: TagName, Query: tag}
}

// ByClassName matches elements whose class list contains className. Compound
// class names are rejected when the selector is compiled.
func ByClassName(className string) *Selector {
	return &Selector{By: ClassName, Query: className}
}

func ByLinkText(text string) *Selector {
	return &Selector{By: LinkText, Query: text}
}

func ByPartialLinkText(text string) *Selector {
	return &Selector{By: PartialLinkText, Query: text}
}

// FindElements asks the context for every element matching this selector
func (s *Selector) FindElements(ctx context.Context, sc SearchContext) ([]Element, error) {
	elements, err := sc.FindElements(ctx, s)
	if err != nil {
		return nil, err
	}
	if elements == nil {
		elements = make([]Element, 0)
	}
	return elements, nil
}

// FindElement returns the first match or an ElementNotFoundErr
func (s *Selector) FindElement(ctx context.Context, sc SearchContext) (Element, error) {
	elements, err := s.FindElements(ctx, sc)
	if err != nil {
		return nil, err
	}
	if len(elements) == 0 {
		return nil, &ElementNotFoundErr{Locator: s.String()}
	}
	return elements[0], nil
}

func (s *Selector) String() string {
	return "By." + s.By.String() + ": " + s.Query
}

// NormalizeText collapses runs of whitespace and trims, the way link text is
// compared.
func NormalizeText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
