package document

import (
	"context"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/antchfx/htmlquery"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gitlab.com/browserker/locate/browserk/navi"
	"gitlab.com/browserker/locate/scanner/fetch"
	"golang.org/x/net/html"
)

// Document is a parsed static html page that can be searched with locators.
// It is read only after parsing and safe for concurrent searches.
type Document struct {
	doc *goquery.Document
	url string
}

// New parses html from r. url is only recorded for reporting.
func New(r io.Reader, url string) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "parsing html")
	}
	return &Document{doc: doc, url: url}, nil
}

// Load fetches targetURL and parses it
func Load(ctx context.Context, fetcher fetch.Fetcher, targetURL string) (*Document, error) {
	content, finalURL, err := fetcher.Fetch(ctx, targetURL)
	if err != nil {
		return nil, err
	}
	defer content.Close()

	log.Ctx(ctx).Debug().Str("url", targetURL).Str("final_url", finalURL).Msg("loaded document")
	return New(content, finalURL)
}

// URL the document was loaded from, after redirects
func (d *Document) URL() string {
	return d.url
}

// Title of the document
func (d *Document) Title() string {
	return navi.NormalizeText(d.doc.Find("title").First().Text())
}

// FindElements searches the whole document
func (d *Document) FindElements(ctx context.Context, s *navi.Selector) ([]navi.Element, error) {
	return d.find(ctx, d.doc.Selection, s)
}

// find evaluates the selector against the descendants of root
func (d *Document) find(ctx context.Context, root *goquery.Selection, s *navi.Selector) ([]navi.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	q, err := s.Compile()
	if err != nil {
		return nil, err
	}

	var nodes []*html.Node
	switch q.Lang {
	case navi.QueryCSS:
		sel, err := cascadia.Compile(q.Expr)
		if err != nil {
			return nil, &navi.InvalidSelectorErr{Selector: s.String(), Message: err.Error()}
		}
		nodes = root.FindMatcher(sel).Nodes
	case navi.QueryXPath:
		for _, n := range root.Nodes {
			found, err := htmlquery.QueryAll(n, q.Expr)
			if err != nil {
				return nil, &navi.InvalidSelectorErr{Selector: s.String(), Message: err.Error()}
			}
			nodes = append(nodes, found...)
		}
	}

	elements := make([]navi.Element, 0, len(nodes))
	for _, n := range nodes {
		// attribute results come back as detached nodes
		if n.Type != html.ElementNode || n.Parent == nil {
			return nil, &navi.InvalidSelectorErr{
				Selector: s.String(),
				Message:  "result is not an element",
			}
		}
		elements = append(elements, &Element{doc: d, node: n})
	}
	return elements, nil
}

// Element is a node of a Document
type Element struct {
	doc  *Document
	node *html.Node
}

func (e *Element) selection() *goquery.Selection {
	return e.doc.doc.FindNodes(e.node)
}

// TagName in lower case
func (e *Element) TagName() string {
	return strings.ToLower(e.node.Data)
}

// Attribute value and whether it exists
func (e *Element) Attribute(name string) (string, bool) {
	for _, attr := range e.node.Attr {
		if strings.EqualFold(attr.Key, name) {
			return attr.Val, true
		}
	}
	return "", false
}

// Text of the element and its children with whitespace collapsed
func (e *Element) Text() string {
	return navi.NormalizeText(e.selection().Text())
}

// HTML of the element itself
func (e *Element) HTML() (string, error) {
	return goquery.OuterHtml(e.selection())
}

// FindElements searches this element's subtree
func (e *Element) FindElements(ctx context.Context, s *navi.Selector) ([]navi.Element, error) {
	return e.doc.find(ctx, e.selection(), s)
}
