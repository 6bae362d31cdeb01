package browser

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
	"github.com/wirepair/gcd/gcdapi"
	"gitlab.com/browserker/locate/browserk/navi"
)

// Element is a DOM node in a Tab. Its name and attributes are captured when
// it is found, text is read from the live node.
type Element struct {
	tab    *Tab
	nodeID int
	node   *gcdapi.DOMNode
}

func newElement(tab *Tab, nodeID int, node *gcdapi.DOMNode) *Element {
	return &Element{tab: tab, nodeID: nodeID, node: node}
}

// NodeID of the element in its tab
func (e *Element) NodeID() int {
	return e.nodeID
}

// NodeType of the underlying node
func (e *Element) NodeType() NodeType {
	return NodeType(e.node.NodeType)
}

// TagName in lower case
func (e *Element) TagName() string {
	if e.node.LocalName != "" {
		return strings.ToLower(e.node.LocalName)
	}
	return strings.ToLower(e.node.NodeName)
}

// Attribute value and whether it was set
func (e *Element) Attribute(name string) (string, bool) {
	return NodeGetAttribute(e.node, name)
}

// HTML of the live node
func (e *Element) HTML() (string, error) {
	return e.tab.GetOuterHTML(e.nodeID)
}

// Text of the element and its children with whitespace collapsed. A node
// that is gone from the page has no text.
func (e *Element) Text() string {
	outer, err := e.HTML()
	if err != nil {
		log.Debug().Err(err).Int("node", e.nodeID).Msg("failed to get outer html")
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(outer))
	if err != nil {
		return ""
	}
	return navi.NormalizeText(doc.Text())
}

// FindElements searches this element's subtree
func (e *Element) FindElements(ctx context.Context, s *navi.Selector) ([]navi.Element, error) {
	return e.tab.find(ctx, e.nodeID, true, s)
}
