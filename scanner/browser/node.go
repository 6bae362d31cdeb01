package browser

import (
	"strings"

	"github.com/wirepair/gcd/gcdapi"
)

// NodeHasAttribute checks the flat [name, value, ...] attribute list
func NodeHasAttribute(node *gcdapi.DOMNode, attr string) bool {
	_, ok := NodeGetAttribute(node, attr)
	return ok
}

// NodeGetAttribute returns the value of attr, names are case insensitive
func NodeGetAttribute(node *gcdapi.DOMNode, attr string) (string, bool) {
	attr = strings.ToLower(attr)
	for i := 0; i+1 < len(node.Attributes); i += 2 {
		if strings.ToLower(node.Attributes[i]) == attr {
			return node.Attributes[i+1], true
		}
	}
	return "", false
}

// NodeRemoveAttribute returns the attribute list without attr
func NodeRemoveAttribute(node *gcdapi.DOMNode, attr string) []string {
	attr = strings.ToLower(attr)
	attrs := make([]string, 0, len(node.Attributes))
	for i := 0; i+1 < len(node.Attributes); i += 2 {
		if strings.ToLower(node.Attributes[i]) == attr {
			continue
		}
		attrs = append(attrs, node.Attributes[i], node.Attributes[i+1])
	}
	return attrs
}
