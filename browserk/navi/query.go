package navi

import (
	"strings"
)

// QueryLang is the language a compiled selector is evaluated in
type QueryLang int8

const (
	QueryCSS QueryLang = iota + 1
	QueryXPath
)

// Query is a selector lowered to CSS or XPath so that every SearchContext
// only has to evaluate two languages.
type Query struct {
	Lang QueryLang
	Expr string
}

// Compile lowers the selector into a Query. XPath queries produced for
// link text are relative to the search root.
func (s *Selector) Compile() (Query, error) {
	if s.Query == "" {
		return Query{}, &InvalidSelectorErr{Selector: s.String(), Message: "empty query"}
	}

	switch s.By {
	case ID:
		return Query{Lang: QueryCSS, Expr: attributeSelector("id", "=", s.Query)}, nil
	case Name:
		return Query{Lang: QueryCSS, Expr: attributeSelector("name", "=", s.Query)}, nil
	case CSS, TagName:
		return Query{Lang: QueryCSS, Expr: s.Query}, nil
	case ClassName:
		if strings.ContainsAny(s.Query, " \t\r\n\f") {
			return Query{}, &InvalidSelectorErr{Selector: s.String(), Message: "compound class names not permitted"}
		}
		return Query{Lang: QueryCSS, Expr: attributeSelector("class", "~=", s.Query)}, nil
	case XPath:
		return Query{Lang: QueryXPath, Expr: s.Query}, nil
	case LinkText:
		return Query{Lang: QueryXPath, Expr: ".//a[normalize-space(.)=" + XPathLiteral(NormalizeText(s.Query)) + "]"}, nil
	case PartialLinkText:
		return Query{Lang: QueryXPath, Expr: ".//a[contains(normalize-space(.)," + XPathLiteral(NormalizeText(s.Query)) + ")]"}, nil
	}
	return Query{}, &InvalidSelectorErr{Selector: s.String(), Message: "unknown strategy"}
}

// attributeSelector builds [attr<op>"value"] escaping the value as a CSS string
func attributeSelector(attr, op, value string) string {
	var b strings.Builder
	b.WriteString("[" + attr + op + "\"")
	for _, r := range value {
		switch r {
		case '"', '\\':
			b.WriteRune('\\')
			b.WriteRune(r)
		case '\n':
			b.WriteString("\\a ")
		default:
			b.WriteRune(r)
		}
	}
	b.WriteString("\"]")
	return b.String()
}

// XPathLiteral quotes s as an XPath 1.0 string literal. XPath has no escape
// syntax so text holding both quote kinds is split into a concat() call.
func XPathLiteral(s string) string {
	if !strings.Contains(s, "\"") {
		return "\"" + s + "\""
	}
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}

	parts := strings.Split(s, "\"")
	args := make([]string, 0, len(parts)*2)
	for i, part := range parts {
		if i > 0 {
			args = append(args, "'\"'")
		}
		if part != "" {
			args = append(args, "\""+part+"\"")
		}
	}
	return "concat(" + strings.Join(args, ",") + ")"
}
