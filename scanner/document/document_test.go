package document_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/browserker/locate/browserk/navi"
	"gitlab.com/browserker/locate/scanner/document"
	"gitlab.com/browserker/locate/scanner/fetch"
)

func loadLogin(t *testing.T) *document.Document {
	f, err := os.Open("testdata/login.html")
	require.NoError(t, err)
	defer f.Close()

	doc, err := document.New(f, "file://testdata/login.html")
	require.NoError(t, err)
	return doc
}

func TestDocumentTitle(t *testing.T) {
	doc := loadLogin(t)
	assert.Equal(t, "Sign in to Example", doc.Title())
	assert.Equal(t, "file://testdata/login.html", doc.URL())
}

func TestDocumentStrategies(t *testing.T) {
	ctx := context.Background()
	doc := loadLogin(t)

	var tests = []struct {
		selector *navi.Selector
		count    int
		firstTag string
	}{
		{navi.ByID("login"), 1, "form"},
		{navi.ByName("pass"), 1, "input"},
		{navi.ByCSS("form input.field"), 2, "input"},
		{navi.ByXPath("//button[@type='submit']"), 1, "button"},
		{navi.ByTagName("a"), 5, "a"},
		{navi.ByClassName("nav-link"), 3, "a"},
		{navi.ByClassName("btn-primary"), 1, "button"},
		{navi.ByLinkText("About us"), 1, "a"},
		{navi.ByLinkText("About"), 0, ""},
		{navi.ByPartialLinkText("password"), 1, "a"},
		{navi.ByID("missing"), 0, ""},
	}

	for _, tt := range tests {
		found, err := doc.FindElements(ctx, tt.selector)
		require.NoError(t, err, tt.selector.String())
		require.NotNil(t, found, tt.selector.String())
		require.Len(t, found, tt.count, tt.selector.String())
		if tt.count > 0 {
			assert.Equal(t, tt.firstTag, found[0].TagName(), tt.selector.String())
		}
	}
}

func TestDocumentDocumentOrder(t *testing.T) {
	doc := loadLogin(t)
	found, err := doc.FindElements(context.Background(), navi.ByClassName("nav-link"))
	require.NoError(t, err)
	require.Len(t, found, 3)

	hrefs := make([]string, 0, len(found))
	for _, e := range found {
		href, ok := e.Attribute("href")
		require.True(t, ok)
		hrefs = append(hrefs, href)
	}
	assert.Equal(t, []string{"/", "/about", "/login"}, hrefs)
}

func TestElementAccessors(t *testing.T) {
	doc := loadLogin(t)
	e, err := navi.ByPartialLinkText("support").FindElement(context.Background(), doc)
	require.NoError(t, err)

	assert.Equal(t, "Contact support", e.Text())
	title, ok := e.Attribute("title")
	assert.True(t, ok)
	assert.Equal(t, `say "hi"`, title)
	_, ok = e.Attribute("nope")
	assert.False(t, ok)

	html, err := e.(*document.Element).HTML()
	require.NoError(t, err)
	assert.Contains(t, html, `href="/help"`)
}

func TestElementScopedSearch(t *testing.T) {
	ctx := context.Background()
	doc := loadLogin(t)

	form, err := navi.ByID("login").FindElement(ctx, doc)
	require.NoError(t, err)
	scoped := form.(*document.Element)

	links, err := scoped.FindElements(ctx, navi.ByTagName("a"))
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, "Forgot your password?", links[0].Text())

	// link text queries are relative to the element
	links, err = scoped.FindElements(ctx, navi.ByLinkText("Home"))
	require.NoError(t, err)
	assert.Len(t, links, 0)

	// the element itself is not part of its own search
	self, err := scoped.FindElements(ctx, navi.ByID("login"))
	require.NoError(t, err)
	assert.Len(t, self, 0)
}

func TestDocumentInvalidSelectors(t *testing.T) {
	ctx := context.Background()
	doc := loadLogin(t)

	for _, s := range []*navi.Selector{
		navi.ByCSS("div[["),
		navi.ByXPath("//a[@"),
		navi.ByXPath("//a/@href"),
		navi.ByClassName("two classes"),
	} {
		_, err := doc.FindElements(ctx, s)
		var invalid *navi.InvalidSelectorErr
		assert.ErrorAs(t, err, &invalid, s.String())
	}
}

func TestDocumentOrdered(t *testing.T) {
	ctx := context.Background()
	doc := loadLogin(t)

	o := navi.Ordered(navi.ByID("username"), navi.ByName("user"), navi.ByCSS("input"))
	found, err := o.FindElements(ctx, doc)
	require.NoError(t, err)
	require.Len(t, found, 1)
	name, _ := found[0].Attribute("name")
	assert.Equal(t, "user", name)

	_, err = navi.Ordered(navi.ByID("a"), navi.ByID("b")).FindElement(ctx, doc)
	assert.ErrorIs(t, err, navi.ErrElementNotFound)
	assert.EqualError(t, err, "Cannot locate an element using Ordered([By.Id: a,By.Id: b])")
}

func TestDocumentCancelled(t *testing.T) {
	doc := loadLogin(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := doc.FindElements(ctx, navi.ByTagName("a"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoad(t *testing.T) {
	doc, err := document.Load(context.Background(), &fetch.FileFetcher{}, "testdata/login.html")
	require.NoError(t, err)
	found, err := doc.FindElements(context.Background(), navi.ByTagName("input"))
	require.NoError(t, err)
	assert.Len(t, found, 2)

	_, err = document.Load(context.Background(), &fetch.FileFetcher{}, "testdata/missing.html")
	assert.Error(t, err)
}
