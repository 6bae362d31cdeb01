package navi_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"gitlab.com/browserker/locate/browserk/navi"
	"gitlab.com/browserker/locate/mock"
)

func TestOrderedFirstMatchWins(t *testing.T) {
	ctx := context.Background()
	e1 := mock.MakeElement("a", "e1")
	e2 := mock.MakeElement("a", "e2")
	e3 := mock.MakeElement("div", "e3")

	sc := mock.NewSearchContext().
		Add(navi.ByName("y"), e1, e2).
		Add(navi.ByCSS(".z"), e3)

	o := navi.Ordered(navi.ByID("x"), navi.ByName("y"), navi.ByCSS(".z"))
	found, err := o.FindElements(ctx, sc)
	if err != nil {
		t.Fatalf("error finding elements: %s\n", err)
	}
	if len(found) != 2 || found[0] != e1 || found[1] != e2 {
		t.Fatalf("expected [e1, e2] got %v\n", found)
	}

	expected := []navi.Selector{*navi.ByID("x"), *navi.ByName("y")}
	if diff := cmp.Diff(expected, sc.Queried()); diff != "" {
		t.Fatalf("css locator should never be queried (-want +got):\n%s", diff)
	}

	first, err := o.FindElement(ctx, sc)
	if err != nil {
		t.Fatalf("error finding element: %s\n", err)
	}
	if first != e1 {
		t.Fatalf("expected e1 got %v\n", first)
	}
}

func TestOrderedNoMatch(t *testing.T) {
	ctx := context.Background()
	sc := mock.NewSearchContext()
	o := navi.Ordered(navi.ByID("x"))

	found, err := o.FindElements(ctx, sc)
	if err != nil {
		t.Fatalf("no match must not be an error: %s\n", err)
	}
	if found == nil || len(found) != 0 {
		t.Fatalf("expected empty result got %v\n", found)
	}

	_, err = o.FindElement(ctx, sc)
	if !errors.Is(err, navi.ErrElementNotFound) {
		t.Fatalf("expected element not found got %v\n", err)
	}
	if err.Error() != "Cannot locate an element using Ordered([By.Id: x])" {
		t.Fatalf("unexpected message: %s\n", err)
	}
}

func TestOrderedEmpty(t *testing.T) {
	ctx := context.Background()
	sc := mock.NewSearchContext()
	o := navi.Ordered()

	found, err := o.FindElements(ctx, sc)
	if err != nil || found == nil || len(found) != 0 {
		t.Fatalf("expected empty result, got %v %v\n", found, err)
	}
	if sc.FindElementsCalled {
		t.Fatalf("empty ordered locator must not query the context")
	}

	var notFound *navi.ElementNotFoundErr
	_, err = o.FindElement(ctx, sc)
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ElementNotFoundErr got %v\n", err)
	}
	if notFound.Locator != "Ordered([])" {
		t.Fatalf("expected Ordered([]) got %s\n", notFound.Locator)
	}
}

func TestOrderedAllEmpty(t *testing.T) {
	ctx := context.Background()
	sc := mock.NewSearchContext()
	o := navi.Ordered(navi.ByID("a"), navi.ByXPath("//b"), navi.ByTagName("c"))

	found, err := o.FindElements(ctx, sc)
	if err != nil {
		t.Fatalf("error: %s\n", err)
	}
	if len(found) != 0 {
		t.Fatalf("expected nothing got %d\n", len(found))
	}
	if len(sc.Queried()) != 3 {
		t.Fatalf("every locator should have been tried, got %d\n", len(sc.Queried()))
	}
}

func TestOrderedErrorPropagates(t *testing.T) {
	ctx := context.Background()
	stale := errors.New("stale context")
	sc := mock.NewSearchContext().
		Fail(navi.ByID("x"), stale).
		Add(navi.ByName("y"), mock.MakeElement("a", "y"))

	o := navi.Ordered(navi.ByID("x"), navi.ByName("y"))
	if _, err := o.FindElements(ctx, sc); err != stale {
		t.Fatalf("expected the context error unchanged got %v\n", err)
	}
	if _, err := o.FindElement(ctx, sc); err != stale {
		t.Fatalf("expected the context error unchanged got %v\n", err)
	}
	for _, q := range sc.Queried() {
		if q.By == navi.Name {
			t.Fatalf("locators after a failure must not be queried")
		}
	}
}

func TestOrderedIsImmutable(t *testing.T) {
	ctx := context.Background()
	e := mock.MakeElement("a", "first")
	sc := mock.NewSearchContext().
		Add(navi.ByID("first"), e).
		Add(navi.ByID("second"), mock.MakeElement("a", "second"))

	locators := []navi.Locator{navi.ByID("first"), navi.ByID("second")}
	o := navi.Ordered(locators...)
	locators[0], locators[1] = locators[1], locators[0]

	found, err := o.FindElement(ctx, sc)
	if err != nil {
		t.Fatalf("error: %s\n", err)
	}
	if found != e {
		t.Fatalf("construction order changed after mutating input")
	}
	if o.String() != "Ordered([By.Id: first,By.Id: second])" {
		t.Fatalf("unexpected description %s\n", o.String())
	}
}

func TestOrderedNested(t *testing.T) {
	ctx := context.Background()
	e := mock.MakeElement("input", "q")
	sc := mock.NewSearchContext().Add(navi.ByCSS("input"), e)

	inner := navi.Ordered(navi.ByID("missing"))
	o := navi.Ordered(inner, navi.ByCSS("input"))

	if o.String() != "Ordered([Ordered([By.Id: missing]),By.CssSelector: input])" {
		t.Fatalf("unexpected description %s\n", o.String())
	}

	found, err := o.FindElement(ctx, sc)
	if err != nil {
		t.Fatalf("error: %s\n", err)
	}
	if found != e {
		t.Fatalf("expected input element")
	}
}

func TestOrderedDescribe(t *testing.T) {
	a := navi.ByID("a")
	b := navi.ByLinkText("Sign in")
	o := navi.Ordered(a, b)
	expected := "Ordered([" + a.String() + "," + b.String() + "])"
	if o.String() != expected {
		t.Fatalf("expected %s got %s\n", expected, o.String())
	}
	if navi.Ordered().String() != "Ordered([])" {
		t.Fatalf("expected Ordered([]) got %s\n", navi.Ordered().String())
	}
	if len(o.Locators()) != 2 {
		t.Fatalf("expected 2 locators")
	}
}
