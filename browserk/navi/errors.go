package navi

import (
	"github.com/pkg/errors"
)

// ErrElementNotFound is matched by every ElementNotFoundErr via errors.Is
var ErrElementNotFound = errors.New("element not found")

// ElementNotFoundErr when a locator found nothing in FindElement
type ElementNotFoundErr struct {
	Locator string // description of the locator that failed
}

func (e *ElementNotFoundErr) Error() string {
	return "Cannot locate an element using " + e.Locator
}

// Is lets callers test with errors.Is(err, ErrElementNotFound)
func (e *ElementNotFoundErr) Is(target error) bool {
	return target == ErrElementNotFound
}

// InvalidSelectorErr when a selector can not be compiled or evaluated
type InvalidSelectorErr struct {
	Selector string
	Message  string
}

func (e *InvalidSelectorErr) Error() string {
	return "invalid selector " + e.Selector + ": " + e.Message
}
