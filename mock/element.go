package mock

import "strings"

// Element is a plain value element for tests
type Element struct {
	Tag        string
	Attributes map[string]string
	Content    string
}

// MakeElement with an id attribute
func MakeElement(tag, id string) *Element {
	return &Element{
		Tag:        tag,
		Attributes: map[string]string{"id": id},
	}
}

func (e *Element) TagName() string {
	return strings.ToLower(e.Tag)
}

func (e *Element) Attribute(name string) (string, bool) {
	v, ok := e.Attributes[name]
	return v, ok
}

func (e *Element) Text() string {
	return e.Content
}
