package dom

import (
	"strings"

	"github.com/vango-dev/dragdrop/pkg/geom"
)

// Attr is a builder argument that sets one attribute.
type Attr struct {
	Key   string
	Value string
}

// ID sets the id attribute.
func ID(id string) Attr { return Attr{Key: "id", Value: id} }

// Class sets the class attribute, joining multiple classes with spaces.
func Class(classes ...string) Attr { return Attr{Key: "class", Value: strings.Join(classes, " ")} }

// StyleAttr sets the inline style attribute.
func StyleAttr(style string) Attr { return Attr{Key: "style", Value: style} }

// Data creates a data-* attribute.
// Example: Data("slot", "3") → data-slot="3"
func Data(key, value string) Attr { return Attr{Key: "data-" + key, Value: value} }

// BoxArg is a builder argument that sets the static layout box.
type BoxArg geom.Rect

// Box sets the static layout box in page coordinates.
func Box(x, y, w, h float64) BoxArg { return BoxArg(geom.R(x, y, w, h)) }

// El creates an element with the given tag.
// Arguments can be: nil, Attr, []Attr, BoxArg, *Element, []*Element.
// Other argument types are ignored.
func El(tag string, args ...any) *Element {
	e := NewElement(tag)
	for _, arg := range args {
		switch v := arg.(type) {
		case nil:
			continue
		case Attr:
			if v.Key != "" {
				e.SetAttr(v.Key, v.Value)
			}
		case []Attr:
			for _, a := range v {
				if a.Key != "" {
					e.SetAttr(a.Key, a.Value)
				}
			}
		case BoxArg:
			e.box = geom.Rect(v)
		case *Element:
			if v != nil {
				e.AppendChild(v)
			}
		case []*Element:
			for _, c := range v {
				if c != nil {
					e.AppendChild(c)
				}
			}
		}
	}
	return e
}

// Div creates a <div> element.
func Div(args ...any) *Element { return El("div", args...) }

// Span creates a <span> element.
func Span(args ...any) *Element { return El("span", args...) }

// Section creates a <section> element.
func Section(args ...any) *Element { return El("section", args...) }

// Ul creates a <ul> element.
func Ul(args ...any) *Element { return El("ul", args...) }

// Li creates a <li> element.
func Li(args ...any) *Element { return El("li", args...) }

// Img creates an <img> element.
func Img(args ...any) *Element { return El("img", args...) }

// Build creates a document whose body has the given children.
func Build(children ...*Element) *Document {
	d := NewDocument()
	for _, c := range children {
		d.body.AppendChild(c)
	}
	return d
}
