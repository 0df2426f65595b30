package dom

import (
	"strconv"
	"strings"

	"github.com/vango-dev/dragdrop/pkg/geom"
)

// Element is a node in a Document.
//
// Elements are not safe for concurrent use. A document and all its elements
// must be confined to one goroutine or externally synchronized.
type Element struct {
	tag      string
	attrs    map[string]string
	classes  []string
	style    Style
	hidden   bool
	box      geom.Rect
	parent   *Element
	children []*Element
	doc      *Document
}

// NewElement creates a detached element with the given tag name.
func NewElement(tag string) *Element {
	return &Element{
		tag:   strings.ToLower(tag),
		attrs: make(map[string]string),
	}
}

// Tag returns the lower-case tag name.
func (e *Element) Tag() string {
	return e.tag
}

// ID returns the id attribute.
func (e *Element) ID() string {
	return e.attrs["id"]
}

// Attr returns an attribute value and whether it is present.
// The class and style attributes are exposed through their own accessors.
func (e *Element) Attr(name string) (string, bool) {
	switch name {
	case "class":
		if len(e.classes) == 0 {
			return "", false
		}
		return strings.Join(e.classes, " "), true
	case "style":
		if e.style.Len() == 0 {
			return "", false
		}
		return e.style.String(), true
	}
	v, ok := e.attrs[name]
	return v, ok
}

// SetAttr sets an attribute. Setting "class" or "style" replaces the
// class list or the inline style.
func (e *Element) SetAttr(name, value string) {
	name = strings.ToLower(name)
	switch name {
	case "class":
		e.classes = strings.Fields(value)
	case "style":
		e.style = ParseStyle(value)
	default:
		e.attrs[name] = value
	}
}

// Classes returns a copy of the class list.
func (e *Element) Classes() []string {
	out := make([]string, len(e.classes))
	copy(out, e.classes)
	return out
}

// HasClass reports whether the element carries the class.
func (e *Element) HasClass(class string) bool {
	for _, c := range e.classes {
		if c == class {
			return true
		}
	}
	return false
}

// AddClass adds a class if it is not already present.
func (e *Element) AddClass(class string) {
	if class == "" || e.HasClass(class) {
		return
	}
	e.classes = append(e.classes, class)
}

// RemoveClass removes a class.
func (e *Element) RemoveClass(class string) {
	for i, c := range e.classes {
		if c == class {
			e.classes = append(e.classes[:i], e.classes[i+1:]...)
			return
		}
	}
}

// Style returns the value of an inline style property, or "".
func (e *Element) Style(name string) string {
	return e.style.Get(name)
}

// SetStyle sets an inline style property. An empty value removes it.
func (e *Element) SetStyle(name, value string) {
	if !e.style.set(name, value) {
		return
	}
	if value == "" {
		e.notify(Mutation{Kind: MutationRemoveStyle, Target: e, Name: name})
		return
	}
	e.notify(Mutation{Kind: MutationSetStyle, Target: e, Name: name, Value: value})
}

// RemoveStyle removes an inline style property.
func (e *Element) RemoveStyle(name string) {
	e.SetStyle(name, "")
}

// StyleText returns the inline style as an attribute value.
func (e *Element) StyleText() string {
	return e.style.String()
}

// Hidden reports whether the element itself is hidden.
func (e *Element) Hidden() bool {
	return e.hidden
}

// SetHidden sets the element's hidden flag. Hidden elements and their
// descendants are skipped by hit testing.
func (e *Element) SetHidden(hidden bool) {
	if e.hidden == hidden {
		return
	}
	e.hidden = hidden
	e.notify(Mutation{Kind: MutationSetHidden, Target: e, Hidden: hidden})
}

// SetBox assigns the static layout box in page coordinates.
func (e *Element) SetBox(r geom.Rect) {
	e.box = r
}

// StaticBox returns the box assigned with SetBox.
func (e *Element) StaticBox() geom.Rect {
	return e.box
}

// LayoutBox returns the element's box in page coordinates, honouring
// absolute positioning with pixel left/top.
func (e *Element) LayoutBox() geom.Rect {
	r := e.box
	if e.style.Get(StylePosition) != "absolute" {
		return r
	}
	if x, ok := geom.ParsePx(e.style.Get(StyleLeft)); ok {
		r.X = x
	}
	if y, ok := geom.ParsePx(e.style.Get(StyleTop)); ok {
		r.Y = y
	}
	return r
}

// ZIndex returns the parsed z-index style and whether one is set.
func (e *Element) ZIndex() (int, bool) {
	v := e.style.Get(StyleZIndex)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Parent returns the parent element, or nil.
func (e *Element) Parent() *Element {
	return e.parent
}

// Children returns a copy of the child list.
func (e *Element) Children() []*Element {
	out := make([]*Element, len(e.children))
	copy(out, e.children)
	return out
}

// NextSibling returns the following sibling, or nil.
func (e *Element) NextSibling() *Element {
	if e.parent == nil {
		return nil
	}
	i := e.parent.indexOf(e)
	if i < 0 || i+1 >= len(e.parent.children) {
		return nil
	}
	return e.parent.children[i+1]
}

// Document returns the document the element is attached to, or nil.
func (e *Element) Document() *Document {
	return e.doc
}

// AppendChild appends child as the last child of e.
func (e *Element) AppendChild(child *Element) {
	e.InsertBefore(child, nil)
}

// InsertBefore inserts child before ref. A nil ref, or a ref that is not a
// child of e, appends. The child is detached from its current parent first.
// Inserting an element into its own subtree is a no-op.
func (e *Element) InsertBefore(child, ref *Element) {
	if child == nil || child == ref || child.Contains(e) {
		return
	}
	if child.parent != nil {
		child.parent.removeChild(child)
	}

	i := -1
	if ref != nil {
		i = e.indexOf(ref)
	}
	if i < 0 {
		e.children = append(e.children, child)
	} else {
		e.children = append(e.children, nil)
		copy(e.children[i+1:], e.children[i:])
		e.children[i] = child
	}
	child.parent = e
	child.setDocument(e.doc)

	var before *Element
	if i >= 0 {
		before = ref
	}
	e.notify(Mutation{Kind: MutationMove, Target: child, Parent: e, Before: before})
}

// Remove detaches the element from its parent.
func (e *Element) Remove() {
	if e.parent == nil {
		return
	}
	doc := e.doc
	e.parent.removeChild(e)
	e.setDocument(nil)
	if doc != nil {
		doc.emit(Mutation{Kind: MutationRemove, Target: e})
	}
}

// Contains reports whether other is e or a descendant of e.
func (e *Element) Contains(other *Element) bool {
	for n := other; n != nil; n = n.parent {
		if n == e {
			return true
		}
	}
	return false
}

// Matches reports whether the element matches the selector.
// An invalid selector matches nothing.
func (e *Element) Matches(selector string) bool {
	sel, err := cachedSelector(selector)
	if err != nil {
		return false
	}
	return sel.Match(e)
}

// Closest returns the nearest ancestor-or-self matching the selector, or nil.
func (e *Element) Closest(selector string) *Element {
	sel, err := cachedSelector(selector)
	if err != nil {
		return nil
	}
	return sel.Closest(e)
}

// String returns a short description such as div#card.draggable.
func (e *Element) String() string {
	if e == nil {
		return "<nil>"
	}
	var b strings.Builder
	b.WriteString(e.tag)
	if id := e.ID(); id != "" {
		b.WriteByte('#')
		b.WriteString(id)
	}
	for _, c := range e.classes {
		b.WriteByte('.')
		b.WriteString(c)
	}
	return b.String()
}

func (e *Element) indexOf(child *Element) int {
	for i, c := range e.children {
		if c == child {
			return i
		}
	}
	return -1
}

func (e *Element) removeChild(child *Element) {
	i := e.indexOf(child)
	if i < 0 {
		return
	}
	e.children = append(e.children[:i], e.children[i+1:]...)
	child.parent = nil
}

func (e *Element) setDocument(doc *Document) {
	e.doc = doc
	for _, c := range e.children {
		c.setDocument(doc)
	}
}

func (e *Element) notify(m Mutation) {
	if e.doc != nil {
		e.doc.emit(m)
	}
}

// walk visits e and its descendants in document order until fn returns false.
func (e *Element) walk(fn func(*Element) bool) bool {
	if !fn(e) {
		return false
	}
	for _, c := range e.children {
		if !c.walk(fn) {
			return false
		}
	}
	return true
}
