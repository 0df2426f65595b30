package dom

import (
	"github.com/vango-dev/dragdrop/pkg/geom"
)

// MutationKind identifies a change reported to document observers.
type MutationKind uint8

const (
	MutationSetStyle    MutationKind = iota + 1 // inline style property set
	MutationRemoveStyle                         // inline style property removed
	MutationMove                                // element (re)inserted under Parent before Before
	MutationRemove                              // element detached from the document
	MutationSetHidden                           // hidden flag changed
)

// String returns the string representation of the mutation kind.
func (k MutationKind) String() string {
	switch k {
	case MutationSetStyle:
		return "SetStyle"
	case MutationRemoveStyle:
		return "RemoveStyle"
	case MutationMove:
		return "Move"
	case MutationRemove:
		return "Remove"
	case MutationSetHidden:
		return "SetHidden"
	default:
		return "Unknown"
	}
}

// Mutation describes one change to an attached element.
type Mutation struct {
	Kind   MutationKind
	Target *Element

	// Style mutations.
	Name  string
	Value string

	// Move mutations. Before is nil when Target was appended.
	Parent *Element
	Before *Element

	// SetHidden mutations.
	Hidden bool
}

// Document is a tree of elements rooted at <html> with a single <body>,
// plus the viewport state needed to map client coordinates to page
// coordinates.
type Document struct {
	root     *Element
	body     *Element
	scroll   geom.Point
	viewport geom.Point

	observers []observer
	nextObs   int
}

type observer struct {
	id int
	fn func(Mutation)
}

// NewDocument creates an empty document with <html> and <body>.
// The viewport is unbounded until SetViewport is called.
func NewDocument() *Document {
	root := NewElement("html")
	body := NewElement("body")
	root.children = []*Element{body}
	body.parent = root
	return newDocument(root, body)
}

func newDocument(root, body *Element) *Document {
	d := &Document{
		root: root,
		body: body,
	}
	root.setDocument(d)
	return d
}

// Root returns the <html> element.
func (d *Document) Root() *Element {
	return d.root
}

// Body returns the <body> element.
func (d *Document) Body() *Element {
	return d.body
}

// Scroll returns the current page scroll offset.
func (d *Document) Scroll() geom.Point {
	return d.scroll
}

// SetScroll sets the page scroll offset.
func (d *Document) SetScroll(p geom.Point) {
	d.scroll = p
}

// Viewport returns the viewport size as (width, height). A zero size means
// the viewport is unbounded.
func (d *Document) Viewport() geom.Point {
	return d.viewport
}

// SetViewport sets the viewport size.
func (d *Document) SetViewport(width, height float64) {
	d.viewport = geom.Pt(width, height)
}

// ClientToPage converts a viewport coordinate to a page coordinate.
func (d *Document) ClientToPage(p geom.Point) geom.Point {
	return p.Add(d.scroll)
}

// BoundingClientRect returns the element's box relative to the viewport.
func (d *Document) BoundingClientRect(e *Element) geom.Rect {
	return e.LayoutBox().Translate(geom.Pt(-d.scroll.X, -d.scroll.Y))
}

// ElementByID returns the first element with the given id, or nil.
func (d *Document) ElementByID(id string) *Element {
	if id == "" {
		return nil
	}
	var found *Element
	d.root.walk(func(e *Element) bool {
		if e.ID() == id {
			found = e
			return false
		}
		return true
	})
	return found
}

// QuerySelector returns the first element in document order matching the
// selector.
func (d *Document) QuerySelector(selector string) (*Element, error) {
	sel, err := cachedSelector(selector)
	if err != nil {
		return nil, err
	}
	var found *Element
	d.root.walk(func(e *Element) bool {
		if sel.Match(e) {
			found = e
			return false
		}
		return true
	})
	return found, nil
}

// QuerySelectorAll returns all elements matching the selector in document
// order.
func (d *Document) QuerySelectorAll(selector string) ([]*Element, error) {
	sel, err := cachedSelector(selector)
	if err != nil {
		return nil, err
	}
	var out []*Element
	d.root.walk(func(e *Element) bool {
		if sel.Match(e) {
			out = append(out, e)
		}
		return true
	})
	return out, nil
}

// ElementFromPoint returns the topmost visible element at the client
// coordinate p. It returns nil when p is outside a bounded viewport.
// When no element box contains the point, the body is returned.
func (d *Document) ElementFromPoint(p geom.Point) *Element {
	if !d.inViewport(p) {
		return nil
	}
	page := d.ClientToPage(p)

	var (
		hit  *Element
		hitZ int
	)
	var visit func(e *Element, z int)
	visit = func(e *Element, z int) {
		if e.hidden {
			return
		}
		if own, ok := e.ZIndex(); ok {
			z = own
		}
		// Later document order paints on top, so >= lets it win ties.
		if e.LayoutBox().Contains(page) && (hit == nil || z >= hitZ) {
			hit, hitZ = e, z
		}
		for _, c := range e.children {
			visit(c, z)
		}
	}
	visit(d.root, 0)

	if hit == nil {
		return d.body
	}
	return hit
}

// Observe registers fn to receive every mutation of attached elements.
// The returned function unregisters it.
func (d *Document) Observe(fn func(Mutation)) (cancel func()) {
	id := d.nextObs
	d.nextObs++
	d.observers = append(d.observers, observer{id: id, fn: fn})
	return func() {
		for i, o := range d.observers {
			if o.id == id {
				d.observers = append(d.observers[:i], d.observers[i+1:]...)
				return
			}
		}
	}
}

func (d *Document) emit(m Mutation) {
	for _, o := range d.observers {
		o.fn(m)
	}
}

func (d *Document) inViewport(p geom.Point) bool {
	if d.viewport.X <= 0 || d.viewport.Y <= 0 {
		return true
	}
	return geom.R(0, 0, d.viewport.X, d.viewport.Y).Contains(p)
}
