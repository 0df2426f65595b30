package dnd

import (
	"github.com/vango-dev/dragdrop/pkg/dom"
	"github.com/vango-dev/dragdrop/pkg/geom"
)

// RestoreState is the pre-drag snapshot of the dragged entity. It is taken
// once, when the entity is created, and only used to undo a cancelled drag.
type RestoreState struct {
	// Parent and NextSibling locate the entity in the tree. Parent is nil
	// when the entity was detached (for example a freshly built proxy).
	Parent      *dom.Element
	NextSibling *dom.Element

	// Inline style values; "" means the property was unset.
	Position string
	Left     string
	Top      string
	ZIndex   string
}

func captureRestore(e *dom.Element) RestoreState {
	return RestoreState{
		Parent:      e.Parent(),
		NextSibling: e.NextSibling(),
		Position:    e.Style(dom.StylePosition),
		Left:        e.Style(dom.StyleLeft),
		Top:         e.Style(dom.StyleTop),
		ZIndex:      e.Style(dom.StyleZIndex),
	}
}

// apply puts e back into its recorded position and style.
func (r RestoreState) apply(e *dom.Element) {
	if r.Parent != nil {
		r.Parent.InsertBefore(e, r.NextSibling)
	} else {
		e.Remove()
	}
	e.SetStyle(dom.StylePosition, r.Position)
	e.SetStyle(dom.StyleLeft, r.Left)
	e.SetStyle(dom.StyleTop, r.Top)
	e.SetStyle(dom.StyleZIndex, r.ZIndex)
}

// Session is a read-only snapshot of a drag session, handed to callbacks
// and observers. Entity, PointerOffset and Restore are zero until the
// session activates.
type Session struct {
	Source        *dom.Element
	PressPoint    geom.Point
	Entity        *dom.Element
	PointerOffset geom.Point
	Restore       RestoreState
}

// Active reports whether the session got past the dead zone.
func (s Session) Active() bool {
	return s.Entity != nil
}

// state is the controller's session: exactly one of idle, *armed or *active.
type state interface {
	snapshot() Session
}

type idle struct{}

func (idle) snapshot() Session { return Session{} }

// armed: pressed on a draggable, dead zone not yet left.
type armed struct {
	source *dom.Element
	press  geom.Point
}

func (a *armed) snapshot() Session {
	return Session{Source: a.source, PressPoint: a.press}
}

// active: entity lifted and following the pointer.
type active struct {
	armed
	entity  *dom.Element
	offset  geom.Point
	restore RestoreState
}

func (a *active) snapshot() Session {
	return Session{
		Source:        a.source,
		PressPoint:    a.press,
		Entity:        a.entity,
		PointerOffset: a.offset,
		Restore:       a.restore,
	}
}
