package dnd

import (
	"github.com/vango-dev/dragdrop/pkg/dom"
	"github.com/vango-dev/dragdrop/pkg/geom"
)

// pageTopLeft returns e's top-left corner in page coordinates: the
// viewport-relative bounding box plus the current scroll offset.
func (c *Controller) pageTopLeft(e *dom.Element) geom.Point {
	return c.doc.BoundingClientRect(e).Min().Add(c.doc.Scroll())
}

// findDroppable resolves the client point to the nearest droppable
// ancestor-or-self of the topmost element there. The entity is hidden for
// the lookup so it never finds itself. It returns nil when the point is
// outside the viewport or nothing droppable is under it.
func (c *Controller) findDroppable(client geom.Point, entity *dom.Element) *dom.Element {
	wasHidden := entity.Hidden()
	entity.SetHidden(true)
	hit := c.doc.ElementFromPoint(client)
	entity.SetHidden(wasHidden)

	if hit == nil {
		return nil
	}
	return c.droppable.Closest(hit)
}
