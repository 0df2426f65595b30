// Package dnd implements pointer-driven drag-and-drop over a dom.Document.
//
// A Controller consumes press, move and release events. A press on an
// element matching the draggable selector arms a session; once the pointer
// leaves a small dead zone around the press point the session activates:
// the dragged entity is lifted into a container, raised above all other
// content and positioned absolutely under the pointer. On release the
// element under the pointer is resolved to the nearest droppable
// ancestor-or-self. A hit completes the drag through OnDragEnd; a miss puts
// the entity back exactly where it was and reports OnDragCancel.
//
//	c, err := dnd.New(doc, ".card", dnd.WithContainer("#board"))
//	if err != nil {
//	    return err
//	}
//	c.OnDragEnd = func(s dnd.Session, target *dom.Element) {
//	    target.AppendChild(s.Entity)
//	}
//	sub := c.Attach(surface)
//	defer sub.Close()
//
// A Controller is not safe for concurrent use. Events for one document must
// be delivered from a single goroutine, which is what input.Surface and the
// server's per-connection read loop do.
package dnd
