// Package dom provides the live document model that drag-and-drop operates on.
//
// Unlike a virtual DOM that is diffed and thrown away, a Document here is the
// single source of truth for one page: elements have identity, a parent, an
// ordered style, a hidden flag and a layout box. Mutations are reported to
// observers so a transport can mirror them to a real browser.
//
// # Elements
//
// Elements are created with variadic builders, in the same manner as a vdom:
//
//	dom.Div(dom.ID("card"), dom.Class("card", "draggable"),
//	    dom.Box(10, 10, 100, 40),
//	    dom.Span(dom.Class("handle")),
//	)
//
// # Layout
//
// The module does not run a layout engine. Each element carries a static box
// in page coordinates, assigned by the host (Box, SetBox or a data-box
// attribute). An element positioned with "position: absolute" and pixel
// left/top is laid out at those coordinates instead.
//
// # Hit testing
//
// ElementFromPoint resolves a client (viewport) coordinate to the topmost
// visible element: higher z-index wins, then later document order.
package dom
