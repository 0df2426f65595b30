// Package input delivers pointer events to any number of subscribers.
//
// A Surface replaces the single document-wide press/move/release handler
// slots of a browser page with explicit registration: every subscriber gets
// a Subscription it can Close, and several controllers or other listeners
// can share one surface.
package input

import (
	"sync"

	"github.com/vango-dev/dragdrop/pkg/dom"
	"github.com/vango-dev/dragdrop/pkg/geom"
)

// PointerKind identifies the phase of a pointer event.
type PointerKind uint8

const (
	Press   PointerKind = iota + 1 // button went down
	Move                           // pointer moved
	Release                        // button went up
)

// String returns the string representation of the kind.
func (k PointerKind) String() string {
	switch k {
	case Press:
		return "Press"
	case Move:
		return "Move"
	case Release:
		return "Release"
	default:
		return "Unknown"
	}
}

// Button identifies a pointer button, numbered as in DOM MouseEvent.button.
type Button uint8

const (
	ButtonPrimary   Button = 0
	ButtonAuxiliary Button = 1
	ButtonSecondary Button = 2
)

// PointerEvent is one press, move or release.
type PointerEvent struct {
	Kind   PointerKind
	Button Button

	// Client is the position relative to the viewport.
	Client geom.Point

	// Page is the position relative to the document origin.
	Page geom.Point

	// Target is the element the event was dispatched to.
	Target *dom.Element
}

// Result is a handler's verdict on an event.
type Result struct {
	// PreventDefault suppresses the host's default handling (native image
	// drag, text selection).
	PreventDefault bool
}

// Merge combines two results; any handler may prevent default.
func (r Result) Merge(o Result) Result {
	return Result{PreventDefault: r.PreventDefault || o.PreventDefault}
}

// Handler receives pointer events.
type Handler interface {
	HandlePointer(ev PointerEvent) Result
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ev PointerEvent) Result

// HandlePointer implements Handler.
func (f HandlerFunc) HandlePointer(ev PointerEvent) Result {
	return f(ev)
}

// Surface fans pointer events out to its subscribers.
//
// Subscribe and Close may be called from any goroutine. Dispatch calls
// handlers synchronously, in subscription order, on the caller's goroutine.
type Surface struct {
	mu     sync.Mutex
	subs   []*Subscription
	nextID uint64
}

// NewSurface creates an empty surface.
func NewSurface() *Surface {
	return &Surface{}
}

// Subscription is the disposable handle returned by Subscribe.
type Subscription struct {
	id      uint64
	surface *Surface
	handler Handler
	once    sync.Once
}

// Subscribe registers h. Events dispatched after Subscribe returns are
// delivered until the subscription is closed.
func (s *Surface) Subscribe(h Handler) *Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	sub := &Subscription{id: s.nextID, surface: s, handler: h}
	s.subs = append(s.subs, sub)
	return sub
}

// Len returns the number of live subscriptions.
func (s *Surface) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// Dispatch delivers ev to every subscriber and merges their results.
// Subscriptions closed by a handler during dispatch still receive the
// current event if they had not been reached yet; they get nothing after.
func (s *Surface) Dispatch(ev PointerEvent) Result {
	s.mu.Lock()
	subs := make([]*Subscription, len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	var res Result
	for _, sub := range subs {
		res = res.Merge(sub.handler.HandlePointer(ev))
	}
	return res
}

// Close unsubscribes. It is safe to call more than once.
func (sub *Subscription) Close() {
	sub.once.Do(func() {
		s := sub.surface
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, other := range s.subs {
			if other.id == sub.id {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				return
			}
		}
	})
}
