package dnd

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/vango-dev/dragdrop/pkg/dom"
	"github.com/vango-dev/dragdrop/pkg/geom"
	"github.com/vango-dev/dragdrop/pkg/input"
)

// Construction errors.
var (
	ErrNoDocument       = errors.New("dnd: nil document")
	ErrNoDraggable      = errors.New("dnd: draggable selector is required")
	ErrInvalidSelector  = errors.New("dnd: invalid selector")
	ErrNegativeDeadZone = errors.New("dnd: dead zone must not be negative")
)

// Controller is the drag state machine for one document.
type Controller struct {
	doc       *dom.Document
	draggable *dom.Selector
	droppable *dom.Selector
	container *dom.Selector // nil: body
	deadZone  float64
	topZIndex string
	grab      GrabFunc
	observer  Observer
	logger    *slog.Logger

	state state

	// OnDragEnd is called once per drag released over a droppable, with
	// the droppable element. The host finalizes the drop; the entity is
	// left in the container with its in-flight style.
	OnDragEnd func(s Session, target *dom.Element)

	// OnDragCancel is called once per drag released anywhere else, after
	// the entity has been restored.
	OnDragCancel func(s Session)
}

// New creates a controller for doc. Elements matching draggableSelector
// (or having such an ancestor) can be dragged.
func New(doc *dom.Document, draggableSelector string, opts ...Option) (*Controller, error) {
	if doc == nil {
		return nil, ErrNoDocument
	}
	if draggableSelector == "" {
		return nil, ErrNoDraggable
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.DeadZone < 0 {
		return nil, ErrNegativeDeadZone
	}
	if cfg.Droppable == "" {
		cfg.Droppable = DefaultDroppable
	}
	if cfg.Grab == nil {
		cfg.Grab = GrabSource
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	draggable, err := compile("draggable", draggableSelector)
	if err != nil {
		return nil, err
	}
	droppable, err := compile("droppable", cfg.Droppable)
	if err != nil {
		return nil, err
	}
	var container *dom.Selector
	if cfg.Container != "" {
		if container, err = compile("container", cfg.Container); err != nil {
			return nil, err
		}
	}

	return &Controller{
		doc:          doc,
		draggable:    draggable,
		droppable:    droppable,
		container:    container,
		deadZone:     cfg.DeadZone,
		topZIndex:    strconv.Itoa(cfg.TopZIndex),
		grab:         cfg.Grab,
		observer:     cfg.Observer,
		logger:       cfg.Logger.With("component", "dnd"),
		state:        idle{},
		OnDragEnd:    func(Session, *dom.Element) {},
		OnDragCancel: func(Session) {},
	}, nil
}

func compile(role, selector string) (*dom.Selector, error) {
	sel, err := dom.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidSelector, role, err)
	}
	return sel, nil
}

// Attach subscribes the controller to a surface. Close the returned
// subscription to detach it.
func (c *Controller) Attach(s *input.Surface) *input.Subscription {
	return s.Subscribe(c)
}

// Session returns a snapshot of the current session and whether one exists.
func (c *Controller) Session() (Session, bool) {
	if _, ok := c.state.(idle); ok {
		return Session{}, false
	}
	return c.state.snapshot(), true
}

// Dragging reports whether a session is active.
func (c *Controller) Dragging() bool {
	_, ok := c.state.(*active)
	return ok
}

// HandlePointer implements input.Handler.
func (c *Controller) HandlePointer(ev input.PointerEvent) input.Result {
	switch ev.Kind {
	case input.Press:
		return c.press(ev)
	case input.Move:
		return c.move(ev)
	case input.Release:
		return c.release(ev)
	default:
		return input.Result{}
	}
}

func (c *Controller) press(ev input.PointerEvent) input.Result {
	if ev.Button != input.ButtonPrimary {
		return input.Result{}
	}
	switch s := c.state.(type) {
	case *active:
		// Lost release: keep the running drag, it ends on the next release.
		return input.Result{PreventDefault: true}
	case *armed:
		// Lost release before activation: nothing was moved, start over.
		c.state = idle{}
		c.finished(OutcomeReleased, s.snapshot(), nil)
	}

	target := ev.Target
	if target == nil {
		target = c.doc.ElementFromPoint(ev.Client)
	}
	source := c.draggable.Closest(target)
	if source == nil {
		return input.Result{}
	}

	c.state = &armed{source: source, press: ev.Page}
	c.logger.Debug("drag armed", "source", source.String(), "press", ev.Page.String())
	return input.Result{PreventDefault: true}
}

func (c *Controller) move(ev input.PointerEvent) input.Result {
	var st *active
	switch s := c.state.(type) {
	case *armed:
		if ev.Page.Sub(s.press).Within(c.deadZone) {
			return input.Result{}
		}
		act, ok := c.activate(s)
		if !ok {
			c.state = idle{}
			c.logger.Debug("drag aborted", "source", s.source.String())
			c.finished(OutcomeAborted, s.snapshot(), nil)
			return input.Result{}
		}
		c.state = act
		st = act
	case *active:
		st = s
	default:
		return input.Result{}
	}

	pos := ev.Page.Sub(st.offset)
	st.entity.SetStyle(dom.StyleLeft, geom.Px(pos.X))
	st.entity.SetStyle(dom.StyleTop, geom.Px(pos.Y))
	return input.Result{PreventDefault: true}
}

// activate lifts the entity out of the flow. It returns false when the grab
// function refuses.
func (c *Controller) activate(a *armed) (*active, bool) {
	entity := c.grab(a.source, a.press)
	if entity == nil {
		return nil, false
	}

	act := &active{
		armed:   *a,
		entity:  entity,
		restore: captureRestore(entity),
	}
	act.offset = a.press.Sub(c.pageTopLeft(entity))

	c.resolveContainer().AppendChild(entity)
	entity.SetStyle(dom.StyleZIndex, c.topZIndex)
	entity.SetStyle(dom.StylePosition, "absolute")

	c.logger.Debug("drag activated",
		"source", a.source.String(),
		"entity", entity.String(),
		"offset", act.offset.String())
	if c.observer != nil {
		c.observer.Activated(act.snapshot())
	}
	return act, true
}

func (c *Controller) release(ev input.PointerEvent) input.Result {
	switch s := c.state.(type) {
	case *armed:
		c.state = idle{}
		c.finished(OutcomeReleased, s.snapshot(), nil)
	case *active:
		c.state = idle{}
		snap := s.snapshot()
		if target := c.findDroppable(ev.Client, s.entity); target != nil {
			c.logger.Debug("drag dropped", "entity", s.entity.String(), "target", target.String())
			c.OnDragEnd(snap, target)
			c.finished(OutcomeDropped, snap, target)
		} else {
			s.restore.apply(s.entity)
			c.logger.Debug("drag cancelled", "entity", s.entity.String())
			c.OnDragCancel(snap)
			c.finished(OutcomeCancelled, snap, nil)
		}
	}
	return input.Result{}
}

func (c *Controller) finished(o Outcome, s Session, target *dom.Element) {
	if c.observer != nil {
		c.observer.Finished(o, s, target)
	}
}

func (c *Controller) resolveContainer() *dom.Element {
	if c.container == nil {
		return c.doc.Body()
	}
	found, err := c.doc.QuerySelector(c.container.String())
	if err != nil || found == nil {
		c.logger.Warn("drag container not found, using body", "selector", c.container.String())
		return c.doc.Body()
	}
	return found
}
