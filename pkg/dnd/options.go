package dnd

import (
	"log/slog"

	"github.com/vango-dev/dragdrop/pkg/dom"
	"github.com/vango-dev/dragdrop/pkg/geom"
)

const (
	// DefaultDeadZone is the activation threshold: the pointer must move at
	// least this far from the press point on either axis before dragging
	// starts. Smaller movements are treated as jitter.
	DefaultDeadZone = 3

	// DefaultTopZIndex is the z-index given to an entity in flight so it
	// stays above all other content.
	DefaultTopZIndex = 9999

	// DefaultDroppable marks elements that accept drops.
	DefaultDroppable = ".droppable"
)

// GrabFunc produces the entity to drag for a press on source at the page
// point press. Returning nil means the element cannot be dragged from that
// point and abandons the session.
type GrabFunc func(source *dom.Element, press geom.Point) *dom.Element

// GrabSource is the default GrabFunc: the source element itself is dragged.
func GrabSource(source *dom.Element, _ geom.Point) *dom.Element {
	return source
}

// Config holds the controller settings. Use the With* options to set them.
type Config struct {
	// Container selects where entities are re-parented while in flight.
	// Empty means the document body.
	Container string

	// Droppable selects drop targets. Default: DefaultDroppable.
	Droppable string

	// DeadZone is the activation threshold. Default: DefaultDeadZone.
	DeadZone float64

	// TopZIndex is the z-index of an entity in flight.
	// Default: DefaultTopZIndex.
	TopZIndex int

	// Grab builds the dragged entity. Default: GrabSource.
	Grab GrabFunc

	// Logger receives debug logs of session transitions.
	// Default: slog.Default().
	Logger *slog.Logger

	// Observer is notified of activations and outcomes. Default: none.
	Observer Observer
}

// Option configures a Controller.
type Option func(*Config)

// WithContainer sets the in-flight container selector.
func WithContainer(selector string) Option {
	return func(c *Config) {
		c.Container = selector
	}
}

// WithDroppable sets the drop target selector.
func WithDroppable(selector string) Option {
	return func(c *Config) {
		c.Droppable = selector
	}
}

// WithDeadZone sets the activation threshold.
func WithDeadZone(n float64) Option {
	return func(c *Config) {
		c.DeadZone = n
	}
}

// WithTopZIndex sets the in-flight z-index.
func WithTopZIndex(z int) Option {
	return func(c *Config) {
		c.TopZIndex = z
	}
}

// WithGrab sets the entity construction function.
func WithGrab(fn GrabFunc) Option {
	return func(c *Config) {
		c.Grab = fn
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithObserver sets the lifecycle observer.
func WithObserver(o Observer) Option {
	return func(c *Config) {
		c.Observer = o
	}
}

func defaultConfig() Config {
	return Config{
		Droppable: DefaultDroppable,
		DeadZone:  DefaultDeadZone,
		TopZIndex: DefaultTopZIndex,
		Grab:      GrabSource,
	}
}
