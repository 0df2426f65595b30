package server

import (
	"net/http"
	"time"

	"github.com/vango-dev/dragdrop/pkg/dnd"
)

// ServerConfig holds server configuration.
type ServerConfig struct {
	// Address is the listen address. Default: ":8080".
	Address string

	// ReadBufferSize and WriteBufferSize size the WebSocket buffers.
	// Default: 4096 each.
	ReadBufferSize  int
	WriteBufferSize int

	// ReadTimeout closes sessions that send nothing for this long.
	// Default: 60 seconds.
	ReadTimeout time.Duration

	// WriteTimeout bounds every frame write. Default: 10 seconds.
	WriteTimeout time.Duration

	// MaxMessageSize is the maximum size of an incoming WebSocket message.
	// Default: 64KB.
	MaxMessageSize int64

	// ShutdownTimeout bounds graceful shutdown. Default: 10 seconds.
	ShutdownTimeout time.Duration

	// MoveRate limits pointer moves per second per session; moves above
	// the limit are dropped before they reach the controller. Presses,
	// releases and viewport events are never limited. Default: 0, no limit.
	MoveRate float64

	// MoveBurst is the number of moves allowed at once when MoveRate is
	// set. Default: 60.
	MoveBurst int

	// CheckOrigin validates WebSocket origins. Default: same host only.
	CheckOrigin func(*http.Request) bool

	// Drag configures each session's controller.
	Drag DragConfig
}

// DragConfig configures the drag controller of every session.
type DragConfig struct {
	Draggable string
	Container string
	Droppable string

	// DeadZone is the activation threshold. Nil means dnd.DefaultDeadZone;
	// point it at 0 to activate on the first move.
	DeadZone *float64

	TopZIndex int
}

// DeadZone returns a pointer to n for DragConfig.DeadZone.
func DeadZone(n float64) *float64 {
	return &n
}

// DefaultServerConfig returns a ServerConfig with sensible defaults.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Address:         ":8080",
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		ReadTimeout:     60 * time.Second,
		WriteTimeout:    10 * time.Second,
		MaxMessageSize:  64 * 1024,
		ShutdownTimeout: 10 * time.Second,
		MoveBurst:       60,
		Drag: DragConfig{
			Draggable: ".draggable",
			Container: "body",
			Droppable: dnd.DefaultDroppable,
			DeadZone:  DeadZone(dnd.DefaultDeadZone),
			TopZIndex: dnd.DefaultTopZIndex,
		},
	}
}

// withDefaults fills unset fields from DefaultServerConfig.
func (c *ServerConfig) withDefaults() *ServerConfig {
	d := DefaultServerConfig()
	if c == nil {
		return d
	}
	out := *c
	if out.Address == "" {
		out.Address = d.Address
	}
	if out.ReadBufferSize == 0 {
		out.ReadBufferSize = d.ReadBufferSize
	}
	if out.WriteBufferSize == 0 {
		out.WriteBufferSize = d.WriteBufferSize
	}
	if out.ReadTimeout == 0 {
		out.ReadTimeout = d.ReadTimeout
	}
	if out.WriteTimeout == 0 {
		out.WriteTimeout = d.WriteTimeout
	}
	if out.MaxMessageSize == 0 {
		out.MaxMessageSize = d.MaxMessageSize
	}
	if out.ShutdownTimeout == 0 {
		out.ShutdownTimeout = d.ShutdownTimeout
	}
	if out.MoveBurst == 0 {
		out.MoveBurst = d.MoveBurst
	}
	if out.Drag.Draggable == "" {
		out.Drag.Draggable = d.Drag.Draggable
	}
	if out.Drag.Container == "" {
		out.Drag.Container = d.Drag.Container
	}
	if out.Drag.Droppable == "" {
		out.Drag.Droppable = d.Drag.Droppable
	}
	if out.Drag.DeadZone == nil {
		out.Drag.DeadZone = d.Drag.DeadZone
	}
	if out.Drag.TopZIndex == 0 {
		out.Drag.TopZIndex = d.Drag.TopZIndex
	}
	return &out
}

// controllerOptions converts the drag config to dnd options.
func (d DragConfig) controllerOptions() []dnd.Option {
	return []dnd.Option{
		dnd.WithContainer(d.Container),
		dnd.WithDroppable(d.Droppable),
		dnd.WithDeadZone(d.deadZone()),
		dnd.WithTopZIndex(d.TopZIndex),
	}
}

func (d DragConfig) deadZone() float64 {
	if d.DeadZone == nil {
		return dnd.DefaultDeadZone
	}
	return *d.DeadZone
}
