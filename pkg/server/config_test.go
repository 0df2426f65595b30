package server

import (
	"testing"

	"github.com/vango-dev/dragdrop/pkg/dnd"
	"github.com/vango-dev/dragdrop/pkg/protocol"
)

func TestWithDefaultsDeadZone(t *testing.T) {
	tests := []struct {
		name   string
		config *ServerConfig
		want   float64
	}{
		{"nil config", nil, dnd.DefaultDeadZone},
		{"empty config", &ServerConfig{}, dnd.DefaultDeadZone},
		{"unset drag section", &ServerConfig{Address: ":0"}, dnd.DefaultDeadZone},
		{"explicit zero", &ServerConfig{Drag: DragConfig{DeadZone: DeadZone(0)}}, 0},
		{"explicit value", &ServerConfig{Drag: DragConfig{DeadZone: DeadZone(8)}}, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.config.withDefaults().Drag
			if got.DeadZone == nil || *got.DeadZone != tt.want {
				t.Errorf("DeadZone = %v, want %v", got.DeadZone, tt.want)
			}
		})
	}
}

func TestWithDefaultsKeepsCallerConfig(t *testing.T) {
	c := &ServerConfig{Address: ":0"}
	c.withDefaults()
	if c.Drag.DeadZone != nil || c.ReadTimeout != 0 {
		t.Errorf("withDefaults modified its receiver: %+v", c)
	}
}

func TestJitterDoesNotActivate(t *testing.T) {
	for _, cfg := range []DragConfig{
		(&ServerConfig{Address: ":0"}).withDefaults().Drag,
		{Draggable: ".draggable"},
	} {
		h, err := NewHost(canonicalPage(t), cfg)
		if err != nil {
			t.Fatalf("NewHost: %v", err)
		}

		apply(t, h, pointer(protocol.EventPointerDown, "card", 20, 20))
		if got := apply(t, h, pointer(protocol.EventPointerMove, "card", 21, 20)); len(got) != 0 {
			t.Errorf("1px move produced patches: %+v", got)
		}
		if h.Controller().Dragging() {
			t.Error("1px move activated a drag")
		}
		apply(t, h, pointer(protocol.EventPointerMove, "card", 24, 20))
		if !h.Controller().Dragging() {
			t.Error("move past the dead zone did not activate")
		}
		h.Close()
	}
}

func TestDragConfigZeroDeadZone(t *testing.T) {
	cfg := testDragConfig()
	cfg.DeadZone = DeadZone(0)
	h := newTestHostConfig(t, cfg)

	apply(t, h, pointer(protocol.EventPointerDown, "card", 20, 20))
	apply(t, h, pointer(protocol.EventPointerMove, "card", 21, 20))
	if !h.Controller().Dragging() {
		t.Error("zero dead zone did not activate on the first move")
	}
}
