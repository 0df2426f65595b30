package protocol

import (
	"errors"
	"fmt"
)

// EventType identifies the type of client event.
type EventType uint8

// Event type constants. Pointer codes share the values the mouse events
// had in earlier revisions of the protocol.
const (
	EventPointerDown EventType = 0x03
	EventPointerUp   EventType = 0x04
	EventPointerMove EventType = 0x05

	EventScroll EventType = 0x30
	EventResize EventType = 0x31
)

// ErrUnknownEvent is returned when decoding an event with an unknown type.
var ErrUnknownEvent = errors.New("protocol: unknown event type")

// String returns the string representation of the event type.
func (et EventType) String() string {
	switch et {
	case EventPointerDown:
		return "PointerDown"
	case EventPointerUp:
		return "PointerUp"
	case EventPointerMove:
		return "PointerMove"
	case EventScroll:
		return "Scroll"
	case EventResize:
		return "Resize"
	default:
		return fmt.Sprintf("EventType(0x%02x)", uint8(et))
	}
}

// Event is a client event.
//
// Wire format:
//
//	[Type:1][Seq:varint][Target:string][Payload...]
//
// Target is the id of the element under the pointer, or "" when the
// client could not name one.
type Event struct {
	Type    EventType
	Seq     uint64
	Target  string
	Payload any
}

// PointerEventData is the payload of pointer events. Client coordinates
// are relative to the viewport, page coordinates to the document.
type PointerEventData struct {
	ClientX, ClientY float64
	PageX, PageY     float64
	Button           uint8
}

// ScrollEventData is the payload of EventScroll: the page scroll offset.
type ScrollEventData struct {
	X, Y float64
}

// ResizeEventData is the payload of EventResize: the viewport size.
type ResizeEventData struct {
	Width, Height float64
}

// EncodeEvent encodes an event payload.
func EncodeEvent(ev *Event) ([]byte, error) {
	e := NewEncoder()
	if err := EncodeEventTo(e, ev); err != nil {
		return nil, err
	}
	return e.Bytes(), nil
}

// EncodeEventTo encodes an event into e.
func EncodeEventTo(e *Encoder, ev *Event) error {
	e.WriteByte(byte(ev.Type))
	e.WriteUvarint(ev.Seq)
	e.WriteString(ev.Target)

	switch ev.Type {
	case EventPointerDown, EventPointerUp, EventPointerMove:
		p, ok := ev.Payload.(*PointerEventData)
		if !ok {
			return fmt.Errorf("protocol: %s event needs *PointerEventData, got %T", ev.Type, ev.Payload)
		}
		e.WriteFloat64(p.ClientX)
		e.WriteFloat64(p.ClientY)
		e.WriteFloat64(p.PageX)
		e.WriteFloat64(p.PageY)
		e.WriteByte(p.Button)
	case EventScroll:
		p, ok := ev.Payload.(*ScrollEventData)
		if !ok {
			return fmt.Errorf("protocol: %s event needs *ScrollEventData, got %T", ev.Type, ev.Payload)
		}
		e.WriteFloat64(p.X)
		e.WriteFloat64(p.Y)
	case EventResize:
		p, ok := ev.Payload.(*ResizeEventData)
		if !ok {
			return fmt.Errorf("protocol: %s event needs *ResizeEventData, got %T", ev.Type, ev.Payload)
		}
		e.WriteFloat64(p.Width)
		e.WriteFloat64(p.Height)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownEvent, ev.Type)
	}
	return nil
}

// DecodeEvent decodes an event payload.
func DecodeEvent(data []byte) (*Event, error) {
	d := NewDecoder(data)
	ev, err := DecodeEventFrom(d)
	if err != nil {
		return nil, err
	}
	if !d.EOF() {
		return nil, fmt.Errorf("protocol: %d trailing bytes after %s event", d.Remaining(), ev.Type)
	}
	return ev, nil
}

// DecodeEventFrom decodes an event from d.
func DecodeEventFrom(d *Decoder) (*Event, error) {
	tb, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	ev := &Event{Type: EventType(tb)}
	if ev.Seq, err = d.ReadUvarint(); err != nil {
		return nil, err
	}
	if ev.Target, err = d.ReadString(); err != nil {
		return nil, err
	}

	switch ev.Type {
	case EventPointerDown, EventPointerUp, EventPointerMove:
		var p PointerEventData
		if err := readFloats(d, &p.ClientX, &p.ClientY, &p.PageX, &p.PageY); err != nil {
			return nil, err
		}
		if p.Button, err = d.ReadByte(); err != nil {
			return nil, err
		}
		ev.Payload = &p
	case EventScroll:
		var p ScrollEventData
		if err := readFloats(d, &p.X, &p.Y); err != nil {
			return nil, err
		}
		ev.Payload = &p
	case EventResize:
		var p ResizeEventData
		if err := readFloats(d, &p.Width, &p.Height); err != nil {
			return nil, err
		}
		ev.Payload = &p
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownEvent, ev.Type)
	}
	return ev, nil
}

func readFloats(d *Decoder, dst ...*float64) error {
	for _, p := range dst {
		v, err := d.ReadFloat64()
		if err != nil {
			return err
		}
		*p = v
	}
	return nil
}
