package protocol

import (
	"errors"
	"fmt"
)

// PatchOp identifies a patch operation.
type PatchOp uint8

const (
	PatchRemoveNode  PatchOp = 0x05 // Detach element
	PatchMoveNode    PatchOp = 0x06 // Insert element under parent, before sibling
	PatchSetStyle    PatchOp = 0x13 // Set inline style property
	PatchRemoveStyle PatchOp = 0x14 // Remove inline style property
	PatchSetHidden   PatchOp = 0x16 // Toggle the hidden flag
)

// ErrUnknownPatch is returned when decoding an unknown patch op.
var ErrUnknownPatch = errors.New("protocol: unknown patch op")

// String returns the string representation of the patch op.
func (op PatchOp) String() string {
	switch op {
	case PatchRemoveNode:
		return "RemoveNode"
	case PatchMoveNode:
		return "MoveNode"
	case PatchSetStyle:
		return "SetStyle"
	case PatchRemoveStyle:
		return "RemoveStyle"
	case PatchSetHidden:
		return "SetHidden"
	default:
		return fmt.Sprintf("PatchOp(0x%02x)", uint8(op))
	}
}

// Patch is a single change to apply to the client document.
// Which fields are meaningful depends on Op:
//
//	SetStyle     Target, Key, Value
//	RemoveStyle  Target, Key
//	MoveNode     Target, Parent, Before ("" appends)
//	RemoveNode   Target
//	SetHidden    Target, Hidden
type Patch struct {
	Op     PatchOp
	Target string
	Key    string
	Value  string
	Parent string
	Before string
	Hidden bool
}

// NewSetStylePatch creates a SetStyle patch.
func NewSetStylePatch(target, key, value string) Patch {
	return Patch{Op: PatchSetStyle, Target: target, Key: key, Value: value}
}

// NewRemoveStylePatch creates a RemoveStyle patch.
func NewRemoveStylePatch(target, key string) Patch {
	return Patch{Op: PatchRemoveStyle, Target: target, Key: key}
}

// NewMoveNodePatch creates a MoveNode patch.
func NewMoveNodePatch(target, parent, before string) Patch {
	return Patch{Op: PatchMoveNode, Target: target, Parent: parent, Before: before}
}

// NewRemoveNodePatch creates a RemoveNode patch.
func NewRemoveNodePatch(target string) Patch {
	return Patch{Op: PatchRemoveNode, Target: target}
}

// NewSetHiddenPatch creates a SetHidden patch.
func NewSetHiddenPatch(target string, hidden bool) Patch {
	return Patch{Op: PatchSetHidden, Target: target, Hidden: hidden}
}

// PatchesFrame is a batch of patches applied atomically by the client.
//
// Wire format:
//
//	[Seq:varint][Count:varint][Patch...]
type PatchesFrame struct {
	Seq     uint64
	Patches []Patch
}

// EncodePatches encodes a patches frame payload.
func EncodePatches(pf *PatchesFrame) ([]byte, error) {
	e := NewEncoder()
	e.WriteUvarint(pf.Seq)
	e.WriteUvarint(uint64(len(pf.Patches)))
	for i := range pf.Patches {
		if err := encodePatch(e, &pf.Patches[i]); err != nil {
			return nil, err
		}
	}
	return e.Bytes(), nil
}

func encodePatch(e *Encoder, p *Patch) error {
	e.WriteByte(byte(p.Op))
	e.WriteString(p.Target)
	switch p.Op {
	case PatchSetStyle:
		e.WriteString(p.Key)
		e.WriteString(p.Value)
	case PatchRemoveStyle:
		e.WriteString(p.Key)
	case PatchMoveNode:
		e.WriteString(p.Parent)
		e.WriteString(p.Before)
	case PatchRemoveNode:
	case PatchSetHidden:
		e.WriteBool(p.Hidden)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownPatch, p.Op)
	}
	return nil
}

// DecodePatches decodes a patches frame payload.
func DecodePatches(data []byte) (*PatchesFrame, error) {
	d := NewDecoder(data)
	seq, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	count, err := d.ReadCollectionCount()
	if err != nil {
		return nil, err
	}
	// Each patch is at least two bytes: op and an empty target.
	if count > d.Remaining()/2 {
		return nil, fmt.Errorf("protocol: %d patches cannot fit in %d bytes", count, d.Remaining())
	}

	pf := &PatchesFrame{Seq: seq, Patches: make([]Patch, count)}
	for i := range pf.Patches {
		if err := decodePatch(d, &pf.Patches[i]); err != nil {
			return nil, fmt.Errorf("protocol: patch %d: %w", i, err)
		}
	}
	return pf, nil
}

func decodePatch(d *Decoder, p *Patch) error {
	op, err := d.ReadByte()
	if err != nil {
		return err
	}
	p.Op = PatchOp(op)
	if p.Target, err = d.ReadString(); err != nil {
		return err
	}
	switch p.Op {
	case PatchSetStyle:
		if p.Key, err = d.ReadString(); err != nil {
			return err
		}
		p.Value, err = d.ReadString()
	case PatchRemoveStyle:
		p.Key, err = d.ReadString()
	case PatchMoveNode:
		if p.Parent, err = d.ReadString(); err != nil {
			return err
		}
		p.Before, err = d.ReadString()
	case PatchRemoveNode:
	case PatchSetHidden:
		p.Hidden, err = d.ReadBool()
	default:
		return fmt.Errorf("%w: %s", ErrUnknownPatch, p.Op)
	}
	return err
}
