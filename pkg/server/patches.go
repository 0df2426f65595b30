package server

import (
	"github.com/vango-dev/dragdrop/pkg/dom"
	"github.com/vango-dev/dragdrop/pkg/protocol"
)

// patchFromMutation converts a document mutation to a wire patch. ok is
// false when the target has no id and so cannot be addressed.
func patchFromMutation(m dom.Mutation) (p protocol.Patch, ok bool) {
	id := m.Target.ID()
	if id == "" {
		return p, false
	}
	switch m.Kind {
	case dom.MutationSetStyle:
		return protocol.NewSetStylePatch(id, m.Name, m.Value), true
	case dom.MutationRemoveStyle:
		return protocol.NewRemoveStylePatch(id, m.Name), true
	case dom.MutationMove:
		if m.Parent == nil || m.Parent.ID() == "" {
			return p, false
		}
		before := ""
		if m.Before != nil {
			if before = m.Before.ID(); before == "" {
				return p, false
			}
		}
		return protocol.NewMoveNodePatch(id, m.Parent.ID(), before), true
	case dom.MutationRemove:
		return protocol.NewRemoveNodePatch(id), true
	case dom.MutationSetHidden:
		return protocol.NewSetHiddenPatch(id, m.Hidden), true
	default:
		return p, false
	}
}

// coalesce drops SetHidden patches whose net effect within the batch is
// nil, such as the hide/unhide pair around a drop hit test, and keeps only
// the last SetHidden per target otherwise. Other patches pass through in
// order.
func coalesce(patches []protocol.Patch) []protocol.Patch {
	type hiddenRun struct {
		initial bool
		last    int
	}
	runs := make(map[string]*hiddenRun)
	for i, p := range patches {
		if p.Op != protocol.PatchSetHidden {
			continue
		}
		r, ok := runs[p.Target]
		if !ok {
			// Mutations are only emitted on change, so the value before
			// the first one is its negation.
			r = &hiddenRun{initial: !p.Hidden}
			runs[p.Target] = r
		}
		r.last = i
	}
	if len(runs) == 0 {
		return patches
	}

	out := patches[:0:0]
	for i, p := range patches {
		if p.Op == protocol.PatchSetHidden {
			r := runs[p.Target]
			if i != r.last || p.Hidden == r.initial {
				continue
			}
		}
		out = append(out, p)
	}
	return out
}
