package dom

import (
	"testing"

	"github.com/vango-dev/dragdrop/pkg/geom"
)

func TestInsertBefore(t *testing.T) {
	a := Div(ID("a"))
	b := Div(ID("b"))
	c := Div(ID("c"))
	list := Ul(a, b)

	list.InsertBefore(c, b)
	assertOrder(t, list, "a", "c", "b")

	// Moving an existing child keeps a single copy.
	list.InsertBefore(b, a)
	assertOrder(t, list, "b", "a", "c")

	// A nil ref appends.
	list.InsertBefore(b, nil)
	assertOrder(t, list, "a", "c", "b")

	if c.NextSibling() != b {
		t.Errorf("c.NextSibling() = %v, want b", c.NextSibling())
	}
	if b.NextSibling() != nil {
		t.Errorf("last child NextSibling() = %v, want nil", b.NextSibling())
	}
}

func TestInsertBeforeReparents(t *testing.T) {
	item := Li(ID("item"))
	from := Ul(ID("from"), item)
	to := Ul(ID("to"))

	to.AppendChild(item)

	if item.Parent() != to {
		t.Fatalf("parent = %v, want ul#to", item.Parent())
	}
	if len(from.Children()) != 0 {
		t.Errorf("old parent still has %d children", len(from.Children()))
	}
}

func TestInsertIntoOwnSubtreeIsNoop(t *testing.T) {
	inner := Div(ID("inner"))
	outer := Div(ID("outer"), inner)

	inner.AppendChild(outer)

	if outer.Parent() != nil || inner.Parent() != outer {
		t.Error("cycle was created")
	}
}

func TestStyle(t *testing.T) {
	e := Div(StyleAttr("left: 4px; top:5px; ; bogus"))

	if e.Style(StyleLeft) != "4px" || e.Style(StyleTop) != "5px" {
		t.Fatalf("parsed style = %q", e.StyleText())
	}

	e.SetStyle(StyleZIndex, "10")
	e.SetStyle(StyleLeft, "")
	if got := e.StyleText(); got != "top: 5px; z-index: 10" {
		t.Errorf("StyleText() = %q", got)
	}
	if z, ok := e.ZIndex(); !ok || z != 10 {
		t.Errorf("ZIndex() = %d, %v", z, ok)
	}
}

func TestLayoutBox(t *testing.T) {
	e := Div(Box(10, 20, 30, 40))

	if got := e.LayoutBox(); got != geom.R(10, 20, 30, 40) {
		t.Errorf("static LayoutBox() = %+v", got)
	}

	// left/top without absolute positioning do not move the box.
	e.SetStyle(StyleLeft, "100px")
	if got := e.LayoutBox().Min(); got != geom.Pt(10, 20) {
		t.Errorf("non-absolute LayoutBox().Min() = %v", got)
	}

	e.SetStyle(StylePosition, "absolute")
	e.SetStyle(StyleTop, "200px")
	if got := e.LayoutBox(); got != geom.R(100, 200, 30, 40) {
		t.Errorf("absolute LayoutBox() = %+v", got)
	}
}

func TestClasses(t *testing.T) {
	e := Div(Class("a", "b"))
	e.AddClass("c")
	e.AddClass("a")
	e.RemoveClass("b")

	if got, _ := e.Attr("class"); got != "a c" {
		t.Errorf("class = %q, want %q", got, "a c")
	}
	if e.String() != "div.a.c" {
		t.Errorf("String() = %q", e.String())
	}
}

func TestMutationsReported(t *testing.T) {
	item := Div(ID("item"))
	target := Div(ID("target"))
	doc := Build(item, target)

	var got []MutationKind
	cancel := doc.Observe(func(m Mutation) { got = append(got, m.Kind) })

	target.AppendChild(item)
	item.SetStyle(StyleLeft, "1px")
	item.SetStyle(StyleLeft, "1px") // unchanged, not reported
	item.RemoveStyle(StyleLeft)
	item.SetHidden(true)
	item.Remove()

	want := []MutationKind{MutationMove, MutationSetStyle, MutationRemoveStyle, MutationSetHidden, MutationRemove}
	if len(got) != len(want) {
		t.Fatalf("mutations = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("mutation[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	cancel()
	target.SetStyle(StyleTop, "2px")
	if len(got) != len(want) {
		t.Error("observer called after cancel")
	}

	// Detached elements never report.
	item.SetStyle(StyleTop, "3px")
	if len(got) != len(want) {
		t.Error("detached element reported a mutation")
	}
}

func assertOrder(t *testing.T, parent *Element, ids ...string) {
	t.Helper()
	children := parent.Children()
	if len(children) != len(ids) {
		t.Fatalf("got %d children, want %d", len(children), len(ids))
	}
	for i, id := range ids {
		if children[i].ID() != id {
			t.Errorf("child[%d] = %q, want %q", i, children[i].ID(), id)
		}
	}
}
