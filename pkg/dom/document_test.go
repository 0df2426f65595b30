package dom

import (
	"testing"

	"github.com/vango-dev/dragdrop/pkg/geom"
)

func TestElementFromPoint(t *testing.T) {
	zone := Div(ID("zone"), Class("droppable"), Box(0, 0, 200, 200),
		Div(ID("slot"), Box(50, 50, 50, 50)),
	)
	overlay := Div(ID("overlay"), Box(150, 150, 100, 100))
	low := Div(ID("low"), Box(300, 0, 100, 100), StyleAttr("z-index: -1"))
	high := Div(ID("high"), Box(350, 50, 100, 100), StyleAttr("z-index: 5"))
	later := Div(ID("later"), Box(320, 20, 20, 20))
	doc := Build(zone, overlay, high, low, later)

	tests := []struct {
		name string
		at   geom.Point
		want string
	}{
		{"deepest child", geom.Pt(60, 60), "slot"},
		{"parent outside child", geom.Pt(10, 10), "zone"},
		{"later sibling on top", geom.Pt(160, 160), "overlay"},
		{"higher z-index wins over order", geom.Pt(360, 60), "high"},
		{"negative z-index loses to later default", geom.Pt(325, 25), "later"},
		{"nothing falls back to body", geom.Pt(900, 900), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := doc.ElementFromPoint(tt.at)
			if tt.want == "" {
				if got != doc.Body() {
					t.Errorf("ElementFromPoint(%v) = %v, want body", tt.at, got)
				}
				return
			}
			if got == nil || got.ID() != tt.want {
				t.Errorf("ElementFromPoint(%v) = %v, want #%s", tt.at, got, tt.want)
			}
		})
	}
}

func TestElementFromPointSkipsHidden(t *testing.T) {
	under := Div(ID("under"), Box(0, 0, 100, 100))
	over := Div(ID("over"), Box(0, 0, 100, 100), Span(ID("inner"), Box(10, 10, 10, 10)))
	doc := Build(under, over)

	if got := doc.ElementFromPoint(geom.Pt(15, 15)); got.ID() != "inner" {
		t.Fatalf("visible hit = %v, want #inner", got)
	}

	over.SetHidden(true)
	if got := doc.ElementFromPoint(geom.Pt(15, 15)); got.ID() != "under" {
		t.Errorf("hidden subtree hit = %v, want #under", got)
	}
}

func TestElementFromPointScrollAndViewport(t *testing.T) {
	far := Div(ID("far"), Box(0, 1000, 100, 100))
	doc := Build(far)
	doc.SetViewport(800, 600)
	doc.SetScroll(geom.Pt(0, 950))

	if got := doc.ElementFromPoint(geom.Pt(10, 60)); got != far {
		t.Errorf("scrolled hit = %v, want #far", got)
	}
	if got := doc.ElementFromPoint(geom.Pt(-1, 60)); got != nil {
		t.Errorf("outside viewport = %v, want nil", got)
	}
	if got := doc.ElementFromPoint(geom.Pt(10, 600)); got != nil {
		t.Errorf("bottom edge = %v, want nil", got)
	}
}

func TestBoundingClientRect(t *testing.T) {
	e := Div(Box(100, 300, 40, 20))
	doc := Build(e)
	doc.SetScroll(geom.Pt(10, 250))

	got := doc.BoundingClientRect(e)
	if got != geom.R(90, 50, 40, 20) {
		t.Errorf("BoundingClientRect() = %+v", got)
	}
}

func TestQuerySelector(t *testing.T) {
	doc := Build(
		Div(ID("a"), Class("item")),
		Div(ID("b"), Class("item")),
	)

	first, err := doc.QuerySelector(".item")
	if err != nil || first == nil || first.ID() != "a" {
		t.Fatalf("QuerySelector = %v, %v", first, err)
	}

	all, err := doc.QuerySelectorAll("body > .item")
	if err != nil || len(all) != 2 {
		t.Fatalf("QuerySelectorAll = %v, %v", all, err)
	}

	none, err := doc.QuerySelector(".none")
	if err != nil || none != nil {
		t.Errorf("QuerySelector(.none) = %v, %v", none, err)
	}

	if _, err := doc.QuerySelector("]"); err == nil {
		t.Error("expected error for invalid selector")
	}

	if doc.ElementByID("b") == nil || doc.ElementByID("") != nil {
		t.Error("ElementByID mismatch")
	}
}
