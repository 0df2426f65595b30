package dom

import (
	"bytes"
	"strings"
	"testing"

	"github.com/vango-dev/dragdrop/pkg/geom"
)

const boardPage = `<!DOCTYPE html>
<html>
<head><title>board</title></head>
<body>
  <ul id="todo" class="droppable" data-box="0 0 300 600">
    <li id="t1" class="draggable" data-box="10, 10, 280, 40" style="color: red">Write tests</li>
    <li id="t2" class="draggable" data-box="10 60 280 40">Ship</li>
  </ul>
  <ul id="done" class="droppable" data-box="320 0 300 600"></ul>
</body>
</html>`

func TestParse(t *testing.T) {
	doc, err := ParseString(boardPage)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}

	if doc.Body() == nil || doc.Body().Tag() != "body" {
		t.Fatalf("body = %v", doc.Body())
	}

	t1 := doc.ElementByID("t1")
	if t1 == nil {
		t.Fatal("missing #t1")
	}
	if t1.StaticBox() != geom.R(10, 10, 280, 40) {
		t.Errorf("t1 box = %+v", t1.StaticBox())
	}
	if t1.Style("color") != "red" {
		t.Errorf("t1 color = %q", t1.Style("color"))
	}
	if t1.Parent().ID() != "todo" || t1.NextSibling().ID() != "t2" {
		t.Errorf("t1 tree position wrong: parent=%v next=%v", t1.Parent(), t1.NextSibling())
	}
	if t1.Document() != doc {
		t.Error("parsed element not attached to document")
	}

	if got := doc.ElementFromPoint(geom.Pt(400, 100)); got.ID() != "done" {
		t.Errorf("hit = %v, want #done", got)
	}
}

func TestParseBadBox(t *testing.T) {
	tests := []string{
		`<div data-box="1 2 3"></div>`,
		`<div data-box="1 2 x 4"></div>`,
		`<div data-box="1 2 -3 4"></div>`,
	}
	for _, page := range tests {
		if _, err := ParseString(page); err == nil {
			t.Errorf("ParseString(%q) succeeded", page)
		}
	}
}

func TestCanonicalize(t *testing.T) {
	page := `<html><body><div id="n2"><p>text</p></div><span></span></body></html>`
	out, err := Canonicalize(strings.NewReader(page), "n")
	if err != nil {
		t.Fatalf("Canonicalize: %v", err)
	}

	doc, err := Parse(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("Parse canonical page: %v", err)
	}
	var missing []string
	doc.Root().walk(func(e *Element) bool {
		if e.ID() == "" {
			missing = append(missing, e.Tag())
		}
		return true
	})
	if len(missing) > 0 {
		t.Fatalf("elements without id: %v", missing)
	}

	// n2 was already taken by the page, so generated ids skip it.
	tests := []struct {
		tag, id string
	}{
		{"html", "n1"},
		{"head", "n3"},
		{"body", "n4"},
		{"p", "n5"},
		{"span", "n6"},
	}
	for _, tt := range tests {
		e := doc.ElementByID(tt.id)
		if e == nil || e.Tag() != tt.tag {
			t.Errorf("#%s = %v, want <%s>", tt.id, e, tt.tag)
		}
	}
	if !strings.Contains(string(out), "text") {
		t.Error("text content dropped")
	}
}
