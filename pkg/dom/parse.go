package dom

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/vango-dev/dragdrop/pkg/geom"
)

// BoxAttr is the attribute used to seed an element's static layout box when
// loading HTML. Its value is four numbers: "x y w h" (commas allowed).
const BoxAttr = "data-box"

// Parse builds a Document from an HTML page. Only element nodes are kept.
// A data-box attribute on any element sets its static box, and the inline
// style attribute is parsed into style properties.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("dom: parse html: %w", err)
	}

	var htmlNode *html.Node
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Html {
			htmlNode = c
			break
		}
	}
	if htmlNode == nil {
		return nil, fmt.Errorf("dom: parse html: no <html> element")
	}

	var body *Element
	var convert func(n *html.Node) (*Element, error)
	convert = func(n *html.Node) (*Element, error) {
		e := NewElement(n.Data)
		for _, a := range n.Attr {
			if a.Namespace != "" {
				continue
			}
			if a.Key == BoxAttr {
				r, err := parseBox(a.Val)
				if err != nil {
					return nil, fmt.Errorf("dom: %s on <%s>: %w", BoxAttr, n.Data, err)
				}
				e.box = r
			}
			e.SetAttr(a.Key, a.Val)
		}
		if n.DataAtom == atom.Body && body == nil {
			body = e
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			child, err := convert(c)
			if err != nil {
				return nil, err
			}
			child.parent = e
			e.children = append(e.children, child)
		}
		return e, nil
	}

	rootEl, err := convert(htmlNode)
	if err != nil {
		return nil, err
	}
	if body == nil {
		// html.Parse always synthesizes <body>; a frameset page has none.
		return nil, fmt.Errorf("dom: parse html: no <body> element")
	}
	return newDocument(rootEl, body), nil
}

// Canonicalize parses an HTML page, gives every element without an id a
// generated one ("<prefix>1", "<prefix>2", ... in document order) and renders
// the page back out. A client served the canonical page can then address any
// element by id.
func Canonicalize(r io.Reader, prefix string) ([]byte, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("dom: parse html: %w", err)
	}

	n := 0
	taken := make(map[string]bool)
	var collect func(*html.Node)
	collect = func(node *html.Node) {
		if node.Type == html.ElementNode {
			for _, a := range node.Attr {
				if a.Namespace == "" && a.Key == "id" && a.Val != "" {
					taken[a.Val] = true
				}
			}
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(root)

	var assign func(*html.Node)
	assign = func(node *html.Node) {
		if node.Type == html.ElementNode && !hasID(node) {
			var id string
			for {
				n++
				id = prefix + strconv.Itoa(n)
				if !taken[id] {
					break
				}
			}
			taken[id] = true
			node.Attr = append(node.Attr, html.Attribute{Key: "id", Val: id})
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			assign(c)
		}
	}
	assign(root)

	var buf strings.Builder
	if err := html.Render(&buf, root); err != nil {
		return nil, fmt.Errorf("dom: render html: %w", err)
	}
	return []byte(buf.String()), nil
}

func hasID(n *html.Node) bool {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == "id" && a.Val != "" {
			return true
		}
	}
	return false
}

// ParseString is Parse for an in-memory page.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

func parseBox(s string) (geom.Rect, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t'
	})
	if len(fields) != 4 {
		return geom.Rect{}, fmt.Errorf("want 4 numbers, got %q", s)
	}
	var v [4]float64
	for i, f := range fields {
		n, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return geom.Rect{}, fmt.Errorf("bad number %q", f)
		}
		v[i] = n
	}
	if v[2] < 0 || v[3] < 0 {
		return geom.Rect{}, fmt.Errorf("negative size in %q", s)
	}
	return geom.R(v[0], v[1], v[2], v[3]), nil
}
