package dom

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrInvalidSelector is returned (wrapped) for selectors that cannot be parsed.
var ErrInvalidSelector = errors.New("dom: invalid selector")

// Selector is a compiled selector list.
//
// Supported syntax: comma-separated lists of compound selectors made of
// a tag name or *, #id, .class, [attr] and [attr=value] (value optionally
// quoted), joined by descendant (whitespace) or child (>) combinators.
type Selector struct {
	src    string
	groups []complexSelector
}

type combinator uint8

const (
	combDescendant combinator = iota
	combChild
)

// complexSelector is compounds[0] combs[0] compounds[1] ... matched right to left.
type complexSelector struct {
	compounds []compound
	combs     []combinator
}

type compound struct {
	tag     string // "" or "*" matches any
	id      string
	classes []string
	attrs   []attrMatcher
}

type attrMatcher struct {
	name     string
	value    string
	hasValue bool
}

var selectorCache sync.Map // string -> *Selector

func cachedSelector(s string) (*Selector, error) {
	if v, ok := selectorCache.Load(s); ok {
		return v.(*Selector), nil
	}
	sel, err := Compile(s)
	if err != nil {
		return nil, err
	}
	selectorCache.Store(s, sel)
	return sel, nil
}

// Compile parses a selector.
func Compile(s string) (*Selector, error) {
	p := &selParser{src: s}
	groups, err := p.parse()
	if err != nil {
		return nil, fmt.Errorf("%w %q: %s", ErrInvalidSelector, s, err.Error())
	}
	return &Selector{src: s, groups: groups}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(s string) *Selector {
	sel, err := Compile(s)
	if err != nil {
		panic(err)
	}
	return sel
}

// String returns the source text.
func (s *Selector) String() string {
	return s.src
}

// Match reports whether e matches any selector in the list.
func (s *Selector) Match(e *Element) bool {
	if e == nil {
		return false
	}
	for i := range s.groups {
		if s.groups[i].match(e, len(s.groups[i].compounds)-1) {
			return true
		}
	}
	return false
}

// Closest returns the nearest ancestor-or-self of e that matches, or nil.
func (s *Selector) Closest(e *Element) *Element {
	for n := e; n != nil; n = n.parent {
		if s.Match(n) {
			return n
		}
	}
	return nil
}

func (c *complexSelector) match(e *Element, i int) bool {
	if !c.compounds[i].match(e) {
		return false
	}
	if i == 0 {
		return true
	}
	switch c.combs[i-1] {
	case combChild:
		return e.parent != nil && c.match(e.parent, i-1)
	default:
		for a := e.parent; a != nil; a = a.parent {
			if c.match(a, i-1) {
				return true
			}
		}
		return false
	}
}

func (c *compound) match(e *Element) bool {
	if c.tag != "" && c.tag != "*" && c.tag != e.tag {
		return false
	}
	if c.id != "" && c.id != e.ID() {
		return false
	}
	for _, cl := range c.classes {
		if !e.HasClass(cl) {
			return false
		}
	}
	for _, a := range c.attrs {
		v, ok := e.Attr(a.name)
		if !ok || (a.hasValue && v != a.value) {
			return false
		}
	}
	return true
}

type selParser struct {
	src string
	pos int
}

func (p *selParser) parse() ([]complexSelector, error) {
	var groups []complexSelector
	for {
		p.skipSpace()
		cs, err := p.parseComplex()
		if err != nil {
			return nil, err
		}
		groups = append(groups, cs)
		p.skipSpace()
		if p.eof() {
			return groups, nil
		}
		if p.peek() != ',' {
			return nil, fmt.Errorf("unexpected %q at offset %d", p.peek(), p.pos)
		}
		p.pos++
	}
}

func (p *selParser) parseComplex() (complexSelector, error) {
	var cs complexSelector
	first, err := p.parseCompound()
	if err != nil {
		return cs, err
	}
	cs.compounds = append(cs.compounds, first)

	for {
		hadSpace := p.skipSpace()
		if p.eof() || p.peek() == ',' {
			return cs, nil
		}
		comb := combDescendant
		if p.peek() == '>' {
			comb = combChild
			p.pos++
			p.skipSpace()
		} else if !hadSpace {
			return cs, fmt.Errorf("unexpected %q at offset %d", p.peek(), p.pos)
		}
		next, err := p.parseCompound()
		if err != nil {
			return cs, err
		}
		cs.combs = append(cs.combs, comb)
		cs.compounds = append(cs.compounds, next)
	}
}

func (p *selParser) parseCompound() (compound, error) {
	var c compound
	start := p.pos

	if !p.eof() && p.peek() == '*' {
		c.tag = "*"
		p.pos++
	} else if name := p.ident(); name != "" {
		c.tag = strings.ToLower(name)
	}

	for !p.eof() {
		switch p.peek() {
		case '#':
			p.pos++
			id := p.ident()
			if id == "" {
				return c, fmt.Errorf("empty id at offset %d", p.pos)
			}
			c.id = id
		case '.':
			p.pos++
			cl := p.ident()
			if cl == "" {
				return c, fmt.Errorf("empty class at offset %d", p.pos)
			}
			c.classes = append(c.classes, cl)
		case '[':
			a, err := p.parseAttr()
			if err != nil {
				return c, err
			}
			c.attrs = append(c.attrs, a)
		default:
			if p.pos == start {
				return c, fmt.Errorf("expected selector at offset %d", p.pos)
			}
			return c, nil
		}
	}
	if p.pos == start {
		return c, errors.New("empty selector")
	}
	return c, nil
}

func (p *selParser) parseAttr() (attrMatcher, error) {
	var a attrMatcher
	p.pos++ // [
	p.skipSpace()
	a.name = strings.ToLower(p.ident())
	if a.name == "" {
		return a, fmt.Errorf("empty attribute name at offset %d", p.pos)
	}
	p.skipSpace()
	if p.eof() {
		return a, errors.New("unterminated attribute selector")
	}
	if p.peek() == '=' {
		p.pos++
		p.skipSpace()
		a.hasValue = true
		if p.eof() {
			return a, errors.New("unterminated attribute selector")
		}
		if q := p.peek(); q == '"' || q == '\'' {
			end := strings.IndexByte(p.src[p.pos+1:], q)
			if end < 0 {
				return a, errors.New("unterminated quoted value")
			}
			a.value = p.src[p.pos+1 : p.pos+1+end]
			p.pos += end + 2
		} else {
			a.value = p.ident()
		}
		p.skipSpace()
	}
	if p.eof() || p.peek() != ']' {
		return a, fmt.Errorf("expected ] at offset %d", p.pos)
	}
	p.pos++
	return a, nil
}

func (p *selParser) ident() string {
	start := p.pos
	for !p.eof() {
		ch := p.peek()
		if ch == '-' || ch == '_' || (ch >= '0' && ch <= '9') ||
			(ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch >= 0x80 {
			p.pos++
			continue
		}
		break
	}
	return p.src[start:p.pos]
}

func (p *selParser) skipSpace() bool {
	start := p.pos
	for !p.eof() {
		switch p.peek() {
		case ' ', '\t', '\n', '\r', '\f':
			p.pos++
		default:
			return p.pos > start
		}
	}
	return p.pos > start
}

func (p *selParser) peek() byte {
	return p.src[p.pos]
}

func (p *selParser) eof() bool {
	return p.pos >= len(p.src)
}
