package dom

import "strings"

// Well-known style properties written by drag-and-drop.
const (
	StylePosition = "position"
	StyleLeft     = "left"
	StyleTop      = "top"
	StyleZIndex   = "z-index"
)

type styleProp struct {
	name  string
	value string
}

// Style is an ordered set of inline style properties.
// The zero value is an empty style.
type Style struct {
	props []styleProp
}

// ParseStyle parses an inline style attribute value such as
// "position: absolute; left: 10px". Malformed declarations are skipped.
func ParseStyle(s string) Style {
	var st Style
	for _, decl := range strings.Split(s, ";") {
		name, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		name = strings.ToLower(strings.TrimSpace(name))
		value = strings.TrimSpace(value)
		if name == "" || value == "" {
			continue
		}
		st.set(name, value)
	}
	return st
}

// Get returns the value of a property, or "" if unset.
func (s *Style) Get(name string) string {
	for _, p := range s.props {
		if p.name == name {
			return p.value
		}
	}
	return ""
}

// Len returns the number of set properties.
func (s *Style) Len() int {
	return len(s.props)
}

// set updates or appends a property. An empty value removes it.
// It reports whether the style changed.
func (s *Style) set(name, value string) bool {
	if value == "" {
		return s.remove(name)
	}
	for i := range s.props {
		if s.props[i].name == name {
			if s.props[i].value == value {
				return false
			}
			s.props[i].value = value
			return true
		}
	}
	s.props = append(s.props, styleProp{name: name, value: value})
	return true
}

func (s *Style) remove(name string) bool {
	for i := range s.props {
		if s.props[i].name == name {
			s.props = append(s.props[:i], s.props[i+1:]...)
			return true
		}
	}
	return false
}

// String renders the style as an inline attribute value.
func (s *Style) String() string {
	var b strings.Builder
	for i, p := range s.props {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(p.name)
		b.WriteString(": ")
		b.WriteString(p.value)
	}
	return b.String()
}
