package geom

import "testing"

func TestPointWithin(t *testing.T) {
	tests := []struct {
		name  string
		p     Point
		limit float64
		want  bool
	}{
		{"origin", Pt(0, 0), 3, true},
		{"jitter", Pt(2, -2), 3, true},
		{"x at limit", Pt(3, 0), 3, false},
		{"y beyond", Pt(0, -4), 3, false},
		{"zero limit", Pt(0, 0), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.Within(tt.limit); got != tt.want {
				t.Errorf("%v.Within(%v) = %v, want %v", tt.p, tt.limit, got, tt.want)
			}
		})
	}
}

func TestRectContains(t *testing.T) {
	r := R(10, 20, 100, 50)

	if !r.Contains(Pt(10, 20)) {
		t.Error("top-left corner should be inside")
	}
	if r.Contains(Pt(110, 30)) {
		t.Error("right edge should be exclusive")
	}
	if r.Contains(Pt(50, 70)) {
		t.Error("bottom edge should be exclusive")
	}
	if r.Contains(Pt(9, 30)) {
		t.Error("point left of rect should be outside")
	}
}

func TestRectTranslate(t *testing.T) {
	r := R(10, 20, 5, 5).Translate(Pt(-10, 5))
	if r.Min() != Pt(0, 25) {
		t.Errorf("Min() = %v, want (0, 25)", r.Min())
	}
	if r.Width != 5 || r.Height != 5 {
		t.Errorf("size changed: %vx%v", r.Width, r.Height)
	}
}

func TestPx(t *testing.T) {
	if got := Px(12); got != "12px" {
		t.Errorf("Px(12) = %q", got)
	}
	if got := Px(-3.5); got != "-3.5px" {
		t.Errorf("Px(-3.5) = %q", got)
	}

	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"12px", 12, true},
		{"-3.5px", -3.5, true},
		{"7", 7, true},
		{"", 0, false},
		{"px", 0, false},
		{"2em", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParsePx(tt.in)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("ParsePx(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}
