package htmlprint

import (
	"math"
	"testing"

	"github.com/porticus-lab/go-html-print/imagefit"
)

func almostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) < epsilon
}

func TestPointsToInches(t *testing.T) {
	tests := []struct {
		pt   float64
		want float64
	}{
		{72, 1.0},
		{0, 0},
		{595.28, 8.2678},
		{841.89, 11.6929},
	}
	for _, tt := range tests {
		got := pointsToInches(tt.pt)
		if !almostEqual(got, tt.want, 0.001) {
			t.Errorf("pointsToInches(%v) = %v, want ~%v", tt.pt, got, tt.want)
		}
	}
}

func TestDefaultPageConfig(t *testing.T) {
	d := DefaultPageConfig()
	if d.Size != A4 {
		t.Errorf("default size = %v, want A4", d.Size)
	}
	if d.Orientation != Portrait {
		t.Errorf("default orientation = %v, want Portrait", d.Orientation)
	}
	if d.Scale != 1.0 {
		t.Errorf("default scale = %v, want 1.0", d.Scale)
	}
	if !d.PrintBackground {
		t.Error("default PrintBackground = false, want true")
	}
	if d.Margin != (Margin{Top: 40, Right: 20, Bottom: 40, Left: 20}) {
		t.Errorf("default margin = %v, want 40/20/40/20", d.Margin)
	}
}

func TestUniformMargin(t *testing.T) {
	m := UniformMargin(18)
	if m.Top != 18 || m.Right != 18 || m.Bottom != 18 || m.Left != 18 {
		t.Errorf("UniformMargin(18) = %+v, want all 18", m)
	}
}

func TestPageConfigResolved_Nil(t *testing.T) {
	var pc *PageConfig
	r := pc.resolved()
	d := DefaultPageConfig()
	if r != d {
		t.Errorf("nil resolved = %+v, want %+v", r, d)
	}
}

func TestPageConfigResolved_ZeroValues(t *testing.T) {
	pc := &PageConfig{}
	r := pc.resolved()
	if r.Size != A4 {
		t.Errorf("zero size resolved to %v, want A4", r.Size)
	}
	if r.Scale != 1.0 {
		t.Errorf("zero scale resolved to %v, want 1.0", r.Scale)
	}
	if r.Margin != DefaultMargin {
		t.Errorf("zero margin resolved to %v, want %v", r.Margin, DefaultMargin)
	}
}

func TestPageConfigResolved_PreservesExplicit(t *testing.T) {
	pc := &PageConfig{
		Size:        Letter,
		Orientation: Landscape,
		Scale:       0.5,
		Margin:      Margin{Top: 36, Right: 72, Bottom: 36, Left: 72},
	}
	r := pc.resolved()
	if r.Size != Letter {
		t.Errorf("size = %v, want Letter", r.Size)
	}
	if r.Orientation != Landscape {
		t.Errorf("orientation = %v, want Landscape", r.Orientation)
	}
	if r.Scale != 0.5 {
		t.Errorf("scale = %v, want 0.5", r.Scale)
	}
	if r.Margin.Top != 36 {
		t.Errorf("margin top = %v, want 36", r.Margin.Top)
	}
}

func TestPaperDimensions_Portrait(t *testing.T) {
	pc := &PageConfig{Size: A4, Orientation: Portrait}
	w, h := pc.paperDimensions()
	if !almostEqual(w, 8.268, 0.01) {
		t.Errorf("portrait width = %v, want ~8.268", w)
	}
	if !almostEqual(h, 11.693, 0.01) {
		t.Errorf("portrait height = %v, want ~11.693", h)
	}
}

func TestPaperDimensions_Landscape(t *testing.T) {
	pc := &PageConfig{Size: A4, Orientation: Landscape}
	w, h := pc.paperDimensions()
	// Landscape swaps width and height.
	if !almostEqual(w, 11.693, 0.01) {
		t.Errorf("landscape width = %v, want ~11.693", w)
	}
	if !almostEqual(h, 8.268, 0.01) {
		t.Errorf("landscape height = %v, want ~8.268", h)
	}
}

func TestMarginInches(t *testing.T) {
	pc := &PageConfig{Margin: Margin{Top: 72, Right: 144, Bottom: 72, Left: 144}}
	top, right, bottom, left := pc.marginInches()
	if !almostEqual(top, 1.0, 0.001) {
		t.Errorf("top = %v, want 1.0", top)
	}
	if !almostEqual(right, 2.0, 0.001) {
		t.Errorf("right = %v, want 2.0", right)
	}
	if !almostEqual(bottom, 1.0, 0.001) {
		t.Errorf("bottom = %v, want 1.0", bottom)
	}
	if !almostEqual(left, 2.0, 0.001) {
		t.Errorf("left = %v, want 2.0", left)
	}
}

func TestCanvas(t *testing.T) {
	tests := []struct {
		name string
		pc   *PageConfig
		want imagefit.Canvas
	}{
		{"nil", nil, imagefit.A4},
		{"A4", &PageConfig{Size: A4}, imagefit.A4},
		{"A4 landscape", &PageConfig{Size: A4, Orientation: Landscape}, imagefit.Canvas{Width: 842, Height: 595}},
		{"Letter", &PageConfig{Size: Letter}, imagefit.Canvas{Width: 612, Height: 792}},
	}
	for _, tt := range tests {
		if got := tt.pc.Canvas(); got != tt.want {
			t.Errorf("%s: Canvas() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestDocxOptions(t *testing.T) {
	pc := &PageConfig{Size: Letter, Orientation: Landscape}
	o := pc.docxOptions()
	if o.PageWidth != 792 || o.PageHeight != 612 {
		t.Errorf("page = %vx%v, want 792x612", o.PageWidth, o.PageHeight)
	}
	if o.MarginTop != 40 || o.MarginLeft != 20 {
		t.Errorf("margins = %v/%v, want 40/20", o.MarginTop, o.MarginLeft)
	}
	if !o.CantSplitRows {
		t.Error("CantSplitRows = false, want true")
	}
}

func TestParsePageSize(t *testing.T) {
	tests := []struct {
		in   string
		want PageSize
	}{
		{"", A4},
		{"A4", A4},
		{" letter ", Letter},
		{"Tabloid", Tabloid},
		{"a3", A3},
	}
	for _, tt := range tests {
		got, err := ParsePageSize(tt.in)
		if err != nil {
			t.Fatalf("ParsePageSize(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParsePageSize(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if _, err := ParsePageSize("b5"); err == nil {
		t.Error("ParsePageSize(b5): expected error")
	}
}

func TestParseOrientation(t *testing.T) {
	for in, want := range map[string]Orientation{"": Portrait, "Portrait": Portrait, "landscape": Landscape} {
		got, err := ParseOrientation(in)
		if err != nil || got != want {
			t.Errorf("ParseOrientation(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseOrientation("sideways"); err == nil {
		t.Error("ParseOrientation(sideways): expected error")
	}
}
