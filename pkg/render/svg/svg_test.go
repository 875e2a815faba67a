package svg

import (
	"strings"
	"testing"

	"github.com/matzehuels/mindtree/pkg/geometry"
)

func testLayout() geometry.Layout {
	return geometry.Layout{
		Name:         "demo",
		Width:        213,
		Height:       60,
		Bounds:       geometry.Bounds{N: 0, S: 60, E: 133, W: -80},
		ExpanderSize: 13,
		Nodes: []geometry.Node{
			{ID: "r", Topic: "Root", Visible: true, Expanded: true, X: -40, Y: -20, Width: 80, Height: 40,
				In: geometry.Point{X: -40, Y: 0}, Out: geometry.Point{X: 40, Y: 0}},
			{ID: "a", Parent: "r", Topic: "A & B", Direction: "right", Level: 1, Visible: true,
				X: 60, Y: -10, Width: 60, Height: 20,
				In: geometry.Point{X: 60, Y: 0}, Out: geometry.Point{X: 133, Y: 0},
				Expander: &geometry.Point{X: 120, Y: -7},
				Data:     map[string]any{"background-color": "#f00", "font-weight": "bold"}},
			{ID: "c", Parent: "a", Topic: "Hidden", Level: 2, X: 150, Y: -10, Width: 40, Height: 20},
		},
	}
}

func TestRenderCanvas(t *testing.T) {
	out := string(Render(testLayout()))
	if !strings.HasPrefix(out, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 413 160"`) {
		t.Fatalf("unexpected header: %.120s", out)
	}
	w, h := Size(testLayout(), WithMargin(10, 5))
	if w != 233 || h != 70 {
		t.Errorf("Size = %v x %v, want 233 x 70", w, h)
	}
}

func TestRenderContent(t *testing.T) {
	// canvas 413x160 -> origin ((413-133+80)/2, 80) = (180, 80)
	out := string(Render(testLayout(), WithClass("map")))
	for _, want := range []string{
		`class="map"`,
		`<path d="M 220 80 C 233.33 80, 220 80, 240 80"/>`,
		`<rect x="140" y="60" width="80" height="40" rx="4" fill="#428bca"`,
		`fill="#f00"`,
		`font-weight="bold"`,
		`>A &amp; B</text>`,
		`<circle cx="306.5" cy="79.5" r="6.5"`,
		`>+</text>`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if strings.Contains(out, "Hidden") {
		t.Error("invisible node rendered")
	}
}

func TestRenderOptions(t *testing.T) {
	out := string(Render(testLayout(), WithLineColor("red"), WithLineWidth(3), WithoutExpanders()))
	if !strings.Contains(out, `stroke="red" stroke-width="3"`) {
		t.Error("line options not applied")
	}
	if strings.Contains(out, "<circle") {
		t.Error("expanders drawn despite WithoutExpanders")
	}
}

func TestRenderImage(t *testing.T) {
	l := testLayout()
	l.Nodes[1].Data = map[string]any{"background-image": "a.png", "background-rotation": 90}
	out := string(Render(l))
	if !strings.Contains(out, `<image href="a.png" x="240" y="70" width="60" height="20"`) {
		t.Error("image not rendered")
	}
	if !strings.Contains(out, `transform="rotate(90 270 80)"`) {
		t.Error("image rotation missing")
	}
}

func TestNum(t *testing.T) {
	tests := map[float64]string{0: "0", 1.5: "1.5", 2.0 / 3: "0.67", -2.5: "-2.5", 153.333: "153.33"}
	for in, want := range tests {
		if got := num(in); got != want {
			t.Errorf("num(%v) = %q, want %q", in, got, want)
		}
	}
}
