package dot

import (
	"strings"
	"testing"

	"github.com/matzehuels/mindtree/pkg/geometry"
)

func testLayout() geometry.Layout {
	return geometry.Layout{
		Width: 200, Height: 40,
		Nodes: []geometry.Node{
			{ID: "r", Topic: "Root", Visible: true, Expanded: true, X: -48, Y: -20, Width: 96, Height: 40},
			{ID: "a", Parent: "r", Topic: "A", Visible: true, X: 60, Y: -10, Width: 48, Height: 20,
				Expander: &geometry.Point{X: 108, Y: -7},
				Data:     map[string]any{"background-color": "#f00", "font-size": 24}},
			{ID: "b", Parent: "a", Topic: "Hidden", X: 150, Y: -10, Width: 40, Height: 20},
		},
	}
}

func TestToDOT(t *testing.T) {
	out := ToDOT(testLayout(), Options{})
	for _, want := range []string{
		`"r" [label="Root", pos="0.00,0.00!", width=1.00, height=0.42, fillcolor="#428bca", fontcolor=white];`,
		`pos="63.00,0.00!"`,
		`fillcolor="#f00"`,
		`fontsize=18.00`,
		`peripheries=2`,
		`"r" -> "a";`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("DOT missing %q\n%s", want, out)
		}
	}
	if strings.Contains(out, "Hidden") || strings.Contains(out, `"a" -> "b"`) {
		t.Error("hidden node emitted")
	}
}

func TestToDOTDetailed(t *testing.T) {
	out := ToDOT(testLayout(), Options{Detailed: true})
	if !strings.Contains(out, `label="A\nbackground-color: #f00\nfont-size: 24"`) {
		t.Errorf("detailed label missing:\n%s", out)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00"><g/></svg>`)
	got := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50"><g/></svg>`
	if got != want {
		t.Errorf("normalizeViewBox = %s", got)
	}
	if plain := []byte("<svg></svg>"); string(normalizeViewBox(plain)) != "<svg></svg>" {
		t.Error("input without viewBox changed")
	}
}
