package geometry

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/mindtree/pkg/errors"
	"github.com/matzehuels/mindtree/pkg/layout"
	"github.com/matzehuels/mindtree/pkg/mind"
)

// sample lays out R(100x40) with A(60x20, right) holding C and D (40x20),
// and B(60x20, left).
func sample(t *testing.T) (*mind.Mind, *layout.Engine) {
	t.Helper()
	m := mind.New()
	m.Name = "sample"
	steps := []func() error{
		func() error { _, err := m.SetRoot("R", "Root", map[string]any{"color": "#333"}); return err },
		func() error { _, err := m.AddNode("R", "A", "A", nil, &mind.AddOptions{Direction: mind.Right}); return err },
		func() error { _, err := m.AddNode("R", "B", "B", nil, &mind.AddOptions{Direction: mind.Left}); return err },
		func() error { _, err := m.AddNode("A", "C", "C", nil, nil); return err },
		func() error { _, err := m.AddNode("A", "D", "D", nil, nil); return err },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			t.Fatal(err)
		}
	}
	e := layout.New(m, layout.Options{})
	e.SetSize("R", 100, 40)
	e.SetSize("A", 60, 20)
	e.SetSize("B", 60, 20)
	e.SetSize("C", 40, 20)
	e.SetSize("D", 40, 20)
	e.Layout()
	return m, e
}

func TestFromLayout(t *testing.T) {
	m, e := sample(t)
	l := FromLayout(m, e)

	if l.Name != "sample" || l.Mode != "full" {
		t.Errorf("name/mode = %q/%q", l.Name, l.Mode)
	}
	if l.Width != 389 || l.Height != 60 {
		t.Errorf("size = %vx%v, want 389x60", l.Width, l.Height)
	}
	if l.Bounds != (Bounds{N: 0, S: 60, E: 236, W: -153}) {
		t.Errorf("bounds = %+v", l.Bounds)
	}

	var ids []string
	for _, n := range l.Nodes {
		ids = append(ids, n.ID)
	}
	if got := strings.Join(ids, ","); got != "R,A,C,D,B" {
		t.Errorf("node order = %s, want pre-order R,A,C,D,B", got)
	}

	idx := l.Index()
	a := idx["A"]
	if a.Parent != "R" || a.Direction != "right" || a.Level != 2 || !a.Visible {
		t.Errorf("A = %+v", a)
	}
	if a.X != 80 || a.Y != -10 || a.Width != 60 || a.Height != 20 {
		t.Errorf("A rect = %v,%v %vx%v", a.X, a.Y, a.Width, a.Height)
	}
	if a.Out != (Point{153, 0}) || a.Expander == nil || *a.Expander != (Point{140, -7}) {
		t.Errorf("A out=%+v expander=%v", a.Out, a.Expander)
	}
	if idx["C"].Expander != nil {
		t.Error("leaf C has an expander")
	}
	root := l.Root()
	if root == nil || root.ID != "R" || root.Expander != nil || root.Data["color"] != "#333" {
		t.Errorf("root = %+v", root)
	}
}

func TestFromLayoutCollapsed(t *testing.T) {
	m, e := sample(t)
	a, _ := m.Node("A")
	e.Collapse(a)

	l := FromLayout(m, e)
	idx := l.Index()
	if !idx["A"].Visible || idx["A"].Expanded {
		t.Errorf("A = %+v", idx["A"])
	}
	if idx["C"].Visible || idx["D"].Visible {
		t.Error("children of collapsed A are visible")
	}
}

func TestOrigin(t *testing.T) {
	m, e := sample(t)
	l := FromLayout(m, e)
	if got := l.Origin(589, 160); got != (Point{253, 80}) {
		t.Errorf("Origin() = %+v, want {253 80}", got)
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	m, e := sample(t)
	l := FromLayout(m, e)
	data, err := Marshal(l)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if len(got.Nodes) != len(l.Nodes) || got.Width != l.Width || got.Bounds != l.Bounds {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if *got.Index()["A"].Expander != *l.Index()["A"].Expander {
		t.Error("expander lost")
	}
}

func TestUnmarshalValidation(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"malformed", `{`},
		{"no nodes", `{"width":1,"height":1,"nodes":[]}`},
		{"negative size", `{"width":-1,"nodes":[{"id":"r"}]}`},
		{"two roots", `{"nodes":[{"id":"r"},{"id":"s"}]}`},
		{"duplicate", `{"nodes":[{"id":"r"},{"id":"a","parent":"r"},{"id":"a","parent":"r"}]}`},
		{"unknown parent", `{"nodes":[{"id":"r"},{"id":"a","parent":"x"}]}`},
		{"empty id", `{"nodes":[{"id":""}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Unmarshal([]byte(tt.json)); !errors.Is(err, errors.ErrCodeInvalidFormat) {
				t.Errorf("Unmarshal() error = %v, want INVALID_FORMAT", err)
			}
		})
	}
}

func TestReadWriteFile(t *testing.T) {
	m, e := sample(t)
	path := filepath.Join(t.TempDir(), "layout.json")
	if err := WriteFile(FromLayout(m, e), path); err != nil {
		t.Fatal(err)
	}
	l, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	if l.Root().ID != "R" {
		t.Errorf("root = %q", l.Root().ID)
	}
	if _, err := ReadFile(filepath.Join(t.TempDir(), "nope.json")); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("ReadFile(missing) error = %v", err)
	}
}
