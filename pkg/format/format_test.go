package format

import (
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/mindtree/pkg/errors"
	"github.com/matzehuels/mindtree/pkg/mind"
)

// sample builds r with a right child a (typed when typed is set), a
// collapsed left child b, c under a and d under b.
func sample(t *testing.T, typed bool) *mind.Mind {
	t.Helper()
	m := mind.New()
	m.Name, m.Author, m.Version = "plan", "pat", "3"
	if _, err := m.SetRoot("r", "Root", map[string]any{"note": "hi"}); err != nil {
		t.Fatal(err)
	}
	typ := ""
	if typed {
		typ = "Chapter"
	}
	adds := []struct {
		parent, id, topic string
		data              map[string]any
		opts              *mind.AddOptions
	}{
		{"r", "a", `A & <b> "quoted"`, map[string]any{"background-color": "#fff"}, &mind.AddOptions{Direction: mind.Right, SelectedType: typ}},
		{"r", "b", "B", nil, &mind.AddOptions{Direction: mind.Left, Collapsed: true}},
		{"a", "c", "C", map[string]any{"font-size": "14"}, nil},
		{"b", "d", "思维", nil, nil},
	}
	for _, a := range adds {
		if _, err := m.AddNode(a.parent, a.id, a.topic, a.data, a.opts); err != nil {
			t.Fatalf("AddNode(%q) error: %v", a.id, err)
		}
	}
	return m
}

// dump lists every node with its tree fields and data, pre-order.
func dump(m *mind.Mind) []string {
	var lines []string
	m.Walk(func(n *mind.Node) bool {
		parent := ""
		if p := n.Parent(); p != nil {
			parent = p.ID()
		}
		var kv []string
		for _, k := range slices.Sorted(maps.Keys(n.Data)) {
			kv = append(kv, k+"="+fmt.Sprint(n.Data[k]))
		}
		lines = append(lines, fmt.Sprintf("%s<%s %v exp=%t type=%q topic=%q {%s}",
			n.ID(), parent, n.Direction(), n.Expanded, n.SelectedType, n.Topic, strings.Join(kv, ",")))
		return true
	})
	return lines
}

func assertSameTree(t *testing.T, got, want *mind.Mind) {
	t.Helper()
	g, w := dump(got), dump(want)
	if !slices.Equal(g, w) {
		t.Errorf("tree mismatch\ngot:\n  %s\nwant:\n  %s", strings.Join(g, "\n  "), strings.Join(w, "\n  "))
	}
	if got.Name != want.Name || got.Author != want.Author || got.Version != want.Version {
		t.Errorf("meta = %q/%q/%q, want %q/%q/%q", got.Name, got.Author, got.Version, want.Name, want.Author, want.Version)
	}
}

func TestRoundTrip(t *testing.T) {
	for _, f := range Formats {
		t.Run(string(f), func(t *testing.T) {
			want := sample(t, f != FreeMind)
			data, err := Encode(want, f)
			if err != nil {
				t.Fatalf("Encode() error: %v", err)
			}
			detected, err := Detect(data)
			if err != nil || detected != f {
				t.Fatalf("Detect() = %q, %v; want %q", detected, err, f)
			}
			got, err := Decode(data)
			if err != nil {
				t.Fatalf("Decode() error: %v", err)
			}
			if f == FreeMind {
				// Bare XML carries no metadata.
				want.Name, want.Author, want.Version = DefaultName, DefaultAuthor, DefaultVersion
			}
			assertSameTree(t, got, want)
		})
	}
}

func TestFreeMindEnvelopeKeepsMeta(t *testing.T) {
	want := sample(t, false)
	doc, err := ToDocument(want, FreeMind)
	if err != nil {
		t.Fatal(err)
	}
	data, err := MarshalDocument(doc)
	if err != nil {
		t.Fatal(err)
	}
	if f, _ := Detect(data); f != FreeMind {
		t.Fatalf("Detect() = %q", f)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	assertSameTree(t, got, want)
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Format
		code  errors.Code
	}{
		{"bare xml", `<map version="1.0.1"></map>`, FreeMind, ""},
		{"bom and space", "\xef\xbb\xbf\n  <map/>", FreeMind, ""},
		{"node_tree", `{"format":"node_tree","data":{}}`, NodeTree, ""},
		{"legacy nodeTree", `{"format":"nodeTree"}`, NodeTree, ""},
		{"node_array", `{"format":"node_array","data":[]}`, NodeArray, ""},
		{"freemind envelope", `{"format":"freemind","data":"<map/>"}`, FreeMind, ""},
		{"missing format", `{"data":{}}`, "", errors.ErrCodeInvalidFormat},
		{"unknown format", `{"format":"opml"}`, "", errors.ErrCodeInvalidFormat},
		{"garbage", `not json`, "", errors.ErrCodeInvalidFormat},
		{"empty", "  ", "", errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Detect([]byte(tt.input))
			if tt.code != "" {
				if !errors.Is(err, tt.code) {
					t.Fatalf("Detect() error = %v, want %s", err, tt.code)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Fatalf("Detect() = %q, %v; want %q", got, err, tt.want)
			}
		})
	}
}

func TestNodeTreeLegacyKeys(t *testing.T) {
	input := `{
		"format": "nodeTree",
		"data": {
			"id": 1, "topic": "Root", "isroot": true, "isCreated": false,
			"children": [
				{"id": "a", "topic": "A", "direction": "left", "backgroundColor": "#000",
				 "foregroundColor": "#fff", "expanded": false, "selectedType": "T"}
			]
		}
	}`
	m, err := Decode([]byte(input))
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if m.Root().ID() != "1" || len(m.Root().Data) != 0 {
		t.Errorf("root = %q data %v", m.Root().ID(), m.Root().Data)
	}
	a, err := m.Node("a")
	if err != nil {
		t.Fatal(err)
	}
	if a.Direction() != mind.Left || a.Expanded || a.SelectedType != "T" {
		t.Errorf("a = %v expanded=%t type=%q", a.Direction(), a.Expanded, a.SelectedType)
	}
	if a.Data["background-color"] != "#000" || a.Data["foreground-color"] != "#fff" {
		t.Errorf("a data = %v", a.Data)
	}
	if m.Name != DefaultName || m.Version != DefaultVersion {
		t.Errorf("meta defaults = %q %q", m.Name, m.Version)
	}
}

func TestNodeArrayReconstruction(t *testing.T) {
	input := `{
		"format": "node_array",
		"data": [
			{"id": "c", "topic": "C", "parentid": "a"},
			{"id": "a", "topic": "A", "parentid": "root", "direction": "left"},
			{"id": "root", "topic": "Root", "isroot": true},
			{"id": "b", "topic": "B", "parentid": "root"},
			{"id": "orphan", "topic": "O", "parentid": "missing"}
		]
	}`
	m, err := Decode([]byte(input))
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if m.Len() != 4 || m.Has("orphan") {
		t.Errorf("Len() = %d, Has(orphan) = %t", m.Len(), m.Has("orphan"))
	}
	var order []string
	for _, c := range m.Root().Children() {
		order = append(order, c.ID())
	}
	if !slices.Equal(order, []string{"a", "b"}) {
		t.Errorf("root children = %v, want [a b]", order)
	}
	c, _ := m.Node("c")
	if c == nil || c.Parent().ID() != "a" || c.Direction() != mind.Left || c.Level() != 3 {
		t.Errorf("c placed wrongly")
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"array without root", `{"format":"node_array","data":[{"id":"a","topic":"A"}]}`},
		{"array not an array", `{"format":"node_array","data":{}}`},
		{"tree duplicate id", `{"format":"node_tree","data":{"id":"r","children":[{"id":"r"}]}}`},
		{"tree missing id", `{"format":"node_tree","data":{"topic":"x"}}`},
		{"tree null", `{"format":"node_tree","data":null}`},
		{"tree bad child", `{"format":"node_tree","data":{"id":"r","children":[1]}}`},
		{"freemind no node", `<map version="1.0.1"></map>`},
		{"freemind bad xml", `<map><node ID="r">`},
		{"freemind data not string", `{"format":"freemind","data":{}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode([]byte(tt.input)); !errors.Is(err, errors.ErrCodeInvalidFormat) {
				t.Errorf("Decode() error = %v, want INVALID_FORMAT", err)
			}
		})
	}
}

func TestFreeMindRichContent(t *testing.T) {
	input := `<map version="1.0.1">
  <node ID="r">
    <richcontent TYPE="NODE"><html><body><p>Rich root</p></body></html></richcontent>
    <cloud/>
    <node ID="a" TEXT="A" POSITION="left">
      <attribute NAME="expanded" VALUE="false"/>
      <attribute NAME="k" VALUE="v"/>
      <node ID="a1" TEXT="A1"/>
    </node>
    <node ID="b" TEXT="B"/>
  </node>
</map>`
	m, err := Decode([]byte(input))
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if m.Root().Topic != "Rich root" {
		t.Errorf("root topic = %q", m.Root().Topic)
	}
	a, _ := m.Node("a")
	if a.Direction() != mind.Left || a.Expanded || a.Data["k"] != "v" {
		t.Errorf("a = %v expanded=%t data=%v", a.Direction(), a.Expanded, a.Data)
	}
	if _, ok := a.Data["expanded"]; ok {
		t.Error("expanded leaked into data")
	}
	b, _ := m.Node("b")
	if b.Direction() != mind.Right {
		t.Errorf("b direction = %v, want right", b.Direction())
	}
	if m.Len() != 4 {
		t.Errorf("Len() = %d, want 4", m.Len())
	}
}

func TestEncodeErrors(t *testing.T) {
	empty := mind.New()
	for _, f := range Formats {
		if _, err := Encode(empty, f); err == nil {
			t.Errorf("Encode(empty, %s) succeeded", f)
		}
	}
	if _, err := Encode(sample(t, false), "opml"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("unknown format error = %v", err)
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{
		"node_tree": NodeTree, "nodeTree": NodeTree, "tree": NodeTree,
		"node_array": NodeArray, "array": NodeArray,
		"freemind": FreeMind, "mm": FreeMind,
	} {
		if got, err := ParseFormat(in); err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("svg"); err == nil {
		t.Error("ParseFormat(svg) succeeded")
	}
	if ForPath("a/b.MM") != FreeMind || ForPath("a.json") != NodeTree {
		t.Error("ForPath() mismatch")
	}
}

func TestReadWriteFile(t *testing.T) {
	dir := t.TempDir()
	want := sample(t, true)
	path := filepath.Join(dir, "map.json")
	if err := WriteFile(want, NodeArray, path); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	assertSameTree(t, got, want)

	if _, err := ReadFile(filepath.Join(dir, "missing.json")); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("ReadFile(missing) error = %v, want NOT_FOUND", err)
	}
}

func TestOutline(t *testing.T) {
	m := sample(t, true)

	folded := Outline(m, false)
	for _, want := range []string{"Root", "[Chapter] A &", "C", "B [+]"} {
		if !strings.Contains(folded, want) {
			t.Errorf("Outline() missing %q:\n%s", want, folded)
		}
	}
	if strings.Contains(folded, "思维") {
		t.Errorf("Outline() shows children of a collapsed node:\n%s", folded)
	}

	all := Outline(m, true)
	if !strings.Contains(all, "思维") || strings.Contains(all, "[+]") {
		t.Errorf("Outline(all) =\n%s", all)
	}
	if Outline(mind.New(), true) != "" {
		t.Error("Outline() of an empty map is not empty")
	}
}

func TestExampleMaps(t *testing.T) {
	tests := []struct {
		file  string
		want  Format
		nodes int
	}{
		{"roadmap.json", NodeTree, 10},
		{"ideas.mm", FreeMind, 6},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			path := filepath.Join("..", "..", "examples", tt.file)
			m, err := ReadFile(path)
			if err != nil {
				t.Fatalf("ReadFile() error: %v", err)
			}
			if m.Len() != tt.nodes {
				t.Errorf("nodes = %d, want %d", m.Len(), tt.nodes)
			}
			if got := ForPath(path); got != tt.want {
				t.Errorf("ForPath() = %q, want %q", got, tt.want)
			}
		})
	}
}
