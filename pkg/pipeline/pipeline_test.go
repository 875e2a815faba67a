package pipeline

import (
	"context"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/mindtree/pkg/cache"
	"github.com/matzehuels/mindtree/pkg/errors"
	"github.com/matzehuels/mindtree/pkg/geometry"
	"github.com/matzehuels/mindtree/pkg/layout"
	"github.com/matzehuels/mindtree/pkg/mind"
)

const sampleDoc = `{
  "meta": {"name": "demo", "author": "", "version": "1"},
  "format": "node_tree",
  "data": {
    "id": "r", "topic": "Root",
    "children": [
      {"id": "a", "topic": "A", "direction": "right",
       "children": [{"id": "a1", "topic": "A1"}]},
      {"id": "b", "topic": "B", "direction": "left"}
    ]
  }
}`

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"dot-svg", false},
		{"node_array", false},
		{"outline", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeUnsupported) {
			t.Errorf("ValidateFormat(%q) code = %s", tt.format, errors.GetCode(err))
		}
	}
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestOptionsDefaults(t *testing.T) {
	var o Options
	o.SetDefaults()
	if !slices.Equal(o.Formats, []string{FormatSVG}) {
		t.Errorf("Formats = %v", o.Formats)
	}
	if o.Layout != layout.DefaultOptions() || o.TTL != DefaultTTL || o.Scale != DefaultScale {
		t.Errorf("defaults = %+v", o)
	}

	bad := []Options{
		{Depth: -1},
		{Formats: []string{"gif"}},
		{Layout: layout.Options{Mode: "radial"}},
		{HMargin: -5},
	}
	for _, o := range bad {
		if err := o.Validate(); err == nil {
			t.Errorf("Validate(%+v) should fail", o)
		}
	}
}

func TestRenderKeyOpts(t *testing.T) {
	o := Options{HMargin: 10, Detailed: true, Scale: 3}
	o.SetDefaults()
	if k := o.RenderKeyOpts(FormatNodeTree); k.HMargin != 0 || k.Detailed {
		t.Errorf("node_tree key carries render options: %+v", k)
	}
	if k := o.RenderKeyOpts(FormatSVG); k.HMargin != 10 {
		t.Errorf("svg key = %+v", k)
	}
	if k := o.RenderKeyOpts(FormatDOT); !k.Detailed {
		t.Errorf("dot key = %+v", k)
	}
	if k := o.RenderKeyOpts(FormatPNG); k.Scale != 3 {
		t.Errorf("png key = %+v", k)
	}
}

func TestExecute(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(cache.NewMemoryCache(64, time.Hour), nil, nil)
	defer r.Close()

	opts := Options{Formats: []string{FormatSVG, FormatNodeTree, FormatJSON, FormatOutline, FormatDOT}}
	res, err := r.Execute(ctx, []byte(sampleDoc), opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Stats.NodeCount != 4 || res.Stats.Depth != 2 {
		t.Errorf("stats = %+v", res.Stats)
	}
	if res.CacheInfo.RenderHit || len(res.CacheInfo.Hits) != 0 {
		t.Errorf("first run hit the cache: %+v", res.CacheInfo)
	}
	if len(res.Artifacts) != 5 {
		t.Fatalf("artifacts = %d", len(res.Artifacts))
	}
	if !strings.HasPrefix(string(res.Artifacts[FormatSVG]), "<svg") {
		t.Error("svg artifact is not svg")
	}
	if !strings.Contains(string(res.Artifacts[FormatDOT]), `"a" -> "a1";`) {
		t.Error("dot artifact missing edge")
	}
	if !strings.Contains(string(res.Artifacts[FormatOutline]), "A1") {
		t.Error("outline missing nested node")
	}
	l, err := geometry.Unmarshal(res.Artifacts[FormatJSON])
	if err != nil {
		t.Fatalf("json artifact: %v", err)
	}
	if len(l.Nodes) != 4 || l.Root().ID != "r" {
		t.Errorf("geometry = %+v", l)
	}
	if res.DocHash == "" {
		t.Error("DocHash empty")
	}

	again, err := r.Execute(ctx, []byte(sampleDoc), opts)
	if err != nil {
		t.Fatal(err)
	}
	if !again.CacheInfo.RenderHit {
		t.Errorf("second run missed the cache: %+v", again.CacheInfo)
	}
	if string(again.Artifacts[FormatSVG]) != string(res.Artifacts[FormatSVG]) {
		t.Error("cached svg differs")
	}

	opts.Refresh = true
	fresh, err := r.Execute(ctx, []byte(sampleDoc), opts)
	if err != nil {
		t.Fatal(err)
	}
	if len(fresh.CacheInfo.Hits) != 0 {
		t.Errorf("refresh used the cache: %v", fresh.CacheInfo.Hits)
	}
}

func TestExecuteDepth(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), []byte(sampleDoc), Options{
		Depth:   1,
		Formats: []string{FormatOutline, FormatSVG},
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := string(res.Artifacts[FormatOutline]); !strings.Contains(got, "A [+]") || strings.Contains(got, "A1") {
		t.Errorf("outline at depth 1:\n%s", got)
	}
	if strings.Contains(string(res.Artifacts[FormatSVG]), ">A1<") {
		t.Error("collapsed child drawn")
	}
	a, _ := res.Mind.Node("a")
	if a.Expanded {
		t.Error("depth 1 left A expanded")
	}
}

func TestExecuteErrors(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	ctx := context.Background()

	if _, err := r.Execute(ctx, []byte("not a map"), Options{}); err == nil {
		t.Error("expected decode error")
	}
	if _, err := r.Execute(ctx, []byte(sampleDoc), Options{Formats: []string{"gif"}}); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("err = %v, want UNSUPPORTED", err)
	}
	if _, err := r.ExecuteMind(ctx, mind.New(), Options{}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("empty mind err = %v", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := r.Execute(cancelled, []byte(sampleDoc), Options{}); err != context.Canceled {
		t.Errorf("cancelled err = %v", err)
	}
}

func TestRenderStages(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(nil, nil, nil)
	m, err := r.Load(ctx, []byte(sampleDoc))
	if err != nil {
		t.Fatal(err)
	}
	e, err := r.Layout(ctx, m, Options{Layout: layout.Options{Mode: layout.ModeSide}})
	if err != nil {
		t.Fatal(err)
	}
	if got := e.Direction(mustNode(t, m, "b")); got != mind.Right {
		t.Errorf("side mode placed B on %v", got)
	}
	out, err := r.Render(ctx, m, e, Options{Formats: []string{FormatNodeArray, FormatFreeMind}})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out[FormatNodeArray]), `"parentid": "a"`) {
		t.Errorf("node_array artifact:\n%s", out[FormatNodeArray])
	}
	if !strings.HasPrefix(string(out[FormatFreeMind]), "<map") {
		t.Errorf("freemind artifact:\n%s", out[FormatFreeMind])
	}

	e.Invalidate()
	if _, err := r.Render(ctx, m, e, Options{}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("stale engine err = %v", err)
	}
}

func TestExtensionAndContentType(t *testing.T) {
	tests := []struct{ format, ext, ctype string }{
		{FormatSVG, ".svg", "image/svg+xml"},
		{FormatDotSVG, ".dot.svg", "image/svg+xml"},
		{FormatNodeTree, ".node_tree.json", "application/json"},
		{FormatFreeMind, ".mm", "application/xml"},
		{FormatOutline, ".txt", "text/plain; charset=utf-8"},
		{FormatPNG, ".png", "image/png"},
	}
	for _, tt := range tests {
		if got := Extension(tt.format); got != tt.ext {
			t.Errorf("Extension(%s) = %s, want %s", tt.format, got, tt.ext)
		}
		if got := ContentType(tt.format); got != tt.ctype {
			t.Errorf("ContentType(%s) = %s, want %s", tt.format, got, tt.ctype)
		}
	}
}

func mustNode(t *testing.T, m *mind.Mind, id string) *mind.Node {
	t.Helper()
	n, err := m.Node(id)
	if err != nil {
		t.Fatal(err)
	}
	return n
}
