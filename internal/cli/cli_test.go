package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mindtree/pkg/format"
)

const sampleMap = `{
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

// testEnv writes the sample map and a cache-less config into a temp dir.
func testEnv(t *testing.T) (dir, mapPath, configPath string) {
	t.Helper()
	quietStatus(t)
	dir = t.TempDir()
	mapPath = filepath.Join(dir, "demo.json")
	configPath = filepath.Join(dir, "mindtree.toml")
	if err := os.WriteFile(mapPath, []byte(sampleMap), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(configPath, []byte("[cache]\nbackend = \"none\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir, mapPath, configPath
}

// run executes the root command with args and returns its stdout.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := New(io.Discard, log.InfoLevel).RootCommand()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetIn(strings.NewReader(stdin))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestConvertCommand(t *testing.T) {
	dir, mapPath, cfg := testEnv(t)

	t.Run("to freemind file", func(t *testing.T) {
		out := filepath.Join(dir, "demo.mm")
		if _, err := run(t, "", "--config", cfg, "convert", mapPath, "--to", "freemind", "-o", out); err != nil {
			t.Fatalf("convert error: %v", err)
		}
		data, err := os.ReadFile(out)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.HasPrefix(string(data), "<map") {
			t.Errorf("freemind output = %.40q", data)
		}
		m, err := format.Decode(data)
		if err != nil {
			t.Fatalf("decode converted: %v", err)
		}
		if m.Len() != 4 {
			t.Errorf("converted nodes = %d, want 4", m.Len())
		}
	})

	t.Run("stdin to stdout", func(t *testing.T) {
		out, err := run(t, sampleMap, "--config", cfg, "convert", "-", "-t", "node_array")
		if err != nil {
			t.Fatalf("convert error: %v", err)
		}
		f, err := format.Detect([]byte(out))
		if err != nil || f != format.NodeArray {
			t.Errorf("detected %q (err %v), want node_array", f, err)
		}
	})

	t.Run("unknown target", func(t *testing.T) {
		if _, err := run(t, "", "--config", cfg, "convert", mapPath, "--to", "opml"); err == nil {
			t.Error("expected error for unknown target format")
		}
	})
}

func TestPrintAndInfo(t *testing.T) {
	_, mapPath, cfg := testEnv(t)

	out, err := run(t, "", "--config", cfg, "print", mapPath)
	if err != nil {
		t.Fatalf("print error: %v", err)
	}
	for _, topic := range []string{"Root", "A1", "B"} {
		if !strings.Contains(out, topic) {
			t.Errorf("print output missing %q:\n%s", topic, out)
		}
	}

	out, err = run(t, "", "--config", cfg, "info", mapPath)
	if err != nil {
		t.Fatalf("info error: %v", err)
	}
	for _, want := range []string{"demo", "node_tree", "1 left, 1 right"} {
		if !strings.Contains(out, want) {
			t.Errorf("info output missing %q:\n%s", want, out)
		}
	}
}

func TestInfoRows(t *testing.T) {
	m, err := format.Decode([]byte(sampleMap))
	if err != nil {
		t.Fatal(err)
	}
	rows := infoRows(m, format.NodeTree)
	got := make(map[string]string, len(rows))
	for _, r := range rows {
		got[r[0]] = r[1]
	}
	want := map[string]string{
		"Name":      "demo",
		"Author":    "—",
		"Nodes":     "4",
		"Depth":     "3",
		"Branches":  "1 left, 1 right",
		"Collapsed": "0",
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %q, want %q", k, got[k], v)
		}
	}
}

func TestRenderCommand(t *testing.T) {
	dir, mapPath, cfg := testEnv(t)

	t.Run("outline to stdout", func(t *testing.T) {
		out, err := run(t, "", "--config", cfg, "render", mapPath, "-f", "outline", "-o", "-")
		if err != nil {
			t.Fatalf("render error: %v", err)
		}
		if !strings.Contains(out, "A1") {
			t.Errorf("outline = %q", out)
		}
	})

	t.Run("svg and dot to files", func(t *testing.T) {
		base := filepath.Join(dir, "out", "demo")
		if _, err := run(t, "", "--config", cfg, "render", mapPath, "-f", "svg,dot", "-o", base); err != nil {
			t.Fatalf("render error: %v", err)
		}
		svg, err := os.ReadFile(base + ".svg")
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(svg), "<svg") {
			t.Errorf("svg output = %.60q", svg)
		}
		if _, err := os.Stat(base + ".dot"); err != nil {
			t.Errorf("dot output: %v", err)
		}
	})

	t.Run("multiple formats to stdout", func(t *testing.T) {
		if _, err := run(t, "", "--config", cfg, "render", mapPath, "-f", "svg,dot", "-o", "-"); err == nil {
			t.Error("expected error for multiple formats on stdout")
		}
	})
}

func TestLayoutThenVisualize(t *testing.T) {
	dir, mapPath, cfg := testEnv(t)
	layoutPath := filepath.Join(dir, "demo.layout.json")

	if _, err := run(t, "", "--config", cfg, "layout", mapPath); err != nil {
		t.Fatalf("layout error: %v", err)
	}
	if _, err := os.Stat(layoutPath); err != nil {
		t.Fatalf("layout output: %v", err)
	}

	out, err := run(t, "", "--config", cfg, "visualize", layoutPath, "-f", "svg", "-o", "-")
	if err != nil {
		t.Fatalf("visualize error: %v", err)
	}
	if !strings.Contains(out, "<svg") || !strings.Contains(out, "A1") {
		t.Errorf("visualize svg missing content: %.80q", out)
	}

	if _, err := run(t, "", "--config", cfg, "visualize", layoutPath, "-f", "outline"); err == nil {
		t.Error("expected error for outline from geometry")
	}
}

func TestBadConfig(t *testing.T) {
	dir, mapPath, _ := testEnv(t)
	bad := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(bad, []byte("[cache]\nbackend = \"tape\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := run(t, "", "--config", bad, "print", mapPath); err == nil {
		t.Error("expected error for unknown cache backend")
	}
}
