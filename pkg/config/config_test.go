package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/mindtree/pkg/errors"
	"github.com/matzehuels/mindtree/pkg/layout"
)

const sample = `
[layout]
mode = "side"
hspace = 40

[editor]
max_depth = 3
root_editable = true

[rules.ROOT]
children = ["MGR"]

[rules.MGR]
display_name = "Manager"
background_color = "#ffe"

[storage]
backend = "file"
dir = "maps"

[cache]
backend = "memory"
ttl = "2h"

[server]
addr = "127.0.0.1:9000"
`

func TestDecode(t *testing.T) {
	cfg, err := Decode(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if cfg.Layout.Mode != layout.ModeSide || cfg.Layout.HSpace != 40 {
		t.Errorf("layout = %+v", cfg.Layout)
	}
	if cfg.Layout.VSpace != layout.DefaultVSpace {
		t.Errorf("missing vspace not defaulted: %v", cfg.Layout.VSpace)
	}
	if !cfg.Editor.Editable || !cfg.Editor.RootEditable || cfg.Editor.MaxDepth != 3 {
		t.Errorf("editor = %+v", cfg.Editor)
	}
	if cfg.Cache.TTL != 2*time.Hour || cfg.Cache.Backend != "memory" {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" || cfg.Server.OpenMaps != DefaultOpenMaps {
		t.Errorf("server = %+v", cfg.Server)
	}

	rules, err := cfg.HierarchyRules()
	if err != nil {
		t.Fatalf("HierarchyRules: %v", err)
	}
	mgr, ok := rules.Type("Manager")
	if !ok || mgr.Name != "MGR" || mgr.BackgroundColor != "#ffe" {
		t.Errorf("Manager rule = %+v, %v", mgr, ok)
	}
}

func TestDecodeEmpty(t *testing.T) {
	cfg, err := Decode(strings.NewReader(""))
	if err != nil {
		t.Fatal(err)
	}
	def := Default()
	if cfg.Layout != def.Layout || cfg.Editor != def.Editor || cfg.Server != def.Server {
		t.Errorf("empty config = %+v, want defaults", cfg)
	}
	if rules, err := cfg.HierarchyRules(); rules != nil || err != nil {
		t.Errorf("HierarchyRules = %v, %v; want nil", rules, err)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name, doc string
	}{
		{"syntax", "[layout"},
		{"unknown key", "[layout]\nspacing = 3"},
		{"bad mode", "[layout]\nmode = \"radial\""},
		{"negative spacing", "[layout]\nvspace = -1"},
		{"negative depth", "[editor]\nmax_depth = -1"},
		{"storage backend", "[storage]\nbackend = \"s3\""},
		{"redis without url", "[storage]\nbackend = \"redis\""},
		{"cache backend", "[cache]\nbackend = \"memcached\""},
		{"rules without root", "[rules.MGR]\nchildren = []"},
		{"undefined child", "[rules.ROOT]\nchildren = [\"X\"]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.doc))
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("err = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestLoadFileResolvesPaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mindtree.toml")
	doc := "[storage]\ndir = \"maps\"\n[cache]\ndir = \"/abs/cache\"\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Path != path {
		t.Errorf("Path = %s", cfg.Path)
	}
	if got := cfg.StorageOptions().Dir; got != filepath.Join(dir, "maps") {
		t.Errorf("storage dir = %s", got)
	}
	if got := cfg.CacheDir(); got != "/abs/cache" {
		t.Errorf("cache dir = %s", got)
	}
}

func TestFind(t *testing.T) {
	if _, err := Find(filepath.Join(t.TempDir(), "nope.toml")); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("explicit missing file err = %v", err)
	}

	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	if err := os.WriteFile(FileName, []byte("[server]\naddr = \":1\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := Find("")
	if err != nil || got != FileName {
		t.Errorf("Find = %q, %v; want %s", got, err, FileName)
	}
	cfg, err := Load("")
	if err != nil || cfg.Server.Addr != ":1" {
		t.Errorf("Load = %+v, %v", cfg.Server, err)
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.toml"))
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("err = %v, want NOT_FOUND", err)
	}
}

func TestExampleConfig(t *testing.T) {
	cfg, err := LoadFile(filepath.Join("..", "..", "examples", "mindtree.toml"))
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	if cfg.Editor.MaxDepth != 6 || cfg.Cache.TTL != 24*time.Hour || cfg.Server.IdleTTL != 30*time.Minute {
		t.Errorf("example config = %+v", cfg)
	}
	rules, err := cfg.HierarchyRules()
	if err != nil || rules == nil {
		t.Fatalf("HierarchyRules() = %v, %v", rules, err)
	}
}
