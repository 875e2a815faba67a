package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/mindtree/pkg/cache"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "mindtree.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCachePath(t *testing.T) {
	quietStatus(t)
	dir := t.TempDir()
	cfg := writeConfig(t, dir, "[cache]\ndir = \"artifacts\"\n")

	out, err := run(t, "", "--config", cfg, "cache", "path")
	if err != nil {
		t.Fatalf("cache path error: %v", err)
	}
	if got, want := strings.TrimSpace(out), filepath.Join(dir, "artifacts"); got != want {
		t.Errorf("cache path = %q, want %q (relative to the config file)", got, want)
	}
}

func TestCacheClear(t *testing.T) {
	quietStatus(t)
	dir := t.TempDir()
	cacheDir := filepath.Join(dir, "artifacts")
	cfg := writeConfig(t, dir, "[cache]\nbackend = \"file\"\ndir = \"artifacts\"\n")

	fc, err := cache.NewFileCache(cacheDir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := fc.Set(ctx, "render:abc", []byte("<svg/>"), 0); err != nil {
		t.Fatal(err)
	}

	if _, err := run(t, "", "--config", cfg, "cache", "clear"); err != nil {
		t.Fatalf("cache clear error: %v", err)
	}
	if _, ok, _ := fc.Get(ctx, "render:abc"); ok {
		t.Error("entry still cached after clear")
	}
}

func TestCacheClearNothingToClear(t *testing.T) {
	quietStatus(t)
	cfg := writeConfig(t, t.TempDir(), "[cache]\nbackend = \"none\"\n")
	if _, err := run(t, "", "--config", cfg, "cache", "clear"); err != nil {
		t.Errorf("cache clear on none backend error: %v", err)
	}
}

func TestNewCacheBackends(t *testing.T) {
	tests := []struct {
		name    string
		backend string
		noCache bool
		want    string
	}{
		{"none", cacheNone, false, "*cache.NullCache"},
		{"memory", cacheMemory, false, "*cache.MemoryCache"},
		{"file", cacheFile, false, "*cache.FileCache"},
		{"no-cache flag wins", cacheMemory, true, "*cache.NullCache"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(os.Stderr, LogInfo)
			cfg := c.settings()
			cfg.Cache.Backend = tt.backend
			cfg.Cache.Dir = t.TempDir()
			c.cfg = &cfg

			cc, err := c.newCache(context.Background(), tt.noCache)
			if err != nil {
				t.Fatalf("newCache() error: %v", err)
			}
			defer cc.Close()
			if got := fmt.Sprintf("%T", cc); got != tt.want {
				t.Errorf("newCache() = %s, want %s", got, tt.want)
			}
		})
	}
}
