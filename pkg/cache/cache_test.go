package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	mterrors "github.com/matzehuels/mindtree/pkg/errors"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || hit || data != nil {
		t.Errorf("Get = %q, %v, %v; want miss", data, hit, err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

// exercise runs the shared behavior every storing backend must have.
func exercise(t *testing.T, c Cache) {
	t.Helper()
	ctx := context.Background()

	if _, hit, err := c.Get(ctx, "missing"); hit || err != nil {
		t.Fatalf("Get(missing) hit=%v err=%v", hit, err)
	}
	if err := c.Set(ctx, "k", []byte("<svg/>"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != "<svg/>" {
		t.Fatalf("Get(k) = %q, %v, %v", data, hit, err)
	}
	if err := c.Set(ctx, "forever", []byte("x"), 0); err != nil {
		t.Fatalf("Set without ttl: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "forever"); !hit {
		t.Error("entry without ttl missing")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("hit after Delete")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("second Delete: %v", err)
	}

	if cl, ok := c.(Clearer); ok {
		if err := cl.Clear(ctx); err != nil {
			t.Fatalf("Clear: %v", err)
		}
		if _, hit, _ := c.Get(ctx, "forever"); hit {
			t.Error("hit after Clear")
		}
	}
}

func TestFileCache(t *testing.T) {
	c, err := NewFileCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	exercise(t, c)
}

func TestFileCacheExpiredAndCorrupt(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if err := c.Set(ctx, "old", []byte("x"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(2 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "old"); hit {
		t.Error("expired entry returned")
	}
	if _, err := os.Stat(c.path("old")); !os.IsNotExist(err) {
		t.Error("expired entry not removed")
	}

	path := c.path("bad")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "bad"); hit || err != nil {
		t.Errorf("corrupt entry: hit=%v err=%v", hit, err)
	}
}

func TestFileCachePathSharding(t *testing.T) {
	c := &FileCache{dir: "/cache"}
	p := c.path("render:svg:abc")
	h := Hash([]byte("render:svg:abc"))
	if want := filepath.Join("/cache", h[:2], h[2:]+".json"); p != want {
		t.Errorf("path = %s, want %s", p, want)
	}
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(16, time.Minute)
	exercise(t, c)
}

func TestMemoryCacheEviction(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(2, 0)
	for _, k := range []string{"a", "b", "c"} {
		_ = c.Set(ctx, k, []byte(k), 0)
	}
	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("least recently used entry kept")
	}

	_ = c.Set(ctx, "short", []byte("x"), time.Nanosecond)
	time.Sleep(2 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "short"); hit {
		t.Error("per-entry ttl ignored")
	}
}

func TestRedisCache(t *testing.T) {
	url := os.Getenv("MINDTREE_TEST_REDIS_URL")
	if url == "" {
		t.Skip("MINDTREE_TEST_REDIS_URL not set")
	}
	c, err := NewRedisCache(context.Background(), url, RedisOptions{Prefix: "mindtree:test:" + t.Name() + ":"})
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	exercise(t, c)
}

func TestNewRedisCacheBadURL(t *testing.T) {
	if _, err := NewRedisCache(context.Background(), "not a url", RedisOptions{}); err == nil {
		t.Error("expected error for invalid url")
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()
	base := LayoutKeyOpts{Mode: "normal", HSpace: 80, VSpace: 20, PSpace: 13}

	lk1 := k.LayoutKey("doc", base)
	deeper := base
	deeper.Depth = 2
	if lk1 == k.LayoutKey("doc", deeper) {
		t.Error("depth should change the layout key")
	}
	if lk1 == k.LayoutKey("other", base) {
		t.Error("document hash should change the layout key")
	}
	if !strings.HasPrefix(lk1, "layout:") {
		t.Errorf("layout key prefix: %s", lk1)
	}

	svg := k.RenderKey("doc", RenderKeyOpts{Format: "svg", Layout: base})
	dot := k.RenderKey("doc", RenderKeyOpts{Format: "dot", Layout: base})
	if svg == dot {
		t.Error("format should change the render key")
	}
	if !strings.HasPrefix(svg, "render:svg:") {
		t.Errorf("render key prefix: %s", svg)
	}
	if svg != k.RenderKey("doc", RenderKeyOpts{Format: "svg", Layout: base}) {
		t.Error("RenderKey should be deterministic")
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(nil, "user:123:")
	inner := NewDefaultKeyer()
	opts := RenderKeyOpts{Format: "svg"}
	if got, want := scoped.RenderKey("doc", opts), "user:123:"+inner.RenderKey("doc", opts); got != want {
		t.Errorf("RenderKey = %s, want %s", got, want)
	}
	if got := scoped.LayoutKey("doc", LayoutKeyOpts{}); !strings.HasPrefix(got, "user:123:layout:") {
		t.Errorf("LayoutKey = %s", got)
	}
}

var errConnRefused = errors.New("connection refused")

func TestNetworkError(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}
	err := networkError(errConnRefused, "get")
	if !IsRetryable(err) {
		t.Error("network errors should be retryable")
	}
	if !mterrors.Is(err, mterrors.ErrCodeNetwork) {
		t.Errorf("code = %q, want NETWORK_ERROR", mterrors.GetCode(err))
	}
	if !errors.Is(err, errConnRefused) {
		t.Error("network error should unwrap to its cause")
	}
	if IsRetryable(errConnRefused) {
		t.Error("plain errors are not retryable")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	old := retryDelay
	retryDelay = time.Millisecond
	defer func() { retryDelay = old }()
	ctx := context.Background()
	permanent := errors.New("permanent")
	transient := networkError(errConnRefused, "ping")

	tests := []struct {
		name      string
		failures  int
		err       error
		wantCalls int
		wantErr   error
	}{
		{"success", 0, nil, 1, nil},
		{"non-retryable stops", 5, permanent, 1, permanent},
		{"retry then succeed", 1, transient, 2, nil},
		{"gives up after three", 5, transient, 3, errConnRefused},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := RetryWithBackoff(ctx, func() error {
				calls++
				if calls <= tt.failures {
					return tt.err
				}
				return nil
			})
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if tt.wantErr == nil && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, func() error {
		return networkError(errConnRefused, "ping")
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
