package pipeline

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/mindtree/pkg/cache"
	"github.com/matzehuels/mindtree/pkg/errors"
	"github.com/matzehuels/mindtree/pkg/format"
	"github.com/matzehuels/mindtree/pkg/geometry"
	"github.com/matzehuels/mindtree/pkg/layout"
	"github.com/matzehuels/mindtree/pkg/mind"
	"github.com/matzehuels/mindtree/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can use the same Runner as long as they work on different
// trees.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → layout → render pipeline.
func (r *Runner) Execute(ctx context.Context, data []byte, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	loadStart := time.Now()
	m, f, err := r.load(ctx, data)
	if err != nil {
		return nil, err
	}
	loadTime := time.Since(loadStart)
	opts.Logger.Info("loaded mind map",
		"format", f,
		"nodes", m.Len(),
		"duration", loadTime)

	result, err := r.ExecuteMind(ctx, m, opts)
	if err != nil {
		return nil, err
	}
	result.Stats.LoadTime = loadTime
	return result, nil
}

// ExecuteMind runs the layout and render stages on an already loaded tree.
func (r *Runner) ExecuteMind(ctx context.Context, m *mind.Mind, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	result := &Result{Mind: m}

	layoutStart := time.Now()
	e, err := r.Layout(ctx, m, opts)
	if err != nil {
		return nil, err
	}
	result.Engine = e
	result.Layout = geometry.FromLayout(m, e)
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.NodeCount = m.Len()
	result.Stats.Depth = m.Depth()

	opts.Logger.Info("computed layout",
		"nodes", m.Len(),
		"width", result.Layout.Width,
		"height", result.Layout.Height,
		"duration", result.Stats.LayoutTime)

	renderStart := time.Now()
	result.DocHash = docHash(m)
	artifacts, hits, err := r.render(ctx, m, result.DocHash, result.Layout, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.Hits = hits
	result.CacheInfo.RenderHit = len(hits) == len(opts.Formats)

	opts.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", len(hits),
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Load decodes data in any supported format.
func (r *Runner) Load(ctx context.Context, data []byte) (*mind.Mind, error) {
	m, _, err := r.load(ctx, data)
	return m, err
}

func (r *Runner) load(ctx context.Context, data []byte) (*mind.Mind, format.Format, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	return Load(ctx, data)
}

// Layout measures m and runs a full layout, applying opts.Depth.
func (r *Runner) Layout(ctx context.Context, m *mind.Mind, opts Options) (*layout.Engine, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	opts.SetDefaults()
	if err := opts.Layout.Validate(); err != nil {
		return nil, err
	}
	return ComputeLayout(m, opts)
}

// Render produces every artifact in opts.Formats from a laid-out engine.
func (r *Runner) Render(ctx context.Context, m *mind.Mind, e *layout.Engine, opts Options) (map[string][]byte, error) {
	r.applyLogger(&opts)
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if e.Dirty() {
		return nil, errors.New(errors.ErrCodeInvalidInput, "layout is stale; run a full layout first")
	}
	artifacts, _, err := r.render(ctx, m, docHash(m), geometry.FromLayout(m, e), opts)
	return artifacts, err
}

// render serves cached artifacts and renders the rest concurrently. It
// returns the formats that were cache hits.
func (r *Runner) render(ctx context.Context, m *mind.Mind, hash string, l geometry.Layout, opts Options) (map[string][]byte, []string, error) {
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	formats := uniq(opts.Formats)
	artifacts := make(map[string][]byte, len(formats))
	var hits, missing []string

	for _, f := range formats {
		if opts.Refresh {
			missing = append(missing, f)
			continue
		}
		kind, key := r.key(hash, f, opts)
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil {
			opts.Logger.Warn("cache read failed", "format", f, "error", err)
		}
		if err == nil && hit {
			observability.Cache().OnCacheHit(ctx, kind)
			artifacts[f] = data
			hits = append(hits, f)
			continue
		}
		observability.Cache().OnCacheMiss(ctx, kind)
		missing = append(missing, f)
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)
	for _, f := range missing {
		g.Go(func() error {
			data, err := RenderArtifact(gctx, m, l, f, opts)
			if err != nil {
				code := errors.GetCode(err)
				if code == "" {
					code = errors.ErrCodeInternal
				}
				return errors.Wrap(code, err, "render %s", f)
			}
			mu.Lock()
			artifacts[f] = data
			mu.Unlock()
			return nil
		})
	}
	err := g.Wait()
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, nil, err
	}

	for _, f := range missing {
		kind, key := r.key(hash, f, opts)
		if err := r.Cache.Set(ctx, key, artifacts[f], opts.TTL); err != nil {
			opts.Logger.Warn("cache write failed", "format", f, "error", err)
			continue
		}
		observability.Cache().OnCacheSet(ctx, kind, len(artifacts[f]))
	}
	opts.Logger.Debug("render stage", "hits", hits, "rendered", missing)
	return artifacts, hits, nil
}

// key returns the hook key type and cache key for one artifact. The json
// geometry depends only on layout options.
func (r *Runner) key(docHash, f string, opts Options) (string, string) {
	if f == FormatJSON {
		return "layout", r.Keyer.LayoutKey(docHash, opts.LayoutKeyOpts())
	}
	return "render", r.Keyer.RenderKey(docHash, opts.RenderKeyOpts(f))
}

// docHash hashes the node_tree encoding of m, which covers topology,
// topics, data and expansion.
func docHash(m *mind.Mind) string {
	data, err := format.Encode(m, format.NodeTree)
	if err != nil {
		return ""
	}
	return cache.Hash(data)
}

func uniq(formats []string) []string {
	out := make([]string, 0, len(formats))
	for _, f := range formats {
		if !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
