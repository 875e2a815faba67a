// Package pipeline runs the load → layout → render pipeline shared by the
// CLI and the HTTP server.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: sniff and decode a node_tree, node_array or freemind document
//  2. Layout: measure every node, run a full layout, optionally expand to a
//     depth
//  3. Render: produce the requested artifacts, concurrently, through the
//     cache
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, data, pipeline.Options{
//	    Formats: []string{"svg", "node_tree"},
//	})
//	if err != nil {
//	    return err
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	m, err := runner.Load(ctx, data)
//	e, err := runner.Layout(ctx, m, opts)
//	artifacts, err := runner.Render(ctx, m, e, opts)
package pipeline

import (
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mindtree/pkg/cache"
	"github.com/matzehuels/mindtree/pkg/errors"
	"github.com/matzehuels/mindtree/pkg/geometry"
	"github.com/matzehuels/mindtree/pkg/layout"
	"github.com/matzehuels/mindtree/pkg/mind"
	"github.com/matzehuels/mindtree/pkg/render/svg"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultTTL is how long rendered artifacts stay cached.
	DefaultTTL = 24 * time.Hour

	// DefaultScale is the PNG resolution multiplier.
	DefaultScale = 2.0

	// DefaultConcurrency bounds the artifacts rendered at once.
	DefaultConcurrency = 4
)

// Artifact formats.
const (
	FormatSVG       = "svg"
	FormatDOT       = "dot"
	FormatDotSVG    = "dot-svg"
	FormatJSON      = "json"
	FormatNodeTree  = "node_tree"
	FormatNodeArray = "node_array"
	FormatFreeMind  = "freemind"
	FormatOutline   = "outline"
	FormatPDF       = "pdf"
	FormatPNG       = "png"
)

// ValidFormats is the set of supported artifact formats.
var ValidFormats = map[string]bool{
	FormatSVG:       true,
	FormatDOT:       true,
	FormatDotSVG:    true,
	FormatJSON:      true,
	FormatNodeTree:  true,
	FormatNodeArray: true,
	FormatFreeMind:  true,
	FormatOutline:   true,
	FormatPDF:       true,
	FormatPNG:       true,
}

// FormatNames returns the supported formats in sorted order.
func FormatNames() []string {
	names := make([]string, 0, len(ValidFormats))
	for f := range ValidFormats {
		names = append(names, f)
	}
	slices.Sort(names)
	return names
}

// Extension returns the file extension for an artifact format.
func Extension(format string) string {
	switch format {
	case FormatDotSVG:
		return ".dot.svg"
	case FormatNodeTree, FormatNodeArray:
		return "." + format + ".json"
	case FormatFreeMind:
		return ".mm"
	case FormatOutline:
		return ".txt"
	}
	return "." + format
}

// ContentType returns the MIME type for an artifact format.
func ContentType(format string) string {
	switch format {
	case FormatSVG, FormatDotSVG:
		return "image/svg+xml"
	case FormatJSON, FormatNodeTree, FormatNodeArray:
		return "application/json"
	case FormatFreeMind:
		return "application/xml"
	case FormatPDF:
		return "application/pdf"
	case FormatPNG:
		return "image/png"
	case FormatDOT:
		return "text/vnd.graphviz"
	}
	return "text/plain; charset=utf-8"
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options configures a pipeline run. It supports JSON for API requests.
type Options struct {
	// Layout options
	Layout layout.Options `json:"layout"`
	// Depth, when positive, shows exactly Depth levels below the root.
	Depth int `json:"depth,omitempty"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	HMargin  float64  `json:"hmargin,omitempty"`
	VMargin  float64  `json:"vmargin,omitempty"`
	Detailed bool     `json:"detailed,omitempty"` // dot labels list node data
	Scale    float64  `json:"scale,omitempty"`    // png
	All      bool     `json:"all,omitempty"`      // outline includes collapsed branches
	Refresh  bool     `json:"refresh,omitempty"`  // bypass cached artifacts

	// Runtime options (not serialized)
	TTL         time.Duration   `json:"-"`
	Concurrency int             `json:"-"`
	Measurer    layout.Measurer `json:"-"`
	Logger      *log.Logger     `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Mind is the decoded tree, with expansion applied.
	Mind *mind.Mind

	// Engine holds the computed layout.
	Engine *layout.Engine

	// DocHash is the content hash of the tree used for cache keys.
	DocHash string

	// Layout is the serializable geometry.
	Layout geometry.Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which artifacts came from the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	Depth      int
	LoadTime   time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for the render stage.
type CacheInfo struct {
	Hits      []string // formats served from cache
	RenderHit bool     // whether every artifact came from cache
}

// =============================================================================
// Validation
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeUnsupported, "invalid format: %q (must be one of: %s)",
			format, strings.Join(FormatNames(), ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// SetDefaults fills unset fields. It is idempotent.
func (o *Options) SetDefaults() {
	o.Layout = o.Layout.WithDefaults()
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.HMargin == 0 {
		o.HMargin = svg.DefaultHMargin
	}
	if o.VMargin == 0 {
		o.VMargin = svg.DefaultVMargin
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.TTL == 0 {
		o.TTL = DefaultTTL
	}
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultConcurrency
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Validate applies defaults and checks every option.
func (o *Options) Validate() error {
	o.SetDefaults()
	if err := o.Layout.Validate(); err != nil {
		return err
	}
	if o.Depth < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "depth cannot be negative")
	}
	if o.HMargin < 0 || o.VMargin < 0 || o.Scale < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "margins and scale cannot be negative")
	}
	return ValidateFormats(o.Formats)
}

// LayoutKeyOpts returns cache key options for the layout.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Mode:   string(o.Layout.Mode),
		HSpace: o.Layout.HSpace,
		VSpace: o.Layout.VSpace,
		PSpace: o.Layout.PSpace,
		Depth:  o.Depth,
	}
}

// RenderKeyOpts returns cache key options for one artifact. Only options
// that affect format are included, so unrelated changes keep hits.
func (o *Options) RenderKeyOpts(format string) cache.RenderKeyOpts {
	k := cache.RenderKeyOpts{Format: format, Layout: o.LayoutKeyOpts()}
	switch format {
	case FormatSVG, FormatPDF, FormatPNG:
		k.HMargin, k.VMargin = o.HMargin, o.VMargin
	case FormatDOT, FormatDotSVG:
		k.Detailed = o.Detailed
	case FormatOutline:
		k.All = o.All
	}
	if format == FormatPNG {
		k.Scale = o.Scale
	}
	return k
}
