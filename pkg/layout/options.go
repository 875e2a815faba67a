package layout

import (
	"github.com/matzehuels/mindtree/pkg/errors"
)

// Mode selects how top-level branches are distributed around the root.
type Mode string

const (
	// ModeFull places each top-level branch on the side stored on its node.
	ModeFull Mode = "full"
	// ModeSide places every branch on the right.
	ModeSide Mode = "side"
)

// Default spacing in pixels.
const (
	DefaultHSpace = 30.0
	DefaultVSpace = 20.0
	DefaultPSpace = 13.0
)

// Options configures an [Engine].
type Options struct {
	Mode Mode `json:"mode" toml:"mode"`
	// HSpace is the horizontal gap between a parent and its children.
	HSpace float64 `json:"hspace" toml:"hspace"`
	// VSpace is the vertical gap between stacked siblings.
	VSpace float64 `json:"vspace" toml:"vspace"`
	// PSpace is the size of the expander affordance.
	PSpace float64 `json:"pspace" toml:"pspace"`
}

// DefaultOptions returns the two-side layout with default spacing.
func DefaultOptions() Options {
	return Options{
		Mode:   ModeFull,
		HSpace: DefaultHSpace,
		VSpace: DefaultVSpace,
		PSpace: DefaultPSpace,
	}
}

// WithDefaults fills zero fields with their defaults.
func (o Options) WithDefaults() Options {
	d := DefaultOptions()
	if o.Mode == "" {
		o.Mode = d.Mode
	}
	if o.HSpace == 0 {
		o.HSpace = d.HSpace
	}
	if o.VSpace == 0 {
		o.VSpace = d.VSpace
	}
	if o.PSpace == 0 {
		o.PSpace = d.PSpace
	}
	return o
}

// Validate rejects unknown modes and negative spacing.
func (o Options) Validate() error {
	switch o.Mode {
	case "", ModeFull, ModeSide:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown layout mode %q (want full or side)", o.Mode)
	}
	if o.HSpace < 0 || o.VSpace < 0 || o.PSpace < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "layout spacing cannot be negative")
	}
	return nil
}
