package pipeline

import (
	"github.com/matzehuels/mindtree/pkg/errors"
	"github.com/matzehuels/mindtree/pkg/layout"
	"github.com/matzehuels/mindtree/pkg/mind"
	"github.com/matzehuels/mindtree/pkg/render"
)

// ComputeLayout measures every node of m and runs a full layout. A positive
// opts.Depth then shows exactly that many levels below the root.
func ComputeLayout(m *mind.Mind, opts Options) (*layout.Engine, error) {
	if m.Root() == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "mind map has no root")
	}
	ms := opts.Measurer
	if ms == nil {
		ms = render.EstimateMeasurer{}
	}
	e := layout.New(m, opts.Layout)
	e.Measure(ms)
	e.Layout()
	if opts.Depth > 0 {
		e.ExpandToDepth(opts.Depth)
	}
	return e, nil
}
