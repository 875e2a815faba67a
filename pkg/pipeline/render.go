package pipeline

import (
	"context"

	"github.com/matzehuels/mindtree/pkg/errors"
	"github.com/matzehuels/mindtree/pkg/format"
	"github.com/matzehuels/mindtree/pkg/geometry"
	"github.com/matzehuels/mindtree/pkg/mind"
	"github.com/matzehuels/mindtree/pkg/render"
	"github.com/matzehuels/mindtree/pkg/render/dot"
	"github.com/matzehuels/mindtree/pkg/render/svg"
)

// RenderArtifact produces one artifact. The tree formats encode m as is,
// including its current expansion; the drawn formats use l.
func RenderArtifact(ctx context.Context, m *mind.Mind, l geometry.Layout, f string, opts Options) ([]byte, error) {
	switch f {
	case FormatSVG:
		return renderSVG(l, opts), nil
	case FormatPDF:
		return render.ToPDF(ctx, renderSVG(l, opts))
	case FormatPNG:
		return render.ToPNG(ctx, renderSVG(l, opts), opts.Scale)
	case FormatDOT:
		return []byte(dot.ToDOT(l, dot.Options{Detailed: opts.Detailed})), nil
	case FormatDotSVG:
		return dot.RenderSVG(ctx, dot.ToDOT(l, dot.Options{Detailed: opts.Detailed}))
	case FormatJSON:
		return geometry.Marshal(l)
	case FormatNodeTree:
		return format.Encode(m, format.NodeTree)
	case FormatNodeArray:
		return format.Encode(m, format.NodeArray)
	case FormatFreeMind:
		return format.Encode(m, format.FreeMind)
	case FormatOutline:
		return []byte(format.Outline(m, opts.All)), nil
	}
	return nil, errors.New(errors.ErrCodeUnsupported, "unsupported format: %s", f)
}

func renderSVG(l geometry.Layout, opts Options) []byte {
	return svg.Render(l, svg.WithMargin(opts.HMargin, opts.VMargin))
}
