package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	mterrors "github.com/matzehuels/mindtree/pkg/errors"
	"github.com/matzehuels/mindtree/pkg/geometry"
	"github.com/matzehuels/mindtree/pkg/pipeline"
)

// drawnFormats are the formats that need only geometry, not the tree.
var drawnFormats = map[string]bool{
	pipeline.FormatSVG:    true,
	pipeline.FormatPDF:    true,
	pipeline.FormatPNG:    true,
	pipeline.FormatDOT:    true,
	pipeline.FormatDotSVG: true,
}

// visualizeCommand creates the visualize command for rendering from a layout.
func (c *CLI) visualizeCommand() *cobra.Command {
	var rf renderFlags

	cmd := &cobra.Command{
		Use:   "visualize [layout.json]",
		Short: "Render a computed layout",
		Long: `Render a computed layout.

The visualize command takes a layout.json file (produced by 'layout') and
draws it. The layout carries every position, so this step does no layout
work and needs no access to the original map.

Use 'render' to go directly from a map to visual output.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.pipelineOptions()
			if err := rf.apply(&opts); err != nil {
				return err
			}
			for _, f := range opts.Formats {
				if !drawnFormats[f] {
					return mterrors.New(mterrors.ErrCodeUnsupported, "visualize cannot produce %s; use render", f)
				}
			}
			return c.runVisualize(cmd, args[0], rf.output, opts)
		},
	}

	rf.register(cmd, "svg, pdf, png, dot, dot-svg")

	return cmd
}

func (c *CLI) runVisualize(cmd *cobra.Command, input, output string, opts pipeline.Options) error {
	ctx := cmd.Context()
	l, err := geometry.ReadFile(input)
	if err != nil {
		return fmt.Errorf("load layout %s: %w", input, err)
	}
	opts.SetDefaults()

	spinner := newSpinner(ctx, "Rendering...")
	spinner.Start()

	result := &pipeline.Result{
		Layout:    l,
		Artifacts: make(map[string][]byte, len(opts.Formats)),
		Stats:     pipeline.Stats{NodeCount: len(l.Nodes)},
	}
	for _, f := range opts.Formats {
		data, err := pipeline.RenderArtifact(ctx, nil, l, f, opts)
		if err != nil {
			spinner.StopWithError("Visualization failed")
			return fmt.Errorf("%s: %w", f, err)
		}
		result.Artifacts[f] = data
	}
	spinner.Stop()

	return writeArtifacts(cmd, result, opts.Formats, input, output)
}
