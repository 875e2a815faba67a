package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	mterrors "github.com/matzehuels/mindtree/pkg/errors"
	"github.com/matzehuels/mindtree/pkg/pipeline"
	"github.com/matzehuels/mindtree/pkg/render/svg"
)

// renderFlags are the artifact settings shared by render and visualize.
type renderFlags struct {
	formats  string
	output   string
	hmargin  float64
	vmargin  float64
	detailed bool
	scale    float64
}

func (f *renderFlags) register(cmd *cobra.Command, formats string) {
	cmd.Flags().StringVarP(&f.formats, "format", "f", "", "output format(s), comma-separated: "+formats+" (default svg)")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file (single format, - for stdout) or base path (multiple)")
	cmd.Flags().Float64Var(&f.hmargin, "hmargin", svg.DefaultHMargin, "horizontal canvas margin")
	cmd.Flags().Float64Var(&f.vmargin, "vmargin", svg.DefaultVMargin, "vertical canvas margin")
	cmd.Flags().BoolVar(&f.detailed, "detailed", false, "list node data in DOT labels")
	cmd.Flags().Float64Var(&f.scale, "scale", pipeline.DefaultScale, "PNG resolution multiplier")
}

func (f *renderFlags) apply(opts *pipeline.Options) error {
	opts.Formats = parseFormats(f.formats)
	if f.output == stdio && len(opts.Formats) > 1 {
		return mterrors.New(mterrors.ErrCodeInvalidInput, "stdout output takes a single format, got %d", len(opts.Formats))
	}
	opts.HMargin = f.hmargin
	opts.VMargin = f.vmargin
	opts.Detailed = f.detailed
	opts.Scale = f.scale
	return pipeline.ValidateFormats(opts.Formats)
}

// renderCommand creates the render command for generating artifacts.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		rf      renderFlags
		lf      layoutFlags
		all     bool
		noCache bool
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "render [map]",
		Short: "Render a mind map to SVG, PDF, PNG and other formats",
		Long: `Render a mind map.

Runs the full pipeline: load, layout, and render each requested format.
Formats are rendered concurrently and cached by content, so re-rendering an
unchanged map is instant.

PDF and PNG output require rsvg-convert on the PATH.`,
		Example: `  mindtree render roadmap.json
  mindtree render roadmap.mm -f svg,png --scale 3 -o out/roadmap
  mindtree render roadmap.json -f outline -d 2 -o -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.pipelineOptions()
			lf.apply(cmd, &opts)
			if err := rf.apply(&opts); err != nil {
				return err
			}
			opts.All = all
			opts.Refresh = refresh
			return c.runRender(cmd, args[0], rf.output, noCache, opts)
		},
	}

	rf.register(cmd, "svg, pdf, png, dot, dot-svg, json, node_tree, node_array, freemind, outline")
	lf.register(cmd)
	cmd.Flags().BoolVarP(&all, "all", "a", false, "include collapsed branches in outline output")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "ignore cached results")

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, input, output string, noCache bool, opts pipeline.Options) error {
	ctx := cmd.Context()
	data, err := readInput(cmd, input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(ctx)
	spinner := newSpinner(ctx, "Rendering...")
	spinner.Start()

	result, err := runner.Execute(ctx, data, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()
	prog.done("Rendered", "formats", len(opts.Formats), "cached", len(result.CacheInfo.Hits))

	return writeArtifacts(cmd, result, opts.Formats, input, output)
}

// writeArtifacts writes every artifact to its path and reports the files.
func writeArtifacts(cmd *cobra.Command, result *pipeline.Result, formats []string, input, output string) error {
	paths := artifactPaths(formats, input, output)
	for _, f := range formats {
		path := paths[f]
		if err := writeOutput(cmd, path, result.Artifacts[f]); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	if output == stdio {
		return nil
	}

	printSuccess("Render complete")
	for _, f := range formats {
		printFile(paths[f])
	}
	printStats(result.Stats.NodeCount, result.Stats.Depth, result.CacheInfo.RenderHit)
	return nil
}
