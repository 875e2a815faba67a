package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mindtree/pkg/pipeline"
)

// layoutCommand creates the layout command for computing map geometry.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		refresh bool
		lf      layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "layout [map]",
		Short: "Compute the layout of a mind map",
		Long: `Compute the layout of a mind map.

The layout command measures every node, positions the tree and writes the
geometry as JSON (same format as 'render -f json'). The result can be drawn
with 'visualize' without loading the map again.

Results are cached for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.pipelineOptions()
			lf.apply(cmd, &opts)
			opts.Formats = []string{pipeline.FormatJSON}
			opts.Refresh = refresh
			return c.runLayout(cmd, args[0], output, noCache, opts)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json, - for stdout)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "ignore cached results")
	lf.register(cmd)

	return cmd
}

func (c *CLI) runLayout(cmd *cobra.Command, input, output string, noCache bool, opts pipeline.Options) error {
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
	spinner := newSpinner(ctx, "Computing layout...")
	spinner.Start()

	result, err := runner.Execute(ctx, data, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return err
	}
	spinner.Stop()
	prog.done("Laid out", "nodes", result.Stats.NodeCount, "depth", result.Stats.Depth)

	if output == "" {
		output = basePath("", input) + ".layout.json"
	}
	if err := writeOutput(cmd, output, result.Artifacts[pipeline.FormatJSON]); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}
	if output == stdio {
		return nil
	}

	printSuccess("Layout complete")
	printFile(output)
	printStats(result.Stats.NodeCount, result.Stats.Depth, result.CacheInfo.RenderHit)
	printNextStep("Render", appName+" visualize "+output)
	return nil
}
