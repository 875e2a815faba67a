package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/mindtree/pkg/format"
)

// convertCommand creates the convert command for re-encoding a map.
func (c *CLI) convertCommand() *cobra.Command {
	var (
		to     string
		output string
	)

	cmd := &cobra.Command{
		Use:   "convert [map]",
		Short: "Convert a mind map between node_tree, node_array and freemind",
		Long: `Convert a mind map between formats.

The input format is detected: a leading '<' is a FreeMind document, anything
else a JSON envelope whose "format" field names node_tree or node_array.
Use "-" to read from stdin. Output goes to stdout unless -o is given.`,
		Example: `  mindtree convert roadmap.json --to freemind -o roadmap.mm
  cat roadmap.mm | mindtree convert - --to node_array`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runConvert(cmd, args[0], to, output)
		},
	}

	cmd.Flags().StringVarP(&to, "to", "t", string(format.NodeTree), "target format: node_tree, node_array, freemind")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")

	return cmd
}

func (c *CLI) runConvert(cmd *cobra.Command, input, to, output string) error {
	target, err := format.ParseFormat(to)
	if err != nil {
		return err
	}
	data, err := readInput(cmd, input)
	if err != nil {
		return err
	}
	from, err := format.Detect(data)
	if err != nil {
		return err
	}
	m, err := format.Decode(data)
	if err != nil {
		return err
	}
	out, err := format.Encode(m, target)
	if err != nil {
		return err
	}
	c.Logger.Debug("Converted", "from", from, "to", target, "nodes", m.Len())
	if err := writeOutput(cmd, output, out); err != nil {
		return err
	}
	if output != "" && output != stdio {
		printSuccess("Converted %s to %s", from, target)
		printFile(output)
	}
	return nil
}
