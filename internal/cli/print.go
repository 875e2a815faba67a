package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mindtree/pkg/format"
	"github.com/matzehuels/mindtree/pkg/mind"
)

// printCommand creates the print command, which writes a map as a tree
// outline.
func (c *CLI) printCommand() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "print [map]",
		Short: "Print a mind map as an outline",
		Long: `Print a mind map as an indented outline.

Collapsed branches are shown with a [+] marker and their children are
omitted unless --all is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := readMap(cmd, args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), format.Outline(m, all))
			return err
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "include collapsed branches")

	return cmd
}

// infoCommand creates the info command, which summarizes a map.
func (c *CLI) infoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info [map]",
		Short: "Show a mind map's metadata and shape",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			f, err := format.Detect(data)
			if err != nil {
				return err
			}
			m, err := format.Decode(data)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), keyValueTable(infoRows(m, f)))
			return err
		},
	}
}

// infoRows lists the label/value pairs shown by info.
func infoRows(m *mind.Mind, f format.Format) [][]string {
	var left, right, collapsed int
	if root := m.Root(); root != nil {
		for _, c := range root.Children() {
			if c.Direction() == mind.Left {
				left++
			} else {
				right++
			}
		}
	}
	m.Walk(func(n *mind.Node) bool {
		if !n.Expanded && !n.IsLeaf() {
			collapsed++
		}
		return true
	})
	return [][]string{
		{"Name", m.Name},
		{"Author", orDash(m.Author)},
		{"Version", m.Version},
		{"Format", string(f)},
		{"Nodes", strconv.Itoa(m.Len())},
		{"Depth", strconv.Itoa(m.Depth())},
		{"Branches", fmt.Sprintf("%d left, %d right", left, right)},
		{"Collapsed", strconv.Itoa(collapsed)},
	}
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}

// readMap reads and decodes a map in any supported format.
func readMap(cmd *cobra.Command, path string) (*mind.Mind, error) {
	data, err := readInput(cmd, path)
	if err != nil {
		return nil, err
	}
	return format.Decode(data)
}
