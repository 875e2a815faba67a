package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mindtree/pkg/editor"
	"github.com/matzehuels/mindtree/pkg/format"
	"github.com/matzehuels/mindtree/pkg/mind"
)

// viewCommand creates the view command, an interactive terminal browser.
func (c *CLI) viewCommand() *cobra.Command {
	var edit bool

	cmd := &cobra.Command{
		Use:   "view [map]",
		Short: "Browse and edit a mind map in the terminal",
		Long: `Browse and edit a mind map in the terminal.

Arrow keys (or hjkl) move the selection the way the rendered map does:
left and right step between parents and children on either side of the
root. Editing keys are only active with --edit or when the configuration
enables editing. Press s to save the map back in its original format.`,
		Example: `  mindtree view ideas.json
  mindtree view ideas.mm --edit`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := stdio
			if len(args) > 0 {
				path = args[0]
			}
			data, err := readInput(cmd, path)
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

			ed, err := c.newViewEditor(m, edit)
			if err != nil {
				return err
			}
			defer ed.Close()

			var save func(*mind.Mind) error
			if path != stdio {
				save = func(m *mind.Mind) error { return format.WriteFile(m, f, path) }
			}

			final, err := tea.NewProgram(NewMapModel(ed, path, f, save), tea.WithAltScreen()).Run()
			if err != nil {
				return err
			}
			if mm, ok := final.(MapModel); ok && mm.Dirty {
				printInfo("Unsaved changes to %s discarded", path)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&edit, "edit", "e", false, "enable editing")
	return cmd
}

func (c *CLI) newViewEditor(m *mind.Mind, edit bool) (*editor.Editor, error) {
	opts, err := c.editorOptions()
	if err != nil {
		return nil, err
	}
	if edit {
		opts.Editable = true
	}
	ed := editor.New(opts)
	ed.Load(m)
	return ed, nil
}
