package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mindtree/pkg/layout"
	"github.com/matzehuels/mindtree/pkg/pipeline"
	"github.com/matzehuels/mindtree/pkg/storage"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for mindtree.

Bash:
  $ source <(mindtree completion bash)

Zsh:
  $ mindtree completion zsh > "${fpath[1]}/_mindtree"

Fish:
  $ mindtree completion fish > ~/.config/fish/completions/mindtree.fish

PowerShell:
  PS> mindtree completion powershell | Out-String | Invoke-Expression

Completions cover commands, flags, and the values of --format, --to, --mode
and --storage.`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
}

// registerCompletions attaches value completions to the flags of every
// command under root.
func registerCompletions(root *cobra.Command) {
	values := map[string]func() []string{
		"format":  pipeline.FormatNames,
		"to":      func() []string { return []string{"node_tree", "node_array", "freemind"} },
		"mode":    func() []string { return []string{string(layout.ModeFull), string(layout.ModeSide)} },
		"storage": func() []string { return []string{storage.BackendFile, storage.BackendMemory, storage.BackendRedis, storage.BackendMongo} },
	}
	var walk func(cmd *cobra.Command)
	walk = func(cmd *cobra.Command) {
		for name, list := range values {
			if cmd.Flags().Lookup(name) == nil {
				continue
			}
			_ = cmd.RegisterFlagCompletionFunc(name, listCompletion(name == "format", list))
		}
		for _, sub := range cmd.Commands() {
			walk(sub)
		}
	}
	walk(root)
}

// listCompletion completes one value from list. For comma-separated flags
// the already typed prefix is kept.
func listCompletion(commaSeparated bool, list func() []string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		prefix := ""
		if commaSeparated {
			if i := strings.LastIndex(toComplete, ","); i >= 0 {
				prefix = toComplete[:i+1]
			}
		}
		var out []string
		for _, v := range list() {
			out = append(out, prefix+v)
		}
		if commaSeparated {
			return out, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	}
}
