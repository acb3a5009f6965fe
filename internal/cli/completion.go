package cli

import (
	"io"
	"slices"

	"github.com/spf13/cobra"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for dashgrid. Widget ids complete from
the stored layout.

Bash:
  $ source <(dashgrid completion bash)

Zsh:
  $ dashgrid completion zsh > "${fpath[1]}/_dashgrid"

Fish:
  $ dashgrid completion fish > ~/.config/fish/completions/dashgrid.fish

PowerShell:
  PS> dashgrid completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return genCompletion(cmd.Root(), args[0], cmd.OutOrStdout())
		},
	}
}

func genCompletion(root *cobra.Command, shell string, w io.Writer) error {
	switch shell {
	case "bash":
		return root.GenBashCompletionV2(w, true)
	case "zsh":
		return root.GenZshCompletion(w)
	case "fish":
		return root.GenFishCompletion(w, true)
	case "powershell":
		return root.GenPowerShellCompletionWithDesc(w)
	}
	return usageError("unknown shell %q", shell)
}

// completeWidgetIDs completes widget ids on the selected breakpoint. Up to
// maxArgs ids are completed; zero means any number.
func (c *CLI) completeWidgetIDs(maxArgs int) cobra.CompletionFunc {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]cobra.Completion, cobra.ShellCompDirective) {
		if maxArgs > 0 && len(args) >= maxArgs {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		ed, _, err := c.openEditor(cmd.Context())
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		l, err := ed.Layout(c.breakpoint)
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		var out []cobra.Completion
		for _, w := range l.Widgets {
			if !slices.Contains(args, w.ID) {
				out = append(out, cobra.CompletionWithDesc(w.ID, w.Title))
			}
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	}
}
