package cli

import (
	"github.com/spf13/cobra"
)

// completionCommand creates the "completion" command, which prints a shell
// completion script for depviz.
func (c *CLI) completionCommand() *cobra.Command {
	var noDesc bool

	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Completion prints a completion script for the given shell.

Besides subcommands and flag names, the script completes flag values:
  --mode           remote, test
  --format         png, svg, json, dot (also on "depviz render")
  --index-format   structured, simple
  --repo           file names, for test-mode index files
  render           JSON graph files written with --format json

Load it for the current session:
  bash:        source <(depviz completion bash)
  zsh:         source <(depviz completion zsh)
  fish:        depviz completion fish | source
  powershell:  depviz completion powershell | Out-String | Invoke-Expression

To install it permanently, write the output to your shell's completion
directory, for example ~/.config/fish/completions/depviz.fish.`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			root := cmd.Root()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(out, !noDesc)
			case "zsh":
				if noDesc {
					return root.GenZshCompletionNoDesc(out)
				}
				return root.GenZshCompletion(out)
			case "fish":
				return root.GenFishCompletion(out, !noDesc)
			case "powershell":
				if noDesc {
					return root.GenPowerShellCompletion(out)
				}
				return root.GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noDesc, "no-descriptions", false, "omit flag and command descriptions from completions")

	return cmd
}
