package cli

import (
	"github.com/spf13/cobra"
)

// Completion values for enumerated flags.
var (
	classifierValues = []string{"none", "http", "gemini"}
	thresholdValues  = []string{"low", "medium", "high", "very-high"}
	matchModeValues  = []string{"name", "provenance"}
	diagramValues    = []string{diagramTree, diagramPlan}
	formatValues     = []string{"dot", "svg", "pdf", "png"}
)

// completeValues returns a flag completion func offering a fixed list.
func completeValues(values ...string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return values, cobra.ShellCompDirectiveNoFileComp
	}
}

// registerValueCompletions attaches fixed completions to the named flags of
// cmd. Flags the command does not define are skipped.
func registerValueCompletions(cmd *cobra.Command, flags map[string][]string) {
	for name, values := range flags {
		if cmd.Flags().Lookup(name) == nil {
			continue
		}
		_ = cmd.RegisterFlagCompletionFunc(name, completeValues(values...))
	}
}

// completeDocuments limits positional completion to design documents.
func completeDocuments(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return []string{"json"}, cobra.ShellCompDirectiveFilterFileExt
}

// completionCommand prints shell completion scripts. Enumerated flags such
// as --diagram or --threshold complete to their allowed values, and document
// arguments complete to .json files.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for designtree.

To load completions:

Bash:
  $ source <(designtree completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ designtree completion bash > /etc/bash_completion.d/designtree
  # macOS:
  $ designtree completion bash > $(brew --prefix)/etc/bash_completion.d/designtree

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ designtree completion zsh > "${fpath[1]}/_designtree"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ designtree completion fish | source

  # To load completions for each session, execute once:
  $ designtree completion fish > ~/.config/fish/completions/designtree.fish

PowerShell:
  PS> designtree completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> designtree completion powershell > designtree.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(stdout)
			}
			return nil
		},
	}

	return cmd
}
