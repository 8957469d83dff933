package cli

import (
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/treemap/pkg/pipeline"
)

// completionCommand prints a completion script. Besides subcommands the
// scripts complete render's --format, --style and --expand values.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for treemap.

To load completions:

Bash:
  $ source <(treemap completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ treemap completion bash > /etc/bash_completion.d/treemap
  # macOS:
  $ treemap completion bash > $(brew --prefix)/etc/bash_completion.d/treemap

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ treemap completion zsh > "${fpath[1]}/_treemap"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ treemap completion fish | source

  # To load completions for each session, execute once:
  $ treemap completion fish > ~/.config/fish/completions/treemap.fish

PowerShell:
  PS> treemap completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> treemap completion powershell > treemap.ps1
  # and source this file from your PowerShell profile.
`,
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

	return cmd
}

// registerRenderCompletions wires value completion into render's flags.
func registerRenderCompletions(cmd *cobra.Command) {
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)
	_ = cmd.RegisterFlagCompletionFunc("style", fixedCompletion(sortedKeys(pipeline.ValidStyles)...))
	_ = cmd.RegisterFlagCompletionFunc("expand", fixedCompletion("all", "none", "1", "2", "3"))
}

// completeFormats completes the last entry of a comma-separated format list,
// skipping formats already named.
func completeFormats(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	done, _, _ := cutLast(toComplete, ",")
	var picked []string
	if done != "" {
		picked = strings.Split(done, ",")
	}
	var out []string
	for _, f := range sortedKeys(pipeline.ValidFormats) {
		if slices.Contains(picked, f) {
			continue
		}
		if done == "" {
			out = append(out, f)
		} else {
			out = append(out, done+","+f)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
}

func fixedCompletion(values ...string) cobra.CompletionFunc {
	return func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return values, cobra.ShellCompDirectiveNoFileComp
	}
}

// cutLast splits s around the last sep.
func cutLast(s, sep string) (before, after string, found bool) {
	i := strings.LastIndex(s, sep)
	if i < 0 {
		return "", s, false
	}
	return s[:i], s[i+len(sep):], true
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
