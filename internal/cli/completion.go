package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/easel/pkg/preset"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for easel.

Besides commands and flags, the scripts complete --paper and --ratio from the
configured tables and preset names from the preset store.

Bash:
  $ source <(easel completion bash)
  $ easel completion bash > /etc/bash_completion.d/easel

Zsh (with compinit enabled):
  $ easel completion zsh > "${fpath[1]}/_easel"

Fish:
  $ easel completion fish > ~/.config/fish/completions/easel.fish

PowerShell:
  PS> easel completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
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

// completeSettingsFlags registers value completion for the settings flags
// that name table entries or presets.
func (c *CLI) completeSettingsFlags(cmd *cobra.Command) {
	_ = cmd.RegisterFlagCompletionFunc("paper", c.completePapers)
	_ = cmd.RegisterFlagCompletionFunc("ratio", c.completeRatios)
	_ = cmd.RegisterFlagCompletionFunc("preset", c.completePresetFlag)
}

func (c *CLI) completePapers(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	tables, err := cfg.Tables()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	var out []string
	for _, p := range tables.Papers.All() {
		if strings.HasPrefix(p.Value, toComplete) {
			out = append(out, p.Value+"\t"+p.Label)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

func (c *CLI) completeRatios(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	tables, err := cfg.Tables()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	var out []string
	for _, r := range tables.Ratios.All() {
		if strings.HasPrefix(r.Value, toComplete) {
			out = append(out, r.Value+"\t"+r.Label)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

func (c *CLI) completePresetFlag(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return c.presetNames(cmd, toComplete), cobra.ShellCompDirectiveNoFileComp
}

// completePresetArg completes the single preset-name argument.
func (c *CLI) completePresetArg(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return c.presetNames(cmd, toComplete), cobra.ShellCompDirectiveNoFileComp
}

// presetNames lists stored preset names starting with prefix, ignoring case.
// It opens the collection without a spinner so nothing reaches the shell.
func (c *CLI) presetNames(cmd *cobra.Command, prefix string) []string {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := c.loadConfig()
	if err != nil {
		return nil
	}
	coll, err := preset.Open(ctx, cfg.PresetConfig())
	if err != nil {
		return nil
	}
	defer coll.Close()
	list, err := coll.List(ctx)
	if err != nil {
		return nil
	}

	var out []string
	for _, sp := range list {
		if strings.HasPrefix(strings.ToLower(sp.Name), strings.ToLower(prefix)) {
			out = append(out, sp.Name)
		}
	}
	return out
}
