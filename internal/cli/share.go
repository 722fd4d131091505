package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/matzehuels/easel/pkg/settings"
)

// shareCommand creates the share token command.
func (c *CLI) shareCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "share",
		Short: "Encode and decode share tokens",
		Long: `Share tokens carry a complete set of calculator settings in a single URL-safe
string. Anyone with the token can reproduce the same blade positions.`,
	}

	cmd.AddCommand(c.shareEncodeCommand())
	cmd.AddCommand(c.shareDecodeCommand())

	return cmd
}

// shareEncodeCommand creates the "share encode" subcommand.
func (c *CLI) shareEncodeCommand() *cobra.Command {
	var (
		flags settingsFlags
		name  string
	)

	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Create a share token from settings",
		Example: `  easel share encode --name "Portfolio 11x14" -p 11x14 -r 1:1 -b 1
  easel share encode --saved`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := c.calculate(cmd, &flags)
			if err != nil {
				return err
			}
			sp, err := settings.NewSharedPreset(name, settings.FromState(m.State()))
			if err != nil {
				return err
			}
			token, err := settings.EncodeShare(sp)
			if err != nil {
				return err
			}
			c.Logger.Debug("encoded share token", "id", sp.ID, "bytes", len(token))
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}

	flags.register(cmd.Flags())
	c.completeSettingsFlags(cmd)
	cmd.Flags().StringVarP(&name, "name", "n", "Shared settings", "name carried in the token")

	return cmd
}

// shareDecodeCommand creates the "share decode" subcommand.
func (c *CLI) shareDecodeCommand() *cobra.Command {
	var (
		asJSON bool
		save   bool
	)

	cmd := &cobra.Command{
		Use:   "decode <token>",
		Short: "Show the settings carried by a share token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sp, err := settings.DecodeShare(args[0])
			if err != nil {
				return err
			}
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			m, err := c.loadMachine(cfg, sp.Settings)
			if err != nil {
				return err
			}
			snap := m.Snapshot()

			if save {
				if err := c.saveState(cmd.Context(), snap.State); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, struct {
					settings.SharedPreset
					Result calcOutput `json:"result"`
				}{sp, newCalcOutput(snap)})
			}

			fmt.Fprintln(out, StyleTitle.Render(sp.Name))
			fmt.Fprintln(out, StyleDim.Render(fmt.Sprintf("%s · shared %s", sp.ID, humanize.Time(sp.CreatedAt))))
			fmt.Fprintln(out)
			_, err = fmt.Fprint(out, renderResult(snap))
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the preset and result as JSON")
	cmd.Flags().BoolVar(&save, "save", false, "store the settings as the saved calculator state")

	return cmd
}
