package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/easel/pkg/store"
)

// stateCommand creates the saved-state management command.
func (c *CLI) stateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Manage the saved calculator state",
	}

	cmd.AddCommand(c.stateShowCommand())
	cmd.AddCommand(c.stateClearCommand())
	cmd.AddCommand(c.statePathCommand())

	return cmd
}

// stateShowCommand creates the "state show" subcommand.
func (c *CLI) stateShowCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the result for the saved state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			saved, ok, err := c.restoreSettings(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			m, err := c.newMachine(cfg, cfg.DefaultState())
			if err != nil {
				return err
			}
			if ok {
				if err := m.Dispatch(saved.Action()); err != nil {
					return err
				}
			}
			snap := m.Snapshot()
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), newCalcOutput(snap))
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), renderResult(snap))
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}

// stateClearCommand creates the "state clear" subcommand.
func (c *CLI) stateClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Forget the saved state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			st, err := c.openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			if _, found, err := st.Load(cmd.Context(), store.StateKey); err == nil && !found {
				printInfo("No saved state")
				return nil
			}
			if err := st.Delete(cmd.Context(), store.StateKey); err != nil {
				return err
			}
			printSuccess("Cleared saved state")
			printDetail("Backend: %s", cfg.Storage.Backend)
			return nil
		},
	}
}

// statePathCommand creates the "state path" subcommand.
func (c *CLI) statePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where the saved state lives",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			st, err := c.openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			switch s := st.(type) {
			case *store.FileStore:
				_, err = fmt.Fprintln(cmd.OutOrStdout(), s.Path(store.StateKey))
			case *store.RedisStore:
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "redis://%s/%d %s%s\n", cfg.Storage.RedisAddr, cfg.Storage.RedisDB, store.DefaultRedisPrefix, store.StateKey)
			default:
				printInfo("State is not persisted (backend %q)", cfg.Storage.Backend)
			}
			return err
		},
	}
}
