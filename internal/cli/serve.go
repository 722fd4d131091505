package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/easel/internal/server"
	"github.com/matzehuels/easel/pkg/preset"
)

// shutdownTimeout bounds how long in-flight requests may take after a signal.
const shutdownTimeout = 30 * time.Second

// serveCommand creates the HTTP API command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		noPresets bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the calculator over HTTP",
		Long: `Serve the calculator as a JSON API under /api/v1: calculations, share tokens
and, unless --no-presets is given, the named preset collection.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}

			var presets preset.Collection
			if !noPresets {
				presets, err = c.openPresets(cmd.Context(), cfg)
				if err != nil {
					return err
				}
				defer presets.Close()
			}

			srv, err := server.New(cfg, presets, c.Logger)
			if err != nil {
				return err
			}

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start() }()

			printInfo("Listening on %s", StyleHighlight.Render(cfg.Server.Addr))
			printDetail("Press Ctrl+C to stop")

			select {
			case err := <-errCh:
				return err
			case <-cmd.Context().Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return err
			}
			return <-errCh
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noPresets, "no-presets", false, "do not mount the preset routes")

	return cmd
}
