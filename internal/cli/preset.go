package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/matzehuels/easel/internal/config"
	"github.com/matzehuels/easel/pkg/preset"
	"github.com/matzehuels/easel/pkg/settings"
)

// presetCommand creates the named preset management command.
func (c *CLI) presetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "preset",
		Aliases: []string{"presets"},
		Short:   "Manage named presets",
	}

	cmd.AddCommand(c.presetSaveCommand())
	cmd.AddCommand(c.presetListCommand())
	cmd.AddCommand(c.presetShowCommand())
	cmd.AddCommand(c.presetDeleteCommand())
	cmd.AddCommand(c.presetApplyCommand())
	cmd.AddCommand(c.presetExportCommand())
	cmd.AddCommand(c.presetImportCommand())

	return cmd
}

// withPresets runs fn with an open preset collection.
func (c *CLI) withPresets(ctx context.Context, fn func(config.Config, preset.Collection) error) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	coll, err := c.openPresets(ctx, cfg)
	if err != nil {
		return err
	}
	defer coll.Close()
	return fn(cfg, coll)
}

// presetSaveCommand creates the "preset save" subcommand.
func (c *CLI) presetSaveCommand() *cobra.Command {
	var flags settingsFlags

	cmd := &cobra.Command{
		Use:   "save <name>",
		Short: "Save settings under a name",
		Long: `Save settings under a name. An existing preset with the same name
(compared case-insensitively) is replaced.`,
		Example: `  easel preset save "Contact 8x10" -p 8x10 -r 3:2 -b 0.25
  easel preset save "Tonight" --saved`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := c.calculate(cmd, &flags)
			if err != nil {
				return err
			}
			sp, err := settings.NewSharedPreset(args[0], settings.FromState(m.State()))
			if err != nil {
				return err
			}
			return c.withPresets(cmd.Context(), func(_ config.Config, coll preset.Collection) error {
				saved, err := coll.Save(cmd.Context(), sp)
				if err != nil {
					return err
				}
				printSuccess("Saved preset %s", StyleHighlight.Render(saved.Name))
				printDetail("ID: %s", saved.ID)
				printNextStep("Load it with", fmt.Sprintf("easel preset apply %q", saved.Name))
				return nil
			})
		},
	}

	flags.register(cmd.Flags())
	c.completeSettingsFlags(cmd)
	return cmd
}

// presetListCommand creates the "preset list" subcommand.
func (c *CLI) presetListCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List saved presets",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withPresets(cmd.Context(), func(_ config.Config, coll preset.Collection) error {
				list, err := coll.List(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if asJSON {
					if list == nil {
						list = []settings.SharedPreset{}
					}
					return writeJSON(out, list)
				}
				if len(list) == 0 {
					printInfo("No presets saved")
					return nil
				}
				_, err = fmt.Fprintln(out, renderPresetTable(list))
				return err
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print presets as JSON")
	return cmd
}

// renderPresetTable draws one row per preset.
func renderPresetTable(list []settings.SharedPreset) string {
	rows := make([][]string, len(list))
	for i, sp := range list {
		s := sp.Settings
		orientation := "portrait"
		if s.IsLandscape {
			orientation = "landscape"
		}
		rows[i] = []string{
			sp.Name,
			s.PaperSize,
			s.AspectRatio,
			inches(s.LastValidMinBorder),
			orientation,
			humanize.Time(sp.CreatedAt),
		}
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Name", "Paper", "Ratio", "Border", "Orientation", "Created").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader.Padding(0, 1)
			}
			if col == 0 {
				return lipgloss.NewStyle().Foreground(colorCyan).Padding(0, 1)
			}
			if col == 5 {
				return lipgloss.NewStyle().Foreground(colorDim).Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Render()
}

// presetShowCommand creates the "preset show" subcommand.
func (c *CLI) presetShowCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:               "show <name>",
		Short:             "Show a preset's result and share token",
		ValidArgsFunction: c.completePresetArg,
		Args:              cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withPresets(cmd.Context(), func(cfg config.Config, coll preset.Collection) error {
				sp, err := coll.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				m, err := c.loadMachine(cfg, sp.Settings)
				if err != nil {
					return err
				}
				token, err := settings.EncodeShare(sp)
				if err != nil {
					return err
				}
				snap := m.Snapshot()

				out := cmd.OutOrStdout()
				if asJSON {
					return writeJSON(out, struct {
						settings.SharedPreset
						Token  string     `json:"token"`
						Result calcOutput `json:"result"`
					}{sp, token, newCalcOutput(snap)})
				}

				fmt.Fprintln(out, StyleTitle.Render(sp.Name))
				fmt.Fprintln(out, StyleDim.Render(fmt.Sprintf("%s · created %s", sp.ID, humanize.Time(sp.CreatedAt))))
				fmt.Fprintln(out)
				fmt.Fprint(out, renderResult(snap))
				fmt.Fprintln(out)
				_, err = fmt.Fprintln(out, keyValueLine("Token", token))
				return err
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the preset as JSON")
	return cmd
}

// presetDeleteCommand creates the "preset delete" subcommand.
func (c *CLI) presetDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "delete <name>",
		Aliases:           []string{"rm"},
		Short:             "Delete a preset",
		ValidArgsFunction: c.completePresetArg,
		Args:              cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withPresets(cmd.Context(), func(_ config.Config, coll preset.Collection) error {
				if err := coll.Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				printSuccess("Deleted preset %s", StyleHighlight.Render(args[0]))
				return nil
			})
		},
	}
}

// presetApplyCommand creates the "preset apply" subcommand.
func (c *CLI) presetApplyCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "apply <name>",
		Short:             "Make a preset the saved calculator state",
		ValidArgsFunction: c.completePresetArg,
		Args:              cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withPresets(cmd.Context(), func(cfg config.Config, coll preset.Collection) error {
				sp, err := coll.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if err := c.saveState(cmd.Context(), sp.Settings.Apply(cfg.DefaultState())); err != nil {
					return err
				}
				printSuccess("Applied preset %s", StyleHighlight.Render(sp.Name))
				printNextStep("Open it with", "easel tui")
				return nil
			})
		},
	}
}

// presetExportCommand creates the "preset export" subcommand.
func (c *CLI) presetExportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Export all presets as YAML",
		Long:  `Export all presets as YAML, to a file or to stdout when no file is given.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withPresets(cmd.Context(), func(_ config.Config, coll preset.Collection) error {
				list, err := coll.List(cmd.Context())
				if err != nil {
					return err
				}
				if len(args) == 0 {
					return preset.Export(cmd.OutOrStdout(), list)
				}

				f, err := os.Create(args[0])
				if err != nil {
					return fmt.Errorf("create %s: %w", args[0], err)
				}
				if err := preset.Export(f, list); err != nil {
					f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return fmt.Errorf("write %s: %w", args[0], err)
				}
				printSuccess("Exported %d presets", len(list))
				printFile(args[0])
				return nil
			})
		},
	}
}

// presetImportCommand creates the "preset import" subcommand.
func (c *CLI) presetImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import presets from a YAML file",
		Long: `Import presets from a YAML file written by "easel preset export". Use "-" to
read from stdin. Presets with an existing name are replaced.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("open %s: %w", args[0], err)
				}
				defer f.Close()
				r = f
			}

			list, err := preset.Import(r)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				printInfo("No presets in %s", args[0])
				return nil
			}

			return c.withPresets(cmd.Context(), func(_ config.Config, coll preset.Collection) error {
				prog := newProgress(c.Logger)
				for _, sp := range list {
					if _, err := coll.Save(cmd.Context(), sp); err != nil {
						return fmt.Errorf("import %q: %w", sp.Name, err)
					}
					c.Logger.Debug("imported preset", "name", sp.Name, "id", sp.ID)
				}
				prog.done(fmt.Sprintf("Imported %d presets", len(list)))
				return nil
			})
		},
	}
}
