package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/easel/internal/config"
	"github.com/matzehuels/easel/pkg/calculator"
	"github.com/matzehuels/easel/pkg/errors"
	"github.com/matzehuels/easel/pkg/geometry"
	"github.com/matzehuels/easel/pkg/paper"
	"github.com/matzehuels/easel/pkg/settings"
	"github.com/matzehuels/easel/pkg/warnings"
)

// =============================================================================
// Settings Flags
// =============================================================================

// settingsFlags are the calculator inputs shared by calc, share and preset.
// Only flags the user set are applied, on top of a base state.
type settingsFlags struct {
	paper        string
	ratio        string
	paperWidth   string
	paperHeight  string
	ratioWidth   string
	ratioHeight  string
	border       float64
	landscape    bool
	flip         bool
	ignoreBorder bool
	offsetX      float64
	offsetY      float64
	hideReadings bool

	saved  bool
	preset string
	token  string
}

func (f *settingsFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.paper, "paper", "p", "", "paper size (e.g. 8x10, 11x14, custom)")
	fs.StringVarP(&f.ratio, "ratio", "r", "", "aspect ratio (e.g. 3:2, 1:1, even-borders, custom)")
	fs.StringVar(&f.paperWidth, "paper-width", "", "custom paper width in inches")
	fs.StringVar(&f.paperHeight, "paper-height", "", "custom paper height in inches")
	fs.StringVar(&f.ratioWidth, "ratio-width", "", "custom ratio width")
	fs.StringVar(&f.ratioHeight, "ratio-height", "", "custom ratio height")
	fs.Float64VarP(&f.border, "border", "b", 0, "minimum border in inches")
	fs.BoolVarP(&f.landscape, "landscape", "l", false, "turn the paper to landscape")
	fs.BoolVar(&f.flip, "flip", false, "flip the aspect ratio")
	fs.BoolVar(&f.ignoreBorder, "ignore-border", false, "let offsets eat into the minimum border")
	fs.Float64Var(&f.offsetX, "offset-x", 0, "horizontal offset in inches (positive moves right)")
	fs.Float64Var(&f.offsetY, "offset-y", 0, "vertical offset in inches (positive moves up)")
	fs.BoolVar(&f.hideReadings, "no-readings", false, "hide fractional blade readings")

	fs.BoolVar(&f.saved, "saved", false, "start from the saved calculator state")
	fs.StringVar(&f.preset, "preset", "", "start from a named preset")
	fs.StringVar(&f.token, "token", "", "start from a share token")
}

// actions converts the flags the user set into transitions. Selections come
// before orientation so that choosing custom paper cannot undo --landscape.
func (f *settingsFlags) actions(fs *pflag.FlagSet) []calculator.Action {
	var out []calculator.Action
	set := func(field calculator.Field, v any) {
		out = append(out, calculator.SetField{Field: field, Value: v})
	}

	if fs.Changed("paper") {
		out = append(out, calculator.SetPaperSize{Value: f.paper})
	}
	if fs.Changed("ratio") {
		out = append(out, calculator.SetAspectRatio{Value: f.ratio})
	}
	if fs.Changed("paper-width") {
		set(calculator.FieldCustomPaperWidth, f.paperWidth)
	}
	if fs.Changed("paper-height") {
		set(calculator.FieldCustomPaperHeight, f.paperHeight)
	}
	if fs.Changed("ratio-width") {
		set(calculator.FieldCustomAspectWidth, f.ratioWidth)
	}
	if fs.Changed("ratio-height") {
		set(calculator.FieldCustomAspectHeight, f.ratioHeight)
	}
	if fs.Changed("border") {
		set(calculator.FieldMinBorder, f.border)
	}
	if fs.Changed("landscape") {
		set(calculator.FieldIsLandscape, f.landscape)
	}
	if fs.Changed("flip") {
		set(calculator.FieldIsRatioFlipped, f.flip)
	}
	if fs.Changed("ignore-border") {
		set(calculator.FieldIgnoreMinBorder, f.ignoreBorder)
	}
	if fs.Changed("offset-x") || fs.Changed("offset-y") {
		set(calculator.FieldEnableOffset, true)
		set(calculator.FieldHorizontalOffset, f.offsetX)
		set(calculator.FieldVerticalOffset, f.offsetY)
	}
	if fs.Changed("no-readings") {
		set(calculator.FieldShowBladeReadings, !f.hideReadings)
	}
	return out
}

// base returns the settings the flags are applied to: a share token, a
// named preset or the saved state. ok is false when the config defaults
// should be used as they are.
func (c *CLI) base(ctx context.Context, cfg config.Config, f *settingsFlags) (settings.Persistable, bool, error) {
	switch {
	case f.token != "":
		sp, err := settings.DecodeShare(f.token)
		if err != nil {
			return settings.Persistable{}, false, err
		}
		return sp.Settings, true, nil
	case f.preset != "":
		coll, err := c.openPresets(ctx, cfg)
		if err != nil {
			return settings.Persistable{}, false, err
		}
		defer coll.Close()
		sp, err := coll.Get(ctx, f.preset)
		if err != nil {
			return settings.Persistable{}, false, err
		}
		return sp.Settings, true, nil
	case f.saved:
		return c.restoreSettings(ctx, cfg)
	}
	return settings.Persistable{}, false, nil
}

// calculate builds a machine from the flags and returns its final snapshot.
func (c *CLI) calculate(cmd *cobra.Command, f *settingsFlags) (*calculator.Machine, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	base, ok, err := c.base(cmd.Context(), cfg, f)
	if err != nil {
		return nil, err
	}
	m, err := c.newMachine(cfg, cfg.DefaultState())
	if err != nil {
		return nil, err
	}
	if ok {
		if err := m.Dispatch(base.Action()); err != nil {
			return nil, err
		}
	}
	for _, a := range f.actions(cmd.Flags()) {
		if err := m.Dispatch(a); err != nil {
			return nil, err
		}
	}
	if err := checkSelections(m); err != nil {
		return nil, err
	}
	return m, nil
}

// checkSelections rejects paper and ratio values missing from the tables.
// The resolver would fall back silently, which is right for a stored
// document but surprising for a typed flag.
func checkSelections(m *calculator.Machine) error {
	s := m.State()
	r := m.Resolver()
	if _, ok := r.Papers().Lookup(s.PaperSize); !ok {
		return errors.New(errors.ErrCodeInvalidValue, "unknown paper size %q", s.PaperSize)
	}
	if _, ok := r.Ratios().Lookup(s.AspectRatio); !ok {
		return errors.New(errors.ErrCodeInvalidValue, "unknown aspect ratio %q", s.AspectRatio)
	}
	return nil
}

// =============================================================================
// calc
// =============================================================================

// calcOutput is the --json form of a calculation.
type calcOutput struct {
	Settings   settings.Persistable `json:"settings"`
	Dimensions paper.Dimensions     `json:"dimensions"`
	Geometry   geometry.Result      `json:"geometry"`
	Readings   geometry.Readings    `json:"readings"`
	Warnings   []warnings.Warning   `json:"warnings"`
}

func newCalcOutput(snap calculator.Snapshot) calcOutput {
	return calcOutput{
		Settings:   settings.FromState(snap.State),
		Dimensions: snap.Derived.Dimensions,
		Geometry:   snap.Derived.Geometry,
		Readings:   snap.Derived.Geometry.Readings(),
		Warnings:   snap.Derived.Warnings.List(),
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// calcCommand creates the one-shot calculation command.
func (c *CLI) calcCommand() *cobra.Command {
	var (
		flags  settingsFlags
		asJSON bool
		save   bool
	)

	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Calculate blade positions for a print",
		Long: `Calculate where to set the easel blades for a paper size, aspect ratio and minimum border.

Flags are applied on top of the configured defaults, or on top of the saved
state, a named preset or a share token when one is given.`,
		Example: `  easel calc --paper 8x10 --ratio 3:2 --border 0.5
  easel calc -p 11x14 -r 1:1 -b 1 --landscape
  easel calc -p custom --paper-width 9.5 --paper-height 12 --json
  easel calc --saved --offset-x 0.25`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := c.calculate(cmd, &flags)
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
				return writeJSON(out, newCalcOutput(snap))
			}
			_, err = fmt.Fprint(out, renderResult(snap))
			return err
		},
	}

	flags.register(cmd.Flags())
	c.completeSettingsFlags(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	cmd.Flags().BoolVar(&save, "save", false, "store the result as the saved calculator state")

	return cmd
}

// saveState writes s to the state store immediately.
func (c *CLI) saveState(ctx context.Context, s calculator.State) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	st, err := c.openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()
	if err := c.newPersister(st, cfg).Save(ctx, s); err != nil {
		return err
	}
	c.Logger.Debug("saved calculator state", "backend", cfg.Storage.Backend)
	return nil
}
