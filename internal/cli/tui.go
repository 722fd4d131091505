package cli

import (
	"context"
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/easel/internal/config"
	"github.com/matzehuels/easel/pkg/calculator"
	"github.com/matzehuels/easel/pkg/errors"
	"github.com/matzehuels/easel/pkg/paper"
	"github.com/matzehuels/easel/pkg/settings"
)

// Control styles
var (
	controlSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	controlNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	controlDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	controlLabelStyle    = lipgloss.NewStyle().Width(14)
)

// Nudge steps for the arrow keys.
const (
	nudgeBorder = 1.0 / 16
	nudgeSize   = 0.25
)

// =============================================================================
// Controls
// =============================================================================

type controlKind int

const (
	controlChoice controlKind = iota // cycles through a table
	controlToggle                    // boolean field
	controlText                      // text field, dispatched as typed
	controlNumber                    // numeric field, dispatched once complete
)

// control is one editable row of the calculator form.
type control struct {
	label   string
	kind    controlKind
	field   calculator.Field
	visible func(calculator.State) bool
}

func customPaper(s calculator.State) bool { return s.PaperSize == paper.Custom }
func customRatio(s calculator.State) bool { return s.AspectRatio == paper.Custom }
func offsetOn(s calculator.State) bool    { return s.EnableOffset }

var controls = []control{
	{label: "Paper", kind: controlChoice, field: calculator.FieldPaperSize},
	{label: "Paper width", kind: controlText, field: calculator.FieldCustomPaperWidth, visible: customPaper},
	{label: "Paper height", kind: controlText, field: calculator.FieldCustomPaperHeight, visible: customPaper},
	{label: "Ratio", kind: controlChoice, field: calculator.FieldAspectRatio},
	{label: "Ratio width", kind: controlText, field: calculator.FieldCustomAspectWidth, visible: customRatio},
	{label: "Ratio height", kind: controlText, field: calculator.FieldCustomAspectHeight, visible: customRatio},
	{label: "Min border", kind: controlNumber, field: calculator.FieldMinBorder},
	{label: "Landscape", kind: controlToggle, field: calculator.FieldIsLandscape},
	{label: "Flip ratio", kind: controlToggle, field: calculator.FieldIsRatioFlipped},
	{label: "Offset", kind: controlToggle, field: calculator.FieldEnableOffset},
	{label: "Horizontal", kind: controlNumber, field: calculator.FieldHorizontalOffset, visible: offsetOn},
	{label: "Vertical", kind: controlNumber, field: calculator.FieldVerticalOffset, visible: offsetOn},
	{label: "Ignore border", kind: controlToggle, field: calculator.FieldIgnoreMinBorder, visible: offsetOn},
	{label: "Blades", kind: controlToggle, field: calculator.FieldShowBlades},
	{label: "Readings", kind: controlToggle, field: calculator.FieldShowBladeReadings},
}

// visibleControls returns the rows that apply to s.
func visibleControls(s calculator.State) []control {
	out := make([]control, 0, len(controls))
	for _, c := range controls {
		if c.visible == nil || c.visible(s) {
			out = append(out, c)
		}
	}
	return out
}

// =============================================================================
// CalculatorModel - Interactive calculator
// =============================================================================

// CalculatorModel is the bubbletea model for the interactive calculator.
// Every key that changes a value dispatches exactly one transition.
type CalculatorModel struct {
	Machine *calculator.Machine
	Presets []settings.SharedPreset
	Cursor  int
	Editing bool
	Input   string
	Err     string

	// Loaded is the index into Presets last applied with p, or -1.
	Loaded int
}

// NewCalculatorModel creates a calculator model driving m.
func NewCalculatorModel(m *calculator.Machine) CalculatorModel {
	return CalculatorModel{Machine: m, Loaded: -1}
}

func (m CalculatorModel) Init() tea.Cmd {
	return nil
}

func (m CalculatorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	if m.Editing {
		return m.updateEditing(key)
	}

	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(visibleControls(m.Machine.State()))-1 {
			m.Cursor++
		}
	case "left", "h":
		m = m.nudge(-1)
	case "right", "l":
		m = m.nudge(1)
	case " ", "space", "enter":
		m = m.activate()
	case "r":
		m = m.dispatch(calculator.ResetToDefaults{})
		m.Loaded = -1
	case "p":
		m = m.loadNextPreset()
	}
	return m, nil
}

func (m CalculatorModel) updateEditing(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEnter, tea.KeyEsc:
		m.Editing = false
		m.Input = ""
		return m, nil
	case tea.KeyBackspace:
		if r := []rune(m.Input); len(r) > 0 {
			m.Input = string(r[:len(r)-1])
			m = m.commitInput()
		}
		return m, nil
	case tea.KeyRunes:
		for _, r := range key.Runes {
			if strings.ContainsRune("0123456789.+-", r) {
				m.Input += string(r)
			}
		}
		m = m.commitInput()
	}
	return m, nil
}

// current returns the control under the cursor.
func (m CalculatorModel) current() (control, bool) {
	visible := visibleControls(m.Machine.State())
	if m.Cursor < 0 || m.Cursor >= len(visible) {
		return control{}, false
	}
	return visible[m.Cursor], true
}

// dispatch applies a and keeps the cursor on a visible row.
func (m CalculatorModel) dispatch(a calculator.Action) CalculatorModel {
	m.Err = ""
	if err := m.Machine.Dispatch(a); err != nil {
		m.Err = errors.UserMessage(err)
	}
	if n := len(visibleControls(m.Machine.State())); m.Cursor >= n {
		m.Cursor = n - 1
	}
	return m
}

// nudge cycles a choice, flips a toggle or steps a number by one notch.
func (m CalculatorModel) nudge(dir int) CalculatorModel {
	c, ok := m.current()
	if !ok {
		return m
	}
	s := m.Machine.State()
	v, _ := s.Get(c.field)

	switch c.kind {
	case controlChoice:
		return m.dispatch(m.cycle(c.field, v.(string), dir))
	case controlToggle:
		return m.dispatch(calculator.SetField{Field: c.field, Value: !v.(bool)})
	case controlNumber:
		next := v.(float64) + float64(dir)*nudgeBorder
		if c.field == calculator.FieldMinBorder {
			next = math.Max(0, next)
		}
		return m.dispatch(calculator.SetField{Field: c.field, Value: next})
	case controlText:
		cur, ok := calculator.ParseNumber(v.(string))
		if !ok {
			return m
		}
		next := cur + float64(dir)*nudgeSize
		if next <= 0 {
			return m
		}
		return m.dispatch(calculator.SetField{Field: c.field, Value: calculator.FormatNumber(next)})
	}
	return m
}

// cycle returns the selection after value in the paper or ratio table.
func (m CalculatorModel) cycle(field calculator.Field, value string, dir int) calculator.Action {
	r := m.Machine.Resolver()
	var values []string
	if field == calculator.FieldPaperSize {
		for _, p := range r.Papers().All() {
			values = append(values, p.Value)
		}
	} else {
		for _, a := range r.Ratios().All() {
			values = append(values, a.Value)
		}
	}

	next := 0
	for i, v := range values {
		if v == value {
			next = (i + dir + len(values)) % len(values)
			break
		}
	}

	if field == calculator.FieldPaperSize {
		return calculator.SetPaperSize{Value: values[next]}
	}
	return calculator.SetAspectRatio{Value: values[next]}
}

// loadNextPreset applies the preset after the last loaded one.
func (m CalculatorModel) loadNextPreset() CalculatorModel {
	if len(m.Presets) == 0 {
		m.Err = "no saved presets"
		return m
	}
	next := (m.Loaded + 1) % len(m.Presets)
	m = m.dispatch(m.Presets[next].Settings.Action())
	if m.Err == "" {
		m.Loaded = next
	}
	return m
}

// activate toggles, cycles or starts editing the current row.
func (m CalculatorModel) activate() CalculatorModel {
	c, ok := m.current()
	if !ok {
		return m
	}
	switch c.kind {
	case controlChoice, controlToggle:
		return m.nudge(1)
	}

	v, _ := m.Machine.State().Get(c.field)
	m.Editing = true
	switch x := v.(type) {
	case string:
		m.Input = x
	case float64:
		m.Input = calculator.FormatNumber(x)
	}
	return m
}

// commitInput dispatches the edit buffer. Text fields take every keystroke;
// numeric fields only take complete numbers, so "1." keeps the last value.
func (m CalculatorModel) commitInput() CalculatorModel {
	c, ok := m.current()
	if !ok {
		return m
	}
	if c.kind == controlText {
		return m.dispatch(calculator.SetField{Field: c.field, Value: m.Input})
	}
	if v, ok := calculator.ParseNumber(m.Input); ok {
		return m.dispatch(calculator.SetField{Field: c.field, Value: v})
	}
	return m
}

func (m CalculatorModel) View() string {
	var b strings.Builder
	s := m.Machine.State()

	b.WriteString(StyleTitle.Render("Easel"))
	b.WriteString("\n")
	if m.Editing {
		b.WriteString(controlDimStyle.Render("type a value  ⏎ done"))
	} else {
		b.WriteString(controlDimStyle.Render("↑/↓ move  ←/→ change  ⏎ edit  p preset  r reset  q quit"))
	}
	if m.Loaded >= 0 && m.Loaded < len(m.Presets) {
		b.WriteString("\n" + controlDimStyle.Render("preset: "+m.Presets[m.Loaded].Name))
	}
	b.WriteString("\n\n")

	for i, c := range visibleControls(s) {
		selected := i == m.Cursor
		cursor := "  "
		style := controlNormalStyle
		if selected {
			cursor = "▸ "
			style = controlSelectedStyle
		}
		value := m.controlValue(c, s, selected)
		b.WriteString(cursor + controlLabelStyle.Render(c.label) + style.Render(value) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(renderResult(m.Machine.Snapshot()))
	if m.Err != "" {
		b.WriteString(styleIconError.Render(iconError) + " " + m.Err + "\n")
	}
	return b.String()
}

func (m CalculatorModel) controlValue(c control, s calculator.State, selected bool) string {
	if selected && m.Editing {
		return m.Input + "▏"
	}
	v, _ := s.Get(c.field)
	switch c.kind {
	case controlChoice:
		return "‹ " + m.choiceLabel(c.field, v.(string)) + " ›"
	case controlToggle:
		if v.(bool) {
			return "[x]"
		}
		return "[ ]"
	case controlNumber:
		return calculator.FormatNumber(v.(float64))
	}
	return fmt.Sprint(v)
}

func (m CalculatorModel) choiceLabel(field calculator.Field, value string) string {
	r := m.Machine.Resolver()
	if field == calculator.FieldPaperSize {
		if p, ok := r.Papers().Lookup(value); ok {
			return p.Label
		}
	} else if a, ok := r.Ratios().Lookup(value); ok {
		return a.Label
	}
	return value
}

// =============================================================================
// tui command
// =============================================================================

// tuiPresets lists the saved presets for the p key. An unreachable
// collection only disables the key.
func (c *CLI) tuiPresets(ctx context.Context, cfg config.Config) []settings.SharedPreset {
	coll, err := c.openPresets(ctx, cfg)
	if err != nil {
		c.Logger.Warn("presets unavailable", "err", err)
		return nil
	}
	defer coll.Close()
	list, err := coll.List(ctx)
	if err != nil {
		c.Logger.Warn("presets unavailable", "err", err)
		return nil
	}
	return list
}

// tuiCommand creates the interactive calculator command.
func (c *CLI) tuiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the interactive calculator",
		Long: `Run the interactive calculator. It starts from the saved state and saves
every change shortly after you make it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			st, err := c.openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			persister := c.newPersister(st, cfg)
			machine, err := c.newMachine(cfg, cfg.DefaultState())
			if err != nil {
				return err
			}
			if saved, ok := persister.Restore(ctx); ok {
				if err := machine.Dispatch(saved.Action()); err != nil {
					c.Logger.Warn("ignoring saved state", "err", err)
				}
			}

			model := NewCalculatorModel(machine)
			model.Presets = c.tuiPresets(ctx, cfg)

			detach := persister.Attach(machine)
			_, runErr := tea.NewProgram(model, tea.WithContext(ctx)).Run()

			detach()
			persister.Flush()
			persister.Close()
			if runErr != nil && ctx.Err() != nil {
				return ctx.Err()
			}
			return runErr
		},
	}
}
