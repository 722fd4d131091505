package calculator

import (
	"io"
	"math"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/easel/pkg/errors"
	"github.com/matzehuels/easel/pkg/observability"
	"github.com/matzehuels/easel/pkg/paper"
	"github.com/matzehuels/easel/pkg/warnings"
)

const tol = 1e-6

func approx(a, b float64) bool { return math.Abs(a-b) < tol }

func newTestMachine(t *testing.T, opts ...Option) *Machine {
	t.Helper()
	opts = append([]Option{WithLogger(log.New(io.Discard))}, opts...)
	return New(opts...)
}

func mustDispatch(t *testing.T, m *Machine, a Action) {
	t.Helper()
	if err := m.Dispatch(a); err != nil {
		t.Fatalf("Dispatch(%s): %v", a.Name(), err)
	}
}

func TestDefaultGeometry(t *testing.T) {
	m := newTestMachine(t)
	g := m.Geometry()

	if !approx(g.Print.Width, 7) || !approx(g.Print.Height, 14.0/3) {
		t.Fatalf("Print = %v, want 7x4.667", g.Print)
	}
	if !approx(g.Blades.Left, 0.5) || !approx(g.Blades.Right, 0.5) {
		t.Errorf("left/right = %v/%v", g.Blades.Left, g.Blades.Right)
	}
	if !approx(g.Blades.Top, (10-14.0/3)/2) {
		t.Errorf("top = %v", g.Blades.Top)
	}
	if !m.Warnings().Empty() {
		t.Errorf("unexpected warnings: %+v", m.Warnings().Active())
	}
}

func TestMinBorderSubstitution(t *testing.T) {
	tests := []struct {
		name   string
		border float64
		want   string
	}{
		{"negative", -1, warnings.MsgBorderNegative},
		{"half of short side", 4, warnings.MsgBorderTooLarge},
		{"too large", 5, warnings.MsgBorderTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMachine(t)
			mustDispatch(t, m, SetField{Field: FieldMinBorder, Value: 0.75})
			mustDispatch(t, m, SetField{Field: FieldMinBorder, Value: tt.border})

			w := m.Warnings().MinBorder
			if w == nil || *w != tt.want {
				t.Fatalf("min-border warning = %v, want %q", w, tt.want)
			}
			if got := m.State().LastValidMinBorder; got != 0.75 {
				t.Errorf("LastValidMinBorder = %v, want 0.75", got)
			}
			if got := m.Geometry().EffectiveBorder; got != 0.75 {
				t.Errorf("EffectiveBorder = %v, want 0.75", got)
			}
			if got := m.State().MinBorder; got != tt.border {
				t.Errorf("MinBorder = %v, typed value should be kept", got)
			}
		})
	}
}

func TestLastValidBorderFollowsPaper(t *testing.T) {
	tests := []struct {
		name    string
		actions []Action
		want    float64
	}{
		{
			name: "smaller standard paper",
			actions: []Action{
				SetField{Field: FieldMinBorder, Value: 3.0},
				SetPaperSize{Value: "4x5"},
			},
			want: 0.5,
		},
		{
			name: "tiny custom paper",
			actions: []Action{
				SetPaperSize{Value: paper.Custom},
				SetField{Field: FieldCustomPaperWidth, Value: "0.75"},
				SetField{Field: FieldCustomPaperHeight, Value: "1"},
			},
			want: 0.3125,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMachine(t)
			for _, a := range tt.actions {
				mustDispatch(t, m, a)
			}

			if got := m.State().LastValidMinBorder; got != tt.want {
				t.Errorf("LastValidMinBorder = %v, want %v", got, tt.want)
			}
			g := m.Geometry()
			if g.Degenerate || g.Print.Width <= 0 || g.Print.Height <= 0 {
				t.Errorf("print = %v (degenerate %v), want a printable area", g.Print, g.Degenerate)
			}
			if w := m.Warnings().MinBorder; w == nil || *w != warnings.MsgBorderTooLarge {
				t.Errorf("min-border warning = %v, want %q", w, warnings.MsgBorderTooLarge)
			}
		})
	}
}

func TestIgnoreMinBorderSilencesWarning(t *testing.T) {
	m := newTestMachine(t)
	mustDispatch(t, m, BatchUpdate{Fields: map[Field]any{
		FieldMinBorder:       -2.0,
		FieldIgnoreMinBorder: true,
	}})
	if w := m.Warnings().MinBorder; w != nil {
		t.Errorf("min-border warning = %q, want none", *w)
	}
	if got := m.Geometry().EffectiveBorder; got != 0 {
		t.Errorf("EffectiveBorder = %v, want 0", got)
	}
}

func TestLandscapeInvolution(t *testing.T) {
	for _, p := range paper.DefaultPapers().All() {
		if p.Value == paper.Custom {
			continue
		}
		m := newTestMachine(t)
		mustDispatch(t, m, SetPaperSize{Value: p.Value})
		before := m.Dimensions().Paper

		mustDispatch(t, m, SetField{Field: FieldIsLandscape, Value: true})
		if got := m.Dimensions().Paper; got != before.Swap() {
			t.Errorf("%s landscape = %v, want %v", p.Value, got, before.Swap())
		}
		mustDispatch(t, m, SetField{Field: FieldIsLandscape, Value: false})
		if got := m.Dimensions().Paper; got != before {
			t.Errorf("%s after two toggles = %v, want %v", p.Value, got, before)
		}
	}
}

func TestEvenBordersMatchesPaper(t *testing.T) {
	for _, r := range paper.DefaultRatios().All() {
		for _, landscape := range []bool{false, true} {
			m := newTestMachine(t)
			mustDispatch(t, m, BatchUpdate{Fields: map[Field]any{
				FieldAspectRatio:    r.Value,
				FieldIsRatioFlipped: true,
				FieldIsLandscape:    landscape,
			}})
			mustDispatch(t, m, SetAspectRatio{Value: paper.EvenBorders})

			d := m.Dimensions()
			if d.Ratio != d.Paper {
				t.Errorf("from %s (landscape=%v): ratio %v, paper %v", r.Value, landscape, d.Ratio, d.Paper)
			}
		}
	}
}

func TestCustomPaperAdvisory(t *testing.T) {
	m := newTestMachine(t)
	mustDispatch(t, m, SetPaperSize{Value: paper.Custom})
	mustDispatch(t, m, BatchUpdate{Fields: map[Field]any{
		FieldCustomPaperWidth:  "30",
		FieldCustomPaperHeight: "40",
	}})

	if got := m.Dimensions().Paper; got != (paper.Size{Width: 30, Height: 40}) {
		t.Fatalf("paper = %v, want 30x40", got)
	}
	if m.Warnings().PaperSize == nil {
		t.Error("expected paper-size advisory")
	}
	g := m.Geometry()
	if g.Degenerate || !g.Print.Valid() {
		t.Errorf("geometry should still be valid: %+v", g)
	}
}

func TestOffsetClamp(t *testing.T) {
	m := newTestMachine(t)
	mustDispatch(t, m, BatchUpdate{Fields: map[Field]any{
		FieldEnableOffset:     true,
		FieldHorizontalOffset: 10,
	}})

	g := m.Geometry()
	if !g.OffsetClamped || m.Warnings().Offset == nil {
		t.Fatalf("expected clamped offset with warning, got %+v", g)
	}
	if !approx(g.Offset.X, 0.5) {
		t.Errorf("Offset.X = %v, want 0.5", g.Offset.X)
	}
	if !approx(g.Blades.Left, 1) || !approx(g.Blades.Right, 0) {
		t.Errorf("left/right = %v/%v, want 1/0", g.Blades.Left, g.Blades.Right)
	}
	if got := m.State().HorizontalOffset; got != 10 {
		t.Errorf("HorizontalOffset = %v, requested value should be kept", got)
	}
}

func TestCustomTextShadows(t *testing.T) {
	tests := []struct {
		text string
		want float64
	}{
		{"12", 12},
		{"12.5", 12.5},
		{".5", 0.5},
		{"1.", 8},
		{"-", 8},
		{"", 8},
		{"0", 8},
		{"-3", 8},
		{"130", 8},
		{"abc", 8},
	}
	for _, tt := range tests {
		m := newTestMachine(t)
		mustDispatch(t, m, SetField{Field: FieldCustomPaperWidth, Value: tt.text})
		s := m.State()
		if s.LastValidCustomPaperWidth != tt.want {
			t.Errorf("%q: shadow = %v, want %v", tt.text, s.LastValidCustomPaperWidth, tt.want)
		}
		if s.CustomPaperWidth != tt.text {
			t.Errorf("%q: text = %q, want it kept verbatim", tt.text, s.CustomPaperWidth)
		}
	}
}

func TestRejectedActionsLeaveStateUntouched(t *testing.T) {
	tests := []struct {
		name   string
		action Action
		code   errors.Code
	}{
		{"unknown field", SetField{Field: "paper_colour", Value: "white"}, errors.ErrCodeInvalidField},
		{"wrong type", SetField{Field: FieldMinBorder, Value: "0.5"}, errors.ErrCodeInvalidValue},
		{"bool for string", SetField{Field: FieldPaperSize, Value: true}, errors.ErrCodeInvalidValue},
		{"not finite", SetField{Field: FieldVerticalOffset, Value: math.Inf(1)}, errors.ErrCodeInvalidValue},
		{"batch with one bad field", BatchUpdate{Fields: map[Field]any{
			FieldMinBorder:   1.0,
			FieldIsLandscape: "yes",
		}}, errors.ErrCodeInvalidValue},
		{"zero scale", SetImagePlacement{X: 1, Y: 1, Scale: 0}, errors.ErrCodeInvalidValue},
		{"nil", nil, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMachine(t)
			before := m.State()
			err := m.Dispatch(tt.action)
			if !errors.Is(err, tt.code) {
				t.Fatalf("Dispatch() error = %v, want code %s", err, tt.code)
			}
			if m.State() != before {
				t.Errorf("state changed after rejected action")
			}
		})
	}
}

func TestSetPaperSizeResetsOrientationForCustom(t *testing.T) {
	m := newTestMachine(t)
	mustDispatch(t, m, BatchUpdate{Fields: map[Field]any{
		FieldIsLandscape:    true,
		FieldIsRatioFlipped: true,
	}})

	mustDispatch(t, m, SetPaperSize{Value: "11x14"})
	if s := m.State(); !s.IsLandscape || !s.IsRatioFlipped {
		t.Errorf("standard paper should keep orientation: %+v", s)
	}

	mustDispatch(t, m, SetPaperSize{Value: paper.Custom})
	if s := m.State(); s.IsLandscape || s.IsRatioFlipped {
		t.Errorf("custom paper should reset orientation: %+v", s)
	}
}

func TestSetAspectRatioResetsFlip(t *testing.T) {
	m := newTestMachine(t)
	mustDispatch(t, m, SetField{Field: FieldIsRatioFlipped, Value: true})
	mustDispatch(t, m, SetAspectRatio{Value: "4:3"})
	if m.State().IsRatioFlipped {
		t.Error("IsRatioFlipped should reset")
	}
	if got := m.Dimensions().Ratio; got != (paper.Size{Width: 4, Height: 3}) {
		t.Errorf("ratio = %v, want 4x3", got)
	}
}

func TestResetToDefaults(t *testing.T) {
	m := newTestMachine(t)
	mustDispatch(t, m, BatchUpdate{Fields: map[Field]any{
		FieldPaperSize:    "16x20",
		FieldMinBorder:    1.25,
		FieldShowBlades:   false,
		FieldEnableOffset: true,
	}})
	mustDispatch(t, m, ResetToDefaults{})
	if m.State() != DefaultState() {
		t.Errorf("state = %+v, want defaults", m.State())
	}
}

func TestInitialStateRepairsShadows(t *testing.T) {
	s := DefaultState()
	s.PaperSize = paper.Custom
	s.CustomPaperWidth = "oops"
	s.LastValidCustomPaperWidth = -3
	s.LastValidMinBorder = -1

	m := newTestMachine(t, WithInitialState(s))
	got := m.State()
	if got.LastValidCustomPaperWidth != 8 {
		t.Errorf("LastValidCustomPaperWidth = %v, want 8", got.LastValidCustomPaperWidth)
	}
	if got.LastValidMinBorder != 0.5 {
		t.Errorf("LastValidMinBorder = %v, want 0.5", got.LastValidMinBorder)
	}
	if got := m.Dimensions().Paper; got != (paper.Size{Width: 8, Height: 10}) {
		t.Errorf("paper = %v, want 8x10", got)
	}
}

func TestSubscribe(t *testing.T) {
	m := newTestMachine(t)
	var got []Snapshot
	unsubscribe := m.Subscribe(func(s Snapshot) { got = append(got, s) })

	mustDispatch(t, m, SetPaperSize{Value: "5x7"})
	_ = m.Dispatch(SetField{Field: "nope", Value: 1})
	unsubscribe()
	mustDispatch(t, m, SetPaperSize{Value: "4x5"})

	if len(got) != 1 {
		t.Fatalf("notifications = %d, want 1", len(got))
	}
	if got[0].State.PaperSize != "5x7" || got[0].Derived.Dimensions.Paper != (paper.Size{Width: 5, Height: 7}) {
		t.Errorf("snapshot = %+v", got[0])
	}
}

type memoHooks struct {
	observability.NoopCalculatorHooks
	hits, misses int
	actions      []string
}

func (h *memoHooks) OnMemo(hit bool) {
	if hit {
		h.hits++
	} else {
		h.misses++
	}
}

func (h *memoHooks) OnTransition(action string, _ time.Duration, _ error) {
	h.actions = append(h.actions, action)
}

func TestDerivationIsMemoized(t *testing.T) {
	hooks := &memoHooks{}
	observability.SetCalculatorHooks(hooks)
	t.Cleanup(observability.Reset)

	m := newTestMachine(t)
	mustDispatch(t, m, SetActivePanel{Panel: "borders"})
	mustDispatch(t, m, SetField{Field: FieldShowBlades, Value: false})
	mustDispatch(t, m, SetImagePlacement{X: 3, Y: 4, Scale: 2})
	mustDispatch(t, m, SetField{Field: FieldMinBorder, Value: 0.25})

	if hooks.misses != 2 || hooks.hits != 3 {
		t.Errorf("misses/hits = %d/%d, want 2/3", hooks.misses, hooks.hits)
	}
	want := []string{ActionSetActivePanel, ActionSetField, ActionSetImagePlacement, ActionSetField}
	if len(hooks.actions) != len(want) {
		t.Fatalf("actions = %v, want %v", hooks.actions, want)
	}
	for i := range want {
		if hooks.actions[i] != want[i] {
			t.Errorf("actions[%d] = %s, want %s", i, hooks.actions[i], want[i])
		}
	}
}
