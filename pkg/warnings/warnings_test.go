package warnings

import (
	"strings"
	"testing"

	"github.com/matzehuels/easel/pkg/geometry"
	"github.com/matzehuels/easel/pkg/paper"
)

var paper8x10 = paper.Size{Width: 8, Height: 10}

func TestMinBorder(t *testing.T) {
	tests := []struct {
		name   string
		border float64
		ignore bool
		want   string
	}{
		{"valid", 0.5, false, ""},
		{"zero", 0, false, ""},
		{"negative", -0.25, false, MsgBorderNegative},
		{"exactly half", 4, false, MsgBorderTooLarge},
		{"too large", 5, false, MsgBorderTooLarge},
		{"ignored", 5, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MinBorder(tt.border, paper8x10, tt.ignore)
			if tt.want == "" {
				if got != nil {
					t.Errorf("MinBorder() = %q, want nil", *got)
				}
				return
			}
			if got == nil || *got != tt.want {
				t.Errorf("MinBorder() = %v, want %q", got, tt.want)
			}
		})
	}
}

func TestPaperSize(t *testing.T) {
	easels := paper.DefaultEasels()

	if got := PaperSize(true, paper.Size{Width: 30, Height: 40}, easels); got == nil || !strings.Contains(*got, "20x24") {
		t.Errorf("30x40 custom: got %v, want advisory naming 20x24", got)
	}
	if got := PaperSize(true, paper.Size{Width: 24, Height: 20}, easels); got != nil {
		t.Errorf("24x20 custom fits the largest easel, got %q", *got)
	}
	if got := PaperSize(false, paper.Size{Width: 30, Height: 40}, easels); got != nil {
		t.Errorf("table paper should never warn, got %q", *got)
	}
	if got := PaperSize(true, paper.Size{Width: 30, Height: 40}, paper.EaselTable{}); got != nil {
		t.Errorf("no easels means no advisory, got %q", *got)
	}
}

func TestOffsetAndBlade(t *testing.T) {
	if Offset(geometry.Result{}) != nil {
		t.Error("unclamped offset should not warn")
	}
	if got := Offset(geometry.Result{OffsetClamped: true}); got == nil || *got != MsgOffsetClamped {
		t.Errorf("Offset() = %v", got)
	}

	if Blade(geometry.Result{}) != nil {
		t.Error("no search should not warn")
	}
	got := Blade(geometry.Result{SearchUsed: true, EffectiveBorder: 0.175})
	if got == nil || !strings.Contains(*got, "0.175") {
		t.Errorf("Blade(used) = %v, want effective border named", got)
	}
	got = Blade(geometry.Result{SearchUsed: true, SearchExhausted: true, EffectiveBorder: 0.03})
	if got == nil || !strings.Contains(*got, "best effort") {
		t.Errorf("Blade(exhausted) = %v", got)
	}
}

func TestEvaluateOneSlotPerCategory(t *testing.T) {
	res := geometry.Solve(geometry.Input{
		Paper: paper.Size{Width: 30, Height: 40}, Ratio: paper.Size{Width: 3, Height: 2},
		MinBorder: 0.5, EnableOffset: true, HorizontalOffset: 100,
	}, geometry.DefaultOptions())

	s := Evaluate(Input{
		MinBorder:     -1,
		Paper:         paper.Size{Width: 30, Height: 40},
		IsCustomPaper: true,
		Result:        res,
	}, paper.DefaultEasels())

	list := s.List()
	if len(list) != len(Categories) {
		t.Fatalf("List() has %d entries, want %d", len(list), len(Categories))
	}
	for _, c := range []Category{CategoryMinBorder, CategoryPaperSize, CategoryOffset} {
		if s.Get(c) == nil {
			t.Errorf("%s: expected message", c)
		}
	}
	if s.Blade != nil {
		t.Errorf("blade: unexpected %q", *s.Blade)
	}
	if len(s.Active()) != 3 {
		t.Errorf("Active() = %d, want 3", len(s.Active()))
	}
}

func TestEvaluateDegenerateRaisesMinBorder(t *testing.T) {
	res := geometry.Solve(geometry.Input{Paper: paper8x10, Ratio: paper.Size{Width: 1, Height: 1}, MinBorder: 4}, geometry.DefaultOptions())
	// typed border is fine, the substituted one is degenerate
	s := Evaluate(Input{MinBorder: 0.5, Paper: paper8x10, Result: res}, paper.DefaultEasels())
	if s.MinBorder == nil || *s.MinBorder != MsgBorderTooLarge {
		t.Errorf("MinBorder = %v, want too-large message", s.MinBorder)
	}
}

func TestEvaluateClear(t *testing.T) {
	res := geometry.Solve(geometry.Input{Paper: paper8x10, Ratio: paper.Size{Width: 3, Height: 2}, MinBorder: 0.5}, geometry.DefaultOptions())
	s := Evaluate(Input{MinBorder: 0.5, Paper: paper8x10, Result: res}, paper.DefaultEasels())
	if !s.Empty() {
		t.Errorf("expected no warnings, got %+v", s.Active())
	}
}

func TestBorderUsable(t *testing.T) {
	if !BorderUsable(0.5, paper8x10) || BorderUsable(4, paper8x10) || BorderUsable(-1, paper8x10) {
		t.Error("BorderUsable boundaries wrong")
	}
}
