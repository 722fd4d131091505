package geometry

import (
	"math"
	"testing"

	"github.com/matzehuels/easel/pkg/paper"
)

const tol = 1e-6

func approx(a, b float64) bool { return math.Abs(a-b) < tol }

func TestSolveReferenceExample(t *testing.T) {
	res := Solve(Input{
		Paper:     paper.Size{Width: 8, Height: 10},
		Ratio:     paper.Size{Width: 3, Height: 2},
		MinBorder: 0.5,
	}, DefaultOptions())

	if !approx(res.Print.Width, 7) || !approx(res.Print.Height, 14.0/3) {
		t.Fatalf("Print = %+v, want 7 x 4.667", res.Print)
	}
	if !approx(res.Blades.Left, 0.5) || !approx(res.Blades.Right, 0.5) {
		t.Errorf("left/right = %v/%v, want 0.5", res.Blades.Left, res.Blades.Right)
	}
	wantY := (10 - 14.0/3) / 2
	if !approx(res.Blades.Top, wantY) || !approx(res.Blades.Bottom, wantY) {
		t.Errorf("top/bottom = %v/%v, want %v", res.Blades.Top, res.Blades.Bottom, wantY)
	}
	if res.SearchUsed || res.Degenerate || res.OffsetClamped {
		t.Errorf("unexpected flags: %+v", res)
	}
	if res.EffectiveBorder != 0.5 {
		t.Errorf("EffectiveBorder = %v, want 0.5", res.EffectiveBorder)
	}
}

func TestSolveRatioLockedAndInsideUsable(t *testing.T) {
	papers := []paper.Size{{Width: 4, Height: 5}, {Width: 8, Height: 10}, {Width: 11, Height: 14}, {Width: 20, Height: 16}, {Width: 30, Height: 40}}
	ratios := []paper.Size{{Width: 3, Height: 2}, {Width: 2, Height: 3}, {Width: 65, Height: 24}, {Width: 1, Height: 1}, {Width: 5, Height: 4}}
	borders := []float64{0, 0.25, 0.5, 1, 1.5}

	for _, p := range papers {
		for _, r := range ratios {
			for _, b := range borders {
				res := Solve(Input{Paper: p, Ratio: r, MinBorder: b}, DefaultOptions())
				if res.Degenerate {
					continue
				}
				eb := res.EffectiveBorder
				if got, want := res.Print.Width/res.Print.Height, r.Width/r.Height; math.Abs(got-want) > 1e-9 {
					t.Errorf("%v %v %v: aspect %v, want %v", p, r, b, got, want)
				}
				if res.Print.Width > p.Width-2*eb+tol || res.Print.Height > p.Height-2*eb+tol {
					t.Errorf("%v %v %v: print %v exceeds usable", p, r, b, res.Print)
				}
				// the print touches the border on at least one axis
				if !approx(res.Print.Width, p.Width-2*eb) && !approx(res.Print.Height, p.Height-2*eb) {
					t.Errorf("%v %v %v: print %v is not maximal", p, r, b, res.Print)
				}
				bl := res.Blades
				if !approx(bl.Left+bl.Right+res.Print.Width, p.Width) || !approx(bl.Top+bl.Bottom+res.Print.Height, p.Height) {
					t.Errorf("%v %v %v: blades %+v do not add up", p, r, b, bl)
				}
			}
		}
	}
}

func TestSolveDegenerate(t *testing.T) {
	tests := []struct {
		name   string
		border float64
	}{
		{"exactly half", 4},
		{"more than half", 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Solve(Input{
				Paper:     paper.Size{Width: 8, Height: 10},
				Ratio:     paper.Size{Width: 3, Height: 2},
				MinBorder: tt.border,
			}, DefaultOptions())
			if !res.Degenerate {
				t.Fatal("expected degenerate result")
			}
			if res.Print != (paper.Size{}) || res.Blades != (Blades{}) {
				t.Errorf("degenerate result should be zero, got print %v blades %+v", res.Print, res.Blades)
			}
		})
	}
}

func TestSolveIgnoreMinBorder(t *testing.T) {
	res := Solve(Input{
		Paper:           paper.Size{Width: 8, Height: 10},
		Ratio:           paper.Size{Width: 3, Height: 2},
		MinBorder:       3,
		IgnoreMinBorder: true,
	}, DefaultOptions())

	if res.EffectiveBorder != 0 {
		t.Errorf("EffectiveBorder = %v, want 0", res.EffectiveBorder)
	}
	if !approx(res.Print.Width, 8) {
		t.Errorf("Print.Width = %v, want full paper width", res.Print.Width)
	}
	if res.SearchUsed {
		t.Error("flush blades should not trigger the search")
	}
}

func TestSolveOffsetClamped(t *testing.T) {
	res := Solve(Input{
		Paper:            paper.Size{Width: 8, Height: 10},
		Ratio:            paper.Size{Width: 3, Height: 2},
		MinBorder:        0.5,
		EnableOffset:     true,
		HorizontalOffset: 10,
	}, DefaultOptions())

	if !res.OffsetClamped {
		t.Error("expected OffsetClamped")
	}
	if !approx(res.Offset.X, 0.5) {
		t.Errorf("Offset.X = %v, want 0.5", res.Offset.X)
	}
	if !approx(res.Blades.Left, 1) || res.Blades.Right != 0 {
		t.Errorf("blades = %+v, want left 1 right 0", res.Blades)
	}
	if res.Blades.Left+res.Blades.Right+res.Print.Width > 8+tol {
		t.Error("print placed off paper")
	}
}

func TestSolveOffsetDirections(t *testing.T) {
	res := Solve(Input{
		Paper:            paper.Size{Width: 8, Height: 10},
		Ratio:            paper.Size{Width: 3, Height: 2},
		MinBorder:        0.5,
		EnableOffset:     true,
		HorizontalOffset: 0.25,
		VerticalOffset:   1,
	}, DefaultOptions())

	if res.OffsetClamped {
		t.Error("offset within range should not be clamped")
	}
	margin := (10 - 14.0/3) / 2
	if !approx(res.Blades.Left, 0.75) || !approx(res.Blades.Right, 0.25) {
		t.Errorf("left/right = %v/%v", res.Blades.Left, res.Blades.Right)
	}
	if !approx(res.Blades.Top, margin-1) || !approx(res.Blades.Bottom, margin+1) {
		t.Errorf("top/bottom = %v/%v", res.Blades.Top, res.Blades.Bottom)
	}
}

func TestSolveOffsetDisabledIgnoresValues(t *testing.T) {
	res := Solve(Input{
		Paper:            paper.Size{Width: 8, Height: 10},
		Ratio:            paper.Size{Width: 3, Height: 2},
		MinBorder:        0.5,
		HorizontalOffset: 10,
	}, DefaultOptions())
	if res.OffsetClamped || res.Offset != (Offset{}) {
		t.Errorf("disabled offset applied: %+v", res.Offset)
	}
}

func TestSolveSearchFindsFeasibleBorder(t *testing.T) {
	res := Solve(Input{
		Paper:     paper.Size{Width: 8, Height: 10},
		Ratio:     paper.Size{Width: 3, Height: 2},
		MinBorder: 0.05,
	}, DefaultOptions())

	if !res.SearchUsed || res.SearchExhausted {
		t.Fatalf("flags = used %v exhausted %v, want used only", res.SearchUsed, res.SearchExhausted)
	}
	if res.RequestedBorder != 0.05 {
		t.Errorf("RequestedBorder = %v, want 0.05", res.RequestedBorder)
	}
	// 0.05 + 2 * 1/16 is the first step past the 1/8in blade
	if !approx(res.EffectiveBorder, 0.175) {
		t.Errorf("EffectiveBorder = %v, want 0.175", res.EffectiveBorder)
	}
	if !Feasible(res.Blades, DefaultBladeThickness) {
		t.Errorf("blades %+v not feasible", res.Blades)
	}
}

func TestSolveSearchOffsetSliver(t *testing.T) {
	res := Solve(Input{
		Paper:            paper.Size{Width: 8, Height: 10},
		Ratio:            paper.Size{Width: 3, Height: 2},
		MinBorder:        0.5,
		EnableOffset:     true,
		HorizontalOffset: 0.47,
	}, DefaultOptions())

	if !res.SearchUsed || res.SearchExhausted {
		t.Fatalf("flags = used %v exhausted %v", res.SearchUsed, res.SearchExhausted)
	}
	if res.EffectiveBorder <= 0.5 {
		t.Errorf("EffectiveBorder = %v, want > 0.5", res.EffectiveBorder)
	}
	if !Feasible(res.Blades, DefaultBladeThickness) {
		t.Errorf("blades %+v not feasible", res.Blades)
	}
}

func TestSolveSearchExhausted(t *testing.T) {
	opts := Options{BladeThickness: 0.125, SearchStep: 0.01, SearchCap: 0.02}
	res := Solve(Input{
		Paper:     paper.Size{Width: 8, Height: 10},
		Ratio:     paper.Size{Width: 3, Height: 2},
		MinBorder: 0.01,
	}, opts)

	if !res.SearchUsed || !res.SearchExhausted {
		t.Fatalf("flags = used %v exhausted %v, want both", res.SearchUsed, res.SearchExhausted)
	}
	// the least-bad candidate is the widest border tried
	if !approx(res.EffectiveBorder, 0.03) {
		t.Errorf("EffectiveBorder = %v, want 0.03", res.EffectiveBorder)
	}
	if res.Print.Width <= 0 {
		t.Error("best effort result must still have a print")
	}
}

func TestFeasible(t *testing.T) {
	tests := []struct {
		name   string
		blades Blades
		want   bool
	}{
		{"all wide", Blades{1, 1, 1, 1}, true},
		{"flush", Blades{0, 0, 2, 2}, true},
		{"exactly thickness", Blades{0.125, 1, 1, 1}, true},
		{"sliver", Blades{0.1, 1, 1, 1}, false},
		// only the edge distance counts, however close opposite blades get
		{"narrow print", Blades{3.97, 3.97, 1, 1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Feasible(tt.blades, 0.125); got != tt.want {
				t.Errorf("Feasible(%+v) = %v, want %v", tt.blades, got, tt.want)
			}
		})
	}
}

func TestFraction(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{0.5, "1/2"},
		{3, "3"},
		{2.6666667, "2 11/16"},
		{0.0625, "1/16"},
		{1.99, "2"},
		{-0.25, "-1/4"},
	}
	for _, tt := range tests {
		if got := Fraction(tt.in, 16); got != tt.want {
			t.Errorf("Fraction(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
