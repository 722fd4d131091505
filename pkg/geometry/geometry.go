package geometry

import (
	"math"

	"github.com/matzehuels/easel/pkg/paper"
)

// eps absorbs floating point noise in comparisons between inch values.
const eps = 1e-9

// Defaults for Options.
const (
	DefaultBladeThickness = 0.125
	DefaultSearchStep     = 0.0625
	DefaultSearchCap      = 3.0
)

// Options tunes the blade feasibility search.
type Options struct {
	BladeThickness float64 `json:"blade_thickness" toml:"blade_thickness"`
	SearchStep     float64 `json:"search_step" toml:"search_step"`
	SearchCap      float64 `json:"search_cap" toml:"search_cap"`
}

// DefaultOptions returns 1/8in blades searched in 1/16in steps up to 3in.
func DefaultOptions() Options {
	return Options{
		BladeThickness: DefaultBladeThickness,
		SearchStep:     DefaultSearchStep,
		SearchCap:      DefaultSearchCap,
	}
}

// withDefaults fills non-positive fields.
func (o Options) withDefaults() Options {
	if o.BladeThickness < 0 {
		o.BladeThickness = 0
	}
	if o.SearchStep <= 0 {
		o.SearchStep = DefaultSearchStep
	}
	if o.SearchCap < 0 {
		o.SearchCap = 0
	}
	return o
}

// Input is everything Solve needs from the calculator.
type Input struct {
	Paper            paper.Size
	Ratio            paper.Size
	MinBorder        float64
	EnableOffset     bool
	HorizontalOffset float64
	VerticalOffset   float64
	IgnoreMinBorder  bool
}

// Blades are the four easel readings, each measured from its own paper edge.
type Blades struct {
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
}

func (b Blades) all() [4]float64 { return [4]float64{b.Left, b.Right, b.Top, b.Bottom} }

// Offset is the print's displacement from the paper centre.
type Offset struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Result is the solved geometry.
type Result struct {
	Paper  paper.Size `json:"paper"`
	Print  paper.Size `json:"print"`
	Blades Blades     `json:"blades"`
	Offset Offset     `json:"offset"`

	RequestedBorder float64 `json:"requested_border"`
	EffectiveBorder float64 `json:"effective_border"`

	// OffsetClamped is set when a requested offset reached the paper edge.
	OffsetClamped bool `json:"offset_clamped"`
	// Degenerate is set when the border leaves no printable area.
	Degenerate bool `json:"degenerate"`
	// SearchUsed is set when the requested border was not blade-feasible.
	SearchUsed bool `json:"search_used"`
	// SearchExhausted is set when no feasible border was found in the span.
	SearchExhausted bool `json:"search_exhausted"`
}

// Solve computes the geometry for in. It never fails: infeasible inputs
// produce a flagged best-effort Result.
func Solve(in Input, opts Options) Result {
	opts = opts.withDefaults()

	border := in.MinBorder
	if in.IgnoreMinBorder {
		border = 0
	}

	res := layout(in, border)
	if res.Degenerate || Feasible(res.Blades, opts.BladeThickness) {
		return res
	}

	best, bestDeficit := res, deficit(res.Blades, opts.BladeThickness)
	limit := border + opts.SearchCap + eps
	for k := 1; ; k++ {
		b := border + float64(k)*opts.SearchStep
		if b > limit {
			break
		}
		cand := layout(in, b)
		if cand.Degenerate {
			break
		}
		cand.RequestedBorder = border
		cand.SearchUsed = true
		if Feasible(cand.Blades, opts.BladeThickness) {
			return cand
		}
		if d := deficit(cand.Blades, opts.BladeThickness); d < bestDeficit-eps {
			best, bestDeficit = cand, d
		}
	}

	best.RequestedBorder = border
	best.SearchUsed = true
	best.SearchExhausted = true
	return best
}

// Feasible reports whether every blade is either flush with the paper edge
// or at least one blade thickness away from it. The distance measured is
// blade to paper edge, not blade to opposite blade.
func Feasible(b Blades, thickness float64) bool {
	return deficit(b, thickness) <= eps
}

// deficit sums how far each sliver border falls short of the blade thickness.
func deficit(b Blades, thickness float64) float64 {
	var d float64
	for _, v := range b.all() {
		if v > eps && v < thickness-eps {
			d += thickness - v
		}
	}
	return d
}

// layout performs steps 1-4: inset, letterbox, centre + offset, blades.
func layout(in Input, border float64) Result {
	p, r := in.Paper, in.Ratio
	res := Result{
		Paper:           p,
		RequestedBorder: border,
		EffectiveBorder: border,
	}

	usableW := p.Width - 2*border
	usableH := p.Height - 2*border
	if usableW <= eps || usableH <= eps || !r.Valid() || !p.Valid() {
		res.Degenerate = true
		return res
	}

	var printW, printH float64
	if cand := usableH * r.Width / r.Height; cand <= usableW+eps {
		printW, printH = math.Min(cand, usableW), usableH
	} else {
		printW, printH = usableW, usableW*r.Height/r.Width
	}
	res.Print = paper.Size{Width: printW, Height: printH}

	marginX := (p.Width - printW) / 2
	marginY := (p.Height - printH) / 2

	if in.EnableOffset {
		var cx, cy bool
		res.Offset.X, cx = clampOffset(in.HorizontalOffset, marginX)
		res.Offset.Y, cy = clampOffset(in.VerticalOffset, marginY)
		res.OffsetClamped = cx || cy
	}

	res.Blades = Blades{
		Left:   nonNegative(marginX + res.Offset.X),
		Right:  nonNegative(marginX - res.Offset.X),
		Top:    nonNegative(marginY - res.Offset.Y),
		Bottom: nonNegative(marginY + res.Offset.Y),
	}
	return res
}

// clampOffset limits v to [-limit, limit] and reports whether a non-zero
// request reached the boundary.
func clampOffset(v, limit float64) (float64, bool) {
	if v == 0 || math.IsNaN(v) {
		return 0, false
	}
	clamped := math.Max(-limit, math.Min(limit, v))
	return clamped, math.Abs(v) >= limit-eps
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
