package paper

import (
	"fmt"
	"math"
)

// Selection values with special meaning.
const (
	// Custom selects user-entered dimensions for paper or ratio.
	Custom = "custom"

	// EvenBorders makes the ratio follow the oriented paper.
	EvenBorders = "even-borders"
)

// Defaults used when a selection cannot be resolved.
const (
	DefaultPaperValue = "8x10"
	DefaultRatioValue = "3:2"
)

var (
	// FallbackPaper is used when even the default entry is missing from a table.
	FallbackPaper = Size{Width: 8, Height: 10}

	// FallbackRatio is the ratio counterpart of FallbackPaper.
	FallbackRatio = Size{Width: 3, Height: 2}
)

// Size is a width/height pair in inches (or ratio units).
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Swap returns the size rotated by 90 degrees.
func (s Size) Swap() Size { return Size{Width: s.Height, Height: s.Width} }

// Min returns the shorter side.
func (s Size) Min() float64 { return math.Min(s.Width, s.Height) }

// Max returns the longer side.
func (s Size) Max() float64 { return math.Max(s.Width, s.Height) }

// Aspect returns Width/Height, or 0 for a degenerate size.
func (s Size) Aspect() float64 {
	if s.Height == 0 {
		return 0
	}
	return s.Width / s.Height
}

// Valid reports whether both sides are positive and finite.
func (s Size) Valid() bool {
	return s.Width > 0 && s.Height > 0 && !math.IsInf(s.Width, 0) && !math.IsInf(s.Height, 0)
}

// String formats the size as "WxH".
func (s Size) String() string { return fmt.Sprintf("%gx%g", s.Width, s.Height) }

// PaperSize is one entry in the paper table.
type PaperSize struct {
	Label  string  `json:"label" toml:"label" yaml:"label"`
	Value  string  `json:"value" toml:"value" yaml:"value"`
	Width  float64 `json:"width" toml:"width" yaml:"width"`
	Height float64 `json:"height" toml:"height" yaml:"height"`
}

// Size returns the entry's dimensions.
func (p PaperSize) Size() Size { return Size{Width: p.Width, Height: p.Height} }

// AspectRatio is one entry in the ratio table.
type AspectRatio struct {
	Label  string  `json:"label" toml:"label" yaml:"label"`
	Value  string  `json:"value" toml:"value" yaml:"value"`
	Width  float64 `json:"width" toml:"width" yaml:"width"`
	Height float64 `json:"height" toml:"height" yaml:"height"`
}

// Size returns the entry's ratio as a size.
func (a AspectRatio) Size() Size { return Size{Width: a.Width, Height: a.Height} }

// Easel is a standard enlarging easel size.
type Easel struct {
	Label  string  `json:"label" toml:"label" yaml:"label"`
	Width  float64 `json:"width" toml:"width" yaml:"width"`
	Height float64 `json:"height" toml:"height" yaml:"height"`
}

// Size returns the easel's maximum paper size.
func (e Easel) Size() Size { return Size{Width: e.Width, Height: e.Height} }

// Fits reports whether paper s fits the easel in either orientation.
func (e Easel) Fits(s Size) bool {
	es := e.Size()
	return s.Min() <= es.Min() && s.Max() <= es.Max()
}
