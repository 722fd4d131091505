package warnings

import (
	"fmt"

	"github.com/matzehuels/easel/pkg/geometry"
	"github.com/matzehuels/easel/pkg/paper"
)

// Category identifies a warning slot.
type Category string

// Warning categories.
const (
	CategoryMinBorder Category = "min-border"
	CategoryPaperSize Category = "paper-size"
	CategoryOffset    Category = "offset"
	CategoryBlade     Category = "blade"
)

// Categories lists every category in display order.
var Categories = []Category{CategoryMinBorder, CategoryPaperSize, CategoryOffset, CategoryBlade}

// Messages.
const (
	MsgBorderNegative = "Minimum border cannot be negative, using last valid value"
	MsgBorderTooLarge = "Minimum border is too large for this paper, using last valid value"
	MsgOffsetClamped  = "Offset was clamped to keep the print on the paper"
)

// Warning is one category's current message; Message is nil when clear.
type Warning struct {
	Category Category `json:"category"`
	Message  *string  `json:"message"`
}

// Set holds the newest message for every category.
type Set struct {
	MinBorder *string `json:"min_border"`
	PaperSize *string `json:"paper_size"`
	Offset    *string `json:"offset"`
	Blade     *string `json:"blade"`
}

// Get returns the message for c.
func (s Set) Get(c Category) *string {
	switch c {
	case CategoryMinBorder:
		return s.MinBorder
	case CategoryPaperSize:
		return s.PaperSize
	case CategoryOffset:
		return s.Offset
	case CategoryBlade:
		return s.Blade
	}
	return nil
}

// List returns one Warning per category, in Categories order.
func (s Set) List() []Warning {
	out := make([]Warning, 0, len(Categories))
	for _, c := range Categories {
		out = append(out, Warning{Category: c, Message: s.Get(c)})
	}
	return out
}

// Active returns only the categories with a message.
func (s Set) Active() []Warning {
	var out []Warning
	for _, w := range s.List() {
		if w.Message != nil {
			out = append(out, w)
		}
	}
	return out
}

// Empty reports whether no category has a message.
func (s Set) Empty() bool { return len(s.Active()) == 0 }

// Input is the slice of state the checks need.
type Input struct {
	// MinBorder is the border the user typed, before substitution.
	MinBorder       float64
	IgnoreMinBorder bool
	Paper           paper.Size // oriented
	IsCustomPaper   bool
	Result          geometry.Result
}

// Evaluate runs every check.
func Evaluate(in Input, easels paper.EaselTable) Set {
	s := Set{
		MinBorder: MinBorder(in.MinBorder, in.Paper, in.IgnoreMinBorder),
		PaperSize: PaperSize(in.IsCustomPaper, in.Paper, easels),
		Offset:    Offset(in.Result),
		Blade:     Blade(in.Result),
	}
	if s.MinBorder == nil && in.Result.Degenerate && !in.IgnoreMinBorder {
		s.MinBorder = msg(MsgBorderTooLarge)
	}
	return s
}

// BorderUsable reports whether border leaves a printable area on paper.
func BorderUsable(border float64, p paper.Size) bool {
	return border >= 0 && border < p.Min()/2
}

// MinBorder checks the typed border against the oriented paper.
func MinBorder(border float64, p paper.Size, ignore bool) *string {
	if ignore {
		return nil
	}
	switch {
	case border < 0:
		return msg(MsgBorderNegative)
	case border >= p.Min()/2:
		return msg(MsgBorderTooLarge)
	}
	return nil
}

// PaperSize warns when a custom paper does not fit any standard easel.
func PaperSize(isCustom bool, p paper.Size, easels paper.EaselTable) *string {
	if !isCustom {
		return nil
	}
	largest, ok := easels.Largest()
	if !ok || easels.Fits(p) {
		return nil
	}
	return msg(fmt.Sprintf("Custom paper is larger than the largest supported easel (%s, %gx%gin)",
		largest.Label, largest.Width, largest.Height))
}

// Offset warns when the requested offset reached the paper edge.
func Offset(r geometry.Result) *string {
	if !r.OffsetClamped {
		return nil
	}
	return msg(MsgOffsetClamped)
}

// Blade warns when the border had to grow to clear the blades.
func Blade(r geometry.Result) *string {
	switch {
	case r.SearchExhausted:
		return msg(fmt.Sprintf("No blade-feasible border found within the search span, best effort border %sin",
			formatInches(r.EffectiveBorder)))
	case r.SearchUsed:
		return msg(fmt.Sprintf("Blades cannot be set this close to the paper edge, using an effective border of %sin",
			formatInches(r.EffectiveBorder)))
	}
	return nil
}

func formatInches(v float64) string { return fmt.Sprintf("%.3g", v) }

func msg(s string) *string { return &s }
