package paper

import (
	"fmt"
	"slices"
)

// PaperTable is an immutable, ordered set of paper sizes keyed by Value.
// The zero value is an empty table.
type PaperTable struct {
	entries []PaperSize
	index   map[string]int
}

// NewPaperTable builds a table. Values must be unique and every non-custom
// entry must be portrait with positive sides.
func NewPaperTable(entries ...PaperSize) (PaperTable, error) {
	t := PaperTable{entries: slices.Clone(entries), index: make(map[string]int, len(entries))}
	for i, p := range t.entries {
		if p.Value == "" {
			return PaperTable{}, fmt.Errorf("paper %d: empty value", i)
		}
		if _, dup := t.index[p.Value]; dup {
			return PaperTable{}, fmt.Errorf("paper %q: duplicate value", p.Value)
		}
		if p.Value != Custom {
			if !p.Size().Valid() {
				return PaperTable{}, fmt.Errorf("paper %q: dimensions must be positive", p.Value)
			}
			if p.Width > p.Height {
				return PaperTable{}, fmt.Errorf("paper %q: must be portrait (width <= height)", p.Value)
			}
		}
		t.index[p.Value] = i
	}
	return t, nil
}

// Lookup returns the entry with the given value.
func (t PaperTable) Lookup(value string) (PaperSize, bool) {
	i, ok := t.index[value]
	if !ok {
		return PaperSize{}, false
	}
	return t.entries[i], true
}

// All returns a copy of the entries in table order.
func (t PaperTable) All() []PaperSize { return slices.Clone(t.entries) }

// Len returns the number of entries.
func (t PaperTable) Len() int { return len(t.entries) }

// With returns a new table with extra entries inserted before the custom
// sentinel, so "custom" stays last in menus.
func (t PaperTable) With(extra ...PaperSize) (PaperTable, error) {
	var out []PaperSize
	var sentinel *PaperSize
	for _, p := range t.entries {
		if p.Value == Custom {
			s := p
			sentinel = &s
			continue
		}
		out = append(out, p)
	}
	out = append(out, extra...)
	if sentinel != nil {
		out = append(out, *sentinel)
	}
	return NewPaperTable(out...)
}

// RatioTable is an immutable, ordered set of aspect ratios keyed by Value.
type RatioTable struct {
	entries []AspectRatio
	index   map[string]int
}

// NewRatioTable builds a table. Values must be unique and every entry other
// than the custom and even-borders sentinels needs positive sides.
func NewRatioTable(entries ...AspectRatio) (RatioTable, error) {
	t := RatioTable{entries: slices.Clone(entries), index: make(map[string]int, len(entries))}
	for i, r := range t.entries {
		if r.Value == "" {
			return RatioTable{}, fmt.Errorf("ratio %d: empty value", i)
		}
		if _, dup := t.index[r.Value]; dup {
			return RatioTable{}, fmt.Errorf("ratio %q: duplicate value", r.Value)
		}
		if r.Value != Custom && r.Value != EvenBorders && !r.Size().Valid() {
			return RatioTable{}, fmt.Errorf("ratio %q: dimensions must be positive", r.Value)
		}
		t.index[r.Value] = i
	}
	return t, nil
}

// Lookup returns the entry with the given value.
func (t RatioTable) Lookup(value string) (AspectRatio, bool) {
	i, ok := t.index[value]
	if !ok {
		return AspectRatio{}, false
	}
	return t.entries[i], true
}

// All returns a copy of the entries in table order.
func (t RatioTable) All() []AspectRatio { return slices.Clone(t.entries) }

// Len returns the number of entries.
func (t RatioTable) Len() int { return len(t.entries) }

// With returns a new table with extra entries inserted before the sentinels.
func (t RatioTable) With(extra ...AspectRatio) (RatioTable, error) {
	var out, sentinels []AspectRatio
	for _, r := range t.entries {
		if r.Value == Custom || r.Value == EvenBorders {
			sentinels = append(sentinels, r)
			continue
		}
		out = append(out, r)
	}
	out = append(out, extra...)
	out = append(out, sentinels...)
	return NewRatioTable(out...)
}

// EaselTable is an immutable list of standard easel sizes.
type EaselTable struct {
	entries []Easel
}

// NewEaselTable builds a table; every easel needs positive sides.
func NewEaselTable(entries ...Easel) (EaselTable, error) {
	for _, e := range entries {
		if !e.Size().Valid() {
			return EaselTable{}, fmt.Errorf("easel %q: dimensions must be positive", e.Label)
		}
	}
	return EaselTable{entries: slices.Clone(entries)}, nil
}

// All returns a copy of the easels.
func (t EaselTable) All() []Easel { return slices.Clone(t.entries) }

// Largest returns the easel with the biggest area.
func (t EaselTable) Largest() (Easel, bool) {
	if len(t.entries) == 0 {
		return Easel{}, false
	}
	best := t.entries[0]
	for _, e := range t.entries[1:] {
		if e.Width*e.Height > best.Width*best.Height {
			best = e
		}
	}
	return best, true
}

// Fits reports whether any easel in the table holds paper s.
func (t EaselTable) Fits(s Size) bool {
	for _, e := range t.entries {
		if e.Fits(s) {
			return true
		}
	}
	return false
}

// With returns a new table with extra easels appended.
func (t EaselTable) With(extra ...Easel) (EaselTable, error) {
	return NewEaselTable(append(t.All(), extra...)...)
}

// =============================================================================
// Built-in tables
// =============================================================================

var defaultPapers = []PaperSize{
	{Label: "4x5", Value: "4x5", Width: 4, Height: 5},
	{Label: "5x7", Value: "5x7", Width: 5, Height: 7},
	{Label: "8x10", Value: "8x10", Width: 8, Height: 10},
	{Label: "11x14", Value: "11x14", Width: 11, Height: 14},
	{Label: "16x20", Value: "16x20", Width: 16, Height: 20},
	{Label: "20x24", Value: "20x24", Width: 20, Height: 24},
	{Label: "Custom Paper Size", Value: Custom},
}

var defaultRatios = []AspectRatio{
	{Label: "35mm standard frame, 6x9 (3:2)", Value: "3:2", Width: 3, Height: 2},
	{Label: "XPan Panoramic (65:24)", Value: "65:24", Width: 65, Height: 24},
	{Label: "6x4.5 (4:3)", Value: "4:3", Width: 4, Height: 3},
	{Label: "Square, 6x6 (1:1)", Value: "1:1", Width: 1, Height: 1},
	{Label: "6x7 (7:6)", Value: "7:6", Width: 7, Height: 6},
	{Label: "4x5 (5:4)", Value: "5:4", Width: 5, Height: 4},
	{Label: "5x7 (7:5)", Value: "7:5", Width: 7, Height: 5},
	{Label: "HDTV (16:9)", Value: "16:9", Width: 16, Height: 9},
	{Label: "Even Borders", Value: EvenBorders},
	{Label: "Custom Ratio", Value: Custom},
}

var defaultEasels = []Easel{
	{Label: "5x7", Width: 5, Height: 7},
	{Label: "8x10", Width: 8, Height: 10},
	{Label: "11x14", Width: 11, Height: 14},
	{Label: "16x20", Width: 16, Height: 20},
	{Label: "20x24", Width: 20, Height: 24},
}

// DefaultPapers returns the built-in paper table.
func DefaultPapers() PaperTable { return must(NewPaperTable(defaultPapers...)) }

// DefaultRatios returns the built-in ratio table.
func DefaultRatios() RatioTable { return must(NewRatioTable(defaultRatios...)) }

// DefaultEasels returns the built-in easel table.
func DefaultEasels() EaselTable { return must(NewEaselTable(defaultEasels...)) }

func must[T any](t T, err error) T {
	if err != nil {
		panic("paper: invalid built-in table: " + err.Error())
	}
	return t
}
