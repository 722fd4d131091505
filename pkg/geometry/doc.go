// Package geometry computes the print rectangle and easel blade positions for
// a given oriented paper, aspect ratio and minimum border.
//
// # Algorithm
//
// Solve insets the paper by the border, fits the ratio into the remaining
// rectangle (letterboxing on the tighter axis), centres the print, applies
// the optional offset clamped to the paper edge, and reports the distance
// from each paper edge to the matching print edge. Those four distances are
// the blade readings dialled in on the easel.
//
// A border narrower than an easel blade cannot be masked. When a blade
// reading would fall strictly between zero and Options.BladeThickness, Solve
// searches larger borders in fixed steps up to Options.SearchCap and returns
// the first feasible layout, or the least-bad one when the span is exhausted.
// The Result flags record which of these paths was taken so callers can warn.
//
// # Units
//
// All values are inches. Positive horizontal offsets move the print right,
// positive vertical offsets move it up.
package geometry
