// Package paper resolves symbolic paper-size and aspect-ratio selections into
// concrete, oriented dimensions in inches.
//
// # Tables
//
// Paper sizes, aspect ratios and easel sizes live in immutable tables that
// are built once and injected into a Resolver. There is no package-level
// mutable registry: callers that want extra entries (for example from a
// config file) derive a new table with With.
//
//	papers, err := paper.DefaultPapers().With(paper.PaperSize{
//	    Label: "12x16", Value: "12x16", Width: 12, Height: 16,
//	})
//
// Two selection values are special:
//   - Custom ("custom") uses the caller-supplied width and height
//   - EvenBorders ("even-borders", ratios only) copies the oriented paper's
//     proportions so the print has identical borders on every side
//
// # Resolution
//
// Resolve is a total function: an unknown paper or ratio value falls back to
// the default entry and is logged, it never fails.
//
//	r := paper.NewResolver(paper.DefaultPapers(), paper.DefaultRatios(), logger)
//	dims := r.Resolve(paper.Input{PaperSize: "8x10", AspectRatio: "3:2"})
//	// dims.Paper = {8 10}, dims.Ratio = {3 2}
package paper
