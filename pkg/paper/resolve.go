package paper

import (
	"github.com/charmbracelet/log"
)

// Input is the slice of calculator state that determines the dimensions.
type Input struct {
	PaperSize      string
	AspectRatio    string
	CustomPaper    Size // last valid custom paper, used when PaperSize is Custom
	CustomRatio    Size // last valid custom ratio, used when AspectRatio is Custom
	IsLandscape    bool
	IsRatioFlipped bool
}

// Dimensions are the oriented paper and ratio. They are derived on every
// read and never persisted.
type Dimensions struct {
	Paper Size `json:"paper"`
	Ratio Size `json:"ratio"`
}

// Resolver turns selections into Dimensions using injected tables.
// It is safe for concurrent use; it holds no mutable state.
type Resolver struct {
	papers PaperTable
	ratios RatioTable
	logger *log.Logger
}

// NewResolver creates a resolver. Empty tables are replaced by the built-in
// defaults and a nil logger by log.Default().
func NewResolver(papers PaperTable, ratios RatioTable, logger *log.Logger) *Resolver {
	if papers.Len() == 0 {
		papers = DefaultPapers()
	}
	if ratios.Len() == 0 {
		ratios = DefaultRatios()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Resolver{papers: papers, ratios: ratios, logger: logger}
}

// Papers returns the paper table.
func (r *Resolver) Papers() PaperTable { return r.papers }

// Ratios returns the ratio table.
func (r *Resolver) Ratios() RatioTable { return r.ratios }

// Resolve computes the oriented paper and ratio for in.
func (r *Resolver) Resolve(in Input) Dimensions {
	p := r.paper(in.PaperSize, in.CustomPaper)
	if in.IsLandscape {
		p = p.Swap()
	}

	var ratio Size
	switch in.AspectRatio {
	case EvenBorders:
		ratio = p
	default:
		ratio = r.ratio(in.AspectRatio, in.CustomRatio)
		if in.IsRatioFlipped {
			ratio = ratio.Swap()
		}
	}

	return Dimensions{Paper: p, Ratio: ratio}
}

// paper resolves the unoriented paper size.
func (r *Resolver) paper(value string, custom Size) Size {
	if value == Custom {
		if custom.Valid() {
			return custom
		}
		r.logger.Warn("invalid custom paper size, using default", "width", custom.Width, "height", custom.Height)
		return r.defaultPaper()
	}
	if p, ok := r.papers.Lookup(value); ok && p.Value != Custom {
		return p.Size()
	}
	r.logger.Warn("unknown paper size, using default", "value", value, "default", DefaultPaperValue)
	return r.defaultPaper()
}

// ratio resolves the unflipped ratio; even-borders is handled by the caller.
func (r *Resolver) ratio(value string, custom Size) Size {
	if value == Custom {
		if custom.Valid() {
			return custom
		}
		r.logger.Warn("invalid custom aspect ratio, using default", "width", custom.Width, "height", custom.Height)
		return r.defaultRatio()
	}
	if a, ok := r.ratios.Lookup(value); ok && a.Value != EvenBorders && a.Value != Custom {
		return a.Size()
	}
	r.logger.Warn("unknown aspect ratio, using default", "value", value, "default", DefaultRatioValue)
	return r.defaultRatio()
}

func (r *Resolver) defaultPaper() Size {
	if p, ok := r.papers.Lookup(DefaultPaperValue); ok && p.Size().Valid() {
		return p.Size()
	}
	return FallbackPaper
}

func (r *Resolver) defaultRatio() Size {
	if a, ok := r.ratios.Lookup(DefaultRatioValue); ok && a.Size().Valid() {
		return a.Size()
	}
	return FallbackRatio
}
