package settings

import "github.com/matzehuels/easel/pkg/calculator"

// Persistable is the part of the calculator state that is saved and
// shared. Transient placement fields are deliberately absent.
type Persistable struct {
	PaperSize   string `json:"paper_size" yaml:"paper_size"`
	AspectRatio string `json:"aspect_ratio" yaml:"aspect_ratio"`

	CustomPaperWidth   string `json:"custom_paper_width" yaml:"custom_paper_width"`
	CustomPaperHeight  string `json:"custom_paper_height" yaml:"custom_paper_height"`
	CustomAspectWidth  string `json:"custom_aspect_width" yaml:"custom_aspect_width"`
	CustomAspectHeight string `json:"custom_aspect_height" yaml:"custom_aspect_height"`

	LastValidCustomPaperWidth   float64 `json:"last_valid_custom_paper_width" yaml:"last_valid_custom_paper_width"`
	LastValidCustomPaperHeight  float64 `json:"last_valid_custom_paper_height" yaml:"last_valid_custom_paper_height"`
	LastValidCustomAspectWidth  float64 `json:"last_valid_custom_aspect_width" yaml:"last_valid_custom_aspect_width"`
	LastValidCustomAspectHeight float64 `json:"last_valid_custom_aspect_height" yaml:"last_valid_custom_aspect_height"`

	MinBorder          float64 `json:"min_border" yaml:"min_border"`
	LastValidMinBorder float64 `json:"last_valid_min_border" yaml:"last_valid_min_border"`

	IsLandscape    bool `json:"is_landscape" yaml:"is_landscape"`
	IsRatioFlipped bool `json:"is_ratio_flipped" yaml:"is_ratio_flipped"`

	EnableOffset     bool    `json:"enable_offset" yaml:"enable_offset"`
	HorizontalOffset float64 `json:"horizontal_offset" yaml:"horizontal_offset"`
	VerticalOffset   float64 `json:"vertical_offset" yaml:"vertical_offset"`
	IgnoreMinBorder  bool    `json:"ignore_min_border" yaml:"ignore_min_border"`

	ShowBlades        bool `json:"show_blades" yaml:"show_blades"`
	ShowBladeReadings bool `json:"show_blade_readings" yaml:"show_blade_readings"`
}

// FromState extracts the persistable subset of s.
func FromState(s calculator.State) Persistable {
	return Persistable{
		PaperSize:                   s.PaperSize,
		AspectRatio:                 s.AspectRatio,
		CustomPaperWidth:            s.CustomPaperWidth,
		CustomPaperHeight:           s.CustomPaperHeight,
		CustomAspectWidth:           s.CustomAspectWidth,
		CustomAspectHeight:          s.CustomAspectHeight,
		LastValidCustomPaperWidth:   s.LastValidCustomPaperWidth,
		LastValidCustomPaperHeight:  s.LastValidCustomPaperHeight,
		LastValidCustomAspectWidth:  s.LastValidCustomAspectWidth,
		LastValidCustomAspectHeight: s.LastValidCustomAspectHeight,
		MinBorder:                   s.MinBorder,
		LastValidMinBorder:          s.LastValidMinBorder,
		IsLandscape:                 s.IsLandscape,
		IsRatioFlipped:              s.IsRatioFlipped,
		EnableOffset:                s.EnableOffset,
		HorizontalOffset:            s.HorizontalOffset,
		VerticalOffset:              s.VerticalOffset,
		IgnoreMinBorder:             s.IgnoreMinBorder,
		ShowBlades:                  s.ShowBlades,
		ShowBladeReadings:           s.ShowBladeReadings,
	}
}

// Apply overlays p onto base, keeping base's transient fields.
func (p Persistable) Apply(base calculator.State) calculator.State {
	base.PaperSize = p.PaperSize
	base.AspectRatio = p.AspectRatio
	base.CustomPaperWidth = p.CustomPaperWidth
	base.CustomPaperHeight = p.CustomPaperHeight
	base.CustomAspectWidth = p.CustomAspectWidth
	base.CustomAspectHeight = p.CustomAspectHeight
	base.LastValidCustomPaperWidth = p.LastValidCustomPaperWidth
	base.LastValidCustomPaperHeight = p.LastValidCustomPaperHeight
	base.LastValidCustomAspectWidth = p.LastValidCustomAspectWidth
	base.LastValidCustomAspectHeight = p.LastValidCustomAspectHeight
	base.MinBorder = p.MinBorder
	base.LastValidMinBorder = p.LastValidMinBorder
	base.IsLandscape = p.IsLandscape
	base.IsRatioFlipped = p.IsRatioFlipped
	base.EnableOffset = p.EnableOffset
	base.HorizontalOffset = p.HorizontalOffset
	base.VerticalOffset = p.VerticalOffset
	base.IgnoreMinBorder = p.IgnoreMinBorder
	base.ShowBlades = p.ShowBlades
	base.ShowBladeReadings = p.ShowBladeReadings
	return base
}

// Defaults returns the persistable subset of the default state.
func Defaults() Persistable { return FromState(calculator.DefaultState()) }

// Action returns a transition that loads p into a running machine.
func (p Persistable) Action() calculator.Action {
	s := p.Apply(calculator.DefaultState())
	fields := make(map[calculator.Field]any, len(calculator.Fields()))
	for _, f := range calculator.Fields() {
		v, _ := s.Get(f)
		fields[f] = v
	}
	return calculator.BatchUpdate{Fields: fields}
}
