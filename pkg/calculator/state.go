package calculator

import (
	"fmt"
	"math"
	"slices"

	"github.com/matzehuels/easel/pkg/errors"
	"github.com/matzehuels/easel/pkg/paper"
)

// State is the calculator document. Text fields hold whatever the user last
// typed; the LastValid shadows always hold a usable positive number and are
// what the engine computes with.
type State struct {
	PaperSize   string
	AspectRatio string

	CustomPaperWidth   string
	CustomPaperHeight  string
	CustomAspectWidth  string
	CustomAspectHeight string

	LastValidCustomPaperWidth   float64
	LastValidCustomPaperHeight  float64
	LastValidCustomAspectWidth  float64
	LastValidCustomAspectHeight float64

	MinBorder          float64
	LastValidMinBorder float64

	IsLandscape    bool
	IsRatioFlipped bool

	EnableOffset     bool
	HorizontalOffset float64
	VerticalOffset   float64
	IgnoreMinBorder  bool

	ShowBlades        bool
	ShowBladeReadings bool

	// Transient image placement; never persisted.
	ImageX      float64
	ImageY      float64
	ImageScale  float64
	ActivePanel string
}

// DefaultState returns the canonical default document.
func DefaultState() State {
	return State{
		PaperSize:   paper.DefaultPaperValue,
		AspectRatio: paper.DefaultRatioValue,

		CustomPaperWidth:   "8",
		CustomPaperHeight:  "10",
		CustomAspectWidth:  "3",
		CustomAspectHeight: "2",

		LastValidCustomPaperWidth:   8,
		LastValidCustomPaperHeight:  10,
		LastValidCustomAspectWidth:  3,
		LastValidCustomAspectHeight: 2,

		MinBorder:          0.5,
		LastValidMinBorder: 0.5,

		ShowBlades:        true,
		ShowBladeReadings: true,

		ImageScale: 1,
	}
}

// CustomPaper returns the last valid custom paper size.
func (s State) CustomPaper() paper.Size {
	return paper.Size{Width: s.LastValidCustomPaperWidth, Height: s.LastValidCustomPaperHeight}
}

// CustomRatio returns the last valid custom ratio.
func (s State) CustomRatio() paper.Size {
	return paper.Size{Width: s.LastValidCustomAspectWidth, Height: s.LastValidCustomAspectHeight}
}

// ResolveInput extracts the fields the dimension resolver depends on.
func (s State) ResolveInput() paper.Input {
	return paper.Input{
		PaperSize:      s.PaperSize,
		AspectRatio:    s.AspectRatio,
		CustomPaper:    s.CustomPaper(),
		CustomRatio:    s.CustomRatio(),
		IsLandscape:    s.IsLandscape,
		IsRatioFlipped: s.IsRatioFlipped,
	}
}

// =============================================================================
// Fields
// =============================================================================

// Field names a State field. Names match the persisted document keys.
type Field string

const (
	FieldPaperSize   Field = "paper_size"
	FieldAspectRatio Field = "aspect_ratio"

	FieldCustomPaperWidth   Field = "custom_paper_width"
	FieldCustomPaperHeight  Field = "custom_paper_height"
	FieldCustomAspectWidth  Field = "custom_aspect_width"
	FieldCustomAspectHeight Field = "custom_aspect_height"

	FieldLastValidCustomPaperWidth   Field = "last_valid_custom_paper_width"
	FieldLastValidCustomPaperHeight  Field = "last_valid_custom_paper_height"
	FieldLastValidCustomAspectWidth  Field = "last_valid_custom_aspect_width"
	FieldLastValidCustomAspectHeight Field = "last_valid_custom_aspect_height"

	FieldMinBorder          Field = "min_border"
	FieldLastValidMinBorder Field = "last_valid_min_border"

	FieldIsLandscape    Field = "is_landscape"
	FieldIsRatioFlipped Field = "is_ratio_flipped"

	FieldEnableOffset     Field = "enable_offset"
	FieldHorizontalOffset Field = "horizontal_offset"
	FieldVerticalOffset   Field = "vertical_offset"
	FieldIgnoreMinBorder  Field = "ignore_min_border"

	FieldShowBlades        Field = "show_blades"
	FieldShowBladeReadings Field = "show_blade_readings"
)

// Kind is the value type a Field accepts.
type Kind int

const (
	KindString Kind = iota
	KindFloat
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindFloat:
		return "number"
	case KindBool:
		return "bool"
	}
	return "unknown"
}

type fieldSpec struct {
	kind Kind
	str  func(*State) *string
	num  func(*State) *float64
	flag func(*State) *bool
}

func strField(f func(*State) *string) fieldSpec  { return fieldSpec{kind: KindString, str: f} }
func numField(f func(*State) *float64) fieldSpec { return fieldSpec{kind: KindFloat, num: f} }
func boolField(f func(*State) *bool) fieldSpec   { return fieldSpec{kind: KindBool, flag: f} }

var fields = map[Field]fieldSpec{
	FieldPaperSize:   strField(func(s *State) *string { return &s.PaperSize }),
	FieldAspectRatio: strField(func(s *State) *string { return &s.AspectRatio }),

	FieldCustomPaperWidth:   strField(func(s *State) *string { return &s.CustomPaperWidth }),
	FieldCustomPaperHeight:  strField(func(s *State) *string { return &s.CustomPaperHeight }),
	FieldCustomAspectWidth:  strField(func(s *State) *string { return &s.CustomAspectWidth }),
	FieldCustomAspectHeight: strField(func(s *State) *string { return &s.CustomAspectHeight }),

	FieldLastValidCustomPaperWidth:   numField(func(s *State) *float64 { return &s.LastValidCustomPaperWidth }),
	FieldLastValidCustomPaperHeight:  numField(func(s *State) *float64 { return &s.LastValidCustomPaperHeight }),
	FieldLastValidCustomAspectWidth:  numField(func(s *State) *float64 { return &s.LastValidCustomAspectWidth }),
	FieldLastValidCustomAspectHeight: numField(func(s *State) *float64 { return &s.LastValidCustomAspectHeight }),

	FieldMinBorder:          numField(func(s *State) *float64 { return &s.MinBorder }),
	FieldLastValidMinBorder: numField(func(s *State) *float64 { return &s.LastValidMinBorder }),

	FieldIsLandscape:    boolField(func(s *State) *bool { return &s.IsLandscape }),
	FieldIsRatioFlipped: boolField(func(s *State) *bool { return &s.IsRatioFlipped }),

	FieldEnableOffset:     boolField(func(s *State) *bool { return &s.EnableOffset }),
	FieldHorizontalOffset: numField(func(s *State) *float64 { return &s.HorizontalOffset }),
	FieldVerticalOffset:   numField(func(s *State) *float64 { return &s.VerticalOffset }),
	FieldIgnoreMinBorder:  boolField(func(s *State) *bool { return &s.IgnoreMinBorder }),

	FieldShowBlades:        boolField(func(s *State) *bool { return &s.ShowBlades }),
	FieldShowBladeReadings: boolField(func(s *State) *bool { return &s.ShowBladeReadings }),
}

// Fields returns every settable field name, sorted.
func Fields() []Field {
	out := make([]Field, 0, len(fields))
	for f := range fields {
		out = append(out, f)
	}
	slices.Sort(out)
	return out
}

// KindOf returns the value kind for f.
func KindOf(f Field) (Kind, bool) {
	spec, ok := fields[f]
	return spec.kind, ok
}

// Get reads field f from s.
func (s State) Get(f Field) (any, bool) {
	spec, ok := fields[f]
	if !ok {
		return nil, false
	}
	switch spec.kind {
	case KindString:
		return *spec.str(&s), true
	case KindFloat:
		return *spec.num(&s), true
	default:
		return *spec.flag(&s), true
	}
}

// set writes v into field f, checking its type.
func (s *State) set(f Field, v any) error {
	spec, ok := fields[f]
	if !ok {
		return errors.New(errors.ErrCodeInvalidField, "unknown field %q", f)
	}
	switch spec.kind {
	case KindString:
		str, ok := v.(string)
		if !ok {
			return typeError(f, spec.kind, v)
		}
		*spec.str(s) = str
	case KindFloat:
		n, ok := toFloat(v)
		if !ok {
			return typeError(f, spec.kind, v)
		}
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return errors.New(errors.ErrCodeInvalidValue, "field %q must be finite", f)
		}
		*spec.num(s) = n
	case KindBool:
		b, ok := v.(bool)
		if !ok {
			return typeError(f, spec.kind, v)
		}
		*spec.flag(s) = b
	}
	return nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func typeError(f Field, k Kind, v any) error {
	return errors.New(errors.ErrCodeInvalidValue, "field %q expects %s, got %s", f, k, fmt.Sprintf("%T", v))
}
