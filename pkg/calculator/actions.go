package calculator

import (
	"slices"

	"github.com/matzehuels/easel/pkg/errors"
	"github.com/matzehuels/easel/pkg/paper"
)

// Action names, reported to hooks and logs.
const (
	ActionSetField          = "set-field"
	ActionSetPaperSize      = "set-paper-size"
	ActionSetAspectRatio    = "set-aspect-ratio"
	ActionBatchUpdate       = "batch-update"
	ActionResetToDefaults   = "reset-to-defaults"
	ActionSetImagePlacement = "set-image-placement"
	ActionSetActivePanel    = "set-active-panel"
)

// Action is a state transition. The set is closed: only types in this
// package implement it.
type Action interface {
	Name() string
	apply(s *State, defaults State) error
}

// SetField overwrites a single field unconditionally.
type SetField struct {
	Field Field
	Value any
}

func (SetField) Name() string { return ActionSetField }

func (a SetField) apply(s *State, _ State) error {
	return s.set(a.Field, a.Value)
}

// SetPaperSize selects a paper. Choosing the custom sentinel resets the
// orientation and ratio flip to their defaults.
type SetPaperSize struct {
	Value string
}

func (SetPaperSize) Name() string { return ActionSetPaperSize }

func (a SetPaperSize) apply(s *State, defaults State) error {
	s.PaperSize = a.Value
	if a.Value == paper.Custom {
		s.IsLandscape = defaults.IsLandscape
		s.IsRatioFlipped = defaults.IsRatioFlipped
	}
	return nil
}

// SetAspectRatio selects a ratio and resets the ratio flip.
type SetAspectRatio struct {
	Value string
}

func (SetAspectRatio) Name() string { return ActionSetAspectRatio }

func (a SetAspectRatio) apply(s *State, defaults State) error {
	s.AspectRatio = a.Value
	s.IsRatioFlipped = defaults.IsRatioFlipped
	return nil
}

// BatchUpdate sets several fields at once. Either every field is applied or
// none is.
type BatchUpdate struct {
	Fields map[Field]any
}

func (BatchUpdate) Name() string { return ActionBatchUpdate }

func (a BatchUpdate) apply(s *State, _ State) error {
	keys := make([]Field, 0, len(a.Fields))
	for f := range a.Fields {
		keys = append(keys, f)
	}
	slices.Sort(keys)
	for _, f := range keys {
		if err := s.set(f, a.Fields[f]); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "batch update rejected")
		}
	}
	return nil
}

// ResetToDefaults replaces the whole document with the defaults.
type ResetToDefaults struct{}

func (ResetToDefaults) Name() string { return ActionResetToDefaults }

func (ResetToDefaults) apply(s *State, defaults State) error {
	*s = defaults
	return nil
}

// SetImagePlacement moves the transient preview image.
type SetImagePlacement struct {
	X, Y  float64
	Scale float64
}

func (SetImagePlacement) Name() string { return ActionSetImagePlacement }

func (a SetImagePlacement) apply(s *State, _ State) error {
	if a.Scale <= 0 {
		return errors.New(errors.ErrCodeInvalidValue, "image scale must be positive, got %g", a.Scale)
	}
	s.ImageX, s.ImageY, s.ImageScale = a.X, a.Y, a.Scale
	return nil
}

// SetActivePanel records which settings panel is open.
type SetActivePanel struct {
	Panel string
}

func (SetActivePanel) Name() string { return ActionSetActivePanel }

func (a SetActivePanel) apply(s *State, _ State) error {
	s.ActivePanel = a.Panel
	return nil
}
