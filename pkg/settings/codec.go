package settings

import (
	"bytes"
	"encoding/json"

	"github.com/matzehuels/easel/pkg/errors"
)

// Version is the current document version.
const Version = 1

// document is the on-disk shape: the version key next to the flattened
// settings.
type document struct {
	Version int `json:"version"`
	Persistable
}

// Encode serialises p as a versioned JSON document.
func Encode(p Persistable) ([]byte, error) {
	if err := Validate(p); err != nil {
		return nil, err
	}
	data, err := json.Marshal(document{Version: Version, Persistable: p})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode settings")
	}
	return data, nil
}

// Decode parses a document produced by Encode. Missing keys take default
// values and unknown keys are ignored.
func Decode(data []byte) (Persistable, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return Persistable{}, errors.New(errors.ErrCodeInvalidDocument, "empty settings document")
	}

	var header struct {
		Version *int `json:"version"`
	}
	if err := json.Unmarshal(data, &header); err != nil {
		return Persistable{}, errors.Wrap(errors.ErrCodeInvalidDocument, err, "malformed settings document")
	}
	if header.Version == nil {
		return Persistable{}, errors.New(errors.ErrCodeInvalidDocument, "settings document has no version")
	}
	if *header.Version != Version {
		return Persistable{}, errors.New(errors.ErrCodeUnsupportedVersion,
			"settings version %d is not supported (want %d)", *header.Version, Version)
	}

	doc := document{Persistable: Defaults()}
	if err := json.Unmarshal(data, &doc); err != nil {
		return Persistable{}, errors.Wrap(errors.ErrCodeInvalidDocument, err, "malformed settings document")
	}
	if err := Validate(doc.Persistable); err != nil {
		return Persistable{}, err
	}
	return doc.Persistable, nil
}

// Validate checks the invariants a decoded document must hold: the
// last-valid shadows are usable, every number is finite and every string is
// valid UTF-8.
func Validate(p Persistable) error {
	texts := []struct {
		name string
		v    string
	}{
		{"paper_size", p.PaperSize},
		{"aspect_ratio", p.AspectRatio},
		{"custom_paper_width", p.CustomPaperWidth},
		{"custom_paper_height", p.CustomPaperHeight},
		{"custom_aspect_width", p.CustomAspectWidth},
		{"custom_aspect_height", p.CustomAspectHeight},
	}
	for _, f := range texts {
		if err := errors.ValidateText(f.name, f.v); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidDocument, err, "invalid settings")
		}
	}

	dims := []struct {
		name string
		v    float64
	}{
		{"last_valid_custom_paper_width", p.LastValidCustomPaperWidth},
		{"last_valid_custom_paper_height", p.LastValidCustomPaperHeight},
		{"last_valid_custom_aspect_width", p.LastValidCustomAspectWidth},
		{"last_valid_custom_aspect_height", p.LastValidCustomAspectHeight},
	}
	for _, d := range dims {
		if err := errors.ValidateDimension(d.name, d.v); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidDocument, err, "invalid settings")
		}
	}

	finite := []struct {
		name string
		v    float64
	}{
		{"min_border", p.MinBorder},
		{"last_valid_min_border", p.LastValidMinBorder},
		{"horizontal_offset", p.HorizontalOffset},
		{"vertical_offset", p.VerticalOffset},
	}
	for _, f := range finite {
		if err := errors.ValidateFinite(f.name, f.v); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidDocument, err, "invalid settings")
		}
	}
	if p.LastValidMinBorder < 0 {
		return errors.New(errors.ErrCodeInvalidDocument, "last_valid_min_border cannot be negative")
	}
	if p.PaperSize == "" || p.AspectRatio == "" {
		return errors.New(errors.ErrCodeInvalidDocument, "paper_size and aspect_ratio are required")
	}
	return nil
}
