package errors

import (
	"math"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxPresetNameLength bounds preset names so they fit in a share token.
const MaxPresetNameLength = 64

// MaxDimension is the largest paper or ratio side accepted, in inches.
const MaxDimension = 120.0

// MaxTokenLength bounds share tokens; anything longer is not ours.
const MaxTokenLength = 4096

// ValidatePresetName validates a user-supplied preset name.
//
// The rules are intentionally conservative:
//   - No empty or whitespace-only names
//   - Valid UTF-8 without control characters
//   - Maximum length of MaxPresetNameLength runes
func ValidatePresetName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidPreset, "preset name cannot be empty")
	}

	if !utf8.ValidString(name) {
		return New(ErrCodeInvalidPreset, "preset name is not valid UTF-8")
	}

	if len([]rune(name)) > MaxPresetNameLength {
		return New(ErrCodeInvalidPreset, "preset name too long (max %d characters)", MaxPresetNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPreset, "preset name contains invalid control characters")
		}
	}

	return nil
}

// ValidateDimension checks that v is a usable positive length in inches.
func ValidateDimension(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(ErrCodeInvalidValue, "%s must be a finite number", field)
	}
	if v <= 0 {
		return New(ErrCodeInvalidValue, "%s must be positive, got %g", field, v)
	}
	if v > MaxDimension {
		return New(ErrCodeInvalidValue, "%s exceeds %gin", field, MaxDimension)
	}
	return nil
}

// ValidateText checks that s survives a JSON round trip unchanged.
func ValidateText(field, s string) error {
	if !utf8.ValidString(s) {
		return New(ErrCodeInvalidValue, "%s is not valid UTF-8", field)
	}
	return nil
}

// ValidateFinite checks that v is neither NaN nor infinite.
func ValidateFinite(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(ErrCodeInvalidValue, "%s must be a finite number", field)
	}
	return nil
}

// tokenRegex matches unpadded URL-safe base64.
var tokenRegex = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidateToken performs the cheap syntactic checks on a share token before
// any decoding is attempted.
func ValidateToken(token string) error {
	if token == "" {
		return New(ErrCodeInvalidToken, "share token cannot be empty")
	}

	if len(token) > MaxTokenLength {
		return New(ErrCodeInvalidToken, "share token too long (max %d characters)", MaxTokenLength)
	}

	if !tokenRegex.MatchString(token) {
		return New(ErrCodeInvalidToken, "share token contains invalid characters")
	}

	return nil
}
