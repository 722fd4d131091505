package geometry

import (
	"fmt"
	"math"
)

// ReadingDenominator is the finest graduation on a typical easel scale.
const ReadingDenominator = 16

// Fraction formats v inches as a mixed fraction rounded to 1/denom, the way
// blade scales are marked: 2.6667 -> "2 11/16", 0.5 -> "1/2", 3 -> "3".
func Fraction(v float64, denom int) string {
	if denom <= 0 {
		denom = ReadingDenominator
	}
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	n := int(math.Round(v * float64(denom)))
	whole, num := n/denom, n%denom
	if num == 0 {
		if whole == 0 {
			return "0"
		}
		return fmt.Sprintf("%s%d", sign, whole)
	}
	g := gcd(num, denom)
	num, d := num/g, denom/g
	if whole == 0 {
		return fmt.Sprintf("%s%d/%d", sign, num, d)
	}
	return fmt.Sprintf("%s%d %d/%d", sign, whole, num, d)
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// Readings are blade positions formatted for an easel scale.
type Readings struct {
	Left   string `json:"left"`
	Right  string `json:"right"`
	Top    string `json:"top"`
	Bottom string `json:"bottom"`
}

// Readings formats the blades to the nearest 1/16in.
func (r Result) Readings() Readings {
	return Readings{
		Left:   Fraction(r.Blades.Left, ReadingDenominator),
		Right:  Fraction(r.Blades.Right, ReadingDenominator),
		Top:    Fraction(r.Blades.Top, ReadingDenominator),
		Bottom: Fraction(r.Blades.Bottom, ReadingDenominator),
	}
}
