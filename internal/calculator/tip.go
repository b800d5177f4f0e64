package calculator

import (
	"math"
	"strconv"
	"strings"
)

const (
	// TipThreshold is the bill amount at or below which no tip accrues.
	// Empty or unparseable bill text parses to zero and lands under it.
	TipThreshold = 1.0

	// MinSplit is the smallest party size a split can be divided by.
	MinSplit = 1

	// SliderSteps is the number of equal intervals the tip slider snaps to
	// across [0, 1].
	SliderSteps = 6
)

// ComputeTip returns the tip owed on bill at tipPercent percent.
// Bills of TipThreshold or less never accrue a tip. tipPercent is not
// range-checked.
func ComputeTip(bill float64, tipPercent int) float64 {
	if bill > TipThreshold {
		return bill * float64(tipPercent) / 100
	}
	return 0
}

// ComputePerPerson returns each person's share of bill plus its tip.
// The caller guarantees splitCount >= MinSplit; a zero split yields an
// infinite or NaN result.
func ComputePerPerson(bill float64, splitCount int, tipPercent int) float64 {
	tip := ComputeTip(bill, tipPercent)
	return (bill + tip) / float64(splitCount)
}

// TipPercent converts a slider position to a whole tip percentage.
// Positions outside [0, 1] are clamped first.
func TipPercent(position float64) int {
	return int(math.Round(clampUnit(position) * 100))
}

// SnapSlider moves position to the nearest of steps equal intervals across
// [0, 1]. steps <= 0 leaves the slider continuous and only clamps.
func SnapSlider(position float64, steps int) float64 {
	p := clampUnit(position)
	if steps <= 0 {
		return p
	}
	return math.Round(p*float64(steps)) / float64(steps)
}

// ParseBill parses free-text bill input. Empty, non-numeric, non-finite
// and negative input all coerce to zero.
func ParseBill(text string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// ClampSplit raises n to MinSplit if it is smaller.
func ClampSplit(n int) int {
	if n < MinSplit {
		return MinSplit
	}
	return n
}

func clampUnit(p float64) float64 {
	switch {
	case math.IsNaN(p), p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}
