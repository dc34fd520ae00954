package payments

import "math"

// MajorToMinor converts a decimal major-currency amount (e.g. 250.00 INR)
// to minor units (25000 paise), rounding half away from zero to absorb
// float noise in client-submitted totals.
func MajorToMinor(major float64) int64 {
	return int64(math.Round(major * 100))
}

// MinorToMajor converts minor units back to a major-currency amount
// for display (25000 -> 250.00).
func MinorToMajor(minor int64) float64 {
	return float64(minor) / 100
}
