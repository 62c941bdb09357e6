// =============================================================================
// Forest Inventory Processor - Dendrometric Functions
// =============================================================================
//
// Pure, closed-form transformations of a single tree measurement:
//
//   DAP (cm)  = CAP / π
//   g   (m²)  = π x (DAP/200)²
//   Vol (m³)  = 1.3332 x (DAP/100)^2.0836 x h^0.732
//
// The volume model is a fixed taper-equation-style fit; its coefficients and
// exponents are domain constants, not configuration.
//
// =============================================================================

package inventory

import (
	"math"
	"strconv"
	"strings"
)

// Volume model constants.
const (
	volumeCoefficient = 1.3332
	volumeDiameterExp = 2.0836
	volumeHeightExp   = 0.732
	squareMetersPerHa = 10000.0
)

// DiameterFromCircumference derives DAP (cm) from CAP (cm).
// Returns NaN when the circumference is undefined or non-positive.
func DiameterFromCircumference(cap float64) float64 {
	if !defined(cap) || cap <= 0 {
		return undefined()
	}
	return cap / math.Pi
}

// BasalArea computes g (m²) from DAP (cm). The /200 converts the diameter
// in cm to a radius in m, so this is exactly π·r².
// Returns NaN when the diameter is undefined or non-positive.
func BasalArea(dapCm float64) float64 {
	if !defined(dapCm) || dapCm <= 0 {
		return undefined()
	}
	return math.Pi * math.Pow(dapCm/200.0, 2)
}

// TreeVolume computes the individual tree volume (m³) from DAP (cm) and a
// height (m). Returns NaN when either input is undefined or non-positive.
func TreeVolume(dapCm, heightM float64) float64 {
	if !defined(dapCm) || !defined(heightM) || dapCm <= 0 || heightM <= 0 {
		return undefined()
	}
	return volumeCoefficient *
		math.Pow(dapCm/100.0, volumeDiameterExp) *
		math.Pow(heightM, volumeHeightExp)
}

// ExpansionFactor converts a per-plot measurement to a per-hectare estimate:
// 10000 / (plot area x sampled plot count). Returns NaN when the plot area
// is unknown/non-positive or no plots were sampled.
func ExpansionFactor(plotAreaM2 float64, plotCount int) float64 {
	if !defined(plotAreaM2) || plotAreaM2 <= 0 || plotCount <= 0 {
		return undefined()
	}
	return squareMetersPerHa / (plotAreaM2 * float64(plotCount))
}

// parseNumber coerces a raw cell to float64. Blank or non-numeric cells
// become NaN (row-level invalid, never fatal). A decimal comma is accepted
// because field sheets are commonly filled in pt-BR locale.
func parseNumber(raw string) float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return undefined()
	}
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return undefined()
	}
	return v
}

// NormalizeLevel canonicalizes a stratum label for grouping and lookups:
// surrounding whitespace is stripped and the label is upper-cased.
func NormalizeLevel(level string) string {
	return strings.ToUpper(strings.TrimSpace(level))
}
