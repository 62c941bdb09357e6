// =============================================================================
// Forest Inventory Processor - Size-Class Partitioning (Sturges' Rule)
// =============================================================================
//
// Diameter and height values of the reference stratum are bucketed into a
// fixed number of equal-width classes. The class count follows Sturges' rule:
//
//   k = max(1, round(1 + 3.322 x log10(n)))
//
// where n is the number of non-missing values. The lower bound is the greater
// of a domain floor (10 cm for diameter, 1.5 m for height) and the observed
// minimum; the upper bound is the observed maximum, nudged upward by an
// epsilon when it would not exceed the lower bound. The partition is
// left-inclusive, with the right edge inclusive on the last class.
//
// =============================================================================

package inventory

import (
	"fmt"
	"math"
)

// degenerateRangeEpsilon widens a zero-width partition so that the single
// observed value still lands in a class.
const degenerateRangeEpsilon = 1e-6

// SturgesClassCount returns the Sturges class count for n values.
func SturgesClassCount(n int) int {
	if n < 1 {
		return 0
	}
	k := int(math.Round(1 + 3.322*math.Log10(float64(n))))
	if k < 1 {
		k = 1
	}
	return k
}

// SturgesBins computes the class edges for the given values. Only defined
// values participate; NaNs are ignored. Returns nil when fewer than 2 usable
// values exist, mirroring the "undefined partition" rule.
//
// The returned slice has k+1 monotonically increasing edges.
func SturgesBins(values []float64, floor float64) []float64 {
	var usable []float64
	for _, v := range values {
		if defined(v) {
			usable = append(usable, v)
		}
	}
	if len(usable) < 2 {
		return nil
	}

	min, max := usable[0], usable[0]
	for _, v := range usable[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	lower := math.Max(floor, min)
	upper := max
	if upper <= lower {
		upper = lower + degenerateRangeEpsilon
	}

	k := SturgesClassCount(len(usable))
	width := (upper - lower) / float64(k)

	edges := make([]float64, k+1)
	for i := 0; i <= k; i++ {
		edges[i] = lower + float64(i)*width
	}
	// Guard against floating drift on the last edge.
	edges[k] = upper
	return edges
}

// ClassLabel returns the label of the class containing v, or "-" when the
// partition is undefined or v falls outside it. Classes are left-inclusive;
// the last class also includes its right edge.
func ClassLabel(v float64, edges []float64) string {
	if edges == nil || !defined(v) {
		return "-"
	}
	k := len(edges) - 1
	if v < edges[0] || v > edges[k] {
		return "-"
	}
	for i := 0; i < k; i++ {
		if v < edges[i+1] || i == k-1 {
			return formatClass(edges[i], edges[i+1])
		}
	}
	return "-"
}

// formatClass renders one class interval, e.g. "10.0-15.7".
func formatClass(lo, hi float64) string {
	return fmt.Sprintf("%.1f-%.1f", lo, hi)
}
