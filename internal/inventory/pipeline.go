// =============================================================================
// Forest Inventory Processor - Transform Pipeline
// =============================================================================
//
// This file contains the core of the system: a pure, stateless, single-pass
// transformation of the raw inventory table into the augmented per-row table
// and the per-level summary.
//
// PIPELINE STAGES (fixed order; every stage depends only on earlier ones):
//   1. Diameter derivation    (DAP = CAP/π when no diameter column)
//   2. Basal area             (g = π x (DAP/200)²)
//   3. Individual tree volume (prefer HT, fall back to HC)
//   4. Expansion factor       (10000 / (plot area x distinct plot count))
//   5. Per-hectare indicators (ind, g, vol x expansion factor)
//   6. Size classes           (Sturges partition of the reference level)
//   7. Standardized score     ((mean(vol) - vol_i) / sum(vol))
//   8. Level aggregation      (see summary.go)
//
// The pipeline never mutates its input and holds no state between calls:
// running it twice on the same table yields bit-identical results.
//
// =============================================================================

package inventory

import "sort"

// Process runs the full transform pipeline over the input table.
//
// Fatal conditions (ErrEmptyInput, AllValuesInvalidError) are reported before
// any row is emitted. Row-level problems degrade to NaN fields on that row
// and propagate silently to every downstream derived value.
func Process(in Input, params Params) (*Result, error) {
	if len(in.Rows) == 0 {
		return nil, ErrEmptyInput
	}

	rows := make([]Row, len(in.Rows))

	// =========================================================================
	// STAGES 1-3: PER-ROW DENDROMETRY
	// =========================================================================
	// Coerce measurements, derive the diameter, then basal area and volumes.

	diameterValid := 0
	heightValid := 0

	for i, raw := range in.Rows {
		r := Row{
			SourceRow: raw.SourceRow,
			Level:     NormalizeLevel(raw.Level),
			Plot:      raw.Plot,
			Species:   raw.Species,
			Count:     parseNumber(raw.Count),
		}

		r.Circumference = parseNumber(raw.Circumference)
		if in.HasDiameter {
			r.Diameter = parseNumber(raw.Diameter)
		} else {
			r.Diameter = DiameterFromCircumference(r.Circumference)
		}
		if defined(r.Diameter) {
			diameterValid++
		}

		r.CommercialHeight = parseNumber(raw.CommercialHeight)
		r.TotalHeight = parseNumber(raw.TotalHeight)
		if defined(r.TotalHeight) || defined(r.CommercialHeight) {
			heightValid++
		}

		r.BasalArea = BasalArea(r.Diameter)
		r.VolumeTotalH = TreeVolume(r.Diameter, r.TotalHeight)
		r.VolumeCommercialH = TreeVolume(r.Diameter, r.CommercialHeight)
		r.Volume = r.VolumeTotalH
		if !defined(r.Volume) {
			r.Volume = r.VolumeCommercialH
		}

		rows[i] = r
	}

	// Every cell of a required measurement column failing coercion is a
	// fatal input error, not a row-level one.
	if diameterValid == 0 {
		col := "circumference"
		if in.HasDiameter {
			col = "diameter"
		}
		return nil, &AllValuesInvalidError{Column: col}
	}
	if heightValid == 0 {
		col := "total_height"
		if !in.HasTotalHeight {
			col = "commercial_height"
		}
		return nil, &AllValuesInvalidError{Column: col}
	}

	// =========================================================================
	// STAGE 4: EXPANSION FACTOR
	// =========================================================================
	// One factor per level, from the nominal plot area and the number of
	// distinct sampled plots. Without a plot column the row count stands in
	// for the plot count.

	plotCounts := countPlots(rows, in.HasPlot)
	factors := make(map[string]float64, len(plotCounts))
	for level, n := range plotCounts {
		area, ok := params.PlotAreas[level]
		if !ok {
			factors[level] = undefined()
			continue
		}
		factors[level] = ExpansionFactor(area, n)
	}

	regen := make(map[string]bool, len(params.RegenerationLevels))
	for _, l := range params.RegenerationLevels {
		regen[NormalizeLevel(l)] = true
	}

	// =========================================================================
	// STAGE 5: PER-HECTARE INDICATORS
	// =========================================================================

	for i := range rows {
		r := &rows[i]
		fe := factors[r.Level]
		r.ExpansionFactor = fe

		if !defined(fe) {
			r.IndPerHa = undefined()
			r.BasalAreaPerHa = undefined()
			r.VolumePerHa = undefined()
			continue
		}

		// Regeneration rows stand for several individuals; anywhere else one
		// row is one tree. A blank count on a regeneration row counts as 0.
		if regen[r.Level] && in.HasCount {
			q := r.Count
			if !defined(q) {
				q = 0
			}
			r.IndPerHa = q * fe
		} else {
			r.IndPerHa = fe
		}
		r.BasalAreaPerHa = r.BasalArea * fe
		r.VolumePerHa = r.Volume * fe
	}

	// =========================================================================
	// STAGE 6: SIZE CLASSES (REFERENCE LEVEL PARTITION)
	// =========================================================================
	// Class edges come from the reference stratum only; the labels are then
	// applied to every row whose value falls inside the partition.

	reference := NormalizeLevel(params.ReferenceLevel)

	var refDiameters, refHeights []float64
	for i := range rows {
		if rows[i].Level != reference {
			continue
		}
		refDiameters = append(refDiameters, rows[i].Diameter)
		refHeights = append(refHeights, classHeight(&rows[i], in))
	}

	diameterBins := SturgesBins(refDiameters, params.DiameterClassFloor)
	heightBins := SturgesBins(refHeights, params.HeightClassFloor)

	for i := range rows {
		rows[i].DiameterClass = ClassLabel(rows[i].Diameter, diameterBins)
		rows[i].HeightClass = ClassLabel(classHeight(&rows[i], in), heightBins)
	}

	// =========================================================================
	// STAGE 7: STANDARDIZED DEVIATION SCORE
	// =========================================================================
	// z_i = (mean(vol) - vol_i) / sum(vol) over the base volume of all rows,
	// skipping undefined volumes for the mean and sum.

	var volSum float64
	volCount := 0
	for i := range rows {
		if defined(rows[i].Volume) {
			volSum += rows[i].Volume
			volCount++
		}
	}

	for i := range rows {
		r := &rows[i]
		if volCount == 0 || volSum == 0 || !defined(r.Volume) {
			r.ZScore = undefined()
			continue
		}
		mean := volSum / float64(volCount)
		r.ZScore = (mean - r.Volume) / volSum
	}

	// =========================================================================
	// STAGE 8: LEVEL AGGREGATION
	// =========================================================================

	levels := summarizeLevels(rows, plotCounts, factors, regen, in.HasCount, params.AreaHa)

	return &Result{
		Rows:         rows,
		Levels:       levels,
		DiameterBins: diameterBins,
		HeightBins:   heightBins,
	}, nil
}

// classHeight picks the height value used for height classification: the
// total height when that column exists, otherwise the commercial height.
func classHeight(r *Row, in Input) float64 {
	if in.HasTotalHeight {
		return r.TotalHeight
	}
	return r.CommercialHeight
}

// countPlots returns the distinct sampled-plot count per level. When no plot
// column exists, every row counts as its own plot observation.
func countPlots(rows []Row, hasPlot bool) map[string]int {
	counts := make(map[string]int)
	if !hasPlot {
		for i := range rows {
			counts[rows[i].Level]++
		}
		return counts
	}

	seen := make(map[string]map[string]bool)
	for i := range rows {
		level := rows[i].Level
		plot := rows[i].Plot
		if plot == "" {
			continue
		}
		if seen[level] == nil {
			seen[level] = make(map[string]bool)
		}
		seen[level][plot] = true
	}
	for level, plots := range seen {
		counts[level] = len(plots)
	}
	// Levels whose rows all lack a plot id still appear, with zero plots.
	for i := range rows {
		if _, ok := counts[rows[i].Level]; !ok {
			counts[rows[i].Level] = 0
		}
	}
	return counts
}

// sortedLevels returns the distinct level labels in ascending order.
func sortedLevels(rows []Row) []string {
	seen := make(map[string]bool)
	var levels []string
	for i := range rows {
		if !seen[rows[i].Level] {
			seen[rows[i].Level] = true
			levels = append(levels, rows[i].Level)
		}
	}
	sort.Strings(levels)
	return levels
}

// nanSum adds the defined values of a selector over a row subset.
func nanSum(rows []Row, pick func(*Row) float64) float64 {
	var sum float64
	for i := range rows {
		if v := pick(&rows[i]); defined(v) {
			sum += v
		}
	}
	return sum
}
