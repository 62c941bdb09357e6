// =============================================================================
// Forest Inventory Processor - Level Aggregation
// =============================================================================
//
// Stage 8 of the pipeline: rows are grouped by their normalized level and
// each group is collapsed into one LevelSummary row. All rows of a level
// share a single expansion factor by construction (the factor is computed
// per level in stage 4), so the group factor is simply looked up.
//
// Property-wide totals are only produced when a positive property area was
// supplied; otherwise they stay undefined.
//
// =============================================================================

package inventory

// summarizeLevels builds the per-level indicator table, sorted by level label.
func summarizeLevels(
	rows []Row,
	plotCounts map[string]int,
	factors map[string]float64,
	regen map[string]bool,
	hasCount bool,
	areaHa float64,
) []LevelSummary {
	var summaries []LevelSummary

	for _, level := range sortedLevels(rows) {
		var group []Row
		for i := range rows {
			if rows[i].Level == level {
				group = append(group, rows[i])
			}
		}

		fe := factors[level]

		// Sampled individuals: explicit counts for regeneration levels
		// (blank counts as 0), otherwise one individual per row.
		var individuals float64
		if regen[level] && hasCount {
			for i := range group {
				if defined(group[i].Count) {
					individuals += group[i].Count
				}
			}
		} else {
			individuals = float64(len(group))
		}

		basal := nanSum(group, func(r *Row) float64 { return r.BasalArea })
		volume := nanSum(group, func(r *Row) float64 { return r.Volume })

		s := LevelSummary{
			Level:           level,
			Plots:           plotCounts[level],
			ExpansionFactor: fe,
			Individuals:     individuals,
			BasalArea:       basal,
			Volume:          volume,
			IndPerHa:        undefined(),
			BasalAreaPerHa:  undefined(),
			VolumePerHa:     undefined(),
			IndTotal:        undefined(),
			BasalAreaTotal:  undefined(),
			VolumeTotal:     undefined(),
		}

		if defined(fe) {
			s.IndPerHa = individuals * fe
			s.BasalAreaPerHa = basal * fe
			s.VolumePerHa = volume * fe

			if areaHa > 0 {
				s.IndTotal = s.IndPerHa * areaHa
				s.BasalAreaTotal = s.BasalAreaPerHa * areaHa
				s.VolumeTotal = s.VolumePerHa * areaHa
			}
		}

		summaries = append(summaries, s)
	}

	return summaries
}
