package inventory

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixtureInput builds a small but representative survey: an upper stratum
// (S2) with one unparseable row, a regeneration level (R1) with explicit
// counts, and a level with no known plot area (X9).
func fixtureInput() Input {
	return Input{
		HasCircumference:    true,
		HasCommercialHeight: true,
		HasTotalHeight:      true,
		HasLevel:            true,
		HasPlot:             true,
		HasCount:            true,
		Rows: []RawRow{
			{SourceRow: 2, Level: "S2", Plot: "P1", Circumference: "31.4", TotalHeight: "10"},
			{SourceRow: 3, Level: " s2 ", Plot: "P2", Circumference: "62.8", TotalHeight: "12", CommercialHeight: "8"},
			{SourceRow: 4, Level: "S2", Plot: "P1", Circumference: "abc", TotalHeight: "10"},
			{SourceRow: 5, Level: "R1", Plot: "P1", Circumference: "5", CommercialHeight: "1.5", Count: "4"},
			{SourceRow: 6, Level: "R1", Plot: "P2", Circumference: "6", CommercialHeight: "1.8", Count: ""},
			{SourceRow: 7, Level: "X9", Plot: "P1", Circumference: "40", TotalHeight: "15"},
		},
	}
}

func TestProcessFixture(t *testing.T) {
	params := DefaultParams()
	params.AreaHa = 2

	res, err := Process(fixtureInput(), params)
	require.NoError(t, err)
	require.Len(t, res.Rows, 6, "invalid rows are retained")
	require.Len(t, res.Levels, 3)

	// Levels come back sorted by label.
	assert.Equal(t, "R1", res.Levels[0].Level)
	assert.Equal(t, "S2", res.Levels[1].Level)
	assert.Equal(t, "X9", res.Levels[2].Level)

	// Level labels are normalized before grouping.
	assert.Equal(t, "S2", res.Rows[1].Level)
}

func TestProcessDendrometryPerRow(t *testing.T) {
	res, err := Process(fixtureInput(), DefaultParams())
	require.NoError(t, err)

	r0 := res.Rows[0]
	assert.InDelta(t, 31.4/math.Pi, r0.Diameter, 1e-12)
	assert.InDelta(t, 0.00785, r0.BasalArea, 1e-4)
	assert.InDelta(t, TreeVolume(r0.Diameter, 10), r0.Volume, 1e-12)

	// Total height wins over commercial height for the base volume.
	r1 := res.Rows[1]
	assert.Equal(t, r1.VolumeTotalH, r1.Volume)
	assert.False(t, math.IsNaN(r1.VolumeCommercialH))

	// The unparseable circumference degrades that row to NaN without
	// failing the pipeline, and propagates to all derived fields.
	r2 := res.Rows[2]
	assert.True(t, math.IsNaN(r2.Diameter))
	assert.True(t, math.IsNaN(r2.BasalArea))
	assert.True(t, math.IsNaN(r2.Volume))
	assert.True(t, math.IsNaN(r2.BasalAreaPerHa))
	assert.True(t, math.IsNaN(r2.ZScore))

	// Regeneration rows fall back to the commercial height.
	r3 := res.Rows[3]
	assert.Equal(t, r3.VolumeCommercialH, r3.Volume)
}

func TestProcessExpansionFactors(t *testing.T) {
	res, err := Process(fixtureInput(), DefaultParams())
	require.NoError(t, err)

	// S2: 500 m² plots, 2 distinct plots -> 10000/(500x2) = 10.
	assert.Equal(t, 10.0, res.Rows[0].ExpansionFactor)
	// R1: 1 m² subplots, 2 distinct plots -> 5000.
	assert.Equal(t, 5000.0, res.Rows[3].ExpansionFactor)
	// X9 has no nominal plot area.
	assert.True(t, math.IsNaN(res.Rows[5].ExpansionFactor))

	levels := summaryByLevel(res)
	assert.Equal(t, 2, levels["S2"].Plots)
	assert.Equal(t, 2, levels["R1"].Plots)
	assert.Equal(t, 1, levels["X9"].Plots)
}

func TestProcessPerHectareIndicators(t *testing.T) {
	res, err := Process(fixtureInput(), DefaultParams())
	require.NoError(t, err)

	// Non-regeneration rows are one individual each.
	assert.Equal(t, 10.0, res.Rows[0].IndPerHa)
	// Regeneration rows carry their explicit count; blank counts as zero.
	assert.Equal(t, 4*5000.0, res.Rows[3].IndPerHa)
	assert.Equal(t, 0.0, res.Rows[4].IndPerHa)

	assert.InDelta(t, res.Rows[0].BasalArea*10, res.Rows[0].BasalAreaPerHa, 1e-12)
	assert.InDelta(t, res.Rows[0].Volume*10, res.Rows[0].VolumePerHa, 1e-12)

	// No expansion factor, no per-hectare metrics.
	assert.True(t, math.IsNaN(res.Rows[5].IndPerHa))
	assert.True(t, math.IsNaN(res.Rows[5].VolumePerHa))
}

func TestProcessLevelAggregation(t *testing.T) {
	res, err := Process(fixtureInput(), DefaultParams())
	require.NoError(t, err)
	levels := summaryByLevel(res)

	// The summary's sampled basal area equals the sum over that level's rows.
	var wantBasal float64
	for _, r := range res.Rows {
		if r.Level == "S2" && !math.IsNaN(r.BasalArea) {
			wantBasal += r.BasalArea
		}
	}
	assert.InDelta(t, wantBasal, levels["S2"].BasalArea, 1e-12)
	assert.InDelta(t, wantBasal*10, levels["S2"].BasalAreaPerHa, 1e-12)

	// S2 counts rows; R1 sums explicit counts (blank counts as zero).
	assert.Equal(t, 3.0, levels["S2"].Individuals)
	assert.Equal(t, 4.0, levels["R1"].Individuals)
	assert.Equal(t, 30.0, levels["S2"].IndPerHa)
	assert.Equal(t, 20000.0, levels["R1"].IndPerHa)

	// No factor, no per-hectare aggregates.
	assert.True(t, math.IsNaN(levels["X9"].IndPerHa))
}

func TestProcessPropertyTotals(t *testing.T) {
	params := DefaultParams()
	params.AreaHa = 2

	res, err := Process(fixtureInput(), params)
	require.NoError(t, err)
	levels := summaryByLevel(res)

	// Property totals are exactly per-hectare x area.
	assert.Equal(t, levels["S2"].IndPerHa*2, levels["S2"].IndTotal)
	assert.Equal(t, levels["S2"].BasalAreaPerHa*2, levels["S2"].BasalAreaTotal)
	assert.Equal(t, levels["S2"].VolumePerHa*2, levels["S2"].VolumeTotal)
	assert.True(t, math.IsNaN(levels["X9"].IndTotal))
}

func TestProcessNoAreaNoTotals(t *testing.T) {
	res, err := Process(fixtureInput(), DefaultParams())
	require.NoError(t, err)

	for _, s := range res.Levels {
		assert.True(t, math.IsNaN(s.IndTotal), "level %s", s.Level)
		assert.True(t, math.IsNaN(s.BasalAreaTotal), "level %s", s.Level)
		assert.True(t, math.IsNaN(s.VolumeTotal), "level %s", s.Level)
	}
}

func TestProcessSizeClasses(t *testing.T) {
	res, err := Process(fixtureInput(), DefaultParams())
	require.NoError(t, err)

	// Two usable S2 diameters: the partition exists.
	require.NotNil(t, res.DiameterBins)
	require.NotNil(t, res.HeightBins)

	// The smaller S2 tree sits just below the 10 cm class floor.
	assert.Equal(t, "-", res.Rows[0].DiameterClass)
	assert.NotEqual(t, "-", res.Rows[1].DiameterClass)
	assert.NotEqual(t, "-", res.Rows[0].HeightClass)

	// Labels are applied outside the reference level too, when the value
	// happens to fall inside the partition.
	assert.Equal(t, "-", res.Rows[3].DiameterClass)
}

func TestProcessZScore(t *testing.T) {
	res, err := Process(fixtureInput(), DefaultParams())
	require.NoError(t, err)

	// (mean - v_i) sums to zero over the defined volumes, so the scores do too.
	var sum, volSum float64
	n := 0
	for _, r := range res.Rows {
		if !math.IsNaN(r.Volume) {
			volSum += r.Volume
			n++
		}
	}
	mean := volSum / float64(n)
	for _, r := range res.Rows {
		if !math.IsNaN(r.ZScore) {
			sum += r.ZScore
			assert.InDelta(t, (mean-r.Volume)/volSum, r.ZScore, 1e-12)
		}
	}
	assert.InDelta(t, 0, sum, 1e-12)
}

func TestProcessIdempotence(t *testing.T) {
	params := DefaultParams()
	params.AreaHa = 3.5

	first, err := Process(fixtureInput(), params)
	require.NoError(t, err)
	second, err := Process(fixtureInput(), params)
	require.NoError(t, err)

	// NaN != NaN under reflect.DeepEqual, so compare the rendered form.
	assert.Equal(t, fmt.Sprintf("%#v", first), fmt.Sprintf("%#v", second))
}

func TestProcessEmptyInput(t *testing.T) {
	_, err := Process(Input{HasCircumference: true, HasTotalHeight: true}, DefaultParams())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptyInput))
}

func TestProcessAllValuesInvalid(t *testing.T) {
	in := Input{
		HasCircumference: true,
		HasTotalHeight:   true,
		HasLevel:         true,
		Rows: []RawRow{
			{SourceRow: 2, Level: "S2", Circumference: "??", TotalHeight: "10"},
			{SourceRow: 3, Level: "S2", Circumference: "", TotalHeight: "12"},
		},
	}

	_, err := Process(in, DefaultParams())
	require.Error(t, err)

	var invalid *AllValuesInvalidError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "circumference", invalid.Column)
}

func TestProcessAllHeightsInvalid(t *testing.T) {
	in := Input{
		HasCircumference: true,
		HasTotalHeight:   true,
		HasLevel:         true,
		Rows: []RawRow{
			{SourceRow: 2, Level: "S2", Circumference: "31.4", TotalHeight: "x"},
			{SourceRow: 3, Level: "S2", Circumference: "40", TotalHeight: ""},
		},
	}

	_, err := Process(in, DefaultParams())
	require.Error(t, err)

	var invalid *AllValuesInvalidError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "total_height", invalid.Column)
}

func TestProcessWithoutPlotColumn(t *testing.T) {
	// Without a plot column every row counts as one plot observation.
	in := Input{
		HasCircumference: true,
		HasTotalHeight:   true,
		HasLevel:         true,
		Rows: []RawRow{
			{SourceRow: 2, Level: "S2", Circumference: "31.4", TotalHeight: "10"},
			{SourceRow: 3, Level: "S2", Circumference: "62.8", TotalHeight: "12"},
		},
	}

	res, err := Process(in, DefaultParams())
	require.NoError(t, err)
	// 10000 / (500 x 2 rows) = 10.
	assert.Equal(t, 10.0, res.Rows[0].ExpansionFactor)
}

// summaryByLevel indexes the summary rows for convenient assertions.
func summaryByLevel(res *Result) map[string]LevelSummary {
	m := make(map[string]LevelSummary, len(res.Levels))
	for _, s := range res.Levels {
		m[s.Level] = s
	}
	return m
}
