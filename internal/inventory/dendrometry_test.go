package inventory

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiameterFromCircumference(t *testing.T) {
	// CAP 31.4 cm is (close to) a 10 cm DAP tree.
	assert.InDelta(t, 10.0, DiameterFromCircumference(31.4), 0.01)
	assert.InDelta(t, 31.4/math.Pi, DiameterFromCircumference(31.4), 1e-12)

	assert.True(t, math.IsNaN(DiameterFromCircumference(math.NaN())))
	assert.True(t, math.IsNaN(DiameterFromCircumference(0)))
	assert.True(t, math.IsNaN(DiameterFromCircumference(-5)))
}

func TestBasalAreaFormula(t *testing.T) {
	// g must be exactly π x (DAP/200)² for every positive diameter.
	for _, dap := range []float64{0.5, 10, 25.4, 87.3, 200} {
		assert.Equal(t, math.Pi*math.Pow(dap/200, 2), BasalArea(dap), "dap=%v", dap)
	}

	assert.InDelta(t, 0.00785, BasalArea(DiameterFromCircumference(31.4)), 1e-4)
	assert.True(t, math.IsNaN(BasalArea(math.NaN())))
	assert.True(t, math.IsNaN(BasalArea(-1)))
}

func TestTreeVolumeScenario(t *testing.T) {
	dap := DiameterFromCircumference(31.4)
	v := TreeVolume(dap, 10)

	want := 1.3332 * math.Pow(dap/100, 2.0836) * math.Pow(10, 0.732)
	require.False(t, math.IsNaN(v))
	assert.InDelta(t, want, v, 1e-3)
}

func TestTreeVolumeUndefinedInputs(t *testing.T) {
	assert.True(t, math.IsNaN(TreeVolume(math.NaN(), 10)))
	assert.True(t, math.IsNaN(TreeVolume(20, math.NaN())))
	assert.True(t, math.IsNaN(TreeVolume(20, 0)))
	assert.True(t, math.IsNaN(TreeVolume(20, -3)))
	assert.True(t, math.IsNaN(TreeVolume(0, 10)))
}

func TestTreeVolumeMonotonicity(t *testing.T) {
	// Strictly increasing in diameter for a fixed height.
	prev := 0.0
	for dap := 5.0; dap <= 100; dap += 5 {
		v := TreeVolume(dap, 15)
		assert.Greater(t, v, prev, "dap=%v", dap)
		prev = v
	}

	// Strictly increasing in height for a fixed diameter.
	prev = 0.0
	for h := 1.0; h <= 40; h += 1 {
		v := TreeVolume(25, h)
		assert.Greater(t, v, prev, "h=%v", h)
		prev = v
	}
}

func TestExpansionFactor(t *testing.T) {
	// 10x50 m plots, 4 of them: 10000 / (500 x 4) = 5 ha⁻¹.
	assert.Equal(t, 5.0, ExpansionFactor(500, 4))
	// 1x1 m regeneration subplot, 2 of them.
	assert.Equal(t, 5000.0, ExpansionFactor(1, 2))

	assert.True(t, math.IsNaN(ExpansionFactor(500, 0)))
	assert.True(t, math.IsNaN(ExpansionFactor(0, 3)))
	assert.True(t, math.IsNaN(ExpansionFactor(math.NaN(), 3)))
}

func TestParseNumber(t *testing.T) {
	assert.Equal(t, 12.5, parseNumber("12.5"))
	assert.Equal(t, 12.5, parseNumber(" 12,5 "), "decimal comma must be accepted")
	assert.Equal(t, -3.0, parseNumber("-3"))

	assert.True(t, math.IsNaN(parseNumber("")))
	assert.True(t, math.IsNaN(parseNumber("   ")))
	assert.True(t, math.IsNaN(parseNumber("n/a")))
}

func TestNormalizeLevel(t *testing.T) {
	assert.Equal(t, "S2", NormalizeLevel("  s2 "))
	assert.Equal(t, "R1", NormalizeLevel("r1"))
	assert.Equal(t, "", NormalizeLevel("   "))
}
