package units

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLengthConversions(t *testing.T) {
	assert.Equal(t, 1000.0, Meter/Millimeter)
	assert.Equal(t, 100.0, Meter/Centimeter)
	assert.InDelta(t, 1e-3, Micrometer/Millimeter, 1e-15)
}

func TestAngleConversions(t *testing.T) {
	assert.InDelta(t, math.Pi, 180*Degree, 1e-12)
	assert.InDelta(t, 2*math.Pi, 360*Degree, 1e-12)
}

func TestDensityConversions(t *testing.T) {
	// 1 g/cm3 == 1000 kg/m3
	assert.InDelta(t, 1.0, (1000*KilogramPerM3)/GramPerCm3, 1e-12)
}

func TestPressureConversions(t *testing.T) {
	assert.InDelta(t, 1.01325, Atmosphere/Bar, 1e-12)
	assert.InDelta(t, 14.80385, (15*Bar)/Atmosphere, 1e-5)
}
