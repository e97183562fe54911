package movebase

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSensorToBody(t *testing.T) {
	tests := []struct {
		name            string
		distance        float64
		bearing         float64
		offset          float64
		expectedDist    float64
		expectedBearing float64
	}{
		{"ahead", 1, 0, 0.2, 1.2, 0},
		{"left", 1, math.Pi / 2, 0.2, math.Hypot(1, 0.2), math.Atan2(1, 0.2)},
		{"right", 1, -math.Pi / 2, 0.2, math.Hypot(1, 0.2), -math.Atan2(1, 0.2)},
		{"no offset", 2, 0.3, 0, 2, 0.3},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			dist, bearing := SensorToBody(test.distance, test.bearing, test.offset)
			assert.InDelta(t, test.expectedDist, dist, 1e-9)
			assert.InDelta(t, test.expectedBearing, bearing, 1e-9)
		})
	}
}

func TestSensorToBodyZeroOffsetIdentity(t *testing.T) {
	for d := 0.1; d < 5; d += 0.7 {
		for theta := -1.5; theta <= 1.5; theta += 0.25 {
			dist, bearing := SensorToBody(d, theta, 0)
			assert.InDelta(t, d, dist, 1e-9)
			assert.InDelta(t, theta, bearing, 1e-9)
		}
	}
}

func TestSensorToBodyFinite(t *testing.T) {
	for _, theta := range []float64{0, math.Pi / 2, -math.Pi / 2, 1e-12} {
		dist, bearing := SensorToBody(0.2, theta, 0.2)
		assert.False(t, math.IsNaN(dist))
		assert.False(t, math.IsNaN(bearing))
	}
}

func TestSensorToBodyNoBearing(t *testing.T) {
	tests := []struct {
		name     string
		distance float64
		bearing  float64
		offset   float64
	}{
		{"zero reading", 0, 0.5, 0},
		{"on body origin", 0.2, math.Pi, 0.2},
		{"nan reading", math.NaN(), 0, 0.2},
		{"inf reading", math.Inf(1), 0.3, 0.2},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, bearing := SensorToBody(test.distance, test.bearing, test.offset)
			assert.True(t, math.IsNaN(bearing))
		})
	}
}

func TestSensorToBodyBehindIsMirrored(t *testing.T) {
	dist, bearing := SensorToBody(1, math.Pi*0.75, 0)
	assert.InDelta(t, 1, dist, 1e-9)
	assert.InDelta(t, math.Pi/4, bearing, 1e-9)
}
