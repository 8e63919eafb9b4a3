package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineKm(t *testing.T) {
	assert.InDelta(t, 0.0, haversineKm(25.033, 121.565, 25.033, 121.565), 0.0001)
	// one degree of longitude on the equator
	assert.InDelta(t, 111.19, haversineKm(0, 0, 0, 1), 0.05)
	// symmetric
	assert.InDelta(t,
		haversineKm(25.033, 121.565, 25.0478, 121.5318),
		haversineKm(25.0478, 121.5318, 25.033, 121.565),
		0.0001)
}

func TestFormatDistance(t *testing.T) {
	assert.Equal(t, "500m", formatDistance(0.5))
	assert.Equal(t, "999m", formatDistance(0.9994))
	assert.Equal(t, "1.0km", formatDistance(1.0))
	assert.Equal(t, "1.3km", formatDistance(1.26))
	assert.Equal(t, "12.3km", formatDistance(12.34))
}

func TestProximityMissingCoordinates(t *testing.T) {
	lat := 25.033
	lng := 121.565

	assert.Equal(t, "", proximity(nil, nil, &lat, &lng))
	assert.Equal(t, "", proximity(&lat, &lng, nil, nil))
	assert.Equal(t, "", proximity(&lat, nil, &lat, &lng))
	assert.NotEqual(t, "", proximity(&lat, &lng, &lat, &lng))
}
