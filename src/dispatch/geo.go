package dispatch

import (
	"fmt"
	"math"
)

const earthRadiusKm = 6371.0

// haversineKm returns the great-circle distance in kilometres between two
// points specified in decimal degrees.
func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := degreesToRadians(lat2 - lat1)
	dLng := degreesToRadians(lng2 - lng1)

	rLat1 := degreesToRadians(lat1)
	rLat2 := degreesToRadians(lat2)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// formatDistance renders a distance for the offer payload: metres under a
// kilometre, otherwise kilometres with one decimal.
func formatDistance(km float64) string {
	if km < 1 {
		return fmt.Sprintf("%dm", int(math.Round(km*1000)))
	}
	return fmt.Sprintf("%.1fkm", km)
}

// proximity returns the formatted distance between two optional points,
// or "" when either side is unknown.
func proximity(fromLat, fromLng *float64, toLat, toLng *float64) string {
	if fromLat == nil || fromLng == nil || toLat == nil || toLng == nil {
		return ""
	}
	return formatDistance(haversineKm(*fromLat, *fromLng, *toLat, *toLng))
}
