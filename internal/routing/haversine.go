package routing

import (
	"math"
)

// Mean Earth radius in nautical miles.
const earthRadiusNM = 3440.065

// haversineNM returns the great-circle distance between two points in
// nautical miles.
func haversineNM(lat1, lon1, lat2, lon2 float64) float64 {
	const deg = math.Pi / 180

	dLat := (lat2 - lat1) * deg
	dLon := (lon2 - lon1) * deg

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*deg)*math.Cos(lat2*deg)*math.Sin(dLon/2)*math.Sin(dLon/2)

	return 2 * earthRadiusNM * math.Asin(math.Sqrt(a))
}
