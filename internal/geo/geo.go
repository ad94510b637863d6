// Package geo holds the spherical-distance helpers used by the proximity
// queries. Only pure functions, no state.
package geo

import "math"

const earthRadiusKm = 6371.0

// DistanceKm returns the great-circle distance between two points in
// kilometers using the haversine formula. Inputs are decimal degrees.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

func IsValidLatLon(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// BoundingBox is a latitude/longitude rectangle used to prune proximity
// candidates before the exact haversine pass.
type BoundingBox struct {
	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64
}

// BoundingBoxAround returns a box guaranteed to contain every point within
// radiusKm of the center. The box may be larger than the circle, never
// smaller, so filtering by it cannot drop a true match. Near the poles or
// across the antimeridian the longitude span degenerates to the full range.
func BoundingBoxAround(lat, lon, radiusKm float64) BoundingBox {
	dLat := radiusKm / earthRadiusKm * 180 / math.Pi

	box := BoundingBox{
		MinLat: math.Max(lat-dLat, -90),
		MaxLat: math.Min(lat+dLat, 90),
	}

	// Widest longitude span occurs at the latitude in the band closest to a
	// pole, so scale by the cosine there.
	extremeLat := math.Max(math.Abs(box.MinLat), math.Abs(box.MaxLat))
	cosLat := math.Cos(extremeLat * math.Pi / 180)
	if box.MaxLat >= 90 || box.MinLat <= -90 || cosLat <= 1e-9 {
		box.MinLon = -180
		box.MaxLon = 180
		return box
	}

	dLon := radiusKm / (earthRadiusKm * cosLat) * 180 / math.Pi
	box.MinLon = lon - dLon
	box.MaxLon = lon + dLon
	if box.MinLon < -180 || box.MaxLon > 180 {
		box.MinLon = -180
		box.MaxLon = 180
	}
	return box
}

func (b BoundingBox) Contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lon >= b.MinLon && lon <= b.MaxLon
}
