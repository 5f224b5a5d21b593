package utils

// ValidateCoordinates checks that a lat/lon pair lies inside WGS84
// bounds.
func ValidateCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
