package utils

import "math"

// Round2 rounds to two decimal places, the precision every monetary field in
// the API is reported with.
func Round2(value float64) float64 {
	return math.Round(value*100) / 100
}
