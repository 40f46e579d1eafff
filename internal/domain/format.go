package domain

import (
	"fmt"
	"math"
)

// FormatDistance renders meters as "850 m" below one kilometer and
// "1.5 km" otherwise.
func FormatDistance(meters float64) string {
	if meters < 1000 {
		return fmt.Sprintf("%d m", int(meters))
	}
	return fmt.Sprintf("%.1f km", meters/1000)
}

// RoundMeters rounds a distance to whole meters.
func RoundMeters(meters float64) float64 { return math.Round(meters) }
