package domain

import "math"

// Immutable geographic coordinates (latitude, longitude).
type Coordinates struct {
	Lat float64
	Lon float64
}

// Return coordinates as [lon, lat] for external API compatibility.
func (c Coordinates) CoordsToList() []float64 { return []float64{c.Lon, c.Lat} }

// WithinWindow reports whether c lies inside a square window of tolerance
// degrees around center, on both axes.
func (c Coordinates) WithinWindow(center Coordinates, tolerance float64) bool {
	return math.Abs(c.Lat-center.Lat) <= tolerance && math.Abs(c.Lon-center.Lon) <= tolerance
}

// Viewbox is a geographic bounding rectangle used to bias or constrain geocoding.
type Viewbox struct {
	MinLon, MinLat float64
	MaxLon, MaxLat float64
}

func (v Viewbox) Contains(c Coordinates) bool {
	return c.Lon >= v.MinLon && c.Lon <= v.MaxLon && c.Lat >= v.MinLat && c.Lat <= v.MaxLat
}
