package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// earthRadiusKm is the mean Earth radius which is used by the
// haversine distance formula.
const earthRadiusKm = 6371.0

// Coordinate represents a geographical location with a latitude and
// longitude (in degrees). It is embedded in the Parking struct and
// stored as two lat/lon columns.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// NewCoordinate validates the latitude and longitude ranges, i.e.,
// lat must be in [-90, 90] and lon must be in [-180, 180].
func NewCoordinate(lat, lon float64) (Coordinate, error) {
	c := Coordinate{Lat: lat, Lon: lon}
	if err := c.Validate(); err != nil {
		return Coordinate{}, err
	}
	return c, nil
}

// Validate returns an error if c has an out of range latitude or
// longitude.
func (c Coordinate) Validate() error {
	switch {
	case math.IsNaN(c.Lat) || c.Lat < -90 || c.Lat > 90:
		return fmt.Errorf("latitude out of range: %v", c.Lat)
	case math.IsNaN(c.Lon) || c.Lon < -180 || c.Lon > 180:
		return fmt.Errorf("longitude out of range: %v", c.Lon)
	}
	return nil
}

// DistanceTo computes the great-circle distance between c and o in
// kilometers using the haversine formula.
func (c Coordinate) DistanceTo(o Coordinate) float64 {
	rad := math.Pi / 180
	dLat := (o.Lat - c.Lat) * rad
	dLon := (o.Lon - c.Lon) * rad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(c.Lat*rad)*math.Cos(o.Lat*rad)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// String formats c as "lat,lon" with six fractional digits.
func (c Coordinate) String() string {
	return fmt.Sprintf("%.6f,%.6f", c.Lat, c.Lon)
}

// ParseCoordinate parses the "lat,lon" format as produced by String.
func ParseCoordinate(s string) (Coordinate, error) {
	latStr, lonStr, ok := strings.Cut(s, ",")
	if !ok {
		return Coordinate{}, fmt.Errorf("missing comma in %q", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return Coordinate{}, fmt.Errorf("parsing latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
	if err != nil {
		return Coordinate{}, fmt.Errorf("parsing longitude: %w", err)
	}
	return NewCoordinate(lat, lon)
}
